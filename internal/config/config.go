// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/rtxplore/nswrap/internal/issue"
	"github.com/rtxplore/nswrap/pkg/cueutil"
)

const (
	// AppName is the application name.
	AppName = "nswrap"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "nswrap"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides, e.g. NSWRAP_WORKERS.
	EnvPrefix = "NSWRAP"

	envSource = "environment"
)

// ErrConfigExists is returned by CreateDefaultConfig when the file exists
// and overwriting was not requested.
var ErrConfigExists = errors.New("config file already exists")

//go:embed config_schema.cue
var configSchema []byte

// DefaultPath returns the config file path searched in dir.
func DefaultPath(dir string) string {
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
}

// loadWithOptions performs option-driven config loading. It returns the
// loaded configuration and the path of the file it came from ("" when only
// defaults and environment were used).
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := newViper()

	searchDir := opts.Dir
	if searchDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, "", fmt.Errorf("failed to get working directory: %w", err)
		}
		searchDir = wd
	}

	resolvedPath := ""

	// If a config file path is given via --config, use it exclusively.
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'nswrap config init' to create a starter file").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		resolvedPath = opts.ConfigFilePath
	} else if local := DefaultPath(searchDir); fileExists(local) {
		resolvedPath = local
	}

	baseDir := searchDir
	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("See 'nswrap config --help' for configuration options").
				Wrap(err).
				BuildError()
		}
		abs, err := filepath.Abs(resolvedPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to resolve config path: %w", err)
		}
		baseDir = filepath.Dir(abs)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.BaseDir = baseDir
	cfg.Path = resolvedPath

	source := resolvedPath
	if source == "" {
		source = envSource
	}
	if err := validate(&cfg, source); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Namespaces must be qualified identifiers such as engine::gfx").
			WithSuggestion("Each target needs a unique name and a headers or sources entry").
			Wrap(err).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// newViper returns a viper instance with defaults and NSWRAP_ environment
// overrides registered.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultConfig()
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("fail_fast", defaults.FailFast)
	v.SetDefault("log_level", string(defaults.LogLevel))
	v.SetDefault("targets", []any{})
	return v
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper. The file decodes to a map so that
// viper defaults and environment overrides still apply to absent fields.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	res, err := cueutil.ParseAndDecode[map[string]any](configSchema, data, "#Config", cueutil.WithFilename(path))
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(*res.Value); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// validate checks constraints that CUE cannot express or that environment
// overrides may have broken: unique target names, namespace syntax, file
// set presence and glob syntax.
func validate(cfg *Config, file string) error {
	var errs []error
	if cfg.Workers < 1 {
		errs = append(errs, &cueutil.ValidationError{
			FilePath: file, CUEPath: "workers",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Workers),
			Err:     ErrInvalidWorkers,
		})
	}
	if valid, fieldErrs := cfg.LogLevel.IsValid(); !valid {
		errs = append(errs, &cueutil.ValidationError{
			FilePath: file, CUEPath: "log_level",
			Message: fieldErrs[0].Error(), Err: fieldErrs[0],
		})
	}

	seen := make(map[TargetName]int, len(cfg.Targets))
	for i, t := range cfg.Targets {
		path := fmt.Sprintf("targets[%d]", i)
		if valid, fieldErrs := t.IsValid(); !valid {
			errs = append(errs, &cueutil.ValidationError{
				FilePath: file, CUEPath: path,
				Message: fieldErrs[0].Error(), Err: fieldErrs[0],
			})
		}
		if first, dup := seen[t.Name]; dup {
			errs = append(errs, &cueutil.ValidationError{
				FilePath: file, CUEPath: path + ".name",
				Message:    fmt.Sprintf("duplicate target name %q (same as targets[%d])", t.Name, first),
				Suggestion: "rename one of the targets",
				Err:        ErrDuplicateTarget,
			})
			continue
		}
		seen[t.Name] = i
	}
	return errors.Join(errs...)
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes StarterConfig as CUE to path. An existing file
// is only replaced when force is set.
func CreateDefaultConfig(path string, force bool) error {
	if !force && fileExists(path) {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(StarterConfig())), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// nswrap configuration\n")
	sb.WriteString("// Environment variables prefixed with NSWRAP_ override scalar fields.\n\n")

	fmt.Fprintf(&sb, "workers:   %d\n", cfg.Workers)
	fmt.Fprintf(&sb, "fail_fast: %v\n", cfg.FailFast)
	fmt.Fprintf(&sb, "log_level: %q\n", cfg.LogLevel)

	if len(cfg.Targets) == 0 {
		sb.WriteString("\ntargets: []\n")
		return sb.String()
	}

	sb.WriteString("\ntargets: [\n")
	for _, t := range cfg.Targets {
		sb.WriteString("\t{\n")
		fmt.Fprintf(&sb, "\t\tname:      %q\n", t.Name)
		fmt.Fprintf(&sb, "\t\tnamespace: %q\n", t.Namespace)
		if t.Root != "" {
			fmt.Fprintf(&sb, "\t\troot:      %q\n", t.Root)
		}
		writeFileSet(&sb, "headers", t.Headers)
		writeFileSet(&sb, "sources", t.Sources)
		if len(t.Skip) > 0 {
			fmt.Fprintf(&sb, "\t\tskip: [%s]\n", quoteList(t.Skip))
		}
		sb.WriteString("\t},\n")
	}
	sb.WriteString("]\n")

	return sb.String()
}

func writeFileSet(sb *strings.Builder, field string, fs *FileSetConfig) {
	if fs == nil {
		return
	}
	if len(fs.Patterns) == 0 {
		fmt.Fprintf(sb, "\t\t%s: {dir: %q}\n", field, fs.Dir)
		return
	}
	fmt.Fprintf(sb, "\t\t%s: {dir: %q, patterns: [%s]}\n", field, fs.Dir, quoteList(fs.Patterns))
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, ", ")
}
