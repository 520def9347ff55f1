// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/rtxplore/nswrap/internal/discovery"
	"github.com/rtxplore/nswrap/internal/nsfmt"
)

const (
	// LogLevelDebug logs every processed file.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo logs run summaries.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs only problems.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs only failures.
	LogLevelError LogLevel = "error"
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid worker count")
	// ErrInvalidTargetName is returned when a TargetName is empty or malformed.
	ErrInvalidTargetName = errors.New("invalid target name")
	// ErrDuplicateTarget is returned when two targets share a name.
	ErrDuplicateTarget = errors.New("duplicate target name")
	// ErrInvalidTarget is the sentinel error wrapped by InvalidTargetError.
	ErrInvalidTarget = errors.New("invalid target")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrTargetNotFound is the sentinel error wrapped by TargetNotFoundError.
	ErrTargetNotFound = errors.New("target not found")
	// ErrNoTargets is returned when a run has nothing to process.
	ErrNoTargets = errors.New("no targets configured")
)

type (
	// LogLevel is the minimum level written to the log.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	// It wraps ErrInvalidLogLevel for errors.Is() compatibility.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// TargetName identifies a target on the command line (--target).
	TargetName string

	// InvalidTargetNameError is returned when a TargetName is empty or contains
	// characters other than letters, digits, '_', '.' and '-'.
	InvalidTargetNameError struct {
		Value TargetName
	}

	// InvalidTargetError is returned when a TargetConfig has invalid fields.
	// It wraps ErrInvalidTarget for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidTargetError struct {
		Name        TargetName
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all targets.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// TargetNotFoundError is returned by Config.Select for unknown names.
	TargetNotFoundError struct {
		Name      TargetName
		Available []TargetName
	}

	// FileSetConfig is one directory of a target and the globs selecting its files.
	FileSetConfig struct {
		// Dir is relative to the target root.
		Dir string `json:"dir" mapstructure:"dir"`
		// Patterns are doublestar globs relative to Dir.
		Patterns []string `json:"patterns,omitempty" mapstructure:"patterns"`
	}

	// TargetConfig binds a namespace to the files that belong in it.
	TargetConfig struct {
		Name      TargetName      `json:"name" mapstructure:"name"`
		Namespace nsfmt.Namespace `json:"namespace" mapstructure:"namespace"`
		// Root is relative to the configuration file's directory.
		Root    string         `json:"root" mapstructure:"root"`
		Headers *FileSetConfig `json:"headers,omitempty" mapstructure:"headers"`
		Sources *FileSetConfig `json:"sources,omitempty" mapstructure:"sources"`
		// Skip lists base file names that are never rewritten.
		Skip []string `json:"skip,omitempty" mapstructure:"skip"`
	}

	// Config holds the application configuration.
	Config struct {
		// Workers bounds the number of files processed concurrently.
		Workers int `json:"workers" mapstructure:"workers"`
		// FailFast stops a run at the first failing file.
		FailFast bool `json:"fail_fast" mapstructure:"fail_fast"`
		// LogLevel sets the minimum log level.
		LogLevel LogLevel `json:"log_level" mapstructure:"log_level"`
		// Targets are the namespaces to enforce.
		Targets []TargetConfig `json:"targets" mapstructure:"targets"`
		// BaseDir anchors relative target roots. It is the directory of the
		// loaded file, or the search directory when no file was found.
		BaseDir string `json:"-" mapstructure:"-"`
		// Path is the loaded file, or "" when none was found.
		Path string `json:"-" mapstructure:"-"`
	}
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels,
// and a list of validation errors if it is not.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// Level converts to a charmbracelet/log level. Unknown values map to info.
func (l LogLevel) Level() log.Level {
	lvl, err := log.ParseLevel(string(l))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// String returns the string representation of the TargetName.
func (n TargetName) String() string { return string(n) }

// IsValid returns whether the TargetName is non-empty and made of
// letters, digits, '_', '.' and '-'.
func (n TargetName) IsValid() (bool, []error) {
	if n == "" || strings.IndexFunc(string(n), func(r rune) bool { return !isNameRune(r) }) >= 0 {
		return false, []error{&InvalidTargetNameError{Value: n}}
	}
	return true, nil
}

func isNameRune(r rune) bool {
	return r == '_' || r == '.' || r == '-' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// Error implements the error interface for InvalidTargetNameError.
func (e *InvalidTargetNameError) Error() string {
	return fmt.Sprintf("invalid target name %q", e.Value)
}

// Unwrap returns ErrInvalidTargetName for errors.Is() compatibility.
func (e *InvalidTargetNameError) Unwrap() error { return ErrInvalidTargetName }

// IsValid returns whether the TargetConfig has valid fields. It delegates
// to Name.IsValid(), Namespace.IsValid() and discovery.Target.Validate().
func (t TargetConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := t.Name.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := t.Namespace.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if err := t.Discovery("").Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidTargetError{Name: t.Name, FieldErrors: errs}}
	}
	return true, nil
}

// Discovery converts the target into a discovery.Target whose root is
// resolved against baseDir when relative.
func (t TargetConfig) Discovery(baseDir string) discovery.Target {
	root := t.Root
	if root == "" {
		root = "."
	}
	if !filepath.IsAbs(root) && baseDir != "" {
		root = filepath.Join(baseDir, root)
	}
	return discovery.Target{
		Root:    root,
		Headers: t.Headers.fileSet(),
		Sources: t.Sources.fileSet(),
		Skip:    t.Skip,
	}
}

func (f *FileSetConfig) fileSet() *discovery.FileSet {
	if f == nil {
		return nil
	}
	return &discovery.FileSet{Dir: f.Dir, Patterns: f.Patterns}
}

// Error implements the error interface for InvalidTargetError.
func (e *InvalidTargetError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid target %q: %s", e.Name, strings.Join(msgs, "; "))
}

// Unwrap returns the field errors together with ErrInvalidTarget so that
// errors.Is() matches both the sentinel and field-level causes.
func (e *InvalidTargetError) Unwrap() []error {
	return append([]error{ErrInvalidTarget}, e.FieldErrors...)
}

// IsValid returns whether the Config has valid fields: a positive worker
// count, a known log level, and valid targets with unique names.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidWorkers, c.Workers))
	}
	if valid, fieldErrs := c.LogLevel.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	seen := make(map[TargetName]bool, len(c.Targets))
	for _, t := range c.Targets {
		if valid, fieldErrs := t.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
		}
		if seen[t.Name] {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateTarget, t.Name))
		}
		seen[t.Name] = true
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap returns the field errors together with ErrInvalidConfig.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// Names returns the target names in configuration order.
func (c *Config) Names() []TargetName {
	names := make([]TargetName, len(c.Targets))
	for i, t := range c.Targets {
		names[i] = t.Name
	}
	return names
}

// Select returns the named targets, or all targets when names is empty.
// It returns ErrNoTargets when the result would be empty.
func (c *Config) Select(names []string) ([]TargetConfig, error) {
	if len(names) == 0 {
		if len(c.Targets) == 0 {
			return nil, ErrNoTargets
		}
		return c.Targets, nil
	}

	selected := make([]TargetConfig, 0, len(names))
	for _, name := range names {
		idx := -1
		for i, t := range c.Targets {
			if string(t.Name) == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, &TargetNotFoundError{Name: TargetName(name), Available: c.Names()}
		}
		selected = append(selected, c.Targets[idx])
	}
	return selected, nil
}

// Error implements the error interface for TargetNotFoundError.
func (e *TargetNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("target %q not found (no targets configured)", e.Name)
	}
	avail := make([]string, len(e.Available))
	for i, n := range e.Available {
		avail[i] = string(n)
	}
	return fmt.Sprintf("target %q not found (available: %s)", e.Name, strings.Join(avail, ", "))
}

// Unwrap returns ErrTargetNotFound for errors.Is() compatibility.
func (e *TargetNotFoundError) Unwrap() error { return ErrTargetNotFound }

// DefaultConfig returns the configuration used when no file is present.
// It has no targets.
func DefaultConfig() *Config {
	return &Config{
		Workers:  runtime.NumCPU(),
		FailFast: false,
		LogLevel: LogLevelInfo,
		Targets:  []TargetConfig{},
	}
}

// StarterConfig returns the configuration written by CreateDefaultConfig:
// the defaults plus one example target.
func StarterConfig() *Config {
	cfg := DefaultConfig()
	cfg.Targets = []TargetConfig{{
		Name:      "gfx",
		Namespace: "engine::gfx",
		Root:      ".",
		Headers:   &FileSetConfig{Dir: "include/engine/gfx"},
		Sources:   &FileSetConfig{Dir: "src", Patterns: []string{"*.cpp"}},
		Skip:      []string{"d3dx12.h", "HlslUtils.h"},
	}}
	return cfg
}
