// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for nswrap.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/rtxplore/nswrap/internal/config"
	"github.com/rtxplore/nswrap/internal/issue"
	"github.com/rtxplore/nswrap/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

type (
	// rootFlags holds the persistent flags shared by every subcommand.
	rootFlags struct {
		configPath string
		verbose    bool
		workers    int
		failFast   bool
	}

	// app is the state a command tree shares: flags, loaded configuration
	// and the logger built from both.
	app struct {
		flags    rootFlags
		provider config.Provider
		cfg      *config.Config
		logger   *log.Logger
		stdout   io.Writer
		stderr   io.Writer
	}
)

// newRootCommand builds a fresh command tree backed by the file provider.
// Each call has its own state so tests can execute commands side by side.
func newRootCommand() *cobra.Command {
	return newApp(config.NewProvider()).rootCommand()
}

func newApp(provider config.Provider) *app {
	return &app{provider: provider, stdout: os.Stdout, stderr: os.Stderr}
}

// rootCommand builds the command tree that shares a's state.
func (a *app) rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nswrap",
		Short: "Wrap C/C++ sources in a namespace block",
		Long: TitleStyle.Render("nswrap") + SubtitleStyle.Render(" - Wrap C/C++ sources in a namespace block") + `

nswrap rewrites header and implementation files so that their body sits
inside a single namespace block, leaving includes, pragmas and leading
comments above it.

` + SubtitleStyle.Render("Policies:") + `
  wrap       Wrap files that have no namespace block yet
  normalize  Collapse stray markers at the edges and re-wrap every file
  reset      Remove every marker and rebuild the block

` + SubtitleStyle.Render("Examples:") + `
  nswrap config init                 Create a starter nswrap.cue
  nswrap wrap                        Wrap every configured target
  nswrap normalize --target gfx      Normalize a single target
  nswrap check                       Exit 1 if any file is not canonical
  nswrap wrap --namespace app::ui --headers include/ui --sources src/ui`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.stdout = cmd.OutOrStdout()
			a.stderr = cmd.ErrOrStderr()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "enable verbose output")
	pf.StringVar(&a.flags.configPath, "config", "", "config file (default is ./nswrap.cue)")
	pf.IntVar(&a.flags.workers, "workers", 0, "files processed concurrently (default from config)")
	pf.BoolVar(&a.flags.failFast, "fail-fast", false, "stop at the first failing file")

	for _, p := range policyCommands {
		rootCmd.AddCommand(newPolicyCommand(a, p))
	}
	rootCmd.AddCommand(newCheckCommand(a))
	rootCmd.AddCommand(newWatchCommand(a))
	rootCmd.AddCommand(newConfigCommand(a))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits the process. It is called by main.main().
func Execute() {
	os.Exit(Main())
}

// Main runs the CLI with os.Args and returns the process exit code.
func Main() int {
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		newRootCommand(),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) && exitErr.Code.Validate() == nil {
			return int(exitErr.Code)
		}
		return int(types.ExitFailure)
	}
	return int(types.ExitSuccess)
}

// load reads the configuration once, applies flag overrides and builds the
// logger. Every command that touches files calls it first.
func (a *app) load(cmd *cobra.Command) error {
	if a.cfg != nil {
		return nil
	}

	cfg, err := a.provider.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: a.flags.configPath})
	if err != nil {
		return newServiceError(err, issue.ConfigLoadFailedId, "")
	}

	flags := cmd.Flags()
	if flags.Changed("workers") {
		if a.flags.workers < 1 {
			return fmt.Errorf("--workers must be at least 1, got %d", a.flags.workers)
		}
		cfg.Workers = a.flags.workers
	}
	if flags.Changed("fail-fast") {
		cfg.FailFast = a.flags.failFast
	}

	level := cfg.LogLevel.Level()
	if a.flags.verbose {
		level = log.DebugLevel
	}
	a.logger = log.NewWithOptions(a.stderr, log.Options{Prefix: config.AppName, Level: level})
	a.cfg = cfg
	a.logger.Debug("configuration loaded", "path", cfg.Path, "base", cfg.BaseDir, "workers", cfg.Workers)
	return nil
}

// fail renders err on stderr and returns the ExitError that carries the exit
// code. The error itself is already printed, so the ExitError has no cause.
func (a *app) fail(cmd *cobra.Command, err error) error {
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		renderServiceError(a.stderr, svcErr)
	}
	fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, a.flags.verbose))
	return &ExitError{Code: types.ExitFailure}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
