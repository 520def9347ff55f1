// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtxplore/nswrap/internal/config"
	"github.com/rtxplore/nswrap/internal/issue"
)

func newConfigCommand(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage nswrap configuration",
		Long: `Manage nswrap configuration.

Configuration is read from nswrap.cue in the working directory, or from the
file given with --config. Scalar fields can be overridden with environment
variables such as NSWRAP_WORKERS and NSWRAP_LOG_LEVEL.`,
	}
	configCmd.AddCommand(newConfigShowCommand(a), newConfigInitCommand(a))
	return configCmd
}

func newConfigShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(cmd); err != nil {
				return a.fail(cmd, err)
			}
			source := "defaults (no config file found)"
			if a.cfg.Path != "" {
				source = a.cfg.Path
			}
			fmt.Fprintln(a.stderr, SubtitleStyle.Render("# source: "+source))
			fmt.Fprint(a.stdout, config.GenerateCUE(a.cfg))
			return nil
		},
	}
}

func newConfigInitCommand(a *app) *cobra.Command {
	var (
		output string
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter nswrap.cue",
		Long: `Create a starter configuration with one example target.

The file is written to ./nswrap.cue unless --output is given. An existing
file is only replaced with --force.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := output
			if path == "" {
				wd, err := os.Getwd()
				if err != nil {
					return a.fail(cmd, err)
				}
				path = config.DefaultPath(wd)
			}

			if err := config.CreateDefaultConfig(path, force); err != nil {
				ec := issue.NewErrorContext().
					WithOperation("create configuration").
					WithResource(path)
				if errors.Is(err, config.ErrConfigExists) {
					ec = ec.WithSuggestion("Pass --force to overwrite it")
				}
				return a.fail(cmd, ec.Wrap(err).BuildError())
			}

			fmt.Fprintln(a.stdout, SuccessStyle.Render("✓ Created ")+displayPath(path))
			fmt.Fprintln(a.stdout, SubtitleStyle.Render("Edit the example target, then run ")+CmdStyle.Render("nswrap check"))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default ./nswrap.cue)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}
