// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rtxplore/nswrap/internal/issue"
	"github.com/rtxplore/nswrap/internal/nsfmt"
	"github.com/rtxplore/nswrap/internal/runner"
)

// defaultCheckPolicy is stricter than wrap: it also flags wrapped files whose
// markers are not in canonical form.
var defaultCheckPolicy = nsfmt.PolicyNormalize

func newCheckCommand(a *app) *cobra.Command {
	var (
		tf         targetFlags
		policyName string
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report files a policy would change without writing them",
		Long: `Run a policy in dry-run mode and list every file it would rewrite.

The command exits with status 1 when at least one file would change, which
makes it suitable for CI and pre-commit hooks.`,
		Example: `  nswrap check
  nswrap check --policy wrap --target gfx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := parsePolicyFlag(policyName)
			if err != nil {
				return a.fail(cmd, err)
			}
			return a.runCheck(cmd, p, &tf)
		},
	}
	cmd.Flags().StringVarP(&policyName, "policy", "p", defaultCheckPolicy.Name,
		"policy to check against ("+strings.Join(nsfmt.PolicyNames(), ", ")+")")
	tf.register(cmd)
	return cmd
}

func (a *app) runCheck(cmd *cobra.Command, p nsfmt.Policy, tf *targetFlags) error {
	if err := a.load(cmd); err != nil {
		return a.fail(cmd, err)
	}
	targets, baseDir, err := a.resolveTargets(tf)
	if err != nil {
		return a.fail(cmd, err)
	}

	reports, err := a.runTargets(cmd.Context(), targets, baseDir, p, runMode{dryRun: true})
	renderSummary(a.stdout, p, reports)
	renderFiles(a.stdout, reports, runner.OutcomeWouldChange, "~")
	if err != nil {
		return a.fail(cmd, asServiceError(err))
	}
	if failErr := failures(reports); failErr != nil {
		renderFiles(a.stderr, reports, runner.OutcomeFailed, "✗")
		return a.fail(cmd, newServiceError(
			fmt.Errorf("%d file(s) failed: %w", countFailed(reports), failErr),
			issueFor(failErr), ""))
	}

	pending := 0
	for _, tr := range reports {
		pending += tr.report.Count(runner.OutcomeWouldChange)
	}
	if pending > 0 {
		return a.fail(cmd, newServiceError(
			fmt.Errorf("%d file(s) would change under policy %q", pending, p.Name),
			issue.FilesWouldChangeId, ""))
	}
	fmt.Fprintln(a.stdout, SuccessStyle.Render("✓ all files are up to date"))
	return nil
}
