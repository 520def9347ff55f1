// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtxplore/nswrap/internal/issue"
	"github.com/rtxplore/nswrap/internal/nsfmt"
	"github.com/rtxplore/nswrap/internal/runner"
)

// policyCommands are the policies exposed as top-level commands.
var policyCommands = nsfmt.Policies()

var policyShort = map[string]string{
	nsfmt.PolicyWrap.Name:      "Wrap files that have no namespace block yet",
	nsfmt.PolicyNormalize.Name: "Collapse stray markers at the edges and re-wrap every file",
	nsfmt.PolicyReset.Name:     "Remove every namespace marker and rebuild the block",
}

// newPolicyCommand returns the command that applies p to the selected targets.
func newPolicyCommand(a *app, p nsfmt.Policy) *cobra.Command {
	var tf targetFlags
	cmd := &cobra.Command{
		Use:   p.Name,
		Short: policyShort[p.Name],
		Long: policyShort[p.Name] + `.

Files are selected per target from its headers and sources directories.
Every selected file is rewritten in place; a file that fails is reported
and the others are still processed unless --fail-fast is set.`,
		Example: fmt.Sprintf(`  nswrap %[1]s
  nswrap %[1]s --target gfx --target audio
  nswrap %[1]s --namespace engine::gfx --headers include/engine/gfx --sources src`, p.Name),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runPolicy(cmd, p, &tf)
		},
	}
	tf.register(cmd)
	return cmd
}

func (a *app) runPolicy(cmd *cobra.Command, p nsfmt.Policy, tf *targetFlags) error {
	if err := a.load(cmd); err != nil {
		return a.fail(cmd, err)
	}
	targets, baseDir, err := a.resolveTargets(tf)
	if err != nil {
		return a.fail(cmd, err)
	}

	reports, err := a.runTargets(cmd.Context(), targets, baseDir, p, runMode{})
	renderSummary(a.stdout, p, reports)
	if err != nil {
		return a.fail(cmd, asServiceError(err))
	}
	if failErr := failures(reports); failErr != nil {
		renderFiles(a.stderr, reports, runner.OutcomeFailed, "✗")
		return a.fail(cmd, newServiceError(
			fmt.Errorf("%d file(s) failed: %w", countFailed(reports), failErr),
			issueFor(failErr), ""))
	}
	return nil
}

// asServiceError attaches the matching catalog entry to err unless it
// already carries one.
func asServiceError(err error) error {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return err
	}
	return newServiceError(err, issueFor(err), "")
}

// parsePolicyFlag resolves a --policy value.
func parsePolicyFlag(name string) (nsfmt.Policy, error) {
	p, err := nsfmt.ParsePolicy(name)
	if err != nil {
		return nsfmt.Policy{}, issue.NewErrorContext().
			WithOperation("select policy").
			WithResource(name).
			WithSuggestion("Use one of the policies listed in 'nswrap --help'").
			Wrap(err).
			BuildError()
	}
	return p, nil
}
