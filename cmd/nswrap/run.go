// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rtxplore/nswrap/internal/config"
	"github.com/rtxplore/nswrap/internal/discovery"
	"github.com/rtxplore/nswrap/internal/issue"
	"github.com/rtxplore/nswrap/internal/nsfmt"
	"github.com/rtxplore/nswrap/internal/runner"
)

type (
	// runMode selects how a policy run treats the files it transforms.
	runMode struct {
		dryRun        bool
		skipUnchanged bool
	}

	// targetRun is the prepared state of one target: its resolved file set
	// and a runner bound to its namespace.
	targetRun struct {
		target    config.TargetConfig
		discovery discovery.Target
		runner    *runner.Runner
	}

	// targetReport is the outcome of running a policy over one target.
	targetReport struct {
		target   config.TargetConfig
		report   *runner.Report
		excluded int
	}
)

// summaryOrder is the order outcome counts appear in a summary line.
var summaryOrder = []runner.Outcome{
	runner.OutcomeWritten,
	runner.OutcomeWouldChange,
	runner.OutcomeUnchanged,
	runner.OutcomeSkippedWrapped,
	runner.OutcomeFailed,
	runner.OutcomeCanceled,
}

// prepare builds the runner of a target. baseDir resolves relative roots.
func (a *app) prepare(t config.TargetConfig, baseDir string, policy nsfmt.Policy, mode runMode) (*targetRun, error) {
	engine, err := nsfmt.NewEngine(nsfmt.Options{Namespace: t.Namespace})
	if err != nil {
		return nil, newServiceError(fmt.Errorf("target %q: %w", t.Name, err), issue.InvalidNamespaceId, "")
	}
	r, err := runner.New(runner.Options{
		Engine:        engine,
		Policy:        policy,
		Workers:       a.cfg.Workers,
		FailFast:      a.cfg.FailFast,
		DryRun:        mode.dryRun,
		SkipUnchanged: mode.skipUnchanged,
		Logger:        a.logger.With("target", string(t.Name)),
	})
	if err != nil {
		return nil, err
	}
	return &targetRun{target: t, discovery: t.Discovery(baseDir), runner: r}, nil
}

// discover lists the target's files, wrapping failures with the target name.
func (tr *targetRun) discover() (*discovery.Files, error) {
	files, err := discovery.Discover(tr.discovery)
	if err != nil {
		return nil, newServiceError(
			issue.NewErrorContext().
				WithOperation("discover files").
				WithResource(string(tr.target.Name)).
				WithSuggestion("Check the target's root, headers and sources directories").
				Wrap(err).
				BuildError(),
			issueFor(err), "")
	}
	return files, nil
}

// runTargets applies policy to every file of every target, one target after
// another. It stops early only on discovery errors, cancellation or a
// fail-fast failure; per-file failures are left in the reports.
func (a *app) runTargets(ctx context.Context, targets []config.TargetConfig, baseDir string, policy nsfmt.Policy, mode runMode) ([]*targetReport, error) {
	reports := make([]*targetReport, 0, len(targets))
	for _, t := range targets {
		tr, err := a.prepare(t, baseDir, policy, mode)
		if err != nil {
			return reports, err
		}
		files, err := tr.discover()
		if err != nil {
			return reports, err
		}
		for _, p := range files.Skipped {
			a.logger.Debug("excluded by skip list", "target", string(t.Name), "path", p)
		}

		report, err := tr.runner.Run(ctx, files.Paths)
		reports = append(reports, &targetReport{target: t, report: report, excluded: len(files.Skipped)})
		if err != nil {
			return reports, err
		}
	}
	return reports, nil
}

// failures collects the failed results of all reports into one error, or
// nil when every file succeeded.
func failures(reports []*targetReport) error {
	var errs []error
	for _, tr := range reports {
		if tr.report != nil {
			if err := tr.report.Err(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// countFailed returns the number of failed files across reports.
func countFailed(reports []*targetReport) int {
	n := 0
	for _, tr := range reports {
		if tr.report != nil {
			n += tr.report.Count(runner.OutcomeFailed)
		}
	}
	return n
}

// renderSummary writes one line per target with its outcome counts.
func renderSummary(w io.Writer, policy nsfmt.Policy, reports []*targetReport) {
	for _, tr := range reports {
		fmt.Fprintf(w, "%s %s %s: %s\n",
			TitleStyle.Render(policy.Name),
			CmdStyle.Render(string(tr.target.Name)),
			SubtitleStyle.Render("("+tr.target.Namespace.String()+")"),
			summaryCounts(tr))
	}
}

func summaryCounts(tr *targetReport) string {
	if tr.report == nil || len(tr.report.Results) == 0 {
		return VerboseStyle.Render("no files")
	}
	var parts []string
	for _, o := range summaryOrder {
		n := tr.report.Count(o)
		if n == 0 {
			continue
		}
		parts = append(parts, outcomeStyle(o).Render(fmt.Sprintf("%d %s", n, o)))
	}
	if tr.excluded > 0 {
		parts = append(parts, VerboseStyle.Render(fmt.Sprintf("%d excluded", tr.excluded)))
	}
	return strings.Join(parts, ", ")
}

// renderFiles lists the files with outcome o, one per line, prefixed by mark.
func renderFiles(w io.Writer, reports []*targetReport, o runner.Outcome, mark string) {
	style := outcomeStyle(o)
	for _, tr := range reports {
		if tr.report == nil {
			continue
		}
		for _, res := range tr.report.Filter(o) {
			fmt.Fprintf(w, "  %s %s\n", style.Render(mark), displayPath(res.Path))
		}
	}
}

// displayPath shortens path relative to the working directory when it lies
// below it, and uses forward slashes.
func displayPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return filepath.ToSlash(path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(wd, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
