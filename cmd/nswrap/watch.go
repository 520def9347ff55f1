// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rtxplore/nswrap/internal/config"
	"github.com/rtxplore/nswrap/internal/nsfmt"
	"github.com/rtxplore/nswrap/internal/runner"
	"github.com/rtxplore/nswrap/internal/watch"
)

type watchFlags struct {
	policyName  string
	clearScreen bool
	debounce    time.Duration
}

func newWatchCommand(a *app) *cobra.Command {
	var (
		tf targetFlags
		wf watchFlags
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Apply a policy whenever target files change",
		Long: `Apply a policy to every target once, then watch the target directories
and re-apply it to files as they are saved.

Files whose content would not change are left untouched, so the rewrites
made by nswrap itself do not trigger another round.`,
		Example: `  nswrap watch
  nswrap watch --policy normalize --target gfx --clear`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := parsePolicyFlag(wf.policyName)
			if err != nil {
				return a.fail(cmd, err)
			}
			return a.runWatch(cmd, p, &tf, wf)
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&wf.policyName, "policy", "p", nsfmt.PolicyWrap.Name,
		"policy to apply ("+strings.Join(nsfmt.PolicyNames(), ", ")+")")
	fs.BoolVar(&wf.clearScreen, "clear", false, "clear the screen before each run")
	fs.DurationVar(&wf.debounce, "debounce", 0, "quiet period before a run (default 300ms)")
	tf.register(cmd)
	return cmd
}

func (a *app) runWatch(cmd *cobra.Command, p nsfmt.Policy, tf *targetFlags, wf watchFlags) error {
	if err := a.load(cmd); err != nil {
		return a.fail(cmd, err)
	}
	targets, baseDir, err := a.resolveTargets(tf)
	if err != nil {
		return a.fail(cmd, err)
	}

	ctx := cmd.Context()
	mode := runMode{skipUnchanged: true}

	// Initial pass. Per-file failures are reported but do not stop watching.
	reports, err := a.runTargets(ctx, targets, baseDir, p, mode)
	renderSummary(a.stdout, p, reports)
	if err != nil {
		return a.fail(cmd, asServiceError(err))
	}
	renderFiles(a.stderr, reports, runner.OutcomeFailed, "✗")

	watchers := make([]*watch.Watcher, 0, len(targets))
	for _, t := range targets {
		w, err := a.newTargetWatcher(t, baseDir, p, mode, wf)
		if err != nil {
			return a.fail(cmd, err)
		}
		watchers = append(watchers, w)
	}

	fmt.Fprintf(a.stdout, "%s %s\n",
		VerboseStyle.Render(fmt.Sprintf("Watching %d target(s)", len(watchers))),
		SubtitleStyle.Render("(press Ctrl+C to stop)"))

	g, gctx := errgroup.WithContext(ctx)
	for _, w := range watchers {
		g.Go(func() error { return w.Run(gctx) })
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return a.fail(cmd, err)
	}
	return nil
}

// newTargetWatcher watches the file set directories of t and re-applies p
// to the changed files that the target selects.
func (a *app) newTargetWatcher(t config.TargetConfig, baseDir string, p nsfmt.Policy, mode runMode, wf watchFlags) (*watch.Watcher, error) {
	tr, err := a.prepare(t, baseDir, p, mode)
	if err != nil {
		return nil, err
	}

	var dirs []string
	for _, set := range []*config.FileSetConfig{t.Headers, t.Sources} {
		if set != nil {
			dirs = append(dirs, set.Dir)
		}
	}

	logger := a.logger.With("target", string(t.Name))
	return watch.New(watch.Config{
		Patterns:    tr.discovery.Patterns(),
		Dirs:        dirs,
		Debounce:    wf.debounce,
		ClearScreen: wf.clearScreen,
		BaseDir:     tr.discovery.Root,
		Stdout:      a.stdout,
		Logger:      logger,
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintf(a.stdout, "\n%s\n", VerboseHighlightStyle.Render(
				fmt.Sprintf("→ Detected %d change(s) in %s", len(changed), t.Name)))

			// Rediscover so files created after startup are picked up and
			// skip-listed files stay excluded.
			files, err := tr.discover()
			if err != nil {
				return err
			}
			paths := make([]string, 0, len(changed))
			for _, rel := range changed {
				path := filepath.Join(tr.discovery.Root, filepath.FromSlash(rel))
				if files.Contains(path) {
					paths = append(paths, path)
				}
			}
			if len(paths) == 0 {
				logger.Debug("no selected files changed", "changed", changed)
				return nil
			}

			report, err := tr.runner.Run(ctx, paths)
			reports := []*targetReport{{target: t, report: report}}
			renderSummary(a.stdout, p, reports)
			if err != nil {
				return err
			}
			return report.Err()
		},
	})
}
