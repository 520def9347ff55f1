// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/rtxplore/nswrap/internal/nsfmt"
)

// TempPattern is the os.CreateTemp pattern of in-flight writes. Watchers
// ignore files matching it.
const TempPattern = ".nswrap-*.tmp"

// ErrNoEngine is returned by New when Options.Engine is nil.
var ErrNoEngine = errors.New("runner: engine is required")

type (
	// Options configures a Runner.
	Options struct {
		Engine *nsfmt.Engine
		Policy nsfmt.Policy
		// Workers bounds concurrent files. Zero means runtime.NumCPU().
		Workers int
		// FailFast cancels the remaining files after the first failure.
		FailFast bool
		// DryRun computes outcomes without writing.
		DryRun bool
		// SkipUnchanged does not rewrite files whose output equals the input.
		SkipUnchanged bool
		// Logger receives per-file records. Nil discards them.
		Logger *log.Logger
	}

	// Runner applies one policy to files.
	Runner struct {
		opts Options
		log  *log.Logger
	}
)

// New validates opts and returns a Runner.
func New(opts Options) (*Runner, error) {
	if opts.Engine == nil {
		return nil, ErrNoEngine
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{opts: opts, log: logger.With("policy", opts.Policy.Name)}, nil
}

// Policy returns the policy the runner applies.
func (r *Runner) Policy() nsfmt.Policy { return r.opts.Policy }

// Run processes paths concurrently and returns one result per path in
// input order.
//
// Without FailFast a failing file is recorded and the others continue; the
// returned error is non-nil only when ctx is canceled. With FailFast the
// first failure cancels files that have not started yet and is returned.
func (r *Runner) Run(ctx context.Context, paths []string) (*Report, error) {
	report := &Report{Results: make([]FileResult, len(paths))}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				report.Results[i] = FileResult{Path: path, Outcome: OutcomeCanceled, Err: err}
				return nil
			}
			res := r.ProcessFile(path)
			report.Results[i] = res
			if res.Outcome == OutcomeFailed && r.opts.FailFast {
				return res.Err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// ProcessFile reads, transforms and (unless dry-running) rewrites one file.
func (r *Runner) ProcessFile(path string) FileResult {
	res := r.processFile(path)
	logger := r.log.With("path", path, "outcome", res.Outcome.String())
	switch res.Outcome {
	case OutcomeFailed:
		logger.Error("file failed", "err", res.Err)
	case OutcomeSkippedWrapped:
		logger.Debug("already wrapped")
	default:
		logger.Debug("processed", "before", res.Before, "after", res.After,
			"bom", res.HadBOM, "crlf", res.HadCRLF)
	}
	return res
}

func (r *Runner) processFile(path string) FileResult {
	res := FileResult{Path: path}
	fail := func(op string, err error) FileResult {
		res.Outcome = OutcomeFailed
		res.Err = &FileError{Op: op, Path: path, Err: err}
		return res
	}

	info, err := os.Stat(path)
	if err != nil {
		return fail("read", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fail("read", err)
	}
	res.Before = digestOf(raw)

	out, err := r.opts.Engine.Transform(raw, r.opts.Policy)
	if err != nil {
		return fail("transform", err)
	}
	res.HadBOM = out.Source.HadBOM
	res.HadCRLF = out.Source.HadCRLF
	if out.Skipped {
		res.Outcome = OutcomeSkippedWrapped
		res.After = res.Before
		return res
	}

	res.After = digestOf(out.Output)
	res.Changed = res.Before != res.After

	switch {
	case r.opts.DryRun && res.Changed:
		res.Outcome = OutcomeWouldChange
		return res
	case r.opts.DryRun, r.opts.SkipUnchanged && !res.Changed:
		res.Outcome = OutcomeUnchanged
		return res
	}

	if err := WriteFileAtomic(path, out.Output, info.Mode().Perm()); err != nil {
		return fail("write", err)
	}
	if res.Changed {
		res.Outcome = OutcomeWritten
	} else {
		res.Outcome = OutcomeUnchanged
	}
	return res
}

// WriteFileAtomic replaces path with data. The bytes go to a temporary file
// in the same directory, are synced, and the file is renamed over path, so
// readers see either the old or the new content.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), TempPattern)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
