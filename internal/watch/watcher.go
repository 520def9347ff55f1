// SPDX-License-Identifier: MPL-2.0

// Package watch provides file-watching with debounced re-execution.
//
// It monitors directories for files matching glob patterns and invokes a
// callback after a configurable debounce period. Events within the debounce
// window are coalesced so the callback fires once with the full set of
// changed paths.
package watch

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/rtxplore/nswrap/internal/runner"
)

// defaultDebounce is the delay before firing the onChange callback after the
// last filesystem event. Editors that write through a temp file and rename
// produce several events per save.
const defaultDebounce = 300 * time.Millisecond

// defaultIgnores lists path patterns that never trigger callbacks: VCS and
// IDE metadata, editor swap files, and the temp files of in-flight atomic
// writes.
var defaultIgnores = []string{
	"**/.git/**",
	"**/.vs/**",
	"**/.cache/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
	"**/" + runner.TempPattern,
}

// ErrAlreadyRunning is returned when Run is called more than once.
var ErrAlreadyRunning = errors.New("watch: Run called more than once")

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Patterns are doublestar glob patterns relative to BaseDir
		// (e.g., "include/engine/gfx/*") that select which files trigger
		// callbacks. An empty slice watches all non-ignored files.
		Patterns []string

		// Ignore are additional doublestar patterns merged with the
		// built-in default ignores.
		Ignore []string

		// Dirs are the directories (relative to BaseDir) registered
		// recursively with fsnotify. Empty means BaseDir itself.
		Dirs []string

		// Debounce is the quiet period after the last event before the callback
		// fires. Zero or negative values fall back to defaultDebounce.
		Debounce time.Duration

		// ClearScreen clears the terminal on Stdout before each callback.
		ClearScreen bool

		// BaseDir is the root all patterns are relative to. An empty value
		// defaults to the current working directory.
		BaseDir string

		// OnChange is called after the debounce window closes with the sorted,
		// deduplicated list of changed file paths (relative to BaseDir). A nil
		// callback is a no-op.
		OnChange func(ctx context.Context, changed []string) error

		// Stdout receives the clear-screen sequence. Nil means os.Stdout.
		Stdout io.Writer

		// Logger receives watcher diagnostics. Nil discards them.
		Logger *log.Logger
	}

	// Watcher monitors filesystem paths and fires a debounced callback when
	// matching files change. Run must be called exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		ignores  []string
		stdout   io.Writer
		log      *log.Logger
		debounce time.Duration
		baseDir  string
		started  atomic.Bool
	}
)

// Validate checks that every pattern is a valid doublestar glob.
func (c Config) Validate() error {
	if err := validatePatterns(c.Patterns, "watch"); err != nil {
		return err
	}
	return validatePatterns(c.Ignore, "ignore")
}

// New validates cfg, opens an fsnotify watcher and registers every
// non-ignored directory below Dirs.
func New(cfg Config) (*Watcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	baseDir, err := absBaseDir(cfg.BaseDir)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		cfg:      cfg,
		ignores:  slices.Concat(defaultIgnores, cfg.Ignore),
		stdout:   cmp.Or[io.Writer](cfg.Stdout, os.Stdout),
		log:      cfg.Logger,
		debounce: cfg.Debounce,
		baseDir:  baseDir,
	}
	if w.debounce <= 0 {
		w.debounce = defaultDebounce
	}
	if w.log == nil {
		w.log = log.New(io.Discard)
	}

	if w.fsw, err = fsnotify.NewWatcher(); err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	if err := w.addDirectories(); err != nil {
		if closeErr := w.fsw.Close(); closeErr != nil {
			w.log.Warn("close fsnotify after init failure", "err", closeErr)
		}
		return nil, err
	}
	return w, nil
}

func absBaseDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("watch: determine working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("watch: resolve base directory: %w", err)
	}
	return abs, nil
}

// BaseDir returns the absolute directory patterns are relative to.
func (w *Watcher) BaseDir() string { return w.baseDir }

// Run blocks until ctx is canceled, collecting filesystem events and
// calling OnChange once per quiet period. Cancellation returns nil; fatal
// fsnotify errors are returned.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	b := &batch{delay: w.debounce, pending: make(map[string]struct{})}
	b.fire = func() { w.dispatch(ctx, b) }

	defer func() {
		b.stop()
		if closeErr := w.fsw.Close(); closeErr != nil {
			w.log.Warn("close fsnotify", "err", closeErr)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if rel, keep := w.relevant(evt); keep {
				b.add(rel)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.log.Warn("fsnotify error", "err", err)
		}
	}
}

// relevant maps an event to its slash-separated path below BaseDir and
// reports whether it should be batched. Directories created after startup
// are registered on the way.
func (w *Watcher) relevant(evt fsnotify.Event) (string, bool) {
	if evt.Has(fsnotify.Create) {
		w.maybeAddDir(evt.Name)
	}
	if evt.Op == fsnotify.Chmod {
		return "", false
	}
	rel, err := filepath.Rel(w.baseDir, evt.Name)
	if err != nil {
		rel = evt.Name
	}
	rel = filepath.ToSlash(rel)
	if w.isIgnored(rel) || !w.matchesPatterns(rel) {
		return "", false
	}
	return rel, true
}

// dispatch hands the current batch to OnChange. It runs on the timer
// goroutine. While a callback is in flight, a new firing re-arms the timer
// instead of running concurrently.
func (w *Watcher) dispatch(ctx context.Context, b *batch) {
	if ctx.Err() != nil {
		return
	}
	if !b.busy.CompareAndSwap(false, true) {
		w.log.Debug("previous run still in progress, deferring")
		b.rearm()
		return
	}
	defer b.busy.Store(false)

	changed := b.take()
	if len(changed) == 0 {
		return
	}
	if w.cfg.ClearScreen {
		fmt.Fprint(w.stdout, "\033[2J\033[H")
	}
	if w.cfg.OnChange == nil {
		return
	}
	if err := w.cfg.OnChange(ctx, changed); err != nil {
		w.log.Error("change handler failed", "err", err)
	}
}

// batch accumulates changed paths until no event arrived for delay.
type batch struct {
	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	delay   time.Duration
	fire    func()
	busy    atomic.Bool
}

func (b *batch) add(rel string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[rel] = struct{}{}
	if b.timer == nil {
		b.timer = time.AfterFunc(b.delay, b.fire)
		return
	}
	b.timer.Reset(b.delay)
}

func (b *batch) rearm() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Reset(b.delay)
	}
}

// take returns the pending paths sorted and empties the batch.
func (b *batch) take() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	changed := slices.Sorted(maps.Keys(b.pending))
	clear(b.pending)
	return changed
}

func (b *batch) stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
	}
}

// addDirectories walks each configured directory and adds every non-ignored
// directory below it to the fsnotify watcher. Pattern filtering is applied
// when events arrive (see matchesPatterns).
func (w *Watcher) addDirectories() error {
	roots := []string{w.baseDir}
	if len(w.cfg.Dirs) > 0 {
		roots = roots[:0]
		for _, d := range w.cfg.Dirs {
			if filepath.IsAbs(d) {
				roots = append(roots, d)
			} else {
				roots = append(roots, filepath.Join(w.baseDir, d))
			}
		}
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return fmt.Errorf("watch: stat %q: %w", root, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("watch: %q is not a directory", root)
		}

		walkErr := filepath.WalkDir(root, func(path string, d os.DirEntry, walkDirErr error) error {
			if walkDirErr != nil {
				// Skip inaccessible directories rather than aborting the walk.
				w.log.Warn("skipping inaccessible path", "path", path, "err", walkDirErr)
				return nil //nolint:nilerr // intentional skip of inaccessible paths
			}
			if !d.IsDir() {
				return nil
			}
			if w.isIgnoredDir(path) {
				return filepath.SkipDir
			}
			if addErr := w.fsw.Add(path); addErr != nil {
				return fmt.Errorf("watch: add directory %q: %w", path, addErr)
			}
			return nil
		})
		if walkErr != nil {
			return fmt.Errorf("watch: walk directory tree: %w", walkErr)
		}
	}
	return nil
}

// maybeAddDir adds path to the fsnotify watcher if it is a directory and is
// not ignored.
func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if w.isIgnoredDir(path) {
		return
	}
	if addErr := w.fsw.Add(path); addErr != nil {
		w.log.Warn("add new directory", "path", path, "err", addErr)
	}
}

func (w *Watcher) isIgnoredDir(path string) bool {
	rel, err := filepath.Rel(w.baseDir, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return w.isIgnored(rel) || w.isIgnored(rel+"/")
}

// isIgnored returns true if the slash-separated path relative to BaseDir
// matches any ignore pattern.
func (w *Watcher) isIgnored(rel string) bool {
	return matchAny(w.ignores, rel)
}

// matchesPatterns returns true if rel matches at least one watch pattern.
// When no patterns are configured, all paths match.
func (w *Watcher) matchesPatterns(rel string) bool {
	if len(w.cfg.Patterns) == 0 {
		return true
	}
	return matchAny(w.cfg.Patterns, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if matched, matchErr := doublestar.Match(pat, rel); matchErr == nil && matched {
			return true
		}
	}
	return false
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}

// validatePatterns checks that every pattern in the slice is a valid doublestar
// glob. The label (e.g., "watch" or "ignore") is used in error messages.
func validatePatterns(patterns []string, label string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid %s pattern %q: %w", label, pat, doublestar.ErrBadPattern)
		}
	}
	return nil
}
