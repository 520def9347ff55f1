// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

var (
	// DefaultHeaderPatterns lists every file directly inside the header directory.
	DefaultHeaderPatterns = []string{"*"}
	// DefaultSourcePatterns lists the implementation files of the source directory.
	DefaultSourcePatterns = []string{"*.cpp"}

	// ErrDirNotFound is the sentinel error wrapped by DirNotFoundError.
	ErrDirNotFound = errors.New("directory not found")
	// ErrInvalidPattern is the sentinel error wrapped by InvalidPatternError.
	ErrInvalidPattern = errors.New("invalid glob pattern")
	// ErrNoFileSets is returned for a target without header or source set.
	ErrNoFileSets = errors.New("target has no header or source file set")
)

type (
	// FileSet is a directory (relative to the target root) and the glob
	// patterns selecting files inside it. Patterns are non-recursive unless
	// they contain "**".
	FileSet struct {
		Dir      string
		Patterns []string
	}

	// Target describes the files of one namespace run.
	Target struct {
		Root    string
		Headers *FileSet
		Sources *FileSet
		// Skip holds base file names that are never processed.
		Skip []string
	}

	// Files is the result of Discover.
	Files struct {
		// Paths are the selected files, sorted and de-duplicated.
		Paths []string
		// Skipped are matched files excluded by the skip list.
		Skipped []string
	}

	// DirNotFoundError is returned when a file set directory does not exist.
	// It wraps ErrDirNotFound for errors.Is() compatibility.
	DirNotFoundError struct {
		Path string
	}

	// InvalidPatternError is returned for a malformed glob pattern.
	// It wraps ErrInvalidPattern for errors.Is() compatibility.
	InvalidPatternError struct {
		Pattern string
	}
)

// Error implements the error interface for DirNotFoundError.
func (e *DirNotFoundError) Error() string {
	return fmt.Sprintf("directory not found: %s", e.Path)
}

// Unwrap returns ErrDirNotFound for errors.Is() compatibility.
func (e *DirNotFoundError) Unwrap() error { return ErrDirNotFound }

// Error implements the error interface for InvalidPatternError.
func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid glob pattern %q", e.Pattern)
}

// Unwrap returns ErrInvalidPattern for errors.Is() compatibility.
func (e *InvalidPatternError) Unwrap() error { return ErrInvalidPattern }

// Validate checks that the target has at least one file set and that every
// pattern is a valid doublestar glob. It does not touch the filesystem.
func (t Target) Validate() error {
	if t.Headers == nil && t.Sources == nil {
		return ErrNoFileSets
	}
	for _, set := range t.sets() {
		for _, pat := range set.Patterns {
			if !doublestar.ValidatePattern(pat) {
				return &InvalidPatternError{Pattern: pat}
			}
		}
	}
	return nil
}

// Patterns returns root-relative, slash-separated globs covering every file
// set of the target, suitable for matching filesystem events.
func (t Target) Patterns() []string {
	var out []string
	for _, set := range t.sets() {
		dir := filepath.ToSlash(filepath.Clean(set.Dir))
		for _, pat := range set.Patterns {
			if dir == "." {
				out = append(out, pat)
				continue
			}
			out = append(out, path.Join(dir, pat))
		}
	}
	return out
}

// IsSkipped reports whether the file's base name is on the skip list.
func (t Target) IsSkipped(file string) bool {
	return slices.Contains(t.Skip, filepath.Base(file))
}

// sets returns the configured file sets with default patterns applied.
func (t Target) sets() []FileSet {
	var sets []FileSet
	if t.Headers != nil {
		sets = append(sets, withDefaults(*t.Headers, DefaultHeaderPatterns))
	}
	if t.Sources != nil {
		sets = append(sets, withDefaults(*t.Sources, DefaultSourcePatterns))
	}
	return sets
}

func withDefaults(set FileSet, patterns []string) FileSet {
	if len(set.Patterns) == 0 {
		set.Patterns = slices.Clone(patterns)
	}
	return set
}

// Discover lists the files selected by the target. Directories are never
// returned, and a missing file set directory is an error.
func Discover(t Target) (*Files, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	files := &Files{}

	for _, set := range t.sets() {
		dir := filepath.Join(t.Root, set.Dir)
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return nil, &DirNotFoundError{Path: dir}
		}

		fsys := os.DirFS(dir)
		for _, pat := range set.Patterns {
			matches, err := doublestar.Glob(fsys, pat, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("glob %q in %s: %w", pat, dir, err)
			}
			for _, m := range matches {
				full := filepath.Join(dir, filepath.FromSlash(m))
				if _, dup := seen[full]; dup {
					continue
				}
				seen[full] = struct{}{}
				if t.IsSkipped(full) {
					files.Skipped = append(files.Skipped, full)
					continue
				}
				files.Paths = append(files.Paths, full)
			}
		}
	}

	slices.Sort(files.Paths)
	slices.Sort(files.Skipped)
	return files, nil
}

// Contains reports whether path is one of the selected files.
func (f *Files) Contains(path string) bool {
	_, found := slices.BinarySearch(f.Paths, path)
	return found
}
