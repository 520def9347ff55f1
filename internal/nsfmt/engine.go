// SPDX-License-Identifier: MPL-2.0

package nsfmt

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// Options configures an Engine.
	Options struct {
		// Namespace is the qualified name used for every file of a run.
		Namespace Namespace
	}

	// Engine applies transform policies for a single namespace. It holds no
	// per-file state and is safe for concurrent use.
	Engine struct {
		ns Namespace
		m  *markers
	}

	// Result is the outcome of transforming one file's text.
	Result struct {
		// Output is the transformed text. It is nil when Skipped is true.
		Output []byte
		// Skipped is true when the policy left the file untouched.
		Skipped bool
		// Prelude and Body are the regions the output was composed from,
		// with surrounding blank lines trimmed.
		Prelude []string
		Body    []string
		// Source is the decoded input.
		Source *SourceText
	}
)

// NewEngine validates opts and compiles the marker patterns.
func NewEngine(opts Options) (*Engine, error) {
	if valid, errs := opts.Namespace.IsValid(); !valid {
		return nil, errors.Join(errs...)
	}
	return &Engine{ns: opts.Namespace, m: newMarkers(opts.Namespace)}, nil
}

// Namespace returns the namespace the engine wraps files in.
func (e *Engine) Namespace() Namespace { return e.ns }

// OpenMarker returns the canonical two-line open marker.
func (e *Engine) OpenMarker() []string { return []string{e.m.openLine, "{"} }

// CloseMarker returns the canonical close marker line.
func (e *Engine) CloseMarker() string { return e.m.closeLine }

// Transform runs policy p over one file's raw bytes.
//
// The file is decoded (BOM stripped, LF line endings), checked for an
// existing block when the policy skips wrapped files, stripped of old
// markers, split into prelude and body, and composed into canonical form.
func (e *Engine) Transform(raw []byte, p Policy) (*Result, error) {
	src, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode source: %w", err)
	}

	lines := src.Lines
	if p.SkipWrapped && e.m.containsOpen(lines) {
		return &Result{Skipped: true, Source: src}, nil
	}

	// Markers are removed before the prelude is split off, so directives
	// that sat below a stray open marker end up outside the new block.
	switch p.Strip {
	case StripAnchored:
		lines = e.m.stripAnchored(lines)
	case StripEverywhere:
		lines = e.m.stripEverywhere(lines)
	}

	idx := Split(lines, ScanOptions{
		ClassifyOptions: ClassifyOptions{AnyDirective: p.AnyDirective},
		IncludeComments: p.PreludeComments,
	})
	prelude, body := lines[:idx], lines[idx:]

	return &Result{
		Output:  []byte(e.Compose(prelude, body)),
		Prelude: trimBlankLines(prelude),
		Body:    trimBlankLines(body),
		Source:  src,
	}, nil
}

// TransformString is Transform for in-memory text. A skipped file is
// returned unchanged.
func (e *Engine) TransformString(text string, p Policy) (string, error) {
	res, err := e.Transform([]byte(text), p)
	if err != nil {
		return "", err
	}
	if res.Skipped {
		return text, nil
	}
	return string(res.Output), nil
}

// IsWrapped reports whether text contains an open marker for the engine's
// namespace anywhere.
func (e *Engine) IsWrapped(text string) bool {
	return e.m.containsOpen(splitLines(text))
}

// Strip removes the open markers that follow the directive prelude and the
// close markers at the end of text. Text that is not a marker is kept as is.
func (e *Engine) Strip(text string) string {
	lines := splitLines(text)
	idx := Split(lines, ScanOptions{})
	out := append(lines[:idx:idx], e.m.stripAnchored(lines[idx:])...)
	if len(out) == 0 {
		return ""
	}
	joined := strings.Join(out, "\n")
	if strings.HasSuffix(text, "\n") {
		joined += "\n"
	}
	return joined
}

// StripLines removes marker runs at the start and end of a body region.
func (e *Engine) StripLines(body []string) []string {
	return e.m.stripAnchored(body)
}

// StripAllLines removes every marker in lines.
func (e *Engine) StripAllLines(lines []string) []string {
	return e.m.stripEverywhere(lines)
}

// Compose renders prelude and body in canonical form: the prelude, a blank
// separator, the open marker, the padded body, the close marker and a single
// trailing newline. Blank lines around both regions are trimmed, and the
// separator and padding are omitted for empty regions.
func (e *Engine) Compose(prelude, body []string) string {
	prelude = trimBlankLines(prelude)
	body = trimBlankLines(body)

	lines := make([]string, 0, len(prelude)+len(body)+6)
	lines = append(lines, prelude...)
	if len(prelude) > 0 {
		lines = append(lines, "")
	}
	lines = append(lines, e.OpenMarker()...)
	if len(body) > 0 {
		lines = append(lines, "")
		lines = append(lines, body...)
		lines = append(lines, "")
	}
	lines = append(lines, e.m.closeLine)
	return Encode(lines)
}
