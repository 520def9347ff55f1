// SPDX-License-Identifier: MPL-2.0

package nsfmt

import (
	"regexp"
	"slices"
)

// markers matches and renders the canonical namespace open/close lines for
// one namespace name.
type markers struct {
	openLine  string
	closeLine string

	openHead   *regexp.Regexp
	openInline *regexp.Regexp
	openBrace  *regexp.Regexp
	close      *regexp.Regexp
}

var openBracePattern = regexp.MustCompile(`^\s*\{\s*$`)

func newMarkers(name Namespace) *markers {
	quoted := regexp.QuoteMeta(string(name))
	return &markers{
		openLine:   "namespace " + string(name),
		closeLine:  "}  // namespace " + string(name),
		openHead:   regexp.MustCompile(`^\s*namespace\s+` + quoted + `\s*$`),
		openInline: regexp.MustCompile(`^\s*namespace\s+` + quoted + `\s*\{\s*$`),
		openBrace:  openBracePattern,
		close:      regexp.MustCompile(`^\s*\}\s*//\s*namespace\s+` + quoted + `\s*$`),
	}
}

// matchOpen returns how many lines starting at i form an open marker, or 0.
// Both "namespace N {" and "namespace N" followed by "{" on a later line
// (blank lines allowed in between) are recognized.
func (m *markers) matchOpen(lines []string, i int) int {
	if i >= len(lines) {
		return 0
	}
	if m.openInline.MatchString(lines[i]) {
		return 1
	}
	if !m.openHead.MatchString(lines[i]) {
		return 0
	}
	j := i + 1
	for j < len(lines) && isBlank(lines[j]) {
		j++
	}
	if j < len(lines) && m.openBrace.MatchString(lines[j]) {
		return j - i + 1
	}
	return 0
}

// containsOpen reports whether any open marker exists in lines.
func (m *markers) containsOpen(lines []string) bool {
	for i := range lines {
		if m.matchOpen(lines, i) > 0 {
			return true
		}
	}
	return false
}

// leadingSkip is what may precede an anchored open marker: blank lines,
// comments and any preprocessor line.
var leadingSkip = ScanOptions{
	ClassifyOptions: ClassifyOptions{AnyDirective: true},
	IncludeComments: true,
}

// stripAnchored removes the run of open markers at the start of body and the
// run of close markers at its end. Blank lines, comments and preprocessor
// lines in front of an open marker are kept; only blank lines may trail a
// close marker. Repeats until no marker is left at either edge.
func (m *markers) stripAnchored(body []string) []string {
	out := slices.Clone(body)
	for {
		i := Split(out, leadingSkip)
		n := m.matchOpen(out, i)
		if n == 0 {
			break
		}
		out = slices.Delete(out, i, i+n)
	}
	for {
		end := len(out)
		for end > 0 && isBlank(out[end-1]) {
			end--
		}
		if end == 0 || !m.close.MatchString(out[end-1]) {
			break
		}
		out = slices.Delete(out, end-1, end)
	}
	return out
}

// stripEverywhere removes every open marker and close marker line, wherever
// it appears, until none is left.
func (m *markers) stripEverywhere(lines []string) []string {
	out := slices.Clone(lines)
	for {
		next := make([]string, 0, len(out))
		for i := 0; i < len(out); {
			if n := m.matchOpen(out, i); n > 0 {
				i += n
				continue
			}
			if m.close.MatchString(out[i]) {
				i++
				continue
			}
			next = append(next, out[i])
			i++
		}
		if len(next) == len(out) {
			return next
		}
		out = next
	}
}
