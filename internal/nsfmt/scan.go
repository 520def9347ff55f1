// SPDX-License-Identifier: MPL-2.0

package nsfmt

import "strings"

// ScanOptions controls where the prelude ends.
type ScanOptions struct {
	ClassifyOptions

	// IncludeComments extends the prelude over leading comments, including
	// the continuation lines of a multi-line block comment.
	IncludeComments bool
}

// Split returns the index of the first body line: every line before it is a
// directive or blank (or a comment when IncludeComments is set). When the
// whole input is prelude, Split returns len(lines).
func Split(lines []string, opts ScanOptions) int {
	inBlock := false
	for i, line := range lines {
		if inBlock {
			if strings.Contains(line, "*/") {
				inBlock = false
			}
			continue
		}

		switch Classify(line, opts.ClassifyOptions) {
		case KindDirective, KindBlank:
			continue
		case KindComment:
			if !opts.IncludeComments {
				return i
			}
			inBlock = opensBlockComment(line)
		default:
			return i
		}
	}
	return len(lines)
}

// opensBlockComment reports whether a comment line leaves a /* comment open
// at its end.
func opensBlockComment(line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "/*") {
		return false
	}
	return strings.LastIndex(trimmed, "/*") > strings.LastIndex(trimmed, "*/")
}
