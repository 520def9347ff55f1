// SPDX-License-Identifier: MPL-2.0

package nsfmt

import "strings"

const (
	// KindBody is any line that must live inside the namespace block.
	KindBody LineKind = iota
	// KindDirective is an #include or #pragma line (any # line with AnyDirective).
	KindDirective
	// KindComment is a line that opens a line or block comment.
	KindComment
	// KindBlank is an empty or whitespace-only line.
	KindBlank
)

type (
	// LineKind is the classification of a single source line.
	LineKind int

	// ClassifyOptions tunes the line classifier.
	ClassifyOptions struct {
		// AnyDirective classifies every preprocessor line (#define, #if, ...)
		// as a directive instead of only #include and #pragma.
		AnyDirective bool
	}
)

// String returns the lower-case name of the kind.
func (k LineKind) String() string {
	switch k {
	case KindDirective:
		return "directive"
	case KindComment:
		return "comment"
	case KindBlank:
		return "blank"
	default:
		return "body"
	}
}

// Classify reports the kind of a single line. It never fails.
func Classify(line string, opts ClassifyOptions) LineKind {
	trimmed := strings.TrimLeft(line, " \t\f\v")
	switch {
	case strings.TrimSpace(trimmed) == "":
		return KindBlank
	case strings.HasPrefix(trimmed, "#include"), strings.HasPrefix(trimmed, "#pragma"):
		return KindDirective
	case opts.AnyDirective && strings.HasPrefix(trimmed, "#"):
		return KindDirective
	case strings.HasPrefix(trimmed, "//"), strings.HasPrefix(trimmed, "/*"):
		return KindComment
	default:
		return KindBody
	}
}

// isBlank reports whether line is empty after trimming whitespace.
func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// trimBlankLines drops leading and trailing blank lines.
func trimBlankLines(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && isBlank(lines[start]) {
		start++
	}
	for end > start && isBlank(lines[end-1]) {
		end--
	}
	return lines[start:end]
}
