// SPDX-License-Identifier: MPL-2.0

package nsfmt

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// mojibakeBOM is a UTF-8 byte-order mark that was decoded as Latin-1 and
// re-encoded as UTF-8 by some earlier tool.
const mojibakeBOM = "\u00ef\u00bb\u00bf"

// ErrInvalidEncoding is the sentinel error wrapped by DecodeError.
var ErrInvalidEncoding = errors.New("invalid UTF-8 text")

type (
	// SourceText is a decoded source file: LF-split lines without
	// terminators, plus what was normalized away on read.
	SourceText struct {
		Lines []string
		// HadBOM is true when one or more byte-order marks were stripped.
		HadBOM bool
		// HadCRLF is true when CRLF or lone CR terminators were converted.
		HadCRLF bool
	}

	// DecodeError is returned when the input is not valid UTF-8.
	// It wraps ErrInvalidEncoding for errors.Is() compatibility.
	DecodeError struct {
		// Offset is the byte offset of the first invalid sequence.
		Offset int
	}
)

// Error implements the error interface for DecodeError.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid UTF-8 text at byte %d", e.Offset)
}

// Unwrap returns ErrInvalidEncoding for errors.Is() compatibility.
func (e *DecodeError) Unwrap() error { return ErrInvalidEncoding }

// Decode validates raw as UTF-8, strips byte-order marks, normalizes line
// endings to LF and splits the text into lines.
func Decode(raw []byte) (*SourceText, error) {
	if !utf8.Valid(raw) {
		return nil, &DecodeError{Offset: invalidOffset(raw)}
	}

	decoded, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), raw)
	if err != nil {
		return nil, fmt.Errorf("strip byte-order mark: %w", err)
	}

	text := string(decoded)
	for {
		trimmed := strings.TrimPrefix(strings.TrimPrefix(text, "\ufeff"), mojibakeBOM)
		if trimmed == text {
			break
		}
		text = trimmed
	}

	src := &SourceText{HadBOM: len(text) != len(raw)}
	if strings.Contains(text, "\r") {
		src.HadCRLF = true
		text = strings.ReplaceAll(text, "\r\n", "\n")
		text = strings.ReplaceAll(text, "\r", "\n")
	}
	src.Lines = splitLines(text)
	return src, nil
}

// Encode joins lines with LF and appends exactly one trailing newline.
func Encode(lines []string) string {
	return strings.Join(lines, "\n") + "\n"
}

// splitLines splits LF-terminated text; a final terminator does not produce
// an extra empty line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

func invalidOffset(raw []byte) int {
	for i := 0; i < len(raw); {
		r, size := utf8.DecodeRune(raw[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(raw)
}
