// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

// ErrFileTooLarge is the sentinel error wrapped by FileTooLargeError.
var ErrFileTooLarge = errors.New("file too large")

type (
	// ValidationError is a check that failed after schema validation, such as
	// a duplicate target name. It has no CUE position, so the field is named
	// by CUEPath instead.
	ValidationError struct {
		// FilePath is the file being validated.
		FilePath string
		// CUEPath is the JSON path to the invalid value (e.g., "targets[0].name").
		CUEPath string
		// Message is the validation error message.
		Message string
		// Suggestion is an optional hint for fixing the error.
		Suggestion string
		// Err is the underlying cause, if any.
		Err error
	}

	// FileTooLargeError is returned for input above the configured size
	// limit. It wraps ErrFileTooLarge for errors.Is() compatibility.
	FileTooLargeError struct {
		FilePath string
		Size     int64
		Max      int64
	}
)

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.CUEPath == "" {
		return e.FilePath + ": " + e.Message
	}
	return e.FilePath + ": " + e.CUEPath + ": " + e.Message
}

// Unwrap returns the underlying cause.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Error implements the error interface for FileTooLargeError.
func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("%s: file size %d bytes exceeds maximum %d bytes", e.FilePath, e.Size, e.Max)
}

// Unwrap returns ErrFileTooLarge for errors.Is() compatibility.
func (e *FileTooLargeError) Unwrap() error { return ErrFileTooLarge }

// CheckFileSize returns a *FileTooLargeError when data exceeds maxSize.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if size := int64(len(data)); size > maxSize {
		return &FileTooLargeError{FilePath: filename, Size: size, Max: maxSize}
	}
	return nil
}

// FormatError rewrites a CUE error as "<file>: <json-path>: <message>", one
// line per underlying error, for example
//
//	nswrap.cue: targets[0].namespace: invalid value "engine gfx"
//
// Errors that are not CUE errors are prefixed with the file path.
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	lines := make([]string, 0, len(list))
	for _, e := range list {
		raw := cueerrors.Path(e)
		path := formatPath(raw)
		msg := e.Error()
		if path == "" {
			lines = append(lines, msg)
			continue
		}
		// CUE may already start the message with the field path, in either
		// notation.
		for _, prefix := range []string{path, strings.Join(raw, ".")} {
			if rest, ok := strings.CutPrefix(msg, prefix+":"); ok {
				msg = strings.TrimSpace(rest)
				break
			}
		}
		lines = append(lines, path+": "+msg)
	}

	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", filePath, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", filePath, strings.Join(lines, "\n  "))
}

// formatPath converts a CUE error path such as ["targets", "0", "namespace"]
// to JSON-path notation ("targets[0].namespace"). A numeric first element is
// kept as a plain field name.
func formatPath(path []string) string {
	var sb strings.Builder
	for i, part := range path {
		if _, err := strconv.Atoi(part); err == nil && i > 0 {
			sb.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(part)
	}
	return sb.String()
}
