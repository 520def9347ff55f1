// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	if err := FormatError(nil, "nswrap.cue"); err != nil {
		t.Errorf("FormatError(nil) = %v, want nil", err)
	}

	cause := errors.New("read failed")
	err := FormatError(cause, "nswrap.cue")
	if got := err.Error(); got != "nswrap.cue: read failed" {
		t.Errorf("FormatError() = %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("non-CUE errors should stay wrapped")
	}
}

func TestFormatErrorReportsFieldPath(t *testing.T) {
	t.Parallel()

	schema := []byte("#Config: {targets: [...{namespace: =~\"^[a-z:]+$\"}]}")
	_, err := ParseAndDecode[map[string]any](schema, []byte(`targets: [{namespace: "engine gfx"}]`), "#Config",
		WithFilename("nswrap.cue"))
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !strings.HasPrefix(err.Error(), "nswrap.cue: targets[0].namespace: ") {
		t.Errorf("error should lead with file and JSON path, got %q", err)
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"workers"}, "workers"},
		{[]string{"headers", "dir"}, "headers.dir"},
		{[]string{"targets", "0", "namespace"}, "targets[0].namespace"},
		{[]string{"targets", "1", "headers", "patterns", "2"}, "targets[1].headers.patterns[2]"},
		{[]string{"0", "name"}, "0.name"},
	}

	for _, tt := range tests {
		if got := formatPath(tt.path); got != tt.want {
			t.Errorf("formatPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	for _, size := range []int{0, 99, 100} {
		if err := CheckFileSize(make([]byte, size), 100, "nswrap.cue"); err != nil {
			t.Errorf("CheckFileSize(%d bytes) = %v, want nil", size, err)
		}
	}

	err := CheckFileSize(make([]byte, 101), 100, "nswrap.cue")
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	var tooLarge *FileTooLargeError
	if !errors.As(err, &tooLarge) || tooLarge.Size != 101 || tooLarge.Max != 100 {
		t.Errorf("FileTooLargeError = %+v", tooLarge)
	}
	if got := err.Error(); got != "nswrap.cue: file size 101 bytes exceeds maximum 100 bytes" {
		t.Errorf("Error() = %q", got)
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "with path",
			err:  &ValidationError{FilePath: "nswrap.cue", CUEPath: "targets[0].name", Message: "duplicate target name \"gfx\""},
			want: "nswrap.cue: targets[0].name: duplicate target name \"gfx\"",
		},
		{
			name: "without path",
			err:  &ValidationError{FilePath: "environment", Message: "invalid log level \"loud\""},
			want: "environment: invalid log level \"loud\"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if tt.err.Unwrap() != nil {
				t.Error("Unwrap() should be nil without a cause")
			}
		})
	}

	cause := errors.New("duplicate target name")
	err := &ValidationError{FilePath: "nswrap.cue", Message: cause.Error(), Err: cause}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
}
