// SPDX-License-Identifier: MPL-2.0

package nsfmt

import "testing"

func TestSplit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		lines []string
		opts  ScanOptions
		want  int
	}{
		{
			name:  "empty input",
			lines: nil,
			want:  0,
		},
		{
			name:  "all directives and blanks",
			lines: []string{"#pragma once", "", "#include <a.h>", ""},
			want:  4,
		},
		{
			name:  "stops at first body line",
			lines: []string{"#include <a.h>", "", "void f() {}", "#include <b.h>"},
			want:  2,
		},
		{
			name:  "comment ends prelude without comment inclusion",
			lines: []string{"#include <a.h>", "", "// note", "void f() {}"},
			want:  2,
		},
		{
			name:  "comment joins prelude with comment inclusion",
			lines: []string{"#include <a.h>", "", "// note", "void f() {}"},
			opts:  ScanOptions{IncludeComments: true},
			want:  3,
		},
		{
			name:  "multi-line block comment joins prelude",
			lines: []string{"/*", " * Copyright", " */", "#pragma once", "struct S {};"},
			opts:  ScanOptions{IncludeComments: true},
			want:  4,
		},
		{
			name:  "single-line block comment does not swallow code",
			lines: []string{"/* header */", "int x;"},
			opts:  ScanOptions{IncludeComments: true},
			want:  1,
		},
		{
			name:  "define ends prelude by default",
			lines: []string{"#include <a.h>", "#define N 3", "int x;"},
			want:  1,
		},
		{
			name:  "define stays in prelude with any directive",
			lines: []string{"#include <a.h>", "#define N 3", "int x;"},
			opts:  ScanOptions{ClassifyOptions: ClassifyOptions{AnyDirective: true}},
			want:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Split(tt.lines, tt.opts); got != tt.want {
				t.Errorf("Split() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestOpensBlockComment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want bool
	}{
		{"/*", true},
		{"/** docs", true},
		{"/* closed */", false},
		{"/**/", false},
		{"// line /*", false},
		{"/* a */ /* b", true},
	}

	for _, tt := range tests {
		if got := opensBlockComment(tt.line); got != tt.want {
			t.Errorf("opensBlockComment(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
