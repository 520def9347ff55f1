// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rtxplore/nswrap/internal/nsfmt"
)

const (
	plainSource = "#include <a.h>\n\nint x;\n"
	wrapped     = "#include <a.h>\n\nnamespace engine::gfx\n{\n\nint x;\n\n}  // namespace engine::gfx\n"
)

func newTestRunner(t *testing.T, opts Options) *Runner {
	t.Helper()
	eng, err := nsfmt.NewEngine(nsfmt.Options{Namespace: "engine::gfx"})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	opts.Engine = eng
	r, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o640); err != nil {
		t.Fatal(err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, TempPattern))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) > 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}

func TestNewRequiresEngine(t *testing.T) {
	t.Parallel()

	if _, err := New(Options{}); !errors.Is(err, ErrNoEngine) {
		t.Errorf("New() error = %v, want ErrNoEngine", err)
	}
}

func TestRunOutcomes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    Options
		content string
		want    Outcome
		changed bool
		after   string
	}{
		{
			name:    "wrap writes",
			opts:    Options{Policy: nsfmt.PolicyWrap},
			content: plainSource,
			want:    OutcomeWritten,
			changed: true,
			after:   wrapped,
		},
		{
			name:    "wrap skips wrapped file",
			opts:    Options{Policy: nsfmt.PolicyWrap},
			content: wrapped,
			want:    OutcomeSkippedWrapped,
			after:   wrapped,
		},
		{
			name:    "normalize canonical file is unchanged",
			opts:    Options{Policy: nsfmt.PolicyNormalize},
			content: wrapped,
			want:    OutcomeUnchanged,
			after:   wrapped,
		},
		{
			name:    "normalize rewrites CRLF",
			opts:    Options{Policy: nsfmt.PolicyNormalize},
			content: "#include <a.h>\r\n\r\nnamespace engine::gfx\r\n{\r\nint x;\r\n}  // namespace engine::gfx\r\n",
			want:    OutcomeWritten,
			changed: true,
			after:   wrapped,
		},
		{
			name:    "dry run reports would change",
			opts:    Options{Policy: nsfmt.PolicyWrap, DryRun: true},
			content: plainSource,
			want:    OutcomeWouldChange,
			changed: true,
			after:   plainSource,
		},
		{
			name:    "dry run on canonical file",
			opts:    Options{Policy: nsfmt.PolicyReset, DryRun: true},
			content: wrapped,
			want:    OutcomeUnchanged,
			after:   wrapped,
		},
		{
			name:    "skip unchanged",
			opts:    Options{Policy: nsfmt.PolicyReset, SkipUnchanged: true},
			content: wrapped,
			want:    OutcomeUnchanged,
			after:   wrapped,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			path := writeFile(t, dir, "a.h", tt.content)
			before, err := os.Stat(path)
			if err != nil {
				t.Fatal(err)
			}

			r := newTestRunner(t, tt.opts)
			report, err := r.Run(context.Background(), []string{path})
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if len(report.Results) != 1 {
				t.Fatalf("got %d results, want 1", len(report.Results))
			}

			res := report.Results[0]
			if res.Outcome != tt.want {
				t.Errorf("Outcome = %v, want %v (err %v)", res.Outcome, tt.want, res.Err)
			}
			if res.Changed != tt.changed {
				t.Errorf("Changed = %v, want %v", res.Changed, tt.changed)
			}
			if res.Before.IsZero() || res.After.IsZero() {
				t.Error("digests not computed")
			}
			if diff := cmp.Diff(tt.after, readFile(t, path)); diff != "" {
				t.Errorf("file content mismatch (-want +got):\n%s", diff)
			}

			after, err := os.Stat(path)
			if err != nil {
				t.Fatal(err)
			}
			if after.Mode().Perm() != before.Mode().Perm() {
				t.Errorf("mode = %v, want %v", after.Mode().Perm(), before.Mode().Perm())
			}
			assertNoTempFiles(t, dir)
		})
	}
}

func TestRunRecordsSourceFlags(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "a.cpp", "\ufeffint x;\r\n")

	r := newTestRunner(t, Options{Policy: nsfmt.PolicyNormalize})
	report, err := r.Run(context.Background(), []string{path})
	if err != nil {
		t.Fatal(err)
	}
	res := report.Results[0]
	if !res.HadBOM || !res.HadCRLF {
		t.Errorf("HadBOM = %v, HadCRLF = %v, want both true", res.HadBOM, res.HadCRLF)
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good1 := writeFile(t, dir, "a.h", plainSource)
	bad := writeFile(t, dir, "b.h", "int \xff x;\n")
	missing := filepath.Join(dir, "missing.h")
	good2 := writeFile(t, dir, "c.h", plainSource)

	r := newTestRunner(t, Options{Policy: nsfmt.PolicyWrap, Workers: 2})
	report, err := r.Run(context.Background(), []string{good1, bad, missing, good2})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var got []Outcome
	for _, res := range report.Results {
		got = append(got, res.Outcome)
	}
	want := []Outcome{OutcomeWritten, OutcomeFailed, OutcomeFailed, OutcomeWritten}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("outcomes mismatch (-want +got):\n%s", diff)
	}

	var fe *FileError
	if !errors.As(report.Results[1].Err, &fe) || fe.Op != "transform" {
		t.Errorf("bad file error = %v, want transform FileError", report.Results[1].Err)
	}
	if !errors.Is(report.Results[1].Err, nsfmt.ErrInvalidEncoding) {
		t.Errorf("bad file error should wrap ErrInvalidEncoding")
	}
	if !errors.As(report.Results[2].Err, &fe) || fe.Op != "read" {
		t.Errorf("missing file error = %v, want read FileError", report.Results[2].Err)
	}
	if !errors.Is(report.Results[2].Err, os.ErrNotExist) {
		t.Errorf("missing file error should wrap os.ErrNotExist")
	}

	if n := len(report.Failed()); n != 2 {
		t.Errorf("Failed() = %d, want 2", n)
	}
	if report.Err() == nil {
		t.Error("Err() = nil, want joined failures")
	}
	if got := readFile(t, bad); got != "int \xff x;\n" {
		t.Errorf("failed file was modified: %q", got)
	}
}

func TestRunFailFast(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bad := writeFile(t, dir, "a.h", "\xfe\n")
	rest := []string{
		writeFile(t, dir, "b.h", plainSource),
		writeFile(t, dir, "c.h", plainSource),
	}

	r := newTestRunner(t, Options{Policy: nsfmt.PolicyWrap, Workers: 1, FailFast: true})
	report, err := r.Run(context.Background(), append([]string{bad}, rest...))
	if !errors.Is(err, nsfmt.ErrInvalidEncoding) {
		t.Fatalf("Run() error = %v, want ErrInvalidEncoding", err)
	}
	if report.Results[0].Outcome != OutcomeFailed {
		t.Errorf("first outcome = %v, want failed", report.Results[0].Outcome)
	}
	for i, path := range rest {
		if got := report.Results[i+1].Outcome; got != OutcomeCanceled {
			t.Errorf("%s outcome = %v, want canceled", path, got)
		}
		if got := readFile(t, path); got != plainSource {
			t.Errorf("%s was modified after fail-fast", path)
		}
	}
}

func TestRunCanceledContext(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "a.h", plainSource)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newTestRunner(t, Options{Policy: nsfmt.PolicyWrap})
	report, err := r.Run(ctx, []string{path})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if report.Count(OutcomeCanceled) != 1 {
		t.Errorf("canceled count = %d, want 1", report.Count(OutcomeCanceled))
	}
	if got := readFile(t, path); got != plainSource {
		t.Error("file modified after cancellation")
	}
}

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "a.h", "old\n")

	if err := WriteFileAtomic(path, []byte("new\n"), 0o600); err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}
	if got := readFile(t, path); got != "new\n" {
		t.Errorf("content = %q, want %q", got, "new\n")
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
	assertNoTempFiles(t, dir)

	if err := WriteFileAtomic(filepath.Join(dir, "nope", "a.h"), nil, 0o644); err == nil {
		t.Error("WriteFileAtomic() into missing dir should fail")
	}
}
