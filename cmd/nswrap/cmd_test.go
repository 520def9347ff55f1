// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rtxplore/nswrap/internal/config"
	"github.com/rtxplore/nswrap/internal/testutil"
	"github.com/rtxplore/nswrap/pkg/types"
)

const (
	plainHeader = "#pragma once\n#include <cstdint>\n\nstruct Mesh {};\n"
	plainSource = "#include \"Mesh.h\"\n\nvoid draw() {}\n"

	wrappedHeader = "#pragma once\n#include <cstdint>\n\nnamespace engine::gfx\n{\n\nstruct Mesh {};\n\n}  // namespace engine::gfx\n"
	wrappedSource = "#include \"Mesh.h\"\n\nnamespace engine::gfx\n{\n\nvoid draw() {}\n\n}  // namespace engine::gfx\n"
)

// executeCLI runs a fresh command tree with args and captures its output.
func executeCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	root := newRootCommand()
	var outBuf, errBuf bytes.Buffer
	root.SetOut(&outBuf)
	root.SetErr(&errBuf)
	root.SetArgs(args)
	err = root.ExecuteContext(t.Context())
	return outBuf.String(), errBuf.String(), err
}

func requireExitCode(t *testing.T, err error, code types.ExitCode) {
	t.Helper()
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *ExitError, got %v", err)
	}
	if exitErr.Code != code {
		t.Fatalf("exit code = %d, want %d", exitErr.Code, code)
	}
}

func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"include/gfx/Mesh.h":   plainHeader,
		"include/gfx/d3dx12.h": "struct D3D {};\n",
		"src/Mesh.cpp":         plainSource,
		"src/notes.txt":        "not a source file\n",
	})
	return dir
}

func adhocArgs(dir string, extra ...string) []string {
	return append(extra,
		"--namespace", "engine::gfx",
		"--root", dir,
		"--headers", "include/gfx",
		"--sources", "src",
		"--skip", "d3dx12.h",
	)
}

func TestWrapAdhocTarget(t *testing.T) {
	t.Parallel()

	dir := newProject(t)
	stdout, _, err := executeCLI(t, adhocArgs(dir, "wrap")...)
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}

	if diff := cmp.Diff(wrappedHeader, testutil.ReadFile(t, filepath.Join(dir, "include/gfx/Mesh.h"))); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wrappedSource, testutil.ReadFile(t, filepath.Join(dir, "src/Mesh.cpp"))); diff != "" {
		t.Errorf("source mismatch (-want +got):\n%s", diff)
	}
	if got := testutil.ReadFile(t, filepath.Join(dir, "include/gfx/d3dx12.h")); got != "struct D3D {};\n" {
		t.Errorf("skip-listed file was modified: %q", got)
	}
	if got := testutil.ReadFile(t, filepath.Join(dir, "src/notes.txt")); got != "not a source file\n" {
		t.Errorf("unselected file was modified: %q", got)
	}

	for _, want := range []string{"wrap adhoc (engine::gfx)", "2 written", "1 excluded"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}

	// A second wrap leaves the wrapped files alone.
	stdout, _, err = executeCLI(t, adhocArgs(dir, "wrap")...)
	if err != nil {
		t.Fatalf("second wrap: %v", err)
	}
	if !strings.Contains(stdout, "2 skipped") {
		t.Errorf("second wrap should skip wrapped files:\n%s", stdout)
	}
}

func TestResetRebuildsBlock(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"include/gfx/Mesh.h": "#pragma once\n#define MESH 1\nnamespace engine::gfx\n{\nnamespace engine::gfx\n{\nstruct Mesh {};\n}  // namespace engine::gfx\n",
	})

	if _, _, err := executeCLI(t, "reset", "--namespace", "engine::gfx", "--root", dir, "--headers", "include/gfx"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	want := "#pragma once\n#define MESH 1\n\nnamespace engine::gfx\n{\n\nstruct Mesh {};\n\n}  // namespace engine::gfx\n"
	if diff := cmp.Diff(want, testutil.ReadFile(t, filepath.Join(dir, "include/gfx/Mesh.h"))); diff != "" {
		t.Errorf("reset mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckReportsPendingChanges(t *testing.T) {
	t.Parallel()

	dir := newProject(t)

	stdout, _, err := executeCLI(t, adhocArgs(dir, "check")...)
	requireExitCode(t, err, types.ExitFailure)
	if !strings.Contains(stdout, "2 would change") || !strings.Contains(stdout, "~ ") {
		t.Errorf("check should list pending files:\n%s", stdout)
	}
	if got := testutil.ReadFile(t, filepath.Join(dir, "src/Mesh.cpp")); got != plainSource {
		t.Errorf("check must not write files, got %q", got)
	}

	if _, _, err := executeCLI(t, adhocArgs(dir, "normalize")...); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	stdout, _, err = executeCLI(t, adhocArgs(dir, "check")...)
	if err != nil {
		t.Fatalf("check after normalize: %v", err)
	}
	if !strings.Contains(stdout, "up to date") {
		t.Errorf("check should pass after normalize:\n%s", stdout)
	}
}

func TestCheckUnknownPolicy(t *testing.T) {
	t.Parallel()

	_, stderr, err := executeCLI(t, adhocArgs(t.TempDir(), "check", "--policy", "indent")...)
	requireExitCode(t, err, types.ExitFailure)
	if !strings.Contains(stderr, `unknown policy "indent"`) {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestFailedFileDoesNotStopOthers(t *testing.T) {
	t.Parallel()

	dir := newProject(t)
	testutil.WriteTree(t, dir, map[string]string{"src/Broken.cpp": "int x = 1;\n\xff\xfe\n"})

	_, stderr, err := executeCLI(t, adhocArgs(dir, "wrap")...)
	requireExitCode(t, err, types.ExitFailure)
	if !strings.Contains(stderr, "1 file(s) failed") {
		t.Errorf("stderr should count failures:\n%s", stderr)
	}
	if got := testutil.ReadFile(t, filepath.Join(dir, "src/Mesh.cpp")); got != wrappedSource {
		t.Errorf("healthy file should still be wrapped, got %q", got)
	}
}

func TestConfiguredTargets(t *testing.T) {
	t.Parallel()

	dir := newProject(t)
	cfgPath := filepath.Join(dir, "nswrap.cue")
	testutil.WriteTree(t, dir, map[string]string{"nswrap.cue": `
targets: [{
	name:      "gfx"
	namespace: "engine::gfx"
	headers: {dir: "include/gfx"}
	sources: {dir: "src", patterns: ["*.cpp"]}
	skip: ["d3dx12.h"]
}]
`})

	t.Run("unknown target", func(t *testing.T) {
		_, stderr, err := executeCLI(t, "--config", cfgPath, "wrap", "--target", "audio")
		requireExitCode(t, err, types.ExitFailure)
		if !strings.Contains(stderr, `target "audio" not found (available: gfx)`) {
			t.Errorf("stderr = %q", stderr)
		}
	})

	t.Run("selected target", func(t *testing.T) {
		stdout, _, err := executeCLI(t, "--config", cfgPath, "--workers", "2", "wrap", "--target", "gfx")
		if err != nil {
			t.Fatalf("wrap: %v", err)
		}
		if !strings.Contains(stdout, "wrap gfx (engine::gfx): 2 written") {
			t.Errorf("stdout = %q", stdout)
		}
		if got := testutil.ReadFile(t, filepath.Join(dir, "include/gfx/Mesh.h")); got != wrappedHeader {
			t.Errorf("header = %q", got)
		}
	})
}

func TestTargetFlagErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "ad-hoc flags need a namespace",
			args: []string{"wrap", "--headers", "include"},
			want: errNamespaceRequired.Error(),
		},
		{
			name: "target and namespace are exclusive",
			args: []string{"wrap", "--target", "gfx", "--namespace", "engine::gfx", "--headers", "include"},
			want: errTargetWithAdhoc.Error(),
		},
		{
			name: "invalid namespace",
			args: []string{"wrap", "--namespace", "engine::", "--root", dir, "--headers", "include"},
			want: "invalid namespace",
		},
		{
			name: "missing directory",
			args: []string{"wrap", "--namespace", "engine::gfx", "--root", dir, "--headers", "include"},
			want: "directory not found",
		},
		{
			name: "no targets configured",
			args: []string{"wrap"},
			want: "no targets configured",
		},
		{
			name: "invalid worker count",
			args: []string{"--workers", "0", "wrap"},
			want: "--workers must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, stderr, err := executeCLI(t, tt.args...)
			requireExitCode(t, err, types.ExitFailure)
			if !strings.Contains(stderr, tt.want) {
				t.Errorf("stderr missing %q:\n%s", tt.want, stderr)
			}
		})
	}
}

func TestConfigInitAndShow(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nswrap.cue")

	stdout, _, err := executeCLI(t, "config", "init", "--output", path)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(stdout, "Created") {
		t.Errorf("stdout = %q", stdout)
	}

	_, stderr, err := executeCLI(t, "config", "init", "--output", path)
	requireExitCode(t, err, types.ExitFailure)
	if !strings.Contains(stderr, "--force") {
		t.Errorf("second init should suggest --force:\n%s", stderr)
	}

	if _, _, err := executeCLI(t, "config", "init", "--output", path, "--force"); err != nil {
		t.Fatalf("config init --force: %v", err)
	}

	stdout, stderr, err = executeCLI(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, want := range []string{`"gfx"`, `"engine::gfx"`, `"d3dx12.h"`} {
		if !strings.Contains(stdout, want) {
			t.Errorf("config show missing %q:\n%s", want, stdout)
		}
	}
	if !strings.Contains(stderr, path) {
		t.Errorf("config show should name its source:\n%s", stderr)
	}
}

func TestConfigLoadFailure(t *testing.T) {
	t.Parallel()

	_, stderr, err := executeCLI(t, "--config", filepath.Join(t.TempDir(), "missing.cue"), "wrap")
	requireExitCode(t, err, types.ExitFailure)
	if !strings.Contains(stderr, "config file not found") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestFailFastFromProvidedConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"src/A.cpp": "int a;\n\xff\n",
		"src/B.cpp": plainSource,
		"src/C.cpp": plainSource,
	})

	provider := config.ProviderFunc(func(context.Context, config.LoadOptions) (*config.Config, error) {
		cfg := config.DefaultConfig()
		cfg.Workers = 1
		cfg.FailFast = true
		cfg.BaseDir = dir
		cfg.Targets = []config.TargetConfig{{
			Name:      "core",
			Namespace: "engine::core",
			Sources:   &config.FileSetConfig{Dir: "src"},
		}}
		return cfg, nil
	})

	root := newApp(provider).rootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{"wrap"})

	requireExitCode(t, root.ExecuteContext(t.Context()), types.ExitFailure)
	if !strings.Contains(stdout.String(), "wrap core (engine::core): 1 failed, 2 canceled") {
		t.Errorf("stdout = %q", stdout.String())
	}
	if got := testutil.ReadFile(t, filepath.Join(dir, "src/B.cpp")); got != plainSource {
		t.Errorf("fail-fast run should not reach B.cpp, got %q", got)
	}

	// --fail-fast=false overrides the configuration.
	root = newApp(provider).rootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{"--fail-fast=false", "wrap"})
	stdout.Reset()

	requireExitCode(t, root.ExecuteContext(t.Context()), types.ExitFailure)
	if !strings.Contains(stdout.String(), "2 written, 1 failed") {
		t.Errorf("stdout = %q", stdout.String())
	}
}
