// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// MustMkdirAll creates a directory along with any necessary parents.
// The test fails immediately if the operation fails.
func MustMkdirAll(t testing.TB, path string, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(path, perm); err != nil {
		t.Fatalf("failed to create directory %s: %v", path, err)
	}
}

// WriteTree creates files below dir from a map of slash-separated relative
// paths to contents. Parent directories are created as needed.
func WriteTree(t testing.TB, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		MustMkdirAll(t, filepath.Dir(path), 0o755)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
}

// ReadFile returns the content of path as a string.
// The test fails immediately if the file cannot be read.
func ReadFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// SourceTree generates a header and source tree of n file pairs below dir,
// laid out as include/<name>.h and src/<name>.cpp, and returns dir.
func SourceTree(t testing.TB, dir string, n int) string {
	t.Helper()
	files := make(map[string]string, 2*n)
	for i := range n {
		name := "Unit" + strconv.Itoa(i)
		files["include/"+name+".h"] = "#pragma once\n#include <cstdint>\n\n// " + name + " declarations.\nstruct " + name + "\n{\n    uint32_t id;\n};\n"
		files["src/"+name+".cpp"] = "#include \"" + name + ".h\"\n\nint " + name + "_count() { return 0; }\n"
	}
	WriteTree(t, dir, files)
	return dir
}
