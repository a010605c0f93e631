// Package testutil provides test helpers for reposcribe tests: temporary
// repositories on disk and a fake reposcribe server.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TempProject creates a temporary directory with the given files and returns its path.
// Files is a map of relative path -> content. Directories are created as needed.
// The directory is automatically cleaned up when the test finishes.
func TempProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	for relPath, content := range files {
		absPath := filepath.Join(dir, relPath)
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			t.Fatalf("creating directory for %s: %v", relPath, err)
		}
		if err := os.WriteFile(absPath, []byte(content), 0644); err != nil {
			t.Fatalf("writing %s: %v", relPath, err)
		}
	}

	return dir
}

// GoProject returns file contents for a minimal Go repository.
func GoProject() map[string]string {
	return map[string]string{
		"go.mod":          "module example.com/test\n\ngo 1.23\n",
		"main.go":         "package main\n\nfunc main() {}\n",
		"internal/a/a.go": "package a\n\nfunc A() int { return 1 }\n",
		".git/HEAD":       "ref: refs/heads/main\n",
		"README.md":       "# test\n",
	}
}

// TempArchive writes a file named name with size bytes of filler and returns
// its path.
func TempArchive(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	data := make([]byte, size)
	copy(data, "PK\x03\x04")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}
