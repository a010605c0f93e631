package export

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		server, format, want string
	}{
		{"", "markdown", "README.md"},
		{"", "", "README.md"},
		{"", "html", "README.html"},
		{"docs.md", "markdown", "docs.md"},
		{"../../evil.md", "markdown", "evil.md"},
	}
	for _, tt := range tests {
		if got := FileName(tt.server, tt.format); got != tt.want {
			t.Errorf("FileName(%q, %q) = %q, want %q", tt.server, tt.format, got, tt.want)
		}
	}
}

func TestSaveDoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()

	first, err := Save(dir, "README.md", []byte("one"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	second, err := Save(dir, "README.md", []byte("two"))
	if err != nil {
		t.Fatalf("Save again: %v", err)
	}
	third, _ := Save(dir, "README.md", []byte("three"))

	if filepath.Base(first) != "README.md" || filepath.Base(second) != "README (1).md" || filepath.Base(third) != "README (2).md" {
		t.Errorf("paths = %s, %s, %s", first, second, third)
	}
	b, _ := os.ReadFile(first)
	if string(b) != "one" {
		t.Errorf("original overwritten: %q", b)
	}
}

func TestSaveCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "docs")
	path, err := Save(dir, "README.md", []byte("# Hi"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if b, _ := os.ReadFile(path); string(b) != "# Hi" {
		t.Errorf("content = %q", b)
	}
}
