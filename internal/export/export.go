// Package export writes downloaded documentation to disk.
package export

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultName is used when the server supplies no file name.
const DefaultName = "README.md"

// MsgDownloadFailed is shown when a download cannot be completed.
const MsgDownloadFailed = "Failed to download documentation"

// maxAttempts bounds the " (n)" suffix search.
const maxAttempts = 1000

// FileName picks the name to save a document under. The server-supplied
// name wins; otherwise README.md, or README.html for the html format.
func FileName(serverName, format string) string {
	if name := filepath.Base(strings.TrimSpace(serverName)); serverName != "" && name != "." && name != string(filepath.Separator) {
		return name
	}
	if strings.EqualFold(format, "html") {
		return "README.html"
	}
	return DefaultName
}

// Save writes content to dir/name without replacing an existing file. If
// name is taken, "README (1).md", "README (2).md" and so on are tried. It
// returns the path written.
func Save(dir, name string, content []byte) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 0; i < maxAttempts; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
		}
		path := filepath.Join(dir, candidate)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("creating %s: %w", path, err)
		}
		if _, err := f.Write(content); err != nil {
			f.Close()
			_ = os.Remove(path)
			return "", fmt.Errorf("writing %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("closing %s: %w", path, err)
		}
		return path, nil
	}
	return "", fmt.Errorf("no free file name for %s in %s", name, dir)
}
