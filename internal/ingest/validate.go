// Package ingest submits repositories to the server, either as a zip upload
// or a Git clone, and records the resulting session.
package ingest

import (
	"errors"
	"regexp"
	"strings"
)

// MaxArchiveSize is the largest archive the server accepts.
const MaxArchiveSize int64 = 500 * 1024 * 1024

// ValidationError is raised before any network call when input is rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

var gitURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://.+`),
	regexp.MustCompile(`^git@.+`),
	regexp.MustCompile(`^.+\.git$`),
}

// ValidateArchive checks an archive's name and size.
func ValidateArchive(name string, size int64) error {
	if !strings.HasSuffix(strings.ToLower(name), ".zip") {
		return &ValidationError{Field: "file", Message: "Please select a ZIP file"}
	}
	if size > MaxArchiveSize {
		return &ValidationError{Field: "file", Message: "File size exceeds 500MB limit"}
	}
	if size <= 0 {
		return &ValidationError{Field: "file", Message: "Selected file is empty"}
	}
	return nil
}

// ValidateGitURL accepts http(s) URLs, scp-style git@ addresses and anything
// ending in .git.
func ValidateGitURL(url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return &ValidationError{Field: "url", Message: "Please enter a repository URL"}
	}
	for _, p := range gitURLPatterns {
		if p.MatchString(url) {
			return nil
		}
	}
	return &ValidationError{Field: "url", Message: "Please enter a valid Git repository URL"}
}

// ValidateCredentials requires both a username and a password or token for
// private repositories.
func ValidateCredentials(private bool, username, password string) error {
	if !private {
		return nil
	}
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return &ValidationError{Field: "credentials", Message: "Username and password/token are required for private repositories"}
	}
	return nil
}
