// Package api is the HTTP client for the reposcribe server.
package api

// Credentials is the body of register and login calls.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned by /auth/register and /auth/login.
type AuthResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

// CloneRequest is the body of /git/clone. Credentials are only sent for
// private repositories.
type CloneRequest struct {
	RepositoryURL string `json:"repositoryUrl"`
	Username      string `json:"username,omitempty"`
	Password      string `json:"password,omitempty"`
}

// IngestResponse is returned by /git/clone and /upload/file.
type IngestResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	SessionID     string `json:"sessionId,omitempty"`
	RepositoryURL string `json:"repositoryUrl,omitempty"`
}

// GenerationProgress is one snapshot of a generation job. Each poll yields a
// fresh value that replaces the previous one.
type GenerationProgress struct {
	Status        string `json:"status"`
	Progress      int    `json:"progress"`
	Documentation string `json:"documentation,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Finished reports whether the snapshot carries a document.
func (p GenerationProgress) Finished() bool {
	return p.Documentation != ""
}

// Failed reports whether the snapshot carries an error.
func (p GenerationProgress) Failed() bool {
	return p.Error != ""
}

// Document is a downloaded documentation file.
type Document struct {
	Content     []byte
	Filename    string // from Content-Disposition, may be empty
	ContentType string
}

// Health is the result of a health probe.
type Health struct {
	Path       string
	StatusCode int
	Message    string
}
