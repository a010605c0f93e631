package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/reposcribe/reposcribe-cli/internal/api"
)

// Server is an in-process fake of the reposcribe REST API mounted at /api.
// Responses are scripted through its exported fields, which may be changed
// between calls while holding no lock; the handlers read them under mu.
type Server struct {
	*httptest.Server

	mu sync.Mutex

	// RequireAuth makes clone, upload and documentation endpoints demand a
	// bearer token issued by this server.
	RequireAuth bool

	// CloneResponse and UploadResponse are returned by ingestion calls.
	CloneResponse  api.IngestResponse
	UploadResponse api.IngestResponse

	// Progress scripts generation responses in order; the last one repeats.
	Progress []api.GenerationProgress

	// Document is served by the download endpoint.
	Document string

	users         map[string]string
	tokens        map[string]bool
	uploads       []string
	clones        []api.CloneRequest
	generateCalls int
	downloads     int
}

// NewServer starts a fake server that is closed when the test ends. By
// default ingestion succeeds with session "abc" and generation completes on
// the first poll with "# Hi".
func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{
		CloneResponse:  api.IngestResponse{Success: true, Message: "Repository cloned successfully", SessionID: "abc"},
		UploadResponse: api.IngestResponse{Success: true, Message: "File uploaded successfully", SessionID: "abc"},
		Progress:       []api.GenerationProgress{{Status: "Complete", Progress: 100, Documentation: "# Hi\n"}},
		Document:       "# Hi\n",
		users:          make(map[string]string),
		tokens:         make(map[string]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/git/clone", s.authed(s.handleClone))
	mux.HandleFunc("POST /api/upload/file", s.authed(s.handleUpload))
	mux.HandleFunc("POST /api/documentation/generate-with-progress", s.authed(s.handleGenerate))
	mux.HandleFunc("GET /api/documentation/download", s.authed(s.handleDownload))
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "Backend is running!")
	})
	for _, svc := range []string{"upload", "git", "documentation"} {
		status := fmt.Sprintf("%s service is running", svc)
		mux.HandleFunc("GET /api/"+svc+"/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": status})
		})
	}

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Server.Close)
	return s
}

// BaseURL returns the API base URL.
func (s *Server) BaseURL() string {
	return s.Server.URL + "/api"
}

// AddUser registers a user directly.
func (s *Server) AddUser(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = password
}

// GenerateCalls returns how many generation requests were received.
func (s *Server) GenerateCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generateCalls
}

// Uploads returns the file names received by the upload endpoint.
func (s *Server) Uploads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.uploads...)
}

// Clones returns the clone requests received.
func (s *Server) Clones() []api.CloneRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.CloneRequest(nil), s.clones...)
}

// Downloads returns how many downloads were served.
func (s *Server) Downloads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.downloads
}

// SetProgress replaces the scripted generation responses.
func (s *Server) SetProgress(p ...api.GenerationProgress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Progress = p
	s.generateCalls = 0
}

// SetCloneResponse replaces the clone response.
func (s *Server) SetCloneResponse(r api.IngestResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CloneResponse = r
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var creds api.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Username == "" || creds.Password == "" {
		writeJSON(w, http.StatusBadRequest, api.AuthResponse{Message: "Username and password are required"})
		return
	}

	s.mu.Lock()
	_, exists := s.users[creds.Username]
	if !exists {
		s.users[creds.Username] = creds.Password
	}
	s.mu.Unlock()

	if exists {
		writeJSON(w, http.StatusConflict, api.AuthResponse{Message: "Username already exists"})
		return
	}
	writeJSON(w, http.StatusOK, api.AuthResponse{Token: s.issue(creds.Username), Username: creds.Username, Message: "User registered successfully"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds api.Credentials
	_ = json.NewDecoder(r.Body).Decode(&creds)

	s.mu.Lock()
	pw, ok := s.users[creds.Username]
	s.mu.Unlock()

	if !ok || pw != creds.Password {
		writeJSON(w, http.StatusUnauthorized, api.AuthResponse{Message: "Invalid username or password"})
		return
	}
	writeJSON(w, http.StatusOK, api.AuthResponse{Token: s.issue(creds.Username), Username: creds.Username, Message: "Login successful"})
}

func (s *Server) handleClone(w http.ResponseWriter, r *http.Request) {
	var req api.CloneRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	s.clones = append(s.clones, req)
	resp := s.CloneResponse
	s.mu.Unlock()

	status := http.StatusOK
	if !resp.Success {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, api.IngestResponse{Message: "Please select a file to upload"})
		return
	}
	defer f.Close()
	_, _ = io.Copy(io.Discard, f)

	s.mu.Lock()
	s.uploads = append(s.uploads, hdr.Filename)
	resp := s.UploadResponse
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("sessionId") == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "sessionId is required"})
		return
	}

	s.mu.Lock()
	s.generateCalls++
	n := s.generateCalls
	if n > len(s.Progress) {
		n = len(s.Progress)
	}
	var resp api.GenerationProgress
	if n > 0 {
		resp = s.Progress[n-1]
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	name := "README.md"
	if format == "html" {
		name = "README.html"
	}

	s.mu.Lock()
	s.downloads++
	doc := s.Document
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = io.WriteString(w, doc)
}

// authed rejects requests without a token issued by this server when
// RequireAuth is set.
func (s *Server) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		require := s.RequireAuth
		s.mu.Unlock()

		if require {
			tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			s.mu.Lock()
			ok := s.tokens[tok]
			s.mu.Unlock()
			if !ok {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
				return
			}
		}
		next(w, r)
	}
}

var signingKey = []byte("reposcribe-test-secret")

func (s *Server) issue(username string) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	signed, err := tok.SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	s.tokens[signed] = true
	s.mu.Unlock()
	return signed
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
