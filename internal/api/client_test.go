package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api", WithTokenSource(staticToken("tok-123")))
}

func TestLoginSendsCredentials(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID")
		}
		var creds Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Username != "ada" || creds.Password != "secret1" {
			t.Errorf("credentials = %+v", creds)
		}
		_ = json.NewEncoder(w).Encode(AuthResponse{Token: "jwt", Username: "ada", Message: "Login successful"})
	})

	resp, err := c.Login(context.Background(), "ada", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Token != "jwt" || resp.Username != "ada" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestLoginFailureSurfacesServerMessage(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"token":null,"username":null,"message":"Invalid username or password"}`))
	})

	_, err := c.Login(context.Background(), "ada", "wrong")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsUnauthorized(err) {
		t.Errorf("IsUnauthorized(%v) = false", err)
	}
	if got := MessageOr(err, "fallback"); got != "Invalid username or password" {
		t.Errorf("MessageOr = %q", got)
	}
}

func TestMessageOrFallsBackForNetworkErrors(t *testing.T) {
	c := New("http://127.0.0.1:1/api")
	_, err := c.GenerateWithProgress(context.Background(), "abc")
	if err == nil {
		t.Fatal("expected network error")
	}
	if got := MessageOr(err, "Failed to generate documentation"); got != "Failed to generate documentation" {
		t.Errorf("MessageOr = %q", got)
	}
}

func TestCloneOmitsPartialCredentials(t *testing.T) {
	var seen map[string]any
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&seen)
		_ = json.NewEncoder(w).Encode(IngestResponse{Success: true, SessionID: "s1"})
	})

	_, err := c.CloneRepository(context.Background(), CloneRequest{
		RepositoryURL: "https://github.com/a/b.git",
		Username:      "only-user",
	})
	if err != nil {
		t.Fatalf("CloneRepository: %v", err)
	}
	if _, ok := seen["username"]; ok {
		t.Errorf("username sent without password: %v", seen)
	}
	if seen["repositoryUrl"] != "https://github.com/a/b.git" {
		t.Errorf("repositoryUrl = %v", seen["repositoryUrl"])
	}
}

func TestGenerateWithProgressQueryAndAuth(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/documentation/generate-with-progress" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("sessionId") != "abc" {
			t.Errorf("sessionId = %q", r.URL.Query().Get("sessionId"))
		}
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		_, _ = w.Write([]byte(`{"status":"Analyzing","progress":40}`))
	})

	p, err := c.GenerateWithProgress(context.Background(), "abc")
	if err != nil {
		t.Fatalf("GenerateWithProgress: %v", err)
	}
	if p.Status != "Analyzing" || p.Progress != 40 || p.Finished() || p.Failed() {
		t.Errorf("progress = %+v", p)
	}
}

func TestGenerateOutlastsRequestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(150 * time.Millisecond)
		_, _ = w.Write([]byte(`{"status":"Complete","progress":100,"documentation":"# Hi"}`))
	}))
	t.Cleanup(srv.Close)
	c := New(srv.URL+"/api", WithTimeout(50*time.Millisecond))

	p, err := c.GenerateWithProgress(context.Background(), "abc")
	if err != nil {
		t.Fatalf("GenerateWithProgress: %v", err)
	}
	if p.Documentation != "# Hi" {
		t.Errorf("documentation = %q", p.Documentation)
	}

	if _, err := c.Login(context.Background(), "ada", "secret1"); err == nil {
		t.Error("Login outlived the request timeout")
	}
}

func TestGenerateHonoursContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)
	c := New(srv.URL + "/api")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	if _, err := c.GenerateWithProgress(ctx, "abc"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if d := time.Since(start); d > time.Second {
		t.Errorf("request ran %v after its deadline", d)
	}
}

func TestUploadFileStreamsMultipart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "repo.zip")
	payload := []byte("PK\x03\x04 fake zip body")
	if err := os.WriteFile(path, payload, 0644); err != nil {
		t.Fatal(err)
	}

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/upload/file" {
			t.Errorf("path = %s", r.URL.Path)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer f.Close()
		got, _ := io.ReadAll(f)
		if hdr.Filename != "repo.zip" || string(got) != string(payload) {
			t.Errorf("received %q (%d bytes)", hdr.Filename, len(got))
		}
		_ = json.NewEncoder(w).Encode(IngestResponse{Success: true, Message: "ok", SessionID: "abc"})
	})

	var last int64
	resp, err := c.UploadFile(context.Background(), path, func(n int64) { last = n })
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if resp.SessionID != "abc" {
		t.Errorf("SessionID = %q", resp.SessionID)
	}
	if last != int64(len(payload)) {
		t.Errorf("progress callback saw %d bytes, want %d", last, len(payload))
	}
}

func TestDownloadUsesContentDisposition(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") != "markdown" {
			t.Errorf("format = %q", r.URL.Query().Get("format"))
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("Content-Disposition", `form-data; name="attachment"; filename="README.md"`)
		_, _ = w.Write([]byte("# Hi\n"))
	})

	doc, err := c.Download(context.Background(), "abc", "")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if doc.Filename != "README.md" || string(doc.Content) != "# Hi\n" {
		t.Errorf("doc = %+v", doc)
	}
}

func TestDownloadServerError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := c.Download(context.Background(), "abc", "markdown")
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("err = %v, want *Error 500", err)
	}
}

func TestHealthPlainAndJSON(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/health":
			_, _ = w.Write([]byte("Backend is running!"))
		case "/api/git/health":
			_, _ = w.Write([]byte(`{"status":"Git service is ready"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	h, err := c.Health(context.Background(), "")
	if err != nil || h.Message != "Backend is running!" {
		t.Errorf("Health() = %+v, %v", h, err)
	}
	h, err = c.Health(context.Background(), PathGitHealth)
	if err != nil || h.Message != "Git service is ready" {
		t.Errorf("Health(git) = %+v, %v", h, err)
	}
	if _, err := c.Health(context.Background(), PathUploadHealth); err == nil {
		t.Error("expected 404 error")
	}
}

func TestAttachmentName(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{`attachment; filename="README.md"`, "README.md"},
		{`attachment; filename="../../etc/passwd"`, "passwd"},
		{`attachment`, ""},
		{`;;;`, ""},
	}
	for _, tt := range tests {
		if got := attachmentName(tt.header); got != tt.want {
			t.Errorf("attachmentName(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
