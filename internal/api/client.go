package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Endpoint paths relative to the base URL.
const (
	PathRegister       = "/auth/register"
	PathLogin          = "/auth/login"
	PathClone          = "/git/clone"
	PathUpload         = "/upload/file"
	PathGenerate       = "/documentation/generate-with-progress"
	PathDownload       = "/documentation/download"
	PathHealth         = "/health"
	PathUploadHealth   = "/upload/health"
	PathGitHealth      = "/git/health"
	PathDocumentHealth = "/documentation/health"
)

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 4096

// TokenSource supplies the bearer token for authenticated calls.
type TokenSource interface {
	Token() string
}

// Client talks to the reposcribe REST API. Calls are never retried; a
// failed call is surfaced and retry is left to the user.
type Client struct {
	baseURL string
	http    *http.Client
	upload  *http.Client
	poll    *http.Client // generation requests, bounded only by their context
	tokens  TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every JSON call except generation, which the server
// may hold open for the whole job. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithUploadTimeout bounds multipart uploads. Zero disables the bound.
func WithUploadTimeout(d time.Duration) Option {
	return func(c *Client) { c.upload.Timeout = d }
}

// WithTokenSource attaches a bearer token provider.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithHTTPClient replaces the transport used for all calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
		c.upload = &http.Client{Transport: hc.Transport}
		c.poll = &http.Client{Transport: hc.Transport}
	}
}

// New creates a Client for baseURL, e.g. http://localhost:8080/api.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		upload:  &http.Client{},
		poll:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Register creates an account and returns its token.
func (c *Client) Register(ctx context.Context, username, password string) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, PathRegister, nil, Credentials{username, password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, PathLogin, nil, Credentials{username, password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CloneRepository asks the server to clone a Git repository.
func (c *Client) CloneRepository(ctx context.Context, req CloneRequest) (*IngestResponse, error) {
	if req.Username == "" || req.Password == "" {
		req.Username, req.Password = "", ""
	}
	var out IngestResponse
	if err := c.doJSON(ctx, http.MethodPost, PathClone, nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadFile streams the file at path as multipart field "file". onSent, if
// non-nil, is called with the cumulative bytes written to the request body.
func (c *Client) UploadFile(ctx context.Context, path string, onSent func(sent int64)) (*IngestResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", filepath.Base(path))
		if err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		var src io.Reader = f
		if onSent != nil {
			src = &countingReader{r: f, fn: onSent}
		}
		if _, err := io.Copy(part, src); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		_ = pw.CloseWithError(mw.Close())
	}()

	req, err := c.newRequest(ctx, http.MethodPost, PathUpload, nil, pr)
	if err != nil {
		_ = pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out IngestResponse
	if err := c.do(c.upload, req, &out); err != nil {
		_ = pr.Close()
		return nil, err
	}
	return &out, nil
}

// GenerateWithProgress issues one generation request for sessionID. The
// request carries no client timeout; ctx bounds it.
func (c *Client) GenerateWithProgress(ctx context.Context, sessionID string) (*GenerationProgress, error) {
	q := url.Values{"sessionId": {sessionID}}
	req, err := c.newRequest(ctx, http.MethodPost, PathGenerate, q, nil)
	if err != nil {
		return nil, err
	}
	var out GenerationProgress
	if err := c.do(c.poll, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Download fetches the generated documentation in the given format.
func (c *Client) Download(ctx context.Context, sessionID, format string) (*Document, error) {
	if format == "" {
		format = "markdown"
	}
	q := url.Values{"sessionId": {sessionID}, "format": {format}}
	req, err := c.newRequest(ctx, http.MethodGet, PathDownload, q, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", PathDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, newError(resp.StatusCode, b)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading download: %w", err)
	}
	return &Document{
		Content:     content,
		Filename:    attachmentName(resp.Header.Get("Content-Disposition")),
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// Health probes a health path and returns its message. Plain-text bodies
// are returned as is; JSON bodies contribute their "status" field.
func (c *Client) Health(ctx context.Context, path string) (*Health, error) {
	if path == "" {
		path = PathHealth
	}
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newError(resp.StatusCode, b)
	}

	msg := strings.TrimSpace(string(b))
	var payload struct {
		Status string `json:"status"`
	}
	if json.Unmarshal(b, &payload) == nil && payload.Status != "" {
		msg = payload.Status
	}
	return &Health{Path: path, StatusCode: resp.StatusCode, Message: msg}, nil
}

// doJSON sends body as JSON and decodes a 2xx response into out.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(c.http, req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("building %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return req, nil
}

func (c *Client) do(hc *http.Client, req *http.Request, out any) error {
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newError(resp.StatusCode, b)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", req.URL.Path, err)
	}
	return nil
}

// attachmentName extracts the filename parameter of a Content-Disposition
// header, stripped of any directory part.
func attachmentName(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	name := filepath.Base(params["filename"])
	if name == "." || name == "/" {
		return ""
	}
	return name
}

type countingReader struct {
	r  io.Reader
	n  int64
	fn func(int64)
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.n += int64(n)
		c.fn(c.n)
	}
	return n, err
}
