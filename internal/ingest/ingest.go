package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/reposcribe/reposcribe-cli/internal/api"
	"github.com/reposcribe/reposcribe-cli/internal/log"
	"github.com/reposcribe/reposcribe-cli/internal/session"
	"github.com/reposcribe/reposcribe-cli/internal/state"
)

// Fallback messages used when the server gives no reason.
const (
	MsgUploadFailed      = "Upload failed"
	MsgCloneFailed       = "Clone failed"
	MsgUploadUnreachable = "Failed to upload file. Please try again."
	MsgCloneUnreachable  = "Failed to clone repository. Please check the URL and try again."
	MsgUploadSucceeded   = "File uploaded successfully!"
	MsgCloneSucceeded    = "Repository cloned successfully!"
)

// Client is the subset of *api.Client the ingester needs.
type Client interface {
	UploadFile(ctx context.Context, path string, onSent func(int64)) (*api.IngestResponse, error)
	CloneRepository(ctx context.Context, req api.CloneRequest) (*api.IngestResponse, error)
}

// History records ingested sessions. *session.Store satisfies it.
type History interface {
	RecordSession(sess session.Session) error
}

// Error is an ingestion the server refused or that never reached it.
// Message is suitable for display as is.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Result is a successful ingestion.
type Result struct {
	Session session.Session
	Message string
}

// CloneRequest describes a repository to clone.
type CloneRequest struct {
	URL      string
	Private  bool
	Username string
	Password string
}

// Ingester submits repositories and writes the resulting session to the
// session store. The store is written only on success.
type Ingester struct {
	client   Client
	sessions *state.SessionState
	history  History
	logger   *log.Logger
	now      func() time.Time
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithHistory records every successful ingestion in h.
func WithHistory(h History) Option {
	return func(i *Ingester) { i.history = h }
}

// WithLogger sets the event logger.
func WithLogger(l *log.Logger) Option {
	return func(i *Ingester) { i.logger = l }
}

// New creates an Ingester.
func New(client Client, sessions *state.SessionState, opts ...Option) *Ingester {
	i := &Ingester{client: client, sessions: sessions, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Upload sends the zip archive at path. A directory is packed into a
// temporary archive first. onProgress, if non-nil, receives values in
// 0..100 as bytes are sent.
func (i *Ingester) Upload(ctx context.Context, path string, onProgress func(int)) (*Result, error) {
	report := progressFunc(onProgress)

	info, err := os.Stat(path)
	if err != nil {
		return nil, &ValidationError{Field: "file", Message: fmt.Sprintf("Cannot read %s", path)}
	}

	source := filepath.Base(path)
	if info.IsDir() {
		packed, cleanup, err := PackDir(path)
		if err != nil {
			return nil, fmt.Errorf("packing %s: %w", path, err)
		}
		defer cleanup()
		path = packed
		if info, err = os.Stat(packed); err != nil {
			return nil, fmt.Errorf("stat packed archive: %w", err)
		}
	}

	if err := ValidateArchive(filepath.Base(path), info.Size()); err != nil {
		return nil, err
	}

	report(0)
	total := info.Size()
	start := i.now()
	resp, err := i.client.UploadFile(ctx, path, func(sent int64) {
		report(Scale(sent, total))
	})
	if err != nil {
		report(0)
		return nil, i.fail(session.OriginFile, source, start, &Error{Message: api.MessageOr(err, MsgUploadUnreachable), Err: err})
	}
	res, err := i.accept(resp, session.OriginFile, source, MsgUploadFailed, MsgUploadSucceeded, start)
	if err != nil {
		report(0)
		return nil, err
	}
	report(100)
	return res, nil
}

// Clone asks the server to clone req.URL. Credentials are sent only for
// private repositories. onProgress, if non-nil, receives a simulated ramp
// while the server works.
func (i *Ingester) Clone(ctx context.Context, req CloneRequest, onProgress func(int)) (*Result, error) {
	url := strings.TrimSpace(req.URL)
	if err := ValidateGitURL(url); err != nil {
		return nil, err
	}
	if err := ValidateCredentials(req.Private, req.Username, req.Password); err != nil {
		return nil, err
	}

	body := api.CloneRequest{RepositoryURL: url}
	if req.Private {
		body.Username = req.Username
		body.Password = req.Password
	}

	report := progressFunc(onProgress)
	stop := startRamp(onProgress, CloneTick)
	start := i.now()
	resp, err := i.client.CloneRepository(ctx, body)
	stop()

	if err != nil {
		report(0)
		return nil, i.fail(session.OriginGit, url, start, &Error{Message: api.MessageOr(err, MsgCloneUnreachable), Err: err})
	}
	res, err := i.accept(resp, session.OriginGit, url, MsgCloneFailed, MsgCloneSucceeded, start)
	if err != nil {
		report(0)
		return nil, err
	}
	report(100)
	return res, nil
}

// accept turns a server response into a session, or into an *Error carrying
// the server's message.
func (i *Ingester) accept(resp *api.IngestResponse, origin session.Origin, source, failMsg, okMsg string, start time.Time) (*Result, error) {
	if resp == nil || !resp.Success || resp.SessionID == "" {
		msg := failMsg
		if resp != nil && strings.TrimSpace(resp.Message) != "" {
			msg = resp.Message
		}
		return nil, i.fail(origin, source, start, &Error{Message: msg})
	}

	sess := session.Session{
		ID:        resp.SessionID,
		Origin:    origin,
		Source:    source,
		CreatedAt: i.now(),
	}
	// The current session is written last so a failed ingest never changes it.
	if i.history != nil {
		if err := i.history.RecordSession(sess); err != nil {
			return nil, i.fail(origin, source, start, &Error{Message: "recording session: " + err.Error(), Err: err})
		}
	}
	if err := i.sessions.Set(sess); err != nil {
		return nil, i.fail(origin, source, start, &Error{Message: "saving session: " + err.Error(), Err: err})
	}

	msg := okMsg
	if strings.TrimSpace(resp.Message) != "" {
		msg = resp.Message
	}
	i.logger.Record(log.LogEvent{
		Event:      log.EventIngestSucceeded,
		SessionID:  sess.ID,
		Origin:     string(origin),
		Source:     source,
		DurationMs: i.now().Sub(start).Milliseconds(),
	})
	return &Result{Session: sess, Message: msg}, nil
}

func (i *Ingester) fail(origin session.Origin, source string, start time.Time, err *Error) error {
	i.logger.Record(log.LogEvent{
		Event:      log.EventIngestFailed,
		Origin:     string(origin),
		Source:     source,
		Error:      err.Message,
		DurationMs: i.now().Sub(start).Milliseconds(),
	})
	return err
}

func progressFunc(fn func(int)) func(int) {
	if fn == nil {
		return func(int) {}
	}
	return fn
}

// startRamp ticks a Ramp into fn every interval until the returned stop
// function is called. stop waits for the ticker goroutine to exit, so no
// tick is delivered after it returns.
func startRamp(fn func(int), interval time.Duration) (stop func()) {
	if fn == nil {
		return func() {}
	}
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		var r Ramp
		fn(r.Value())
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn(r.Tick())
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
		})
	}
}
