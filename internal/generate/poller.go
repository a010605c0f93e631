// Package generate drives a documentation generation job on the server to
// completion by polling it.
//
// A Handle owns one poll loop. The loop issues its first request at once,
// waits PollInterval after each response before asking again, and gives up
// after Timeout measured from the start. Only the documentation and error
// fields of a response end the loop; status and progress are informational.
package generate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reposcribe/reposcribe-cli/internal/api"
	"github.com/reposcribe/reposcribe-cli/internal/log"
	"github.com/reposcribe/reposcribe-cli/internal/session"
)

const (
	DefaultInterval = 2 * time.Second
	DefaultTimeout  = 5 * time.Minute
)

// Display messages.
const (
	MsgGenerating = "Generating documentation..."
	MsgFailed     = "Failed to generate documentation"
	MsgTimedOut   = "Documentation generation timed out"
)

// ErrTimedOut is the error of a handle that hit its timeout.
var ErrTimedOut = errors.New("documentation generation timed out")

// State is the lifecycle position of a generation.
type State int

const (
	Idle State = iota
	Generating
	Done
	Failed
	TimedOut
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Generating:
		return "generating"
	case Done:
		return "done"
	case Failed:
		return "failed"
	case TimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends a generation.
func (s State) Terminal() bool {
	return s == Done || s == Failed || s == TimedOut
}

// Update is one observation of a generation. Each update replaces the
// previous one.
type Update struct {
	HandleID      string
	SessionID     string
	State         State
	Status        string
	Progress      int
	Documentation string
	Message       string // display text for Failed and TimedOut
	Err           error
	Polls         int
}

// Requester issues a single generation request.
type Requester interface {
	GenerateWithProgress(ctx context.Context, sessionID string) (*api.GenerationProgress, error)
}

// StatusRecorder persists the outcome of a generation. *session.Store
// satisfies it.
type StatusRecorder interface {
	UpdateStatus(id, status string) error
}

// Poller starts poll loops.
type Poller struct {
	req      Requester
	interval time.Duration
	timeout  time.Duration
	logger   *log.Logger
	status   StatusRecorder
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval sets the delay between a response and the next request.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithTimeout sets the overall ceiling.
func WithTimeout(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithLogger sets the event logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Poller) { p.logger = l }
}

// WithStatusRecorder records each generation's state against its session.
func WithStatusRecorder(r StatusRecorder) Option {
	return func(p *Poller) { p.status = r }
}

// NewPoller creates a Poller.
func NewPoller(req Requester, opts ...Option) *Poller {
	p := &Poller{req: req, interval: DefaultInterval, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Interval returns the configured poll interval.
func (p *Poller) Interval() time.Duration { return p.interval }

// Timeout returns the configured ceiling.
func (p *Poller) Timeout() time.Duration { return p.timeout }

// Start begins generating documentation for sessionID. The loop stops when
// it reaches a terminal state, when ctx is cancelled, or when the handle is
// cancelled.
func (p *Poller) Start(ctx context.Context, sessionID string) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		id:        uuid.NewString(),
		sessionID: sessionID,
		updates:   make(chan Update, 16),
		done:      make(chan struct{}),
		cancel:    cancel,
	}
	go p.run(ctx, h)
	return h
}

func (p *Poller) run(ctx context.Context, h *Handle) {
	defer close(h.done)
	defer close(h.updates)

	start := time.Now()
	deadline, stop := context.WithTimeout(ctx, p.timeout)
	defer stop()

	p.record(h.sessionID, session.StatusGenerating)
	p.logger.Record(log.LogEvent{Event: log.EventGenerationStarted, SessionID: h.sessionID, HandleID: h.id})

	last := Update{HandleID: h.id, SessionID: h.sessionID, State: Generating, Status: MsgGenerating}
	h.publish(ctx, last)

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		last.Polls++
		prog, err := p.req.GenerateWithProgress(deadline, h.sessionID)

		switch {
		case ctx.Err() != nil:
			p.cancelled(h, last, start)
			return
		case err != nil && deadline.Err() != nil:
			p.finish(ctx, h, p.timedOut(last), start)
			return
		case err != nil:
			last.State = Failed
			last.Message = api.MessageOr(err, MsgFailed)
			last.Err = err
			p.finish(ctx, h, last, start)
			return
		}

		last.Status = prog.Status
		if strings.TrimSpace(last.Status) == "" {
			last.Status = MsgGenerating
		}
		last.Progress = clamp(prog.Progress)

		if prog.Finished() {
			last.State = Done
			last.Progress = 100
			last.Documentation = prog.Documentation
			p.finish(ctx, h, last, start)
			return
		}
		if prog.Failed() {
			last.State = Failed
			last.Message = prog.Error
			last.Err = errors.New(prog.Error)
			p.finish(ctx, h, last, start)
			return
		}
		h.publish(ctx, last)

		timer.Reset(p.interval)
		select {
		case <-timer.C:
		case <-deadline.Done():
			if ctx.Err() != nil {
				p.cancelled(h, last, start)
				return
			}
			p.finish(ctx, h, p.timedOut(last), start)
			return
		}
	}
}

func (p *Poller) timedOut(u Update) Update {
	u.State = TimedOut
	u.Message = MsgTimedOut
	u.Err = ErrTimedOut
	return u
}

func (p *Poller) finish(ctx context.Context, h *Handle, u Update, start time.Time) {
	h.setResult(u)
	h.deliver(ctx, u)

	ev := log.LogEvent{
		SessionID:  h.sessionID,
		HandleID:   h.id,
		Status:     u.Status,
		Progress:   u.Progress,
		Polls:      u.Polls,
		DurationMs: time.Since(start).Milliseconds(),
	}
	switch u.State {
	case Done:
		ev.Event = log.EventGenerationDone
		p.record(h.sessionID, session.StatusDone)
	case TimedOut:
		ev.Event = log.EventGenerationTimedOut
		ev.Error = u.Message
		p.record(h.sessionID, session.StatusTimedOut)
	default:
		ev.Event = log.EventGenerationFailed
		ev.Error = u.Message
		p.record(h.sessionID, session.StatusFailed)
	}
	p.logger.Record(ev)
}

func (p *Poller) cancelled(h *Handle, u Update, start time.Time) {
	p.logger.Record(log.LogEvent{
		Event:      log.EventGenerationCanceled,
		SessionID:  h.sessionID,
		HandleID:   h.id,
		Polls:      u.Polls,
		DurationMs: time.Since(start).Milliseconds(),
	})
}

func (p *Poller) record(sessionID, status string) {
	if p.status == nil {
		return
	}
	_ = p.status.UpdateStatus(sessionID, status)
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// Handle is one running generation.
type Handle struct {
	id        string
	sessionID string
	updates   chan Update
	done      chan struct{}
	cancel    context.CancelFunc

	mu     sync.Mutex
	result *Update
}

// ID uniquely identifies this handle.
func (h *Handle) ID() string { return h.id }

// SessionID returns the session being generated.
func (h *Handle) SessionID() string { return h.sessionID }

// Updates delivers progress and exactly one terminal update, then closes.
// A cancelled handle closes the channel without a terminal update.
func (h *Handle) Updates() <-chan Update { return h.updates }

// Done is closed once the loop has exited.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Running reports whether the loop is still active.
func (h *Handle) Running() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// Cancel stops the loop and waits for it to exit. After Cancel returns no
// request is issued and no update is delivered.
func (h *Handle) Cancel() {
	h.cancel()
	<-h.done
	for range h.updates {
	}
}

// Result returns the terminal update, if the loop reached one.
func (h *Handle) Result() (Update, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.result == nil {
		return Update{}, false
	}
	return *h.result, true
}

func (h *Handle) setResult(u Update) {
	h.mu.Lock()
	h.result = &u
	h.mu.Unlock()
}

// publish sends a progress update, dropping it if the reader is behind.
func (h *Handle) publish(ctx context.Context, u Update) {
	if ctx.Err() != nil {
		return
	}
	select {
	case h.updates <- u:
	default:
	}
}

// deliver sends a terminal update, waiting for room unless cancelled.
func (h *Handle) deliver(ctx context.Context, u Update) {
	if ctx.Err() != nil {
		return
	}
	select {
	case h.updates <- u:
	case <-ctx.Done():
	}
}
