package generate

import (
	"context"
	"errors"
	"sync"
)

// ErrGenerationInProgress is returned by Regenerate while a loop is running.
var ErrGenerationInProgress = errors.New("generation already in progress")

// Controller holds the single active generation. Starting a generation for
// another session cancels the active one first.
type Controller struct {
	poller *Poller
	ctx    context.Context

	mu     sync.Mutex
	active *Handle
}

// NewController creates a Controller whose loops are bound to ctx.
func NewController(ctx context.Context, p *Poller) *Controller {
	return &Controller{poller: p, ctx: ctx}
}

// Start begins generating for sessionID. If a loop for the same session is
// already running it is returned unchanged and started is false.
func (c *Controller) Start(sessionID string) (h *Handle, started bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		if c.active.SessionID() == sessionID && c.active.Running() {
			return c.active, false
		}
		c.active.Cancel()
	}
	c.active = c.poller.Start(c.ctx, sessionID)
	return c.active, true
}

// Regenerate discards the previous outcome and starts again. It refuses
// while a loop is running.
func (c *Controller) Regenerate(sessionID string) (*Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		if c.active.Running() {
			return nil, ErrGenerationInProgress
		}
		c.active.Cancel()
	}
	c.active = c.poller.Start(c.ctx, sessionID)
	return c.active, nil
}

// Stop cancels the active loop, if any.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		c.active.Cancel()
		c.active = nil
	}
}

// Active returns the current handle, or nil.
func (c *Controller) Active() *Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// IsCurrent reports whether handleID belongs to the active handle.
func (c *Controller) IsCurrent(handleID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil && c.active.ID() == handleID
}
