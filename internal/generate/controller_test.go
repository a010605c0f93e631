package generate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/reposcribe/reposcribe-cli/internal/api"
)

func slowPoller(req Requester) *Poller {
	return NewPoller(req, WithInterval(5*time.Millisecond), WithTimeout(time.Second))
}

func TestStartTwiceForSameSessionRunsOneLoop(t *testing.T) {
	req := &scriptedRequester{block: true}
	c := NewController(context.Background(), slowPoller(req))
	defer c.Stop()

	h1, started1 := c.Start("abc")
	h2, started2 := c.Start("abc")
	if !started1 || started2 {
		t.Errorf("started = %v, %v; want true, false", started1, started2)
	}
	if h1 != h2 {
		t.Error("second Start returned a different handle")
	}

	time.Sleep(20 * time.Millisecond)
	if got := req.calls.Load(); got != 1 {
		t.Errorf("in-flight requests = %d, want 1", got)
	}
}

func TestStartForOtherSessionSupersedes(t *testing.T) {
	req := &scriptedRequester{block: true}
	c := NewController(context.Background(), slowPoller(req))
	defer c.Stop()

	old, _ := c.Start("abc")
	cur, started := c.Start("def")
	if !started {
		t.Fatal("Start for a new session did not start")
	}
	if old.Running() {
		t.Error("superseded handle still running")
	}
	if c.IsCurrent(old.ID()) || !c.IsCurrent(cur.ID()) {
		t.Error("IsCurrent does not track the active handle")
	}
}

func TestRegenerateRefusedWhileGenerating(t *testing.T) {
	req := &scriptedRequester{block: true}
	c := NewController(context.Background(), slowPoller(req))
	defer c.Stop()

	c.Start("abc")
	if _, err := c.Regenerate("abc"); !errors.Is(err, ErrGenerationInProgress) {
		t.Errorf("Regenerate err = %v, want ErrGenerationInProgress", err)
	}
}

func TestRegenerateAfterDone(t *testing.T) {
	req := &scriptedRequester{responses: []*api.GenerationProgress{{Documentation: "# Hi"}}}
	c := NewController(context.Background(), slowPoller(req))
	defer c.Stop()

	h, _ := c.Start("abc")
	<-h.Done()

	h2, err := c.Regenerate("abc")
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	<-h2.Done()
	if h2.ID() == h.ID() {
		t.Error("Regenerate reused the old handle")
	}
	if req.calls.Load() != 2 {
		t.Errorf("requests = %d, want 2", req.calls.Load())
	}
}

func TestStopCancels(t *testing.T) {
	req := &scriptedRequester{block: true}
	c := NewController(context.Background(), slowPoller(req))

	h, _ := c.Start("abc")
	c.Stop()
	if h.Running() || c.Active() != nil {
		t.Error("Stop left a running loop")
	}
}
