package tui

import (
	"github.com/reposcribe/reposcribe-cli/internal/generate"
	"github.com/reposcribe/reposcribe-cli/internal/ingest"
	"github.com/reposcribe/reposcribe-cli/internal/session"
)

// ============================================================================
// Navigation Messages
// ============================================================================

// NavigateMsg requests a screen change. Route guards apply.
type NavigateMsg struct {
	State ViewState
}

// LogoutMsg requests logout and a return to the login screen.
type LogoutMsg struct{}

// ============================================================================
// Auth Messages
// ============================================================================

// AuthResultMsg is the outcome of a login or register call.
type AuthResultMsg struct {
	Register bool
	Username string
	Message  string
	Err      error
}

// ============================================================================
// Ingestion Messages
// ============================================================================

// RampTickMsg advances the simulated ingestion progress.
type RampTickMsg struct {
	Seq int
}

// IngestResultMsg is the outcome of an upload or clone.
type IngestResultMsg struct {
	Origin session.Origin
	Result *ingest.Result
	Err    error
}

// ============================================================================
// Generation Messages
// ============================================================================

// GenerationStartedMsg reports the handle now driving generation.
type GenerationStartedMsg struct {
	Handle  *generate.Handle
	Started bool // false when an existing loop was reused
}

// GenerationUpdateMsg carries one update from a generation handle.
type GenerationUpdateMsg struct {
	HandleID string
	Update   generate.Update
}

// GenerationTickMsg keeps a listener alive when no update arrived.
type GenerationTickMsg struct {
	HandleID string
}

// GenerationClosedMsg signals that a handle's update channel closed.
type GenerationClosedMsg struct {
	HandleID string
}

// DocumentRenderedMsg carries rendered documentation for display.
type DocumentRenderedMsg struct {
	HandleID string
	Rendered string
	Err      error
}

// ============================================================================
// Download Messages
// ============================================================================

// DownloadResultMsg is the outcome of a download.
type DownloadResultMsg struct {
	Path string
	Err  error
}

// ============================================================================
// Dashboard Messages
// ============================================================================

// SessionsLoadMsg carries the session history.
type SessionsLoadMsg struct {
	Records []session.Record
	Err     error
}

// HealthMsg is the result of a server health probe.
type HealthMsg struct {
	Message string
	Err     error
}

// ============================================================================
// Utility Messages
// ============================================================================

// CtrlCResetMsg clears the pending Ctrl+C confirmation.
type CtrlCResetMsg struct{}

// ErrorMsg is a generic error message.
type ErrorMsg struct {
	Err error
}
