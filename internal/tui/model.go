// Package tui implements the terminal user interface using Bubble Tea.
package tui

import (
	"strings"

	"github.com/reposcribe/reposcribe-cli/internal/api"
	"github.com/reposcribe/reposcribe-cli/internal/config"
	"github.com/reposcribe/reposcribe-cli/internal/generate"
	"github.com/reposcribe/reposcribe-cli/internal/ingest"
	"github.com/reposcribe/reposcribe-cli/internal/log"
	"github.com/reposcribe/reposcribe-cli/internal/render"
	"github.com/reposcribe/reposcribe-cli/internal/session"
	"github.com/reposcribe/reposcribe-cli/internal/state"
)

// ViewState is the screen currently shown.
type ViewState int

const (
	StateLogin ViewState = iota
	StateRegister
	StateDashboard
	StateDocumentation
)

func (s ViewState) String() string {
	switch s {
	case StateLogin:
		return "login"
	case StateRegister:
		return "register"
	case StateDashboard:
		return "dashboard"
	case StateDocumentation:
		return "documentation"
	default:
		return "unknown"
	}
}

// RouteState maps a route path to a screen. Unknown paths and "/" land on
// the dashboard.
func RouteState(path string) ViewState {
	switch strings.TrimSuffix(strings.ToLower(path), "/") {
	case "/login":
		return StateLogin
	case "/register":
		return StateRegister
	case "/documentation":
		return StateDocumentation
	default:
		return StateDashboard
	}
}

// MsgNoSession is shown when the documentation screen is requested without
// a current session.
const MsgNoSession = "No session found. Please upload a repository first."

// Deps holds everything the TUI needs to talk to the server and to local
// state.
type Deps struct {
	Cfg        *config.Config
	Client     *api.Client
	Auth       *state.AuthState
	Sessions   *state.SessionState
	History    *session.Store // may be nil
	Ingester   *ingest.Ingester
	Controller *generate.Controller
	Renderer   render.Renderer
	Logger     *log.Logger
}

// Model holds application-wide TUI state. Screen-specific state lives in
// the view models.
type Model struct {
	Deps

	State ViewState

	// Notice is shown on the dashboard after a redirect, e.g. MsgNoSession.
	Notice string

	// Terminal dimensions
	Width  int
	Height int

	// Ctrl+C confirmation state
	CtrlCPending bool // True when waiting for second Ctrl+C press
}

// NewModel creates a Model. The starting screen depends on whether a valid
// token is stored.
func NewModel(deps Deps) *Model {
	m := &Model{
		Deps:   deps,
		State:  StateLogin,
		Width:  80,
		Height: 24,
	}
	if m.IsAuthenticated() {
		m.State = StateDashboard
	}
	return m
}

// IsAuthenticated reports whether a non-expired token is held.
func (m *Model) IsAuthenticated() bool {
	return m.Auth != nil && m.Auth.IsAuthenticated()
}

// CurrentSession returns the current session, if any.
func (m *Model) CurrentSession() (session.Session, bool) {
	if m.Sessions == nil {
		return session.Session{}, false
	}
	return m.Sessions.Current()
}

// Guard applies route guards to a requested screen and returns the screen
// to show instead, plus a notice explaining a redirect.
func (m *Model) Guard(want ViewState) (ViewState, string) {
	switch want {
	case StateDashboard:
		if !m.IsAuthenticated() {
			return StateLogin, ""
		}
	case StateDocumentation:
		if !m.IsAuthenticated() {
			return StateLogin, ""
		}
		if _, ok := m.CurrentSession(); !ok {
			return StateDashboard, MsgNoSession
		}
	}
	return want, ""
}
