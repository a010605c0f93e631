// Package commands provides Bubble Tea commands for TUI operations.
package commands

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/reposcribe/reposcribe-cli/internal/generate"
	"github.com/reposcribe/reposcribe-cli/internal/render"
	"github.com/reposcribe/reposcribe-cli/internal/tui"
)

// listenTimeout bounds how long a listener blocks before yielding a tick.
const listenTimeout = 100 * time.Millisecond

// StartGenerationCmd starts (or reuses) the generation loop for sessionID.
func StartGenerationCmd(ctrl *generate.Controller, sessionID string) tea.Cmd {
	return func() tea.Msg {
		h, started := ctrl.Start(sessionID)
		return tui.GenerationStartedMsg{Handle: h, Started: started}
	}
}

// RegenerateCmd restarts generation unless a loop is running.
func RegenerateCmd(ctrl *generate.Controller, sessionID string) tea.Cmd {
	return func() tea.Msg {
		h, err := ctrl.Regenerate(sessionID)
		if err != nil {
			return tui.ErrorMsg{Err: err}
		}
		return tui.GenerationStartedMsg{Handle: h, Started: true}
	}
}

// ListenGenerationCmd waits for the next update from h.
// Returns GenerationUpdateMsg for each update, GenerationClosedMsg when the
// channel closes, or GenerationTickMsg on timeout to keep listening.
func ListenGenerationCmd(h *generate.Handle) tea.Cmd {
	id := h.ID()
	updates := h.Updates()
	return func() tea.Msg {
		select {
		case u, ok := <-updates:
			if !ok {
				return tui.GenerationClosedMsg{HandleID: id} // channel closed
			}
			return tui.GenerationUpdateMsg{HandleID: id, Update: u}
		case <-time.After(listenTimeout):
			return tui.GenerationTickMsg{HandleID: id} // keep listening
		}
	}
}

// RenderDocumentCmd renders markdown off the update loop.
func RenderDocumentCmd(r render.Renderer, handleID, markdown string) tea.Cmd {
	return func() tea.Msg {
		out, err := r.Render(markdown)
		return tui.DocumentRenderedMsg{HandleID: handleID, Rendered: out, Err: err}
	}
}
