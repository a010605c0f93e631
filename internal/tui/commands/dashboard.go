package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/reposcribe/reposcribe-cli/internal/api"
	"github.com/reposcribe/reposcribe-cli/internal/session"
	"github.com/reposcribe/reposcribe-cli/internal/tui"
)

// LoadSessionsCmd fetches the session history from store.
func LoadSessionsCmd(store *session.Store, limit int) tea.Cmd {
	return func() tea.Msg {
		if store == nil {
			return tui.SessionsLoadMsg{
				Err: fmt.Errorf("session store not available"),
			}
		}

		records, err := store.ListSessions(limit)
		if err != nil {
			return tui.SessionsLoadMsg{Err: err}
		}
		return tui.SessionsLoadMsg{Records: records}
	}
}

// HealthCmd probes the server's health endpoint.
func HealthCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		h, err := client.Health(context.Background(), "")
		if err != nil {
			return tui.HealthMsg{Err: err}
		}
		return tui.HealthMsg{Message: h.Message}
	}
}
