package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/reposcribe/reposcribe-cli/internal/api"
	"github.com/reposcribe/reposcribe-cli/internal/log"
	"github.com/reposcribe/reposcribe-cli/internal/state"
	"github.com/reposcribe/reposcribe-cli/internal/tui"
)

// LoginCmd exchanges credentials for a token and stores it.
func LoginCmd(client *api.Client, auth *state.AuthState, logger *log.Logger, username, password string) tea.Cmd {
	return authCmd(false, client.Login, auth, logger, username, password)
}

// RegisterCmd creates an account and stores its token.
func RegisterCmd(client *api.Client, auth *state.AuthState, logger *log.Logger, username, password string) tea.Cmd {
	return authCmd(true, client.Register, auth, logger, username, password)
}

func authCmd(register bool, call state.Authenticator, auth *state.AuthState, logger *log.Logger, username, password string) tea.Cmd {
	return func() tea.Msg {
		resp, err := auth.SignIn(context.Background(), call, register, username, password, logger)
		if err != nil {
			return tui.AuthResultMsg{Register: register, Username: username, Err: err}
		}
		return tui.AuthResultMsg{Register: register, Username: resp.Username, Message: resp.Message}
	}
}
