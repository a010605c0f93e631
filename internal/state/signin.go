package state

import (
	"context"
	"strings"

	"github.com/reposcribe/reposcribe-cli/internal/api"
	"github.com/reposcribe/reposcribe-cli/internal/log"
)

// Fallback messages for auth failures without a server reason.
const (
	MsgLoginFailed    = "Login failed. Please check your credentials."
	MsgRegisterFailed = "Registration failed. Please try again."
)

// Authenticator is a login or register call. *api.Client's Login and
// Register satisfy it.
type Authenticator func(ctx context.Context, username, password string) (*api.AuthResponse, error)

// SignInError displays the server's reason and keeps the cause for
// errors.Is.
type SignInError struct {
	Message string
	Err     error
}

func (e *SignInError) Error() string { return e.Message }

func (e *SignInError) Unwrap() error { return e.Err }

// SignIn runs call and stores the issued token. register selects the
// fallback message and the logged event. It returns the server's response
// with Username filled in.
func (a *AuthState) SignIn(ctx context.Context, call Authenticator, register bool, username, password string, logger *log.Logger) (*api.AuthResponse, error) {
	fallback := MsgLoginFailed
	event := log.EventLogin
	if register {
		fallback = MsgRegisterFailed
		event = log.EventRegister
	}
	username = strings.TrimSpace(username)

	resp, err := call(ctx, username, password)
	if err != nil {
		msg := api.MessageOr(err, fallback)
		logger.Record(log.LogEvent{Event: event, Username: username, Error: msg})
		return nil, &SignInError{Message: msg, Err: err}
	}
	if resp.Token == "" {
		msg := resp.Message
		if msg == "" {
			msg = fallback
		}
		logger.Record(log.LogEvent{Event: event, Username: username, Error: msg})
		return nil, &SignInError{Message: msg}
	}

	if resp.Username == "" {
		resp.Username = username
	}
	if err := a.Login(resp.Token, resp.Username); err != nil {
		return nil, err
	}
	logger.Record(log.LogEvent{Event: event, Username: resp.Username})
	return resp, nil
}
