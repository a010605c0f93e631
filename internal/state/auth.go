package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthSession is the persisted login.
type AuthSession struct {
	Token    string
	Username string
}

// AuthState is the auth store. Login and Logout are its only writers.
type AuthState struct {
	mu       sync.RWMutex
	storage  Storage
	sessions *SessionState
	current  AuthSession
	now      func() time.Time
}

// NewAuthState loads any persisted login from storage. sessions may be nil;
// when set, Logout also clears it.
func NewAuthState(storage Storage, sessions *SessionState) (*AuthState, error) {
	token, err := lookup(storage, KeyToken)
	if err != nil {
		return nil, fmt.Errorf("loading token: %w", err)
	}
	username, err := lookup(storage, KeyUsername)
	if err != nil {
		return nil, fmt.Errorf("loading username: %w", err)
	}

	return &AuthState{
		storage:  storage,
		sessions: sessions,
		current:  AuthSession{Token: token, Username: username},
		now:      time.Now,
	}, nil
}

// Login writes token and username to durable storage, then to memory.
func (a *AuthState) Login(token, username string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.storage.Set(KeyToken, token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	if err := a.storage.Set(KeyUsername, username); err != nil {
		return fmt.Errorf("saving username: %w", err)
	}
	a.current = AuthSession{Token: token, Username: username}
	return nil
}

// Logout clears durable storage, memory and the session store.
// Memory is cleared even when storage fails.
func (a *AuthState) Logout() error {
	a.mu.Lock()
	a.current = AuthSession{}
	errToken := a.storage.Delete(KeyToken)
	errUser := a.storage.Delete(KeyUsername)
	a.mu.Unlock()

	var errSession error
	if a.sessions != nil {
		errSession = a.sessions.Clear()
	}

	switch {
	case errToken != nil:
		return fmt.Errorf("removing token: %w", errToken)
	case errUser != nil:
		return fmt.Errorf("removing username: %w", errUser)
	case errSession != nil:
		return fmt.Errorf("clearing session: %w", errSession)
	}
	return nil
}

// Current returns the in-memory login.
func (a *AuthState) Current() AuthSession {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current
}

// Token returns the bearer token, or "".
func (a *AuthState) Token() string {
	return a.Current().Token
}

// Username returns the logged-in user, or "".
func (a *AuthState) Username() string {
	return a.Current().Username
}

// IsAuthenticated reports whether a token is held and, when the token is a
// JWT carrying exp, that it has not expired. Opaque tokens count as valid;
// the server remains the authority.
func (a *AuthState) IsAuthenticated() bool {
	token := a.Token()
	if token == "" {
		return false
	}
	exp, ok := TokenExpiry(token)
	if !ok {
		return true
	}
	return a.now().Before(exp)
}

// TokenExpiry extracts the exp claim from a JWT without verifying its
// signature. ok is false for non-JWT tokens or tokens without exp.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
