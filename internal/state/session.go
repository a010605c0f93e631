package state

import (
	"fmt"
	"sync"

	"github.com/reposcribe/reposcribe-cli/internal/session"
)

// SessionState is the session store: the single current ingestion session.
// It is assigned only after a successful ingestion and is the sole gate for
// entering the documentation viewer.
type SessionState struct {
	mu      sync.RWMutex
	storage Storage
	current *session.Session
}

// NewSessionState loads the persisted current session, if any.
func NewSessionState(storage Storage) (*SessionState, error) {
	s := &SessionState{storage: storage}

	id, err := lookup(storage, KeySessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session id: %w", err)
	}
	if id == "" {
		return s, nil
	}
	origin, err := lookup(storage, KeySessionOrigin)
	if err != nil {
		return nil, fmt.Errorf("loading session origin: %w", err)
	}
	source, err := lookup(storage, KeySessionSource)
	if err != nil {
		return nil, fmt.Errorf("loading session source: %w", err)
	}

	sess := session.Session{ID: id, Origin: session.Origin(origin), Source: source}
	if sess.Origin.Valid() {
		s.current = &sess
	}
	return s, nil
}

// Set replaces the current session.
func (s *SessionState) Set(sess session.Session) error {
	if sess.ID == "" {
		return fmt.Errorf("session id is required")
	}
	if !sess.Origin.Valid() {
		return fmt.Errorf("invalid session origin %q", sess.Origin)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Set(KeySessionID, sess.ID); err != nil {
		return fmt.Errorf("saving session id: %w", err)
	}
	if err := s.storage.Set(KeySessionOrigin, string(sess.Origin)); err != nil {
		return fmt.Errorf("saving session origin: %w", err)
	}
	if err := s.storage.Set(KeySessionSource, sess.Source); err != nil {
		return fmt.Errorf("saving session source: %w", err)
	}
	s.current = &sess
	return nil
}

// Clear drops the current session from memory and storage.
func (s *SessionState) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	for _, key := range []string{KeySessionID, KeySessionOrigin, KeySessionSource} {
		if err := s.storage.Delete(key); err != nil {
			return fmt.Errorf("removing %s: %w", key, err)
		}
	}
	return nil
}

// Current returns the current session and whether one is set.
func (s *SessionState) Current() (session.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return session.Session{}, false
	}
	return *s.current, true
}

// ID returns the current session ID, or "".
func (s *SessionState) ID() string {
	sess, _ := s.Current()
	return sess.ID
}
