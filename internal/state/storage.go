// Package state holds the two process-wide client stores: authentication and
// the current ingestion session. Both are explicit containers injected into
// the CLI and TUI, initialized from durable storage at startup and mutated
// only through their methods.
package state

import (
	"errors"
	"sync"

	"github.com/reposcribe/reposcribe-cli/internal/session"
)

// Durable storage keys.
const (
	KeyToken         = "token"
	KeyUsername      = "username"
	KeySessionID     = "session_id"
	KeySessionOrigin = "session_origin"
	KeySessionSource = "session_source"
)

// Storage is durable string key/value storage. Get returns
// session.ErrNotFound for absent keys.
type Storage interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// MemoryStorage is a Storage that lives only as long as the process.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", session.ErrNotFound
	}
	return v, nil
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// lookup reads key, mapping absence to "".
func lookup(s Storage, key string) (string, error) {
	v, err := s.Get(key)
	if errors.Is(err, session.ErrNotFound) {
		return "", nil
	}
	return v, err
}
