// ABOUTME: Manager tracks live sessions by ID for the HTTP and MCP surfaces
// ABOUTME: Session IDs are random UUIDs; closing a session removes it
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/harper/docgraph/internal/log"
)

// ErrSessionNotFound is returned for unknown session IDs
var ErrSessionNotFound = errors.New("session not found")

// Manager creates, finds and closes sessions
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	deps     Dependencies
	defaults Credentials
}

// NewManager creates a Manager; defaults fill credentials a caller omits
func NewManager(deps Dependencies, defaults Credentials) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		deps:     deps,
		defaults: defaults,
	}
}

// Create starts a new session
func (m *Manager) Create(creds Credentials) *Session {
	s := New(uuid.New().String(), creds.Merge(m.defaults), m.deps)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	log.Info("session started", "session", s.ID)
	return s
}

// Get looks up a session
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete closes and forgets a session
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	log.Info("session ended", "session", id)
	return s.Close(ctx)
}

// Len reports the number of live sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CloseAll ends every session
func (m *Manager) CloseAll(ctx context.Context) {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for id, s := range sessions {
		if err := s.Close(ctx); err != nil {
			log.Error(err, "failed to close session", "session", id)
		}
	}
}
