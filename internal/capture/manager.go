package capture

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager keeps the open booth sessions.
type Manager struct {
	deps Deps
	opts Options

	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewManager creates a session manager sharing deps between sessions.
func NewManager(deps Deps, opts Options) *Manager {
	return &Manager{
		deps:     deps,
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Create opens a new session.
func (m *Manager) Create() *Session {
	s := NewSession(uuid.NewString(), m.deps, m.opts)
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	return s
}

// Get returns a session by ID, or nil.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// Delete closes and removes a session. It reports whether the session existed.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
	return ok
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep closes sessions idle for longer than ttl and returns how many it closed.
func (m *Manager) Sweep(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	return len(idle)
}

// CloseAll closes every session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
