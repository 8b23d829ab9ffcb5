package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"fin_statements/pkg/core/metrics"
)

// Manager keeps sessions by ID and expires idle ones.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	idle     time.Duration
}

// NewManager creates a manager. Sessions unused for longer than idle are
// removed by Sweep; idle <= 0 keeps sessions forever.
func NewManager(idle time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		idle:     idle,
	}
}

// Create starts a new empty session.
func (m *Manager) Create() *Session {
	s := New(uuid.New().String())

	m.mu.Lock()
	m.sessions[s.ID] = s
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.SetSessions(n)
	log.Printf("[SESSION] created %s", s.ID)
	return s
}

// Get returns the session with id and marks it as used.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		s.touch()
	}
	return s, ok
}

// Delete closes and removes the session.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()

	if ok {
		s.Close()
		metrics.SetSessions(n)
	}
	return ok
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes sessions idle since before now-idle and returns how many.
func (m *Manager) Sweep(now time.Time) int {
	if m.idle <= 0 {
		return 0
	}
	cutoff := now.Add(-m.idle)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		metrics.SetSessions(n)
		log.Printf("[SESSION] expired %d idle sessions", len(expired))
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if m.idle <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.Sweep(now)
		}
	}
}
