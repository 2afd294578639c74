// Package sessions tracks the timed conversational context per user,
// independent of dialog handler state. A session pins a stable opaque
// identifier to a user until the user goes idle past the threshold or a
// handler ends the conversation.
package sessions

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultIdleThreshold is how long a session may sit without activity before
// the next message finds it expired.
const DefaultIdleThreshold = 15 * time.Minute

// Session holds one user's conversational context. ID is immutable for the
// session's lifetime; only LastActivity changes.
type Session struct {
	UserID       string
	ID           string
	LastActivity time.Time
}

// Manager handles session lifecycle and idle expiry.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	idle     time.Duration
	now      func() time.Time
}

// NewManager creates a session manager. A non-positive idle threshold falls
// back to the default.
func NewManager(idle time.Duration) *Manager {
	if idle <= 0 {
		idle = DefaultIdleThreshold
	}
	return &Manager{
		sessions: make(map[string]*Session),
		idle:     idle,
		now:      time.Now,
	}
}

// GetOrCreate returns the user's session id, creating a fresh session when
// none exists and refreshing LastActivity otherwise. Callers must check
// IsExpired first: this call never reports expiry, it renews.
func (m *Manager) GetOrCreate(userID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[userID]; ok {
		s.LastActivity = m.now()
		return s.ID
	}

	s := &Session{
		UserID:       userID,
		ID:           uuid.NewString(),
		LastActivity: m.now(),
	}
	m.sessions[userID] = s
	return s.ID
}

// IsExpired reports whether a session exists and has been idle past the
// threshold. It does not refresh and does not create.
func (m *Manager) IsExpired(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		return false
	}
	return m.now().Sub(s.LastActivity) > m.idle
}

// Clear removes the user's session.
func (m *Manager) Clear(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
