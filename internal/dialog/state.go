package dialog

import "sync"

// StateStore is per-user scratch space for one handler. Each handler owns its
// own store, so no handler can read another's fields. Entries are created
// lazily and live until the handler clears them — an abandoned flow keeps its
// flags until Reset or a terminal transition.
//
// The engine serializes turns per user, but stores are still locked because
// channel adapters may consult state (CanHandle) while another user's turn is
// in flight.
type StateStore struct {
	mu    sync.RWMutex
	users map[string]map[string]any
}

// NewStateStore creates an empty per-user state store.
func NewStateStore() *StateStore {
	return &StateStore{users: make(map[string]map[string]any)}
}

// Set stores a field for the user, creating the user entry if needed.
func (s *StateStore) Set(userID, key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		u = make(map[string]any)
		s.users[userID] = u
	}
	u[key] = value
}

// Get returns a field for the user.
func (s *StateStore) Get(userID, key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, false
	}
	v, ok := u[key]
	return v, ok
}

// GetBool returns a boolean field, false if absent or not a bool.
func (s *StateStore) GetBool(userID, key string) bool {
	v, ok := s.Get(userID, key)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// GetString returns a string field, "" if absent or not a string.
func (s *StateStore) GetString(userID, key string) string {
	v, ok := s.Get(userID, key)
	if !ok {
		return ""
	}
	str, _ := v.(string)
	return str
}

// Clear removes all fields for the user.
func (s *StateStore) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
}

// HasUser reports whether any state exists for the user.
func (s *StateStore) HasUser(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[userID]
	return ok
}
