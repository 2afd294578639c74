package polllock

import (
	"context"
	"sync"
	"time"
)

// MemoryLock is an in-process Lock for standalone deployments (single
// instance, no shared store) and tests. Same TTL semantics as the Redis
// implementation.
type MemoryLock struct {
	mu       sync.Mutex
	held     bool
	deadline time.Time
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryLock creates an in-process lock with the given TTL.
func NewMemoryLock(ttl time.Duration) *MemoryLock {
	return &MemoryLock{ttl: ttl, now: time.Now}
}

// TryAcquire takes the token unless it is held and unexpired.
func (l *MemoryLock) TryAcquire(_ context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held && l.now().Before(l.deadline) {
		return false, nil
	}
	l.held = true
	l.deadline = l.now().Add(l.ttl)
	return true, nil
}

// Release drops the token.
func (l *MemoryLock) Release(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held = false
	return nil
}
