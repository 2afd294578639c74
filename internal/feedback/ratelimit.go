package feedback

import (
	"sync"
	"time"
)

const (
	// DefaultCooldown is the minimum interval between two submissions for
	// the same (user, response) pair.
	DefaultCooldown = 5 * time.Minute

	// maxTrackedPairs caps the tracked pairs so rotating identifiers cannot
	// exhaust memory.
	maxTrackedPairs = 4096
)

// CooldownLimiter throttles duplicate feedback per (user, response) pair.
// Safe for concurrent use.
type CooldownLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	entries map[string]time.Time
	now     func() time.Time
}

// NewCooldownLimiter creates a limiter. A non-positive window uses the
// default.
func NewCooldownLimiter(window time.Duration) *CooldownLimiter {
	if window <= 0 {
		window = DefaultCooldown
	}
	return &CooldownLimiter{
		window:  window,
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Allow reports whether the pair may submit: true unless an entry younger
// than the window exists.
func (l *CooldownLimiter) Allow(userID, responseID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	last, ok := l.entries[pairKey(userID, responseID)]
	if !ok {
		return true
	}
	return l.now().Sub(last) >= l.window
}

// Record stamps the current time for the pair.
func (l *CooldownLimiter) Record(userID, responseID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	// Prune stale entries when approaching the cap.
	if len(l.entries) >= maxTrackedPairs {
		for k, t := range l.entries {
			if now.Sub(t) >= l.window {
				delete(l.entries, k)
			}
		}
		for len(l.entries) >= maxTrackedPairs {
			for k := range l.entries {
				delete(l.entries, k)
				break
			}
		}
	}

	l.entries[pairKey(userID, responseID)] = now
}

func pairKey(userID, responseID string) string {
	return userID + "\x00" + responseID
}
