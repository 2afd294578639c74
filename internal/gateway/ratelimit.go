package gateway

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter enforces a per-client requests-per-minute budget on the HTTP
// API. Each client key (user ID, falling back to remote address) gets its own
// token bucket.
type RateLimiter struct {
	rpm   int
	burst int

	mu       sync.Mutex
	visitors map[string]*visitor
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// staleAfter is how long an idle visitor bucket is kept before pruning.
const staleAfter = 10 * time.Minute

// NewRateLimiter creates a limiter. rpm <= 0 disables limiting.
func NewRateLimiter(rpm, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		rpm:      rpm,
		burst:    burst,
		visitors: make(map[string]*visitor),
	}
}

// Enabled reports whether limiting is active.
func (r *RateLimiter) Enabled() bool { return r.rpm > 0 }

// Allow reports whether the client identified by key may proceed.
func (r *RateLimiter) Allow(key string) bool {
	if !r.Enabled() {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.visitors[key]
	if !ok {
		r.pruneLocked()
		v = &visitor{
			limiter: rate.NewLimiter(rate.Limit(float64(r.rpm)/60.0), r.burst),
		}
		r.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}

// pruneLocked drops buckets idle past staleAfter. Called with mu held.
func (r *RateLimiter) pruneLocked() {
	cutoff := time.Now().Add(-staleAfter)
	for key, v := range r.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(r.visitors, key)
		}
	}
}
