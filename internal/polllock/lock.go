// Package polllock provides the cross-process mutual exclusion token that
// guards long-poll channel feeds: at most one running instance polls a given
// feed at a time. The token is a shared key with a TTL, so a crashed holder's
// lock self-expires. The backing store is behind a narrow interface and is
// swappable without touching poll-loop logic.
package polllock

import "context"

// Lock is a named TTL-expiring mutual exclusion token.
type Lock interface {
	// TryAcquire atomically sets the token if and only if it is absent
	// (set-if-not-exists) and returns whether acquisition succeeded.
	TryAcquire(ctx context.Context) (bool, error)

	// Release deletes the token unconditionally.
	Release(ctx context.Context) error
}
