package feedback

import (
	"testing"
	"time"
)

func TestCooldownLimiter(t *testing.T) {
	l := NewCooldownLimiter(time.Minute)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }

	if !l.Allow("u1", "r1") {
		t.Fatal("first submission should be allowed")
	}
	l.Record("u1", "r1")

	if l.Allow("u1", "r1") {
		t.Error("resubmission inside the window should be blocked")
	}

	// Other pairs are unaffected.
	if !l.Allow("u1", "r2") {
		t.Error("a different response must not be throttled")
	}
	if !l.Allow("u2", "r1") {
		t.Error("a different user must not be throttled")
	}

	l.now = func() time.Time { return base.Add(time.Minute) }
	if !l.Allow("u1", "r1") {
		t.Error("submission at the end of the window should be allowed")
	}
}

func TestCooldownLimiterPrunesAtCap(t *testing.T) {
	l := NewCooldownLimiter(time.Minute)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }

	for i := 0; i < maxTrackedPairs; i++ {
		l.Record("u", string(rune(i))+"-resp")
	}

	// All tracked entries are stale by now, so the next Record prunes them
	// instead of growing past the cap.
	l.now = func() time.Time { return base.Add(2 * time.Minute) }
	l.Record("u1", "fresh")

	l.mu.Lock()
	n := len(l.entries)
	l.mu.Unlock()
	if n > maxTrackedPairs {
		t.Errorf("entries = %d, want at most %d", n, maxTrackedPairs)
	}
	if l.Allow("u1", "fresh") {
		t.Error("the fresh pair should still be throttled")
	}
}
