package sessions

import (
	"testing"
	"time"
)

func TestGetOrCreateStableID(t *testing.T) {
	m := NewManager(time.Minute)

	first := m.GetOrCreate("u1")
	if first == "" {
		t.Fatal("expected a session id")
	}
	if second := m.GetOrCreate("u1"); second != first {
		t.Errorf("session id changed: %q then %q", first, second)
	}
	if other := m.GetOrCreate("u2"); other == first {
		t.Error("distinct users must not share a session id")
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
}

func TestIsExpired(t *testing.T) {
	m := NewManager(time.Minute)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	m.GetOrCreate("u1")

	// Exactly at the threshold the session is still live.
	m.now = func() time.Time { return base.Add(time.Minute) }
	if m.IsExpired("u1") {
		t.Error("session at the idle threshold should not be expired")
	}

	m.now = func() time.Time { return base.Add(time.Minute + time.Second) }
	if !m.IsExpired("u1") {
		t.Error("session past the idle threshold should be expired")
	}

	// GetOrCreate refreshes activity and revives the session.
	m.GetOrCreate("u1")
	if m.IsExpired("u1") {
		t.Error("refreshed session should not be expired")
	}
}

func TestIsExpiredWithoutSession(t *testing.T) {
	m := NewManager(time.Minute)
	if m.IsExpired("nobody") {
		t.Error("a user without a session is never expired")
	}
}

func TestClear(t *testing.T) {
	m := NewManager(time.Minute)
	first := m.GetOrCreate("u1")

	m.Clear("u1")

	if m.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", m.Len())
	}
	if second := m.GetOrCreate("u1"); second == first {
		t.Error("Clear should force a fresh session id")
	}
}
