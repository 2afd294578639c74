package dialog

import "testing"

func TestStateStoreIsolatesUsers(t *testing.T) {
	s := NewStateStore()

	s.Set("alice", "waiting", true)
	s.Set("alice", "subject", "consulta")

	if !s.GetBool("alice", "waiting") {
		t.Error("expected waiting=true for alice")
	}
	if s.GetBool("bob", "waiting") {
		t.Error("bob should have no state")
	}
	if got := s.GetString("alice", "subject"); got != "consulta" {
		t.Errorf("subject = %q, want %q", got, "consulta")
	}
}

func TestStateStoreClear(t *testing.T) {
	s := NewStateStore()
	s.Set("alice", "waiting", true)

	s.Clear("alice")

	if s.HasUser("alice") {
		t.Error("alice should have no state after Clear")
	}
	if s.GetBool("alice", "waiting") {
		t.Error("waiting should be false after Clear")
	}
}

func TestStateStoreTypeMismatch(t *testing.T) {
	s := NewStateStore()
	s.Set("alice", "field", 42)

	if s.GetBool("alice", "field") {
		t.Error("GetBool on an int field should be false")
	}
	if got := s.GetString("alice", "field"); got != "" {
		t.Errorf("GetString on an int field = %q, want empty", got)
	}
}
