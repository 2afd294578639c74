package dialog

import (
	"context"
	"testing"
)

// fakeHandler claims texts containing its trigger and replies with its name.
type fakeHandler struct {
	name    string
	trigger string
	reply   string
	resets  int
}

func (f *fakeHandler) Name() string { return f.name }

func (f *fakeHandler) CanHandle(_, text string) bool {
	return TriggerSet{f.trigger}.Matches(text)
}

func (f *fakeHandler) Handle(_ context.Context, _, _ string) Result {
	return Result{Reply: f.reply, Status: StatusNormal}
}

func (f *fakeHandler) Reset(_ string) { f.resets++ }

func TestDispatchFirstMatchWins(t *testing.T) {
	first := &fakeHandler{name: "first", trigger: "ajuda", reply: "from first"}
	second := &fakeHandler{name: "second", trigger: "ajuda", reply: "from second"}
	d := NewDispatcher(first, second)

	res := d.Dispatch(context.Background(), "u1", "preciso de ajuda")
	if res.Reply != "from first" {
		t.Errorf("reply = %q, want %q", res.Reply, "from first")
	}
}

func TestDispatchSkipsNonMatching(t *testing.T) {
	first := &fakeHandler{name: "first", trigger: "processo", reply: "lookup"}
	second := &fakeHandler{name: "second", trigger: "atendente", reply: "handoff"}
	d := NewDispatcher(first, second)

	res := d.Dispatch(context.Background(), "u1", "quero falar com atendente")
	if res.Reply != "handoff" {
		t.Errorf("reply = %q, want %q", res.Reply, "handoff")
	}
}

func TestDispatchNoHandlerClaims(t *testing.T) {
	d := NewDispatcher(&fakeHandler{name: "h", trigger: "processo", reply: "x"})

	res := d.Dispatch(context.Background(), "u1", "bom dia")
	if res.Reply != "" {
		t.Errorf("expected empty result, got %q", res.Reply)
	}
}

func TestDispatchEmptyReplyFallsThrough(t *testing.T) {
	// A handler that claims the turn but returns no reply must not shadow a
	// later handler.
	silent := &fakeHandler{name: "silent", trigger: "ajuda", reply: ""}
	loud := &fakeHandler{name: "loud", trigger: "ajuda", reply: "resposta"}
	d := NewDispatcher(silent, loud)

	res := d.Dispatch(context.Background(), "u1", "ajuda")
	if res.Reply != "resposta" {
		t.Errorf("reply = %q, want %q", res.Reply, "resposta")
	}
}

func TestResetAllReachesEveryHandler(t *testing.T) {
	first := &fakeHandler{name: "first", trigger: "a"}
	second := &fakeHandler{name: "second", trigger: "b"}
	d := NewDispatcher(first, second)

	d.ResetAll("u1")

	if first.resets != 1 || second.resets != 1 {
		t.Errorf("resets = %d/%d, want 1/1", first.resets, second.resets)
	}
}
