package process

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/openjus/balcao/internal/lookup"
)

const validNumber = "12345678901234567890"

type fakeResolver struct {
	err   error
	calls int
	last  string
}

func (f *fakeResolver) Resolve(_ context.Context, number string) (*lookup.Case, error) {
	f.calls++
	f.last = number
	if f.err != nil {
		return nil, f.err
	}
	return &lookup.Case{
		Number:       number,
		Class:        "Procedimento Comum",
		Subject:      "Indenização",
		Status:       "Em andamento",
		LastMovement: "Concluso para despacho",
		Tribunal:     "TJSP",
	}, nil
}

func TestFlowEntryAsksForNumber(t *testing.T) {
	h := New(&fakeResolver{})
	ctx := context.Background()

	if !h.CanHandle("u1", "quero consultar processo") {
		t.Fatal("trigger text should be claimed")
	}

	res := h.Handle(ctx, "u1", "quero consultar processo")
	if !strings.Contains(res.Reply, "informe o número do processo") {
		t.Errorf("entry reply = %q", res.Reply)
	}
	if !res.Continue {
		t.Error("entry should keep the flow open")
	}

	// Mid-flow, any text is claimed even without a trigger.
	if !h.CanHandle("u1", "0000") {
		t.Error("mid-flow text should be claimed")
	}
}

func TestFlowExtractsEmbeddedNumber(t *testing.T) {
	resolver := &fakeResolver{}
	h := New(resolver)
	ctx := context.Background()

	h.Handle(ctx, "u1", "consultar processo")
	res := h.Handle(ctx, "u1", "o número é "+validNumber+", obrigado")

	if resolver.last != validNumber {
		t.Errorf("resolved number = %q, want %q", resolver.last, validNumber)
	}
	if !strings.Contains(res.Reply, "Processo encontrado") {
		t.Errorf("lookup reply = %q", res.Reply)
	}
	if res.Continue {
		t.Error("successful lookup should close the flow")
	}
	if h.CanHandle("u1", "qualquer coisa") {
		t.Error("state should be cleared after success")
	}
}

func TestFlowRepromptsOnBadNumber(t *testing.T) {
	resolver := &fakeResolver{}
	h := New(resolver)
	ctx := context.Background()

	h.Handle(ctx, "u1", "consultar processo")

	for _, text := range []string{"123", "abc", "1234567890123456789"} {
		res := h.Handle(ctx, "u1", text)
		if !strings.Contains(res.Reply, "não consegui identificar") {
			t.Errorf("Handle(%q) reply = %q", text, res.Reply)
		}
		if !res.Continue {
			t.Errorf("Handle(%q) should keep waiting", text)
		}
	}
	if resolver.calls != 0 {
		t.Errorf("resolver called %d times for invalid input", resolver.calls)
	}
}

func TestFlowCancel(t *testing.T) {
	resolver := &fakeResolver{}
	h := New(resolver)
	ctx := context.Background()

	for _, text := range []string{"cancelar", "sair", "quero sair", "não quero mais"} {
		t.Run(text, func(t *testing.T) {
			h.Handle(ctx, "u1", "consultar processo")
			res := h.Handle(ctx, "u1", text)

			if !strings.Contains(res.Reply, "cancelada") {
				t.Errorf("cancel reply = %q", res.Reply)
			}
			if h.CanHandle("u1", "texto qualquer") {
				t.Error("state should be cleared after cancel")
			}
		})
	}
	if resolver.calls != 0 {
		t.Errorf("resolver called %d times during cancels", resolver.calls)
	}
}

func TestFlowKeepsWaitingWhenLookupDown(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("registry unavailable")}
	h := New(resolver)
	ctx := context.Background()

	h.Handle(ctx, "u1", "consultar processo")
	res := h.Handle(ctx, "u1", validNumber)

	if !strings.Contains(res.Reply, "indisponível") {
		t.Errorf("outage reply = %q", res.Reply)
	}
	// The waiting state survives so the user can resend the number.
	if !h.CanHandle("u1", validNumber) {
		t.Error("state should survive a lookup outage")
	}

	resolver.err = nil
	res = h.Handle(ctx, "u1", validNumber)
	if !strings.Contains(res.Reply, "Processo encontrado") {
		t.Errorf("retry reply = %q", res.Reply)
	}
}

func TestReset(t *testing.T) {
	h := New(&fakeResolver{})
	h.Handle(context.Background(), "u1", "consultar processo")

	h.Reset("u1")

	if h.CanHandle("u1", "texto sem gatilho") {
		t.Error("Reset should clear the waiting state")
	}
}
