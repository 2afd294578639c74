package bus

import (
	"context"
	"testing"
	"time"
)

func TestInboundRoundTrip(t *testing.T) {
	b := NewMessageBus()

	b.PublishInbound(InboundMessage{Channel: "telegram", UserID: "u1", ChatID: "c1", Text: "oi"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	msg, ok := b.ConsumeInbound(ctx)
	if !ok {
		t.Fatal("expected a message")
	}
	if msg.Channel != "telegram" || msg.UserID != "u1" || msg.Text != "oi" {
		t.Errorf("message = %+v", msg)
	}
}

func TestOutboundRoundTrip(t *testing.T) {
	b := NewMessageBus()

	b.PublishOutbound(OutboundMessage{Channel: "whatsapp", ChatID: "c1", Text: "resposta", Status: "normal"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	msg, ok := b.ConsumeOutbound(ctx)
	if !ok {
		t.Fatal("expected a message")
	}
	if msg.Status != "normal" || msg.Text != "resposta" {
		t.Errorf("message = %+v", msg)
	}
}

func TestConsumeReturnsOnCancel(t *testing.T) {
	b := NewMessageBus()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, ok := b.ConsumeInbound(ctx); ok {
		t.Error("cancelled consume should report false")
	}
	if _, ok := b.ConsumeOutbound(ctx); ok {
		t.Error("cancelled consume should report false")
	}
}

func TestPublishNeverBlocksWhenFull(t *testing.T) {
	b := NewMessageBus()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < queueSize+10; i++ {
			b.PublishInbound(InboundMessage{Channel: "web", Text: "x"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("PublishInbound blocked on a full queue")
	}
}
