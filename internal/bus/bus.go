// Package bus carries messages between channel adapters and the engine
// consumer loop.
package bus

import (
	"context"
	"log/slog"
)

// InboundMessage is a message received from a channel (Telegram, WhatsApp,
// live chat, web).
type InboundMessage struct {
	Channel  string            `json:"channel"`
	UserID   string            `json:"user_id"`
	ChatID   string            `json:"chat_id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// OutboundMessage is a reply to be delivered to a channel. Status carries the
// dialog status string ("normal", "ended", "handoff") so adapters with native
// chat lifecycle operations (close, transfer) can honor it.
type OutboundMessage struct {
	Channel  string            `json:"channel"`
	ChatID   string            `json:"chat_id"`
	Text     string            `json:"text"`
	Status   string            `json:"status"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

const queueSize = 256

// MessageBus is the in-process queue pair connecting adapters and the
// consumer loop.
type MessageBus struct {
	inbound  chan InboundMessage
	outbound chan OutboundMessage
}

// NewMessageBus creates a bus with bounded queues.
func NewMessageBus() *MessageBus {
	return &MessageBus{
		inbound:  make(chan InboundMessage, queueSize),
		outbound: make(chan OutboundMessage, queueSize),
	}
}

// PublishInbound enqueues an inbound message. Drops (with a log) when the
// queue is full rather than blocking a channel's receive loop.
func (b *MessageBus) PublishInbound(msg InboundMessage) {
	select {
	case b.inbound <- msg:
	default:
		slog.Warn("inbound queue full, dropping message", "channel", msg.Channel, "user", msg.UserID)
	}
}

// ConsumeInbound blocks for the next inbound message. Returns false when ctx
// is cancelled.
func (b *MessageBus) ConsumeInbound(ctx context.Context) (InboundMessage, bool) {
	select {
	case <-ctx.Done():
		return InboundMessage{}, false
	case msg := <-b.inbound:
		return msg, true
	}
}

// PublishOutbound enqueues a reply for delivery.
func (b *MessageBus) PublishOutbound(msg OutboundMessage) {
	select {
	case b.outbound <- msg:
	default:
		slog.Warn("outbound queue full, dropping message", "channel", msg.Channel, "chat", msg.ChatID)
	}
}

// ConsumeOutbound blocks for the next outbound message. Returns false when
// ctx is cancelled.
func (b *MessageBus) ConsumeOutbound(ctx context.Context) (OutboundMessage, bool) {
	select {
	case <-ctx.Done():
		return OutboundMessage{}, false
	case msg := <-b.outbound:
		return msg, true
	}
}
