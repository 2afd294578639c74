// Package channels provides the channel abstraction layer connecting
// external platforms (Telegram, WhatsApp, live chat desks) to the engine via
// the message bus.
package channels

import (
	"context"

	"github.com/openjus/balcao/internal/bus"
)

// Channel is the interface every channel adapter satisfies.
type Channel interface {
	// Name returns the channel identifier (e.g. "telegram", "whatsapp").
	Name() string

	// Start begins receiving messages. Non-blocking after setup.
	Start(ctx context.Context) error

	// Stop gracefully shuts the channel down.
	Stop(ctx context.Context) error

	// Send delivers an outbound reply to the channel.
	Send(ctx context.Context, msg bus.OutboundMessage) error

	// IsRunning reports whether the channel is actively processing messages.
	IsRunning() bool
}

// BaseChannel provides shared plumbing for channel implementations.
type BaseChannel struct {
	name    string
	bus     *bus.MessageBus
	running bool
}

// NewBaseChannel creates the embedded base for a channel adapter.
func NewBaseChannel(name string, msgBus *bus.MessageBus) *BaseChannel {
	return &BaseChannel{name: name, bus: msgBus}
}

// Name returns the channel name.
func (c *BaseChannel) Name() string { return c.name }

// IsRunning reports the running state.
func (c *BaseChannel) IsRunning() bool { return c.running }

// SetRunning updates the running state.
func (c *BaseChannel) SetRunning(running bool) { c.running = running }

// Bus returns the message bus reference.
func (c *BaseChannel) Bus() *bus.MessageBus { return c.bus }

// HandleMessage publishes a received message to the bus. The standard way
// for adapters to forward inbound traffic.
func (c *BaseChannel) HandleMessage(userID, chatID, text string, metadata map[string]string) {
	c.bus.PublishInbound(bus.InboundMessage{
		Channel:  c.name,
		UserID:   userID,
		ChatID:   chatID,
		Text:     text,
		Metadata: metadata,
	})
}
