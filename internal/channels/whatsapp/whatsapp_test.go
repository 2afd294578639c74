package whatsapp

import (
	"context"
	"testing"
	"time"

	"github.com/openjus/balcao/internal/bus"
	"github.com/openjus/balcao/internal/config"
)

func newTestChannel(t *testing.T) (*Channel, *bus.MessageBus) {
	t.Helper()
	msgBus := bus.NewMessageBus()
	c, err := New(config.WhatsAppConfig{
		APIURL:        "https://graph.example/v19.0",
		PhoneNumberID: "12345",
		AccessToken:   "token",
	}, msgBus)
	if err != nil {
		t.Fatal(err)
	}
	return c, msgBus
}

func TestNewRequiresCredentials(t *testing.T) {
	msgBus := bus.NewMessageBus()

	tests := []struct {
		name string
		cfg  config.WhatsAppConfig
	}{
		{"missing api url", config.WhatsAppConfig{PhoneNumberID: "1", AccessToken: "t"}},
		{"missing phone number id", config.WhatsAppConfig{APIURL: "https://x", AccessToken: "t"}},
		{"missing access token", config.WhatsAppConfig{APIURL: "https://x", PhoneNumberID: "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg, msgBus); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestHandleWebhookPublishesTextMessages(t *testing.T) {
	c, msgBus := newTestChannel(t)

	body := []byte(`{
		"entry": [{
			"changes": [{
				"value": {
					"messages": [
						{"from": "5511999990000", "type": "text", "text": {"body": "quero consultar processo"}},
						{"from": "5511999990000", "type": "image"}
					]
				}
			}]
		}]
	}`)

	if err := c.HandleWebhook(body); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	msg, ok := msgBus.ConsumeInbound(ctx)
	if !ok {
		t.Fatal("expected one inbound message")
	}
	if msg.Channel != "whatsapp" {
		t.Errorf("channel = %q", msg.Channel)
	}
	if msg.UserID != "5511999990000" || msg.Text != "quero consultar processo" {
		t.Errorf("message = %+v", msg)
	}

	// The image message must not have been published.
	shortCtx, shortCancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer shortCancel()
	if extra, ok := msgBus.ConsumeInbound(shortCtx); ok {
		t.Errorf("unexpected extra message: %+v", extra)
	}
}

func TestHandleWebhookRejectsMalformedBody(t *testing.T) {
	c, _ := newTestChannel(t)
	if err := c.HandleWebhook([]byte("not json")); err == nil {
		t.Error("expected a parse error")
	}
}
