// Package whatsapp connects to the WhatsApp Business (Graph) API. Inbound
// traffic arrives on the gateway's webhook route; outbound replies go through
// the messages endpoint.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openjus/balcao/internal/bus"
	"github.com/openjus/balcao/internal/channels"
	"github.com/openjus/balcao/internal/config"
)

// Channel is the WhatsApp Business API adapter.
type Channel struct {
	*channels.BaseChannel
	config config.WhatsAppConfig
	client *http.Client
}

// New creates a WhatsApp channel from config.
func New(cfg config.WhatsAppConfig, msgBus *bus.MessageBus) (*Channel, error) {
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("whatsapp api_url is required")
	}
	if cfg.PhoneNumberID == "" {
		return nil, fmt.Errorf("whatsapp phone_number_id is required")
	}
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("whatsapp access token is required (BALCAO_WHATSAPP_TOKEN)")
	}

	return &Channel{
		BaseChannel: channels.NewBaseChannel("whatsapp", msgBus),
		config:      cfg,
		client:      &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Start marks the channel running. Inbound delivery is webhook-driven; the
// gateway routes POST /webhooks/whatsapp to HandleWebhook.
func (c *Channel) Start(_ context.Context) error {
	slog.Info("whatsapp channel ready (webhook mode)")
	c.SetRunning(true)
	return nil
}

// Stop marks the channel stopped.
func (c *Channel) Stop(_ context.Context) error {
	c.SetRunning(false)
	return nil
}

// Send delivers a text message via the Graph API.
func (c *Channel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                msg.ChatID,
		"type":              "text",
		"text":              map[string]string{"body": msg.Text},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal whatsapp message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", strings.TrimRight(c.config.APIURL, "/"), c.config.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build whatsapp request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send whatsapp message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("whatsapp API status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

// webhookPayload mirrors the Graph API webhook envelope down to the text
// message leaf.
type webhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []struct {
					From string `json:"from"`
					Type string `json:"type"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// HandleWebhook parses a webhook delivery and publishes any text messages to
// the bus. Non-text payloads (status updates, media) are ignored.
func (c *Channel) HandleWebhook(body []byte) error {
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("parse whatsapp webhook: %w", err)
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if msg.Type != "text" || msg.Text.Body == "" {
					continue
				}
				c.HandleMessage(msg.From, msg.From, msg.Text.Body, nil)
			}
		}
	}
	return nil
}
