// Package livechat connects to a Live Helper Chat style operator desk over
// its REST API. Visitor messages arrive on the gateway's webhook route;
// replies are posted back into the chat. This adapter is the one channel
// with native chat lifecycle operations, so it honors the dialog status:
// handoff transfers the chat to the human department, ended closes it.
package livechat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/openjus/balcao/internal/bus"
	"github.com/openjus/balcao/internal/channels"
	"github.com/openjus/balcao/internal/config"
	"github.com/openjus/balcao/internal/dialog"
)

const (
	// idleSweepInterval is how often idle chats are checked for auto-close.
	idleSweepInterval = 5 * time.Minute

	msgTransferring = "Estou transferindo você para um atendente humano. Aguarde um momento..."
	closeIdleReason = "Chat encerrado por inatividade"
	closeEndReason  = "Atendimento encerrado"
)

// Channel is the live chat desk adapter.
type Channel struct {
	*channels.BaseChannel
	config config.LiveChatConfig
	client *http.Client

	mu       sync.Mutex
	activity map[string]time.Time // chatID → last visitor message

	cancel context.CancelFunc
}

// New creates a live chat channel from config.
func New(cfg config.LiveChatConfig, msgBus *bus.MessageBus) (*Channel, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("livechat url is required")
	}
	return &Channel{
		BaseChannel: channels.NewBaseChannel("livechat", msgBus),
		config:      cfg,
		client:      &http.Client{Timeout: 15 * time.Second},
		activity:    make(map[string]time.Time),
	}, nil
}

// Start launches the idle-chat sweeper. Inbound delivery is webhook-driven.
func (c *Channel) Start(ctx context.Context) error {
	slog.Info("livechat channel ready (webhook mode)", "url", c.config.URL)

	sweepCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	go c.sweepIdleChats(sweepCtx)

	c.SetRunning(true)
	return nil
}

// Stop cancels the sweeper.
func (c *Channel) Stop(_ context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}
	c.SetRunning(false)
	return nil
}

// Send posts the reply into the chat, then honors the dialog status with the
// desk's native operations.
func (c *Channel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	if err := c.postMessage(ctx, msg.ChatID, msg.Text); err != nil {
		return err
	}

	switch msg.Status {
	case dialog.StatusHandoff.String():
		if err := c.postMessage(ctx, msg.ChatID, msgTransferring); err != nil {
			slog.Warn("livechat transfer notice failed", "chat", msg.ChatID, "error", err)
		}
		if err := c.transferChat(ctx, msg.ChatID); err != nil {
			return fmt.Errorf("transfer chat %s: %w", msg.ChatID, err)
		}
		c.forget(msg.ChatID)
	case dialog.StatusEnded.String():
		if err := c.closeChat(ctx, msg.ChatID, closeEndReason); err != nil {
			return fmt.Errorf("close chat %s: %w", msg.ChatID, err)
		}
		c.forget(msg.ChatID)
	}
	return nil
}

// webhookPayload is the desk's chat-message webhook body.
type webhookPayload struct {
	ChatID   json.Number `json:"chat_id"`
	Msg      string      `json:"msg"`
	UserID   string      `json:"user_id"`
	UserType string      `json:"user_type"`
}

// HandleWebhook parses a desk webhook and publishes visitor messages to the
// bus. Operator and system messages are skipped.
func (c *Channel) HandleWebhook(body []byte) error {
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("parse livechat webhook: %w", err)
	}

	chatID := payload.ChatID.String()
	if chatID == "" || payload.Msg == "" {
		return nil
	}
	if payload.UserType == "operator" {
		return nil
	}

	c.mu.Lock()
	c.activity[chatID] = time.Now()
	c.mu.Unlock()

	userID := payload.UserID
	if userID == "" || userID == "0" {
		userID = "livechat:" + chatID
	}
	c.HandleMessage(userID, chatID, payload.Msg, nil)
	return nil
}

// sweepIdleChats closes chats with no visitor activity past the threshold.
func (c *Channel) sweepIdleChats(ctx context.Context) {
	threshold := time.Duration(c.config.IdleCloseMinutes) * time.Minute
	if threshold <= 0 {
		threshold = 30 * time.Minute
	}

	ticker := time.NewTicker(idleSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		now := time.Now()
		var stale []string
		c.mu.Lock()
		for chatID, last := range c.activity {
			if now.Sub(last) > threshold {
				stale = append(stale, chatID)
			}
		}
		c.mu.Unlock()

		for _, chatID := range stale {
			if err := c.closeChat(ctx, chatID, closeIdleReason); err != nil {
				slog.Warn("idle chat close failed", "chat", chatID, "error", err)
				continue
			}
			c.forget(chatID)
			slog.Info("idle chat closed", "chat", chatID)
		}
	}
}

func (c *Channel) forget(chatID string) {
	c.mu.Lock()
	delete(c.activity, chatID)
	c.mu.Unlock()
}

func (c *Channel) postMessage(ctx context.Context, chatID, text string) error {
	return c.call(ctx, "/restapi/msg/addmsguser", map[string]any{
		"chat_id": chatID,
		"msg":     text,
		"user_id": 0, // 0 = system/bot
	})
}

func (c *Channel) closeChat(ctx context.Context, chatID, reason string) error {
	return c.call(ctx, "/restapi/chat/closechat", map[string]any{
		"chat_id": chatID,
		"reason":  reason,
	})
}

func (c *Channel) transferChat(ctx context.Context, chatID string) error {
	departmentID := c.config.HumanDepartmentID
	if departmentID == 0 {
		departmentID = 1
	}
	return c.call(ctx, "/restapi/chat/transferchat", map[string]any{
		"chat_id":       chatID,
		"department_id": departmentID,
	})
}

// call posts to a desk REST endpoint and checks the {error, msg} envelope.
func (c *Channel) call(ctx context.Context, path string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal livechat request: %w", err)
	}

	url := strings.TrimRight(c.config.URL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build livechat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("X-API-Key", c.config.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("livechat %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("livechat %s: status %d", path, resp.StatusCode)
	}

	var envelope struct {
		Error bool   `json:"error"`
		Msg   string `json:"msg"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&envelope); err != nil {
		return fmt.Errorf("decode livechat response: %w", err)
	}
	if envelope.Error {
		return fmt.Errorf("livechat %s: %s", path, envelope.Msg)
	}
	return nil
}
