// Package telegram connects to the Telegram Bot API using long polling.
//
// The poll loop is guarded by the cross-instance poll lock: only one running
// instance fetches updates from the bot feed at a time. Each cycle acquires
// the lock, performs exactly one fetch-and-dispatch pass and releases the
// lock again, so a crashed holder is replaced after one TTL.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/openjus/balcao/internal/bus"
	"github.com/openjus/balcao/internal/channels"
	"github.com/openjus/balcao/internal/config"
	"github.com/openjus/balcao/internal/polllock"
)

const (
	// longPollSeconds is the server-side getUpdates timeout. The poll lock
	// TTL must exceed one cycle of this length.
	longPollSeconds = 10

	// retryInterval is the sleep between acquisition attempts while another
	// instance holds the poll lock.
	retryInterval = 1 * time.Second

	// errorBackoff is the sleep after a failed getUpdates call.
	errorBackoff = 5 * time.Second
)

// Channel is the Telegram long-poll adapter.
type Channel struct {
	*channels.BaseChannel
	bot        *telego.Bot
	config     config.TelegramConfig
	lock       polllock.Lock
	nextOffset int
	cancel     context.CancelFunc
	done       chan struct{}
}

// New creates a Telegram channel from config. The lock guards the shared
// bot feed across instances.
func New(cfg config.TelegramConfig, msgBus *bus.MessageBus, lock polllock.Lock) (*Channel, error) {
	bot, err := telego.NewBot(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &Channel{
		BaseChannel: channels.NewBaseChannel("telegram", msgBus),
		bot:         bot,
		config:      cfg,
		lock:        lock,
	}, nil
}

// Start launches the lock-guarded poll loop.
func (c *Channel) Start(ctx context.Context) error {
	slog.Info("starting telegram bot (polling mode)")

	pollCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})

	go c.pollLoop(pollCtx)

	c.SetRunning(true)
	return nil
}

// Stop cancels the poll loop and waits for it to exit.
func (c *Channel) Stop(_ context.Context) error {
	slog.Info("stopping telegram bot")
	if c.cancel != nil {
		c.cancel()
	}
	if c.done != nil {
		select {
		case <-c.done:
		case <-time.After(longPollSeconds*time.Second + 5*time.Second):
			slog.Warn("telegram poll loop did not exit in time")
		}
	}
	c.SetRunning(false)
	return nil
}

// Send delivers a reply via sendMessage with HTML parse mode.
func (c *Channel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	chatID, err := strconv.ParseInt(msg.ChatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram chat id %q: %w", msg.ChatID, err)
	}

	params := tu.Message(tu.ID(chatID), msg.Text)
	params.ParseMode = telego.ModeHTML
	if _, err := c.bot.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

func (c *Channel) pollLoop(ctx context.Context) {
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		acquired, err := c.lock.TryAcquire(ctx)
		if err != nil {
			slog.Warn("poll lock acquisition failed", "error", err)
			sleepCtx(ctx, retryInterval)
			continue
		}
		if !acquired {
			sleepCtx(ctx, retryInterval)
			continue
		}

		c.pollCycle(ctx)
	}
}

// pollCycle performs one fetch-and-dispatch pass. The lock is released in a
// deferred cleanup regardless of how the cycle ends; a fresh context is used
// so shutdown still releases.
func (c *Channel) pollCycle(ctx context.Context) {
	defer func() {
		relCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.lock.Release(relCtx); err != nil {
			slog.Warn("poll lock release failed", "error", err)
		}
	}()

	updates, err := c.bot.GetUpdates(ctx, &telego.GetUpdatesParams{
		Offset:  c.nextOffset,
		Timeout: longPollSeconds,
	})
	if err != nil {
		slog.Warn("telegram getUpdates failed", "error", err)
		sleepCtx(ctx, errorBackoff)
		return
	}

	for _, update := range updates {
		if update.UpdateID >= c.nextOffset {
			c.nextOffset = update.UpdateID + 1
		}

		msg := update.Message
		if msg == nil || msg.Text == "" {
			continue
		}

		chatID := strconv.FormatInt(msg.Chat.ID, 10)
		c.HandleMessage(chatID, chatID, msg.Text, nil)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
