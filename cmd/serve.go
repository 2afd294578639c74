package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/openjus/balcao/internal/bus"
	"github.com/openjus/balcao/internal/channels"
	"github.com/openjus/balcao/internal/channels/discord"
	"github.com/openjus/balcao/internal/channels/livechat"
	"github.com/openjus/balcao/internal/channels/telegram"
	"github.com/openjus/balcao/internal/channels/whatsapp"
	"github.com/openjus/balcao/internal/config"
	"github.com/openjus/balcao/internal/dialog"
	"github.com/openjus/balcao/internal/dialog/handoff"
	"github.com/openjus/balcao/internal/dialog/process"
	"github.com/openjus/balcao/internal/directory"
	"github.com/openjus/balcao/internal/engine"
	"github.com/openjus/balcao/internal/feedback"
	"github.com/openjus/balcao/internal/gateway"
	"github.com/openjus/balcao/internal/lookup"
	"github.com/openjus/balcao/internal/meet"
	"github.com/openjus/balcao/internal/nlp"
	"github.com/openjus/balcao/internal/polllock"
	"github.com/openjus/balcao/internal/sessions"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the chatbot service",
		Run: func(cmd *cobra.Command, args []string) {
			runServe()
		},
	}
}

func runServe() {
	setupLogging()

	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Organization directory: a missing or malformed file is fatal, the
	// handoff flow cannot run without it.
	dir, err := directory.Load(config.ExpandHome(cfg.Directory.Path))
	if err != nil {
		slog.Error("failed to load organization directory", "path", cfg.Directory.Path, "error", err)
		os.Exit(1)
	}
	slog.Info("organization directory loaded", "organizations", dir.Len())
	if cfg.Directory.Watch {
		go func() {
			if err := dir.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Warn("directory watcher stopped", "error", err)
			}
		}()
	}

	// Collaborator clients
	nlpClient := nlp.NewClient(cfg.NLP.BaseURL)
	lookupClient := lookup.NewClient(cfg.Lookup.BaseURL, cfg.Lookup.APIKey)
	meetClient := meet.NewJitsiClient(cfg.Meet.Domain, cfg.Meet.APIKey)

	// Dialog pipeline: registration order is dispatch order.
	dispatcher := dialog.NewDispatcher(
		process.New(lookupClient),
		handoff.New(dir, meetClient),
	)
	classifier := dialog.NewClassifier(cfg.Dialog.HandoffPhrases, cfg.Dialog.EndingPhrases)
	sessionMgr := sessions.NewManager(cfg.Sessions.IdleThreshold())

	eng := engine.New(dispatcher, sessionMgr, nlpClient, classifier)

	// Feedback store: Postgres in managed mode, SQLite otherwise.
	var fbStore feedback.Store
	if cfg.IsManagedMode() {
		fbStore, err = feedback.NewPGStore(cfg.Database.PostgresDSN)
		if err != nil {
			slog.Error("failed to open postgres feedback store", "error", err)
			os.Exit(1)
		}
		slog.Info("feedback store: postgres")
	} else {
		fbStore, err = feedback.NewSQLiteStore(config.ExpandHome(cfg.Database.SQLitePath))
		if err != nil {
			slog.Error("failed to open sqlite feedback store", "error", err)
			os.Exit(1)
		}
		slog.Info("feedback store: sqlite", "path", cfg.Database.SQLitePath)
	}
	defer fbStore.Close()
	fbService := feedback.NewService(fbStore, cfg.Feedback.Cooldown())

	// Bus + channels
	msgBus := bus.NewMessageBus()
	channelMgr := channels.NewManager(msgBus)

	server := gateway.NewServer(cfg, eng, fbService)

	if cfg.Channels.Telegram.Enabled && cfg.Channels.Telegram.Token != "" {
		lock, lockErr := buildPollLock(cfg)
		if lockErr != nil {
			slog.Error("failed to create poll lock", "error", lockErr)
			os.Exit(1)
		}
		tg, tgErr := telegram.New(cfg.Channels.Telegram, msgBus, lock)
		if tgErr != nil {
			slog.Error("failed to initialize telegram channel", "error", tgErr)
		} else {
			channelMgr.Register(tg)
			slog.Info("telegram channel enabled")
		}
	}

	if cfg.Channels.WhatsApp.Enabled {
		wa, waErr := whatsapp.New(cfg.Channels.WhatsApp, msgBus)
		if waErr != nil {
			slog.Error("failed to initialize whatsapp channel", "error", waErr)
		} else {
			channelMgr.Register(wa)
			server.SetWhatsAppWebhook(wa)
			slog.Info("whatsapp channel enabled")
		}
	}

	if cfg.Channels.LiveChat.Enabled {
		lc, lcErr := livechat.New(cfg.Channels.LiveChat, msgBus)
		if lcErr != nil {
			slog.Error("failed to initialize livechat channel", "error", lcErr)
		} else {
			channelMgr.Register(lc)
			server.SetLiveChatWebhook(lc)
			slog.Info("livechat channel enabled")
		}
	}

	if cfg.Channels.Discord.Enabled && cfg.Channels.Discord.Token != "" {
		dc, dcErr := discord.New(cfg.Channels.Discord, msgBus)
		if dcErr != nil {
			slog.Error("failed to initialize discord channel", "error", dcErr)
		} else {
			channelMgr.Register(dc)
			slog.Info("discord channel enabled")
		}
	}

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("graceful shutdown initiated", "signal", sig)
		channelMgr.StopAll(context.Background())
		cancel()
	}()

	go consumeInboundMessages(ctx, msgBus, eng)

	if err := channelMgr.StartAll(ctx); err != nil {
		slog.Error("failed to start channels", "error", err)
	}

	slog.Info("balcao starting", "version", Version, "mode", cfg.Database.Mode)

	if err := server.Start(ctx); err != nil {
		slog.Error("gateway error", "error", err)
		os.Exit(1)
	}
}

// buildPollLock picks the Redis lock when configured, the in-process lock
// otherwise. The in-process lock only protects against overlapping cycles
// inside one instance; multi-instance deployments need Redis.
func buildPollLock(cfg *config.Config) (polllock.Lock, error) {
	if cfg.PollLock.RedisURL != "" {
		lock, err := polllock.NewRedisLock(cfg.PollLock.RedisURL, cfg.PollLock.Key, cfg.PollLock.TTL())
		if err != nil {
			return nil, err
		}
		slog.Info("poll lock: redis", "key", cfg.PollLock.Key, "ttl", cfg.PollLock.TTL())
		return lock, nil
	}
	slog.Warn("poll lock: in-process only, set BALCAO_REDIS_URL when running multiple instances")
	return polllock.NewMemoryLock(cfg.PollLock.TTL()), nil
}

// consumeInboundMessages routes inbound channel traffic through the engine
// and publishes replies back to the bus. Each message runs in its own
// goroutine; the engine serializes turns per user.
func consumeInboundMessages(ctx context.Context, msgBus *bus.MessageBus, eng *engine.Engine) {
	slog.Info("inbound message consumer started")

	for {
		msg, ok := msgBus.ConsumeInbound(ctx)
		if !ok {
			slog.Info("inbound message consumer stopped")
			return
		}

		go func(msg bus.InboundMessage) {
			reply := eng.HandleMessage(ctx, msg.UserID, msg.Text)
			if reply.Text == "" {
				return
			}
			msgBus.PublishOutbound(bus.OutboundMessage{
				Channel: msg.Channel,
				ChatID:  msg.ChatID,
				Text:    reply.Text,
				Status:  reply.Status.String(),
			})
		}(msg)
	}
}

func setupLogging() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
}
