package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/openjus/balcao/internal/config"
	"github.com/openjus/balcao/internal/dialog"
	"github.com/openjus/balcao/internal/dialog/handoff"
	"github.com/openjus/balcao/internal/dialog/process"
	"github.com/openjus/balcao/internal/directory"
	"github.com/openjus/balcao/internal/engine"
	"github.com/openjus/balcao/internal/lookup"
	"github.com/openjus/balcao/internal/meet"
	"github.com/openjus/balcao/internal/nlp"
	"github.com/openjus/balcao/internal/sessions"
)

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with the bot from the terminal",
		Long:  "Runs the dialog engine locally against the configured backends and reads messages from stdin. Useful for trying flows without a channel.",
		Run: func(cmd *cobra.Command, args []string) {
			runChat()
		},
	}
}

func runChat() {
	setupLogging()

	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dir, err := directory.Load(config.ExpandHome(cfg.Directory.Path))
	if err != nil {
		slog.Error("failed to load organization directory", "path", cfg.Directory.Path, "error", err)
		os.Exit(1)
	}

	dispatcher := dialog.NewDispatcher(
		process.New(lookup.NewClient(cfg.Lookup.BaseURL, cfg.Lookup.APIKey)),
		handoff.New(dir, meet.NewJitsiClient(cfg.Meet.Domain, cfg.Meet.APIKey)),
	)
	classifier := dialog.NewClassifier(cfg.Dialog.HandoffPhrases, cfg.Dialog.EndingPhrases)
	eng := engine.New(dispatcher, sessions.NewManager(cfg.Sessions.IdleThreshold()), nlp.NewClient(cfg.NLP.BaseURL), classifier)

	userID := "cli:" + uuid.NewString()
	ctx := context.Background()

	fmt.Println("Balcão Virtual — digite sua mensagem (Ctrl+D para sair)")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("você> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		reply := eng.HandleMessage(ctx, userID, text)
		fmt.Printf("bot>  %s\n", reply.Text)

		switch reply.Status {
		case dialog.StatusEnded:
			fmt.Println("(atendimento encerrado)")
		case dialog.StatusHandoff:
			fmt.Println("(transferido para atendente humano)")
		}
	}
}
