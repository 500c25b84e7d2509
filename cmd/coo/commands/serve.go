package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/digitalcoo/coo/pkg/coo/assistant"
	"github.com/digitalcoo/coo/pkg/coo/briefing"
	"github.com/digitalcoo/coo/pkg/coo/channels"
	"github.com/digitalcoo/coo/pkg/coo/channels/telegram"
	"github.com/digitalcoo/coo/pkg/coo/channels/whatsapp"
	"github.com/digitalcoo/coo/pkg/coo/engine"
	"github.com/digitalcoo/coo/pkg/coo/gsuite"
	"github.com/digitalcoo/coo/pkg/coo/mailer"
	"github.com/digitalcoo/coo/pkg/coo/memory"
	"github.com/digitalcoo/coo/pkg/coo/providers"
	"github.com/digitalcoo/coo/pkg/coo/search"
)

// newServeCmd creates the `coo serve` command that starts the daemon.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the daemon with messaging channels",
		Long: `Start the Digital COO as a daemon, connecting Telegram and
WhatsApp and processing the principal's messages.

Examples:
  coo serve
  coo serve --config ./config.yaml`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := buildLogger(cmd, cfg)

	registry := buildRegistry(cfg)

	store := memory.NewClient(cfg.Memory.APIKey, cfg.Memory.WorkspaceID)
	var classifier memory.MetadataProvider
	if p, err := registry.Resolve(engine.EngineGroq); err == nil {
		classifier = p
	}
	archiver := memory.NewArchiver(store, classifier, logger)

	searcher := search.NewBraveClient(cfg.Search.APIKey)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	workspace, err := gsuite.NewService(ctx, cfg.Google, logger)
	if err != nil {
		return fmt.Errorf("initializing google workspace: %w", err)
	}
	mail := mailer.NewMailer(cfg.SMTP, logger)

	manager := channels.NewManager(logger)
	if cfg.Channels.Telegram.Token != "" {
		tg, err := telegram.NewChannel(cfg.Channels.Telegram, logger)
		if err != nil {
			return fmt.Errorf("initializing telegram: %w", err)
		}
		manager.Register(tg)
		logger.Info("telegram channel registered")
	}
	if cfg.Channels.WhatsApp.AllowedNumber != "" {
		manager.Register(whatsapp.NewChannel(cfg.Channels.WhatsApp, logger))
		logger.Info("whatsapp channel registered")
	}

	coo := assistant.New(cfg, manager, registry, archiver, searcher, workspace, mail, logger)
	if err := coo.Start(ctx); err != nil {
		return fmt.Errorf("starting assistant: %w", err)
	}

	briefer := buildBriefing(cfg, registry, archiver, manager, mail, logger)
	if err := briefer.Start(); err != nil {
		logger.Error("failed to start briefing scheduler", "error", err)
	}

	logger.Info("Digital COO running. Press Ctrl+C to stop.", "name", cfg.Name)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received, stopping...")

	// In-flight flows are allowed to finish; only the wait is bounded.
	done := make(chan struct{})
	go func() {
		briefer.Stop()
		coo.Stop()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("shutdown complete")
	case <-time.After(10 * time.Second):
		logger.Warn("shutdown timed out, forcing exit")
	}
	return nil
}

// buildRegistry constructs the provider registry from config.
func buildRegistry(cfg *assistant.Config) *providers.Registry {
	return providers.NewRegistry(
		providers.NewAnthropicProvider(cfg.Providers.Anthropic.APIKey, cfg.Providers.Anthropic.Model),
		providers.NewGroqProvider(cfg.Providers.Groq.APIKey, cfg.Providers.Groq.Model),
		providers.NewGeminiProvider(cfg.Providers.Gemini.APIKey, cfg.Providers.Gemini.Model),
		providers.NewZaiProvider(cfg.Providers.Zai.APIKey, cfg.Providers.Zai.Model),
	)
}

// buildBriefing wires the daily briefing job: generate with the
// current engine's provider, deliver over Telegram and email, archive
// the text.
func buildBriefing(cfg *assistant.Config, registry *providers.Registry, archiver *memory.Archiver, manager *channels.Manager, mail *mailer.Mailer, logger *slog.Logger) *briefing.Scheduler {
	generate := func(ctx context.Context) (string, error) {
		provider, err := registry.Resolve(engine.Select(time.Now()).Primary)
		if err != nil {
			return "", err
		}
		system := fmt.Sprintf("You are %s. Write a short morning briefing in Arabic for a Saudi business owner: "+
			"greeting, suggested priorities for the day, and one operational reminder.", cfg.Name)
		return provider.Complete(ctx, system, "أعد الإحاطة الصباحية لهذا اليوم.")
	}

	deliver := func(ctx context.Context, text string) error {
		chatID := strconv.FormatInt(cfg.Channels.Telegram.AllowedUserID, 10)
		if err := manager.Send(ctx, "telegram", chatID, &channels.OutgoingMessage{Content: text}); err != nil {
			return err
		}
		if mail.Configured() && cfg.OwnerEmail != "" {
			if err := mail.Send(ctx, []string{cfg.OwnerEmail}, "Daily briefing", text); err != nil {
				logger.Warn("briefing email failed", "error", err)
			}
		}
		archiver.ArchiveBriefing(text)
		return nil
	}

	return briefing.NewScheduler(cfg.Briefing, generate, deliver, logger)
}
