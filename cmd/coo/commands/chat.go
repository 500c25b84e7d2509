package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/digitalcoo/coo/pkg/coo/engine"
	"github.com/digitalcoo/coo/pkg/coo/providers"
)

// newChatCmd creates the `coo chat` command for terminal conversations.
func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat [message]",
		Short: "Chat with the assistant from the terminal",
		Long: `Send a single message or start an interactive session.

Examples:
  coo chat "ما هي أولويات اليوم؟"
  coo chat`,
		Args: cobra.MaximumNArgs(1),
		RunE: runChat,
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	registry := buildRegistry(cfg)

	system := fmt.Sprintf("You are %s, a digital chief operating officer. "+
		"Reply in the language the user writes in. Be concise.", cfg.Name)

	ask := func(message string) error {
		decision := engine.Select(time.Now())
		provider, err := registry.Resolve(decision.Primary)
		if err != nil {
			return fmt.Errorf("no provider configured: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		reply, err := provider.Complete(ctx, system, message)
		if err != nil {
			return err
		}
		fmt.Println(reply)
		return nil
	}

	if len(args) > 0 {
		return ask(args[0])
	}

	rl, err := readline.New("coo> ")
	if err != nil {
		return fmt.Errorf("initializing readline: %w", err)
	}
	defer rl.Close()

	fmt.Println("Interactive session. Ctrl+D to exit.")
	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		if err := ask(line); err != nil {
			if errors.Is(err, providers.ErrNoProvider) {
				return err
			}
			fmt.Printf("error: %v\n", err)
		}
	}
}
