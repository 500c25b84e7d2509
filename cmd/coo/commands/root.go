// Package commands implements the coo CLI commands using cobra.
package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/digitalcoo/coo/pkg/coo/assistant"
)

// NewRootCmd creates the root CLI command with all subcommands.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "coo",
		Short: "Digital COO - always-on operations assistant",
		Long: `Digital COO is an always-on operations assistant for a single
principal, reachable over Telegram and WhatsApp.

Examples:
  coo serve
  coo chat "رتب اجتماع مع فريق المبيعات"
  coo config set-key anthropic_api_key`,
		Version: version,
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newChatCmd(),
		newConfigCmd(),
	)

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to the configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	return rootCmd
}

// loadConfig resolves the config flag and loads configuration.
func loadConfig(cmd *cobra.Command) (*assistant.Config, error) {
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	return assistant.LoadConfig(path)
}

// buildLogger configures slog from config and the verbose flag.
func buildLogger(cmd *cobra.Command, cfg *assistant.Config) *slog.Logger {
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")

	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler)
}
