package commands

import (
	"fmt"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/digitalcoo/coo/pkg/coo/assistant"
)

// newConfigCmd creates the `coo config` command group.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration and secrets",
	}

	cmd.AddCommand(
		newConfigSetKeyCmd(),
		newConfigDeleteKeyCmd(),
		newConfigShowCmd(),
	)
	return cmd
}

func newConfigSetKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-key <name>",
		Short: "Store a secret in the OS keyring",
		Long: `Store a secret in the OS keyring. The value is read from the
terminal without echo.

Known names: ` + strings.Join(assistant.KeyringKeys, ", "),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !slices.Contains(assistant.KeyringKeys, name) {
				return fmt.Errorf("unknown secret %q, expected one of: %s",
					name, strings.Join(assistant.KeyringKeys, ", "))
			}
			if !assistant.KeyringAvailable() {
				return fmt.Errorf("OS keyring is not available")
			}

			fmt.Printf("Value for %s: ", name)
			value, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("reading secret: %w", err)
			}
			if len(value) == 0 {
				return fmt.Errorf("empty value")
			}

			if err := assistant.StoreKeyring(name, string(value)); err != nil {
				return fmt.Errorf("storing secret: %w", err)
			}
			fmt.Printf("Stored %s in the OS keyring.\n", name)
			return nil
		},
	}
}

func newConfigDeleteKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-key <name>",
		Short: "Remove a secret from the OS keyring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := assistant.DeleteKeyring(args[0]); err != nil {
				return fmt.Errorf("deleting secret: %w", err)
			}
			fmt.Printf("Deleted %s from the OS keyring.\n", args[0])
			return nil
		},
	}
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration (secrets masked)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			fmt.Printf("name: %s\n", cfg.Name)
			fmt.Printf("telegram: token=%s allowed_user_id=%d\n",
				mask(cfg.Channels.Telegram.Token), cfg.Channels.Telegram.AllowedUserID)
			fmt.Printf("whatsapp: allowed_number=%s db=%s\n",
				cfg.Channels.WhatsApp.AllowedNumber, cfg.Channels.WhatsApp.DatabasePath)
			fmt.Printf("providers: anthropic=%s groq=%s gemini=%s zai=%s\n",
				mask(cfg.Providers.Anthropic.APIKey), mask(cfg.Providers.Groq.APIKey),
				mask(cfg.Providers.Gemini.APIKey), mask(cfg.Providers.Zai.APIKey))
			fmt.Printf("memory: api_key=%s workspace=%s\n",
				mask(cfg.Memory.APIKey), cfg.Memory.WorkspaceID)
			fmt.Printf("search: api_key=%s\n", mask(cfg.Search.APIKey))
			fmt.Printf("google: credentials=%s calendar=%s sheet=%s\n",
				cfg.Google.CredentialsFile, cfg.Google.CalendarID, cfg.Google.SheetID)
			fmt.Printf("smtp: host=%s port=%d from=%s\n",
				cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From)
			fmt.Printf("briefing: enabled=%v schedule=%q\n",
				cfg.Briefing.Enabled, cfg.Briefing.Schedule)
			return nil
		},
	}
}

func mask(s string) string {
	if s == "" {
		return "(unset)"
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
