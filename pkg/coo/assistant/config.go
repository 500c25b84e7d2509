// Package assistant wires the channels, engines, flows, and memory
// into the Digital COO message pipeline.
package assistant

import (
	"github.com/digitalcoo/coo/pkg/coo/briefing"
	"github.com/digitalcoo/coo/pkg/coo/channels/telegram"
	"github.com/digitalcoo/coo/pkg/coo/channels/whatsapp"
	"github.com/digitalcoo/coo/pkg/coo/gsuite"
	"github.com/digitalcoo/coo/pkg/coo/mailer"
)

// Config holds all assistant configuration.
type Config struct {
	// Name is the assistant name used in system prompts.
	Name string `yaml:"name"`

	// Instructions are extra system prompt instructions.
	Instructions string `yaml:"instructions"`

	// Providers configures the LLM vendors.
	Providers ProvidersConfig `yaml:"providers"`

	// Channels configures the messaging channels.
	Channels ChannelsConfig `yaml:"channels"`

	// Memory configures the Supermemory archive.
	Memory MemoryConfig `yaml:"memory"`

	// Search configures web search.
	Search SearchConfig `yaml:"search"`

	// Google configures Calendar and Sheets.
	Google gsuite.Config `yaml:"google"`

	// SMTP configures outbound email.
	SMTP mailer.Config `yaml:"smtp"`

	// OwnerEmail receives invoice notifications and meeting invites.
	OwnerEmail string `yaml:"owner_email"`

	// Briefing configures the daily morning briefing.
	Briefing briefing.Config `yaml:"briefing"`

	// Logging configures log output.
	Logging LoggingConfig `yaml:"logging"`
}

// ProvidersConfig holds per-vendor credentials and model overrides.
type ProvidersConfig struct {
	Anthropic ProviderConfig `yaml:"anthropic"`
	Groq      ProviderConfig `yaml:"groq"`
	Gemini    ProviderConfig `yaml:"gemini"`
	Zai       ProviderConfig `yaml:"zai"`
}

// ProviderConfig is one vendor's settings.
type ProviderConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// ChannelsConfig holds configuration for all channels.
type ChannelsConfig struct {
	Telegram telegram.Config `yaml:"telegram"`
	WhatsApp whatsapp.Config `yaml:"whatsapp"`
}

// MemoryConfig configures the Supermemory archive.
type MemoryConfig struct {
	APIKey      string `yaml:"api_key"`
	WorkspaceID string `yaml:"workspace_id"`
}

// SearchConfig configures the Brave search client.
type SearchConfig struct {
	APIKey string `yaml:"api_key"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	// Level is "debug", "info", "warn", or "error".
	Level string `yaml:"level"`

	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// DefaultConfig returns the default assistant configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:     "Digital COO",
		Channels: ChannelsConfig{WhatsApp: whatsapp.DefaultConfig()},
		Briefing: briefing.DefaultConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
