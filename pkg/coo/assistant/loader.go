package assistant

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadConfigFromFile reads and parses a YAML configuration file, then
// overlays secrets from the environment.
func LoadConfigFromFile(path string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}

	resolveSecrets(cfg)
	return cfg, nil
}

// ParseConfig parses YAML bytes into a Config over the defaults.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	return cfg, nil
}

// LoadConfig loads config from the given path, or from a discovered
// standard location, or falls back to defaults plus environment.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = FindConfigFile()
	}
	if path == "" {
		loadEnvFiles()
		cfg := DefaultConfig()
		resolveSecrets(cfg)
		return cfg, nil
	}
	return LoadConfigFromFile(path)
}

// FindConfigFile searches for config files in standard locations.
func FindConfigFile() string {
	candidates := []string{
		"config.yaml",
		"config.yml",
		"coo.yaml",
		"coo.yml",
		"configs/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// loadEnvFiles loads .env files from standard locations. Existing
// environment variables are not overwritten.
func loadEnvFiles() {
	for _, f := range []string{".env", ".env.local"} {
		_ = godotenv.Load(f)
	}
}

// resolveSecrets overlays environment variables onto empty config
// values. Environment always wins over YAML for credentials.
func resolveSecrets(cfg *Config) {
	setString := func(dst *string, envKey string) {
		if v := os.Getenv(envKey); v != "" {
			*dst = v
		}
	}

	setString(&cfg.Providers.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	setString(&cfg.Providers.Groq.APIKey, "GROQ_API_KEY")
	setString(&cfg.Providers.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&cfg.Providers.Zai.APIKey, "ZAI_API_KEY")

	setString(&cfg.Memory.APIKey, "SUPERMEMORY_API_KEY")
	setString(&cfg.Memory.WorkspaceID, "SUPERMEMORY_WORKSPACE_ID")
	setString(&cfg.Search.APIKey, "BRAVE_API_KEY")

	setString(&cfg.Channels.Telegram.Token, "TELEGRAM_BOT_TOKEN")
	if v := os.Getenv("TELEGRAM_ALLOWED_USER_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Channels.Telegram.AllowedUserID = id
		}
	}
	setString(&cfg.Channels.WhatsApp.AllowedNumber, "WHATSAPP_ALLOWED_NUMBER")

	setString(&cfg.Google.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	setString(&cfg.Google.CalendarID, "GOOGLE_CALENDAR_ID")
	setString(&cfg.Google.SheetID, "GOOGLE_SHEET_ID")

	setString(&cfg.SMTP.Host, "SMTP_HOST")
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.SMTP.Port = port
		}
	}
	setString(&cfg.SMTP.Username, "SMTP_USERNAME")
	setString(&cfg.SMTP.Password, "SMTP_PASSWORD")
	setString(&cfg.SMTP.From, "SMTP_FROM")
	setString(&cfg.OwnerEmail, "OWNER_EMAIL")

	// Keyring entries beat plain environment for API keys.
	resolveKeyringSecrets(cfg)
}
