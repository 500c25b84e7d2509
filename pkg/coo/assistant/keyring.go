// Secrets can live in the OS keyring (Linux: Secret Service, macOS:
// Keychain, Windows: Credential Manager) instead of env vars or YAML.
package assistant

import "github.com/zalando/go-keyring"

const keyringService = "digitalcoo"

// KeyringKeys lists the secret names the config command can manage.
var KeyringKeys = []string{
	"anthropic_api_key",
	"groq_api_key",
	"gemini_api_key",
	"zai_api_key",
	"brave_api_key",
	"supermemory_api_key",
	"telegram_bot_token",
	"smtp_password",
}

// StoreKeyring saves a secret to the OS keyring.
func StoreKeyring(key, value string) error {
	return keyring.Set(keyringService, key, value)
}

// GetKeyring retrieves a secret from the OS keyring. Returns empty
// string if not found.
func GetKeyring(key string) string {
	val, err := keyring.Get(keyringService, key)
	if err != nil {
		return ""
	}
	return val
}

// DeleteKeyring removes a secret from the OS keyring.
func DeleteKeyring(key string) error {
	return keyring.Delete(keyringService, key)
}

// KeyringAvailable checks if the OS keyring is accessible.
func KeyringAvailable() bool {
	testKey := "__digitalcoo_test__"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return false
	}
	_ = keyring.Delete(keyringService, testKey)
	return true
}

// resolveKeyringSecrets overlays keyring entries onto the config.
// Keyring beats env and YAML in the resolution chain.
func resolveKeyringSecrets(cfg *Config) {
	overlay := func(dst *string, key string) {
		if v := GetKeyring(key); v != "" {
			*dst = v
		}
	}
	overlay(&cfg.Providers.Anthropic.APIKey, "anthropic_api_key")
	overlay(&cfg.Providers.Groq.APIKey, "groq_api_key")
	overlay(&cfg.Providers.Gemini.APIKey, "gemini_api_key")
	overlay(&cfg.Providers.Zai.APIKey, "zai_api_key")
	overlay(&cfg.Search.APIKey, "brave_api_key")
	overlay(&cfg.Memory.APIKey, "supermemory_api_key")
	overlay(&cfg.Channels.Telegram.Token, "telegram_bot_token")
	overlay(&cfg.SMTP.Password, "smtp_password")
}
