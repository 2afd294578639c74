package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/titanous/json5"
)

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Gateway: GatewayConfig{
			Host:         "0.0.0.0",
			Port:         18650,
			RateLimitRPM: 60,
		},
		Channels: ChannelsConfig{
			WhatsApp: WhatsAppConfig{
				APIURL: "https://graph.facebook.com/v19.0",
			},
			Web: WebConfig{Enabled: true},
		},
		Directory: DirectoryConfig{
			Path:  "~/.balcao/directory.json",
			Watch: true,
		},
		Sessions: SessionsConfig{IdleMinutes: 15},
		Feedback: FeedbackConfig{CooldownMinutes: 5},
		PollLock: PollLockConfig{
			Key:        "balcao:poll_lock",
			TTLSeconds: 60,
		},
		Database: DatabaseConfig{
			Mode:       "standalone",
			SQLitePath: "~/.balcao/feedback.db",
		},
	}
}

// Load reads config from a JSON file, then overlays env vars.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json5.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides overlays env vars onto the config.
// Env vars take precedence over file values; secrets come from env only.
func (c *Config) applyEnvOverrides() {
	envStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	envStr("BALCAO_GATEWAY_TOKEN", &c.Gateway.Token)
	envStr("BALCAO_TELEGRAM_TOKEN", &c.Channels.Telegram.Token)
	envStr("BALCAO_WHATSAPP_TOKEN", &c.Channels.WhatsApp.AccessToken)
	envStr("BALCAO_WHATSAPP_VERIFY_TOKEN", &c.Channels.WhatsApp.VerifyToken)
	envStr("BALCAO_LIVECHAT_API_KEY", &c.Channels.LiveChat.APIKey)
	envStr("BALCAO_DISCORD_TOKEN", &c.Channels.Discord.Token)
	envStr("BALCAO_LOOKUP_API_KEY", &c.Lookup.APIKey)
	envStr("BALCAO_MEET_API_KEY", &c.Meet.APIKey)
	envStr("BALCAO_REDIS_URL", &c.PollLock.RedisURL)
	envStr("BALCAO_POSTGRES_DSN", &c.Database.PostgresDSN)
	envStr("BALCAO_MODE", &c.Database.Mode)

	// Service endpoints
	envStr("BALCAO_NLP_URL", &c.NLP.BaseURL)
	envStr("BALCAO_LOOKUP_URL", &c.Lookup.BaseURL)
	envStr("BALCAO_MEET_DOMAIN", &c.Meet.Domain)
	envStr("BALCAO_DIRECTORY_PATH", &c.Directory.Path)

	// Gateway host/port
	envStr("BALCAO_HOST", &c.Gateway.Host)
	if v := os.Getenv("BALCAO_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			c.Gateway.Port = port
		}
	}

	// Auto-enable channels if credentials are provided via env
	if c.Channels.Telegram.Token != "" {
		c.Channels.Telegram.Enabled = true
	}
	if c.Channels.WhatsApp.AccessToken != "" && c.Channels.WhatsApp.PhoneNumberID != "" {
		c.Channels.WhatsApp.Enabled = true
	}
	if c.Channels.Discord.Token != "" {
		c.Channels.Discord.Enabled = true
	}
}

// ApplyEnvOverrides re-applies environment variable overrides onto the config.
func (c *Config) ApplyEnvOverrides() {
	c.applyEnvOverrides()
}

// Save writes the config to a JSON file. Secrets are tagged out of the JSON
// form, so they never persist to disk.
func Save(path string, cfg *Config) error {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// ExpandHome replaces leading ~ with the user home directory.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, _ := os.UserHomeDir()
	if len(path) > 1 && path[1] == '/' {
		return home + path[1:]
	}
	return home
}
