package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Gateway.Port != 18650 {
		t.Errorf("port = %d, want default 18650", cfg.Gateway.Port)
	}
	if !cfg.Channels.Web.Enabled {
		t.Error("web channel should be enabled by default")
	}
	if cfg.Database.Mode != "standalone" {
		t.Errorf("mode = %q, want standalone", cfg.Database.Mode)
	}
}

func TestLoadJSON5File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		// comments are allowed
		"gateway": {"port": 9000},
		"sessions": {"idle_minutes": 30},
	}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Gateway.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Gateway.Port)
	}
	if got := cfg.Sessions.IdleThreshold(); got != 30*time.Minute {
		t.Errorf("idle threshold = %v, want 30m", got)
	}
	// Untouched sections keep their defaults.
	if cfg.Gateway.RateLimitRPM != 60 {
		t.Errorf("rate limit = %d, want default 60", cfg.Gateway.RateLimitRPM)
	}
}

func TestEnvOverridesAndAutoEnable(t *testing.T) {
	t.Setenv("BALCAO_GATEWAY_TOKEN", "env-token")
	t.Setenv("BALCAO_TELEGRAM_TOKEN", "tg-token")
	t.Setenv("BALCAO_PORT", "7777")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Gateway.Token != "env-token" {
		t.Errorf("token = %q", cfg.Gateway.Token)
	}
	if cfg.Gateway.Port != 7777 {
		t.Errorf("port = %d, want 7777", cfg.Gateway.Port)
	}
	if !cfg.Channels.Telegram.Enabled {
		t.Error("telegram should auto-enable when its token is present")
	}
	if cfg.Channels.Discord.Enabled {
		t.Error("discord must stay disabled without a token")
	}
}

func TestSaveExcludesSecrets(t *testing.T) {
	cfg := Default()
	cfg.Gateway.Token = "super-secret"
	cfg.Channels.Telegram.Token = "tg-secret"
	cfg.Channels.WhatsApp.AccessToken = "wa-secret"

	path := filepath.Join(t.TempDir(), "config.json")
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, secret := range []string{"super-secret", "tg-secret", "wa-secret"} {
		if strings.Contains(string(data), secret) {
			t.Errorf("saved config leaks secret %q", secret)
		}
	}
}

func TestDurationDefaults(t *testing.T) {
	var s SessionsConfig
	if got := s.IdleThreshold(); got != 15*time.Minute {
		t.Errorf("zero idle threshold = %v, want 15m", got)
	}

	var f FeedbackConfig
	if got := f.Cooldown(); got != 5*time.Minute {
		t.Errorf("zero cooldown = %v, want 5m", got)
	}

	var p PollLockConfig
	if got := p.TTL(); got != time.Minute {
		t.Errorf("zero ttl = %v, want 1m", got)
	}
}

func TestIsManagedMode(t *testing.T) {
	cfg := Default()
	if cfg.IsManagedMode() {
		t.Error("standalone default must not be managed")
	}

	cfg.Database.Mode = "managed"
	if cfg.IsManagedMode() {
		t.Error("managed mode without a DSN is not usable")
	}

	cfg.Database.PostgresDSN = "postgres://localhost/balcao"
	if !cfg.IsManagedMode() {
		t.Error("managed mode with a DSN should be active")
	}
}

func TestExpandHome(t *testing.T) {
	home, _ := os.UserHomeDir()

	if got := ExpandHome("~/x/y"); got != home+"/x/y" {
		t.Errorf("ExpandHome(~/x/y) = %q", got)
	}
	if got := ExpandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("absolute path changed: %q", got)
	}
	if got := ExpandHome(""); got != "" {
		t.Errorf("empty path changed: %q", got)
	}
}
