package config

import (
	"sync"
	"time"
)

// Config is the root configuration for the balcao service.
type Config struct {
	Gateway   GatewayConfig   `json:"gateway"`
	Channels  ChannelsConfig  `json:"channels"`
	NLP       NLPConfig       `json:"nlp"`
	Lookup    LookupConfig    `json:"lookup"`
	Meet      MeetConfig      `json:"meet"`
	Directory DirectoryConfig `json:"directory"`
	Sessions  SessionsConfig  `json:"sessions"`
	Feedback  FeedbackConfig  `json:"feedback"`
	Dialog    DialogConfig    `json:"dialog,omitempty"`
	PollLock  PollLockConfig  `json:"poll_lock"`
	Database  DatabaseConfig  `json:"database,omitempty"`
	mu        sync.RWMutex
}

// GatewayConfig configures the HTTP API server.
type GatewayConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	Token        string `json:"-"`                        // from env BALCAO_GATEWAY_TOKEN only
	RateLimitRPM int    `json:"rate_limit_rpm,omitempty"` // per-client, 0 = unlimited
}

// NLPConfig configures the statistical responder backend.
type NLPConfig struct {
	BaseURL string `json:"base_url"`
}

// LookupConfig configures the case lookup backend.
type LookupConfig struct {
	BaseURL string `json:"base_url"`
	APIKey  string `json:"-"` // from env BALCAO_LOOKUP_API_KEY only
}

// MeetConfig configures the video meeting provisioner.
type MeetConfig struct {
	Domain string `json:"domain"`
	APIKey string `json:"-"` // from env BALCAO_MEET_API_KEY only
}

// DirectoryConfig locates the organization directory file.
type DirectoryConfig struct {
	Path  string `json:"path"`
	Watch bool   `json:"watch,omitempty"` // reload on file change
}

// SessionsConfig configures conversation session expiry.
type SessionsConfig struct {
	IdleMinutes int `json:"idle_minutes,omitempty"` // default 15
}

// IdleThreshold returns the configured idle expiry as a duration.
func (s SessionsConfig) IdleThreshold() time.Duration {
	if s.IdleMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(s.IdleMinutes) * time.Minute
}

// FeedbackConfig configures feedback collection.
type FeedbackConfig struct {
	CooldownMinutes int `json:"cooldown_minutes,omitempty"` // default 5
}

// Cooldown returns the configured rating cooldown as a duration.
func (f FeedbackConfig) Cooldown() time.Duration {
	if f.CooldownMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(f.CooldownMinutes) * time.Minute
}

// DialogConfig allows overriding the status classifier vocabularies.
type DialogConfig struct {
	HandoffPhrases []string `json:"handoff_phrases,omitempty"`
	EndingPhrases  []string `json:"ending_phrases,omitempty"`
}

// PollLockConfig configures the cross-instance poll lock.
type PollLockConfig struct {
	RedisURL   string `json:"-"`                     // from env BALCAO_REDIS_URL only
	Key        string `json:"key,omitempty"`         // default "balcao:poll_lock"
	TTLSeconds int    `json:"ttl_seconds,omitempty"` // default 60, must exceed one poll cycle
}

// TTL returns the configured lock TTL as a duration.
func (p PollLockConfig) TTL() time.Duration {
	if p.TTLSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(p.TTLSeconds) * time.Second
}

// DatabaseConfig configures feedback persistence.
// PostgresDSN is NEVER read from the config file (secret), only from env
// BALCAO_POSTGRES_DSN.
type DatabaseConfig struct {
	PostgresDSN string `json:"-"`
	Mode        string `json:"mode,omitempty"`        // "standalone" (default, SQLite) or "managed" (Postgres)
	SQLitePath  string `json:"sqlite_path,omitempty"` // default "~/.balcao/feedback.db"
}

// IsManagedMode reports whether feedback is stored in Postgres.
func (c *Config) IsManagedMode() bool {
	return c.Database.Mode == "managed" && c.Database.PostgresDSN != ""
}

// ReplaceFrom copies all data fields from src into c, preserving c's mutex.
func (c *Config) ReplaceFrom(src *Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Gateway = src.Gateway
	c.Channels = src.Channels
	c.NLP = src.NLP
	c.Lookup = src.Lookup
	c.Meet = src.Meet
	c.Directory = src.Directory
	c.Sessions = src.Sessions
	c.Feedback = src.Feedback
	c.Dialog = src.Dialog
	c.PollLock = src.PollLock
	c.Database = src.Database
}
