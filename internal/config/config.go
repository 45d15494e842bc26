package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config keeps runtime settings for the bot.
type Config struct {
	TelegramToken  string        `env:"TELEGRAM_TOKEN"`
	DatabasePath   string        `env:"DATABASE_PATH" envDefault:"database/wholeftbot.sqlite"`
	ManifestPath   string        `env:"COMMANDS_MANIFEST"`
	Admins         []int64       `env:"ADMIN_IDS" envSeparator:","`
	CleanUpdates   bool          `env:"CLEAN_UPDATES"`
	Debug          bool          `env:"DEBUG"`
	LogFile        string        `env:"LOG_FILE"`
	PollTimeout    int           `env:"POLL_TIMEOUT" envDefault:"60"`
	ReloadInterval time.Duration `env:"RELOAD_INTERVAL"`
	ReloadAt       string        `env:"RELOAD_AT"`
	ErrorChunkSize int           `env:"ERROR_CHUNK_SIZE" envDefault:"3000"`
}

// Load reads configuration from environment variables with sane defaults.
// The token is not validated here so that command line flags can still supply it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	cfg.TelegramToken = strings.TrimSpace(cfg.TelegramToken)
	return cfg, nil
}

// Validate checks the settings that have no usable default.
func (c Config) Validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path is required")
	}
	if c.PollTimeout <= 0 {
		return fmt.Errorf("POLL_TIMEOUT must be positive, got %d", c.PollTimeout)
	}
	if c.ErrorChunkSize <= 0 {
		return fmt.Errorf("ERROR_CHUNK_SIZE must be positive, got %d", c.ErrorChunkSize)
	}
	if c.ReloadInterval < 0 {
		return fmt.Errorf("RELOAD_INTERVAL must not be negative")
	}
	if c.ReloadAt != "" {
		if _, err := time.Parse("15:04", c.ReloadAt); err != nil {
			return fmt.Errorf("RELOAD_AT must be HH:MM, got %q", c.ReloadAt)
		}
	}
	return nil
}

// IsAdmin reports whether id is in the administrator allow-list.
func (c Config) IsAdmin(id int64) bool {
	for _, admin := range c.Admins {
		if admin == id {
			return true
		}
	}
	return false
}
