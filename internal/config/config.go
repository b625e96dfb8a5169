package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
)

// Config holds the application configuration, read once at startup from
// environment variables.
type Config struct {
	TelegramToken string  `env:"TELEGRAM_BOT_TOKEN,required"`
	AdminUserIDs  []int64 `env:"ADMIN_USER_IDS,required" envSeparator:","`
	Debug         bool    `env:"DEBUG" envDefault:"false"`

	// Bot mode configuration
	WebhookMode bool   `env:"WEBHOOK_MODE" envDefault:"false"`
	WebhookURL  string `env:"WEBHOOK_URL"`

	// Post storage
	PostsDir      string `env:"POSTS_DIR" envDefault:"posts"`
	PostsInMemory bool   `env:"POSTS_IN_MEMORY" envDefault:"false"`

	// Message formatting
	ParseMode string `env:"PARSE_MODE" envDefault:"HTML"`

	Port string `env:"PORT" envDefault:"8080"`
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.WebhookMode && cfg.WebhookURL == "" {
		return nil, fmt.Errorf("WEBHOOK_URL is required when WEBHOOK_MODE is true")
	}
	return cfg, nil
}
