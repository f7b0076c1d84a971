package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the client-side configuration
type Config struct {
	// Remote API configuration
	APIBaseURL     string        `envconfig:"API_BASE_URL" default:"http://localhost:8000/api"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`

	Env string `envconfig:"ENV" default:"development"`

	// Session persistence
	StateDir      string `envconfig:"STATE_DIR"`
	CookieTTLDays int    `envconfig:"COOKIE_TTL_DAYS" default:"7"`
}

// Load loads the client configuration from QUILL_* environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("QUILL", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.StateDir == "" {
		dir, err := defaultStateDir()
		if err != nil {
			return nil, err
		}
		cfg.StateDir = dir
	}

	return &cfg, nil
}

func defaultStateDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(base, "quill"), nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
