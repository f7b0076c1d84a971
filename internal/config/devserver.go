package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// DevServerConfig holds the fixture API server configuration
type DevServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Env  string `envconfig:"ENV" default:"development"`

	// JWT configuration (SimpleJWT-compatible HS256 tokens)
	JWT JWTConfig

	// Optional Postgres-backed store; in-memory when empty
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Optional redis refresh-token denylist; disabled when empty
	RedisURL string `envconfig:"REDIS_URL"`

	// Login rate limiting
	RateLimit RateLimitConfig
}

// JWTConfig holds token signing configuration
type JWTConfig struct {
	SecretKey       string        `envconfig:"JWT_SECRET_KEY" default:"quill-dev-secret-key-not-for-prod"`
	AccessTokenTTL  time.Duration `envconfig:"JWT_ACCESS_TOKEN_TTL" default:"1h"`
	RefreshTokenTTL time.Duration `envconfig:"JWT_REFRESH_TOKEN_TTL" default:"168h"`
}

// RateLimitConfig holds login rate limiting configuration
type RateLimitConfig struct {
	Window      time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"10m"`
	MaxAttempts int           `envconfig:"RATE_LIMIT_MAX_ATTEMPTS" default:"10"`
}

// LoadDevServer loads the fixture server configuration from QUILLDEV_* environment variables
func LoadDevServer() (*DevServerConfig, error) {
	var cfg DevServerConfig
	if err := envconfig.Process("QUILLDEV", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return &cfg, nil
}

// IsProduction returns true if running in production environment
func (c *DevServerConfig) IsProduction() bool {
	return c.Env == "production"
}
