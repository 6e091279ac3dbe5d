package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "leasap", "password",
}

type Config struct {
	Port             int    `env:"PORT" envDefault:"8080"`
	BackendBaseURL   string `env:"BACKEND_BASE_URL,required"`
	DatabaseURL      string `env:"DATABASE_URL"`
	RedisURL         string `env:"REDIS_URL,required"`
	SupabaseURL      string `env:"SUPABASE_URL"`
	SupabaseAnonKey  string `env:"SUPABASE_ANON_KEY"`
	SessionSecret    string `env:"SESSION_SECRET"`
	UpstreamTimeoutS int    `env:"UPSTREAM_TIMEOUT_SECONDS" envDefault:"30"`
	SessionTTLHours  int    `env:"SESSION_TTL_HOURS" envDefault:"24"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	StaticDir        string `env:"STATIC_DIR" envDefault:"static/site"`
	PortalRateLimit  int    `env:"PORTAL_RATE_LIMIT_PER_MIN" envDefault:"120"`
}

func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutS) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate(isProduction bool) error {
	if _, err := url.ParseRequestURI(c.BackendBaseURL); err != nil {
		return fmt.Errorf("BACKEND_BASE_URL is not a valid URL: %w", err)
	}

	if c.SupabaseURL != "" && c.SupabaseAnonKey == "" {
		return fmt.Errorf("SUPABASE_ANON_KEY is required when SUPABASE_URL is set")
	}

	if isProduction {
		if err := validateSecret("SESSION_SECRET", c.SessionSecret); err != nil {
			return err
		}
		if c.DatabaseURL == "" {
			log.Warn().Msg("DATABASE_URL is empty in production: credential sessions will be held in memory and lost on restart")
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
		if c.SupabaseURL == "" {
			log.Warn().Msg("SUPABASE_URL is empty in production: demo requests and notification emails are disabled")
		}
	}

	return nil
}

func validateSecret(name, value string) error {
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters in production (generate with: openssl rand -base64 32)", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.PortalRateLimit <= 0 {
		cfg.PortalRateLimit = DefaultRateLimitPerMin
	}
	return &cfg, nil
}
