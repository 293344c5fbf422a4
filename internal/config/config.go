// Package config loads server settings from the environment once at startup.
package config

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds every setting the server reads. Handlers never read the
// environment themselves; main passes the relevant fields to constructors.
type Config struct {
	Port         int           `env:"PORT, default=8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT, default=30s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT, default=60s"`
	MaxBodyBytes int64         `env:"MAX_REQUEST_BODY_BYTES, default=65536"`

	DatabaseURL string `env:"DATABASE_URL, required"`

	SupabaseURL            string `env:"SUPABASE_URL, required"`
	SupabaseServiceRoleKey string `env:"SUPABASE_SERVICE_ROLE_KEY, required"`

	OpenAI OpenAIConfig

	Reflection ReflectionConfig
}

// OpenAIConfig configures the chat completions client.
type OpenAIConfig struct {
	APIKey  string        `env:"OPENAI_API_KEY, required"`
	BaseURL string        `env:"OPENAI_BASE_URL, default=https://api.openai.com"`
	Model   string        `env:"OPENAI_MODEL, default=gpt-4o-mini"`
	Timeout time.Duration `env:"OPENAI_TIMEOUT, default=60s"`
}

// ReflectionConfig configures generation limits and date rendering.
type ReflectionConfig struct {
	RateLimitRPS   float64 `env:"REFLECTION_RATE_LIMIT_RPS, default=0.2"`
	RateLimitBurst int     `env:"REFLECTION_RATE_LIMIT_BURST, default=5"`
	Timezone       string  `env:"REFLECTION_TIMEZONE, default=UTC"`

	location *time.Location
}

// Location is Timezone resolved by Load.
func (c ReflectionConfig) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// Load reads Config from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

// LoadFrom reads Config from a fixed map; used by tests.
func LoadFrom(ctx context.Context, env map[string]string) (*Config, error) {
	return load(ctx, envconfig.MapLookuper(env))
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_BYTES must be positive")
	}
	if u, err := url.Parse(c.SupabaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("SUPABASE_URL is not an absolute URL: %q", c.SupabaseURL)
	}
	if u, err := url.Parse(c.OpenAI.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("OPENAI_BASE_URL is not an absolute URL: %q", c.OpenAI.BaseURL)
	}
	if c.Reflection.RateLimitRPS <= 0 || c.Reflection.RateLimitBurst <= 0 {
		return fmt.Errorf("reflection rate limit must be positive")
	}
	loc, err := time.LoadLocation(c.Reflection.Timezone)
	if err != nil {
		return fmt.Errorf("REFLECTION_TIMEZONE: %w", err)
	}
	c.Reflection.location = loc
	return nil
}
