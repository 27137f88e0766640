// Package config loads runtime configuration from the environment.
// Values come from process env vars, optionally seeded from a .env file
// by the caller before Load runs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	// Reasoning service
	AnthropicAPIKey string
	Model           string
	MaxTokens       int64
	RequestTimeout  time.Duration

	// Response cache
	CacheEnabled bool
	CacheDir     string

	// Output
	OutputDir string

	// Chapter fan-out
	Workers int

	// Fetch limits
	MaxFileSize int64

	// Private repository access
	GitHubToken string
}

func Load() Config {
	cfg := Config{
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		Model:           envOr("LORE_MODEL", "claude-sonnet-4-5-20250929"),
		MaxTokens:       envInt64("LORE_MAX_TOKENS", 8192),
		RequestTimeout:  envDuration("LORE_TIMEOUT", 120*time.Second),

		CacheEnabled: envBool("LORE_CACHE", true),
		CacheDir:     envOr("LORE_CACHE_DIR", defaultCacheDir()),

		OutputDir: envOr("LORE_OUTPUT", "lore-docs"),

		Workers: envInt("LORE_WORKERS", 4),

		MaxFileSize: envInt64("LORE_MAX_FILE_SIZE", 100_000),

		GitHubToken: os.Getenv("GITHUB_TOKEN"),
	}

	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 8192
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 120 * time.Second
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 100_000
	}

	return cfg
}

func (c Config) Validate() error {
	if c.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max file size must be positive, got %d", c.MaxFileSize)
	}
	return nil
}

func defaultCacheDir() string {
	if base, err := os.UserCacheDir(); err == nil {
		return filepath.Join(base, "lore")
	}
	return filepath.Join(os.TempDir(), "lore-cache")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
