package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"ANTHROPIC_API_KEY", "LORE_MODEL", "LORE_MAX_TOKENS", "LORE_TIMEOUT",
		"LORE_CACHE", "LORE_CACHE_DIR", "LORE_OUTPUT", "LORE_WORKERS",
		"LORE_MAX_FILE_SIZE", "GITHUB_TOKEN",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Model)
	assert.Equal(t, int64(8192), cfg.MaxTokens)
	assert.Equal(t, 120*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.CacheEnabled)
	assert.NotEmpty(t, cfg.CacheDir)
	assert.Equal(t, "lore-docs", cfg.OutputDir)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, int64(100_000), cfg.MaxFileSize)
	assert.Empty(t, cfg.AnthropicAPIKey)
	assert.Empty(t, cfg.GitHubToken)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("LORE_MODEL", "claude-test-model")
	t.Setenv("LORE_MAX_TOKENS", "4096")
	t.Setenv("LORE_TIMEOUT", "30s")
	t.Setenv("LORE_CACHE", "false")
	t.Setenv("LORE_CACHE_DIR", "/tmp/lore-test-cache")
	t.Setenv("LORE_OUTPUT", "docs-out")
	t.Setenv("LORE_WORKERS", "8")
	t.Setenv("LORE_MAX_FILE_SIZE", "50000")
	t.Setenv("GITHUB_TOKEN", "ghp_test")

	cfg := Load()
	assert.Equal(t, "sk-test", cfg.AnthropicAPIKey)
	assert.Equal(t, "claude-test-model", cfg.Model)
	assert.Equal(t, int64(4096), cfg.MaxTokens)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.CacheEnabled)
	assert.Equal(t, "/tmp/lore-test-cache", cfg.CacheDir)
	assert.Equal(t, "docs-out", cfg.OutputDir)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, int64(50000), cfg.MaxFileSize)
	assert.Equal(t, "ghp_test", cfg.GitHubToken)
}

func TestLoadRejectsNonsense(t *testing.T) {
	t.Setenv("LORE_MAX_TOKENS", "-5")
	t.Setenv("LORE_TIMEOUT", "not-a-duration")
	t.Setenv("LORE_WORKERS", "0")
	t.Setenv("LORE_MAX_FILE_SIZE", "garbage")

	cfg := Load()
	assert.Equal(t, int64(8192), cfg.MaxTokens)
	assert.Equal(t, 120*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, int64(100_000), cfg.MaxFileSize)
}

func TestValidate(t *testing.T) {
	valid := Config{
		AnthropicAPIKey: "sk-test",
		MaxTokens:       8192,
		RequestTimeout:  time.Minute,
		Workers:         4,
		MaxFileSize:     100_000,
	}

	t.Run("requires an API key", func(t *testing.T) {
		cfg := valid
		cfg.AnthropicAPIKey = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
	})

	t.Run("passes when complete", func(t *testing.T) {
		require.NoError(t, valid.Validate())
	})

	t.Run("rejects non-positive numerics", func(t *testing.T) {
		for name, mutate := range map[string]func(*Config){
			"max tokens": func(c *Config) { c.MaxTokens = 0 },
			"timeout":    func(c *Config) { c.RequestTimeout = 0 },
			"workers":    func(c *Config) { c.Workers = -1 },
			"file size":  func(c *Config) { c.MaxFileSize = 0 },
		} {
			cfg := valid
			mutate(&cfg)
			assert.Error(t, cfg.Validate(), name)
		}
	})
}
