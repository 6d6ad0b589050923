package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestFromEnv(t *testing.T) {
	t.Setenv("STUDYREPORT_DB", "/tmp/x.db")
	t.Setenv("STUDYREPORT_LOCALE", "ko")
	t.Setenv("STUDYREPORT_HISTORY_LIMIT", "7")
	t.Setenv("STUDYREPORT_LOCK_TTL", "5s")
	t.Setenv("STUDYREPORT_REDIS_ADDR", "localhost:6379")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, "ko", cfg.Locale)
	assert.Equal(t, 7, cfg.HistoryLimit)
	assert.Equal(t, 5*time.Second, cfg.LockTTL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 5, cfg.PatternWindow)
}

func TestFromEnvBadNumber(t *testing.T) {
	t.Setenv("STUDYREPORT_HISTORY_LIMIT", "many")
	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STUDYREPORT_HISTORY_LIMIT")
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("STUDYREPORT_HTTP_ADDR=:9999\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("STUDYREPORT_HTTP_ADDR") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.HTTPAddr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"locale", func(c *Config) { c.Locale = "fr" }},
		{"log mode", func(c *Config) { c.LogMode = "verbose" }},
		{"classifier", func(c *Config) { c.Classifier = "regex" }},
		{"history", func(c *Config) { c.HistoryLimit = 0 }},
		{"window", func(c *Config) { c.PatternWindow = -1 }},
		{"ttl", func(c *Config) { c.LockTTL = 0 }},
		{"history below pattern window", func(c *Config) { c.HistoryLimit = 4 }},
		{"history below delta window", func(c *Config) { c.HistoryLimit, c.PatternWindow = 2, 1 }},
		{"llm without key", func(c *Config) {
			c.Classifier = ClassifierLLM
			c.LLM.Provider = "anthropic"
			c.LLM.Anthropic.APIKey = ""
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateHistoryCoversWindows(t *testing.T) {
	cfg := Default()
	cfg.HistoryLimit, cfg.PatternWindow = 5, 5
	require.NoError(t, cfg.Validate())

	cfg.HistoryLimit, cfg.PatternWindow = 3, 2
	require.NoError(t, cfg.Validate())

	cfg.HistoryLimit = 2
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STUDYREPORT_HISTORY_LIMIT must be at least 3")
}
