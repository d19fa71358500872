package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "classic", cfg.Scoring.Policy)
	assert.Equal(t, "opportunity", cfg.Scoring.Verdict)
	assert.Equal(t, "5y", cfg.Scoring.DefaultPeriod)
	assert.InDelta(t, 0.04, cfg.RiskFree(), 1e-12)
	assert.Equal(t, time.Hour, cfg.DataSource.CacheTTL)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Error(t, cfg.ValidateTelegram())
}

func TestLoad_YAMLAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
scoring:
  policy: peg
  verdict: strong
  risk_free_rate: 0
  default_period: 3y
data_source:
  cache_ttl: 15m
  rate_limit: 5
telegram:
  bot_token: from-yaml
database:
  driver: file
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "from-env")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("PRIME_SERVER_ADDR", ":9999")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.NoError(t, cfg.ValidateTelegram())

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "peg", cfg.Scoring.Policy)
	assert.Equal(t, "strong", cfg.Scoring.Verdict)
	assert.Equal(t, 0.0, cfg.RiskFree(), "an explicit zero rate is kept")
	assert.Equal(t, 15*time.Minute, cfg.DataSource.CacheTTL)
	assert.Equal(t, 5.0, cfg.DataSource.RateLimit)
	assert.Equal(t, "from-env", cfg.Telegram.BotToken)
	assert.Equal(t, "42", cfg.Telegram.ChatID)
	assert.Equal(t, "file", cfg.Database.Driver)
	assert.Equal(t, ":9999", cfg.Server.Addr)
}

func TestLoad_InvalidEnv(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"PRIME_RISK_FREE_RATE", "four percent"},
		{"PRIME_CACHE_TTL", "soon"},
		{"PRIME_MOCK", "yes please"},
		{"PRIME_LOG_PRETTY", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_BoolEnv(t *testing.T) {
	t.Setenv("PRIME_MOCK", "true")
	t.Setenv("PRIME_LOG_PRETTY", "0")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.True(t, cfg.DataSource.Mock)
	assert.False(t, cfg.Log.Pretty)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "scoring: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown policy", func(c *Config) { c.Scoring.Policy = "magic" }},
		{"unknown verdict", func(c *Config) { c.Scoring.Verdict = "maybe" }},
		{"bad period", func(c *Config) { c.Scoring.DefaultPeriod = "11y" }},
		{"risk free out of range", func(c *Config) { rf := 4.0; c.Scoring.RiskFreeRate = &rf }},
		{"bad driver", func(c *Config) { c.Database.Driver = "postgres" }},
		{"bad cron", func(c *Config) { c.Schedule.DigestCron = "every day" }},
		{"negative investment", func(c *Config) { c.Report.Investment = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
