package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, ":8080", cfg.HTTP.Address)
	require.Equal(t, "concise", cfg.Summary.DefaultStyle)
	require.Equal(t, "cl100k_base", cfg.Summary.Encoding)
	require.Equal(t, 3, cfg.LLM.MaxAttempts)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDRESS", ":9090")
	t.Setenv("SUMMARY_DEFAULT_STYLE", "detailed")
	t.Setenv("SUMMARY_CACHE_TTL", "90m")
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("LLM_MAX_ATTEMPTS", "5")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/councilscribe")
	t.Setenv("BLOB_ENABLED", "true")
	t.Setenv("BLOB_ENDPOINT", "minio:9000")
	t.Setenv("CACHE_ENABLED", "1")
	t.Setenv("CACHE_ADDR", "localhost:6379")

	cfg := defaultConfig()
	applyEnvOverrides(cfg)
	require.NoError(t, cfg.Validate())
	require.Equal(t, ":9090", cfg.HTTP.Address)
	require.Equal(t, "detailed", cfg.Summary.DefaultStyle)
	require.Equal(t, 90*time.Minute, cfg.Summary.CacheTTL)
	require.Equal(t, "sk-test", cfg.LLM.APIKey)
	require.Equal(t, 5, cfg.LLM.MaxAttempts)
	require.Equal(t, "postgres://localhost/councilscribe", cfg.Postgres.DSN)
	require.True(t, cfg.Blob.Enabled)
	require.True(t, cfg.Cache.Enabled)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty address", func(c *Config) { c.HTTP.Address = "" }},
		{"empty style", func(c *Config) { c.Summary.DefaultStyle = " " }},
		{"empty encoding", func(c *Config) { c.Summary.Encoding = "" }},
		{"negative ttl", func(c *Config) { c.Summary.CacheTTL = -time.Minute }},
		{"zero attempts", func(c *Config) { c.LLM.MaxAttempts = 0 }},
		{"cache enabled without addr", func(c *Config) { c.Cache.Enabled = true }},
		{"blob enabled without endpoint", func(c *Config) { c.Blob.Enabled = true }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
