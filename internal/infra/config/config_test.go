package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 1000, cfg.Summary.ChunkSize)
	require.Equal(t, 200, cfg.Summary.ChunkOverlap)
	require.Equal(t, "detailed", cfg.Summary.DefaultMode)
	require.Equal(t, "summary_cache", cfg.Cache.Dir)
	require.Equal(t, "data", cfg.Storage.Dir)
	require.Equal(t, int64(32<<20), cfg.HTTP.MaxUploadBytes)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "overlap too large", mutate: func(c *Config) { c.Summary.ChunkOverlap = c.Summary.ChunkSize }},
		{name: "unknown hash", mutate: func(c *Config) { c.Summary.HashAlgorithm = "crc32" }},
		{name: "unknown provider", mutate: func(c *Config) { c.LLM.Provider = "bart" }},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Cache.Backend = "postgres" }},
		{name: "valkey without addr", mutate: func(c *Config) { c.Queue.Backend = "valkey" }},
		{name: "r2 without bucket", mutate: func(c *Config) { c.Storage.Backend = "r2"; c.Storage.R2.Endpoint = "https://x" }},
		{name: "zero upload limit", mutate: func(c *Config) { c.HTTP.MaxUploadBytes = 0 }},
		{name: "bad rate limit", mutate: func(c *Config) { c.HTTP.RateLimit.Burst = 0 }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  address: ":9090"
  retry:
    baseBackoff: 250ms
summary:
  defaultMode: brief
  prewarmModes: [detailed]
cache:
  backend: Memory
`), 0o644))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("LLM_PROVIDER", " Extractive ")
	t.Setenv("SUMMARY_PREWARM_MODES", "detailed, brief")
	t.Setenv("HTTP_RATE_LIMIT_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTP.Address)
	require.Equal(t, 250*time.Millisecond, cfg.HTTP.Retry.BaseBackoff)
	require.Equal(t, "brief", cfg.Summary.DefaultMode)
	require.Equal(t, []string{"detailed", "brief"}, cfg.Summary.PrewarmModes)
	require.Equal(t, "memory", cfg.Cache.Backend)
	require.Equal(t, "extractive", cfg.LLM.Provider)
	require.False(t, cfg.HTTP.RateLimit.Enabled)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  backend: floppy\n"), 0o644))
	t.Setenv("CONFIG_PATH", path)

	_, err := Load()
	require.Error(t, err)
}
