package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":3001", cfg.Gateway.Addr)
	assert.Equal(t, "https://query1.finance.yahoo.com/v8/finance/chart/", cfg.Gateway.UpstreamURL)
	assert.Equal(t, "http://localhost:3001/api", cfg.Portfolio.GatewayURL)
	assert.Equal(t, 4, cfg.Portfolio.RefreshConcurrency)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	chdir(t, t.TempDir())
	path := filepath.Join(t.TempDir(), "folio.yaml")
	content := `
gateway:
  addr: ":9000"
  timeout: 3s
portfolio:
  storage: memory
  refresh_concurrency: 2
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Gateway.Addr)
	assert.Equal(t, 3*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, "memory", cfg.Portfolio.Storage)
	assert.Equal(t, 2, cfg.Portfolio.RefreshConcurrency)
	assert.Equal(t, "debug", cfg.Log.Level)
	// untouched keys keep their defaults
	assert.Equal(t, ":8081", cfg.Portfolio.Addr)
}

func TestLoad_MissingDefaultFile(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Portfolio.Storage, cfg.Portfolio.Storage)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("FOLIO_STORAGE", "memory")
	t.Setenv("FOLIO_GATEWAY_URL", "http://gateway:3001/api")
	t.Setenv("FOLIO_LOG_FORMAT", "json")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Portfolio.Storage)
	assert.Equal(t, "http://gateway:3001/api", cfg.Portfolio.GatewayURL)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_DotEnv(t *testing.T) {
	chdir(t, t.TempDir())
	require.NoError(t, os.WriteFile(".env", []byte("FOLIO_PORTFOLIO_ADDR=:7000\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("FOLIO_PORTFOLIO_ADDR") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Portfolio.Addr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty gateway addr", func(c *Config) { c.Gateway.Addr = "" }},
		{"zero upstream timeout", func(c *Config) { c.Gateway.Timeout = 0 }},
		{"empty gateway url", func(c *Config) { c.Portfolio.GatewayURL = "" }},
		{"zero concurrency", func(c *Config) { c.Portfolio.RefreshConcurrency = 0 }},
		{"negative refresh timeout", func(c *Config) { c.Portfolio.RefreshTimeout = -time.Second }},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
