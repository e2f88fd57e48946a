// Package config loads the settings shared by the gateway and the portfolio service.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no explicit config file is given.
const DefaultPath = "folio.yaml"

// Config holds the configuration for both services
type Config struct {
	Gateway   GatewayConfig   `yaml:"gateway"`
	Portfolio PortfolioConfig `yaml:"portfolio"`
	Log       LogConfig       `yaml:"log"`
}

// GatewayConfig configures the quote gateway
type GatewayConfig struct {
	Addr        string        `yaml:"addr"`
	UpstreamURL string        `yaml:"upstream_url"`
	Timeout     time.Duration `yaml:"timeout"`
	UserAgent   string        `yaml:"user_agent"`
	StaticDir   string        `yaml:"static_dir"`
	CORSOrigins []string      `yaml:"cors_origins"`
}

// PortfolioConfig configures the portfolio service
type PortfolioConfig struct {
	Addr               string        `yaml:"addr"`
	GatewayURL         string        `yaml:"gateway_url"`
	Storage            string        `yaml:"storage"`
	RefreshConcurrency int           `yaml:"refresh_concurrency"`
	RefreshTimeout     time.Duration `yaml:"refresh_timeout"`
}

// LogConfig configures logging
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Gateway: GatewayConfig{
			Addr:        ":3001",
			UpstreamURL: "https://query1.finance.yahoo.com/v8/finance/chart/",
			Timeout:     10 * time.Second,
			UserAgent:   "Mozilla/5.0 (X11; Linux x86_64) stock-folio/1.0",
			CORSOrigins: []string{"*"},
		},
		Portfolio: PortfolioConfig{
			Addr:               ":8081",
			GatewayURL:         "http://localhost:3001/api",
			Storage:            "file:.folio",
			RefreshConcurrency: 4,
			RefreshTimeout:     10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the YAML file at path on top of the defaults, loads a .env file
// when one exists and applies environment overrides. A missing config file is
// not an error; an empty path means DefaultPath.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := []struct {
		key string
		dst *string
	}{
		{"FOLIO_GATEWAY_ADDR", &c.Gateway.Addr},
		{"FOLIO_UPSTREAM_URL", &c.Gateway.UpstreamURL},
		{"FOLIO_GATEWAY_URL", &c.Portfolio.GatewayURL},
		{"FOLIO_PORTFOLIO_ADDR", &c.Portfolio.Addr},
		{"FOLIO_STORAGE", &c.Portfolio.Storage},
		{"FOLIO_LOG_LEVEL", &c.Log.Level},
		{"FOLIO_LOG_FORMAT", &c.Log.Format},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.key); v != "" {
			*o.dst = v
		}
	}
}

// Validate checks the configuration for values the services cannot run with
func (c *Config) Validate() error {
	var errs []error
	if c.Gateway.Addr == "" {
		errs = append(errs, errors.New("gateway.addr is required"))
	}
	if c.Gateway.UpstreamURL == "" {
		errs = append(errs, errors.New("gateway.upstream_url is required"))
	}
	if c.Gateway.Timeout <= 0 {
		errs = append(errs, errors.New("gateway.timeout must be positive"))
	}
	if c.Portfolio.Addr == "" {
		errs = append(errs, errors.New("portfolio.addr is required"))
	}
	if c.Portfolio.GatewayURL == "" {
		errs = append(errs, errors.New("portfolio.gateway_url is required"))
	}
	if c.Portfolio.RefreshConcurrency <= 0 {
		errs = append(errs, errors.New("portfolio.refresh_concurrency must be positive"))
	}
	if c.Portfolio.RefreshTimeout <= 0 {
		errs = append(errs, errors.New("portfolio.refresh_timeout must be positive"))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of console, json", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
