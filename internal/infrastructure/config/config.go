package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
type Config struct {
	// HTTP Server
	HTTPPort            string        `env:"HTTP_PORT"             envDefault:"8080"`
	HTTPReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"30s"`
	HTTPWriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"    envDefault:"60s"`
	HTTPIdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT"     envDefault:"60s"`
	HTTPShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Redis (optional - leave empty to disable caching and idempotency)
	RedisURL         string        `env:"REDIS_URL"          envDefault:""`
	SnapshotCacheTTL time.Duration `env:"SNAPSHOT_CACHE_TTL" envDefault:"5m"`
	IdempotencyTTL   time.Duration `env:"IDEMPOTENCY_TTL"    envDefault:"24h"`

	// Upstream statement service
	UpstreamBaseURL  string        `env:"UPSTREAM_BASE_URL"  envDefault:"https://services.jsatech.com"`
	CampusID         string        `env:"CAMPUS_ID"          envDefault:"52"`
	StatementAccount string        `env:"STATEMENT_ACCOUNT"  envDefault:"15"`
	LoaderBaseURL    string        `env:"LOADER_BASE_URL"    envDefault:""`
	LoaderUserAgent  string        `env:"LOADER_USER_AGENT"  envDefault:""`
	FetchTimeout     time.Duration `env:"FETCH_TIMEOUT"      envDefault:"20s"`
	FetchMaxRetries  int           `env:"FETCH_MAX_RETRIES"  envDefault:"2"`

	// Extraction
	SummaryMarkers    []string `env:"SUMMARY_MARKERS"    envDefault:"meal plan" envSeparator:","`
	IncludeDeposits   bool     `env:"INCLUDE_DEPOSITS"   envDefault:"true"`
	StatementFallback bool     `env:"STATEMENT_FALLBACK" envDefault:"true"`
	Timezone          string   `env:"TIMEZONE"           envDefault:"Local"`

	// Insights (optional - leave the key empty to disable)
	GeminiAPIKey string `env:"GEMINI_API_KEY" envDefault:""`
	GeminiModel  string `env:"GEMINI_MODEL"   envDefault:"gemini-2.0-flash"`

	// Rate limiting
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`

	// Tracker
	TrackerInterval time.Duration `env:"TRACKER_INTERVAL" envDefault:"1m"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	err := env.Parse(cfg)
	if err != nil {
		return nil, err
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	if cfg.FetchMaxRetries < 0 {
		return nil, fmt.Errorf("FETCH_MAX_RETRIES must not be negative, got %d", cfg.FetchMaxRetries)
	}

	return cfg, nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// LoaderURL is the origin the document loader talks to: the relay when set, else upstream.
func (c *Config) LoaderURL() string {
	if c.LoaderBaseURL != "" {
		return c.LoaderBaseURL
	}
	return c.UpstreamBaseURL
}

// CacheEnabled reports whether a Redis URL was configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisURL != ""
}
