package config

import "time"

// Config holds runtime settings for the TickerLens CLI.
//
// Fields:
//   - BaseURL: root of the analysis backend, e.g. "https://api.tickerlens.io".
//   - RequestTimeout: hard bound on every API request; a metered call that
//     exceeds it surfaces a distinct timeout and is never retried.
//   - DatabasePath: location of the local SQLite database.
//   - GuestQuota: free analyses a fresh install starts with.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	DatabasePath   string
	GuestQuota     int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 15 * time.Second
	c.DatabasePath = "tickerlens.db"
	c.GuestQuota = 3
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
