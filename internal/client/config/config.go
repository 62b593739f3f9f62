// Package config loads the terminal client settings: built-in defaults, then
// an optional JSON or YAML file, then command-line flags.
package config

import "time"

// Config holds runtime settings for the RentFinder terminal client.
//
// Fields:
//   - ServerURL: base URL of the RentFinder HTTP server.
//   - RequestTimeout: per-request timeout, uploads included.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - LogFormat, LogLevel: diagnostics written to stderr.
type Config struct {
	ServerURL           string
	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration
	LogFormat           string
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 60 * time.Second
	c.OnlineCheckInterval = 5 * time.Second
	c.LogFormat = "console"
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a config file (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
