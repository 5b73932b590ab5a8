// Package config loads runtime settings for the labbook CLI from defaults,
// environment variables, and command-line flags, in that order of precedence.
package config

import "time"

// Config holds runtime settings for the labbook CLI.
//
// Fields:
//   - ServerURL: base URL of the backend REST API.
//   - StateDBPath: path of the local sqlite file holding session state.
//   - RequestTimeout: per-request timeout for API calls.
type Config struct {
	ServerURL      string
	StateDBPath    string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:5000"
	c.StateDBPath = "labbook.db"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment and command-line flags. Later sources take precedence.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	parseFlags(cfg)
	return cfg, nil
}
