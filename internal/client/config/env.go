package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig mirrors Config with pointer fields so that only variables that
// are actually set override the defaults.
type envConfig struct {
	ServerURL      *string        `env:"LABBOOK_SERVER_URL"`
	StateDBPath    *string        `env:"LABBOOK_STATE_DB"`
	RequestTimeout *time.Duration `env:"LABBOOK_REQUEST_TIMEOUT"`
}

func parseEnv(cfg *Config) error {
	var e envConfig
	if err := env.Parse(&e); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	setIf(&cfg.ServerURL, e.ServerURL)
	setIf(&cfg.StateDBPath, e.StateDBPath)
	setIf(&cfg.RequestTimeout, e.RequestTimeout)

	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
