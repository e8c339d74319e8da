package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv overlays configuration values from environment variables using the
// env struct tags on Config. Variables that are not set leave the current
// values untouched.
func parseEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: parsing environment: %w", err)
	}
	return nil
}
