package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Variables read by the loader itself.
const (
	DirVar         = "CONFIG_DIR"
	EnvironmentVar = "ENV"
	SecretKeyVar   = "SECRETS_ENCRYPTION_KEY"

	// DefaultDir is used when CONFIG_DIR is unset.
	DefaultDir = "./conf"
)

// settings holds the variables that steer the loader. Fields are mapped via
// their `env` tags (caarlos0/env).
type settings struct {
	// Dir is the directory holding every file source.
	// Env: CONFIG_DIR
	Dir string `env:"CONFIG_DIR"`

	// Environment selects the <env>.* files.
	// Env: ENV
	Environment string `env:"ENV"`

	// SecretKey is the base64 key for *.enc sources. It is read after the
	// plaintext dotenv files are merged so a .env file may carry it.
	// Env: SECRETS_ENCRYPTION_KEY
	SecretKey string `env:"SECRETS_ENCRYPTION_KEY"`
}

// parseSettings populates settings from a snapshot of e.
func parseSettings(e environ) (*settings, error) {
	s := &settings{}
	if err := env.ParseWithOptions(s, env.Options{Environment: environMap(e)}); err != nil {
		return nil, fmt.Errorf("error getting loader settings: %w", err)
	}
	return s, nil
}
