package config

import (
	"fmt"
	"strings"

	"github.com/MKhiriev/go-layered-config/internal/logger"
)

// Environment is the deployment stage a configuration is built for. It picks
// the <env>.* files out of the config directory.
type Environment string

const (
	Dev  Environment = "dev"
	Stag Environment = "stag"
	Prod Environment = "prod"
)

// String returns the lowercase name used in file names.
func (e Environment) String() string {
	return string(e)
}

// ParseEnvironment matches s case-insensitively against the known
// environments.
func ParseEnvironment(s string) (Environment, error) {
	switch e := Environment(strings.ToLower(s)); e {
	case Dev, Stag, Prod:
		return e, nil
	}
	return "", fmt.Errorf("%w: %q (want one of dev, stag, prod)", ErrUnknownEnvironment, s)
}

func resolveEnvironment(raw string, log *logger.Logger) (Environment, error) {
	if raw == "" {
		log.Info().Msg("ENV is not set, defaulting to dev environment")
		return Dev, nil
	}
	return ParseEnvironment(raw)
}
