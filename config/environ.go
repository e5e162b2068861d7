package config

import (
	"os"
	"strings"
)

// environ is the variable store both merge passes work against. The process
// environment is the only production implementation.
type environ interface {
	LookupEnv(key string) (string, bool)
	Setenv(key, value string) error
	Environ() []string
}

type processEnviron struct{}

func (processEnviron) LookupEnv(key string) (string, bool) { return os.LookupEnv(key) }
func (processEnviron) Setenv(key, value string) error      { return os.Setenv(key, value) }
func (processEnviron) Environ() []string                   { return os.Environ() }

func environMap(e environ) map[string]string {
	vars := e.Environ()
	m := make(map[string]string, len(vars))
	for _, kv := range vars {
		k, v, ok := strings.Cut(kv, "=")
		// Windows keeps per-drive entries like "=C:=C:\" that have no name.
		if !ok || k == "" {
			continue
		}
		m[k] = v
	}
	return m
}
