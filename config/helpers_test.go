package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-layered-config/internal/crypto"
	"github.com/MKhiriev/go-layered-config/internal/logger"
)

// ── helpers ───────────────────────────────────────────────────────────────────

// mapEnviron is an in-memory environ so tests never touch the process
// environment.
type mapEnviron map[string]string

func (m mapEnviron) LookupEnv(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m mapEnviron) Setenv(key, value string) error {
	m[key] = value
	return nil
}

func (m mapEnviron) Environ() []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	return out
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func writeEncrypted(t *testing.T, dir, name, key, content string) string {
	t.Helper()
	sc, err := crypto.NewSecretCipher(key)
	require.NoError(t, err)
	blob, err := sc.Encrypt([]byte(content))
	require.NoError(t, err)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, blob, 0o600))
	return path
}

func newKey(t *testing.T) string {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return key
}

// build runs New against dir and env with logging disabled.
func build(t *testing.T, dir string, env mapEnviron, opts ...Option) (*Config, error) {
	t.Helper()
	base := []Option{
		WithDir(dir),
		WithLogger(zerolog.Nop()),
		withEnviron(env),
	}
	return New(append(base, opts...)...)
}

func mustBuild(t *testing.T, dir string, env mapEnviron, opts ...Option) *Config {
	t.Helper()
	cfg, err := build(t, dir, env, opts...)
	require.NoError(t, err)
	return cfg
}

func reportFor(t *testing.T, cfg *Config, name string) SourceReport {
	t.Helper()
	for _, r := range cfg.Sources() {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("no report for source %q", name)
	return SourceReport{}
}

func testOptions() *options {
	o := defaultOptions()
	o.log = logger.Nop()
	return o
}

func nopLogger() zerolog.Logger {
	return zerolog.Nop()
}
