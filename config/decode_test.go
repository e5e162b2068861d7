package config

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type appConfig struct {
	Name   string       `config:"name"`
	Debug  bool         `config:"debug"`
	Server serverConfig `config:"server"`
	DB     dbConfig     `config:"db"`
}

type serverConfig struct {
	Host    string        `config:"host"`
	Port    int           `config:"port"`
	Timeout time.Duration `config:"timeout"`
	Hosts   []string      `config:"hosts"`
	Bind    net.IP        `config:"bind"`
}

type dbConfig struct {
	DSN      string `config:"dsn"`
	PoolSize int    `config:"pool_size"`
}

func TestDecode_FilesAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "default.yaml", `
name: svc
debug: true
server:
  host: localhost
  port: 8080
  timeout: 5s
  bind: 127.0.0.1
db:
  pool_size: 4
`)
	env := mapEnviron{
		"APP__SERVER__PORT":  "9090",
		"APP__SERVER__HOSTS": "a.local,b.local",
		"APP__DEBUG":         "false",
		"APP__DB__DSN":       "postgres://u:p@h/db",
	}

	cfg := mustBuild(t, dir, env, WithPrefix("APP"), WithListParseKeys("server.hosts"))

	got, err := Decode[appConfig](cfg)
	require.NoError(t, err)
	assert.Equal(t, appConfig{
		Name:  "svc",
		Debug: false,
		Server: serverConfig{
			Host:    "localhost",
			Port:    9090,
			Timeout: 5 * time.Second,
			Hosts:   []string{"a.local", "b.local"},
			Bind:    net.ParseIP("127.0.0.1"),
		},
		DB: dbConfig{DSN: "postgres://u:p@h/db", PoolSize: 4},
	}, got)
}

func TestDecode_NonListKeyStaysScalar(t *testing.T) {
	type target struct {
		Name string `config:"name"`
	}
	cfg := mustBuild(t, t.TempDir(), mapEnviron{"APP__NAME": "a,b,c"}, WithPrefix("APP"))

	got, err := Decode[target](cfg)
	require.NoError(t, err)
	assert.Equal(t, "a,b,c", got.Name)
}

func TestDecode_TypeMismatchNamesKey(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "default.yaml", "server:\n  port: not-a-number\n")
	cfg := mustBuild(t, dir, mapEnviron{})

	_, err := Decode[appConfig](cfg)
	require.ErrorIs(t, err, ErrDecode)
	assert.Contains(t, err.Error(), "port")
	assert.Contains(t, err.Error(), "appConfig")
}

func TestDecode_StrictReportsMissingFields(t *testing.T) {
	type target struct {
		Name    string `config:"name"`
		Timeout string `config:"timeout"`
	}
	dir := t.TempDir()
	writeFile(t, dir, "default.yaml", "name: svc\n")
	cfg := mustBuild(t, dir, mapEnviron{})

	_, err := Decode[target](cfg)
	require.NoError(t, err)

	_, err = Decode[target](cfg, Strict())
	require.ErrorIs(t, err, ErrDecode)
	assert.Contains(t, err.Error(), "timeout")
}

func TestDecode_NilConfig(t *testing.T) {
	_, err := Decode[appConfig](nil)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestDecode_IntoMap(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "default.yaml", "a: 1\nb:\n  c: x\n")
	cfg := mustBuild(t, dir, mapEnviron{}, WithPrefix("APP"))

	got, err := Decode[map[string]any](cfg)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1, "b": map[string]any{"c": "x"}}, got)
}

func TestDecodeWithDefaults_FillsZeroFields(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "default.yaml", "server:\n  port: 9090\n")
	cfg := mustBuild(t, dir, mapEnviron{})

	defaults := appConfig{
		Name:   "fallback",
		Server: serverConfig{Host: "0.0.0.0", Port: 8080, Timeout: time.Second},
	}

	got, err := DecodeWithDefaults(cfg, defaults)
	require.NoError(t, err)
	assert.Equal(t, "fallback", got.Name)
	assert.Equal(t, "0.0.0.0", got.Server.Host)
	assert.Equal(t, 9090, got.Server.Port)
	assert.Equal(t, time.Second, got.Server.Timeout)
}

func TestDecodeWithDefaults_PropagatesDecodeError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "default.yaml", "server:\n  port: nope\n")
	cfg := mustBuild(t, dir, mapEnviron{})

	_, err := DecodeWithDefaults(cfg, appConfig{})
	assert.ErrorIs(t, err, ErrDecode)
}
