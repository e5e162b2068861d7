package config

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// gate builds a configuration at most once. Concurrent callers block until
// the single build finishes and all observe its result.
type gate struct {
	once sync.Once
	done atomic.Bool
	cfg  *Config
	err  error
}

func (g *gate) init(build func() (*Config, error)) (*Config, error) {
	g.once.Do(func() {
		g.cfg, g.err = build()
		g.done.Store(true)
	})
	return g.cfg, g.err
}

func (g *gate) get() (*Config, bool) {
	if !g.done.Load() || g.err != nil {
		return nil, false
	}
	return g.cfg, true
}

func (g *gate) mustInit(opts ...Option) *Config {
	cfg, err := g.init(func() (*Config, error) {
		return New(opts...)
	})
	if err != nil {
		panic(fmt.Errorf("config initialization failed: %w", err))
	}
	return cfg
}

func mustLoad[T any](g *gate, opts ...DecodeOption) T {
	cfg, ok := g.get()
	if !ok {
		panic(ErrNotInitialized)
	}

	v, err := Decode[T](cfg, opts...)
	if err != nil {
		panic(err)
	}
	return v
}

var global gate

// InitDefault builds the process-wide configuration with no prefix and no
// list keys. Only the first call among InitDefault, [Init] and [InitWith]
// builds; later calls return the first result. A failed build panics.
func InitDefault() *Config {
	return global.mustInit()
}

// Init is [InitDefault] with an environment variable prefix and list parse
// keys.
func Init(prefix string, listParseKeys ...string) *Config {
	return global.mustInit(WithPrefix(prefix), WithListParseKeys(listParseKeys...))
}

// InitWith is [InitDefault] with arbitrary options.
func InitWith(opts ...Option) *Config {
	return global.mustInit(opts...)
}

// Global returns the process-wide configuration once it has been built.
func Global() (*Config, bool) {
	return global.get()
}

// MustLoad decodes the process-wide configuration into T. It panics with
// [ErrNotInitialized] when called before a successful [Init], and with the
// decode error when the tree does not fit T.
func MustLoad[T any](opts ...DecodeOption) T {
	return mustLoad[T](&global, opts...)
}
