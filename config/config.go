package config

import (
	"slices"

	"github.com/MKhiriev/go-layered-config/internal/logger"
)

// Config is one finished build: the merged [Tree] plus what was learned while
// producing it. It is immutable and safe for concurrent use.
type Config struct {
	tree        *Tree
	environment Environment
	dir         string
	sources     []SourceReport
}

// Tree returns the merged configuration tree.
func (c *Config) Tree() *Tree {
	return c.tree
}

// Environment returns the environment the configuration was built for.
func (c *Config) Environment() Environment {
	return c.environment
}

// Dir returns the directory the file sources were read from.
func (c *Config) Dir() string {
	return c.dir
}

// Sources returns one report per attempted source, dotenv pass first, in
// the order they were applied.
func (c *Config) Sources() []SourceReport {
	return slices.Clone(c.sources)
}

// New builds a configuration from every source in the fixed precedence order.
// It reads files and mutates the process environment (dotenv pass), so it is
// meant to run once during startup, before any consumer goroutine starts; the
// result is then passed to whoever needs it.
//
// Returns an error wrapping [ErrUnknownEnvironment], [ErrMalformedSource] or
// [ErrSecretDecrypt] when the build cannot complete. Missing files, a missing
// key and undecryptable secrets are not errors; see [Config.Sources].
func New(opts ...Option) (*Config, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	return newLoader(o).load()
}

type loader struct {
	opts *options
	log  *logger.Logger
}

func newLoader(o *options) *loader {
	return &loader{opts: o, log: o.log}
}

func (l *loader) load() (*Config, error) {
	boot, err := parseSettings(l.opts.environ)
	if err != nil {
		return nil, err
	}

	dir := l.resolveDir(boot.Dir)
	raw := boot.Environment
	if l.opts.environment != "" {
		raw = l.opts.environment.String()
	}
	environment, err := resolveEnvironment(raw, l.log)
	if err != nil {
		return nil, err
	}

	paths := sourcePaths{dir: dir, env: environment, format: l.opts.format}
	reader := &sourceReader{log: l.log}
	merger := &dotenvMerger{env: l.opts.environ, reader: reader, log: l.log}

	reports := make([]SourceReport, 0, 16)
	for _, src := range paths.dotenvChain() {
		report, err := merger.mergeSource(src)
		reports = append(reports, report)
		if err != nil {
			return nil, err
		}
	}

	// The key may come from one of the dotenv files merged above.
	if boot, err = parseSettings(l.opts.environ); err != nil {
		return nil, err
	}
	if reader.secrets, err = newSecretReader(boot.SecretKey, l.opts); err != nil {
		return nil, err
	}

	report, err := merger.mergeSource(paths.dotenvSecrets())
	reports = append(reports, report)
	if err != nil {
		return nil, err
	}

	tree, structured, err := newConfigBuilder(reader, l.opts.format).
		withFiles(paths.structuredChain()).
		withEnv(newEnvSource(l.opts.prefix, l.opts.listParseKeys), l.opts.environ.Environ()).
		build()
	if err != nil {
		return nil, err
	}

	l.log.Info().
		Str("dir", dir).
		Str("environment", environment.String()).
		Int("keys", len(tree.Keys())).
		Msg("configuration loaded")

	return &Config{
		tree:        tree,
		environment: environment,
		dir:         dir,
		sources:     append(reports, structured...),
	}, nil
}

func (l *loader) resolveDir(fromEnv string) string {
	if l.opts.dir != "" {
		return l.opts.dir
	}
	if fromEnv == "" {
		l.log.Info().Str("dir", DefaultDir).Msg("CONFIG_DIR is not set, using default config directory")
		return DefaultDir
	}
	return fromEnv
}
