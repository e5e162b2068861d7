package config

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/MKhiriev/go-layered-config/internal/crypto"
	"github.com/MKhiriev/go-layered-config/internal/logger"
)

// Option customizes [New].
type Option func(*options)

type options struct {
	prefix        string
	listParseKeys []string
	dir           string
	environment   Environment
	format        Format
	strictSecrets bool
	log           *logger.Logger

	environ   environ
	newCipher func(key string) (crypto.SecretCipher, error)
}

func defaultOptions() *options {
	return &options{
		format:    FormatYAML,
		log:       logger.New(os.Stderr, "config"),
		environ:   processEnviron{},
		newCipher: crypto.NewSecretCipher,
	}
}

// WithPrefix restricts the environment variable source to variables named
// PREFIX__KEY (prefix matched case-insensitively). Without a prefix every
// variable is bound.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithListParseKeys names dotted keys whose environment value is split on
// commas into a list of strings. Keys are matched case-insensitively against
// the key after prefix removal, e.g. "server.allowed_hosts" for
// PREFIX__SERVER__ALLOWED_HOSTS.
func WithListParseKeys(keys ...string) Option {
	return func(o *options) {
		o.listParseKeys = append(o.listParseKeys, keys...)
	}
}

// WithDir overrides CONFIG_DIR.
func WithDir(dir string) Option {
	return func(o *options) {
		o.dir = dir
	}
}

// WithEnvironment overrides ENV.
func WithEnvironment(e Environment) Option {
	return func(o *options) {
		o.environment = e
	}
}

// WithFormat selects the structured file format. Defaults to [FormatYAML].
func WithFormat(f Format) Option {
	return func(o *options) {
		o.format = f
	}
}

// WithLogger replaces the default stderr JSON logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.log = logger.Wrap(l)
	}
}

// WithStrictSecrets makes an unusable key or an encrypted file that exists
// but cannot be decrypted fail the build instead of being treated as absent.
// A missing key is still tolerated.
func WithStrictSecrets() Option {
	return func(o *options) {
		o.strictSecrets = true
	}
}

func withEnviron(e environ) Option {
	return func(o *options) {
		o.environ = e
	}
}

func withCipherFactory(f func(key string) (crypto.SecretCipher, error)) Option {
	return func(o *options) {
		o.newCipher = f
	}
}
