package config

import (
	"fmt"

	"dario.cat/mergo"
	"github.com/go-viper/mapstructure/v2"
)

// TagName is the struct tag consulted when decoding. Untagged fields match
// keys by case-insensitive field name.
const TagName = "config"

// DecodeOption customizes [Decode].
type DecodeOption func(*decodeOptions)

type decodeOptions struct {
	strict bool
}

// Strict reports every field of the target that no key filled.
func Strict() DecodeOption {
	return func(o *decodeOptions) {
		o.strict = true
	}
}

// Decode maps the tree of c onto a new T. Scalars are converted weakly, so
// "8080" from an environment variable fills an int field, and strings such as
// "30s" fill time.Duration fields. Types implementing
// encoding.TextUnmarshaler decode from text.
//
// A nil c yields [ErrNotInitialized]. Any mismatch yields an error wrapping
// [ErrDecode] whose message names the offending key.
func Decode[T any](c *Config, opts ...DecodeOption) (T, error) {
	var out T
	if c == nil || c.tree == nil {
		return out, ErrNotInitialized
	}

	o := &decodeOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if err := c.tree.decode(&out, o); err != nil {
		return out, fmt.Errorf("%w into %T: %w", ErrDecode, out, err)
	}
	return out, nil
}

// DecodeWithDefaults is [Decode] followed by filling every zero field of the
// result from defaults. T must be a struct or map type.
func DecodeWithDefaults[T any](c *Config, defaults T, opts ...DecodeOption) (T, error) {
	out, err := Decode[T](c, opts...)
	if err != nil {
		return out, err
	}

	if err := mergo.Merge(&out, defaults); err != nil {
		return out, fmt.Errorf("%w: error merging defaults: %w", ErrDecode, err)
	}
	return out, nil
}

func (t *Tree) decode(target any, o *decodeOptions) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          TagName,
		WeaklyTypedInput: true,
		ErrorUnset:       o.strict,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
	})
	if err != nil {
		return err
	}

	return dec.Decode(t.AllSettings())
}
