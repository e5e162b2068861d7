package config

import "errors"

// Errors returned while building or decoding a configuration. Every one of
// them is fatal for the build that produced it; absorbed conditions (missing
// files, missing key, undecryptable optional secrets) are reported through
// [Config.Sources] instead.
var (
	// ErrUnknownEnvironment indicates ENV holds something other than dev,
	// stag or prod.
	ErrUnknownEnvironment = errors.New("unknown environment")
	// ErrMalformedSource indicates a located or decrypted source could not
	// be parsed.
	ErrMalformedSource = errors.New("malformed configuration source")
	// ErrInvalidEncoding indicates a source is not valid UTF-8 text.
	ErrInvalidEncoding = errors.New("invalid text encoding")
	// ErrSecretDecrypt indicates an encrypted source could not be decrypted
	// while strict secrets are enabled.
	ErrSecretDecrypt = errors.New("secret source could not be decrypted")
	// ErrNotInitialized indicates typed access before a configuration was
	// built.
	ErrNotInitialized = errors.New("configuration is not initialized")
	// ErrDecode indicates the tree does not fit the requested type.
	ErrDecode = errors.New("configuration decode failed")
)
