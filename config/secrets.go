package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/MKhiriev/go-layered-config/internal/crypto"
	"github.com/MKhiriev/go-layered-config/internal/logger"
)

// secretReader decrypts *.enc sources. cipher is nil when no key is set or
// the key is unusable; keyErr tells the two apart.
type secretReader struct {
	cipher crypto.SecretCipher
	keyErr error
	strict bool
	log    *logger.Logger
}

func newSecretReader(key string, o *options) (*secretReader, error) {
	r := &secretReader{strict: o.strictSecrets, log: o.log}

	if key == "" {
		r.log.Info().Msg("SECRETS_ENCRYPTION_KEY not found, not loading encrypted secrets")
		return r, nil
	}

	c, err := o.newCipher(key)
	if err != nil {
		if r.strict {
			return nil, fmt.Errorf("%w: %w", ErrSecretDecrypt, err)
		}
		r.log.Warn().Err(err).Msg("SECRETS_ENCRYPTION_KEY is unusable, not loading encrypted secrets")
		r.keyErr = err
		return r, nil
	}

	r.cipher = c
	return r, nil
}

// read decrypts the first existing candidate of src. A missing file is
// reported absent; a file that exists but fails to decrypt is reported
// failed and, outside strict mode, otherwise ignored.
func (r *secretReader) read(src source) ([]byte, SourceReport, error) {
	report := SourceReport{Name: src.name, Path: src.candidates[0]}

	if r.keyErr != nil {
		report.Status, report.Err = StatusFailed, r.keyErr
		return nil, report, nil
	}
	if r.cipher == nil {
		report.Status = StatusSkipped
		return nil, report, nil
	}

	log := r.log.Child("source", src.name)
	for _, path := range src.candidates {
		plaintext, err := r.cipher.DecryptFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		report.Path = path

		if err != nil {
			report.Status, report.Err = StatusFailed, err
			if r.strict {
				return nil, report, fmt.Errorf("%w: %s: %w", ErrSecretDecrypt, path, err)
			}
			log.Warn().Err(err).Str("path", path).Msg("failed to decrypt secrets, treating source as absent")
			return nil, report, nil
		}

		log.Debug().Str("path", path).Msg("secrets decrypted")
		report.Status = StatusLoaded
		return plaintext, report, nil
	}

	log.Debug().Msg("source absent")
	report.Status = StatusAbsent
	return nil, report, nil
}
