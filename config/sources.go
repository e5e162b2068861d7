package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/MKhiriev/go-layered-config/internal/logger"
)

// Format is the syntax of the structured (non-dotenv) files.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

const encryptedExt = ".enc"

var errTrailingData = errors.New("unexpected data after top-level value")

func (f Format) extensions() []string {
	if f == FormatJSON {
		return []string{"json"}
	}
	return []string{"yaml", "yml"}
}

func (f Format) parse(data []byte) (map[string]any, error) {
	var values map[string]any
	switch f {
	case FormatJSON:
		// Numbers stay json.Number so integers above 2^53 keep every digit.
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&values); err != nil {
			return nil, err
		}
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			return nil, errTrailingData
		}
	default:
		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, err
		}
	}
	return values, nil
}

// SourceStatus is the outcome of one source in the precedence chain.
type SourceStatus string

const (
	// StatusLoaded means the source was read (and decrypted) and merged.
	StatusLoaded SourceStatus = "loaded"
	// StatusAbsent means no file exists for the source.
	StatusAbsent SourceStatus = "absent"
	// StatusSkipped means an encrypted source was not attempted because no
	// key is configured.
	StatusSkipped SourceStatus = "skipped"
	// StatusFailed means an encrypted source exists but could not be
	// decrypted; it was treated as absent.
	StatusFailed SourceStatus = "failed"
)

// SourceReport records what happened to one source during a build.
type SourceReport struct {
	Name   string
	Path   string
	Status SourceStatus
	Err    error
}

// source describes one entry of a precedence chain. candidates are tried in
// order; the first existing one is used.
type source struct {
	name       string
	candidates []string
	encrypted  bool
	required   bool
}

// sourcePaths computes the fixed chains for a directory and environment.
type sourcePaths struct {
	dir    string
	env    Environment
	format Format
}

func (p sourcePaths) dotenv(name string) source {
	return source{name: name, candidates: []string{filepath.Join(p.dir, name)}}
}

func (p sourcePaths) structured(base string, encrypted bool) source {
	suffix := ""
	if encrypted {
		suffix = encryptedExt
	}

	exts := p.format.extensions()
	candidates := make([]string, 0, len(exts))
	for _, ext := range exts {
		candidates = append(candidates, filepath.Join(p.dir, base+"."+ext+suffix))
	}

	return source{
		name:       base + "." + exts[0] + suffix,
		candidates: candidates,
		encrypted:  encrypted,
	}
}

// dotenvChain lists the plaintext dotenv files, highest precedence first.
func (p sourcePaths) dotenvChain() []source {
	return []source{
		p.dotenv(".env"),
		p.dotenv("local.env"),
		p.dotenv(p.env.String() + ".env"),
		p.dotenv("default.env"),
	}
}

func (p sourcePaths) dotenvSecrets() source {
	name := p.env.String() + "-secrets.env" + encryptedExt
	return source{name: name, candidates: []string{filepath.Join(p.dir, name)}, encrypted: true}
}

// structuredChain lists the structured files, lowest precedence first.
func (p sourcePaths) structuredChain() []source {
	env := p.env.String()
	return []source{
		p.structured("default", false),
		p.structured(env, false),
		p.structured(env+"-secrets", false),
		p.structured(env+"-secrets", true),
		p.structured("local-secrets", true),
		p.structured("local", false),
	}
}

// sourceReader turns a source descriptor into bytes. Only read errors on a
// located plaintext file and strict-mode decrypt failures are returned as
// errors; everything else is folded into the report.
type sourceReader struct {
	secrets *secretReader
	log     *logger.Logger
}

func (r *sourceReader) read(src source) ([]byte, SourceReport, error) {
	if src.encrypted {
		if r.secrets == nil {
			return nil, SourceReport{Name: src.name, Path: src.candidates[0], Status: StatusSkipped}, nil
		}
		return r.secrets.read(src)
	}

	log := r.log.Child("source", src.name)
	report := SourceReport{Name: src.name, Path: src.candidates[0]}
	for _, path := range src.candidates {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		report.Path = path
		if err != nil {
			report.Status, report.Err = StatusFailed, err
			return nil, report, fmt.Errorf("read %s: %w", path, err)
		}

		log.Debug().Str("path", path).Msg("source loaded")
		report.Status = StatusLoaded
		return data, report, nil
	}

	if src.required {
		report.Status = StatusFailed
		return nil, report, fmt.Errorf("required source %s: %w", src.name, fs.ErrNotExist)
	}

	log.Debug().Msg("source absent")
	report.Status = StatusAbsent
	return nil, report, nil
}

func checkEncoding(path string, data []byte) error {
	if !utf8.Valid(data) {
		return fmt.Errorf("%w: %s: %w", ErrMalformedSource, path, ErrInvalidEncoding)
	}
	return nil
}
