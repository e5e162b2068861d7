package config

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/joho/godotenv"

	"github.com/MKhiriev/go-layered-config/internal/logger"
)

var errNoVariableName = errors.New("assignment without a variable name")

// dotenvMerger folds dotenv sources into an environ without ever replacing
// a variable that is already set.
type dotenvMerger struct {
	env    environ
	reader *sourceReader
	log    *logger.Logger
}

// mergeSource reads src and applies it. An absent, skipped or failed source
// leaves the environment untouched.
func (m *dotenvMerger) mergeSource(src source) (SourceReport, error) {
	data, report, err := m.reader.read(src)
	if err != nil || report.Status != StatusLoaded {
		return report, err
	}

	applied, err := m.merge(report.Path, data)
	if err != nil {
		return report, err
	}

	m.log.Debug().Str("source", src.name).Int("applied", applied).Msg("dotenv merged")
	return report, nil
}

// merge applies the assignments of one file in file order. A variable that
// is already set keeps its value, including one set by an earlier line of
// the same file. References like ${NAME} resolve against the environment as
// it stands when the line is reached.
func (m *dotenvMerger) merge(path string, data []byte) (int, error) {
	if err := checkEncoding(path, data); err != nil {
		return 0, err
	}
	if _, err := godotenv.UnmarshalBytes(data); err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrMalformedSource, path, err)
	}

	applied := 0
	for _, stmt := range splitDotenv(data) {
		key, value, err := stmt.decode(m.env.LookupEnv)
		if err != nil {
			return applied, fmt.Errorf("%w: %s: %w", ErrMalformedSource, path, err)
		}
		if _, ok := m.env.LookupEnv(key); ok {
			continue
		}
		if err := m.env.Setenv(key, value); err != nil {
			return applied, fmt.Errorf("set %s from %s: %w", key, path, err)
		}
		applied++
	}

	return applied, nil
}

// dotenvStatement is the text of a single assignment and the quote its
// value starts with, if any.
type dotenvStatement struct {
	text  []byte
	quote byte
}

// splitDotenv cuts dotenv data that godotenv already accepted into its
// assignments, in file order. Statement boundaries follow godotenv's
// grammar: a quoted value runs to its closing quote, across lines, and any
// other value runs to the end of the line.
func splitDotenv(data []byte) []dotenvStatement {
	src := bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))

	var stmts []dotenvStatement
	for {
		pos := bytes.IndexFunc(src, func(r rune) bool { return !unicode.IsSpace(r) })
		if pos == -1 {
			return stmts
		}
		src = src[pos:]

		if src[0] == '#' {
			nl := bytes.IndexByte(src, '\n')
			if nl == -1 {
				return stmts
			}
			src = src[nl:]
			continue
		}

		valueStart := 0
		if sep := bytes.IndexAny(src, "=:"); sep != -1 {
			valueStart = sep + 1
		}
		rest := bytes.TrimLeftFunc(src[valueStart:], isDotenvSpace)
		valueStart = len(src) - len(rest)

		stmt := dotenvStatement{}
		end := len(src)
		if len(rest) > 0 && (rest[0] == '"' || rest[0] == '\'') {
			stmt.quote = rest[0]
			for i := 1; i < len(rest); i++ {
				if rest[i] == stmt.quote && rest[i-1] != '\\' {
					end = valueStart + i + 1
					break
				}
			}
		} else if eol := bytes.IndexAny(rest, "\n\r"); eol != -1 {
			end = valueStart + eol
		}

		stmt.text = src[:end]
		stmts = append(stmts, stmt)
		src = src[end:]
	}
}

func isDotenvSpace(r rune) bool {
	switch r {
	case '\t', '\v', '\f', '\r', ' ', 0x85, 0xA0:
		return true
	}
	return false
}

// decode returns the variable name and value of the statement. godotenv
// unquotes the value; references are expanded here through lookup instead
// of godotenv's file-local map. Single-quoted values are taken literally.
func (s dotenvStatement) decode(lookup func(string) (string, bool)) (string, string, error) {
	if s.quote == '\'' {
		return unmarshalStatement(s.text)
	}

	ref, dollar := placeholders(s.text)
	text := bytes.ReplaceAll(s.text, []byte(`\$`), []byte(string(dollar)))
	text = bytes.ReplaceAll(text, []byte("$"), []byte(string(ref)))

	key, raw, err := unmarshalStatement(text)
	if err != nil {
		return "", "", err
	}
	return key, expandReferences(raw, ref, dollar, lookup), nil
}

func unmarshalStatement(text []byte) (string, string, error) {
	vars, err := godotenv.UnmarshalBytes(text)
	if err != nil {
		return "", "", err
	}
	for k, v := range vars {
		if k == "" {
			return "", "", errNoVariableName
		}
		return k, v, nil
	}
	return "", "", errNoVariableName
}

// placeholders picks two private-use runes absent from text. They stand in
// for "$" and "\$" while godotenv unquotes the value.
func placeholders(text []byte) (ref, dollar rune) {
	picked := make([]rune, 0, 2)
	for r := rune(0xE000); len(picked) < 2; r++ {
		if !bytes.ContainsRune(text, r) {
			picked = append(picked, r)
		}
	}
	return picked[0], picked[1]
}

// expandReferences replaces $NAME and ${NAME} marked by ref with the looked
// up value, or nothing when the variable is unset. dollar marks an escaped
// "\$" and becomes a literal "$".
func expandReferences(raw string, ref, dollar rune, lookup func(string) (string, bool)) string {
	rs := []rune(raw)

	var b strings.Builder
	for i := 0; i < len(rs); i++ {
		switch rs[i] {
		case dollar:
			b.WriteByte('$')
		case ref:
			j := i + 1
			braced := j < len(rs) && rs[j] == '{'
			if braced {
				j++
			}
			k := j
			for k < len(rs) && isNameRune(rs[k]) {
				k++
			}
			if k == j {
				b.WriteByte('$')
				continue
			}

			value, _ := lookup(string(rs[j:k]))
			b.WriteString(value)
			if braced && k < len(rs) && rs[k] == '}' {
				k++
			}
			i = k - 1
		default:
			b.WriteRune(rs[i])
		}
	}
	return b.String()
}

func isNameRune(r rune) bool {
	return r == '_' || r >= '0' && r <= '9' || r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z'
}
