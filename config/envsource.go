package config

import (
	"slices"
	"strings"
)

const (
	// EnvSeparator separates the prefix and the key segments of a bound
	// environment variable: APP__SERVER__PORT -> server.port.
	EnvSeparator = "__"
	// ListSeparator splits the value of a list parse key.
	ListSeparator = ","
)

// envSource maps environment variables onto the tree's key space. listKeys
// is fixed at construction so every variable is parsed under the same rules.
type envSource struct {
	prefix   string
	listKeys map[string]struct{}
}

func newEnvSource(prefix string, listParseKeys []string) envSource {
	keys := make(map[string]struct{}, len(listParseKeys))
	for _, k := range listParseKeys {
		keys[strings.ToLower(k)] = struct{}{}
	}
	return envSource{prefix: strings.ToLower(prefix), listKeys: keys}
}

// collect converts KEY=value pairs into a nested map. Variables are visited
// in sorted order so that names colliding after lowercasing resolve the same
// way on every run.
func (s envSource) collect(vars []string) map[string]any {
	sorted := slices.Clone(vars)
	slices.Sort(sorted)

	out := make(map[string]any)
	for _, kv := range sorted {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}

		key, ok := s.key(name)
		if !ok {
			continue
		}

		segments := strings.Split(key, EnvSeparator)
		if slices.Contains(segments, "") {
			continue
		}

		var v any = value
		if _, isList := s.listKeys[strings.Join(segments, KeyDelimiter)]; isList {
			v = splitList(value)
		}
		setPath(out, segments, v)
	}

	return out
}

func (s envSource) key(name string) (string, bool) {
	lower := strings.ToLower(name)
	if s.prefix == "" {
		return lower, true
	}
	return strings.CutPrefix(lower, s.prefix+EnvSeparator)
}

func splitList(value string) []any {
	if value == "" {
		return []any{}
	}
	parts := strings.Split(value, ListSeparator)
	out := make([]any, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	return out
}
