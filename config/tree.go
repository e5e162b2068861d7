package config

import (
	"fmt"
	"slices"
	"strings"
)

// KeyDelimiter separates segments of a dotted key path.
const KeyDelimiter = "."

// Tree is the merged configuration: nested maps keyed by lowercase segment
// names. A Tree returned by [Config.Tree] is never modified; composite values
// handed out by its getters are copies.
type Tree struct {
	root map[string]any
}

func newTree() *Tree {
	return &Tree{root: make(map[string]any)}
}

// merge folds src into the tree. Maps merge key by key; any other value,
// lists included, replaces what was there.
func (t *Tree) merge(src map[string]any) {
	mergeMaps(t.root, src)
}

func mergeMaps(dst, src map[string]any) {
	for k, sv := range src {
		if sm, ok := sv.(map[string]any); ok {
			if dm, ok := dst[k].(map[string]any); ok {
				mergeMaps(dm, sm)
				continue
			}
		}
		dst[k] = deepCopy(sv)
	}
}

// Get returns the value at a dotted key path such as "server.port".
func (t *Tree) Get(key string) (any, bool) {
	v, ok := t.lookup(key)
	if !ok {
		return nil, false
	}
	return deepCopy(v), true
}

// Has reports whether key resolves to a value.
func (t *Tree) Has(key string) bool {
	_, ok := t.lookup(key)
	return ok
}

// String returns the scalar at key formatted as text. It reports false for
// missing keys, maps and lists.
func (t *Tree) String(key string) (string, bool) {
	v, ok := t.lookup(key)
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case map[string]any, []any:
		return "", false
	case string:
		return s, true
	default:
		return fmt.Sprint(s), true
	}
}

// Keys lists every leaf key path in sorted order.
func (t *Tree) Keys() []string {
	var keys []string
	collectKeys(t.root, "", &keys)
	slices.Sort(keys)
	return keys
}

// AllSettings returns a deep copy of the whole tree.
func (t *Tree) AllSettings() map[string]any {
	return deepCopy(t.root).(map[string]any)
}

func (t *Tree) lookup(key string) (any, bool) {
	var cur any = t.root
	for _, seg := range strings.Split(strings.ToLower(key), KeyDelimiter) {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[seg]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func collectKeys(m map[string]any, prefix string, out *[]string) {
	for k, v := range m {
		path := k
		if prefix != "" {
			path = prefix + KeyDelimiter + k
		}
		if child, ok := v.(map[string]any); ok && len(child) > 0 {
			collectKeys(child, path, out)
			continue
		}
		*out = append(*out, path)
	}
}

// setPath stores v under segments, replacing any scalar that sits where an
// intermediate map is needed.
func setPath(m map[string]any, segments []string, v any) {
	for _, seg := range segments[:len(segments)-1] {
		next, ok := m[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[seg] = next
		}
		m = next
	}
	m[segments[len(segments)-1]] = v
}

// normalize lowercases every map key and converts the non-string-keyed maps
// some parsers produce. Keys are visited in sorted order so that two keys
// differing only in case resolve the same way on every run; when both hold
// maps they are merged.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			lk, child := strings.ToLower(k), normalize(val[k])
			if prev, ok := out[lk].(map[string]any); ok {
				if next, ok := child.(map[string]any); ok {
					mergeMaps(prev, next)
					continue
				}
			}
			out[lk] = child
		}
		return out
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, child := range val {
			m[fmt.Sprint(k)] = child
		}
		return normalize(m)
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = normalize(child)
		}
		return out
	default:
		return v
	}
}

func deepCopy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = deepCopy(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = deepCopy(child)
		}
		return out
	default:
		return v
	}
}
