// Package values keeps settings as a flat map of dotted keys with the typed
// lookups the config stores share.
package values

import (
	"maps"
	"slices"
	"strings"
	"sync"
)

// Table is a concurrency-safe map of dotted keys ("llm.model") to scalars.
type Table struct {
	mu sync.RWMutex
	m  map[string]any
}

// New returns an empty table.
func New() *Table {
	return &Table{m: make(map[string]any)}
}

func (t *Table) Get(key string) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.m[key]
	return v, ok
}

func (t *Table) GetString(key string) string {
	v, _ := t.Get(key)
	s, _ := v.(string)
	return s
}

// GetInt accepts the int64 TOML decodes to. Non-integers give 0.
func (t *Table) GetInt(key string) int {
	v, _ := t.Get(key)
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	}
	return 0
}

// GetFloat also accepts integers so "temperature = 1" reads as 1.0.
func (t *Table) GetFloat(key string) float64 {
	v, _ := t.Get(key)
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

func (t *Table) GetBool(key string) bool {
	v, _ := t.Get(key)
	b, _ := v.(bool)
	return b
}

// Keys returns the stored keys in sorted order.
func (t *Table) Keys() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Sorted(maps.Keys(t.m))
}

// Update sets key and then calls commit with the nested form of the table,
// under the write lock. If commit fails the previous value is restored.
func (t *Table) Update(key string, value any, commit func(nested map[string]any) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev, had := t.m[key]
	t.m[key] = value
	if commit == nil {
		return nil
	}
	if err := commit(Nest(t.m)); err != nil {
		if had {
			t.m[key] = prev
		} else {
			delete(t.m, key)
		}
		return err
	}
	return nil
}

// Replace swaps the whole table for the flattened form of nested.
func (t *Table) Replace(nested map[string]any) {
	flat := Flatten(nested)
	t.mu.Lock()
	t.m = flat
	t.mu.Unlock()
}

// Flatten turns {"llm": {"model": "x"}} into {"llm.model": "x"}.
func Flatten(nested map[string]any) map[string]any {
	out := make(map[string]any)
	flattenInto(out, nested, "")
	return out
}

func flattenInto(out, m map[string]any, prefix string) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if child, ok := v.(map[string]any); ok {
			flattenInto(out, child, key)
			continue
		}
		out[key] = v
	}
}

// Nest is the inverse of Flatten. When a key is both a scalar and a table
// prefix ("a" and "a.b"), the scalar wins and the deeper key is dropped.
func Nest(flat map[string]any) map[string]any {
	root := make(map[string]any)
	for _, key := range slices.Sorted(maps.Keys(flat)) {
		parts := strings.Split(key, ".")
		if node := descend(root, parts[:len(parts)-1]); node != nil {
			node[parts[len(parts)-1]] = flat[key]
		}
	}
	return root
}

// descend walks path, creating tables, and returns nil if a scalar blocks it.
func descend(node map[string]any, path []string) map[string]any {
	for _, part := range path {
		existing, found := node[part]
		if !found {
			child := make(map[string]any)
			node[part] = child
			node = child
			continue
		}
		child, ok := existing.(map[string]any)
		if !ok {
			return nil
		}
		node = child
	}
	return node
}
