package serialize

import (
	"encoding/json"
	"reflect"
)

// Map is a generic insertion-ordered string-keyed map used when
// deserializing tagged Map nodes outside the typed canvas/project paths.
type Map struct {
	keys   []string
	values map[string]any
}

// NewMap creates an empty ordered map.
func NewMap() *Map {
	return &Map{values: make(map[string]any)}
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.keys) }

// Get looks up a key.
func (m *Map) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Set inserts or replaces an entry, preserving first-insertion order.
func (m *Map) Set(key string, value any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// MarshalJSON emits the tagged Map representation.
func (m *Map) MarshalJSON() ([]byte, error) {
	pairs := make([][2]any, 0, len(m.keys))
	for _, k := range m.keys {
		pairs = append(pairs, [2]any{k, m.values[k]})
	}
	return json.Marshal(map[string]any{"__type": "Map", "__data": pairs})
}

// Set is a generic insertion-ordered set of values for tagged Set nodes.
type Set struct {
	values []any
}

// NewSet creates a set seeded with values (duplicates dropped).
func NewSet(values ...any) *Set {
	s := &Set{}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Len returns the number of members.
func (s *Set) Len() int { return len(s.values) }

// Has reports membership. Members may hold uncomparable dynamic types
// (maps and slices decoded from JSON), so equality is structural.
func (s *Set) Has(v any) bool {
	for _, e := range s.values {
		if reflect.DeepEqual(e, v) {
			return true
		}
	}
	return false
}

// Add appends v if not already present.
func (s *Set) Add(v any) {
	if s.Has(v) {
		return
	}
	s.values = append(s.values, v)
}

// Values returns the members in insertion order.
func (s *Set) Values() []any {
	out := make([]any, len(s.values))
	copy(out, s.values)
	return out
}

// MarshalJSON emits the tagged Set representation.
func (s *Set) MarshalJSON() ([]byte, error) {
	values := s.values
	if values == nil {
		values = []any{}
	}
	return json.Marshal(map[string]any{"__type": "Set", "__data": values})
}
