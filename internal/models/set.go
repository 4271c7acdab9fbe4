package models

import (
	"encoding/json"
	"fmt"
)

// StringSet is an insertion-ordered set of strings with the tagged Set wire
// encoding:
//
//	{"__type":"Set","__data":[value, ...]}
type StringSet struct {
	values []string
	index  map[string]struct{}
}

// NewStringSet creates a set seeded with the given values.
func NewStringSet(values ...string) *StringSet {
	s := &StringSet{index: make(map[string]struct{})}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Len returns the number of members.
func (s *StringSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.values)
}

// Has reports membership.
func (s *StringSet) Has(v string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[v]
	return ok
}

// Add appends v if not already present.
func (s *StringSet) Add(v string) {
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[v]; ok {
		return
	}
	s.index[v] = struct{}{}
	s.values = append(s.values, v)
}

// Remove deletes v, preserving the order of remaining members.
func (s *StringSet) Remove(v string) {
	if s == nil || !s.Has(v) {
		return
	}
	delete(s.index, v)
	for i, e := range s.values {
		if e == v {
			s.values = append(s.values[:i], s.values[i+1:]...)
			break
		}
	}
}

// Values returns the members in insertion order.
func (s *StringSet) Values() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.values))
	copy(out, s.values)
	return out
}

// Clone returns an independent copy.
func (s *StringSet) Clone() *StringSet {
	if s == nil {
		return nil
	}
	return NewStringSet(s.values...)
}

// MarshalJSON emits the tagged Set representation.
func (s *StringSet) MarshalJSON() ([]byte, error) {
	values := s.Values()
	if values == nil {
		values = []string{}
	}
	return json.Marshal(map[string]any{
		"__type": "Set",
		"__data": values,
	})
}

// UnmarshalJSON accepts the tagged Set representation or a plain array.
func (s *StringSet) UnmarshalJSON(data []byte) error {
	s.values = nil
	s.index = make(map[string]struct{})

	var tagged struct {
		Type string   `json:"__type"`
		Data []string `json:"__data"`
	}
	if err := json.Unmarshal(data, &tagged); err == nil && tagged.Type == "Set" {
		for _, v := range tagged.Data {
			s.Add(v)
		}
		return nil
	}

	var plain []string
	if err := json.Unmarshal(data, &plain); err != nil {
		return fmt.Errorf("string set: unrecognized encoding: %w", err)
	}
	for _, v := range plain {
		s.Add(v)
	}
	return nil
}
