package models

import (
	"encoding/json"
	"fmt"
)

// ComponentStore is an ordered id -> Component mapping. Lookup is O(1) and
// iteration always follows insertion order, which keeps serialization
// deterministic.
//
// On the wire the store uses the tagged Map encoding:
//
//	{"__type":"Map","__data":[[id, component], ...]}
type ComponentStore struct {
	items map[string]*Component
	order []string
}

// NewComponentStore creates an empty store.
func NewComponentStore() *ComponentStore {
	return &ComponentStore{items: make(map[string]*Component)}
}

// Len returns the number of components in the store.
func (s *ComponentStore) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Get looks up a component by id.
func (s *ComponentStore) Get(id string) (*Component, bool) {
	if s == nil {
		return nil, false
	}
	c, ok := s.items[id]
	return c, ok
}

// Has reports whether the store contains id.
func (s *ComponentStore) Has(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// Set inserts or replaces a component. New ids append to the iteration
// order; existing ids keep their position.
func (s *ComponentStore) Set(c *Component) {
	if c == nil || c.ID == "" {
		return
	}
	if _, exists := s.items[c.ID]; !exists {
		s.order = append(s.order, c.ID)
	}
	s.items[c.ID] = c
}

// Delete removes a component by id. Returns false if absent.
func (s *ComponentStore) Delete(id string) bool {
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	for i, k := range s.order {
		if k == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// IDs returns the component ids in insertion order.
func (s *ComponentStore) IDs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Components returns the components in insertion order.
func (s *ComponentStore) Components() []*Component {
	if s == nil {
		return nil
	}
	out := make([]*Component, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

// Range calls fn for each component in insertion order until fn returns
// false.
func (s *ComponentStore) Range(fn func(id string, c *Component) bool) {
	if s == nil {
		return
	}
	for _, id := range s.order {
		if !fn(id, s.items[id]) {
			return
		}
	}
}

// MaxZIndex returns the highest zIndex in the store, or 0 when empty.
func (s *ComponentStore) MaxZIndex() int {
	max := 0
	s.Range(func(_ string, c *Component) bool {
		if c.ZIndex > max {
			max = c.ZIndex
		}
		return true
	})
	return max
}

// Clone returns a deep copy: an independent map with deep-cloned components.
func (s *ComponentStore) Clone() *ComponentStore {
	out := NewComponentStore()
	if s == nil {
		return out
	}
	for _, id := range s.order {
		out.Set(s.items[id].Clone())
	}
	return out
}

// MarshalJSON emits the tagged Map representation, preserving order.
func (s *ComponentStore) MarshalJSON() ([]byte, error) {
	pairs := make([][2]any, 0, s.Len())
	s.Range(func(id string, c *Component) bool {
		pairs = append(pairs, [2]any{id, c})
		return true
	})
	return json.Marshal(map[string]any{
		"__type": "Map",
		"__data": pairs,
	})
}

// UnmarshalJSON accepts the tagged Map representation. A plain JSON object
// is accepted as a legacy fallback, though its ordering follows the
// document text rather than a stored order.
func (s *ComponentStore) UnmarshalJSON(data []byte) error {
	s.items = make(map[string]*Component)
	s.order = nil

	var tagged struct {
		Type string            `json:"__type"`
		Data []json.RawMessage `json:"__data"`
	}
	if err := json.Unmarshal(data, &tagged); err == nil && tagged.Type == "Map" {
		for _, raw := range tagged.Data {
			var pair []json.RawMessage
			if err := json.Unmarshal(raw, &pair); err != nil {
				return fmt.Errorf("component store: malformed map pair: %w", err)
			}
			if len(pair) != 2 {
				return fmt.Errorf("component store: map pair has %d elements", len(pair))
			}
			var id string
			if err := json.Unmarshal(pair[0], &id); err != nil {
				return fmt.Errorf("component store: non-string map key: %w", err)
			}
			var c Component
			if err := json.Unmarshal(pair[1], &c); err != nil {
				return fmt.Errorf("component store: component %s: %w", id, err)
			}
			if c.ID == "" {
				c.ID = id
			}
			s.Set(&c)
		}
		return nil
	}

	// Legacy plain-object fallback.
	var plain map[string]*Component
	if err := json.Unmarshal(data, &plain); err != nil {
		return fmt.Errorf("component store: unrecognized encoding: %w", err)
	}
	for id, c := range plain {
		if c.ID == "" {
			c.ID = id
		}
		s.Set(c)
	}
	return nil
}
