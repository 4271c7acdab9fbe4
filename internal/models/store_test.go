package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func newComponent(id string, z int) *Component {
	return &Component{
		ID:          id,
		Type:        TypeText,
		Position:    Position{X: 10, Y: 20},
		Dimensions:  Dimensions{Width: 100, Height: 50},
		ZIndex:      z,
		Props:       map[string]any{"text": "hello"},
		Constraints: DefaultConstraints(),
		Metadata:    Metadata{CreatedAt: 1, UpdatedAt: 1, Version: 1},
	}
}

func TestComponentStoreInsertionOrder(t *testing.T) {
	s := NewComponentStore()
	s.Set(newComponent("b", 1))
	s.Set(newComponent("a", 2))
	s.Set(newComponent("c", 3))

	ids := s.IDs()
	want := []string{"b", "a", "c"}
	if len(ids) != len(want) {
		t.Fatalf("IDs() = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("IDs()[%d] = %q, want %q", i, ids[i], want[i])
		}
	}

	// Re-setting an existing id keeps its position.
	s.Set(newComponent("b", 9))
	if got := s.IDs()[0]; got != "b" {
		t.Errorf("after re-set, first id = %q, want b", got)
	}
}

func TestComponentStoreDelete(t *testing.T) {
	s := NewComponentStore()
	s.Set(newComponent("a", 1))
	s.Set(newComponent("b", 2))

	if !s.Delete("a") {
		t.Fatal("Delete(a) = false, want true")
	}
	if s.Delete("a") {
		t.Error("second Delete(a) = true, want false")
	}
	if s.Has("a") {
		t.Error("store still has deleted id")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestComponentStoreMaxZIndex(t *testing.T) {
	s := NewComponentStore()
	if got := s.MaxZIndex(); got != 0 {
		t.Errorf("empty MaxZIndex() = %d, want 0", got)
	}
	s.Set(newComponent("a", 3))
	s.Set(newComponent("b", 7))
	s.Set(newComponent("c", 5))
	if got := s.MaxZIndex(); got != 7 {
		t.Errorf("MaxZIndex() = %d, want 7", got)
	}
}

func TestComponentStoreCloneIsDeep(t *testing.T) {
	s := NewComponentStore()
	s.Set(newComponent("a", 1))

	dup := s.Clone()
	orig, _ := s.Get("a")
	copied, _ := dup.Get("a")
	copied.Props["text"] = "changed"
	copied.Position.X = 999

	if orig.Props["text"] != "hello" {
		t.Error("clone shares Props map with original")
	}
	if orig.Position.X != 10 {
		t.Error("clone shares position with original")
	}
}

func TestComponentStoreJSONRoundTrip(t *testing.T) {
	s := NewComponentStore()
	s.Set(newComponent("first", 1))
	s.Set(newComponent("second", 2))

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"__type":"Map"`) {
		t.Errorf("marshaled store missing Map tag: %s", data)
	}

	var back ComponentStore
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	ids := back.IDs()
	if len(ids) != 2 || ids[0] != "first" || ids[1] != "second" {
		t.Errorf("round trip lost order: %v", ids)
	}
}

func TestComponentStoreUnmarshalLegacyObject(t *testing.T) {
	raw := `{"only": {"id":"only","type":"text","position":{"x":0,"y":0},"dimensions":{"width":1,"height":1},"zIndex":0,"props":{},"constraints":{"movable":true,"resizable":true,"deletable":true,"copyable":true},"metadata":{"createdAt":0,"updatedAt":0,"version":1}}}`
	var s ComponentStore
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("Unmarshal legacy: %v", err)
	}
	if !s.Has("only") {
		t.Error("legacy object form not decoded")
	}
}

func TestStringSetJSONRoundTrip(t *testing.T) {
	set := NewStringSet()
	set.Add("x")
	set.Add("y")
	set.Add("x") // no duplicate

	data, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"__type":"Set"`) {
		t.Errorf("marshaled set missing Set tag: %s", data)
	}

	var back StringSet
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.Len() != 2 || !back.Has("x") || !back.Has("y") {
		t.Errorf("round trip changed set contents: %v", back.Values())
	}
}

func TestSnapshotCloneIndependence(t *testing.T) {
	s := NewComponentStore()
	s.Set(newComponent("a", 1))
	snap := &Snapshot{
		ID:          "snap",
		Components:  s,
		SelectedIDs: []string{"a"},
		Zoom:        1,
	}

	dup := snap.Clone()
	dup.SelectedIDs[0] = "b"
	c, _ := dup.Components.Get("a")
	c.Props["text"] = "changed"

	if snap.SelectedIDs[0] != "a" {
		t.Error("clone shares selection slice")
	}
	orig, _ := snap.Components.Get("a")
	if orig.Props["text"] != "hello" {
		t.Error("clone shares component props")
	}
}
