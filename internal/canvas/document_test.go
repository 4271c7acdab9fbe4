package canvas

import (
	"testing"

	"github.com/pagecraft/backend/internal/component"
	"github.com/pagecraft/backend/internal/models"
)

func newTestDocument() *Document {
	return NewDocument(DefaultOptions())
}

func TestCreateComponentDefaults(t *testing.T) {
	d := newTestDocument()
	c := d.CreateComponent(models.TypeButton, models.Position{X: 100, Y: 50}, nil, true)

	if c.ID == "" {
		t.Fatal("created component has no id")
	}
	if c.ZIndex != 1 {
		t.Errorf("first component zIndex = %d, want 1", c.ZIndex)
	}
	if c.Metadata.Version != 1 {
		t.Errorf("new component version = %d, want 1", c.Metadata.Version)
	}
	if c.Props["backgroundColor"] != "#2563EB" {
		t.Errorf("button background default = %v", c.Props["backgroundColor"])
	}

	state := d.State()
	if state.Components.Len() != 1 {
		t.Fatalf("canvas has %d components, want 1", state.Components.Len())
	}
	if len(state.SelectedIDs) != 1 || state.SelectedIDs[0] != c.ID {
		t.Errorf("new component not selected: %v", state.SelectedIDs)
	}
	if state.FocusedID != c.ID {
		t.Errorf("new component not focused: %q", state.FocusedID)
	}
}

func TestCreateComponentStacksZIndex(t *testing.T) {
	d := newTestDocument()
	a := d.CreateComponent(models.TypeText, models.Position{}, nil, true)
	b := d.CreateComponent(models.TypeText, models.Position{}, nil, true)
	if b.ZIndex != a.ZIndex+1 {
		t.Errorf("second zIndex = %d, want %d", b.ZIndex, a.ZIndex+1)
	}

	z := 42
	c := d.CreateComponent(models.TypeText, models.Position{}, &component.CreateOptions{ZIndex: &z}, true)
	if c.ZIndex != 42 {
		t.Errorf("explicit zIndex = %d, want 42", c.ZIndex)
	}
}

func TestUpdateComponentMergesProps(t *testing.T) {
	d := newTestDocument()
	c := d.CreateComponent(models.TypeText, models.Position{}, nil, true)

	res := d.UpdateComponent(c.ID, map[string]any{"text": "updated"}, true)
	if res == nil {
		t.Fatal("update returned nil for existing component")
	}

	got, _ := d.State().Components.Get(c.ID)
	if got.Props["text"] != "updated" {
		t.Errorf("text = %v, want updated", got.Props["text"])
	}
	if got.Props["fontSize"] == nil {
		t.Error("merge dropped untouched default props")
	}
	if got.Metadata.Version != 2 {
		t.Errorf("version after update = %d, want 2", got.Metadata.Version)
	}
}

func TestUpdateComponentMissingIDIsNoOp(t *testing.T) {
	d := newTestDocument()
	if res := d.UpdateComponent("comp-0-nope", map[string]any{"text": "x"}, true); res != nil {
		t.Error("update of missing id should return nil")
	}
	if d.History().CanUndo() {
		t.Error("no-op update should not commit history")
	}
}

func TestUpdateAppliedEvenWhenInvalid(t *testing.T) {
	d := newTestDocument()
	c := d.CreateComponent(models.TypeText, models.Position{}, nil, true)

	res := d.UpdateComponent(c.ID, map[string]any{"fontSize": 500}, true)
	if res == nil {
		t.Fatal("update returned nil")
	}
	if res.IsValid {
		t.Error("fontSize 500 should be flagged invalid")
	}
	got, _ := d.State().Components.Get(c.ID)
	if got.Props["fontSize"] != 500 {
		t.Error("advisory validation must not block the update")
	}
}

func TestMoveComponentClampsToBoundaries(t *testing.T) {
	d := newTestDocument()
	c := d.CreateComponent(models.TypeText, models.Position{X: 0, Y: 0}, nil, true)

	// Way past the right edge: clamp to maxX - width.
	d.MoveComponent(c.ID, models.Position{X: 5000, Y: -50}, true)
	got, _ := d.State().Components.Get(c.ID)
	wantX := 1200 - got.Dimensions.Width
	if got.Position.X != wantX {
		t.Errorf("clamped X = %v, want %v", got.Position.X, wantX)
	}
	if got.Position.Y != 0 {
		t.Errorf("clamped Y = %v, want 0", got.Position.Y)
	}
}

func TestMoveComponentRespectsMovable(t *testing.T) {
	d := newTestDocument()
	c := d.CreateComponent(models.TypeText, models.Position{X: 10, Y: 10}, nil, true)

	// Flip the constraint through a restore round trip.
	snap := d.Snapshot("")
	fixed, _ := snap.Components.Get(c.ID)
	fixed.Constraints.Movable = false
	d.Restore(snap)

	d.MoveComponent(c.ID, models.Position{X: 300, Y: 300}, true)
	got, _ := d.State().Components.Get(c.ID)
	if got.Position.X != 10 || got.Position.Y != 10 {
		t.Errorf("immovable component moved to (%v,%v)", got.Position.X, got.Position.Y)
	}
}

func TestResizeComponentClampsToMinimums(t *testing.T) {
	d := newTestDocument()
	c := d.CreateComponent(models.TypeText, models.Position{}, nil, true)

	d.ResizeComponent(c.ID, models.Dimensions{Width: 1, Height: 1}, true)
	got, _ := d.State().Components.Get(c.ID)
	if got.Dimensions.Width != component.DefaultMinWidth {
		t.Errorf("width = %v, want %v", got.Dimensions.Width, component.DefaultMinWidth)
	}
	if got.Dimensions.Height != component.DefaultMinHeight {
		t.Errorf("height = %v, want %v", got.Dimensions.Height, component.DefaultMinHeight)
	}
}

func TestDuplicateComponentOffsetsAndKeepsSelection(t *testing.T) {
	d := newTestDocument()
	c := d.CreateComponent(models.TypeImage, models.Position{X: 30, Y: 40}, nil, true)
	d.SelectComponent(c.ID, false)

	dup := d.DuplicateComponent(c.ID, true)
	if dup == nil {
		t.Fatal("duplicate returned nil")
	}
	if dup.ID == c.ID {
		t.Error("duplicate shares the original id")
	}
	if dup.Position.X != 30+component.CloneOffset || dup.Position.Y != 40+component.CloneOffset {
		t.Errorf("duplicate position = (%v,%v)", dup.Position.X, dup.Position.Y)
	}

	state := d.State()
	if len(state.SelectedIDs) != 1 || state.SelectedIDs[0] != c.ID {
		t.Errorf("duplicating changed selection: %v", state.SelectedIDs)
	}
}

func TestSelectionFocusRules(t *testing.T) {
	d := newTestDocument()
	a := d.CreateComponent(models.TypeText, models.Position{}, nil, true)
	b := d.CreateComponent(models.TypeText, models.Position{}, nil, true)

	d.SelectComponent(a.ID, false)
	d.SelectComponent(b.ID, true)

	state := d.State()
	if len(state.SelectedIDs) != 2 {
		t.Fatalf("multi-select size = %d, want 2", len(state.SelectedIDs))
	}
	if state.FocusedID != b.ID {
		t.Errorf("focus = %q, want %q", state.FocusedID, b.ID)
	}

	// Deselecting the focused element shifts focus to the first remaining.
	d.DeselectComponent(b.ID)
	state = d.State()
	if state.FocusedID != a.ID {
		t.Errorf("focus after deselect = %q, want %q", state.FocusedID, a.ID)
	}

	// Selecting an already selected id under multi-select only moves focus.
	d.SelectComponent(a.ID, true)
	state = d.State()
	if len(state.SelectedIDs) != 1 {
		t.Errorf("re-select duplicated id: %v", state.SelectedIDs)
	}

	d.ClearSelection()
	state = d.State()
	if len(state.SelectedIDs) != 0 || state.FocusedID != "" {
		t.Error("clear selection left residue")
	}

	// Selecting a missing id is a silent no-op.
	d.SelectComponent("comp-0-nope", false)
	if len(d.State().SelectedIDs) != 0 {
		t.Error("selecting missing id changed selection")
	}
}

func TestRemoveComponentUpdatesSelection(t *testing.T) {
	d := newTestDocument()
	c := d.CreateComponent(models.TypeText, models.Position{}, nil, true)

	d.RemoveComponent(c.ID, true)
	state := d.State()
	if state.Components.Len() != 0 {
		t.Error("component not removed")
	}
	if len(state.SelectedIDs) != 0 || state.FocusedID != "" {
		t.Error("removal left stale selection")
	}

	// Removing again is a silent no-op and commits nothing new.
	before := d.History().Info().PastLength
	d.RemoveComponent(c.ID, true)
	if d.History().Info().PastLength != before {
		t.Error("no-op removal committed history")
	}
}

func TestSetZoomClamps(t *testing.T) {
	d := newTestDocument()
	d.SetZoom(0.01)
	if got := d.State().Zoom; got != models.MinZoom {
		t.Errorf("zoom = %v, want %v", got, models.MinZoom)
	}
	d.SetZoom(50)
	if got := d.State().Zoom; got != models.MaxZoom {
		t.Errorf("zoom = %v, want %v", got, models.MaxZoom)
	}
	d.SetZoom(2.5)
	if got := d.State().Zoom; got != 2.5 {
		t.Errorf("zoom = %v, want 2.5", got)
	}
}

func TestUndoRedoThroughDocument(t *testing.T) {
	d := newTestDocument()
	a := d.CreateComponent(models.TypeText, models.Position{X: 10, Y: 10}, nil, true)
	d.CreateComponent(models.TypeButton, models.Position{X: 20, Y: 20}, nil, true)

	if d.State().Components.Len() != 2 {
		t.Fatal("setup failed")
	}

	// Undo the second add: only the first remains.
	if !d.Undo() {
		t.Fatal("undo failed")
	}
	state := d.State()
	if state.Components.Len() != 1 || !state.Components.Has(a.ID) {
		t.Fatalf("after undo: %v", state.Components.IDs())
	}

	// Undo the first add: empty canvas.
	if !d.Undo() {
		t.Fatal("second undo failed")
	}
	if d.State().Components.Len() != 0 {
		t.Error("canvas not empty after undoing both adds")
	}
	if d.Undo() {
		t.Error("undo past the beginning should return false")
	}

	// Redo both.
	if !d.Redo() || !d.Redo() {
		t.Fatal("redo failed")
	}
	if d.State().Components.Len() != 2 {
		t.Error("redo did not restore both components")
	}
	if d.Redo() {
		t.Error("redo past the end should return false")
	}
}

func TestUndoAfterMoveRestoresPosition(t *testing.T) {
	d := newTestDocument()
	c := d.CreateComponent(models.TypeText, models.Position{X: 10, Y: 10}, nil, true)
	d.MoveComponent(c.ID, models.Position{X: 200, Y: 100}, true)

	if !d.Undo() {
		t.Fatal("undo failed")
	}
	got, _ := d.State().Components.Get(c.ID)
	if got.Position.X != 10 || got.Position.Y != 10 {
		t.Errorf("undo restored position (%v,%v), want (10,10)", got.Position.X, got.Position.Y)
	}
}

func TestRestoreResetsHistory(t *testing.T) {
	d := newTestDocument()
	d.CreateComponent(models.TypeText, models.Position{}, nil, true)
	snap := d.Snapshot("saved")

	d.CreateComponent(models.TypeButton, models.Position{}, nil, true)
	d.Restore(snap)

	if d.State().Components.Len() != 1 {
		t.Error("restore did not replace state")
	}
	if d.History().CanUndo() || d.History().CanRedo() {
		t.Error("restore should reset history around the loaded snapshot")
	}
	if !d.IsDirty() {
		t.Error("restore should mark the document dirty")
	}
}

func TestDirtyTracking(t *testing.T) {
	d := newTestDocument()
	if d.IsDirty() {
		t.Error("fresh document is dirty")
	}
	d.CreateComponent(models.TypeText, models.Position{}, nil, true)
	if !d.IsDirty() {
		t.Error("mutation did not set dirty")
	}
	d.MarkClean()
	if d.IsDirty() {
		t.Error("MarkClean did not clear dirty")
	}
}

func TestStateReturnsCopy(t *testing.T) {
	d := newTestDocument()
	c := d.CreateComponent(models.TypeText, models.Position{}, nil, true)

	state := d.State()
	got, _ := state.Components.Get(c.ID)
	got.Props["text"] = "tampered"

	fresh, _ := d.State().Components.Get(c.ID)
	if fresh.Props["text"] == "tampered" {
		t.Error("State() leaked a live reference")
	}
}
