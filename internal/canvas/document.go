// Package canvas owns the live canvas state and its mutation operations.
//
// A Document is the single writer of its state: the history engine reads it
// to snapshot and writes it wholesale on restore, but never mutates fields.
// Every mutating operation is atomic under the document mutex, so two
// operations can never interleave their read-modify-write on the component
// store.
package canvas

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pagecraft/backend/internal/component"
	"github.com/pagecraft/backend/internal/history"
	"github.com/pagecraft/backend/internal/models"
)

// State is the aggregate canvas state.
type State struct {
	Components  *models.ComponentStore `json:"components"`
	SelectedIDs []string               `json:"selectedComponentIds"`
	FocusedID   string                 `json:"focusedComponentId,omitempty"`
	Dimensions  models.CanvasSize      `json:"dimensions"`
	Viewport    models.Viewport        `json:"viewport"`
	Zoom        float64                `json:"zoom"`
	Grid        models.Grid            `json:"grid"`
	Boundaries  models.Boundaries      `json:"boundaries"`
}

// Options configure a new document.
type Options struct {
	Dimensions  models.CanvasSize
	Boundaries  models.Boundaries
	HistorySize int
	// Rules overrides the factory's validation rule set when non-nil.
	Rules *component.RuleSet
}

// DefaultOptions returns a 1200x800 canvas with matching boundaries.
func DefaultOptions() Options {
	return Options{
		Dimensions: models.CanvasSize{Width: 1200, Height: 800},
		Boundaries: models.Boundaries{MinX: 0, MinY: 0, MaxX: 1200, MaxY: 800},
	}
}

// Document is a live canvas plus its history engine.
type Document struct {
	mu      sync.Mutex
	state   State
	factory *component.Factory
	history *history.Engine
	dirty   bool
	now     func() int64
}

// NewDocument creates an empty canvas and seeds history with the initial
// snapshot.
func NewDocument(opts Options) *Document {
	if opts.Dimensions.Width == 0 || opts.Dimensions.Height == 0 {
		opts.Dimensions = DefaultOptions().Dimensions
	}
	if opts.Boundaries == (models.Boundaries{}) {
		opts.Boundaries = models.Boundaries{
			MinX: 0, MinY: 0,
			MaxX: opts.Dimensions.Width, MaxY: opts.Dimensions.Height,
		}
	}

	d := &Document{
		state: State{
			Components: models.NewComponentStore(),
			Dimensions: opts.Dimensions,
			Viewport: models.Viewport{
				Width: opts.Dimensions.Width, Height: opts.Dimensions.Height,
			},
			Zoom:       1.0,
			Grid:       models.Grid{Enabled: true, Size: 10, SnapToGrid: false, Visible: true},
			Boundaries: opts.Boundaries,
		},
		factory: component.NewFactory(),
		now:     func() int64 { return time.Now().UnixMilli() },
	}
	if opts.Rules != nil {
		d.factory.SetRules(opts.Rules)
	}
	d.history = history.NewEngine(d.snapshotLocked(""), opts.HistorySize)
	return d
}

// Factory returns the component factory used by this document.
func (d *Document) Factory() *component.Factory {
	return d.factory
}

// History returns the document's history engine.
func (d *Document) History() *history.Engine {
	return d.history
}

// State returns a deep copy of the canvas state. Callers never receive a
// live reference.
func (d *Document) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.copyStateLocked()
}

// Snapshot returns a deep, immutable snapshot of the current state.
func (d *Document) Snapshot(description string) *models.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked(description)
}

// IsDirty reports whether the document changed since the last MarkClean.
func (d *Document) IsDirty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dirty
}

// MarkClean clears the dirty flag, typically after a successful save.
func (d *Document) MarkClean() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dirty = false
}

// CreateComponent builds a new component of the given type via the factory,
// assigns the next zIndex when not overridden, and adds it to the canvas.
// Returns the created component (a copy).
func (d *Document) CreateComponent(t models.ComponentType, pos models.Position, opts *component.CreateOptions, commit bool) *models.Component {
	d.mu.Lock()
	c := d.factory.Create(t, pos, opts)
	if opts == nil || opts.ZIndex == nil {
		c.ZIndex = d.state.Components.MaxZIndex() + 1
	}
	d.addLocked(c)
	out := c.Clone()
	d.mu.Unlock()

	if commit {
		d.commit("add " + string(t))
	}
	return out
}

// AddComponent inserts an existing component record, selects and focuses
// it.
func (d *Document) AddComponent(c *models.Component, commit bool) {
	if c == nil {
		return
	}
	d.mu.Lock()
	d.addLocked(c.Clone())
	d.mu.Unlock()

	if commit {
		d.commit("add component")
	}
}

func (d *Document) addLocked(c *models.Component) {
	d.state.Components.Set(c)
	d.state.SelectedIDs = []string{c.ID}
	d.state.FocusedID = c.ID
	d.dirty = true
}

// RemoveComponent deletes a component. Missing ids are silent no-ops.
func (d *Document) RemoveComponent(id string, commit bool) {
	d.mu.Lock()
	if !d.state.Components.Delete(id) {
		d.mu.Unlock()
		return
	}
	d.removeFromSelectionLocked(id)
	d.dirty = true
	d.mu.Unlock()

	if commit {
		d.commit("remove component")
	}
}

// UpdateComponent merges a partial property update into a component and
// bumps its version. Missing ids are silent no-ops. The advisory validation
// result for the updated component is returned; the update is applied
// regardless.
func (d *Document) UpdateComponent(id string, props map[string]any, commit bool) *component.ValidationResult {
	d.mu.Lock()
	c, ok := d.state.Components.Get(id)
	if !ok {
		d.mu.Unlock()
		return nil
	}
	if c.Props == nil {
		c.Props = make(map[string]any)
	}
	for k, v := range props {
		c.Props[k] = v
	}
	c.Touch(d.now())
	d.dirty = true
	res := d.factory.Validate(c)
	d.mu.Unlock()

	if commit {
		d.commit("update component")
	}
	return &res
}

// MoveComponent moves a component, clamping the position so its bounding
// box stays fully inside the canvas boundaries.
func (d *Document) MoveComponent(id string, pos models.Position, commit bool) {
	d.mu.Lock()
	c, ok := d.state.Components.Get(id)
	if !ok || !c.Constraints.Movable {
		d.mu.Unlock()
		return
	}
	b := d.state.Boundaries
	c.Position.X = clamp(pos.X, b.MinX, b.MaxX-c.Dimensions.Width)
	c.Position.Y = clamp(pos.Y, b.MinY, b.MaxY-c.Dimensions.Height)
	c.Touch(d.now())
	d.dirty = true
	d.mu.Unlock()

	if commit {
		d.commit("move component")
	}
}

// ResizeComponent resizes a component, clamping width and height to the
// component's own limits or the package defaults.
func (d *Document) ResizeComponent(id string, dims models.Dimensions, commit bool) {
	d.mu.Lock()
	c, ok := d.state.Components.Get(id)
	if !ok || !c.Constraints.Resizable {
		d.mu.Unlock()
		return
	}
	minW, minH := component.DefaultMinWidth, component.DefaultMinHeight
	maxW, maxH := component.DefaultMaxWidth, component.DefaultMaxHeight
	if c.Dimensions.MinWidth != nil {
		minW = *c.Dimensions.MinWidth
	}
	if c.Dimensions.MinHeight != nil {
		minH = *c.Dimensions.MinHeight
	}
	if c.Dimensions.MaxWidth != nil {
		maxW = *c.Dimensions.MaxWidth
	}
	if c.Dimensions.MaxHeight != nil {
		maxH = *c.Dimensions.MaxHeight
	}
	c.Dimensions.Width = clamp(dims.Width, minW, maxW)
	c.Dimensions.Height = clamp(dims.Height, minH, maxH)
	c.Touch(d.now())
	d.dirty = true
	d.mu.Unlock()

	if commit {
		d.commit("resize component")
	}
}

// ReorderComponent sets a component's zIndex directly. Ties are allowed; no
// collision resolution happens.
func (d *Document) ReorderComponent(id string, zIndex int, commit bool) {
	d.mu.Lock()
	c, ok := d.state.Components.Get(id)
	if !ok {
		d.mu.Unlock()
		return
	}
	c.ZIndex = zIndex
	c.Touch(d.now())
	d.dirty = true
	d.mu.Unlock()

	if commit {
		d.commit("reorder component")
	}
}

// DuplicateComponent clones a component through the factory and inserts the
// clone. The original's selection state is left untouched; the clone is not
// auto-selected.
func (d *Document) DuplicateComponent(id string, commit bool) *models.Component {
	d.mu.Lock()
	src, ok := d.state.Components.Get(id)
	if !ok || !src.Constraints.Copyable {
		d.mu.Unlock()
		return nil
	}
	dup := d.factory.Clone(src)
	d.state.Components.Set(dup)
	d.dirty = true
	out := dup.Clone()
	d.mu.Unlock()

	if commit {
		d.commit("duplicate component")
	}
	return out
}

// SelectComponent selects a component. With multiSelect the id is appended
// to the selection (no duplicates); otherwise the selection is replaced.
// Focus moves to the id either way. Missing ids are silent no-ops.
func (d *Document) SelectComponent(id string, multiSelect bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.state.Components.Has(id) {
		return
	}
	if multiSelect {
		for _, s := range d.state.SelectedIDs {
			if s == id {
				d.state.FocusedID = id
				return
			}
		}
		d.state.SelectedIDs = append(d.state.SelectedIDs, id)
	} else {
		d.state.SelectedIDs = []string{id}
	}
	d.state.FocusedID = id
}

// DeselectComponent removes an id from the selection. If it was focused,
// focus shifts to the new first selected element or clears.
func (d *Document) DeselectComponent(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.removeFromSelectionLocked(id)
}

// ClearSelection empties the selection and clears focus.
func (d *Document) ClearSelection() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.SelectedIDs = nil
	d.state.FocusedID = ""
}

// SetZoom sets the canvas zoom, clamped to the allowed range.
func (d *Document) SetZoom(z float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Zoom = models.ClampZoom(z)
}

// SetViewport replaces the viewport.
func (d *Document) SetViewport(v models.Viewport) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Viewport = v
}

// SetGrid replaces the grid settings.
func (d *Document) SetGrid(g models.Grid) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Grid = g
}

// Undo steps history back one snapshot and restores the live state from it.
// Returns false when there is nothing to undo.
func (d *Document) Undo() bool {
	snap, ok := d.history.Undo()
	if !ok {
		return false
	}
	d.restore(snap)
	return true
}

// Redo steps history forward one snapshot and restores the live state.
func (d *Document) Redo() bool {
	snap, ok := d.history.Redo()
	if !ok {
		return false
	}
	d.restore(snap)
	return true
}

// Restore replaces the live state wholesale from a snapshot (deep copy) and
// resets history around it. Used when loading a project into a document.
func (d *Document) Restore(snap *models.Snapshot) {
	if snap == nil {
		return
	}
	d.restore(snap.Clone())
	d.history = history.NewEngine(d.Snapshot(""), d.history.MaxSize())
}

// restore replaces live state from an already-cloned snapshot.
func (d *Document) restore(snap *models.Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Components = snap.Components.Clone()
	d.state.SelectedIDs = append([]string(nil), snap.SelectedIDs...)
	if !containsString(d.state.SelectedIDs, d.state.FocusedID) {
		d.state.FocusedID = ""
		if len(d.state.SelectedIDs) > 0 {
			d.state.FocusedID = d.state.SelectedIDs[0]
		}
	}
	d.state.Dimensions = snap.Dimensions
	d.state.Viewport = snap.Viewport
	d.state.Zoom = snap.Zoom
	d.dirty = true
}

// commit records the current state as the new present snapshot.
func (d *Document) commit(description string) {
	d.mu.Lock()
	snap := d.snapshotLocked(description)
	d.mu.Unlock()
	d.history.Commit(snap)
}

func (d *Document) snapshotLocked(description string) *models.Snapshot {
	return &models.Snapshot{
		ID:          uuid.New().String(),
		Timestamp:   d.now(),
		Components:  d.state.Components.Clone(),
		SelectedIDs: append([]string(nil), d.state.SelectedIDs...),
		Dimensions:  d.state.Dimensions,
		Viewport:    d.state.Viewport,
		Zoom:        d.state.Zoom,
		Description: description,
	}
}

func (d *Document) copyStateLocked() State {
	return State{
		Components:  d.state.Components.Clone(),
		SelectedIDs: append([]string(nil), d.state.SelectedIDs...),
		FocusedID:   d.state.FocusedID,
		Dimensions:  d.state.Dimensions,
		Viewport:    d.state.Viewport,
		Zoom:        d.state.Zoom,
		Grid:        d.state.Grid,
		Boundaries:  d.state.Boundaries,
	}
}

func (d *Document) removeFromSelectionLocked(id string) {
	for i, s := range d.state.SelectedIDs {
		if s == id {
			d.state.SelectedIDs = append(d.state.SelectedIDs[:i], d.state.SelectedIDs[i+1:]...)
			break
		}
	}
	if d.state.FocusedID == id {
		d.state.FocusedID = ""
		if len(d.state.SelectedIDs) > 0 {
			d.state.FocusedID = d.state.SelectedIDs[0]
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		// Component larger than the canvas; pin to the near edge.
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func containsString(list []string, v string) bool {
	if v == "" {
		return false
	}
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
