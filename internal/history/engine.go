// Package history maintains the undo/redo timeline of canvas snapshots.
//
// The engine keeps a single linear timeline: a bounded past stack, the
// current present snapshot and a future stack holding undone states. The
// commit discipline is capture-after: callers mutate the live document
// first, then commit a snapshot of the new state. Committing pushes the old
// present onto past and discards the future branch.
package history

import (
	"sync"

	"github.com/pagecraft/backend/internal/models"
)

// DefaultMaxSize is the default retained depth of the past stack.
const DefaultMaxSize = 50

// Engine is the undo/redo engine. All methods are safe for concurrent use;
// snapshots returned to callers are deep copies and never alias internal
// state.
type Engine struct {
	mu      sync.Mutex
	past    []*models.Snapshot
	present *models.Snapshot
	future  []*models.Snapshot
	maxSize int
}

// NewEngine creates an engine whose present is a deep copy of initial.
// maxSize is clamped to at least 1; zero or negative selects the default.
func NewEngine(initial *models.Snapshot, maxSize int) *Engine {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Engine{
		present: initial.Clone(),
		maxSize: maxSize,
	}
}

// Commit records next as the new present. The previous present moves onto
// the past stack (evicting the oldest entry beyond the size bound) and any
// redo branch is discarded.
func (e *Engine) Commit(next *models.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.past = append(e.past, e.present)
	if len(e.past) > e.maxSize {
		e.past = e.past[len(e.past)-e.maxSize:]
	}
	e.present = next.Clone()
	e.future = nil
}

// Undo steps the timeline back one snapshot and returns a deep copy of the
// new present for the caller to restore from. Returns (nil, false) when the
// past is empty.
func (e *Engine) Undo() (*models.Snapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.past) == 0 {
		return nil, false
	}
	popped := e.past[len(e.past)-1]
	e.past = e.past[:len(e.past)-1]
	e.future = append([]*models.Snapshot{e.present}, e.future...)
	e.present = popped
	return e.present.Clone(), true
}

// Redo steps the timeline forward one snapshot, symmetric to Undo. Returns
// (nil, false) when the future is empty.
func (e *Engine) Redo() (*models.Snapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.future) == 0 {
		return nil, false
	}
	next := e.future[0]
	e.future = e.future[1:]
	e.past = append(e.past, e.present)
	e.present = next
	return e.present.Clone(), true
}

// Clear drops both stacks, keeping the present untouched.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.past = nil
	e.future = nil
}

// SetMaxSize updates the retained depth, clamping n to at least 1, and
// immediately trims the past stack from the oldest end.
func (e *Engine) SetMaxSize(n int) {
	if n < 1 {
		n = 1
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.maxSize = n
	if len(e.past) > n {
		e.past = e.past[len(e.past)-n:]
	}
}

// MaxSize returns the current retained depth.
func (e *Engine) MaxSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.maxSize
}

// CanUndo reports whether the past stack is non-empty.
func (e *Engine) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.past) > 0
}

// CanRedo reports whether the future stack is non-empty.
func (e *Engine) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.future) > 0
}

// Present returns a deep copy of the present snapshot.
func (e *Engine) Present() *models.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.present.Clone()
}

// Info returns the read-only history state for the UI.
func (e *Engine) Info() models.HistoryInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return models.HistoryInfo{
		CanUndo:        len(e.past) > 0,
		CanRedo:        len(e.future) > 0,
		PastLength:     len(e.past),
		FutureLength:   len(e.future),
		MaxHistorySize: e.maxSize,
	}
}
