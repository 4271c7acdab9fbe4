package project

import (
	"context"
	"sync"
	"time"

	"github.com/pagecraft/backend/internal/models"
)

// DefaultAutosaveInterval is how often the autosave loop fires.
const DefaultAutosaveInterval = 30 * time.Second

// SnapshotSource yields the current canvas snapshot for autosaving, plus
// whether there are unsaved changes worth writing.
type SnapshotSource func() (projectID string, snap *models.Snapshot, dirty bool)

// Autosaver periodically persists the active canvas. Starting it again
// replaces the previous loop; there is at most one running per Autosaver.
type Autosaver struct {
	mu       sync.Mutex
	projects *Manager
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewAutosaver builds an autosaver over the project manager. interval <= 0
// selects the default.
func NewAutosaver(projects *Manager, interval time.Duration) *Autosaver {
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	return &Autosaver{projects: projects, interval: interval}
}

// Start launches the autosave loop, cancelling any previous one first.
func (a *Autosaver) Start(ctx context.Context, source SnapshotSource) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopLocked()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	a.cancel = cancel
	a.done = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(a.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.tick(source)
			}
		}
	}()
}

// Stop cancels the running loop and waits for it to exit. Safe to call when
// nothing is running.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
}

func (a *Autosaver) stopLocked() {
	if a.cancel == nil {
		return
	}
	a.cancel()
	<-a.done
	a.cancel = nil
	a.done = nil
}

func (a *Autosaver) tick(source SnapshotSource) {
	id, snap, dirty := source()
	if !dirty || id == "" || snap == nil {
		return
	}
	if a.projects.SaveAutosave(id, snap) {
		a.projects.logger.Debug("autosave written", "id", id)
	}
}
