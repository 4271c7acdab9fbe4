package project

import (
	"context"
	"strconv"
	"time"

	"github.com/pagecraft/backend/internal/models"
	"github.com/pagecraft/backend/internal/storage"
)

// HeartbeatInterval is how often the liveness marker is refreshed.
const HeartbeatInterval = 30 * time.Second

// CrashGap is the heartbeat age beyond which the previous run is presumed to
// have crashed rather than shut down cleanly.
const CrashGap = 5 * time.Minute

// RecoveryInfo is what a crashed session left behind.
type RecoveryInfo struct {
	CrashDetected bool             `json:"crashDetected"`
	ProjectID     string           `json:"projectId,omitempty"`
	Autosave      *models.Snapshot `json:"autosave,omitempty"`
	HeartbeatAge  time.Duration    `json:"-"`
}

// RecoveryMonitor maintains the crash heartbeat and the pointer to the
// project being edited, so the next startup can offer recovery.
type RecoveryMonitor struct {
	projects *Manager
	now      func() int64
}

// NewRecoveryMonitor builds a monitor over the project manager.
func NewRecoveryMonitor(projects *Manager) *RecoveryMonitor {
	return &RecoveryMonitor{projects: projects, now: projects.now}
}

// CheckForCrash inspects the heartbeat left by the previous run. A marker
// older than CrashGap means the run died without clearing it; the autosave
// for the recorded project, when present, comes back for the user to accept.
func (r *RecoveryMonitor) CheckForCrash() RecoveryInfo {
	raw, ok := r.projects.store.GetItem(storage.KeyHeartbeat)
	if !ok {
		return RecoveryInfo{}
	}
	last, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		r.projects.store.RemoveItem(storage.KeyHeartbeat)
		return RecoveryInfo{}
	}

	age := time.Duration(r.now()-last) * time.Millisecond
	if age <= CrashGap {
		return RecoveryInfo{HeartbeatAge: age}
	}

	info := RecoveryInfo{CrashDetected: true, HeartbeatAge: age}
	if id, ok := r.projects.store.GetItem(storage.KeyRecoveryProject); ok && id != "" {
		info.ProjectID = id
		info.Autosave = r.projects.LoadAutosave(id)
	}
	r.projects.logger.Warn("previous session crash detected",
		"heartbeatAge", age.String(), "projectId", info.ProjectID)
	return info
}

// Start begins refreshing the heartbeat until ctx is cancelled, then clears
// it so a clean shutdown is distinguishable from a crash.
func (r *RecoveryMonitor) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(HeartbeatInterval)
		defer ticker.Stop()
		r.beat()
		for {
			select {
			case <-ctx.Done():
				r.Shutdown()
				return
			case <-ticker.C:
				r.beat()
			}
		}
	}()
}

// SetCurrentProject records which project an autosave belongs to.
func (r *RecoveryMonitor) SetCurrentProject(id string) {
	if id == "" {
		r.projects.store.RemoveItem(storage.KeyRecoveryProject)
		return
	}
	r.projects.store.SetItem(storage.KeyRecoveryProject, id)
}

// Shutdown clears the crash markers after a clean exit.
func (r *RecoveryMonitor) Shutdown() {
	r.projects.store.RemoveItem(storage.KeyHeartbeat)
	r.projects.store.RemoveItem(storage.KeyRecoveryProject)
}

func (r *RecoveryMonitor) beat() {
	r.projects.store.SetItem(storage.KeyHeartbeat, strconv.FormatInt(r.now(), 10))
}
