// Package project persists projects through the serialization service and
// the namespaced storage manager, and runs the autosave and crash-recovery
// machinery around them.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pagecraft/backend/internal/models"
	"github.com/pagecraft/backend/internal/serialize"
	"github.com/pagecraft/backend/internal/storage"
)

// ProjectVersion is the semantic version stamped on newly created projects.
const ProjectVersion = "1.0.0"

var (
	// ErrSaveFailed indicates the durable write did not happen; callers keep
	// their dirty state.
	ErrSaveFailed = errors.New("project save failed")
	// ErrNotFound indicates no stored project under the id.
	ErrNotFound = errors.New("project not found")
	// ErrUnrecoverable indicates stored data was corrupt beyond every
	// recovery strategy, including the backup.
	ErrUnrecoverable = errors.New("project data corrupted beyond recovery")
)

// Manager saves, loads and enumerates projects.
type Manager struct {
	store  *storage.Manager
	ser    *serialize.Service
	logger *slog.Logger
	now    func() int64
}

// NewManager creates a project manager over the given storage.
func NewManager(store *storage.Manager) *Manager {
	return &Manager{
		store:  store,
		ser:    serialize.NewService(),
		logger: slog.Default().With("component", "project"),
		now:    func() int64 { return time.Now().UnixMilli() },
	}
}

// NewProject builds an unsaved project around a canvas snapshot.
func (m *Manager) NewProject(name, description string, canvas *models.Snapshot) *models.Project {
	now := m.now()
	p := &models.Project{
		ID:          fmt.Sprintf("%d-%s", now, uuid.New().String()[:8]),
		Name:        name,
		Description: description,
		Version:     ProjectVersion,
		CreatedAt:   now,
		UpdatedAt:   now,
		Canvas:      canvas.Clone(),
		UIState:     models.UIState{Zoom: 1.0, ShowGrid: true},
		Metadata:    models.ProjectMetadata{Tags: models.NewStringSet()},
	}
	m.refreshMetadata(p)
	return p
}

// Save serializes the project with compression and integrity wrapping and
// writes both the payload and the listing metadata. A failed write returns
// ErrSaveFailed so the caller keeps its dirty flag; losing a save silently
// would hide data loss.
func (m *Manager) Save(p *models.Project) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("%w: missing project id", ErrSaveFailed)
	}
	p.UpdatedAt = m.now()
	m.refreshMetadata(p)

	payload, err := m.ser.SerializeWithIntegrity(p)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	if !m.store.SetItem(storage.PrefixProjects+p.ID, payload) {
		return fmt.Errorf("%w: storage write rejected", ErrSaveFailed)
	}

	info := models.ProjectInfo{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Version:        p.Version,
		UpdatedAt:      p.UpdatedAt,
		ComponentCount: p.Metadata.ComponentCount,
		SizeEstimate:   int64(len(payload)),
	}
	meta, err := json.Marshal(info)
	if err == nil && !m.store.SetItem(storage.PrefixMetadata+p.ID, string(meta)) {
		// Metadata is best effort; the project itself is saved.
		m.logger.Warn("project metadata write failed", "id", p.ID)
	}

	m.logger.Info("project saved", "id", p.ID, "bytes", len(payload))
	return nil
}

// Load reads a project back. Corrupt primary data falls through data
// recovery and then the backup copy before giving up.
func (m *Manager) Load(id string) (*models.Project, error) {
	payload, ok := m.store.GetItem(storage.PrefixProjects + id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	p, err := m.decode(payload)
	if err == nil {
		return p, nil
	}
	m.logger.Warn("project data corrupt, attempting recovery", "id", id, "error", err)

	if recovered := m.recoverPayload(payload); recovered != nil {
		return recovered, nil
	}
	if backup, berr := m.RestoreBackup(id); berr == nil {
		m.logger.Info("project restored from backup", "id", id)
		return backup, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnrecoverable, id)
}

// decode unwraps integrity + compression + envelope into a typed project.
func (m *Manager) decode(payload string) (*models.Project, error) {
	var env serialize.IntegrityEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err == nil && env.Checksum != "" {
		if serialize.Checksum(env.Data) != env.Checksum {
			return nil, fmt.Errorf("integrity checksum mismatch")
		}
		return m.ser.DeserializeProject(env.Data)
	}
	// Legacy unwrapped payload.
	return m.ser.DeserializeProject(payload)
}

// recoverPayload runs best-effort data recovery over a corrupt payload and
// re-shapes the result into a project when possible.
func (m *Manager) recoverPayload(payload string) *models.Project {
	value := m.ser.AttemptDataRecovery(payload)
	if value == nil {
		return nil
	}
	// Round-trip through JSON to map the generic tree onto the struct.
	raw, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	var p models.Project
	if err := json.Unmarshal(raw, &p); err != nil || p.ID == "" {
		return nil
	}
	return &p
}

// Delete removes a project and all data stored alongside it.
func (m *Manager) Delete(id string) bool {
	keys := []string{
		storage.PrefixProjects + id,
		storage.PrefixMetadata + id,
		storage.PrefixThumbnails + id,
		storage.PrefixBackup + id,
		storage.PrefixAutosave + id,
	}
	return m.store.RemoveItems(keys)
}

// List enumerates projects by metadata prefix scan, newest first. Items
// with unparsable metadata are skipped rather than failing the listing.
func (m *Manager) List() []models.ProjectInfo {
	keys := m.store.GetKeysByPrefix(storage.PrefixMetadata)
	out := make([]models.ProjectInfo, 0, len(keys))
	for _, key := range keys {
		raw, ok := m.store.GetItem(key)
		if !ok {
			continue
		}
		var info models.ProjectInfo
		if err := json.Unmarshal([]byte(raw), &info); err != nil {
			m.logger.Warn("skipping unreadable project metadata", "key", key)
			continue
		}
		if info.ID == "" {
			info.ID = strings.TrimPrefix(key, storage.PrefixMetadata)
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt > out[j].UpdatedAt })
	return out
}

// Backup copies the current stored payload under the backup key.
func (m *Manager) Backup(id string) bool {
	payload, ok := m.store.GetItem(storage.PrefixProjects + id)
	if !ok {
		return false
	}
	return m.store.SetItem(storage.PrefixBackup+id, payload)
}

// RestoreBackup loads the backup copy of a project.
func (m *Manager) RestoreBackup(id string) (*models.Project, error) {
	payload, ok := m.store.GetItem(storage.PrefixBackup + id)
	if !ok {
		return nil, fmt.Errorf("%w: no backup for %s", ErrNotFound, id)
	}
	p, err := m.decode(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: backup for %s", ErrUnrecoverable, id)
	}
	return p, nil
}

// SaveAutosave writes an autosave snapshot for a project id. Autosaves are
// compressed but not integrity-wrapped; they are cleanup-eligible.
func (m *Manager) SaveAutosave(id string, canvas *models.Snapshot) bool {
	payload, err := m.ser.SerializeCanvas(canvas)
	if err != nil {
		m.logger.Warn("autosave serialization failed", "id", id, "error", err)
		return false
	}
	return m.store.SetItem(storage.PrefixAutosave+id, payload)
}

// LoadAutosave reads an autosave snapshot back, or nil when absent or
// unreadable.
func (m *Manager) LoadAutosave(id string) *models.Snapshot {
	payload, ok := m.store.GetItem(storage.PrefixAutosave + id)
	if !ok {
		return nil
	}
	snap, err := m.ser.DeserializeCanvas(payload)
	if err != nil {
		m.logger.Warn("autosave unreadable", "id", id, "error", err)
		return nil
	}
	return snap
}

// refreshMetadata recomputes the derived metadata counters.
func (m *Manager) refreshMetadata(p *models.Project) {
	if p.Canvas != nil {
		p.Metadata.ComponentCount = p.Canvas.Components.Len()
	}
	p.Metadata.SizeEstimate = int64(m.ser.EstimateSize(p.Canvas))
	if p.Metadata.Tags == nil {
		p.Metadata.Tags = models.NewStringSet()
	}
}
