package storage

import (
	"log/slog"
	"strings"
	"sync"
)

// Namespace is the fixed application prefix applied to every stored key.
const Namespace = "pagecraft:"

// DefaultQuota is the assumed byte ceiling of the durable store.
const DefaultQuota = int64(10 * 1024 * 1024)

// Logical key prefixes within the namespace.
const (
	PrefixProjects   = "projects:"
	PrefixMetadata   = "metadata:"
	PrefixThumbnails = "thumbnails:"
	PrefixBackup     = "backup:"
	PrefixSettings   = "settings:"
	PrefixAutosave   = "autosave:"
	PrefixTemp       = "temp:"
	PrefixCache      = "cache:"
)

// Well-known logical keys.
const (
	KeyHeartbeat       = "crash:heartbeat"
	KeyRecoveryProject = "recovery:current-project"
)

// Manager is the namespaced KV store with quota tracking. Operations never
// propagate backend failures: writes and deletes report success as a bool,
// reads return ("", false) on any failure.
type Manager struct {
	mu      sync.Mutex
	backend Backend
	prefix  string
	quota   int64
	logger  *slog.Logger
}

// NewManager wraps a backend with the application namespace and quota.
// quota <= 0 selects the default.
func NewManager(backend Backend, quota int64) *Manager {
	if quota <= 0 {
		quota = DefaultQuota
	}
	return &Manager{
		backend: backend,
		prefix:  Namespace,
		quota:   quota,
		logger:  slog.Default().With("component", "storage"),
	}
}

// Quota returns the configured byte ceiling.
func (m *Manager) Quota() int64 { return m.quota }

func (m *Manager) full(key string) string { return m.prefix + key }

// SetItem stores value under the namespaced key. Returns false when the
// write would exceed the quota or the backend fails.
func (m *Manager) SetItem(key, value string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	used, err := m.usedLocked()
	if err != nil {
		m.logger.Warn("storage size check failed", "key", key, "error", err)
		return false
	}
	// Replacing an item frees its old bytes first.
	if old, ok, _ := m.backend.Read(m.full(key)); ok {
		used -= int64(len(m.full(key)) + len(old))
	}
	if used+int64(len(m.full(key))+len(value)) > m.quota {
		m.logger.Warn("storage quota exceeded", "key", key, "size", len(value))
		return false
	}
	if err := m.backend.Write(m.full(key), value); err != nil {
		m.logger.Warn("storage write failed", "key", key, "error", err)
		return false
	}
	return true
}

// GetItem returns the value for key, or ("", false) when absent or the
// backend fails.
func (m *Manager) GetItem(key string) (string, bool) {
	value, ok, err := m.backend.Read(m.full(key))
	if err != nil {
		m.logger.Warn("storage read failed", "key", key, "error", err)
		return "", false
	}
	return value, ok
}

// RemoveItem deletes key. Returns false only on backend failure.
func (m *Manager) RemoveItem(key string) bool {
	if err := m.backend.Delete(m.full(key)); err != nil {
		m.logger.Warn("storage delete failed", "key", key, "error", err)
		return false
	}
	return true
}

// Clear removes every key in the namespace.
func (m *Manager) Clear() bool {
	keys := m.GetAllKeys()
	ok := true
	for _, key := range keys {
		if !m.RemoveItem(key) {
			ok = false
		}
	}
	return ok
}

// SetItems stores a batch; returns false if any item failed.
func (m *Manager) SetItems(items map[string]string) bool {
	ok := true
	for key, value := range items {
		if !m.SetItem(key, value) {
			ok = false
		}
	}
	return ok
}

// GetItems reads a batch; missing or failed keys are simply absent from the
// result.
func (m *Manager) GetItems(keys []string) map[string]string {
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		if value, ok := m.GetItem(key); ok {
			out[key] = value
		}
	}
	return out
}

// RemoveItems deletes a batch; returns false if any delete failed.
func (m *Manager) RemoveItems(keys []string) bool {
	ok := true
	for _, key := range keys {
		if !m.RemoveItem(key) {
			ok = false
		}
	}
	return ok
}

// GetAllKeys returns every logical (prefix-stripped) key in the namespace.
func (m *Manager) GetAllKeys() []string {
	items, err := m.namespacedItems()
	if err != nil {
		m.logger.Warn("storage list failed", "error", err)
		return nil
	}
	keys := make([]string, 0, len(items))
	for _, item := range items {
		keys = append(keys, item.Key)
	}
	return keys
}

// GetKeysByPrefix returns logical keys sharing a logical prefix such as
// "projects:".
func (m *Manager) GetKeysByPrefix(prefix string) []string {
	var out []string
	for _, key := range m.GetAllKeys() {
		if strings.HasPrefix(key, prefix) {
			out = append(out, key)
		}
	}
	return out
}

// GetStorageSize returns the total bytes used by the namespace (keys plus
// values), or 0 on backend failure.
func (m *Manager) GetStorageSize() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	used, err := m.usedLocked()
	if err != nil {
		m.logger.Warn("storage size check failed", "error", err)
		return 0
	}
	return used
}

// GetAvailableSpace returns quota minus usage, floored at zero.
func (m *Manager) GetAvailableSpace() int64 {
	free := m.quota - m.GetStorageSize()
	if free < 0 {
		return 0
	}
	return free
}

// ValidateStorage round-trips a throwaway key to confirm the substrate is
// usable.
func (m *Manager) ValidateStorage() bool {
	const probe = "temp:storage-probe"
	const payload = "ok"
	if !m.SetItem(probe, payload) {
		return false
	}
	value, ok := m.GetItem(probe)
	m.RemoveItem(probe)
	return ok && value == payload
}

// namespacedItems lists backend items under the namespace with logical
// keys.
func (m *Manager) namespacedItems() ([]ItemStat, error) {
	all, err := m.backend.List()
	if err != nil {
		return nil, err
	}
	var items []ItemStat
	for _, item := range all {
		if !strings.HasPrefix(item.Key, m.prefix) {
			continue
		}
		item.Key = strings.TrimPrefix(item.Key, m.prefix)
		items = append(items, item)
	}
	return items, nil
}

func (m *Manager) usedLocked() (int64, error) {
	all, err := m.backend.List()
	if err != nil {
		return 0, err
	}
	var used int64
	for _, item := range all {
		if strings.HasPrefix(item.Key, m.prefix) {
			used += int64(len(item.Key)) + item.Size
		}
	}
	return used, nil
}
