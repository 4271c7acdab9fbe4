// mock_backend.go - In-memory storage backend for testing
package testutil

import (
	"errors"
	"sync"

	"github.com/pagecraft/backend/internal/storage"
)

// ErrInjected is returned by the mock backend when failure injection is on.
var ErrInjected = errors.New("injected backend failure")

// MockBackend implements storage.Backend in memory. Individual operations
// can be made to fail for testing the never-propagate error semantics of the
// storage manager.
type MockBackend struct {
	mu    sync.RWMutex
	items map[string]mockItem
	clock int64

	FailReads  bool
	FailWrites bool
	FailDelete bool
	FailList   bool
}

type mockItem struct {
	value    string
	modified int64
}

// NewMockBackend creates an empty mock backend.
func NewMockBackend() *MockBackend {
	return &MockBackend{items: make(map[string]mockItem)}
}

// Read returns the value stored for key.
func (b *MockBackend) Read(key string) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.FailReads {
		return "", false, ErrInjected
	}
	item, ok := b.items[key]
	if !ok {
		return "", false, nil
	}
	return item.value, true, nil
}

// Write stores or replaces a value. Each write gets a strictly increasing
// modification stamp so age ordering is deterministic in tests.
func (b *MockBackend) Write(key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailWrites {
		return ErrInjected
	}
	b.clock++
	b.items[key] = mockItem{value: value, modified: b.clock}
	return nil
}

// Delete removes a key; missing keys are not an error.
func (b *MockBackend) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailDelete {
		return ErrInjected
	}
	delete(b.items, key)
	return nil
}

// List returns stats for every stored item.
func (b *MockBackend) List() ([]storage.ItemStat, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.FailList {
		return nil, ErrInjected
	}
	items := make([]storage.ItemStat, 0, len(b.items))
	for key, item := range b.items {
		items = append(items, storage.ItemStat{
			Key:      key,
			Size:     int64(len(item.value)),
			Modified: item.modified,
		})
	}
	return items, nil
}

// Close is a no-op.
func (b *MockBackend) Close() error { return nil }

// Len returns the number of stored items.
func (b *MockBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.items)
}

// SetModified overrides an item's modification stamp, for aging tests.
func (b *MockBackend) SetModified(key string, modified int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if item, ok := b.items[key]; ok {
		item.modified = modified
		b.items[key] = item
	}
}
