package storage

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileBackend stores one file per key under a data directory. Keys are
// base64url-encoded into file names so any key round-trips safely.
type FileBackend struct {
	mu  sync.RWMutex
	dir string
}

// NewFileBackend creates the data directory if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

const fileSuffix = ".kv"

func (b *FileBackend) path(key string) string {
	name := base64.URLEncoding.EncodeToString([]byte(key))
	return filepath.Join(b.dir, name+fileSuffix)
}

// Read returns the value stored for key.
func (b *FileBackend) Read(key string) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, err := os.ReadFile(b.path(key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	return string(data), true, nil
}

// Write stores value under key, replacing any previous value.
func (b *FileBackend) Write(key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	path := b.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("committing %s: %w", key, err)
	}
	return nil
}

// Delete removes key; missing keys are not an error.
func (b *FileBackend) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.Remove(b.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// List returns stats for every stored item.
func (b *FileBackend) List() ([]ItemStat, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, fmt.Errorf("listing storage directory: %w", err)
	}

	var items []ItemStat
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		raw, err := base64.URLEncoding.DecodeString(strings.TrimSuffix(name, fileSuffix))
		if err != nil {
			continue // foreign file, not ours
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		items = append(items, ItemStat{
			Key:      string(raw),
			Size:     info.Size(),
			Modified: info.ModTime().UnixMilli(),
		})
	}
	return items, nil
}

// Close is a no-op for the file backend.
func (b *FileBackend) Close() error { return nil }
