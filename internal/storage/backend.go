// Package storage provides a namespaced, size-constrained key-value store
// for durable editor data.
//
// The substrate is explicitly treated as unreliable: every Manager
// operation converts backend failures into boolean or nil results so
// callers can tolerate storage loss without crashing.
package storage

// ItemStat describes one stored item for capacity accounting.
type ItemStat struct {
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	Modified int64  `json:"modified"` // epoch ms
}

// Backend is a flat durable string store. Keys arrive already namespaced.
type Backend interface {
	// Read returns the value and whether the key exists.
	Read(key string) (string, bool, error)
	// Write stores or replaces a value.
	Write(key, value string) error
	// Delete removes a key; deleting a missing key is not an error.
	Delete(key string) error
	// List returns stats for every stored item.
	List() ([]ItemStat, error)
	// Close releases backend resources.
	Close() error
}
