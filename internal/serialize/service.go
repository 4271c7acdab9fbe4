// Package serialize converts in-memory editor state to and from its durable
// string representation.
//
// Everything persisted goes through a JSON envelope {version, timestamp,
// data}. Ordered maps and sets use a tagged encoding so the round trip
// reconstructs real containers instead of plain objects:
//
//	{"__type":"Map","__data":[[key,value], ...]}
//	{"__type":"Set","__data":[value, ...]}
//
// Large payloads are compressed (gzip, base64, "COMPRESSED:" prefix) and
// can be wrapped with a checksum envelope for corruption detection.
package serialize

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/pagecraft/backend/internal/models"
)

// FormatVersion is the current durable format version. Comparison on load
// is exact string equality; a mismatch runs the migration step.
const FormatVersion = "1.0.0"

// CircularMarker replaces values that would otherwise serialize forever.
const CircularMarker = "[Circular Reference]"

// ErrDeserialization wraps any failure to parse durable data.
var ErrDeserialization = errors.New("data deserialization failed")

// Envelope is the outer durable structure.
type Envelope struct {
	Version   string          `json:"version"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Service performs serialization with a fixed format version.
type Service struct {
	version              string
	compressionThreshold int
	now                  func() int64
}

// NewService creates a service at the current format version.
func NewService() *Service {
	return &Service{
		version:              FormatVersion,
		compressionThreshold: CompressionThreshold,
		now:                  func() int64 { return time.Now().UnixMilli() },
	}
}

// Serialize wraps value in the versioned envelope and encodes it as JSON.
// Tagged containers keep their order; circular references are replaced with
// the marker string rather than failing.
func (s *Service) Serialize(value any) (string, error) {
	encoded := encodeValue(value, make(map[uintptr]bool))
	data, err := json.Marshal(encoded)
	if err != nil {
		return "", fmt.Errorf("serializing data: %w", err)
	}
	env := Envelope{Version: s.version, Timestamp: s.now(), Data: data}
	out, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("serializing envelope: %w", err)
	}
	return string(out), nil
}

// Deserialize reverses Serialize, reconstructing Map and Set containers
// from their tagged representation. A version mismatch runs the migration
// step before decoding.
func (s *Service) Deserialize(raw string) (any, error) {
	env, err := s.parseEnvelope(raw)
	if err != nil {
		return nil, err
	}

	var tree any
	if err := json.Unmarshal(env.Data, &tree); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	return decodeValue(tree), nil
}

func (s *Service) parseEnvelope(raw string) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	if env.Version != s.version {
		migrated, err := s.migrate(&env)
		if err != nil {
			return nil, err
		}
		env = *migrated
	}
	return &env, nil
}

// migrate rewrites the envelope's version tag. True schema migrations are
// out of scope; data passes through unchanged.
func (s *Service) migrate(env *Envelope) (*Envelope, error) {
	out := *env
	out.Version = s.version
	return &out, nil
}

// SerializeCanvas serializes a canvas snapshot, compressing above the
// threshold.
func (s *Service) SerializeCanvas(snap *models.Snapshot) (string, error) {
	if snap == nil {
		return "", fmt.Errorf("serializing canvas: snapshot is nil")
	}
	raw, err := s.Serialize(snap)
	if err != nil {
		return "", err
	}
	return s.Compress(raw), nil
}

// DeserializeCanvas reverses SerializeCanvas into a typed snapshot with a
// properly ordered component store.
func (s *Service) DeserializeCanvas(raw string) (*models.Snapshot, error) {
	plain, err := s.Decompress(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	env, err := s.parseEnvelope(plain)
	if err != nil {
		return nil, err
	}
	var snap models.Snapshot
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	if snap.Components == nil {
		snap.Components = models.NewComponentStore()
	}
	return &snap, nil
}

// SerializeProject serializes a full project, compressing above the
// threshold.
func (s *Service) SerializeProject(p *models.Project) (string, error) {
	if p == nil {
		return "", fmt.Errorf("serializing project: project is nil")
	}
	raw, err := s.Serialize(p)
	if err != nil {
		return "", err
	}
	return s.Compress(raw), nil
}

// DeserializeProject reverses SerializeProject.
func (s *Service) DeserializeProject(raw string) (*models.Project, error) {
	plain, err := s.Decompress(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	env, err := s.parseEnvelope(plain)
	if err != nil {
		return nil, err
	}
	var p models.Project
	if err := json.Unmarshal(env.Data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	if p.Canvas != nil && p.Canvas.Components == nil {
		p.Canvas.Components = models.NewComponentStore()
	}
	return &p, nil
}

// EstimateSize returns the serialized byte size of a value, or 0 when it
// cannot be serialized.
func (s *Service) EstimateSize(value any) int {
	raw, err := s.Serialize(value)
	if err != nil {
		return 0
	}
	return len(raw)
}

// CompressionRatio returns compressed/original, or 0 when original is
// empty.
func CompressionRatio(original, compressed string) float64 {
	if len(original) == 0 {
		return 0
	}
	return float64(len(compressed)) / float64(len(original))
}

// encodeValue walks a value producing a JSON-ready tree. Pointer, map and
// slice revisits are replaced with the circular marker. Struct types
// (Component, Snapshot, Project, tagged containers) are passed through to
// encoding/json, which invokes their own marshalers; such types cannot form
// cycles in this data model.
func encodeValue(v any, seen map[uintptr]bool) any {
	switch t := v.(type) {
	case nil, bool, string, float64, float32, int, int64, int32, uint, uint64, json.Number:
		return t
	case map[string]any:
		ptr := reflect.ValueOf(t).Pointer()
		if seen[ptr] {
			return CircularMarker
		}
		seen[ptr] = true
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = encodeValue(e, seen)
		}
		delete(seen, ptr)
		return out
	case []any:
		ptr := reflect.ValueOf(t).Pointer()
		if len(t) > 0 && seen[ptr] {
			return CircularMarker
		}
		seen[ptr] = true
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = encodeValue(e, seen)
		}
		delete(seen, ptr)
		return out
	default:
		return t
	}
}

// decodeValue reverses encodeValue on a generic JSON tree, turning tagged
// nodes back into Map and Set containers recursively.
func decodeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if tag, ok := t["__type"].(string); ok {
			if data, has := t["__data"]; has {
				switch tag {
				case "Map":
					return decodeTaggedMap(data)
				case "Set":
					return decodeTaggedSet(data)
				}
			}
		}
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = decodeValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = decodeValue(e)
		}
		return out
	default:
		return v
	}
}

func decodeTaggedMap(data any) any {
	pairs, ok := data.([]any)
	if !ok {
		return data
	}
	m := NewMap()
	for _, p := range pairs {
		pair, ok := p.([]any)
		if !ok || len(pair) != 2 {
			continue
		}
		key, ok := pair[0].(string)
		if !ok {
			key = fmt.Sprintf("%v", pair[0])
		}
		m.Set(key, decodeValue(pair[1]))
	}
	return m
}

func decodeTaggedSet(data any) any {
	values, ok := data.([]any)
	if !ok {
		return data
	}
	s := NewSet()
	for _, v := range values {
		s.Add(decodeValue(v))
	}
	return s
}
