package serialize

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
)

// IntegrityEnvelope wraps a serialized string with a checksum so corruption
// can be detected independently of JSON validity.
type IntegrityEnvelope struct {
	Version   string            `json:"version"`
	Timestamp int64             `json:"timestamp"`
	Checksum  string            `json:"checksum"`
	Data      string            `json:"data"`
	Metadata  IntegrityMetadata `json:"metadata"`
}

// IntegrityMetadata records payload bookkeeping.
type IntegrityMetadata struct {
	OriginalSize    int  `json:"originalSize"`
	CompressionUsed bool `json:"compressionUsed"`
}

// IntegrityResult is the outcome of DeserializeWithIntegrity. It is always
// returned, never panicked: corruption is a state, not an exception.
type IntegrityResult struct {
	Success    bool   `json:"success"`
	Data       any    `json:"data"`
	Error      string `json:"error,omitempty"`
	Corruption bool   `json:"corruption,omitempty"`
}

// Checksum computes the integrity checksum of a string. FNV-1a: fast,
// deterministic and sensitive to single-character changes. Not
// cryptographic, and does not need to be.
func Checksum(data string) string {
	h := fnv.New64a()
	h.Write([]byte(data))
	return fmt.Sprintf("%016x", h.Sum64())
}

// SerializeWithIntegrity serializes value, compresses the result above the
// threshold and wraps it with a checksum envelope.
func (s *Service) SerializeWithIntegrity(value any) (string, error) {
	raw, err := s.Serialize(value)
	if err != nil {
		return "", err
	}
	payload := s.Compress(raw)
	env := IntegrityEnvelope{
		Version:   s.version,
		Timestamp: s.now(),
		Checksum:  Checksum(payload),
		Data:      payload,
		Metadata: IntegrityMetadata{
			OriginalSize:    len(raw),
			CompressionUsed: payload != raw,
		},
	}
	out, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("serializing integrity envelope: %w", err)
	}
	return string(out), nil
}

// DeserializeWithIntegrity verifies and unwraps an integrity envelope. A
// checksum mismatch yields {Success:false, Corruption:true}. Legacy data
// without the envelope falls back to plain deserialization.
func (s *Service) DeserializeWithIntegrity(raw string) IntegrityResult {
	var env IntegrityEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil || env.Checksum == "" {
		// Not integrity-wrapped; treat as legacy plain data. Input that is
		// neither a valid envelope nor valid legacy JSON counts as corrupt.
		value, derr := s.Deserialize(raw)
		if derr != nil {
			return IntegrityResult{Success: false, Corruption: true, Error: derr.Error()}
		}
		return IntegrityResult{Success: true, Data: value}
	}

	if Checksum(env.Data) != env.Checksum {
		return IntegrityResult{
			Success:    false,
			Corruption: true,
			Error:      "checksum mismatch: data is corrupted",
		}
	}

	plain, err := s.Decompress(env.Data)
	if err != nil {
		return IntegrityResult{Success: false, Corruption: true, Error: err.Error()}
	}
	value, err := s.Deserialize(plain)
	if err != nil {
		return IntegrityResult{Success: false, Error: err.Error()}
	}
	return IntegrityResult{Success: true, Data: value}
}
