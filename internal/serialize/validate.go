package serialize

import "encoding/json"

// ValidateJSON reports whether s is well-formed JSON.
func ValidateJSON(s string) bool {
	return json.Valid([]byte(s))
}

// ValidateProject performs a structural shape check on a serialized project
// without fully deserializing it: the envelope must parse and the payload
// must carry id, name and canvas fields.
func (s *Service) ValidateProject(raw string) bool {
	fields, ok := s.peekFields(raw)
	if !ok {
		return false
	}
	_, hasID := fields["id"]
	_, hasName := fields["name"]
	_, hasCanvas := fields["canvas"]
	return hasID && hasName && hasCanvas
}

// ValidateCanvas performs a structural shape check on a serialized canvas
// snapshot: the payload must carry components and dimensions fields.
func (s *Service) ValidateCanvas(raw string) bool {
	fields, ok := s.peekFields(raw)
	if !ok {
		return false
	}
	_, hasComponents := fields["components"]
	_, hasDimensions := fields["dimensions"]
	return hasComponents && hasDimensions
}

// peekFields decompresses raw if needed and returns the top-level keys of
// the envelope payload.
func (s *Service) peekFields(raw string) (map[string]json.RawMessage, bool) {
	plain, err := s.Decompress(raw)
	if err != nil {
		return nil, false
	}
	var env Envelope
	if err := json.Unmarshal([]byte(plain), &env); err != nil {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(env.Data, &fields); err != nil {
		return nil, false
	}
	return fields, true
}
