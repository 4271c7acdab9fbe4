package serialize

import (
	"encoding/json"
	"regexp"
	"strings"
)

// AttemptDataRecovery tries to salvage a value from corrupted serialized
// input. Strategies run in order: plain parse, extraction of the first
// well-formed JSON object substring, then syntactic repair followed by a
// final parse. Returns nil only when every strategy fails; never panics.
func (s *Service) AttemptDataRecovery(corrupted string) any {
	if corrupted == "" {
		return nil
	}

	// Strategy 1: the data may be valid after all (or valid legacy data).
	if v, err := s.Deserialize(corrupted); err == nil {
		return v
	}
	var direct any
	if err := json.Unmarshal([]byte(corrupted), &direct); err == nil {
		return decodeValue(direct)
	}

	// Strategy 2: extract the first balanced JSON object substring.
	if fragment := extractJSONObject(corrupted); fragment != "" {
		var v any
		if err := json.Unmarshal([]byte(fragment), &v); err == nil {
			return decodeValue(v)
		}
	}

	// Strategy 3: syntactic repair, then one more parse.
	repaired := repairJSON(corrupted)
	if fragment := extractJSONObject(repaired); fragment != "" {
		repaired = fragment
	}
	var v any
	if err := json.Unmarshal([]byte(repaired), &v); err == nil {
		return decodeValue(v)
	}
	return nil
}

// extractJSONObject returns the first brace-balanced object substring,
// respecting string literals and escapes. Empty when none exists.
func extractJSONObject(in string) string {
	start := strings.IndexByte(in, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(in); i++ {
		ch := in[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return in[start : i+1]
				}
			}
		}
	}
	return ""
}

var (
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	singleQuoteRe   = regexp.MustCompile(`'([^']*)'`)
)

// repairJSON applies best-effort syntactic fixes: strips trailing commas,
// quotes bare keys and converts single-quoted strings to double-quoted.
func repairJSON(in string) string {
	out := trailingCommaRe.ReplaceAllString(in, "$1")
	out = bareKeyRe.ReplaceAllString(out, `$1"$2":`)
	out = singleQuoteRe.ReplaceAllString(out, `"$1"`)
	return out
}
