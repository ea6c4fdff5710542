package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Order matters: the language-tagged marker must go before the bare one.
var fenceMarkers = []string{"```json", "```"}

// ExtractionResult holds either a parsed JSON object/array or the failure that
// prevented it. Exactly one of Value and Failure is set.
type ExtractionResult struct {
	Value   any
	Failure *ExtractionFailure
}

func (r ExtractionResult) OK() bool {
	return r.Failure == nil
}

// Object returns the parsed value when it is a JSON object.
func (r ExtractionResult) Object() (map[string]any, bool) {
	obj, ok := r.Value.(map[string]any)
	return obj, ok
}

// Extract turns raw provider text into a structured value. Fence markers are
// removed wherever they appear; if the remainder is not valid JSON the text
// between the first '{' and the last '}' is tried, then the text between the
// first '[' and the last ']', before giving up.
func Extract(raw string) ExtractionResult {
	cleaned := stripFences(raw)
	if cleaned == "" {
		return failed(raw, "empty response")
	}

	value, err := parseStructured(cleaned)
	if err == nil {
		return ExtractionResult{Value: value}
	}

	for _, pair := range [][2]byte{{'{', '}'}, {'[', ']'}} {
		bounded, ok := boundStructured(cleaned, pair[0], pair[1])
		if !ok || bounded == cleaned {
			continue
		}
		if value, boundedErr := parseStructured(bounded); boundedErr == nil {
			return ExtractionResult{Value: value}
		}
	}

	return failed(raw, err.Error())
}

func stripFences(raw string) string {
	s := raw
	for _, marker := range fenceMarkers {
		s = strings.ReplaceAll(s, marker, "")
	}
	return strings.TrimSpace(s)
}

func parseStructured(s string) (any, error) {
	var value any
	if err := json.Unmarshal([]byte(s), &value); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	switch value.(type) {
	case map[string]any, []any:
		return value, nil
	default:
		return nil, fmt.Errorf("expected JSON object or array, got %T", value)
	}
}

func boundStructured(s string, opening, closing byte) (string, bool) {
	start := strings.IndexByte(s, opening)
	if start < 0 {
		return "", false
	}

	end := strings.LastIndexByte(s, closing)
	if end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func failed(raw, reason string) ExtractionResult {
	return ExtractionResult{Failure: &ExtractionFailure{Raw: raw, Reason: reason}}
}
