package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrMalformedAnswer = errors.New("malformed llm answer")

// Selection is one validated entry of a ranked answer. Index is 0-based into
// the list that was presented to the model.
type Selection struct {
	Index  int
	Score  float64
	Reason string
}

// Shape names the keys each answer element must carry. ScoreKey is empty
// when the prompt asks for no numeric score.
type Shape struct {
	IndexKey  string
	ScoreKey  string
	ReasonKey string
	// Count is the number of items presented; indices are 1..Count.
	Count int
}

// ParseSelections decodes a JSON array answer into selections. Any element
// with the wrong type, a missing key or an out-of-range value rejects the
// whole answer. Repeated indices keep their first occurrence.
func ParseSelections(raw string, shape Shape) ([]Selection, error) {
	cleaned := stripCodeFence(raw)
	if arr, ok := extractFirstJSONArray(cleaned); ok {
		cleaned = arr
	}

	var tree any
	if err := json.Unmarshal([]byte(cleaned), &tree); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedAnswer, err)
	}
	items, ok := tree.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected array, got %T", ErrMalformedAnswer, tree)
	}

	out := make([]Selection, 0, len(items))
	seen := make(map[int]struct{}, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: element %d is %T", ErrMalformedAnswer, i, item)
		}

		n, ok := coerceInt(obj[shape.IndexKey])
		if !ok || n < 1 || n > shape.Count {
			return nil, fmt.Errorf("%w: element %d has invalid %s %v", ErrMalformedAnswer, i, shape.IndexKey, obj[shape.IndexKey])
		}

		sel := Selection{Index: n - 1}
		if shape.ScoreKey != "" {
			score := coerceFloat(obj[shape.ScoreKey])
			if math.IsNaN(score) || score < 0 || score > 100 {
				return nil, fmt.Errorf("%w: element %d has invalid %s %v", ErrMalformedAnswer, i, shape.ScoreKey, obj[shape.ScoreKey])
			}
			sel.Score = score
		}

		reason, ok := obj[shape.ReasonKey].(string)
		if !ok {
			return nil, fmt.Errorf("%w: element %d is missing %s", ErrMalformedAnswer, i, shape.ReasonKey)
		}
		sel.Reason = strings.TrimSpace(reason)

		if _, dup := seen[sel.Index]; dup {
			continue
		}
		seen[sel.Index] = struct{}{}
		out = append(out, sel)
	}
	return out, nil
}

func stripCodeFence(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.LastIndex(cleaned, "```"); idx != -1 {
			cleaned = cleaned[:idx]
		}
	}
	return strings.TrimSpace(cleaned)
}

// extractFirstJSONArray finds the first outermost balanced [...]
func extractFirstJSONArray(s string) (string, bool) {
	start := strings.Index(s, "[")
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		char := s[i]

		if escaped {
			escaped = false
			continue
		}
		if char == '\\' {
			escaped = true
			continue
		}
		if char == '"' {
			inString = !inString
			continue
		}

		if !inString {
			if char == '[' {
				depth++
			} else if char == ']' {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}

	return "", false
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceInt(v any) (int, bool) {
	f := coerceFloat(v)
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
