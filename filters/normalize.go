package filters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type rawField struct {
	Value      json.RawMessage `json:"value"`
	Confidence string          `json:"confidence"`
	Source     string          `json:"source"`
}

type rawRange struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// Normalize converts the loosely shaped filter object an oracle returns into
// SearchFilters. String-set fields may be wrapped ({value, confidence,
// source}) or bare arrays or strings; yearsOfExperience may be wrapped or a
// bare {min, max}. Unknown keys and unusable values are dropped.
func Normalize(raw json.RawMessage) (SearchFilters, error) {
	var out SearchFilters
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return out, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return out, fmt.Errorf("filters: not an object: %w", err)
	}

	for key, val := range obj {
		field, ok := ParseField(key)
		if !ok {
			continue
		}
		if field == YearsOfExperience {
			out.YearsOfExperience = normalizeRange(val)
			continue
		}
		out.Set(field, normalizeList(val))
	}
	return out, nil
}

func normalizeList(raw json.RawMessage) *ListField {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	if raw[0] != '{' {
		return NewList(Direct, stringsOf(raw)...)
	}

	var rf rawField
	if err := json.Unmarshal(raw, &rf); err != nil || rf.Value == nil {
		return nil
	}
	field := NewList(parseConfidence(rf.Confidence), stringsOf(rf.Value)...)
	if field != nil {
		field.Source = strings.TrimSpace(rf.Source)
	}
	return field
}

// stringsOf accepts a JSON array or a single scalar.
func stringsOf(raw json.RawMessage) []string {
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		var single any
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil
		}
		items = []any{single}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case float64:
			out = append(out, strconv.FormatFloat(v, 'f', -1, 64))
		}
	}
	return out
}

func normalizeRange(raw json.RawMessage) *RangeField {
	var rf struct {
		rawField
		rawRange
	}
	if err := json.Unmarshal(raw, &rf); err != nil {
		return nil
	}

	bounds := rf.rawRange
	conf := Direct
	source := ""
	if rf.Value != nil {
		if err := json.Unmarshal(rf.Value, &bounds); err != nil {
			return nil
		}
		conf = parseConfidence(rf.Confidence)
		source = strings.TrimSpace(rf.Source)
	}

	r := Range{Min: toYears(bounds.Min), Max: toYears(bounds.Max)}
	if r.Empty() {
		return nil
	}
	return &RangeField{Value: r, Confidence: conf, Source: source}
}

func toYears(v *float64) *int {
	if v == nil || *v < 0 || math.IsNaN(*v) {
		return nil
	}
	return IntPtr(int(math.Round(*v)))
}
