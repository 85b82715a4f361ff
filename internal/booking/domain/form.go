package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FormValues is a read-only view over the opaque form document.
type FormValues map[string]any

// ParseForm returns nil when raw is empty or not a JSON object.
func ParseForm(raw json.RawMessage) FormValues {
	if len(raw) == 0 {
		return nil
	}
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}
	return values
}

func (f FormValues) lookup(path ...string) any {
	var current any = map[string]any(f)
	for _, key := range path {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = obj[key]
	}
	return current
}

// String follows path through nested objects and returns a scalar leaf as text.
func (f FormValues) String(path ...string) string {
	switch v := f.lookup(path...).(type) {
	case string:
		return v
	case float64, bool:
		b, _ := json.Marshal(v)
		return string(b)
	default:
		return ""
	}
}

// Int reads a number or numeric string, 0 otherwise.
func (f FormValues) Int(path ...string) int {
	switch v := f.lookup(path...).(type) {
	case float64:
		return int(v)
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return int(n)
	default:
		return 0
	}
}

// Strings reads an array of scalars.
func (f FormValues) Strings(path ...string) []string {
	items, ok := f.lookup(path...).([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case float64, bool:
			b, _ := json.Marshal(v)
			out = append(out, string(b))
		}
	}
	return out
}
