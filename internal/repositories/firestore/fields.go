package firestore

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// fields reads loosely typed document data. Documents written by earlier clients store numbers as
// strings and omit optional fields, so every accessor falls back to the zero value.
type fields map[string]any

func (f fields) str(key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func (f fields) number(key string) (float64, bool) {
	switch v := f[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func (f fields) float(key string) float64 {
	v, _ := f.number(key)
	return v
}

func (f fields) floatPtr(key string) *float64 {
	v, ok := f.number(key)
	if !ok {
		return nil
	}
	return &v
}

func (f fields) integer(key string) int {
	v, _ := f.number(key)
	return int(v)
}

func (f fields) boolean(key string) bool {
	switch v := f[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

func (f fields) strings(key string) []string {
	raw, ok := f[key].([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (f fields) time(key string) time.Time {
	if t, ok := f[key].(time.Time); ok {
		return t.UTC()
	}
	return time.Time{}
}

func (f fields) nested(key string) fields {
	if m, ok := f[key].(map[string]any); ok {
		return fields(m)
	}
	return fields{}
}

func (f fields) list(key string) []fields {
	raw, ok := f[key].([]any)
	if !ok {
		return nil
	}
	out := make([]fields, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, fields(m))
		}
	}
	return out
}
