package lms

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// String returns m[key] as a string. Numbers are formatted, anything else
// yields "".
func String(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case int:
		return strconv.Itoa(v)
	}
	return ""
}

// Int returns m[key] as an int, or def when the key is missing or the value
// cannot be read as a number. The server sends some integers as strings.
func Int(m map[string]any, key string, def int) int {
	v, ok := m[key]
	if !ok || v == nil {
		return def
	}
	n, err := ParseInt(v)
	if err != nil {
		return def
	}
	return n
}

// Has reports whether key is present with a non-nil value.
func Has(m map[string]any, key string) bool {
	v, ok := m[key]
	return ok && v != nil
}

// Map returns m[key] as a nested object, or nil.
func Map(m map[string]any, key string) map[string]any {
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return nil
}

// Slice returns m[key] as an array, or nil.
func Slice(m map[string]any, key string) []any {
	if v, ok := m[key].([]any); ok {
		return v
	}
	return nil
}

// ParseInt reads a numeric-ish JSON value: numbers, numeric strings and
// percentages such as "35%". Fractions are truncated toward zero.
func ParseInt(v any) (int, error) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("not a finite number: %v", n)
		}
		return int(n), nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case json.Number:
		return ParseInt(n.String())
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(n), "%"))
		if i, err := strconv.Atoi(s); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n)
		}
		return ParseInt(f)
	}
	return 0, fmt.Errorf("unsupported value type %T", v)
}
