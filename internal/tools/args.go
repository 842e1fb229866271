package tools

import (
	"strconv"
	"strings"
)

// Args is the untyped argument map of a tool call. Local models are not
// consistent about argument naming or typing, so every accessor takes a list
// of accepted key aliases and coerces across string/number/bool.
type Args map[string]any

// String returns the first non-blank string value among the keys.
func (a Args) String(keys ...string) (string, bool) {
	for _, k := range keys {
		v, ok := a[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				return s, true
			}
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64), true
		case bool:
			return strconv.FormatBool(t), true
		}
	}
	return "", false
}

// Float returns the first numeric value among the keys, accepting JSON
// numbers and numeric strings.
func (a Args) Float(keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := a[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case float64:
			return t, true
		case int:
			return float64(t), true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// Int returns the first integral value among the keys.
func (a Args) Int(keys ...string) (int, bool) {
	f, ok := a.Float(keys...)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// IntDefault returns the first integral value, else def.
func (a Args) IntDefault(def int, keys ...string) int {
	if n, ok := a.Int(keys...); ok && n > 0 {
		return n
	}
	return def
}

// FloatDefault returns the first numeric value, else def.
func (a Args) FloatDefault(def float64, keys ...string) float64 {
	if f, ok := a.Float(keys...); ok && f > 0 {
		return f
	}
	return def
}
