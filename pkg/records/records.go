// Package records defines the row type shared by the parser and the schema
// decoding layer. A Record is one raw JSON document decoded into a generic
// map; numeric values are json.Number so callers decide the target type.
package records

import (
	"encoding/json"
	"strings"
)

// Record is a single row of semi-structured input keyed by field name.
type Record map[string]any

// String returns the trimmed string value for key, or "" when the key is
// missing, nil, or not a string.
func (r Record) String(key string) string {
	if v, ok := r[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// Float returns the float64 value for key. json.Number and float64 values
// are accepted; anything else yields (0, false).
func (r Record) Float(key string) (float64, bool) {
	switch n := r[key].(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	}
	return 0, false
}

// Int returns the int64 value for key. json.Number values that carry a
// fractional part are truncated via float64 parsing, which matches how the
// source systems serialize epoch timestamps.
func (r Record) Int(key string) (int64, bool) {
	switch n := r[key].(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return int64(f), true
		}
		return 0, false
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}

// Has reports whether key is present with a non-nil value.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}
