package normalization

import (
	"math"
	"strconv"
	"strings"

	"solana-pair-radar/internal/domain"
)

// numberLike matches json.Number and jsoniter.Number.
type numberLike interface {
	Float64() (float64, error)
	Int64() (int64, error)
}

// Lookup resolves a dotted path ("liquidity.usd") inside a raw record.
// It never panics: a missing key, a null value or an intermediate level that
// is not an object all report ok=false.
func Lookup(rec domain.RawRecord, path string) (any, bool) {
	var cur any = map[string]any(rec)
	for _, key := range strings.Split(path, ".") {
		obj, isObj := asObject(cur)
		if !isObj {
			return nil, false
		}
		v, exists := obj[key]
		if !exists || v == nil {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// LookupString returns the value at path if it is a non-empty string.
func LookupString(rec domain.RawRecord, path string) (string, bool) {
	v, ok := Lookup(rec, path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// LookupFloat returns the value at path as a float64.
// JSON numbers and numeric strings are accepted.
func LookupFloat(rec domain.RawRecord, path string) (float64, bool) {
	v, ok := Lookup(rec, path)
	if !ok {
		return 0, false
	}
	return ToFloat(v)
}

// LookupInt returns the value at path as an int64.
// Fractional values are truncated.
func LookupInt(rec domain.RawRecord, path string) (int64, bool) {
	v, ok := Lookup(rec, path)
	if !ok {
		return 0, false
	}
	return ToInt(v)
}

// ToFloat converts a decoded JSON value to float64.
func ToFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case numberLike:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ToInt converts a decoded JSON value to int64.
func ToInt(v any) (int64, bool) {
	if n, ok := v.(numberLike); ok {
		if i, err := n.Int64(); err == nil {
			return i, true
		}
	}
	f, ok := ToFloat(v)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// isNumeric reports whether v is a JSON number (strings excluded).
func isNumeric(v any) bool {
	switch v.(type) {
	case string:
		return false
	}
	_, ok := ToFloat(v)
	return ok
}

func asObject(v any) (map[string]any, bool) {
	switch obj := v.(type) {
	case map[string]any:
		return obj, true
	case domain.RawRecord:
		return obj, true
	default:
		return nil, false
	}
}
