package utils

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Coerce turns whatever arrived from a form field or a stored payload into a
// non-negative integer stat. Anything that is not a finite number becomes 0.
// Fractions are truncated and negative values clamp to 0.
func Coerce(v any) int {
	switch n := v.(type) {
	case nil:
		return 0
	case int:
		return clamp(float64(n))
	case int32:
		return clamp(float64(n))
	case int64:
		return clamp(float64(n))
	case float32:
		return clamp(float64(n))
	case float64:
		return clamp(n)
	case bool:
		if n {
			return 1
		}
		return 0
	case json.Number:
		return CoerceString(n.String())
	case string:
		return CoerceString(n)
	case *int:
		if n == nil {
			return 0
		}
		return clamp(float64(*n))
	default:
		return 0
	}
}

func CoerceString(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return clamp(f)
}

func clamp(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	if f >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

// CoerceJSON decodes a raw JSON value with the same leniency as Coerce.
func CoerceJSON(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return 0
	}
	return Coerce(v)
}
