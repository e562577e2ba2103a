// FILE: fieldwisp/src/internal/special/matcher.go
package special

import (
	"strconv"

	"fieldwisp/src/internal/value"
)

// MatchKey reports whether key is exactly candidate. Prefixes never match.
func MatchKey(key, candidate string) bool {
	return len(key) == len(candidate) && key == candidate
}

// CoerceInteger accepts a non-negative native integer or a non-empty string
// of ASCII digits that fits in int64.
func CoerceInteger(v value.Value) (int64, bool) {
	switch v.Kind() {
	case value.KindInt:
		i, _ := v.AsInt()
		if i < 0 {
			return 0, false
		}
		return i, true
	case value.KindString:
		s, _ := v.AsString()
		if !isDigits(s) {
			return 0, false
		}
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

// CoerceBool accepts native booleans only; "true" as a string is rejected.
func CoerceBool(v value.Value) (bool, bool) {
	return v.AsBool()
}

func CoerceString(v value.Value) (string, bool) {
	return v.AsString()
}

// findMap returns the sub-map stored under key. A key holding any other
// type is reported as not found.
func findMap(payload *value.Map, key string) (*value.Map, bool) {
	var (
		sub   *value.Map
		found bool
	)
	payload.Range(func(k string, v value.Value) bool {
		if !MatchKey(k, key) {
			return true
		}
		sub, found = v.AsMap()
		return false
	})
	return sub, found
}
