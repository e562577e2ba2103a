// FILE: fieldwisp/src/internal/special/insert_id.go
package special

import (
	"fieldwisp/src/internal/value"
)

// InsertID is the top-level insertId string
type InsertID struct {
	Value string
	Found bool
}

// ExtractInsertID takes the first insertId key holding a string.
func ExtractInsertID(payload *value.Map) InsertID {
	var id InsertID
	payload.Range(func(k string, v value.Value) bool {
		if !MatchKey(k, InsertIDKey) {
			return true
		}
		s, ok := CoerceString(v)
		if !ok {
			return true
		}
		id.Value, id.Found = s, true
		return false
	})
	return id
}

// Valid requires a non-empty string.
func (i InsertID) Valid() bool {
	return i.Found && i.Value != ""
}
