// FILE: fieldwisp/src/internal/core/entry.go
package core

import (
	"time"

	"fieldwisp/src/internal/value"
)

// Represents a single log record flowing through the pipeline
type LogEntry struct {
	Time    time.Time
	Source  string
	Payload *value.Map
	// Promoted holds the special fields lifted out of Payload by the rewriter
	Promoted *value.Map
	RawSize  int64
}

// Record returns the outgoing record map: promoted keys first, then the
// payload. A payload key that shares a name with a promoted key is dropped.
func (e LogEntry) Record() *value.Map {
	out := value.NewMap(e.Promoted.Len() + e.Payload.Len())
	e.Promoted.Range(func(k string, v value.Value) bool {
		out.Set(k, v)
		return true
	})
	e.Payload.Range(func(k string, v value.Value) bool {
		if !e.Promoted.Has(k) {
			out.Set(k, v)
		}
		return true
	})
	return out
}

// Field looks a key up in the promoted fields first, then the payload.
func (e LogEntry) Field(key string) (value.Value, bool) {
	if v, ok := e.Promoted.Get(key); ok {
		return v, true
	}
	return e.Payload.Get(key)
}
