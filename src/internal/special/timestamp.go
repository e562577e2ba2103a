// FILE: fieldwisp/src/internal/special/timestamp.go
package special

import (
	"math"
	"time"

	"fieldwisp/src/internal/value"
)

// TimestampStatus records which record shape supplied the timestamp
type TimestampStatus int

const (
	TimestampNotPresent TimestampStatus = iota
	TimestampObject
	TimestampDuoFields
	TimestampTime
	TimestampInvalidTime
)

func (s TimestampStatus) String() string {
	switch s {
	case TimestampObject:
		return "FORMAT_TIMESTAMP_OBJECT"
	case TimestampDuoFields:
		return "FORMAT_TIMESTAMP_DUO_FIELDS"
	case TimestampTime:
		return "FORMAT_TIME"
	case TimestampInvalidTime:
		return "INVALID_FORMAT_TIME"
	default:
		return "NOT_PRESENT"
	}
}

type Timestamp struct {
	Status  TimestampStatus
	Seconds int64
	Nanos   int64
	// RFC3339 is the raw string when Status is TimestampTime
	RFC3339 string
	// Extras holds timestamp object sub-fields other than seconds and nanos
	Extras *value.Map
}

// ExtractTimestamp tries the timestamp object, the seconds/nanos pair and
// the RFC3339 time string, in that order.
func ExtractTimestamp(payload *value.Map) Timestamp {
	if sub, ok := findMap(payload, TimestampKey); ok {
		if secs, nanos, ok := pair(sub, "seconds", "nanos"); ok {
			ts := Timestamp{Status: TimestampObject, Seconds: secs, Nanos: nanos}
			sub.Range(func(k string, v value.Value) bool {
				if MatchKey(k, "seconds") || MatchKey(k, "nanos") {
					return true
				}
				if ts.Extras == nil {
					ts.Extras = value.NewMap(1)
				}
				ts.Extras.Set(k, v)
				return true
			})
			return ts
		}
	}

	if secs, nanos, ok := pair(payload, TimestampSecondsKey, TimestampNanosKey); ok {
		return Timestamp{Status: TimestampDuoFields, Seconds: secs, Nanos: nanos}
	}

	v, ok := payload.Get(TimeKey)
	if !ok {
		return Timestamp{Status: TimestampNotPresent}
	}
	s, ok := CoerceString(v)
	if !ok || !MatchRFC3339(s) {
		return Timestamp{Status: TimestampInvalidTime}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Timestamp{Status: TimestampInvalidTime}
	}
	return Timestamp{
		Status:  TimestampTime,
		Seconds: t.Unix(),
		Nanos:   int64(t.Nanosecond()),
		RFC3339: s,
	}
}

// pair reads two integer sub-fields that must both be present. A value that
// does not coerce reads as zero.
func pair(m *value.Map, secKey, nanoKey string) (int64, int64, bool) {
	sv, okSec := m.Get(secKey)
	nv, okNano := m.Get(nanoKey)
	if !okSec || !okNano {
		return 0, 0, false
	}
	secs, _ := CoerceInteger(sv)
	nanos, _ := CoerceInteger(nv)
	return secs, nanos, true
}

// representable reports whether the resolved instant fits a forward
// protocol EventTime: unsigned 32-bit seconds and nanos below one second.
func (t Timestamp) representable() bool {
	return t.Seconds >= 0 && t.Seconds <= math.MaxUint32 &&
		t.Nanos >= 0 && t.Nanos < int64(time.Second)
}

// Time returns the resolved instant. ok is false when nothing was resolved,
// when the instant is the zero epoch, which never overrides the envelope, or
// when it cannot be represented as an EventTime.
func (t Timestamp) Time() (time.Time, bool) {
	switch t.Status {
	case TimestampObject, TimestampDuoFields, TimestampTime:
	default:
		return time.Time{}, false
	}
	if t.Seconds == 0 && t.Nanos == 0 {
		return time.Time{}, false
	}
	if !t.representable() {
		return time.Time{}, false
	}
	return time.Unix(t.Seconds, t.Nanos).UTC(), true
}

// ConsumedKeys lists the payload keys that supplied the timestamp. Keys of
// an unrepresentable instant stay in the payload.
func (t Timestamp) ConsumedKeys() []string {
	if !t.representable() {
		return nil
	}
	switch t.Status {
	case TimestampObject:
		return []string{TimestampKey}
	case TimestampDuoFields:
		return []string{TimestampSecondsKey, TimestampNanosKey}
	case TimestampTime:
		return []string{TimeKey}
	}
	return nil
}
