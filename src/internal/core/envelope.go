// FILE: fieldwisp/src/internal/core/envelope.go
package core

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"fieldwisp/src/internal/value"
)

// CheckEventTime reports an error when t falls outside the unsigned 32-bit
// seconds range of an EventTime.
func CheckEventTime(t time.Time) error {
	if sec := t.Unix(); sec < 0 || sec > math.MaxUint32 {
		return fmt.Errorf("time %s is outside the EventTime range", t.UTC().Format(time.RFC3339Nano))
	}
	return nil
}

// EventTime encodes t as a forward protocol EventTime extension. Callers
// check the range with CheckEventTime first.
func EventTime(t time.Time) value.Value {
	data := make([]byte, EventTimeExtLen)
	binary.BigEndian.PutUint32(data[0:4], uint32(t.Unix()))
	binary.BigEndian.PutUint32(data[4:8], uint32(t.Nanosecond()))
	return value.Ext(EventTimeExtType, data)
}

// ParseEnvelopeTime accepts integer or float seconds, an EventTime extension
// or an RFC3339 string.
func ParseEnvelopeTime(v value.Value) (time.Time, error) {
	switch v.Kind() {
	case value.KindInt:
		i, _ := v.AsInt()
		return time.Unix(i, 0).UTC(), nil
	case value.KindFloat:
		f, _ := v.AsFloat()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return time.Time{}, fmt.Errorf("non-finite envelope time")
		}
		sec, frac := math.Modf(f)
		return time.Unix(int64(sec), int64(math.Round(frac*1e9))).UTC(), nil
	case value.KindExt:
		typ, data, _ := v.AsExt()
		if typ != EventTimeExtType || len(data) != EventTimeExtLen {
			return time.Time{}, fmt.Errorf("unsupported envelope extension type %d length %d", typ, len(data))
		}
		sec := binary.BigEndian.Uint32(data[0:4])
		nsec := binary.BigEndian.Uint32(data[4:8])
		return time.Unix(int64(sec), int64(nsec)).UTC(), nil
	case value.KindString:
		s, _ := v.AsString()
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid envelope time: %w", err)
		}
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unsupported envelope time kind %s", v.Kind())
}

// NewEntryFromRecord unpacks a decoded record into a LogEntry. Accepted
// shapes are [time, map], [[time, metadata], map] and a bare map, which is
// stamped with arrival.
func NewEntryFromRecord(v value.Value, source string, arrival time.Time, rawSize int64) (LogEntry, error) {
	entry := LogEntry{
		Time:    arrival,
		Source:  source,
		RawSize: rawSize,
	}

	if m, ok := v.AsMap(); ok {
		entry.Payload = m
		return entry, nil
	}

	arr, ok := v.AsArray()
	if !ok {
		return entry, fmt.Errorf("record must be an array or map, got %s", v.Kind())
	}
	if len(arr) != 2 {
		return entry, fmt.Errorf("record array must have 2 elements, got %d", len(arr))
	}

	header := arr[0]
	if h, ok := header.AsArray(); ok {
		if len(h) == 0 {
			return entry, fmt.Errorf("empty record header")
		}
		header = h[0]
	}

	t, err := ParseEnvelopeTime(header)
	if err != nil {
		return entry, err
	}
	m, ok := arr[1].AsMap()
	if !ok {
		return entry, fmt.Errorf("record body must be a map, got %s", arr[1].Kind())
	}

	entry.Time = t
	entry.Payload = m
	return entry, nil
}
