// FILE: fieldwisp/src/internal/source/codec.go
package source

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"fieldwisp/src/internal/config"
	"fieldwisp/src/internal/core"
	"fieldwisp/src/internal/value"

	"github.com/vmihailenco/msgpack/v5"
)

// errStop ends a stream early without being reported as a failure
var errStop = errors.New("stop")

// recordDecoder turns a byte stream into log entries. emit returning false
// stops decoding. Per-record errors go to invalid; the returned error is
// reserved for stream-level failures.
type recordDecoder struct {
	codec   string
	source  string
	now     func() time.Time
	emit    func(core.LogEntry) bool
	invalid func(error)
}

func (d *recordDecoder) decode(r io.Reader) error {
	var err error
	switch d.codec {
	case config.CodecMsgpack:
		err = d.decodeMsgpack(r)
	default:
		err = d.decodeJSONLines(r)
	}
	if errors.Is(err, errStop) {
		return nil
	}
	return err
}

func (d *recordDecoder) decodeJSONLines(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), core.MaxRecordSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		v, err := value.ParseJSON(line)
		if err != nil {
			d.invalid(fmt.Errorf("line %d: %w", lineNo, err))
			continue
		}
		if err := d.deliver(v, int64(len(line))); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read JSON lines: %w", err)
	}
	return nil
}

func (d *recordDecoder) decodeMsgpack(r io.Reader) error {
	cr := &countingReader{r: bufio.NewReader(r)}
	dec := msgpack.NewDecoder(cr)

	for {
		before := cr.n
		v, err := value.DecodeMsgpack(dec)
		if err != nil {
			if errors.Is(err, io.EOF) && cr.n == before {
				return nil
			}
			// A broken msgpack stream cannot be resynchronized
			return fmt.Errorf("failed to decode msgpack record: %w", err)
		}
		if err := d.deliver(v, cr.n-before); err != nil {
			return err
		}
	}
}

func (d *recordDecoder) deliver(v value.Value, rawSize int64) error {
	source, records := expandForward(v, d.source)
	now := d.now()
	for _, rec := range records {
		entry, err := core.NewEntryFromRecord(rec, source, now, rawSize)
		if err != nil {
			d.invalid(err)
			continue
		}
		if !d.emit(entry) {
			return errStop
		}
	}
	return nil
}

// expandForward unwraps forward protocol Message mode [tag, time, record]
// and Forward mode [tag, [[time, record], ...]]. The tag replaces the source
// name. Anything else is returned as a single record.
func expandForward(v value.Value, source string) (string, []value.Value) {
	arr, ok := v.AsArray()
	if !ok || len(arr) < 2 {
		return source, []value.Value{v}
	}
	tag, ok := arr[0].AsString()
	if !ok {
		return source, []value.Value{v}
	}

	// Forward mode may carry a trailing option map
	if entries, ok := arr[1].AsArray(); ok && len(arr) <= 3 {
		return tag, entries
	}
	if len(arr) >= 3 {
		if _, isMap := arr[2].AsMap(); isMap {
			return tag, []value.Value{value.Array(arr[1], arr[2])}
		}
	}
	return source, []value.Value{v}
}

// forwardChunk returns the "chunk" id of a forward protocol option map, which
// asks the receiver to acknowledge the message.
func forwardChunk(v value.Value) (string, bool) {
	arr, ok := v.AsArray()
	if !ok || len(arr) < 3 {
		return "", false
	}

	// Forward mode [tag, entries, option]; Message mode [tag, time, record, option]
	idx := 3
	if _, isArray := arr[1].AsArray(); isArray {
		idx = 2
	}
	if len(arr) <= idx {
		return "", false
	}
	opts, ok := arr[idx].AsMap()
	if !ok {
		return "", false
	}
	cv, ok := opts.Get("chunk")
	if !ok {
		return "", false
	}
	chunk, ok := cv.AsString()
	if !ok || chunk == "" {
		return "", false
	}
	return chunk, true
}

// decodeBody decodes a whole request body. Any invalid record fails the body.
func decodeBody(body []byte, codec, source string, now time.Time) ([]core.LogEntry, error) {
	var entries []core.LogEntry
	var firstErr error

	d := &recordDecoder{
		codec:  codec,
		source: source,
		now:    func() time.Time { return now },
		emit: func(e core.LogEntry) bool {
			entries = append(entries, e)
			return true
		},
		invalid: func(err error) {
			if firstErr == nil {
				firstErr = err
			}
		},
	}

	if err := d.decode(bytes.NewReader(body)); err != nil {
		return nil, err
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no records found")
	}
	return entries, nil
}

type countingReader struct {
	r *bufio.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (c *countingReader) ReadByte() (byte, error) {
	b, err := c.r.ReadByte()
	if err == nil {
		c.n++
	}
	return b, err
}

func (c *countingReader) UnreadByte() error {
	err := c.r.UnreadByte()
	if err == nil {
		c.n--
	}
	return err
}
