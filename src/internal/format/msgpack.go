// FILE: fieldwisp/src/internal/format/msgpack.go
package format

import (
	"bytes"
	"fmt"

	"fieldwisp/src/internal/config"
	"fieldwisp/src/internal/core"
	"fieldwisp/src/internal/value"

	"github.com/lixenwraith/log"
	"github.com/vmihailenco/msgpack/v5"
)

// MsgpackFormatter writes forward protocol entries: [EventTime, record]
type MsgpackFormatter struct {
	logger *log.Logger
}

func NewMsgpackFormatter(_ *config.FormatConfig, logger *log.Logger) (*MsgpackFormatter, error) {
	return &MsgpackFormatter{logger: logger}, nil
}

func (f *MsgpackFormatter) Format(entry core.LogEntry) ([]byte, error) {
	if err := core.CheckEventTime(entry.Time); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(32 + int(entry.RawSize))

	enc := msgpack.NewEncoder(&buf)
	if err := enc.EncodeArrayLen(2); err != nil {
		return nil, fmt.Errorf("failed to encode entry header: %w", err)
	}
	if err := value.EncodeMsgpack(enc, core.EventTime(entry.Time)); err != nil {
		return nil, fmt.Errorf("failed to encode event time: %w", err)
	}
	if err := value.EncodeMsgpackMap(enc, entry.Record()); err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	return buf.Bytes(), nil
}

func (f *MsgpackFormatter) Name() string {
	return "msgpack"
}
