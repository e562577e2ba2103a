// FILE: fieldwisp/src/internal/format/json.go
package format

import (
	"strconv"
	"time"

	"fieldwisp/src/internal/config"
	"fieldwisp/src/internal/core"
	"fieldwisp/src/internal/value"

	"github.com/lixenwraith/log"
)

// JSONFormatter writes one [time, record] array per line
type JSONFormatter struct {
	timeAsNumber bool
	logger       *log.Logger
}

func NewJSONFormatter(cfg *config.FormatConfig, logger *log.Logger) (*JSONFormatter, error) {
	f := &JSONFormatter{
		logger: logger,
	}
	if cfg != nil {
		f.timeAsNumber = cfg.TimeAsNumber
	}
	return f, nil
}

// Format renders the time as an RFC3339Nano string, or as seconds with a
// nanosecond fraction when configured.
func (f *JSONFormatter) Format(entry core.LogEntry) ([]byte, error) {
	buf := make([]byte, 0, 64+int(entry.RawSize))
	buf = append(buf, '[')
	if f.timeAsNumber {
		buf = appendEpoch(buf, entry.Time)
	} else {
		buf = strconv.AppendQuote(buf, entry.Time.UTC().Format(time.RFC3339Nano))
	}
	buf = append(buf, ',')
	buf = value.AppendJSONMap(buf, entry.Record())
	buf = append(buf, ']', '\n')
	return buf, nil
}

func (f *JSONFormatter) Name() string {
	return "json"
}

// FormatBatch renders entries as a single JSON array of [time, record] pairs.
func (f *JSONFormatter) FormatBatch(entries []core.LogEntry) ([]byte, error) {
	buf := []byte{'['}
	for _, entry := range entries {
		line, err := f.Format(entry)
		if err != nil {
			f.logger.Warn("msg", "Failed to format entry in batch",
				"component", "json_formatter",
				"error", err)
			continue
		}
		if len(buf) > 1 {
			buf = append(buf, ',')
		}
		buf = append(buf, line[:len(line)-1]...)
	}
	return append(buf, ']'), nil
}

// appendEpoch writes t as decimal seconds since the epoch. Instants before
// 1970 with a fraction carry the sign on the whole value.
func appendEpoch(dst []byte, t time.Time) []byte {
	sec := t.Unix()
	nsec := int64(t.Nanosecond())
	if nsec == 0 {
		return strconv.AppendInt(dst, sec, 10)
	}
	if sec < 0 {
		sec++
		nsec = int64(time.Second) - nsec
		dst = append(dst, '-')
		dst = strconv.AppendInt(dst, -sec, 10)
	} else {
		dst = strconv.AppendInt(dst, sec, 10)
	}

	frac := strconv.FormatInt(nsec, 10)
	dst = append(dst, '.')
	for i := len(frac); i < 9; i++ {
		dst = append(dst, '0')
	}
	return append(dst, frac...)
}
