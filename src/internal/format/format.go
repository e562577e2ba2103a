// FILE: fieldwisp/src/internal/format/format.go
package format

import (
	"fmt"

	"fieldwisp/src/internal/config"
	"fieldwisp/src/internal/core"

	"github.com/lixenwraith/log"
)

// Formatter defines the interface for transforming a LogEntry into a byte slice.
type Formatter interface {
	// Format encodes one entry as [time, record], ready to be appended to a stream.
	Format(entry core.LogEntry) ([]byte, error)

	// Name returns the formatter type name
	Name() string
}

// New creates a new Formatter based on the provided configuration.
func New(cfg *config.FormatConfig, logger *log.Logger) (Formatter, error) {
	if cfg == nil {
		cfg = &config.FormatConfig{Type: config.CodecJSON}
	}

	switch cfg.Type {
	case config.CodecJSON, "":
		return NewJSONFormatter(cfg, logger)
	case config.CodecMsgpack:
		return NewMsgpackFormatter(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown formatter type: %s", cfg.Type)
	}
}
