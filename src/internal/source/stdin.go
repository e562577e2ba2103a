// FILE: fieldwisp/src/internal/source/stdin.go
package source

import (
	"io"
	"os"
	"sync"
	"time"

	"fieldwisp/src/internal/config"
	"fieldwisp/src/internal/core"

	"github.com/lixenwraith/log"
	"golang.org/x/term"
)

// StdinSource reads records from standard input
type StdinSource struct {
	*fanout
	config   *config.StdinSourceOptions
	reader   io.Reader
	done     chan struct{}
	stopOnce sync.Once
	eof      chan struct{}
	logger   *log.Logger
}

func NewStdinSource(opts *config.StdinSourceOptions, logger *log.Logger) (*StdinSource, error) {
	if opts == nil {
		opts = &config.StdinSourceOptions{
			Codec:      config.CodecJSON,
			BufferSize: 1000,
		}
	}

	return &StdinSource{
		fanout: newFanout("stdin_source", opts.BufferSize, logger),
		config: opts,
		reader: os.Stdin,
		done:   make(chan struct{}),
		eof:    make(chan struct{}),
		logger: logger,
	}, nil
}

func (s *StdinSource) Start() error {
	if f, ok := s.reader.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		s.logger.Warn("msg", "Reading records from an interactive terminal, end input with Ctrl-D",
			"component", "stdin_source")
	}

	go s.readLoop()
	s.logger.Info("msg", "Stdin source started",
		"component", "stdin_source",
		"codec", s.config.Codec)
	return nil
}

func (s *StdinSource) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.closeSubscribers()
		s.logger.Info("msg", "Stdin source stopped", "component", "stdin_source")
	})
}

// Done is closed once the input has been read to the end.
func (s *StdinSource) Done() <-chan struct{} {
	return s.eof
}

func (s *StdinSource) GetStats() SourceStats {
	return s.stats("stdin", map[string]any{
		"codec": s.config.Codec,
	})
}

func (s *StdinSource) readLoop() {
	defer close(s.eof)

	d := &recordDecoder{
		codec:   s.config.Codec,
		source:  "stdin",
		now:     time.Now,
		invalid: s.invalid,
		emit: func(entry core.LogEntry) bool {
			return s.publishWait(entry, s.done)
		},
	}

	if err := d.decode(s.reader); err != nil {
		s.logger.Error("msg", "Error reading stdin",
			"component", "stdin_source",
			"error", err)
		return
	}

	s.logger.Info("msg", "Stdin reached end of input",
		"component", "stdin_source",
		"total_entries", s.totalEntries.Load())
}
