// FILE: fieldwisp/src/internal/sink/console.go
package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"fieldwisp/src/internal/config"
	"fieldwisp/src/internal/core"
	"fieldwisp/src/internal/format"

	"github.com/lixenwraith/log"
)

// ConsoleSink writes formatted entries to stdout or stderr
type ConsoleSink struct {
	input     chan core.LogEntry
	config    *config.ConsoleSinkOptions
	output    io.Writer
	done      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	startTime time.Time
	logger    *log.Logger
	formatter format.Formatter

	// Statistics
	totalProcessed atomic.Uint64
	failedWrites   atomic.Uint64
	lastProcessed  atomic.Value // time.Time
}

func NewConsoleSink(opts *config.ConsoleSinkOptions, logger *log.Logger, formatter format.Formatter) (*ConsoleSink, error) {
	if opts == nil {
		opts = &config.ConsoleSinkOptions{
			Target:     "stdout",
			BufferSize: core.DefaultSinkBufferSize,
		}
	}
	if formatter == nil {
		return nil, fmt.Errorf("console sink requires a formatter")
	}

	var output io.Writer
	switch opts.Target {
	case "stdout", "":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		return nil, fmt.Errorf("invalid console target: %s", opts.Target)
	}

	bufferSize := opts.BufferSize
	if bufferSize <= 0 {
		bufferSize = core.DefaultSinkBufferSize
	}

	s := &ConsoleSink{
		input:     make(chan core.LogEntry, bufferSize),
		config:    opts,
		output:    output,
		done:      make(chan struct{}),
		startTime: time.Now(),
		logger:    logger,
		formatter: formatter,
	}
	s.lastProcessed.Store(time.Time{})

	return s, nil
}

func (s *ConsoleSink) Input() chan<- core.LogEntry {
	return s.input
}

func (s *ConsoleSink) Start(ctx context.Context) error {
	s.wg.Add(1)
	go s.processLoop(ctx)
	s.logger.Info("msg", "Console sink started",
		"component", "console_sink",
		"target", s.config.Target,
		"format", s.formatter.Name())
	return nil
}

func (s *ConsoleSink) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
		s.logger.Info("msg", "Console sink stopped",
			"component", "console_sink",
			"total_processed", s.totalProcessed.Load())
	})
}

func (s *ConsoleSink) GetStats() SinkStats {
	lastProc, _ := s.lastProcessed.Load().(time.Time)

	return SinkStats{
		Type:           "console",
		TotalProcessed: s.totalProcessed.Load(),
		FailedWrites:   s.failedWrites.Load(),
		StartTime:      s.startTime,
		LastProcessed:  lastProc,
		Details: map[string]any{
			"target": s.config.Target,
			"format": s.formatter.Name(),
		},
	}
}

func (s *ConsoleSink) processLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case entry := <-s.input:
			s.write(entry)
		case <-ctx.Done():
			return
		case <-s.done:
			s.drain()
			return
		}
	}
}

func (s *ConsoleSink) drain() {
	for {
		select {
		case entry := <-s.input:
			s.write(entry)
		default:
			return
		}
	}
}

func (s *ConsoleSink) write(entry core.LogEntry) {
	s.totalProcessed.Add(1)
	s.lastProcessed.Store(time.Now())

	formatted, err := s.formatter.Format(entry)
	if err != nil {
		s.failedWrites.Add(1)
		s.logger.Error("msg", "Failed to format log entry",
			"component", "console_sink",
			"error", err)
		return
	}
	if _, err := s.output.Write(formatted); err != nil {
		s.failedWrites.Add(1)
		s.logger.Error("msg", "Failed to write log entry",
			"component", "console_sink",
			"target", s.config.Target,
			"error", err)
	}
}
