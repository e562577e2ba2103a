// FILE: fieldwisp/src/internal/sink/file.go
package sink

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"fieldwisp/src/internal/config"
	"fieldwisp/src/internal/core"
	"fieldwisp/src/internal/format"

	"github.com/klauspost/compress/gzip"
	"github.com/lixenwraith/log"
)

// FileSink appends formatted entries to a file, optionally gzip compressed
type FileSink struct {
	input     chan core.LogEntry
	config    *config.FileSinkOptions
	file      *os.File
	buf       *bufio.Writer
	gz        *gzip.Writer
	out       io.Writer
	done      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	startTime time.Time
	logger    *log.Logger
	formatter format.Formatter

	// Statistics
	totalProcessed atomic.Uint64
	failedWrites   atomic.Uint64
	bytesWritten   atomic.Uint64
	lastProcessed  atomic.Value // time.Time
}

// NewFileSink opens the target file in append mode, creating parent directories as needed
func NewFileSink(opts *config.FileSinkOptions, logger *log.Logger, formatter format.Formatter) (*FileSink, error) {
	if opts == nil {
		return nil, fmt.Errorf("file sink options cannot be nil")
	}
	if formatter == nil {
		return nil, fmt.Errorf("file sink requires a formatter")
	}

	if dir := filepath.Dir(opts.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	file, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", opts.Path, err)
	}

	bufferSize := opts.BufferSize
	if bufferSize <= 0 {
		bufferSize = core.DefaultSinkBufferSize
	}

	fs := &FileSink{
		input:     make(chan core.LogEntry, bufferSize),
		config:    opts,
		file:      file,
		buf:       bufio.NewWriter(file),
		done:      make(chan struct{}),
		startTime: time.Now(),
		logger:    logger,
		formatter: formatter,
	}
	fs.out = fs.buf

	// Each run appends a new gzip member; readers handle concatenated members
	if opts.Compression == config.CompressionGzip {
		fs.gz = gzip.NewWriter(fs.buf)
		fs.out = fs.gz
	}
	fs.lastProcessed.Store(time.Time{})

	return fs, nil
}

func (fs *FileSink) Input() chan<- core.LogEntry {
	return fs.input
}

func (fs *FileSink) Start(ctx context.Context) error {
	fs.wg.Add(1)
	go fs.processLoop(ctx)

	fs.logger.Info("msg", "File sink started",
		"component", "file_sink",
		"path", fs.config.Path,
		"compression", fs.config.Compression,
		"format", fs.formatter.Name())
	return nil
}

func (fs *FileSink) Stop() {
	fs.stopOnce.Do(func() {
		close(fs.done)
		fs.wg.Wait()

		if err := fs.close(); err != nil {
			fs.logger.Error("msg", "Failed to close output file",
				"component", "file_sink",
				"path", fs.config.Path,
				"error", err)
		}

		fs.logger.Info("msg", "File sink stopped",
			"component", "file_sink",
			"path", fs.config.Path,
			"total_processed", fs.totalProcessed.Load())
	})
}

func (fs *FileSink) GetStats() SinkStats {
	lastProc, _ := fs.lastProcessed.Load().(time.Time)

	return SinkStats{
		Type:           "file",
		TotalProcessed: fs.totalProcessed.Load(),
		FailedWrites:   fs.failedWrites.Load(),
		StartTime:      fs.startTime,
		LastProcessed:  lastProc,
		Details: map[string]any{
			"path":          fs.config.Path,
			"compression":   fs.config.Compression,
			"format":        fs.formatter.Name(),
			"bytes_written": fs.bytesWritten.Load(),
		},
	}
}

func (fs *FileSink) processLoop(ctx context.Context) {
	defer fs.wg.Done()

	interval := time.Duration(fs.config.FlushIntervalMS) * time.Millisecond
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case entry := <-fs.input:
			fs.write(entry)
		case <-ticker.C:
			if err := fs.flush(); err != nil {
				fs.logger.Error("msg", "Failed to flush output file",
					"component", "file_sink",
					"path", fs.config.Path,
					"error", err)
			}
		case <-ctx.Done():
			return
		case <-fs.done:
			for {
				select {
				case entry := <-fs.input:
					fs.write(entry)
				default:
					return
				}
			}
		}
	}
}

func (fs *FileSink) write(entry core.LogEntry) {
	fs.totalProcessed.Add(1)
	fs.lastProcessed.Store(time.Now())

	formatted, err := fs.formatter.Format(entry)
	if err != nil {
		fs.failedWrites.Add(1)
		fs.logger.Error("msg", "Failed to format log entry",
			"component", "file_sink",
			"error", err)
		return
	}

	n, err := fs.out.Write(formatted)
	fs.bytesWritten.Add(uint64(n))
	if err != nil {
		fs.failedWrites.Add(1)
		fs.logger.Error("msg", "Failed to write log entry",
			"component", "file_sink",
			"path", fs.config.Path,
			"error", err)
	}
}

// flush pushes buffered bytes to the file. With gzip the compressor is
// flushed first so the file stays readable up to the last complete block.
func (fs *FileSink) flush() error {
	if fs.gz != nil {
		if err := fs.gz.Flush(); err != nil {
			return err
		}
	}
	return fs.buf.Flush()
}

func (fs *FileSink) close() error {
	var firstErr error
	if fs.gz != nil {
		if err := fs.gz.Close(); err != nil {
			firstErr = err
		}
	}
	if err := fs.buf.Flush(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := fs.file.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
