// FILE: fieldwisp/src/internal/source/file.go
package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"fieldwisp/src/internal/config"
	"fieldwisp/src/internal/core"

	"github.com/klauspost/compress/gzip"
	"github.com/lixenwraith/log"
)

var gzipMagic = []byte{0x1f, 0x8b}

// FileSource replays a plain or gzip-compressed record file once
type FileSource struct {
	*fanout
	config *config.FileSourceOptions
	logger *log.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
	eof      chan struct{}

	mu         sync.Mutex
	compressed bool
	readErr    error
}

func NewFileSource(opts *config.FileSourceOptions, logger *log.Logger) (*FileSource, error) {
	if opts == nil {
		return nil, fmt.Errorf("file source options cannot be nil")
	}
	if opts.Path == "" {
		return nil, fmt.Errorf("file source requires a path")
	}

	return &FileSource{
		fanout: newFanout("file_source", opts.BufferSize, logger),
		config: opts,
		logger: logger,
		eof:    make(chan struct{}),
	}, nil
}

func (fs *FileSource) Start() error {
	f, err := os.Open(fs.config.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", fs.config.Path, err)
	}

	r, compressed, err := openCompressed(f, fs.config.Compression)
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to open %s: %w", fs.config.Path, err)
	}
	fs.mu.Lock()
	fs.compressed = compressed
	fs.mu.Unlock()

	fs.ctx, fs.cancel = context.WithCancel(context.Background())
	fs.wg.Add(1)
	go fs.readLoop(f, r)

	fs.logger.Info("msg", "File source started",
		"component", "file_source",
		"path", fs.config.Path,
		"codec", fs.config.Codec,
		"gzip", compressed)
	return nil
}

func (fs *FileSource) Stop() {
	fs.stopOnce.Do(func() {
		if fs.cancel != nil {
			fs.cancel()
		}
		fs.wg.Wait()
		fs.closeSubscribers()

		fs.logger.Info("msg", "File source stopped",
			"component", "file_source",
			"path", fs.config.Path)
	})
}

// Done is closed once the file has been read to the end.
func (fs *FileSource) Done() <-chan struct{} {
	return fs.eof
}

func (fs *FileSource) GetStats() SourceStats {
	fs.mu.Lock()
	details := map[string]any{
		"path":  fs.config.Path,
		"codec": fs.config.Codec,
		"gzip":  fs.compressed,
	}
	if fs.readErr != nil {
		details["error"] = fs.readErr.Error()
	}
	fs.mu.Unlock()

	return fs.stats("file", details)
}

func (fs *FileSource) readLoop(f *os.File, r io.Reader) {
	defer fs.wg.Done()
	defer close(fs.eof)
	defer f.Close()
	if c, ok := r.(io.Closer); ok {
		defer c.Close()
	}

	d := &recordDecoder{
		codec:   fs.config.Codec,
		source:  fs.config.Path,
		now:     time.Now,
		invalid: fs.invalid,
		emit: func(entry core.LogEntry) bool {
			return fs.publishWait(entry, fs.ctx.Done())
		},
	}

	if err := d.decode(r); err != nil {
		fs.mu.Lock()
		fs.readErr = err
		fs.mu.Unlock()
		fs.logger.Error("msg", "Error reading file",
			"component", "file_source",
			"path", fs.config.Path,
			"error", err)
		return
	}

	fs.logger.Info("msg", "File source reached end of file",
		"component", "file_source",
		"path", fs.config.Path,
		"total_entries", fs.totalEntries.Load())
}

// openCompressed wraps r in a gzip reader when mode asks for it, or for
// "auto" when the stream starts with the gzip magic bytes.
func openCompressed(r io.Reader, mode string) (io.Reader, bool, error) {
	br := bufio.NewReader(r)

	switch mode {
	case config.CompressionNone:
		return br, false, nil
	case config.CompressionGzip:
	default:
		head, err := br.Peek(len(gzipMagic))
		if err != nil || head[0] != gzipMagic[0] || head[1] != gzipMagic[1] {
			return br, false, nil
		}
	}

	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, false, fmt.Errorf("invalid gzip stream: %w", err)
	}
	return zr, true, nil
}
