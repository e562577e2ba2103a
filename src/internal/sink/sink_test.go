// FILE: fieldwisp/src/internal/sink/sink_test.go
package sink

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fieldwisp/src/internal/config"
	"fieldwisp/src/internal/core"
	"fieldwisp/src/internal/format"
	"fieldwisp/src/internal/value"

	"github.com/klauspost/compress/gzip"
	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

func newJSONFormatter(t *testing.T) format.Formatter {
	t.Helper()
	f, err := format.New(&config.FormatConfig{Type: config.CodecJSON}, newTestLogger())
	require.NoError(t, err)
	return f
}

func entry(msg string) core.LogEntry {
	return core.LogEntry{
		Time:    time.Date(2020, 7, 21, 16, 40, 42, 0, time.UTC),
		Source:  "test",
		Payload: value.MapOf(value.KV{Key: "msg", Value: value.String(msg)}),
	}
}

func TestConsoleSink(t *testing.T) {
	logger := newTestLogger()

	t.Run("InvalidTarget", func(t *testing.T) {
		_, err := NewConsoleSink(&config.ConsoleSinkOptions{Target: "file"}, logger, newJSONFormatter(t))
		assert.Error(t, err)
	})

	t.Run("RequiresFormatter", func(t *testing.T) {
		_, err := NewConsoleSink(nil, logger, nil)
		assert.Error(t, err)
	})

	t.Run("WritesFormattedEntries", func(t *testing.T) {
		s, err := NewConsoleSink(&config.ConsoleSinkOptions{Target: "stdout", BufferSize: 10}, logger, newJSONFormatter(t))
		require.NoError(t, err)

		var out bytes.Buffer
		s.output = &out

		require.NoError(t, s.Start(context.Background()))
		s.Input() <- entry("one")
		s.Input() <- entry("two")
		s.Stop()

		assert.Equal(t,
			`["2020-07-21T16:40:42Z",{"msg":"one"}]`+"\n"+
				`["2020-07-21T16:40:42Z",{"msg":"two"}]`+"\n",
			out.String())

		stats := s.GetStats()
		assert.Equal(t, "console", stats.Type)
		assert.Equal(t, uint64(2), stats.TotalProcessed)
		assert.Equal(t, uint64(0), stats.FailedWrites)
		assert.Equal(t, "stdout", stats.Details["target"])
	})
}

func readGzip(t *testing.T, path string) string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(zr)
	require.NoError(t, err)
	return string(data)
}

func TestFileSink(t *testing.T) {
	logger := newTestLogger()

	t.Run("PlainAppend", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "out.log")
		opts := &config.FileSinkOptions{Path: path, Compression: config.CompressionNone, BufferSize: 10, FlushIntervalMS: 10}

		for _, msg := range []string{"first", "second"} {
			s, err := NewFileSink(opts, logger, newJSONFormatter(t))
			require.NoError(t, err)
			require.NoError(t, s.Start(context.Background()))
			s.Input() <- entry(msg)
			s.Stop()
		}

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], `"msg":"first"`)
		assert.Contains(t, lines[1], `"msg":"second"`)
	})

	t.Run("Gzip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.log.gz")
		s, err := NewFileSink(&config.FileSinkOptions{Path: path, Compression: config.CompressionGzip, BufferSize: 10, FlushIntervalMS: 10}, logger, newJSONFormatter(t))
		require.NoError(t, err)

		require.NoError(t, s.Start(context.Background()))
		for i := 0; i < 3; i++ {
			s.Input() <- entry("zipped")
		}
		s.Stop()

		content := readGzip(t, path)
		assert.Equal(t, 3, strings.Count(content, `{"msg":"zipped"}`))

		stats := s.GetStats()
		assert.Equal(t, "file", stats.Type)
		assert.Equal(t, uint64(3), stats.TotalProcessed)
		assert.Equal(t, uint64(len(content)), stats.Details["bytes_written"])
	})

	t.Run("PeriodicFlush", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.log")
		s, err := NewFileSink(&config.FileSinkOptions{Path: path, Compression: config.CompressionNone, BufferSize: 10, FlushIntervalMS: 10}, logger, newJSONFormatter(t))
		require.NoError(t, err)
		require.NoError(t, s.Start(context.Background()))
		defer s.Stop()

		s.Input() <- entry("flushed")
		assert.Eventually(t, func() bool {
			data, err := os.ReadFile(path)
			return err == nil && strings.Contains(string(data), "flushed")
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("NilOptions", func(t *testing.T) {
		_, err := NewFileSink(nil, logger, newJSONFormatter(t))
		assert.Error(t, err)
	})
}
