// FILE: fieldwisp/src/internal/source/tcp.go
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"fieldwisp/src/internal/config"
	"fieldwisp/src/internal/core"
	"fieldwisp/src/internal/value"

	"github.com/lixenwraith/log"
	"github.com/lixenwraith/log/compat"
	"github.com/panjf2000/gnet/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// TCPSource accepts forward protocol streams over TCP
type TCPSource struct {
	*fanout
	config   *config.TCPSourceOptions
	server   *tcpSourceServer
	engine   *gnet.Engine
	engineMu sync.Mutex
	booted   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	logger   *log.Logger

	activeConns atomic.Int64
	totalConns  atomic.Uint64
	acksSent    atomic.Uint64
}

func NewTCPSource(opts *config.TCPSourceOptions, logger *log.Logger) (*TCPSource, error) {
	if opts == nil {
		return nil, fmt.Errorf("tcp source options cannot be nil")
	}
	if opts.MaxConnectionBuffer <= 0 {
		opts.MaxConnectionBuffer = core.MaxRecordSize
	}

	t := &TCPSource{
		fanout: newFanout("tcp_source", opts.BufferSize, logger),
		config: opts,
		booted: make(chan struct{}),
		logger: logger,
	}
	t.server = &tcpSourceServer{source: t}
	return t, nil
}

func (t *TCPSource) Start() error {
	addr := fmt.Sprintf("tcp://%s:%d", t.config.Host, t.config.Port)
	gnetLogger := compat.NewGnetAdapter(t.logger)

	errChan := make(chan error, 1)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		err := gnet.Run(t.server, addr,
			gnet.WithLogger(gnetLogger),
			gnet.WithMulticore(true),
			gnet.WithReusePort(true),
		)
		if err != nil {
			t.logger.Error("msg", "TCP source server failed",
				"component", "tcp_source",
				"port", t.config.Port,
				"error", err)
		}
		errChan <- err
	}()

	select {
	case err := <-errChan:
		if err == nil {
			err = fmt.Errorf("tcp source server exited during start")
		}
		return err
	case <-t.booted:
		t.logger.Info("msg", "TCP source started",
			"component", "tcp_source",
			"addr", addr,
			"codec", t.config.Codec)
		return nil
	case <-time.After(5 * time.Second):
		return fmt.Errorf("tcp source server did not start on %s", addr)
	}
}

func (t *TCPSource) Stop() {
	t.stopOnce.Do(func() {
		t.logger.Info("msg", "Stopping TCP source", "component", "tcp_source")

		t.engineMu.Lock()
		engine := t.engine
		t.engineMu.Unlock()

		if engine != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := engine.Stop(ctx); err != nil {
				t.logger.Error("msg", "Error stopping TCP source engine",
					"component", "tcp_source",
					"error", err)
			}
			cancel()
		}

		t.wg.Wait()
		t.closeSubscribers()

		t.logger.Info("msg", "TCP source stopped", "component", "tcp_source")
	})
}

func (t *TCPSource) GetStats() SourceStats {
	return t.stats("tcp", map[string]any{
		"host":               t.config.Host,
		"port":               t.config.Port,
		"codec":              t.config.Codec,
		"active_connections": t.activeConns.Load(),
		"total_connections":  t.totalConns.Load(),
		"acks_sent":          t.acksSent.Load(),
	})
}

// tcpConn is the per-connection read state
type tcpConn struct {
	remote string
	buf    []byte
	lineNo int
}

// Handles gnet events
type tcpSourceServer struct {
	gnet.BuiltinEventEngine
	source *TCPSource
}

func (s *tcpSourceServer) OnBoot(eng gnet.Engine) gnet.Action {
	s.source.engineMu.Lock()
	s.source.engine = &eng
	s.source.engineMu.Unlock()
	close(s.source.booted)
	return gnet.None
}

func (s *tcpSourceServer) OnOpen(c gnet.Conn) ([]byte, gnet.Action) {
	st := &tcpConn{remote: c.RemoteAddr().String()}
	c.SetContext(st)

	active := s.source.activeConns.Add(1)
	s.source.totalConns.Add(1)
	s.source.logger.Debug("msg", "TCP connection opened",
		"component", "tcp_source",
		"remote_addr", st.remote,
		"active_connections", active)
	return nil, gnet.None
}

func (s *tcpSourceServer) OnClose(c gnet.Conn, err error) gnet.Action {
	active := s.source.activeConns.Add(-1)

	var remote string
	if st, ok := c.Context().(*tcpConn); ok {
		remote = st.remote
		if len(st.buf) > 0 {
			s.source.invalid(fmt.Errorf("connection from %s closed with %d unparsed bytes", remote, len(st.buf)))
		}
	}

	s.source.logger.Debug("msg", "TCP connection closed",
		"component", "tcp_source",
		"remote_addr", remote,
		"active_connections", active,
		"error", err)
	return gnet.None
}

func (s *tcpSourceServer) OnTraffic(c gnet.Conn) gnet.Action {
	st, ok := c.Context().(*tcpConn)
	if !ok {
		return gnet.Close
	}

	data, err := c.Next(-1)
	if err != nil {
		s.source.logger.Error("msg", "Error reading from connection",
			"component", "tcp_source",
			"remote_addr", st.remote,
			"error", err)
		return gnet.Close
	}

	if int64(len(st.buf)+len(data)) > s.source.config.MaxConnectionBuffer {
		s.source.logger.Warn("msg", "Connection buffer limit exceeded, closing connection",
			"component", "tcp_source",
			"remote_addr", st.remote,
			"buffer_size", len(st.buf),
			"incoming_size", len(data),
			"limit", s.source.config.MaxConnectionBuffer)
		st.buf = nil
		return gnet.Close
	}
	st.buf = append(st.buf, data...)

	d := &recordDecoder{
		codec:   s.source.config.Codec,
		source:  "tcp",
		now:     time.Now,
		invalid: s.source.invalid,
		emit: func(entry core.LogEntry) bool {
			s.source.publish(entry)
			return true
		},
	}

	if s.source.config.Codec == config.CodecMsgpack {
		if err := s.consumeMsgpack(c, st, d); err != nil {
			s.source.invalid(fmt.Errorf("%s: %w", st.remote, err))
			st.buf = nil
			return gnet.Close
		}
		return gnet.None
	}

	s.consumeLines(st, d)
	return gnet.None
}

// consumeLines decodes every complete line and keeps the trailing fragment
func (s *tcpSourceServer) consumeLines(st *tcpConn, d *recordDecoder) {
	end := bytes.LastIndexByte(st.buf, '\n')
	if end < 0 {
		return
	}

	for _, line := range bytes.Split(st.buf[:end], []byte{'\n'}) {
		st.lineNo++
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		v, err := value.ParseJSON(line)
		if err != nil {
			d.invalid(fmt.Errorf("%s line %d: %w", st.remote, st.lineNo, err))
			continue
		}
		_ = d.deliver(v, int64(len(line)))
	}
	st.buf = append(st.buf[:0], st.buf[end+1:]...)
}

// consumeMsgpack decodes every complete msgpack value, acknowledging chunks
// that request it. An incomplete trailing value stays buffered.
func (s *tcpSourceServer) consumeMsgpack(c gnet.Conn, st *tcpConn, d *recordDecoder) error {
	r := bytes.NewReader(st.buf)
	dec := msgpack.NewDecoder(r)
	consumed := 0

	for r.Len() > 0 {
		v, err := value.DecodeMsgpack(dec)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return fmt.Errorf("failed to decode msgpack record: %w", err)
		}

		next := len(st.buf) - r.Len()
		_ = d.deliver(v, int64(next-consumed))
		consumed = next

		if chunk, ok := forwardChunk(v); ok {
			ack, err := msgpack.Marshal(map[string]string{"ack": chunk})
			if err == nil {
				_ = c.AsyncWrite(ack, nil)
				s.source.acksSent.Add(1)
			}
		}
	}

	st.buf = append(st.buf[:0], st.buf[consumed:]...)
	return nil
}
