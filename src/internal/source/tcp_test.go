// FILE: fieldwisp/src/internal/source/tcp_test.go
package source

import (
	"net"
	"strconv"
	"testing"
	"time"

	"fieldwisp/src/internal/config"
	"fieldwisp/src/internal/value"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func freePort(t *testing.T) int64 {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return int64(port)
}

func startTCPSource(t *testing.T, codec string) (*TCPSource, net.Conn) {
	t.Helper()
	s, err := NewTCPSource(&config.TCPSourceOptions{
		Host:       "127.0.0.1",
		Port:       freePort(t),
		Codec:      codec,
		BufferSize: 10,
	}, newTestLogger())
	require.NoError(t, err)
	require.NoError(t, s.Start())
	t.Cleanup(s.Stop)

	conn, err := net.DialTimeout("tcp", net.JoinHostPort("127.0.0.1", strconv.FormatInt(s.config.Port, 10)), 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return s, conn
}

func TestTCPSource_ForwardWithAck(t *testing.T) {
	s, conn := startTCPSource(t, config.CodecMsgpack)
	ch := s.Subscribe()

	rec := value.FromMap(value.MapOf(value.KV{Key: "insertId", Value: value.String("a")}))
	chunk := value.FromMap(value.MapOf(value.KV{Key: "chunk", Value: value.String("c-1")}))
	msg := msgpackRecords(t,
		value.Array(value.String("app.web"), value.Int(1591111124), rec),
		value.Array(value.String("app.db"), value.Array(value.Array(value.Int(1591111125), rec)), chunk),
	)

	// Split across writes to exercise partial buffering
	half := len(msg) / 2
	_, err := conn.Write(msg[:half])
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	_, err = conn.Write(msg[half:])
	require.NoError(t, err)

	entries := collect(t, ch, 2)
	assert.Equal(t, "app.web", entries[0].Source)
	assert.Equal(t, "app.db", entries[1].Source)
	assert.Equal(t, time.Unix(1591111125, 0).UTC(), entries[1].Time)
	assert.Equal(t, `{"insertId":"a"}`, payloadJSON(entries[1]))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ack map[string]string
	require.NoError(t, msgpack.NewDecoder(conn).Decode(&ack))
	assert.Equal(t, "c-1", ack["ack"])

	stats := s.GetStats()
	assert.Equal(t, "tcp", stats.Type)
	assert.Equal(t, uint64(2), stats.TotalEntries)
	assert.Equal(t, uint64(1), stats.Details["acks_sent"])
}

func TestTCPSource_JSONLines(t *testing.T) {
	s, conn := startTCPSource(t, config.CodecJSON)
	ch := s.Subscribe()

	_, err := conn.Write([]byte(`{"msg":"one"}` + "\n" + `{"msg":`))
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	_, err = conn.Write([]byte(`"two"}` + "\n" + `garbage` + "\n"))
	require.NoError(t, err)

	entries := collect(t, ch, 2)
	assert.Equal(t, `{"msg":"one"}`, payloadJSON(entries[0]))
	assert.Equal(t, `{"msg":"two"}`, payloadJSON(entries[1]))

	assert.Eventually(t, func() bool {
		return s.GetStats().InvalidEntries == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestForwardChunk(t *testing.T) {
	rec := value.FromMap(value.MapOf(value.KV{Key: "chunk", Value: value.String("in-record")}))
	opts := value.FromMap(value.MapOf(value.KV{Key: "chunk", Value: value.String("id")}))

	testCases := []struct {
		name  string
		input value.Value
		chunk string
		ok    bool
	}{
		{"MessageModeNoOption", value.Array(value.String("t"), value.Int(1), rec), "", false},
		{"MessageModeOption", value.Array(value.String("t"), value.Int(1), rec, opts), "id", true},
		{"ForwardModeOption", value.Array(value.String("t"), value.Array(), opts), "id", true},
		{"ForwardModeNoOption", value.Array(value.String("t"), value.Array()), "", false},
		{"NotArray", rec, "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			chunk, ok := forwardChunk(tc.input)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.chunk, chunk)
		})
	}
}
