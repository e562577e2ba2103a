// FILE: fieldwisp/src/internal/limit/limit_test.go
package limit

import (
	"testing"
	"time"

	"fieldwisp/src/internal/config"
	"fieldwisp/src/internal/core"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

func TestNewRateLimiter_Disabled(t *testing.T) {
	l, err := NewRateLimiter(config.RateLimitConfig{}, newTestLogger())
	require.NoError(t, err)
	assert.Nil(t, l)
	assert.True(t, l.Allow(core.LogEntry{RawSize: 1 << 30}))
	assert.Equal(t, false, l.GetStats()["enabled"])
}

func TestRateLimiter_PassPolicy(t *testing.T) {
	l, err := NewRateLimiter(config.RateLimitConfig{Rate: 1, Burst: 1, Policy: "pass"}, newTestLogger())
	require.NoError(t, err)
	require.NotNil(t, l)

	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow(core.LogEntry{}))
	}
	assert.Equal(t, "pass", l.GetStats()["policy"])
}

func TestRateLimiter_DropPolicy(t *testing.T) {
	l, err := NewRateLimiter(config.RateLimitConfig{Rate: 0.001, Burst: 3, Policy: "DROP"}, newTestLogger())
	require.NoError(t, err)

	allowed := 0
	for i := 0; i < 10; i++ {
		if l.Allow(core.LogEntry{}) {
			allowed++
		}
	}
	assert.Equal(t, 3, allowed)

	stats := l.GetStats()
	assert.Equal(t, uint64(7), stats["dropped_total"])
	assert.Equal(t, "drop", stats["policy"])
	assert.Equal(t, 3, stats["burst"])
}

func TestRateLimiter_SizeLimit(t *testing.T) {
	l, err := NewRateLimiter(config.RateLimitConfig{Policy: "drop", MaxEntrySizeBytes: 100}, newTestLogger())
	require.NoError(t, err)
	require.NotNil(t, l)

	assert.True(t, l.Allow(core.LogEntry{RawSize: 100}))
	assert.False(t, l.Allow(core.LogEntry{RawSize: 101}))
	assert.Equal(t, uint64(1), l.GetStats()["dropped_by_size_total"])
	_, hasTokens := l.GetStats()["tokens"]
	assert.False(t, hasTokens)
}

func TestClientLimiter(t *testing.T) {
	cl := NewClientLimiter(0.001, 2, time.Hour)
	defer cl.Stop()

	assert.True(t, cl.Allow("10.0.0.1"))
	assert.True(t, cl.Allow("10.0.0.1"))
	assert.False(t, cl.Allow("10.0.0.1"))

	// Buckets are independent per client
	assert.True(t, cl.Allow("10.0.0.2"))

	stats := cl.GetStats()
	assert.Equal(t, 2, stats["active_clients"])
	assert.Equal(t, uint64(1), stats["rejected_total"])

	cl.removeIdle(time.Now().Add(time.Second))
	assert.Equal(t, 0, cl.GetStats()["active_clients"])

	cl.Stop()
}
