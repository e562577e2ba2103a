// FILE: fieldwisp/src/internal/limit/client.go
package limit

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// ClientLimiter rate limits requests per remote address
type ClientLimiter struct {
	clients         sync.Map // map[string]*clientLimiter
	requestsPerSec  float64
	burstSize       int
	cleanupInterval time.Duration
	done            chan struct{}
	stopOnce        sync.Once

	rejected atomic.Uint64
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

// NewClientLimiter starts the idle client sweeper; call Stop to end it.
func NewClientLimiter(requestsPerSec float64, burstSize int, cleanupInterval time.Duration) *ClientLimiter {
	if burstSize < 1 {
		burstSize = 1
	}
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}

	cl := &ClientLimiter{
		requestsPerSec:  requestsPerSec,
		burstSize:       burstSize,
		cleanupInterval: cleanupInterval,
		done:            make(chan struct{}),
	}

	go cl.cleanup()

	return cl
}

// Allow consumes one token from the client's bucket.
func (cl *ClientLimiter) Allow(clientIP string) bool {
	if cl.getLimiter(clientIP).Allow() {
		return true
	}
	cl.rejected.Add(1)
	return false
}

func (cl *ClientLimiter) getLimiter(clientIP string) *rate.Limiter {
	now := time.Now().UnixNano()
	if val, ok := cl.clients.Load(clientIP); ok {
		client := val.(*clientLimiter)
		client.lastSeen.Store(now)
		return client.limiter
	}

	client := &clientLimiter{
		limiter: rate.NewLimiter(rate.Limit(cl.requestsPerSec), cl.burstSize),
	}
	client.lastSeen.Store(now)

	actual, _ := cl.clients.LoadOrStore(clientIP, client)
	return actual.(*clientLimiter).limiter
}

func (cl *ClientLimiter) cleanup() {
	ticker := time.NewTicker(cl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-cl.done:
			return
		case <-ticker.C:
			cl.removeIdle(time.Now().Add(-2 * cl.cleanupInterval))
		}
	}
}

func (cl *ClientLimiter) removeIdle(threshold time.Time) {
	cutoff := threshold.UnixNano()
	cl.clients.Range(func(key, value any) bool {
		if value.(*clientLimiter).lastSeen.Load() < cutoff {
			cl.clients.Delete(key)
		}
		return true
	})
}

// Stop ends the sweeper. Safe to call more than once.
func (cl *ClientLimiter) Stop() {
	cl.stopOnce.Do(func() { close(cl.done) })
}

func (cl *ClientLimiter) GetStats() map[string]any {
	count := 0
	cl.clients.Range(func(_, _ any) bool {
		count++
		return true
	})
	return map[string]any{
		"requests_per_second": cl.requestsPerSec,
		"burst_size":          cl.burstSize,
		"active_clients":      count,
		"rejected_total":      cl.rejected.Load(),
	}
}
