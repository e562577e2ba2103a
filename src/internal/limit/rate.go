// FILE: fieldwisp/src/internal/limit/rate.go
package limit

import (
	"strings"
	"sync/atomic"

	"fieldwisp/src/internal/config"
	"fieldwisp/src/internal/core"

	"github.com/lixenwraith/log"
	"golang.org/x/time/rate"
)

// RateLimiter enforces rate limits on log entries flowing through a pipeline.
// A nil *RateLimiter allows everything.
type RateLimiter struct {
	limiter *rate.Limiter
	policy  config.RateLimitPolicy
	logger  *log.Logger

	maxEntrySizeBytes int64

	// Statistics
	droppedBySizeCount atomic.Uint64
	droppedCount       atomic.Uint64
}

// NewRateLimiter returns nil when cfg disables limiting.
func NewRateLimiter(cfg config.RateLimitConfig, logger *log.Logger) (*RateLimiter, error) {
	if cfg.Rate <= 0 && cfg.MaxEntrySizeBytes <= 0 {
		return nil, nil
	}

	var policy config.RateLimitPolicy
	switch strings.ToLower(cfg.Policy) {
	case "drop":
		policy = config.PolicyDrop
	default:
		policy = config.PolicyPass
	}

	l := &RateLimiter{
		policy:            policy,
		logger:            logger,
		maxEntrySizeBytes: cfg.MaxEntrySizeBytes,
	}

	if cfg.Rate > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = cfg.Rate
		}
		if burst < 1 {
			burst = 1
		}
		l.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), int(burst))
	}

	logger.Debug("msg", "Rate limiter created",
		"component", "rate_limiter",
		"rate", cfg.Rate,
		"burst", cfg.Burst,
		"policy", policyString(policy),
		"max_entry_size_bytes", cfg.MaxEntrySizeBytes)

	return l, nil
}

// Allow checks if a log entry is permitted to pass based on the rate limit.
func (l *RateLimiter) Allow(entry core.LogEntry) bool {
	if l == nil || l.policy == config.PolicyPass {
		return true
	}

	if l.maxEntrySizeBytes > 0 && entry.RawSize > l.maxEntrySizeBytes {
		l.droppedBySizeCount.Add(1)
		return false
	}

	if l.limiter != nil && !l.limiter.Allow() {
		l.droppedCount.Add(1)
		return false
	}

	return true
}

// GetStats returns statistics for the rate limiter.
func (l *RateLimiter) GetStats() map[string]any {
	if l == nil {
		return map[string]any{
			"enabled": false,
		}
	}

	stats := map[string]any{
		"enabled":               true,
		"dropped_total":         l.droppedCount.Load(),
		"dropped_by_size_total": l.droppedBySizeCount.Load(),
		"policy":                policyString(l.policy),
		"max_entry_size_bytes":  l.maxEntrySizeBytes,
	}

	if l.limiter != nil {
		stats["tokens"] = l.limiter.Tokens()
		stats["rate"] = float64(l.limiter.Limit())
		stats["burst"] = l.limiter.Burst()
	}

	return stats
}

func policyString(p config.RateLimitPolicy) string {
	switch p {
	case config.PolicyDrop:
		return "drop"
	case config.PolicyPass:
		return "pass"
	default:
		return "unknown"
	}
}
