// FILE: fieldwisp/src/internal/config/ratelimit.go
package config

// RateLimitPolicy defines the action to take when a rate limit is exceeded.
type RateLimitPolicy int

const (
	// PolicyPass allows all records through, effectively disabling the limiter.
	PolicyPass RateLimitPolicy = iota
	// PolicyDrop drops records that exceed the rate limit.
	PolicyDrop
)

// RateLimitConfig defines the configuration for pipeline-level rate limiting.
type RateLimitConfig struct {
	// Records allowed per second. 0 disables the limiter.
	Rate float64 `toml:"rate"`
	// Maximum burst. Defaults to Rate.
	Burst float64 `toml:"burst"`
	// "pass" or "drop"
	Policy string `toml:"policy"`
	// Maximum encoded size of a single record. 0 = no limit.
	MaxEntrySizeBytes int64 `toml:"max_entry_size_bytes"`
}
