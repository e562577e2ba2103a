// FILE: fieldwisp/src/internal/config/pipeline.go
package config

// Record codecs shared by sources and formatters
const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

// Compression modes for file sources and sinks
const (
	CompressionNone = "none"
	CompressionGzip = "gzip"
	CompressionAuto = "auto"
)

// PipelineConfig represents a data processing pipeline
type PipelineConfig struct {
	// Pipeline identifier (used in logs and stats)
	Name string `toml:"name"`

	// Data sources for this pipeline
	Sources []SourceConfig `toml:"sources"`

	// Pipeline-level rate limiting, applied before filters
	RateLimit *RateLimitConfig `toml:"rate_limit"`

	// Filter chain, all stages must pass
	Filters []FilterConfig `toml:"filters"`

	// Special field promotion
	Transform *TransformConfig `toml:"transform"`

	// Output encoding shared by all sinks
	Format *FormatConfig `toml:"format"`

	// Output sinks for this pipeline
	Sinks []SinkConfig `toml:"sinks"`
}

// TransformConfig tunes the special field rewriter
type TransformConfig struct {
	// Disables the rewriter entirely; records pass through untouched
	Disabled bool `toml:"disabled"`

	// Special fields to leave in the payload: "insertId", "operation",
	// "sourceLocation", "httpRequest", "timestamp"
	Skip []string `toml:"skip"`

	// Logs the extraction report of every changed record at debug level
	LogReports bool `toml:"log_reports"`
}

// FormatConfig selects the output record encoding
type FormatConfig struct {
	// "json" or "msgpack"
	Type string `toml:"type"`

	// JSON only: render the envelope time as integer seconds instead of RFC3339
	TimeAsNumber bool `toml:"time_as_number"`
}

// SourceConfig represents an input data source. Exactly one of the typed
// option blocks must be set and it must match Type.
type SourceConfig struct {
	Type string `toml:"type"`

	Stdin *StdinSourceOptions `toml:"stdin,omitempty"`
	File  *FileSourceOptions  `toml:"file,omitempty"`
	HTTP  *HTTPSourceOptions  `toml:"http,omitempty"`
	TCP   *TCPSourceOptions   `toml:"tcp,omitempty"`
}

type StdinSourceOptions struct {
	Codec      string `toml:"codec"`
	BufferSize int64  `toml:"buffer_size"`
}

type FileSourceOptions struct {
	Path        string `toml:"path"`
	Codec       string `toml:"codec"`
	Compression string `toml:"compression"`
	BufferSize  int64  `toml:"buffer_size"`
}

type HTTPSourceOptions struct {
	Host               string `toml:"host"`
	Port               int64  `toml:"port"`
	IngestPath         string `toml:"ingest_path"`
	MaxRequestBodySize int64  `toml:"max_body_size"`
	ReadTimeout        int64  `toml:"read_timeout_ms"`
	WriteTimeout       int64  `toml:"write_timeout_ms"`
	// Used when the request Content-Type names neither codec
	Codec      string `toml:"codec"`
	BufferSize int64  `toml:"buffer_size"`

	// Per remote address request limiting
	ClientLimit *ClientLimitConfig `toml:"client_limit"`
}

// TCPSourceOptions configures a forward protocol listener. With the msgpack
// codec the stream carries Message and Forward mode arrays; with json it
// carries newline delimited records.
type TCPSourceOptions struct {
	Host       string `toml:"host"`
	Port       int64  `toml:"port"`
	Codec      string `toml:"codec"`
	BufferSize int64  `toml:"buffer_size"`

	// Upper bound on unparsed bytes held for one connection
	MaxConnectionBuffer int64 `toml:"max_connection_buffer"`
}

type ClientLimitConfig struct {
	Enabled            bool    `toml:"enabled"`
	RequestsPerSecond  float64 `toml:"requests_per_second"`
	BurstSize          int64   `toml:"burst_size"`
	CleanupIntervalSec int64   `toml:"cleanup_interval_sec"`
}

// SinkConfig represents an output destination
type SinkConfig struct {
	Type string `toml:"type"`

	Console *ConsoleSinkOptions `toml:"console,omitempty"`
	File    *FileSinkOptions    `toml:"file,omitempty"`
}

type ConsoleSinkOptions struct {
	// "stdout" or "stderr"
	Target     string `toml:"target"`
	BufferSize int64  `toml:"buffer_size"`
}

type FileSinkOptions struct {
	Path        string `toml:"path"`
	Compression string `toml:"compression"`
	BufferSize  int64  `toml:"buffer_size"`
	// Flush interval for buffered writes
	FlushIntervalMS int64 `toml:"flush_interval_ms"`
}
