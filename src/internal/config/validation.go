// FILE: fieldwisp/src/internal/config/validation.go
package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"fieldwisp/src/internal/core"
	"fieldwisp/src/internal/special"

	lconfig "github.com/lixenwraith/config"
)

// validateConfig checks the whole tree and fills per-component defaults
func validateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if len(cfg.Pipelines) == 0 {
		return fmt.Errorf("no pipelines configured")
	}

	if err := validateLogConfig(cfg.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	allPorts := make(map[int64]string)
	pipelineNames := make(map[string]bool)

	for i := range cfg.Pipelines {
		if err := validatePipeline(i, &cfg.Pipelines[i], pipelineNames, allPorts); err != nil {
			return err
		}
	}

	return nil
}

func validatePipeline(index int, p *PipelineConfig, pipelineNames map[string]bool, allPorts map[int64]string) error {
	if err := lconfig.NonEmpty(p.Name); err != nil {
		return fmt.Errorf("pipeline %d: missing name", index)
	}

	if pipelineNames[p.Name] {
		return fmt.Errorf("pipeline %d: duplicate name '%s'", index, p.Name)
	}
	pipelineNames[p.Name] = true

	if len(p.Sources) == 0 {
		return fmt.Errorf("pipeline '%s': no sources specified", p.Name)
	}

	stdinCount := 0
	for j := range p.Sources {
		if err := validateSourceConfig(p.Name, j, &p.Sources[j], allPorts); err != nil {
			return err
		}
		if p.Sources[j].Type == "stdin" {
			stdinCount++
		}
	}
	if stdinCount > 1 {
		return fmt.Errorf("pipeline '%s': stdin can only be read by one source", p.Name)
	}

	if p.RateLimit != nil {
		if err := validateRateLimit(p.Name, p.RateLimit); err != nil {
			return err
		}
	}

	for j := range p.Filters {
		if err := validateFilter(p.Name, j, &p.Filters[j]); err != nil {
			return err
		}
	}

	if err := validateTransform(p); err != nil {
		return fmt.Errorf("pipeline '%s': %w", p.Name, err)
	}

	if err := validateFormatterConfig(p); err != nil {
		return fmt.Errorf("pipeline '%s': %w", p.Name, err)
	}

	if len(p.Sinks) == 0 {
		return fmt.Errorf("pipeline '%s': no sinks specified", p.Name)
	}

	for j := range p.Sinks {
		if err := validateSinkConfig(p.Name, j, &p.Sinks[j]); err != nil {
			return err
		}
	}

	return nil
}

// validateSourceConfig validates typed source configuration
func validateSourceConfig(pipelineName string, index int, s *SourceConfig, allPorts map[int64]string) error {
	if err := lconfig.NonEmpty(s.Type); err != nil {
		return fmt.Errorf("pipeline '%s' source[%d]: missing type", pipelineName, index)
	}

	populated := 0
	var populatedType string

	if s.Stdin != nil {
		populated++
		populatedType = "stdin"
	}
	if s.File != nil {
		populated++
		populatedType = "file"
	}
	if s.HTTP != nil {
		populated++
		populatedType = "http"
	}
	if s.TCP != nil {
		populated++
		populatedType = "tcp"
	}

	if populated == 0 {
		return fmt.Errorf("pipeline '%s' source[%d]: no configuration provided for type '%s'",
			pipelineName, index, s.Type)
	}
	if populated > 1 {
		return fmt.Errorf("pipeline '%s' source[%d]: multiple configurations provided, only one allowed",
			pipelineName, index)
	}
	if populatedType != s.Type {
		return fmt.Errorf("pipeline '%s' source[%d]: type mismatch - type is '%s' but config is for '%s'",
			pipelineName, index, s.Type, populatedType)
	}

	switch s.Type {
	case "stdin":
		return validateStdinSource(pipelineName, index, s.Stdin)
	case "file":
		return validateFileSource(pipelineName, index, s.File)
	case "http":
		return validateHTTPSource(pipelineName, index, s.HTTP, allPorts)
	case "tcp":
		return validateTCPSource(pipelineName, index, s.TCP, allPorts)
	default:
		return fmt.Errorf("pipeline '%s' source[%d]: unknown type '%s'", pipelineName, index, s.Type)
	}
}

func validateStdinSource(pipelineName string, index int, opts *StdinSourceOptions) error {
	if err := validateBufferSize(&opts.BufferSize, core.DefaultSourceBufferSize); err != nil {
		return fmt.Errorf("pipeline '%s' source[%d]: %w", pipelineName, index, err)
	}
	if err := validateCodec(&opts.Codec); err != nil {
		return fmt.Errorf("pipeline '%s' source[%d]: %w", pipelineName, index, err)
	}
	return nil
}

func validateFileSource(pipelineName string, index int, opts *FileSourceOptions) error {
	if err := lconfig.NonEmpty(opts.Path); err != nil {
		return fmt.Errorf("pipeline '%s' source[%d]: file requires 'path'", pipelineName, index)
	}
	absPath, err := filepath.Abs(opts.Path)
	if err != nil {
		return fmt.Errorf("pipeline '%s' source[%d]: invalid path %s: %w", pipelineName, index, opts.Path, err)
	}
	opts.Path = absPath

	if err := validateCompression(&opts.Compression, CompressionAuto); err != nil {
		return fmt.Errorf("pipeline '%s' source[%d]: %w", pipelineName, index, err)
	}
	if err := validateBufferSize(&opts.BufferSize, core.DefaultSourceBufferSize); err != nil {
		return fmt.Errorf("pipeline '%s' source[%d]: %w", pipelineName, index, err)
	}
	if err := validateCodec(&opts.Codec); err != nil {
		return fmt.Errorf("pipeline '%s' source[%d]: %w", pipelineName, index, err)
	}
	return nil
}

func validateHTTPSource(pipelineName string, index int, opts *HTTPSourceOptions, allPorts map[int64]string) error {
	if err := lconfig.Port(opts.Port); err != nil {
		return fmt.Errorf("pipeline '%s' source[%d]: %w", pipelineName, index, err)
	}

	owner := fmt.Sprintf("pipeline '%s' source[%d]", pipelineName, index)
	if existing, exists := allPorts[opts.Port]; exists {
		return fmt.Errorf("%s: port %d already used by %s", owner, opts.Port, existing)
	}
	allPorts[opts.Port] = owner

	if opts.Host == "" {
		opts.Host = "0.0.0.0"
	}
	if opts.IngestPath == "" {
		opts.IngestPath = "/ingest"
	}
	if opts.MaxRequestBodySize <= 0 {
		opts.MaxRequestBodySize = core.MaxRecordSize
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 5000
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5000
	}

	if opts.Host != "0.0.0.0" {
		if err := lconfig.IPAddress(opts.Host); err != nil {
			return fmt.Errorf("%s: %w", owner, err)
		}
	}

	if !strings.HasPrefix(opts.IngestPath, "/") {
		return fmt.Errorf("%s: ingest_path must start with /", owner)
	}

	if err := validateBufferSize(&opts.BufferSize, core.DefaultSourceBufferSize); err != nil {
		return fmt.Errorf("%s: %w", owner, err)
	}
	if err := validateCodec(&opts.Codec); err != nil {
		return fmt.Errorf("%s: %w", owner, err)
	}

	if cl := opts.ClientLimit; cl != nil && cl.Enabled {
		if cl.RequestsPerSecond <= 0 {
			return fmt.Errorf("%s: client_limit requests_per_second must be positive", owner)
		}
		if cl.BurstSize < 0 || cl.CleanupIntervalSec < 0 {
			return fmt.Errorf("%s: client_limit burst and cleanup interval cannot be negative", owner)
		}
		if cl.BurstSize == 0 {
			cl.BurstSize = int64(cl.RequestsPerSecond) + 1
		}
		if cl.CleanupIntervalSec == 0 {
			cl.CleanupIntervalSec = 60
		}
	}
	return nil
}

func validateTCPSource(pipelineName string, index int, opts *TCPSourceOptions, allPorts map[int64]string) error {
	if err := lconfig.Port(opts.Port); err != nil {
		return fmt.Errorf("pipeline '%s' source[%d]: %w", pipelineName, index, err)
	}

	owner := fmt.Sprintf("pipeline '%s' source[%d]", pipelineName, index)
	if existing, exists := allPorts[opts.Port]; exists {
		return fmt.Errorf("%s: port %d already used by %s", owner, opts.Port, existing)
	}
	allPorts[opts.Port] = owner

	if opts.Host == "" {
		opts.Host = "0.0.0.0"
	}
	if opts.Host != "0.0.0.0" {
		if err := lconfig.IPAddress(opts.Host); err != nil {
			return fmt.Errorf("%s: %w", owner, err)
		}
	}

	if opts.Codec == "" {
		opts.Codec = CodecMsgpack
	}
	if err := validateCodec(&opts.Codec); err != nil {
		return fmt.Errorf("%s: %w", owner, err)
	}
	if err := validateBufferSize(&opts.BufferSize, core.DefaultSourceBufferSize); err != nil {
		return fmt.Errorf("%s: %w", owner, err)
	}

	if opts.MaxConnectionBuffer < 0 {
		return fmt.Errorf("%s: max_connection_buffer cannot be negative", owner)
	} else if opts.MaxConnectionBuffer == 0 {
		opts.MaxConnectionBuffer = core.MaxRecordSize
	}
	return nil
}

func validateSinkConfig(pipelineName string, index int, s *SinkConfig) error {
	if err := lconfig.NonEmpty(s.Type); err != nil {
		return fmt.Errorf("pipeline '%s' sink[%d]: missing type", pipelineName, index)
	}

	populated := 0
	var populatedType string

	if s.Console != nil {
		populated++
		populatedType = "console"
	}
	if s.File != nil {
		populated++
		populatedType = "file"
	}

	if populated == 0 {
		return fmt.Errorf("pipeline '%s' sink[%d]: no configuration provided for type '%s'",
			pipelineName, index, s.Type)
	}
	if populated > 1 {
		return fmt.Errorf("pipeline '%s' sink[%d]: multiple configurations provided, only one allowed",
			pipelineName, index)
	}
	if populatedType != s.Type {
		return fmt.Errorf("pipeline '%s' sink[%d]: type mismatch - type is '%s' but config is for '%s'",
			pipelineName, index, s.Type, populatedType)
	}

	switch s.Type {
	case "console":
		return validateConsoleSink(pipelineName, index, s.Console)
	case "file":
		return validateFileSink(pipelineName, index, s.File)
	default:
		return fmt.Errorf("pipeline '%s' sink[%d]: unknown type '%s'", pipelineName, index, s.Type)
	}
}

func validateConsoleSink(pipelineName string, index int, opts *ConsoleSinkOptions) error {
	switch opts.Target {
	case "":
		opts.Target = "stdout"
	case "stdout", "stderr":
	default:
		return fmt.Errorf("pipeline '%s' sink[%d]: invalid console target '%s' (must be 'stdout' or 'stderr')",
			pipelineName, index, opts.Target)
	}
	if err := validateBufferSize(&opts.BufferSize, core.DefaultSinkBufferSize); err != nil {
		return fmt.Errorf("pipeline '%s' sink[%d]: %w", pipelineName, index, err)
	}
	return nil
}

func validateFileSink(pipelineName string, index int, opts *FileSinkOptions) error {
	if err := lconfig.NonEmpty(opts.Path); err != nil {
		return fmt.Errorf("pipeline '%s' sink[%d]: file requires 'path'", pipelineName, index)
	}
	if err := validateCompression(&opts.Compression, CompressionNone); err != nil {
		return fmt.Errorf("pipeline '%s' sink[%d]: %w", pipelineName, index, err)
	}
	if opts.Compression == CompressionAuto {
		if strings.HasSuffix(opts.Path, ".gz") {
			opts.Compression = CompressionGzip
		} else {
			opts.Compression = CompressionNone
		}
	}
	if err := validateBufferSize(&opts.BufferSize, core.DefaultSinkBufferSize); err != nil {
		return fmt.Errorf("pipeline '%s' sink[%d]: %w", pipelineName, index, err)
	}
	if opts.FlushIntervalMS < 0 {
		return fmt.Errorf("pipeline '%s' sink[%d]: flush_interval_ms cannot be negative", pipelineName, index)
	} else if opts.FlushIntervalMS == 0 {
		opts.FlushIntervalMS = 1000
	}
	return nil
}

func validateTransform(p *PipelineConfig) error {
	if p.Transform == nil {
		p.Transform = &TransformConfig{}
	}
	if _, err := special.OptionsWithSkip(p.Transform.Skip); err != nil {
		return fmt.Errorf("transform: %w", err)
	}
	return nil
}

func validateFormatterConfig(p *PipelineConfig) error {
	if p.Format == nil {
		p.Format = &FormatConfig{Type: CodecJSON}
	} else if p.Format.Type == "" {
		p.Format.Type = CodecJSON
	}

	switch p.Format.Type {
	case CodecJSON:
	case CodecMsgpack:
		if p.Format.TimeAsNumber {
			return fmt.Errorf("format: time_as_number only applies to json")
		}
	default:
		return fmt.Errorf("format: unknown type '%s' (must be 'json' or 'msgpack')", p.Format.Type)
	}
	return nil
}

func validateRateLimit(pipelineName string, cfg *RateLimitConfig) error {
	if cfg == nil {
		return nil
	}

	if cfg.Rate < 0 {
		return fmt.Errorf("pipeline '%s': rate limit rate cannot be negative", pipelineName)
	}

	if cfg.Burst < 0 {
		return fmt.Errorf("pipeline '%s': rate limit burst cannot be negative", pipelineName)
	}

	if cfg.MaxEntrySizeBytes < 0 {
		return fmt.Errorf("pipeline '%s': max entry size bytes cannot be negative", pipelineName)
	}

	switch strings.ToLower(cfg.Policy) {
	case "", "pass", "drop":
	default:
		return fmt.Errorf("pipeline '%s': invalid rate limit policy '%s' (must be 'pass' or 'drop')",
			pipelineName, cfg.Policy)
	}

	return nil
}

func validateFilter(pipelineName string, filterIndex int, cfg *FilterConfig) error {
	switch cfg.Type {
	case FilterTypeInclude, FilterTypeExclude, "":
	default:
		return fmt.Errorf("pipeline '%s' filter[%d]: invalid type '%s' (must be 'include' or 'exclude')",
			pipelineName, filterIndex, cfg.Type)
	}

	switch cfg.Logic {
	case FilterLogicOr, FilterLogicAnd, "":
	default:
		return fmt.Errorf("pipeline '%s' filter[%d]: invalid logic '%s' (must be 'or' or 'and')",
			pipelineName, filterIndex, cfg.Logic)
	}

	// Empty patterns is valid - passes everything
	for i, pattern := range cfg.Patterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("pipeline '%s' filter[%d] pattern[%d] '%s': invalid regex: %w",
				pipelineName, filterIndex, i, pattern, err)
		}
	}

	return nil
}

func validateCodec(codec *string) error {
	switch *codec {
	case "":
		*codec = CodecJSON
	case CodecJSON, CodecMsgpack:
	default:
		return fmt.Errorf("unknown codec '%s' (must be 'json' or 'msgpack')", *codec)
	}
	return nil
}

func validateCompression(mode *string, def string) error {
	switch *mode {
	case "":
		*mode = def
	case CompressionNone, CompressionGzip, CompressionAuto:
	default:
		return fmt.Errorf("unknown compression '%s' (must be 'none', 'gzip' or 'auto')", *mode)
	}
	return nil
}

func validateBufferSize(size *int64, def int64) error {
	if *size < 0 {
		return fmt.Errorf("buffer_size must be positive")
	} else if *size == 0 {
		*size = def
	}
	return nil
}
