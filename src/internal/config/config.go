// FILE: fieldwisp/src/internal/config/config.go
package config

// Config is the root of the fieldwisp configuration tree
type Config struct {
	// Suppresses all console output, including the logger
	Quiet bool `toml:"quiet"`

	// Disables the periodic status line
	DisableStatusReporter bool `toml:"disable_status_reporter"`

	// Logging of fieldwisp itself
	Logging *LogConfig `toml:"logging"`

	// Pipeline configurations
	Pipelines []PipelineConfig `toml:"pipelines"`
}

func defaults() *Config {
	return &Config{
		Logging: DefaultLogConfig(),
		Pipelines: []PipelineConfig{
			{
				Name: "default",
				Sources: []SourceConfig{
					{
						Type: "stdin",
						Stdin: &StdinSourceOptions{
							Codec:      CodecJSON,
							BufferSize: 1000,
						},
					},
				},
				Transform: &TransformConfig{},
				Format: &FormatConfig{
					Type: CodecJSON,
				},
				Sinks: []SinkConfig{
					{
						Type: "console",
						Console: &ConsoleSinkOptions{
							Target:     "stdout",
							BufferSize: 1000,
						},
					},
				},
			},
		},
	}
}
