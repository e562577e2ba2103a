// FILE: fieldwisp/src/cmd/fieldwisp/flags.go
package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"fieldwisp/src/cmd/fieldwisp/commands"

	"github.com/lixenwraith/log"
)

// FlagConfig holds the application flags that are not part of the config tree
type FlagConfig struct {
	ConfigFile            string
	ShowVersion           bool
	Quiet                 bool
	LogLevel              string
	LogOutput             string
	DisableStatusReporter bool

	// Remaining arguments, passed to the config loader as overrides
	ConfigArgs []string
}

// knownFlags maps flag names to whether they are boolean
var knownFlags = map[string]bool{
	"c":                       false,
	"config":                  false,
	"v":                       true,
	"version":                 true,
	"q":                       true,
	"quiet":                   true,
	"log-level":               false,
	"log-output":              false,
	"disable-status-reporter": true,
}

// ParseFlags splits args into application flags and config overrides
func ParseFlags(args []string) (*FlagConfig, error) {
	flagArgs, rest := commands.SplitArgs(args, knownFlags)

	cfg := &FlagConfig{ConfigArgs: rest}
	fs := flag.NewFlagSet("fieldwisp", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	fs.StringVar(&cfg.ConfigFile, "c", "", "Config file path")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "Suppress all console output")
	fs.BoolVar(&cfg.Quiet, "q", false, "Suppress all console output")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level")
	fs.StringVar(&cfg.LogOutput, "log-output", "", "Log output")
	fs.BoolVar(&cfg.DisableStatusReporter, "disable-status-reporter", false, "Disable periodic status reports")

	if err := fs.Parse(flagArgs); err != nil {
		return nil, err
	}

	if cfg.LogOutput != "" {
		validOutputs := map[string]bool{
			"file": true, "stdout": true, "stderr": true,
			"both": true, "none": true,
		}
		if !validOutputs[cfg.LogOutput] {
			return nil, fmt.Errorf("invalid log-output: %s (valid: file, stdout, stderr, both, none)", cfg.LogOutput)
		}
	}

	if cfg.LogLevel != "" {
		if _, err := parseLogLevel(cfg.LogLevel); err != nil {
			return nil, fmt.Errorf("invalid log-level: %s (valid: debug, info, warn, error)", cfg.LogLevel)
		}
	}

	return cfg, nil
}

func parseLogLevel(level string) (int, error) {
	switch strings.ToLower(level) {
	case "debug":
		return int(log.LevelDebug), nil
	case "info":
		return int(log.LevelInfo), nil
	case "warn", "warning":
		return int(log.LevelWarn), nil
	case "error":
		return int(log.LevelError), nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", level)
	}
}
