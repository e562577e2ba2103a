// FILE: fieldwisp/src/cmd/fieldwisp/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"fieldwisp/src/cmd/fieldwisp/commands"
	"fieldwisp/src/internal/config"
	"fieldwisp/src/internal/version"

	"github.com/lixenwraith/log"
)

const (
	statusInterval  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

var logger *log.Logger

func main() {
	// Subcommands run before any config or logger setup
	router := commands.NewCommandRouter()
	handled, err := router.Route(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if handled {
		os.Exit(0)
	}

	flagCfg, err := ParseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	InitOutputHandler(flagCfg.Quiet)

	if flagCfg.ShowVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	if flagCfg.ConfigFile != "" {
		os.Setenv("FIELDWISP_CONFIG_FILE", flagCfg.ConfigFile)
	}

	cfg, err := config.LoadWithCLI(flagCfg.ConfigArgs)
	if err != nil {
		if flagCfg.ConfigFile != "" && strings.Contains(err.Error(), "not found") {
			FatalError(2, "Config file not found: %s\n", flagCfg.ConfigFile)
		}
		FatalError(1, "Failed to load config: %v\n", err)
	}
	applyFlagOverrides(cfg, flagCfg)

	if err := initializeLogger(cfg); err != nil {
		FatalError(1, "Failed to initialize logger: %v\n", err)
	}
	defer shutdownLogger()

	logger.Info("msg", "fieldwisp starting",
		"version", version.String(),
		"config_file", config.GetConfigPath(),
		"log_output", cfg.Logging.Output,
		"pipelines", len(cfg.Pipelines))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, err := bootstrapService(ctx, cfg)
	if err != nil {
		logger.Error("msg", "Failed to bootstrap service", "error", err)
		shutdownLogger()
		os.Exit(1)
	}

	sh := NewSignalHandler(logger, func() { reportStatus(svc) })
	defer sh.Stop()

	if !cfg.DisableStatusReporter && os.Getenv("FIELDWISP_DISABLE_STATUS_REPORTER") != "1" {
		go statusReporter(ctx, svc, statusInterval)
	}

	// Finite inputs end the run on their own
	if sig := sh.Handle(ctx, svc.Drained()); sig != nil {
		logger.Info("msg", "Shutdown signal received, starting graceful shutdown...", "signal", sig)
	} else {
		logger.Info("msg", "All inputs drained, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		svc.Shutdown()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("msg", "Shutdown complete")
	case <-shutdownCtx.Done():
		logger.Error("msg", "Shutdown timeout exceeded - forcing exit")
		shutdownLogger()
		os.Exit(1)
	}
}

func shutdownLogger() {
	if logger != nil {
		if err := logger.Shutdown(2 * time.Second); err != nil {
			Error("Logger shutdown error: %v\n", err)
		}
	}
}
