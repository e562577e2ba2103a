// FILE: fieldwisp/src/cmd/fieldwisp/bootstrap.go
package main

import (
	"context"
	"fmt"

	"fieldwisp/src/internal/config"
	"fieldwisp/src/internal/service"
	"fieldwisp/src/internal/version"

	"github.com/lixenwraith/log"
)

// bootstrapService creates the service and starts every configured pipeline
func bootstrapService(ctx context.Context, cfg *config.Config) (*service.Service, error) {
	svc := service.NewService(ctx, logger)

	successCount := 0
	for i := range cfg.Pipelines {
		pipelineCfg := &cfg.Pipelines[i]
		logger.Info("msg", "Initializing pipeline", "pipeline", pipelineCfg.Name)

		if err := svc.NewPipeline(pipelineCfg); err != nil {
			logger.Error("msg", "Failed to create pipeline",
				"pipeline", pipelineCfg.Name,
				"error", err)
			continue
		}

		successCount++
		displayPipelineEndpoints(svc, *pipelineCfg)
	}

	if successCount == 0 {
		return nil, fmt.Errorf("no pipelines successfully started (attempted %d)", len(cfg.Pipelines))
	}

	logger.Info("msg", "fieldwisp started",
		"version", version.Short(),
		"pipelines", successCount)

	return svc, nil
}

// applyFlagOverrides folds application flags into the loaded config
func applyFlagOverrides(cfg *config.Config, flagCfg *FlagConfig) {
	if flagCfg.Quiet {
		cfg.Quiet = true
	}
	if flagCfg.DisableStatusReporter {
		cfg.DisableStatusReporter = true
	}
	if flagCfg.LogLevel != "" {
		cfg.Logging.Level = flagCfg.LogLevel
	}
	if flagCfg.LogOutput != "" {
		cfg.Logging.Output = flagCfg.LogOutput
	}
}

// initializeLogger sets up the logger based on configuration
func initializeLogger(cfg *config.Config) error {
	logger = log.NewLogger()

	configArgs, err := loggerArgs(cfg)
	if err != nil {
		return err
	}
	return logger.InitWithDefaults(configArgs...)
}

// loggerArgs translates the logging section into logger init arguments
func loggerArgs(cfg *config.Config) ([]string, error) {
	var configArgs []string

	if cfg.Quiet {
		// In quiet mode, disable ALL logging output
		return append(configArgs,
			"disable_file=true",
			"enable_stdout=false",
			"level=255"), nil
	}

	levelValue, err := parseLogLevel(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	configArgs = append(configArgs, fmt.Sprintf("level=%d", levelValue))

	switch cfg.Logging.Output {
	case "none":
		configArgs = append(configArgs, "disable_file=true", "enable_stdout=false")

	case "stdout":
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=true",
			"stdout_target=stdout")

	case "stderr":
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=true",
			"stdout_target=stderr")

	case "file":
		configArgs = append(configArgs, "enable_stdout=false")
		configArgs = appendFileLogging(configArgs, cfg)

	case "both":
		configArgs = append(configArgs, "enable_stdout=true")
		configArgs = appendFileLogging(configArgs, cfg)
		configArgs = appendConsoleTarget(configArgs, cfg)

	default:
		return nil, fmt.Errorf("invalid log output mode: %s", cfg.Logging.Output)
	}

	if cfg.Logging.Console != nil && cfg.Logging.Console.Format != "" {
		configArgs = append(configArgs, fmt.Sprintf("format=%s", cfg.Logging.Console.Format))
	}

	return configArgs, nil
}

func appendFileLogging(configArgs []string, cfg *config.Config) []string {
	if cfg.Logging.File == nil {
		return configArgs
	}

	configArgs = append(configArgs,
		fmt.Sprintf("directory=%s", cfg.Logging.File.Directory),
		fmt.Sprintf("name=%s", cfg.Logging.File.Name),
		fmt.Sprintf("max_size_mb=%d", cfg.Logging.File.MaxSizeMB),
		fmt.Sprintf("max_total_size_mb=%d", cfg.Logging.File.MaxTotalSizeMB))

	if cfg.Logging.File.RetentionHours > 0 {
		configArgs = append(configArgs,
			fmt.Sprintf("retention_period_hrs=%.1f", cfg.Logging.File.RetentionHours))
	}
	return configArgs
}

func appendConsoleTarget(configArgs []string, cfg *config.Config) []string {
	target := "stderr"
	if cfg.Logging.Console != nil && cfg.Logging.Console.Target != "" {
		target = cfg.Logging.Console.Target
	}

	if target == "split" {
		return append(configArgs, "stdout_split_mode=true", "stdout_target=split")
	}
	return append(configArgs, fmt.Sprintf("stdout_target=%s", target))
}
