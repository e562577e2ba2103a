// FILE: fieldwisp/src/cmd/fieldwisp/status.go
package main

import (
	"context"
	"fmt"
	"time"

	"fieldwisp/src/internal/config"
	"fieldwisp/src/internal/service"
	"fieldwisp/src/internal/source"
)

// Periodically logs service status
func statusReporter(ctx context.Context, svc *service.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reportStatus(svc)
		}
	}
}

// reportStatus logs one status line per pipeline
func reportStatus(svc *service.Service) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("msg", "Panic in status reporter",
				"component", "status_reporter",
				"panic", r)
		}
	}()

	stats := svc.GetGlobalStats()
	totalPipelines, ok := stats["total_pipelines"].(int)
	if !ok || totalPipelines == 0 {
		logger.Warn("msg", "No active pipelines in status report",
			"component", "status_reporter")
		return
	}

	pipelines, _ := stats["pipelines"].(map[string]any)
	for name, pipelineStats := range pipelines {
		if ps, ok := pipelineStats.(map[string]any); ok {
			logger.Info(pipelineStatusFields(name, ps)...)
		}
	}
}

// pipelineStatusFields flattens pipeline stats into logger key/value pairs
func pipelineStatusFields(name string, stats map[string]any) []any {
	fields := []any{
		"msg", "Pipeline status",
		"component", "status_reporter",
		"pipeline", name,
	}

	for _, key := range []string{
		"total_processed",
		"total_filtered",
		"total_dropped_rate_limit",
		"total_dropped_sink",
	} {
		if v, ok := stats[key].(uint64); ok {
			fields = append(fields, key, v)
		}
	}

	if sources, ok := stats["sources"].([]map[string]any); ok {
		var invalid uint64
		for _, src := range sources {
			if n, ok := src["invalid_entries"].(uint64); ok {
				invalid += n
			}
		}
		fields = append(fields, "invalid_records", invalid)
	}

	if sp, ok := stats["special"].(map[string]any); ok {
		for _, key := range []string{"rewritten", "insert_ids", "operations", "source_locations", "http_requests"} {
			if v, ok := sp[key].(uint64); ok {
				fields = append(fields, key, v)
			}
		}
	}

	return fields
}

// Logs where a pipeline reads from and writes to
func displayPipelineEndpoints(svc *service.Service, cfg config.PipelineConfig) {
	pipeline, err := svc.GetPipeline(cfg.Name)
	if err != nil {
		return
	}

	for i, sourceCfg := range cfg.Sources {
		switch sourceCfg.Type {
		case "http":
			addr := fmt.Sprintf("%s:%d", sourceCfg.HTTP.Host, sourceCfg.HTTP.Port)
			if h, ok := pipeline.Sources[i].(*source.HTTPSource); ok && h.Addr() != "" {
				addr = h.Addr()
			}
			logger.Info("msg", "HTTP source configured",
				"pipeline", cfg.Name,
				"source_index", i,
				"listen", addr,
				"ingest_url", fmt.Sprintf("http://%s%s", addr, sourceCfg.HTTP.IngestPath),
				"codec", sourceCfg.HTTP.Codec)

			if cl := sourceCfg.HTTP.ClientLimit; cl != nil && cl.Enabled {
				logger.Info("msg", "HTTP client limiting enabled",
					"pipeline", cfg.Name,
					"source_index", i,
					"requests_per_second", cl.RequestsPerSecond,
					"burst_size", cl.BurstSize)
			}

		case "tcp":
			logger.Info("msg", "TCP forward source configured",
				"pipeline", cfg.Name,
				"source_index", i,
				"listen", fmt.Sprintf("%s:%d", sourceCfg.TCP.Host, sourceCfg.TCP.Port),
				"codec", sourceCfg.TCP.Codec)

		case "file":
			logger.Info("msg", "File source configured",
				"pipeline", cfg.Name,
				"source_index", i,
				"path", sourceCfg.File.Path,
				"codec", sourceCfg.File.Codec)

		case "stdin":
			logger.Info("msg", "Stdin source configured",
				"pipeline", cfg.Name,
				"source_index", i,
				"codec", sourceCfg.Stdin.Codec)
		}
	}

	for i, sinkCfg := range cfg.Sinks {
		switch sinkCfg.Type {
		case "file":
			logger.Info("msg", "File sink configured",
				"pipeline", cfg.Name,
				"sink_index", i,
				"path", sinkCfg.File.Path,
				"compression", sinkCfg.File.Compression)
		case "console":
			logger.Info("msg", "Console sink configured",
				"pipeline", cfg.Name,
				"sink_index", i,
				"target", sinkCfg.Console.Target)
		}
	}

	if len(cfg.Filters) > 0 {
		logger.Info("msg", "Filters configured",
			"pipeline", cfg.Name,
			"filter_count", len(cfg.Filters))
	}
}
