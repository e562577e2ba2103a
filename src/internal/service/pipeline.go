// FILE: fieldwisp/src/internal/service/pipeline.go
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"fieldwisp/src/internal/config"
	"fieldwisp/src/internal/core"
	"fieldwisp/src/internal/filter"
	"fieldwisp/src/internal/format"
	"fieldwisp/src/internal/limit"
	"fieldwisp/src/internal/sink"
	"fieldwisp/src/internal/source"
	"fieldwisp/src/internal/special"

	"github.com/lixenwraith/log"
)

// Manages the flow of data from sources through the special field rewriter
// and filters to sinks
type Pipeline struct {
	Config      *config.PipelineConfig
	Sources     []source.Source
	RateLimiter *limit.RateLimiter
	FilterChain *filter.Chain
	Rewriter    *special.Rewriter
	Sinks       []sink.Sink
	Stats       *PipelineStats
	logger      *log.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	drained chan struct{}

	shutdownOnce sync.Once
}

// Contains statistics for a pipeline
type PipelineStats struct {
	StartTime                      time.Time
	TotalEntriesProcessed          atomic.Uint64
	TotalEntriesDroppedByRateLimit atomic.Uint64
	TotalEntriesFiltered           atomic.Uint64
	TotalEntriesDroppedBySink      atomic.Uint64
	Special                        special.Stats
}

// finiteSource is implemented by sources that reach an end of input
type finiteSource interface {
	Done() <-chan struct{}
}

// Creates and starts a new pipeline
func (s *Service) NewPipeline(cfg *config.PipelineConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pipelines[cfg.Name]; exists {
		err := fmt.Errorf("pipeline '%s' already exists", cfg.Name)
		s.logger.Error("msg", "Failed to create pipeline - duplicate name",
			"component", "service",
			"pipeline", cfg.Name,
			"error", err)
		return err
	}

	s.logger.Debug("msg", "Creating pipeline", "pipeline", cfg.Name)

	pipelineCtx, pipelineCancel := context.WithCancel(s.ctx)

	pipeline := &Pipeline{
		Config: cfg,
		Stats: &PipelineStats{
			StartTime: time.Now(),
		},
		ctx:     pipelineCtx,
		cancel:  pipelineCancel,
		drained: make(chan struct{}),
		logger:  s.logger,
	}

	// Create sources
	for i := range cfg.Sources {
		src, err := s.createSource(&cfg.Sources[i])
		if err != nil {
			pipelineCancel()
			return fmt.Errorf("failed to create source[%d]: %w", i, err)
		}
		pipeline.Sources = append(pipeline.Sources, src)
	}

	// Create pipeline rate limiter
	if cfg.RateLimit != nil {
		limiter, err := limit.NewRateLimiter(*cfg.RateLimit, s.logger)
		if err != nil {
			pipelineCancel()
			return fmt.Errorf("failed to create pipeline rate limiter: %w", err)
		}
		pipeline.RateLimiter = limiter
	}

	// Create filter chain
	if len(cfg.Filters) > 0 {
		chain, err := filter.NewChain(cfg.Filters, s.logger)
		if err != nil {
			pipelineCancel()
			return fmt.Errorf("failed to create filter chain: %w", err)
		}
		pipeline.FilterChain = chain
	}

	// Create special field rewriter
	if cfg.Transform == nil || !cfg.Transform.Disabled {
		var skip []string
		if cfg.Transform != nil {
			skip = cfg.Transform.Skip
		}
		opts, err := special.OptionsWithSkip(skip)
		if err != nil {
			pipelineCancel()
			return fmt.Errorf("failed to create rewriter: %w", err)
		}
		pipeline.Rewriter = special.NewRewriter(opts)
	}

	// Create formatter for the pipeline
	formatter, err := format.New(cfg.Format, s.logger)
	if err != nil {
		pipelineCancel()
		return fmt.Errorf("failed to create formatter: %w", err)
	}

	// Create sinks
	for i, sinkCfg := range cfg.Sinks {
		sinkInst, err := s.createSink(sinkCfg, formatter)
		if err != nil {
			pipelineCancel()
			pipeline.stopSinks()
			return fmt.Errorf("failed to create sink[%d]: %w", i, err)
		}
		pipeline.Sinks = append(pipeline.Sinks, sinkInst)
	}

	// Start sinks before sources so nothing is produced without a consumer
	for i, sinkInst := range pipeline.Sinks {
		if err := sinkInst.Start(pipelineCtx); err != nil {
			pipeline.Shutdown()
			return fmt.Errorf("failed to start sink[%d]: %w", i, err)
		}
	}

	// Wire sources to sinks through filters and rewriter
	s.wirePipeline(pipeline)

	// Start all sources
	for i, src := range pipeline.Sources {
		if err := src.Start(); err != nil {
			pipeline.Shutdown()
			return fmt.Errorf("failed to start source[%d]: %w", i, err)
		}
	}

	pipeline.watchDrain()

	s.pipelines[cfg.Name] = pipeline
	s.logger.Info("msg", "Pipeline created successfully",
		"pipeline", cfg.Name,
		"sources", len(pipeline.Sources),
		"sinks", len(pipeline.Sinks),
		"rewrite", pipeline.Rewriter != nil)
	return nil
}

// process runs one entry through rate limiting, special field promotion and
// filtering. The returned bool is false when the entry was dropped.
func (p *Pipeline) process(entry core.LogEntry) (core.LogEntry, bool) {
	p.Stats.TotalEntriesProcessed.Add(1)

	if p.RateLimiter != nil {
		if !p.RateLimiter.Allow(entry) {
			p.Stats.TotalEntriesDroppedByRateLimit.Add(1)
			return entry, false
		}
	}

	if p.Rewriter != nil {
		out, rep := p.Rewriter.Rewrite(entry)
		p.Stats.Special.Record(rep)

		if p.Config.Transform != nil && p.Config.Transform.LogReports && rep.Changed() {
			p.logger.Debug("msg", "Special fields promoted",
				"pipeline", p.Config.Name,
				"source", entry.Source,
				"insert_id", rep.InsertID.Valid(),
				"operation", rep.Operation.Found,
				"source_location", rep.SourceLocation.Found,
				"http_request", rep.HTTPRequest.Found,
				"timestamp", rep.Timestamp.Status.String())
		}
		entry = out
	}

	// Filters run on the rewritten entry so field filters can match
	// promoted fields
	if p.FilterChain != nil {
		if !p.FilterChain.Apply(entry) {
			p.Stats.TotalEntriesFiltered.Add(1)
			return entry, false
		}
	}

	return entry, true
}

// Drained is closed once every source has reached the end of its input and
// all of its entries have been handed to the sinks. It never closes for a
// pipeline with a long-running source such as http.
func (p *Pipeline) Drained() <-chan struct{} {
	return p.drained
}

func (p *Pipeline) watchDrain() {
	finite := make([]finiteSource, 0, len(p.Sources))
	for _, src := range p.Sources {
		fs, ok := src.(finiteSource)
		if !ok {
			return
		}
		finite = append(finite, fs)
	}

	go func() {
		for _, fs := range finite {
			select {
			case <-fs.Done():
			case <-p.ctx.Done():
				return
			}
		}
		// Closing subscriber channels lets the processing goroutines finish
		// what is buffered and exit
		for _, src := range p.Sources {
			src.Stop()
		}
		p.wg.Wait()
		close(p.drained)

		p.logger.Info("msg", "Pipeline input drained",
			"component", "pipeline",
			"pipeline", p.Config.Name,
			"total_processed", p.Stats.TotalEntriesProcessed.Load())
	}()
}

// Gracefully stops the pipeline. Sources stop first, then queued entries are
// written out by the sinks before the pipeline context is cancelled.
func (p *Pipeline) Shutdown() {
	p.shutdownOnce.Do(func() {
		p.logger.Info("msg", "Shutting down pipeline",
			"component", "pipeline",
			"pipeline", p.Config.Name)

		var wg sync.WaitGroup
		for _, src := range p.Sources {
			wg.Add(1)
			go func(source source.Source) {
				defer wg.Done()
				source.Stop()
			}(src)
		}
		wg.Wait()

		// Wait for processing goroutines
		p.wg.Wait()

		p.stopSinks()
		p.cancel()

		p.logger.Info("msg", "Pipeline shutdown complete",
			"component", "pipeline",
			"pipeline", p.Config.Name)
	})
}

func (p *Pipeline) stopSinks() {
	var wg sync.WaitGroup
	for _, s := range p.Sinks {
		wg.Add(1)
		go func(sink sink.Sink) {
			defer wg.Done()
			sink.Stop()
		}(s)
	}
	wg.Wait()
}

// Returns pipeline statistics
func (p *Pipeline) GetStats() map[string]any {
	// Recovery to handle concurrent access during shutdown
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("msg", "Panic getting pipeline stats",
				"pipeline", p.Config.Name,
				"panic", r)
		}
	}()

	sourceStats := make([]map[string]any, 0, len(p.Sources))
	for _, src := range p.Sources {
		if src == nil {
			continue
		}

		stats := src.GetStats()
		sourceStats = append(sourceStats, map[string]any{
			"type":            stats.Type,
			"total_entries":   stats.TotalEntries,
			"dropped_entries": stats.DroppedEntries,
			"invalid_entries": stats.InvalidEntries,
			"start_time":      stats.StartTime,
			"last_entry_time": stats.LastEntryTime,
			"details":         stats.Details,
		})
	}

	var rateLimitStats map[string]any
	if p.RateLimiter != nil {
		rateLimitStats = p.RateLimiter.GetStats()
	}

	var filterStats map[string]any
	if p.FilterChain != nil {
		filterStats = p.FilterChain.GetStats()
	}

	var specialStats map[string]any
	if p.Rewriter != nil {
		specialStats = p.Stats.Special.GetStats()
	}

	sinkStats := make([]map[string]any, 0, len(p.Sinks))
	for _, s := range p.Sinks {
		if s == nil {
			continue
		}

		stats := s.GetStats()
		sinkStats = append(sinkStats, map[string]any{
			"type":            stats.Type,
			"total_processed": stats.TotalProcessed,
			"failed_writes":   stats.FailedWrites,
			"start_time":      stats.StartTime,
			"last_processed":  stats.LastProcessed,
			"details":         stats.Details,
		})
	}

	return map[string]any{
		"name":                     p.Config.Name,
		"uptime_seconds":           int(time.Since(p.Stats.StartTime).Seconds()),
		"total_processed":          p.Stats.TotalEntriesProcessed.Load(),
		"total_dropped_rate_limit": p.Stats.TotalEntriesDroppedByRateLimit.Load(),
		"total_filtered":           p.Stats.TotalEntriesFiltered.Load(),
		"total_dropped_sink":       p.Stats.TotalEntriesDroppedBySink.Load(),
		"sources":                  sourceStats,
		"rate_limiter":             rateLimitStats,
		"filters":                  filterStats,
		"special":                  specialStats,
		"sinks":                    sinkStats,
		"source_count":             len(p.Sources),
		"sink_count":               len(p.Sinks),
		"filter_count":             len(p.Config.Filters),
	}
}
