// FILE: fieldwisp/src/internal/filter/filter.go
package filter

import (
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"

	"fieldwisp/src/internal/config"
	"fieldwisp/src/internal/core"
	"fieldwisp/src/internal/value"

	"github.com/lixenwraith/log"
)

// Filter applies regex-based filtering to log entries
type Filter struct {
	config   config.FilterConfig
	patterns []*regexp.Regexp
	mu       sync.RWMutex
	logger   *log.Logger

	// Statistics
	totalProcessed atomic.Uint64
	totalMatched   atomic.Uint64
	totalDropped   atomic.Uint64
	totalMissing   atomic.Uint64
}

// NewFilter creates a new filter from configuration
func NewFilter(cfg config.FilterConfig, logger *log.Logger) (*Filter, error) {
	if cfg.Type == "" {
		cfg.Type = config.FilterTypeInclude
	}
	if cfg.Logic == "" {
		cfg.Logic = config.FilterLogicOr
	}

	f := &Filter{
		config:   cfg,
		patterns: make([]*regexp.Regexp, 0, len(cfg.Patterns)),
		logger:   logger,
	}

	for i, pattern := range cfg.Patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern[%d] '%s': %w", i, pattern, err)
		}
		f.patterns = append(f.patterns, re)
	}

	logger.Debug("msg", "Filter created",
		"component", "filter",
		"type", cfg.Type,
		"logic", cfg.Logic,
		"field", cfg.Field,
		"pattern_count", len(cfg.Patterns))

	return f, nil
}

// Apply checks if a log entry should be passed through
func (f *Filter) Apply(entry core.LogEntry) bool {
	f.totalProcessed.Add(1)

	f.mu.RLock()
	patterns := f.patterns
	f.mu.RUnlock()

	// No patterns means pass everything
	if len(patterns) == 0 {
		return true
	}

	matched := false
	if text, ok := f.subject(entry); ok {
		matched = f.matches(patterns, text)
	} else {
		f.totalMissing.Add(1)
	}
	if matched {
		f.totalMatched.Add(1)
	}

	shouldPass := false
	switch f.config.Type {
	case config.FilterTypeInclude:
		shouldPass = matched
	case config.FilterTypeExclude:
		shouldPass = !matched
	}

	if !shouldPass {
		f.totalDropped.Add(1)
	}

	return shouldPass
}

// subject returns the text the patterns run against. A configured field
// that is absent from the record yields false.
func (f *Filter) subject(entry core.LogEntry) (string, bool) {
	if f.config.Field == "" {
		return string(value.AppendJSONMap(nil, entry.Record())), true
	}
	v, ok := entry.Field(f.config.Field)
	if !ok {
		return "", false
	}
	return v.Text(), true
}

// matches checks if text matches the patterns according to the logic
func (f *Filter) matches(patterns []*regexp.Regexp, text string) bool {
	switch f.config.Logic {
	case config.FilterLogicOr:
		for _, re := range patterns {
			if re.MatchString(text) {
				return true
			}
		}
		return false

	case config.FilterLogicAnd:
		for _, re := range patterns {
			if !re.MatchString(text) {
				return false
			}
		}
		return true

	default:
		// Shouldn't happen after validation
		f.logger.Warn("msg", "Unknown filter logic",
			"component", "filter",
			"logic", f.config.Logic)
		return false
	}
}

// GetStats returns filter statistics
func (f *Filter) GetStats() map[string]any {
	f.mu.RLock()
	patternCount := len(f.patterns)
	f.mu.RUnlock()

	return map[string]any{
		"type":            f.config.Type,
		"logic":           f.config.Logic,
		"field":           f.config.Field,
		"pattern_count":   patternCount,
		"total_processed": f.totalProcessed.Load(),
		"total_matched":   f.totalMatched.Load(),
		"total_dropped":   f.totalDropped.Load(),
		"total_missing":   f.totalMissing.Load(),
	}
}

// UpdatePatterns swaps the compiled pattern set. On error the old set stays.
func (f *Filter) UpdatePatterns(patterns []string) error {
	compiled := make([]*regexp.Regexp, 0, len(patterns))

	for i, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("invalid regex pattern[%d] '%s': %w", i, pattern, err)
		}
		compiled = append(compiled, re)
	}

	f.mu.Lock()
	f.patterns = compiled
	f.config.Patterns = patterns
	f.mu.Unlock()

	f.logger.Info("msg", "Filter patterns updated",
		"component", "filter",
		"pattern_count", len(patterns))
	return nil
}
