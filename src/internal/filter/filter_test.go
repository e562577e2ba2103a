// FILE: fieldwisp/src/internal/filter/filter_test.go
package filter

import (
	"testing"

	"fieldwisp/src/internal/config"
	"fieldwisp/src/internal/core"
	"fieldwisp/src/internal/value"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

func entryWith(kvs ...value.KV) core.LogEntry {
	return core.LogEntry{Source: "test", Payload: value.MapOf(kvs...)}
}

func msg(s string) core.LogEntry {
	return entryWith(value.KV{Key: "message", Value: value.String(s)})
}

func TestNewFilter(t *testing.T) {
	logger := newTestLogger()

	t.Run("SuccessWithDefaults", func(t *testing.T) {
		cfg := config.FilterConfig{Patterns: []string{"test"}}
		f, err := NewFilter(cfg, logger)
		assert.NoError(t, err)
		assert.NotNil(t, f)
		assert.Equal(t, config.FilterTypeInclude, f.config.Type)
		assert.Equal(t, config.FilterLogicOr, f.config.Logic)
	})

	t.Run("SuccessWithCustomConfig", func(t *testing.T) {
		cfg := config.FilterConfig{
			Type:     config.FilterTypeExclude,
			Logic:    config.FilterLogicAnd,
			Field:    "severity",
			Patterns: []string{"test", "pattern"},
		}
		f, err := NewFilter(cfg, logger)
		assert.NoError(t, err)
		assert.NotNil(t, f)
		assert.Equal(t, config.FilterTypeExclude, f.config.Type)
		assert.Equal(t, config.FilterLogicAnd, f.config.Logic)
		assert.Len(t, f.patterns, 2)
	})

	t.Run("ErrorInvalidRegex", func(t *testing.T) {
		cfg := config.FilterConfig{Patterns: []string{"["}}
		f, err := NewFilter(cfg, logger)
		assert.Error(t, err)
		assert.Nil(t, f)
		assert.Contains(t, err.Error(), "invalid regex pattern")
	})
}

func TestFilter_Apply(t *testing.T) {
	logger := newTestLogger()

	testCases := []struct {
		name     string
		cfg      config.FilterConfig
		entry    core.LogEntry
		expected bool
	}{
		// Include OR logic
		{
			name:     "IncludeOR_MatchOne",
			cfg:      config.FilterConfig{Type: config.FilterTypeInclude, Logic: config.FilterLogicOr, Patterns: []string{"apple", "banana"}},
			entry:    msg("this is an apple"),
			expected: true,
		},
		{
			name:     "IncludeOR_NoMatch",
			cfg:      config.FilterConfig{Type: config.FilterTypeInclude, Logic: config.FilterLogicOr, Patterns: []string{"apple", "banana"}},
			entry:    msg("this is a pear"),
			expected: false,
		},
		// Include AND logic
		{
			name:     "IncludeAND_MatchAll",
			cfg:      config.FilterConfig{Type: config.FilterTypeInclude, Logic: config.FilterLogicAnd, Patterns: []string{"apple", "doctor"}},
			entry:    msg("an apple keeps the doctor away"),
			expected: true,
		},
		{
			name:     "IncludeAND_MatchOne",
			cfg:      config.FilterConfig{Type: config.FilterTypeInclude, Logic: config.FilterLogicAnd, Patterns: []string{"apple", "doctor"}},
			entry:    msg("this is an apple"),
			expected: false,
		},
		// Exclude OR logic
		{
			name:     "ExcludeOR_MatchOne",
			cfg:      config.FilterConfig{Type: config.FilterTypeExclude, Logic: config.FilterLogicOr, Patterns: []string{"error", "fatal"}},
			entry:    msg("this is an error"),
			expected: false,
		},
		{
			name:     "ExcludeOR_NoMatch",
			cfg:      config.FilterConfig{Type: config.FilterTypeExclude, Logic: config.FilterLogicOr, Patterns: []string{"error", "fatal"}},
			entry:    msg("this is a warning"),
			expected: true,
		},
		// Exclude AND logic
		{
			name:     "ExcludeAND_MatchAll",
			cfg:      config.FilterConfig{Type: config.FilterTypeExclude, Logic: config.FilterLogicAnd, Patterns: []string{"critical", "database"}},
			entry:    msg("critical error in database"),
			expected: false,
		},
		{
			name:     "ExcludeAND_MatchOne",
			cfg:      config.FilterConfig{Type: config.FilterTypeExclude, Logic: config.FilterLogicAnd, Patterns: []string{"critical", "database"}},
			entry:    msg("critical error in app"),
			expected: true,
		},
		// Edge Cases
		{
			name:     "NoPatterns",
			cfg:      config.FilterConfig{Type: config.FilterTypeInclude, Patterns: []string{}},
			entry:    msg("any message"),
			expected: true,
		},
		{
			name:     "EmptyEntry_NoPatterns",
			cfg:      config.FilterConfig{Patterns: []string{}},
			entry:    core.LogEntry{},
			expected: true,
		},
		{
			name:     "EmptyEntry_RendersAsEmptyObject",
			cfg:      config.FilterConfig{Type: config.FilterTypeInclude, Patterns: []string{`^\{\}$`}},
			entry:    core.LogEntry{},
			expected: true,
		},
		{
			name:     "WholeRecordMatchesKeys",
			cfg:      config.FilterConfig{Type: config.FilterTypeInclude, Patterns: []string{`"severity":"ERROR"`}},
			entry:    entryWith(value.KV{Key: "severity", Value: value.String("ERROR")}),
			expected: true,
		},
		{
			name: "FieldMatch",
			cfg:  config.FilterConfig{Type: config.FilterTypeInclude, Field: "severity", Patterns: []string{"^ERROR$"}},
			entry: entryWith(
				value.KV{Key: "severity", Value: value.String("ERROR")},
				value.KV{Key: "message", Value: value.String("disk full")},
			),
			expected: true,
		},
		{
			name: "FieldIgnoresOtherKeys",
			cfg:  config.FilterConfig{Type: config.FilterTypeInclude, Field: "severity", Patterns: []string{"ERROR"}},
			entry: entryWith(
				value.KV{Key: "severity", Value: value.String("INFO")},
				value.KV{Key: "message", Value: value.String("ERROR in message only")},
			),
			expected: false,
		},
		{
			name:     "FieldNumericText",
			cfg:      config.FilterConfig{Type: config.FilterTypeInclude, Field: "status", Patterns: []string{"^5\\d\\d$"}},
			entry:    entryWith(value.KV{Key: "status", Value: value.Int(503)}),
			expected: true,
		},
		{
			name:     "MissingFieldInclude",
			cfg:      config.FilterConfig{Type: config.FilterTypeInclude, Field: "severity", Patterns: []string{".*"}},
			entry:    msg("no severity"),
			expected: false,
		},
		{
			name:     "MissingFieldExclude",
			cfg:      config.FilterConfig{Type: config.FilterTypeExclude, Field: "severity", Patterns: []string{".*"}},
			entry:    msg("no severity"),
			expected: true,
		},
		{
			name: "PromotedFieldVisible",
			cfg:  config.FilterConfig{Type: config.FilterTypeInclude, Field: "insertId", Patterns: []string{"^abc$"}},
			entry: core.LogEntry{
				Payload:  value.NewMap(0),
				Promoted: value.MapOf(value.KV{Key: "insertId", Value: value.String("abc")}),
			},
			expected: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := NewFilter(tc.cfg, logger)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, f.Apply(tc.entry))
		})
	}
}

func TestFilter_UpdatePatterns(t *testing.T) {
	logger := newTestLogger()
	f, err := NewFilter(config.FilterConfig{Patterns: []string{"apple"}}, logger)
	require.NoError(t, err)

	assert.True(t, f.Apply(msg("apple")))

	require.NoError(t, f.UpdatePatterns([]string{"pear"}))
	assert.False(t, f.Apply(msg("apple")))
	assert.True(t, f.Apply(msg("pear")))

	err = f.UpdatePatterns([]string{"("})
	assert.Error(t, err)
	assert.True(t, f.Apply(msg("pear")), "failed update keeps previous patterns")
}

func TestFilter_GetStats(t *testing.T) {
	logger := newTestLogger()
	f, err := NewFilter(config.FilterConfig{Field: "level", Patterns: []string{"error"}}, logger)
	require.NoError(t, err)

	f.Apply(entryWith(value.KV{Key: "level", Value: value.String("error")}))
	f.Apply(entryWith(value.KV{Key: "level", Value: value.String("info")}))
	f.Apply(msg("no level"))

	stats := f.GetStats()
	assert.Equal(t, uint64(3), stats["total_processed"])
	assert.Equal(t, uint64(1), stats["total_matched"])
	assert.Equal(t, uint64(2), stats["total_dropped"])
	assert.Equal(t, uint64(1), stats["total_missing"])
	assert.Equal(t, "level", stats["field"])
}
