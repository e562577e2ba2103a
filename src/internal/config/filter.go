// FILE: fieldwisp/src/internal/config/filter.go
package config

// FilterType selects whether matching records are kept or dropped
type FilterType string

const (
	FilterTypeInclude FilterType = "include"
	FilterTypeExclude FilterType = "exclude"
)

// FilterLogic selects how multiple patterns combine
type FilterLogic string

const (
	FilterLogicOr  FilterLogic = "or"
	FilterLogicAnd FilterLogic = "and"
)

// FilterConfig is one regex stage of a pipeline's filter chain
type FilterConfig struct {
	Type  FilterType  `toml:"type"`
	Logic FilterLogic `toml:"logic"`

	// Top-level payload key to match against. Empty matches the whole
	// record rendered as JSON.
	Field string `toml:"field"`

	Patterns []string `toml:"patterns"`
}
