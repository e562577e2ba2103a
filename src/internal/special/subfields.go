// FILE: fieldwisp/src/internal/special/subfields.go
package special

import (
	"fieldwisp/src/internal/value"
)

// Action tells the rewriter what to do with a special field's source key
type Action int

const (
	// ActionLeave keeps the key and its value untouched
	ActionLeave Action = iota
	// ActionRemove drops the key from the payload
	ActionRemove
	// ActionRepack keeps the key holding only the unrecognized sub-fields.
	// Extras stay nested under the original dotted key rather than being
	// merged into the top-level payload.
	ActionRepack
)

func (a Action) String() string {
	switch a {
	case ActionRemove:
		return "remove"
	case ActionRepack:
		return "repack"
	default:
		return "leave"
	}
}

// Subfields is the bookkeeping shared by the map-valued special fields.
type Subfields struct {
	// Found is set when the key exists and holds a map
	Found bool
	// ExtraCount is the number of sub-fields outside the known schema
	ExtraCount int
	// Extras holds those sub-fields in their original order
	Extras *value.Map
}

func (s *Subfields) addExtra(key string, v value.Value) {
	if s.Extras == nil {
		s.Extras = value.NewMap(1)
	}
	s.Extras.Set(key, v)
	s.ExtraCount++
}

func (s Subfields) Action() Action {
	switch {
	case !s.Found:
		return ActionLeave
	case s.ExtraCount > 0:
		return ActionRepack
	default:
		return ActionRemove
	}
}

// Repacked returns the value left under the source key for ActionRepack.
func (s Subfields) Repacked() value.Value {
	return value.FromMap(s.Extras.Clone())
}

// walk visits every sub-field of sub. assign reports whether the name belongs
// to the schema; a known name with the wrong type is not an extra.
func (s *Subfields) walk(sub *value.Map, assign func(key string, v value.Value) bool) {
	s.Found = true
	sub.Range(func(k string, v value.Value) bool {
		if !assign(k, v) {
			s.addExtra(k, v)
		}
		return true
	})
}
