// FILE: fieldwisp/src/internal/special/source_location.go
package special

import (
	"fieldwisp/src/internal/value"
)

// SourceLocation is the logging.googleapis.com/sourceLocation special field
type SourceLocation struct {
	File     string
	Line     int64
	Function string
	Subfields
}

func ExtractSourceLocation(payload *value.Map) SourceLocation {
	var loc SourceLocation
	sub, ok := findMap(payload, SourceLocationKey)
	if !ok {
		return loc
	}

	loc.walk(sub, func(k string, v value.Value) bool {
		switch {
		case MatchKey(k, "file"):
			if s, ok := CoerceString(v); ok {
				loc.File = s
			}
		case MatchKey(k, "line"):
			if n, ok := CoerceInteger(v); ok {
				loc.Line = n
			}
		case MatchKey(k, "function"):
			if s, ok := CoerceString(v); ok {
				loc.Function = s
			}
		default:
			return false
		}
		return true
	})
	return loc
}

func (l SourceLocation) Value() value.Value {
	m := value.NewMap(3)
	m.Set("file", value.String(l.File))
	m.Set("line", value.Int(l.Line))
	m.Set("function", value.String(l.Function))
	return value.FromMap(m)
}
