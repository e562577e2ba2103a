// FILE: fieldwisp/src/internal/special/operation.go
package special

import (
	"fieldwisp/src/internal/value"
)

// Operation is the logging.googleapis.com/operation special field
type Operation struct {
	ID       string
	Producer string
	First    bool
	Last     bool
	Subfields
}

// ExtractOperation reads the operation sub-map from payload. Sub-fields of
// the wrong type keep their zero value. The key is consumed even when id or
// producer is empty; Valid only feeds statistics.
func ExtractOperation(payload *value.Map) Operation {
	var op Operation
	sub, ok := findMap(payload, OperationKey)
	if !ok {
		return op
	}

	op.walk(sub, func(k string, v value.Value) bool {
		switch {
		case MatchKey(k, "id"):
			if s, ok := CoerceString(v); ok {
				op.ID = s
			}
		case MatchKey(k, "producer"):
			if s, ok := CoerceString(v); ok {
				op.Producer = s
			}
		case MatchKey(k, "first"):
			if b, ok := CoerceBool(v); ok {
				op.First = b
			}
		case MatchKey(k, "last"):
			if b, ok := CoerceBool(v); ok {
				op.Last = b
			}
		default:
			return false
		}
		return true
	})
	return op
}

// Valid requires both id and producer to be non-empty.
func (o Operation) Valid() bool {
	return o.Found && o.ID != "" && o.Producer != ""
}

func (o Operation) Value() value.Value {
	m := value.NewMap(4)
	m.Set("id", value.String(o.ID))
	m.Set("producer", value.String(o.Producer))
	m.Set("first", value.Bool(o.First))
	m.Set("last", value.Bool(o.Last))
	return value.FromMap(m)
}
