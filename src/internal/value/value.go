// FILE: fieldwisp/src/internal/value/value.go
package value

import (
	"fmt"
	"math"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	KindBinary
	KindArray
	KindMap
	KindExt
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindInt:    "int",
	KindUint:   "uint",
	KindFloat:  "float",
	KindString: "string",
	KindBinary: "binary",
	KindArray:  "array",
	KindMap:    "map",
	KindExt:    "ext",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Value is a dynamically typed record value as found in a decoded log record.
// The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	u    uint64
	f    float64
	s    string
	raw  []byte
	arr  []Value
	m    *Map
	ext  int8
}

func Null() Value { return Value{} }
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }
func Int(i int64) Value { return Value{kind: KindInt, i: i} }
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }
func String(s string) Value { return Value{kind: KindString, s: s} }
func Binary(b []byte) Value { return Value{kind: KindBinary, raw: b} }
func Array(vs ...Value) Value { return Value{kind: KindArray, arr: vs} }

// Uint stores integers that fit in int64 as KindInt so callers only have to
// handle KindUint for values above math.MaxInt64.
func Uint(u uint64) Value {
	if u <= math.MaxInt64 {
		return Int(int64(u))
	}
	return Value{kind: KindUint, u: u}
}

// FromMap wraps m. A nil map becomes an empty one.
func FromMap(m *Map) Value {
	if m == nil {
		m = NewMap(0)
	}
	return Value{kind: KindMap, m: m}
}

// Ext holds an application-defined msgpack extension verbatim.
func Ext(typ int8, data []byte) Value {
	return Value{kind: KindExt, ext: typ, raw: data}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

func (v Value) AsInt() (int64, bool) {
	return v.i, v.kind == KindInt
}

func (v Value) AsUint() (uint64, bool) {
	return v.u, v.kind == KindUint
}

func (v Value) AsFloat() (float64, bool) {
	return v.f, v.kind == KindFloat
}

func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

func (v Value) AsArray() ([]Value, bool) {
	return v.arr, v.kind == KindArray
}

func (v Value) AsMap() (*Map, bool) {
	return v.m, v.kind == KindMap
}

func (v Value) AsExt() (int8, []byte, bool) {
	return v.ext, v.raw, v.kind == KindExt
}

// Equal reports deep equality. Maps compare order-sensitively.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindUint:
		return v.u == o.u
	case KindFloat:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case KindString:
		return v.s == o.s
	case KindBinary:
		return string(v.raw) == string(o.raw)
	case KindExt:
		return v.ext == o.ext && string(v.raw) == string(o.raw)
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case KindMap:
		return v.m.Equal(o.m)
	}
	return false
}

// Text renders v for pattern matching: strings as-is, everything else as JSON.
func (v Value) Text() string {
	if v.kind == KindString {
		return v.s
	}
	return string(AppendJSON(nil, v))
}

func (v Value) String() string {
	return v.Text()
}
