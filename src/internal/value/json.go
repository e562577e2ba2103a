// FILE: fieldwisp/src/internal/value/json.go
package value

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/valyala/fastjson"
)

var parserPool fastjson.ParserPool

// ParseJSON decodes one JSON document. Object key order is preserved and
// integral numbers decode as Int (or Uint above MaxInt64).
func ParseJSON(b []byte) (Value, error) {
	p := parserPool.Get()
	defer parserPool.Put(p)

	jv, err := p.ParseBytes(b)
	if err != nil {
		return Value{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return fromFastJSON(jv, 0)
}

func fromFastJSON(jv *fastjson.Value, depth int) (Value, error) {
	if depth > maxDepth {
		return Value{}, fmt.Errorf("JSON nesting exceeds %d levels", maxDepth)
	}

	switch jv.Type() {
	case fastjson.TypeNull:
		return Null(), nil
	case fastjson.TypeTrue:
		return Bool(true), nil
	case fastjson.TypeFalse:
		return Bool(false), nil
	case fastjson.TypeString:
		sb, _ := jv.StringBytes()
		return String(string(sb)), nil
	case fastjson.TypeNumber:
		if i, err := jv.Int64(); err == nil {
			return Int(i), nil
		}
		if u, err := jv.Uint64(); err == nil {
			return Uint(u), nil
		}
		f, err := jv.Float64()
		if err != nil {
			return Value{}, err
		}
		return Float(f), nil
	case fastjson.TypeArray:
		items, _ := jv.Array()
		arr := make([]Value, len(items))
		for i, item := range items {
			v, err := fromFastJSON(item, depth+1)
			if err != nil {
				return Value{}, err
			}
			arr[i] = v
		}
		return Array(arr...), nil
	case fastjson.TypeObject:
		obj, _ := jv.Object()
		m := NewMap(obj.Len())
		var verr error
		obj.Visit(func(key []byte, item *fastjson.Value) {
			if verr != nil {
				return
			}
			v, err := fromFastJSON(item, depth+1)
			if err != nil {
				verr = err
				return
			}
			m.Set(string(key), v)
		})
		if verr != nil {
			return Value{}, verr
		}
		return FromMap(m), nil
	}
	return Value{}, fmt.Errorf("unsupported JSON type %s", jv.Type())
}

// AppendJSON appends the JSON encoding of v to dst. Binary and ext payloads
// are rendered as base64 strings; non-finite floats as null.
func AppendJSON(dst []byte, v Value) []byte {
	switch v.kind {
	case KindNull:
		return append(dst, "null"...)
	case KindBool:
		return strconv.AppendBool(dst, v.b)
	case KindInt:
		return strconv.AppendInt(dst, v.i, 10)
	case KindUint:
		return strconv.AppendUint(dst, v.u, 10)
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return append(dst, "null"...)
		}
		b, err := json.Marshal(v.f)
		if err != nil {
			return append(dst, "null"...)
		}
		return append(dst, b...)
	case KindString:
		return appendJSONString(dst, v.s)
	case KindBinary, KindExt:
		return appendJSONString(dst, base64.StdEncoding.EncodeToString(v.raw))
	case KindArray:
		dst = append(dst, '[')
		for i, item := range v.arr {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = AppendJSON(dst, item)
		}
		return append(dst, ']')
	case KindMap:
		return AppendJSONMap(dst, v.m)
	}
	return append(dst, "null"...)
}

// AppendJSONMap appends m as a JSON object in insertion order.
func AppendJSONMap(dst []byte, m *Map) []byte {
	dst = append(dst, '{')
	first := true
	m.Range(func(k string, item Value) bool {
		if !first {
			dst = append(dst, ',')
		}
		first = false
		dst = appendJSONString(dst, k)
		dst = append(dst, ':')
		dst = AppendJSON(dst, item)
		return true
	})
	return append(dst, '}')
}

func appendJSONString(dst []byte, s string) []byte {
	b, err := json.Marshal(s)
	if err != nil {
		return strconv.AppendQuote(dst, s)
	}
	return append(dst, b...)
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return AppendJSON(nil, v), nil
}

// MarshalJSON implements json.Marshaler.
func (m *Map) MarshalJSON() ([]byte, error) {
	return AppendJSONMap(nil, m), nil
}
