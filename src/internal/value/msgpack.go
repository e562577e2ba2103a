// FILE: fieldwisp/src/internal/value/msgpack.go
package value

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// maxDepth is the deepest nesting accepted by the decoders.
const maxDepth = 128

// Length headers are untrusted. Containers preallocate at most
// maxPrealloc slots and grow as elements actually decode.
const (
	maxPrealloc = 1024
	maxExtLen   = 1 << 20
)

// DecodeMsgpack reads one value from d.
func DecodeMsgpack(d *msgpack.Decoder) (Value, error) {
	return decodeMsgpack(d, 0)
}

// UnmarshalMsgpack decodes a single value from b.
func UnmarshalMsgpack(b []byte) (Value, error) {
	d := msgpack.NewDecoder(bytes.NewReader(b))
	return DecodeMsgpack(d)
}

func decodeMsgpack(d *msgpack.Decoder, depth int) (Value, error) {
	if depth > maxDepth {
		return Value{}, fmt.Errorf("msgpack nesting exceeds %d levels", maxDepth)
	}

	c, err := d.PeekCode()
	if err != nil {
		return Value{}, err
	}

	switch {
	case c == msgpcode.Nil:
		return Null(), d.DecodeNil()

	case c == msgpcode.False || c == msgpcode.True:
		b, err := d.DecodeBool()
		return Bool(b), err

	case c == msgpcode.Uint64:
		u, err := d.DecodeUint64()
		return Uint(u), err

	case msgpcode.IsFixedNum(c),
		c == msgpcode.Uint8, c == msgpcode.Uint16, c == msgpcode.Uint32,
		c == msgpcode.Int8, c == msgpcode.Int16, c == msgpcode.Int32, c == msgpcode.Int64:
		i, err := d.DecodeInt64()
		return Int(i), err

	case c == msgpcode.Float || c == msgpcode.Double:
		f, err := d.DecodeFloat64()
		return Float(f), err

	case msgpcode.IsString(c):
		s, err := d.DecodeString()
		return String(s), err

	case msgpcode.IsBin(c):
		b, err := d.DecodeBytes()
		return Binary(b), err

	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		n, err := d.DecodeArrayLen()
		if err != nil {
			return Value{}, err
		}
		if n < 0 {
			return Null(), nil
		}
		arr := make([]Value, 0, min(n, maxPrealloc))
		for i := 0; i < n; i++ {
			elem, err := decodeMsgpack(d, depth+1)
			if err != nil {
				return Value{}, err
			}
			arr = append(arr, elem)
		}
		return Array(arr...), nil

	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		n, err := d.DecodeMapLen()
		if err != nil {
			return Value{}, err
		}
		if n < 0 {
			return Null(), nil
		}
		m := NewMap(min(n, maxPrealloc))
		for i := 0; i < n; i++ {
			kc, err := d.PeekCode()
			if err != nil {
				return Value{}, err
			}
			if !msgpcode.IsString(kc) && !msgpcode.IsBin(kc) {
				return Value{}, fmt.Errorf("msgpack map key has unsupported code 0x%02x", kc)
			}
			// Some producers emit keys as bin; both read back as string.
			key, err := d.DecodeString()
			if err != nil {
				return Value{}, err
			}
			v, err := decodeMsgpack(d, depth+1)
			if err != nil {
				return Value{}, err
			}
			m.Set(key, v)
		}
		return FromMap(m), nil

	case msgpcode.IsExt(c):
		typ, n, err := d.DecodeExtHeader()
		if err != nil {
			return Value{}, err
		}
		if n > maxExtLen {
			return Value{}, fmt.Errorf("msgpack ext length %d exceeds %d", n, maxExtLen)
		}
		data := make([]byte, n)
		if err := d.ReadFull(data); err != nil {
			return Value{}, err
		}
		return Ext(typ, data), nil
	}

	return Value{}, fmt.Errorf("msgpack: unsupported code 0x%02x", c)
}

// EncodeMsgpack writes v to e preserving map order.
func EncodeMsgpack(e *msgpack.Encoder, v Value) error {
	switch v.kind {
	case KindNull:
		return e.EncodeNil()
	case KindBool:
		return e.EncodeBool(v.b)
	case KindInt:
		return e.EncodeInt(v.i)
	case KindUint:
		return e.EncodeUint(v.u)
	case KindFloat:
		return e.EncodeFloat64(v.f)
	case KindString:
		return e.EncodeString(v.s)
	case KindBinary:
		return e.EncodeBytes(v.raw)
	case KindArray:
		if err := e.EncodeArrayLen(len(v.arr)); err != nil {
			return err
		}
		for _, item := range v.arr {
			if err := EncodeMsgpack(e, item); err != nil {
				return err
			}
		}
		return nil
	case KindMap:
		return EncodeMsgpackMap(e, v.m)
	case KindExt:
		if err := e.EncodeExtHeader(v.ext, len(v.raw)); err != nil {
			return err
		}
		_, err := e.Writer().Write(v.raw)
		return err
	}
	return fmt.Errorf("msgpack: cannot encode kind %s", v.kind)
}

func EncodeMsgpackMap(e *msgpack.Encoder, m *Map) error {
	if err := e.EncodeMapLen(m.Len()); err != nil {
		return err
	}
	var err error
	m.Range(func(k string, v Value) bool {
		if err = e.EncodeString(k); err != nil {
			return false
		}
		err = EncodeMsgpack(e, v)
		return err == nil
	})
	return err
}

// MarshalMsgpack encodes v into a new buffer.
func MarshalMsgpack(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeMsgpack(msgpack.NewEncoder(&buf), v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
