// FILE: fieldwisp/src/internal/value/map.go
package value

// KV is a single map entry.
type KV struct {
	Key   string
	Value Value
}

// indexThreshold is the size above which lookups go through a hash index.
// Smaller maps scan the entry slice.
const indexThreshold = 16

// Map is an insertion-ordered string-keyed map. Keys are unique: Set replaces
// an existing entry in place. A nil *Map behaves as an empty map for reads.
// The index is only written by Set, Delete and Clone, so concurrent readers
// of a map that is no longer mutated never race.
type Map struct {
	kvs []KV
	idx map[string]int
}

func NewMap(capacity int) *Map {
	return &Map{kvs: make([]KV, 0, capacity)}
}

// MapOf builds a map from entries in order. Later duplicates overwrite earlier ones.
func MapOf(kvs ...KV) *Map {
	m := NewMap(len(kvs))
	for _, kv := range kvs {
		m.Set(kv.Key, kv.Value)
	}
	return m
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.kvs)
}

func (m *Map) index(key string) int {
	if m == nil {
		return -1
	}
	if m.idx != nil {
		if i, ok := m.idx[key]; ok {
			return i
		}
		return -1
	}
	for i := range m.kvs {
		if m.kvs[i].Key == key {
			return i
		}
	}
	return -1
}

func (m *Map) buildIndex() {
	m.idx = make(map[string]int, len(m.kvs))
	for i := range m.kvs {
		m.idx[m.kvs[i].Key] = i
	}
}

func (m *Map) Get(key string) (Value, bool) {
	if i := m.index(key); i >= 0 {
		return m.kvs[i].Value, true
	}
	return Value{}, false
}

func (m *Map) Has(key string) bool {
	return m.index(key) >= 0
}

func (m *Map) Set(key string, v Value) {
	if i := m.index(key); i >= 0 {
		m.kvs[i].Value = v
		return
	}
	m.kvs = append(m.kvs, KV{Key: key, Value: v})
	switch {
	case m.idx != nil:
		m.idx[key] = len(m.kvs) - 1
	case len(m.kvs) > indexThreshold:
		m.buildIndex()
	}
}

// Delete removes key and reports whether it was present.
func (m *Map) Delete(key string) bool {
	i := m.index(key)
	if i < 0 {
		return false
	}
	m.kvs = append(m.kvs[:i], m.kvs[i+1:]...)
	if m.idx != nil {
		if len(m.kvs) > indexThreshold {
			m.buildIndex()
		} else {
			m.idx = nil
		}
	}
	return true
}

// At returns the i-th entry in insertion order.
func (m *Map) At(i int) KV {
	return m.kvs[i]
}

// Range calls fn for each entry in order until fn returns false.
func (m *Map) Range(fn func(key string, v Value) bool) {
	if m == nil {
		return
	}
	for _, kv := range m.kvs {
		if !fn(kv.Key, kv.Value) {
			return
		}
	}
}

func (m *Map) Keys() []string {
	keys := make([]string, 0, m.Len())
	m.Range(func(k string, _ Value) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Clone returns a shallow copy; nested values are shared.
func (m *Map) Clone() *Map {
	c := NewMap(m.Len())
	if m != nil {
		c.kvs = append(c.kvs, m.kvs...)
		if m.idx != nil {
			c.idx = make(map[string]int, len(m.idx))
			for k, i := range m.idx {
				c.idx[k] = i
			}
		}
	}
	return c
}

func (m *Map) Equal(o *Map) bool {
	if m.Len() != o.Len() {
		return false
	}
	for i := 0; i < m.Len(); i++ {
		a, b := m.kvs[i], o.kvs[i]
		if a.Key != b.Key || !a.Value.Equal(b.Value) {
			return false
		}
	}
	return true
}
