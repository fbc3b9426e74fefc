// Package pbxval defines the untyped tree shared by every format reader
// and writer in this module: Value, Mapping, Sequence, Data. It is kept
// separate from the root pbx package (which re-exports these types via
// aliases) so that format packages can depend on the tree shape without
// creating an import cycle back through pbx.
package pbxval

import "fmt"

// Value is the untyped tree every format reader produces and every format
// writer consumes. It has exactly four variants: String, Mapping, Sequence,
// and Data.
type Value interface {
	isValue()
}

// String is a plist text value. Whether the source form was quoted is not
// retained on the value itself; the unparser decides quoting independently
// (see the asciiplist package).
type String string

func (String) isValue() {}

// Data is a plist <data> byte blob.
type Data []byte

func (Data) isValue() {}

// Sequence is an ordered plist array.
type Sequence []Value

func (Sequence) isValue() {}

// entry is one key/value pair of a Mapping, kept in insertion order.
type entry struct {
	key   string
	value Value
}

// Mapping is an insertion-ordered string-keyed plist dictionary. The zero
// value is an empty, usable Mapping.
type Mapping struct {
	entries []entry
	index   map[string]int
}

func (*Mapping) isValue() {}

// NewMapping returns an empty Mapping ready for Set calls.
func NewMapping() *Mapping {
	return &Mapping{index: make(map[string]int)}
}

// Get returns the value for key and whether it was present.
func (m *Mapping) Get(key string) (Value, bool) {
	if m == nil || m.index == nil {
		return nil, false
	}
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.entries[i].value, true
}

// Set inserts key with value, or updates it in place if key is already
// present, preserving its original position.
func (m *Mapping) Set(key string, value Value) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[key]; ok {
		m.entries[i].value = value
		return
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, entry{key, value})
}

// Delete removes key if present.
func (m *Mapping) Delete(key string) {
	if m == nil || m.index == nil {
		return
	}
	i, ok := m.index[key]
	if !ok {
		return
	}
	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	delete(m.index, key)
	for k, idx := range m.index {
		if idx > i {
			m.index[k] = idx - 1
		}
	}
}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Keys returns the keys in insertion order.
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.key
	}
	return keys
}

// All iterates entries in insertion order.
func (m *Mapping) All() func(yield func(key string, value Value) bool) {
	return func(yield func(key string, value Value) bool) {
		if m == nil {
			return
		}
		for _, e := range m.entries {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

// String returns the value at key as a String, if it both exists and has
// that type.
func (m *Mapping) String(key string) (string, bool) {
	v, ok := m.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(String)
	return string(s), ok
}

// Mapping returns the value at key as a *Mapping, if it both exists and
// has that type.
func (m *Mapping) Mapping(key string) (*Mapping, bool) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	sub, ok := v.(*Mapping)
	return sub, ok
}

// Sequence returns the value at key as a Sequence, if it both exists and
// has that type.
func (m *Mapping) Sequence(key string) (Sequence, bool) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	seq, ok := v.(Sequence)
	return seq, ok
}

// ISA returns the object's "isa" key, the common case of String lookup
// throughout this package and its callers.
func (m *Mapping) ISA() (string, bool) {
	return m.String("isa")
}

func (m *Mapping) GoString() string {
	return fmt.Sprintf("Mapping(%d entries)", m.Len())
}

// Equal reports whether m and other hold the same keys in the same
// order with equal values. It gives go-cmp (which otherwise cannot see
// past Mapping's unexported fields) a well-defined comparison, and is
// the same order-sensitive notion of equality the ASCII plist unparser
// depends on.
func (m *Mapping) Equal(other *Mapping) bool {
	if m == nil || other == nil {
		return m.Len() == 0 && other.Len() == 0
	}
	if len(m.entries) != len(other.entries) {
		return false
	}
	for i, e := range m.entries {
		oe := other.entries[i]
		if e.key != oe.key {
			return false
		}
		if !valuesEqual(e.value, oe.value) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Data:
		bv, ok := b.(Data)
		return ok && string(av) == string(bv)
	case Sequence:
		bv, ok := b.(Sequence)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *Mapping:
		bv, ok := b.(*Mapping)
		return ok && av.Equal(bv)
	default:
		return false
	}
}
