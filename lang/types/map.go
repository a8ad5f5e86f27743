package types

import (
	"fmt"

	"github.com/dolthub/swiss"
)

// Map is the mapping value variant, backed by a swiss table for O(1)
// amortized lookup on the VM's hot path (GET_ATTR/SET_ATTR on host-backed
// maps, INDEX_GET/INDEX_SET), grounded on nenuphar/lang/machine/map.go's
// use of the same dependency for its own Map value.
type Map struct {
	m *swiss.Map[Value, Value]
}

var _ Value = (*Map)(nil)

// NewMap returns a map with initial capacity for at least size entries.
func NewMap(size int) *Map {
	return &Map{m: swiss.NewMap[Value, Value](uint32(size))}
}

func (m *Map) Type() string   { return "map" }
func (m *Map) String() string { return fmt.Sprintf("map(%p)", m) }
func (m *Map) Truth() bool    { return m.m.Count() > 0 }

// Get returns the value for k and whether it was present. ok is false and
// err is non-nil if k is not a hashable value.
func (m *Map) Get(k Value) (v Value, found bool, err error) {
	hk, ok := HashKey(k)
	if !ok {
		return nil, false, &TypeError{Want: "hashable", Got: k.Type()}
	}
	v, found = m.m.Get(hk)
	return v, found, nil
}

// Set inserts or overwrites the value for k.
func (m *Map) Set(k, v Value) error {
	hk, ok := HashKey(k)
	if !ok {
		return &TypeError{Want: "hashable", Got: k.Type()}
	}
	m.m.Put(hk, v)
	return nil
}

// Len returns the number of entries in the map.
func (m *Map) Len() int { return m.m.Count() }

// Keys returns the map's keys in unspecified order, matching spec.md §3's
// "insertion-order preserved iteration is not required".
func (m *Map) Keys() []Value {
	keys := make([]Value, 0, m.m.Count())
	m.m.Iter(func(k, _ Value) bool {
		keys = append(keys, k)
		return false
	})
	return keys
}
