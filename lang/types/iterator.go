package types

import "fmt"

// Iterator is the opaque handle GET_ITER produces and FOR_ITER advances;
// a tagged variant (list-cursor, map-keys-cursor, range-cursor) with a
// single Next entry point, per spec.md §9's re-architecture note steering
// away from virtual per-kind dispatch.
type Iterator interface {
	Value
	// Next advances the iterator and reports whether a value was produced.
	Next() (Value, bool)
}

type listIterator struct {
	list *List
	idx  int
}

// NewListIterator returns an Iterator over l's elements in order.
func NewListIterator(l *List) Iterator { return &listIterator{list: l} }

func (it *listIterator) Type() string   { return "iterator" }
func (it *listIterator) String() string { return fmt.Sprintf("<list iterator %p>", it) }
func (it *listIterator) Truth() bool    { return true }
func (it *listIterator) Next() (Value, bool) {
	if it.idx >= len(it.list.Elems) {
		return nil, false
	}
	v := it.list.Elems[it.idx]
	it.idx++
	return v, true
}

type mapKeysIterator struct {
	keys []Value
	idx  int
}

// NewMapKeysIterator returns an Iterator over m's keys, per spec.md §4.4's
// "over a map yields keys".
func NewMapKeysIterator(m *Map) Iterator {
	return &mapKeysIterator{keys: m.Keys()}
}

func (it *mapKeysIterator) Type() string   { return "iterator" }
func (it *mapKeysIterator) String() string { return fmt.Sprintf("<map iterator %p>", it) }
func (it *mapKeysIterator) Truth() bool    { return true }
func (it *mapKeysIterator) Next() (Value, bool) {
	if it.idx >= len(it.keys) {
		return nil, false
	}
	v := it.keys[it.idx]
	it.idx++
	return v, true
}

type rangeIterator struct {
	cur, stop, step int
}

// NewRangeIterator returns an Iterator producing successive integers from
// start (inclusive) to stop (exclusive) by step, the numeric-range handle
// a host may supply per spec.md §4.4.
func NewRangeIterator(start, stop, step int) Iterator {
	return &rangeIterator{cur: start, stop: stop, step: step}
}

func (it *rangeIterator) Type() string   { return "iterator" }
func (it *rangeIterator) String() string { return fmt.Sprintf("<range iterator %p>", it) }
func (it *rangeIterator) Truth() bool    { return true }
func (it *rangeIterator) Next() (Value, bool) {
	if it.step > 0 && it.cur >= it.stop || it.step < 0 && it.cur <= it.stop {
		return nil, false
	}
	v := Number(it.cur)
	it.cur += it.step
	return v, true
}
