package types

import "strings"

// List is the ordered, mutable-in-place sequence value variant.
type List struct {
	Elems []Value
}

var _ Value = (*List)(nil)

// NewList returns a list containing elems (not copied).
func NewList(elems []Value) *List { return &List{Elems: elems} }

func (l *List) Type() string { return "list" }

func (l *List) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, e := range l.Elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

func (l *List) Truth() bool { return len(l.Elems) > 0 }

func (l *List) Len() int { return len(l.Elems) }

// Index returns the element at i, truncated toward zero per spec.md's
// INDEX_GET rule, or an error if out of range.
func (l *List) Index(i int) (Value, error) {
	if i < 0 || i >= len(l.Elems) {
		return nil, &IndexError{Index: i, Len: len(l.Elems)}
	}
	return l.Elems[i], nil
}

// SetIndex assigns v at index i, or returns an error if out of range.
func (l *List) SetIndex(i int, v Value) error {
	if i < 0 || i >= len(l.Elems) {
		return &IndexError{Index: i, Len: len(l.Elems)}
	}
	l.Elems[i] = v
	return nil
}

// IndexError reports an out-of-range list index.
type IndexError struct {
	Index, Len int
}

func (e *IndexError) Error() string {
	return "list index out of range"
}
