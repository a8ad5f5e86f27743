// Package types defines the value domain shared by the compiler (constant
// pool entries, default parameter values) and the virtual machine (the
// value stack, globals, attributes), plus the compiled-program types
// (Chunk, FunctionObject, OpCode) that both packages need a common,
// dependency-free home for. Keeping Value and Chunk in one package, the
// way nenuphar keeps its Value domain in lang/types independent of
// lang/machine, avoids an import cycle between "the compiler emits a
// Chunk of Values" and "the machine executes a Chunk of Values".
package types

import (
	"fmt"
	"strconv"
)

// Value is implemented by every runtime value variant: Null, Bool, Number,
// String, *List, *Map, *Function, *Native, Iterator, and HostObject.
type Value interface {
	// Type returns the value's type name, as reported by error messages and
	// the disassembler's constant pretty-printer.
	Type() string
	// String returns a human-readable rendering of the value.
	String() string
	// Truth reports the value's truthiness in boolean contexts (if/while
	// conditions, and/or short-circuiting).
	Truth() bool
}

// Null is the language's single null value.
type Null struct{}

func (Null) Type() string   { return "null" }
func (Null) String() string { return "null" }
func (Null) Truth() bool    { return false }

// None is the canonical Null instance; comparisons use it directly since
// Null carries no state.
var None = Null{}

// Bool is the boolean value variant.
type Bool bool

func (b Bool) Type() string   { return "bool" }
func (b Bool) String() string { return strconv.FormatBool(bool(b)) }
func (b Bool) Truth() bool    { return bool(b) }

// Number is the language's uniform 64-bit float numeric type; per
// SPEC_FULL.md's Open Question resolution there is no separate integer
// variant, matching original_source's own untyped Python floats/ints.
type Number float64

func (n Number) Type() string   { return "number" }
func (n Number) String() string { return strconv.FormatFloat(float64(n), 'g', -1, 64) }
func (n Number) Truth() bool    { return n != 0 }

// Int truncates n toward zero and returns it as an int, the rule spec.md
// mandates for INDEX_GET/INDEX_SET on lists.
func (n Number) Int() int { return int(n) }

// String is the language's immutable UTF-8 string value variant.
type String string

func (s String) Type() string   { return "string" }
func (s String) String() string { return string(s) }
func (s String) Truth() bool    { return s != "" }

// Equal reports structural equality for primitives and strings, identity
// for lists/maps/functions/handles, matching spec.md §3's equality rule.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	default:
		return a == b
	}
}

// HashKey returns a canonical comparable representation of v for use as a
// Map key, and false if v is not hashable (spec.md §3 restricts map keys
// to null/bool/number/string).
func HashKey(v Value) (Value, bool) {
	switch v.(type) {
	case Null, Bool, Number, String:
		return v, true
	default:
		return nil, false
	}
}

// TypeError reports a Value used where a different type was required.
type TypeError struct {
	Want, Got string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("type error: want %s, got %s", e.Want, e.Got)
}
