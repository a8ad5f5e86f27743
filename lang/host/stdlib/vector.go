package stdlib

import (
	"fmt"
	"math"

	"github.com/mna/tickscript/lang/types"
)

// Vector is a 3-component host object, ported from
// original_source/runtime/stdlib/vector.py's Vector class: data attributes
// x/y/z plus add/sub/mul/length/normalize/lerp methods, all of which the
// original expresses as plain Python methods returning new Vectors.
type Vector struct {
	X, Y, Z float64
}

var _ types.HostObject = (*Vector)(nil)

// NewVector returns a Vector, z defaulting to 0 as in vector.py's
// `__init__(self, x=0, y=0, z=0)`.
func NewVector(x, y, z float64) *Vector { return &Vector{X: x, Y: y, Z: z} }

func (v *Vector) Type() string   { return "vector" }
func (v *Vector) Truth() bool    { return true }
func (v *Vector) String() string { return fmt.Sprintf("Vector(%g, %g, %g)", v.X, v.Y, v.Z) }

var vectorMethods = map[string]bool{
	"add": true, "sub": true, "mul": true, "length": true, "normalize": true, "lerp": true,
}

func (v *Vector) GetAttr(name string) (types.Value, error) {
	switch name {
	case "x":
		return types.Number(v.X), nil
	case "y":
		return types.Number(v.Y), nil
	case "z":
		return types.Number(v.Z), nil
	default:
		if vectorMethods[name] {
			return bindMethod(v, name), nil
		}
		return nil, &types.NoSuchAttrError{Type: v.Type(), Name: name}
	}
}

func (v *Vector) SetAttr(name string, val types.Value) error {
	n, ok := val.(types.Number)
	if !ok {
		return &types.TypeError{Want: "number", Got: val.Type()}
	}
	switch name {
	case "x":
		v.X = float64(n)
	case "y":
		v.Y = float64(n)
	case "z":
		v.Z = float64(n)
	default:
		return &types.NoSuchAttrError{Type: v.Type(), Name: name}
	}
	return nil
}

func (v *Vector) CallAttr(name string, positional []types.Value, _ map[string]types.Value) (types.Value, error) {
	other := func(i int) (*Vector, error) {
		if i >= len(positional) {
			return nil, fmt.Errorf("vector.%s: missing argument", name)
		}
		o, ok := positional[i].(*Vector)
		if !ok {
			return nil, fmt.Errorf("vector.%s: argument must be a vector, got %s", name, positional[i].Type())
		}
		return o, nil
	}
	scalar := func(i int) (float64, error) {
		if i >= len(positional) {
			return 0, fmt.Errorf("vector.%s: missing argument", name)
		}
		n, ok := positional[i].(types.Number)
		if !ok {
			return 0, fmt.Errorf("vector.%s: argument must be a number, got %s", name, positional[i].Type())
		}
		return float64(n), nil
	}

	switch name {
	case "add":
		o, err := other(0)
		if err != nil {
			return nil, err
		}
		return NewVector(v.X+o.X, v.Y+o.Y, v.Z+o.Z), nil
	case "sub":
		o, err := other(0)
		if err != nil {
			return nil, err
		}
		return NewVector(v.X-o.X, v.Y-o.Y, v.Z-o.Z), nil
	case "mul":
		s, err := scalar(0)
		if err != nil {
			return nil, err
		}
		return NewVector(v.X*s, v.Y*s, v.Z*s), nil
	case "length":
		return types.Number(math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)), nil
	case "normalize":
		l := math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
		if l == 0 {
			return NewVector(0, 0, 0), nil
		}
		return NewVector(v.X/l, v.Y/l, v.Z/l), nil
	case "lerp":
		o, err := other(0)
		if err != nil {
			return nil, err
		}
		t, err := scalar(1)
		if err != nil {
			return nil, err
		}
		return NewVector(
			v.X+(o.X-v.X)*t,
			v.Y+(o.Y-v.Y)*t,
			v.Z+(o.Z-v.Z)*t,
		), nil
	default:
		return nil, &types.NoSuchAttrError{Type: v.Type(), Name: name}
	}
}
