package stdlib

import (
	"fmt"
	gomath "math"
	"math/rand"

	"github.com/mna/tickscript/lang/types"
)

// Math is the host_object ported from
// original_source/runtime/stdlib/math.py's MathWrapper: the pi/e data
// attributes plus the trig/rounding/power free functions, generalized
// here to bezier/lerp/jitter helpers operating on *Vector the way the
// original's methods do via duck typing (`hasattr(a, 'lerp')`).
type Math struct{}

var _ types.HostObject = Math{}

func (Math) Type() string   { return "host" }
func (Math) Truth() bool    { return true }
func (Math) String() string { return "<module math>" }

var mathMethods = map[string]bool{
	"sin": true, "cos": true, "tan": true, "sqrt": true, "abs": true,
	"floor": true, "ceil": true, "round": true, "pow": true, "log": true,
	"vector": true, "lerp": true, "bezier": true, "bezier3": true, "jitter": true,
}

func (m Math) GetAttr(name string) (types.Value, error) {
	switch name {
	case "pi":
		return types.Number(gomath.Pi), nil
	case "e":
		return types.Number(gomath.E), nil
	default:
		if mathMethods[name] {
			return bindMethod(m, name), nil
		}
		return nil, &types.NoSuchAttrError{Type: "host", Name: name}
	}
}

func (Math) SetAttr(name string, _ types.Value) error {
	return &types.NoSuchAttrError{Type: "host", Name: name}
}

func num(fn string, positional []types.Value, i int) (float64, error) {
	if i >= len(positional) {
		return 0, fmt.Errorf("math.%s: missing argument", fn)
	}
	n, ok := positional[i].(types.Number)
	if !ok {
		return 0, fmt.Errorf("math.%s: argument must be a number, got %s", fn, positional[i].Type())
	}
	return float64(n), nil
}

func (Math) CallAttr(name string, positional []types.Value, _ map[string]types.Value) (types.Value, error) {
	one := func(f func(float64) float64) (types.Value, error) {
		x, err := num(name, positional, 0)
		if err != nil {
			return nil, err
		}
		return types.Number(f(x)), nil
	}

	switch name {
	case "sin":
		return one(gomath.Sin)
	case "cos":
		return one(gomath.Cos)
	case "tan":
		return one(gomath.Tan)
	case "sqrt":
		return one(gomath.Sqrt)
	case "abs":
		return one(gomath.Abs)
	case "floor":
		return one(gomath.Floor)
	case "ceil":
		return one(gomath.Ceil)
	case "round":
		x, err := num(name, positional, 0)
		if err != nil {
			return nil, err
		}
		n, err := optionalNum(name, positional, 1, 0)
		if err != nil {
			return nil, err
		}
		mult := gomath.Pow(10, n)
		return types.Number(gomath.Round(x*mult) / mult), nil
	case "pow":
		x, err := num(name, positional, 0)
		if err != nil {
			return nil, err
		}
		y, err := num(name, positional, 1)
		if err != nil {
			return nil, err
		}
		return types.Number(gomath.Pow(x, y)), nil
	case "log":
		x, err := num(name, positional, 0)
		if err != nil {
			return nil, err
		}
		base, err := optionalNum(name, positional, 1, gomath.E)
		if err != nil {
			return nil, err
		}
		return types.Number(gomath.Log(x) / gomath.Log(base)), nil
	case "vector":
		x, err := num(name, positional, 0)
		if err != nil {
			return nil, err
		}
		y, err := num(name, positional, 1)
		if err != nil {
			return nil, err
		}
		return NewVector(x, y, 0), nil
	case "lerp":
		if len(positional) == 0 {
			return nil, fmt.Errorf("math.lerp: missing argument")
		}
		if v0, ok := positional[0].(*Vector); ok {
			o, err := vecArg("lerp", positional, 1)
			if err != nil {
				return nil, err
			}
			t, err := num(name, positional, 2)
			if err != nil {
				return nil, err
			}
			return v0.CallAttr("lerp", []types.Value{o, types.Number(t)}, nil)
		}
		a, err := num(name, positional, 0)
		if err != nil {
			return nil, err
		}
		b, err := num(name, positional, 1)
		if err != nil {
			return nil, err
		}
		t, err := num(name, positional, 2)
		if err != nil {
			return nil, err
		}
		return types.Number(a + (b-a)*t), nil
	case "bezier":
		return bezierQuadratic(positional)
	case "bezier3":
		return bezierCubic(positional)
	case "jitter":
		return jitter(positional)
	default:
		return nil, &types.NoSuchAttrError{Type: "host", Name: name}
	}
}

func optionalNum(fn string, positional []types.Value, i int, def float64) (float64, error) {
	if i >= len(positional) {
		return def, nil
	}
	return num(fn, positional, i)
}

func vecArg(fn string, positional []types.Value, i int) (*Vector, error) {
	if i >= len(positional) {
		return nil, fmt.Errorf("math.%s: missing argument", fn)
	}
	v, ok := positional[i].(*Vector)
	if !ok {
		return nil, fmt.Errorf("math.%s: argument must be a vector, got %s", fn, positional[i].Type())
	}
	return v, nil
}

// bezierQuadratic ports math.py's `bezier(p0, p1, p2, t)`.
func bezierQuadratic(positional []types.Value) (types.Value, error) {
	p0, err := vecArg("bezier", positional, 0)
	if err != nil {
		return nil, err
	}
	p1, err := vecArg("bezier", positional, 1)
	if err != nil {
		return nil, err
	}
	p2, err := vecArg("bezier", positional, 2)
	if err != nil {
		return nil, err
	}
	t, err := num("bezier", positional, 3)
	if err != nil {
		return nil, err
	}
	invT := 1 - t
	return NewVector(
		invT*invT*p0.X+2*invT*t*p1.X+t*t*p2.X,
		invT*invT*p0.Y+2*invT*t*p1.Y+t*t*p2.Y,
		invT*invT*p0.Z+2*invT*t*p1.Z+t*t*p2.Z,
	), nil
}

// bezierCubic ports math.py's `bezier3(p0, p1, p2, p3, t)`.
func bezierCubic(positional []types.Value) (types.Value, error) {
	p0, err := vecArg("bezier3", positional, 0)
	if err != nil {
		return nil, err
	}
	p1, err := vecArg("bezier3", positional, 1)
	if err != nil {
		return nil, err
	}
	p2, err := vecArg("bezier3", positional, 2)
	if err != nil {
		return nil, err
	}
	p3, err := vecArg("bezier3", positional, 3)
	if err != nil {
		return nil, err
	}
	t, err := num("bezier3", positional, 4)
	if err != nil {
		return nil, err
	}
	invT := 1 - t
	c0 := invT * invT * invT
	c1 := 3 * invT * invT * t
	c2 := 3 * invT * t * t
	c3 := t * t * t
	return NewVector(
		c0*p0.X+c1*p1.X+c2*p2.X+c3*p3.X,
		c0*p0.Y+c1*p1.Y+c2*p2.Y+c3*p3.Y,
		c0*p0.Z+c1*p1.Z+c2*p2.Z+c3*p3.Z,
	), nil
}

// jitter ports math.py's `jitter(v, amount)`, which only perturbs x/y.
func jitter(positional []types.Value) (types.Value, error) {
	v, err := vecArg("jitter", positional, 0)
	if err != nil {
		return nil, err
	}
	amount, err := num("jitter", positional, 1)
	if err != nil {
		return nil, err
	}
	return NewVector(
		v.X+(rand.Float64()*2-1)*amount,
		v.Y+(rand.Float64()*2-1)*amount,
		v.Z,
	), nil
}
