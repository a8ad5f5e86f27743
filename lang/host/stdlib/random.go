package stdlib

import (
	"fmt"
	"math/rand"

	"github.com/mna/tickscript/lang/types"
)

// Random is the host_object ported from
// original_source/runtime/stdlib/random_mod.py's RandomWrapper.
type Random struct{}

var _ types.HostObject = Random{}

func (Random) Type() string   { return "host" }
func (Random) Truth() bool    { return true }
func (Random) String() string { return "<module random>" }

var randomMethods = map[string]bool{
	"random": true, "uniform": true, "randint": true, "choice": true, "shuffle": true,
}

func (r Random) GetAttr(name string) (types.Value, error) {
	if randomMethods[name] {
		return bindMethod(r, name), nil
	}
	return nil, &types.NoSuchAttrError{Type: "host", Name: name}
}

func (Random) SetAttr(name string, _ types.Value) error {
	return &types.NoSuchAttrError{Type: "host", Name: name}
}

func (Random) CallAttr(name string, positional []types.Value, _ map[string]types.Value) (types.Value, error) {
	switch name {
	case "random":
		return types.Number(rand.Float64()), nil
	case "uniform":
		a, err := num(name, positional, 0)
		if err != nil {
			return nil, err
		}
		b, err := num(name, positional, 1)
		if err != nil {
			return nil, err
		}
		return types.Number(a + rand.Float64()*(b-a)), nil
	case "randint":
		a, err := num(name, positional, 0)
		if err != nil {
			return nil, err
		}
		b, err := num(name, positional, 1)
		if err != nil {
			return nil, err
		}
		lo, hi := int(a), int(b)
		if hi < lo {
			return nil, fmt.Errorf("random.randint: empty range [%d, %d]", lo, hi)
		}
		return types.Number(lo + rand.Intn(hi-lo+1)), nil
	case "choice":
		l, err := listArg(name, positional, 0)
		if err != nil {
			return nil, err
		}
		if l.Len() == 0 {
			return nil, fmt.Errorf("random.choice: list is empty")
		}
		return l.Elems[rand.Intn(l.Len())], nil
	case "shuffle":
		l, err := listArg(name, positional, 0)
		if err != nil {
			return nil, err
		}
		rand.Shuffle(len(l.Elems), func(i, j int) {
			l.Elems[i], l.Elems[j] = l.Elems[j], l.Elems[i]
		})
		return l, nil
	default:
		return nil, &types.NoSuchAttrError{Type: "host", Name: name}
	}
}

func listArg(fn string, positional []types.Value, i int) (*types.List, error) {
	if i >= len(positional) {
		return nil, fmt.Errorf("random.%s: missing argument", fn)
	}
	l, ok := positional[i].(*types.List)
	if !ok {
		return nil, fmt.Errorf("random.%s: argument must be a list, got %s", fn, positional[i].Type())
	}
	return l, nil
}
