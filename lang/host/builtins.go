package host

import (
	"fmt"
	"io"
	"strconv"

	"github.com/mna/tickscript/lang/types"
)

// InstallBuiltins binds the free functions original_source's
// get_builtins puts at the top level rather than under a module name
// (print, len, str, int, float, type, range); spec.md's own testable
// scenarios (§8) call print(...) directly, confirming it is a
// Predeclared global rather than a VM opcode.
func InstallBuiltins(r *Registry, stdout io.Writer) {
	r.BindFunc("print", func(positional []types.Value, _ map[string]types.Value) (types.Value, error) {
		args := make([]any, len(positional))
		for i, v := range positional {
			args[i] = v.String()
		}
		fmt.Fprintln(stdout, args...)
		return types.None, nil
	})

	r.BindFunc("len", func(positional []types.Value, _ map[string]types.Value) (types.Value, error) {
		if len(positional) != 1 {
			return nil, &ArgError{Func: "len", Msg: "want 1 argument"}
		}
		switch v := positional[0].(type) {
		case types.String:
			return types.Number(len([]rune(string(v)))), nil
		case *types.List:
			return types.Number(v.Len()), nil
		case *types.Map:
			return types.Number(v.Len()), nil
		default:
			return nil, &ArgError{Func: "len", Msg: v.Type() + " has no length"}
		}
	})

	r.BindFunc("str", func(positional []types.Value, _ map[string]types.Value) (types.Value, error) {
		if len(positional) != 1 {
			return nil, &ArgError{Func: "str", Msg: "want 1 argument"}
		}
		return types.String(positional[0].String()), nil
	})

	r.BindFunc("type", func(positional []types.Value, _ map[string]types.Value) (types.Value, error) {
		if len(positional) != 1 {
			return nil, &ArgError{Func: "type", Msg: "want 1 argument"}
		}
		return types.String(positional[0].Type()), nil
	})

	r.BindFunc("int", func(positional []types.Value, _ map[string]types.Value) (types.Value, error) {
		if len(positional) != 1 {
			return nil, &ArgError{Func: "int", Msg: "want 1 argument"}
		}
		switch v := positional[0].(type) {
		case types.Number:
			return types.Number(v.Int()), nil
		case types.String:
			n, err := strconv.Atoi(string(v))
			if err != nil {
				return nil, &ArgError{Func: "int", Msg: "cannot convert " + string(v) + " to int"}
			}
			return types.Number(n), nil
		case types.Bool:
			if v {
				return types.Number(1), nil
			}
			return types.Number(0), nil
		default:
			return nil, &ArgError{Func: "int", Msg: "cannot convert " + v.Type() + " to int"}
		}
	})

	r.BindFunc("float", func(positional []types.Value, _ map[string]types.Value) (types.Value, error) {
		if len(positional) != 1 {
			return nil, &ArgError{Func: "float", Msg: "want 1 argument"}
		}
		switch v := positional[0].(type) {
		case types.Number:
			return v, nil
		case types.String:
			n, err := strconv.ParseFloat(string(v), 64)
			if err != nil {
				return nil, &ArgError{Func: "float", Msg: "cannot convert " + string(v) + " to float"}
			}
			return types.Number(n), nil
		default:
			return nil, &ArgError{Func: "float", Msg: "cannot convert " + v.Type() + " to float"}
		}
	})

	r.BindFunc("range", func(positional []types.Value, _ map[string]types.Value) (types.Value, error) {
		var start, stop, step float64
		var err error
		switch len(positional) {
		case 1:
			stop, err = Number("range", positional, 0)
			step = 1
		case 2:
			start, err = Number("range", positional, 0)
			if err == nil {
				stop, err = Number("range", positional, 1)
			}
			step = 1
		case 3:
			start, err = Number("range", positional, 0)
			if err == nil {
				stop, err = Number("range", positional, 1)
			}
			if err == nil {
				step, err = Number("range", positional, 2)
			}
		default:
			return nil, &ArgError{Func: "range", Msg: "want 1 to 3 arguments"}
		}
		if err != nil {
			return nil, err
		}
		if step == 0 {
			return nil, &ArgError{Func: "range", Msg: "step must not be zero"}
		}
		return types.NewRangeIterator(int(start), int(stop), int(step)), nil
	})
}
