// Package host implements the Host ABI spec.md §4.5 describes: native
// callables and host_object modules a program reaches through ordinary
// global lookups. It is grounded on nenuphar/lang/machine's
// Thread.Predeclared/universe.go idiom ("the set of predeclared
// identifiers... available to a program") and on
// original_source/runtime/stdlib/__init__.py's get_builtins, which
// assembles exactly this kind of name -> value table for the VM.
package host

import "github.com/mna/tickscript/lang/types"

// Registry accumulates the name -> value bindings a script sees without a
// `let`: stdlib modules (math, time, random), free functions (print, len),
// and anything else a host embeds. Apply it to a machine.Thread's
// Predeclared field before Run/Resume.
type Registry struct {
	bindings map[string]types.Value
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{bindings: map[string]types.Value{}}
}

// Bind assigns name to v, overwriting any prior binding.
func (r *Registry) Bind(name string, v types.Value) {
	r.bindings[name] = v
}

// BindFunc wraps fn as a types.Native and binds it to name, the common
// case for a free function (print, len, range, ...).
func (r *Registry) BindFunc(name string, fn types.NativeFunc) {
	r.Bind(name, &types.Native{Name: name, Fn: fn})
}

// Bindings returns the accumulated name -> value table, suitable for
// assigning directly to a machine.Thread's Predeclared field.
func (r *Registry) Bindings() map[string]types.Value {
	return r.bindings
}

// Names returns the bound names, suitable as the builtins argument to
// analyzer.Analyze so a reference to a host-supplied name is never
// flagged as undeclared.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.bindings))
	for name := range r.bindings {
		names = append(names, name)
	}
	return names
}

// ArgError reports a native callable invoked with the wrong argument
// count or a positional argument of the wrong type; the VM wraps it as a
// NativeError per spec.md §7.
type ArgError struct {
	Func, Msg string
}

func (e *ArgError) Error() string { return e.Func + "(): " + e.Msg }

// Number extracts the nth positional argument as a Number, or returns an
// ArgError naming fn.
func Number(fn string, positional []types.Value, n int) (float64, error) {
	if n >= len(positional) {
		return 0, &ArgError{Func: fn, Msg: "missing required argument"}
	}
	v, ok := positional[n].(types.Number)
	if !ok {
		return 0, &ArgError{Func: fn, Msg: "argument must be a number, got " + positional[n].Type()}
	}
	return float64(v), nil
}

// OptionalNumber is like Number but returns def when the argument is
// absent.
func OptionalNumber(fn string, positional []types.Value, n int, def float64) (float64, error) {
	if n >= len(positional) {
		return def, nil
	}
	v, ok := positional[n].(types.Number)
	if !ok {
		return 0, &ArgError{Func: fn, Msg: "argument must be a number, got " + positional[n].Type()}
	}
	return float64(v), nil
}
