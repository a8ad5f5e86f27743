package stdlib

import "github.com/mna/tickscript/lang/types"

// bindMethod returns the Native value GET_ATTR produces for a method-style
// attribute name on a host object: spec.md §4.4's "on host_object, the
// host decides whether attributes are callable (binding a method) or
// data" — GetAttr is where that decision happens, and for a method name
// it binds a Native that forwards to CallAttr, since the compiler (no
// `CALL_ATTR`-fused opcode exists) always reaches a host object's method
// through plain `GET_ATTR` followed by `CALL`.
func bindMethod(ho types.HostObject, name string) *types.Native {
	return &types.Native{Name: name, Fn: func(positional []types.Value, keyword map[string]types.Value) (types.Value, error) {
		return ho.CallAttr(name, positional, keyword)
	}}
}
