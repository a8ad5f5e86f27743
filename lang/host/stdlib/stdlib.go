// Package stdlib ports the modules of original_source/runtime/stdlib that
// need nothing but pure computation or plain file I/O (math, time,
// random, vector, constants, storage) as host_object v-tables, per
// SPEC_FULL.md's SUPPLEMENTED FEATURES §2. macro.py and the GUI/device-
// bound modules (screen, window, ui, network, input, system) are not
// ported: spec.md's "host integration" Non-goal already excludes the
// latter group, and both genuinely depend on something this module has
// no use for (macro.py needs a live MacroRuntime instance to read/write
// other macros' state; the rest need OS bindings — pyautogui, winsound,
// ctypes). storage.py's StorageWrapper is the one module in that
// originally-excluded group that doesn't actually fit either reason — it
// only needs a directory and a name, and does plain os/json file I/O —
// so it is ported here instead of dropped.
package stdlib

import "github.com/mna/tickscript/lang/types"

// Bindings returns the name -> value table for every stdlib module this
// package ports, suitable for merging into a host.Registry. storageDir
// is the directory storage's key/value file lives under, and name
// identifies the script it's scoped to (original_source's macro_name).
func Bindings(storageDir, name string) (map[string]types.Value, error) {
	storage, err := NewStorage(storageDir, name)
	if err != nil {
		return nil, err
	}
	return map[string]types.Value{
		"math":      Math{},
		"random":    Random{},
		"time":      NewTime(),
		"constants": Constants{},
		"storage":   storage,
		"vector": &types.Native{Name: "vector", Fn: func(positional []types.Value, _ map[string]types.Value) (types.Value, error) {
			x, err := num("vector", positional, 0)
			if err != nil {
				return nil, err
			}
			y, err := num("vector", positional, 1)
			if err != nil {
				return nil, err
			}
			z, err := optionalNum("vector", positional, 2, 0)
			if err != nil {
				return nil, err
			}
			return NewVector(x, y, z), nil
		}},
	}, nil
}
