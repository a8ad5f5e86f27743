package host

import "github.com/mna/tickscript/lang/host/stdlib"

// InstallStdlib binds the math/random/time/constants/vector/storage
// modules lang/host/stdlib ports, per SPEC_FULL.md's SUPPLEMENTED
// FEATURES §2. storageDir and name are storage's key/value file
// location and the script it's scoped to.
func InstallStdlib(r *Registry, storageDir, name string) error {
	bindings, err := stdlib.Bindings(storageDir, name)
	if err != nil {
		return err
	}
	for n, v := range bindings {
		r.Bind(n, v)
	}
	return nil
}
