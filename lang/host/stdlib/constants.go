package stdlib

import (
	"math"

	"github.com/mna/tickscript/lang/types"
)

// Constants is the host_object ported from
// original_source/runtime/stdlib/constants.py. Nearly everything in that
// file is Windows-API/hotkey/keycode data (GWL_STYLE, WM_HOTKEY, the
// pynput-derived K_* virtual-key table) bound to OS window/input
// integration, which spec.md's "host integration" Non-goal excludes and
// SPEC_FULL.md explicitly stubs out (screen/window/ui/network/input). The
// one host-independent sliver — numeric constants a script can use
// without any OS binding — is kept and generalized to this language's
// own needs (pi/tau/e already live on Math; this module covers the
// sentinels a script commonly wants from a "constants" module: infinity,
// not-a-number, and a default floating point comparison epsilon).
type Constants struct{}

var _ types.HostObject = Constants{}

func (Constants) Type() string   { return "host" }
func (Constants) Truth() bool    { return true }
func (Constants) String() string { return "<module constants>" }

func (Constants) GetAttr(name string) (types.Value, error) {
	switch name {
	case "inf":
		return types.Number(math.Inf(1)), nil
	case "neg_inf":
		return types.Number(math.Inf(-1)), nil
	case "nan":
		return types.Number(math.NaN()), nil
	case "epsilon":
		return types.Number(1e-9), nil
	default:
		return nil, &types.NoSuchAttrError{Type: "host", Name: name}
	}
}

func (Constants) SetAttr(name string, _ types.Value) error {
	return &types.NoSuchAttrError{Type: "host", Name: name}
}

func (Constants) CallAttr(name string, _ []types.Value, _ map[string]types.Value) (types.Value, error) {
	return nil, &types.NoSuchAttrError{Type: "host", Name: name}
}
