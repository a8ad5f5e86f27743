package machine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/tickscript/lang/compiler"
	"github.com/mna/tickscript/lang/parser"
	"github.com/mna/tickscript/lang/types"
)

// Regression test for CallFunction invoked while the thread is already
// suspended (IsYielded()==true) — the path script.Script.ProcessEvents
// exercises when dispatching a queued hotkey before the tick loop's own
// Resume call. Before startDepth was captured after th.call pushed the
// callee's frame, finishFrame compared against the pre-call depth and
// left a stray return value on th.stack for every such call.
func TestCallFunctionWhileYieldedDoesNotLeakStack(t *testing.T) {
	src := "func hotkey(v):\n" +
		"    return v + 1\n" +
		"let c = 0\n" +
		"yield\n" +
		"set c = c + 1\n"
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	top, fns, err := compiler.Compile(prog)
	require.NoError(t, err)

	th := &Thread{}
	th.Load(top, fns)
	ctx := context.Background()

	_, err = th.Run(ctx)
	require.NoError(t, err)
	require.True(t, th.IsYielded())
	stackLen := len(th.stack)

	for i := 0; i < 3; i++ {
		v, err := th.CallFunction(ctx, "hotkey", types.Number(i))
		require.NoError(t, err)
		require.Equal(t, types.Number(i+1), v)
		require.Equal(t, stackLen, len(th.stack))
	}

	_, err = th.Resume(ctx)
	require.NoError(t, err)
	require.False(t, th.IsYielded())
	require.Equal(t, types.Number(1), th.Globals["c"])
}
