package machine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/tickscript/lang/compiler"
	"github.com/mna/tickscript/lang/machine"
	"github.com/mna/tickscript/lang/parser"
	"github.com/mna/tickscript/lang/types"
)

func run(t *testing.T, src string) *machine.Thread {
	t.Helper()
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	top, fns, err := compiler.Compile(prog)
	require.NoError(t, err)

	th := &machine.Thread{}
	th.Load(top, fns)
	_, err = th.Run(context.Background())
	require.NoError(t, err)
	return th
}

func TestArithmeticAndGlobals(t *testing.T) {
	th := run(t, "let a = 2\nlet b = 3\nset a = a + b\n")
	require.Equal(t, types.Number(5), th.Globals["a"])
}

func TestIncrementFusesToIncGlobal(t *testing.T) {
	prog, err := parser.Parse([]byte("let x = 0\nset x = x + 1\n"))
	require.NoError(t, err)
	top, _, err := compiler.Compile(prog)
	require.NoError(t, err)

	count := 0
	for _, in := range top.Code {
		if in.Op == types.OpIncGlobal {
			count++
		}
	}
	require.Equal(t, 1, count)

	th := &machine.Thread{}
	th.Load(top, nil)
	ctx := context.Background()
	_, err = th.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, types.Number(1), th.Globals["x"])
}

func TestForLoopIteration(t *testing.T) {
	th := run(t, "let s = 0\nfor i in [1, 2, 3, 4]:\n    set s = s + i\n")
	require.Equal(t, types.Number(10), th.Globals["s"])
}

func TestYieldSuspendsAndResumePreservesState(t *testing.T) {
	prog, err := parser.Parse([]byte("let c = 0\nset c = c + 1\nyield\nset c = c + 1\n"))
	require.NoError(t, err)
	top, fns, err := compiler.Compile(prog)
	require.NoError(t, err)

	th := &machine.Thread{}
	th.Load(top, fns)
	ctx := context.Background()
	_, err = th.Run(ctx)
	require.NoError(t, err)
	require.True(t, th.IsYielded())
	require.Equal(t, types.Number(1), th.Globals["c"])

	_, err = th.Resume(ctx)
	require.NoError(t, err)
	require.False(t, th.IsYielded())
	require.Equal(t, types.Number(2), th.Globals["c"])
}

func TestInstructionBudgetYieldsAndResumeCompletes(t *testing.T) {
	src := "let i = 0\nlet s = 0\nwhile i < 50:\n    set s = s + i\n    set i = i + 1\n"
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	top, fns, err := compiler.Compile(prog)
	require.NoError(t, err)

	th := &machine.Thread{InstructionLimit: 10}
	th.Load(top, fns)
	ctx := context.Background()

	_, err = th.Run(ctx)
	require.NoError(t, err)
	require.True(t, th.IsYielded())

	for th.IsYielded() {
		_, err = th.Resume(ctx)
		require.NoError(t, err)
	}
	require.Equal(t, types.Number(50), th.Globals["i"])
	// sum(0..49)
	require.Equal(t, types.Number(1225), th.Globals["s"])
}

func TestFunctionCallPositionalKeywordDefaultsAndKwargs(t *testing.T) {
	src := "func greet(name, greeting = \"hi\", **rest):\n" +
		"    return greeting\n" +
		"let g = greet(\"ada\")\n" +
		"let h = greet(\"ada\", greeting = \"yo\")\n"
	th := run(t, src)
	require.Equal(t, types.String("hi"), th.Globals["g"])
	require.Equal(t, types.String("yo"), th.Globals["h"])
}

func TestRecursiveFunctionCall(t *testing.T) {
	src := "func fact(n):\n" +
		"    if n <= 1:\n" +
		"        return 1\n" +
		"    return n * fact(n - 1)\n" +
		"let r = fact(5)\n"
	th := run(t, src)
	require.Equal(t, types.Number(120), th.Globals["r"])
}

func TestMissingRequiredArgumentIsTypeError(t *testing.T) {
	prog, err := parser.Parse([]byte("func f(a):\n    return a\nlet x = f()\n"))
	require.NoError(t, err)
	top, fns, err := compiler.Compile(prog)
	require.NoError(t, err)

	th := &machine.Thread{}
	th.Load(top, fns)
	_, err = th.Run(context.Background())
	require.Error(t, err)
	var rerr *machine.RuntimeError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, machine.KindTypeError, rerr.Kind)
}

func TestDivisionByZeroIsArithmeticError(t *testing.T) {
	prog, err := parser.Parse([]byte("let x = 1 / 0\n"))
	require.NoError(t, err)
	top, fns, err := compiler.Compile(prog)
	require.NoError(t, err)

	th := &machine.Thread{}
	th.Load(top, fns)
	_, err = th.Run(context.Background())
	require.Error(t, err)
	var rerr *machine.RuntimeError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, machine.KindArithmetic, rerr.Kind)
}

func TestListAndMapLiteralsIndexAndIterate(t *testing.T) {
	th := run(t, "let l = [1, 2, 3]\nlet x = l[1]\nlet m = {\"a\": 1}\nlet y = m[\"a\"]\n")
	require.Equal(t, types.Number(2), th.Globals["x"])
	require.Equal(t, types.Number(1), th.Globals["y"])
}

func TestStringConcatenationViaAdd(t *testing.T) {
	th := run(t, "let s = \"foo\" + \"bar\"\n")
	require.Equal(t, types.String("foobar"), th.Globals["s"])
}

func TestComparisonAgainstNullIsAlwaysFalse(t *testing.T) {
	src := "func nothing():\n" +
		"    return\n" +
		"let a = nothing()\n" +
		"let b = a > 1\n" +
		"let c = a < 1\n"
	th := run(t, src)
	require.Equal(t, types.Bool(false), th.Globals["b"])
	require.Equal(t, types.Bool(false), th.Globals["c"])
}

// A `@meta { "no_limit": true }` block means unlimited instructions for
// every Run/Resume/CallFunction on this thread, not just the first.
func TestNoLimitMetaStaysUnlimitedAcrossCalls(t *testing.T) {
	src := "@meta {\"no_limit\": true}\n" +
		"func count():\n" +
		"    let i = 0\n" +
		"    while i < 5000:\n" +
		"        set i = i + 1\n" +
		"    return i\n" +
		"let a = count()\n"
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	top, fns, err := compiler.Compile(prog)
	require.NoError(t, err)

	th := &machine.Thread{}
	th.Load(top, fns)
	ctx := context.Background()

	_, err = th.Run(ctx)
	require.NoError(t, err)
	require.False(t, th.IsYielded())
	require.Equal(t, types.Number(5000), th.Globals["a"])

	v, err := th.CallFunction(ctx, "count")
	require.NoError(t, err)
	require.False(t, th.IsYielded())
	require.Equal(t, types.Number(5000), v)
}
