package host_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/tickscript/lang/compiler"
	"github.com/mna/tickscript/lang/host"
	"github.com/mna/tickscript/lang/machine"
	"github.com/mna/tickscript/lang/parser"
	"github.com/mna/tickscript/lang/types"
)

func run(t *testing.T, src string, stdout *bytes.Buffer) *machine.Thread {
	t.Helper()
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	top, fns, err := compiler.Compile(prog)
	require.NoError(t, err)

	r := host.NewRegistry()
	host.InstallBuiltins(r, stdout)
	require.NoError(t, host.InstallStdlib(r, t.TempDir(), "host_test"))

	th := &machine.Thread{Predeclared: r.Bindings()}
	th.Load(top, fns)
	_, err = th.Run(context.Background())
	require.NoError(t, err)
	return th
}

func TestPrintWritesToStdout(t *testing.T) {
	var buf bytes.Buffer
	run(t, "print(\"hello\")\n", &buf)
	require.Equal(t, "hello\n", buf.String())
}

func TestLenOnStringListAndMap(t *testing.T) {
	var buf bytes.Buffer
	th := run(t, "let a = len(\"abcd\")\nlet b = len([1, 2, 3])\nlet c = len({\"x\": 1, \"y\": 2})\n", &buf)
	require.Equal(t, types.Number(4), th.Globals["a"])
	require.Equal(t, types.Number(3), th.Globals["b"])
	require.Equal(t, types.Number(2), th.Globals["c"])
}

func TestRangeProducesIterableSequence(t *testing.T) {
	var buf bytes.Buffer
	th := run(t, "let s = 0\nfor i in range(5):\n    set s = s + i\n", &buf)
	require.Equal(t, types.Number(10), th.Globals["s"])
}

func TestMathModuleDataAndMethodAttributes(t *testing.T) {
	var buf bytes.Buffer
	th := run(t, "let p = math.pi\nlet r = math.sqrt(16)\n", &buf)
	require.InDelta(t, 3.14159, float64(th.Globals["p"].(types.Number)), 1e-4)
	require.Equal(t, types.Number(4), th.Globals["r"])
}

func TestVectorConstructorAndMethods(t *testing.T) {
	var buf bytes.Buffer
	th := run(t, "let v = vector(3, 4)\nlet l = v.length()\n", &buf)
	require.Equal(t, types.Number(5), th.Globals["l"])
}

func TestIntFloatStrTypeConversions(t *testing.T) {
	var buf bytes.Buffer
	th := run(t, "let a = int(\"3\")\nlet b = float(\"2.5\")\nlet c = str(7)\nlet d = type(7)\n", &buf)
	require.Equal(t, types.Number(3), th.Globals["a"])
	require.Equal(t, types.Number(2.5), th.Globals["b"])
	require.Equal(t, types.String("7"), th.Globals["c"])
	require.Equal(t, types.String("number"), th.Globals["d"])
}

func TestRandomModuleProducesInRangeValues(t *testing.T) {
	var buf bytes.Buffer
	th := run(t, "let n = random.randint(1, 1)\n", &buf)
	require.Equal(t, types.Number(1), th.Globals["n"])
}
