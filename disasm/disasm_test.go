package disasm_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/tickscript/disasm"
	"github.com/mna/tickscript/lang/compiler"
	"github.com/mna/tickscript/lang/parser"
)

func TestChunkWritesMainHeader(t *testing.T) {
	prog, err := parser.Parse([]byte("let a = 1\n"))
	require.NoError(t, err)
	top, fns, err := compiler.Compile(prog)
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, disasm.Disassemble(&buf, top, fns))

	out := buf.String()
	require.Contains(t, out, "=== Disassembly: Main ===")
	require.Contains(t, out, "PUSH_CONST")
	require.Contains(t, out, "DEFINE_GLOBAL")
}

func TestChunkAnnotatesConstantOperands(t *testing.T) {
	prog, err := parser.Parse([]byte("let a = \"hi\"\nlet b = a\n"))
	require.NoError(t, err)
	top, fns, err := compiler.Compile(prog)
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, disasm.Disassemble(&buf, top, fns))

	out := buf.String()
	require.Contains(t, out, `(hi)`)
}

func TestChunkRecursesIntoFunctions(t *testing.T) {
	prog, err := parser.Parse([]byte("func greet(name):\n    return name\nlet g = greet(\"ada\")\n"))
	require.NoError(t, err)
	top, fns, err := compiler.Compile(prog)
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, disasm.Disassemble(&buf, top, fns))

	out := buf.String()
	require.Contains(t, out, "=== Disassembly: Function greet ===")
	require.Contains(t, out, "(args)")
}

func TestChunkHandlesEmptyFunctionsMap(t *testing.T) {
	prog, err := parser.Parse([]byte("let a = 1\n"))
	require.NoError(t, err)
	top, _, err := compiler.Compile(prog)
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, disasm.Disassemble(&buf, top, nil))
	require.Contains(t, buf.String(), "=== Disassembly: Main ===")
}
