package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/tickscript/lang/compiler"
	"github.com/mna/tickscript/lang/parser"
	"github.com/mna/tickscript/lang/types"
)

func compile(t *testing.T, src string) (*types.Chunk, map[string]*types.FunctionObject) {
	t.Helper()
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	chunk, fns, err := compiler.Compile(prog)
	require.NoError(t, err)
	return chunk, fns
}

func ops(chunk *types.Chunk) []types.OpCode {
	out := make([]types.OpCode, len(chunk.Code))
	for i, in := range chunk.Code {
		out[i] = in.Op
	}
	return out
}

func TestCompileVarDeclTopLevel(t *testing.T) {
	chunk, _ := compile(t, "let x = 1\n")
	require.Equal(t, []types.OpCode{
		types.OpPushConst, types.OpDefineGlobal,
		types.OpReturnNone,
	}, ops(chunk))
}

func TestCompileIncGlobalRecognition(t *testing.T) {
	chunk, _ := compile(t, "let x = 0\nset x ++\n")
	found := false
	for _, in := range chunk.Code {
		if in.Op == types.OpIncGlobal {
			found = true
		}
	}
	require.True(t, found, "expected INC_GLOBAL in %v", ops(chunk))
}

func TestCompileAddGlobalRecognition(t *testing.T) {
	chunk, _ := compile(t, "let x = 0\nset x += 5\n")
	found := false
	for _, in := range chunk.Code {
		if in.Op == types.OpAddGlobal {
			found = true
		}
	}
	require.True(t, found, "expected ADD_GLOBAL in %v", ops(chunk))
}

func TestCompileIfElseFusesConditionalPop(t *testing.T) {
	chunk, _ := compile(t, "if true:\n    let x = 1\nelse:\n    let x = 2\n")
	hasFalsePop := false
	for _, in := range chunk.Code {
		if in.Op == types.OpJumpIfFalsePop {
			hasFalsePop = true
		}
		require.NotEqual(t, types.OpJumpIfFalse, in.Op, "plain JUMP_IF_FALSE should have fused away")
	}
	require.True(t, hasFalsePop)
}

func TestCompileWhileLoopBreak(t *testing.T) {
	src := "let i = 0\nwhile i < 10:\n    if i == 5:\n        break\n    set i ++\n"
	chunk, _ := compile(t, src)
	var sawLoop, sawJump bool
	for _, in := range chunk.Code {
		if in.Op == types.OpLoop {
			sawLoop = true
		}
		if in.Op == types.OpJump {
			sawJump = true
		}
	}
	require.True(t, sawLoop, "expected LOOP in %v", ops(chunk))
	require.True(t, sawJump, "expected JUMP (break) in %v", ops(chunk))
}

func TestCompileForLoopOverList(t *testing.T) {
	chunk, _ := compile(t, "for item in [1, 2, 3]:\n    let x = item\n")
	var sawGetIter, sawForIter bool
	for _, in := range chunk.Code {
		if in.Op == types.OpGetIter {
			sawGetIter = true
		}
		if in.Op == types.OpForIter {
			sawForIter = true
		}
	}
	require.True(t, sawGetIter)
	require.True(t, sawForIter)
}

func TestCompileFuncDeclRegistersFunction(t *testing.T) {
	src := "func add(a, b = 1):\n    return a + b\n"
	_, fns := compile(t, src)
	fo, ok := fns["add"]
	require.True(t, ok)
	require.Equal(t, 2, fo.Arity)
	require.Equal(t, types.Number(1), fo.Defaults["b"])
}

func TestCompileNonLiteralDefaultBecomesNull(t *testing.T) {
	_, fns := compile(t, "func f(a, b = a):\n    return b\n")
	fo := fns["f"]
	require.Equal(t, types.None, fo.Defaults["b"])
}

func TestCompileLocalAssignmentUsesLocalSlots(t *testing.T) {
	_, fns := compile(t, "func f(x):\n    let y = x + 1\n    return y\n")
	fo := fns["f"]
	require.Equal(t, []string{"x", "y"}, fo.LocalNames)
	var sawSetLocalPop bool
	for _, in := range fo.Chunk.Code {
		if in.Op == types.OpSetLocalPop {
			sawSetLocalPop = true
		}
	}
	require.True(t, sawSetLocalPop)
}

func TestCompileCallWithKeywordArgs(t *testing.T) {
	src := "func f(a, b):\n    return a\nlet x = f(1, b = 2)\n"
	chunk, _ := compile(t, src)
	var found *types.Instruction
	for i, in := range chunk.Code {
		if in.Op == types.OpCallKw {
			found = &chunk.Code[i]
		}
	}
	require.NotNil(t, found)
	require.Equal(t, 1, found.Operand)
	require.Equal(t, []string{"b"}, found.Names)
}

func TestCompileMetaBlockStrictJSON(t *testing.T) {
	src := "@meta {\n  \"name\": \"demo\",\n  \"version\": 2\n}\nlet x = 1\n"
	chunk, _ := compile(t, src)
	require.Equal(t, types.String("demo"), chunk.Metadata["name"])
	require.Equal(t, types.Number(2), chunk.Metadata["version"])
}

func TestCompileInvalidMetaJSONErrors(t *testing.T) {
	prog, err := parser.Parse([]byte("@meta {\n  not json\n}\n"))
	require.NoError(t, err)
	_, _, err = compiler.Compile(prog)
	require.Error(t, err)
}

func TestCompileBreakOutsideLoopIsError(t *testing.T) {
	prog, err := parser.Parse([]byte("break\n"))
	require.NoError(t, err)
	_, _, err = compiler.Compile(prog)
	require.Error(t, err)
}

func TestCompileBareReturnUsesReturnNone(t *testing.T) {
	_, fns := compile(t, "func f():\n    return\n")
	fo := fns["f"]
	last := fo.Chunk.Code[len(fo.Chunk.Code)-1]
	require.Equal(t, types.OpReturnNone, last.Op)
}
