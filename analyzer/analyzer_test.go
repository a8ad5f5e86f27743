package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/tickscript/analyzer"
	"github.com/mna/tickscript/lang/parser"
)

func TestAnalyzeFlagsUndeclaredReference(t *testing.T) {
	prog, err := parser.Parse([]byte("let a = b\n"))
	require.NoError(t, err)

	diags := analyzer.Analyze(prog, nil)
	require.Len(t, diags, 1)
	require.Contains(t, diags[0].Msg, `"b"`)
}

func TestAnalyzeAcceptsBuiltins(t *testing.T) {
	prog, err := parser.Parse([]byte("let a = math.sqrt(4)\n"))
	require.NoError(t, err)

	diags := analyzer.Analyze(prog, []string{"math"})
	require.Empty(t, diags)
}

func TestAnalyzeAcceptsForwardFunctionReference(t *testing.T) {
	prog, err := parser.Parse([]byte("func a():\n    return b()\nfunc b():\n    return 1\n"))
	require.NoError(t, err)

	diags := analyzer.Analyze(prog, nil)
	require.Empty(t, diags)
}

func TestAnalyzeAcceptsParamsAndLoopVar(t *testing.T) {
	prog, err := parser.Parse([]byte("func f(x):\n    for i in x:\n        let y = i\n"))
	require.NoError(t, err)

	diags := analyzer.Analyze(prog, nil)
	require.Empty(t, diags)
}

func TestAnalyzeFlagsAssignmentToUndeclaredName(t *testing.T) {
	prog, err := parser.Parse([]byte("set z = 1\n"))
	require.NoError(t, err)

	diags := analyzer.Analyze(prog, nil)
	require.Len(t, diags, 1)
	require.Contains(t, diags[0].Msg, `"z"`)
}

func TestAnalyzeFunctionScopeDoesNotLeak(t *testing.T) {
	prog, err := parser.Parse([]byte("func f(x):\n    let y = x\nlet z = y\n"))
	require.NoError(t, err)

	diags := analyzer.Analyze(prog, nil)
	require.Len(t, diags, 1)
	require.Contains(t, diags[0].Msg, `"y"`)
}
