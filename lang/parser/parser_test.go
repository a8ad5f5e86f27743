package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/tickscript/lang/ast"
	"github.com/mna/tickscript/lang/parser"
	"github.com/mna/tickscript/lang/token"
)

func TestParseVarDecl(t *testing.T) {
	prog, err := parser.Parse([]byte("let x = 1 + 2\n"))
	require.NoError(t, err)
	require.Len(t, prog.Decls, 1)
	vd, ok := prog.Decls[0].(*ast.VarDecl)
	require.True(t, ok)
	require.Equal(t, "x", vd.Name)
	bin, ok := vd.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, token.PLUS, bin.Op)
}

func TestParseFuncDeclWithDefaultsAndKwargs(t *testing.T) {
	src := "func greet(name, greeting = \"hi\", **opts):\n    return name\n"
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, prog.Decls, 1)
	fd, ok := prog.Decls[0].(*ast.FuncDecl)
	require.True(t, ok)
	require.Equal(t, "greet", fd.Name)
	require.Len(t, fd.Params, 2)
	require.Equal(t, "opts", fd.KwargsParam)
	require.NotNil(t, fd.Params[1].Default)
}

func TestParseIfElifElse(t *testing.T) {
	src := "if a:\n    let x = 1\nelif b:\n    let x = 2\nelse:\n    let x = 3\n"
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, prog.Decls, 1)
	ifs, ok := prog.Decls[0].(*ast.IfStmt)
	require.True(t, ok)
	require.NotNil(t, ifs.Else)
	require.Len(t, ifs.Else.Decls, 1)
	elif, ok := ifs.Else.Decls[0].(*ast.IfStmt)
	require.True(t, ok)
	require.NotNil(t, elif.Else)
}

func TestParseForLoop(t *testing.T) {
	src := "for item in items:\n    let x = item\n"
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	fs, ok := prog.Decls[0].(*ast.ForStmt)
	require.True(t, ok)
	require.Equal(t, "item", fs.ItemName)
}

func TestParseAugAssignDesugaring(t *testing.T) {
	prog, err := parser.Parse([]byte("set x += 1\n"))
	require.NoError(t, err)
	va, ok := prog.Decls[0].(*ast.VarAssign)
	require.True(t, ok)
	bin, ok := va.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	require.Equal(t, token.PLUS, bin.Op)
}

func TestParseIncDecDesugaring(t *testing.T) {
	prog, err := parser.Parse([]byte("set x ++\nset y --\n"))
	require.NoError(t, err)
	require.Len(t, prog.Decls, 2)
	va1 := prog.Decls[0].(*ast.VarAssign)
	bin1 := va1.Value.(*ast.BinaryExpr)
	require.Equal(t, token.PLUS, bin1.Op)
	va2 := prog.Decls[1].(*ast.VarAssign)
	bin2 := va2.Value.(*ast.BinaryExpr)
	require.Equal(t, token.MINUS, bin2.Op)
}

func TestParseCallWithKeywordArgs(t *testing.T) {
	prog, err := parser.Parse([]byte("move(x = 1, y = 2)\n"))
	require.NoError(t, err)
	es, ok := prog.Decls[0].(*ast.ExprStmt)
	require.True(t, ok)
	call, ok := es.X.(*ast.CallExpr)
	require.True(t, ok)
	require.Len(t, call.Args, 2)
	require.Equal(t, "x", call.Args[0].Name)
	require.Equal(t, "y", call.Args[1].Name)
}

func TestParsePositionalAfterKeywordIsError(t *testing.T) {
	_, err := parser.Parse([]byte("f(x = 1, 2)\n"))
	require.Error(t, err)
}

func TestParseListAndDictLiteralsAllowNewlines(t *testing.T) {
	src := "let l = [\n    1,\n    2,\n]\nlet d = {\n    \"a\": 1,\n}\n"
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, prog.Decls, 2)
	lv := prog.Decls[0].(*ast.VarDecl).Value.(*ast.ListExpr)
	require.Len(t, lv.Elems, 2)
	dv := prog.Decls[1].(*ast.VarDecl).Value.(*ast.DictExpr)
	require.Len(t, dv.Entries, 1)
}

func TestParseMetaBlock(t *testing.T) {
	src := "@meta { \"fps\": 30 }\nlet x = 1\n"
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, prog.Meta, 1)
	require.Len(t, prog.Decls, 1)
}

func TestParseIndexAndAttrTargets(t *testing.T) {
	src := "set obj.field = 1\nset list[0] = 2\n"
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, prog.Decls, 2)
	_, ok := prog.Decls[0].(*ast.VarAssign).Target.(*ast.AttrExpr)
	require.True(t, ok)
	_, ok = prog.Decls[1].(*ast.VarAssign).Target.(*ast.IndexExpr)
	require.True(t, ok)
}

func TestParseErrorRecoversAtNextDecl(t *testing.T) {
	src := "let x = \nlet y = 2\n"
	_, err := parser.Parse([]byte(src))
	require.Error(t, err)
}
