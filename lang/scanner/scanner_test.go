package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/tickscript/lang/scanner"
	"github.com/mna/tickscript/lang/token"
)

func scanTokens(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := scanner.ScanAll([]byte(src))
	require.NoError(t, err)
	out := make([]token.Token, len(toks))
	for i, tv := range toks {
		out[i] = tv.Tok
	}
	return out
}

func TestScanSimpleStatement(t *testing.T) {
	toks := scanTokens(t, "let x = 1\n")
	require.Equal(t, []token.Token{
		token.LET, token.IDENT, token.EQ, token.NUMBER, token.NEWLINE, token.EOF,
	}, toks)
}

func TestScanIndentation(t *testing.T) {
	src := "if x:\n    let y = 1\n    let z = 2\nlet w = 3\n"
	toks := scanTokens(t, src)
	require.Equal(t, []token.Token{
		token.IF, token.IDENT, token.COLON, token.NEWLINE,
		token.INDENT,
		token.LET, token.IDENT, token.EQ, token.NUMBER, token.NEWLINE,
		token.LET, token.IDENT, token.EQ, token.NUMBER, token.NEWLINE,
		token.DEDENT,
		token.LET, token.IDENT, token.EQ, token.NUMBER, token.NEWLINE,
		token.EOF,
	}, toks)
}

func TestScanNestedDedent(t *testing.T) {
	src := "if a:\n    if b:\n        let x = 1\nlet y = 2\n"
	toks := scanTokens(t, src)
	require.Equal(t, []token.Token{
		token.IF, token.IDENT, token.COLON, token.NEWLINE,
		token.INDENT,
		token.IF, token.IDENT, token.COLON, token.NEWLINE,
		token.INDENT,
		token.LET, token.IDENT, token.EQ, token.NUMBER, token.NEWLINE,
		token.DEDENT, token.DEDENT,
		token.LET, token.IDENT, token.EQ, token.NUMBER, token.NEWLINE,
		token.EOF,
	}, toks)
}

func TestScanBlankAndCommentLinesIgnored(t *testing.T) {
	src := "let x = 1\n\n# a comment\nlet y = 2\n"
	toks := scanTokens(t, src)
	require.Equal(t, []token.Token{
		token.LET, token.IDENT, token.EQ, token.NUMBER, token.NEWLINE,
		token.LET, token.IDENT, token.EQ, token.NUMBER, token.NEWLINE,
		token.EOF,
	}, toks)
}

func TestScanOperators(t *testing.T) {
	toks := scanTokens(t, "set x += 1\nset y ++\nset z -= 2\n")
	require.Equal(t, []token.Token{
		token.SET, token.IDENT, token.PLUSEQ, token.NUMBER, token.NEWLINE,
		token.SET, token.IDENT, token.PLUSPLUS, token.NEWLINE,
		token.SET, token.IDENT, token.MINUSEQ, token.NUMBER, token.NEWLINE,
		token.EOF,
	}, toks)
}

func TestScanString(t *testing.T) {
	toks, err := scanner.ScanAll([]byte(`let s = "hello world"` + "\n"))
	require.NoError(t, err)
	require.Equal(t, token.STRING, toks[3].Tok)
	require.Equal(t, "hello world", toks[3].Val.Str)
}

func TestScanNumber(t *testing.T) {
	toks, err := scanner.ScanAll([]byte("let n = 3.25\n"))
	require.NoError(t, err)
	require.Equal(t, token.NUMBER, toks[3].Tok)
	require.Equal(t, 3.25, toks[3].Val.Num)
}

func TestScanMeta(t *testing.T) {
	src := `@meta { "fps": 30 }` + "\nlet x = 1\n"
	toks, err := scanner.ScanAll([]byte(src))
	require.NoError(t, err)
	require.Equal(t, token.META, toks[0].Tok)
	require.JSONEq(t, `{ "fps": 30 }`, toks[0].Val.Str)
}

func TestScanUnterminatedString(t *testing.T) {
	_, err := scanner.ScanAll([]byte(`let s = "oops` + "\n"))
	require.Error(t, err)
}

func TestScanInconsistentDedent(t *testing.T) {
	src := "if a:\n    let x = 1\n  let y = 2\n"
	_, err := scanner.ScanAll([]byte(src))
	require.Error(t, err)
}
