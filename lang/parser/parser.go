// Package parser implements the recursive-descent parser that turns a
// token stream into the typed AST the compiler consumes.
package parser

import (
	"fmt"

	"github.com/mna/tickscript/lang/ast"
	"github.com/mna/tickscript/lang/scanner"
	"github.com/mna/tickscript/lang/token"
)

// parseError is used with panic/recover to unwind to the nearest
// declaration boundary on a syntax error, the way original_source's
// Parser.declaration() catches ParseError around each top-level
// declaration and calls synchronize().
type parseError struct{ pos token.Pos }

// parser holds the mutable state of a single parse.
type parser struct {
	sc     scanner.Scanner
	errors scanner.ErrorList

	tok token.Token
	val scanner.Value
}

// Parse tokenizes and parses src into a Program. The returned error, if
// non-nil, is a scanner.ErrorList aggregating every lexical and syntax
// error found; Parse makes a best effort to keep parsing past errors by
// synchronizing at the next declaration boundary.
func Parse(src []byte) (*ast.Program, error) {
	var p parser
	p.sc.Init(src, p.errors.Add)
	p.advance()

	prog := &ast.Program{}
	for p.tok != token.EOF {
		if p.tok == token.NEWLINE {
			p.advance()
			continue
		}
		if p.tok == token.META {
			prog.Meta = append(prog.Meta, &ast.MetaBlock{Pos: p.val.Pos, Raw: p.val.Str})
			p.advance()
			continue
		}
		d := p.parseDeclSynchronized()
		if d != nil {
			prog.Decls = append(prog.Decls, d)
		}
	}
	return prog, p.errors.Err()
}

func (p *parser) advance() {
	p.tok = p.sc.Scan(&p.val)
}

func (p *parser) error(pos token.Pos, format string, args ...any) {
	p.errors.Add(pos, fmt.Sprintf(format, args...))
}

func (p *parser) fail(pos token.Pos, format string, args ...any) {
	p.error(pos, format, args...)
	panic(parseError{pos: pos})
}

func (p *parser) expect(tok token.Token) token.Pos {
	pos := p.val.Pos
	if p.tok != tok {
		p.fail(pos, "expected %#v, found %#v", tok, p.tok)
	}
	p.advance()
	return pos
}

// synchronize discards tokens until the next NEWLINE (or EOF), so a single
// bad declaration does not cascade into spurious errors for the rest of the
// file. Grounded on original_source/compiler/parser.py's synchronize.
func (p *parser) synchronize() {
	for p.tok != token.NEWLINE && p.tok != token.EOF {
		p.advance()
	}
	if p.tok == token.NEWLINE {
		p.advance()
	}
}

func (p *parser) parseDeclSynchronized() (d ast.Decl) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseError); !ok {
				panic(r)
			}
			p.synchronize()
			d = nil
		}
	}()
	return p.parseDecl()
}

func (p *parser) parseDecl() ast.Decl {
	switch p.tok {
	case token.FUNC:
		return p.parseFuncDecl()
	case token.LET:
		return p.parseVarDecl()
	case token.SET:
		return p.parseVarAssign()
	default:
		return p.parseStatement()
	}
}

func (p *parser) parseFuncDecl() *ast.FuncDecl {
	funcPos := p.expect(token.FUNC)
	namePos := p.val.Pos
	name := p.val.Str
	p.expect(token.IDENT)
	p.expect(token.LPAREN)

	decl := &ast.FuncDecl{Func: funcPos, Name: name, NamePos: namePos}
	for p.tok != token.RPAREN {
		if p.tok == token.STAR {
			p.advance()
			p.expect(token.STAR)
			kwPos := p.val.Pos
			kwName := p.val.Str
			p.expect(token.IDENT)
			decl.KwargsParam = kwName
			decl.KwargsPos = kwPos
			break
		}
		pNamePos := p.val.Pos
		pName := p.val.Str
		p.expect(token.IDENT)
		param := &ast.Param{Name: pName, NamePos: pNamePos}
		if p.tok == token.EQ {
			p.advance()
			param.Default = p.parseLiteralDefault()
		}
		decl.Params = append(decl.Params, param)
		if p.tok == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RPAREN)
	p.expect(token.COLON)
	decl.Body = p.parseBlock()
	return decl
}

// parseLiteralDefault parses a parameter default value, which per
// spec.md §4.2 must be a literal expression; a non-literal default still
// parses (as a full expression, to keep error recovery simple) but
// compiles to null, so we accept any unary/primary here and let the
// compiler enforce literal-ness.
func (p *parser) parseLiteralDefault() ast.Expr {
	return p.parseUnary()
}

func (p *parser) parseVarDecl() *ast.VarDecl {
	letPos := p.expect(token.LET)
	namePos := p.val.Pos
	name := p.val.Str
	p.expect(token.IDENT)
	p.expect(token.EQ)
	val := p.parseExpr()
	p.expect(token.NEWLINE)
	return &ast.VarDecl{Let: letPos, Name: name, NamePos: namePos, Value: val}
}

func (p *parser) parseVarAssign() *ast.VarAssign {
	setPos := p.expect(token.SET)
	target := p.parseTarget()

	switch {
	case p.tok == token.PLUSPLUS:
		p.advance()
		p.expect(token.NEWLINE)
		return &ast.VarAssign{Set: setPos, Target: target, Value: incDecValue(target, token.PLUS)}
	case p.tok == token.MINUSMINUS:
		p.advance()
		p.expect(token.NEWLINE)
		return &ast.VarAssign{Set: setPos, Target: target, Value: incDecValue(target, token.MINUS)}
	case p.tok.IsAugAssign():
		op := p.tok.BinaryOp()
		opPos := p.val.Pos
		p.advance()
		rhs := p.parseExpr()
		p.expect(token.NEWLINE)
		return &ast.VarAssign{
			Set:    setPos,
			Target: target,
			Value:  &ast.BinaryExpr{X: target, OpPos: opPos, Op: op, Y: rhs},
		}
	default:
		p.expect(token.EQ)
		val := p.parseExpr()
		p.expect(token.NEWLINE)
		return &ast.VarAssign{Set: setPos, Target: target, Value: val}
	}
}

// incDecValue builds the `x + 1` / `x - 1` desugaring of `set x ++` / `set x --`.
func incDecValue(target ast.Expr, op token.Token) ast.Expr {
	pos, _ := target.Span()
	return &ast.BinaryExpr{
		X:     target,
		OpPos: pos,
		Op:    op,
		Y:     &ast.Literal{Pos: pos, Tok: token.NUMBER, Num: 1},
	}
}

// parseTarget parses an assignment target: an identifier optionally
// followed by a chain of `.name` and `[expr]` accessors.
func (p *parser) parseTarget() ast.Expr {
	namePos := p.val.Pos
	name := p.val.Str
	p.expect(token.IDENT)
	var e ast.Expr = &ast.Ident{NamePos: namePos, Name: name}
	for {
		switch p.tok {
		case token.DOT:
			dot := p.val.Pos
			p.advance()
			fNamePos := p.val.Pos
			fName := p.val.Str
			p.expect(token.IDENT)
			e = &ast.AttrExpr{X: e, Dot: dot, Name: fName, NamePos: fNamePos}
		case token.LBRACK:
			lb := p.val.Pos
			p.advance()
			idx := p.parseExpr()
			rb := p.expect(token.RBRACK)
			e = &ast.IndexExpr{X: e, Lbrack: lb, Index: idx, Rbrack: rb}
		default:
			return e
		}
	}
}

func (p *parser) parseStatement() ast.Decl {
	switch p.tok {
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.RETURN:
		return p.parseReturn()
	case token.BREAK:
		pos := p.val.Pos
		p.advance()
		p.expect(token.NEWLINE)
		return &ast.BreakStmt{Pos: pos}
	case token.CONTINUE:
		pos := p.val.Pos
		p.advance()
		p.expect(token.NEWLINE)
		return &ast.ContinueStmt{Pos: pos}
	case token.YIELD:
		pos := p.val.Pos
		p.advance()
		p.expect(token.NEWLINE)
		return &ast.YieldStmt{Pos: pos}
	default:
		e := p.parseExpr()
		p.expect(token.NEWLINE)
		return &ast.ExprStmt{X: e}
	}
}

func (p *parser) parseIf() *ast.IfStmt {
	ifPos := p.expect(token.IF)
	return p.parseIfBody(ifPos)
}

// parseIfBody parses the shared `cond: block (elif...|else...)?` tail for
// both `if` and `elif`, since the grammar makes `elif` a recursive
// continuation of `if` with its own keyword.
func (p *parser) parseIfBody(kwPos token.Pos) *ast.IfStmt {
	cond := p.parseExpr()
	p.expect(token.COLON)
	then := p.parseBlock()
	stmt := &ast.IfStmt{If: kwPos, Cond: cond, Then: then}
	switch p.tok {
	case token.ELIF:
		elifPos := p.val.Pos
		p.advance()
		elif := p.parseIfBody(elifPos)
		stmt.Else = &ast.Block{Start: elifPos, End: elif.Then.End, Decls: []ast.Decl{elif}}
		if elif.Else != nil {
			stmt.Else.End = elif.Else.End
		}
	case token.ELSE:
		p.advance()
		p.expect(token.COLON)
		stmt.Else = p.parseBlock()
	}
	return stmt
}

func (p *parser) parseWhile() *ast.WhileStmt {
	whilePos := p.expect(token.WHILE)
	cond := p.parseExpr()
	p.expect(token.COLON)
	body := p.parseBlock()
	return &ast.WhileStmt{While: whilePos, Cond: cond, Body: body}
}

func (p *parser) parseFor() *ast.ForStmt {
	forPos := p.expect(token.FOR)
	itemPos := p.val.Pos
	itemName := p.val.Str
	p.expect(token.IDENT)
	p.expect(token.IN)
	iter := p.parseExpr()
	p.expect(token.COLON)
	body := p.parseBlock()
	return &ast.ForStmt{For: forPos, ItemName: itemName, ItemPos: itemPos, Iter: iter, Body: body}
}

func (p *parser) parseReturn() *ast.ReturnStmt {
	retPos := p.expect(token.RETURN)
	if p.tok == token.NEWLINE {
		p.advance()
		return &ast.ReturnStmt{Return: retPos}
	}
	val := p.parseExpr()
	p.expect(token.NEWLINE)
	return &ast.ReturnStmt{Return: retPos, Value: val}
}

func (p *parser) parseBlock() *ast.Block {
	p.expect(token.NEWLINE)
	startIndent := p.expect(token.INDENT)
	b := &ast.Block{Start: startIndent}
	for p.tok != token.DEDENT && p.tok != token.EOF {
		if p.tok == token.NEWLINE {
			p.advance()
			continue
		}
		d := p.parseDeclSynchronized()
		if d != nil {
			b.Decls = append(b.Decls, d)
			_, b.End = d.Span()
		}
	}
	end := p.val.Pos
	p.expect(token.DEDENT)
	if len(b.Decls) == 0 {
		b.End = end
	}
	return b
}

// --- expressions, precedence climbing mirroring spec.md §4.2's chain ---

func (p *parser) parseExpr() ast.Expr { return p.parseOr() }

func (p *parser) parseOr() ast.Expr {
	x := p.parseAnd()
	for p.tok == token.OR {
		opPos := p.val.Pos
		p.advance()
		y := p.parseAnd()
		x = &ast.BinaryExpr{X: x, OpPos: opPos, Op: token.OR, Y: y}
	}
	return x
}

func (p *parser) parseAnd() ast.Expr {
	x := p.parseEquality()
	for p.tok == token.AND {
		opPos := p.val.Pos
		p.advance()
		y := p.parseEquality()
		x = &ast.BinaryExpr{X: x, OpPos: opPos, Op: token.AND, Y: y}
	}
	return x
}

func (p *parser) parseEquality() ast.Expr {
	x := p.parseComparison()
	for p.tok == token.EQEQ || p.tok == token.BANGEQ {
		op := p.tok
		opPos := p.val.Pos
		p.advance()
		y := p.parseComparison()
		x = &ast.BinaryExpr{X: x, OpPos: opPos, Op: op, Y: y}
	}
	return x
}

func (p *parser) parseComparison() ast.Expr {
	x := p.parseTerm()
	for p.tok == token.GT || p.tok == token.GTEQ || p.tok == token.LT || p.tok == token.LTEQ {
		op := p.tok
		opPos := p.val.Pos
		p.advance()
		y := p.parseTerm()
		x = &ast.BinaryExpr{X: x, OpPos: opPos, Op: op, Y: y}
	}
	return x
}

func (p *parser) parseTerm() ast.Expr {
	x := p.parseFactor()
	for p.tok == token.PLUS || p.tok == token.MINUS {
		op := p.tok
		opPos := p.val.Pos
		p.advance()
		y := p.parseFactor()
		x = &ast.BinaryExpr{X: x, OpPos: opPos, Op: op, Y: y}
	}
	return x
}

func (p *parser) parseFactor() ast.Expr {
	x := p.parseUnary()
	for p.tok == token.STAR || p.tok == token.SLASH {
		op := p.tok
		opPos := p.val.Pos
		p.advance()
		y := p.parseUnary()
		x = &ast.BinaryExpr{X: x, OpPos: opPos, Op: op, Y: y}
	}
	return x
}

func (p *parser) parseUnary() ast.Expr {
	switch p.tok {
	case token.NOT, token.BANG, token.MINUS:
		op := p.tok
		opPos := p.val.Pos
		p.advance()
		x := p.parseUnary()
		return &ast.UnaryExpr{OpPos: opPos, Op: op, X: x}
	}
	return p.parseCallOrIndex()
}

func (p *parser) parseCallOrIndex() ast.Expr {
	e := p.parsePrimary()
	for {
		switch p.tok {
		case token.LPAREN:
			lparen := p.val.Pos
			p.advance()
			args := p.parseCallArgs()
			rparen := p.expect(token.RPAREN)
			e = &ast.CallExpr{Callee: e, Lparen: lparen, Args: args, Rparen: rparen}
		case token.DOT:
			dot := p.val.Pos
			p.advance()
			namePos := p.val.Pos
			name := p.val.Str
			p.expect(token.IDENT)
			e = &ast.AttrExpr{X: e, Dot: dot, Name: name, NamePos: namePos}
		case token.LBRACK:
			lb := p.val.Pos
			p.advance()
			idx := p.parseExpr()
			rb := p.expect(token.RBRACK)
			e = &ast.IndexExpr{X: e, Lbrack: lb, Index: idx, Rbrack: rb}
		default:
			return e
		}
	}
}

// parseCallArgs parses positional and keyword arguments; a positional
// argument is never allowed after the first keyword argument, matching
// original_source's finish_call.
func (p *parser) parseCallArgs() []ast.Arg {
	var args []ast.Arg
	sawKeyword := false
	for p.tok != token.RPAREN {
		if p.tok == token.IDENT && p.isKeywordArgStart() {
			namePos := p.val.Pos
			name := p.val.Str
			p.advance() // IDENT
			p.advance() // EQ
			val := p.parseExpr()
			args = append(args, ast.Arg{Name: name, NamePos: namePos, Value: val})
			sawKeyword = true
		} else {
			pos := p.val.Pos
			if sawKeyword {
				p.error(pos, "positional argument cannot follow a keyword argument")
			}
			val := p.parseExpr()
			args = append(args, ast.Arg{Value: val})
		}
		if p.tok == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	return args
}

// isKeywordArgStart reports whether the parser is positioned at
// `IDENT "="`, the one-token lookahead needed to distinguish a keyword
// argument from a positional expression starting with a bare identifier.
// The scanner has already produced p.tok/p.val for the IDENT; peeking at
// the token after it requires a small local lookahead scan since the
// scanner itself has no pushback, mirroring nenuphar's approach of scanning
// into a one-token buffer when disambiguation needs it.
func (p *parser) isKeywordArgStart() bool {
	save := p.sc // Scanner is a small value type; copying it leaves p.sc untouched.
	var v scanner.Value
	next := save.Scan(&v)
	return next == token.EQ
}

func (p *parser) parsePrimary() ast.Expr {
	pos := p.val.Pos
	switch p.tok {
	case token.NUMBER:
		lit := &ast.Literal{Pos: pos, Tok: token.NUMBER, Num: p.val.Num}
		p.advance()
		return lit
	case token.STRING:
		lit := &ast.Literal{Pos: pos, Tok: token.STRING, Str: p.val.Str}
		p.advance()
		return lit
	case token.TRUE, token.FALSE:
		tok := p.tok
		p.advance()
		return &ast.Literal{Pos: pos, Tok: tok}
	case token.IDENT:
		name := p.val.Str
		p.advance()
		return &ast.Ident{NamePos: pos, Name: name}
	case token.LPAREN:
		p.advance()
		e := p.parseExpr()
		p.expect(token.RPAREN)
		return e
	case token.LBRACK:
		return p.parseListLiteral()
	case token.LBRACE:
		return p.parseDictLiteral()
	default:
		p.fail(pos, "expected expression, found %#v", p.tok)
		panic("unreachable")
	}
}

// skipNewlines allows newlines inside list/dict literals, per spec.md's
// `-- newlines allowed inside` annotation on both grammar productions.
func (p *parser) skipNewlines() {
	for p.tok == token.NEWLINE {
		p.advance()
	}
}

func (p *parser) parseListLiteral() *ast.ListExpr {
	lbrack := p.expect(token.LBRACK)
	p.skipNewlines()
	lit := &ast.ListExpr{Lbrack: lbrack}
	for p.tok != token.RBRACK {
		lit.Elems = append(lit.Elems, p.parseExpr())
		p.skipNewlines()
		if p.tok == token.COMMA {
			p.advance()
			p.skipNewlines()
			continue
		}
		break
	}
	lit.Rbrack = p.expect(token.RBRACK)
	return lit
}

func (p *parser) parseDictLiteral() *ast.DictExpr {
	lbrace := p.expect(token.LBRACE)
	p.skipNewlines()
	lit := &ast.DictExpr{Lbrace: lbrace}
	for p.tok != token.RBRACE {
		key := p.parseExpr()
		p.expect(token.COLON)
		p.skipNewlines()
		val := p.parseExpr()
		lit.Entries = append(lit.Entries, ast.DictEntry{Key: key, Value: val})
		p.skipNewlines()
		if p.tok == token.COMMA {
			p.advance()
			p.skipNewlines()
			continue
		}
		break
	}
	lit.Rbrace = p.expect(token.RBRACE)
	return lit
}
