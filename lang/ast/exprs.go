package ast

import "github.com/mna/tickscript/lang/token"

// Literal is a number, string, true, false, or null constant.
type Literal struct {
	Pos   token.Pos
	Tok   token.Token // NUMBER, STRING, TRUE, FALSE; ILLEGAL for null
	Num   float64
	Str   string
}

func (n *Literal) Span() (start, end token.Pos) { return n.Pos, n.Pos }
func (*Literal) exprNode()                      {}

// ListExpr is `[ expr, ... ]`.
type ListExpr struct {
	Lbrack, Rbrack token.Pos
	Elems          []Expr
}

func (n *ListExpr) Span() (start, end token.Pos) { return n.Lbrack, n.Rbrack }
func (*ListExpr) exprNode()                      {}

// DictEntry is one `key: value` pair of a dict literal.
type DictEntry struct {
	Key, Value Expr
}

// DictExpr is `{ key: value, ... }`.
type DictExpr struct {
	Lbrace, Rbrace token.Pos
	Entries        []DictEntry
}

func (n *DictExpr) Span() (start, end token.Pos) { return n.Lbrace, n.Rbrace }
func (*DictExpr) exprNode()                      {}

// BinaryExpr is a binary operator application, including `and`/`or`.
type BinaryExpr struct {
	X     Expr
	OpPos token.Pos
	Op    token.Token
	Y     Expr
}

func (n *BinaryExpr) Span() (start, end token.Pos) {
	s, _ := n.X.Span()
	_, e := n.Y.Span()
	return s, e
}
func (*BinaryExpr) exprNode() {}

// UnaryExpr is `not x`, `!x`, or `-x`.
type UnaryExpr struct {
	OpPos token.Pos
	Op    token.Token
	X     Expr
}

func (n *UnaryExpr) Span() (start, end token.Pos) {
	_, e := n.X.Span()
	return n.OpPos, e
}
func (*UnaryExpr) exprNode() {}

// Arg is one call argument; Name is non-empty for a keyword argument.
type Arg struct {
	Name    string
	NamePos token.Pos
	Value   Expr
}

// CallExpr is `callee(args...)`.
type CallExpr struct {
	Callee Expr
	Lparen token.Pos
	Args   []Arg
	Rparen token.Pos
}

func (n *CallExpr) Span() (start, end token.Pos) {
	s, _ := n.Callee.Span()
	return s, n.Rparen
}
func (*CallExpr) exprNode() {}

// AttrExpr is `x.name`.
type AttrExpr struct {
	X       Expr
	Dot     token.Pos
	Name    string
	NamePos token.Pos
}

func (n *AttrExpr) Span() (start, end token.Pos) {
	s, _ := n.X.Span()
	return s, n.NamePos
}
func (*AttrExpr) exprNode() {}

// IndexExpr is `x[index]`.
type IndexExpr struct {
	X       Expr
	Lbrack  token.Pos
	Index   Expr
	Rbrack  token.Pos
}

func (n *IndexExpr) Span() (start, end token.Pos) {
	s, _ := n.X.Span()
	return s, n.Rbrack
}
func (*IndexExpr) exprNode() {}
