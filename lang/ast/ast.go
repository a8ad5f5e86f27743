// Package ast defines the typed abstract syntax tree produced by the
// parser and consumed by the compiler.
package ast

import "github.com/mna/tickscript/lang/token"

// Node is implemented by every AST node.
type Node interface {
	Span() (start, end token.Pos)
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Decl is implemented by every top-level declaration (func_decl, var_decl,
// var_assign, or a bare statement, per the program grammar).
type Decl interface {
	Node
	declNode()
}

// Program is the root of the AST: the parsed @meta blocks plus the ordered
// sequence of top-level declarations.
type Program struct {
	Meta  []*MetaBlock
	Decls []Decl
}

func (p *Program) Span() (start, end token.Pos) {
	switch {
	case len(p.Decls) > 0:
		s, _ := p.Decls[0].Span()
		_, e := p.Decls[len(p.Decls)-1].Span()
		return s, e
	case len(p.Meta) > 0:
		s, _ := p.Meta[0].Span()
		_, e := p.Meta[len(p.Meta)-1].Span()
		return s, e
	}
	return token.Pos(0), token.Pos(0)
}

// MetaBlock is a parsed `@meta { ... }` block; its Raw text is handed to
// the compiler, which is responsible for the strict-JSON decoding (see
// SPEC_FULL.md's Open Question resolution).
type MetaBlock struct {
	Pos token.Pos
	Raw string
}

func (m *MetaBlock) Span() (start, end token.Pos) { return m.Pos, m.Pos }

// Ident is a bare identifier reference, reused across var targets,
// call callees, and attribute bases.
type Ident struct {
	NamePos token.Pos
	Name    string
}

func (n *Ident) Span() (start, end token.Pos) { return n.NamePos, n.NamePos }
func (*Ident) exprNode()                      {}

// Param is one declared function parameter: `name` or `name = literal`.
type Param struct {
	Name    string
	NamePos token.Pos
	Default Expr // nil if no default; guaranteed a literal by the parser
}

// FuncDecl declares a named function: `func name(params): block`.
type FuncDecl struct {
	Func        token.Pos
	Name        string
	NamePos     token.Pos
	Params      []*Param
	KwargsParam string // "" if the function has no **kwargs parameter
	KwargsPos   token.Pos
	Body        *Block
}

func (n *FuncDecl) Span() (start, end token.Pos) {
	_, e := n.Body.Span()
	return n.Func, e
}
func (*FuncDecl) declNode() {}

// VarDecl is `let name = expr`.
type VarDecl struct {
	Let     token.Pos
	Name    string
	NamePos token.Pos
	Value   Expr
}

func (n *VarDecl) Span() (start, end token.Pos) {
	_, e := n.Value.Span()
	return n.Let, e
}
func (*VarDecl) declNode() {}
func (*VarDecl) stmtNode() {}

// AssignOp distinguishes the surface form of a `set` statement; the parser
// desugars AugAdd/AugSub/AugMul/AugDiv/Incr/Decr into an equivalent plain
// Assign at the point VarAssign is constructed, per spec.md's desugaring
// rules, so the compiler only ever sees OpAssign nodes with the rewritten
// Value expression.
type AssignOp int

const (
	OpAssign AssignOp = iota
)

// VarAssign is `set target = expr` (after desugaring of `++`, `--`, and
// the compound-assignment operators into an equivalent `= expr`).
type VarAssign struct {
	Set    token.Pos
	Target Expr // *Ident, *IndexExpr, or *AttrExpr
	Value  Expr
}

func (n *VarAssign) Span() (start, end token.Pos) {
	_, e := n.Value.Span()
	return n.Set, e
}
func (*VarAssign) declNode() {}
func (*VarAssign) stmtNode() {}

// Block is a NEWLINE INDENT decl+ DEDENT sequence.
type Block struct {
	Start, End token.Pos
	Decls      []Decl
}

func (n *Block) Span() (start, end token.Pos) { return n.Start, n.End }

// IfStmt is `if/elif/else`. Elifs are represented as a chain of nested
// IfStmt values in Else, matching the grammar's recursive elif production.
type IfStmt struct {
	If   token.Pos
	Cond Expr
	Then *Block
	Else *Block // nil if absent; for elif, Else.Decls == []Decl{ *IfStmt }
}

func (n *IfStmt) Span() (start, end token.Pos) {
	if n.Else != nil {
		_, e := n.Else.Span()
		return n.If, e
	}
	_, e := n.Then.Span()
	return n.If, e
}
func (*IfStmt) declNode() {}
func (*IfStmt) stmtNode() {}

// WhileStmt is `while cond: block`.
type WhileStmt struct {
	While token.Pos
	Cond  Expr
	Body  *Block
}

func (n *WhileStmt) Span() (start, end token.Pos) {
	_, e := n.Body.Span()
	return n.While, e
}
func (*WhileStmt) declNode() {}
func (*WhileStmt) stmtNode() {}

// ForStmt is `for item in iterable: block`.
type ForStmt struct {
	For      token.Pos
	ItemName string
	ItemPos  token.Pos
	Iter     Expr
	Body     *Block
}

func (n *ForStmt) Span() (start, end token.Pos) {
	_, e := n.Body.Span()
	return n.For, e
}
func (*ForStmt) declNode() {}
func (*ForStmt) stmtNode() {}

// ReturnStmt is `return` or `return expr`.
type ReturnStmt struct {
	Return token.Pos
	Value  Expr // nil for a bare return
}

func (n *ReturnStmt) Span() (start, end token.Pos) {
	if n.Value != nil {
		_, e := n.Value.Span()
		return n.Return, e
	}
	return n.Return, n.Return
}
func (*ReturnStmt) declNode() {}
func (*ReturnStmt) stmtNode() {}

// BreakStmt is `break`.
type BreakStmt struct{ Pos token.Pos }

func (n *BreakStmt) Span() (start, end token.Pos) { return n.Pos, n.Pos }
func (*BreakStmt) declNode()                      {}
func (*BreakStmt) stmtNode()                      {}

// ContinueStmt is `continue`.
type ContinueStmt struct{ Pos token.Pos }

func (n *ContinueStmt) Span() (start, end token.Pos) { return n.Pos, n.Pos }
func (*ContinueStmt) declNode()                      {}
func (*ContinueStmt) stmtNode()                      {}

// YieldStmt is `yield`.
type YieldStmt struct{ Pos token.Pos }

func (n *YieldStmt) Span() (start, end token.Pos) { return n.Pos, n.Pos }
func (*YieldStmt) declNode()                      {}
func (*YieldStmt) stmtNode()                      {}

// ExprStmt is an expression evaluated for effect (almost always a call).
type ExprStmt struct {
	X Expr
}

func (n *ExprStmt) Span() (start, end token.Pos) { return n.X.Span() }
func (*ExprStmt) declNode()                      {}
func (*ExprStmt) stmtNode()                      {}
