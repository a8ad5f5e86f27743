package ast

import (
	"fmt"
	"io"
	"strings"

	"github.com/mna/tickscript/lang/token"
)

// Printer pretty-prints a *Program as an indented, line-per-node tree
// annotated with source positions, ported from nenuphar/lang/ast/
// printer.go's Printer. Unlike that version, which drives a depth-tracking
// Visitor over ast.Walk, this one is a direct recursive descent over the
// typed node set: a Block's indentation needs to differ from the IfStmt/
// FuncDecl/ForStmt/WhileStmt node that introduces it, which Walk's single
// flat pre-order callback has no way to express (the same reason the
// analyzer package hand-writes its own visitor instead of using Walk).
type Printer struct {
	Output io.Writer
}

// Print writes prog's tree to p.Output, one node per line.
func (p *Printer) Print(prog *Program) error {
	pr := &printer{w: p.Output}
	for _, m := range prog.Meta {
		pr.line(0, m.Pos, "MetaBlock %q", m.Raw)
	}
	for _, d := range prog.Decls {
		pr.decl(0, d)
	}
	return pr.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(depth int, pos token.Pos, format string, args ...any) {
	if p.err != nil {
		return
	}
	prefix := fmt.Sprintf("%s[%s] ", strings.Repeat(". ", depth), pos)
	_, p.err = fmt.Fprintf(p.w, prefix+format+"\n", args...)
}

func (p *printer) decl(depth int, d Decl) {
	if d == nil || p.err != nil {
		return
	}
	switch n := d.(type) {
	case *FuncDecl:
		start, _ := n.Span()
		p.line(depth, start, "FuncDecl %s", n.Name)
		for _, param := range n.Params {
			p.line(depth+1, param.NamePos, "Param %s", param.Name)
			if param.Default != nil {
				p.expr(depth+2, param.Default)
			}
		}
		if n.KwargsParam != "" {
			p.line(depth+1, start, "KwargsParam %s", n.KwargsParam)
		}
		p.block(depth+1, n.Body)

	case *VarDecl:
		start, _ := n.Span()
		p.line(depth, start, "VarDecl %s", n.Name)
		p.expr(depth+1, n.Value)

	case *VarAssign:
		start, _ := n.Span()
		p.line(depth, start, "VarAssign")
		p.expr(depth+1, n.Target)
		p.expr(depth+1, n.Value)

	case *IfStmt:
		start, _ := n.Span()
		p.line(depth, start, "IfStmt")
		p.expr(depth+1, n.Cond)
		p.block(depth+1, n.Then)
		if n.Else != nil {
			p.block(depth+1, n.Else)
		}

	case *WhileStmt:
		start, _ := n.Span()
		p.line(depth, start, "WhileStmt")
		p.expr(depth+1, n.Cond)
		p.block(depth+1, n.Body)

	case *ForStmt:
		start, _ := n.Span()
		p.line(depth, start, "ForStmt %s", n.ItemName)
		p.expr(depth+1, n.Iter)
		p.block(depth+1, n.Body)

	case *ReturnStmt:
		p.line(depth, n.Return, "ReturnStmt")
		if n.Value != nil {
			p.expr(depth+1, n.Value)
		}

	case *BreakStmt:
		p.line(depth, n.Pos, "BreakStmt")
	case *ContinueStmt:
		p.line(depth, n.Pos, "ContinueStmt")
	case *YieldStmt:
		p.line(depth, n.Pos, "YieldStmt")

	case *ExprStmt:
		start, _ := n.Span()
		p.line(depth, start, "ExprStmt")
		p.expr(depth+1, n.X)

	default:
		p.err = fmt.Errorf("ast: Printer: unhandled decl type %T", d)
	}
}

func (p *printer) literal(depth int, n *Literal) {
	switch n.Tok {
	case token.NUMBER:
		p.line(depth, n.Pos, "Literal %v", n.Num)
	case token.STRING:
		p.line(depth, n.Pos, "Literal %q", n.Str)
	case token.TRUE, token.FALSE:
		p.line(depth, n.Pos, "Literal %s", n.Tok)
	default:
		p.line(depth, n.Pos, "Literal null")
	}
}

func (p *printer) block(depth int, b *Block) {
	if b == nil || p.err != nil {
		return
	}
	p.line(depth, b.Start, "Block")
	for _, d := range b.Decls {
		p.decl(depth+1, d)
	}
}

func (p *printer) expr(depth int, e Expr) {
	if e == nil || p.err != nil {
		return
	}
	switch n := e.(type) {
	case *Ident:
		p.line(depth, n.NamePos, "Ident %s", n.Name)

	case *Literal:
		p.literal(depth, n)

	case *ListExpr:
		p.line(depth, n.Lbrack, "ListExpr")
		for _, el := range n.Elems {
			p.expr(depth+1, el)
		}

	case *DictExpr:
		p.line(depth, n.Lbrace, "DictExpr")
		for _, entry := range n.Entries {
			p.expr(depth+1, entry.Key)
			p.expr(depth+1, entry.Value)
		}

	case *BinaryExpr:
		start, _ := n.Span()
		p.line(depth, start, "BinaryExpr %s", n.Op)
		p.expr(depth+1, n.X)
		p.expr(depth+1, n.Y)

	case *UnaryExpr:
		start, _ := n.Span()
		p.line(depth, start, "UnaryExpr %s", n.Op)
		p.expr(depth+1, n.X)

	case *CallExpr:
		start, _ := n.Span()
		p.line(depth, start, "CallExpr")
		p.expr(depth+1, n.Callee)
		for _, arg := range n.Args {
			if arg.Name != "" {
				p.line(depth+1, arg.NamePos, "Arg %s =", arg.Name)
				p.expr(depth+2, arg.Value)
			} else {
				p.expr(depth+1, arg.Value)
			}
		}

	case *AttrExpr:
		start, _ := n.Span()
		p.line(depth, start, "AttrExpr .%s", n.Name)
		p.expr(depth+1, n.X)

	case *IndexExpr:
		start, _ := n.Span()
		p.line(depth, start, "IndexExpr")
		p.expr(depth+1, n.X)
		p.expr(depth+1, n.Index)

	default:
		p.err = fmt.Errorf("ast: Printer: unhandled expr type %T", e)
	}
}
