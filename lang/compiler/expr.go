package compiler

import (
	"github.com/mna/tickscript/lang/ast"
	"github.com/mna/tickscript/lang/token"
	"github.com/mna/tickscript/lang/types"
)

func line(pos token.Pos) int { return pos.Line() }

// compileExpr emits code that leaves exactly one value on the stack.
func (c *compiler) compileExpr(s *scope, e ast.Expr) {
	switch n := e.(type) {
	case *ast.Literal:
		c.compileLiteral(s, n)
	case *ast.Ident:
		c.compileLoad(s, n.Name, line(n.NamePos))
	case *ast.ListExpr:
		for _, el := range n.Elems {
			c.compileExpr(s, el)
		}
		s.chunk.Emit(types.OpBuildList, len(n.Elems), line(n.Lbrack))
	case *ast.DictExpr:
		for _, entry := range n.Entries {
			c.compileExpr(s, entry.Key)
			c.compileExpr(s, entry.Value)
		}
		s.chunk.Emit(types.OpBuildMap, len(n.Entries)*2, line(n.Lbrace))
	case *ast.BinaryExpr:
		c.compileBinary(s, n)
	case *ast.UnaryExpr:
		c.compileExpr(s, n.X)
		switch n.Op {
		case token.NOT, token.BANG:
			s.chunk.Emit(types.OpNot, 0, line(n.OpPos))
		case token.MINUS:
			s.chunk.Emit(types.OpNegate, 0, line(n.OpPos))
		default:
			c.error(n.OpPos, "unsupported unary operator %s", n.Op)
		}
	case *ast.CallExpr:
		c.compileCall(s, n)
	case *ast.AttrExpr:
		c.compileExpr(s, n.X)
		s.chunk.Emit(types.OpGetAttr, s.chunk.AddConstant(types.String(n.Name)), line(n.NamePos))
	case *ast.IndexExpr:
		c.compileExpr(s, n.X)
		c.compileExpr(s, n.Index)
		s.chunk.Emit(types.OpIndexGet, 0, line(n.Lbrack))
	default:
		start, _ := e.Span()
		c.error(start, "unsupported expression %T", e)
	}
}

func (c *compiler) compileLiteral(s *scope, n *ast.Literal) {
	ln := line(n.Pos)
	switch n.Tok {
	case token.NUMBER:
		s.chunk.Emit(types.OpPushConst, s.chunk.AddConstant(types.Number(n.Num)), ln)
	case token.STRING:
		s.chunk.Emit(types.OpPushConst, s.chunk.AddConstant(types.String(n.Str)), ln)
	case token.TRUE:
		s.chunk.Emit(types.OpPushTrue, 0, ln)
	case token.FALSE:
		s.chunk.Emit(types.OpPushFalse, 0, ln)
	default:
		s.chunk.Emit(types.OpPushConst, s.chunk.AddConstant(types.None), ln)
	}
}

// compileLoad resolves name in the current scope and emits GET_LOCAL or
// GET_GLOBAL accordingly (spec.md §4.3's name resolution rule).
func (c *compiler) compileLoad(s *scope, name string, ln int) {
	if idx, ok := s.resolveLocal(name); ok {
		s.chunk.Emit(types.OpGetLocal, idx, ln)
		return
	}
	s.chunk.Emit(types.OpGetGlobal, s.chunk.AddConstant(types.String(name)), ln)
}

func (c *compiler) compileBinary(s *scope, n *ast.BinaryExpr) {
	ln := line(n.OpPos)
	switch n.Op {
	case token.AND:
		c.compileExpr(s, n.X)
		jIdx := s.chunk.Emit(types.OpJumpIfFalse, 0, ln)
		s.chunk.Emit(types.OpPop, 0, ln)
		c.compileExpr(s, n.Y)
		s.chunk.PatchJump(jIdx, len(s.chunk.Code))
		return
	case token.OR:
		c.compileExpr(s, n.X)
		jIdx := s.chunk.Emit(types.OpJumpIfTrue, 0, ln)
		s.chunk.Emit(types.OpPop, 0, ln)
		c.compileExpr(s, n.Y)
		s.chunk.PatchJump(jIdx, len(s.chunk.Code))
		return
	}

	c.compileExpr(s, n.X)
	c.compileExpr(s, n.Y)
	switch n.Op {
	case token.PLUS:
		s.chunk.Emit(types.OpAdd, 0, ln)
	case token.MINUS:
		s.chunk.Emit(types.OpSub, 0, ln)
	case token.STAR:
		s.chunk.Emit(types.OpMul, 0, ln)
	case token.SLASH:
		s.chunk.Emit(types.OpDiv, 0, ln)
	case token.EQEQ:
		s.chunk.Emit(types.OpEqual, 0, ln)
	case token.BANGEQ:
		s.chunk.Emit(types.OpNotEqual, 0, ln)
	case token.GT:
		s.chunk.Emit(types.OpGreater, 0, ln)
	case token.GTEQ:
		s.chunk.Emit(types.OpGreaterEqual, 0, ln)
	case token.LT:
		s.chunk.Emit(types.OpLess, 0, ln)
	case token.LTEQ:
		s.chunk.Emit(types.OpLessEqual, 0, ln)
	default:
		c.error(n.OpPos, "unsupported binary operator %s", n.Op)
	}
}

// compileCall pushes the callee, then positional args, then keyword arg
// values (the grammar guarantees positional args precede keyword args), and
// emits CALL or CALL_KW. Positional argc excludes the keyword-value count.
func (c *compiler) compileCall(s *scope, n *ast.CallExpr) {
	c.compileExpr(s, n.Callee)

	var names []string
	argc := 0
	for _, a := range n.Args {
		c.compileExpr(s, a.Value)
		if a.Name != "" {
			names = append(names, a.Name)
		} else {
			argc++
		}
	}
	ln := line(n.Rparen)
	if len(names) > 0 {
		s.chunk.EmitNames(types.OpCallKw, argc, names, ln)
	} else {
		s.chunk.Emit(types.OpCall, argc, ln)
	}
}
