package compiler

import (
	"github.com/mna/tickscript/lang/ast"
	"github.com/mna/tickscript/lang/token"
	"github.com/mna/tickscript/lang/types"
)

func (c *compiler) compileDecl(s *scope, d ast.Decl) {
	switch n := d.(type) {
	case *ast.FuncDecl:
		c.compileFuncDecl(s, n)
	case *ast.VarDecl:
		c.compileVarDecl(s, n)
	case *ast.VarAssign:
		c.compileVarAssign(s, n)
	case *ast.IfStmt:
		c.compileIf(s, n)
	case *ast.WhileStmt:
		c.compileWhile(s, n)
	case *ast.ForStmt:
		c.compileFor(s, n)
	case *ast.ReturnStmt:
		c.compileReturn(s, n)
	case *ast.BreakStmt:
		c.compileBreak(s, n)
	case *ast.ContinueStmt:
		c.compileContinue(s, n)
	case *ast.YieldStmt:
		s.chunk.Emit(types.OpYield, 0, line(n.Pos))
	case *ast.ExprStmt:
		c.compileExpr(s, n.X)
		start, _ := n.Span()
		s.chunk.Emit(types.OpPop, 0, line(start))
	default:
		start, _ := d.Span()
		c.error(start, "unsupported declaration %T", d)
	}
}

func (c *compiler) compileBlock(s *scope, b *ast.Block) {
	for _, d := range b.Decls {
		c.compileDecl(s, d)
	}
}

// compileFuncDecl compiles a function body into its own Chunk and registers
// it in the flat functions table. It does not emit any bytecode of its own:
// original_source/runtime/vm/vm.py's GET_GLOBAL falls back to the functions
// table when a name is absent from globals, so an ordinary `name(...)` call
// anywhere in the program resolves it without a separate binding
// instruction (see DESIGN.md's lang/machine entry).
func (c *compiler) compileFuncDecl(s *scope, n *ast.FuncDecl) {
	if _, exists := c.functions[n.Name]; exists {
		c.error(n.NamePos, "function %q already declared", n.Name)
	}

	locals := localScan(n.Params, n.KwargsParam, n.Body.Decls)
	idx := map[string]int{}
	for i, name := range locals {
		idx[name] = i
	}

	fnChunk := &types.Chunk{}
	fs := &scope{chunk: fnChunk, depth: s.depth + 1, localIndex: idx}
	c.compileBlock(fs, n.Body)
	if last := len(fnChunk.Code) - 1; last < 0 || fnChunk.Code[last].Op != types.OpReturn {
		endLine := line(n.NamePos)
		if _, e := n.Body.Span(); e != 0 {
			endLine = line(e)
		}
		fnChunk.Emit(types.OpPushConst, fnChunk.AddConstant(types.None), endLine)
		fnChunk.Emit(types.OpReturn, 0, endLine)
	}

	defaults := map[string]types.Value{}
	for _, p := range n.Params {
		if p.Default != nil {
			defaults[p.Name] = constantFromDefault(p.Default)
		}
	}

	c.functions[n.Name] = &types.FunctionObject{
		Name:        n.Name,
		Arity:       len(n.Params),
		LocalsCount: len(locals),
		LocalNames:  locals,
		Defaults:    defaults,
		KwargsParam: n.KwargsParam,
		Chunk:       fnChunk,
	}
}

// constantFromDefault returns the literal value of a parameter default, or
// Null if the default is not a literal (spec.md: "non-literal defaults
// compile to null"). The parser allows a leading unary minus on a number
// literal so negative defaults are still recognized.
func constantFromDefault(e ast.Expr) types.Value {
	switch n := e.(type) {
	case *ast.Literal:
		switch n.Tok {
		case token.NUMBER:
			return types.Number(n.Num)
		case token.STRING:
			return types.String(n.Str)
		case token.TRUE:
			return types.Bool(true)
		case token.FALSE:
			return types.Bool(false)
		}
	case *ast.UnaryExpr:
		if n.Op == token.MINUS {
			if lit, ok := n.X.(*ast.Literal); ok && lit.Tok == token.NUMBER {
				return types.Number(-lit.Num)
			}
		}
	}
	return types.None
}

func (c *compiler) compileVarDecl(s *scope, n *ast.VarDecl) {
	ln := line(n.NamePos)
	c.compileExpr(s, n.Value)
	if s.depth == 0 {
		s.chunk.Emit(types.OpDefineGlobal, s.chunk.AddConstant(types.String(n.Name)), ln)
		return
	}
	idx, ok := s.resolveLocal(n.Name)
	if !ok {
		c.error(n.NamePos, "internal error: local %q missing from scan", n.Name)
		return
	}
	s.chunk.Emit(types.OpSetLocal, idx, ln)
	s.chunk.Emit(types.OpPop, 0, ln)
}

func (c *compiler) compileVarAssign(s *scope, n *ast.VarAssign) {
	ln := line(n.Set)
	switch target := n.Target.(type) {
	case *ast.Ident:
		if s.depth == 0 {
			if _, isLocal := s.resolveLocal(target.Name); !isLocal {
				if c.tryGlobalIncAdd(s, target.Name, n.Value, ln) {
					return
				}
			}
		}
		c.compileExpr(s, n.Value)
		if idx, ok := s.resolveLocal(target.Name); ok {
			s.chunk.Emit(types.OpSetLocal, idx, ln)
			s.chunk.Emit(types.OpPop, 0, ln)
		} else {
			s.chunk.Emit(types.OpSetGlobal, s.chunk.AddConstant(types.String(target.Name)), ln)
			s.chunk.Emit(types.OpPop, 0, ln)
		}
	case *ast.AttrExpr:
		// Matches original_source/compiler/compiler.py's GetExpr assignment
		// fast path: object, then value, then SET_ATTR_FAST (net 2->0, no
		// trailing POP needed).
		c.compileExpr(s, target.X)
		c.compileExpr(s, n.Value)
		s.chunk.Emit(types.OpSetAttrFast, s.chunk.AddConstant(types.String(target.Name)), ln)
	case *ast.IndexExpr:
		// Matches compile_assign_target's IndexExpr case: value first (already
		// compiled ahead of the target in the original), then object, then
		// index; INDEX_SET pops index, object, value (in that order) and
		// pushes value back, so a trailing POP discards it.
		c.compileExpr(s, n.Value)
		c.compileExpr(s, target.X)
		c.compileExpr(s, target.Index)
		s.chunk.Emit(types.OpIndexSet, 0, ln)
		s.chunk.Emit(types.OpPop, 0, ln)
	default:
		c.error(n.Set, "unsupported assignment target %T", n.Target)
	}
}

// tryGlobalIncAdd recognizes the parser's desugared `x = x+1`/`x = 1+x`
// (INC_GLOBAL) and `x = x+e`/`x = e+x` (ADD_GLOBAL) shapes for a global
// target at the top level and emits the fused opcode directly; this is a
// syntactic, expression-free recognition done at the point of compiling the
// assignment, not a peephole rewrite. Returns false if value doesn't match.
func (c *compiler) tryGlobalIncAdd(s *scope, name string, value ast.Expr, ln int) bool {
	bin, ok := value.(*ast.BinaryExpr)
	if !ok || bin.Op != token.PLUS {
		return false
	}
	xIsTarget := isIdentNamed(bin.X, name)
	yIsTarget := isIdentNamed(bin.Y, name)
	if !xIsTarget && !yIsTarget {
		return false
	}
	nameIdx := s.chunk.AddConstant(types.String(name))
	other := bin.Y
	if yIsTarget {
		other = bin.X
	}
	if isLiteralOne(other) {
		s.chunk.Emit(types.OpIncGlobal, nameIdx, ln)
		return true
	}
	c.compileExpr(s, other)
	s.chunk.Emit(types.OpAddGlobal, nameIdx, ln)
	return true
}

func isIdentNamed(e ast.Expr, name string) bool {
	id, ok := e.(*ast.Ident)
	return ok && id.Name == name
}

func isLiteralOne(e ast.Expr) bool {
	lit, ok := e.(*ast.Literal)
	return ok && lit.Tok == token.NUMBER && lit.Num == 1
}

func (c *compiler) compileIf(s *scope, n *ast.IfStmt) {
	ln := line(n.If)
	c.compileExpr(s, n.Cond)
	jifIdx := s.chunk.Emit(types.OpJumpIfFalse, 0, ln)
	s.chunk.Emit(types.OpPop, 0, ln)
	c.compileBlock(s, n.Then)

	jumpEndIdx := s.chunk.Emit(types.OpJump, 0, ln)
	s.chunk.PatchJump(jifIdx, len(s.chunk.Code))
	s.chunk.Emit(types.OpPop, 0, ln)
	if n.Else != nil {
		c.compileBlock(s, n.Else)
	}
	s.chunk.PatchJump(jumpEndIdx, len(s.chunk.Code))
}

func (c *compiler) compileWhile(s *scope, n *ast.WhileStmt) {
	ln := line(n.While)
	start := len(s.chunk.Code)
	c.compileExpr(s, n.Cond)
	exitIdx := s.chunk.Emit(types.OpJumpIfFalse, 0, ln)
	s.chunk.Emit(types.OpPop, 0, ln)

	s.loops = append(s.loops, loopCtx{start: start})
	c.compileBlock(s, n.Body)
	l := s.loops[len(s.loops)-1]
	s.loops = s.loops[:len(s.loops)-1]

	s.chunk.Emit(types.OpLoop, start, ln)
	s.chunk.PatchJump(exitIdx, len(s.chunk.Code))
	s.chunk.Emit(types.OpPop, 0, ln)
	afterLoop := len(s.chunk.Code)
	for _, b := range l.breaks {
		s.chunk.PatchJump(b, afterLoop)
	}
}

func (c *compiler) compileFor(s *scope, n *ast.ForStmt) {
	ln := line(n.For)
	c.compileExpr(s, n.Iter)
	s.chunk.Emit(types.OpGetIter, 0, ln)

	start := len(s.chunk.Code)
	exitIdx := s.chunk.Emit(types.OpForIter, 0, ln)
	c.compileBindName(s, n.ItemName, line(n.ItemPos))

	s.loops = append(s.loops, loopCtx{start: start})
	c.compileBlock(s, n.Body)
	l := s.loops[len(s.loops)-1]
	s.loops = s.loops[:len(s.loops)-1]

	s.chunk.Emit(types.OpLoop, start, ln)
	s.chunk.PatchJump(exitIdx, len(s.chunk.Code))
	afterLoop := len(s.chunk.Code)
	for _, b := range l.breaks {
		s.chunk.PatchJump(b, afterLoop)
	}
}

// compileBindName consumes the value on top of the stack into a for-loop's
// item name: a local slot if depth >= 1 (populated by the enclosing
// function's local scan), or a plain SET_GLOBAL at depth 0 — matching
// original_source/compiler/compiler.py's ForStmt lowering, which binds the
// top-level loop variable with SET_GLOBAL rather than DEFINE_GLOBAL. The
// VM's SET_GLOBAL does not check that the name already exists, so a
// top-level `for` over a name never previously `let`-declared creates that
// global on its first iteration.
func (c *compiler) compileBindName(s *scope, name string, ln int) {
	if s.depth == 0 {
		s.chunk.Emit(types.OpSetGlobal, s.chunk.AddConstant(types.String(name)), ln)
		s.chunk.Emit(types.OpPop, 0, ln)
		return
	}
	idx, ok := s.resolveLocal(name)
	if !ok {
		c.error(0, "internal error: local %q missing from scan", name)
		return
	}
	s.chunk.Emit(types.OpSetLocalPop, idx, ln)
}

func (c *compiler) compileReturn(s *scope, n *ast.ReturnStmt) {
	ln := line(n.Return)
	if n.Value != nil {
		c.compileExpr(s, n.Value)
	} else {
		s.chunk.Emit(types.OpPushConst, s.chunk.AddConstant(types.None), ln)
	}
	s.chunk.Emit(types.OpReturn, 0, ln)
}

func (c *compiler) compileBreak(s *scope, n *ast.BreakStmt) {
	if len(s.loops) == 0 {
		c.error(n.Pos, "break outside of a loop")
		return
	}
	idx := s.chunk.Emit(types.OpJump, 0, line(n.Pos))
	last := len(s.loops) - 1
	s.loops[last].breaks = append(s.loops[last].breaks, idx)
}

func (c *compiler) compileContinue(s *scope, n *ast.ContinueStmt) {
	if len(s.loops) == 0 {
		c.error(n.Pos, "continue outside of a loop")
		return
	}
	start := s.loops[len(s.loops)-1].start
	s.chunk.Emit(types.OpLoop, start, line(n.Pos))
}
