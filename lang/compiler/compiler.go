// Package compiler lowers the parsed AST into a types.Chunk per function
// (and one for the top-level program), following spec.md §4.3's two-pass-
// per-scope strategy: a local scan collects every name a function scope
// owns, then a single emission walk lowers statements and expressions to
// bytecode, which a peephole pass (optimize.go) rewrites in place.
package compiler

import (
	"fmt"

	"github.com/mna/tickscript/lang/ast"
	"github.com/mna/tickscript/lang/token"
	"github.com/mna/tickscript/lang/types"
)

// Error is a compile-time error with its source position.
type Error struct {
	Pos token.Pos
	Msg string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Msg) }

// ErrorList aggregates every compile error found across the program.
type ErrorList []*Error

func (el ErrorList) Error() string {
	if len(el) == 0 {
		return "no errors"
	}
	if len(el) == 1 {
		return el[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", el[0].Error(), len(el)-1)
}

// loopCtx tracks one enclosing loop's backward target and its pending
// forward `break` jumps, patched once the loop's lowering completes.
type loopCtx struct {
	start  int
	breaks []int
}

// scope holds the emission state for one function's chunk (or the
// top-level program, scope depth 0).
type scope struct {
	chunk      *types.Chunk
	depth      int
	localIndex map[string]int // empty at depth 0
	loops      []loopCtx
}

func (s *scope) resolveLocal(name string) (int, bool) {
	idx, ok := s.localIndex[name]
	return idx, ok
}

// compiler drives compilation of an entire program: the top-level scope
// plus one scope per declared function, accumulating the flat functions
// table spec.md §3 describes.
type compiler struct {
	functions map[string]*types.FunctionObject
	errors    ErrorList
}

func (c *compiler) error(pos token.Pos, format string, args ...any) {
	c.errors = append(c.errors, &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

// Compile lowers prog into a top-level Chunk and the flat table of
// user-defined functions.
func Compile(prog *ast.Program) (*types.Chunk, map[string]*types.FunctionObject, error) {
	c := &compiler{functions: map[string]*types.FunctionObject{}}

	top := &types.Chunk{Metadata: map[string]types.Value{}}
	if err := c.applyMeta(top, prog.Meta); err != nil {
		return nil, nil, err
	}

	s := &scope{chunk: top, depth: 0, localIndex: map[string]int{}}
	for _, d := range prog.Decls {
		c.compileDecl(s, d)
	}
	if last := len(top.Code) - 1; last < 0 || top.Code[last].Op != types.OpReturn {
		top.Emit(types.OpPushConst, top.AddConstant(types.None), lastLine(top))
		top.Emit(types.OpReturn, 0, lastLine(top))
	}

	optimize(top)
	for _, fo := range c.functions {
		optimize(fo.Chunk)
	}

	if len(c.errors) > 0 {
		return nil, nil, c.errors
	}
	return top, c.functions, nil
}

func lastLine(chunk *types.Chunk) int {
	if len(chunk.Lines) == 0 {
		return 0
	}
	return chunk.Lines[len(chunk.Lines)-1]
}

// localScan walks a function's body (not descending into nested FuncDecls,
// which are independent top-level-like declarations per spec.md's no-
// closures Non-goal) and returns the ordered local_names: parameters,
// then the kwargs parameter if any, then let-declared and for-item names
// in first-definition order.
func localScan(params []*ast.Param, kwargsParam string, body []ast.Decl) []string {
	names := make([]string, 0, len(params)+1)
	seen := map[string]bool{}
	add := func(n string) {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	for _, p := range params {
		add(p.Name)
	}
	if kwargsParam != "" {
		add(kwargsParam)
	}

	var walk func(decls []ast.Decl)
	walk = func(decls []ast.Decl) {
		for _, d := range decls {
			switch n := d.(type) {
			case *ast.FuncDecl:
				// independent scope; its own locals do not belong to us, and we
				// do not recurse into its body.
			case *ast.VarDecl:
				add(n.Name)
			case *ast.ForStmt:
				add(n.ItemName)
				walk(n.Body.Decls)
			case *ast.IfStmt:
				walk(n.Then.Decls)
				if n.Else != nil {
					walk(n.Else.Decls)
				}
			case *ast.WhileStmt:
				walk(n.Body.Decls)
			}
		}
	}
	walk(body)
	return names
}
