// Package analyzer implements the advisory static pass spec.md §4 and §9
// call out: it flags references to names that are neither declared (by
// `let`, a function parameter, a `for` loop variable, or a `func`
// declaration) nor supplied as a host builtin. It runs after parsing,
// never mutates the AST, and returns diagnostics only — a script with
// diagnostics still compiles and runs, exactly like
// original_source/compiler/analyzer.py's StaticAnalyzer, which logs a
// warning but never raises for an unresolved name.
package analyzer

import (
	"fmt"

	"github.com/mna/tickscript/lang/ast"
	"github.com/mna/tickscript/lang/token"
)

// Diagnostic is one advisory finding, carrying the source position so a
// host can report "line:col: message" the way compiler.Error does.
type Diagnostic struct {
	Pos token.Pos
	Msg string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Pos, d.Msg)
}

// Analyze walks prog and returns one Diagnostic per reference to a name
// that resolves to neither a declared binding nor an entry of builtins.
// builtins is typically the set of names a host.Registry will bind before
// running the program (stdlib modules, print, len, ...).
func Analyze(prog *ast.Program, builtins []string) []Diagnostic {
	a := &analyzer{functions: map[string]bool{}}
	a.scopes = []map[string]bool{{}}
	for _, name := range builtins {
		a.scopes[0][name] = true
	}

	// First pass: collect every function declaration's name, exactly as
	// analyzer.py's visit_Program does, so a function may reference another
	// declared later in the same program.
	for _, d := range prog.Decls {
		if fd, ok := d.(*ast.FuncDecl); ok {
			a.functions[fd.Name] = true
		}
	}

	for _, d := range prog.Decls {
		a.decl(d)
	}
	return a.diags
}

type analyzer struct {
	scopes    []map[string]bool
	functions map[string]bool
	diags     []Diagnostic
}

func (a *analyzer) push(names ...string) {
	sc := make(map[string]bool, len(names))
	for _, n := range names {
		sc[n] = true
	}
	a.scopes = append(a.scopes, sc)
}

func (a *analyzer) pop() {
	a.scopes = a.scopes[:len(a.scopes)-1]
}

func (a *analyzer) define(name string) {
	a.scopes[len(a.scopes)-1][name] = true
}

func (a *analyzer) isDefined(name string) bool {
	for i := len(a.scopes) - 1; i >= 0; i-- {
		if a.scopes[i][name] {
			return true
		}
	}
	return a.functions[name]
}

func (a *analyzer) warnf(pos token.Pos, format string, args ...any) {
	a.diags = append(a.diags, Diagnostic{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

func (a *analyzer) decl(d ast.Decl) {
	switch n := d.(type) {
	case *ast.FuncDecl:
		a.funcDecl(n)
	case *ast.VarDecl:
		a.expr(n.Value)
		a.define(n.Name)
	case *ast.VarAssign:
		a.expr(n.Value)
		a.assignTarget(n.Target)
	case *ast.IfStmt:
		a.expr(n.Cond)
		a.block(n.Then)
		a.elseBlock(n.Else)
	case *ast.WhileStmt:
		a.expr(n.Cond)
		a.block(n.Body)
	case *ast.ForStmt:
		a.expr(n.Iter)
		a.push(n.ItemName)
		a.block(n.Body)
		a.pop()
	case *ast.ReturnStmt:
		if n.Value != nil {
			a.expr(n.Value)
		}
	case *ast.ExprStmt:
		a.expr(n.X)
	case *ast.BreakStmt, *ast.ContinueStmt, *ast.YieldStmt:
		// no references
	}
}

// elseBlock visits an `elif`/`else` tail, which the parser represents as a
// Block whose sole Decl is a nested *IfStmt (see ast.IfStmt's doc comment).
func (a *analyzer) elseBlock(b *ast.Block) {
	if b == nil {
		return
	}
	a.block(b)
}

func (a *analyzer) assignTarget(target ast.Expr) {
	switch t := target.(type) {
	case *ast.Ident:
		// `set` does not declare; analyzer.py's visit_VarAssign likewise only
		// warns through visit_VariableExpr's is_defined check, never raises.
		if !a.isDefined(t.Name) {
			a.warnf(t.NamePos, "assignment to undeclared name %q", t.Name)
		}
	case *ast.AttrExpr:
		a.expr(t.X)
	case *ast.IndexExpr:
		a.expr(t.X)
		a.expr(t.Index)
	}
}

func (a *analyzer) funcDecl(n *ast.FuncDecl) {
	names := make([]string, 0, len(n.Params)+1)
	for _, p := range n.Params {
		if p.Default != nil {
			a.expr(p.Default)
		}
		names = append(names, p.Name)
	}
	if n.KwargsParam != "" {
		names = append(names, n.KwargsParam)
	}
	a.push(names...)
	a.block(n.Body)
	a.pop()
}

func (a *analyzer) block(b *ast.Block) {
	if b == nil {
		return
	}
	for _, d := range b.Decls {
		a.decl(d)
	}
}

func (a *analyzer) expr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.Ident:
		if !a.isDefined(n.Name) {
			a.warnf(n.NamePos, "reference to undeclared name %q", n.Name)
		}
	case *ast.Literal, nil:
		// nothing to resolve
	case *ast.ListExpr:
		for _, el := range n.Elems {
			a.expr(el)
		}
	case *ast.DictExpr:
		for _, en := range n.Entries {
			a.expr(en.Key)
			a.expr(en.Value)
		}
	case *ast.BinaryExpr:
		a.expr(n.X)
		a.expr(n.Y)
	case *ast.UnaryExpr:
		a.expr(n.X)
	case *ast.CallExpr:
		a.expr(n.Callee)
		for _, arg := range n.Args {
			a.expr(arg.Value)
		}
	case *ast.AttrExpr:
		// the attribute name itself is resolved by the host object at
		// runtime (spec.md §4.4), not a name this pass can check.
		a.expr(n.X)
	case *ast.IndexExpr:
		a.expr(n.X)
		a.expr(n.Index)
	}
}
