package ast

// Walk visits every declaration in order, depth-first, calling visit on
// each node before descending into its children. visit returns false to
// skip a subtree. This mirrors the shape of nenuphar's ast.Visitor without
// needing a stateful interface, for callers that only need a single
// pre-order callback. The compiler's local scanner and the analyzer do not
// use it; each walks the tree with its own recursive code.
func Walk(decls []Decl, visit func(Node) bool) {
	for _, d := range decls {
		walkDecl(d, visit)
	}
}

func walkDecl(d Decl, visit func(Node) bool) {
	if d == nil || !visit(d) {
		return
	}
	switch n := d.(type) {
	case *FuncDecl:
		for _, p := range n.Params {
			if p.Default != nil {
				walkExpr(p.Default, visit)
			}
		}
		walkBlock(n.Body, visit)
	case *VarDecl:
		walkExpr(n.Value, visit)
	case *VarAssign:
		walkExpr(n.Target, visit)
		walkExpr(n.Value, visit)
	case *IfStmt:
		walkExpr(n.Cond, visit)
		walkBlock(n.Then, visit)
		if n.Else != nil {
			walkBlock(n.Else, visit)
		}
	case *WhileStmt:
		walkExpr(n.Cond, visit)
		walkBlock(n.Body, visit)
	case *ForStmt:
		walkExpr(n.Iter, visit)
		walkBlock(n.Body, visit)
	case *ReturnStmt:
		if n.Value != nil {
			walkExpr(n.Value, visit)
		}
	case *ExprStmt:
		walkExpr(n.X, visit)
	}
}

func walkBlock(b *Block, visit func(Node) bool) {
	if b == nil {
		return
	}
	for _, d := range b.Decls {
		walkDecl(d, visit)
	}
}

func walkExpr(e Expr, visit func(Node) bool) {
	if e == nil || !visit(e) {
		return
	}
	switch n := e.(type) {
	case *ListExpr:
		for _, el := range n.Elems {
			walkExpr(el, visit)
		}
	case *DictExpr:
		for _, en := range n.Entries {
			walkExpr(en.Key, visit)
			walkExpr(en.Value, visit)
		}
	case *BinaryExpr:
		walkExpr(n.X, visit)
		walkExpr(n.Y, visit)
	case *UnaryExpr:
		walkExpr(n.X, visit)
	case *CallExpr:
		walkExpr(n.Callee, visit)
		for _, a := range n.Args {
			walkExpr(a.Value, visit)
		}
	case *AttrExpr:
		walkExpr(n.X, visit)
	case *IndexExpr:
		walkExpr(n.X, visit)
		walkExpr(n.Index, visit)
	}
}
