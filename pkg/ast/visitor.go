package ast

// Visitor receives a callback for every Expression and every Statement
// reached while walking a tree, in the order Walk visits them. Returning
// false from either callback skips that node's children.
type Visitor struct {
	Expr func(Expression) bool
	Stmt func(Statement) bool
}

// Walk traverses stmt and every node reachable from it, dispatching on the
// concrete type with a type switch rather than a virtual Accept method:
// the teacher's ast.Walk is an external function over its Node interface,
// and Forge's closed sum types make the switch exhaustive by construction
// (spec.md §9).
func Walk(v Visitor, stmt Statement) {
	if stmt == nil {
		return
	}
	if v.Stmt != nil && !v.Stmt(stmt) {
		return
	}

	switch n := stmt.(type) {
	case *Program:
		for _, s := range n.Statements {
			Walk(v, s)
		}
	case *ExpressionStatement:
		WalkExpr(v, n.Expr)
	case *VariableDeclaration:
		WalkExpr(v, n.Initializer)
	case *Assignment:
		WalkExpr(v, n.Target)
		WalkExpr(v, n.Value)
	case *IndexAssignment:
		WalkExpr(v, n.Array)
		WalkExpr(v, n.Index)
		WalkExpr(v, n.Value)
	case *Block:
		for _, s := range n.Statements {
			Walk(v, s)
		}
	case *If:
		WalkExpr(v, n.Condition)
		Walk(v, n.Then)
		if n.Else != nil {
			Walk(v, n.Else)
		}
	case *While:
		WalkExpr(v, n.Condition)
		Walk(v, n.Body)
	case *FunctionDefinition:
		Walk(v, n.Body)
	case *MethodDefinition:
		Walk(v, n.Body)
	case *FieldDefinition:
		// leaf: only a name and a type
	case *ClassDefinition:
		for _, f := range n.Fields {
			Walk(v, f)
		}
		for _, m := range n.Methods {
			Walk(v, m)
		}
	case *Return:
		if n.Value != nil {
			WalkExpr(v, n.Value)
		}
	case *Defer:
		WalkExpr(v, n.Expr)
	case *Extern:
		// leaf: a signature with no body
	}
}

// WalkExpr traverses expr and every sub-expression reachable from it.
func WalkExpr(v Visitor, expr Expression) {
	if expr == nil {
		return
	}
	if v.Expr != nil && !v.Expr(expr) {
		return
	}

	switch n := expr.(type) {
	case *Literal:
		// leaf
	case *ArrayLiteral:
		for _, e := range n.Elements {
			WalkExpr(v, e)
		}
	case *IndexAccess:
		WalkExpr(v, n.Array)
		WalkExpr(v, n.Index)
	case *MemberAccess:
		WalkExpr(v, n.Object)
		for _, a := range n.Arguments {
			WalkExpr(v, a)
		}
	case *Identifier:
		// leaf
	case *Binary:
		WalkExpr(v, n.Left)
		WalkExpr(v, n.Right)
	case *Unary:
		WalkExpr(v, n.Operand)
	case *FunctionCall:
		for _, a := range n.Arguments {
			WalkExpr(v, a)
		}
	case *ObjectInstantiation:
		for _, a := range n.Arguments {
			WalkExpr(v, a)
		}
	case *GenericInstantiation:
		for _, a := range n.Arguments {
			WalkExpr(v, a)
		}
	case *Move:
		WalkExpr(v, n.Operand)
	case *New:
		WalkExpr(v, n.Value)
	case *Optional:
		if n.Value != nil {
			WalkExpr(v, n.Value)
		}
	}
}
