package typecheck

import (
	"github.com/forge-lang/forgec/pkg/ast"
	"github.com/forge-lang/forgec/pkg/symbols"
	"github.com/forge-lang/forgec/pkg/types"
)

// AnalyzeProgram walks every top-level statement, declaring symbols and
// validating expressions against the symbol table — the statement-level
// driver pkg/borrow's Checker.AnalyzeProgram mirrors for borrow-checking.
// Must run before borrow-checking, since the borrow checker's Lifetime
// computation and the bytecode compiler both assume names already
// resolve to symbols with a declared type.
func (c *Checker) AnalyzeProgram(prog *ast.Program, table *symbols.Table) {
	for _, stmt := range prog.Statements {
		c.AnalyzeStatement(stmt, table)
	}
}

// AnalyzeStatement dispatches on stmt's concrete type, declaring symbols
// at VariableDeclaration/FunctionDefinition and validating types at
// Assignment and every nested expression.
func (c *Checker) AnalyzeStatement(stmt ast.Statement, table *symbols.Table) {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		c.analyzeVariableDeclaration(s, table)
	case *ast.Assignment:
		c.analyzeAssignmentStatement(s, table)
	case *ast.IndexAssignment:
		c.InferExpressionType(s.Array, table)
		c.InferExpressionType(s.Index, table)
		c.InferExpressionType(s.Value, table)
	case *ast.ExpressionStatement:
		c.InferExpressionType(s.Expr, table)
	case *ast.Block:
		table.EnterScope()
		for _, inner := range s.Statements {
			c.AnalyzeStatement(inner, table)
		}
		table.ExitScope()
	case *ast.If:
		c.InferExpressionType(s.Condition, table)
		c.AnalyzeStatement(s.Then, table)
		if s.Else != nil {
			c.AnalyzeStatement(s.Else, table)
		}
	case *ast.While:
		c.InferExpressionType(s.Condition, table)
		c.AnalyzeStatement(s.Body, table)
	case *ast.Return:
		if s.Value != nil {
			c.InferExpressionType(s.Value, table)
		}
	case *ast.Defer:
		c.InferExpressionType(s.Expr, table)
	case *ast.FunctionDefinition:
		c.analyzeFunctionDefinition(s, table)
	case *ast.ClassDefinition, *ast.MethodDefinition, *ast.FieldDefinition, *ast.Extern:
		// Class/method/field/extern declarations are only sketched at
		// this level (SPEC_FULL.md §9); they carry no expressions of
		// their own to type-check here.
	default:
		c.errorf(stmt.Location(), "unsupported statement for type checking: %T", stmt)
	}
}

func (c *Checker) analyzeVariableDeclaration(decl *ast.VariableDeclaration, table *symbols.Table) {
	initType, ok := c.InferExpressionType(decl.Initializer, table)
	if !ok {
		return
	}

	declaredType := initType
	if !decl.Inferred {
		annotated, ok := c.AnalyzeType(decl.Type)
		if !ok {
			return
		}
		if !c.ValidateAssignment(annotated, initType, decl.Initializer, decl.Location()) {
			return
		}
		declaredType = annotated
	}

	_ = table.Declare(&symbols.Symbol{
		Name:        decl.Name.Lexeme,
		Type:        declaredType,
		Handle:      symbols.NoHandle,
		Declaration: decl.Location(),
	})
}

func (c *Checker) analyzeAssignmentStatement(a *ast.Assignment, table *symbols.Table) {
	valueType, ok := c.InferExpressionType(a.Value, table)
	if !ok {
		return
	}
	id, ok := a.Target.(*ast.Identifier)
	if !ok {
		c.InferExpressionType(a.Target, table)
		return
	}
	sym := table.Lookup(id.Name)
	if sym == nil {
		c.errorf(a.Location(), "assignment to undeclared name %q", id.Name)
		return
	}
	c.ValidateAssignment(sym.Type, valueType, a.Value, a.Location())
}

// analyzeFunctionDefinition declares the function's own name (so calls
// before its textual position still resolve, matching a function-level
// forward-declaration discipline) and walks its body in a fresh scope
// with parameters bound.
func (c *Checker) analyzeFunctionDefinition(fn *ast.FunctionDefinition, table *symbols.Table) {
	paramTypes := make([]types.Type, len(fn.Parameters))
	for i, param := range fn.Parameters {
		t, ok := c.AnalyzeType(param.Type)
		if !ok {
			return
		}
		paramTypes[i] = t
	}
	returnType, ok := c.AnalyzeType(fn.ReturnType)
	if !ok {
		return
	}

	if sym := table.Lookup(fn.Name); sym == nil {
		_ = table.Declare(&symbols.Symbol{
			Name:        fn.Name,
			Type:        &types.Function{Params: paramTypes, Return: returnType},
			Handle:      symbols.NoHandle,
			Declaration: fn.Location(),
		})
	}

	table.EnterScope()
	for i, param := range fn.Parameters {
		_ = table.Declare(&symbols.Symbol{
			Name:   param.Name.Lexeme,
			Type:   paramTypes[i],
			Handle: symbols.NoHandle,
		})
	}
	for _, stmt := range fn.Body.Statements {
		c.AnalyzeStatement(stmt, table)
	}
	table.ExitScope()
}
