// Package typecheck implements Forge's type checker: resolving a parsed
// type annotation to a semantic types.Type, inferring an expression's
// type against a symbol table, and validating assignments and function
// calls. Grounded on original_source's backend/types/TypeChecker.cpp,
// adapted from its dynamic_cast dispatch chain to a Go type switch. In
// place of its Result<T,E> return convention, functions return
// (value, ok bool) and report diagnostics through the shared
// *diag.Collector — see SPEC_FULL.md §7.
package typecheck

import (
	"fmt"

	"github.com/forge-lang/forgec/internal/diag"
	"github.com/forge-lang/forgec/internal/lexer"
	"github.com/forge-lang/forgec/internal/source"
	"github.com/forge-lang/forgec/pkg/ast"
	"github.com/forge-lang/forgec/pkg/symbols"
	"github.com/forge-lang/forgec/pkg/types"
)

// Checker walks typed expressions and statements against a *symbols.Table,
// reporting diag.KindType diagnostics through a shared *diag.Collector.
type Checker struct {
	diags *diag.Collector
}

// New returns a Checker reporting into diags.
func New(diags *diag.Collector) *Checker {
	return &Checker{diags: diags}
}

func (c *Checker) errorf(loc source.Location, format string, args ...interface{}) {
	c.diags.TypeError(fmt.Sprintf(format, args...), loc)
}

// AnalyzeType resolves a syntactic ParsedType to a semantic types.Type,
// peeling pointer/reference/optional/smart-pointer layers outside-in —
// mirroring TypeChecker::analyzeType's recursive strip-and-recurse shape.
func (c *Checker) AnalyzeType(pt ast.ParsedType) (types.Type, bool) {
	if pt.IsPointer {
		inner := pt
		inner.IsPointer = false
		elem, ok := c.AnalyzeType(inner)
		if !ok {
			return nil, false
		}
		return &types.Pointer{Elem: elem}, true
	}

	if pt.IsReference || pt.IsMutReference {
		inner := pt
		inner.IsReference = false
		inner.IsMutReference = false
		elem, ok := c.AnalyzeType(inner)
		if !ok {
			return nil, false
		}
		return &types.Reference{Elem: elem, Mutable: pt.IsMutReference}, true
	}

	if pt.IsOptional {
		c.errorf(pt.Loc, "optional type analysis not yet supported")
		return nil, false
	}

	if pt.SmartPointer != ast.SmartPointerNone {
		inner := pt
		inner.SmartPointer = ast.SmartPointerNone
		elem, ok := c.AnalyzeType(inner)
		if !ok {
			return nil, false
		}
		var kind types.PointerKind
		switch pt.SmartPointer {
		case ast.SmartPointerUnique:
			kind = types.PointerUnique
		case ast.SmartPointerShared:
			kind = types.PointerShared
		case ast.SmartPointerWeak:
			kind = types.PointerWeak
		}
		return &types.SmartPointer{Elem: elem, PointerKind: kind}, true
	}

	if len(pt.TypeParameters) > 0 {
		c.errorf(pt.Loc, "generic type analysis not yet supported")
		return nil, false
	}

	if lexer.IsPrimitiveType(pt.Primary.Kind) {
		return &types.Primitive{Name: pt.Primary.Lexeme}, true
	}

	c.errorf(pt.Loc, "unknown type %q", pt.Primary.Lexeme)
	return nil, false
}

// AreTypesCompatible reports whether source may be used where target is
// expected, either because target.IsAssignableFrom(source) or because
// source widens implicitly to target.
func (c *Checker) AreTypesCompatible(target, source types.Type) bool {
	if target.IsAssignableFrom(source) {
		return true
	}
	return source.CanImplicitlyConvertTo(target)
}

// FindCommonType is the join used for binary arithmetic and for promoting
// array-literal element types (SPEC_FULL.md §9).
func (c *Checker) FindCommonType(a, b types.Type) (types.Type, bool) {
	return a.PromoteWith(b)
}

// ValidateAssignment reports a diag.KindType diagnostic if source cannot
// be assigned into a variable of type target, with the Unique-pointer
// move-only special case (SPEC_FULL.md §9, resolving spec.md's open
// question #1): assigning one Unique smart pointer into another requires
// an explicit `move` expression as the RHS.
func (c *Checker) ValidateAssignment(target, source types.Type, rhs ast.Expression, loc source.Location) bool {
	if targetSP, ok := target.(*types.SmartPointer); ok && targetSP.PointerKind == types.PointerUnique {
		if sourceSP, ok := source.(*types.SmartPointer); ok && sourceSP.PointerKind == types.PointerUnique {
			if _, isMove := rhs.(*ast.Move); !isMove {
				c.diags.Borrow(diag.InvalidBorrow,
					"assigning a Unique pointer requires an explicit move", loc)
				return false
			}
		}
	}

	if !c.AreTypesCompatible(target, source) {
		c.errorf(loc, "type mismatch in assignment: cannot assign %s to %s", source.String(), target.String())
		return false
	}
	return true
}

// ValidateFunctionCall checks argument count and, for the declared
// (non-variadic) prefix, argument type compatibility.
func (c *Checker) ValidateFunctionCall(fn *types.Function, args []types.Type, loc source.Location) bool {
	if fn.Variadic {
		if len(args) < len(fn.Params) {
			c.errorf(loc, "argument count mismatch: expected at least %d, got %d", len(fn.Params), len(args))
			return false
		}
	} else if len(args) != len(fn.Params) {
		c.errorf(loc, "argument count mismatch: expected %d, got %d", len(fn.Params), len(args))
		return false
	}

	ok := true
	for i, param := range fn.Params {
		if !c.AreTypesCompatible(param, args[i]) {
			c.errorf(loc, "type mismatch for argument %d: expected %s, got %s", i+1, param.String(), args[i].String())
			ok = false
		}
	}
	return ok
}

// InferExpressionType dispatches on expr's concrete type, mirroring
// TypeChecker::inferExpressionType's dynamic_cast chain with a Go type
// switch — the sum-type-and-match substitution spec.md §9 asks for.
func (c *Checker) InferExpressionType(expr ast.Expression, table *symbols.Table) (types.Type, bool) {
	switch e := expr.(type) {
	case *ast.Literal:
		return c.inferLiteral(e)
	case *ast.ArrayLiteral:
		return c.inferArrayLiteral(e, table)
	case *ast.Identifier:
		return c.inferIdentifier(e, table)
	case *ast.Binary:
		return c.inferBinary(e, table)
	case *ast.Unary:
		return c.inferUnary(e, table)
	case *ast.FunctionCall:
		return c.inferFunctionCall(e, table)
	case *ast.Move:
		return c.inferMove(e, table)
	case *ast.New:
		return c.inferNew(e, table)
	case *ast.IndexAccess:
		c.errorf(e.Location(), "index access type inference not yet implemented")
		return nil, false
	case *ast.MemberAccess:
		c.errorf(e.Location(), "member access type inference not yet implemented")
		return nil, false
	case *ast.ObjectInstantiation:
		c.errorf(e.Location(), "object instantiation not yet supported")
		return nil, false
	case *ast.GenericInstantiation:
		c.errorf(e.Location(), "generic instantiation not yet supported")
		return nil, false
	case *ast.Optional:
		c.errorf(e.Location(), "optional expression type inference not yet implemented")
		return nil, false
	default:
		panic(fmt.Sprintf("typecheck: unhandled expression variant %T", expr))
	}
}

// inferLiteral classifies a literal token per spec.md §4.3: a decimal
// point or exponent means double, a trailing 'f' means float, else int;
// quoted text means string; true/false mean bool.
func (c *Checker) inferLiteral(lit *ast.Literal) (types.Type, bool) {
	switch lit.Token.Kind {
	case lexer.NUMBER:
		return &types.Primitive{Name: inferNumericPrimitive(lit.Token.Lexeme)}, true
	case lexer.STRING:
		return &types.Primitive{Name: "string"}, true
	case lexer.TRUE, lexer.FALSE:
		return &types.Primitive{Name: "bool"}, true
	case lexer.NULL:
		return &types.Primitive{Name: "void"}, true
	default:
		c.errorf(lit.Location(), "unsupported literal kind %s", lit.Token.Kind)
		return nil, false
	}
}

func inferNumericPrimitive(lexeme string) string {
	hasFSuffix := len(lexeme) > 0 && (lexeme[len(lexeme)-1] == 'f' || lexeme[len(lexeme)-1] == 'F')
	if hasFSuffix {
		return "float"
	}
	for _, r := range lexeme {
		if r == '.' || r == 'e' || r == 'E' {
			return "double"
		}
	}
	return "int"
}

func (c *Checker) inferArrayLiteral(lit *ast.ArrayLiteral, table *symbols.Table) (types.Type, bool) {
	if len(lit.Elements) == 0 {
		c.errorf(lit.Location(), "cannot infer the element type of an empty array literal")
		return nil, false
	}

	joined, ok := c.InferExpressionType(lit.Elements[0], table)
	if !ok {
		return nil, false
	}
	for _, elem := range lit.Elements[1:] {
		elemType, ok := c.InferExpressionType(elem, table)
		if !ok {
			return nil, false
		}
		promoted, ok := joined.PromoteWith(elemType)
		if !ok {
			c.errorf(lit.Location(), "no common type between array elements %s and %s", joined.String(), elemType.String())
			return nil, false
		}
		joined = promoted
	}
	return &types.Array{Elem: joined, Length: len(lit.Elements)}, true
}

func (c *Checker) inferIdentifier(id *ast.Identifier, table *symbols.Table) (types.Type, bool) {
	sym := table.Lookup(id.Name)
	if sym == nil {
		c.errorf(id.Location(), "undefined variable %q", id.Name)
		return nil, false
	}
	if sym.Ownership == symbols.Moved {
		c.diags.Borrow(diag.UseAfterMove, fmt.Sprintf("use of moved value %q", id.Name), id.Location())
		return nil, false
	}
	return sym.Type.Clone(), true
}

func (c *Checker) inferBinary(b *ast.Binary, table *symbols.Table) (types.Type, bool) {
	left, ok := c.InferExpressionType(b.Left, table)
	if !ok {
		return nil, false
	}
	right, ok := c.InferExpressionType(b.Right, table)
	if !ok {
		return nil, false
	}

	switch b.Operator.Kind {
	case lexer.EQ, lexer.NEQ, lexer.LT, lexer.GT, lexer.LTE, lexer.GTE, lexer.AND_AND, lexer.OR_OR:
		if !c.AreTypesCompatible(left, right) && !c.AreTypesCompatible(right, left) {
			c.errorf(b.Location(), "incompatible operand types %s and %s", left.String(), right.String())
			return nil, false
		}
		return &types.Primitive{Name: "bool"}, true
	default:
		promoted, ok := left.PromoteWith(right)
		if !ok {
			c.errorf(b.Location(), "no common type for operator %s between %s and %s", b.Operator.Lexeme, left.String(), right.String())
			return nil, false
		}
		return promoted, true
	}
}

func (c *Checker) inferUnary(u *ast.Unary, table *symbols.Table) (types.Type, bool) {
	operand, ok := c.InferExpressionType(u.Operand, table)
	if !ok {
		return nil, false
	}

	switch u.Operator.Kind {
	case lexer.MINUS:
		if prim, ok := operand.(*types.Primitive); !ok || prim.Name == "bool" || prim.Name == "string" {
			c.errorf(u.Location(), "unary - requires a numeric operand, got %s", operand.String())
			return nil, false
		}
		return operand, true
	case lexer.BANG:
		if prim, ok := operand.(*types.Primitive); !ok || prim.Name != "bool" {
			c.errorf(u.Location(), "unary ! requires a bool operand, got %s", operand.String())
			return nil, false
		}
		return &types.Primitive{Name: "bool"}, true
	case lexer.AMP:
		return &types.Reference{Elem: operand, Mutable: u.Mutable}, true
	case lexer.STAR:
		switch o := operand.(type) {
		case *types.Pointer:
			return o.Elem, true
		case *types.Reference:
			return o.Elem, true
		default:
			c.errorf(u.Location(), "cannot dereference non-pointer, non-reference type %s", operand.String())
			return nil, false
		}
	default:
		c.errorf(u.Location(), "unsupported unary operator %s", u.Operator.Lexeme)
		return nil, false
	}
}

func (c *Checker) inferFunctionCall(call *ast.FunctionCall, table *symbols.Table) (types.Type, bool) {
	sym := table.Lookup(call.Name)
	if sym == nil {
		c.errorf(call.Location(), "undefined function %q", call.Name)
		return nil, false
	}
	fn, ok := sym.Type.(*types.Function)
	if !ok {
		c.errorf(call.Location(), "attempted to call a non-function value %q of type %s", call.Name, sym.Type.String())
		return nil, false
	}

	args := make([]types.Type, 0, len(call.Arguments))
	okAll := true
	for _, arg := range call.Arguments {
		argType, ok := c.InferExpressionType(arg, table)
		if !ok {
			okAll = false
			continue
		}
		args = append(args, argType)
	}
	if !okAll {
		return nil, false
	}

	if !c.ValidateFunctionCall(fn, args, call.Location()) {
		return nil, false
	}
	return fn.Return.Clone(), true
}

// inferMove requires the operand be a movable, declared identifier, and
// (as a side effect visible to the borrow checker) transitions it to
// Moved in the symbol table.
func (c *Checker) inferMove(m *ast.Move, table *symbols.Table) (types.Type, bool) {
	operandType, ok := c.InferExpressionType(m.Operand, table)
	if !ok {
		return nil, false
	}
	if !operandType.IsMovable() {
		c.errorf(m.Location(), "cannot move a value of type %s", operandType.String())
		return nil, false
	}
	if id, ok := m.Operand.(*ast.Identifier); ok {
		if sym := table.Lookup(id.Name); sym != nil {
			sym.Ownership = symbols.Moved
		}
	}
	return operandType, true
}

// inferNew wraps the inner expression's type in SmartPointer(Unique),
// per spec.md §4.3.
func (c *Checker) inferNew(n *ast.New, table *symbols.Table) (types.Type, bool) {
	inner, ok := c.InferExpressionType(n.Value, table)
	if !ok {
		return nil, false
	}
	return &types.SmartPointer{Elem: inner, PointerKind: types.PointerUnique}, true
}
