// Package borrow implements Forge's ownership and lifetime analyzer: a
// per-variable borrow ledger (MemoryModel) enforcing the three borrow
// rules, plus a Checker that walks the AST applying registerVariable/
// registerBorrow/registerMove at the points spec.md §4.5 names. Grounded
// on original_source's backend/memory/{MemoryModel,BorrowChecker}.hpp.
package borrow

import (
	"fmt"

	"github.com/forge-lang/forgec/internal/diag"
	"github.com/forge-lang/forgec/internal/lexer"
	"github.com/forge-lang/forgec/internal/source"
	"github.com/forge-lang/forgec/pkg/ast"
	"github.com/forge-lang/forgec/pkg/symbols"
	"github.com/forge-lang/forgec/pkg/types"
)

// Lifetime is the interval a value is guaranteed valid for (spec.md
// §4.5, §GLOSSARY).
type Lifetime int

const (
	Static Lifetime = iota
	Function
	Block
	Expression
)

func (l Lifetime) String() string {
	switch l {
	case Static:
		return "static"
	case Function:
		return "function"
	case Block:
		return "block"
	case Expression:
		return "expression"
	default:
		return "expression"
	}
}

// outlives reports whether l is guaranteed to outlive other — Static is the
// longest lifetime, Expression the shortest.
func (l Lifetime) outlives(other Lifetime) bool {
	return l <= other
}

// BorrowRecord is one active borrow against a variable: a Borrower name
// (RegisterBorrow is given no borrower identity and stores the borrowed
// variable's own name there), whether it is mutable, where it was
// taken, and the lifetime it must not outlive its target's.
type BorrowRecord struct {
	Borrower         string
	Mutable          bool
	Location         source.Location
	ExpectedLifetime Lifetime
}

// variableInfo is the ledger entry MemoryModel keeps per registered
// variable.
type variableInfo struct {
	typ          types.Type
	ownership    symbols.Ownership
	lifetime     Lifetime
	activeBorrow []BorrowRecord
	declaration  source.Location
}

// MemoryModel is the per-compilation-unit ownership ledger: registered
// variables, their current ownership state, and their active borrows.
// It reports violations through the shared *diag.Collector rather than
// returning a Result type (SPEC_FULL.md §7).
type MemoryModel struct {
	diags     *diag.Collector
	variables map[string]*variableInfo
}

// NewMemoryModel returns an empty ledger reporting into diags.
func NewMemoryModel(diags *diag.Collector) *MemoryModel {
	return &MemoryModel{diags: diags, variables: make(map[string]*variableInfo)}
}

// RegisterVariable inserts id with ownership Owned and an empty borrow
// list.
func (m *MemoryModel) RegisterVariable(id string, typ types.Type, lifetime Lifetime, loc source.Location) {
	m.variables[id] = &variableInfo{typ: typ, ownership: symbols.Owned, lifetime: lifetime, declaration: loc}
}

// RegisterBorrow enforces the three borrow rules from spec.md §4.5 and,
// on success, appends a BorrowRecord and transitions ownership to
// Borrowed or MutBorrowed.
func (m *MemoryModel) RegisterBorrow(target string, isMutable bool, borrowerLifetime Lifetime, loc source.Location) bool {
	info, ok := m.variables[target]
	if !ok {
		return false
	}

	if info.ownership == symbols.Moved {
		m.diags.Borrow(diag.UseAfterMove, fmt.Sprintf("cannot borrow %q: value was moved", target), loc)
		return false
	}

	hasMutable := false
	for _, b := range info.activeBorrow {
		if b.Mutable {
			hasMutable = true
		}
	}

	if isMutable {
		if len(info.activeBorrow) > 0 {
			if hasMutable {
				m.diags.Borrow(diag.MultipleMutableBorrows, fmt.Sprintf("%q is already mutably borrowed", target), loc)
			} else {
				m.diags.Borrow(diag.MutableBorrowWhileImmutableBorrows, fmt.Sprintf("cannot mutably borrow %q: already borrowed", target), loc)
			}
			return false
		}
	} else if hasMutable {
		m.diags.Borrow(diag.MutableBorrowWhileImmutableBorrows, fmt.Sprintf("cannot borrow %q: already mutably borrowed", target), loc)
		return false
	}

	if !info.lifetime.outlives(borrowerLifetime) {
		m.diags.Borrow(diag.LifetimeTooShort, fmt.Sprintf("%q does not live long enough for this borrow", target), loc)
		return false
	}

	info.activeBorrow = append(info.activeBorrow, BorrowRecord{
		Borrower: target, Mutable: isMutable, Location: loc, ExpectedLifetime: borrowerLifetime,
	})
	if isMutable {
		info.ownership = symbols.MutBorrowed
	} else {
		info.ownership = symbols.Borrowed
	}
	return true
}

// EndBorrow removes the most recently registered borrow on target,
// returning ownership to Owned once the list empties.
func (m *MemoryModel) EndBorrow(target string, loc source.Location) {
	info, ok := m.variables[target]
	if !ok || len(info.activeBorrow) == 0 {
		return
	}
	info.activeBorrow = info.activeBorrow[:len(info.activeBorrow)-1]
	if len(info.activeBorrow) == 0 {
		info.ownership = symbols.Owned
	}
}

// RegisterMove transitions source to Moved. It must currently be Owned
// with no active borrows.
func (m *MemoryModel) RegisterMove(sourceName string, loc source.Location) bool {
	info, ok := m.variables[sourceName]
	if !ok {
		return false
	}
	if info.ownership != symbols.Owned {
		m.diags.Borrow(diag.InvalidBorrow, fmt.Sprintf("cannot move %q: not in owned state (%s)", sourceName, info.ownership), loc)
		return false
	}
	if len(info.activeBorrow) > 0 {
		m.diags.Borrow(diag.InvalidBorrow, fmt.Sprintf("cannot move %q: still borrowed", sourceName), loc)
		return false
	}
	info.ownership = symbols.Moved
	return true
}

// GetOwnership and GetLifetime are read-only queries used by tests and
// by the Checker to decide reference mutability.
func (m *MemoryModel) GetOwnership(id string) (symbols.Ownership, bool) {
	info, ok := m.variables[id]
	if !ok {
		return symbols.Owned, false
	}
	return info.ownership, true
}

func (m *MemoryModel) GetLifetime(id string) (Lifetime, bool) {
	info, ok := m.variables[id]
	if !ok {
		return Expression, false
	}
	return info.lifetime, true
}

// HasActiveBorrows reports whether id currently has any outstanding
// borrow — the check the no-dangling-references invariant (spec.md §8)
// runs at every scope exit.
func (m *MemoryModel) HasActiveBorrows(id string) bool {
	info, ok := m.variables[id]
	return ok && len(info.activeBorrow) > 0
}

func (m *MemoryModel) ActiveBorrows(id string) []BorrowRecord {
	info, ok := m.variables[id]
	if !ok {
		return nil
	}
	return info.activeBorrow
}

// ComputeLifetime returns the lifetime used for a borrow of expr: an
// identifier found in the symbol table yields Block, whether it names a
// parameter or a local; anything else, including an identifier the
// table does not know, yields Expression. It never returns Function or
// Static.
func ComputeLifetime(expr ast.Expression, table *symbols.Table) Lifetime {
	id, ok := expr.(*ast.Identifier)
	if !ok {
		return Expression
	}
	if table.Lookup(id.Name) == nil {
		return Expression
	}
	return Block
}

// Checker walks a Program applying the MemoryModel's registration calls
// at the statement and expression sites spec.md §4.5 names.
type Checker struct {
	model *MemoryModel
	diags *diag.Collector
}

// NewChecker returns a Checker that registers into model and reports
// into diags.
func NewChecker(model *MemoryModel, diags *diag.Collector) *Checker {
	return &Checker{model: model, diags: diags}
}

// AnalyzeProgram walks every top-level statement.
func (c *Checker) AnalyzeProgram(prog *ast.Program, table *symbols.Table) {
	for _, stmt := range prog.Statements {
		c.AnalyzeStatement(stmt, table, Static)
	}
}

// AnalyzeStatement dispatches on stmt's concrete type, registering
// variables at declaration and validating borrows and moves in
// assignments and expressions.
func (c *Checker) AnalyzeStatement(stmt ast.Statement, table *symbols.Table, lifetime Lifetime) {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		c.AnalyzeExpression(s.Initializer, table, lifetime)
		c.model.RegisterVariable(s.Name.Lexeme, nil, lifetime, s.Location())
	case *ast.Assignment:
		c.analyzeAssignment(s, table, lifetime)
	case *ast.IndexAssignment:
		c.AnalyzeExpression(s.Array, table, lifetime)
		c.AnalyzeExpression(s.Index, table, lifetime)
		c.AnalyzeExpression(s.Value, table, lifetime)
	case *ast.ExpressionStatement:
		c.AnalyzeExpression(s.Expr, table, lifetime)
	case *ast.Block:
		for _, inner := range s.Statements {
			c.AnalyzeStatement(inner, table, Block)
		}
	case *ast.If:
		c.AnalyzeExpression(s.Condition, table, lifetime)
		c.AnalyzeStatement(s.Then, table, Block)
		if s.Else != nil {
			c.AnalyzeStatement(s.Else, table, Block)
		}
	case *ast.While:
		c.AnalyzeExpression(s.Condition, table, lifetime)
		c.AnalyzeStatement(s.Body, table, Block)
	case *ast.Return:
		if s.Value != nil {
			c.AnalyzeExpression(s.Value, table, lifetime)
		}
	case *ast.Defer:
		c.AnalyzeExpression(s.Expr, table, lifetime)
	case *ast.FunctionDefinition:
		for _, param := range s.Parameters {
			loc := source.Location{Line: param.Name.Line, Column: param.Name.Column}
			c.model.RegisterVariable(param.Name.Lexeme, nil, Function, loc)
		}
		c.AnalyzeStatement(s.Body, table, Function)
	default:
		// ClassDefinition, MethodDefinition, FieldDefinition, Extern, Program
		// carry no borrow-relevant statements of their own at this level.
	}
}

func (c *Checker) analyzeAssignment(a *ast.Assignment, table *symbols.Table, lifetime Lifetime) {
	c.AnalyzeExpression(a.Value, table, lifetime)
	c.AnalyzeExpression(a.Target, table, lifetime)

	if move, ok := a.Value.(*ast.Move); ok {
		if id, ok := move.Operand.(*ast.Identifier); ok {
			c.model.RegisterMove(id.Name, a.Location())
		}
	}
}

// AnalyzeExpression issues registerBorrow for unary &/&mut and
// registerMove for move expressions, recursing into subexpressions.
func (c *Checker) AnalyzeExpression(expr ast.Expression, table *symbols.Table, lifetime Lifetime) {
	switch e := expr.(type) {
	case *ast.Unary:
		if e.Operator.Kind == lexer.AMP {
			c.analyzeAddressOf(e, table, lifetime, e.Mutable)
		} else {
			c.AnalyzeExpression(e.Operand, table, lifetime)
		}
	case *ast.Move:
		c.analyzeMove(e, table)
	case *ast.Binary:
		c.AnalyzeExpression(e.Left, table, lifetime)
		c.AnalyzeExpression(e.Right, table, lifetime)
	case *ast.FunctionCall:
		for _, arg := range e.Arguments {
			c.AnalyzeExpression(arg, table, lifetime)
		}
	case *ast.IndexAccess:
		c.AnalyzeExpression(e.Array, table, lifetime)
		c.AnalyzeExpression(e.Index, table, lifetime)
	case *ast.MemberAccess:
		c.AnalyzeExpression(e.Object, table, lifetime)
		for _, arg := range e.Arguments {
			c.AnalyzeExpression(arg, table, lifetime)
		}
	case *ast.ArrayLiteral:
		for _, elem := range e.Elements {
			c.AnalyzeExpression(elem, table, lifetime)
		}
	case *ast.New:
		c.AnalyzeExpression(e.Value, table, lifetime)
	case *ast.Optional:
		if e.Value != nil {
			c.AnalyzeExpression(e.Value, table, lifetime)
		}
	default:
		// Literal, Identifier, ObjectInstantiation, GenericInstantiation:
		// no borrow-relevant subexpressions.
	}
}

func (c *Checker) analyzeAddressOf(expr *ast.Unary, table *symbols.Table, lifetime Lifetime, mutable bool) {
	id, ok := expr.Operand.(*ast.Identifier)
	if !ok {
		c.AnalyzeExpression(expr.Operand, table, lifetime)
		return
	}
	borrowerLifetime := ComputeLifetime(expr.Operand, table)
	c.model.RegisterBorrow(id.Name, mutable, borrowerLifetime, expr.Location())
}

func (c *Checker) analyzeMove(expr *ast.Move, table *symbols.Table) {
	id, ok := expr.Operand.(*ast.Identifier)
	if !ok {
		return
	}
	c.model.RegisterMove(id.Name, expr.Location())
}
