// Package ast defines Forge's abstract syntax tree: a closed sum type per
// category (Expression, Statement) plus the ParsedType descriptor, each
// dispatched with an ordinary type switch rather than virtual methods —
// the sum-type-and-match design spec.md §9 asks for in place of the
// original's dynamic_cast-based tree walks.
package ast

import (
	"github.com/forge-lang/forgec/internal/lexer"
	"github.com/forge-lang/forgec/internal/source"
)

// SmartPointerKind is the ∈ {none, unique, shared, weak} tag on a
// ParsedType.
type SmartPointerKind int

const (
	SmartPointerNone SmartPointerKind = iota
	SmartPointerUnique
	SmartPointerShared
	SmartPointerWeak
)

func (k SmartPointerKind) String() string {
	switch k {
	case SmartPointerUnique:
		return "unique"
	case SmartPointerShared:
		return "shared"
	case SmartPointerWeak:
		return "weak"
	default:
		return "none"
	}
}

// ParsedType is the syntactic type descriptor produced by the parser,
// before the type checker resolves it to a semantic types.Type. Per
// spec.md §3: at most one of {IsPointer, IsReference, IsMutReference} is
// true for a given layer; SmartPointerKind is independent of that choice.
type ParsedType struct {
	Primary        lexer.Token
	TypeParameters []lexer.Token
	NestingLevel   int
	IsPointer      bool
	IsReference    bool
	IsMutReference bool
	IsOptional     bool
	SmartPointer   SmartPointerKind
	Loc            source.Location
}

// IsSimple reports whether this descriptor names a bare primary type with
// no pointer/reference/optional/smart-pointer/generic decoration.
func (p ParsedType) IsSimple() bool {
	return !p.IsPointer && !p.IsReference && !p.IsMutReference && !p.IsOptional &&
		p.SmartPointer == SmartPointerNone && len(p.TypeParameters) == 0
}

// Node is implemented by every Expression and Statement.
type Node interface {
	Location() source.Location
}

// Expression is the sum type of all expression-category AST nodes. The
// marker method closes the interface to this package: new variants can
// only be added here, which lets every switch over Expression be checked
// for exhaustiveness at the call sites that matter.
type Expression interface {
	Node
	expressionNode()
}

// Statement is the sum type of all statement-category AST nodes.
type Statement interface {
	Node
	statementNode()
}

type Base struct {
	Loc source.Location
}

func (b Base) Location() source.Location { return b.Loc }

// ---- Expression variants ----

// Literal wraps a single literal token (number, string, true, false,
// null).
type Literal struct {
	Base
	Token lexer.Token
}

// ArrayLiteral is a bracketed, comma-separated expression sequence.
type ArrayLiteral struct {
	Base
	Elements []Expression
}

// IndexAccess is `array[index]`.
type IndexAccess struct {
	Base
	Array Expression
	Index Expression
}

// MemberAccess is `object.memberName` or, when IsMethodCall, the call
// `object.memberName(arguments...)`.
type MemberAccess struct {
	Base
	Object       Expression
	MemberName   string
	Arguments    []Expression
	IsMethodCall bool
}

// Identifier is a bare name reference.
type Identifier struct {
	Base
	Name string
}

// Binary is a left-associative binary operator application.
type Binary struct {
	Base
	Left     Expression
	Operator lexer.Token
	Right    Expression
}

// Unary is a prefix operator application (!, unary -, &, &mut, *).
// Mutable is set only when Operator is AMP and the source wrote `&mut`.
type Unary struct {
	Base
	Operator lexer.Token
	Operand  Expression
	Mutable  bool
}

// FunctionCall is `name[typeArguments...](arguments...)`.
type FunctionCall struct {
	Base
	Name          string
	TypeArguments []ParsedType
	Arguments     []Expression
}

// ObjectInstantiation is `new`-free direct construction: `ClassName(args)`.
type ObjectInstantiation struct {
	Base
	ClassName lexer.Token
	Arguments []Expression
}

// GenericInstantiation is `ClassName[TypeArgs...](args)`.
type GenericInstantiation struct {
	Base
	ClassName     lexer.Token
	TypeArguments []ParsedType
	Arguments     []Expression
}

// Move is `move operand`.
type Move struct {
	Base
	MoveToken lexer.Token
	Operand   Expression
}

// New is `new value`, producing SmartPointer(Unique) of value's type.
type New struct {
	Base
	Value Expression
}

// Optional is `Some(value)` or `None`, tagged by KindToken.
type Optional struct {
	Base
	KindToken lexer.Token
	Value     Expression // nil for None
}

func (*Literal) expressionNode()              {}
func (*ArrayLiteral) expressionNode()          {}
func (*IndexAccess) expressionNode()           {}
func (*MemberAccess) expressionNode()          {}
func (*Identifier) expressionNode()            {}
func (*Binary) expressionNode()                {}
func (*Unary) expressionNode()                 {}
func (*FunctionCall) expressionNode()          {}
func (*ObjectInstantiation) expressionNode()   {}
func (*GenericInstantiation) expressionNode()  {}
func (*Move) expressionNode()                  {}
func (*New) expressionNode()                   {}
func (*Optional) expressionNode()              {}

// ---- Statement variants ----

// Program is the root node: an ordered sequence of top-level statements.
type Program struct {
	Base
	Statements []Statement
}

// ExpressionStatement wraps an expression evaluated for effect.
type ExpressionStatement struct {
	Base
	Expr Expression
}

// VariableDeclaration is `name : type = initializer` or `name := initializer`
// (Type.IsSimple() with a zero Primary token marks inference-deferred).
type VariableDeclaration struct {
	Base
	Name        lexer.Token
	Type        ParsedType
	Inferred    bool
	Initializer Expression
}

// Assignment is `lvalue = rvalue`.
type Assignment struct {
	Base
	Target Expression
	Value  Expression
}

// IndexAssignment is `array[index] = value`.
type IndexAssignment struct {
	Base
	Array Expression
	Index Expression
	Value Expression
}

// Block is a brace-delimited statement sequence.
type Block struct {
	Base
	Statements []Statement
}

// If is `if (cond) then [else else]`.
type If struct {
	Base
	Condition Expression
	Then      *Block
	Else      *Block // nil when absent
}

// While is `while (cond) body`.
type While struct {
	Base
	Condition Expression
	Body      *Block
}

// Parameter is one entry of a parameter list.
type Parameter struct {
	Name lexer.Token
	Type ParsedType
}

// FunctionDefinition is `def name[<typeParams>](params) -> returnType body`.
type FunctionDefinition struct {
	Base
	Name           string
	Parameters     []Parameter
	TypeParameters []lexer.Token
	ReturnType     ParsedType
	Body           *Block
}

// MethodDefinition is a FunctionDefinition bound inside a class body.
type MethodDefinition struct {
	Base
	Name       string
	Parameters []Parameter
	ReturnType ParsedType
	Body       *Block
}

// FieldDefinition is a single class field declaration.
type FieldDefinition struct {
	Base
	Name lexer.Token
	Type ParsedType
}

// ClassDefinition is `class Name[genericParams] { fields; methods }`.
type ClassDefinition struct {
	Base
	Name              string
	GenericParameters []lexer.Token
	Fields            []*FieldDefinition
	Methods           []*MethodDefinition
}

// Return is `return value?`.
type Return struct {
	Base
	Value Expression // nil for a bare return
}

// Defer is `defer expr`: expr is emitted at every exit edge of the
// enclosing block, in reverse registration order (spec.md §5, §9).
type Defer struct {
	Base
	Expr Expression
}

// Extern is `extern def name(params) -> type`: a declaration with no
// body, resolved at link time against the runtime ABI or native backend.
type Extern struct {
	Base
	Name       string
	Parameters []Parameter
	ReturnType ParsedType
}

func (*Program) statementNode()              {}
func (*ExpressionStatement) statementNode()  {}
func (*VariableDeclaration) statementNode()  {}
func (*Assignment) statementNode()           {}
func (*IndexAssignment) statementNode()      {}
func (*Block) statementNode()                {}
func (*If) statementNode()                   {}
func (*While) statementNode()                {}
func (*FunctionDefinition) statementNode()   {}
func (*MethodDefinition) statementNode()     {}
func (*FieldDefinition) statementNode()      {}
func (*ClassDefinition) statementNode()      {}
func (*Return) statementNode()               {}
func (*Defer) statementNode()                {}
func (*Extern) statementNode()               {}
