package typecheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forge-lang/forgec/internal/diag"
	"github.com/forge-lang/forgec/internal/lexer"
	"github.com/forge-lang/forgec/internal/source"
	"github.com/forge-lang/forgec/pkg/ast"
	"github.com/forge-lang/forgec/pkg/symbols"
	"github.com/forge-lang/forgec/pkg/types"
)

func numberLit(lexeme string) *ast.Literal {
	return &ast.Literal{Token: lexer.Token{Kind: lexer.NUMBER, Lexeme: lexeme}}
}

func TestInferLiteralNumericDefaultsToInt(t *testing.T) {
	d := diag.NewCollector()
	c := New(d)
	typ, ok := c.InferExpressionType(numberLit("42"), symbols.NewTable())
	require.True(t, ok)
	assert.Equal(t, "int", typ.String())
}

func TestInferLiteralDecimalPointIsDouble(t *testing.T) {
	d := diag.NewCollector()
	c := New(d)
	typ, ok := c.InferExpressionType(numberLit("3.14"), symbols.NewTable())
	require.True(t, ok)
	assert.Equal(t, "double", typ.String())
}

func TestInferLiteralFSuffixIsFloat(t *testing.T) {
	d := diag.NewCollector()
	c := New(d)
	typ, ok := c.InferExpressionType(numberLit("2.5f"), symbols.NewTable())
	require.True(t, ok)
	assert.Equal(t, "float", typ.String())
}

func TestInferIdentifierLooksUpSymbol(t *testing.T) {
	table := symbols.NewTable()
	require.NoError(t, table.Declare(&symbols.Symbol{Name: "x", Type: &types.Primitive{Name: "int"}}))

	d := diag.NewCollector()
	c := New(d)
	typ, ok := c.InferExpressionType(&ast.Identifier{Name: "x"}, table)
	require.True(t, ok)
	assert.Equal(t, "int", typ.String())
}

func TestInferIdentifierUndefinedReportsTypeError(t *testing.T) {
	d := diag.NewCollector()
	c := New(d)
	_, ok := c.InferExpressionType(&ast.Identifier{Name: "missing"}, symbols.NewTable())
	assert.False(t, ok)
	assert.True(t, d.HasErrors())
}

func TestInferIdentifierUseAfterMoveIsBorrowError(t *testing.T) {
	table := symbols.NewTable()
	require.NoError(t, table.Declare(&symbols.Symbol{
		Name:      "p",
		Type:      &types.SmartPointer{Elem: &types.Primitive{Name: "int"}, PointerKind: types.PointerUnique},
		Ownership: symbols.Moved,
	}))

	d := diag.NewCollector()
	c := New(d)
	_, ok := c.InferExpressionType(&ast.Identifier{Name: "p"}, table)
	assert.False(t, ok)
	assert.True(t, d.HasErrors())
}

func TestInferBinaryArithmeticPromotes(t *testing.T) {
	d := diag.NewCollector()
	c := New(d)
	bin := &ast.Binary{
		Left:     numberLit("1"),
		Operator: lexer.Token{Kind: lexer.PLUS, Lexeme: "+"},
		Right:    numberLit("2.0"),
	}
	typ, ok := c.InferExpressionType(bin, symbols.NewTable())
	require.True(t, ok)
	assert.Equal(t, "double", typ.String())
}

func TestInferBinaryComparisonYieldsBool(t *testing.T) {
	d := diag.NewCollector()
	c := New(d)
	bin := &ast.Binary{
		Left:     numberLit("1"),
		Operator: lexer.Token{Kind: lexer.LT, Lexeme: "<"},
		Right:    numberLit("2"),
	}
	typ, ok := c.InferExpressionType(bin, symbols.NewTable())
	require.True(t, ok)
	assert.Equal(t, "bool", typ.String())
}

func TestInferNewWrapsInUniqueSmartPointer(t *testing.T) {
	d := diag.NewCollector()
	c := New(d)
	n := &ast.New{Value: numberLit("5")}
	typ, ok := c.InferExpressionType(n, symbols.NewTable())
	require.True(t, ok)
	sp, ok := typ.(*types.SmartPointer)
	require.True(t, ok)
	assert.Equal(t, types.PointerUnique, sp.PointerKind)
	assert.Equal(t, "int", sp.Elem.String())
}

func TestInferMoveTransitionsSymbolToMoved(t *testing.T) {
	table := symbols.NewTable()
	require.NoError(t, table.Declare(&symbols.Symbol{
		Name: "p",
		Type: &types.SmartPointer{Elem: &types.Primitive{Name: "int"}, PointerKind: types.PointerUnique},
	}))

	d := diag.NewCollector()
	c := New(d)
	_, ok := c.InferExpressionType(&ast.Move{Operand: &ast.Identifier{Name: "p"}}, table)
	require.True(t, ok)
	assert.Equal(t, symbols.Moved, table.Lookup("p").Ownership)
}

// TestUniqueAssignmentRequiresMove encodes SPEC_FULL.md §9's resolution
// of the Unique-pointer assignment Open Question: assigning one Unique
// pointer into another without `move` is a borrow error.
func TestUniqueAssignmentRequiresMove(t *testing.T) {
	unique := &types.SmartPointer{Elem: &types.Primitive{Name: "int"}, PointerKind: types.PointerUnique}

	d := diag.NewCollector()
	c := New(d)
	ok := c.ValidateAssignment(unique, unique.Clone(), &ast.Identifier{Name: "other"}, source.Location{})
	assert.False(t, ok)
	assert.True(t, d.HasErrors())
}

func TestUniqueAssignmentWithMoveIsAllowed(t *testing.T) {
	unique := &types.SmartPointer{Elem: &types.Primitive{Name: "int"}, PointerKind: types.PointerUnique}

	d := diag.NewCollector()
	c := New(d)
	ok := c.ValidateAssignment(unique, unique.Clone(), &ast.Move{Operand: &ast.Identifier{Name: "other"}}, source.Location{})
	assert.True(t, ok)
	assert.False(t, d.HasErrors())
}

func TestValidateFunctionCallArgumentCountMismatch(t *testing.T) {
	fn := &types.Function{Params: []types.Type{&types.Primitive{Name: "int"}}}

	d := diag.NewCollector()
	c := New(d)
	ok := c.ValidateFunctionCall(fn, nil, source.Location{})
	assert.False(t, ok)
}

func TestValidateFunctionCallVariadicAllowsExtraArgs(t *testing.T) {
	fn := &types.Function{Params: []types.Type{&types.Primitive{Name: "int"}}, Variadic: true}
	args := []types.Type{&types.Primitive{Name: "int"}, &types.Primitive{Name: "string"}, &types.Primitive{Name: "bool"}}

	d := diag.NewCollector()
	c := New(d)
	ok := c.ValidateFunctionCall(fn, args, source.Location{})
	assert.True(t, ok)
}

func TestInferArrayLiteralPromotesElements(t *testing.T) {
	d := diag.NewCollector()
	c := New(d)
	lit := &ast.ArrayLiteral{Elements: []ast.Expression{numberLit("1"), numberLit("2.0")}}
	typ, ok := c.InferExpressionType(lit, symbols.NewTable())
	require.True(t, ok)
	arr, ok := typ.(*types.Array)
	require.True(t, ok)
	assert.Equal(t, "double", arr.Elem.String())
	assert.Equal(t, 2, arr.Length)
}

func TestAnalyzeTypePointer(t *testing.T) {
	d := diag.NewCollector()
	c := New(d)
	pt := ast.ParsedType{Primary: lexer.Token{Kind: lexer.INT_TYPE, Lexeme: "int"}, IsPointer: true}
	typ, ok := c.AnalyzeType(pt)
	require.True(t, ok)
	assert.Equal(t, "*int", typ.String())
}

func TestAnalyzeTypeMutReference(t *testing.T) {
	d := diag.NewCollector()
	c := New(d)
	pt := ast.ParsedType{Primary: lexer.Token{Kind: lexer.INT_TYPE, Lexeme: "int"}, IsMutReference: true}
	typ, ok := c.AnalyzeType(pt)
	require.True(t, ok)
	ref, ok := typ.(*types.Reference)
	require.True(t, ok)
	assert.True(t, ref.Mutable)
}
