package bytecode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/forge-lang/forgec/internal/diag"
	"github.com/forge-lang/forgec/internal/lexer"
	"github.com/forge-lang/forgec/internal/source"
	"github.com/forge-lang/forgec/pkg/ast"
	"github.com/forge-lang/forgec/pkg/typecheck"
	"github.com/forge-lang/forgec/pkg/types"
)

// Function is a compiled function body: its own instruction stream and
// constant pool, called through CALL once its declaring global slot has
// been bound to it (spec.md §4.7's FunctionObject).
type Function struct {
	Name           string
	ParameterCount int
	Instructions   []Instruction
	Constants      []Constant
}

// localFrame tracks slot assignment for one local scope: the top-level
// script body, or a function body compiled into its own Function record.
// Mirroring original_source's BytecodeCompiler (a single flat
// symbolTable/nextSlot pair, reset per compile), Forge never emits
// STORE_GLOBAL/LOAD_GLOBAL for ordinary variables — only a
// FunctionDefinition's own name gets a global slot, so other functions
// can CALL it by value.
type localFrame struct {
	slots map[string]int32
	types map[string]types.Type
	next  int32
}

func newFrame() *localFrame {
	return &localFrame{slots: make(map[string]int32), types: make(map[string]types.Type)}
}

// Compiler lowers a type-checked Program to a CompiledProgram by walking
// the AST, grounded on original_source's BytecodeCompiler.hpp shape and
// spec.md §4.6's instruction-emission rules. It works out each
// expression's int/float/double/string/bool tag (the tag an opcode
// monomorphizes on) itself as it walks; pkg/typecheck is used only to
// resolve type annotations through AnalyzeType.
type Compiler struct {
	diags *diag.Collector
	check *typecheck.Checker

	instructions []Instruction
	constants    []Constant
	strings      []string
	stringIDs    map[string]uint32

	globals     map[string]int32
	globalTypes map[string]types.Type
	nextGlobal  int32

	functions map[string]*Function
	frame     *localFrame // the current local scope; never nil mid-compile
}

// New returns a Compiler reporting codegen errors into diags.
func New(diags *diag.Collector, check *typecheck.Checker) *Compiler {
	return &Compiler{
		diags:       diags,
		check:       check,
		stringIDs:   make(map[string]uint32),
		globals:     make(map[string]int32),
		globalTypes: make(map[string]types.Type),
		functions:   make(map[string]*Function),
		frame:       newFrame(),
	}
}

func (c *Compiler) errorf(loc source.Location, format string, args ...interface{}) {
	c.diags.Codegen(fmt.Sprintf(format, args...), loc)
}

// emit appends an instruction to the buffer currently under
// construction (the function body being compiled, or the top-level
// stream).
func (c *Compiler) emit(op OpCode, operand int32) int {
	c.instructions = append(c.instructions, Instruction{Op: op, Operand: operand})
	return len(c.instructions) - 1
}

func (c *Compiler) patchJumpTarget(idx int, target int32) {
	c.instructions[idx].Operand = target
}

// internString de-duplicates string constants, per spec.md §4.7's
// internString contract.
func (c *Compiler) internString(s string) uint32 {
	if id, ok := c.stringIDs[s]; ok {
		return id
	}
	id := uint32(len(c.strings))
	c.strings = append(c.strings, s)
	c.stringIDs[s] = id
	return id
}

func (c *Compiler) addConstant(k Constant) int32 {
	c.constants = append(c.constants, k)
	return int32(len(c.constants) - 1)
}

// Compile lowers the whole program into a CompiledProgram tuple
// (spec.md §4.6).
func (c *Compiler) Compile(prog *ast.Program) *CompiledProgram {
	for _, stmt := range prog.Statements {
		c.compileStatement(stmt)
	}
	c.emit(HALT, 0)
	return &CompiledProgram{Instructions: c.instructions, Constants: c.constants, Strings: c.strings}
}

// Functions returns every compiled function body, keyed by name, for the
// VM/loader to bind into global slots before running the main stream.
func (c *Compiler) Functions() map[string]*Function {
	return c.functions
}

// GlobalSlots reports every FunctionDefinition's bound global slot, keyed
// by name, so the VM loader can place a FunctionObject there before
// running the main instruction stream.
func (c *Compiler) GlobalSlots() map[string]int32 {
	return c.globals
}

// GlobalCount is the number of global slots a loader must allocate.
func (c *Compiler) GlobalCount() int32 {
	return c.nextGlobal
}

// declareSlot allocates the next slot in the current frame for name.
func (c *Compiler) declareSlot(name string, typ types.Type) int32 {
	slot := c.frame.next
	c.frame.next++
	c.frame.slots[name] = slot
	c.frame.types[name] = typ
	return slot
}

// lookupVariable reports a name's local slot and declared type within
// the current frame.
func (c *Compiler) lookupVariable(name string) (slot int32, typ types.Type, found bool) {
	if s, ok := c.frame.slots[name]; ok {
		return s, c.frame.types[name], true
	}
	return 0, nil, false
}

// lookupFunction reports a function name's global slot and declared
// Function type, for a FunctionCall target.
func (c *Compiler) lookupFunction(name string) (slot int32, typ types.Type, found bool) {
	if s, ok := c.globals[name]; ok {
		return s, c.globalTypes[name], true
	}
	return 0, nil, false
}

func (c *Compiler) compileStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		c.compileVariableDeclaration(s)
	case *ast.Assignment:
		c.compileAssignment(s)
	case *ast.ExpressionStatement:
		c.compileExpression(s.Expr)
	case *ast.Block:
		for _, inner := range s.Statements {
			c.compileStatement(inner)
		}
	case *ast.If:
		c.compileIf(s)
	case *ast.While:
		c.compileWhile(s)
	case *ast.Return:
		if s.Value != nil {
			c.compileExpression(s.Value)
		}
		c.emit(RETURN, 0)
	case *ast.FunctionDefinition:
		c.compileFunctionDefinition(s)
	case *ast.Defer:
		// original_source only lowers defer in its LLVM backend
		// (StatementCodeGenerator/MemoryManager's cleanup-on-exit
		// bookkeeping); its VM backend has no defer-at-block-exit mechanism
		// at all. This bytecode compiler mirrors the VM backend, so a Defer
		// statement compiles to no instructions here too — not a dropped
		// feature, since there's nothing to mirror on this backend.
	case *ast.ClassDefinition, *ast.Extern, *ast.MethodDefinition, *ast.FieldDefinition:
		// No instructions of their own at this level: classes lower
		// through field layout consulted by ObjectInstantiation (not
		// yet supported, SPEC_FULL.md §9); extern declarations resolve
		// at the native-backend/runtime-ABI boundary.
	case *ast.IndexAssignment:
		c.errorf(s.Location(), "index assignment lowering not yet implemented")
	default:
		c.errorf(stmt.Location(), "unsupported statement for bytecode lowering: %T", stmt)
	}
}

func (c *Compiler) compileVariableDeclaration(decl *ast.VariableDeclaration) {
	initType := c.compileExpression(decl.Initializer)
	if initType == nil {
		return
	}
	slot := c.declareSlot(decl.Name.Lexeme, initType)
	c.emit(STORE_LOCAL, slot)
}

func (c *Compiler) compileAssignment(a *ast.Assignment) {
	id, ok := a.Target.(*ast.Identifier)
	if !ok {
		c.errorf(a.Location(), "unsupported assignment target for bytecode lowering")
		return
	}
	if c.compileExpression(a.Value) == nil {
		return
	}
	slot, _, found := c.lookupVariable(id.Name)
	if !found {
		c.errorf(a.Location(), "assignment to undeclared name %q", id.Name)
		return
	}
	c.emit(STORE_LOCAL, slot)
}

func (c *Compiler) compileIf(ifStmt *ast.If) {
	c.compileExpression(ifStmt.Condition)
	jumpToElse := c.emit(JUMP_IF_FALSE, 0)
	c.compileStatement(ifStmt.Then)

	if ifStmt.Else != nil {
		jumpToEnd := c.emit(JUMP, 0)
		c.patchJumpTarget(jumpToElse, int32(len(c.instructions)))
		c.compileStatement(ifStmt.Else)
		c.patchJumpTarget(jumpToEnd, int32(len(c.instructions)))
	} else {
		c.patchJumpTarget(jumpToElse, int32(len(c.instructions)))
	}
}

func (c *Compiler) compileWhile(w *ast.While) {
	condStart := int32(len(c.instructions))
	c.compileExpression(w.Condition)
	jumpToEnd := c.emit(JUMP_IF_FALSE, 0)
	c.compileStatement(w.Body)
	c.emit(JUMP, condStart)
	c.patchJumpTarget(jumpToEnd, int32(len(c.instructions)))
}

// compileFunctionDefinition compiles the body into its own Function
// record (its own instruction/constant pool), binds parameters to local
// slots 0..n-1, and assigns the function name a global slot — the VM
// binds that slot to the FunctionObject before running the main stream.
func (c *Compiler) compileFunctionDefinition(fn *ast.FunctionDefinition) {
	outerInstructions, outerConstants, outerFrame := c.instructions, c.constants, c.frame
	c.instructions = nil
	c.constants = nil
	c.frame = newFrame()

	for _, param := range fn.Parameters {
		paramType, ok := c.check.AnalyzeType(param.Type)
		if !ok {
			paramType = &types.Primitive{Name: "int"}
		}
		c.declareSlot(param.Name.Lexeme, paramType)
	}
	c.compileStatement(fn.Body)
	endsWithReturn := false
	if n := len(fn.Body.Statements); n > 0 {
		_, endsWithReturn = fn.Body.Statements[n-1].(*ast.Return)
	}
	if !endsWithReturn {
		c.emit(RETURN, 0)
	}

	c.functions[fn.Name] = &Function{
		Name:           fn.Name,
		ParameterCount: len(fn.Parameters),
		Instructions:   c.instructions,
		Constants:      c.constants,
	}

	c.frame = outerFrame
	c.instructions, c.constants = outerInstructions, outerConstants

	returnType, ok := c.check.AnalyzeType(fn.ReturnType)
	if !ok {
		returnType = &types.Primitive{Name: "void"}
	}
	paramTypes := make([]types.Type, len(fn.Parameters))
	for i, param := range fn.Parameters {
		if t, ok := c.check.AnalyzeType(param.Type); ok {
			paramTypes[i] = t
		} else {
			paramTypes[i] = &types.Primitive{Name: "int"}
		}
	}
	c.globals[fn.Name] = c.nextGlobal
	c.globalTypes[fn.Name] = &types.Function{Params: paramTypes, Return: returnType}
	c.nextGlobal++
}

// compileExpression emits the instructions to leave expr's value on top
// of the stack, returning its inferred type (nil on error, already
// reported).
func (c *Compiler) compileExpression(expr ast.Expression) types.Type {
	switch e := expr.(type) {
	case *ast.Literal:
		return c.compileLiteral(e)
	case *ast.Identifier:
		return c.compileIdentifier(e)
	case *ast.Binary:
		return c.compileBinary(e)
	case *ast.Unary:
		return c.compileUnary(e)
	case *ast.FunctionCall:
		return c.compileFunctionCall(e)
	default:
		c.errorf(expr.Location(), "unsupported expression for bytecode lowering: %T", expr)
		return nil
	}
}

func (c *Compiler) compileLiteral(lit *ast.Literal) types.Type {
	switch lit.Token.Kind {
	case lexer.NUMBER:
		name := numericPrimitiveName(lit.Token.Lexeme)
		switch name {
		case "int":
			idx := c.addConstant(Constant{Tag: ConstInt, IntVal: parseIntLiteral(lit.Token.Lexeme)})
			c.emit(LOAD_INT, idx)
		case "float":
			idx := c.addConstant(Constant{Tag: ConstFloat, FloatVal: parseFloatLiteral(lit.Token.Lexeme)})
			c.emit(LOAD_FLOAT, idx)
		case "double":
			idx := c.addConstant(Constant{Tag: ConstDouble, DoubleVal: parseDoubleLiteral(lit.Token.Lexeme)})
			c.emit(LOAD_DOUBLE, idx)
		}
		return &types.Primitive{Name: name}
	case lexer.STRING:
		id := c.internString(lit.Token.Lexeme)
		c.emit(LOAD_STRING, int32(id))
		return &types.Primitive{Name: "string"}
	case lexer.TRUE:
		idx := c.addConstant(Constant{Tag: ConstBool, BoolVal: true})
		c.emit(LOAD_BOOL, idx)
		return &types.Primitive{Name: "bool"}
	case lexer.FALSE:
		idx := c.addConstant(Constant{Tag: ConstBool, BoolVal: false})
		c.emit(LOAD_BOOL, idx)
		return &types.Primitive{Name: "bool"}
	default:
		c.errorf(lit.Location(), "unsupported literal kind %s for bytecode lowering", lit.Token.Kind)
		return nil
	}
}

// numericPrimitiveName classifies a NUMBER token's lexeme exactly as
// pkg/typecheck's inferLiteral does (spec.md §4.3), duplicated here
// because the compiler walks independently of the checker's AST pass.
func numericPrimitiveName(lexeme string) string {
	if strings.HasSuffix(lexeme, "f") || strings.HasSuffix(lexeme, "F") {
		return "float"
	}
	if strings.ContainsAny(lexeme, ".eE") {
		return "double"
	}
	return "int"
}

func parseIntLiteral(lexeme string) int32 {
	n, _ := strconv.ParseInt(lexeme, 10, 32)
	return int32(n)
}

func parseFloatLiteral(lexeme string) float32 {
	trimmed := strings.TrimSuffix(strings.TrimSuffix(lexeme, "f"), "F")
	n, _ := strconv.ParseFloat(trimmed, 32)
	return float32(n)
}

func parseDoubleLiteral(lexeme string) float64 {
	n, _ := strconv.ParseFloat(lexeme, 64)
	return n
}

func (c *Compiler) compileIdentifier(id *ast.Identifier) types.Type {
	if slot, typ, found := c.lookupVariable(id.Name); found {
		c.emit(LOAD_LOCAL, slot)
		return typ
	}
	if slot, typ, found := c.lookupFunction(id.Name); found {
		c.emit(LOAD_GLOBAL, slot)
		return typ
	}
	c.errorf(id.Location(), "undeclared name %q", id.Name)
	return nil
}

func (c *Compiler) compileBinary(b *ast.Binary) types.Type {
	left := c.compileExpression(b.Left)
	right := c.compileExpression(b.Right)
	if left == nil || right == nil {
		return nil
	}

	name := primitiveName(left)
	if name == "" {
		name = primitiveName(right)
	}

	switch b.Operator.Kind {
	case lexer.PLUS:
		c.emit(opByPrimitive(ADD_INT, ADD_FLOAT, ADD_DOUBLE, ADD_STRING, name), 0)
		return &types.Primitive{Name: name}
	case lexer.MINUS:
		c.emit(opByPrimitive(SUB_INT, SUB_FLOAT, SUB_DOUBLE, SUB_INT, name), 0)
		return &types.Primitive{Name: name}
	case lexer.STAR:
		c.emit(opByPrimitive(MULT_INT, MULT_FLOAT, MULT_DOUBLE, MULT_INT, name), 0)
		return &types.Primitive{Name: name}
	case lexer.SLASH:
		c.emit(opByPrimitive(DIV_INT, DIV_FLOAT, DIV_DOUBLE, DIV_INT, name), 0)
		return &types.Primitive{Name: name}
	case lexer.EQ:
		c.emit(opByPrimitive(EQ_INT, EQ_FLOAT, EQ_DOUBLE, EQ_STRING, name), 0)
		return &types.Primitive{Name: "bool"}
	case lexer.LT:
		c.emit(opByPrimitive(LT_INT, LT_FLOAT, LT_DOUBLE, LT_INT, name), 0)
		return &types.Primitive{Name: "bool"}
	case lexer.GT:
		c.emit(opByPrimitive(GT_INT, GT_FLOAT, GT_DOUBLE, GT_INT, name), 0)
		return &types.Primitive{Name: "bool"}
	case lexer.LTE:
		c.emit(opByPrimitive(LEQ_INT, LEQ_FLOAT, LEQ_DOUBLE, LEQ_INT, name), 0)
		return &types.Primitive{Name: "bool"}
	case lexer.GTE:
		c.emit(opByPrimitive(GEQ_INT, GEQ_FLOAT, GEQ_DOUBLE, GEQ_INT, name), 0)
		return &types.Primitive{Name: "bool"}
	case lexer.AMP:
		c.emit(BITWISE_AND_INT, 0)
		return &types.Primitive{Name: name}
	case lexer.PIPE:
		c.emit(BITWISE_OR_INT, 0)
		return &types.Primitive{Name: name}
	case lexer.CARET:
		c.emit(BITWISE_XOR_INT, 0)
		return &types.Primitive{Name: name}
	default:
		c.errorf(b.Location(), "unsupported binary operator %s for bytecode lowering", b.Operator.Lexeme)
		return nil
	}
}

func primitiveName(t types.Type) string {
	if p, ok := t.(*types.Primitive); ok {
		return p.Name
	}
	return ""
}

// opByPrimitive picks the monomorphized opcode for a primitive name,
// spec.md §4.6's "opcode monomorphization per primitive type."
func opByPrimitive(intOp, floatOp, doubleOp, fallbackOp OpCode, name string) OpCode {
	switch name {
	case "int":
		return intOp
	case "float":
		return floatOp
	case "double":
		return doubleOp
	case "string":
		return fallbackOp
	default:
		return intOp
	}
}

func (c *Compiler) compileUnary(u *ast.Unary) types.Type {
	operand := c.compileExpression(u.Operand)
	if operand == nil {
		return nil
	}
	name := primitiveName(operand)

	switch u.Operator.Kind {
	case lexer.MINUS:
		c.emit(opByPrimitive(NEG_INT, NEG_FLOAT, NEG_DOUBLE, NEG_INT, name), 0)
		return operand
	case lexer.BANG:
		c.emit(NOT_BOOL, 0)
		return operand
	default:
		c.errorf(u.Location(), "unsupported unary operator %s for bytecode lowering", u.Operator.Lexeme)
		return nil
	}
}

func (c *Compiler) compileFunctionCall(call *ast.FunctionCall) types.Type {
	slot, typ, found := c.lookupFunction(call.Name)
	if !found {
		if _, _, ok := c.lookupVariable(call.Name); ok {
			c.errorf(call.Location(), "%q is a variable, not a callable function", call.Name)
			return nil
		}
		c.errorf(call.Location(), "call to undeclared function %q", call.Name)
		return nil
	}
	c.emit(LOAD_GLOBAL, slot)
	for _, arg := range call.Arguments {
		c.compileExpression(arg)
	}
	c.emit(CALL, int32(len(call.Arguments)))

	if fnType, ok := typ.(*types.Function); ok {
		return fnType.Return
	}
	return &types.Primitive{Name: "void"}
}
