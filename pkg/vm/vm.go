package vm

import (
	"fmt"

	"github.com/forge-lang/forgec/internal/diag"
	"github.com/forge-lang/forgec/internal/source"
	"github.com/forge-lang/forgec/pkg/bytecode"
)

// CallFrame is the interpreter's saved caller state, pushed by CALL and
// popped by RETURN (spec.md §4.7's call/return contract).
type CallFrame struct {
	ReturnIP           int
	ReturnInstructions []bytecode.Instruction
	ReturnConstants    []Value
	ReturnLocals       []Value
	StackBase          int
}

// VM is Forge's single-threaded bytecode interpreter: a typed operand
// stack, a locals vector grown on first store, a globals vector sized at
// load time, a call stack of frames, and a heap. Grounded on
// original_source's VirtualMachine.hpp/.cpp, extended with the
// STORE_GLOBAL/LOAD_GLOBAL/CALL/RETURN wiring spec.md §4.7 calls
// "design level... forthcoming" in the original.
type VM struct {
	diags *diag.Collector
	heap  *Heap

	stack   []Value
	globals []Value
	locals  []Value

	instructions []bytecode.Instruction
	constants    []Value
	strings      []string
	stringCache  map[string]int
	stringObjs   []*Object

	callStack []*CallFrame
	ip        int
}

// Load builds a VM ready to Run the given CompiledProgram: every
// FunctionDefinition's body is heap-allocated as a FunctionObject and
// bound into the global slot the compiler assigned it.
func Load(diags *diag.Collector, program *bytecode.CompiledProgram, functions map[string]*bytecode.Function, globalSlots map[string]int32, globalCount int32) *VM {
	heap := NewHeap()
	stringCache := make(map[string]int, len(program.Strings))
	for i, s := range program.Strings {
		stringCache[s] = i
	}

	v := &VM{
		diags:       diags,
		heap:        heap,
		instructions: program.Instructions,
		strings:     program.Strings,
		stringCache: stringCache,
		stringObjs:  make([]*Object, len(program.Strings)),
		globals:     make([]Value, globalCount),
	}
	v.constants = convertConstants(heap, program.Constants, program.Strings)

	for name, slot := range globalSlots {
		fn, ok := functions[name]
		if !ok {
			continue
		}
		fnConstants := convertConstants(heap, fn.Constants, program.Strings)
		obj := heap.AllocateFunction(fn.Name, fn.ParameterCount, fn.Instructions, fnConstants)
		if int(slot) < len(v.globals) {
			v.globals[slot] = ObjectValue(obj)
		}
	}
	return v
}

func convertConstants(heap *Heap, consts []bytecode.Constant, strings []string) []Value {
	out := make([]Value, len(consts))
	for i, c := range consts {
		switch c.Tag {
		case bytecode.ConstInt:
			out[i] = IntValue(c.IntVal)
		case bytecode.ConstFloat:
			out[i] = FloatValue(c.FloatVal)
		case bytecode.ConstDouble:
			out[i] = DoubleValue(c.DoubleVal)
		case bytecode.ConstBool:
			out[i] = BoolValue(c.BoolVal)
		case bytecode.ConstStringID:
			s := ""
			if int(c.StringID) < len(strings) {
				s = strings[c.StringID]
			}
			out[i] = ObjectValue(heap.AllocateString(s))
		}
	}
	return out
}

// Heap exposes the VM's heap, for tests and for a driver that wants to
// force a collection between runs.
func (v *VM) Heap() *Heap { return v.heap }

// Stack exposes the current operand stack, top last, for tests
// (original_source's dumpStack debug helper).
func (v *VM) Stack() []Value { return v.stack }

func (v *VM) runtimeError(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	v.diags.Runtime(msg, source.Location{})
	return fmt.Errorf("%s", msg)
}

func (v *VM) push(val Value) { v.stack = append(v.stack, val) }

func (v *VM) pop() (Value, error) {
	if len(v.stack) == 0 {
		return Value{}, v.runtimeError("stack underflow")
	}
	top := v.stack[len(v.stack)-1]
	v.stack = v.stack[:len(v.stack)-1]
	return top, nil
}

func (v *VM) popTyped(tag ValueTag) (Value, error) {
	val, err := v.pop()
	if err != nil {
		return Value{}, err
	}
	if val.Tag != tag {
		return Value{}, v.runtimeError("expected %s on stack, got %s", tag, val.Tag)
	}
	return val, nil
}

func (v *VM) popInt() (int32, error) {
	val, err := v.popTyped(ValInt)
	return val.Int, err
}

func (v *VM) popFloat() (float32, error) {
	val, err := v.popTyped(ValFloat)
	return val.Float, err
}

func (v *VM) popDouble() (float64, error) {
	val, err := v.popTyped(ValDouble)
	return val.Double, err
}

func (v *VM) popBool() (bool, error) {
	val, err := v.popTyped(ValBool)
	return val.Bool, err
}

// internString returns an existing id for s, interning it if new
// (original_source's VirtualMachine::internString).
func (v *VM) internString(s string) int {
	if id, ok := v.stringCache[s]; ok {
		return id
	}
	id := len(v.strings)
	v.strings = append(v.strings, s)
	v.stringCache[s] = id
	v.stringObjs = append(v.stringObjs, nil)
	return id
}

func (v *VM) stringObject(id int) (*Object, error) {
	if id < 0 || id >= len(v.strings) {
		return nil, v.runtimeError("invalid string id %d", id)
	}
	if v.stringObjs[id] == nil {
		v.stringObjs[id] = v.heap.AllocateString(v.strings[id])
	}
	return v.stringObjs[id], nil
}

// CollectIfNeeded runs a mark-and-sweep pass when the heap has crossed
// its growth threshold (spec.md §4.7). Exposed so a host loop can call
// it between top-level statements as well as automatically between
// instructions.
func (v *VM) CollectIfNeeded() {
	if !v.heap.ShouldCollect() {
		return
	}
	v.heap.Collect(v.stack, v.globals, v.locals, v.callStack)
}

// Run executes the loaded program until HALT, returning the first fatal
// runtime error encountered (stack underflow, type-tag mismatch, invalid
// local/global slot, integer division by zero, invalid string id).
func (v *VM) Run() error {
	for v.ip < len(v.instructions) {
		v.CollectIfNeeded()
		inst := v.instructions[v.ip]

		switch inst.Op {
		case bytecode.LOAD_INT, bytecode.LOAD_FLOAT, bytecode.LOAD_DOUBLE, bytecode.LOAD_BOOL:
			idx := int(inst.Operand)
			if idx < 0 || idx >= len(v.constants) {
				return v.runtimeError("invalid constant index %d", idx)
			}
			v.push(v.constants[idx])

		case bytecode.LOAD_STRING:
			obj, err := v.stringObject(int(inst.Operand))
			if err != nil {
				return err
			}
			v.push(ObjectValue(obj))

		case bytecode.STORE_LOCAL:
			val, err := v.pop()
			if err != nil {
				return err
			}
			slot := int(inst.Operand)
			if slot >= len(v.locals) {
				grown := make([]Value, slot+1)
				copy(grown, v.locals)
				v.locals = grown
			}
			v.locals[slot] = val

		case bytecode.LOAD_LOCAL:
			slot := int(inst.Operand)
			if slot < 0 || slot >= len(v.locals) {
				return v.runtimeError("invalid local variable slot %d", slot)
			}
			v.push(v.locals[slot])

		case bytecode.STORE_GLOBAL:
			val, err := v.pop()
			if err != nil {
				return err
			}
			slot := int(inst.Operand)
			if slot < 0 || slot >= len(v.globals) {
				return v.runtimeError("invalid global slot %d", slot)
			}
			v.globals[slot] = val

		case bytecode.LOAD_GLOBAL:
			slot := int(inst.Operand)
			if slot < 0 || slot >= len(v.globals) {
				return v.runtimeError("invalid global slot %d", slot)
			}
			v.push(v.globals[slot])

		case bytecode.ADD_INT, bytecode.SUB_INT, bytecode.MULT_INT, bytecode.DIV_INT,
			bytecode.BITWISE_AND_INT, bytecode.BITWISE_OR_INT, bytecode.BITWISE_XOR_INT:
			if err := v.execIntBinary(inst.Op); err != nil {
				return err
			}

		case bytecode.ADD_FLOAT, bytecode.SUB_FLOAT, bytecode.MULT_FLOAT, bytecode.DIV_FLOAT:
			if err := v.execFloatBinary(inst.Op); err != nil {
				return err
			}

		case bytecode.ADD_DOUBLE, bytecode.SUB_DOUBLE, bytecode.MULT_DOUBLE, bytecode.DIV_DOUBLE:
			if err := v.execDoubleBinary(inst.Op); err != nil {
				return err
			}

		case bytecode.ADD_STRING:
			if err := v.execStringConcat(); err != nil {
				return err
			}

		case bytecode.BITWISE_AND_BOOL, bytecode.BITWISE_OR_BOOL, bytecode.BITWISE_XOR_BOOL:
			if err := v.execBoolBinary(inst.Op); err != nil {
				return err
			}

		case bytecode.NOT_BOOL:
			a, err := v.popBool()
			if err != nil {
				return err
			}
			v.push(BoolValue(!a))

		case bytecode.NEG_INT:
			a, err := v.popInt()
			if err != nil {
				return err
			}
			v.push(IntValue(-a))

		case bytecode.NEG_FLOAT:
			a, err := v.popFloat()
			if err != nil {
				return err
			}
			v.push(FloatValue(-a))

		case bytecode.NEG_DOUBLE:
			a, err := v.popDouble()
			if err != nil {
				return err
			}
			v.push(DoubleValue(-a))

		case bytecode.INT_TO_DOUBLE:
			a, err := v.popInt()
			if err != nil {
				return err
			}
			v.push(DoubleValue(float64(a)))

		case bytecode.FLOAT_TO_DOUBLE:
			a, err := v.popFloat()
			if err != nil {
				return err
			}
			v.push(DoubleValue(float64(a)))

		case bytecode.EQ_INT, bytecode.LT_INT, bytecode.GT_INT, bytecode.LEQ_INT, bytecode.GEQ_INT:
			if err := v.execIntCompare(inst.Op); err != nil {
				return err
			}

		case bytecode.EQ_DOUBLE, bytecode.LT_DOUBLE, bytecode.GT_DOUBLE, bytecode.LEQ_DOUBLE, bytecode.GEQ_DOUBLE:
			if err := v.execDoubleCompare(inst.Op); err != nil {
				return err
			}

		case bytecode.EQ_FLOAT, bytecode.LT_FLOAT, bytecode.GT_FLOAT, bytecode.LEQ_FLOAT, bytecode.GEQ_FLOAT:
			if err := v.execFloatCompare(inst.Op); err != nil {
				return err
			}

		case bytecode.EQ_BOOL:
			b, err := v.popBool()
			if err != nil {
				return err
			}
			a, err := v.popBool()
			if err != nil {
				return err
			}
			v.push(BoolValue(a == b))

		case bytecode.EQ_STRING:
			if err := v.execStringEquals(); err != nil {
				return err
			}

		case bytecode.JUMP:
			v.ip = int(inst.Operand)
			continue

		case bytecode.JUMP_IF_FALSE:
			cond, err := v.popBool()
			if err != nil {
				return err
			}
			if !cond {
				v.ip = int(inst.Operand)
				continue
			}

		case bytecode.CALL:
			if err := v.execCall(int(inst.Operand)); err != nil {
				return err
			}
			continue

		case bytecode.RETURN:
			if v.execReturn() {
				continue
			}
			return nil

		case bytecode.HALT:
			return nil

		default:
			return v.runtimeError("unknown opcode %s", inst.Op)
		}

		v.ip++
	}
	return nil
}

func (v *VM) execIntBinary(op bytecode.OpCode) error {
	b, err := v.popInt()
	if err != nil {
		return err
	}
	a, err := v.popInt()
	if err != nil {
		return err
	}
	switch op {
	case bytecode.ADD_INT:
		v.push(IntValue(a + b))
	case bytecode.SUB_INT:
		v.push(IntValue(a - b))
	case bytecode.MULT_INT:
		v.push(IntValue(a * b))
	case bytecode.DIV_INT:
		if b == 0 {
			return v.runtimeError("integer division by zero")
		}
		v.push(IntValue(a / b))
	case bytecode.BITWISE_AND_INT:
		v.push(IntValue(a & b))
	case bytecode.BITWISE_OR_INT:
		v.push(IntValue(a | b))
	case bytecode.BITWISE_XOR_INT:
		v.push(IntValue(a ^ b))
	}
	return nil
}

func (v *VM) execFloatBinary(op bytecode.OpCode) error {
	b, err := v.popFloat()
	if err != nil {
		return err
	}
	a, err := v.popFloat()
	if err != nil {
		return err
	}
	switch op {
	case bytecode.ADD_FLOAT:
		v.push(FloatValue(a + b))
	case bytecode.SUB_FLOAT:
		v.push(FloatValue(a - b))
	case bytecode.MULT_FLOAT:
		v.push(FloatValue(a * b))
	case bytecode.DIV_FLOAT:
		v.push(FloatValue(a / b))
	}
	return nil
}

func (v *VM) execDoubleBinary(op bytecode.OpCode) error {
	b, err := v.popDouble()
	if err != nil {
		return err
	}
	a, err := v.popDouble()
	if err != nil {
		return err
	}
	switch op {
	case bytecode.ADD_DOUBLE:
		v.push(DoubleValue(a + b))
	case bytecode.SUB_DOUBLE:
		v.push(DoubleValue(a - b))
	case bytecode.MULT_DOUBLE:
		v.push(DoubleValue(a * b))
	case bytecode.DIV_DOUBLE:
		v.push(DoubleValue(a / b))
	}
	return nil
}

func (v *VM) execBoolBinary(op bytecode.OpCode) error {
	b, err := v.popBool()
	if err != nil {
		return err
	}
	a, err := v.popBool()
	if err != nil {
		return err
	}
	switch op {
	case bytecode.BITWISE_AND_BOOL:
		v.push(BoolValue(a && b))
	case bytecode.BITWISE_OR_BOOL:
		v.push(BoolValue(a || b))
	case bytecode.BITWISE_XOR_BOOL:
		v.push(BoolValue(a != b))
	}
	return nil
}

func (v *VM) execIntCompare(op bytecode.OpCode) error {
	b, err := v.popInt()
	if err != nil {
		return err
	}
	a, err := v.popInt()
	if err != nil {
		return err
	}
	switch op {
	case bytecode.EQ_INT:
		v.push(BoolValue(a == b))
	case bytecode.LT_INT:
		v.push(BoolValue(a < b))
	case bytecode.GT_INT:
		v.push(BoolValue(a > b))
	case bytecode.LEQ_INT:
		v.push(BoolValue(a <= b))
	case bytecode.GEQ_INT:
		v.push(BoolValue(a >= b))
	}
	return nil
}

func (v *VM) execFloatCompare(op bytecode.OpCode) error {
	b, err := v.popFloat()
	if err != nil {
		return err
	}
	a, err := v.popFloat()
	if err != nil {
		return err
	}
	switch op {
	case bytecode.EQ_FLOAT:
		v.push(BoolValue(a == b))
	case bytecode.LT_FLOAT:
		v.push(BoolValue(a < b))
	case bytecode.GT_FLOAT:
		v.push(BoolValue(a > b))
	case bytecode.LEQ_FLOAT:
		v.push(BoolValue(a <= b))
	case bytecode.GEQ_FLOAT:
		v.push(BoolValue(a >= b))
	}
	return nil
}

func (v *VM) execDoubleCompare(op bytecode.OpCode) error {
	b, err := v.popDouble()
	if err != nil {
		return err
	}
	a, err := v.popDouble()
	if err != nil {
		return err
	}
	switch op {
	case bytecode.EQ_DOUBLE:
		v.push(BoolValue(a == b))
	case bytecode.LT_DOUBLE:
		v.push(BoolValue(a < b))
	case bytecode.GT_DOUBLE:
		v.push(BoolValue(a > b))
	case bytecode.LEQ_DOUBLE:
		v.push(BoolValue(a <= b))
	case bytecode.GEQ_DOUBLE:
		v.push(BoolValue(a >= b))
	}
	return nil
}

func (v *VM) execStringConcat() error {
	b, err := v.popTyped(ValObject)
	if err != nil {
		return err
	}
	a, err := v.popTyped(ValObject)
	if err != nil {
		return err
	}
	if !IsString(a) || !IsString(b) {
		return v.runtimeError("expected string operands for ADD_STRING")
	}
	result := AsString(a).Chars + AsString(b).Chars
	v.push(ObjectValue(v.heap.AllocateString(result)))
	return nil
}

func (v *VM) execStringEquals() error {
	b, err := v.popTyped(ValObject)
	if err != nil {
		return err
	}
	a, err := v.popTyped(ValObject)
	if err != nil {
		return err
	}
	if !IsString(a) || !IsString(b) {
		return v.runtimeError("expected string operands for EQ_STRING")
	}
	v.push(BoolValue(AsString(a).Chars == AsString(b).Chars))
	return nil
}

// execCall implements CALL n: the function value sits below its n
// argument values on the stack. Pushes a CallFrame capturing the
// caller's instruction/constant/local state and switches execution into
// the callee (spec.md §4.7's call/return contract).
func (v *VM) execCall(argCount int) error {
	if len(v.stack) < argCount+1 {
		return v.runtimeError("stack underflow in CALL")
	}
	args := make([]Value, argCount)
	copy(args, v.stack[len(v.stack)-argCount:])
	v.stack = v.stack[:len(v.stack)-argCount]

	fnVal, err := v.pop()
	if err != nil {
		return err
	}
	if !IsFunction(fnVal) {
		return v.runtimeError("CALL target is not a function")
	}
	fn := AsFunction(fnVal)
	if len(args) != fn.ParameterCount {
		return v.runtimeError("call to %s expected %d arguments, got %d", fn.Name, fn.ParameterCount, len(args))
	}

	v.callStack = append(v.callStack, &CallFrame{
		ReturnIP:           v.ip + 1,
		ReturnInstructions: v.instructions,
		ReturnConstants:    v.constants,
		ReturnLocals:       v.locals,
		StackBase:          len(v.stack),
	})

	v.instructions = fn.Instructions
	v.constants = fn.Constants
	v.locals = args
	v.ip = 0
	return nil
}

// execReturn implements RETURN, popping the active frame and resuming
// the caller. Returns true when a caller frame remains to continue
// into; false once the outermost (top-level) frame returns, which ends
// Run the same way HALT does.
func (v *VM) execReturn() bool {
	var returnValue *Value
	stackBase := 0
	if len(v.callStack) > 0 {
		stackBase = v.callStack[len(v.callStack)-1].StackBase
	}
	if len(v.stack) > stackBase {
		val := v.stack[len(v.stack)-1]
		v.stack = v.stack[:len(v.stack)-1]
		returnValue = &val
	}

	if len(v.callStack) == 0 {
		return false
	}

	frame := v.callStack[len(v.callStack)-1]
	v.callStack = v.callStack[:len(v.callStack)-1]

	v.instructions = frame.ReturnInstructions
	v.constants = frame.ReturnConstants
	v.locals = frame.ReturnLocals
	v.ip = frame.ReturnIP

	if returnValue != nil {
		v.push(*returnValue)
	}
	return true
}
