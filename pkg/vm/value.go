// Package vm implements Forge's bytecode virtual machine: a typed
// operand-stack interpreter with locals/globals, a call stack, and a
// mark-and-sweep heap (spec.md §4.7). Grounded on original_source's
// backends/vm/{Value,Object,Heap,VirtualMachine}.hpp, adapted from the
// original's tagged-union-plus-raw-pointer design to a tagged Go struct
// plus object references the heap owns.
package vm

import "fmt"

// ValueTag is the closed tag on a Value's payload (original_source's
// TypedValue::Type / ValueType, unified into one enum since Forge's VM
// only ever holds one Value representation).
type ValueTag int

const (
	ValInt ValueTag = iota
	ValFloat
	ValDouble
	ValBool
	ValObject
)

func (t ValueTag) String() string {
	switch t {
	case ValInt:
		return "int"
	case ValFloat:
		return "float"
	case ValDouble:
		return "double"
	case ValBool:
		return "bool"
	case ValObject:
		return "object"
	default:
		return fmt.Sprintf("ValueTag(%d)", int(t))
	}
}

// Value is one stack/local/global slot: a tag plus the payload for that
// tag. Object-tagged values reference heap-owned memory the Heap tracks
// for collection.
type Value struct {
	Tag    ValueTag
	Int    int32
	Float  float32
	Double float64
	Bool   bool
	Obj    *Object
}

func IntValue(v int32) Value      { return Value{Tag: ValInt, Int: v} }
func FloatValue(v float32) Value  { return Value{Tag: ValFloat, Float: v} }
func DoubleValue(v float64) Value { return Value{Tag: ValDouble, Double: v} }
func BoolValue(v bool) Value      { return Value{Tag: ValBool, Bool: v} }
func ObjectValue(o *Object) Value { return Value{Tag: ValObject, Obj: o} }

func (v Value) String() string {
	switch v.Tag {
	case ValInt:
		return fmt.Sprintf("int(%d)", v.Int)
	case ValFloat:
		return fmt.Sprintf("float(%g)", v.Float)
	case ValDouble:
		return fmt.Sprintf("double(%g)", v.Double)
	case ValBool:
		return fmt.Sprintf("bool(%t)", v.Bool)
	case ValObject:
		return v.Obj.String()
	default:
		return "invalid"
	}
}

// valuesEqual reports whether a and b hold the same tag and payload,
// mirroring original_source's valuesEqual (Value.cpp).
func valuesEqual(a, b Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case ValInt:
		return a.Int == b.Int
	case ValFloat:
		return a.Float == b.Float
	case ValDouble:
		return a.Double == b.Double
	case ValBool:
		return a.Bool == b.Bool
	case ValObject:
		return a.Obj == b.Obj
	default:
		return false
	}
}
