package vm

import (
	"fmt"
	"strings"

	"github.com/forge-lang/forgec/pkg/bytecode"
)

// bytecode is referenced only by Instructions' Instruction type below;
// every Constant a FunctionObject carries is pre-resolved to a Value at
// load time, so the GC marker can transitively mark through it (spec.md
// §4.7: "function objects transitively mark their constant pool").

// ObjectType is the closed tag on a heap Object's payload (spec.md §2's
// "Heap object" glossary entry).
type ObjectType int

const (
	ObjString ObjectType = iota
	ObjFunction
	ObjArray
)

func (t ObjectType) String() string {
	switch t {
	case ObjString:
		return "string"
	case ObjFunction:
		return "function"
	case ObjArray:
		return "array"
	default:
		return fmt.Sprintf("ObjectType(%d)", int(t))
	}
}

// Payload is implemented by every heap object's type-specific contents,
// closed to this package the way ast.Expression is closed to pkg/ast.
type Payload interface {
	payload()
}

// Object is a heap object's header plus payload (original_source's
// Object/StringObject/FunctionObject/ArrayObject inheritance chain,
// flattened to a header-plus-interface-payload struct since Go has no
// struct inheritance). IsMarked and Next are the mark-and-sweep
// collector's bookkeeping fields.
type Object struct {
	Type     ObjectType
	IsMarked bool
	Next     *Object
	Payload  Payload
}

func (o *Object) String() string {
	switch p := o.Payload.(type) {
	case *StringObject:
		return fmt.Sprintf("%q", p.Chars)
	case *FunctionObject:
		return fmt.Sprintf("<function %s/%d>", p.Name, p.ParameterCount)
	case *ArrayObject:
		elems := make([]string, len(p.Elements))
		for i, e := range p.Elements {
			elems[i] = e.String()
		}
		return "[" + strings.Join(elems, ", ") + "]"
	default:
		return "<object>"
	}
}

// StringObject owns its character data.
type StringObject struct {
	Chars string
}

func (*StringObject) payload() {}

// FunctionObject owns its compiled instruction/constant pool — a
// self-contained compiled function body, per spec.md §4.7's call/return
// contract.
type FunctionObject struct {
	Name           string
	ParameterCount int
	Instructions   []bytecode.Instruction
	Constants      []Value
}

func (*FunctionObject) payload() {}

// ArrayObject owns a sequence of Values.
type ArrayObject struct {
	Elements []Value
}

func (*ArrayObject) payload() {}

// IsString, IsFunction, IsArray, AsString, AsFunction, AsArray mirror
// original_source's Object.hpp narrowing helpers.
func IsString(v Value) bool   { return v.Tag == ValObject && v.Obj != nil && v.Obj.Type == ObjString }
func IsFunction(v Value) bool { return v.Tag == ValObject && v.Obj != nil && v.Obj.Type == ObjFunction }
func IsArray(v Value) bool    { return v.Tag == ValObject && v.Obj != nil && v.Obj.Type == ObjArray }

func AsString(v Value) *StringObject     { return v.Obj.Payload.(*StringObject) }
func AsFunction(v Value) *FunctionObject { return v.Obj.Payload.(*FunctionObject) }
func AsArray(v Value) *ArrayObject       { return v.Obj.Payload.(*ArrayObject) }

// sizeBytes approximates an object's heap footprint for GC threshold
// bookkeeping (spec.md §4.7: "triggered when bytesAllocated exceeds a
// growing threshold").
func (o *Object) sizeBytes() int {
	const header = 24
	switch p := o.Payload.(type) {
	case *StringObject:
		return header + len(p.Chars)
	case *FunctionObject:
		return header + len(p.Instructions)*8 + len(p.Constants)*24
	case *ArrayObject:
		return header + len(p.Elements)*24
	default:
		return header
	}
}
