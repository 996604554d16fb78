package vm

import "github.com/forge-lang/forgec/pkg/bytecode"

// Heap owns every object allocated by the VM, tracked as a singly-linked
// list (original_source's Heap.hpp `Object* objects`), and runs
// mark-and-sweep collection when bytesAllocated crosses nextGC.
type Heap struct {
	objects        *Object
	bytesAllocated int
	nextGC         int
}

// NewHeap returns an empty heap with the original's 1024-byte initial
// threshold.
func NewHeap() *Heap {
	return &Heap{nextGC: 1024}
}

func (h *Heap) allocate(obj *Object) *Object {
	obj.Next = h.objects
	h.objects = obj
	h.bytesAllocated += obj.sizeBytes()
	return obj
}

// AllocateString interns nothing itself — callers that want de-duplication
// go through the VM's string table; this always allocates a fresh object.
func (h *Heap) AllocateString(s string) *Object {
	return h.allocate(&Object{Type: ObjString, Payload: &StringObject{Chars: s}})
}

func (h *Heap) AllocateFunction(name string, paramCount int, instructions []bytecode.Instruction, constants []Value) *Object {
	return h.allocate(&Object{Type: ObjFunction, Payload: &FunctionObject{
		Name: name, ParameterCount: paramCount, Instructions: instructions, Constants: constants,
	}})
}

func (h *Heap) AllocateArray(elements []Value) *Object {
	return h.allocate(&Object{Type: ObjArray, Payload: &ArrayObject{Elements: elements}})
}

// BytesAllocated reports the heap's current tracked footprint, for tests
// and diagnostics.
func (h *Heap) BytesAllocated() int { return h.bytesAllocated }

// ShouldCollect reports whether bytesAllocated has crossed nextGC
// (spec.md §4.7).
func (h *Heap) ShouldCollect() bool { return h.bytesAllocated > h.nextGC }

// LiveObjectCount walks the heap list and counts entries, for tests that
// assert on post-sweep survivors.
func (h *Heap) LiveObjectCount() int {
	n := 0
	for o := h.objects; o != nil; o = o.Next {
		n++
	}
	return n
}

// Collect runs mark-and-sweep over the given roots: the operand stack,
// the globals vector, the active frame's locals, and every suspended
// call frame's saved locals (spec.md §4.7: "all locals and globals;
// every value inside every call frame"). The threshold is reset to 2x
// the post-sweep live size.
func (h *Heap) Collect(stack, globals, locals []Value, frames []*CallFrame) {
	for _, v := range stack {
		h.markValue(v)
	}
	for _, v := range globals {
		h.markValue(v)
	}
	for _, v := range locals {
		h.markValue(v)
	}
	for _, f := range frames {
		for _, v := range f.ReturnLocals {
			h.markValue(v)
		}
	}

	h.sweep()

	live := h.bytesAllocated * 2
	if live < 1024 {
		live = 1024
	}
	h.nextGC = live
}

func (h *Heap) markValue(v Value) {
	if v.Tag == ValObject {
		h.markObject(v.Obj)
	}
}

// markObject recursively marks obj and everything it transitively
// references: an ArrayObject's elements, or a FunctionObject's constant
// pool (spec.md §4.7's explicit call-out).
func (h *Heap) markObject(obj *Object) {
	if obj == nil || obj.IsMarked {
		return
	}
	obj.IsMarked = true

	switch p := obj.Payload.(type) {
	case *ArrayObject:
		for _, e := range p.Elements {
			h.markValue(e)
		}
	case *FunctionObject:
		for _, c := range p.Constants {
			h.markValue(c)
		}
	}
}

// sweep traverses the singly-linked object list, freeing unmarked
// objects (dropping them from the list) and clearing marks on survivors.
func (h *Heap) sweep() {
	var freed int
	var prev *Object
	curr := h.objects
	for curr != nil {
		next := curr.Next
		if curr.IsMarked {
			curr.IsMarked = false
			prev = curr
		} else {
			freed += curr.sizeBytes()
			if prev == nil {
				h.objects = next
			} else {
				prev.Next = next
			}
		}
		curr = next
	}
	h.bytesAllocated -= freed
}
