// Package types implements Forge's semantic type system: the closed set
// of Type variants a ParsedType resolves to, and the operations the type
// checker and borrow checker drive against them (spec.md §4.4, grounded
// on original_source's backend/types/Type.hpp hierarchy). Lowering to the
// native LLVM backend is an external collaborator's concern (spec.md §5,
// §9) — this package stops at LowerToBackendType, a descriptor string the
// native backend would consume, rather than an llvm.Type.
package types

import (
	"fmt"
	"strings"
)

// Kind is the closed sum of semantic type categories.
type Kind int

const (
	KindPrimitive Kind = iota
	KindPointer
	KindReference
	KindSmartPointer
	KindArray
	KindFunction
	KindClass
	KindGeneric
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "Primitive"
	case KindPointer:
		return "Pointer"
	case KindReference:
		return "Reference"
	case KindSmartPointer:
		return "SmartPointer"
	case KindArray:
		return "Array"
	case KindFunction:
		return "Function"
	case KindClass:
		return "Class"
	case KindGeneric:
		return "Generic"
	default:
		return "Unknown"
	}
}

// PointerKind distinguishes the three smart pointer flavors (spec.md §4.4).
type PointerKind int

const (
	PointerUnique PointerKind = iota
	PointerShared
	PointerWeak
)

func (k PointerKind) String() string {
	switch k {
	case PointerUnique:
		return "Unique"
	case PointerShared:
		return "Shared"
	case PointerWeak:
		return "Weak"
	default:
		return "Unique"
	}
}

// Type is implemented by every semantic type variant. Methods mirror
// original_source's Type interface one-for-one, minus toLLVMType (native
// lowering lives behind pkg/runtimeabi's external contract instead).
type Type interface {
	Kind() Kind
	String() string
	SizeBytes() int
	IsAssignableFrom(other Type) bool
	CanImplicitlyConvertTo(other Type) bool
	PromoteWith(other Type) (Type, bool)
	RequiresCleanup() bool
	IsCopyable() bool
	IsMovable() bool
	Clone() Type
}

// LowerToBackendType returns the descriptor string a native backend
// would use to select its LLVM type: this package's half of the contract
// documented in pkg/runtimeabi.
func LowerToBackendType(t Type) string {
	return t.String()
}

// Primitive is one of Forge's scalar built-ins.
type Primitive struct {
	Name string // "int", "float", "double", "bool", "string", "void"
}

var primitiveSizes = map[string]int{
	"int": 8, "float": 4, "double": 8, "bool": 1, "string": 16, "void": 0,
}

// numericRank orders primitives for promotion: higher rank wins a
// promoteWith call, mirroring the original's inferNumericType widening.
var numericRank = map[string]int{"int": 0, "float": 1, "double": 2}

func (p *Primitive) Kind() Kind      { return KindPrimitive }
func (p *Primitive) String() string  { return p.Name }
func (p *Primitive) SizeBytes() int  { return primitiveSizes[p.Name] }
func (p *Primitive) RequiresCleanup() bool { return false }
func (p *Primitive) IsCopyable() bool      { return true }
func (p *Primitive) IsMovable() bool       { return true }
func (p *Primitive) Clone() Type           { return &Primitive{Name: p.Name} }

func (p *Primitive) IsAssignableFrom(other Type) bool {
	o, ok := other.(*Primitive)
	return ok && o.Name == p.Name
}

func (p *Primitive) CanImplicitlyConvertTo(other Type) bool {
	o, ok := other.(*Primitive)
	if !ok {
		return false
	}
	if o.Name == p.Name {
		return true
	}
	pr, pok := numericRank[p.Name]
	or, ook := numericRank[o.Name]
	return pok && ook && pr <= or
}

// PromoteWith finds the common numeric type of p and other, promoting
// int -> float -> double. Non-numeric primitives only promote with an
// identical type (spec.md §9: array-literal element promotion reuses
// this for mixed numeric literals).
func (p *Primitive) PromoteWith(other Type) (Type, bool) {
	o, ok := other.(*Primitive)
	if !ok {
		return nil, false
	}
	if p.Name == o.Name {
		return &Primitive{Name: p.Name}, true
	}
	pr, pok := numericRank[p.Name]
	or, ook := numericRank[o.Name]
	if !pok || !ook {
		return nil, false
	}
	if pr >= or {
		return &Primitive{Name: p.Name}, true
	}
	return &Primitive{Name: o.Name}, true
}

// Pointer is a raw, unowned pointer: *T.
type Pointer struct {
	Elem Type
}

func (p *Pointer) Kind() Kind       { return KindPointer }
func (p *Pointer) String() string   { return "*" + p.Elem.String() }
func (p *Pointer) SizeBytes() int   { return 8 }
func (p *Pointer) RequiresCleanup() bool { return false }
func (p *Pointer) IsCopyable() bool      { return true }
func (p *Pointer) IsMovable() bool       { return true }
func (p *Pointer) Clone() Type           { return &Pointer{Elem: p.Elem.Clone()} }

func (p *Pointer) IsAssignableFrom(other Type) bool {
	o, ok := other.(*Pointer)
	return ok && p.Elem.IsAssignableFrom(o.Elem)
}

func (p *Pointer) CanImplicitlyConvertTo(other Type) bool {
	return p.IsAssignableFrom(other)
}

func (p *Pointer) PromoteWith(other Type) (Type, bool) {
	if p.IsAssignableFrom(other) {
		return p.Clone(), true
	}
	return nil, false
}

// Reference is a borrowed view: &T (immutable) or &mut T.
type Reference struct {
	Elem    Type
	Mutable bool
}

func (r *Reference) Kind() Kind { return KindReference }
func (r *Reference) String() string {
	if r.Mutable {
		return "&mut " + r.Elem.String()
	}
	return "&" + r.Elem.String()
}
func (r *Reference) SizeBytes() int        { return 8 }
func (r *Reference) RequiresCleanup() bool { return false }
func (r *Reference) IsCopyable() bool      { return true }
func (r *Reference) IsMovable() bool       { return false } // borrows cannot be moved (spec.md §4.5)
func (r *Reference) Clone() Type           { return &Reference{Elem: r.Elem.Clone(), Mutable: r.Mutable} }

func (r *Reference) IsAssignableFrom(other Type) bool {
	o, ok := other.(*Reference)
	return ok && r.Mutable == o.Mutable && r.Elem.IsAssignableFrom(o.Elem)
}

func (r *Reference) CanImplicitlyConvertTo(other Type) bool {
	// An &mut T reference can be used wherever a &T is expected, never
	// the reverse.
	if o, ok := other.(*Reference); ok && !o.Mutable {
		return r.Elem.IsAssignableFrom(o.Elem)
	}
	return r.IsAssignableFrom(other)
}

func (r *Reference) PromoteWith(other Type) (Type, bool) {
	if r.IsAssignableFrom(other) {
		return r.Clone(), true
	}
	return nil, false
}

// SmartPointer is Unique<T>, Shared<T>, or Weak<T>.
type SmartPointer struct {
	Elem        Type
	PointerKind PointerKind
}

func (s *SmartPointer) Kind() Kind { return KindSmartPointer }
func (s *SmartPointer) String() string {
	return fmt.Sprintf("%s<%s>", s.PointerKind, s.Elem.String())
}
func (s *SmartPointer) SizeBytes() int        { return 8 }
func (s *SmartPointer) RequiresCleanup() bool { return true }

// IsCopyable is true only for Shared (an atomic refcount bump) and Weak;
// Unique never copies — only moves (spec.md §4.4, §9).
func (s *SmartPointer) IsCopyable() bool { return s.PointerKind != PointerUnique }
func (s *SmartPointer) IsMovable() bool  { return true }
func (s *SmartPointer) Clone() Type {
	return &SmartPointer{Elem: s.Elem.Clone(), PointerKind: s.PointerKind}
}

// IsAssignableFrom implements spec.md §4.3's pointer-kind widening:
// Unique accepts only Unique; Shared accepts Shared or Unique; Weak
// accepts Weak or Shared. Grounded on original_source's
// SmartPointerType::isAssignableFrom.
func (s *SmartPointer) IsAssignableFrom(other Type) bool {
	o, ok := other.(*SmartPointer)
	if !ok || !s.Elem.IsAssignableFrom(o.Elem) {
		return false
	}
	switch s.PointerKind {
	case PointerUnique:
		return o.PointerKind == PointerUnique
	case PointerShared:
		return o.PointerKind == PointerShared || o.PointerKind == PointerUnique
	case PointerWeak:
		return o.PointerKind == PointerWeak || o.PointerKind == PointerShared
	}
	return false
}

// CanImplicitlyConvertTo asks whether other can accept s — the inverse
// direction of IsAssignableFrom, matching original_source's
// canImplicitlyConvertTo ("can this convert to other? that means: can
// other accept this?").
func (s *SmartPointer) CanImplicitlyConvertTo(other Type) bool {
	o, ok := other.(*SmartPointer)
	if !ok || !s.Elem.CanImplicitlyConvertTo(o.Elem) {
		return false
	}
	return o.IsAssignableFrom(s)
}

// PromoteWith finds the common pointer kind two smart pointers promote
// to: same-kind stays as is; Unique+Shared and Shared+Unique widen to
// Shared; Shared+Weak and Weak+Shared widen to Weak. Unique and Weak
// have no common type. Grounded on original_source's
// SmartPointerType::promoteWith.
func (s *SmartPointer) PromoteWith(other Type) (Type, bool) {
	o, ok := other.(*SmartPointer)
	if !ok {
		return nil, false
	}
	elem, ok := s.Elem.PromoteWith(o.Elem)
	if !ok {
		return nil, false
	}

	var resultKind PointerKind
	switch {
	case s.PointerKind == o.PointerKind:
		resultKind = s.PointerKind
	case (s.PointerKind == PointerUnique && o.PointerKind == PointerShared) ||
		(s.PointerKind == PointerShared && o.PointerKind == PointerUnique):
		resultKind = PointerShared
	case (s.PointerKind == PointerShared && o.PointerKind == PointerWeak) ||
		(s.PointerKind == PointerWeak && o.PointerKind == PointerShared):
		resultKind = PointerWeak
	default:
		return nil, false
	}

	return &SmartPointer{Elem: elem, PointerKind: resultKind}, true
}

// Array is a fixed-length [T; N] or a dynamically sized [T] when Length
// is negative.
type Array struct {
	Elem   Type
	Length int
}

func (a *Array) Kind() Kind { return KindArray }
func (a *Array) String() string {
	if a.Length < 0 {
		return "[" + a.Elem.String() + "]"
	}
	return fmt.Sprintf("[%s; %d]", a.Elem.String(), a.Length)
}
func (a *Array) SizeBytes() int {
	if a.Length < 0 {
		return 16 // pointer + length, like a slice header
	}
	return a.Elem.SizeBytes() * a.Length
}
func (a *Array) RequiresCleanup() bool { return a.Elem.RequiresCleanup() }
func (a *Array) IsCopyable() bool      { return a.Elem.IsCopyable() }
func (a *Array) IsMovable() bool       { return true }
func (a *Array) Clone() Type           { return &Array{Elem: a.Elem.Clone(), Length: a.Length} }

func (a *Array) IsAssignableFrom(other Type) bool {
	o, ok := other.(*Array)
	return ok && a.Length == o.Length && a.Elem.IsAssignableFrom(o.Elem)
}

func (a *Array) CanImplicitlyConvertTo(other Type) bool {
	return a.IsAssignableFrom(other)
}

// PromoteWith promotes two array literals' element types to their common
// join type (spec.md §9's resolution of the array-literal Open Question:
// promote rather than reject mixed-primitive literals).
func (a *Array) PromoteWith(other Type) (Type, bool) {
	o, ok := other.(*Array)
	if !ok {
		return nil, false
	}
	elem, ok := a.Elem.PromoteWith(o.Elem)
	if !ok {
		return nil, false
	}
	length := a.Length
	if length != o.Length {
		length = -1
	}
	return &Array{Elem: elem, Length: length}, true
}

// Function is (T1, T2, ...) -> TReturn.
type Function struct {
	Params   []Type
	Return   Type
	Variadic bool
}

func (f *Function) Kind() Kind { return KindFunction }
func (f *Function) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), f.Return.String())
}
func (f *Function) SizeBytes() int        { return 8 }
func (f *Function) RequiresCleanup() bool { return false }
func (f *Function) IsCopyable() bool      { return true }
func (f *Function) IsMovable() bool       { return true }
func (f *Function) Clone() Type {
	params := make([]Type, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Clone()
	}
	return &Function{Params: params, Return: f.Return.Clone(), Variadic: f.Variadic}
}

func (f *Function) IsAssignableFrom(other Type) bool {
	o, ok := other.(*Function)
	if !ok || len(f.Params) != len(o.Params) || f.Variadic != o.Variadic {
		return false
	}
	for i := range f.Params {
		if !f.Params[i].IsAssignableFrom(o.Params[i]) {
			return false
		}
	}
	return f.Return.IsAssignableFrom(o.Return)
}

func (f *Function) CanImplicitlyConvertTo(other Type) bool { return f.IsAssignableFrom(other) }
func (f *Function) PromoteWith(other Type) (Type, bool) {
	if f.IsAssignableFrom(other) {
		return f.Clone(), true
	}
	return nil, false
}

// Class is a user-defined type with named, ordered fields.
type Class struct {
	Name       string
	FieldNames []string
	Fields     map[string]Type
}

func (c *Class) Kind() Kind      { return KindClass }
func (c *Class) String() string  { return c.Name }
func (c *Class) RequiresCleanup() bool {
	for _, name := range c.FieldNames {
		if c.Fields[name].RequiresCleanup() {
			return true
		}
	}
	return false
}
func (c *Class) IsCopyable() bool { return !c.RequiresCleanup() }
func (c *Class) IsMovable() bool  { return true }

func (c *Class) SizeBytes() int {
	total := 0
	for _, name := range c.FieldNames {
		total += c.Fields[name].SizeBytes()
	}
	return total
}

func (c *Class) Clone() Type {
	fields := make(map[string]Type, len(c.Fields))
	for k, v := range c.Fields {
		fields[k] = v.Clone()
	}
	names := make([]string, len(c.FieldNames))
	copy(names, c.FieldNames)
	return &Class{Name: c.Name, FieldNames: names, Fields: fields}
}

// IsAssignableFrom treats two Class types as the same type iff they
// share a name: Forge has nominal, not structural, class typing.
func (c *Class) IsAssignableFrom(other Type) bool {
	o, ok := other.(*Class)
	return ok && c.Name == o.Name
}

func (c *Class) CanImplicitlyConvertTo(other Type) bool { return c.IsAssignableFrom(other) }
func (c *Class) PromoteWith(other Type) (Type, bool) {
	if c.IsAssignableFrom(other) {
		return c.Clone(), true
	}
	return nil, false
}

// Generic is an unresolved type parameter (e.g. T in class Box[T]).
type Generic struct {
	Name string
}

func (g *Generic) Kind() Kind              { return KindGeneric }
func (g *Generic) String() string          { return g.Name }
func (g *Generic) SizeBytes() int          { return 8 } // erased to a pointer-sized slot until monomorphized
func (g *Generic) RequiresCleanup() bool   { return false }
func (g *Generic) IsCopyable() bool        { return true }
func (g *Generic) IsMovable() bool         { return true }
func (g *Generic) Clone() Type             { return &Generic{Name: g.Name} }

func (g *Generic) IsAssignableFrom(other Type) bool {
	o, ok := other.(*Generic)
	return ok && g.Name == o.Name
}

func (g *Generic) CanImplicitlyConvertTo(other Type) bool { return g.IsAssignableFrom(other) }
func (g *Generic) PromoteWith(other Type) (Type, bool) {
	if g.IsAssignableFrom(other) {
		return g.Clone(), true
	}
	return nil, false
}
