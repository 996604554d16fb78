package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitiveAssignability(t *testing.T) {
	intType := &Primitive{Name: "int"}
	otherInt := &Primitive{Name: "int"}
	floatType := &Primitive{Name: "float"}

	assert.True(t, intType.IsAssignableFrom(otherInt))
	assert.False(t, intType.IsAssignableFrom(floatType))
}

func TestPrimitiveImplicitConversionWidensOnly(t *testing.T) {
	intType := &Primitive{Name: "int"}
	floatType := &Primitive{Name: "float"}
	doubleType := &Primitive{Name: "double"}

	assert.True(t, intType.CanImplicitlyConvertTo(floatType), "int should widen to float")
	assert.True(t, floatType.CanImplicitlyConvertTo(doubleType), "float should widen to double")
	assert.False(t, doubleType.CanImplicitlyConvertTo(intType), "double must not narrow to int")
}

// TestPromoteWithIsCommutative is one of the universal invariants from
// spec.md §8: promoting a with b must yield the same type as promoting b
// with a.
func TestPromoteWithIsCommutative(t *testing.T) {
	intType := &Primitive{Name: "int"}
	doubleType := &Primitive{Name: "double"}

	ab, ok := intType.PromoteWith(doubleType)
	require.True(t, ok)
	ba, ok := doubleType.PromoteWith(intType)
	require.True(t, ok)

	assert.Equal(t, ab.String(), ba.String())
}

func TestPromoteWithIsAssociative(t *testing.T) {
	a := &Primitive{Name: "int"}
	b := &Primitive{Name: "float"}
	c := &Primitive{Name: "double"}

	ab, ok := a.PromoteWith(b)
	require.True(t, ok)
	abc, ok := ab.PromoteWith(c)
	require.True(t, ok)

	bc, ok := b.PromoteWith(c)
	require.True(t, ok)
	abc2, ok := a.PromoteWith(bc)
	require.True(t, ok)

	assert.Equal(t, abc.String(), abc2.String())
}

func TestUniqueSmartPointerIsNotCopyable(t *testing.T) {
	unique := &SmartPointer{Elem: &Primitive{Name: "int"}, PointerKind: PointerUnique}
	shared := &SmartPointer{Elem: &Primitive{Name: "int"}, PointerKind: PointerShared}

	assert.False(t, unique.IsCopyable())
	assert.True(t, unique.IsMovable())
	assert.True(t, shared.IsCopyable())
}

func TestSharedConvertsImplicitlyToWeak(t *testing.T) {
	shared := &SmartPointer{Elem: &Primitive{Name: "int"}, PointerKind: PointerShared}
	weak := &SmartPointer{Elem: &Primitive{Name: "int"}, PointerKind: PointerWeak}

	assert.True(t, shared.CanImplicitlyConvertTo(weak))
	assert.False(t, weak.CanImplicitlyConvertTo(shared))
}

func TestSharedAcceptsUniqueAssignment(t *testing.T) {
	unique := &SmartPointer{Elem: &Primitive{Name: "int"}, PointerKind: PointerUnique}
	shared := &SmartPointer{Elem: &Primitive{Name: "int"}, PointerKind: PointerShared}
	weak := &SmartPointer{Elem: &Primitive{Name: "int"}, PointerKind: PointerWeak}

	assert.True(t, shared.IsAssignableFrom(unique))
	assert.True(t, unique.CanImplicitlyConvertTo(shared))
	assert.False(t, unique.IsAssignableFrom(shared), "Unique must stay move-only, never widened into")
	assert.False(t, weak.IsAssignableFrom(unique), "Weak only accepts Weak or Shared, not Unique directly")
}

func TestSmartPointerPromoteWithCrossKindWidening(t *testing.T) {
	unique := &SmartPointer{Elem: &Primitive{Name: "int"}, PointerKind: PointerUnique}
	shared := &SmartPointer{Elem: &Primitive{Name: "int"}, PointerKind: PointerShared}
	weak := &SmartPointer{Elem: &Primitive{Name: "int"}, PointerKind: PointerWeak}

	promoted, ok := unique.PromoteWith(shared)
	require.True(t, ok)
	assert.Equal(t, PointerShared, promoted.(*SmartPointer).PointerKind)

	promoted, ok = shared.PromoteWith(weak)
	require.True(t, ok)
	assert.Equal(t, PointerWeak, promoted.(*SmartPointer).PointerKind)

	_, ok = unique.PromoteWith(weak)
	assert.False(t, ok, "Unique and Weak share no common pointer kind")
}

func TestMutableReferenceConvertsToImmutable(t *testing.T) {
	mutRef := &Reference{Elem: &Primitive{Name: "int"}, Mutable: true}
	immRef := &Reference{Elem: &Primitive{Name: "int"}, Mutable: false}

	assert.True(t, mutRef.CanImplicitlyConvertTo(immRef))
	assert.False(t, immRef.CanImplicitlyConvertTo(mutRef))
}

// TestArrayPromotionJoinsElementTypes exercises spec.md §9's resolution
// of the array-literal Open Question: mixed-primitive array literals
// promote their element type rather than being rejected.
func TestArrayPromotionJoinsElementTypes(t *testing.T) {
	ints := &Array{Elem: &Primitive{Name: "int"}, Length: 3}
	floats := &Array{Elem: &Primitive{Name: "float"}, Length: 3}

	joined, ok := ints.PromoteWith(floats)
	require.True(t, ok)
	arr := joined.(*Array)
	assert.Equal(t, "float", arr.Elem.String())
	assert.Equal(t, 3, arr.Length)
}

func TestArrayPromotionMismatchedLengthBecomesDynamic(t *testing.T) {
	three := &Array{Elem: &Primitive{Name: "int"}, Length: 3}
	five := &Array{Elem: &Primitive{Name: "int"}, Length: 5}

	joined, ok := three.PromoteWith(five)
	require.True(t, ok)
	assert.Equal(t, -1, joined.(*Array).Length)
}

func TestClassTypingIsNominal(t *testing.T) {
	a := &Class{Name: "Point", FieldNames: []string{"x"}, Fields: map[string]Type{"x": &Primitive{Name: "int"}}}
	b := &Class{Name: "Point", FieldNames: []string{"x"}, Fields: map[string]Type{"x": &Primitive{Name: "int"}}}
	c := &Class{Name: "Vector", FieldNames: []string{"x"}, Fields: map[string]Type{"x": &Primitive{Name: "int"}}}

	assert.True(t, a.IsAssignableFrom(b), "same-named classes are assignable even as distinct instances")
	assert.False(t, a.IsAssignableFrom(c), "differently-named classes are never assignable")
}

func TestClassRequiresCleanupWhenAFieldDoes(t *testing.T) {
	plain := &Class{Name: "Plain", FieldNames: []string{"n"}, Fields: map[string]Type{"n": &Primitive{Name: "int"}}}
	owning := &Class{
		Name:       "Owner",
		FieldNames: []string{"ptr"},
		Fields:     map[string]Type{"ptr": &SmartPointer{Elem: &Primitive{Name: "int"}, PointerKind: PointerUnique}},
	}

	assert.False(t, plain.RequiresCleanup())
	assert.True(t, owning.RequiresCleanup())
	assert.False(t, owning.IsCopyable())
}

func TestFunctionAssignabilityRequiresMatchingSignature(t *testing.T) {
	f1 := &Function{Params: []Type{&Primitive{Name: "int"}}, Return: &Primitive{Name: "bool"}}
	f2 := &Function{Params: []Type{&Primitive{Name: "int"}}, Return: &Primitive{Name: "bool"}}
	f3 := &Function{Params: []Type{&Primitive{Name: "float"}}, Return: &Primitive{Name: "bool"}}

	assert.True(t, f1.IsAssignableFrom(f2))
	assert.False(t, f1.IsAssignableFrom(f3))
}

func TestCloneProducesIndependentValue(t *testing.T) {
	original := &Array{Elem: &Primitive{Name: "int"}, Length: 2}
	cloned := original.Clone().(*Array)
	cloned.Elem.(*Primitive).Name = "float"

	assert.Equal(t, "int", original.Elem.String(), "mutating the clone must not affect the original")
}
