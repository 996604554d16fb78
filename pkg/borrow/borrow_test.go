package borrow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forge-lang/forgec/internal/diag"
	"github.com/forge-lang/forgec/internal/source"
	"github.com/forge-lang/forgec/pkg/symbols"
	"github.com/forge-lang/forgec/pkg/types"
)

func TestRegisterVariableStartsOwned(t *testing.T) {
	d := diag.NewCollector()
	m := NewMemoryModel(d)
	m.RegisterVariable("x", &types.Primitive{Name: "int"}, Block, source.Location{})

	ownership, ok := m.GetOwnership("x")
	require.True(t, ok)
	assert.Equal(t, symbols.Owned, ownership)
}

func TestRegisterBorrowTransitionsToImmutableBorrowed(t *testing.T) {
	d := diag.NewCollector()
	m := NewMemoryModel(d)
	m.RegisterVariable("x", &types.Primitive{Name: "int"}, Static, source.Location{})

	ok := m.RegisterBorrow("x", false, Block, source.Location{})
	assert.True(t, ok)
	assert.False(t, d.HasErrors())
	assert.True(t, m.HasActiveBorrows("x"))
}

func TestSecondMutableBorrowIsRejected(t *testing.T) {
	d := diag.NewCollector()
	m := NewMemoryModel(d)
	m.RegisterVariable("x", &types.Primitive{Name: "int"}, Static, source.Location{})

	require.True(t, m.RegisterBorrow("x", true, Block, source.Location{}))
	ok := m.RegisterBorrow("x", true, Block, source.Location{})
	assert.False(t, ok)
	assert.True(t, d.HasErrors())
}

func TestMutableBorrowWhileImmutableBorrowsExistIsRejected(t *testing.T) {
	d := diag.NewCollector()
	m := NewMemoryModel(d)
	m.RegisterVariable("x", &types.Primitive{Name: "int"}, Static, source.Location{})

	require.True(t, m.RegisterBorrow("x", false, Block, source.Location{}))
	ok := m.RegisterBorrow("x", true, Block, source.Location{})
	assert.False(t, ok)
}

func TestEndBorrowReturnsToOwnedWhenListEmpties(t *testing.T) {
	d := diag.NewCollector()
	m := NewMemoryModel(d)
	m.RegisterVariable("x", &types.Primitive{Name: "int"}, Static, source.Location{})
	require.True(t, m.RegisterBorrow("x", false, Block, source.Location{}))

	m.EndBorrow("x", source.Location{})
	assert.False(t, m.HasActiveBorrows("x"))
}

func TestBorrowOfMovedValueIsUseAfterMove(t *testing.T) {
	d := diag.NewCollector()
	m := NewMemoryModel(d)
	m.RegisterVariable("x", &types.Primitive{Name: "int"}, Static, source.Location{})
	require.True(t, m.RegisterMove("x", source.Location{}))

	ok := m.RegisterBorrow("x", false, Block, source.Location{})
	assert.False(t, ok)
	assert.True(t, d.HasErrors())
}

func TestMoveWhileBorrowedIsRejected(t *testing.T) {
	d := diag.NewCollector()
	m := NewMemoryModel(d)
	m.RegisterVariable("x", &types.Primitive{Name: "int"}, Static, source.Location{})
	require.True(t, m.RegisterBorrow("x", false, Block, source.Location{}))

	ok := m.RegisterMove("x", source.Location{})
	assert.False(t, ok)
}

// TestBorrowerLifetimeMustNotExceedTarget exercises the lifetime side of
// registerBorrow: a Block-lived target cannot be borrowed for the
// entirety of Static lifetime.
func TestBorrowerLifetimeMustNotExceedTarget(t *testing.T) {
	d := diag.NewCollector()
	m := NewMemoryModel(d)
	m.RegisterVariable("x", &types.Primitive{Name: "int"}, Block, source.Location{})

	ok := m.RegisterBorrow("x", false, Static, source.Location{})
	assert.False(t, ok)
	assert.True(t, d.HasErrors())
}
