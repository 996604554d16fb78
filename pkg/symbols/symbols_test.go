package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forge-lang/forgec/pkg/types"
)

func TestDeclareAndLookup(t *testing.T) {
	table := NewTable()
	sym := &Symbol{Name: "x", Type: &types.Primitive{Name: "int"}, Handle: NoHandle, Ownership: Owned}

	require.NoError(t, table.Declare(sym))

	found := table.Lookup("x")
	require.NotNil(t, found)
	assert.Equal(t, "x", found.Name)
}

func TestRedeclarationInSameScopeErrors(t *testing.T) {
	table := NewTable()
	sym := &Symbol{Name: "x", Type: &types.Primitive{Name: "int"}}
	require.NoError(t, table.Declare(sym))

	err := table.Declare(&Symbol{Name: "x", Type: &types.Primitive{Name: "float"}})
	assert.Error(t, err)
}

func TestInnerScopeShadowsOuter(t *testing.T) {
	table := NewTable()
	require.NoError(t, table.Declare(&Symbol{Name: "x", Type: &types.Primitive{Name: "int"}}))

	table.EnterScope()
	require.NoError(t, table.Declare(&Symbol{Name: "x", Type: &types.Primitive{Name: "float"}}))

	inner := table.Lookup("x")
	require.NotNil(t, inner)
	assert.Equal(t, "float", inner.Type.String())

	table.ExitScope()
	outer := table.Lookup("x")
	require.NotNil(t, outer)
	assert.Equal(t, "int", outer.Type.String())
}

func TestLookupMissingReturnsNil(t *testing.T) {
	table := NewTable()
	assert.Nil(t, table.Lookup("nope"))
}

func TestLookupLocalDoesNotSeeOuterScope(t *testing.T) {
	table := NewTable()
	require.NoError(t, table.Declare(&Symbol{Name: "x", Type: &types.Primitive{Name: "int"}}))

	table.EnterScope()
	assert.Nil(t, table.LookupLocal("x"), "LookupLocal must not see outer-scope declarations")
	assert.NotNil(t, table.Lookup("x"), "Lookup should still see outer-scope declarations")
}

func TestExitScopeOnGlobalPanics(t *testing.T) {
	table := NewTable()
	assert.Panics(t, func() { table.ExitScope() })
}

func TestDepthTracksNesting(t *testing.T) {
	table := NewTable()
	assert.Equal(t, 1, table.Depth())
	table.EnterScope()
	table.EnterScope()
	assert.Equal(t, 3, table.Depth())
	table.ExitScope()
	assert.Equal(t, 2, table.Depth())
}

func TestAllInScopeReturnsOnlyCurrentScope(t *testing.T) {
	table := NewTable()
	require.NoError(t, table.Declare(&Symbol{Name: "outer", Type: &types.Primitive{Name: "int"}}))

	table.EnterScope()
	require.NoError(t, table.Declare(&Symbol{Name: "inner", Type: &types.Primitive{Name: "int"}}))

	names := make([]string, 0)
	for _, sym := range table.AllInScope() {
		names = append(names, sym.Name)
	}
	assert.ElementsMatch(t, []string{"inner"}, names)
}
