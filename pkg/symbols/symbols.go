// Package symbols implements Forge's scope stack: nested lexical scopes
// of declared Symbols, each carrying its semantic type, an opaque
// backend-value handle, and an ownership state the borrow checker
// updates as it walks the program. Grounded on original_source's
// backend/codegen/SymbolTable.hpp (Scope + Symbol) and
// backend/memory/MemoryModel.hpp's Ownership enum.
package symbols

import (
	"fmt"

	"github.com/forge-lang/forgec/internal/source"
	"github.com/forge-lang/forgec/pkg/types"
)

// Ownership is the borrow state a Symbol's storage slot is in at a given
// point in the walk (spec.md §4.5).
type Ownership int

const (
	Owned Ownership = iota
	Borrowed
	MutBorrowed
	Moved
)

func (o Ownership) String() string {
	switch o {
	case Owned:
		return "owned"
	case Borrowed:
		return "borrowed"
	case MutBorrowed:
		return "mut-borrowed"
	case Moved:
		return "moved"
	default:
		return "owned"
	}
}

// BackendHandle is the opaque identifier the bytecode compiler assigns a
// symbol's storage slot (a local-variable index, a constant-pool index,
// or a global index) — defined here as an int so pkg/symbols has no
// dependency on pkg/bytecode.
type BackendHandle int

// NoHandle marks a symbol that has not yet been assigned backend
// storage (e.g. a type name visible only during type checking).
const NoHandle BackendHandle = -1

// Symbol is one declared name: its type, its backend storage handle, its
// current ownership state, and where it was declared.
type Symbol struct {
	Name        string
	Type        types.Type
	Handle      BackendHandle
	Ownership   Ownership
	Declaration source.Location
}

// scope is one lexical nesting level's symbol table.
type scope struct {
	symbols map[string]*Symbol
}

func newScope() *scope {
	return &scope{symbols: make(map[string]*Symbol)}
}

// Table is a stack of scopes: declarations in an inner scope shadow
// outer ones, and lookup walks outward from the innermost scope.
type Table struct {
	scopes []*scope
}

// NewTable returns a Table with one (the global) scope already open.
func NewTable() *Table {
	t := &Table{}
	t.EnterScope()
	return t
}

// EnterScope pushes a new, empty lexical scope.
func (t *Table) EnterScope() {
	t.scopes = append(t.scopes, newScope())
}

// ExitScope pops the innermost scope. Calling it with only the global
// scope open is a programming error in the caller and panics, mirroring
// the teacher's preference for a loud failure over silently doing
// nothing.
func (t *Table) ExitScope() {
	if len(t.scopes) <= 1 {
		panic("symbols: ExitScope called with no enclosing scope to return to")
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// Depth returns how many scopes are currently open, the global scope
// counting as depth 1.
func (t *Table) Depth() int {
	return len(t.scopes)
}

// Declare adds sym to the innermost scope. Redeclaring a name already
// present in that same scope is an error; shadowing a name from an outer
// scope is not.
func (t *Table) Declare(sym *Symbol) error {
	current := t.scopes[len(t.scopes)-1]
	if _, exists := current.symbols[sym.Name]; exists {
		return fmt.Errorf("symbol %q already declared in this scope", sym.Name)
	}
	current.symbols[sym.Name] = sym
	return nil
}

// Lookup searches from the innermost scope outward and returns the first
// match, or nil if name is not visible here.
func (t *Table) Lookup(name string) *Symbol {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok := t.scopes[i].symbols[name]; ok {
			return sym
		}
	}
	return nil
}

// LookupLocal searches only the innermost scope, used to check for
// redeclaration before calling Declare.
func (t *Table) LookupLocal(name string) *Symbol {
	current := t.scopes[len(t.scopes)-1]
	return current.symbols[name]
}

// AllInScope returns every symbol declared directly in the innermost
// scope, in no particular order.
func (t *Table) AllInScope() []*Symbol {
	current := t.scopes[len(t.scopes)-1]
	out := make([]*Symbol, 0, len(current.symbols))
	for _, sym := range current.symbols {
		out = append(out, sym)
	}
	return out
}
