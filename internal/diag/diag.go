// Package diag provides the diagnostic taxonomy and a collector that every
// compilation phase shares by reference. There is no package-level mutable
// state: the original design's static ErrorReporter counters are replaced
// by an explicit *Collector threaded through the pipeline.
package diag

import (
	"fmt"
	"io"
	"sort"

	"github.com/forge-lang/forgec/internal/source"
)

// Level is the severity of a Diagnostic.
type Level int

const (
	Error Level = iota
	Warning
	Note
)

func (l Level) String() string {
	switch l {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	default:
		return "unknown"
	}
}

// Kind distinguishes the taxonomy class of a Diagnostic, independent of
// its Level.
type Kind int

const (
	KindLexical Kind = iota
	KindSyntactic
	KindType
	KindBorrow
	KindCodegen
	KindRuntime
)

func (k Kind) String() string {
	switch k {
	case KindLexical:
		return "lexical"
	case KindSyntactic:
		return "syntax"
	case KindType:
		return "type"
	case KindBorrow:
		return "borrow"
	case KindCodegen:
		return "codegen"
	case KindRuntime:
		return "runtime"
	default:
		return "error"
	}
}

// BorrowKind is the sub-kind of a KindBorrow diagnostic, per spec.md §4.5/§7.
type BorrowKind int

const (
	UseAfterMove BorrowKind = iota
	MutableBorrowWhileImmutableBorrows
	MultipleMutableBorrows
	LifetimeTooShort
	InvalidBorrow
)

func (b BorrowKind) String() string {
	switch b {
	case UseAfterMove:
		return "UseAfterMove"
	case MutableBorrowWhileImmutableBorrows:
		return "MutableBorrowWhileImmutableBorrows"
	case MultipleMutableBorrows:
		return "MultipleMutableBorrows"
	case LifetimeTooShort:
		return "LifetimeTooShort"
	case InvalidBorrow:
		return "InvalidBorrow"
	default:
		return "InvalidBorrow"
	}
}

// Diagnostic is a single reported problem: a level, a taxonomy kind, a
// message, a location, and (for Kind == KindBorrow) a borrow sub-kind.
type Diagnostic struct {
	Level      Level
	Kind       Kind
	BorrowKind BorrowKind
	Message    string
	Location   source.Location
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s", d.Location, d.Kind, d.Message)
}

// Collector accumulates diagnostics for one compilation unit. It is owned
// by the driver and borrowed mutably, one phase at a time, by each pass;
// no two phases ever hold it concurrently (spec.md §5).
type Collector struct {
	diagnostics []Diagnostic
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) add(d Diagnostic) {
	c.diagnostics = append(c.diagnostics, d)
}

// Report appends an arbitrary diagnostic.
func (c *Collector) Report(d Diagnostic) { c.add(d) }

// Lexical records a lexical error at loc.
func (c *Collector) Lexical(message string, loc source.Location) {
	c.add(Diagnostic{Level: Error, Kind: KindLexical, Message: message, Location: loc})
}

// Syntactic records a parse error at loc.
func (c *Collector) Syntactic(message string, loc source.Location) {
	c.add(Diagnostic{Level: Error, Kind: KindSyntactic, Message: message, Location: loc})
}

// TypeError records a type-checking error at loc.
func (c *Collector) TypeError(message string, loc source.Location) {
	c.add(Diagnostic{Level: Error, Kind: KindType, Message: message, Location: loc})
}

// Borrow records a borrow-checking violation of the given sub-kind.
func (c *Collector) Borrow(kind BorrowKind, message string, loc source.Location) {
	c.add(Diagnostic{Level: Error, Kind: KindBorrow, BorrowKind: kind, Message: message, Location: loc})
}

// Codegen records a codegen-phase error.
func (c *Collector) Codegen(message string, loc source.Location) {
	c.add(Diagnostic{Level: Error, Kind: KindCodegen, Message: message, Location: loc})
}

// Runtime records a VM runtime error.
func (c *Collector) Runtime(message string, loc source.Location) {
	c.add(Diagnostic{Level: Error, Kind: KindRuntime, Message: message, Location: loc})
}

// Warn records a warning, which never halts the pipeline.
func (c *Collector) Warn(message string, loc source.Location) {
	c.add(Diagnostic{Level: Warning, Kind: KindType, Message: message, Location: loc})
}

// HasErrors reports whether any Error-level diagnostic was collected.
func (c *Collector) HasErrors() bool {
	for _, d := range c.diagnostics {
		if d.Level == Error {
			return true
		}
	}
	return false
}

// ErrorCount and WarningCount are reported separately per spec.md §4.8.
func (c *Collector) ErrorCount() int   { return c.countLevel(Error) }
func (c *Collector) WarningCount() int { return c.countLevel(Warning) }

func (c *Collector) countLevel(l Level) int {
	n := 0
	for _, d := range c.diagnostics {
		if d.Level == l {
			n++
		}
	}
	return n
}

// All returns every collected diagnostic, sorted lexicographically by
// (file, line, column).
func (c *Collector) All() []Diagnostic {
	sorted := make([]Diagnostic, len(c.diagnostics))
	copy(sorted, c.diagnostics)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Location, sorted[j].Location
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return sorted
}

// Print renders every diagnostic as "path:line:col: kind: message" followed
// by the summary line, matching spec.md §7 exactly.
func (c *Collector) Print(w io.Writer) {
	for _, d := range c.All() {
		fmt.Fprintf(w, "%s: %s: %s\n", d.Location, d.Kind, d.Message)
	}
	fmt.Fprintf(w, "Compilation finished with %d error(s) and %d warning(s).\n",
		c.ErrorCount(), c.WarningCount())
}

// Clear resets the collector to empty, for reuse across --watch rebuilds.
func (c *Collector) Clear() {
	c.diagnostics = nil
}
