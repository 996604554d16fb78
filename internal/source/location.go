// Package source defines the uniform position type threaded through every
// stage of the compiler: tokens, AST nodes, and diagnostics all carry one.
package source

import "fmt"

// Location identifies a span of source text. It is attached to every
// token, AST node, and diagnostic and is immutable once created.
type Location struct {
	File   string
	Line   int
	Column int
	Length int
}

// At is a convenience constructor for a single-character location.
func At(file string, line, column int) Location {
	return Location{File: file, Line: line, Column: column, Length: 1}
}

// String renders the location as "file:line:col", the prefix used by the
// diagnostic reporter for every printed line.
func (l Location) String() string {
	file := l.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d", file, l.Line, l.Column)
}

// Zero reports whether this is the unset location (no file, zero position).
func (l Location) Zero() bool {
	return l.File == "" && l.Line == 0 && l.Column == 0
}
