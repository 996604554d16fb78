// Package parser builds a Forge pkg/ast tree from a token stream. It is a
// hand-written recursive-descent parser with a Pratt-style precedence
// ladder for expressions, following the teacher's internal/builder
// structure (Builder -> Options -> token-navigation helpers) generalized
// to Forge's grammar (spec.md §3, §4.2).
package parser

import (
	"github.com/forge-lang/forgec/internal/diag"
	"github.com/forge-lang/forgec/internal/lexer"
	"github.com/forge-lang/forgec/internal/source"
	"github.com/forge-lang/forgec/pkg/ast"
)

// Parser consumes a token slice and produces an *ast.Program, reporting
// every syntax error it encounters to a shared diag.Collector rather than
// stopping at the first one (spec.md §4.8: the parser is tolerant, unlike
// the lexer).
type Parser struct {
	file   string
	tokens []lexer.Token
	pos    int
	diags  *diag.Collector
}

// New creates a Parser over tokens, a stream already produced by
// internal/lexer. file is attached to every location recorded in
// diagnostics.
func New(file string, tokens []lexer.Token, diags *diag.Collector) *Parser {
	return &Parser{file: file, tokens: tokens, diags: diags}
}

// Parse consumes the whole token stream and returns the root Program
// node. It never returns a nil node: on error it still returns whatever
// partial tree it managed to recover, so callers should check
// diags.HasErrors() rather than treat a non-nil result as success.
func (p *Parser) Parse() *ast.Program {
	start := p.peek()
	prog := &ast.Program{}
	prog.Loc = p.loc(start)

	p.skipNewlines()
	for !p.isAtEnd() {
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		p.skipNewlines()
	}

	return prog
}

func (p *Parser) loc(tok lexer.Token) source.Location {
	return source.Location{File: p.file, Line: tok.Line, Column: tok.Column, Length: len(tok.Lexeme)}
}
