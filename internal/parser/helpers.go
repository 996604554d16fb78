package parser

import (
	"fmt"

	"github.com/forge-lang/forgec/internal/lexer"
)

func (p *Parser) peek() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Kind: lexer.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekNext() lexer.Token {
	if p.pos+1 >= len(p.tokens) {
		return lexer.Token{Kind: lexer.EOF}
	}
	return p.tokens[p.pos+1]
}

func (p *Parser) previous() lexer.Token {
	if p.pos == 0 {
		return lexer.Token{Kind: lexer.EOF}
	}
	return p.tokens[p.pos-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == lexer.EOF
}

// advance consumes and returns the current token, NEWLINE tokens
// included; routines that ignore line breaks call skipNewlines
// themselves (spec.md §4.2: newline is only significant as a statement
// separator, handled at block level).
func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.pos++
	}
	return p.previous()
}

func (p *Parser) check(k lexer.Kind) bool {
	if p.isAtEnd() {
		return k == lexer.EOF
	}
	return p.peek().Kind == k
}

func (p *Parser) match(kinds ...lexer.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

// expect consumes the current token if it has kind k, else records a
// syntax error and returns the offending token without advancing, so the
// caller's subsequent checks still see a sensible position.
func (p *Parser) expect(k lexer.Kind) lexer.Token {
	if p.check(k) {
		return p.advance()
	}
	tok := p.peek()
	p.diags.Syntactic(fmt.Sprintf("expected %s, got %s %q", k, tok.Kind, tok.Lexeme), p.loc(tok))
	if !p.isAtEnd() {
		p.advance()
	}
	return tok
}

// skipNewlines discards any run of NEWLINE tokens at the current
// position. Blocks call this between statements so blank lines and
// trailing newlines after a statement never confuse the next dispatch.
func (p *Parser) skipNewlines() {
	for p.check(lexer.NEWLINE) {
		p.advance()
	}
}

// synchronize recovers from a syntax error by discarding tokens until a
// statement boundary: a NEWLINE or a keyword that can start a new
// statement. Mirrors the teacher's statement-boundary recovery.
func (p *Parser) synchronize() {
	p.advance()
	for !p.isAtEnd() {
		if p.previous().Kind == lexer.NEWLINE {
			return
		}
		switch p.peek().Kind {
		case lexer.DEF, lexer.CLASS, lexer.EXTERN, lexer.IF, lexer.WHILE,
			lexer.RETURN, lexer.DEFER, lexer.RBRACE:
			return
		}
		p.advance()
	}
}
