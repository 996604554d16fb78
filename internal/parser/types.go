package parser

import (
	"github.com/forge-lang/forgec/internal/lexer"
	"github.com/forge-lang/forgec/pkg/ast"
)

// parseType parses a ParsedType descriptor: an optional smart-pointer
// keyword, an optional pointer/reference sigil, then either a Maybe[T]
// form (marking Optional) or the primary type token with an optional
// bracketed generic argument list (spec.md §3).
func (p *Parser) parseType() ast.ParsedType {
	start := p.peek()
	result := ast.ParsedType{Loc: p.loc(start)}

	switch p.peek().Kind {
	case lexer.UNIQUE:
		p.advance()
		result.SmartPointer = ast.SmartPointerUnique
	case lexer.SHARED:
		p.advance()
		result.SmartPointer = ast.SmartPointerShared
	case lexer.WEAK:
		p.advance()
		result.SmartPointer = ast.SmartPointerWeak
	}

	if p.check(lexer.STAR) {
		p.advance()
		result.IsPointer = true
	} else if p.check(lexer.AMP) {
		p.advance()
		if p.check(lexer.MUT) {
			p.advance()
			result.IsMutReference = true
		} else {
			result.IsReference = true
		}
	}

	if p.check(lexer.MAYBE) {
		maybeTok := p.advance()
		result.IsOptional = true
		p.expect(lexer.LBRACK)
		result.Primary = p.expect(lexer.IDENTIFIER)
		if !isTypeToken(result.Primary.Kind) {
			result.Primary = maybeTok // fallback: keep a sensible token on malformed input
		}
		p.expect(lexer.RBRACK)
		return result
	}

	result.Primary = p.parseTypeNameToken()

	if p.check(lexer.LBRACK) {
		p.advance()
		for !p.check(lexer.RBRACK) && !p.isAtEnd() {
			result.TypeParameters = append(result.TypeParameters, p.parseTypeNameToken())
			if !p.check(lexer.RBRACK) {
				p.expect(lexer.COMMA)
			}
		}
		p.expect(lexer.RBRACK)
	}

	return result
}

// parseTypeNameToken consumes a single type-name token: an identifier
// (class or generic parameter name) or one of the primitive type
// keywords.
func (p *Parser) parseTypeNameToken() lexer.Token {
	tok := p.peek()
	if tok.Kind == lexer.IDENTIFIER || lexer.IsPrimitiveType(tok.Kind) {
		return p.advance()
	}
	return p.expect(lexer.IDENTIFIER)
}

func isTypeToken(k lexer.Kind) bool {
	return k == lexer.IDENTIFIER || lexer.IsPrimitiveType(k)
}
