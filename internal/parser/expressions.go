package parser

import (
	"fmt"

	"github.com/forge-lang/forgec/internal/lexer"
	"github.com/forge-lang/forgec/pkg/ast"
)

// Expression precedence, lowest to highest (spec.md §4.2, §8 — every
// level below is left-associative except unary/postfix, which have no
// associativity to speak of):
//
//  1. logical or      (||)
//  2. logical and     (&&)
//  3. equality         (==, !=)
//  4. comparison       (<, >, <=, >=)
//  5. bitwise or       (|)
//  6. bitwise xor      (^)
//  7. bitwise and      (&)
//  8. additive         (+, -)
//  9. multiplicative   (*, /)
// 10. unary            (!, -, &, *, move)
// 11. postfix          (call, index, member)
// 12. primary

func (p *Parser) parseExpression() ast.Expression {
	return p.parseLogicalOr()
}

func (p *Parser) parseLogicalOr() ast.Expression {
	left := p.parseLogicalAnd()
	for p.check(lexer.OR_OR) {
		op := p.advance()
		right := p.parseLogicalAnd()
		left = &ast.Binary{Base: ast.Base{Loc: left.Location()}, Left: left, Operator: op, Right: right}
	}
	return left
}

func (p *Parser) parseLogicalAnd() ast.Expression {
	left := p.parseEquality()
	for p.check(lexer.AND_AND) {
		op := p.advance()
		right := p.parseEquality()
		left = &ast.Binary{Base: ast.Base{Loc: left.Location()}, Left: left, Operator: op, Right: right}
	}
	return left
}

func (p *Parser) parseEquality() ast.Expression {
	left := p.parseComparison()
	for p.check(lexer.EQ) || p.check(lexer.NEQ) {
		op := p.advance()
		right := p.parseComparison()
		left = &ast.Binary{Base: ast.Base{Loc: left.Location()}, Left: left, Operator: op, Right: right}
	}
	return left
}

func (p *Parser) parseComparison() ast.Expression {
	left := p.parseBitwiseOr()
	for p.check(lexer.LT) || p.check(lexer.GT) || p.check(lexer.LTE) || p.check(lexer.GTE) {
		op := p.advance()
		right := p.parseBitwiseOr()
		left = &ast.Binary{Base: ast.Base{Loc: left.Location()}, Left: left, Operator: op, Right: right}
	}
	return left
}

func (p *Parser) parseBitwiseOr() ast.Expression {
	left := p.parseBitwiseXor()
	for p.check(lexer.PIPE) {
		op := p.advance()
		right := p.parseBitwiseXor()
		left = &ast.Binary{Base: ast.Base{Loc: left.Location()}, Left: left, Operator: op, Right: right}
	}
	return left
}

func (p *Parser) parseBitwiseXor() ast.Expression {
	left := p.parseBitwiseAnd()
	for p.check(lexer.CARET) {
		op := p.advance()
		right := p.parseBitwiseAnd()
		left = &ast.Binary{Base: ast.Base{Loc: left.Location()}, Left: left, Operator: op, Right: right}
	}
	return left
}

func (p *Parser) parseBitwiseAnd() ast.Expression {
	left := p.parseAdditive()
	for p.check(lexer.AMP) {
		op := p.advance()
		right := p.parseAdditive()
		left = &ast.Binary{Base: ast.Base{Loc: left.Location()}, Left: left, Operator: op, Right: right}
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expression {
	left := p.parseMultiplicative()
	for p.check(lexer.PLUS) || p.check(lexer.MINUS) {
		op := p.advance()
		right := p.parseMultiplicative()
		left = &ast.Binary{Base: ast.Base{Loc: left.Location()}, Left: left, Operator: op, Right: right}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expression {
	left := p.parseUnary()
	for p.check(lexer.STAR) || p.check(lexer.SLASH) {
		op := p.advance()
		right := p.parseUnary()
		left = &ast.Binary{Base: ast.Base{Loc: left.Location()}, Left: left, Operator: op, Right: right}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expression {
	switch p.peek().Kind {
	case lexer.AMP:
		op := p.advance()
		mutable := p.check(lexer.MUT)
		if mutable {
			p.advance()
		}
		operand := p.parseUnary()
		return &ast.Unary{Base: ast.Base{Loc: p.loc(op)}, Operator: op, Operand: operand, Mutable: mutable}
	case lexer.BANG, lexer.MINUS, lexer.STAR:
		op := p.advance()
		operand := p.parseUnary()
		return &ast.Unary{Base: ast.Base{Loc: p.loc(op)}, Operator: op, Operand: operand}
	case lexer.MOVE:
		tok := p.advance()
		operand := p.parseUnary()
		return &ast.Move{Base: ast.Base{Loc: p.loc(tok)}, MoveToken: tok, Operand: operand}
	case lexer.NEW:
		tok := p.advance()
		value := p.parseUnary()
		return &ast.New{Base: ast.Base{Loc: p.loc(tok)}, Value: value}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parsePrimary()

	for {
		switch p.peek().Kind {
		case lexer.DOT:
			p.advance()
			nameTok := p.expect(lexer.IDENTIFIER)
			member := &ast.MemberAccess{Base: ast.Base{Loc: expr.Location()}, Object: expr, MemberName: nameTok.Lexeme}
			if p.check(lexer.LPAREN) {
				member.IsMethodCall = true
				member.Arguments = p.parseArgumentList()
			}
			expr = member
		case lexer.LBRACK:
			p.advance()
			index := p.parseExpression()
			p.expect(lexer.RBRACK)
			expr = &ast.IndexAccess{Base: ast.Base{Loc: expr.Location()}, Array: expr, Index: index}
		default:
			return expr
		}
	}
}

func (p *Parser) parseArgumentList() []ast.Expression {
	p.expect(lexer.LPAREN)
	var args []ast.Expression
	if !p.check(lexer.RPAREN) {
		args = append(args, p.parseExpression())
		for p.check(lexer.COMMA) {
			p.advance()
			args = append(args, p.parseExpression())
		}
	}
	p.expect(lexer.RPAREN)
	return args
}

// parseCallTypeArguments parses the '[' T1, T2 ']' generic argument list
// that may follow a callee name, distinct from the '(' ')' value
// argument list that always follows it.
func (p *Parser) parseCallTypeArguments() []ast.ParsedType {
	p.expect(lexer.LBRACK)
	var args []ast.ParsedType
	if !p.check(lexer.RBRACK) {
		args = append(args, p.parseType())
		for p.check(lexer.COMMA) {
			p.advance()
			args = append(args, p.parseType())
		}
	}
	p.expect(lexer.RBRACK)
	return args
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.peek()

	switch tok.Kind {
	case lexer.NUMBER, lexer.STRING, lexer.TRUE, lexer.FALSE, lexer.NULL:
		p.advance()
		return &ast.Literal{Base: ast.Base{Loc: p.loc(tok)}, Token: tok}

	case lexer.SELF:
		p.advance()
		return &ast.Identifier{Base: ast.Base{Loc: p.loc(tok)}, Name: "self"}

	case lexer.SOME:
		p.advance()
		p.expect(lexer.LPAREN)
		value := p.parseExpression()
		p.expect(lexer.RPAREN)
		return &ast.Optional{Base: ast.Base{Loc: p.loc(tok)}, KindToken: tok, Value: value}

	case lexer.NONE:
		p.advance()
		return &ast.Optional{Base: ast.Base{Loc: p.loc(tok)}, KindToken: tok}

	case lexer.LBRACK:
		return p.parseArrayLiteral()

	case lexer.LPAREN:
		p.advance()
		inner := p.parseExpression()
		p.expect(lexer.RPAREN)
		return inner

	case lexer.IDENTIFIER:
		return p.parseIdentifierExpression()

	default:
		p.diags.Syntactic(fmt.Sprintf("expected expression, got %s %q", tok.Kind, tok.Lexeme), p.loc(tok))
		if !p.isAtEnd() {
			p.advance()
		}
		return &ast.Identifier{Base: ast.Base{Loc: p.loc(tok)}, Name: ""}
	}
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	start := p.advance() // [
	node := &ast.ArrayLiteral{Base: ast.Base{Loc: p.loc(start)}}
	if !p.check(lexer.RBRACK) {
		node.Elements = append(node.Elements, p.parseExpression())
		for p.check(lexer.COMMA) {
			p.advance()
			node.Elements = append(node.Elements, p.parseExpression())
		}
	}
	p.expect(lexer.RBRACK)
	return node
}

// parseIdentifierExpression resolves the three call-shaped forms that
// start with a bare name: a plain identifier, a function call, and a
// class instantiation (generic or not). Class names are conventionally
// capitalized in Forge source, so that distinguishes ObjectInstantiation
// / GenericInstantiation from FunctionCall at parse time without
// consulting the symbol table.
func (p *Parser) parseIdentifierExpression() ast.Expression {
	tok := p.advance()
	isClassName := len(tok.Lexeme) > 0 && tok.Lexeme[0] >= 'A' && tok.Lexeme[0] <= 'Z'

	if p.check(lexer.LBRACK) && p.genericCallFollows() {
		typeArgs := p.parseCallTypeArguments()
		args := p.parseArgumentList()
		if isClassName {
			return &ast.GenericInstantiation{Base: ast.Base{Loc: p.loc(tok)}, ClassName: tok, TypeArguments: typeArgs, Arguments: args}
		}
		return &ast.FunctionCall{Base: ast.Base{Loc: p.loc(tok)}, Name: tok.Lexeme, TypeArguments: typeArgs, Arguments: args}
	}

	if p.check(lexer.LPAREN) {
		args := p.parseArgumentList()
		if isClassName {
			return &ast.ObjectInstantiation{Base: ast.Base{Loc: p.loc(tok)}, ClassName: tok, Arguments: args}
		}
		return &ast.FunctionCall{Base: ast.Base{Loc: p.loc(tok)}, Name: tok.Lexeme, Arguments: args}
	}

	// A bare '[' here (genericCallFollows false) is left untouched for
	// parsePostfix's own loop to consume as an IndexAccess (spec.md §4.2:
	// scan to the matching ']'; only an immediately-following '(' makes it
	// a generic instantiation, otherwise it's an indexed expression).
	return &ast.Identifier{Base: ast.Base{Loc: p.loc(tok)}, Name: tok.Lexeme}
}

// genericCallFollows reports whether the '[' at the current position
// opens a generic type-argument list for a call/instantiation, decided
// by scanning to its matching ']' and checking whether '(' immediately
// follows (spec.md §4.2). It never advances the parser.
func (p *Parser) genericCallFollows() bool {
	depth := 0
	for i := p.pos; i < len(p.tokens); i++ {
		switch p.tokens[i].Kind {
		case lexer.LBRACK:
			depth++
		case lexer.RBRACK:
			depth--
			if depth == 0 {
				return i+1 < len(p.tokens) && p.tokens[i+1].Kind == lexer.LPAREN
			}
		}
	}
	return false
}
