package parser

import (
	"github.com/forge-lang/forgec/internal/lexer"
	"github.com/forge-lang/forgec/pkg/ast"
)

func (p *Parser) parseBlock() *ast.Block {
	start := p.expect(lexer.LBRACE)
	node := &ast.Block{Base: ast.Base{Loc: p.loc(start)}}
	p.skipNewlines()

	for !p.check(lexer.RBRACE) && !p.isAtEnd() {
		stmt := p.parseStatement()
		if stmt != nil {
			node.Statements = append(node.Statements, stmt)
		}
		p.skipNewlines()
	}

	p.expect(lexer.RBRACE)
	return node
}

func (p *Parser) parseStatement() ast.Statement {
	p.skipNewlines()

	switch p.peek().Kind {
	case lexer.LBRACE:
		return p.parseBlock()
	case lexer.IF:
		return p.parseIf()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.DEFER:
		return p.parseDefer()
	case lexer.DEF:
		return p.parseFunctionDefinition()
	case lexer.CLASS:
		return p.parseClassDefinition()
	case lexer.EXTERN:
		return p.parseExternDeclaration()
	case lexer.IDENTIFIER:
		if p.isVariableDeclarationAhead() {
			return p.parseVariableDeclaration()
		}
		return p.parseAssignmentOrExpressionStatement()
	default:
		return p.parseAssignmentOrExpressionStatement()
	}
}

// isVariableDeclarationAhead reports whether the current identifier
// begins `name : type = ...` or `name := ...`, distinguishing a
// declaration from a plain expression or assignment statement without
// backtracking the whole expression grammar.
func (p *Parser) isVariableDeclarationAhead() bool {
	next := p.peekNext().Kind
	return next == lexer.COLON || next == lexer.WALRUS
}

func (p *Parser) parseVariableDeclaration() ast.Statement {
	nameTok := p.advance()
	node := &ast.VariableDeclaration{Base: ast.Base{Loc: p.loc(nameTok)}, Name: nameTok}

	if p.check(lexer.WALRUS) {
		p.advance()
		node.Inferred = true
	} else {
		p.expect(lexer.COLON)
		node.Type = p.parseType()
		p.expect(lexer.ASSIGN)
	}

	node.Initializer = p.parseExpression()
	return node
}

func (p *Parser) parseAssignmentOrExpressionStatement() ast.Statement {
	start := p.peek()
	expr := p.parseExpression()

	if p.check(lexer.ASSIGN) {
		p.advance()
		value := p.parseExpression()
		if idx, ok := expr.(*ast.IndexAccess); ok {
			return &ast.IndexAssignment{Base: ast.Base{Loc: p.loc(start)}, Array: idx.Array, Index: idx.Index, Value: value}
		}
		return &ast.Assignment{Base: ast.Base{Loc: p.loc(start)}, Target: expr, Value: value}
	}

	if compound, ok := compoundAssignOp(p.peek().Kind); ok {
		op := p.advance()
		rhs := p.parseExpression()
		desugared := &ast.Binary{Base: ast.Base{Loc: p.loc(start)}, Left: expr, Operator: lexer.Token{Kind: compound, Lexeme: compound.String(), Line: op.Line, Column: op.Column}, Right: rhs}
		if idx, ok := expr.(*ast.IndexAccess); ok {
			return &ast.IndexAssignment{Base: ast.Base{Loc: p.loc(start)}, Array: idx.Array, Index: idx.Index, Value: desugared}
		}
		return &ast.Assignment{Base: ast.Base{Loc: p.loc(start)}, Target: expr, Value: desugared}
	}

	return &ast.ExpressionStatement{Base: ast.Base{Loc: p.loc(start)}, Expr: expr}
}

// compoundAssignOp maps a compound-assignment token to the plain binary
// operator its desugaring should apply (spec.md §4.2: `x += y` means
// `x = x + y`).
func compoundAssignOp(k lexer.Kind) (lexer.Kind, bool) {
	switch k {
	case lexer.PLUS_ASSIGN:
		return lexer.PLUS, true
	case lexer.MINUS_ASSIGN:
		return lexer.MINUS, true
	case lexer.STAR_ASSIGN:
		return lexer.STAR, true
	case lexer.SLASH_ASSIGN:
		return lexer.SLASH, true
	}
	return 0, false
}

func (p *Parser) parseIf() ast.Statement {
	start := p.advance() // if
	p.expect(lexer.LPAREN)
	cond := p.parseExpression()
	p.expect(lexer.RPAREN)
	then := p.parseBlock()

	node := &ast.If{Base: ast.Base{Loc: p.loc(start)}, Condition: cond, Then: then}

	savedPos := p.pos
	p.skipNewlines()
	if p.check(lexer.ELSE) {
		p.advance()
		node.Else = p.parseBlock()
	} else {
		p.pos = savedPos
	}

	return node
}

func (p *Parser) parseWhile() ast.Statement {
	start := p.advance() // while
	p.expect(lexer.LPAREN)
	cond := p.parseExpression()
	p.expect(lexer.RPAREN)
	body := p.parseBlock()
	return &ast.While{Base: ast.Base{Loc: p.loc(start)}, Condition: cond, Body: body}
}

func (p *Parser) parseReturn() ast.Statement {
	start := p.advance() // return
	node := &ast.Return{Base: ast.Base{Loc: p.loc(start)}}
	if !p.check(lexer.NEWLINE) && !p.check(lexer.RBRACE) && !p.isAtEnd() {
		node.Value = p.parseExpression()
	}
	return node
}

// parseDefer parses `defer expr`: expr's evaluation is postponed to every
// exit edge of the enclosing block, in reverse registration order
// (spec.md §5, §9).
func (p *Parser) parseDefer() ast.Statement {
	start := p.advance() // defer
	expr := p.parseExpression()
	return &ast.Defer{Base: ast.Base{Loc: p.loc(start)}, Expr: expr}
}

func (p *Parser) parseParameterList() []ast.Parameter {
	p.expect(lexer.LPAREN)
	var params []ast.Parameter
	if !p.check(lexer.RPAREN) {
		params = append(params, p.parseParameter())
		for p.check(lexer.COMMA) {
			p.advance()
			params = append(params, p.parseParameter())
		}
	}
	p.expect(lexer.RPAREN)
	return params
}

func (p *Parser) parseParameter() ast.Parameter {
	name := p.expect(lexer.IDENTIFIER)
	p.expect(lexer.COLON)
	typ := p.parseType()
	return ast.Parameter{Name: name, Type: typ}
}

// parseGenericParameterList parses the `[T, U]` type-parameter list that
// may follow a function or class name.
func (p *Parser) parseGenericParameterList() []lexer.Token {
	if !p.check(lexer.LBRACK) {
		return nil
	}
	p.advance()
	var params []lexer.Token
	params = append(params, p.expect(lexer.IDENTIFIER))
	for p.check(lexer.COMMA) {
		p.advance()
		params = append(params, p.expect(lexer.IDENTIFIER))
	}
	p.expect(lexer.RBRACK)
	return params
}

func (p *Parser) parseFunctionDefinition() ast.Statement {
	start := p.advance() // def
	nameTok := p.expect(lexer.IDENTIFIER)

	node := &ast.FunctionDefinition{Base: ast.Base{Loc: p.loc(start)}, Name: nameTok.Lexeme}
	node.TypeParameters = p.parseGenericParameterList()
	node.Parameters = p.parseParameterList()

	if p.check(lexer.ARROW) {
		p.advance()
		node.ReturnType = p.parseType()
	} else {
		node.ReturnType = ast.ParsedType{Primary: lexer.Token{Kind: lexer.VOID, Lexeme: "void"}}
	}

	node.Body = p.parseBlock()
	return node
}

func (p *Parser) parseMethodDefinition() *ast.MethodDefinition {
	start := p.advance() // def
	nameTok := p.expect(lexer.IDENTIFIER)

	node := &ast.MethodDefinition{Base: ast.Base{Loc: p.loc(start)}, Name: nameTok.Lexeme}
	node.Parameters = p.parseParameterList()

	if p.check(lexer.ARROW) {
		p.advance()
		node.ReturnType = p.parseType()
	} else {
		node.ReturnType = ast.ParsedType{Primary: lexer.Token{Kind: lexer.VOID, Lexeme: "void"}}
	}

	node.Body = p.parseBlock()
	return node
}

func (p *Parser) parseFieldDefinition() *ast.FieldDefinition {
	start := p.peek()
	nameTok := p.expect(lexer.IDENTIFIER)
	p.expect(lexer.COLON)
	typ := p.parseType()
	return &ast.FieldDefinition{Base: ast.Base{Loc: p.loc(start)}, Name: nameTok, Type: typ}
}

func (p *Parser) parseClassDefinition() ast.Statement {
	start := p.advance() // class
	nameTok := p.expect(lexer.IDENTIFIER)

	node := &ast.ClassDefinition{Base: ast.Base{Loc: p.loc(start)}, Name: nameTok.Lexeme}
	node.GenericParameters = p.parseGenericParameterList()

	p.expect(lexer.LBRACE)
	p.skipNewlines()
	for !p.check(lexer.RBRACE) && !p.isAtEnd() {
		if p.check(lexer.DEF) {
			node.Methods = append(node.Methods, p.parseMethodDefinition())
		} else {
			node.Fields = append(node.Fields, p.parseFieldDefinition())
		}
		p.skipNewlines()
	}
	p.expect(lexer.RBRACE)

	return node
}

func (p *Parser) parseExternDeclaration() ast.Statement {
	start := p.advance() // extern
	p.expect(lexer.DEF)
	nameTok := p.expect(lexer.IDENTIFIER)

	node := &ast.Extern{Base: ast.Base{Loc: p.loc(start)}, Name: nameTok.Lexeme}
	node.Parameters = p.parseParameterList()

	if p.check(lexer.ARROW) {
		p.advance()
		node.ReturnType = p.parseType()
	} else {
		node.ReturnType = ast.ParsedType{Primary: lexer.Token{Kind: lexer.VOID, Lexeme: "void"}}
	}

	return node
}
