package parser

import (
	"github.com/funvibe/adjoint/internal/ast"
	"github.com/funvibe/adjoint/internal/diagnostics"
	"github.com/funvibe/adjoint/internal/token"
)

// parseFunctionDecl parses fn name<T>(params) -> Ret { body }.
// On return curToken is the closing '}' of the body.
func (p *Parser) parseFunctionDecl() *ast.FunctionDecl {
	fn := &ast.FunctionDecl{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	fn.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if p.peekTokenIs(token.LT) {
		p.nextToken()
		fn.TypeParams = p.parseTypeParams()
		if fn.TypeParams == nil {
			return nil
		}
	}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	fn.Params = p.parseParameters()
	if p.failed {
		return nil
	}

	if p.peekTokenIs(token.ARROW) {
		p.nextToken()
		p.nextToken()
		fn.ReturnType = p.parseType()
		if fn.ReturnType == nil {
			return nil
		}
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	fn.Body = p.parseBlock()
	if fn.Body == nil {
		return nil
	}
	return fn
}

// parseTypeParams parses <A, B>; curToken is '<' on entry and '>' on exit.
func (p *Parser) parseTypeParams() []*ast.Identifier {
	var params []*ast.Identifier
	for {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		params = append(params, &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme})
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if !p.expectPeek(token.GT) {
			return nil
		}
		return params
	}
}

// parseParameters parses the list after '('; curToken is ')' on exit.
func (p *Parser) parseParameters() []*ast.Parameter {
	var params []*ast.Parameter
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params
	}
	for {
		p.nextToken()
		param := &ast.Parameter{}
		if p.curTokenIs(token.CONST) {
			param.Const = true
			p.nextToken()
		}
		if !p.curTokenIs(token.IDENT) {
			p.errorf(diagnostics.ErrP001, p.curToken, "expected parameter name, got %s", describeTok(p.curToken))
			return nil
		}
		param.Token = p.curToken
		param.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		param.Type = p.parseType()
		if param.Type == nil {
			return nil
		}
		params = append(params, param)

		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			if p.peekTokenIs(token.RPAREN) { // trailing comma
				p.nextToken()
				return params
			}
			continue
		}
		if !p.expectPeek(token.RPAREN) {
			return nil
		}
		return params
	}
}

// parseType parses [&[mut]] a::b<Args>; curToken is the first token on entry
// and the last token of the type on exit.
func (p *Parser) parseType() *ast.TypeExpr {
	te := &ast.TypeExpr{Token: p.curToken}
	if p.curTokenIs(token.AMPERSAND) {
		te.Ref = true
		p.nextToken()
		if p.curTokenIs(token.MUT) {
			te.Mutable = true
			p.nextToken()
		}
	}
	if !p.curTokenIs(token.IDENT) {
		p.errorf(diagnostics.ErrP001, p.curToken, "expected type, got %s", describeTok(p.curToken))
		return nil
	}
	te.Path = append(te.Path, p.curToken.Lexeme)
	for p.peekTokenIs(token.COLON_COLON) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		te.Path = append(te.Path, p.curToken.Lexeme)
	}
	if p.peekTokenIs(token.LT) {
		p.nextToken()
		args := p.parseTypeArgs()
		if args == nil {
			return nil
		}
		te.Args = args
	}
	return te
}

// parseTypeArgs parses <T, U>; curToken is '<' on entry and '>' on exit.
func (p *Parser) parseTypeArgs() []*ast.TypeExpr {
	var args []*ast.TypeExpr
	for {
		p.nextToken()
		t := p.parseType()
		if t == nil {
			return nil
		}
		args = append(args, t)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if !p.expectPeek(token.GT) {
			return nil
		}
		return args
	}
}

// parseBlock parses { stmts; value }; curToken is '{' on entry and '}' on
// exit.
func (p *Parser) parseBlock() *ast.BlockExpression {
	block := &ast.BlockExpression{Token: p.curToken}
	p.nextToken()

	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.errorf(diagnostics.ErrP001, p.curToken, "unterminated block opened at %d:%d", block.Token.Line, block.Token.Column)
			return nil
		}
		if p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
			continue
		}

		switch p.curToken.Type {
		case token.LET:
			stmt := p.parseLetStatement()
			if stmt == nil {
				return nil
			}
			block.Statements = append(block.Statements, stmt)
		case token.RETURN:
			stmt := p.parseReturnStatement()
			if stmt == nil {
				return nil
			}
			block.Statements = append(block.Statements, stmt)
		case token.WHILE, token.FOR, token.LOOP:
			stmt := p.parseLoopStatement()
			if stmt == nil {
				return nil
			}
			block.Statements = append(block.Statements, stmt)
		default:
			startTok := p.curToken
			expr := p.parseExpression(LOWEST)
			if expr == nil {
				return nil
			}
			if op, ok := assignOps[p.peekToken.Type]; ok {
				p.nextToken()
				stmt := &ast.AssignStatement{Token: p.curToken, Target: expr, Operator: op}
				p.nextToken()
				stmt.Value = p.parseExpression(LOWEST)
				if stmt.Value == nil {
					return nil
				}
				if !p.expectPeek(token.SEMICOLON) {
					return nil
				}
				block.Statements = append(block.Statements, stmt)
				break
			}
			switch {
			case p.peekTokenIs(token.SEMICOLON):
				p.nextToken()
				block.Statements = append(block.Statements, &ast.ExpressionStatement{Token: startTok, Expression: expr})
			case p.peekTokenIs(token.RBRACE):
				block.Value = expr
			case endsWithBlock(expr):
				// if/else and nested blocks need no ';' in statement position.
				block.Statements = append(block.Statements, &ast.ExpressionStatement{Token: startTok, Expression: expr})
			default:
				p.peekError(token.SEMICOLON)
				return nil
			}
		}
		p.nextToken()
	}
	return block
}

var assignOps = map[token.TokenType]string{
	token.ASSIGN:          "=",
	token.PLUS_ASSIGN:     "+=",
	token.MINUS_ASSIGN:    "-=",
	token.ASTERISK_ASSIGN: "*=",
	token.SLASH_ASSIGN:    "/=",
	token.PERCENT_ASSIGN:  "%=",
}

func endsWithBlock(expr ast.Expression) bool {
	switch expr.(type) {
	case *ast.IfExpression, *ast.BlockExpression:
		return true
	}
	return false
}

func (p *Parser) parseLetStatement() *ast.LetStatement {
	stmt := &ast.LetStatement{Token: p.curToken}
	if p.peekTokenIs(token.MUT) {
		p.nextToken()
		stmt.Mutable = true
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		stmt.Type = p.parseType()
		if stmt.Type == nil {
			return nil
		}
	}
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return stmt
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	stmt := &ast.ReturnStatement{Token: p.curToken}
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		return stmt
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	} else if !p.peekTokenIs(token.RBRACE) {
		p.peekError(token.SEMICOLON)
		return nil
	}
	return stmt
}

// parseLoopStatement skips a loop header and its body so lowering can
// report it. curToken is the closing '}' on exit.
func (p *Parser) parseLoopStatement() *ast.LoopStatement {
	stmt := &ast.LoopStatement{Token: p.curToken}
	for !p.curTokenIs(token.LBRACE) {
		if p.curTokenIs(token.EOF) {
			p.errorf(diagnostics.ErrP001, p.curToken, "expected loop body")
			return nil
		}
		p.nextToken()
	}
	if p.parseBlock() == nil {
		return nil
	}
	return stmt
}
