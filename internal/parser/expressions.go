package parser

import (
	"strings"

	"github.com/funvibe/adjoint/internal/ast"
	"github.com/funvibe/adjoint/internal/diagnostics"
	"github.com/funvibe/adjoint/internal/token"
)

func (p *Parser) parseExpression(precedence int) ast.Expression {
	p.depth++
	defer func() { p.depth-- }()

	if p.depth > MaxRecursionDepth {
		p.errorf(diagnostics.ErrP001, p.curToken, "expression too complex: recursion depth limit exceeded")
		return nil
	}

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}
	return leftExp
}

// parseIdentifier parses a name or a path a::b, including a turbofish
// segment a::<T>.
func (p *Parser) parseIdentifier() ast.Expression {
	ident := &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	if !p.peekTokenIs(token.COLON_COLON) {
		return ident
	}

	path := &ast.PathExpression{Token: p.curToken, Segments: []string{ident.Value}}
	for p.peekTokenIs(token.COLON_COLON) {
		p.nextToken()
		if p.peekTokenIs(token.LT) {
			p.nextToken()
			args := p.parseTypeArgs()
			if args == nil {
				return nil
			}
			path.TypeArgs = args
			break
		}
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		path.Segments = append(path.Segments, p.curToken.Lexeme)
	}
	return path
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	lit := &ast.NumberLiteral{
		Token: p.curToken,
		Float: p.curTokenIs(token.FLOAT),
	}
	lit.Text, _ = p.curToken.Literal.(string)
	lexeme := p.curToken.Lexeme
	if !strings.HasPrefix(lexeme, "0x") && !strings.HasPrefix(lexeme, "0X") {
		for _, s := range []string{"f32", "f64", "i32"} {
			if strings.HasSuffix(lexeme, s) {
				lit.Suffix = s
				break
			}
		}
	}
	return lit
}

func (p *Parser) parseStringLiteral() ast.Expression {
	value, _ := p.curToken.Literal.(string)
	return &ast.StringLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Lexeme,
	}
	p.nextToken()
	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}
	return expression
}

// parseReferenceExpression parses &x, &mut x, and &&x (a reference to a
// reference, which the lexer produces as a single '&&').
func (p *Parser) parseReferenceExpression() ast.Expression {
	expression := &ast.ReferenceExpression{Token: p.curToken}
	double := p.curTokenIs(token.AND)
	if p.peekTokenIs(token.MUT) {
		p.nextToken()
		expression.Mutable = true
	}
	p.nextToken()
	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}
	if double {
		return &ast.ReferenceExpression{Token: expression.Token, Right: expression}
	}
	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Lexeme,
		Left:     left,
	}
	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return exp
}

func (p *Parser) parseBlockAsExpression() ast.Expression {
	block := p.parseBlock()
	if block == nil {
		return nil
	}
	return block
}

func (p *Parser) parseIfExpression() ast.Expression {
	expression := &ast.IfExpression{Token: p.curToken}
	p.nextToken() // consume 'if'

	expression.Condition = p.parseExpression(LOWEST)
	if expression.Condition == nil {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	expression.Consequence = p.parseBlock()
	if expression.Consequence == nil {
		return nil
	}

	if !p.peekTokenIs(token.ELSE) {
		return expression
	}
	p.nextToken()

	if p.peekTokenIs(token.IF) {
		p.nextToken()
		alt := p.parseIfExpression()
		if alt == nil {
			return nil
		}
		expression.Alternative = alt
		return expression
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	alt := p.parseBlock()
	if alt == nil {
		return nil
	}
	expression.Alternative = alt
	return expression
}

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	exp := &ast.CallExpression{Token: p.curToken, Function: function}
	args, ok := p.parseExpressionList(token.RPAREN)
	if !ok {
		return nil
	}
	exp.Arguments = args
	return exp
}

// parseExpressionList parses comma-separated expressions up to end; curToken
// is the opening delimiter on entry and end on exit.
func (p *Parser) parseExpressionList(end token.TokenType) ([]ast.Expression, bool) {
	var list []ast.Expression
	if p.peekTokenIs(end) {
		p.nextToken()
		return list, true
	}
	for {
		p.nextToken()
		expr := p.parseExpression(LOWEST)
		if expr == nil {
			return nil, false
		}
		list = append(list, expr)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			if p.peekTokenIs(end) {
				p.nextToken()
				return list, true
			}
			continue
		}
		if !p.expectPeek(end) {
			return nil, false
		}
		return list, true
	}
}

// parseDotExpression parses x.f (field) or x.f(args) (method call).
func (p *Parser) parseDotExpression(left ast.Expression) ast.Expression {
	dot := p.curToken
	p.nextToken()
	if !p.curTokenIs(token.IDENT) && !p.curTokenIs(token.INT) {
		p.errorf(diagnostics.ErrP001, p.curToken, "expected field or method name, got %s", describeTok(p.curToken))
		return nil
	}
	name := p.curToken.Lexeme

	if p.curTokenIs(token.IDENT) && p.peekTokenIs(token.LPAREN) {
		method := &ast.Identifier{Token: p.curToken, Value: name}
		p.nextToken()
		args, ok := p.parseExpressionList(token.RPAREN)
		if !ok {
			return nil
		}
		return &ast.MethodCallExpression{Token: dot, Receiver: left, Method: method, Arguments: args}
	}
	return &ast.FieldAccessExpression{Token: dot, Left: left, Field: name}
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	exp := &ast.IndexExpression{Token: p.curToken, Left: left}
	p.nextToken()
	exp.Index = p.parseExpression(LOWEST)
	if exp.Index == nil {
		return nil
	}
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return exp
}

func (p *Parser) parseCastExpression(left ast.Expression) ast.Expression {
	exp := &ast.CastExpression{Token: p.curToken, Left: left}
	p.nextToken()
	exp.Type = p.parseType()
	if exp.Type == nil {
		return nil
	}
	return exp
}
