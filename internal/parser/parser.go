package parser

import (
	"fmt"

	"github.com/funvibe/adjoint/internal/ast"
	"github.com/funvibe/adjoint/internal/diagnostics"
	"github.com/funvibe/adjoint/internal/pipeline"
	"github.com/funvibe/adjoint/internal/token"
)

// MaxRecursionDepth bounds expression nesting.
const MaxRecursionDepth = 500

const (
	_ int = iota
	LOWEST
	LOGIC_OR    // ||
	LOGIC_AND   // &&
	EQUALS      // == !=
	LESSGREATER // < > <= >=
	BIT_OR      // |
	BIT_XOR     // ^
	BIT_AND     // &
	SHIFT       // << >>
	SUM         // + -
	PRODUCT     // * / %
	CAST        // as
	PREFIX      // -x !x
	CALL        // f(x) x.f x[i]
)

var precedences = map[token.TokenType]int{
	token.OR:        LOGIC_OR,
	token.AND:       LOGIC_AND,
	token.EQ:        EQUALS,
	token.NOT_EQ:    EQUALS,
	token.LT:        LESSGREATER,
	token.GT:        LESSGREATER,
	token.LTE:       LESSGREATER,
	token.GTE:       LESSGREATER,
	token.PIPE:      BIT_OR,
	token.CARET:     BIT_XOR,
	token.AMPERSAND: BIT_AND,
	token.SHL:       SHIFT,
	token.SHR:       SHIFT,
	token.PLUS:      SUM,
	token.MINUS:     SUM,
	token.ASTERISK:  PRODUCT,
	token.SLASH:     PRODUCT,
	token.PERCENT:   PRODUCT,
	token.AS:        CAST,
	token.LPAREN:    CALL,
	token.DOT:       CALL,
	token.LBRACKET:  CALL,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	tokens []token.Token
	pos    int
	ctx    *pipeline.PipelineContext

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn

	depth int
	// failed is set once a function has reported an error; the parser then
	// resynchronises at the next top-level 'fn'.
	failed bool
}

// New creates a parser over toks, which must end with EOF. Diagnostics are
// appended to ctx.
func New(toks []token.Token, ctx *pipeline.PipelineContext) *Parser {
	if len(toks) == 0 || toks[len(toks)-1].Type != token.EOF {
		toks = append(toks, token.Token{Type: token.EOF})
	}
	p := &Parser{tokens: toks, ctx: ctx}

	p.prefixParseFns = map[token.TokenType]prefixParseFn{
		token.IDENT:     p.parseIdentifier,
		token.INT:       p.parseNumberLiteral,
		token.FLOAT:     p.parseNumberLiteral,
		token.STRING:    p.parseStringLiteral,
		token.TRUE:      p.parseBoolean,
		token.FALSE:     p.parseBoolean,
		token.MINUS:     p.parsePrefixExpression,
		token.BANG:      p.parsePrefixExpression,
		token.AMPERSAND: p.parseReferenceExpression,
		token.AND:       p.parseReferenceExpression,
		token.LPAREN:    p.parseGroupedExpression,
		token.LBRACE:    p.parseBlockAsExpression,
		token.IF:        p.parseIfExpression,
	}

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	for _, tt := range []token.TokenType{
		token.OR, token.AND, token.EQ, token.NOT_EQ,
		token.LT, token.GT, token.LTE, token.GTE,
		token.PIPE, token.CARET, token.AMPERSAND, token.SHL, token.SHR,
		token.PLUS, token.MINUS, token.ASTERISK, token.SLASH, token.PERCENT,
	} {
		p.infixParseFns[tt] = p.parseInfixExpression
	}
	p.infixParseFns[token.LPAREN] = p.parseCallExpression
	p.infixParseFns[token.DOT] = p.parseDotExpression
	p.infixParseFns[token.LBRACKET] = p.parseIndexExpression
	p.infixParseFns[token.AS] = p.parseCastExpression

	p.curToken = p.tokens[0]
	p.peekToken = p.at(1)
	return p
}

func (p *Parser) at(i int) token.Token {
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) nextToken() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	p.curToken = p.tokens[p.pos]
	p.peekToken = p.at(p.pos + 1)
}

func (p *Parser) curTokenIs(t token.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) errorf(code diagnostics.ErrorCode, tok token.Token, format string, args ...interface{}) {
	if p.failed {
		return
	}
	p.failed = true
	p.ctx.AddError(diagnostics.NewError(code, tok, format, args...))
}

func (p *Parser) peekError(t token.TokenType) {
	p.errorf(diagnostics.ErrP001, p.peekToken, "expected %s, got %s", describe(t), describeTok(p.peekToken))
}

func (p *Parser) noPrefixParseFnError(tok token.Token) {
	p.errorf(diagnostics.ErrP001, tok, "unexpected %s", describeTok(tok))
}

func describe(t token.TokenType) string {
	switch t {
	case token.IDENT:
		return "identifier"
	case token.EOF:
		return "end of file"
	}
	return fmt.Sprintf("'%s'", lexemeOf(t))
}

func describeTok(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of file"
	case token.IDENT:
		return fmt.Sprintf("identifier %q", tok.Lexeme)
	}
	return fmt.Sprintf("'%s'", tok.Lexeme)
}

// lexemeOf returns the source spelling of punctuation and keyword types.
func lexemeOf(t token.TokenType) string {
	for word, kw := range keywordSpelling {
		if kw == t {
			return word
		}
	}
	return string(t)
}

var keywordSpelling = map[string]token.TokenType{
	"fn": token.FN, "let": token.LET, "mut": token.MUT, "const": token.CONST,
	"if": token.IF, "else": token.ELSE, "return": token.RETURN, "as": token.AS,
}

// ParseUnit parses every function of the token stream.
func (p *Parser) ParseUnit() *ast.Unit {
	unit := &ast.Unit{File: p.ctx.FilePath}

	for !p.curTokenIs(token.EOF) {
		if !p.curTokenIs(token.FN) {
			p.errorf(diagnostics.ErrP001, p.curToken, "expected 'fn', got %s", describeTok(p.curToken))
			p.synchronize()
			continue
		}
		fn := p.parseFunctionDecl()
		if fn != nil && !p.failed {
			unit.Functions = append(unit.Functions, fn)
		}
		if p.failed {
			p.synchronize()
			continue
		}
		p.nextToken()
	}
	return unit
}

// synchronize skips to the next top-level 'fn' and clears the failure flag
// so every function reports at most one syntax error.
func (p *Parser) synchronize() {
	p.nextToken()
	for !p.curTokenIs(token.EOF) && !(p.curTokenIs(token.FN) && p.curToken.Column == 1) {
		p.nextToken()
	}
	p.failed = false
}
