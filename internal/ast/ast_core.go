package ast

import (
	"strings"

	"github.com/funvibe/adjoint/internal/token"
)

// TokenProvider is an interface for any AST node that can provide its primary token.
// This is useful for error reporting.
type TokenProvider interface {
	GetToken() token.Token
}

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
	String() string
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
	GetToken() token.Token
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
	GetToken() token.Token
}

// Unit is the root node: every function of one source file, in order.
type Unit struct {
	File      string
	Functions []*FunctionDecl
}

func (u *Unit) TokenLiteral() string {
	if len(u.Functions) > 0 {
		return u.Functions[0].TokenLiteral()
	}
	return ""
}

func (u *Unit) String() string {
	parts := make([]string, len(u.Functions))
	for i, f := range u.Functions {
		parts[i] = f.String()
	}
	return strings.Join(parts, "\n")
}

// FunctionDecl is fn name<T>(params) -> Ret { body }.
type FunctionDecl struct {
	Token      token.Token // The 'fn' token
	Name       *Identifier
	TypeParams []*Identifier // non-empty only for generic functions, which lowering rejects
	Params     []*Parameter
	ReturnType *TypeExpr // nil when omitted
	Body       *BlockExpression
}

func (fd *FunctionDecl) TokenLiteral() string  { return fd.Token.Lexeme }
func (fd *FunctionDecl) GetToken() token.Token { return fd.Token }
func (fd *FunctionDecl) String() string {
	var b strings.Builder
	b.WriteString("fn ")
	b.WriteString(fd.Name.Value)
	if len(fd.TypeParams) > 0 {
		names := make([]string, len(fd.TypeParams))
		for i, tp := range fd.TypeParams {
			names[i] = tp.Value
		}
		b.WriteString("<" + strings.Join(names, ", ") + ">")
	}
	params := make([]string, len(fd.Params))
	for i, p := range fd.Params {
		params[i] = p.String()
	}
	b.WriteString("(" + strings.Join(params, ", ") + ")")
	if fd.ReturnType != nil {
		b.WriteString(" -> " + fd.ReturnType.String())
	}
	b.WriteString(" ")
	b.WriteString(fd.Body.String())
	return b.String()
}

// Parameter is [const] name: Type.
type Parameter struct {
	Token token.Token // the name token
	Name  *Identifier
	Type  *TypeExpr
	Const bool // excluded from differentiation
}

func (p *Parameter) GetToken() token.Token { return p.Token }
func (p *Parameter) String() string {
	s := p.Name.Value + ": " + p.Type.String()
	if p.Const {
		s = "const " + s
	}
	return s
}

// TypeExpr is a named type, optionally behind a reference or with type
// arguments. Only plain paths are liftable.
type TypeExpr struct {
	Token   token.Token
	Path    []string
	Args    []*TypeExpr
	Ref     bool
	Mutable bool
}

func (te *TypeExpr) GetToken() token.Token { return te.Token }
func (te *TypeExpr) Name() string          { return strings.Join(te.Path, "::") }
func (te *TypeExpr) String() string {
	var b strings.Builder
	if te.Ref {
		b.WriteString("&")
		if te.Mutable {
			b.WriteString("mut ")
		}
	}
	b.WriteString(te.Name())
	if len(te.Args) > 0 {
		args := make([]string, len(te.Args))
		for i, a := range te.Args {
			args[i] = a.String()
		}
		b.WriteString("<" + strings.Join(args, ", ") + ">")
	}
	return b.String()
}

// LetStatement is let [mut] name [: Type] = value;
type LetStatement struct {
	Token   token.Token // The 'let' token
	Name    *Identifier
	Mutable bool
	Type    *TypeExpr // optional
	Value   Expression
}

func (ls *LetStatement) statementNode()        {}
func (ls *LetStatement) TokenLiteral() string  { return ls.Token.Lexeme }
func (ls *LetStatement) GetToken() token.Token { return ls.Token }
func (ls *LetStatement) String() string {
	s := "let "
	if ls.Mutable {
		s += "mut "
	}
	s += ls.Name.Value
	if ls.Type != nil {
		s += ": " + ls.Type.String()
	}
	return s + " = " + ls.Value.String() + ";"
}

// AssignStatement is target = value; or target op= value;
// Target is an *Identifier or a *FieldAccessExpression.
type AssignStatement struct {
	Token    token.Token // the operator token
	Target   Expression
	Operator string // "=", "+=", ...
	Value    Expression
}

func (as *AssignStatement) statementNode()        {}
func (as *AssignStatement) TokenLiteral() string  { return as.Token.Lexeme }
func (as *AssignStatement) GetToken() token.Token { return as.Token }
func (as *AssignStatement) String() string {
	return as.Target.String() + " " + as.Operator + " " + as.Value.String() + ";"
}

// ReturnStatement is return value;
type ReturnStatement struct {
	Token token.Token // The 'return' token
	Value Expression  // nil for a bare return
}

func (rs *ReturnStatement) statementNode()        {}
func (rs *ReturnStatement) TokenLiteral() string  { return rs.Token.Lexeme }
func (rs *ReturnStatement) GetToken() token.Token { return rs.Token }
func (rs *ReturnStatement) String() string {
	if rs.Value == nil {
		return "return;"
	}
	return "return " + rs.Value.String() + ";"
}

// ExpressionStatement is a statement that consists of a single expression.
type ExpressionStatement struct {
	Token      token.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()        {}
func (es *ExpressionStatement) TokenLiteral() string  { return es.Token.Lexeme }
func (es *ExpressionStatement) GetToken() token.Token { return es.Token }
func (es *ExpressionStatement) String() string        { return es.Expression.String() + ";" }

// LoopStatement is a while/for/loop statement. It is parsed only so that
// lowering can reject it with a precise diagnostic.
type LoopStatement struct {
	Token token.Token // 'while', 'for' or 'loop'
}

func (ls *LoopStatement) statementNode()        {}
func (ls *LoopStatement) TokenLiteral() string  { return ls.Token.Lexeme }
func (ls *LoopStatement) GetToken() token.Token { return ls.Token }
func (ls *LoopStatement) String() string        { return ls.Token.Lexeme + " { ... }" }
