package ast

import (
	"strings"

	"github.com/funvibe/adjoint/internal/token"
)

// Identifier is a single-segment name.
type Identifier struct {
	Token token.Token // the token.IDENT token
	Value string
}

func (i *Identifier) expressionNode()       {}
func (i *Identifier) TokenLiteral() string  { return i.Token.Lexeme }
func (i *Identifier) GetToken() token.Token { return i.Token }
func (i *Identifier) String() string        { return i.Value }

// PathExpression is a multi-segment path a::b::c, optionally carrying a
// turbofish a::<T>.
type PathExpression struct {
	Token    token.Token // first segment
	Segments []string
	TypeArgs []*TypeExpr
}

func (pe *PathExpression) expressionNode()       {}
func (pe *PathExpression) TokenLiteral() string  { return pe.Token.Lexeme }
func (pe *PathExpression) GetToken() token.Token { return pe.Token }
func (pe *PathExpression) String() string {
	s := strings.Join(pe.Segments, "::")
	if len(pe.TypeArgs) > 0 {
		args := make([]string, len(pe.TypeArgs))
		for i, a := range pe.TypeArgs {
			args[i] = a.String()
		}
		s += "::<" + strings.Join(args, ", ") + ">"
	}
	return s
}

// NumberLiteral keeps the source text so emitted constants round-trip exactly.
type NumberLiteral struct {
	Token  token.Token
	Text   string // digits without suffix or separators
	Float  bool
	Suffix string // "", "f32", "f64", "i32"
}

func (nl *NumberLiteral) expressionNode()       {}
func (nl *NumberLiteral) TokenLiteral() string  { return nl.Token.Lexeme }
func (nl *NumberLiteral) GetToken() token.Token { return nl.Token }
func (nl *NumberLiteral) String() string        { return nl.Text + nl.Suffix }

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (b *BooleanLiteral) expressionNode()       {}
func (b *BooleanLiteral) TokenLiteral() string  { return b.Token.Lexeme }
func (b *BooleanLiteral) GetToken() token.Token { return b.Token }
func (b *BooleanLiteral) String() string        { return b.Token.Lexeme }

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()       {}
func (sl *StringLiteral) TokenLiteral() string  { return sl.Token.Lexeme }
func (sl *StringLiteral) GetToken() token.Token { return sl.Token }
func (sl *StringLiteral) String() string        { return sl.Token.Lexeme }

// PrefixExpression is -x or !x.
type PrefixExpression struct {
	Token    token.Token // The prefix token, e.g. ! or -
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()       {}
func (pe *PrefixExpression) TokenLiteral() string  { return pe.Token.Lexeme }
func (pe *PrefixExpression) GetToken() token.Token { return pe.Token }
func (pe *PrefixExpression) String() string {
	return "(" + pe.Operator + pe.Right.String() + ")"
}

type InfixExpression struct {
	Token    token.Token // The operator token, e.g. +
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()       {}
func (ie *InfixExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *InfixExpression) GetToken() token.Token { return ie.Token }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}

// CallExpression is f(args). Function is an *Identifier or *PathExpression.
type CallExpression struct {
	Token     token.Token // The '(' token
	Function  Expression
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()       {}
func (ce *CallExpression) TokenLiteral() string  { return ce.Token.Lexeme }
func (ce *CallExpression) GetToken() token.Token { return ce.Token }
func (ce *CallExpression) String() string {
	return ce.Function.String() + "(" + joinExprs(ce.Arguments) + ")"
}

// MethodCallExpression is recv.method(args).
type MethodCallExpression struct {
	Token     token.Token // The '.' token
	Receiver  Expression
	Method    *Identifier
	Arguments []Expression
}

func (mc *MethodCallExpression) expressionNode()       {}
func (mc *MethodCallExpression) TokenLiteral() string  { return mc.Token.Lexeme }
func (mc *MethodCallExpression) GetToken() token.Token { return mc.Token }
func (mc *MethodCallExpression) String() string {
	return mc.Receiver.String() + "." + mc.Method.Value + "(" + joinExprs(mc.Arguments) + ")"
}

// FieldAccessExpression is v.x (a lane read on a vector).
type FieldAccessExpression struct {
	Token token.Token // The '.' token
	Left  Expression
	Field string
}

func (fa *FieldAccessExpression) expressionNode()       {}
func (fa *FieldAccessExpression) TokenLiteral() string  { return fa.Token.Lexeme }
func (fa *FieldAccessExpression) GetToken() token.Token { return fa.Token }
func (fa *FieldAccessExpression) String() string        { return fa.Left.String() + "." + fa.Field }

// BlockExpression is { stmts; value }. Value is nil when the block ends
// with a statement.
type BlockExpression struct {
	Token      token.Token // The '{' token
	Statements []Statement
	Value      Expression
}

func (be *BlockExpression) expressionNode()       {}
func (be *BlockExpression) TokenLiteral() string  { return be.Token.Lexeme }
func (be *BlockExpression) GetToken() token.Token { return be.Token }
func (be *BlockExpression) String() string {
	parts := make([]string, 0, len(be.Statements)+1)
	for _, s := range be.Statements {
		parts = append(parts, s.String())
	}
	if be.Value != nil {
		parts = append(parts, be.Value.String())
	}
	if len(parts) == 0 {
		return "{ }"
	}
	return "{ " + strings.Join(parts, " ") + " }"
}

// IfExpression is if cond { ... } [else { ... } | else if ...].
type IfExpression struct {
	Token       token.Token // The 'if' token
	Condition   Expression
	Consequence *BlockExpression
	Alternative Expression // *BlockExpression, *IfExpression or nil
}

func (ie *IfExpression) expressionNode()       {}
func (ie *IfExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *IfExpression) GetToken() token.Token { return ie.Token }
func (ie *IfExpression) String() string {
	s := "if " + ie.Condition.String() + " " + ie.Consequence.String()
	if ie.Alternative != nil {
		s += " else " + ie.Alternative.String()
	}
	return s
}

// ReferenceExpression is &x or &mut x.
type ReferenceExpression struct {
	Token   token.Token // The '&' token
	Mutable bool
	Right   Expression
}

func (re *ReferenceExpression) expressionNode()       {}
func (re *ReferenceExpression) TokenLiteral() string  { return re.Token.Lexeme }
func (re *ReferenceExpression) GetToken() token.Token { return re.Token }
func (re *ReferenceExpression) String() string {
	if re.Mutable {
		return "(&mut " + re.Right.String() + ")"
	}
	return "(&" + re.Right.String() + ")"
}

// CastExpression is x as T.
type CastExpression struct {
	Token token.Token // The 'as' token
	Left  Expression
	Type  *TypeExpr
}

func (ce *CastExpression) expressionNode()       {}
func (ce *CastExpression) TokenLiteral() string  { return ce.Token.Lexeme }
func (ce *CastExpression) GetToken() token.Token { return ce.Token }
func (ce *CastExpression) String() string {
	return "(" + ce.Left.String() + " as " + ce.Type.String() + ")"
}

// IndexExpression is x[i].
type IndexExpression struct {
	Token token.Token // The '[' token
	Left  Expression
	Index Expression
}

func (ie *IndexExpression) expressionNode()       {}
func (ie *IndexExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *IndexExpression) GetToken() token.Token { return ie.Token }
func (ie *IndexExpression) String() string {
	return ie.Left.String() + "[" + ie.Index.String() + "]"
}

func joinExprs(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
