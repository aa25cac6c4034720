package token

import "fmt"

type TokenType string

type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{}
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %d:%d", t.Type, t.Lexeme, t.Line, t.Column)
}

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	IDENT  TokenType = "IDENT"
	INT    TokenType = "INT"
	FLOAT  TokenType = "FLOAT"
	STRING TokenType = "STRING"

	// Operators
	ASSIGN    TokenType = "="
	PLUS      TokenType = "+"
	MINUS     TokenType = "-"
	ASTERISK  TokenType = "*"
	SLASH     TokenType = "/"
	PERCENT   TokenType = "%"
	BANG      TokenType = "!"
	AMPERSAND TokenType = "&"
	PIPE      TokenType = "|"
	CARET     TokenType = "^"
	AND       TokenType = "&&"
	OR        TokenType = "||"
	SHL       TokenType = "<<"
	SHR       TokenType = ">>"
	EQ        TokenType = "=="
	NOT_EQ    TokenType = "!="
	LT        TokenType = "<"
	GT        TokenType = ">"
	LTE       TokenType = "<="
	GTE       TokenType = ">="
	ARROW     TokenType = "->"

	PLUS_ASSIGN     TokenType = "+="
	MINUS_ASSIGN    TokenType = "-="
	ASTERISK_ASSIGN TokenType = "*="
	SLASH_ASSIGN    TokenType = "/="
	PERCENT_ASSIGN  TokenType = "%="

	// Delimiters
	COMMA       TokenType = ","
	SEMICOLON   TokenType = ";"
	COLON       TokenType = ":"
	COLON_COLON TokenType = "::"
	DOT         TokenType = "."
	LPAREN      TokenType = "("
	RPAREN      TokenType = ")"
	LBRACE      TokenType = "{"
	RBRACE      TokenType = "}"
	LBRACKET    TokenType = "["
	RBRACKET    TokenType = "]"

	// Keywords
	FN     TokenType = "FN"
	LET    TokenType = "LET"
	MUT    TokenType = "MUT"
	CONST  TokenType = "CONST"
	IF     TokenType = "IF"
	ELSE   TokenType = "ELSE"
	RETURN TokenType = "RETURN"
	TRUE   TokenType = "TRUE"
	FALSE  TokenType = "FALSE"
	AS     TokenType = "AS"
	WHILE  TokenType = "WHILE"
	FOR    TokenType = "FOR"
	LOOP   TokenType = "LOOP"
)

var keywords = map[string]TokenType{
	"fn":     FN,
	"let":    LET,
	"mut":    MUT,
	"const":  CONST,
	"if":     IF,
	"else":   ELSE,
	"return": RETURN,
	"true":   TRUE,
	"false":  FALSE,
	"as":     AS,
	"while":  WHILE,
	"for":    FOR,
	"loop":   LOOP,
}

// LookupIdent returns the keyword type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// CompoundBase maps a compound assignment operator to its binary operator.
var CompoundBase = map[TokenType]TokenType{
	PLUS_ASSIGN:     PLUS,
	MINUS_ASSIGN:    MINUS,
	ASTERISK_ASSIGN: ASTERISK,
	SLASH_ASSIGN:    SLASH,
	PERCENT_ASSIGN:  PERCENT,
}
