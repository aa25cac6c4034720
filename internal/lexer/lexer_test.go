package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/adjoint/internal/pipeline"
	"github.com/funvibe/adjoint/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `fn g(x: f32, const k: f32) -> f32 {
    let y = if x >= 1.0 { a::b(x) } else { x.y };
    y += 2_i32 << 1; // trailing
    /* block */ !y != "s\n" && y || &mut y
}`

	tests := []struct {
		expectedType   token.TokenType
		expectedLexeme string
	}{
		{token.FN, "fn"},
		{token.IDENT, "g"},
		{token.LPAREN, "("},
		{token.IDENT, "x"},
		{token.COLON, ":"},
		{token.IDENT, "f32"},
		{token.COMMA, ","},
		{token.CONST, "const"},
		{token.IDENT, "k"},
		{token.COLON, ":"},
		{token.IDENT, "f32"},
		{token.RPAREN, ")"},
		{token.ARROW, "->"},
		{token.IDENT, "f32"},
		{token.LBRACE, "{"},
		{token.LET, "let"},
		{token.IDENT, "y"},
		{token.ASSIGN, "="},
		{token.IF, "if"},
		{token.IDENT, "x"},
		{token.GTE, ">="},
		{token.FLOAT, "1.0"},
		{token.LBRACE, "{"},
		{token.IDENT, "a"},
		{token.COLON_COLON, "::"},
		{token.IDENT, "b"},
		{token.LPAREN, "("},
		{token.IDENT, "x"},
		{token.RPAREN, ")"},
		{token.RBRACE, "}"},
		{token.ELSE, "else"},
		{token.LBRACE, "{"},
		{token.IDENT, "x"},
		{token.DOT, "."},
		{token.IDENT, "y"},
		{token.RBRACE, "}"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "y"},
		{token.PLUS_ASSIGN, "+="},
		{token.INT, "2_i32"},
		{token.SHL, "<<"},
		{token.INT, "1"},
		{token.SEMICOLON, ";"},
		{token.BANG, "!"},
		{token.IDENT, "y"},
		{token.NOT_EQ, "!="},
		{token.STRING, `"s\n"`},
		{token.AND, "&&"},
		{token.IDENT, "y"},
		{token.OR, "||"},
		{token.AMPERSAND, "&"},
		{token.MUT, "mut"},
		{token.IDENT, "y"},
		{token.RBRACE, "}"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		require.Equal(t, tt.expectedType, tok.Type, "tests[%d] lexeme %q", i, tok.Lexeme)
		assert.Equal(t, tt.expectedLexeme, tok.Lexeme, "tests[%d]", i)
	}
}

func TestNumberLiterals(t *testing.T) {
	tests := []struct {
		input   string
		typ     token.TokenType
		literal string
	}{
		{"42", token.INT, "42"},
		{"1_000", token.INT, "1000"},
		{"0xff", token.INT, "0xff"},
		{"1.5", token.FLOAT, "1.5"},
		{"2e3", token.FLOAT, "2e3"},
		{"1.5e-2", token.FLOAT, "1.5e-2"},
		{"3f32", token.FLOAT, "3"},
		{"0.25f64", token.FLOAT, "0.25"},
		{"7i32", token.INT, "7"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := New(tt.input).NextToken()
			assert.Equal(t, tt.typ, tok.Type)
			assert.Equal(t, tt.literal, tok.Literal)
			assert.Equal(t, tt.input, tok.Lexeme)
		})
	}
}

func TestIllegalTokens(t *testing.T) {
	for _, input := range []string{"1.5i32", "3u8", `"open`, "@", `"\q"`} {
		t.Run(input, func(t *testing.T) {
			tok := New(input).NextToken()
			assert.Equal(t, token.ILLEGAL, tok.Type)
			assert.NotEmpty(t, tok.Literal)
		})
	}
}

func TestPositions(t *testing.T) {
	toks := Tokenize("fn f()\n  -> x")
	require.Len(t, toks, 7)
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 1, toks[0].Column)
	assert.Equal(t, 2, toks[4].Line)
	assert.Equal(t, 3, toks[4].Column)
	assert.Equal(t, token.EOF, toks[6].Type)
}

func TestLexerProcessorReportsIllegal(t *testing.T) {
	ctx := pipeline.NewContext("fn f() -> f32 { $ }", "bad.adj", nil)
	ctx = (&LexerProcessor{}).Process(ctx)
	require.Len(t, ctx.Errors, 1)
	assert.Equal(t, "bad.adj:1:17: [P001] unexpected character '$'", ctx.Errors[0].Error())
}
