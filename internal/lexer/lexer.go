package lexer

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/adjoint/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

// Tokenize lexes the whole input. The returned slice always ends with EOF.
func Tokenize(input string) []token.Token {
	l := New(input)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
		l.ch = r
		l.position = l.readPosition
		l.readPosition += w
		l.column++
		return
	}

	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	l.skipWhitespace()

	switch l.ch {
	case '=':
		if l.peekChar() == '=' {
			tok = l.twoCharToken(token.EQ)
		} else {
			tok = newToken(token.ASSIGN, l.ch, l.line, l.column)
		}
	case '+':
		if l.peekChar() == '=' {
			tok = l.twoCharToken(token.PLUS_ASSIGN)
		} else {
			tok = newToken(token.PLUS, l.ch, l.line, l.column)
		}
	case '-':
		if l.peekChar() == '>' {
			tok = l.twoCharToken(token.ARROW)
		} else if l.peekChar() == '=' {
			tok = l.twoCharToken(token.MINUS_ASSIGN)
		} else {
			tok = newToken(token.MINUS, l.ch, l.line, l.column)
		}
	case '*':
		if l.peekChar() == '=' {
			tok = l.twoCharToken(token.ASTERISK_ASSIGN)
		} else {
			tok = newToken(token.ASTERISK, l.ch, l.line, l.column)
		}
	case '/':
		if l.peekChar() == '=' {
			tok = l.twoCharToken(token.SLASH_ASSIGN)
		} else {
			tok = newToken(token.SLASH, l.ch, l.line, l.column)
		}
	case '%':
		if l.peekChar() == '=' {
			tok = l.twoCharToken(token.PERCENT_ASSIGN)
		} else {
			tok = newToken(token.PERCENT, l.ch, l.line, l.column)
		}
	case '!':
		if l.peekChar() == '=' {
			tok = l.twoCharToken(token.NOT_EQ)
		} else {
			tok = newToken(token.BANG, l.ch, l.line, l.column)
		}
	case '<':
		if l.peekChar() == '<' {
			tok = l.twoCharToken(token.SHL)
		} else if l.peekChar() == '=' {
			tok = l.twoCharToken(token.LTE)
		} else {
			tok = newToken(token.LT, l.ch, l.line, l.column)
		}
	case '>':
		if l.peekChar() == '>' {
			tok = l.twoCharToken(token.SHR)
		} else if l.peekChar() == '=' {
			tok = l.twoCharToken(token.GTE)
		} else {
			tok = newToken(token.GT, l.ch, l.line, l.column)
		}
	case '&':
		if l.peekChar() == '&' {
			tok = l.twoCharToken(token.AND)
		} else {
			tok = newToken(token.AMPERSAND, l.ch, l.line, l.column)
		}
	case '|':
		if l.peekChar() == '|' {
			tok = l.twoCharToken(token.OR)
		} else {
			tok = newToken(token.PIPE, l.ch, l.line, l.column)
		}
	case '^':
		tok = newToken(token.CARET, l.ch, l.line, l.column)
	case ':':
		if l.peekChar() == ':' {
			tok = l.twoCharToken(token.COLON_COLON)
		} else {
			tok = newToken(token.COLON, l.ch, l.line, l.column)
		}
	case ',':
		tok = newToken(token.COMMA, l.ch, l.line, l.column)
	case ';':
		tok = newToken(token.SEMICOLON, l.ch, l.line, l.column)
	case '.':
		tok = newToken(token.DOT, l.ch, l.line, l.column)
	case '(':
		tok = newToken(token.LPAREN, l.ch, l.line, l.column)
	case ')':
		tok = newToken(token.RPAREN, l.ch, l.line, l.column)
	case '{':
		tok = newToken(token.LBRACE, l.ch, l.line, l.column)
	case '}':
		tok = newToken(token.RBRACE, l.ch, l.line, l.column)
	case '[':
		tok = newToken(token.LBRACKET, l.ch, l.line, l.column)
	case ']':
		tok = newToken(token.RBRACKET, l.ch, l.line, l.column)
	case '"':
		return l.readString()
	case 0:
		tok.Lexeme = ""
		tok.Type = token.EOF
		tok.Line = l.line
		tok.Column = l.column
	default:
		if isLetter(l.ch) {
			startLine, startCol := l.line, l.column
			lexeme := l.readIdentifier()
			tok.Lexeme = lexeme
			tok.Type = token.LookupIdent(lexeme)
			tok.Literal = lexeme
			tok.Line = startLine
			tok.Column = startCol
			return tok
		} else if isDigit(l.ch) {
			return l.readNumber()
		} else {
			tok = newToken(token.ILLEGAL, l.ch, l.line, l.column)
			tok.Literal = "unexpected character " + strconv.QuoteRune(l.ch)
		}
	}

	l.readChar()
	return tok
}

// twoCharToken consumes the next char and builds a token from both.
func (l *Lexer) twoCharToken(t token.TokenType) token.Token {
	line, col := l.line, l.column
	ch := l.ch
	l.readChar()
	literal := string(ch) + string(l.ch)
	return token.Token{Type: t, Lexeme: literal, Literal: literal, Line: line, Column: col}
}

// readString reads a double-quoted string. Escapes follow Go syntax.
func (l *Lexer) readString() token.Token {
	startLine, startCol := l.line, l.column
	start := l.position
	for {
		l.readChar()
		if l.ch == '\\' {
			l.readChar()
			continue
		}
		if l.ch == '"' || l.ch == 0 || l.ch == '\n' {
			break
		}
	}
	if l.ch != '"' {
		return token.Token{Type: token.ILLEGAL, Lexeme: l.input[start:l.position], Literal: "unterminated string literal", Line: startLine, Column: startCol}
	}
	raw := l.input[start : l.position+1]
	l.readChar()

	val, err := strconv.Unquote(raw)
	if err != nil {
		return token.Token{Type: token.ILLEGAL, Lexeme: raw, Literal: "invalid string literal: " + err.Error(), Line: startLine, Column: startCol}
	}
	return token.Token{Type: token.STRING, Lexeme: raw, Literal: val, Line: startLine, Column: startCol}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads an integer or float literal with an optional type
// suffix (1.0f32, 2_i32). Literal holds the number text without suffix or
// digit separators; the suffix is the remainder of Lexeme.
func (l *Lexer) readNumber() token.Token {
	startLine, startCol := l.line, l.column
	position := l.position
	isFloat := false
	isHex := false

	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		isHex = true
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	} else {
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
		if l.ch == '.' && isDigit(l.peekChar()) {
			isFloat = true
			l.readChar()
			for isDigit(l.ch) || l.ch == '_' {
				l.readChar()
			}
		}
		if l.ch == 'e' || l.ch == 'E' {
			next := l.peekChar()
			if isDigit(next) || next == '+' || next == '-' {
				isFloat = true
				l.readChar()
				if l.ch == '+' || l.ch == '-' {
					l.readChar()
				}
				for isDigit(l.ch) {
					l.readChar()
				}
			}
		}
	}
	numberEnd := l.position

	// Type suffix: f32, f64, i32
	suffixStart := l.position
	if !isHex && isLetter(l.ch) {
		l.readIdentifier()
	}
	suffix := l.input[suffixStart:l.position]

	lexeme := l.input[position:l.position]
	text := stripSeparators(l.input[position:numberEnd])

	tok := token.Token{Type: token.INT, Lexeme: lexeme, Literal: text, Line: startLine, Column: startCol}
	switch suffix {
	case "":
	case "f32", "f64":
		tok.Type = token.FLOAT
	case "i32":
		if isFloat {
			tok.Type = token.ILLEGAL
			tok.Literal = "integer suffix on float literal " + lexeme
			return tok
		}
	default:
		tok.Type = token.ILLEGAL
		tok.Literal = "invalid suffix " + strconv.Quote(suffix) + " on number literal"
		return tok
	}
	if isFloat {
		tok.Type = token.FLOAT
	}

	if tok.Type == token.FLOAT {
		if _, err := strconv.ParseFloat(text, 64); err != nil {
			tok.Type = token.ILLEGAL
			tok.Literal = "invalid float literal " + lexeme
		}
	} else if _, err := strconv.ParseInt(text, 0, 64); err != nil {
		tok.Type = token.ILLEGAL
		tok.Literal = "invalid integer literal " + lexeme
	}
	return tok
}

func stripSeparators(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || (ch >= 0x80 && unicode.IsLetter(ch))
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func newToken(tokenType token.TokenType, ch rune, line, col int) token.Token {
	literal := string(ch)
	return token.Token{Type: tokenType, Lexeme: literal, Literal: literal, Line: line, Column: col}
}

func (l *Lexer) skipWhitespace() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
			l.readChar()
		}
		// Handle comments
		if l.ch == '/' {
			if l.peekChar() == '/' {
				l.readChar() // consume first /
				l.readChar() // consume second /
				for l.ch != '\n' && l.ch != 0 {
					l.readChar()
				}
				continue
			} else if l.peekChar() == '*' {
				l.readChar() // consume /
				l.readChar() // consume *
				for l.ch != 0 {
					if l.ch == '*' && l.peekChar() == '/' {
						l.readChar() // consume *
						l.readChar() // consume /
						break
					}
					l.readChar()
				}
				continue
			}
		}
		break
	}
}
