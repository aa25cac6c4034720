// Package diagnostics defines the compiler's error taxonomy.
//
// Every failure a compilation unit can hit is a *DiagnosticError carrying a
// stable code, the position that triggered it and a message. Codes group into
// five kinds (syntax, unsupported construct, undefined variable, duplicate
// definition, unsupported lowering); all of them abort the unit.
package diagnostics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/funvibe/adjoint/internal/token"
)

type ErrorCode string

const (
	ErrP001 ErrorCode = "P001" // unparseable input
	ErrL001 ErrorCode = "L001" // recognized but unhandled construct
	ErrL002 ErrorCode = "L002" // identifier not in scope
	ErrA001 ErrorCode = "A001" // variable defined twice (SSA invariant)
	ErrG001 ErrorCode = "G001" // generator cannot lower an IR shape
)

// Kind sentinels. A DiagnosticError matches the sentinel of its code's kind
// under errors.Is.
var (
	SyntaxError          = errors.New("syntax error")
	UnsupportedConstruct = errors.New("unsupported construct")
	UndefinedVariable    = errors.New("undefined variable")
	DuplicateDefinition  = errors.New("duplicate definition")
	UnsupportedLowering  = errors.New("unsupported lowering")
)

var kinds = map[ErrorCode]error{
	ErrP001: SyntaxError,
	ErrL001: UnsupportedConstruct,
	ErrL002: UndefinedVariable,
	ErrA001: DuplicateDefinition,
	ErrG001: UnsupportedLowering,
}

type DiagnosticError struct {
	Code    ErrorCode
	Token   token.Token
	File    string
	Message string
}

func NewError(code ErrorCode, tok token.Token, format string, args ...interface{}) *DiagnosticError {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &DiagnosticError{Code: code, Token: tok, Message: msg}
}

// NewInternalError reports a violated compiler invariant. It is not caused by
// the user's source, so it carries no position.
func NewInternalError(code ErrorCode, format string, args ...interface{}) *DiagnosticError {
	return NewError(code, token.Token{}, "internal: "+format, args...)
}

func (e *DiagnosticError) Error() string {
	var b strings.Builder
	if e.File != "" {
		b.WriteString(e.File)
		b.WriteString(":")
	}
	if e.Token.Line > 0 {
		fmt.Fprintf(&b, "%d:%d:", e.Token.Line, e.Token.Column)
	}
	if b.Len() > 0 {
		b.WriteString(" ")
	}
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	return b.String()
}

// Kind returns the taxonomy sentinel for the error's code.
func (e *DiagnosticError) Kind() error {
	return kinds[e.Code]
}

func (e *DiagnosticError) Is(target error) bool {
	return target != nil && kinds[e.Code] == target
}

// ErrorList is the error returned for a failed compilation unit.
type ErrorList []*DiagnosticError

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%d errors:\n%s", len(l), strings.Join(msgs, "\n"))
}

func (l ErrorList) Unwrap() []error {
	errs := make([]error, len(l))
	for i, e := range l {
		errs[i] = e
	}
	return errs
}

// Err returns nil for an empty list so callers can return it directly.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}
