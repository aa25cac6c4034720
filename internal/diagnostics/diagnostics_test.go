package diagnostics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/funvibe/adjoint/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticErrorFormat(t *testing.T) {
	err := NewError(ErrL002, token.Token{Line: 3, Column: 7}, "undefined variable %q", "y")
	err.File = "shade.adj"
	assert.Equal(t, `shade.adj:3:7: [L002] undefined variable "y"`, err.Error())

	bare := NewInternalError(ErrA001, "t3 is defined twice")
	assert.Equal(t, "[A001] internal: t3 is defined twice", bare.Error())
}

func TestDiagnosticErrorKinds(t *testing.T) {
	cases := map[ErrorCode]error{
		ErrP001: SyntaxError,
		ErrL001: UnsupportedConstruct,
		ErrL002: UndefinedVariable,
		ErrA001: DuplicateDefinition,
		ErrG001: UnsupportedLowering,
	}
	for code, kind := range cases {
		err := NewError(code, token.Token{}, "boom")
		assert.True(t, errors.Is(err, kind), "code %s", code)
		assert.Equal(t, kind, err.Kind())
	}
	assert.False(t, errors.Is(NewError(ErrP001, token.Token{}, "x"), UndefinedVariable))
}

func TestErrorList(t *testing.T) {
	var empty ErrorList
	require.NoError(t, empty.Err())

	list := ErrorList{
		NewError(ErrP001, token.Token{Line: 1, Column: 1}, "unexpected ';'"),
		NewError(ErrL002, token.Token{Line: 2, Column: 5}, "undefined variable %q", "z"),
	}
	err := list.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, UndefinedVariable))
	assert.True(t, errors.Is(fmt.Errorf("compile: %w", err), SyntaxError))
	assert.False(t, errors.Is(err, UnsupportedLowering))
	assert.Contains(t, err.Error(), "2 errors")
}
