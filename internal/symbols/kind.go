package symbols

import (
	"fmt"

	"github.com/funvibe/adjoint/internal/config"
)

type KindClass int

const (
	KindUnknown KindClass = iota
	KindScalar
	KindVector
	KindString
)

// Kind is the runtime shape of a value: it decides which Go type holds it.
type Kind struct {
	Class KindClass
	Lanes int // KindVector only
}

var (
	Unknown = Kind{}
	Scalar  = Kind{Class: KindScalar}
	String  = Kind{Class: KindString}
)

func Vector(lanes int) Kind { return Kind{Class: KindVector, Lanes: lanes} }

func (k Kind) IsScalar() bool { return k.Class == KindScalar }
func (k Kind) IsVector() bool { return k.Class == KindVector }
func (k Kind) IsString() bool { return k.Class == KindString }
func (k Kind) IsKnown() bool  { return k.Class != KindUnknown }

func (k Kind) String() string {
	switch k.Class {
	case KindScalar:
		return "scalar"
	case KindVector:
		return fmt.Sprintf("vec%d", k.Lanes)
	case KindString:
		return "string"
	}
	return "unknown"
}

// KindOfType maps a source type name to its kind. Unliftable types are
// Unknown.
func KindOfType(name string) Kind {
	if config.ScalarTypeNames[name] {
		return Scalar
	}
	if n, ok := config.VectorTypeNames[name]; ok {
		return Vector(n)
	}
	return Unknown
}

// Join is the common kind of two conditional arms.
func Join(a, b Kind) Kind {
	if a == b {
		return a
	}
	return Unknown
}

// IsIntType reports whether a source type holds integers.
func IsIntType(name string) bool { return name == "i32" }
