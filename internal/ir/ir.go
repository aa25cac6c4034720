// Package ir is the SSA-form intermediate representation produced by
// lowering. Expressions never nest: every operand is a variable bound by an
// earlier Let.
package ir

import (
	"errors"
	"fmt"
	"strings"

	"github.com/funvibe/adjoint/internal/token"
)

// ErrReturnAlreadySet is returned by Block.SetReturn on a second call.
var ErrReturnAlreadySet = errors.New("block return already set")

// Var is either a synthetic temporary or a renamed source variable.
type Var struct {
	Temp bool
	ID   int    // temporaries
	Name string // named variables
	Gen  int    // named variables
}

func Temp(id int) Var { return Var{Temp: true, ID: id} }

func Named(name string, gen int) Var { return Var{Name: name, Gen: gen} }

// String renders t<N> or <name>_<gen>. Underscores in names are doubled so
// that distinct (name, gen) pairs never collide.
func (v Var) String() string {
	if v.Temp {
		return fmt.Sprintf("t%d", v.ID)
	}
	return fmt.Sprintf("%s_%d", strings.ReplaceAll(v.Name, "_", "__"), v.Gen)
}

// Path is a segmented name a::b::c.
type Path []string

func (p Path) String() string { return strings.Join(p, "::") }

// PrimTag is the primitive type of a literal.
type PrimTag int

const (
	F32 PrimTag = iota
	F64
	I32
	Bool
)

var primTagNames = [...]string{F32: "f32", F64: "f64", I32: "i32", Bool: "bool"}

func (t PrimTag) String() string {
	if int(t) < len(primTagNames) {
		return primTagNames[t]
	}
	return fmt.Sprintf("PrimTag(%d)", int(t))
}

type AtomKind int

const (
	AtomLiteral AtomKind = iota
	AtomString
	AtomIdent
)

// Atom is a leaf value: a typed literal, a string, or a free identifier.
type Atom struct {
	Kind  AtomKind
	Text  string // literal text or string value
	Tag   PrimTag
	Path  Path // AtomIdent
	Const bool // AtomIdent
}

func (a Atom) String() string {
	switch a.Kind {
	case AtomString:
		return fmt.Sprintf("%q", a.Text)
	case AtomIdent:
		if a.Const {
			return "const " + a.Path.String()
		}
		return a.Path.String()
	}
	if a.Tag == Bool {
		return a.Text
	}
	return a.Text + a.Tag.String()
}

// Prim identifies a built-in operator.
type Prim int

const (
	PrimInvalid Prim = iota
	PrimNeg
	PrimAdd
	PrimSub
	PrimMul
	PrimDiv
	PrimRem
	PrimNot
	PrimAnd
	PrimOr
	PrimBitAnd
	PrimBitOr
	PrimShl
	PrimShr
	PrimEq
	PrimNe
	PrimLt
	PrimGt
	PrimLe
	PrimGe
	PrimExtract
	PrimInsert
)

var primNames = [...]string{
	PrimInvalid: "Invalid",
	PrimNeg:     "Neg",
	PrimAdd:     "Add",
	PrimSub:     "Sub",
	PrimMul:     "Mul",
	PrimDiv:     "Div",
	PrimRem:     "Rem",
	PrimNot:     "Not",
	PrimAnd:     "And",
	PrimOr:      "Or",
	PrimBitAnd:  "BitAnd",
	PrimBitOr:   "BitOr",
	PrimShl:     "Shl",
	PrimShr:     "Shr",
	PrimEq:      "Eq",
	PrimNe:      "Ne",
	PrimLt:      "Lt",
	PrimGt:      "Gt",
	PrimLe:      "Le",
	PrimGe:      "Ge",
	PrimExtract: "Extract",
	PrimInsert:  "Insert",
}

func (p Prim) String() string {
	if int(p) < len(primNames) {
		return primNames[p]
	}
	return fmt.Sprintf("Prim(%d)", int(p))
}

// IsComparison reports whether p yields a 0/1 boolean.
func (p Prim) IsComparison() bool {
	switch p {
	case PrimEq, PrimNe, PrimLt, PrimGt, PrimLe, PrimGe, PrimNot, PrimAnd, PrimOr:
		return true
	}
	return false
}

// Callee is either a primitive or a named function. Field is set for
// Extract and Insert.
type Callee struct {
	Prim  Prim
	Path  Path
	Field string
}

func (c Callee) IsPrim() bool { return c.Prim != PrimInvalid }

func (c Callee) String() string {
	if c.IsPrim() {
		if c.Field != "" {
			return c.Prim.String() + "." + c.Field
		}
		return c.Prim.String()
	}
	return c.Path.String()
}

// Expr is the right-hand side of a Let.
type Expr interface {
	exprNode()
	String() string
}

type AtomExpr struct {
	Atom Atom
}

type RefExpr struct {
	Var Var
}

type CallExpr struct {
	Callee Callee
	Args   []Var
}

// CondExpr selects between two nested blocks on Cond.
type CondExpr struct {
	Cond Var
	Then *Block
	Else *Block
}

func (*AtomExpr) exprNode() {}
func (*RefExpr) exprNode()  {}
func (*CallExpr) exprNode() {}
func (*CondExpr) exprNode() {}

func (e *AtomExpr) String() string { return e.Atom.String() }
func (e *RefExpr) String() string  { return e.Var.String() }
func (e *CallExpr) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	return e.Callee.String() + "(" + strings.Join(args, ", ") + ")"
}
func (e *CondExpr) String() string {
	return "if " + e.Cond.String() + " " + e.Then.String() + " else " + e.Else.String()
}

// Let binds exactly one variable to exactly one expression. Pos is the
// token of the construct that produced it.
type Let struct {
	Var  Var
	Expr Expr
	Pos  token.Token
}

// Block is an ordered list of bindings and the variable it yields.
type Block struct {
	Lets   []*Let
	ret    Var
	hasRet bool
}

func NewBlock() *Block { return &Block{} }

func (b *Block) Push(l *Let) { b.Lets = append(b.Lets, l) }

// SetReturn records the block's result. It fails if called twice.
func (b *Block) SetReturn(v Var) error {
	if b.hasRet {
		return fmt.Errorf("%w: %s then %s", ErrReturnAlreadySet, b.ret, v)
	}
	b.ret = v
	b.hasRet = true
	return nil
}

// Return returns the block's result and whether it was set.
func (b *Block) Return() (Var, bool) { return b.ret, b.hasRet }

// Splice appends other's bindings to b.
func (b *Block) Splice(other *Block) { b.Lets = append(b.Lets, other.Lets...) }

// Param is a function parameter. Diff is false for const parameters.
type Param struct {
	Var  Var
	Type string
	Diff bool
}

type Function struct {
	Name       string
	Params     []Param
	Body       *Block
	ReturnType string
	Pos        token.Token
}

// Module is the lowered form of one source file.
type Module struct {
	File      string
	Functions []*Function
}

// Walk calls fn for every Let in b, depth first, visiting the arms of a
// conditional before the conditional's own binding.
func (b *Block) Walk(fn func(*Let)) {
	for _, l := range b.Lets {
		if c, ok := l.Expr.(*CondExpr); ok {
			c.Then.Walk(fn)
			c.Else.Walk(fn)
		}
		fn(l)
	}
}
