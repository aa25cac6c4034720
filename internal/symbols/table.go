package symbols

import (
	"fmt"

	"github.com/funvibe/adjoint/internal/diagnostics"
	"github.com/funvibe/adjoint/internal/ir"
	"github.com/funvibe/adjoint/internal/token"
)

// VarRecord is what the analyzer knows about one variable.
type VarRecord struct {
	Const bool
	Kind  Kind
	// Int is set for scalars known to hold i32 values.
	Int bool
	Pos token.Token
}

// Table holds the records of one function. Parameters are defined first and
// are not part of the definition order.
type Table struct {
	Function string

	records map[ir.Var]*VarRecord
	params  []ir.Var
	order   []ir.Var
}

func NewTable(function string) *Table {
	return &Table{
		Function: function,
		records:  make(map[ir.Var]*VarRecord),
	}
}

// DefineParam records a parameter.
func (t *Table) DefineParam(v ir.Var, rec *VarRecord) error {
	if err := t.insert(v, rec); err != nil {
		return err
	}
	t.params = append(t.params, v)
	return nil
}

// Define records a bound variable and appends it to the definition order.
func (t *Table) Define(v ir.Var, rec *VarRecord) error {
	if err := t.insert(v, rec); err != nil {
		return err
	}
	t.order = append(t.order, v)
	return nil
}

func (t *Table) insert(v ir.Var, rec *VarRecord) error {
	if _, exists := t.records[v]; exists {
		return fmt.Errorf("%w: %s in %s", diagnostics.DuplicateDefinition, v, t.Function)
	}
	t.records[v] = rec
	return nil
}

func (t *Table) Lookup(v ir.Var) (*VarRecord, bool) {
	rec, ok := t.records[v]
	return rec, ok
}

// IsConst reports whether v is known and constant.
func (t *Table) IsConst(v ir.Var) bool {
	rec, ok := t.records[v]
	return ok && rec.Const
}

// IsInt reports whether v is known and integer-valued.
func (t *Table) IsInt(v ir.Var) bool {
	rec, ok := t.records[v]
	return ok && rec.Int
}

// KindOf returns v's kind, Unknown when v is not defined.
func (t *Table) KindOf(v ir.Var) Kind {
	if rec, ok := t.records[v]; ok {
		return rec.Kind
	}
	return Unknown
}

// Order returns bound variables in definition order.
func (t *Table) Order() []ir.Var { return t.order }

func (t *Table) Params() []ir.Var { return t.params }

func (t *Table) Len() int { return len(t.records) }
