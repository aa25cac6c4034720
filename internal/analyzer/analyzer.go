// Package analyzer classifies every variable of a lowered function as
// constant or differentiable and records the order in which variables are
// defined.
//
// A variable is constant iff its binding is a literal, a string, a constant
// free identifier, or a reference to a constant variable. Call results are
// never constant, even when every operand is; no folding is attempted.
package analyzer

import (
	"github.com/funvibe/adjoint/internal/config"
	"github.com/funvibe/adjoint/internal/diagnostics"
	"github.com/funvibe/adjoint/internal/ir"
	"github.com/funvibe/adjoint/internal/symbols"
)

// NewRegistry builds the callee registry for mod: intrinsics, externs from
// cfg, and mod's own functions, which shadow both.
func NewRegistry(mod *ir.Module, cfg *config.Config) *symbols.Registry {
	reg := symbols.NewRegistry(cfg)
	for _, fn := range mod.Functions {
		params := make([]symbols.Kind, len(fn.Params))
		for i, p := range fn.Params {
			params[i] = symbols.KindOfType(p.Type)
		}
		sig := reg.DefineFunction(fn.Name, cfg.LiftedName(fn.Name), params, symbols.KindOfType(fn.ReturnType))
		sig.Int = symbols.IsIntType(fn.ReturnType)
	}
	return reg
}

// Analyze builds one symbol table per function of mod, in order.
func Analyze(mod *ir.Module, reg *symbols.Registry) ([]*symbols.Table, *diagnostics.DiagnosticError) {
	tables := make([]*symbols.Table, 0, len(mod.Functions))
	for _, fn := range mod.Functions {
		tbl, err := AnalyzeFunction(fn, reg)
		if err != nil {
			return nil, err
		}
		tables = append(tables, tbl)
	}
	return tables, nil
}

// AnalyzeFunction defines fn's parameters, then walks its body top to
// bottom, visiting both arms of a conditional before the conditional's own
// binding.
func AnalyzeFunction(fn *ir.Function, reg *symbols.Registry) (*symbols.Table, *diagnostics.DiagnosticError) {
	tbl := symbols.NewTable(fn.Name)

	for _, p := range fn.Params {
		rec := &symbols.VarRecord{
			Const: !p.Diff,
			Kind:  symbols.KindOfType(p.Type),
			Int:   symbols.IsIntType(p.Type),
			Pos:   fn.Pos,
		}
		if err := tbl.DefineParam(p.Var, rec); err != nil {
			return nil, diagnostics.NewError(diagnostics.ErrA001, fn.Pos, "%v", err)
		}
	}

	var failed *diagnostics.DiagnosticError
	fn.Body.Walk(func(l *ir.Let) {
		if failed != nil {
			return
		}
		rec := &symbols.VarRecord{
			Const: isConst(tbl, l.Expr),
			Kind:  kindOf(tbl, reg, l.Expr),
			Int:   isInt(tbl, reg, l.Expr),
			Pos:   l.Pos,
		}
		if err := tbl.Define(l.Var, rec); err != nil {
			failed = diagnostics.NewError(diagnostics.ErrA001, l.Pos, "%v", err)
		}
	})
	if failed != nil {
		return nil, failed
	}
	return tbl, nil
}

func isConst(tbl *symbols.Table, e ir.Expr) bool {
	switch expr := e.(type) {
	case *ir.AtomExpr:
		if expr.Atom.Kind == ir.AtomIdent {
			return expr.Atom.Const
		}
		return true
	case *ir.RefExpr:
		return tbl.IsConst(expr.Var)
	}
	return false
}

// isInt tracks i32 values so division between them stays integral.
func isInt(tbl *symbols.Table, reg *symbols.Registry, e ir.Expr) bool {
	switch expr := e.(type) {
	case *ir.AtomExpr:
		return expr.Atom.Kind == ir.AtomLiteral && expr.Atom.Tag == ir.I32
	case *ir.RefExpr:
		return tbl.IsInt(expr.Var)
	case *ir.CallExpr:
		if !expr.Callee.IsPrim() {
			sig, ok := reg.Lookup(expr.Callee.Path.String())
			return ok && sig.Int
		}
		switch expr.Callee.Prim {
		case ir.PrimNeg, ir.PrimAdd, ir.PrimSub, ir.PrimMul, ir.PrimDiv, ir.PrimRem,
			ir.PrimBitAnd, ir.PrimBitOr, ir.PrimShl, ir.PrimShr:
			for _, a := range expr.Args {
				if !tbl.IsInt(a) {
					return false
				}
			}
			return true
		}
	case *ir.CondExpr:
		then, _ := expr.Then.Return()
		els, _ := expr.Else.Return()
		return tbl.IsInt(then) && tbl.IsInt(els)
	}
	return false
}

func kindOf(tbl *symbols.Table, reg *symbols.Registry, e ir.Expr) symbols.Kind {
	switch expr := e.(type) {
	case *ir.AtomExpr:
		if expr.Atom.Kind == ir.AtomString {
			return symbols.String
		}
		return symbols.Scalar

	case *ir.RefExpr:
		return tbl.KindOf(expr.Var)

	case *ir.CallExpr:
		if !expr.Callee.IsPrim() {
			sig, ok := reg.Lookup(expr.Callee.Path.String())
			if !ok {
				return symbols.Unknown
			}
			return sig.Result
		}
		return primKind(tbl, expr)

	case *ir.CondExpr:
		then, _ := expr.Then.Return()
		els, _ := expr.Else.Return()
		return symbols.Join(tbl.KindOf(then), tbl.KindOf(els))
	}
	return symbols.Unknown
}

func primKind(tbl *symbols.Table, call *ir.CallExpr) symbols.Kind {
	switch call.Callee.Prim {
	case ir.PrimExtract:
		return symbols.Scalar
	case ir.PrimInsert:
		return tbl.KindOf(call.Args[0])
	case ir.PrimNeg, ir.PrimAdd, ir.PrimSub, ir.PrimMul, ir.PrimDiv, ir.PrimRem:
		result := symbols.Scalar
		for _, a := range call.Args {
			k := tbl.KindOf(a)
			switch {
			case !k.IsKnown() || k.IsString():
				return symbols.Unknown
			case k.IsVector():
				if result.IsVector() && result != k {
					return symbols.Unknown
				}
				result = k
			}
		}
		return result
	}
	return symbols.Scalar
}
