package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/funvibe/adjoint/internal/config"
	"github.com/funvibe/adjoint/internal/diagnostics"
	"github.com/funvibe/adjoint/internal/ir"
	"github.com/funvibe/adjoint/internal/symbols"
)

const (
	rt   = RuntimeName + "."
	sig3 = "(%s, func(), func())"
)

// emitter writes the body of one lifted function.
type emitter struct {
	g   *Generator
	fn  *ir.Function
	tbl *symbols.Table
	buf strings.Builder
	// indent is the current nesting depth of conditional arms.
	indent int
}

func (e *emitter) line(format string, args ...interface{}) {
	e.buf.WriteString(strings.Repeat("\t", e.indent+1))
	fmt.Fprintf(&e.buf, format, args...)
	e.buf.WriteByte('\n')
}

func (e *emitter) failf(l *ir.Let, format string, args ...interface{}) *diagnostics.DiagnosticError {
	if l == nil {
		return lowering(e.fn, format, args...)
	}
	return diagnostics.NewError(diagnostics.ErrG001, l.Pos, "%s: %s", e.fn.Name, fmt.Sprintf(format, args...))
}

func (g *Generator) function(fn *ir.Function, tbl *symbols.Table) (string, *diagnostics.DiagnosticError) {
	e := &emitter{g: g, fn: fn, tbl: tbl}

	params := []string{"ctx *" + rt + "Context"}
	for _, p := range fn.Params {
		if !config.IsLiftable(p.Type) {
			return "", e.failf(nil, "parameter %s has type %s with no runtime lift", p.Var.Name, p.Type)
		}
		typ, _ := goType(tbl.KindOf(p.Var))
		params = append(params, p.Var.String()+" "+typ)
	}
	if !config.IsLiftable(fn.ReturnType) {
		return "", e.failf(nil, "return type %s has no runtime lift", fn.ReturnType)
	}
	retKind := symbols.KindOfType(fn.ReturnType)
	retType, _ := goType(retKind)

	if err := e.block(fn.Body); err != nil {
		return "", err
	}
	ret, ok := fn.Body.Return()
	if !ok {
		return "", diagnostics.NewInternalError(diagnostics.ErrG001, "%s: body has no result", fn.Name)
	}
	if k := tbl.KindOf(ret); k != retKind {
		return "", e.failf(nil, "result is %s, declared %s", k, fn.ReturnType)
	}
	e.line("return %s, tape.ResetGrad, tape.Backward", ret)

	body := e.buf.String()
	e.buf.Reset()
	if err := e.prologue(); err != nil {
		return "", err
	}

	name := g.cfg.LiftedName(fn.Name)
	var out strings.Builder
	fmt.Fprintf(&out, "// %s is the differentiable form of %s.\n", name, fn.Name)
	fmt.Fprintf(&out, "func %s(%s) "+sig3+" {\n", name, strings.Join(params, ", "), retType)
	out.WriteString(e.buf.String())
	out.WriteString(body)
	out.WriteString("}\n")
	return out.String(), nil
}

// prologue declares every bound variable up front, so conditional arms can
// assign them from inside their closures. Declarations take no arena slot:
// a binding owns a slot only once a recorded call assigns it, and the tape
// resets exactly those. Aliases of caller values are never reset.
func (e *emitter) prologue() *diagnostics.DiagnosticError {
	read := readSet(e.fn.Body)
	var unused []string

	e.line("tape := ctx.Tape()")
	for _, v := range e.tbl.Order() {
		rec, _ := e.tbl.Lookup(v)
		typ, ok := goType(rec.Kind)
		if !ok {
			return diagnostics.NewError(diagnostics.ErrG001, rec.Pos, "%s: cannot determine the type of %s", e.fn.Name, v)
		}
		e.line("var %s %s", v, typ)
		if !read[v] {
			unused = append(unused, v.String())
		}
	}
	for _, name := range unused {
		e.line("_ = %s", name)
	}
	return nil
}

// readSet collects every variable used as an operand or a result.
func readSet(b *ir.Block) map[ir.Var]bool {
	read := make(map[ir.Var]bool)
	var visit func(b *ir.Block)
	visit = func(b *ir.Block) {
		for _, l := range b.Lets {
			switch expr := l.Expr.(type) {
			case *ir.RefExpr:
				read[expr.Var] = true
			case *ir.CallExpr:
				for _, a := range expr.Args {
					read[a] = true
				}
			case *ir.CondExpr:
				read[expr.Cond] = true
				visit(expr.Then)
				visit(expr.Else)
			}
		}
		if v, ok := b.Return(); ok {
			read[v] = true
		}
	}
	visit(b)
	return read
}

func (e *emitter) block(b *ir.Block) *diagnostics.DiagnosticError {
	for _, l := range b.Lets {
		if err := e.let(l); err != nil {
			return err
		}
	}
	return nil
}

func (e *emitter) let(l *ir.Let) *diagnostics.DiagnosticError {
	switch expr := l.Expr.(type) {
	case *ir.AtomExpr:
		e.line("%s = %s", l.Var, e.atom(expr.Atom))
	case *ir.RefExpr:
		e.line("%s = %s", l.Var, expr.Var)
	case *ir.CallExpr:
		rhs, err := e.call(l, expr)
		if err != nil {
			return err
		}
		e.line("%s = %s", l.Var, rhs)
	case *ir.CondExpr:
		return e.conditional(l, expr)
	default:
		return e.failf(l, "unexpected binding %T", l.Expr)
	}
	return nil
}

func (e *emitter) atom(a ir.Atom) string {
	switch a.Kind {
	case ir.AtomString:
		return strconv.Quote(a.Text)
	case ir.AtomIdent:
		expr, ok := e.g.cfg.Constant(a.Path.String())
		if !ok {
			expr = strings.Join(a.Path, ".")
		}
		return rt + "Const(" + expr + ")"
	}
	if a.Tag == ir.Bool {
		return rt + "Bool(" + a.Text + ")"
	}
	return rt + "Const(" + a.Text + ")"
}

func (e *emitter) kinds(args []ir.Var) []symbols.Kind {
	ks := make([]symbols.Kind, len(args))
	for i, a := range args {
		ks[i] = e.tbl.KindOf(a)
	}
	return ks
}

func joinVars(args []ir.Var) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

// record wraps a runtime call so the current tape owns its closures.
func record(result symbols.Kind, call string) string {
	if result.IsVector() {
		return "tape.RecordVec(" + call + ")"
	}
	return "tape.Record(" + call + ")"
}

func (e *emitter) call(l *ir.Let, c *ir.CallExpr) (string, *diagnostics.DiagnosticError) {
	if c.Callee.IsPrim() {
		return e.prim(l, c)
	}

	name := c.Callee.Path.String()
	sig, ok := e.g.reg.Lookup(name)
	if !ok {
		return "", e.failf(l, "unknown function %s", name)
	}
	if err := sig.CheckArgs(e.kinds(c.Args)); err != nil {
		return "", e.failf(l, "%v", err)
	}

	switch sig.Kind {
	case symbols.CalleeConstructor:
		return rt + "Vec{" + joinVars(c.Args) + "}", nil
	case symbols.CalleeIntrinsic:
		return record(sig.Result, rt+sig.Go+"(ctx, "+joinVars(c.Args)+")"), nil
	}
	args := "ctx"
	if len(c.Args) > 0 {
		args += ", " + joinVars(c.Args)
	}
	return record(sig.Result, sig.Go+"("+args+")"), nil
}

var vectorPrims = map[ir.Prim]string{
	ir.PrimAdd: "VAdd",
	ir.PrimSub: "VSub",
	ir.PrimMul: "VMul",
	ir.PrimDiv: "VDiv",
}

func (e *emitter) prim(l *ir.Let, c *ir.CallExpr) (string, *diagnostics.DiagnosticError) {
	p := c.Callee.Prim
	ks := e.kinds(c.Args)

	switch p {
	case ir.PrimExtract, ir.PrimInsert:
		return e.lane(l, c, ks)
	}

	anyVector := false
	for i, k := range ks {
		switch {
		case k.IsVector():
			anyVector = true
		case !k.IsScalar():
			return "", e.failf(l, "operand %d of %s is %s", i+1, p, k)
		}
	}
	if !anyVector {
		name := p.String()
		if p == ir.PrimDiv && e.tbl.IsInt(c.Args[0]) && e.tbl.IsInt(c.Args[1]) {
			name = "IDiv"
		}
		return record(symbols.Scalar, rt+name+"(ctx, "+joinVars(c.Args)+")"), nil
	}

	result := symbols.Vector(0)
	for _, k := range ks {
		if k.IsVector() {
			result = k
			break
		}
	}

	switch {
	case p == ir.PrimNeg:
		return record(result, rt+"VNeg(ctx, "+c.Args[0].String()+")"), nil
	case len(ks) != 2:
	case ks[0] == ks[1] && vectorPrims[p] != "":
		return record(result, rt+vectorPrims[p]+"(ctx, "+joinVars(c.Args)+")"), nil
	case p == ir.PrimMul && ks[0].IsVector() && ks[1].IsScalar():
		return record(result, rt+"VScale(ctx, "+joinVars(c.Args)+")"), nil
	case p == ir.PrimMul && ks[0].IsScalar() && ks[1].IsVector():
		return record(result, rt+"VScale(ctx, "+c.Args[1].String()+", "+c.Args[0].String()+")"), nil
	case p == ir.PrimDiv && ks[0].IsVector() && ks[1].IsScalar():
		return record(result, rt+"VDivScalar(ctx, "+joinVars(c.Args)+")"), nil
	}

	parts := make([]string, len(ks))
	for i, k := range ks {
		parts[i] = k.String()
	}
	return "", e.failf(l, "no vector form of %s(%s)", p, strings.Join(parts, ", "))
}

func (e *emitter) lane(l *ir.Let, c *ir.CallExpr, ks []symbols.Kind) (string, *diagnostics.DiagnosticError) {
	base := ks[0]
	if !base.IsVector() {
		return "", e.failf(l, "field .%s of %s value", c.Callee.Field, base)
	}
	idx, ok := config.LaneNames[c.Callee.Field]
	if !ok || idx >= base.Lanes {
		return "", e.failf(l, "%s has no lane %s", base, c.Callee.Field)
	}
	if c.Callee.Prim == ir.PrimExtract {
		return fmt.Sprintf("%sExtract(%s, %d)", rt, c.Args[0], idx), nil
	}
	if !ks[1].IsScalar() {
		return "", e.failf(l, "cannot store %s in lane %s", ks[1], c.Callee.Field)
	}
	return fmt.Sprintf("%sInsert(%s, %d, %s)", rt, c.Args[0], idx, c.Args[1]), nil
}

// conditional evaluates only the taken arm. Each arm runs on its own tape
// so the enclosing tape records a single reset/backprop pair for it.
func (e *emitter) conditional(l *ir.Let, c *ir.CondExpr) *diagnostics.DiagnosticError {
	if k := e.tbl.KindOf(c.Cond); !k.IsScalar() {
		return e.failf(l, "condition is %s", k)
	}
	kind := e.tbl.KindOf(l.Var)
	if !kind.IsScalar() && !kind.IsVector() {
		return e.failf(l, "arms yield %s and cannot be selected", kind)
	}
	typ, _ := goType(kind)
	arm := "func() " + fmt.Sprintf(sig3, typ) + " {"

	e.line("%s = %sSelect(tape, %s, %s", l.Var, rt, c.Cond, arm)
	if err := e.arm(c.Then); err != nil {
		return err
	}
	e.line("}, %s", arm)
	if err := e.arm(c.Else); err != nil {
		return err
	}
	e.line("})")
	return nil
}

func (e *emitter) arm(b *ir.Block) *diagnostics.DiagnosticError {
	ret, ok := b.Return()
	if !ok {
		return diagnostics.NewInternalError(diagnostics.ErrG001, "%s: conditional arm has no result", e.fn.Name)
	}
	e.indent++
	defer func() { e.indent-- }()

	e.line("tape := ctx.Tape()")
	if err := e.block(b); err != nil {
		return err
	}
	e.line("return %s, tape.ResetGrad, tape.Backward", ret)
	return nil
}
