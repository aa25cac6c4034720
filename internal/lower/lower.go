// Package lower translates the syntax tree into SSA-form IR.
//
// Every re-use of a source name yields a fresh ir.Var: a per-name version
// counter (not scoped) hands out generations, while a stack of scopes maps
// each visible name to its current version.
package lower

import (
	"github.com/funvibe/adjoint/internal/ast"
	"github.com/funvibe/adjoint/internal/diagnostics"
	"github.com/funvibe/adjoint/internal/ir"
	"github.com/funvibe/adjoint/internal/token"
)

// LowerUnit lowers every function of unit. The first error aborts the unit.
func LowerUnit(unit *ast.Unit) (*ir.Module, *diagnostics.DiagnosticError) {
	mod := &ir.Module{File: unit.File}
	for _, fd := range unit.Functions {
		fn, err := LowerFunction(fd)
		if err != nil {
			return nil, err
		}
		mod.Functions = append(mod.Functions, fn)
	}
	return mod, nil
}

// LowerFunction lowers one function declaration.
func LowerFunction(fd *ast.FunctionDecl) (*ir.Function, *diagnostics.DiagnosticError) {
	l := &lowerer{versions: make(map[string]int)}
	return l.function(fd)
}

type lowerer struct {
	scopes   []map[string]ir.Var
	versions map[string]int
	temps    int
	block    *ir.Block
}

func unsupported(tok token.Token, format string, args ...interface{}) *diagnostics.DiagnosticError {
	return diagnostics.NewError(diagnostics.ErrL001, tok, format, args...)
}

func (l *lowerer) pushScope() { l.scopes = append(l.scopes, make(map[string]ir.Var)) }
func (l *lowerer) popScope()  { l.scopes = l.scopes[:len(l.scopes)-1] }

func (l *lowerer) resolve(name string) (ir.Var, bool) {
	for i := len(l.scopes) - 1; i >= 0; i-- {
		if v, ok := l.scopes[i][name]; ok {
			return v, true
		}
	}
	return ir.Var{}, false
}

// fresh returns the next version of name and makes it visible in the
// innermost scope.
func (l *lowerer) fresh(name string) ir.Var {
	gen, seen := l.versions[name]
	if seen {
		gen++
	}
	l.versions[name] = gen
	v := ir.Named(name, gen)
	l.scopes[len(l.scopes)-1][name] = v
	return v
}

func (l *lowerer) temp() ir.Var {
	v := ir.Temp(l.temps)
	l.temps++
	return v
}

func (l *lowerer) emit(v ir.Var, e ir.Expr, pos token.Token) ir.Var {
	l.block.Push(&ir.Let{Var: v, Expr: e, Pos: pos})
	return v
}

func (l *lowerer) function(fd *ast.FunctionDecl) (*ir.Function, *diagnostics.DiagnosticError) {
	if len(fd.TypeParams) > 0 {
		return nil, unsupported(fd.TypeParams[0].Token, "generic function %s is not supported", fd.Name.Value)
	}
	if fd.ReturnType == nil {
		return nil, unsupported(fd.Name.Token, "function %s must declare a return type", fd.Name.Value)
	}
	if err := checkType(fd.ReturnType); err != nil {
		return nil, err
	}

	fn := &ir.Function{
		Name:       fd.Name.Value,
		ReturnType: fd.ReturnType.Name(),
		Pos:        fd.Token,
		Body:       ir.NewBlock(),
	}

	l.pushScope()
	defer l.popScope()
	for _, p := range fd.Params {
		if err := checkType(p.Type); err != nil {
			return nil, err
		}
		if _, dup := l.scopes[0][p.Name.Value]; dup {
			return nil, unsupported(p.Name.Token, "duplicate parameter %s in %s", p.Name.Value, fd.Name.Value)
		}
		v := ir.Named(p.Name.Value, 0)
		l.versions[p.Name.Value] = 0
		l.scopes[0][p.Name.Value] = v
		fn.Params = append(fn.Params, ir.Param{Var: v, Type: p.Type.Name(), Diff: !p.Const})
	}

	l.block = fn.Body
	ret, err := l.blockBody(fd.Body, true)
	if err != nil {
		return nil, err
	}
	if err := fn.Body.SetReturn(ret); err != nil {
		return nil, diagnostics.NewInternalError(diagnostics.ErrL001, "%s: %v", fn.Name, err)
	}
	return fn, nil
}

func checkType(te *ast.TypeExpr) *diagnostics.DiagnosticError {
	if te.Ref {
		return unsupported(te.Token, "reference type %s is not supported", te)
	}
	if len(te.Args) > 0 {
		return unsupported(te.Token, "generic type %s is not supported", te)
	}
	return nil
}

// blockBody lowers b's statements into the current block and returns the
// variable holding its value. body is true for a function body, the only
// place a return statement may appear.
func (l *lowerer) blockBody(b *ast.BlockExpression, body bool) (ir.Var, *diagnostics.DiagnosticError) {
	for i, stmt := range b.Statements {
		switch s := stmt.(type) {
		case *ast.LetStatement:
			if err := l.let(s); err != nil {
				return ir.Var{}, err
			}
		case *ast.AssignStatement:
			if err := l.assign(s); err != nil {
				return ir.Var{}, err
			}
		case *ast.ExpressionStatement:
			if _, err := l.expr(s.Expression); err != nil {
				return ir.Var{}, err
			}
		case *ast.ReturnStatement:
			if !body || i != len(b.Statements)-1 || b.Value != nil {
				return ir.Var{}, unsupported(s.Token, "return is only supported as the last statement of a function body")
			}
			if s.Value == nil {
				return ir.Var{}, unsupported(s.Token, "return without a value")
			}
			return l.expr(s.Value)
		case *ast.LoopStatement:
			return ir.Var{}, unsupported(s.Token, "%s loops are not supported", s.Token.Lexeme)
		default:
			return ir.Var{}, unsupported(stmt.GetToken(), "unsupported statement %s", stmt)
		}
	}
	if b.Value == nil {
		return ir.Var{}, unsupported(b.Token, "block has no value")
	}
	return l.expr(b.Value)
}

func (l *lowerer) let(s *ast.LetStatement) *diagnostics.DiagnosticError {
	if s.Mutable {
		return unsupported(s.Token, "mutable binding %s is not supported", s.Name.Value)
	}
	if s.Type != nil {
		if err := checkType(s.Type); err != nil {
			return err
		}
	}
	v, err := l.expr(s.Value)
	if err != nil {
		return err
	}
	l.emit(l.fresh(s.Name.Value), &ir.RefExpr{Var: v}, s.Token)
	return nil
}

func (l *lowerer) assign(s *ast.AssignStatement) *diagnostics.DiagnosticError {
	switch target := s.Target.(type) {
	case *ast.Identifier:
		old, ok := l.resolve(target.Value)
		if !ok {
			return diagnostics.NewError(diagnostics.ErrL002, target.Token, "undefined variable %s", target.Value)
		}
		v, err := l.assignedValue(s, old)
		if err != nil {
			return err
		}
		l.emit(l.fresh(target.Value), &ir.RefExpr{Var: v}, s.Token)
		return nil

	case *ast.FieldAccessExpression:
		base, ok := target.Left.(*ast.Identifier)
		if !ok {
			return unsupported(target.Token, "assignment to %s is not supported", target)
		}
		old, found := l.resolve(base.Value)
		if !found {
			return diagnostics.NewError(diagnostics.ErrL002, base.Token, "undefined variable %s", base.Value)
		}
		current := old
		if s.Operator != "=" {
			current = l.emit(l.temp(), &ir.CallExpr{
				Callee: ir.Callee{Prim: ir.PrimExtract, Field: target.Field},
				Args:   []ir.Var{old},
			}, target.Token)
		}
		v, err := l.assignedValue(s, current)
		if err != nil {
			return err
		}
		l.emit(l.fresh(base.Value), &ir.CallExpr{
			Callee: ir.Callee{Prim: ir.PrimInsert, Field: target.Field},
			Args:   []ir.Var{old, v},
		}, s.Token)
		return nil
	}
	return unsupported(s.Token, "assignment to %s is not supported", s.Target)
}

// assignedValue lowers the right-hand side, applying the operator of a
// compound assignment to current.
func (l *lowerer) assignedValue(s *ast.AssignStatement, current ir.Var) (ir.Var, *diagnostics.DiagnosticError) {
	v, err := l.expr(s.Value)
	if err != nil {
		return ir.Var{}, err
	}
	if s.Operator == "=" {
		return v, nil
	}
	op := s.Operator[:len(s.Operator)-1]
	prim, ok := binaryPrims[op]
	if !ok {
		return ir.Var{}, unsupported(s.Token, "operator %s is not supported", s.Operator)
	}
	return l.emit(l.temp(), &ir.CallExpr{Callee: ir.Callee{Prim: prim}, Args: []ir.Var{current, v}}, s.Token), nil
}
