package lower

import (
	"github.com/funvibe/adjoint/internal/ast"
	"github.com/funvibe/adjoint/internal/diagnostics"
	"github.com/funvibe/adjoint/internal/ir"
)

var binaryPrims = map[string]ir.Prim{
	"+":  ir.PrimAdd,
	"-":  ir.PrimSub,
	"*":  ir.PrimMul,
	"/":  ir.PrimDiv,
	"%":  ir.PrimRem,
	"&&": ir.PrimAnd,
	"||": ir.PrimOr,
	"&":  ir.PrimBitAnd,
	"|":  ir.PrimBitOr,
	"<<": ir.PrimShl,
	">>": ir.PrimShr,
	"==": ir.PrimEq,
	"!=": ir.PrimNe,
	"<":  ir.PrimLt,
	">":  ir.PrimGt,
	"<=": ir.PrimLe,
	">=": ir.PrimGe,
}

var unaryPrims = map[string]ir.Prim{
	"-": ir.PrimNeg,
	"!": ir.PrimNot,
}

var suffixTags = map[string]ir.PrimTag{
	"f32": ir.F32,
	"f64": ir.F64,
	"i32": ir.I32,
}

// expr lowers e into the current block and returns the variable holding its
// value.
func (l *lowerer) expr(e ast.Expression) (ir.Var, *diagnostics.DiagnosticError) {
	switch node := e.(type) {
	case *ast.NumberLiteral:
		tag, ok := suffixTags[node.Suffix]
		if !ok {
			tag = ir.I32
			if node.Float {
				tag = ir.F32
			}
		}
		return l.emit(l.temp(), &ir.AtomExpr{Atom: ir.Atom{Kind: ir.AtomLiteral, Text: node.Text, Tag: tag}}, node.Token), nil

	case *ast.BooleanLiteral:
		text := "false"
		if node.Value {
			text = "true"
		}
		return l.emit(l.temp(), &ir.AtomExpr{Atom: ir.Atom{Kind: ir.AtomLiteral, Text: text, Tag: ir.Bool}}, node.Token), nil

	case *ast.StringLiteral:
		return l.emit(l.temp(), &ir.AtomExpr{Atom: ir.Atom{Kind: ir.AtomString, Text: node.Value}}, node.Token), nil

	case *ast.Identifier:
		v, ok := l.resolve(node.Value)
		if !ok {
			return ir.Var{}, diagnostics.NewError(diagnostics.ErrL002, node.Token, "undefined variable %s", node.Value)
		}
		return v, nil

	case *ast.PathExpression:
		if len(node.TypeArgs) > 0 {
			return ir.Var{}, unsupported(node.Token, "generic path %s is not supported", node)
		}
		atom := ir.Atom{Kind: ir.AtomIdent, Path: ir.Path(node.Segments), Const: true}
		return l.emit(l.temp(), &ir.AtomExpr{Atom: atom}, node.Token), nil

	case *ast.PrefixExpression:
		prim, ok := unaryPrims[node.Operator]
		if !ok {
			return ir.Var{}, unsupported(node.Token, "operator %s is not supported", node.Operator)
		}
		operand, err := l.expr(node.Right)
		if err != nil {
			return ir.Var{}, err
		}
		return l.emit(l.temp(), &ir.CallExpr{Callee: ir.Callee{Prim: prim}, Args: []ir.Var{operand}}, node.Token), nil

	case *ast.InfixExpression:
		prim, ok := binaryPrims[node.Operator]
		if !ok {
			return ir.Var{}, unsupported(node.Token, "operator %s is not supported", node.Operator)
		}
		left, err := l.expr(node.Left)
		if err != nil {
			return ir.Var{}, err
		}
		right, err := l.expr(node.Right)
		if err != nil {
			return ir.Var{}, err
		}
		return l.emit(l.temp(), &ir.CallExpr{Callee: ir.Callee{Prim: prim}, Args: []ir.Var{left, right}}, node.Token), nil

	case *ast.CallExpression:
		var path ir.Path
		switch fn := node.Function.(type) {
		case *ast.Identifier:
			path = ir.Path{fn.Value}
		case *ast.PathExpression:
			if len(fn.TypeArgs) > 0 {
				return ir.Var{}, unsupported(fn.Token, "generic call %s is not supported", fn)
			}
			path = ir.Path(fn.Segments)
		default:
			return ir.Var{}, unsupported(node.Token, "call of %s is not supported", node.Function)
		}
		args, err := l.exprs(node.Arguments)
		if err != nil {
			return ir.Var{}, err
		}
		return l.emit(l.temp(), &ir.CallExpr{Callee: ir.Callee{Path: path}, Args: args}, node.Token), nil

	case *ast.MethodCallExpression:
		recv, err := l.expr(node.Receiver)
		if err != nil {
			return ir.Var{}, err
		}
		args, err := l.exprs(node.Arguments)
		if err != nil {
			return ir.Var{}, err
		}
		args = append([]ir.Var{recv}, args...)
		return l.emit(l.temp(), &ir.CallExpr{Callee: ir.Callee{Path: ir.Path{node.Method.Value}}, Args: args}, node.Token), nil

	case *ast.FieldAccessExpression:
		base, err := l.expr(node.Left)
		if err != nil {
			return ir.Var{}, err
		}
		return l.emit(l.temp(), &ir.CallExpr{
			Callee: ir.Callee{Prim: ir.PrimExtract, Field: node.Field},
			Args:   []ir.Var{base},
		}, node.Token), nil

	case *ast.BlockExpression:
		inner, v, err := l.nested(func() (ir.Var, *diagnostics.DiagnosticError) {
			return l.blockBody(node, false)
		})
		if err != nil {
			return ir.Var{}, err
		}
		l.block.Splice(inner)
		return v, nil

	case *ast.IfExpression:
		return l.conditional(node)

	case *ast.ReferenceExpression:
		return ir.Var{}, unsupported(node.Token, "references are not supported")
	case *ast.CastExpression:
		return ir.Var{}, unsupported(node.Token, "casts are not supported")
	case *ast.IndexExpression:
		return ir.Var{}, unsupported(node.Token, "indexing is not supported")
	}
	return ir.Var{}, unsupported(e.GetToken(), "unsupported expression %s", e)
}

func (l *lowerer) exprs(list []ast.Expression) ([]ir.Var, *diagnostics.DiagnosticError) {
	vars := make([]ir.Var, 0, len(list))
	for _, e := range list {
		v, err := l.expr(e)
		if err != nil {
			return nil, err
		}
		vars = append(vars, v)
	}
	return vars, nil
}

// nested runs fn against a fresh block under a pushed scope and returns the
// block with fn's result. The scope is popped even on error.
func (l *lowerer) nested(fn func() (ir.Var, *diagnostics.DiagnosticError)) (*ir.Block, ir.Var, *diagnostics.DiagnosticError) {
	parent := l.block
	inner := ir.NewBlock()
	l.block = inner
	l.pushScope()
	defer func() {
		l.popScope()
		l.block = parent
	}()

	v, err := fn()
	if err != nil {
		return nil, ir.Var{}, err
	}
	return inner, v, nil
}

// arm lowers one branch of a conditional into its own block, which resolves
// its own return.
func (l *lowerer) arm(fn func() (ir.Var, *diagnostics.DiagnosticError)) (*ir.Block, *diagnostics.DiagnosticError) {
	blk, v, err := l.nested(fn)
	if err != nil {
		return nil, err
	}
	if err := blk.SetReturn(v); err != nil {
		return nil, diagnostics.NewInternalError(diagnostics.ErrL001, "%v", err)
	}
	return blk, nil
}

func (l *lowerer) conditional(node *ast.IfExpression) (ir.Var, *diagnostics.DiagnosticError) {
	if node.Alternative == nil {
		return ir.Var{}, unsupported(node.Token, "if without else is not supported")
	}
	cond, err := l.expr(node.Condition)
	if err != nil {
		return ir.Var{}, err
	}

	then, err := l.arm(func() (ir.Var, *diagnostics.DiagnosticError) {
		return l.blockBody(node.Consequence, false)
	})
	if err != nil {
		return ir.Var{}, err
	}

	els, err := l.arm(func() (ir.Var, *diagnostics.DiagnosticError) {
		if blk, ok := node.Alternative.(*ast.BlockExpression); ok {
			return l.blockBody(blk, false)
		}
		return l.expr(node.Alternative)
	})
	if err != nil {
		return ir.Var{}, err
	}

	return l.emit(l.temp(), &ir.CondExpr{Cond: cond, Then: then, Else: els}, node.Token), nil
}
