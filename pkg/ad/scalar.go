package ad

import "math"

// Every primitive returns (out, reset, backprop). reset clears out's
// adjoint; backprop reads out's adjoint and accumulates into the operands.
// Both are nil when nothing is differentiable.

func unary(ctx *Context, a Dual, v, da float64) (Dual, func(), func()) {
	if a.IsConst() {
		return Const(v), nil, nil
	}
	out := ctx.Var(v)
	return out, out.ResetGrad, func() {
		a.AccumGrad(out.Grad() * da)
	}
}

func binary(ctx *Context, a, b Dual, v, da, db float64) (Dual, func(), func()) {
	if a.IsConst() && b.IsConst() {
		return Const(v), nil, nil
	}
	out := ctx.Var(v)
	return out, out.ResetGrad, func() {
		g := out.Grad()
		a.AccumGrad(g * da)
		b.AccumGrad(g * db)
	}
}

// flat returns a constant result: comparisons, logic and bit operations have
// no derivative.
func flat(v float64) (Dual, func(), func()) { return Const(v), nil, nil }

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func Neg(ctx *Context, a Dual) (Dual, func(), func()) {
	return unary(ctx, a, -a.Primal(), -1)
}

func Add(ctx *Context, a, b Dual) (Dual, func(), func()) {
	return binary(ctx, a, b, a.Primal()+b.Primal(), 1, 1)
}

func Sub(ctx *Context, a, b Dual) (Dual, func(), func()) {
	return binary(ctx, a, b, a.Primal()-b.Primal(), 1, -1)
}

func Mul(ctx *Context, a, b Dual) (Dual, func(), func()) {
	av, bv := a.Primal(), b.Primal()
	return binary(ctx, a, b, av*bv, bv, av)
}

func Div(ctx *Context, a, b Dual) (Dual, func(), func()) {
	av, bv := a.Primal(), b.Primal()
	return binary(ctx, a, b, av/bv, 1/bv, -av/(bv*bv))
}

// Rem is the truncated remainder a - b*trunc(a/b).
func Rem(ctx *Context, a, b Dual) (Dual, func(), func()) {
	av, bv := a.Primal(), b.Primal()
	return binary(ctx, a, b, math.Mod(av, bv), 1, -math.Trunc(av/bv))
}

// IDiv is integer division truncated toward zero. Its derivative is zero
// wherever it exists, so the result is constant.
func IDiv(_ *Context, a, b Dual) (Dual, func(), func()) {
	x, y := ints(a, b)
	if y == 0 {
		panic("ad: integer division by zero")
	}
	return flat(float64(x / y))
}

func Not(_ *Context, a Dual) (Dual, func(), func()) { return flat(b2f(!a.Truth())) }

// And and Or evaluate both operands; there is no short circuit.
func And(_ *Context, a, b Dual) (Dual, func(), func()) { return flat(b2f(a.Truth() && b.Truth())) }
func Or(_ *Context, a, b Dual) (Dual, func(), func())  { return flat(b2f(a.Truth() || b.Truth())) }

func Eq(_ *Context, a, b Dual) (Dual, func(), func()) { return flat(b2f(a.Primal() == b.Primal())) }
func Ne(_ *Context, a, b Dual) (Dual, func(), func()) { return flat(b2f(a.Primal() != b.Primal())) }
func Lt(_ *Context, a, b Dual) (Dual, func(), func()) { return flat(b2f(a.Primal() < b.Primal())) }
func Gt(_ *Context, a, b Dual) (Dual, func(), func()) { return flat(b2f(a.Primal() > b.Primal())) }
func Le(_ *Context, a, b Dual) (Dual, func(), func()) { return flat(b2f(a.Primal() <= b.Primal())) }
func Ge(_ *Context, a, b Dual) (Dual, func(), func()) { return flat(b2f(a.Primal() >= b.Primal())) }

func ints(a, b Dual) (int64, int64) { return int64(a.Primal()), int64(b.Primal()) }

func BitAnd(_ *Context, a, b Dual) (Dual, func(), func()) {
	x, y := ints(a, b)
	return flat(float64(x & y))
}

func BitOr(_ *Context, a, b Dual) (Dual, func(), func()) {
	x, y := ints(a, b)
	return flat(float64(x | y))
}

func Shl(_ *Context, a, b Dual) (Dual, func(), func()) {
	x, y := ints(a, b)
	return flat(float64(x << uint64(y&63)))
}

func Shr(_ *Context, a, b Dual) (Dual, func(), func()) {
	x, y := ints(a, b)
	return flat(float64(x >> uint64(y&63)))
}
