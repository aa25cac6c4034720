package ad

import "math"

func Sqrt(ctx *Context, a Dual) (Dual, func(), func()) {
	v := math.Sqrt(a.Primal())
	return unary(ctx, a, v, 0.5/v)
}

func Exp(ctx *Context, a Dual) (Dual, func(), func()) {
	v := math.Exp(a.Primal())
	return unary(ctx, a, v, v)
}

func Log(ctx *Context, a Dual) (Dual, func(), func()) {
	av := a.Primal()
	return unary(ctx, a, math.Log(av), 1/av)
}

func Sin(ctx *Context, a Dual) (Dual, func(), func()) {
	av := a.Primal()
	return unary(ctx, a, math.Sin(av), math.Cos(av))
}

func Cos(ctx *Context, a Dual) (Dual, func(), func()) {
	av := a.Primal()
	return unary(ctx, a, math.Cos(av), -math.Sin(av))
}

// Abs uses the subgradient 1 at zero.
func Abs(ctx *Context, a Dual) (Dual, func(), func()) {
	av := a.Primal()
	if av < 0 {
		return unary(ctx, a, -av, -1)
	}
	return unary(ctx, a, av, 1)
}

// Pow is a^b. The exponent's derivative a^b·ln(a) is taken as zero where
// ln is undefined.
func Pow(ctx *Context, a, b Dual) (Dual, func(), func()) {
	av, bv := a.Primal(), b.Primal()
	v := math.Pow(av, bv)
	da := bv * math.Pow(av, bv-1)
	if bv == 0 {
		da = 0
	}
	var db float64
	if av > 0 {
		db = v * math.Log(av)
	}
	return binary(ctx, a, b, v, da, db)
}

// Min and Max pass the whole adjoint to the operand they selected; ties
// select a.
func Min(ctx *Context, a, b Dual) (Dual, func(), func()) {
	if b.Primal() < a.Primal() {
		return binary(ctx, a, b, b.Primal(), 0, 1)
	}
	return binary(ctx, a, b, a.Primal(), 1, 0)
}

func Max(ctx *Context, a, b Dual) (Dual, func(), func()) {
	if b.Primal() > a.Primal() {
		return binary(ctx, a, b, b.Primal(), 0, 1)
	}
	return binary(ctx, a, b, a.Primal(), 1, 0)
}
