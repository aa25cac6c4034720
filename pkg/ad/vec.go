package ad

import (
	"fmt"
	"math"
)

// Vec is a fixed-width vector of lanes. Lanes are ordinary Duals, so a Vec
// built from existing values shares their slots.
type Vec []Dual

func (v Vec) Primals() []float64 {
	out := make([]float64, len(v))
	for i, d := range v {
		out[i] = d.Primal()
	}
	return out
}

func (v Vec) Grads() []float64 {
	out := make([]float64, len(v))
	for i, d := range v {
		out[i] = d.Grad()
	}
	return out
}

// Seed sets one adjoint per lane; missing values seed zero.
func (v Vec) Seed(gs ...float64) {
	for i, d := range v {
		var g float64
		if i < len(gs) {
			g = gs[i]
		}
		d.Seed(g)
	}
}

func (v Vec) ResetGrad() {
	for _, d := range v {
		d.ResetGrad()
	}
}

// Extract returns lane i. The result shares the lane's slot, so no tape
// entry is needed.
func Extract(v Vec, i int) Dual {
	if i < 0 || i >= len(v) {
		panic(fmt.Sprintf("ad: Extract lane %d of %d-lane vector", i, len(v)))
	}
	return v[i]
}

// Insert returns a copy of v with lane i replaced by s.
func Insert(v Vec, i int, s Dual) Vec {
	if i < 0 || i >= len(v) {
		panic(fmt.Sprintf("ad: Insert lane %d of %d-lane vector", i, len(v)))
	}
	out := make(Vec, len(v))
	copy(out, v)
	out[i] = s
	return out
}

func sameLanes(op string, a, b Vec) {
	if len(a) != len(b) {
		panic(fmt.Sprintf("ad: %s of %d-lane and %d-lane vectors", op, len(a), len(b)))
	}
}

type scalarOp func(ctx *Context, a, b Dual) (Dual, func(), func())

// lanes applies op lane by lane and joins the per-lane closures.
func lanes(n int, lane func(i int) (Dual, func(), func())) (Vec, func(), func()) {
	out := make(Vec, n)
	resets := make([]func(), n)
	backprops := make([]func(), n)
	for i := 0; i < n; i++ {
		out[i], resets[i], backprops[i] = lane(i)
	}
	return out, join(resets), join(backprops)
}

func laneWise(ctx *Context, op string, f scalarOp, a, b Vec) (Vec, func(), func()) {
	sameLanes(op, a, b)
	return lanes(len(a), func(i int) (Dual, func(), func()) { return f(ctx, a[i], b[i]) })
}

func VNeg(ctx *Context, a Vec) (Vec, func(), func()) {
	return lanes(len(a), func(i int) (Dual, func(), func()) { return Neg(ctx, a[i]) })
}

func VAdd(ctx *Context, a, b Vec) (Vec, func(), func()) { return laneWise(ctx, "VAdd", Add, a, b) }
func VSub(ctx *Context, a, b Vec) (Vec, func(), func()) { return laneWise(ctx, "VSub", Sub, a, b) }
func VMul(ctx *Context, a, b Vec) (Vec, func(), func()) { return laneWise(ctx, "VMul", Mul, a, b) }
func VDiv(ctx *Context, a, b Vec) (Vec, func(), func()) { return laneWise(ctx, "VDiv", Div, a, b) }

// VScale multiplies every lane by s. s receives the sum of its per-lane
// contributions.
func VScale(ctx *Context, a Vec, s Dual) (Vec, func(), func()) {
	return lanes(len(a), func(i int) (Dual, func(), func()) { return Mul(ctx, a[i], s) })
}

func VDivScalar(ctx *Context, a Vec, s Dual) (Vec, func(), func()) {
	return lanes(len(a), func(i int) (Dual, func(), func()) { return Div(ctx, a[i], s) })
}

// Dot is the sum of lane products.
func Dot(ctx *Context, a, b Vec) (Dual, func(), func()) {
	sameLanes("Dot", a, b)
	av, bv := a.Primals(), b.Primals()
	var v float64
	constant := true
	for i := range av {
		v += av[i] * bv[i]
		constant = constant && a[i].IsConst() && b[i].IsConst()
	}
	if constant {
		return Const(v), nil, nil
	}
	out := ctx.Var(v)
	return out, out.ResetGrad, func() {
		g := out.Grad()
		for i := range a {
			a[i].AccumGrad(g * bv[i])
			b[i].AccumGrad(g * av[i])
		}
	}
}

// Length is the Euclidean norm. Its gradient at the zero vector is taken as
// zero.
func Length(ctx *Context, a Vec) (Dual, func(), func()) {
	av := a.Primals()
	var sq float64
	constant := true
	for i, x := range av {
		sq += x * x
		constant = constant && a[i].IsConst()
	}
	v := math.Sqrt(sq)
	if constant {
		return Const(v), nil, nil
	}
	out := ctx.Var(v)
	return out, out.ResetGrad, func() {
		if v == 0 {
			return
		}
		g := out.Grad()
		for i := range a {
			a[i].AccumGrad(g * av[i] / v)
		}
	}
}
