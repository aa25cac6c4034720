package ad

import (
	"fmt"
)

// Dual is a handle to a differentiable value. The zero Dual is the constant
// 0. Constants hold their primal inline, report a zero adjoint and ignore
// accumulation; they never occupy an arena slot.
type Dual struct {
	ctx *Context
	idx int32
	gen uint32
	c   float64
}

// Const returns a constant with primal v.
func Const(v float64) Dual { return Dual{c: v} }

// Bool returns the constant 1 or 0.
func Bool(b bool) Dual {
	if b {
		return Dual{c: 1}
	}
	return Dual{}
}

func (d Dual) IsConst() bool { return d.ctx == nil }

func (d Dual) Primal() float64 {
	if d.ctx == nil {
		return d.c
	}
	return d.ctx.slot(d).primal
}

// SetPrimal overwrites the primal of a differentiable value. It panics on a
// constant.
func (d Dual) SetPrimal(v float64) {
	if d.ctx == nil {
		panic("ad: SetPrimal on a constant")
	}
	d.ctx.slot(d).primal = v
}

// Grad returns the accumulated adjoint.
func (d Dual) Grad() float64 {
	if d.ctx == nil {
		return 0
	}
	return d.ctx.slot(d).adjoint
}

// AccumGrad adds g to the adjoint.
func (d Dual) AccumGrad(g float64) {
	if d.ctx == nil {
		return
	}
	d.ctx.slot(d).adjoint += g
}

// Seed sets the adjoint to g, typically 1 on the output before Backward.
func (d Dual) Seed(g float64) {
	if d.ctx == nil {
		return
	}
	d.ctx.slot(d).adjoint = g
}

func (d Dual) ResetGrad() {
	if d.ctx == nil {
		return
	}
	d.ctx.slot(d).adjoint = 0
}

// Truth reports whether the primal is non-zero.
func (d Dual) Truth() bool { return d.Primal() != 0 }

func (d Dual) String() string {
	if d.ctx == nil {
		return fmt.Sprintf("const(%g)", d.c)
	}
	s := d.ctx.slot(d)
	return fmt.Sprintf("%g (d=%g)", s.primal, s.adjoint)
}
