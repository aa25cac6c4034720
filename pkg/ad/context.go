// Package ad is the runtime that generated adjoint code runs against.
//
// A Context owns an index arena of (primal, adjoint) slots, a root tape and a
// pool of child tapes. Every slot handle (Dual) carries the arena generation
// it was issued under; Reset bumps the generation, so any handle kept across
// a Reset panics with ErrStaleHandle instead of reading recycled memory.
//
// A Context and everything it hands out belong to one goroutine. Independent
// contexts may be used in parallel.
package ad

import (
	"errors"
	"fmt"
)

// ErrStaleHandle is wrapped by the panic value raised when a Dual issued
// before Context.Reset is used afterwards.
var ErrStaleHandle = errors.New("ad: stale handle")

type State int

const (
	// Idle: nothing allocated since construction or the last Reset.
	Idle State = iota
	// Accumulating: forward evaluation is recording onto tapes.
	Accumulating
	// BackpropDone: a Backward pass has run. Adjoints are readable.
	BackpropDone
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Accumulating:
		return "Accumulating"
	case BackpropDone:
		return "BackpropDone"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type slot struct {
	primal  float64
	adjoint float64
}

type Context struct {
	slots []slot
	gen   uint32
	state State

	root  *Tape
	tapes []*Tape // pool; tapes[:used] are handed out
	used  int
}

func NewContext() *Context {
	c := &Context{gen: 1}
	c.root = &Tape{ctx: c}
	return c
}

// Var allocates a differentiable value with a zero adjoint.
func (c *Context) Var(primal float64) Dual {
	c.slots = append(c.slots, slot{primal: primal})
	c.state = Accumulating
	return Dual{ctx: c, idx: int32(len(c.slots) - 1), gen: c.gen}
}

// Zero allocates a differentiable zero.
func (c *Context) Zero() Dual { return c.Var(0) }

// ZeroVec allocates n differentiable zeros.
func (c *Context) ZeroVec(n int) Vec {
	v := make(Vec, n)
	for i := range v {
		v[i] = c.Var(0)
	}
	return v
}

// VarVec allocates one differentiable lane per value.
func (c *Context) VarVec(vals ...float64) Vec {
	v := make(Vec, len(vals))
	for i, x := range vals {
		v[i] = c.Var(x)
	}
	return v
}

// Tape hands out an empty child tape owned by the context. It stays valid
// until Reset.
func (c *Context) Tape() *Tape {
	if c.used < len(c.tapes) {
		t := c.tapes[c.used]
		c.used++
		return t
	}
	t := &Tape{ctx: c}
	c.tapes = append(c.tapes, t)
	c.used++
	return t
}

// Record appends reset and backprop to the root tape and returns out.
func (c *Context) Record(out Dual, reset, backprop func()) Dual {
	return c.root.Record(out, reset, backprop)
}

// RecordVec is Record for vector results.
func (c *Context) RecordVec(out Vec, reset, backprop func()) Vec {
	return c.root.RecordVec(out, reset, backprop)
}

// ZeroGrad runs the root tape's resets and clears every adjoint in the
// arena.
func (c *Context) ZeroGrad() {
	c.root.ResetGrad()
	for i := range c.slots {
		c.slots[i].adjoint = 0
	}
}

// Backward runs the root tape in reverse.
func (c *Context) Backward() { c.root.Backward() }

func (c *Context) State() State { return c.state }

// Len returns the number of live arena slots.
func (c *Context) Len() int { return len(c.slots) }

// Adjoints returns a copy of every slot's adjoint in allocation order.
func (c *Context) Adjoints() []float64 {
	out := make([]float64, len(c.slots))
	for i, s := range c.slots {
		out[i] = s.adjoint
	}
	return out
}

// Handle returns a handle to the i-th live slot. It panics when i is out of
// range.
func (c *Context) Handle(i int) Dual {
	if i < 0 || i >= len(c.slots) {
		panic(fmt.Sprintf("ad: slot %d out of range [0, %d)", i, len(c.slots)))
	}
	return Dual{ctx: c, idx: int32(i), gen: c.gen}
}

// Reset truncates the arena, clears every tape and invalidates all handles
// issued so far.
func (c *Context) Reset() {
	c.slots = c.slots[:0]
	c.gen++
	c.root.clear()
	for _, t := range c.tapes[:c.used] {
		t.clear()
	}
	c.used = 0
	c.state = Idle
}

func (c *Context) slot(d Dual) *slot {
	if d.gen != c.gen || int(d.idx) >= len(c.slots) {
		panic(fmt.Errorf("%w: slot %d of generation %d used in generation %d", ErrStaleHandle, d.idx, d.gen, c.gen))
	}
	return &c.slots[d.idx]
}
