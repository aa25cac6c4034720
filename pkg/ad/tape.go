package ad

// Tape records, during forward evaluation, the closures that clear and
// propagate adjoints. ResetGrad replays resets in recording order; Backward
// replays backprops in reverse.
type Tape struct {
	ctx       *Context
	resets    []func()
	backprops []func()
}

// Record appends the non-nil closures and returns out. It takes a
// primitive's triple directly: tape.Record(ad.Mul(ctx, a, b)).
func (t *Tape) Record(out Dual, reset, backprop func()) Dual {
	t.push(reset, backprop)
	return out
}

// RecordVec is Record for vector results.
func (t *Tape) RecordVec(out Vec, reset, backprop func()) Vec {
	t.push(reset, backprop)
	return out
}

func (t *Tape) push(reset, backprop func()) {
	if reset != nil {
		t.resets = append(t.resets, reset)
	}
	if backprop != nil {
		t.backprops = append(t.backprops, backprop)
	}
	t.ctx.state = Accumulating
}

func (t *Tape) ResetGrad() {
	for _, r := range t.resets {
		r()
	}
}

func (t *Tape) Backward() {
	for i := len(t.backprops) - 1; i >= 0; i-- {
		t.backprops[i]()
	}
	t.ctx.state = BackpropDone
}

// Len returns the number of recorded backprop closures.
func (t *Tape) Len() int { return len(t.backprops) }

func (t *Tape) clear() {
	t.resets = t.resets[:0]
	t.backprops = t.backprops[:0]
}

// Select evaluates the arm chosen by cond and records only that arm's
// closures on t.
func Select[T any](t *Tape, cond Dual, then, els func() (T, func(), func())) T {
	arm := els
	if cond.Truth() {
		arm = then
	}
	out, reset, backprop := arm()
	t.push(reset, backprop)
	return out
}

// join composes closures into one that runs them in order. Nil entries are
// skipped; the result is nil when nothing remains.
func join(fns []func()) func() {
	var live []func()
	for _, f := range fns {
		if f != nil {
			live = append(live, f)
		}
	}
	switch len(live) {
	case 0:
		return nil
	case 1:
		return live[0]
	}
	return func() {
		for _, f := range live {
			f()
		}
	}
}
