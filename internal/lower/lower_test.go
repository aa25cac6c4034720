package lower_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/adjoint/internal/diagnostics"
	"github.com/funvibe/adjoint/internal/ir"
	"github.com/funvibe/adjoint/internal/lexer"
	"github.com/funvibe/adjoint/internal/lower"
	"github.com/funvibe/adjoint/internal/parser"
	"github.com/funvibe/adjoint/internal/pipeline"
)

func run(input string) *pipeline.PipelineContext {
	ctx := pipeline.NewContext(input, "test.adj", nil)
	return pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&lower.LowerProcessor{},
	).Run(ctx)
}

func lowerOK(t *testing.T, input string) *ir.Module {
	t.Helper()
	ctx := run(input)
	require.NoError(t, ctx.Err())
	require.NotNil(t, ctx.Module)
	return ctx.Module
}

func TestLowerConditional(t *testing.T) {
	mod := lowerOK(t, `fn g(x: f32, const k: f32) -> f32 {
    let y = if x > 1.0 { pow4(x) } else { sqr(x) };
    y * k
}`)
	want := `fn g(x_0: f32, const k_0: f32) -> f32 {
  t0 = 1.0f32
  t1 = Gt(x_0, t0)
  t4 = if t1 {
    t2 = pow4(x_0)
    return t2
  } else {
    t3 = sqr(x_0)
    return t3
  }
  y_0 = t4
  t5 = Mul(y_0, k_0)
  return t5
}`
	require.Len(t, mod.Functions, 1)
	assert.Equal(t, want, mod.Functions[0].String())
}

func TestLowerExpressions(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"shadowing",
			"fn f(x: f32) -> f32 { let x = x + 1.0; let x = x * x; x }",
			`fn f(x_0: f32) -> f32 {
  t0 = 1.0f32
  t1 = Add(x_0, t0)
  x_1 = t1
  t2 = Mul(x_1, x_1)
  x_2 = t2
  return x_2
}`,
		},
		{
			"compound_assignment",
			"fn f(x: f32) -> f32 { let y = x; y *= 2.0; y }",
			`fn f(x_0: f32) -> f32 {
  y_0 = x_0
  t0 = 2.0f32
  t1 = Mul(y_0, t0)
  y_1 = t1
  return y_1
}`,
		},
		{
			"field_insert",
			"fn f(v: Vec3, s: f32) -> Vec3 { v.y = s; v.x += s; v }",
			`fn f(v_0: Vec3, s_0: f32) -> Vec3 {
  v_1 = Insert.y(v_0, s_0)
  t0 = Extract.x(v_1)
  t1 = Add(t0, s_0)
  v_2 = Insert.x(v_1, t1)
  return v_2
}`,
		},
		{
			"method_call_and_path",
			"fn f(x: f32) -> f32 { x.max(0.0) * consts::PI }",
			`fn f(x_0: f32) -> f32 {
  t0 = 0.0f32
  t1 = max(x_0, t0)
  t2 = const consts::PI
  t3 = Mul(t1, t2)
  return t3
}`,
		},
		{
			"literals",
			`fn f(x: f32) -> f32 { let a = 2; let b = 3f64; let c = true; let s = "hi"; x }`,
			`fn f(x_0: f32) -> f32 {
  t0 = 2i32
  a_0 = t0
  t1 = 3f64
  b_0 = t1
  t2 = true
  c_0 = t2
  t3 = "hi"
  s_0 = t3
  return x_0
}`,
		},
		{
			"block_splice",
			"fn f(x: f32) -> f32 { let y = { let z = -x; z * z }; y }",
			`fn f(x_0: f32) -> f32 {
  t0 = Neg(x_0)
  z_0 = t0
  t1 = Mul(z_0, z_0)
  y_0 = t1
  return y_0
}`,
		},
		{
			"final_return",
			"fn f(x: f32) -> f32 { let y = x; return y; }",
			`fn f(x_0: f32) -> f32 {
  y_0 = x_0
  return y_0
}`,
		},
		{
			"else_if",
			"fn f(x: f32) -> f32 { if x < 0.0 { 0.0 } else if x < 1.0 { x } else { 1.0 } }",
			`fn f(x_0: f32) -> f32 {
  t0 = 0.0f32
  t1 = Lt(x_0, t0)
  t7 = if t1 {
    t2 = 0.0f32
    return t2
  } else {
    t3 = 1.0f32
    t4 = Lt(x_0, t3)
    t6 = if t4 {
      return x_0
    } else {
      t5 = 1.0f32
      return t5
    }
    return t6
  }
  return t7
}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := lowerOK(t, tt.input)
			require.Len(t, mod.Functions, 1)
			assert.Equal(t, tt.want, mod.Functions[0].String())
		})
	}
}

func TestAssignmentInArmDoesNotEscape(t *testing.T) {
	mod := lowerOK(t, `fn f(x: f32, c: bool) -> f32 {
    let y = x;
    let z = if c { y = 2.0; y } else { y };
    y + z
}`)
	fn := mod.Functions[0]
	ret, ok := fn.Body.Return()
	require.True(t, ok)
	last := fn.Body.Lets[len(fn.Body.Lets)-1]
	assert.Equal(t, ret, last.Var)
	call, ok := last.Expr.(*ir.CallExpr)
	require.True(t, ok)
	assert.Equal(t, ir.Named("y", 0), call.Args[0], "outer y is unchanged after the arm")
	assert.Equal(t, ir.Named("z", 0), call.Args[1])
}

func TestSSAUniqueness(t *testing.T) {
	mod := lowerOK(t, `
fn sqr(x: f32) -> f32 { x * x }
fn h(x: f32, v: Vec3) -> f32 {
    let a = x;
    let a = if a > 0.0 { let a = a * 2.0; a } else { let a = a - 1.0; a };
    let b = { let a = a + 1.0; a };
    let v2 = v;
    v2.x = a;
    v2.y += b;
    a = a + v2.x;
    sqr(a).max(b)
}`)
	for _, fn := range mod.Functions {
		seen := make(map[ir.Var]bool)
		for _, p := range fn.Params {
			assert.False(t, seen[p.Var], "param %s", p.Var)
			seen[p.Var] = true
		}
		fn.Body.Walk(func(l *ir.Let) {
			assert.False(t, seen[l.Var], "%s bound twice in %s", l.Var, fn.Name)
			seen[l.Var] = true
		})
	}
}

func TestLowerErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  diagnostics.ErrorCode
		kind  error
		line  int
	}{
		{"undefined", "fn f(x: f32) -> f32 {\n  x + y\n}", diagnostics.ErrL002, diagnostics.UndefinedVariable, 2},
		{"undefined_assign", "fn f(x: f32) -> f32 { y = x; x }", diagnostics.ErrL002, diagnostics.UndefinedVariable, 1},
		{"out_of_scope", "fn f(x: f32) -> f32 { let y = { let z = x; z }; z }", diagnostics.ErrL002, diagnostics.UndefinedVariable, 1},
		{"generic_fn", "fn id<T>(x: T) -> T { x }", diagnostics.ErrL001, diagnostics.UnsupportedConstruct, 1},
		{"turbofish", "fn f(x: f32) -> f32 { g::<f32>(x) }", diagnostics.ErrL001, diagnostics.UnsupportedConstruct, 1},
		{"reference", "fn f(x: f32) -> f32 { g(&x) }", diagnostics.ErrL001, diagnostics.UnsupportedConstruct, 1},
		{"ref_param", "fn f(x: &f32) -> f32 { 1.0 }", diagnostics.ErrL001, diagnostics.UnsupportedConstruct, 1},
		{"let_mut", "fn f(x: f32) -> f32 { let mut y = x; y }", diagnostics.ErrL001, diagnostics.UnsupportedConstruct, 1},
		{"if_without_else", "fn f(x: f32) -> f32 {\n  if x > 0.0 { x };\n  x\n}", diagnostics.ErrL001, diagnostics.UnsupportedConstruct, 2},
		{"early_return", "fn f(x: f32) -> f32 { return x; x }", diagnostics.ErrL001, diagnostics.UnsupportedConstruct, 1},
		{"nested_return", "fn f(x: f32) -> f32 { let y = { return x; }; y }", diagnostics.ErrL001, diagnostics.UnsupportedConstruct, 1},
		{"missing_return_type", "fn f(x: f32) { x }", diagnostics.ErrL001, diagnostics.UnsupportedConstruct, 1},
		{"no_value", "fn f(x: f32) -> f32 { let y = x; }", diagnostics.ErrL001, diagnostics.UnsupportedConstruct, 1},
		{"xor", "fn f(x: i32) -> i32 { x ^ 1 }", diagnostics.ErrL001, diagnostics.UnsupportedConstruct, 1},
		{"cast", "fn f(x: i32) -> f32 { x as f32 }", diagnostics.ErrL001, diagnostics.UnsupportedConstruct, 1},
		{"loop", "fn f(x: f32) -> f32 {\n  loop { }\n  x\n}", diagnostics.ErrL001, diagnostics.UnsupportedConstruct, 2},
		{"index", "fn f(v: Vec3) -> f32 { v[0] }", diagnostics.ErrL001, diagnostics.UnsupportedConstruct, 1},
		{"duplicate_param", "fn f(x: f32,\n  x: f32) -> f32 { x }", diagnostics.ErrL001, diagnostics.UnsupportedConstruct, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := run(tt.input)
			require.Len(t, ctx.Errors, 1)
			err := ctx.Errors[0]
			assert.Equal(t, tt.code, err.Code, err.Error())
			assert.Equal(t, tt.line, err.Token.Line)
			assert.ErrorIs(t, ctx.Err(), tt.kind)
			assert.Nil(t, ctx.Module, "no IR on failure")
		})
	}
}

func TestFailureAbortsWholeUnit(t *testing.T) {
	ctx := run("fn ok(x: f32) -> f32 { x }\nfn bad(x: f32) -> f32 { y }\n")
	require.Len(t, ctx.Errors, 1)
	assert.Nil(t, ctx.Module)
}
