package codegen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/adjoint/internal/analyzer"
	"github.com/funvibe/adjoint/internal/codegen"
	"github.com/funvibe/adjoint/internal/config"
	"github.com/funvibe/adjoint/internal/diagnostics"
	"github.com/funvibe/adjoint/internal/lexer"
	"github.com/funvibe/adjoint/internal/lower"
	"github.com/funvibe/adjoint/internal/parser"
	"github.com/funvibe/adjoint/internal/pipeline"
)

func run(input string, cfg *config.Config) *pipeline.PipelineContext {
	ctx := pipeline.NewContext(input, "test.adj", cfg)
	return pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&lower.LowerProcessor{},
		&analyzer.AnalyzerProcessor{},
		&codegen.CodegenProcessor{},
	).Run(ctx)
}

func generate(t *testing.T, input string) string {
	t.Helper()
	ctx := run(input, nil)
	require.NoError(t, ctx.Err())
	require.NotEmpty(t, ctx.Output)
	return string(ctx.Output)
}

func TestGenerateSquare(t *testing.T) {
	want := `// Code generated by adjc from test.adj. DO NOT EDIT.

package main

import (
	"github.com/funvibe/adjoint/pkg/ad"
)

// sqrAD is the differentiable form of sqr.
func sqrAD(ctx *ad.Context, x_0 ad.Dual) (ad.Dual, func(), func()) {
	tape := ctx.Tape()
	var t0 ad.Dual
	t0 = tape.Record(ad.Mul(ctx, x_0, x_0))
	return t0, tape.ResetGrad, tape.Backward
}
`
	assert.Equal(t, want, generate(t, "fn sqr(x: f32) -> f32 { x * x }"))
}

func TestGenerateConditional(t *testing.T) {
	out := generate(t, `
fn sqr(x: f32) -> f32 { x * x }
fn pow4(x: f32) -> f32 { sqr(sqr(x)) }
fn g(x: f32, const k: f32) -> f32 {
    let y = if x > 1.0 { pow4(x) } else { sqr(x) };
    y * k
}
`)
	want := `// gAD is the differentiable form of g.
func gAD(ctx *ad.Context, x_0 ad.Dual, k_0 ad.Dual) (ad.Dual, func(), func()) {
	tape := ctx.Tape()
	var t0 ad.Dual
	var t1 ad.Dual
	var t2 ad.Dual
	var t3 ad.Dual
	var t4 ad.Dual
	var y_0 ad.Dual
	var t5 ad.Dual
	t0 = ad.Const(1.0)
	t1 = tape.Record(ad.Gt(ctx, x_0, t0))
	t4 = ad.Select(tape, t1, func() (ad.Dual, func(), func()) {
		tape := ctx.Tape()
		t2 = tape.Record(pow4AD(ctx, x_0))
		return t2, tape.ResetGrad, tape.Backward
	}, func() (ad.Dual, func(), func()) {
		tape := ctx.Tape()
		t3 = tape.Record(sqrAD(ctx, x_0))
		return t3, tape.ResetGrad, tape.Backward
	})
	y_0 = t4
	t5 = tape.Record(ad.Mul(ctx, y_0, k_0))
	return t5, tape.ResetGrad, tape.Backward
}
`
	assert.Contains(t, out, want)
	assert.Contains(t, out, "t0 = tape.Record(sqrAD(ctx, x_0))\n\tt1 = tape.Record(sqrAD(ctx, t0))")
}

func TestGenerateLeavesCallerSlotsAlone(t *testing.T) {
	out := generate(t, `fn f(v: Vec3, x: f32) -> f32 {
    let y = x;
    v.x = y;
    let w = if x > 0.0 { v } else { v };
    w.y * y
}`)
	assert.Contains(t, out, "var y_0 ad.Dual\n")
	assert.Contains(t, out, "var v_1 ad.Vec\n")
	assert.Contains(t, out, "y_0 = x_0\n")
	assert.Contains(t, out, "v_1 = ad.Insert(v_0, 0, y_0)\n")
	assert.NotContains(t, out, "ctx.Zero")
	assert.NotContains(t, out, ".ResetGrad()")
	assert.Contains(t, out, "return t4, tape.ResetGrad, tape.Backward\n}\n")
}

func TestGenerateIsDeterministic(t *testing.T) {
	src := `
fn f(v: Vec3, s: f32) -> f32 { let w = v * s; dot(w, v) + w.x }
fn h(x: f32) -> f32 { if x > 0.0 { f(vec3(x, x, x), x) } else { -x } }
`
	first := generate(t, src)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, generate(t, src))
	}
}

func TestGenerateForms(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			"unused_constants",
			`fn f(x: f32) -> f32 { let a = 2; let b = 3f64; let c = true; let s = "hi"; x }`,
			[]string{
				"var a_0 ad.Dual",
				"var s_0 string",
				"t2 = ad.Bool(true)",
				`t3 = "hi"`,
				"_ = a_0\n\t_ = b_0\n\t_ = c_0\n\t_ = s_0\n",
			},
		},
		{
			"builtin_constant",
			"fn f(x: f32) -> f32 { x * consts::PI }",
			[]string{`"math"`, "t0 = ad.Const(math.Pi)"},
		},
		{
			"vector_ops",
			"fn f(a: Vec3, b: Vec3, s: f32) -> Vec3 { -(a + b) * s / s - s * a }",
			[]string{
				"var t0 ad.Vec",
				"t0 = tape.RecordVec(ad.VAdd(ctx, a_0, b_0))",
				"t1 = tape.RecordVec(ad.VNeg(ctx, t0))",
				"t2 = tape.RecordVec(ad.VScale(ctx, t1, s_0))",
				"t3 = tape.RecordVec(ad.VDivScalar(ctx, t2, s_0))",
				"t4 = tape.RecordVec(ad.VScale(ctx, a_0, s_0))",
				"t5 = tape.RecordVec(ad.VSub(ctx, t3, t4))",
			},
		},
		{
			"lanes",
			"fn f(v: Vec4, s: f32) -> Vec4 { v.w = v.r * s; v }",
			[]string{
				"t0 = ad.Extract(v_0, 0)",
				"v_1 = ad.Insert(v_0, 3, t1)",
			},
		},
		{
			"constructor_and_intrinsics",
			"fn f(x: f32) -> f32 { length(vec2(x, x.sqrt())) + pow(x, 2.0) }",
			[]string{
				"t0 = tape.Record(ad.Sqrt(ctx, x_0))",
				"t1 = ad.Vec{x_0, t0}",
				"t2 = tape.Record(ad.Length(ctx, t1))",
				"t4 = tape.Record(ad.Pow(ctx, x_0, t3))",
			},
		},
		{
			"integer_division",
			"fn f(n: i32, x: f32) -> f32 { let q = n / 2; let r = 7 / 2; x / q + x / 2 + r }",
			[]string{
				"t1 = tape.Record(ad.IDiv(ctx, n_0, t0))",
				"t4 = tape.Record(ad.IDiv(ctx, t2, t3))",
				"t5 = tape.Record(ad.Div(ctx, x_0, q_0))",
				"t7 = tape.Record(ad.Div(ctx, x_0, t6))",
			},
		},
		{
			"vector_conditional",
			"fn f(v: Vec2, c: bool) -> Vec2 { if c { v } else { -v } }",
			[]string{"t1 = ad.Select(tape, c_0, func() (ad.Vec, func(), func()) {"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := generate(t, tt.input)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestGenerateExternsAndConfig(t *testing.T) {
	cfg, err := config.ParseConfig([]byte(`
package: shading
runtime: example.com/rt/dual
suffix: Grad
export: true
externs:
  - name: fresnel
    go: optics.FresnelGrad
    returns: f32
    arity: 2
constants:
  material::IOR: "1.5"
`), "adjoint.yaml")
	require.NoError(t, err)

	ctx := run("fn f(x: f32) -> f32 { fresnel(x, material::IOR) }", cfg)
	require.NoError(t, ctx.Err())
	out := string(ctx.Output)

	assert.Contains(t, out, "package shading")
	assert.Contains(t, out, `ad "example.com/rt/dual"`)
	assert.Contains(t, out, "func FGrad(ctx *ad.Context, x_0 ad.Dual)")
	assert.Contains(t, out, "t0 = ad.Const(1.5)")
	assert.Contains(t, out, "t1 = tape.Record(optics.FresnelGrad(ctx, x_0, t0))")
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"unliftable_param", "fn f(x: String) -> f32 { 1.0 }", "no runtime lift"},
		{"unliftable_return", "fn f(x: f32) -> Color { x }", "no runtime lift"},
		{"unknown_callee", "fn f(x: f32) -> f32 { mystery(x) }", "unknown function mystery"},
		{"bad_lane", "fn f(v: Vec2) -> f32 { v.z }", "vec2 has no lane z"},
		{"field_of_scalar", "fn f(x: f32) -> f32 { x.x }", "field .x of scalar value"},
		{"vector_plus_scalar", "fn f(v: Vec3, s: f32) -> Vec3 { v + s }", "no vector form of Add(vec3, scalar)"},
		{"mismatched_lanes", "fn f(a: Vec3, b: Vec2) -> f32 { dot(a, b) }", "expected vec3, got vec2"},
		{"arity", "fn f(x: f32) -> f32 { sqrt(x, x) }", "takes 1 argument(s), got 2"},
		{"user_arg_kind", "fn g(v: Vec2) -> f32 { v.x }\nfn f(x: f32) -> f32 { g(x) }", "argument 1 of g: expected vec2, got scalar"},
		{"result_kind", "fn f(v: Vec2) -> f32 { v }", "result is vec2, declared f32"},
		{"mixed_arms", "fn f(v: Vec2, x: f32) -> f32 { let y = if x > 0.0 { v } else { x }; x }", "arms yield unknown and cannot be selected"},
		{"string_operand", `fn f(x: f32) -> f32 { let s = "a"; x + s }`, "operand 2 of Add is string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := run(tt.input, nil)
			require.Len(t, ctx.Errors, 1)
			err := ctx.Errors[0]
			assert.Equal(t, diagnostics.ErrG001, err.Code)
			assert.Contains(t, err.Message, tt.msg)
			assert.ErrorIs(t, ctx.Err(), diagnostics.UnsupportedLowering)
			assert.Nil(t, ctx.Output)
		})
	}
}
