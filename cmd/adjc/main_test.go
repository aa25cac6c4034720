package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestCompileToDefaultOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shading")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	src := writeSource(t, dir, "sqr.adj", "fn sqr(x: f32) -> f32 { x * x }")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-no-cache", src}, &stdout, &stderr, false)
	require.Equal(t, 0, code, stderr.String())

	data, err := os.ReadFile(filepath.Join(dir, "sqr_ad.go"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "package shading")
	assert.Contains(t, string(data), "func sqrAD(")
	assert.Empty(t, stdout.String())
}

func TestCompileFlags(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "sqr.adj", "fn sqr(x: f32) -> f32 { x * x }")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-no-cache", "-pkg", "render", "-o", "-", "-v", src}, &stdout, &stderr, false)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "package render")
	assert.Contains(t, stderr.String(), "adjc: lower: 1 functions")

	stdout.Reset()
	code = run([]string{"-no-cache", "-emit", "ir", src}, &stdout, &stderr, false)
	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "fn sqr(x_0: f32) -> f32 {\n  t0 = Mul(x_0, x_0)\n  return t0\n}\n", stdout.String())
}

func TestCompileConfigFlag(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "sqr.adj", "fn sqr(x: f32) -> f32 { x * x }")
	cfg := writeSource(t, dir, "custom.yaml", "suffix: Grad\nexport: true\n")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-no-cache", "-config", cfg, "-o", "-", src}, &stdout, &stderr, false)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "func SqrGrad(")

	bad := writeSource(t, dir, "bad.yaml", "sufix: Grad\n")
	code = run([]string{"-no-cache", "-config", bad, src}, &stdout, &stderr, false)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "field sufix not found")
}

func TestCompileReportsDiagnostics(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "bad.adj", "fn f(x: f32) -> f32 {\n  y\n}\n")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-no-cache", src}, &stdout, &stderr, false)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "bad.adj:2:3: [L002]")
	assert.NoFileExists(t, filepath.Join(dir, "bad_ad.go"))

	stderr.Reset()
	code = run([]string{"-no-cache", src}, &stdout, &stderr, true)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "\x1b[31m[L002]\x1b[0m")
}

func TestUsageErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(nil, &stdout, &stderr, false))
	assert.Contains(t, stderr.String(), "usage: adjc")

	assert.Equal(t, 2, run([]string{"-emit", "asm", "x.adj"}, &stdout, &stderr, false))
	assert.Equal(t, 1, run([]string{filepath.Join(t.TempDir(), "missing.adj")}, &stdout, &stderr, false))
	assert.Equal(t, 2, run([]string{"vec", "extra"}, &stdout, &stderr, false))
}

func TestGenerators(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"vec", "-pkg", "simd"}, &stdout, &stderr, false), stderr.String())
	assert.Contains(t, stdout.String(), "package simd")
	assert.Contains(t, stdout.String(), "type F32x4 [4]float32")

	dir := filepath.Join(t.TempDir(), "color")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	out := filepath.Join(dir, "lut_gen.go")
	require.Equal(t, 0, run([]string{"lut", "-o", out}, &stdout, &stderr, false), stderr.String())
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "package color")
	assert.Contains(t, string(data), "var LinearToSRGB = [256]float32{")
}
