package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	data := []byte(`
package: shading
suffix: Grad
export: true
externs:
  - name: fresnel
    go: optics.FresnelAD
    returns: f32
    arity: 2
constants:
  material::IOR: "1.5"
`)
	cfg, err := ParseConfig(data, "adjoint.yaml")
	require.NoError(t, err)

	assert.Equal(t, "shading", cfg.Package)
	assert.Equal(t, DefaultRuntimePath, cfg.Runtime)
	assert.Equal(t, "SqrGrad", cfg.LiftedName("sqr"))

	ext, ok := cfg.Extern("fresnel")
	require.True(t, ok)
	assert.Equal(t, "optics.FresnelAD", ext.Go)
	assert.Equal(t, 2, ext.Arity)

	expr, ok := cfg.Constant("material::IOR")
	require.True(t, ok)
	assert.Equal(t, "1.5", expr)

	expr, ok = cfg.Constant("consts::PI")
	require.True(t, ok)
	assert.Equal(t, "math.Pi", expr)

	_, ok = cfg.Constant("nope::X")
	assert.False(t, ok)
}

func TestParseConfigEmpty(t *testing.T) {
	cfg, err := ParseConfig(nil, "adjoint.yaml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "sqrAD", cfg.LiftedName("sqr"))
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown field", "pakage: x\n", "field pakage not found"},
		{"bad package", "package: 1abc\n", "not a valid Go identifier"},
		{"bad suffix", "suffix: \"-\"\n", "cannot form a Go identifier"},
		{"extern without name", "externs:\n  - go: f\n    returns: f32\n", "name is required"},
		{"extern without go", "externs:\n  - name: f\n    returns: f32\n", "go is required"},
		{"extern without returns", "externs:\n  - name: f\n    go: F\n", "returns is required"},
		{"extern bad returns", "externs:\n  - name: f\n    go: F\n    returns: Mat4\n", "no runtime lift"},
		{"duplicate extern", "externs:\n  - {name: f, go: F, returns: f32}\n  - {name: f, go: G, returns: f32}\n", "already declared"},
		{"empty constant", "constants:\n  a::B: \" \"\n", "empty Go expression"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml), "adjoint.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFindConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := FindConfig(nested)
	require.NoError(t, err)
	assert.Empty(t, found)

	cfgPath := filepath.Join(root, "a", "adjoint.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("package: a\n"), 0o644))

	found, err = FindConfig(nested)
	require.NoError(t, err)
	assert.Equal(t, cfgPath, found)

	cfg, err := LoadConfig(found)
	require.NoError(t, err)
	assert.Equal(t, "a", cfg.Package)
}

func TestFingerprintStable(t *testing.T) {
	a := &Config{Constants: map[string]string{"b::X": "1", "a::Y": "2", "c::Z": "3"}}
	b := &Config{Constants: map[string]string{"c::Z": "3", "a::Y": "2", "b::X": "1"}}
	fa, err := a.Fingerprint()
	require.NoError(t, err)
	fb, err := b.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fa, fb)
}

func TestIsLiftable(t *testing.T) {
	assert.True(t, IsLiftable("f32"))
	assert.True(t, IsLiftable("Vec3"))
	assert.True(t, IsLiftable("f32x4"))
	assert.False(t, IsLiftable("Mat4"))
	assert.False(t, IsLiftable("String"))
}
