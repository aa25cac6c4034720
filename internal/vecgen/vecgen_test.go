package vecgen

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	out, err := Generate("simd", DefaultTypes)
	require.NoError(t, err)

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "vec_gen.go", out, parser.ParseComments)
	require.NoError(t, err)
	assert.Equal(t, "simd", file.Name.Name)

	types := map[string]bool{}
	methods := map[string][]string{}
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				types[spec.(*ast.TypeSpec).Name.Name] = true
			}
		case *ast.FuncDecl:
			if d.Recv == nil {
				methods[""] = append(methods[""], d.Name.Name)
				continue
			}
			recv := d.Recv.List[0].Type.(*ast.Ident).Name
			methods[recv] = append(methods[recv], d.Name.Name)
		}
	}

	for _, name := range []string{"F32x2", "F32x3", "F32x4"} {
		assert.True(t, types[name], name)
		assert.Equal(t, []string{"Add", "Sub", "Mul", "Div"}, methods[name])
	}
	assert.Equal(t, []string{"SplatF32x2", "SplatF32x3", "SplatF32x4"}, methods[""])
}

func TestGenerateText(t *testing.T) {
	out, err := Generate("simd", []Type{{Name: "F64x2", Elem: "float64", Lanes: 2}})
	require.NoError(t, err)
	want := `// Code generated by adjc vec. DO NOT EDIT.

package simd

// F64x2 is a vector of 2 float64 lanes.
type F64x2 [2]float64

// SplatF64x2 returns a F64x2 with every lane set to x.
func SplatF64x2(x float64) F64x2 {
	var v F64x2
	for i := range v {
		v[i] = x
	}
	return v
}

func (a F64x2) Add(b F64x2) F64x2 {
	var v F64x2
	for i := range v {
		v[i] = a[i] + b[i]
	}
	return v
}
`
	assert.Contains(t, string(out), want)
	assert.Contains(t, string(out), "v[i] = a[i] / b[i]")
}

func TestGenerateRejectsEmptyVector(t *testing.T) {
	_, err := Generate("simd", []Type{{Name: "F32x0", Elem: "float32"}})
	assert.ErrorContains(t, err, "lane count must be positive")
}
