// Package vecgen emits Go source for fixed-width float vector types with
// lane-wise arithmetic.
package vecgen

import (
	"fmt"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"
)

// Type describes one vector type to emit.
type Type struct {
	Name  string // F32x3
	Elem  string // float32
	Lanes int
}

// DefaultTypes are the 2-, 3- and 4-lane float32 vectors.
var DefaultTypes = []Type{
	{Name: "F32x2", Elem: "float32", Lanes: 2},
	{Name: "F32x3", Elem: "float32", Lanes: 3},
	{Name: "F32x4", Elem: "float32", Lanes: 4},
}

type op struct {
	Method string
	Token  string
}

var ops = []op{
	{"Add", "+"},
	{"Sub", "-"},
	{"Mul", "*"},
	{"Div", "/"},
}

const fileTemplate = `// Code generated by adjc vec. DO NOT EDIT.

package {{.Package}}
{{range .Types}}{{$t := .}}
// {{.Name}} is a vector of {{.Lanes}} {{.Elem}} lanes.
type {{.Name}} [{{.Lanes}}]{{.Elem}}

// Splat{{.Name}} returns a {{.Name}} with every lane set to x.
func Splat{{.Name}}(x {{.Elem}}) {{.Name}} {
	var v {{.Name}}
	for i := range v {
		v[i] = x
	}
	return v
}
{{range $.Ops}}
func (a {{$t.Name}}) {{.Method}}(b {{$t.Name}}) {{$t.Name}} {
	var v {{$t.Name}}
	for i := range v {
		v[i] = a[i] {{.Token}} b[i]
	}
	return v
}
{{end}}{{end}}`

var tmpl = template.Must(template.New("vec").Parse(fileTemplate))

// Generate renders types into a formatted Go file in package pkg.
func Generate(pkg string, types []Type) ([]byte, error) {
	for _, t := range types {
		if t.Lanes <= 0 {
			return nil, fmt.Errorf("vector type %s: lane count must be positive", t.Name)
		}
	}

	var buf strings.Builder
	err := tmpl.Execute(&buf, struct {
		Package string
		Types   []Type
		Ops     []op
	}{pkg, types, ops})
	if err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	out, err := imports.Process("vec_gen.go", []byte(buf.String()), nil)
	if err != nil {
		return nil, fmt.Errorf("formatting vector types: %w", err)
	}
	return out, nil
}
