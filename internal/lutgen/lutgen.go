// Package lutgen emits Go source for the 8-bit sRGB transfer tables.
package lutgen

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"
)

const Size = 256

// perLine is the number of table entries written per source line.
const perLine = 8

// SRGBToLinear1 decodes one sRGB-encoded channel value in [0, 1].
func SRGBToLinear1(s float32) float32 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return float32(math.Pow(float64((s+0.055)/1.055), 2.4))
}

// LinearToSRGB1 encodes one linear channel value in [0, 1].
func LinearToSRGB1(l float32) float32 {
	if l <= 0.0031308 {
		return l * 12.92
	}
	return float32(math.Pow(float64(l), 1.0/2.4))*1.055 - 0.055
}

// Tables evaluates both transfer functions at i/255 for every 8-bit i.
func Tables() (toSRGB, toLinear [Size]float32) {
	for i := range toSRGB {
		x := float32(i) / 255
		toSRGB[i] = LinearToSRGB1(x)
		toLinear[i] = SRGBToLinear1(x)
	}
	return toSRGB, toLinear
}

type table struct {
	Name string
	Doc  string
	Rows []string
}

func rows(values [Size]float32) []string {
	var out []string
	for i := 0; i < Size; i += perLine {
		parts := make([]string, 0, perLine)
		for _, v := range values[i : i+perLine] {
			parts = append(parts, strconv.FormatFloat(float64(v), 'g', -1, 32))
		}
		out = append(out, strings.Join(parts, ", ")+",")
	}
	return out
}

const fileTemplate = `// Code generated by adjc lut. DO NOT EDIT.

package {{.Package}}
{{range .Tables}}
// {{.Name}} {{.Doc}}
var {{.Name}} = [{{$.Size}}]float32{
{{- range .Rows}}
	{{.}}
{{- end}}
}
{{end}}`

var tmpl = template.Must(template.New("lut").Parse(fileTemplate))

// Generate renders LinearToSRGB and SRGBToLinear as package-level arrays in
// package pkg.
func Generate(pkg string) ([]byte, error) {
	toSRGB, toLinear := Tables()

	var buf strings.Builder
	err := tmpl.Execute(&buf, struct {
		Package string
		Size    int
		Tables  []table
	}{
		Package: pkg,
		Size:    Size,
		Tables: []table{
			{"LinearToSRGB", "maps a linear 8-bit channel, as i/255, to its sRGB encoding.", rows(toSRGB)},
			{"SRGBToLinear", "maps an sRGB 8-bit channel, as i/255, to linear intensity.", rows(toLinear)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	out, err := imports.Process("lut_gen.go", []byte(buf.String()), nil)
	if err != nil {
		return nil, fmt.Errorf("formatting tables: %w", err)
	}
	return out, nil
}
