// Package codegen emits Go source for the lifted form of every function in a
// lowered module.
//
// A source function f becomes
//
//	func fAD(ctx *ad.Context, x_0 ad.Dual, ...) (ad.Dual, func(), func())
//
// returning its result, a closure that clears every adjoint the call owns,
// and a closure that backpropagates from the result's adjoint.
package codegen

import (
	"fmt"
	"path"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"

	"github.com/funvibe/adjoint/internal/config"
	"github.com/funvibe/adjoint/internal/diagnostics"
	"github.com/funvibe/adjoint/internal/ir"
	"github.com/funvibe/adjoint/internal/symbols"
)

// Version is bumped whenever the generated code changes shape, so cached
// output from an older generator is not reused.
const Version = "1"

// RuntimeName is the identifier generated code uses for the runtime package.
const RuntimeName = "ad"

type Generator struct {
	cfg *config.Config
	reg *symbols.Registry
}

func New(cfg *config.Config, reg *symbols.Registry) *Generator {
	return &Generator{cfg: cfg, reg: reg}
}

// Generate renders mod as one formatted Go file. tables must hold one entry
// per function of mod, in order. source names the input in the header.
func (g *Generator) Generate(mod *ir.Module, tables []*symbols.Table, source string) ([]byte, *diagnostics.DiagnosticError) {
	if len(tables) != len(mod.Functions) {
		return nil, diagnostics.NewInternalError(diagnostics.ErrG001, "%d symbol tables for %d functions", len(tables), len(mod.Functions))
	}

	funcs := make([]string, 0, len(mod.Functions))
	for i, fn := range mod.Functions {
		text, err := g.function(fn, tables[i])
		if err != nil {
			return nil, err
		}
		funcs = append(funcs, text)
	}

	pkg := g.cfg.Package
	if pkg == "" {
		pkg = config.DefaultPackage
	}
	alias := ""
	if path.Base(g.cfg.Runtime) != RuntimeName {
		alias = RuntimeName
	}

	var buf strings.Builder
	err := fileTemplate.Execute(&buf, fileData{
		Source:       source,
		Package:      pkg,
		Runtime:      g.cfg.Runtime,
		RuntimeAlias: alias,
		Functions:    funcs,
	})
	if err != nil {
		return nil, diagnostics.NewInternalError(diagnostics.ErrG001, "executing template: %v", err)
	}

	out, err := imports.Process(source+".go", []byte(buf.String()), &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return nil, diagnostics.NewInternalError(diagnostics.ErrG001, "formatting generated code: %v", err)
	}
	return out, nil
}

type fileData struct {
	Source       string
	Package      string
	Runtime      string
	RuntimeAlias string
	Functions    []string
}

var fileTemplate = template.Must(template.New("file").Parse(`// Code generated by adjc from {{.Source}}. DO NOT EDIT.

package {{.Package}}

import (
	{{if .RuntimeAlias}}{{.RuntimeAlias}} {{end}}"{{.Runtime}}"
)
{{range .Functions}}
{{.}}
{{- end}}
`))

// goType is the Go type holding values of kind k.
func goType(k symbols.Kind) (string, bool) {
	switch k.Class {
	case symbols.KindScalar:
		return RuntimeName + ".Dual", true
	case symbols.KindVector:
		return RuntimeName + ".Vec", true
	case symbols.KindString:
		return "string", true
	}
	return "", false
}

func lowering(fn *ir.Function, format string, args ...interface{}) *diagnostics.DiagnosticError {
	return diagnostics.NewError(diagnostics.ErrG001, fn.Pos, "%s: %s", fn.Name, fmt.Sprintf(format, args...))
}
