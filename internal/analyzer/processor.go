package analyzer

import (
	"github.com/funvibe/adjoint/internal/pipeline"
)

type AnalyzerProcessor struct{}

func (ap *AnalyzerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Module == nil {
		return ctx
	}
	ctx.Registry = NewRegistry(ctx.Module, ctx.Config)
	tables, err := Analyze(ctx.Module, ctx.Registry)
	if err != nil {
		ctx.AddError(err)
		return ctx
	}
	ctx.Tables = tables
	for _, tbl := range tables {
		ctx.Logf("analyzer: %s: %d params, %d bindings", tbl.Function, len(tbl.Params()), len(tbl.Order()))
	}
	return ctx
}
