package codegen

import (
	"path/filepath"

	"github.com/funvibe/adjoint/internal/pipeline"
)

type CodegenProcessor struct{}

func (cp *CodegenProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Module == nil || ctx.Registry == nil {
		return ctx
	}
	out, err := New(ctx.Config, ctx.Registry).Generate(ctx.Module, ctx.Tables, filepath.Base(ctx.FilePath))
	if err != nil {
		ctx.AddError(err)
		return ctx
	}
	ctx.Output = out
	ctx.Logf("codegen: %d bytes", len(out))
	return ctx
}
