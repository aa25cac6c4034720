package lower

import (
	"github.com/funvibe/adjoint/internal/pipeline"
)

type LowerProcessor struct{}

func (lp *LowerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil {
		return ctx
	}
	mod, err := LowerUnit(ctx.AstRoot)
	if err != nil {
		ctx.AddError(err)
		return ctx
	}
	ctx.Module = mod
	ctx.Logf("lower: %d functions", len(mod.Functions))
	return ctx
}
