package parser

import (
	"github.com/funvibe/adjoint/internal/pipeline"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	parser := New(ctx.Tokens, ctx)
	ctx.AstRoot = parser.ParseUnit()
	ctx.AstRoot.File = ctx.FilePath
	ctx.Logf("parser: %d functions", len(ctx.AstRoot.Functions))
	return ctx
}
