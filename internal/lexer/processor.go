package lexer

import (
	"github.com/funvibe/adjoint/internal/diagnostics"
	"github.com/funvibe/adjoint/internal/pipeline"
	"github.com/funvibe/adjoint/internal/token"
)

type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	ctx.Tokens = Tokenize(ctx.SourceCode)

	for _, tok := range ctx.Tokens {
		if tok.Type != token.ILLEGAL {
			continue
		}
		msg, _ := tok.Literal.(string)
		ctx.AddError(diagnostics.NewError(diagnostics.ErrP001, tok, "%s", msg))
	}
	ctx.Logf("lexer: %d tokens", len(ctx.Tokens))
	return ctx
}
