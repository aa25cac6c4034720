package pipeline

import (
	"io"
	"log"

	"github.com/funvibe/adjoint/internal/ast"
	"github.com/funvibe/adjoint/internal/config"
	"github.com/funvibe/adjoint/internal/diagnostics"
	"github.com/funvibe/adjoint/internal/ir"
	"github.com/funvibe/adjoint/internal/symbols"
	"github.com/funvibe/adjoint/internal/token"
)

// PipelineContext carries one compilation unit through the stages.
type PipelineContext struct {
	SourceCode string
	FilePath   string
	Config     *config.Config
	Logger     *log.Logger

	Tokens   []token.Token
	AstRoot  *ast.Unit
	Module   *ir.Module
	Tables   []*symbols.Table // one per Module.Functions entry
	Registry *symbols.Registry
	Output   []byte

	Errors []*diagnostics.DiagnosticError
}

// NewContext prepares a context for src. A nil cfg means config.Default().
func NewContext(src, filePath string, cfg *config.Config) *PipelineContext {
	if cfg == nil {
		cfg = config.Default()
	}
	return &PipelineContext{
		SourceCode: src,
		FilePath:   filePath,
		Config:     cfg,
		Logger:     log.New(io.Discard, "", 0),
	}
}

// Logf writes a trace line to the context logger, if any.
func (ctx *PipelineContext) Logf(format string, args ...interface{}) {
	if ctx.Logger != nil {
		ctx.Logger.Printf(format, args...)
	}
}

// AddError records err, filling in the file path.
func (ctx *PipelineContext) AddError(err *diagnostics.DiagnosticError) {
	if err.File == "" {
		err.File = ctx.FilePath
	}
	ctx.Errors = append(ctx.Errors, err)
}

// Err returns the collected errors as a single error value.
func (ctx *PipelineContext) Err() error {
	return diagnostics.ErrorList(ctx.Errors).Err()
}
