package bundle

import (
	"github.com/funvibe/emojc/internal/diagnostics"
	"github.com/funvibe/emojc/internal/pipeline"
	"github.com/funvibe/emojc/internal/token"
)

// EmitProcessor writes the compiled bundle. It is skipped when upstream
// stages failed or no output path was requested.
type EmitProcessor struct{}

func (ep *EmitProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.HadError() || ctx.OutputPath == "" || len(ctx.Units) == 0 {
		return ctx
	}
	main := ctx.Units[len(ctx.Units)-1]
	if _, err := Write(ctx.OutputPath, main.Pkg.Name(), main.Pkg.Version().String(), ctx.Registry); err != nil {
		ctx.Error(diagnostics.Wrap(token.SourcePosition{File: ctx.OutputPath}, err))
	}
	return ctx
}
