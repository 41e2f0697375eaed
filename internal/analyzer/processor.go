package analyzer

import (
	"github.com/funvibe/emojc/internal/diagnostics"
	"github.com/funvibe/emojc/internal/pipeline"
	"github.com/funvibe/emojc/internal/typesystem"
)

// FinalizeProcessor runs type-definition assembly before any body is
// analysed: instance scopes, override checks, protocol conformance with
// boxing-layer synthesis, required initializers.
type FinalizeProcessor struct{}

func (fp *FinalizeProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	for _, unit := range ctx.Units {
		for _, class := range unit.Classes {
			ctx.Error(typesystem.FinalizeClass(class, ctx.Registry)...)
		}
		for _, vt := range unit.ValueTypes {
			ctx.Error(typesystem.FinalizeValueType(vt, ctx.Registry)...)
		}
	}
	return ctx
}

// SemanticProcessor analyses every function body. An error in one body is
// recorded and analysis continues with the next function; an internal error
// (X001) is recorded and ends the analysis.
type SemanticProcessor struct{}

func (sp *SemanticProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Builtins == nil {
		return ctx
	}
	for _, unit := range ctx.Units {
		for _, f := range unit.Functions {
			fa := NewFunctionAnalyser(f, unit.Pkg, ctx.Builtins)
			fatal := false
			if err := fa.Analyse(); err != nil {
				ce := diagnostics.Wrap(f.Position, err)
				ctx.Error(ce)
				fatal = ce.Code == diagnostics.ErrX001
			}
			ctx.Error(fa.Errors()...)
			ctx.Warn(fa.Warnings()...)
			if fatal {
				return ctx
			}
		}

		// Boxing layers synthesized during finalization get their bodies
		// once all concrete functions are known.
		for _, class := range unit.Classes {
			for _, protoType := range class.Def().Protocols() {
				proto := protoType.Protocol()
				if proto == nil {
					continue
				}
				for _, f := range class.ProtocolTable(proto.Index()) {
					if f != nil && f.Kind == typesystem.FunctionBoxingLayer {
						if err := BuildBoxingLayerBody(f, ctx.Registry); err != nil {
							ce := diagnostics.Wrap(f.Position, err)
							ctx.Error(ce)
							if ce.Code == diagnostics.ErrX001 {
								return ctx
							}
						}
					}
				}
			}
		}
	}
	return ctx
}
