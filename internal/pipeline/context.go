package pipeline

import (
	"github.com/funvibe/emojc/internal/diagnostics"
	"github.com/funvibe/emojc/internal/packages"
	"github.com/funvibe/emojc/internal/typesystem"
)

// Unit is one parsed package with its declarations in declaration order.
type Unit struct {
	Pkg        *packages.Package
	Classes    []*typesystem.Class
	ValueTypes []*typesystem.ValueType
	Enums      []*typesystem.Enum
	Protocols  []*typesystem.Protocol
	Functions  []*typesystem.Function
	Start      *typesystem.Function
}

// PipelineContext is threaded through the processors. Every compilation
// owns its own context and registry; nothing is shared process-wide.
type PipelineContext struct {
	// SearchPath is the directory holding package directories.
	SearchPath string
	// MainPackage is the name of the package to compile.
	MainPackage string
	// OutputPath receives the compiled bundle; empty disables emission.
	OutputPath string

	Registry *typesystem.Registry
	Builtins *packages.Builtins
	Loader   *packages.Loader

	Units []*Unit

	Errors   []*diagnostics.CompilerError
	Warnings []*diagnostics.Warning
}

func NewContext(searchPath, mainPackage string) *PipelineContext {
	return &PipelineContext{
		SearchPath:  searchPath,
		MainPackage: mainPackage,
		Registry:    typesystem.NewRegistry(),
	}
}

// Error records a compile error.
func (ctx *PipelineContext) Error(errs ...*diagnostics.CompilerError) {
	ctx.Errors = append(ctx.Errors, errs...)
}

// Warn records warnings.
func (ctx *PipelineContext) Warn(warnings ...*diagnostics.Warning) {
	ctx.Warnings = append(ctx.Warnings, warnings...)
}

// HadError reports whether any stage failed.
func (ctx *PipelineContext) HadError() bool {
	return len(ctx.Errors) > 0
}
