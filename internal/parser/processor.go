package parser

import (
	"os"

	"github.com/funvibe/emojc/internal/diagnostics"
	"github.com/funvibe/emojc/internal/lexer"
	"github.com/funvibe/emojc/internal/packages"
	"github.com/funvibe/emojc/internal/pipeline"
	"github.com/funvibe/emojc/internal/token"
)

// LoadProcessor bootstraps the standard package and loads the main package
// with its dependencies, lexing and parsing every source file.
type LoadProcessor struct{}

func (lp *LoadProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	stdPkg, builtins, err := packages.BootstrapStandardPackage(ctx.Registry)
	if err != nil {
		ctx.Error(diagnostics.Wrap(token.SourcePosition{}, err))
		return ctx
	}
	ctx.Builtins = builtins

	var loader *packages.Loader
	loader = packages.NewLoader(ctx.SearchPath, ctx.Registry, func(pkg *packages.Package, files []string) error {
		// Every package sees the standard package's exports.
		if err := pkg.ImportExports(stdPkg, packages.GlobalNamespace); err != nil {
			return err
		}
		pp := NewPackageParser(pkg, loader)
		for _, file := range files {
			stream, err := lexFile(file)
			if err != nil {
				ctx.Error(diagnostics.Wrap(token.SourcePosition{File: file}, err))
				continue
			}
			pp.Parse(stream)
		}
		ctx.Error(pp.Errors()...)
		result := pp.Result()
		ctx.Units = append(ctx.Units, &pipeline.Unit{
			Pkg:        pkg,
			Classes:    result.Classes,
			ValueTypes: result.ValueTypes,
			Enums:      result.Enums,
			Protocols:  result.Protocols,
			Functions:  result.Functions,
			Start:      result.Start,
		})
		return nil
	})
	ctx.Loader = loader

	if _, err := loader.Load(ctx.MainPackage); err != nil {
		ctx.Error(diagnostics.Wrap(token.SourcePosition{}, err))
	}
	return ctx
}

func lexFile(path string) (*token.Stream, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return lexer.New(string(data), path).Lex()
}
