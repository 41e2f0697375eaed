// Package cli is the reusable entry point of the emojc compiler, shared by
// the command binaries and the compile daemon.
package cli

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"github.com/funvibe/emojc/internal/analyzer"
	"github.com/funvibe/emojc/internal/bundle"
	"github.com/funvibe/emojc/internal/config"
	"github.com/funvibe/emojc/internal/diagnostics"
	"github.com/funvibe/emojc/internal/parser"
	"github.com/funvibe/emojc/internal/pipeline"
)

// Options configure one compilation.
type Options struct {
	// SearchPath holds the package directories.
	SearchPath string
	// Package is the name of the package to compile.
	Package string
	// OutputPath receives the bundle; empty disables emission.
	OutputPath string
	// JSON switches diagnostics to machine-readable output.
	JSON bool
}

// Compile runs the whole pipeline: load, finalize, analyse, emit.
func Compile(opts Options) *pipeline.PipelineContext {
	ctx := pipeline.NewContext(opts.SearchPath, opts.Package)
	ctx.OutputPath = opts.OutputPath

	p := pipeline.New(
		&parser.LoadProcessor{},
		&analyzer.FinalizeProcessor{},
		&analyzer.SemanticProcessor{},
		&bundle.EmitProcessor{},
	)
	return p.Run(ctx)
}

// Run parses command-line arguments, compiles and reports. Returns the
// process exit code.
func Run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("emojc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	output := fs.String("o", "", "path of the compiled bundle")
	searchPath := fs.String("S", "", "package search path (default: parent of the package directory)")
	jsonOutput := fs.Bool("json", false, "emit diagnostics as JSON")
	showVersion := fs.Bool("version", false, "print the version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *showVersion {
		fmt.Fprintf(stderr, "emojc %s\n", config.Version)
		return 0
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: emojc [-o bundle] [-S searchpath] [-json] package")
		return 2
	}

	pkgPath := fs.Arg(0)
	search := *searchPath
	pkgName := pkgPath
	if search == "" {
		abs, err := filepath.Abs(pkgPath)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
		search = filepath.Dir(abs)
		pkgName = filepath.Base(abs)
	}

	out := *output
	if out == "" {
		out = pkgName + config.BundleFileExt
	}

	ctx := Compile(Options{
		SearchPath: search,
		Package:    pkgName,
		OutputPath: out,
		JSON:       *jsonOutput,
	})

	reporter := diagnostics.NewReporter(stderr, *jsonOutput)
	for _, w := range ctx.Warnings {
		reporter.Warn(w)
	}
	for _, e := range ctx.Errors {
		reporter.Error(e)
	}
	if reporter.HadError() {
		return 1
	}
	return 0
}
