package analyzer

import (
	"github.com/funvibe/emojc/internal/diagnostics"
	"github.com/funvibe/emojc/internal/packages"
	"github.com/funvibe/emojc/internal/parser"
	"github.com/funvibe/emojc/internal/scoper"
	"github.com/funvibe/emojc/internal/token"
	"github.com/funvibe/emojc/internal/typesystem"
	"github.com/funvibe/emojc/internal/writer"
)

// FunctionAnalyser compiles a single function body: it walks the token
// stream once, resolves identifiers through the scopes, checks and infers
// types, enforces the initialization and mutation discipline and emits
// instructions into the function's writer.
type FunctionAnalyser struct {
	function *typesystem.Function
	stream   *token.Stream
	writer   *writer.FunctionWriter
	scoper   scoper.Scoper
	paths    *scoper.PathAnalyser
	typeCtx  typesystem.TypeContext

	pkg      *packages.Package
	builtins *packages.Builtins
	registry *typesystem.Registry

	// usedSelf is set when 🐕 was consumed anywhere in the body; closures
	// report it to their creation instruction.
	usedSelf         bool
	flowControlDepth int

	// lastReadVariable is the variable behind the most recent variable-read
	// expression; method calls consult it for mutating receivers.
	lastReadVariable *typesystem.Variable

	warnings []*diagnostics.Warning
	// errors collects non-aborting diagnostics such as scope-pop failures.
	errors []*diagnostics.CompilerError
}

// NewFunctionAnalyser prepares the analysis of f's body.
func NewFunctionAnalyser(f *typesystem.Function, pkg *packages.Package, builtins *packages.Builtins) *FunctionAnalyser {
	return newFunctionAnalyserWithScoper(f, pkg, builtins, scoper.ScoperForFunction(f))
}

func newFunctionAnalyserWithScoper(f *typesystem.Function, pkg *packages.Package, builtins *packages.Builtins, s scoper.Scoper) *FunctionAnalyser {
	f.Writer = writer.NewFunctionWriter()
	callee := f.OwningType
	if f.Owner == nil {
		callee = typesystem.Nothingness
	}
	return &FunctionAnalyser{
		function: f,
		stream:   f.Body,
		writer:   f.Writer,
		scoper:   s,
		paths:    scoper.NewPathAnalyser(),
		typeCtx:  f.TypeContextFor(callee),
		pkg:      pkg,
		builtins: builtins,
		registry: pkg.Registry(),
	}
}

// Warnings returns the warnings gathered during analysis.
func (a *FunctionAnalyser) Warnings() []*diagnostics.Warning { return a.warnings }

// Errors returns diagnostics that did not abort the analysis.
func (a *FunctionAnalyser) Errors() []*diagnostics.CompilerError { return a.errors }

func (a *FunctionAnalyser) warn(w *diagnostics.Warning) {
	a.warnings = append(a.warnings, w)
}

// Analyse compiles the whole body. The returned error, if any, is a
// CompilerError positioned inside the body; the caller records it and
// continues with the next function unless it is an internal error (X001).
func (a *FunctionAnalyser) Analyse() error {
	if a.function.Native {
		return nil
	}
	if _, err := a.scoper.PushArgumentsScope(a.paths, a.function.Parameters, a.function.Position); err != nil {
		return err
	}

	for a.stream.More() {
		if err := a.parseStatement(); err != nil {
			return err
		}
	}

	if err := a.checkFunctionEnd(); err != nil {
		return err
	}
	a.errors = append(a.errors, a.popScopeChecked()...)
	a.registry.EnqueueFunction(a.function)
	return nil
}

// popScopeChecked pops the current scope, converting the scope checks into
// diagnostics.
func (a *FunctionAnalyser) popScopeChecked() []*diagnostics.CompilerError {
	warnings, errors := a.scoper.PopScope(a.paths)
	for _, w := range warnings {
		a.warn(w)
	}
	return errors
}

// checkFunctionEnd enforces the end-of-body discipline: definite return
// for value-returning functions, instance variable initialization and the
// super initializer for initializers.
func (a *FunctionAnalyser) checkFunctionEnd() error {
	f := a.function
	pos := a.stream.Position()

	if f.Kind.IsInitializer() {
		return a.checkInitializerEnd(pos)
	}

	if f.ReturnType.Kind() != typesystem.TypeNothingness &&
		!a.paths.HasCertainly(scoper.Returned()) {
		return diagnostics.NewError(diagnostics.ErrI003, pos,
			"an explicit return is missing: %s returns %s", f.String(), f.ReturnType.String())
	}
	if f.ReturnType.Kind() == typesystem.TypeNothingness &&
		!a.paths.HasCertainly(scoper.Returned()) {
		a.writer.WriteInstruction(writer.InsReturn, writer.InsGetNothingness)
	}
	return nil
}

func (a *FunctionAnalyser) checkInitializerEnd(pos token.SourcePosition) error {
	if err := a.checkInstanceVariablesInitialized(pos); err != nil {
		return err
	}
	if a.function.Kind == typesystem.FunctionObjectInitializer {
		if class := a.ownerClass(); class != nil && class.Superclass() != nil &&
			!a.paths.HasCertainly(scoper.CalledSuperInitializer()) {
			return diagnostics.NewError(diagnostics.ErrI004, pos,
				"initializer %s does not call a superinitializer on all paths", a.function.String())
		}
	}
	a.writer.WriteInstruction(writer.InsReturn, writer.InsGetThis)
	return nil
}

// checkInstanceVariablesInitialized verifies every declared non-optional
// instance variable is certainly initialized on every branch. Inherited
// variables are the super initializer's responsibility.
func (a *FunctionAnalyser) checkInstanceVariablesInitialized(pos token.SourcePosition) error {
	instanceScope := a.scoper.InstanceScope()
	if instanceScope == nil {
		return nil
	}
	for _, v := range instanceScope.Variables() {
		if v.Inherited() || v.Type().Optional() {
			continue
		}
		if !a.paths.HasCertainly(scoper.VariableInit(true, v.ID())) {
			return diagnostics.NewError(diagnostics.ErrI002, a.function.Position,
				"instance variable %s must be initialized in initializer %s", v.Name(), a.function.Name)
		}
	}
	return nil
}

func (a *FunctionAnalyser) ownerClass() *typesystem.Class {
	if class, ok := a.function.Owner.(*typesystem.Class); ok {
		return class
	}
	return nil
}

// selfUsable reports nil when 🐕 may be used at this point of an object
// initializer: the superclass must be initialized and every own instance
// variable set.
func (a *FunctionAnalyser) selfUsable(pos token.SourcePosition) error {
	if a.function.Kind != typesystem.FunctionObjectInitializer {
		return nil
	}
	if class := a.ownerClass(); class != nil && class.Superclass() != nil &&
		!a.paths.HasCertainly(scoper.CalledSuperInitializer()) {
		return diagnostics.NewError(diagnostics.ErrI004, pos,
			"🐕 cannot be used before the superinitializer was called")
	}
	if err := a.checkInstanceVariablesInitialized(pos); err != nil {
		return diagnostics.NewError(diagnostics.ErrI002, pos,
			"🐕 cannot be used before all instance variables are initialized")
	}
	return nil
}

// typeParser builds a declarative type parser bound to the current
// context: the owning definition's generic parameters, the function's
// local generic parameters and the given expectation for ●.
func (a *FunctionAnalyser) typeParser(expectation *typesystem.Type) *parser.TypeParser {
	tp := parser.NewTypeParser(a.stream, a.pkg)
	if a.function.Owner != nil {
		tp.SetTypeDef(a.function.Owner.Def())
	}
	tp.SetFunction(a.function)
	tp.SetExpectation(expectation)
	return tp
}

// typeDynamism returns what symbolic types the current function kind
// permits: methods and initializers may use generic variables and 🐕,
// free functions neither.
func (a *FunctionAnalyser) typeDynamism() parser.TypeDynamism {
	if a.function.Owner == nil {
		return parser.NoDynamism
	}
	return parser.AllowGenericVariables | parser.AllowSelf
}
