package scoper

import (
	"github.com/funvibe/emojc/internal/diagnostics"
	"github.com/funvibe/emojc/internal/token"
	"github.com/funvibe/emojc/internal/typesystem"
)

// ResolvedVariable pairs a variable with whether it was found in the
// instance scope.
type ResolvedVariable struct {
	Variable        *typesystem.Variable
	InInstanceScope bool
}

// VariableNotFoundError is raised when lookup misses every scope. The
// capturing scoper catches it to import variables from the enclosing
// analyser.
type VariableNotFoundError struct {
	Name     string
	Position token.SourcePosition
}

func (e *VariableNotFoundError) Error() string {
	return "variable not found: " + e.Name
}

// Scoper is the lexical scope stack of the function being analysed. The
// stack is rooted in a single topmost local scope holding the arguments;
// subscopes are pushed on block entry and popped on block exit. The
// instance scope is separate and consulted after the local stack misses.
type Scoper interface {
	GetVariable(name string, pos token.SourcePosition) (ResolvedVariable, error)
	CurrentScope() *typesystem.Scope
	PushScope()
	PushArgumentsScope(analyser *PathAnalyser, args []typesystem.Parameter, pos token.SourcePosition) (*typesystem.Scope, error)
	PopScope(analyser *PathAnalyser) ([]*diagnostics.Warning, []*diagnostics.CompilerError)
	InstanceScope() *typesystem.Scope
	VariableIDCount() int
}

// SemanticScoper is the plain scoper used for methods, initializers and
// free functions.
type SemanticScoper struct {
	// scopes front is the current subscope; back is the topmost local scope.
	scopes        []*typesystem.Scope
	instanceScope *typesystem.Scope
	maxVariableID int
}

func NewSemanticScoper(instanceScope *typesystem.Scope) *SemanticScoper {
	return &SemanticScoper{instanceScope: instanceScope}
}

// ScoperForFunction builds a scoper with the owning definition's instance
// scope when the function kind has one.
func ScoperForFunction(f *typesystem.Function) *SemanticScoper {
	switch f.Kind {
	case typesystem.FunctionObjectMethod, typesystem.FunctionObjectInitializer,
		typesystem.FunctionValueTypeMethod, typesystem.FunctionValueTypeInitializer:
		if f.Owner != nil && f.Owner.Def().InstanceScope() != nil {
			return NewSemanticScoper(f.Owner.Def().InstanceScope().Copy())
		}
	}
	return NewSemanticScoper(nil)
}

func (s *SemanticScoper) InstanceScope() *typesystem.Scope { return s.instanceScope }

// CurrentScope returns the innermost subscope.
func (s *SemanticScoper) CurrentScope() *typesystem.Scope {
	return s.scopes[0]
}

func (s *SemanticScoper) topmostLocalScope() *typesystem.Scope {
	return s.scopes[len(s.scopes)-1]
}

// PushScope pushes a subscope. Variable IDs continue from the parent's
// maximum so sibling scopes reuse IDs.
func (s *SemanticScoper) PushScope() {
	first := 0
	if len(s.scopes) > 0 {
		first = s.CurrentScope().MaxVariableID()
	}
	s.scopes = append([]*typesystem.Scope{typesystem.NewScope(first)}, s.scopes...)
}

// PushArgumentsScope pushes the topmost local scope and declares the
// arguments in it, each certainly initialized.
func (s *SemanticScoper) PushArgumentsScope(analyser *PathAnalyser, args []typesystem.Parameter, pos token.SourcePosition) (*typesystem.Scope, error) {
	s.PushScope()
	scope := s.CurrentScope()
	for _, arg := range args {
		v, err := scope.DeclareVariable(arg.Name, arg.Type, true, pos)
		if err != nil {
			return nil, diagnostics.Wrap(pos, err)
		}
		analyser.RecordIncident(VariableInit(false, v.ID()))
	}
	return scope, nil
}

// GetVariable walks the stack front to back, then the instance scope.
func (s *SemanticScoper) GetVariable(name string, pos token.SourcePosition) (ResolvedVariable, error) {
	for _, scope := range s.scopes {
		if v := scope.Get(name); v != nil {
			return ResolvedVariable{Variable: v}, nil
		}
	}
	if s.instanceScope != nil {
		if v := s.instanceScope.Get(name); v != nil {
			return ResolvedVariable{Variable: v, InInstanceScope: true}, nil
		}
	}
	return ResolvedVariable{}, &VariableNotFoundError{Name: name, Position: pos}
}

// PopScope pops the current subscope after checking it: a mutable variable
// that was never mutated warns; a non-optional variable that is only
// potentially initialized errors, since its initialization state would
// escape the scope's lexical extent.
func (s *SemanticScoper) PopScope(analyser *PathAnalyser) ([]*diagnostics.Warning, []*diagnostics.CompilerError) {
	scope := s.CurrentScope()
	warnings, errors := checkScope(scope, false, analyser)
	if scope.MaxVariableID() > s.maxVariableID {
		s.maxVariableID = scope.MaxVariableID()
	}
	s.scopes = s.scopes[1:]
	return warnings, errors
}

// VariableIDCount returns the number of variable IDs assigned in the
// function, i.e. the frame size the code generator reserves.
func (s *SemanticScoper) VariableIDCount() int {
	count := s.maxVariableID
	for _, scope := range s.scopes {
		if scope.MaxVariableID() > count {
			count = scope.MaxVariableID()
		}
	}
	return count
}

func checkScope(scope *typesystem.Scope, instance bool, analyser *PathAnalyser) ([]*diagnostics.Warning, []*diagnostics.CompilerError) {
	var warnings []*diagnostics.Warning
	var errors []*diagnostics.CompilerError
	for _, v := range scope.Variables() {
		if !v.Constant() && !v.Mutated() && !v.Inherited() {
			warnings = append(warnings, diagnostics.NewWarning(diagnostics.WarnW001, v.Position(),
				"variable %s was never mutated; declare it with 🍦", v.Name()))
		}
		if v.Type().Optional() {
			continue
		}
		init := VariableInit(instance, v.ID())
		if analyser.HasPotentially(init) && !analyser.HasCertainly(init) {
			errors = append(errors, diagnostics.NewError(diagnostics.ErrI001, v.Position(),
				"variable %s is initialized on some but not all paths; move it to a subscope or make it optional",
				v.Name()))
		}
	}
	return warnings, errors
}
