package typesystem

import (
	"fmt"

	"github.com/funvibe/emojc/internal/token"
	"github.com/funvibe/emojc/internal/writer"
)

// AccessLevel controls who may call a function.
type AccessLevel int

const (
	AccessPublic AccessLevel = iota
	AccessProtected
	AccessPrivate
)

func (a AccessLevel) String() string {
	switch a {
	case AccessPublic:
		return "🔓"
	case AccessProtected:
		return "🔐"
	case AccessPrivate:
		return "🔒"
	}
	return "?"
}

// FunctionKind distinguishes the contexts a function can appear in. It
// decides dispatch instructions and the meaning of self.
type FunctionKind int

const (
	FunctionPlain FunctionKind = iota
	FunctionObjectMethod
	FunctionObjectInitializer
	FunctionValueTypeMethod
	FunctionValueTypeInitializer
	FunctionClassMethod
	// FunctionBoxingLayer adapts storage between a protocol's expected form
	// and a concrete method's form.
	FunctionBoxingLayer
)

// IsInitializer reports whether the kind is an initializer kind.
func (k FunctionKind) IsInitializer() bool {
	return k == FunctionObjectInitializer || k == FunctionValueTypeInitializer
}

// Parameter is a named function parameter.
type Parameter struct {
	Name string
	Type Type
}

// Function is a method, initializer, type method, free function or boxing
// layer. A function is exclusively owned by its owning type definition, or
// by its package for free functions.
type Function struct {
	Name          string
	Documentation string
	Position      token.SourcePosition
	Package       string

	AccessLevel AccessLevel
	Final       bool
	Overriding  bool
	Deprecated  bool
	Mutating    bool
	// Required marks an initializer every non-abstract subclass must
	// re-declare.
	Required bool
	// ErrorProne marks an initializer that may fail with the given enum.
	ErrorProne bool
	ErrorEnum  Type

	Kind       FunctionKind
	Parameters []Parameter
	ReturnType Type

	GenericParameterNames []string
	// GenericConstraints holds one constraint per local generic parameter.
	GenericConstraints []Type

	// Owner is the owning type definition, nil for free functions.
	Owner      TypeDefinition
	OwningType Type

	// Body is the token sub-stream of the function body, captured by the
	// package parser and consumed lazily by the analyser.
	Body *token.Stream

	// Writer receives the emitted instructions once the body is analysed.
	Writer *writer.FunctionWriter

	// Native functions carry a linking-table index instead of a body.
	Native            bool
	LinkingTableIndex int

	// Destination is the concrete function a boxing layer forwards to.
	Destination *Function

	// SuperFunction is the overridden function, set during finalization.
	SuperFunction *Function
	Overriders    []*Function

	vti         int
	vtiAssigned bool
	used        bool
	vtiProvider VTIProvider
}

func (f *Function) String() string {
	if f.Owner != nil {
		return fmt.Sprintf("%s.%s", f.Owner.Name(), f.Name)
	}
	return f.Name
}

// SetVTIProvider attaches the provider that will hand out this function's
// vtable index when it is first used.
func (f *Function) SetVTIProvider(p VTIProvider) { f.vtiProvider = p }

// MarkUsed reserves a vtable index for the function if none is assigned
// yet, and propagates use to overriders so dynamic dispatch stays sound.
func (f *Function) MarkUsed() {
	if f.used {
		return
	}
	f.used = true
	if !f.vtiAssigned && f.vtiProvider != nil {
		f.setVTI(f.vtiProvider.NextVTI())
	}
	for _, o := range f.Overriders {
		if f.vtiAssigned {
			o.setVTI(f.vti)
		}
		o.MarkUsed()
	}
}

func (f *Function) Used() bool { return f.used }

func (f *Function) setVTI(vti int) {
	f.vti = vti
	f.vtiAssigned = true
}

// VTI returns the function's vtable index. It must have been assigned.
func (f *Function) VTI() int {
	if !f.vtiAssigned {
		panic(fmt.Sprintf("vti of %s queried before assignment", f.String()))
	}
	return f.vti
}

// AssignVTI force-assigns an index; used when the code generator
// enumerates functions that were never referenced.
func (f *Function) AssignVTI() {
	if !f.vtiAssigned && f.vtiProvider != nil {
		f.setVTI(f.vtiProvider.NextVTI())
	}
}

func (f *Function) VTIAssigned() bool { return f.vtiAssigned }

// TakeVTIFrom makes the function share the index of the function it
// overrides.
func (f *Function) TakeVTIFrom(super *Function) {
	if super.vtiAssigned {
		f.setVTI(super.vti)
	}
	super.Overriders = append(super.Overriders, f)
	f.vtiProvider = nil
}

// TypeContextFor builds the context in which the function's body is
// analysed.
func (f *Function) TypeContextFor(callee Type) TypeContext {
	return TypeContext{CalleeType: callee, Function: f}
}

// LocalConstraintForIndex returns the constraint of the local generic
// parameter with the given index.
func (f *Function) LocalConstraintForIndex(index int) Type {
	if index < 0 || index >= len(f.GenericConstraints) {
		return Something
	}
	return f.GenericConstraints[index]
}

// EnforceSignatureOf verifies the Liskov substitution rules against the
// function this one overrides: covariant return, contravariant parameters,
// same arity.
func (f *Function) EnforceSignatureOf(super *Function, classType Type) error {
	ctx := TypeContext{CalleeType: classType, Function: f}
	if len(f.Parameters) != len(super.Parameters) {
		return fmt.Errorf("overriding function %s takes %d arguments but %s takes %d",
			f.String(), len(f.Parameters), super.String(), len(super.Parameters))
	}
	for i, p := range f.Parameters {
		if !super.Parameters[i].Type.ResolveOn(ctx, true).CompatibleTo(p.Type.ResolveOn(ctx, true), ctx, nil) {
			return fmt.Errorf("argument %d of %s is of type %s which is more specific than %s of the overridden function",
				i+1, f.String(), p.Type.String(), super.Parameters[i].Type.String())
		}
	}
	if !f.ReturnType.ResolveOn(ctx, true).CompatibleTo(super.ReturnType.ResolveOn(ctx, true), ctx, nil) {
		return fmt.Errorf("return type %s of %s is not compatible to %s of the overridden function",
			f.ReturnType.String(), f.String(), super.ReturnType.String())
	}
	return nil
}
