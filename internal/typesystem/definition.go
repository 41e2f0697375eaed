package typesystem

import (
	"fmt"

	"github.com/funvibe/emojc/internal/token"
)

// TypeDefinition is implemented by Class, ValueType, Enum and Protocol.
type TypeDefinition interface {
	Name() string
	PackageName() string
	Position() token.SourcePosition
	Documentation() string
	Exported() bool
	Def() *TypeDef

	superGenericArgumentCount() int
}

// InstanceVariableDeclaration is an instance variable as declared in a type
// body, before the instance scope is populated.
type InstanceVariableDeclaration struct {
	Name     string
	Type     Type
	Position token.SourcePosition
}

// TypeDef carries everything common to the type definitions. It is embedded
// in Class, ValueType, Enum and Protocol.
type TypeDef struct {
	name     string
	pkg      string
	doc      string
	pos      token.SourcePosition
	exported bool

	genericParamNames []string
	// constraints holds one constraint per own generic parameter.
	constraints []Type
	// superGenericArguments are the arguments supplied to the superclass
	// chain; empty for everything but classes.
	superGenericArguments []Type

	methods      map[string]*Function
	typeMethods  map[string]*Function
	initializers map[string]*Function
	methodList   []*Function

	protocols []Type

	instanceVariables []InstanceVariableDeclaration
	instanceScope     *Scope
}

func NewTypeDef(name, pkg, doc string, exported bool, pos token.SourcePosition) TypeDef {
	return TypeDef{
		name:         name,
		pkg:          pkg,
		doc:          doc,
		pos:          pos,
		exported:     exported,
		methods:      make(map[string]*Function),
		typeMethods:  make(map[string]*Function),
		initializers: make(map[string]*Function),
	}
}

func (d *TypeDef) Name() string                    { return d.name }
func (d *TypeDef) PackageName() string             { return d.pkg }
func (d *TypeDef) Documentation() string           { return d.doc }
func (d *TypeDef) Position() token.SourcePosition  { return d.pos }
func (d *TypeDef) Exported() bool                  { return d.exported }
func (d *TypeDef) SetExported(e bool)              { d.exported = e }
func (d *TypeDef) Def() *TypeDef               { return d }
func (d *TypeDef) superGenericArgumentCount() int  { return len(d.superGenericArguments) }
func (d *TypeDef) SuperGenericArguments() []Type   { return d.superGenericArguments }
func (d *TypeDef) SetSuperGenericArguments(a []Type) { d.superGenericArguments = a }

// AddGenericParameter registers an own generic parameter with its
// constraint and returns its biased index.
func (d *TypeDef) AddGenericParameter(name string, constraint Type) int {
	d.genericParamNames = append(d.genericParamNames, name)
	d.constraints = append(d.constraints, constraint)
	return len(d.superGenericArguments) + len(d.genericParamNames) - 1
}

// OwnGenericParameterCount returns the number of generic parameters declared
// by this definition itself.
func (d *TypeDef) OwnGenericParameterCount() int { return len(d.genericParamNames) }

// GenericArgumentCount returns own parameters plus inherited super
// arguments.
func (d *TypeDef) GenericArgumentCount() int {
	return len(d.superGenericArguments) + len(d.genericParamNames)
}

// GenericParameterIndex resolves a generic parameter name to its biased
// index.
func (d *TypeDef) GenericParameterIndex(name string) (int, bool) {
	for i, n := range d.genericParamNames {
		if n == name {
			return len(d.superGenericArguments) + i, true
		}
	}
	return 0, false
}

// ConstraintForIndex returns the constraint of the own generic parameter
// with the given biased index.
func (d *TypeDef) ConstraintForIndex(index int) Type {
	own := index - len(d.superGenericArguments)
	if own < 0 || own >= len(d.constraints) {
		return Something
	}
	return d.constraints[own]
}

// Duplicate declarations per category are strict errors.

func (d *TypeDef) AddMethod(f *Function) error {
	if _, dup := d.methods[f.Name]; dup {
		return fmt.Errorf("method %s is already declared on %s", f.Name, d.name)
	}
	d.methods[f.Name] = f
	d.methodList = append(d.methodList, f)
	return nil
}

func (d *TypeDef) AddTypeMethod(f *Function) error {
	if _, dup := d.typeMethods[f.Name]; dup {
		return fmt.Errorf("type method %s is already declared on %s", f.Name, d.name)
	}
	d.typeMethods[f.Name] = f
	d.methodList = append(d.methodList, f)
	return nil
}

func (d *TypeDef) AddInitializer(f *Function) error {
	if _, dup := d.initializers[f.Name]; dup {
		return fmt.Errorf("initializer %s is already declared on %s", f.Name, d.name)
	}
	d.initializers[f.Name] = f
	d.methodList = append(d.methodList, f)
	return nil
}

func (d *TypeDef) LookupMethod(name string) *Function      { return d.methods[name] }
func (d *TypeDef) LookupTypeMethod(name string) *Function  { return d.typeMethods[name] }
func (d *TypeDef) LookupInitializer(name string) *Function { return d.initializers[name] }

// Methods returns all functions in declaration order.
func (d *TypeDef) Methods() []*Function { return d.methodList }

func (d *TypeDef) AddProtocol(p Type) {
	d.protocols = append(d.protocols, p)
}

func (d *TypeDef) Protocols() []Type { return d.protocols }

// AddInstanceVariable records an instance variable declaration. Duplicate
// names are rejected.
func (d *TypeDef) AddInstanceVariable(decl InstanceVariableDeclaration) error {
	for _, v := range d.instanceVariables {
		if v.Name == decl.Name {
			return fmt.Errorf("instance variable %s is already declared on %s", decl.Name, d.name)
		}
	}
	d.instanceVariables = append(d.instanceVariables, decl)
	return nil
}

func (d *TypeDef) InstanceVariables() []InstanceVariableDeclaration {
	return d.instanceVariables
}

// InstanceScope returns the instance scope. It is populated during
// finalization with the declared variables in source order.
func (d *TypeDef) InstanceScope() *Scope { return d.instanceScope }

// PopulateInstanceScope builds the instance scope from the declared
// instance variables. Classes pass the superclass scope to inherit its
// variables and continue its ID numbering.
func (d *TypeDef) PopulateInstanceScope(super *Scope) error {
	scope := NewScope(0)
	if super != nil {
		scope = super.Copy()
		scope.MarkInherited()
	}
	for _, v := range d.instanceVariables {
		if _, err := scope.DeclareVariable(v.Name, v.Type, false, v.Position); err != nil {
			return err
		}
	}
	d.instanceScope = scope
	return nil
}

// canBeUsedToResolve reports whether generic variables owned by owner can
// be resolved against this definition.
func (d *TypeDef) canBeUsedToResolve(owner *TypeDef) bool {
	return d == owner
}
