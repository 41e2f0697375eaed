package typesystem

import (
	"fmt"

	"github.com/funvibe/emojc/internal/token"
)

// Class is a reference type with single inheritance.
type Class struct {
	TypeDef

	superclass *Class
	// superType is the superclass type together with the generic arguments
	// supplied in the superclass clause.
	superType Type

	final bool
	// inheritsInitializers is set when the class declares no initializer of
	// its own and takes over the superclass's.
	inheritsInitializers bool

	// requiredInitializers tracks the names of required initializers the
	// class still has to declare. Must be empty at end-of-body.
	requiredInitializers map[string]bool

	index       int
	vtiProvider *ClassVTIProvider

	// protocolTables maps a protocol index to the functions filling the
	// protocol's slots, boxing layers included.
	protocolTables map[int][]*Function
}

func NewClass(name, pkg, doc string, exported, final bool, pos token.SourcePosition) *Class {
	return &Class{
		TypeDef:              NewTypeDef(name, pkg, doc, exported, pos),
		final:                final,
		requiredInitializers: make(map[string]bool),
		protocolTables:       make(map[int][]*Function),
	}
}

func (c *Class) Final() bool { return c.final }

// Index returns the class's dense registry index, used as its type ID at
// runtime.
func (c *Class) Index() int { return c.index }

func (c *Class) Superclass() *Class { return c.superclass }
func (c *Class) SuperType() Type    { return c.superType }

// SetSuperclass wires the superclass clause. The superclass must not be
// final. The super generic arguments become part of this class's argument
// vector, prepended before the own parameters.
func (c *Class) SetSuperclass(super *Class, superType Type) error {
	if super.final {
		return fmt.Errorf("%s cannot inherit from final class %s", c.name, super.name)
	}
	c.superclass = super
	c.superType = superType
	c.SetSuperGenericArguments(superType.GenericArguments())
	for name := range super.requiredInitializers {
		c.requiredInitializers[name] = true
	}
	for name := range super.initializers {
		if super.initializers[name].Required {
			c.requiredInitializers[name] = true
		}
	}
	return nil
}

// InheritsFrom reports whether the class is other or a transitive subclass
// of it.
func (c *Class) InheritsFrom(other *Class) bool {
	for a := c; a != nil; a = a.superclass {
		if a == other {
			return true
		}
	}
	return false
}

// RequiredInitializers returns the names still owed to the superclass
// contract.
func (c *Class) RequiredInitializers() map[string]bool { return c.requiredInitializers }

// DeclareInitializer registers an initializer and discharges a pending
// required-initializer obligation of the same name.
func (c *Class) DeclareInitializer(f *Function) error {
	if err := c.AddInitializer(f); err != nil {
		return err
	}
	delete(c.requiredInitializers, f.Name)
	return nil
}

func (c *Class) SetInheritsInitializers(b bool) { c.inheritsInitializers = b }
func (c *Class) InheritsInitializers() bool     { return c.inheritsInitializers }

// VTIProvider returns the class's method numbering, chained to the
// superclass's so its range is never entered.
func (c *Class) VTIProvider() *ClassVTIProvider {
	if c.vtiProvider == nil {
		var super *ClassVTIProvider
		if c.superclass != nil {
			super = c.superclass.VTIProvider()
		}
		c.vtiProvider = NewClassVTIProvider(super)
	}
	return c.vtiProvider
}

// LookupMethodDeep searches the class and its superclasses.
func (c *Class) LookupMethodDeep(name string) *Function {
	for a := c; a != nil; a = a.superclass {
		if f := a.LookupMethod(name); f != nil {
			return f
		}
	}
	return nil
}

// LookupTypeMethodDeep searches the class and its superclasses.
func (c *Class) LookupTypeMethodDeep(name string) *Function {
	for a := c; a != nil; a = a.superclass {
		if f := a.LookupTypeMethod(name); f != nil {
			return f
		}
	}
	return nil
}

// LookupInitializerDeep searches the class and, if it inherits
// initializers, its superclasses.
func (c *Class) LookupInitializerDeep(name string) *Function {
	for a := c; a != nil; a = a.superclass {
		if f := a.LookupInitializer(name); f != nil {
			return f
		}
		if !a.inheritsInitializers {
			break
		}
	}
	return nil
}

// SetProtocolTable records the dispatch table for an adopted protocol.
func (c *Class) SetProtocolTable(protocolIndex int, table []*Function) {
	c.protocolTables[protocolIndex] = table
}

func (c *Class) ProtocolTable(protocolIndex int) []*Function {
	return c.protocolTables[protocolIndex]
}

// canBeUsedToResolve walks the superclass chain: a subclass can resolve
// generic variables owned by any of its ancestors because their arguments
// are part of its own argument vector.
func (c *Class) canBeUsedToResolve(owner *TypeDef) bool {
	for a := c; a != nil; a = a.superclass {
		if &a.TypeDef == owner {
			return true
		}
	}
	return false
}
