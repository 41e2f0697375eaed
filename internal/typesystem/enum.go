package typesystem

import (
	"fmt"

	"github.com/funvibe/emojc/internal/token"
)

// Enum is an enumeration. Enums have no instance variables and no
// initializers; a value is obtained by naming it. Size one.
type Enum struct {
	TypeDef

	values map[string]EnumValue
	// order keeps the declaration order for the reporter.
	order []string
}

// EnumValue is a single named value with its documentation.
type EnumValue struct {
	Value         int
	Documentation string
}

func NewEnum(name, pkg, doc string, exported bool, pos token.SourcePosition) *Enum {
	return &Enum{
		TypeDef: NewTypeDef(name, pkg, doc, exported, pos),
		values:  make(map[string]EnumValue),
	}
}

// AddValue registers a named value with the next ordinal.
func (e *Enum) AddValue(name, doc string) error {
	if _, dup := e.values[name]; dup {
		return fmt.Errorf("enum value %s is already declared on %s", name, e.name)
	}
	e.values[name] = EnumValue{Value: len(e.order), Documentation: doc}
	e.order = append(e.order, name)
	return nil
}

// Value looks up a named value.
func (e *Enum) Value(name string) (EnumValue, bool) {
	v, ok := e.values[name]
	return v, ok
}

// ValueNames returns the value names in declaration order.
func (e *Enum) ValueNames() []string { return e.order }
