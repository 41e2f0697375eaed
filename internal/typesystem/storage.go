package typesystem

import "github.com/funvibe/emojc/internal/config"

// abstractOverInstances reports whether values of the type can have more
// than one concrete storage shape and therefore always live in a box.
func (t Type) abstractOverInstances() bool {
	switch t.kind {
	case TypeProtocol, TypeMultiProtocol, TypeGenericVariable, TypeLocalGenericVariable,
		TypeSomething, TypeSomeobject, TypeSelf:
		return true
	}
	return false
}

// Size returns the storage size of the unboxed representation in machine
// words.
func (t Type) Size() int {
	switch t.kind {
	case TypeValueType:
		return t.valueType.Size()
	case TypeTypeError:
		// presence word plus the larger of enum value and wrapped size
		w := t.ErrorWrapped().Size()
		if w < 1 {
			w = 1
		}
		return 1 + w
	default:
		// references, enums, callables, nothingness: one word
		return 1
	}
}

// StorageType classifies how values of the type are stored: Box for
// anything abstract over instances, SimpleOptional for optionals of
// fixed-size values up to four words, Simple otherwise. Larger optionals
// fall back to Box.
func (t Type) StorageType() StorageType {
	if t.abstractOverInstances() {
		return StorageBox
	}
	if t.optional {
		if t.Size() > config.MaxBoxedValueWords {
			return StorageBox
		}
		return StorageSimpleOptional
	}
	return StorageSimple
}

// RequiresBox reports whether values of the type are stored boxed.
func (t Type) RequiresBox() bool {
	return t.StorageType() == StorageBox
}
