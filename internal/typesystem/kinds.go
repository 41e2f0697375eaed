package typesystem

// TypeKind discriminates the variants of Type.
type TypeKind int

const (
	// TypeClass is a class instance type.
	TypeClass TypeKind = iota
	// TypeValueType is an unboxed or boxed value type. The primitives are
	// value types of size one flagged primitive.
	TypeValueType
	TypeEnum
	TypeProtocol
	TypeMultiProtocol
	TypeCallable
	// TypeGenericVariable references a generic parameter of a type
	// definition and is resolved against its owner.
	TypeGenericVariable
	// TypeLocalGenericVariable references a generic parameter of a function.
	TypeLocalGenericVariable
	// TypeSelf is the callee's own type.
	TypeSelf
	// TypeSomething is the top type of all values.
	TypeSomething
	// TypeSomeobject is the top type of all references.
	TypeSomeobject
	TypeNothingness
	// TypeTypeError is the fallible-result variant wrapping an error enum and
	// a value type.
	TypeTypeError
)

func (k TypeKind) String() string {
	switch k {
	case TypeClass:
		return "class"
	case TypeValueType:
		return "value type"
	case TypeEnum:
		return "enum"
	case TypeProtocol:
		return "protocol"
	case TypeMultiProtocol:
		return "multiprotocol"
	case TypeCallable:
		return "callable"
	case TypeGenericVariable:
		return "generic variable"
	case TypeLocalGenericVariable:
		return "local generic variable"
	case TypeSelf:
		return "self"
	case TypeSomething:
		return "something"
	case TypeSomeobject:
		return "someobject"
	case TypeNothingness:
		return "nothingness"
	case TypeTypeError:
		return "error"
	}
	return "unknown"
}

// StorageType classifies how a value of a type is stored.
type StorageType int

const (
	// StorageSimple is the plain unboxed representation.
	StorageSimple StorageType = iota
	// StorageSimpleOptional is an unboxed value of up to four words preceded
	// by a presence word.
	StorageSimpleOptional
	// StorageBox is the uniform boxed representation used for every type
	// that is abstract over instances.
	StorageBox
)

func (s StorageType) String() string {
	switch s {
	case StorageSimple:
		return "simple"
	case StorageSimpleOptional:
		return "simple optional"
	case StorageBox:
		return "box"
	}
	return "unknown"
}
