package typesystem

import (
	"fmt"
	"strings"
)

// Type is a value object describing the type of an expression or variable.
// Types are copied freely; they reference type definitions by non-owning
// pointer whose lifetime is the compilation.
//
// The optional, reference, mutable and meta bits are orthogonal and apply
// uniformly to every kind.
type Type struct {
	kind TypeKind

	optional bool
	// reference marks a value stored behind an indirection.
	reference bool
	mutable   bool
	// meta marks the reified metatype of the wrapped type.
	meta bool

	class     *Class
	valueType *ValueType
	enum      *Enum
	protocol  *Protocol

	// protocols holds the constituents of a multiprotocol, each of kind
	// TypeProtocol, canonically sorted by protocol index.
	protocols []Type

	// genericArguments carries, for classes and value types, the super-class
	// arguments prepended to the own arguments; for protocols the protocol's
	// arguments; for callables the return type at index 0 followed by the
	// parameter types; for errors the wrapped type at index 0.
	genericArguments []Type

	// index of the generic parameter for (local) generic variables.
	index int
	// owner resolves a generic variable against its defining type.
	owner *TypeDef
	// function resolves a local generic variable against its function.
	function *Function
}

// Kind returns the kind discriminant.
func (t Type) Kind() TypeKind { return t.kind }

func (t Type) Optional() bool  { return t.optional }
func (t Type) Reference() bool { return t.reference }
func (t Type) Mutable() bool   { return t.mutable }
func (t Type) Meta() bool      { return t.meta }

// Optionalized returns a copy with the optional bit set.
func (t Type) Optionalized() Type {
	t.optional = true
	return t
}

// CopyWithoutOptional returns a copy with the optional bit cleared.
func (t Type) CopyWithoutOptional() Type {
	t.optional = false
	return t
}

func (t Type) WithReference(r bool) Type {
	t.reference = r
	return t
}

func (t Type) WithMutable(m bool) Type {
	t.mutable = m
	return t
}

func (t Type) MetaType() Type {
	t.meta = true
	return t
}

func (t Type) UnwrapMeta() Type {
	t.meta = false
	return t
}

// Class returns the class of a TypeClass type.
func (t Type) Class() *Class { return t.class }

// ValueType returns the definition of a TypeValueType type.
func (t Type) ValueType() *ValueType { return t.valueType }

// Enum returns the definition of a TypeEnum type, or the error enum of a
// TypeTypeError type.
func (t Type) Enum() *Enum { return t.enum }

// Protocol returns the definition of a TypeProtocol type.
func (t Type) Protocol() *Protocol { return t.protocol }

// Protocols returns the constituents of a multiprotocol.
func (t Type) Protocols() []Type { return t.protocols }

// GenericArguments returns the generic argument vector. The slice is shared;
// callers mutate it only through resolution.
func (t Type) GenericArguments() []Type { return t.genericArguments }

// GenericVariableIndex returns the parameter index of a generic variable.
func (t Type) GenericVariableIndex() int { return t.index }

// GenericVariableOwner returns the definition a generic variable belongs to.
func (t Type) GenericVariableOwner() *TypeDef { return t.owner }

// LocalGenericFunction returns the function a local generic variable belongs to.
func (t Type) LocalGenericFunction() *Function { return t.function }

// CallableReturn returns the return type of a callable.
func (t Type) CallableReturn() Type { return t.genericArguments[0] }

// CallableArguments returns the parameter types of a callable.
func (t Type) CallableArguments() []Type { return t.genericArguments[1:] }

// ErrorWrapped returns the success type of an error type.
func (t Type) ErrorWrapped() Type { return t.genericArguments[0] }

// TypeDefinition returns the definition behind a nominal type, or nil.
func (t Type) TypeDefinition() TypeDefinition {
	switch t.kind {
	case TypeClass:
		return t.class
	case TypeValueType:
		return t.valueType
	case TypeEnum:
		return t.enum
	case TypeProtocol:
		return t.protocol
	case TypeTypeError:
		return t.enum
	}
	return nil
}

// canHaveGenericArguments reports whether the kind carries definition
// generic arguments that participate in resolution.
func (t Type) canHaveGenericArguments() bool {
	return t.kind == TypeClass || t.kind == TypeValueType || t.kind == TypeProtocol
}

// Constructors

func NewClassType(c *Class, args []Type, optional bool) Type {
	return Type{kind: TypeClass, class: c, genericArguments: args, optional: optional}
}

func NewValueTypeType(v *ValueType, args []Type, optional bool) Type {
	return Type{kind: TypeValueType, valueType: v, genericArguments: args, optional: optional}
}

func NewEnumType(e *Enum, optional bool) Type {
	return Type{kind: TypeEnum, enum: e, optional: optional}
}

func NewProtocolType(p *Protocol, args []Type, optional bool) Type {
	return Type{kind: TypeProtocol, protocol: p, genericArguments: args, optional: optional}
}

// NewMultiProtocolType builds a multiprotocol from constituent protocol
// types. The constituents are canonicalized by protocol index so that two
// multiprotocols with the same set compare equal regardless of written
// order.
func NewMultiProtocolType(protocols []Type, optional bool) Type {
	sorted := make([]Type, len(protocols))
	copy(sorted, protocols)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1].protocol.Index() > sorted[j].protocol.Index(); j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	return Type{kind: TypeMultiProtocol, protocols: sorted, optional: optional}
}

// NewCallableType builds a callable type. returnType lands at generic
// argument index 0, the parameters follow.
func NewCallableType(returnType Type, argumentTypes []Type) Type {
	args := make([]Type, 0, len(argumentTypes)+1)
	args = append(args, returnType)
	args = append(args, argumentTypes...)
	return Type{kind: TypeCallable, genericArguments: args}
}

func NewGenericVariable(index int, owner *TypeDef) Type {
	return Type{kind: TypeGenericVariable, index: index, owner: owner}
}

func NewLocalGenericVariable(index int, fn *Function) Type {
	return Type{kind: TypeLocalGenericVariable, index: index, function: fn}
}

func NewSelfType() Type {
	return Type{kind: TypeSelf}
}

func NewErrorType(errorEnum *Enum, wrapped Type) Type {
	return Type{kind: TypeTypeError, enum: errorEnum, genericArguments: []Type{wrapped}}
}

var (
	Something   = Type{kind: TypeSomething}
	Someobject  = Type{kind: TypeSomeobject}
	Nothingness = Type{kind: TypeNothingness}
)

// String renders the type for diagnostics.
func (t Type) String() string {
	var sb strings.Builder
	if t.meta {
		sb.WriteString("type of ")
	}
	if t.optional {
		sb.WriteString("🍬")
	}
	switch t.kind {
	case TypeClass, TypeValueType, TypeEnum, TypeProtocol:
		def := t.TypeDefinition()
		sb.WriteString(def.Name())
		own := len(t.genericArguments) - def.superGenericArgumentCount()
		if own > 0 && len(t.genericArguments) > 0 {
			sb.WriteString("🐚")
			for i := def.superGenericArgumentCount(); i < len(t.genericArguments); i++ {
				sb.WriteString(t.genericArguments[i].String())
				if i != len(t.genericArguments)-1 {
					sb.WriteString(" ")
				}
			}
		}
	case TypeMultiProtocol:
		parts := make([]string, len(t.protocols))
		for i, p := range t.protocols {
			parts[i] = p.String()
		}
		sb.WriteString("🍱" + strings.Join(parts, " "))
	case TypeCallable:
		sb.WriteString("🍇")
		for _, a := range t.CallableArguments() {
			sb.WriteString(a.String())
		}
		if t.CallableReturn().kind != TypeNothingness {
			sb.WriteString("➡️" + t.CallableReturn().String())
		}
		sb.WriteString("🍉")
	case TypeGenericVariable:
		if t.owner != nil && t.index < len(t.owner.genericParamNames) {
			sb.WriteString(t.owner.genericParamNames[t.index])
		} else {
			sb.WriteString(fmt.Sprintf("T%d", t.index))
		}
	case TypeLocalGenericVariable:
		if t.function != nil && t.index < len(t.function.GenericParameterNames) {
			sb.WriteString(t.function.GenericParameterNames[t.index])
		} else {
			sb.WriteString(fmt.Sprintf("L%d", t.index))
		}
	case TypeSelf:
		sb.WriteString("🐕")
	case TypeSomething:
		sb.WriteString("⚪️")
	case TypeSomeobject:
		sb.WriteString("🔵")
	case TypeNothingness:
		sb.WriteString("✨")
	case TypeTypeError:
		sb.WriteString("🚨" + t.enum.Name() + " " + t.ErrorWrapped().String())
	}
	return sb.String()
}
