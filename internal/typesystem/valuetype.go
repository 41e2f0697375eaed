package typesystem

import "github.com/funvibe/emojc/internal/token"

// ValueType is a type stored inline on the stack or inside an object. The
// primitives (boolean, integer, double, symbol) are value types of size one
// flagged primitive.
type ValueType struct {
	TypeDef

	primitive bool
	// size is the storage size in machine words.
	size int

	// primitiveBoxID is the fixed box identifier of a primitive; zero for
	// compound value types, whose identifiers are assigned per generic
	// instantiation by the registry.
	primitiveBoxID int

	index int
}

func NewValueType(name, pkg, doc string, exported bool, pos token.SourcePosition) *ValueType {
	return &ValueType{TypeDef: NewTypeDef(name, pkg, doc, exported, pos), size: 1}
}

// NewPrimitiveValueType creates a primitive with its ABI-fixed box
// identifier.
func NewPrimitiveValueType(name, pkg string, boxID int) *ValueType {
	vt := &ValueType{
		TypeDef:        NewTypeDef(name, pkg, "", true, token.SourcePosition{}),
		primitive:      true,
		size:           1,
		primitiveBoxID: boxID,
	}
	return vt
}

func (v *ValueType) Primitive() bool     { return v.primitive }
func (v *ValueType) Size() int           { return v.size }
func (v *ValueType) SetSize(s int)       { v.size = s }
func (v *ValueType) PrimitiveBoxID() int { return v.primitiveBoxID }
func (v *ValueType) Index() int          { return v.index }
