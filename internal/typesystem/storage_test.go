package typesystem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/funvibe/emojc/internal/config"
	ts "github.com/funvibe/emojc/internal/typesystem"
)

func TestStorageClassification(t *testing.T) {
	reg := ts.NewRegistry()
	intType := integerType(reg)
	class := newTestClass(t, reg, "🐱")
	classType := ts.NewClassType(class, nil, false)
	proto := ts.NewProtocol("🖨", "test", "", true, noPos)
	reg.RegisterProtocol(proto)
	protoType := ts.NewProtocolType(proto, nil, false)

	big := ts.NewValueType("📐", "test", "", true, noPos)
	big.SetSize(6)
	reg.RegisterValueType(big)
	bigType := ts.NewValueTypeType(big, nil, false)

	testCases := []struct {
		name string
		typ  ts.Type
		want ts.StorageType
	}{
		{"primitive", intType, ts.StorageSimple},
		{"class", classType, ts.StorageSimple},
		{"optional_primitive", intType.Optionalized(), ts.StorageSimpleOptional},
		{"optional_class", classType.Optionalized(), ts.StorageSimpleOptional},
		{"protocol", protoType, ts.StorageBox},
		{"optional_protocol", protoType.Optionalized(), ts.StorageBox},
		{"multiprotocol", ts.NewMultiProtocolType([]ts.Type{protoType}, false), ts.StorageBox},
		{"something", ts.Something, ts.StorageBox},
		{"someobject", ts.Someobject, ts.StorageBox},
		{"generic_variable", ts.NewGenericVariable(0, class.Def()), ts.StorageBox},
		{"big_value_type", bigType, ts.StorageSimple},
		{"optional_big_value_type", bigType.Optionalized(), ts.StorageBox},
		{"callable", ts.NewCallableType(ts.Nothingness, nil), ts.StorageSimple},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.typ.StorageType(), "storage of %s", tc.typ.String())
		})
	}
}

func TestPrimitiveBoxIdentifiersAreFixed(t *testing.T) {
	reg := ts.NewRegistry()
	boolVT := ts.NewPrimitiveValueType("👌", "s", config.BoxIDBoolean)
	intVT := ts.NewPrimitiveValueType("🚂", "s", config.BoxIDInteger)
	doubleVT := ts.NewPrimitiveValueType("💯", "s", config.BoxIDDouble)
	symbolVT := ts.NewPrimitiveValueType("🔣", "s", config.BoxIDSymbol)
	for _, vt := range []*ts.ValueType{boolVT, intVT, doubleVT, symbolVT} {
		reg.RegisterValueType(vt)
	}

	assert.Equal(t, 1, reg.BoxIdentifierFor(ts.NewValueTypeType(boolVT, nil, false)))
	assert.Equal(t, 2, reg.BoxIdentifierFor(ts.NewValueTypeType(intVT, nil, false)))
	assert.Equal(t, 3, reg.BoxIdentifierFor(ts.NewValueTypeType(doubleVT, nil, false)))
	assert.Equal(t, 4, reg.BoxIdentifierFor(ts.NewValueTypeType(symbolVT, nil, false)))
}

func TestBoxIdentifiersAreStable(t *testing.T) {
	reg := ts.NewRegistry()
	intType := integerType(reg)
	list := newTestClass(t, reg, "🍨", "Element")
	listOfInt := ts.NewClassType(list, []ts.Type{intType}, false)

	first := reg.BoxIdentifierFor(listOfInt)
	second := reg.BoxIdentifierFor(ts.NewClassType(list, []ts.Type{intType}, false))
	assert.Equal(t, first, second, "identical behavior must yield identical box identifiers")

	vt := ts.NewValueType("📐", "test", "", true, noPos)
	reg.RegisterValueType(vt)
	vtType := ts.NewValueTypeType(vt, []ts.Type{intType}, false)
	assert.NotEqual(t, first, reg.BoxIdentifierFor(vtType), "distinct shapes get distinct identifiers")
	assert.Greater(t, reg.BoxIdentifierFor(vtType), 4, "fresh identifiers start past the primitives")
}
