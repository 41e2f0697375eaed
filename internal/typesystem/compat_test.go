package typesystem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ts "github.com/funvibe/emojc/internal/typesystem"
)

func TestCompatibilityTopTypes(t *testing.T) {
	reg := ts.NewRegistry()
	intType := integerType(reg)
	class := newTestClass(t, reg, "🐱")
	classType := ts.NewClassType(class, nil, false)
	ctx := ts.TypeContext{CalleeType: ts.Nothingness}

	assert.True(t, intType.CompatibleTo(ts.Something, ctx, nil), "everything flows into ⚪️")
	assert.True(t, classType.CompatibleTo(ts.Something, ctx, nil))
	assert.True(t, classType.CompatibleTo(ts.Someobject, ctx, nil), "classes flow into 🔵")
	assert.False(t, intType.CompatibleTo(ts.Someobject, ctx, nil), "value types do not flow into 🔵")
}

func TestCompatibilityReflexive(t *testing.T) {
	reg := ts.NewRegistry()
	intType := integerType(reg)
	class := newTestClass(t, reg, "🐱")
	classType := ts.NewClassType(class, nil, false)
	ctx := ts.TypeContext{CalleeType: ts.Nothingness}

	for _, typ := range []ts.Type{intType, classType, ts.Something, ts.Someobject, ts.Nothingness} {
		assert.True(t, typ.CompatibleTo(typ, ctx, nil), "%s must be compatible to itself", typ.String())
	}
}

func TestClassCompatibility(t *testing.T) {
	reg := ts.NewRegistry()
	intType := integerType(reg)
	ctx := ts.TypeContext{CalleeType: ts.Nothingness}

	super := newTestClass(t, reg, "🦁")
	superType := ts.NewClassType(super, nil, false)
	sub := ts.NewClass("🐱", "test", "", true, false, noPos)
	require.NoError(t, sub.SetSuperclass(super, superType))
	reg.RegisterClass(sub)
	subType := ts.NewClassType(sub, nil, false)

	assert.True(t, subType.CompatibleTo(superType, ctx, nil), "subclass flows into superclass")
	assert.False(t, superType.CompatibleTo(subType, ctx, nil), "superclass does not flow into subclass")
	assert.False(t, subType.CompatibleTo(ts.NewClassType(newTestClass(t, reg, "🐶"), nil, false), ctx, nil))

	_ = intType
}

func TestClassGenericArgumentsAreInvariant(t *testing.T) {
	reg := ts.NewRegistry()
	intType := integerType(reg)
	ctx := ts.TypeContext{CalleeType: ts.Nothingness}

	list := newTestClass(t, reg, "🍨", "Element")
	listOfInt := ts.NewClassType(list, []ts.Type{intType}, false)
	listOfSomething := ts.NewClassType(list, []ts.Type{ts.Something}, false)

	assert.True(t, listOfInt.CompatibleTo(listOfInt, ctx, nil))
	assert.False(t, listOfInt.CompatibleTo(listOfSomething, ctx, nil),
		"class generic arguments compare identical, not compatible")
}

func TestOptionalGate(t *testing.T) {
	reg := ts.NewRegistry()
	intType := integerType(reg)
	ctx := ts.TypeContext{CalleeType: ts.Nothingness}

	assert.True(t, intType.CompatibleTo(intType.Optionalized(), ctx, nil), "plain flows into optional")
	assert.False(t, intType.Optionalized().CompatibleTo(intType, ctx, nil), "optional does not flow into plain")
	assert.True(t, ts.Nothingness.CompatibleTo(intType.Optionalized(), ctx, nil), "✨ flows into any optional")
	assert.False(t, ts.Nothingness.CompatibleTo(intType, ctx, nil))
}

func TestProtocolCompatibility(t *testing.T) {
	reg := ts.NewRegistry()
	ctx := ts.TypeContext{CalleeType: ts.Nothingness}

	proto := ts.NewProtocol("🖨", "test", "", true, noPos)
	reg.RegisterProtocol(proto)
	protoType := ts.NewProtocolType(proto, nil, false)

	class := newTestClass(t, reg, "🐱")
	class.AddProtocol(protoType)
	classType := ts.NewClassType(class, nil, false)

	assert.True(t, classType.CompatibleTo(protoType, ctx, nil), "adopter flows into protocol")

	other := ts.NewProtocol("📠", "test", "", true, noPos)
	reg.RegisterProtocol(other)
	assert.False(t, classType.CompatibleTo(ts.NewProtocolType(other, nil, false), ctx, nil))
}

func TestProtocolThroughSuperclass(t *testing.T) {
	reg := ts.NewRegistry()
	ctx := ts.TypeContext{CalleeType: ts.Nothingness}

	proto := ts.NewProtocol("🖨", "test", "", true, noPos)
	reg.RegisterProtocol(proto)
	protoType := ts.NewProtocolType(proto, nil, false)

	super := newTestClass(t, reg, "🦁")
	super.AddProtocol(protoType)
	superType := ts.NewClassType(super, nil, false)
	sub := ts.NewClass("🐱", "test", "", true, false, noPos)
	require.NoError(t, sub.SetSuperclass(super, superType))
	reg.RegisterClass(sub)

	assert.True(t, ts.NewClassType(sub, nil, false).CompatibleTo(protoType, ctx, nil),
		"protocol adoption is inherited")
}

func TestMultiProtocolCompatibility(t *testing.T) {
	reg := ts.NewRegistry()
	ctx := ts.TypeContext{CalleeType: ts.Nothingness}

	a := ts.NewProtocol("🖨", "test", "", true, noPos)
	reg.RegisterProtocol(a)
	b := ts.NewProtocol("📠", "test", "", true, noPos)
	reg.RegisterProtocol(b)
	aType := ts.NewProtocolType(a, nil, false)
	bType := ts.NewProtocolType(b, nil, false)

	class := newTestClass(t, reg, "🐱")
	class.AddProtocol(aType)
	class.AddProtocol(bType)
	classType := ts.NewClassType(class, nil, false)

	multi := ts.NewMultiProtocolType([]ts.Type{aType, bType}, false)
	assert.True(t, classType.CompatibleTo(multi, ctx, nil), "class satisfying all constituents flows into 🍱")
	assert.True(t, multi.CompatibleTo(aType, ctx, nil), "🍱 flows into a constituent")

	partial := newTestClass(t, reg, "🐶")
	partial.AddProtocol(aType)
	assert.False(t, ts.NewClassType(partial, nil, false).CompatibleTo(multi, ctx, nil))
}

func TestMultiProtocolCanonicalization(t *testing.T) {
	reg := ts.NewRegistry()
	ctx := ts.TypeContext{CalleeType: ts.Nothingness}

	a := ts.NewProtocol("🖨", "test", "", true, noPos)
	reg.RegisterProtocol(a)
	b := ts.NewProtocol("📠", "test", "", true, noPos)
	reg.RegisterProtocol(b)
	aType := ts.NewProtocolType(a, nil, false)
	bType := ts.NewProtocolType(b, nil, false)

	ab := ts.NewMultiProtocolType([]ts.Type{aType, bType}, false)
	ba := ts.NewMultiProtocolType([]ts.Type{bType, aType}, false)
	assert.True(t, ab.IdenticalTo(ba, ctx, nil), "🍱 constituents are canonically ordered")
}

func TestCallableCompatibility(t *testing.T) {
	reg := ts.NewRegistry()
	intType := integerType(reg)
	ctx := ts.TypeContext{CalleeType: ts.Nothingness}

	super := newTestClass(t, reg, "🦁")
	superType := ts.NewClassType(super, nil, false)
	sub := ts.NewClass("🐱", "test", "", true, false, noPos)
	require.NoError(t, sub.SetSuperclass(super, superType))
	reg.RegisterClass(sub)
	subType := ts.NewClassType(sub, nil, false)

	// Covariant return
	returnsSub := ts.NewCallableType(subType, nil)
	returnsSuper := ts.NewCallableType(superType, nil)
	assert.True(t, returnsSub.CompatibleTo(returnsSuper, ctx, nil))
	assert.False(t, returnsSuper.CompatibleTo(returnsSub, ctx, nil))

	// Contravariant parameters
	takesSuper := ts.NewCallableType(ts.Nothingness, []ts.Type{superType})
	takesSub := ts.NewCallableType(ts.Nothingness, []ts.Type{subType})
	assert.True(t, takesSuper.CompatibleTo(takesSub, ctx, nil))
	assert.False(t, takesSub.CompatibleTo(takesSuper, ctx, nil))

	// Arity must match
	unary := ts.NewCallableType(ts.Nothingness, []ts.Type{intType})
	nullary := ts.NewCallableType(ts.Nothingness, nil)
	assert.False(t, unary.CompatibleTo(nullary, ctx, nil))
}

func TestErrorCompatibility(t *testing.T) {
	reg := ts.NewRegistry()
	intType := integerType(reg)
	ctx := ts.TypeContext{CalleeType: ts.Nothingness}

	ioError := ts.NewEnum("💾", "test", "", true, noPos)
	netError := ts.NewEnum("🌐", "test", "", true, noPos)

	super := newTestClass(t, reg, "🦁")
	superType := ts.NewClassType(super, nil, false)
	sub := ts.NewClass("🐱", "test", "", true, false, noPos)
	require.NoError(t, sub.SetSuperclass(super, superType))
	reg.RegisterClass(sub)
	subType := ts.NewClassType(sub, nil, false)

	assert.True(t, ts.NewErrorType(ioError, subType).CompatibleTo(ts.NewErrorType(ioError, superType), ctx, nil),
		"wrapped type is covariant")
	assert.False(t, ts.NewErrorType(ioError, intType).CompatibleTo(ts.NewErrorType(netError, intType), ctx, nil),
		"error enums must match")
}

func TestInferenceRecordsCandidates(t *testing.T) {
	reg := ts.NewRegistry()
	intType := integerType(reg)
	ctx := ts.TypeContext{CalleeType: ts.Nothingness}

	f := &ts.Function{Name: "🔧", GenericParameterNames: []string{"T"}, GenericConstraints: []ts.Type{ts.Something}}
	inf := ts.NewInference(f)
	unbound := ts.NewLocalGenericVariable(0, f)

	assert.True(t, intType.CompatibleTo(unbound, ctx, inf), "flowing into an unbound parameter records a candidate")
	common := inf.Finders[0].CommonType()
	assert.True(t, common.IdenticalTo(intType, ctx, nil), "the candidate is reconciled to 🚂, got %s", common.String())
}
