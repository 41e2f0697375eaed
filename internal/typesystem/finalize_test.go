package typesystem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ts "github.com/funvibe/emojc/internal/typesystem"
)

func method(owner ts.TypeDefinition, owningType ts.Type, name string, params []ts.Parameter, ret ts.Type) *ts.Function {
	return &ts.Function{
		Name:       name,
		Package:    "test",
		Kind:       ts.FunctionObjectMethod,
		Parameters: params,
		ReturnType: ret,
		Owner:      owner,
		OwningType: owningType,
	}
}

func TestVTIAssignmentOnUse(t *testing.T) {
	reg := ts.NewRegistry()
	class := newTestClass(t, reg, "🐱")
	classType := ts.NewClassType(class, nil, false)
	a := method(class, classType, "🅰", nil, ts.Nothingness)
	b := method(class, classType, "🅱", nil, ts.Nothingness)
	require.NoError(t, class.AddMethod(a))
	require.NoError(t, class.AddMethod(b))
	require.Empty(t, ts.FinalizeClass(class, reg))

	assert.False(t, a.VTIAssigned(), "indices are reserved lazily")
	b.MarkUsed()
	assert.True(t, b.VTIAssigned())
	assert.Equal(t, 0, b.VTI(), "first used method gets the first index")
	a.MarkUsed()
	assert.Equal(t, 1, a.VTI())
}

func TestOverriderKeepsSuperVTI(t *testing.T) {
	reg := ts.NewRegistry()
	super := newTestClass(t, reg, "🦁")
	superType := ts.NewClassType(super, nil, false)
	superMethod := method(super, superType, "🔊", nil, ts.Nothingness)
	require.NoError(t, super.AddMethod(superMethod))
	require.Empty(t, ts.FinalizeClass(super, reg))

	sub := ts.NewClass("🐱", "test", "", true, false, noPos)
	require.NoError(t, sub.SetSuperclass(super, superType))
	reg.RegisterClass(sub)
	subType := ts.NewClassType(sub, nil, false)
	override := method(sub, subType, "🔊", nil, ts.Nothingness)
	override.Overriding = true
	require.NoError(t, sub.AddMethod(override))
	require.Empty(t, ts.FinalizeClass(sub, reg))

	superMethod.MarkUsed()
	assert.Equal(t, superMethod.VTI(), override.VTI(),
		"two functions with the same vtable index are the same or override each other")
}

func TestOverrideRequiresMarkerAndSuperFunction(t *testing.T) {
	reg := ts.NewRegistry()
	super := newTestClass(t, reg, "🦁")
	superType := ts.NewClassType(super, nil, false)
	require.NoError(t, super.AddMethod(method(super, superType, "🔊", nil, ts.Nothingness)))
	require.Empty(t, ts.FinalizeClass(super, reg))

	// shadowing without ✒️
	sub := ts.NewClass("🐱", "test", "", true, false, noPos)
	require.NoError(t, sub.SetSuperclass(super, superType))
	reg.RegisterClass(sub)
	subType := ts.NewClassType(sub, nil, false)
	require.NoError(t, sub.AddMethod(method(sub, subType, "🔊", nil, ts.Nothingness)))
	assert.NotEmpty(t, ts.FinalizeClass(sub, reg), "shadowing without ✒️ is an error")

	// ✒️ without anything to override
	lone := newTestClass(t, reg, "🐶")
	loneType := ts.NewClassType(lone, nil, false)
	orphan := method(lone, loneType, "👻", nil, ts.Nothingness)
	orphan.Overriding = true
	require.NoError(t, lone.AddMethod(orphan))
	assert.NotEmpty(t, ts.FinalizeClass(lone, reg))
}

func TestOverrideLiskov(t *testing.T) {
	reg := ts.NewRegistry()
	intType := integerType(reg)

	super := newTestClass(t, reg, "🦁")
	superType := ts.NewClassType(super, nil, false)
	require.NoError(t, super.AddMethod(method(super, superType, "🔊",
		[]ts.Parameter{{Name: "p", Type: ts.Something}}, intType)))
	require.Empty(t, ts.FinalizeClass(super, reg))

	sub := ts.NewClass("🐱", "test", "", true, false, noPos)
	require.NoError(t, sub.SetSuperclass(super, superType))
	reg.RegisterClass(sub)
	subType := ts.NewClassType(sub, nil, false)
	narrowing := method(sub, subType, "🔊", []ts.Parameter{{Name: "p", Type: intType}}, intType)
	narrowing.Overriding = true
	require.NoError(t, sub.AddMethod(narrowing))
	assert.NotEmpty(t, ts.FinalizeClass(sub, reg),
		"narrowing a parameter violates Liskov substitution")
}

func TestFinalOverrideRejected(t *testing.T) {
	reg := ts.NewRegistry()
	super := newTestClass(t, reg, "🦁")
	superType := ts.NewClassType(super, nil, false)
	sealed := method(super, superType, "🔊", nil, ts.Nothingness)
	sealed.Final = true
	require.NoError(t, super.AddMethod(sealed))
	require.Empty(t, ts.FinalizeClass(super, reg))

	sub := ts.NewClass("🐱", "test", "", true, false, noPos)
	require.NoError(t, sub.SetSuperclass(super, superType))
	reg.RegisterClass(sub)
	subType := ts.NewClassType(sub, nil, false)
	override := method(sub, subType, "🔊", nil, ts.Nothingness)
	override.Overriding = true
	require.NoError(t, sub.AddMethod(override))
	assert.NotEmpty(t, ts.FinalizeClass(sub, reg), "🔏 methods cannot be overridden")
}

func TestRequiredInitializerContract(t *testing.T) {
	reg := ts.NewRegistry()
	super := newTestClass(t, reg, "🦁")
	superType := ts.NewClassType(super, nil, false)
	init := &ts.Function{
		Name: "🆕", Package: "test", Kind: ts.FunctionObjectInitializer,
		ReturnType: superType, Owner: super, OwningType: superType, Required: true,
	}
	require.NoError(t, super.DeclareInitializer(init))
	require.Empty(t, ts.FinalizeClass(super, reg))

	// A subclass that fails to redeclare 🆕 errs.
	missing := ts.NewClass("🐱", "test", "", true, false, noPos)
	require.NoError(t, missing.SetSuperclass(super, superType))
	reg.RegisterClass(missing)
	assert.NotEmpty(t, ts.FinalizeClass(missing, reg))

	// A subclass that redeclares it is fine.
	fine := ts.NewClass("🐶", "test", "", true, false, noPos)
	require.NoError(t, fine.SetSuperclass(super, superType))
	reg.RegisterClass(fine)
	fineType := ts.NewClassType(fine, nil, false)
	redeclared := &ts.Function{
		Name: "🆕", Package: "test", Kind: ts.FunctionObjectInitializer,
		ReturnType: fineType, Owner: fine, OwningType: fineType, Required: true,
	}
	require.NoError(t, fine.DeclareInitializer(redeclared))
	assert.Empty(t, ts.FinalizeClass(fine, reg))
}

func TestProtocolConformanceSynthesizesBoxingLayer(t *testing.T) {
	reg := ts.NewRegistry()
	intType := integerType(reg)

	proto := ts.NewProtocol("🖨", "test", "", true, noPos)
	reg.RegisterProtocol(proto)
	requirement := &ts.Function{
		Name: "🔊", Package: "test", Kind: ts.FunctionObjectMethod,
		Parameters: []ts.Parameter{{Name: "p", Type: ts.Something}},
		ReturnType: ts.Something, Owner: proto,
	}
	require.NoError(t, proto.AddMethodRequirement(requirement))
	protoType := ts.NewProtocolType(proto, nil, false)

	class := newTestClass(t, reg, "🐱")
	classType := ts.NewClassType(class, nil, false)
	concrete := method(class, classType, "🔊", []ts.Parameter{{Name: "p", Type: intType}}, intType)
	require.NoError(t, class.AddMethod(concrete))
	class.AddProtocol(protoType)
	require.Empty(t, ts.FinalizeClass(class, reg))

	table := class.ProtocolTable(proto.Index())
	require.Len(t, table, 1)
	layer := table[0]
	require.NotNil(t, layer)
	assert.Equal(t, ts.FunctionBoxingLayer, layer.Kind, "storage mismatch yields a boxing layer")
	assert.Equal(t, concrete, layer.Destination)
	assert.True(t, concrete.Used(), "the destination is marked used")
}

func TestProtocolConformanceDirectEntry(t *testing.T) {
	reg := ts.NewRegistry()

	proto := ts.NewProtocol("🖨", "test", "", true, noPos)
	reg.RegisterProtocol(proto)
	requirement := &ts.Function{
		Name: "🔊", Package: "test", Kind: ts.FunctionObjectMethod,
		ReturnType: ts.Something, Owner: proto,
	}
	require.NoError(t, proto.AddMethodRequirement(requirement))
	protoType := ts.NewProtocolType(proto, nil, false)

	class := newTestClass(t, reg, "🐱")
	classType := ts.NewClassType(class, nil, false)
	concrete := method(class, classType, "🔊", nil, ts.Something)
	require.NoError(t, class.AddMethod(concrete))
	class.AddProtocol(protoType)
	require.Empty(t, ts.FinalizeClass(class, reg))

	table := class.ProtocolTable(proto.Index())
	require.Len(t, table, 1)
	assert.Equal(t, concrete, table[0], "matching storage keeps the concrete method in the slot")
}

func TestProtocolConformanceMissingMethod(t *testing.T) {
	reg := ts.NewRegistry()
	proto := ts.NewProtocol("🖨", "test", "", true, noPos)
	reg.RegisterProtocol(proto)
	requirement := &ts.Function{
		Name: "🔊", Package: "test", Kind: ts.FunctionObjectMethod,
		ReturnType: ts.Nothingness, Owner: proto,
	}
	require.NoError(t, proto.AddMethodRequirement(requirement))

	class := newTestClass(t, reg, "🐱")
	class.AddProtocol(ts.NewProtocolType(proto, nil, false))
	assert.NotEmpty(t, ts.FinalizeClass(class, reg), "missing protocol method is an error")
}
