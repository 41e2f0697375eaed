package typesystem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/emojc/internal/config"
	"github.com/funvibe/emojc/internal/token"
	ts "github.com/funvibe/emojc/internal/typesystem"
)

var noPos token.SourcePosition

func newTestClass(t *testing.T, reg *ts.Registry, name string, genericParams ...string) *ts.Class {
	t.Helper()
	c := ts.NewClass(name, "test", "", true, false, noPos)
	for _, p := range genericParams {
		c.AddGenericParameter(p, ts.Something)
	}
	reg.RegisterClass(c)
	return c
}

func integerType(reg *ts.Registry) ts.Type {
	vt := ts.NewPrimitiveValueType("🚂", "s", config.BoxIDInteger)
	reg.RegisterValueType(vt)
	return ts.NewValueTypeType(vt, nil, false)
}

func TestResolveGenericVariableOnClassArguments(t *testing.T) {
	reg := ts.NewRegistry()
	intType := integerType(reg)
	box := newTestClass(t, reg, "📦", "T")

	boxOfInt := ts.NewClassType(box, []ts.Type{intType}, false)
	variable := ts.NewGenericVariable(0, box.Def())

	resolved := variable.ResolveOn(ts.NewTypeContext(boxOfInt), true)
	assert.True(t, resolved.IdenticalTo(intType, ts.TypeContext{}, nil),
		"T should resolve to 🚂, got %s", resolved.String())
}

func TestResolveChainsThroughVariables(t *testing.T) {
	reg := ts.NewRegistry()
	intType := integerType(reg)
	outer := newTestClass(t, reg, "🅰", "T")
	inner := newTestClass(t, reg, "🅱", "U")

	// 🅱's U is bound to 🅰's T, which is bound to 🚂.
	innerType := ts.NewClassType(inner, []ts.Type{ts.NewGenericVariable(0, outer.Def())}, false)
	outerType := ts.NewClassType(outer, []ts.Type{intType}, false)

	resolvedInner := innerType.ResolveOn(ts.NewTypeContext(outerType), true)
	arg := resolvedInner.GenericArguments()[0]
	assert.True(t, arg.IdenticalTo(intType, ts.TypeContext{}, nil),
		"nested argument should resolve to 🚂, got %s", arg.String())
}

func TestResolveIsIdempotent(t *testing.T) {
	reg := ts.NewRegistry()
	intType := integerType(reg)
	box := newTestClass(t, reg, "📦", "T")
	boxOfInt := ts.NewClassType(box, []ts.Type{intType}, false)
	ctx := ts.NewTypeContext(boxOfInt)

	variable := ts.NewGenericVariable(0, box.Def()).Optionalized()
	once := variable.ResolveOn(ctx, true)
	twice := once.ResolveOn(ctx, true)
	assert.True(t, once.IdenticalTo(twice, ts.TypeContext{}, nil),
		"substitution must be idempotent: %s vs %s", once.String(), twice.String())
}

func TestResolveConcreteTypeIsIdentity(t *testing.T) {
	reg := ts.NewRegistry()
	intType := integerType(reg)
	box := newTestClass(t, reg, "📦", "T")
	ctx := ts.NewTypeContext(ts.NewClassType(box, []ts.Type{intType}, false))

	resolved := intType.ResolveOn(ctx, true)
	assert.True(t, resolved.IdenticalTo(intType, ts.TypeContext{}, nil))
}

func TestResolveSelfReferentialVariableStops(t *testing.T) {
	reg := ts.NewRegistry()
	box := newTestClass(t, reg, "📦", "T")
	selfRef := ts.NewGenericVariable(0, box.Def())
	// T is bound to itself; resolution must leave it alone instead of
	// recursing.
	boxOfT := ts.NewClassType(box, []ts.Type{selfRef}, false)

	resolved := selfRef.ResolveOn(ts.NewTypeContext(boxOfT), true)
	require.Equal(t, ts.TypeGenericVariable, resolved.Kind())
	assert.Equal(t, 0, resolved.GenericVariableIndex())
}

func TestResolveSelf(t *testing.T) {
	reg := ts.NewRegistry()
	class := newTestClass(t, reg, "🐱")
	classType := ts.NewClassType(class, nil, false)

	selfType := ts.NewSelfType()
	resolved := selfType.ResolveOn(ts.NewTypeContext(classType), true)
	assert.Equal(t, ts.TypeClass, resolved.Kind())
	assert.Equal(t, class, resolved.Class())

	unresolved := selfType.ResolveOn(ts.NewTypeContext(classType), false)
	assert.Equal(t, ts.TypeSelf, unresolved.Kind())
}

func TestResolvePreservesOptional(t *testing.T) {
	reg := ts.NewRegistry()
	intType := integerType(reg)
	box := newTestClass(t, reg, "📦", "T")
	boxOfInt := ts.NewClassType(box, []ts.Type{intType}, false)

	variable := ts.NewGenericVariable(0, box.Def()).Optionalized()
	resolved := variable.ResolveOn(ts.NewTypeContext(boxOfInt), true)
	assert.True(t, resolved.Optional(), "optional bit must survive substitution")
}

func TestResolveLocalGenericVariable(t *testing.T) {
	reg := ts.NewRegistry()
	intType := integerType(reg)
	f := &ts.Function{Name: "🔧", GenericParameterNames: []string{"T"}, GenericConstraints: []ts.Type{ts.Something}}

	variable := ts.NewLocalGenericVariable(0, f)
	ctx := ts.TypeContext{CalleeType: ts.Nothingness, Function: f, FunctionGenericArguments: []ts.Type{intType}}
	resolved := variable.ResolveOn(ctx, true)
	assert.True(t, resolved.IdenticalTo(intType, ts.TypeContext{}, nil))
}

func TestResolveCallableArguments(t *testing.T) {
	reg := ts.NewRegistry()
	intType := integerType(reg)
	box := newTestClass(t, reg, "📦", "T")
	boxOfInt := ts.NewClassType(box, []ts.Type{intType}, false)

	variable := ts.NewGenericVariable(0, box.Def())
	callable := ts.NewCallableType(variable, []ts.Type{variable})
	resolved := callable.ResolveOn(ts.NewTypeContext(boxOfInt), true)

	assert.True(t, resolved.CallableReturn().IdenticalTo(intType, ts.TypeContext{}, nil))
	assert.True(t, resolved.CallableArguments()[0].IdenticalTo(intType, ts.TypeContext{}, nil))
}
