package packages

import (
	"github.com/funvibe/emojc/internal/config"
	"github.com/funvibe/emojc/internal/token"
	"github.com/funvibe/emojc/internal/typesystem"
)

// Builtins gives the analyser direct access to the types the language
// itself depends on: literal types, the collection classes and the
// enumeration protocols.
type Builtins struct {
	Boolean typesystem.Type
	Integer typesystem.Type
	Double  typesystem.Type
	Symbol  typesystem.Type

	String     typesystem.Type
	Data       typesystem.Type
	ListClass  *typesystem.Class
	DictClass  *typesystem.Class
	Range      typesystem.Type
	RangeVT    *typesystem.ValueType

	Enumerateable *typesystem.Protocol
	Enumerator    *typesystem.Protocol
}

// ListOf returns the list type with the given element type.
func (b *Builtins) ListOf(element typesystem.Type) typesystem.Type {
	return typesystem.NewClassType(b.ListClass, []typesystem.Type{element}, false)
}

// DictionaryOf returns the dictionary type with the given value type.
func (b *Builtins) DictionaryOf(value typesystem.Type) typesystem.Type {
	return typesystem.NewClassType(b.DictClass, []typesystem.Type{value}, false)
}

// BootstrapStandardPackage builds the s package: the built-in classes, the
// enumeration protocols and the primitive value types with their fixed box
// identifiers.
func BootstrapStandardPackage(registry *typesystem.Registry) (*Package, *Builtins, error) {
	pkg := New(config.StandardPackageName, registry)
	pkg.SetVersion(Version{Major: 1})
	pkg.SetRequiresBinary(true)
	b := &Builtins{}
	var pos token.SourcePosition

	linkingIndex := 1
	nextLinkingIndex := func() int {
		i := linkingIndex
		linkingIndex++
		return i
	}

	primitive := func(name string, boxID int) typesystem.Type {
		vt := typesystem.NewPrimitiveValueType(name, pkg.Name(), boxID)
		registry.RegisterValueType(vt)
		t := typesystem.NewValueTypeType(vt, nil, false)
		if err := pkg.RegisterType(GlobalNamespace, name, t, true); err != nil {
			return typesystem.Type{}
		}
		return t
	}

	b.Boolean = primitive("👌", config.BoxIDBoolean)
	b.Integer = primitive("🚂", config.BoxIDInteger)
	b.Double = primitive("💯", config.BoxIDDouble)
	b.Symbol = primitive("🔣", config.BoxIDSymbol)

	// Enumeration protocols. The for-in loop over a user type dispatches
	// through these.
	b.Enumerator = typesystem.NewProtocol("🍡", pkg.Name(), "An iterator over a sequence of values.", true, pos)
	registry.RegisterProtocol(b.Enumerator)
	enumeratorElement := b.Enumerator.AddGenericParameter("Element", typesystem.Something)
	enumeratorType := typesystem.NewProtocolType(b.Enumerator,
		[]typesystem.Type{typesystem.NewGenericVariable(enumeratorElement, b.Enumerator.Def())}, false)

	hasMore := &typesystem.Function{
		Name:       "🔼",
		Package:    pkg.Name(),
		Kind:       typesystem.FunctionObjectMethod,
		ReturnType: b.Boolean,
		Owner:      b.Enumerator,
	}
	next := &typesystem.Function{
		Name:       "🔽",
		Package:    pkg.Name(),
		Kind:       typesystem.FunctionObjectMethod,
		ReturnType: typesystem.NewGenericVariable(enumeratorElement, b.Enumerator.Def()),
		Owner:      b.Enumerator,
	}
	if err := b.Enumerator.AddMethodRequirement(hasMore); err != nil {
		return nil, nil, err
	}
	if err := b.Enumerator.AddMethodRequirement(next); err != nil {
		return nil, nil, err
	}
	if err := pkg.RegisterType(GlobalNamespace, "🍡", enumeratorType, true); err != nil {
		return nil, nil, err
	}

	b.Enumerateable = typesystem.NewProtocol("🔂", pkg.Name(), "A sequence that can produce an iterator.", true, pos)
	registry.RegisterProtocol(b.Enumerateable)
	enumerateableElement := b.Enumerateable.AddGenericParameter("Element", typesystem.Something)
	makeIterator := &typesystem.Function{
		Name:    "🍡",
		Package: pkg.Name(),
		Kind:    typesystem.FunctionObjectMethod,
		ReturnType: typesystem.NewProtocolType(b.Enumerator,
			[]typesystem.Type{typesystem.NewGenericVariable(enumerateableElement, b.Enumerateable.Def())}, false),
		Owner: b.Enumerateable,
	}
	if err := b.Enumerateable.AddMethodRequirement(makeIterator); err != nil {
		return nil, nil, err
	}
	enumerateableType := typesystem.NewProtocolType(b.Enumerateable,
		[]typesystem.Type{typesystem.NewGenericVariable(enumerateableElement, b.Enumerateable.Def())}, false)
	if err := pkg.RegisterType(GlobalNamespace, "🔂", enumerateableType, true); err != nil {
		return nil, nil, err
	}

	nativeMethod := func(owner *typesystem.Class, owningType typesystem.Type, name string, params []typesystem.Parameter, ret typesystem.Type) *typesystem.Function {
		f := &typesystem.Function{
			Name:              name,
			Package:           pkg.Name(),
			Kind:              typesystem.FunctionObjectMethod,
			Parameters:        params,
			ReturnType:        ret,
			Owner:             owner,
			OwningType:        owningType,
			Native:            true,
			LinkingTableIndex: nextLinkingIndex(),
		}
		f.SetVTIProvider(owner.VTIProvider())
		return f
	}

	// 🔡 String
	stringClass := typesystem.NewClass("🔡", pkg.Name(), "An immutable sequence of characters.", true, false, pos)
	registry.RegisterClass(stringClass)
	b.String = typesystem.NewClassType(stringClass, nil, false)
	if err := pkg.RegisterType(GlobalNamespace, "🔡", b.String, true); err != nil {
		return nil, nil, err
	}
	if err := stringClass.AddMethod(nativeMethod(stringClass, b.String, "🐔", nil, b.Integer)); err != nil {
		return nil, nil, err
	}

	// 📇 Data
	dataClass := typesystem.NewClass("📇", pkg.Name(), "An immutable byte sequence.", true, false, pos)
	registry.RegisterClass(dataClass)
	b.Data = typesystem.NewClassType(dataClass, nil, false)
	if err := pkg.RegisterType(GlobalNamespace, "📇", b.Data, true); err != nil {
		return nil, nil, err
	}

	// 🍨 List
	listClass := typesystem.NewClass("🍨", pkg.Name(), "An ordered, random-access collection.", true, false, pos)
	registry.RegisterClass(listClass)
	listElement := listClass.AddGenericParameter("Element", typesystem.Something)
	listElementVar := typesystem.NewGenericVariable(listElement, listClass.Def())
	b.ListClass = listClass
	listType := typesystem.NewClassType(listClass, []typesystem.Type{listElementVar}, false)
	if err := pkg.RegisterType(GlobalNamespace, "🍨", listType, true); err != nil {
		return nil, nil, err
	}
	if err := listClass.AddMethod(nativeMethod(listClass, listType, "🐻",
		[]typesystem.Parameter{{Name: "value", Type: listElementVar}}, typesystem.Nothingness)); err != nil {
		return nil, nil, err
	}
	if err := listClass.AddMethod(nativeMethod(listClass, listType, "🐔", nil, b.Integer)); err != nil {
		return nil, nil, err
	}
	if err := listClass.AddMethod(nativeMethod(listClass, listType, "🐽",
		[]typesystem.Parameter{{Name: "index", Type: b.Integer}}, listElementVar.Optionalized())); err != nil {
		return nil, nil, err
	}

	// 🍯 Dictionary
	dictClass := typesystem.NewClass("🍯", pkg.Name(), "A mapping from strings to values.", true, false, pos)
	registry.RegisterClass(dictClass)
	dictValue := dictClass.AddGenericParameter("Value", typesystem.Something)
	dictValueVar := typesystem.NewGenericVariable(dictValue, dictClass.Def())
	b.DictClass = dictClass
	dictType := typesystem.NewClassType(dictClass, []typesystem.Type{dictValueVar}, false)
	if err := pkg.RegisterType(GlobalNamespace, "🍯", dictType, true); err != nil {
		return nil, nil, err
	}
	if err := dictClass.AddMethod(nativeMethod(dictClass, dictType, "🐽",
		[]typesystem.Parameter{{Name: "key", Type: b.String}}, dictValueVar.Optionalized())); err != nil {
		return nil, nil, err
	}
	if err := dictClass.AddMethod(nativeMethod(dictClass, dictType, "🐷",
		[]typesystem.Parameter{{Name: "key", Type: b.String}, {Name: "value", Type: dictValueVar}},
		typesystem.Nothingness)); err != nil {
		return nil, nil, err
	}

	// ⏩ Range
	rangeVT := typesystem.NewValueType("⏩", pkg.Name(), "A range of integers with a step.", true, pos)
	rangeVT.SetSize(3)
	registry.RegisterValueType(rangeVT)
	b.RangeVT = rangeVT
	b.Range = typesystem.NewValueTypeType(rangeVT, nil, false)
	if err := pkg.RegisterType(GlobalNamespace, "⏩", b.Range, true); err != nil {
		return nil, nil, err
	}

	pkg.FinishLoading()
	return pkg, b, nil
}
