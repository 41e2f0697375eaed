package typesystem

import (
	"github.com/funvibe/emojc/internal/diagnostics"
)

// FinalizeClass performs the assembly steps that must run before any body
// is analysed: instance scope population, override checks, protocol
// conformance with boxing-layer synthesis, and the required-initializer
// contract. Errors are collected so siblings keep compiling.
func FinalizeClass(c *Class, registry *Registry) []*diagnostics.CompilerError {
	var errs []*diagnostics.CompilerError

	var superScope *Scope
	if c.superclass != nil {
		superScope = c.superclass.InstanceScope()
	}
	if err := c.PopulateInstanceScope(superScope); err != nil {
		errs = append(errs, diagnostics.Wrap(c.Position(), err))
	}

	classType := NewClassType(c, genericVariableVector(c.Def()), false)

	for _, f := range c.Methods() {
		f.OwningType = classType
		f.SetVTIProvider(c.VTIProvider())
		if f.Kind != FunctionObjectInitializer {
			errs = append(errs, checkOverride(c, f, classType)...)
		}
	}

	for _, errList := range [][]*diagnostics.CompilerError{
		checkRequiredInitializers(c),
		finalizeProtocolConformance(c.Def(), c, classType),
	} {
		errs = append(errs, errList...)
	}

	// Required-initializer redeclarations keep the superclass slot so a
	// dynamic type can dispatch the initializer by index.
	if c.superclass != nil {
		for _, name := range initializerNames(c) {
			f := c.LookupInitializer(name)
			if super := c.superclass.LookupInitializerDeep(name); super != nil && super.Required && f.Required {
				f.TakeVTIFrom(super)
			}
		}
	}

	return errs
}

// FinalizeValueType wires a value type's functions to the shared pure
// function provider and checks its protocol conformance.
func FinalizeValueType(v *ValueType, registry *Registry) []*diagnostics.CompilerError {
	var errs []*diagnostics.CompilerError
	if err := v.PopulateInstanceScope(nil); err != nil {
		errs = append(errs, diagnostics.Wrap(v.Position(), err))
	}
	vtType := NewValueTypeType(v, genericVariableVector(v.Def()), false)
	for _, f := range v.Methods() {
		f.OwningType = vtType
		f.SetVTIProvider(&registry.PureFunctions)
	}
	errs = append(errs, finalizeProtocolConformance(v.Def(), nil, vtType)...)
	return errs
}

// genericVariableVector builds the identity argument vector: every
// parameter mapped to itself. Used as the definition's own type while its
// bodies are analysed.
func genericVariableVector(d *TypeDef) []Type {
	count := d.GenericArgumentCount()
	if count == 0 {
		return nil
	}
	args := make([]Type, count)
	copy(args, d.superGenericArguments)
	for i := d.superGenericArgumentCount(); i < count; i++ {
		args[i] = NewGenericVariable(i, d)
	}
	return args
}

// checkOverride enforces the override semantics: an overriding method needs
// a visible, non-final super function with access at least protected and a
// Liskov-compatible signature; a method shadowing a visible super function
// must declare itself overriding.
func checkOverride(c *Class, f *Function, classType Type) []*diagnostics.CompilerError {
	var errs []*diagnostics.CompilerError
	var super *Function
	if c.superclass != nil {
		if f.Kind == FunctionClassMethod {
			super = c.superclass.LookupTypeMethodDeep(f.Name)
		} else {
			super = c.superclass.LookupMethodDeep(f.Name)
		}
	}
	if super != nil && super.AccessLevel == AccessPrivate {
		super = nil
	}

	if f.Overriding && super == nil {
		errs = append(errs, diagnostics.NewError(diagnostics.ErrT008, f.Position,
			"%s was declared ✒️ but does not override anything", f.String()))
		return errs
	}
	if super == nil {
		return errs
	}
	if !f.Overriding {
		errs = append(errs, diagnostics.NewError(diagnostics.ErrT008, f.Position,
			"%s overrides %s but was not declared ✒️", f.String(), super.String()))
	}
	if super.Final {
		errs = append(errs, diagnostics.NewError(diagnostics.ErrT008, f.Position,
			"%s overrides 🔏 method %s", f.String(), super.String()))
	}
	if err := f.EnforceSignatureOf(super, classType); err != nil {
		errs = append(errs, diagnostics.NewError(diagnostics.ErrT008, f.Position, "%s", err.Error()))
	}
	f.SuperFunction = super
	f.TakeVTIFrom(super)
	return errs
}

// checkRequiredInitializers verifies the class discharged every required
// initializer inherited from its superclass.
func checkRequiredInitializers(c *Class) []*diagnostics.CompilerError {
	var errs []*diagnostics.CompilerError
	if c.inheritsInitializers {
		return nil
	}
	for name := range c.RequiredInitializers() {
		errs = append(errs, diagnostics.NewError(diagnostics.ErrI006, c.Position(),
			"class %s does not implement the required initializer %s", c.Name(), name))
	}
	return errs
}

func initializerNames(c *Class) []string {
	var names []string
	for _, f := range c.Methods() {
		if f.Kind == FunctionObjectInitializer {
			names = append(names, f.Name)
		}
	}
	return names
}

// finalizeProtocolConformance checks every adopted protocol: the adopter
// must provide a method for each requirement with a compatible signature
// after substitution on the adopting type. Where the requirement expects a
// wider storage form than the concrete method uses, a boxing layer is
// synthesized and recorded at the requirement's slot.
func finalizeProtocolConformance(d *TypeDef, c *Class, adopterType Type) []*diagnostics.CompilerError {
	var errs []*diagnostics.CompilerError
	for _, protoType := range d.Protocols() {
		proto := protoType.Protocol()
		if proto == nil {
			continue
		}
		protoCtx := NewTypeContext(protoType)
		table := make([]*Function, len(proto.Methods()))
		for slot, requirement := range proto.Methods() {
			var method *Function
			if c != nil {
				method = c.LookupMethodDeep(requirement.Name)
			} else {
				method = d.LookupMethod(requirement.Name)
			}
			if method == nil {
				errs = append(errs, diagnostics.NewError(diagnostics.ErrT003, d.Position(),
					"%s adopts %s but does not provide %s", d.Name(), proto.Name(), requirement.Name))
				continue
			}

			reqReturn := requirement.ReturnType.ResolveOn(protoCtx, false)
			reqParams := make([]Type, len(requirement.Parameters))
			for i, p := range requirement.Parameters {
				reqParams[i] = p.Type.ResolveOn(protoCtx, false)
			}

			adopterCtx := NewTypeContext(adopterType)
			if len(method.Parameters) != len(requirement.Parameters) {
				errs = append(errs, diagnostics.NewError(diagnostics.ErrT003, method.Position,
					"%s takes %d arguments but %s.%s requires %d",
					method.String(), len(method.Parameters), proto.Name(), requirement.Name, len(requirement.Parameters)))
				continue
			}
			ok := true
			for i, p := range method.Parameters {
				methodParam := p.Type.ResolveOn(adopterCtx, true)
				if !reqParams[i].CompatibleTo(methodParam, adopterCtx, nil) && !boxBridgeable(reqParams[i], methodParam) {
					errs = append(errs, diagnostics.NewError(diagnostics.ErrT003, method.Position,
						"argument %d of %s is not compatible to %s required by %s",
						i+1, method.String(), reqParams[i].String(), proto.Name()))
					ok = false
				}
			}
			methodReturn := method.ReturnType.ResolveOn(adopterCtx, true)
			if !methodReturn.CompatibleTo(reqReturn, adopterCtx, nil) && !boxBridgeable(reqReturn, methodReturn) {
				errs = append(errs, diagnostics.NewError(diagnostics.ErrT003, method.Position,
					"return type of %s is not compatible to %s required by %s",
					method.String(), reqReturn.String(), proto.Name()))
				ok = false
			}
			if !ok {
				continue
			}

			if needsBoxingLayer(method, reqParams, reqReturn, adopterCtx) {
				layer := newBoxingLayer(method, requirement, reqParams, reqReturn, d)
				table[slot] = layer
			} else {
				method.MarkUsed()
				table[slot] = method
			}
		}
		if c != nil {
			c.SetProtocolTable(proto.Index(), table)
		}
	}
	return errs
}

// boxBridgeable reports whether a requirement slot typed by a top type can
// carry any value through the uniform boxed representation. The type check
// is waived for such slots; a boxing layer adapts the storage.
func boxBridgeable(wide, narrow Type) bool {
	if wide.Optional() && narrow.Optional() {
		wide = wide.CopyWithoutOptional()
		narrow = narrow.CopyWithoutOptional()
	}
	if !wide.Optional() && narrow.Optional() {
		return false
	}
	switch wide.Kind() {
	case TypeSomething:
		return true
	case TypeSomeobject:
		return narrow.Size() <= 1
	}
	return false
}

// needsBoxingLayer reports whether a requirement's storage expectations are
// strictly wider than the method's.
func needsBoxingLayer(method *Function, reqParams []Type, reqReturn Type, ctx TypeContext) bool {
	for i, p := range method.Parameters {
		if reqParams[i].StorageType() != p.Type.ResolveOn(ctx, true).StorageType() {
			return true
		}
	}
	return reqReturn.StorageType() != method.ReturnType.ResolveOn(ctx, true).StorageType()
}

// newBoxingLayer creates the adapter function occupying the protocol's slot
// in place of the concrete method. Its body is built mechanically once the
// analyser runs.
func newBoxingLayer(method *Function, requirement *Function, reqParams []Type, reqReturn Type, owner *TypeDef) *Function {
	params := make([]Parameter, len(reqParams))
	for i, t := range reqParams {
		params[i] = Parameter{Name: method.Parameters[i].Name, Type: t}
	}
	layer := &Function{
		Name:        method.Name,
		Package:     method.Package,
		Position:    method.Position,
		AccessLevel: AccessPublic,
		Kind:        FunctionBoxingLayer,
		Parameters:  params,
		ReturnType:  reqReturn,
		Owner:       method.Owner,
		OwningType:  method.OwningType,
		Destination: method,
	}
	layer.setVTI(requirement.vti)
	method.MarkUsed()
	return layer
}
