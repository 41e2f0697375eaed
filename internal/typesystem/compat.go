package typesystem

// Inference collects candidate types for a function's local generic
// parameters while arguments are checked. A common-type finder per
// parameter reconciles the candidates afterwards.
type Inference struct {
	Function *Function
	Finders  []CommonTypeFinder
}

// NewInference prepares one finder per local generic parameter of f.
func NewInference(f *Function) *Inference {
	return &Inference{Function: f, Finders: make([]CommonTypeFinder, len(f.GenericParameterNames))}
}

// record stores a as candidate for the unbound local generic variable b.
func (inf *Inference) record(a, b Type, ctx TypeContext) bool {
	if b.optional || !a.optional {
		inf.Finders[b.index].AddType(a.CopyWithoutOptional(), ctx)
		return true
	}
	return false
}

func (inf *Inference) unbound(b Type) bool {
	return inf != nil && b.kind == TypeLocalGenericVariable && b.function == inf.Function &&
		b.index < len(inf.Finders)
}

// CompatibleTo reports whether a value of this type may legally flow where
// to is expected. The optional bit gates every rule: the target may accept
// an optional; the source must not be optional unless the target is.
func (t Type) CompatibleTo(to Type, ctx TypeContext, inf *Inference) bool {
	if inf.unbound(to) {
		return inf.record(t, to, ctx)
	}
	if t.meta != to.meta {
		return false
	}

	switch {
	case to.kind == TypeSomething:
		return true

	case to.kind == TypeSomeobject &&
		(t.kind == TypeClass || t.kind == TypeProtocol || t.kind == TypeMultiProtocol || t.kind == TypeSomeobject):
		return to.optional || !t.optional

	case t.kind == TypeClass && to.kind == TypeClass:
		if (to.optional || !t.optional) && t.class.InheritsFrom(to.class) {
			// The own generic arguments must compare identical, not
			// compatible: class generics are invariant.
			own := to.class.OwnGenericParameterCount()
			offset := to.class.GenericArgumentCount() - own
			for i := offset; i < offset+own; i++ {
				if i >= len(t.genericArguments) || i >= len(to.genericArguments) {
					return false
				}
				if !t.genericArguments[i].IdenticalTo(to.genericArguments[i], ctx, inf) {
					return false
				}
			}
			return true
		}
		return false

	case t.kind == TypeProtocol && to.kind == TypeProtocol:
		if (to.optional || !t.optional) && t.protocol == to.protocol {
			for i := range to.genericArguments {
				if i >= len(t.genericArguments) ||
					!t.genericArguments[i].IdenticalTo(to.genericArguments[i], ctx, inf) {
					return false
				}
			}
			return true
		}
		return false

	case t.kind == TypeClass && to.kind == TypeProtocol:
		if to.optional || !t.optional {
			for a := t.class; a != nil; a = a.Superclass() {
				for _, proto := range a.Protocols() {
					if proto.ResolveOn(NewTypeContext(t), true).CompatibleTo(to, ctx, inf) {
						return true
					}
				}
			}
		}
		return false

	case t.kind == TypeValueType && to.kind == TypeProtocol:
		if to.optional || !t.optional {
			for _, proto := range t.valueType.Protocols() {
				if proto.ResolveOn(NewTypeContext(t), true).CompatibleTo(to, ctx, inf) {
					return true
				}
			}
		}
		return false

	case t.kind == TypeNothingness:
		return to.optional || to.kind == TypeNothingness

	case t.kind == TypeEnum && to.kind == TypeEnum:
		return (to.optional || !t.optional) && t.enum == to.enum

	case t.kind == TypeValueType && to.kind == TypeValueType:
		if (to.optional || !t.optional) && t.valueType == to.valueType {
			for i := range to.genericArguments {
				if i >= len(t.genericArguments) ||
					!t.genericArguments[i].IdenticalTo(to.genericArguments[i], ctx, inf) {
					return false
				}
			}
			return true
		}
		return false

	case to.kind == TypeMultiProtocol:
		if !(to.optional || !t.optional) {
			return false
		}
		for _, proto := range to.protocols {
			if !t.CopyWithoutOptional().CompatibleTo(proto, ctx, inf) {
				return false
			}
		}
		return true

	case t.kind == TypeMultiProtocol && to.kind == TypeProtocol:
		if !(to.optional || !t.optional) {
			return false
		}
		for _, proto := range t.protocols {
			if proto.CompatibleTo(to, ctx, inf) {
				return true
			}
		}
		return false

	case t.kind == TypeTypeError && to.kind == TypeTypeError:
		return (to.optional || !t.optional) && t.enum == to.enum &&
			t.ErrorWrapped().CompatibleTo(to.ErrorWrapped(), ctx, inf)

	case t.kind == TypeCallable && to.kind == TypeCallable:
		if !(to.optional || !t.optional) {
			return false
		}
		if len(t.genericArguments) != len(to.genericArguments) {
			return false
		}
		// Covariant return, contravariant parameters.
		if !t.CallableReturn().CompatibleTo(to.CallableReturn(), ctx, inf) {
			return false
		}
		for i := 1; i < len(to.genericArguments); i++ {
			if !to.genericArguments[i].CompatibleTo(t.genericArguments[i], ctx, inf) {
				return false
			}
		}
		return true

	case t.kind == TypeGenericVariable && to.kind == TypeGenericVariable,
		t.kind == TypeLocalGenericVariable && to.kind == TypeLocalGenericVariable:
		if (to.optional || !t.optional) && sameVariable(t.CopyWithoutOptional(), to.CopyWithoutOptional()) {
			return true
		}
		return (to.optional || !t.optional) &&
			t.ResolveOnSuperArgumentsAndConstraints(ctx, false).
				CompatibleTo(to.ResolveOnSuperArgumentsAndConstraints(ctx, false), ctx, inf)

	case t.kind == TypeGenericVariable || t.kind == TypeLocalGenericVariable || t.kind == TypeSelf:
		return (to.optional || !t.optional) &&
			t.ResolveOnSuperArgumentsAndConstraints(ctx, t.kind == TypeSelf).CompatibleTo(to, ctx, inf)

	case to.kind == TypeGenericVariable || to.kind == TypeLocalGenericVariable || to.kind == TypeSelf:
		return (to.optional || !t.optional) &&
			t.CompatibleTo(to.ResolveOnSuperArgumentsAndConstraints(ctx, to.kind == TypeSelf), ctx, inf)

	default:
		return (to.optional || !t.optional) && t.kind == to.kind
	}
}

// IdenticalTo is structural equality, used where variance is disallowed:
// class generic arguments and protocol generic arguments.
func (t Type) IdenticalTo(to Type, ctx TypeContext, inf *Inference) bool {
	if inf.unbound(to) {
		return inf.record(t, to, ctx)
	}
	if t.kind != to.kind || t.optional != to.optional || t.meta != to.meta {
		return false
	}
	switch t.kind {
	case TypeClass:
		if t.class != to.class {
			return false
		}
	case TypeValueType:
		if t.valueType != to.valueType {
			return false
		}
	case TypeEnum, TypeTypeError:
		if t.enum != to.enum {
			return false
		}
	case TypeProtocol:
		if t.protocol != to.protocol {
			return false
		}
	case TypeMultiProtocol:
		if len(t.protocols) != len(to.protocols) {
			return false
		}
		for i := range t.protocols {
			if !t.protocols[i].IdenticalTo(to.protocols[i], ctx, inf) {
				return false
			}
		}
		return true
	case TypeGenericVariable:
		return t.index == to.index && t.owner == to.owner
	case TypeLocalGenericVariable:
		return t.index == to.index && t.function == to.function
	}
	if len(t.genericArguments) != len(to.genericArguments) {
		return false
	}
	for i := range t.genericArguments {
		if !t.genericArguments[i].IdenticalTo(to.genericArguments[i], ctx, inf) {
			return false
		}
	}
	return true
}
