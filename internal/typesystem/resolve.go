package typesystem

// canResolveGenericsOf reports whether this type's definition supplies
// arguments for generic variables owned by owner. Classes resolve for their
// whole superclass chain since the super arguments are part of their own
// argument vector.
func (t Type) canResolveGenericsOf(owner *TypeDef) bool {
	if owner == nil {
		return false
	}
	if t.kind == TypeClass {
		return t.class.canBeUsedToResolve(owner)
	}
	if def := t.TypeDefinition(); def != nil {
		return def.Def().canBeUsedToResolve(owner)
	}
	return false
}

// sameVariable reports whether both types are the same generic variable.
// Such a chain is self-referential and resolution leaves it as-is.
func sameVariable(a, b Type) bool {
	if a.kind != b.kind || a.index != b.index {
		return false
	}
	switch a.kind {
	case TypeGenericVariable:
		return a.owner == b.owner
	case TypeLocalGenericVariable:
		return a.function == b.function
	}
	return false
}

// ResolveOn substitutes every generic variable, local generic variable and,
// if resolveSelf is set, Self inside the type tree with the corresponding
// argument from the context, recursing into all generic arguments.
// Substitution runs to a fixpoint: a generic variable may resolve to
// another generic variable. A self-referential chain stops and keeps the
// variable. The optional, reference and mutable bits of the outer type are
// preserved.
func (t Type) ResolveOn(ctx TypeContext, resolveSelf bool) Type {
	optional := t.optional
	reference := t.reference
	mutable := t.mutable
	meta := t.meta

	if resolveSelf && t.kind == TypeSelf {
		t = ctx.CalleeType
	}

	for t.kind == TypeLocalGenericVariable && ctx.FunctionGenericArguments != nil &&
		t.function == ctx.Function && t.index < len(ctx.FunctionGenericArguments) {
		tn := ctx.FunctionGenericArguments[t.index]
		if sameVariable(t, tn) {
			break
		}
		t = tn
	}

	if ctx.CalleeType.canHaveGenericArguments() {
		for t.kind == TypeGenericVariable && ctx.CalleeType.canResolveGenericsOf(t.owner) &&
			t.index < len(ctx.CalleeType.genericArguments) {
			tn := ctx.CalleeType.genericArguments[t.index]
			if sameVariable(t, tn) {
				break
			}
			t = tn
		}
	}

	t.optional = t.optional || optional
	t.reference = reference
	t.mutable = mutable
	t.meta = t.meta || meta

	switch {
	case t.canHaveGenericArguments(), t.kind == TypeCallable, t.kind == TypeTypeError:
		if len(t.genericArguments) > 0 {
			args := make([]Type, len(t.genericArguments))
			for i, a := range t.genericArguments {
				args[i] = a.ResolveOn(ctx, resolveSelf)
			}
			t.genericArguments = args
		}
	case t.kind == TypeMultiProtocol:
		protos := make([]Type, len(t.protocols))
		for i, p := range t.protocols {
			protos[i] = p.ResolveOn(ctx, resolveSelf)
		}
		t.protocols = protos
	}

	return t
}

// ResolveOnSuperArgumentsAndConstraints is the weaker resolution used while
// analysing the body of the owning definition itself, where concrete
// arguments are unknown: generic variables referring to super parameters
// resolve through the supplied super arguments, everything else resolves to
// its declared constraint.
func (t Type) ResolveOnSuperArgumentsAndConstraints(ctx TypeContext, resolveSelf bool) Type {
	def := ctx.CalleeType.TypeDefinition()
	if def == nil {
		return t
	}
	d := def.Def()
	optional := t.optional

	if resolveSelf && t.kind == TypeSelf {
		t = ctx.CalleeType
	}

	maxReferenceForSuper := d.superGenericArgumentCount()
	for t.kind == TypeGenericVariable && t.index < maxReferenceForSuper {
		t = d.superGenericArguments[t.index]
	}
	for t.kind == TypeLocalGenericVariable {
		if ctx.Function == nil {
			break
		}
		tn := ctx.Function.LocalConstraintForIndex(t.index)
		if sameVariable(t, tn) {
			break
		}
		t = tn
	}
	for t.kind == TypeGenericVariable {
		tn := d.ConstraintForIndex(t.index)
		if sameVariable(t, tn) {
			break
		}
		t = tn
	}

	if optional {
		t.optional = true
	}
	return t
}
