package analyzer

import (
	"github.com/funvibe/emojc/internal/diagnostics"
	"github.com/funvibe/emojc/internal/parser"
	"github.com/funvibe/emojc/internal/scoper"
	"github.com/funvibe/emojc/internal/token"
	"github.com/funvibe/emojc/internal/typesystem"
	"github.com/funvibe/emojc/internal/writer"
)

// parseCallArguments implements the function-call protocol: explicit
// generic arguments, per-parameter expectations resolved against the type
// context, generic-argument inference with post-hoc re-verification, the
// access check and the substituted result type.
func (a *FunctionAnalyser) parseCallArguments(f *typesystem.Function, ctx typesystem.TypeContext,
	pos token.SourcePosition) (typesystem.Type, error) {
	if err := a.checkAccess(f, pos); err != nil {
		return typesystem.Type{}, err
	}
	if f.Deprecated {
		a.warn(diagnostics.NewWarning(diagnostics.WarnW003, pos,
			"%s is deprecated. %s", f.String(), f.Documentation))
	}

	var explicit []typesystem.Type
	tp := a.typeParser(nil)
	for a.stream.ConsumeTokenIf(parser.SigilGenerics) {
		t, err := tp.ParseType(a.typeDynamism())
		if err != nil {
			return typesystem.Type{}, err
		}
		explicit = append(explicit, t)
		if len(explicit) > len(f.GenericParameterNames) {
			return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrT005, pos,
				"too many generic arguments for %s: expected %d", f.String(), len(f.GenericParameterNames))
		}
	}

	var inference *typesystem.Inference
	callCtx := ctx
	switch {
	case len(explicit) == len(f.GenericParameterNames) && len(explicit) > 0:
		callCtx = ctx.WithGenericArguments(explicit)
	case len(explicit) > 0:
		return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrT005, pos,
			"%s requires %d generic arguments, %d were supplied",
			f.String(), len(f.GenericParameterNames), len(explicit))
	case len(f.GenericParameterNames) > 0:
		// Leave the parameters unbound; the inference finders collect
		// candidates while arguments are checked.
		inference = typesystem.NewInference(f)
		unbound := make([]typesystem.Type, len(f.GenericParameterNames))
		for i := range unbound {
			unbound[i] = typesystem.NewLocalGenericVariable(i, f)
		}
		callCtx = ctx.WithGenericArguments(unbound)
	}

	argTypes := make([]typesystem.Type, 0, len(f.Parameters))
	for _, param := range f.Parameters {
		expected := param.Type.ResolveOn(callCtx, true)
		var argType typesystem.Type
		var err error
		if inference != nil {
			argType, err = a.parseExpression(ExpectInferring(expected, inference))
		} else {
			argType, err = a.parseExpression(Expect(expected))
		}
		if err != nil {
			return typesystem.Type{}, err
		}
		argTypes = append(argTypes, argType)
	}

	if inference != nil {
		final := make([]typesystem.Type, len(inference.Finders))
		for i := range inference.Finders {
			t := inference.Finders[i].CommonType()
			constraint := f.LocalConstraintForIndex(i)
			if !t.CompatibleTo(constraint.ResolveOn(callCtx, false), callCtx, nil) {
				return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrT004, pos,
					"inferred generic argument %s for %s is not compatible to the constraint %s",
					t.String(), f.GenericParameterNames[i], constraint.String())
			}
			final[i] = t
		}
		callCtx = ctx.WithGenericArguments(final)
		// Re-verify every argument against the finalized parameter type.
		for i, param := range f.Parameters {
			expected := param.Type.ResolveOn(callCtx, true)
			if !argTypes[i].CompatibleTo(expected, callCtx, nil) {
				return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrT001, pos,
					"argument %d of type %s is not compatible to %s after generic inference",
					i+1, argTypes[i].String(), expected.String())
			}
		}
	}

	return f.ReturnType.ResolveOn(callCtx, true), nil
}

// checkAccess enforces access levels: 🔒 restricts a function to its own
// type definition, 🔐 to the definition and its subclasses.
func (a *FunctionAnalyser) checkAccess(f *typesystem.Function, pos token.SourcePosition) error {
	switch f.AccessLevel {
	case typesystem.AccessPrivate:
		if a.function.Owner == nil || a.function.Owner.Def() != ownerTypeDef(f) {
			return diagnostics.NewError(diagnostics.ErrM001, pos,
				"%s is 🔒 and may only be called from %s", f.String(), f.Owner.Name())
		}
	case typesystem.AccessProtected:
		if a.function.Owner == nil {
			return diagnostics.NewError(diagnostics.ErrM001, pos,
				"%s is 🔐 and may not be called from here", f.String())
		}
		if a.function.Owner.Def() == ownerTypeDef(f) {
			return nil
		}
		callerClass, callerOk := a.function.Owner.(*typesystem.Class)
		calleeClass, calleeOk := f.Owner.(*typesystem.Class)
		if !callerOk || !calleeOk || !callerClass.InheritsFrom(calleeClass) {
			return diagnostics.NewError(diagnostics.ErrM001, pos,
				"%s is 🔐 and may only be called from %s or its subclasses", f.String(), f.Owner.Name())
		}
	}
	return nil
}

func ownerTypeDef(f *typesystem.Function) *typesystem.TypeDef {
	if f.Owner == nil {
		return nil
	}
	return f.Owner.Def()
}

// parseBuffered runs parse with the emission redirected into a fresh
// buffer, so dispatch words selected afterwards can precede the already
// parsed receiver. This is the recompilation point that also lets operator
// specialization re-issue a receiver in a simpler storage mode.
func (a *FunctionAnalyser) parseBuffered(parse func() (typesystem.Type, error)) (typesystem.Type, *writer.FunctionWriter, error) {
	saved := a.writer
	buf := writer.NewFunctionWriter()
	a.writer = buf
	t, err := parse()
	a.writer = saved
	return t, buf, err
}

// parseMethodCall is the default branch of expression parsing: the emoji
// names a method on the receiver that follows.
func (a *FunctionAnalyser) parseMethodCall(tok token.Token) (typesystem.Type, error) {
	name := tok.Value

	a.lastReadVariable = nil
	recvType, buf, err := a.parseBuffered(func() (typesystem.Type, error) {
		return a.parseExpressionRaw(NoExpectation())
	})
	if err != nil {
		return typesystem.Type{}, err
	}
	receiverVariable := a.lastReadVariable

	if op, ok := primitiveOperator(name, recvType, a.builtins); ok {
		return a.parsePrimitiveOperator(op, recvType, buf)
	}

	if recvType.Optional() {
		return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrT001, tok.Position,
			"cannot call %s on an optional; unwrap with 🍺 or bind with 🍊🍦", name)
	}
	if recvType.Kind() == typesystem.TypeSelf {
		recvType = recvType.ResolveOnSuperArgumentsAndConstraints(a.typeCtx, true)
	}

	switch recvType.Kind() {
	case typesystem.TypeClass:
		method := recvType.Class().LookupMethodDeep(name)
		if method == nil {
			return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrN005, tok.Position,
				"%s has no method %s", recvType.String(), name)
		}
		method.MarkUsed()
		a.writer.WriteInstruction(writer.InsDispatchMethod, writer.Instruction(method.VTI()))
		a.appendBuffer(buf)
		ctx := typesystem.NewTypeContext(recvType).WithFunction(method)
		return a.parseCallArguments(method, ctx, tok.Position)

	case typesystem.TypeValueType:
		method := recvType.ValueType().LookupMethod(name)
		if method == nil {
			return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrN005, tok.Position,
				"%s has no method %s", recvType.String(), name)
		}
		if err := a.checkMutatingCall(method, recvType, receiverVariable, tok.Position); err != nil {
			return typesystem.Type{}, err
		}
		method.MarkUsed()
		a.writer.WriteInstruction(writer.InsCallContextedFunction, writer.Instruction(method.VTI()))
		if method.Mutating && receiverVariable != nil {
			// Mutating methods receive a reference to the variable instead
			// of a copy.
			a.writer.WriteInstruction(writer.InsGetVTReferenceStack, writer.Instruction(receiverVariable.ID()))
		} else {
			a.appendBuffer(buf)
		}
		ctx := typesystem.NewTypeContext(recvType).WithFunction(method)
		return a.parseCallArguments(method, ctx, tok.Position)

	case typesystem.TypeProtocol:
		requirement := recvType.Protocol().LookupMethod(name)
		if requirement == nil {
			return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrN005, tok.Position,
				"%s has no method %s", recvType.String(), name)
		}
		a.writer.WriteInstruction(writer.InsDispatchProtocol,
			writer.Instruction(recvType.Protocol().Index()), writer.Instruction(requirement.VTI()))
		a.appendBuffer(buf)
		ctx := typesystem.NewTypeContext(recvType).WithFunction(requirement)
		return a.parseCallArguments(requirement, ctx, tok.Position)

	case typesystem.TypeMultiProtocol:
		for _, protoType := range recvType.Protocols() {
			if requirement := protoType.Protocol().LookupMethod(name); requirement != nil {
				a.writer.WriteInstruction(writer.InsDispatchProtocol,
					writer.Instruction(protoType.Protocol().Index()), writer.Instruction(requirement.VTI()))
				a.appendBuffer(buf)
				ctx := typesystem.NewTypeContext(protoType).WithFunction(requirement)
				return a.parseCallArguments(requirement, ctx, tok.Position)
			}
		}
		return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrN005, tok.Position,
			"no protocol in %s declares a method %s", recvType.String(), name)

	}

	return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrN005, tok.Position,
		"%s has no method %s", recvType.String(), name)
}

func (a *FunctionAnalyser) appendBuffer(buf *writer.FunctionWriter) {
	a.writer.WriteInstruction(buf.Words()...)
}

// checkMutatingCall enforces the mutation discipline at value-type call
// sites: mutating methods need a mutable variable receiver.
func (a *FunctionAnalyser) checkMutatingCall(method *typesystem.Function, recvType typesystem.Type,
	receiverVariable *typesystem.Variable, pos token.SourcePosition) error {
	if !method.Mutating {
		return nil
	}
	if receiverVariable == nil {
		return diagnostics.NewError(diagnostics.ErrM003, pos,
			"💪 method %s cannot be called on a temporary value", method.String())
	}
	if receiverVariable.Constant() {
		return diagnostics.NewError(diagnostics.ErrM003, pos,
			"💪 method %s cannot be called on the immutable variable %s", method.String(), receiverVariable.Name())
	}
	return receiverVariable.Mutate(pos)
}

// parseTypeMethodCall compiles 🍩 methodName Type arguments.
func (a *FunctionAnalyser) parseTypeMethodCall(tok token.Token) (typesystem.Type, error) {
	nameTok, err := a.stream.ConsumeToken(token.Identifier, token.Variable)
	if err != nil {
		return typesystem.Type{}, diagnostics.Wrap(tok.Position, err)
	}
	tp := a.typeParser(nil)
	t, err := tp.ParseType(a.typeDynamism())
	if err != nil {
		return typesystem.Type{}, err
	}

	switch t.Kind() {
	case typesystem.TypeClass:
		method := t.Class().LookupTypeMethodDeep(nameTok.Value)
		if method == nil {
			return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrN005, nameTok.Position,
				"%s has no type method %s", t.String(), nameTok.Value)
		}
		method.MarkUsed()
		a.writer.WriteInstruction(writer.InsDispatchTypeMethod,
			writer.Instruction(t.Class().Index()), writer.Instruction(method.VTI()))
		ctx := typesystem.NewTypeContext(t).WithFunction(method)
		return a.parseCallArguments(method, ctx, nameTok.Position)

	case typesystem.TypeValueType:
		method := t.ValueType().LookupTypeMethod(nameTok.Value)
		if method == nil {
			return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrN005, nameTok.Position,
				"%s has no type method %s", t.String(), nameTok.Value)
		}
		method.MarkUsed()
		a.writer.WriteInstruction(writer.InsCallFunction, writer.Instruction(method.VTI()))
		ctx := typesystem.NewTypeContext(t).WithFunction(method)
		return a.parseCallArguments(method, ctx, nameTok.Position)
	}
	return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrT001, nameTok.Position,
		"%s cannot have type methods", t.String())
}

// parseSuperCall compiles 🐿 methodName arguments, the statically bound
// call to the superclass implementation.
func (a *FunctionAnalyser) parseSuperCall(tok token.Token) (typesystem.Type, error) {
	class := a.ownerClass()
	if class == nil || a.function.Kind != typesystem.FunctionObjectMethod {
		return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrN005, tok.Position,
			"🐿 may only be used in object methods")
	}
	if class.Superclass() == nil {
		return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrN005, tok.Position,
			"%s has no superclass", class.Name())
	}
	nameTok, err := a.stream.ConsumeToken(token.Identifier, token.Variable)
	if err != nil {
		return typesystem.Type{}, diagnostics.Wrap(tok.Position, err)
	}
	method := class.Superclass().LookupMethodDeep(nameTok.Value)
	if method == nil {
		return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrN005, nameTok.Position,
			"%s has no method %s", class.Superclass().Name(), nameTok.Value)
	}
	method.MarkUsed()
	a.usedSelf = true
	a.paths.RecordIncident(scoper.UsedSelf())
	a.writer.WriteInstruction(writer.InsDispatchSuper,
		writer.Instruction(class.Superclass().Index()), writer.Instruction(method.VTI()))
	a.writer.WriteInstruction(writer.InsGetThis)
	ctx := typesystem.NewTypeContext(class.SuperType()).WithFunction(method)
	return a.parseCallArguments(method, ctx, nameTok.Position)
}

// parseMethodCapture compiles 🌶 methodName receiver into a callable value
// bound to the receiver.
func (a *FunctionAnalyser) parseMethodCapture(tok token.Token) (typesystem.Type, error) {
	nameTok, err := a.stream.ConsumeToken(token.Identifier, token.Variable)
	if err != nil {
		return typesystem.Type{}, diagnostics.Wrap(tok.Position, err)
	}

	recvType, buf, err := a.parseBuffered(func() (typesystem.Type, error) {
		return a.parseExpressionRaw(NoExpectation())
	})
	if err != nil {
		return typesystem.Type{}, err
	}

	var method *typesystem.Function
	switch recvType.Kind() {
	case typesystem.TypeClass:
		method = recvType.Class().LookupMethodDeep(nameTok.Value)
	case typesystem.TypeValueType:
		method = recvType.ValueType().LookupMethod(nameTok.Value)
	}
	if method == nil {
		return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrN005, nameTok.Position,
			"%s has no method %s", recvType.String(), nameTok.Value)
	}
	method.MarkUsed()
	a.writer.WriteInstruction(writer.InsCaptureMethod, writer.Instruction(method.VTI()))
	a.appendBuffer(buf)

	ctx := typesystem.NewTypeContext(recvType).WithFunction(method)
	params := make([]typesystem.Type, len(method.Parameters))
	for i, p := range method.Parameters {
		params[i] = p.Type.ResolveOn(ctx, true)
	}
	return typesystem.NewCallableType(method.ReturnType.ResolveOn(ctx, true), params), nil
}

// parseCallableInvocation compiles 🍭 callable arguments.
func (a *FunctionAnalyser) parseCallableInvocation(tok token.Token) (typesystem.Type, error) {
	a.writer.WriteInstruction(writer.InsExecuteCallable)
	t, err := a.parseExpression(NoExpectation())
	if err != nil {
		return typesystem.Type{}, err
	}
	if t.Kind() != typesystem.TypeCallable {
		return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrT001, tok.Position,
			"🍭 requires a callable, got %s", t.String())
	}
	for _, paramType := range t.CallableArguments() {
		if _, err := a.parseExpression(Expect(paramType)); err != nil {
			return typesystem.Type{}, err
		}
	}
	return t.CallableReturn(), nil
}
