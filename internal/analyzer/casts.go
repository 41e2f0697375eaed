package analyzer

import (
	"github.com/funvibe/emojc/internal/diagnostics"
	"github.com/funvibe/emojc/internal/token"
	"github.com/funvibe/emojc/internal/typesystem"
	"github.com/funvibe/emojc/internal/writer"
)

// parseCast compiles 🔲 expr Type. A cast from a class to a class it is
// not related to by inheritance is rejected at compile time; casts to
// protocols, value types and enums are not checked for relatedness. Casts
// to a type the value already has warn. The result is an optional of the
// target since the cast may fail at runtime.
func (a *FunctionAnalyser) parseCast(tok token.Token) (typesystem.Type, error) {
	opcode := a.writer.WriteInstructionPlaceholder()
	operand := a.writer.WriteInstructionPlaceholder()

	valueType, err := a.parseExpression(Expect(typesystem.Something))
	if err != nil {
		return typesystem.Type{}, err
	}

	tp := a.typeParser(nil)
	target, err := tp.ParseType(a.typeDynamism())
	if err != nil {
		return typesystem.Type{}, err
	}
	pos := tok.Position

	if valueType.CopyWithoutOptional().CompatibleTo(target, a.typeCtx, nil) {
		a.warn(diagnostics.NewWarning(diagnostics.WarnW002, pos,
			"a value of type %s is always a %s; the cast is superfluous", valueType.String(), target.String()))
	}

	switch target.Kind() {
	case typesystem.TypeClass:
		if valueType.Kind() == typesystem.TypeClass &&
			!target.Class().InheritsFrom(valueType.Class()) &&
			!valueType.Class().InheritsFrom(target.Class()) {
			return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrT002, pos,
				"cast from %s to the unrelated class %s can never succeed", valueType.String(), target.String())
		}
		opcode.Write(writer.InsSafeCastToClass)
		operand.Write(writer.Instruction(target.Class().Index()))

	case typesystem.TypeProtocol:
		opcode.Write(writer.InsSafeCastToProtocol)
		operand.Write(writer.Instruction(target.Protocol().Index()))

	case typesystem.TypeValueType:
		opcode.Write(writer.InsCastToValueType)
		operand.Write(writer.Instruction(a.registry.BoxIdentifierFor(target)))

	case typesystem.TypeEnum:
		opcode.Write(writer.InsCastToEnum)
		operand.Write(writer.Instruction(a.registry.BoxIdentifierFor(target)))

	default:
		return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrT002, pos,
			"cannot cast to %s", target.String())
	}
	return target.Optionalized(), nil
}

// parseInstantiation compiles 🔷 Type initializerName arguments: enum value
// load, value-type initializer call or class object allocation.
func (a *FunctionAnalyser) parseInstantiation(tok token.Token, expectation TypeExpectation) (typesystem.Type, error) {
	tp := a.typeParser(expectation.typ)
	t, err := tp.ParseType(a.typeDynamism())
	if err != nil {
		return typesystem.Type{}, err
	}
	dynamic := t.Kind() == typesystem.TypeSelf

	switch {
	case t.Kind() == typesystem.TypeEnum:
		valueTok, err := a.stream.ConsumeToken(token.Identifier, token.Variable)
		if err != nil {
			return typesystem.Type{}, diagnostics.Wrap(tok.Position, err)
		}
		value, ok := t.Enum().Value(valueTok.Value)
		if !ok {
			return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrN005, valueTok.Position,
				"%s has no value %s", t.String(), valueTok.Value)
		}
		a.writer.WriteInstruction(writer.InsGet32Integer, writer.Instruction(value.Value))
		return t, nil

	case t.Kind() == typesystem.TypeValueType:
		nameTok, err := a.stream.ConsumeToken(token.Identifier, token.Variable)
		if err != nil {
			return typesystem.Type{}, diagnostics.Wrap(tok.Position, err)
		}
		init := t.ValueType().LookupInitializer(nameTok.Value)
		if init == nil {
			return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrN005, nameTok.Position,
				"%s has no initializer %s", t.String(), nameTok.Value)
		}
		init.MarkUsed()
		a.writer.WriteInstruction(writer.InsInitVT, writer.Instruction(init.VTI()))
		ctx := typesystem.NewTypeContext(t).WithFunction(init)
		if _, err := a.parseCallArguments(init, ctx, nameTok.Position); err != nil {
			return typesystem.Type{}, err
		}
		return instantiationResult(t, init), nil

	case t.Kind() == typesystem.TypeClass || dynamic:
		instanceType := t
		var class *typesystem.Class
		if dynamic {
			instanceType = a.typeCtx.CalleeType
			if instanceType.Kind() != typesystem.TypeClass {
				return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrT001, tok.Position,
					"🔷🐕 requires a class context")
			}
			class = instanceType.Class()
		} else {
			class = t.Class()
		}

		nameTok, err := a.stream.ConsumeToken(token.Identifier, token.Variable)
		if err != nil {
			return typesystem.Type{}, diagnostics.Wrap(tok.Position, err)
		}
		init := class.LookupInitializerDeep(nameTok.Value)
		if init == nil {
			return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrN005, nameTok.Position,
				"%s has no initializer %s", class.Name(), nameTok.Value)
		}
		if dynamic && !init.Required {
			return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrI006, nameTok.Position,
				"a class initialized through 🐕 must use a 📌 initializer; %s is not 📌", init.String())
		}
		init.MarkUsed()
		a.writer.WriteInstruction(writer.InsNewObject, writer.Instruction(class.Index()), writer.Instruction(init.VTI()))
		if dynamic {
			a.writer.WriteInstruction(writer.InsGetClassFromInstance, writer.InsGetThis)
		}
		ctx := typesystem.NewTypeContext(instanceType).WithFunction(init)
		if _, err := a.parseCallArguments(init, ctx, nameTok.Position); err != nil {
			return typesystem.Type{}, err
		}
		if dynamic {
			return typesystem.NewSelfType().ResolveOn(a.typeCtx, true), nil
		}
		return instantiationResult(instanceType, init), nil
	}

	return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrT001, tok.Position,
		"%s cannot be instantiated", t.String())
}

// instantiationResult wraps the instance in a 🚨 type when the initializer
// may fail.
func instantiationResult(t typesystem.Type, init *typesystem.Function) typesystem.Type {
	if init.ErrorProne && init.ErrorEnum.Kind() == typesystem.TypeEnum {
		return typesystem.NewErrorType(init.ErrorEnum.Enum(), t)
	}
	return t
}
