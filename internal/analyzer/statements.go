package analyzer

import (
	"github.com/funvibe/emojc/internal/diagnostics"
	"github.com/funvibe/emojc/internal/parser"
	"github.com/funvibe/emojc/internal/scoper"
	"github.com/funvibe/emojc/internal/token"
	"github.com/funvibe/emojc/internal/typesystem"
	"github.com/funvibe/emojc/internal/writer"
)

// parseStatement compiles one statement of the current block.
func (a *FunctionAnalyser) parseStatement() error {
	pos := a.stream.Position()
	if a.paths.HasCertainly(scoper.Returned()) {
		return diagnostics.NewError(diagnostics.ErrI005, pos, "dead code after a returning statement")
	}

	switch {
	case a.stream.ConsumeTokenIf(parser.SigilFrozenDeclaration):
		return a.parseFrozenDeclaration(pos)
	case a.stream.ConsumeTokenIf(parser.SigilVarDeclaration):
		return a.parseVarDeclaration()
	case a.stream.ConsumeTokenIf(parser.SigilAssignment):
		return a.parseAssignment(pos)
	case a.stream.ConsumeTokenIf(parser.SigilIncrement):
		return a.parseIncDec(writer.InsIncrement, pos)
	case a.stream.ConsumeTokenIf(parser.SigilDecrement):
		return a.parseIncDec(writer.InsDecrement, pos)
	case a.stream.NextTokenIs(parser.SigilIf):
		return a.parseIf()
	case a.stream.NextTokenIs(parser.SigilWhile):
		return a.parseWhile()
	case a.stream.NextTokenIs(parser.SigilForIn):
		return a.parseForIn()
	case a.stream.ConsumeTokenIf(parser.SigilReturn):
		return a.parseReturn(pos)
	case a.stream.NextTokenIs(parser.SigilThrow):
		return a.parseThrow()
	case a.stream.ConsumeTokenIf(parser.SigilSuperInitializer):
		return a.parseSuperInitializer(pos)
	}

	// expression statement
	_, err := a.parseExpression(NoExpectation())
	return err
}

func (a *FunctionAnalyser) parseFrozenDeclaration(pos token.SourcePosition) error {
	nameTok, err := a.stream.ConsumeToken(token.Variable)
	if err != nil {
		return diagnostics.Wrap(pos, err)
	}
	scope := a.scoper.CurrentScope()
	v, err := scope.DeclareVariable(nameTok.Value, typesystem.Something, true, nameTok.Position)
	if err != nil {
		return diagnostics.NewError(diagnostics.ErrN003, nameTok.Position, "%s", err.Error())
	}
	a.writer.WriteInstruction(writer.InsProduceWithStackDestination, writer.Instruction(v.ID()))
	t, err := a.parseExpression(NoExpectation())
	if err != nil {
		return err
	}
	v.SetType(t)
	a.paths.RecordIncident(scoper.VariableInit(false, v.ID()))
	return nil
}

func (a *FunctionAnalyser) parseVarDeclaration() error {
	nameTok, err := a.stream.ConsumeToken(token.Variable)
	if err != nil {
		return diagnostics.Wrap(a.stream.Position(), err)
	}
	tp := a.typeParser(nil)
	t, err := tp.ParseType(a.typeDynamism())
	if err != nil {
		return err
	}
	if _, err := a.scoper.CurrentScope().DeclareVariable(nameTok.Value, t, false, nameTok.Position); err != nil {
		return diagnostics.NewError(diagnostics.ErrN003, nameTok.Position, "%s", err.Error())
	}
	return nil
}

func (a *FunctionAnalyser) parseAssignment(pos token.SourcePosition) error {
	// 🍮 followed by an operator emoji is a compound assignment:
	// 🍮➕ x 5 adds 5 to x.
	if a.stream.NextTokenIsType(token.Identifier) {
		opTok, _ := a.stream.ConsumeToken()
		return a.parseCompoundAssignment(opTok)
	}

	nameTok, err := a.stream.ConsumeToken(token.Variable)
	if err != nil {
		return diagnostics.Wrap(pos, err)
	}

	resolved, rerr := a.scoper.GetVariable(nameTok.Value, nameTok.Position)
	if rerr != nil {
		// 🍮 onto an unknown name declares a fresh mutable variable.
		scope := a.scoper.CurrentScope()
		v, err := scope.DeclareVariable(nameTok.Value, typesystem.Something, false, nameTok.Position)
		if err != nil {
			return diagnostics.NewError(diagnostics.ErrN003, nameTok.Position, "%s", err.Error())
		}
		a.writer.WriteInstruction(writer.InsProduceWithStackDestination, writer.Instruction(v.ID()))
		t, err := a.parseExpression(NoExpectation())
		if err != nil {
			return err
		}
		v.SetType(t)
		if err := v.Mutate(nameTok.Position); err != nil {
			return diagnostics.NewError(diagnostics.ErrM002, nameTok.Position, "%s", err.Error())
		}
		a.paths.RecordIncident(scoper.VariableInit(false, v.ID()))
		return nil
	}

	v := resolved.Variable
	if resolved.InInstanceScope {
		if err := a.checkInstanceMutation(nameTok.Position); err != nil {
			return err
		}
	}
	if err := v.Mutate(nameTok.Position); err != nil {
		return diagnostics.NewError(diagnostics.ErrM002, nameTok.Position, "%s", err.Error())
	}

	a.writer.WriteInstruction(a.produceDestinationInstruction(resolved), writer.Instruction(v.ID()))
	if _, err := a.parseExpression(Expect(v.Type())); err != nil {
		return err
	}
	a.paths.RecordIncident(scoper.VariableInit(resolved.InInstanceScope, v.ID()))
	return nil
}

// parseCompoundAssignment compiles 🍮 op name expr as name = op name expr.
func (a *FunctionAnalyser) parseCompoundAssignment(opTok token.Token) error {
	nameTok, err := a.stream.ConsumeToken(token.Variable)
	if err != nil {
		return diagnostics.Wrap(opTok.Position, err)
	}
	resolved, err := a.scoper.GetVariable(nameTok.Value, nameTok.Position)
	if err != nil {
		return diagnostics.NewError(diagnostics.ErrN002, nameTok.Position,
			"could not find variable %s", nameTok.Value)
	}
	v := resolved.Variable
	if resolved.InInstanceScope {
		if err := a.checkInstanceMutation(nameTok.Position); err != nil {
			return err
		}
	}
	if err := v.Mutate(nameTok.Position); err != nil {
		return diagnostics.NewError(diagnostics.ErrM002, nameTok.Position, "%s", err.Error())
	}

	op, ok := primitiveOperator(opTok.Value, v.Type(), a.builtins)
	if !ok || op.unary {
		return diagnostics.NewError(diagnostics.ErrT001, opTok.Position,
			"%s is not a compound assignment operator for %s", opTok.Value, v.Type().String())
	}
	if !op.result.IdenticalTo(v.Type(), a.typeCtx, nil) {
		return diagnostics.NewError(diagnostics.ErrT001, opTok.Position,
			"%s applied to %s does not yield %s", opTok.Value, v.Name(), v.Type().String())
	}

	a.writer.WriteInstruction(a.produceDestinationInstruction(resolved), writer.Instruction(v.ID()))
	a.writer.WriteInstruction(op.instruction)
	if _, err := a.parseVariableRead(nameTok); err != nil {
		return err
	}
	if _, err := a.parseExpression(Expect(op.operand)); err != nil {
		return err
	}
	a.paths.RecordIncident(scoper.VariableInit(resolved.InInstanceScope, v.ID()))
	return nil
}

// checkInstanceMutation enforces the mutation discipline: value-type
// methods must be 💪 to assign instance variables; initializers may always
// assign; classes allow mutation unconditionally.
func (a *FunctionAnalyser) checkInstanceMutation(pos token.SourcePosition) error {
	switch a.function.Kind {
	case typesystem.FunctionValueTypeMethod:
		if !a.function.Mutating {
			return diagnostics.NewError(diagnostics.ErrM004, pos,
				"%s mutates its instance but was not declared 💪", a.function.String())
		}
	}
	return nil
}

// produceDestinationInstruction picks the destination family: stack for
// locals, object fields for class instances, value-type fields otherwise.
func (a *FunctionAnalyser) produceDestinationInstruction(resolved scoper.ResolvedVariable) writer.Instruction {
	if !resolved.InInstanceScope {
		return writer.InsProduceWithStackDestination
	}
	switch a.function.Kind {
	case typesystem.FunctionValueTypeMethod, typesystem.FunctionValueTypeInitializer:
		return writer.InsProduceWithVTDestination
	default:
		return writer.InsProduceWithObjectDestination
	}
}

func (a *FunctionAnalyser) parseIncDec(ins writer.Instruction, pos token.SourcePosition) error {
	nameTok, err := a.stream.ConsumeToken(token.Variable)
	if err != nil {
		return diagnostics.Wrap(pos, err)
	}
	resolved, err := a.scoper.GetVariable(nameTok.Value, nameTok.Position)
	if err != nil {
		return diagnostics.NewError(diagnostics.ErrN002, nameTok.Position, "%s", err.Error())
	}
	v := resolved.Variable
	if !v.Type().IdenticalTo(a.builtins.Integer, a.typeCtx, nil) {
		return diagnostics.NewError(diagnostics.ErrT001, nameTok.Position,
			"%s is of type %s; 🍫 and 🍳 require 🚂", v.Name(), v.Type().String())
	}
	if err := v.Mutate(nameTok.Position); err != nil {
		return diagnostics.NewError(diagnostics.ErrM002, nameTok.Position, "%s", err.Error())
	}
	a.writer.WriteInstruction(ins, writer.Instruction(v.ID()))
	return nil
}

func (a *FunctionAnalyser) parseReturn(pos token.SourcePosition) error {
	f := a.function
	if f.Kind.IsInitializer() {
		return diagnostics.NewError(diagnostics.ErrI003, pos,
			"initializers return implicitly; 🍎 is not allowed here")
	}
	a.writer.WriteInstruction(writer.InsReturn)
	if f.ReturnType.Kind() == typesystem.TypeNothingness {
		a.writer.WriteInstruction(writer.InsGetNothingness)
	} else {
		if _, err := a.parseExpression(Expect(f.ReturnType)); err != nil {
			return err
		}
	}
	a.paths.RecordIncident(scoper.Returned())
	return nil
}

// parseThrow compiles 🚨 expr, the explicit error-return form. Only
// error-prone initializers and functions returning 🚨 types may throw.
func (a *FunctionAnalyser) parseThrow() error {
	tok, _ := a.stream.ConsumeToken()
	f := a.function

	var enumType typesystem.Type
	switch {
	case f.Kind.IsInitializer() && f.ErrorProne:
		enumType = f.ErrorEnum
	case f.ReturnType.Kind() == typesystem.TypeTypeError:
		enumType = typesystem.NewEnumType(f.ReturnType.Enum(), false)
	default:
		return diagnostics.NewError(diagnostics.ErrT001, tok.Position,
			"%s cannot fail; 🚨 is not allowed here", f.String())
	}

	a.writer.WriteInstruction(writer.InsError)
	if _, err := a.parseExpression(Expect(enumType)); err != nil {
		return err
	}
	a.paths.RecordIncident(scoper.Returned())
	return nil
}

func (a *FunctionAnalyser) parseSuperInitializer(pos token.SourcePosition) error {
	if a.function.Kind != typesystem.FunctionObjectInitializer {
		return diagnostics.NewError(diagnostics.ErrI004, pos, "🐐 is only allowed in object initializers")
	}
	class := a.ownerClass()
	if class == nil || class.Superclass() == nil {
		return diagnostics.NewError(diagnostics.ErrI004, pos, "%s has no superclass", a.function.Owner.Name())
	}
	if a.flowControlDepth > 0 {
		return diagnostics.NewError(diagnostics.ErrI004, pos,
			"the superinitializer must be called unconditionally")
	}

	nameTok, err := a.stream.ConsumeToken(token.Identifier, token.Variable)
	if err != nil {
		return diagnostics.Wrap(pos, err)
	}
	super := class.Superclass()
	init := super.LookupInitializerDeep(nameTok.Value)
	if init == nil {
		return diagnostics.NewError(diagnostics.ErrN005, nameTok.Position,
			"%s has no initializer %s", super.Name(), nameTok.Value)
	}

	init.MarkUsed()
	a.writer.WriteInstruction(writer.InsSuperInitializer,
		writer.Instruction(super.Index()), writer.Instruction(init.VTI()))
	superCtx := typesystem.NewTypeContext(class.SuperType()).WithFunction(init)
	if _, err := a.parseCallArguments(init, superCtx, nameTok.Position); err != nil {
		return err
	}
	a.paths.RecordIncident(scoper.CalledSuperInitializer())
	return nil
}
