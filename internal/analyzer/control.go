package analyzer

import (
	"github.com/funvibe/emojc/internal/diagnostics"
	"github.com/funvibe/emojc/internal/packages"
	"github.com/funvibe/emojc/internal/parser"
	"github.com/funvibe/emojc/internal/scoper"
	"github.com/funvibe/emojc/internal/token"
	"github.com/funvibe/emojc/internal/typesystem"
	"github.com/funvibe/emojc/internal/writer"
)

// parseCondition compiles a condition expecting 👌. A condition may be a
// conditional binding 🍦 name expr, which unwraps an optional into a fresh
// variable visible in the then-branch's scope.
func (a *FunctionAnalyser) parseCondition() error {
	if a.stream.ConsumeTokenIf(parser.SigilFrozenDeclaration) {
		nameTok, err := a.stream.ConsumeToken(token.Variable)
		if err != nil {
			return diagnostics.Wrap(a.stream.Position(), err)
		}
		a.writer.WriteInstruction(writer.InsConditionalProduce)
		idPlaceholder := a.writer.WriteInstructionPlaceholder()
		t, err := a.parseExpression(NoExpectation())
		if err != nil {
			return err
		}
		if !t.Optional() {
			return diagnostics.NewError(diagnostics.ErrT001, nameTok.Position,
				"conditional binding requires an optional, got %s", t.String())
		}
		// The variable lives in the branch scope pushed by the caller and
		// holds the unwrapped value.
		v, err := a.scoper.CurrentScope().DeclareVariable(nameTok.Value, t.CopyWithoutOptional(), true, nameTok.Position)
		if err != nil {
			return diagnostics.NewError(diagnostics.ErrN003, nameTok.Position, "%s", err.Error())
		}
		idPlaceholder.Write(writer.Instruction(v.ID()))
		a.paths.RecordIncident(scoper.VariableInit(false, v.ID()))
		return nil
	}
	_, err := a.parseExpression(Expect(a.builtins.Boolean))
	return err
}

// parseIf compiles 🍊 with any number of 🍋 branches and an optional 🍓.
// Branch bodies are mutually exclusive paths; without 🍓 none may run.
func (a *FunctionAnalyser) parseIf() error {
	a.stream.ConsumeToken()
	a.writer.WriteInstruction(writer.InsIf)
	total := a.writer.WriteInstructionsCountPlaceholderCoin()

	hasElse := false

	// The condition's binding, if any, belongs to the branch scope.
	a.scoper.PushScope()
	a.paths.BeginBranch()
	if err := a.parseCondition(); err != nil {
		return err
	}
	branchLen := a.writer.WriteInstructionsCountPlaceholderCoin()
	if err := a.parseBlockIntoCurrentScope(); err != nil {
		return err
	}
	branchLen.Commit()
	a.paths.EndBranch()
	a.errors = append(a.errors, a.popScopeChecked()...)

	for {
		if a.stream.ConsumeTokenIf(parser.SigilElseIf) {
			a.scoper.PushScope()
			a.paths.BeginBranch()
			if err := a.parseCondition(); err != nil {
				return err
			}
			elseifLen := a.writer.WriteInstructionsCountPlaceholderCoin()
			if err := a.parseBlockIntoCurrentScope(); err != nil {
				return err
			}
			elseifLen.Commit()
			a.paths.EndBranch()
			a.errors = append(a.errors, a.popScopeChecked()...)
			continue
		}
		if a.stream.ConsumeTokenIf(parser.SigilElse) {
			hasElse = true
			a.writer.WriteInstruction(writer.InsGetTrue)
			elseLen := a.writer.WriteInstructionsCountPlaceholderCoin()
			a.scoper.PushScope()
			a.paths.BeginBranch()
			if err := a.parseBlockIntoCurrentScope(); err != nil {
				return err
			}
			elseLen.Commit()
			a.paths.EndBranch()
			a.errors = append(a.errors, a.popScopeChecked()...)
		}
		break
	}

	total.Commit()
	if hasElse {
		a.paths.EndMutualExclusiveBranches()
	} else {
		a.paths.EndUncertainBranches()
	}
	return nil
}

// parseBlockIntoCurrentScope compiles a 🍇…🍉 block without pushing a new
// scope; used where the caller already opened one for a condition binding.
func (a *FunctionAnalyser) parseBlockIntoCurrentScope() error {
	if _, err := a.stream.RequireIdentifier(parser.BlockOpen); err != nil {
		return diagnostics.Wrap(a.stream.Position(), err)
	}
	a.flowControlDepth++
	defer func() { a.flowControlDepth-- }()
	for !a.stream.ConsumeTokenIf(parser.BlockClose) {
		if !a.stream.More() {
			return diagnostics.NewError(diagnostics.ErrL004, a.stream.Position(), "expected 🍉 but found end of file")
		}
		if err := a.parseStatement(); err != nil {
			return err
		}
	}
	return nil
}

// parseWhile compiles 🔁 condition 🍇…🍉. The body may never run, so its
// incidents are only potential.
func (a *FunctionAnalyser) parseWhile() error {
	a.stream.ConsumeToken()
	a.writer.WriteInstruction(writer.InsRepeatWhile)
	a.scoper.PushScope()
	a.paths.BeginBranch()
	if err := a.parseCondition(); err != nil {
		return err
	}
	bodyLen := a.writer.WriteInstructionsCountPlaceholderCoin()
	if err := a.parseBlockIntoCurrentScope(); err != nil {
		return err
	}
	bodyLen.Commit()
	a.paths.EndBranch()
	a.errors = append(a.errors, a.popScopeChecked()...)
	a.paths.EndUncertainBranches()
	return nil
}

// parseForIn compiles 🔂 variable iterable 🍇…🍉. Lists and ranges compile
// to the specialized loops; any other type must conform to 🔂 and is
// iterated through the protocol's three methods.
func (a *FunctionAnalyser) parseForIn() error {
	a.stream.ConsumeToken()
	nameTok, err := a.stream.ConsumeToken(token.Variable)
	if err != nil {
		return diagnostics.Wrap(a.stream.Position(), err)
	}

	opcode := a.writer.WriteInstructionPlaceholder()
	variableID := a.writer.WriteInstructionPlaceholder()

	iterablePoint := a.writer.GetInsertionPoint()
	iterableType, err := a.parseExpression(NoExpectation())
	if err != nil {
		return err
	}

	a.scoper.PushScope()
	scope := a.scoper.CurrentScope()

	var elementType typesystem.Type
	switch {
	case iterableType.Kind() == typesystem.TypeClass && iterableType.Class() == a.builtins.ListClass:
		opcode.Write(writer.InsForInList)
		elementType = iterableType.GenericArguments()[0]

	case iterableType.Kind() == typesystem.TypeValueType && iterableType.ValueType() == a.builtins.RangeVT:
		opcode.Write(writer.InsForInRange)
		elementType = a.builtins.Integer

	default:
		conformsTo := typesystem.NewProtocolType(a.builtins.Enumerateable,
			[]typesystem.Type{typesystem.Something}, false)
		if !iterableType.CompatibleTo(conformsTo, a.typeCtx, nil) {
			a.scoper.PopScope(a.paths)
			return diagnostics.NewError(diagnostics.ErrT001, nameTok.Position,
				"%s is not a list, not a range and does not conform to 🔂", iterableType.String())
		}
		opcode.Write(writer.InsForeach)
		elementType = enumerateableElementType(iterableType, a.builtins)
		// The protocol loop keeps its iterator in an internal slot.
		iteratorID := scope.ReserveIDs(1)
		a.writer.WriteInstruction(writer.Instruction(iteratorID))
		if iterableType.StorageType() != typesystem.StorageBox {
			iterablePoint.Insert(writer.InsBox, writer.Instruction(a.registry.BoxIdentifierFor(iterableType)))
		}
	}

	v, derr := scope.DeclareVariable(nameTok.Value, elementType, true, nameTok.Position)
	if derr != nil {
		return diagnostics.NewError(diagnostics.ErrN003, nameTok.Position, "%s", derr.Error())
	}
	variableID.Write(writer.Instruction(v.ID()))

	a.paths.BeginBranch()
	a.paths.RecordIncident(scoper.VariableInit(false, v.ID()))
	bodyLen := a.writer.WriteInstructionsCountPlaceholderCoin()
	if err := a.parseBlockIntoCurrentScope(); err != nil {
		return err
	}
	bodyLen.Commit()
	a.paths.EndBranch()
	a.errors = append(a.errors, a.popScopeChecked()...)
	a.paths.EndUncertainBranches()
	return nil
}

// enumerateableElementType extracts the element type a conforming type
// yields, resolved against the iterated type.
func enumerateableElementType(t typesystem.Type, builtins *packages.Builtins) typesystem.Type {
	ctx := typesystem.NewTypeContext(t)
	if t.Kind() == typesystem.TypeProtocol && t.Protocol() == builtins.Enumerateable {
		return t.GenericArguments()[0]
	}
	def := t.TypeDefinition()
	if def == nil {
		return typesystem.Something
	}
	for _, proto := range def.Def().Protocols() {
		if proto.Protocol() == builtins.Enumerateable {
			return proto.GenericArguments()[0].ResolveOn(ctx, true)
		}
	}
	return typesystem.Something
}
