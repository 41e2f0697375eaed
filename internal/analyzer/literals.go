package analyzer

import (
	"github.com/funvibe/emojc/internal/diagnostics"
	"github.com/funvibe/emojc/internal/parser"
	"github.com/funvibe/emojc/internal/token"
	"github.com/funvibe/emojc/internal/typesystem"
	"github.com/funvibe/emojc/internal/writer"
)

// listLiteralElementExpectation extracts the element type when a list of T
// is expected.
func (a *FunctionAnalyser) listLiteralElementExpectation(expectation TypeExpectation) (typesystem.Type, bool) {
	if expectation.typ == nil {
		return typesystem.Type{}, false
	}
	t := *expectation.typ
	if t.Kind() == typesystem.TypeClass && t.Class() == a.builtins.ListClass {
		return t.GenericArguments()[0], true
	}
	return typesystem.Type{}, false
}

// parseListLiteral compiles 🍨 element… 🍆. With an expectation of 🍨🐚T
// every child parses expecting T; otherwise a common-type finder reconciles
// the children.
func (a *FunctionAnalyser) parseListLiteral(tok token.Token, expectation TypeExpectation) (typesystem.Type, error) {
	a.writer.WriteInstruction(writer.InsNewObject, writer.Instruction(a.builtins.ListClass.Index()))
	count := a.writer.WriteInstructionsCountPlaceholderCoin()

	elementExpectation, hasExpectation := a.listLiteralElementExpectation(expectation)
	var finder typesystem.CommonTypeFinder

	for !a.stream.ConsumeTokenIf(parser.SigilLiteralEnd) {
		if !a.stream.More() {
			return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrL004, tok.Position,
				"expected 🍆 but found end of file in list literal")
		}
		if hasExpectation {
			if _, err := a.parseExpression(Expect(elementExpectation)); err != nil {
				return typesystem.Type{}, err
			}
		} else {
			boxed, err := a.parseExpression(Expect(typesystem.Something))
			if err != nil {
				return typesystem.Type{}, err
			}
			finder.AddType(boxed.CopyWithoutOptional(), a.typeCtx)
		}
	}
	count.Commit()

	if hasExpectation {
		return a.builtins.ListOf(elementExpectation), nil
	}
	if finder.Ambiguous() {
		a.warn(diagnostics.NewWarning(diagnostics.WarnW004, tok.Position,
			"the element type of this list literal is ambiguous; annotate the declaration"))
	}
	return a.builtins.ListOf(finder.CommonType()), nil
}

// parseDictionaryLiteral compiles 🍯 (key value)… 🍆 with string keys.
func (a *FunctionAnalyser) parseDictionaryLiteral(tok token.Token, expectation TypeExpectation) (typesystem.Type, error) {
	a.writer.WriteInstruction(writer.InsNewObject, writer.Instruction(a.builtins.DictClass.Index()))
	count := a.writer.WriteInstructionsCountPlaceholderCoin()

	var valueExpectation typesystem.Type
	hasExpectation := false
	if expectation.typ != nil {
		t := *expectation.typ
		if t.Kind() == typesystem.TypeClass && t.Class() == a.builtins.DictClass {
			valueExpectation = t.GenericArguments()[0]
			hasExpectation = true
		}
	}
	var finder typesystem.CommonTypeFinder

	for !a.stream.ConsumeTokenIf(parser.SigilLiteralEnd) {
		if !a.stream.More() {
			return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrL004, tok.Position,
				"expected 🍆 but found end of file in dictionary literal")
		}
		if _, err := a.parseExpression(Expect(a.builtins.String)); err != nil {
			return typesystem.Type{}, err
		}
		if hasExpectation {
			if _, err := a.parseExpression(Expect(valueExpectation)); err != nil {
				return typesystem.Type{}, err
			}
		} else {
			boxed, err := a.parseExpression(Expect(typesystem.Something))
			if err != nil {
				return typesystem.Type{}, err
			}
			finder.AddType(boxed.CopyWithoutOptional(), a.typeCtx)
		}
	}
	count.Commit()

	if hasExpectation {
		return a.builtins.DictionaryOf(valueExpectation), nil
	}
	if finder.Ambiguous() {
		a.warn(diagnostics.NewWarning(diagnostics.WarnW004, tok.Position,
			"the value type of this dictionary literal is ambiguous; annotate the declaration"))
	}
	return a.builtins.DictionaryOf(finder.CommonType()), nil
}

// parseConcatenation compiles 🍪 expr… 🍆, the string building block.
func (a *FunctionAnalyser) parseConcatenation(tok token.Token) (typesystem.Type, error) {
	a.writer.WriteInstruction(writer.InsNewObject, writer.Instruction(a.builtins.String.Class().Index()))
	count := a.writer.WriteInstructionsCountPlaceholderCoin()
	for !a.stream.ConsumeTokenIf(parser.SigilLiteralEnd) {
		if !a.stream.More() {
			return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrL004, tok.Position,
				"expected 🍆 but found end of file in 🍪")
		}
		if _, err := a.parseExpression(Expect(a.builtins.String)); err != nil {
			return typesystem.Type{}, err
		}
	}
	count.Commit()
	return a.builtins.String, nil
}

// parseRangeLiteral compiles ⏩ start stop or ⏭ start stop step.
func (a *FunctionAnalyser) parseRangeLiteral(withStep bool) (typesystem.Type, error) {
	a.writer.WriteInstruction(writer.InsInitVT, writer.Instruction(a.builtins.RangeVT.Index()))
	if _, err := a.parseExpression(Expect(a.builtins.Integer)); err != nil {
		return typesystem.Type{}, err
	}
	if _, err := a.parseExpression(Expect(a.builtins.Integer)); err != nil {
		return typesystem.Type{}, err
	}
	if withStep {
		if _, err := a.parseExpression(Expect(a.builtins.Integer)); err != nil {
			return typesystem.Type{}, err
		}
	} else {
		a.writer.WriteInstruction(writer.InsGet32Integer, 1)
	}
	return a.builtins.Range, nil
}
