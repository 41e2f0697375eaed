package analyzer

import (
	"strconv"

	"github.com/funvibe/emojc/internal/diagnostics"
	"github.com/funvibe/emojc/internal/parser"
	"github.com/funvibe/emojc/internal/scoper"
	"github.com/funvibe/emojc/internal/token"
	"github.com/funvibe/emojc/internal/typesystem"
	"github.com/funvibe/emojc/internal/writer"
)

// parseExpression compiles one expression. The expectation is threaded into
// the sub-parse; after the raw result type is known the boxing bridge
// inserts whatever storage adaptation the expectation demands.
func (a *FunctionAnalyser) parseExpression(expectation TypeExpectation) (typesystem.Type, error) {
	point := a.writer.GetInsertionPoint()
	pos := a.stream.Position()
	t, err := a.parseExpressionRaw(expectation)
	if err != nil {
		return typesystem.Type{}, err
	}
	return a.bridge(t, expectation, point, pos)
}

func (a *FunctionAnalyser) parseExpressionRaw(expectation TypeExpectation) (typesystem.Type, error) {
	tok, err := a.stream.ConsumeToken()
	if err != nil {
		return typesystem.Type{}, diagnostics.Wrap(a.stream.Position(), err)
	}

	switch tok.Type {
	case token.Integer:
		return a.parseIntegerLiteral(tok, expectation)
	case token.Double:
		return a.parseDoubleLiteral(tok)
	case token.String:
		a.writer.WriteInstruction(writer.InsGetStringPool, writer.Instruction(a.registry.InternString(tok.Value)))
		return a.builtins.String, nil
	case token.Symbol:
		a.writer.WriteInstruction(writer.InsGetSymbol, writer.Instruction(tok.Rune()))
		return a.builtins.Symbol, nil
	case token.BooleanTrue:
		a.writer.WriteInstruction(writer.InsGetTrue)
		return a.builtins.Boolean, nil
	case token.BooleanFalse:
		a.writer.WriteInstruction(writer.InsGetFalse)
		return a.builtins.Boolean, nil
	case token.Variable:
		return a.parseVariableRead(tok)
	case token.Identifier:
		return a.parseIdentifierExpression(tok, expectation)
	}
	return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrL001, tok.Position,
		"unexpected %s in expression", tok.Type)
}

// parseIntegerLiteral emits the 32- or 64-bit load depending on range, or a
// double load when a double is expected.
func (a *FunctionAnalyser) parseIntegerLiteral(tok token.Token, expectation TypeExpectation) (typesystem.Type, error) {
	value, err := strconv.ParseInt(tok.Value, 0, 64)
	if err != nil {
		return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrL001, tok.Position,
			"invalid integer literal %q", tok.Value)
	}
	if expectation.typ != nil && expectation.typ.IdenticalTo(a.builtins.Double, a.typeCtx, nil) {
		a.writer.WriteInstruction(writer.InsGetDouble)
		a.writer.WriteDoubleCoin(float64(value))
		return a.builtins.Double, nil
	}
	if value >= -2147483648 && value <= 2147483647 {
		a.writer.WriteInstruction(writer.InsGet32Integer, writer.Instruction(int32(value)))
	} else {
		a.writer.WriteInstruction(writer.InsGet64Integer,
			writer.Instruction(uint64(value)>>32), writer.Instruction(uint64(value)&0xFFFFFFFF))
	}
	return a.builtins.Integer, nil
}

func (a *FunctionAnalyser) parseDoubleLiteral(tok token.Token) (typesystem.Type, error) {
	value, err := strconv.ParseFloat(tok.Value, 64)
	if err != nil {
		return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrL001, tok.Position,
			"invalid double literal %q", tok.Value)
	}
	a.writer.WriteInstruction(writer.InsGetDouble)
	a.writer.WriteDoubleCoin(value)
	return a.builtins.Double, nil
}

// parseVariableRead resolves a name through the scopes and emits the copy
// instruction for its storage location.
func (a *FunctionAnalyser) parseVariableRead(tok token.Token) (typesystem.Type, error) {
	resolved, err := a.scoper.GetVariable(tok.Value, tok.Position)
	if err != nil {
		return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrN002, tok.Position,
			"could not find variable %s", tok.Value)
	}
	v := resolved.Variable
	a.lastReadVariable = v

	mustBeInitialized := !resolved.InInstanceScope || a.function.Kind.IsInitializer()
	if mustBeInitialized && !a.paths.HasCertainly(scoper.VariableInit(resolved.InInstanceScope, v.ID())) {
		return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrI001, tok.Position,
			"variable %s may not be initialized here", v.Name())
	}

	size := v.Type().Size()
	switch {
	case !resolved.InInstanceScope && size == 1:
		a.writer.WriteInstruction(writer.InsCopySingleStack, writer.Instruction(v.ID()))
	case !resolved.InInstanceScope:
		a.writer.WriteInstruction(writer.InsCopyWithSizeStack, writer.Instruction(v.ID()), writer.Instruction(size))
	case a.function.Kind == typesystem.FunctionValueTypeMethod || a.function.Kind == typesystem.FunctionValueTypeInitializer:
		if size == 1 {
			a.writer.WriteInstruction(writer.InsCopySingleVT, writer.Instruction(v.ID()))
		} else {
			a.writer.WriteInstruction(writer.InsCopyWithSizeVT, writer.Instruction(v.ID()), writer.Instruction(size))
		}
	default:
		if size == 1 {
			a.writer.WriteInstruction(writer.InsCopySingleObject, writer.Instruction(v.ID()))
		} else {
			a.writer.WriteInstruction(writer.InsCopyWithSizeObject, writer.Instruction(v.ID()), writer.Instruction(size))
		}
	}
	return v.Type(), nil
}

// parseIdentifierExpression dispatches on the leading emoji of an
// expression.
func (a *FunctionAnalyser) parseIdentifierExpression(tok token.Token, expectation TypeExpectation) (typesystem.Type, error) {
	switch tok.Rune() {
	case parser.SigilListLiteral:
		return a.parseListLiteral(tok, expectation)
	case parser.SigilDictLiteral:
		return a.parseDictionaryLiteral(tok, expectation)
	case parser.SigilConcatLiteral:
		return a.parseConcatenation(tok)
	case parser.SigilRangeLiteral:
		return a.parseRangeLiteral(false)
	case parser.SigilRangeStepLiteral:
		return a.parseRangeLiteral(true)
	case parser.SigilThis:
		return a.parseThis(tok)
	case parser.SigilUnwrap:
		return a.parseUnwrap(tok)
	case parser.SigilErrorExtract:
		return a.parseErrorExtract(tok)
	case parser.SigilIsNothingness:
		return a.parseIsNothingness(tok)
	case parser.SigilIsError:
		return a.parseIsError(tok)
	case parser.SigilIdentityCheck:
		return a.parseIdentityCheck(tok)
	case parser.SigilCastClass:
		return a.parseCast(tok)
	case parser.SigilInstantiate:
		return a.parseInstantiation(tok, expectation)
	case parser.SigilTypeMethodCall:
		return a.parseTypeMethodCall(tok)
	case parser.SigilSuperCall:
		return a.parseSuperCall(tok)
	case parser.SigilMethodCapture:
		return a.parseMethodCapture(tok)
	case parser.SigilCallableCall:
		return a.parseCallableInvocation(tok)
	case parser.BlockOpen:
		return a.parseClosure(tok, expectation)
	}
	return a.parseMethodCall(tok)
}

func (a *FunctionAnalyser) parseThis(tok token.Token) (typesystem.Type, error) {
	if a.function.Owner == nil {
		return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrN002, tok.Position,
			"🐕 cannot be used in this context")
	}
	if err := a.selfUsable(tok.Position); err != nil {
		return typesystem.Type{}, err
	}
	a.usedSelf = true
	a.paths.RecordIncident(scoper.UsedSelf())
	a.writer.WriteInstruction(writer.InsGetThis)
	return a.typeCtx.CalleeType, nil
}

func (a *FunctionAnalyser) parseUnwrap(tok token.Token) (typesystem.Type, error) {
	opcode := a.writer.WriteInstructionPlaceholder()
	t, err := a.parseExpression(NoExpectation())
	if err != nil {
		return typesystem.Type{}, err
	}
	if !t.Optional() {
		return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrT001, tok.Position,
			"🍺 requires an optional, got %s", t.String())
	}
	if t.StorageType() == typesystem.StorageBox {
		opcode.Write(writer.InsUnwrapBoxOptional)
	} else {
		opcode.Write(writer.InsUnwrapSimpleOptional)
	}
	return t.CopyWithoutOptional(), nil
}

func (a *FunctionAnalyser) parseErrorExtract(tok token.Token) (typesystem.Type, error) {
	a.writer.WriteInstruction(writer.InsErrorCheckControl)
	t, err := a.parseExpression(NoExpectation())
	if err != nil {
		return typesystem.Type{}, err
	}
	if t.Kind() != typesystem.TypeTypeError {
		return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrT001, tok.Position,
			"🍻 requires a 🚨 value, got %s", t.String())
	}
	return t.ErrorWrapped(), nil
}

func (a *FunctionAnalyser) parseIsNothingness(tok token.Token) (typesystem.Type, error) {
	a.writer.WriteInstruction(writer.InsIsNothingness)
	t, err := a.parseExpression(NoExpectation())
	if err != nil {
		return typesystem.Type{}, err
	}
	if !t.Optional() && t.Kind() != typesystem.TypeNothingness {
		return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrT001, tok.Position,
			"☁️ requires an optional, got %s", t.String())
	}
	return a.builtins.Boolean, nil
}

func (a *FunctionAnalyser) parseIsError(tok token.Token) (typesystem.Type, error) {
	a.writer.WriteInstruction(writer.InsIsError)
	t, err := a.parseExpression(NoExpectation())
	if err != nil {
		return typesystem.Type{}, err
	}
	if t.Kind() != typesystem.TypeTypeError {
		return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrT001, tok.Position,
			"⚡️ requires a 🚨 value, got %s", t.String())
	}
	return a.builtins.Boolean, nil
}

func (a *FunctionAnalyser) parseIdentityCheck(tok token.Token) (typesystem.Type, error) {
	a.writer.WriteInstruction(writer.InsSameObject)
	if _, err := a.parseExpression(Expect(typesystem.Someobject)); err != nil {
		return typesystem.Type{}, err
	}
	if _, err := a.parseExpression(Expect(typesystem.Someobject)); err != nil {
		return typesystem.Type{}, err
	}
	return a.builtins.Boolean, nil
}
