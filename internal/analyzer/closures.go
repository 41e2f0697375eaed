package analyzer

import (
	"github.com/funvibe/emojc/internal/diagnostics"
	"github.com/funvibe/emojc/internal/parser"
	"github.com/funvibe/emojc/internal/scoper"
	"github.com/funvibe/emojc/internal/token"
	"github.com/funvibe/emojc/internal/typesystem"
	"github.com/funvibe/emojc/internal/writer"
)

// parseClosure compiles a 🍇 parameter… [➡ type] statements 🍉 literal.
// The closure is a fresh anonymous function analysed with the current type
// context and a capturing scoper importing the enclosing locals by value.
func (a *FunctionAnalyser) parseClosure(tok token.Token, expectation TypeExpectation) (typesystem.Type, error) {
	f := &typesystem.Function{
		Name:       "🍇",
		Package:    a.pkg.Name(),
		Position:   tok.Position,
		Kind:       typesystem.FunctionPlain,
		ReturnType: typesystem.Nothingness,
		Owner:      a.function.Owner,
		OwningType: a.function.OwningType,
	}
	f.SetVTIProvider(&a.registry.PureFunctions)

	tp := a.typeParser(nil)
	for a.stream.NextTokenIsType(token.Variable) {
		paramTok, _ := a.stream.ConsumeToken()
		paramType, err := tp.ParseType(a.typeDynamism())
		if err != nil {
			return typesystem.Type{}, err
		}
		f.Parameters = append(f.Parameters, typesystem.Parameter{Name: paramTok.Value, Type: paramType})
	}
	if a.stream.ConsumeTokenIf(parser.SigilReturnArrow) {
		ret, err := tp.ParseType(a.typeDynamism())
		if err != nil {
			return typesystem.Type{}, err
		}
		f.ReturnType = ret
	}

	capturing := scoper.NewCapturingSemanticScoper(a.scoper, a.paths, true)
	f.Body = a.stream
	sub := newFunctionAnalyserWithScoper(f, a.pkg, a.builtins, capturing)
	sub.typeCtx = a.typeCtx

	if _, err := capturing.PushArgumentsScope(sub.paths, f.Parameters, tok.Position); err != nil {
		return typesystem.Type{}, err
	}
	for !sub.stream.ConsumeTokenIf(parser.BlockClose) {
		if !sub.stream.More() {
			return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrL004, sub.stream.Position(),
				"expected 🍉 but found end of file in closure")
		}
		if err := sub.parseStatement(); err != nil {
			return typesystem.Type{}, err
		}
	}
	if err := sub.checkFunctionEnd(); err != nil {
		return typesystem.Type{}, err
	}
	sub.errors = append(sub.errors, sub.popScopeChecked()...)
	a.errors = append(a.errors, sub.errors...)
	a.warnings = append(a.warnings, sub.warnings...)
	a.usedSelf = a.usedSelf || sub.usedSelf

	f.MarkUsed()
	a.registry.EnqueueFunction(f)

	captures := capturing.Captures()
	usedSelfFlag := writer.Instruction(0)
	if sub.usedSelf {
		usedSelfFlag = 1
	}
	a.writer.WriteInstruction(writer.InsClosure, writer.Instruction(f.VTI()),
		writer.Instruction(len(captures)), usedSelfFlag)
	for _, c := range captures {
		a.writer.WriteInstruction(writer.Instruction(c.SourceID),
			writer.Instruction(c.CaptureID), writer.Instruction(c.Type.Size()))
	}

	params := make([]typesystem.Type, len(f.Parameters))
	for i, p := range f.Parameters {
		params[i] = p.Type
	}
	return typesystem.NewCallableType(f.ReturnType, params), nil
}
