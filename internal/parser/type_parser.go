package parser

import (
	"github.com/funvibe/emojc/internal/diagnostics"
	"github.com/funvibe/emojc/internal/packages"
	"github.com/funvibe/emojc/internal/token"
	"github.com/funvibe/emojc/internal/typesystem"
)

// TypeDynamism controls which symbolic types a textual type form may use.
type TypeDynamism int

const (
	NoDynamism TypeDynamism = 0
	// AllowGenericVariables permits generic parameter names of the
	// enclosing definition and function.
	AllowGenericVariables TypeDynamism = 1 << iota
	// AllowSelf permits 🐕.
	AllowSelf
)

// TypeParser parses textual type forms from the token stream.
type TypeParser struct {
	stream *token.Stream
	pkg    *packages.Package

	// typeDef supplies the generic parameter names in scope, nil outside a
	// definition body.
	typeDef *typesystem.TypeDef
	// function supplies local generic parameter names, nil outside a
	// function.
	function *typesystem.Function

	// expectation backs the ● marker; nil means no expectation.
	expectation *typesystem.Type

	// constraintPosition is set while parsing a generic constraint, the
	// only position where a protocol referencing 🐕 may appear.
	constraintPosition bool
}

func NewTypeParser(stream *token.Stream, pkg *packages.Package) *TypeParser {
	return &TypeParser{stream: stream, pkg: pkg}
}

func (p *TypeParser) SetTypeDef(d *typesystem.TypeDef)        { p.typeDef = d }
func (p *TypeParser) SetFunction(f *typesystem.Function)      { p.function = f }
func (p *TypeParser) SetExpectation(t *typesystem.Type)       { p.expectation = t }

// ParseType parses one type form.
func (p *TypeParser) ParseType(dynamism TypeDynamism) (typesystem.Type, error) {
	pos := p.stream.Position()
	optional := p.stream.ConsumeTokenIf(SigilOptional)

	if p.stream.ConsumeTokenIf(SigilMeta) {
		inner, err := p.ParseType(dynamism)
		if err != nil {
			return typesystem.Type{}, err
		}
		t := inner.MetaType()
		if optional {
			t = t.Optionalized()
		}
		return t, nil
	}

	if p.stream.ConsumeTokenIf(SigilInference) {
		if p.expectation == nil {
			return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrT006, pos,
				"cannot infer type: no expectation available here")
		}
		t := *p.expectation
		if optional {
			t = t.Optionalized()
		}
		return t, nil
	}

	if p.stream.ConsumeTokenIf(SigilSelf) {
		if dynamism&AllowSelf == 0 {
			return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrT007, pos,
				"🐕 is not allowed in this context")
		}
		t := typesystem.NewSelfType()
		if optional {
			t = t.Optionalized()
		}
		return t, nil
	}

	if p.stream.ConsumeTokenIf(SigilSomething) {
		return withOptional(typesystem.Something, optional), nil
	}
	if p.stream.ConsumeTokenIf(SigilSomeobject) {
		return withOptional(typesystem.Someobject, optional), nil
	}
	if p.stream.ConsumeTokenIf(SigilNothingness) {
		return withOptional(typesystem.Nothingness, optional), nil
	}

	if p.stream.ConsumeTokenIf(SigilCanThrow) {
		return p.parseErrorType(dynamism, optional, pos)
	}
	if p.stream.ConsumeTokenIf(BlockOpen) {
		return p.parseCallableType(dynamism, optional)
	}
	if p.stream.ConsumeTokenIf(SigilMultiProtocol) {
		return p.parseMultiProtocol(dynamism, optional, pos)
	}

	namespace := packages.GlobalNamespace
	if p.stream.ConsumeTokenIf(SigilNamespace) {
		nsTok, err := p.stream.ConsumeToken(token.Identifier)
		if err != nil {
			return typesystem.Type{}, diagnostics.Wrap(pos, err)
		}
		namespace = nsTok.Value
	}

	tok, err := p.stream.ConsumeToken()
	if err != nil {
		return typesystem.Type{}, diagnostics.Wrap(pos, err)
	}

	if tok.Type == token.Variable {
		return p.parseGenericVariableName(tok, dynamism, optional)
	}
	if tok.Type != token.Identifier {
		return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrL001, tok.Position,
			"expected a type but found %s", tok.Type)
	}

	t, err := p.pkg.FetchRawType(tok.Value, namespace, optional, tok.Position)
	if err != nil {
		return typesystem.Type{}, err
	}

	t, err = p.parseGenericArguments(t, dynamism, tok.Position)
	if err != nil {
		return typesystem.Type{}, err
	}

	if t.Kind() == typesystem.TypeProtocol && t.Protocol().UsesSelf() && !p.constraintPosition {
		return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrT007, tok.Position,
			"protocol %s references 🐕 and may only be used as a generic constraint", t.Protocol().Name())
	}

	return t, nil
}

// ParseConstraint parses a generic constraint, the one position where
// Self-referencing protocols are allowed.
func (p *TypeParser) ParseConstraint(dynamism TypeDynamism) (typesystem.Type, error) {
	p.constraintPosition = true
	defer func() { p.constraintPosition = false }()
	return p.ParseType(dynamism)
}

func withOptional(t typesystem.Type, optional bool) typesystem.Type {
	if optional {
		return t.Optionalized()
	}
	return t
}

func (p *TypeParser) parseErrorType(dynamism TypeDynamism, optional bool, pos token.SourcePosition) (typesystem.Type, error) {
	enumType, err := p.ParseType(dynamism)
	if err != nil {
		return typesystem.Type{}, err
	}
	if enumType.Kind() != typesystem.TypeEnum {
		return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrT001, pos,
			"🚨 requires an enum as error type, got %s", enumType.String())
	}
	wrapped, err := p.ParseType(dynamism)
	if err != nil {
		return typesystem.Type{}, err
	}
	return withOptional(typesystem.NewErrorType(enumType.Enum(), wrapped), optional), nil
}

// parseCallableType parses 🍇 parameter types, an optional ➡ return type
// and the closing 🍉.
func (p *TypeParser) parseCallableType(dynamism TypeDynamism, optional bool) (typesystem.Type, error) {
	var params []typesystem.Type
	returnType := typesystem.Nothingness
	for {
		if p.stream.ConsumeTokenIf(BlockClose) {
			break
		}
		if p.stream.ConsumeTokenIf(SigilReturnArrow) {
			ret, err := p.ParseType(dynamism)
			if err != nil {
				return typesystem.Type{}, err
			}
			returnType = ret
			if _, err := p.stream.RequireIdentifier(BlockClose); err != nil {
				return typesystem.Type{}, diagnostics.Wrap(p.stream.Position(), err)
			}
			break
		}
		param, err := p.ParseType(dynamism)
		if err != nil {
			return typesystem.Type{}, err
		}
		params = append(params, param)
	}
	return withOptional(typesystem.NewCallableType(returnType, params), optional), nil
}

func (p *TypeParser) parseMultiProtocol(dynamism TypeDynamism, optional bool, pos token.SourcePosition) (typesystem.Type, error) {
	var protos []typesystem.Type
	for !p.stream.ConsumeTokenIf(SigilMultiProtocol) {
		t, err := p.ParseType(dynamism)
		if err != nil {
			return typesystem.Type{}, err
		}
		if t.Kind() != typesystem.TypeProtocol {
			return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrT001, pos,
				"🍱 may only contain protocols, got %s", t.String())
		}
		protos = append(protos, t)
	}
	if len(protos) == 0 {
		return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrT001, pos, "🍱 requires at least one protocol")
	}
	return typesystem.NewMultiProtocolType(protos, optional), nil
}

func (p *TypeParser) parseGenericVariableName(tok token.Token, dynamism TypeDynamism, optional bool) (typesystem.Type, error) {
	if dynamism&AllowGenericVariables == 0 {
		return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrN001, tok.Position,
			"generic variables are not allowed in this context")
	}
	if p.function != nil {
		for i, name := range p.function.GenericParameterNames {
			if name == tok.Value {
				return withOptional(typesystem.NewLocalGenericVariable(i, p.function), optional), nil
			}
		}
	}
	if p.typeDef != nil {
		if index, ok := p.typeDef.GenericParameterIndex(tok.Value); ok {
			return withOptional(typesystem.NewGenericVariable(index, p.typeDef), optional), nil
		}
	}
	return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrN001, tok.Position,
		"could not find type %s", tok.Value)
}

// parseGenericArguments parses 🐚-introduced arguments, bounds-checks the
// count against the definition and verifies each argument satisfies its
// constraint.
func (p *TypeParser) parseGenericArguments(t typesystem.Type, dynamism TypeDynamism, pos token.SourcePosition) (typesystem.Type, error) {
	def := t.TypeDefinition()
	if def == nil {
		if p.stream.NextTokenIs(SigilGenerics) {
			return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrT005, pos,
				"%s does not take generic arguments", t.String())
		}
		return t, nil
	}
	d := def.Def()

	var supplied []typesystem.Type
	for p.stream.ConsumeTokenIf(SigilGenerics) {
		arg, err := p.ParseType(dynamism)
		if err != nil {
			return typesystem.Type{}, err
		}
		supplied = append(supplied, arg)
		if len(supplied) > d.OwnGenericParameterCount() {
			return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrT005, pos,
				"too many generic arguments for %s: expected %d", def.Name(), d.OwnGenericParameterCount())
		}
	}
	if len(supplied) == 0 && d.OwnGenericParameterCount() == 0 {
		return t, nil
	}
	if len(supplied) != d.OwnGenericParameterCount() {
		return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrT005, pos,
			"%s requires %d generic arguments, %d were supplied",
			def.Name(), d.OwnGenericParameterCount(), len(supplied))
	}

	args := make([]typesystem.Type, 0, d.GenericArgumentCount())
	args = append(args, d.SuperGenericArguments()...)
	args = append(args, supplied...)

	rebuilt := rebuildWithArguments(t, args)
	ctx := typesystem.NewTypeContext(rebuilt)
	for i, arg := range supplied {
		constraint := d.ConstraintForIndex(d.GenericArgumentCount() - d.OwnGenericParameterCount() + i).ResolveOn(ctx, false)
		if !arg.CompatibleTo(constraint, ctx, nil) {
			return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrT004, pos,
				"generic argument %s is not compatible to the constraint %s", arg.String(), constraint.String())
		}
	}
	return rebuilt, nil
}

func rebuildWithArguments(t typesystem.Type, args []typesystem.Type) typesystem.Type {
	switch t.Kind() {
	case typesystem.TypeClass:
		return withOptional(typesystem.NewClassType(t.Class(), args, false), t.Optional())
	case typesystem.TypeValueType:
		return withOptional(typesystem.NewValueTypeType(t.ValueType(), args, false), t.Optional())
	case typesystem.TypeProtocol:
		return withOptional(typesystem.NewProtocolType(t.Protocol(), args, false), t.Optional())
	}
	return t
}
