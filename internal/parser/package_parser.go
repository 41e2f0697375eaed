package parser

import (
	"github.com/funvibe/emojc/internal/config"
	"github.com/funvibe/emojc/internal/diagnostics"
	"github.com/funvibe/emojc/internal/packages"
	"github.com/funvibe/emojc/internal/token"
	"github.com/funvibe/emojc/internal/typesystem"
)

// ParsedPackage collects what the package parser produced, in declaration
// order, for the later pipeline stages.
type ParsedPackage struct {
	Classes    []*typesystem.Class
	ValueTypes []*typesystem.ValueType
	Enums      []*typesystem.Enum
	Protocols  []*typesystem.Protocol
	// Functions are all functions with bodies awaiting analysis, the 🏁
	// function included.
	Functions []*typesystem.Function
	// Start is the 🏁 function, nil if the package declares none.
	Start *typesystem.Function
}

// PackageParser parses the top-level declarations of a package's source
// files. An error in one declaration is recorded and parsing continues with
// the next.
type PackageParser struct {
	pkg    *packages.Package
	loader *packages.Loader
	stream *token.Stream

	result *ParsedPackage
	errors []*diagnostics.CompilerError
}

func NewPackageParser(pkg *packages.Package, loader *packages.Loader) *PackageParser {
	return &PackageParser{pkg: pkg, loader: loader, result: &ParsedPackage{}}
}

func (p *PackageParser) Errors() []*diagnostics.CompilerError { return p.errors }
func (p *PackageParser) Result() *ParsedPackage               { return p.result }

func (p *PackageParser) recordError(err error) {
	p.errors = append(p.errors, diagnostics.Wrap(p.stream.Position(), err))
}

// Parse consumes one file's token stream.
func (p *PackageParser) Parse(stream *token.Stream) {
	p.stream = stream
	for stream.More() {
		if err := p.parseTopLevel(); err != nil {
			p.recordError(err)
			p.skipToNextDeclaration()
		}
	}
}

// skipToNextDeclaration advances past the current declaration after an
// error so one malformed declaration never aborts the whole compile.
func (p *PackageParser) skipToNextDeclaration() {
	depth := 0
	for p.stream.More() {
		if p.stream.NextTokenIs(BlockOpen) {
			depth++
		} else if p.stream.NextTokenIs(BlockClose) {
			depth--
			if depth <= 0 {
				p.stream.ConsumeToken()
				return
			}
		} else if depth == 0 && p.nextIsDeclarationStart() {
			return
		}
		p.stream.ConsumeToken()
	}
}

func (p *PackageParser) nextIsDeclarationStart() bool {
	for _, sigil := range []rune{SigilClass, SigilValueType, SigilEnum, SigilProtocol, SigilStartFlag, SigilPackageImport} {
		if p.stream.NextTokenIs(sigil) {
			return true
		}
	}
	return false
}

type declarationAttributes struct {
	documentation string
	exported      bool
	final         bool
	deprecated    bool
}

func (p *PackageParser) parseAttributes() declarationAttributes {
	var attrs declarationAttributes
	for {
		switch {
		case p.stream.NextTokenIsType(token.DocumentationComment):
			tok, _ := p.stream.ConsumeToken()
			attrs.documentation = tok.Value
		case p.stream.ConsumeTokenIf(SigilExport):
			attrs.exported = true
		case p.stream.ConsumeTokenIf(SigilFinal):
			attrs.final = true
		case p.stream.ConsumeTokenIf(SigilDeprecated):
			attrs.deprecated = true
		default:
			return attrs
		}
	}
}

func (p *PackageParser) parseTopLevel() error {
	attrs := p.parseAttributes()

	switch {
	case p.stream.ConsumeTokenIf(SigilPackageImport):
		return p.parseImport()
	case p.stream.ConsumeTokenIf(SigilClass):
		return p.parseClass(attrs)
	case p.stream.ConsumeTokenIf(SigilValueType):
		return p.parseValueType(attrs)
	case p.stream.ConsumeTokenIf(SigilEnum):
		return p.parseEnum(attrs)
	case p.stream.ConsumeTokenIf(SigilProtocol):
		return p.parseProtocol(attrs)
	case p.stream.NextTokenIs(SigilStartFlag):
		return p.parseStartFlag()
	}

	tok, err := p.stream.ConsumeToken()
	if err != nil {
		return err
	}
	return diagnostics.NewError(diagnostics.ErrL001, tok.Position,
		"unexpected %s %q at top level", tok.Type, tok.Value)
}

func (p *PackageParser) parseImport() error {
	nameTok, err := p.stream.ConsumeToken(token.Variable)
	if err != nil {
		return err
	}
	namespace := packages.GlobalNamespace
	if p.stream.ConsumeTokenIf(SigilNamespace) {
		nsTok, err := p.stream.ConsumeToken(token.Identifier)
		if err != nil {
			return err
		}
		namespace = nsTok.Value
	}
	dep, ok := p.loader.Loaded(nameTok.Value)
	if !ok || !dep.Finished() {
		return diagnostics.NewError(diagnostics.ErrN001, nameTok.Position,
			"package %s is not available; declare it in %s", nameTok.Value, packages.ManifestFileName)
	}
	return p.pkg.ImportExports(dep, namespace)
}

// parseGenericParameters parses 🐚 name constraint pairs onto a type
// definition.
func (p *PackageParser) parseGenericParameters(d *typesystem.TypeDef, tp *TypeParser) error {
	for p.stream.ConsumeTokenIf(SigilGenerics) {
		nameTok, err := p.stream.ConsumeToken(token.Variable)
		if err != nil {
			return err
		}
		constraint, err := tp.ParseConstraint(AllowGenericVariables)
		if err != nil {
			return err
		}
		d.AddGenericParameter(nameTok.Value, constraint)
	}
	return nil
}

func (p *PackageParser) parseClass(attrs declarationAttributes) error {
	nameTok, err := p.stream.ConsumeToken(token.Identifier)
	if err != nil {
		return err
	}
	class := typesystem.NewClass(nameTok.Value, p.pkg.Name(), attrs.documentation, attrs.exported, attrs.final, nameTok.Position)

	tp := NewTypeParser(p.stream, p.pkg)
	tp.SetTypeDef(class.Def())
	if err := p.parseGenericParameters(class.Def(), tp); err != nil {
		return err
	}

	if !p.stream.NextTokenIs(BlockOpen) {
		superType, err := tp.ParseType(AllowGenericVariables)
		if err != nil {
			return err
		}
		if superType.Kind() != typesystem.TypeClass {
			return diagnostics.NewError(diagnostics.ErrT001, nameTok.Position,
				"%s is not a class and cannot be inherited from", superType.String())
		}
		if err := class.SetSuperclass(superType.Class(), superType); err != nil {
			return diagnostics.Wrap(nameTok.Position, err)
		}
	}

	classType := typesystem.NewClassType(class, identityArguments(class.Def()), false)
	if err := p.pkg.RegisterType(packages.GlobalNamespace, class.Name(), classType, attrs.exported); err != nil {
		return diagnostics.Wrap(nameTok.Position, err)
	}
	p.pkg.Registry().RegisterClass(class)
	p.result.Classes = append(p.result.Classes, class)

	if _, err := p.stream.RequireIdentifier(BlockOpen); err != nil {
		return err
	}
	declared := p.parseTypeBody(class.Def(), classType, bodyContextClass, tp)
	class.SetInheritsInitializers(!declared.initializers && class.Superclass() != nil)
	return nil
}

func (p *PackageParser) parseValueType(attrs declarationAttributes) error {
	nameTok, err := p.stream.ConsumeToken(token.Identifier)
	if err != nil {
		return err
	}
	vt := typesystem.NewValueType(nameTok.Value, p.pkg.Name(), attrs.documentation, attrs.exported, nameTok.Position)

	tp := NewTypeParser(p.stream, p.pkg)
	tp.SetTypeDef(vt.Def())
	if err := p.parseGenericParameters(vt.Def(), tp); err != nil {
		return err
	}

	vtType := typesystem.NewValueTypeType(vt, identityArguments(vt.Def()), false)
	if err := p.pkg.RegisterType(packages.GlobalNamespace, vt.Name(), vtType, attrs.exported); err != nil {
		return diagnostics.Wrap(nameTok.Position, err)
	}
	p.pkg.Registry().RegisterValueType(vt)
	p.result.ValueTypes = append(p.result.ValueTypes, vt)

	if _, err := p.stream.RequireIdentifier(BlockOpen); err != nil {
		return err
	}
	p.parseTypeBody(vt.Def(), vtType, bodyContextValueType, tp)
	vt.SetSize(len(vt.InstanceVariables()))
	if vt.Size() == 0 {
		vt.SetSize(1)
	}
	return nil
}

func (p *PackageParser) parseEnum(attrs declarationAttributes) error {
	nameTok, err := p.stream.ConsumeToken(token.Identifier)
	if err != nil {
		return err
	}
	enum := typesystem.NewEnum(nameTok.Value, p.pkg.Name(), attrs.documentation, attrs.exported, nameTok.Position)
	enumType := typesystem.NewEnumType(enum, false)
	if err := p.pkg.RegisterType(packages.GlobalNamespace, enum.Name(), enumType, attrs.exported); err != nil {
		return diagnostics.Wrap(nameTok.Position, err)
	}
	p.result.Enums = append(p.result.Enums, enum)

	if _, err := p.stream.RequireIdentifier(BlockOpen); err != nil {
		return err
	}
	for !p.stream.ConsumeTokenIf(BlockClose) {
		doc := ""
		if p.stream.NextTokenIsType(token.DocumentationComment) {
			tok, _ := p.stream.ConsumeToken()
			doc = tok.Value
		}
		valueTok, err := p.stream.ConsumeToken(token.Identifier)
		if err != nil {
			return err
		}
		if err := enum.AddValue(valueTok.Value, doc); err != nil {
			p.recordError(diagnostics.NewError(diagnostics.ErrN003, valueTok.Position, "%s", err.Error()))
		}
	}
	return nil
}

func (p *PackageParser) parseProtocol(attrs declarationAttributes) error {
	nameTok, err := p.stream.ConsumeToken(token.Identifier)
	if err != nil {
		return err
	}
	proto := typesystem.NewProtocol(nameTok.Value, p.pkg.Name(), attrs.documentation, attrs.exported, nameTok.Position)

	tp := NewTypeParser(p.stream, p.pkg)
	tp.SetTypeDef(proto.Def())
	if err := p.parseGenericParameters(proto.Def(), tp); err != nil {
		return err
	}

	protoType := typesystem.NewProtocolType(proto, identityArguments(proto.Def()), false)
	if err := p.pkg.RegisterType(packages.GlobalNamespace, proto.Name(), protoType, attrs.exported); err != nil {
		return diagnostics.Wrap(nameTok.Position, err)
	}
	p.pkg.Registry().RegisterProtocol(proto)
	p.result.Protocols = append(p.result.Protocols, proto)

	if _, err := p.stream.RequireIdentifier(BlockOpen); err != nil {
		return err
	}
	for !p.stream.ConsumeTokenIf(BlockClose) {
		doc := ""
		if p.stream.NextTokenIsType(token.DocumentationComment) {
			tok, _ := p.stream.ConsumeToken()
			doc = tok.Value
		}
		if _, err := p.stream.RequireIdentifier(SigilMethod); err != nil {
			return err
		}
		f, err := p.parseFunctionSignature(proto.Def(), protoType, typesystem.FunctionObjectMethod, tp, AllowSelf|AllowGenericVariables)
		if err != nil {
			return err
		}
		f.Documentation = doc
		if usesSelfType(f) {
			proto.MarkUsesSelf()
		}
		if err := proto.AddMethodRequirement(f); err != nil {
			p.recordError(diagnostics.NewError(diagnostics.ErrN003, f.Position, "%s", err.Error()))
		}
	}
	return nil
}

func usesSelfType(f *typesystem.Function) bool {
	if f.ReturnType.Kind() == typesystem.TypeSelf {
		return true
	}
	for _, param := range f.Parameters {
		if param.Type.Kind() == typesystem.TypeSelf {
			return true
		}
	}
	return false
}

func (p *PackageParser) parseStartFlag() error {
	tok, _ := p.stream.ConsumeToken()
	if p.result.Start != nil {
		return diagnostics.NewError(diagnostics.ErrN003, tok.Position, "🏁 is already declared")
	}
	f := &typesystem.Function{
		Name:       "🏁",
		Package:    p.pkg.Name(),
		Position:   tok.Position,
		Kind:       typesystem.FunctionPlain,
		ReturnType: typesystem.Nothingness,
	}
	tp := NewTypeParser(p.stream, p.pkg)
	if p.stream.ConsumeTokenIf(SigilReturnArrow) {
		ret, err := tp.ParseType(NoDynamism)
		if err != nil {
			return err
		}
		f.ReturnType = ret
	}
	body, err := p.captureBlock()
	if err != nil {
		return err
	}
	f.Body = body
	f.SetVTIProvider(&p.pkg.Registry().PureFunctions)
	p.result.Start = f
	p.result.Functions = append(p.result.Functions, f)
	p.pkg.RegisterFunction(f)
	return nil
}

type bodyContext int

const (
	bodyContextClass bodyContext = iota
	bodyContextValueType
)

type bodyDeclarations struct {
	initializers bool
}

// parseTypeBody parses instance variables, protocol adoptions, methods,
// type methods and initializers until the closing 🍉.
func (p *PackageParser) parseTypeBody(d *typesystem.TypeDef, selfType typesystem.Type, ctx bodyContext, tp *TypeParser) bodyDeclarations {
	var declared bodyDeclarations
	for !p.stream.ConsumeTokenIf(BlockClose) {
		if !p.stream.More() {
			p.recordError(diagnostics.NewError(diagnostics.ErrL004, p.stream.Position(), "expected 🍉 but found end of file"))
			break
		}
		if err := p.parseTypeBodyDeclaration(d, selfType, ctx, tp, &declared); err != nil {
			p.recordError(err)
			p.skipToNextDeclaration()
			return declared
		}
	}
	return declared
}

type memberAttributes struct {
	documentation string
	access        typesystem.AccessLevel
	final         bool
	overriding    bool
	deprecated    bool
	required      bool
	mutating      bool
}

func (p *PackageParser) parseMemberAttributes() memberAttributes {
	attrs := memberAttributes{access: typesystem.AccessPublic}
	for {
		switch {
		case p.stream.NextTokenIsType(token.DocumentationComment):
			tok, _ := p.stream.ConsumeToken()
			attrs.documentation = tok.Value
		case p.stream.ConsumeTokenIf(SigilAccessPrivate):
			attrs.access = typesystem.AccessPrivate
		case p.stream.ConsumeTokenIf(SigilAccessProtected):
			attrs.access = typesystem.AccessProtected
		case p.stream.ConsumeTokenIf(SigilFinal):
			attrs.final = true
		case p.stream.ConsumeTokenIf(SigilOverriding):
			attrs.overriding = true
		case p.stream.ConsumeTokenIf(SigilDeprecated):
			attrs.deprecated = true
		case p.stream.ConsumeTokenIf(SigilRequired):
			attrs.required = true
		case p.stream.ConsumeTokenIf(SigilMutating):
			attrs.mutating = true
		default:
			return attrs
		}
	}
}

func (p *PackageParser) parseTypeBodyDeclaration(d *typesystem.TypeDef, selfType typesystem.Type, ctx bodyContext, tp *TypeParser, declared *bodyDeclarations) error {
	attrs := p.parseMemberAttributes()

	switch {
	case p.stream.ConsumeTokenIf(SigilInstanceVar):
		nameTok, err := p.stream.ConsumeToken(token.Variable)
		if err != nil {
			return err
		}
		t, err := tp.ParseType(AllowGenericVariables)
		if err != nil {
			return err
		}
		if err := d.AddInstanceVariable(typesystem.InstanceVariableDeclaration{
			Name: nameTok.Value, Type: t, Position: nameTok.Position,
		}); err != nil {
			return diagnostics.NewError(diagnostics.ErrN003, nameTok.Position, "%s", err.Error())
		}
		return nil

	case p.stream.ConsumeTokenIf(SigilProtocol):
		proto, err := tp.ParseType(AllowGenericVariables)
		if err != nil {
			return err
		}
		if proto.Kind() != typesystem.TypeProtocol {
			return diagnostics.NewError(diagnostics.ErrT001, p.stream.Position(),
				"%s is not a protocol", proto.String())
		}
		d.AddProtocol(proto)
		return nil

	case p.stream.ConsumeTokenIf(SigilMethod):
		kind := typesystem.FunctionObjectMethod
		if ctx == bodyContextValueType {
			kind = typesystem.FunctionValueTypeMethod
		}
		return p.parseMemberFunction(d, selfType, kind, attrs, tp, func(f *typesystem.Function) error {
			return d.AddMethod(f)
		})

	case p.stream.ConsumeTokenIf(SigilTypeMethod):
		return p.parseMemberFunction(d, selfType, typesystem.FunctionClassMethod, attrs, tp, func(f *typesystem.Function) error {
			return d.AddTypeMethod(f)
		})

	case p.stream.ConsumeTokenIf(SigilInitializer):
		kind := typesystem.FunctionObjectInitializer
		if ctx == bodyContextValueType {
			kind = typesystem.FunctionValueTypeInitializer
		}
		declared.initializers = true
		return p.parseMemberFunction(d, selfType, kind, attrs, tp, func(f *typesystem.Function) error {
			if class, ok := f.Owner.(*typesystem.Class); ok {
				return class.DeclareInitializer(f)
			}
			return d.AddInitializer(f)
		})
	}

	tok, err := p.stream.ConsumeToken()
	if err != nil {
		return err
	}
	return diagnostics.NewError(diagnostics.ErrL001, tok.Position,
		"unexpected %s %q in type body", tok.Type, tok.Value)
}

func (p *PackageParser) parseMemberFunction(d *typesystem.TypeDef, selfType typesystem.Type, kind typesystem.FunctionKind,
	attrs memberAttributes, tp *TypeParser, register func(*typesystem.Function) error) error {
	f, err := p.parseFunctionSignature(d, selfType, kind, tp, AllowSelf|AllowGenericVariables)
	if err != nil {
		return err
	}
	f.Documentation = attrs.documentation
	f.AccessLevel = attrs.access
	f.Final = attrs.final
	f.Overriding = attrs.overriding
	f.Deprecated = attrs.deprecated
	f.Required = attrs.required
	f.Mutating = attrs.mutating

	if kind.IsInitializer() {
		f.ReturnType = selfType
		if p.stream.NextTokenIs(SigilCanThrow) {
			p.stream.ConsumeToken()
			enumType, err := tp.ParseType(AllowGenericVariables)
			if err != nil {
				return err
			}
			f.ErrorProne = true
			f.ErrorEnum = enumType
		}
	}

	body, err := p.captureBlock()
	if err != nil {
		return err
	}
	f.Body = body
	if err := register(f); err != nil {
		return diagnostics.NewError(diagnostics.ErrN003, f.Position, "%s", err.Error())
	}
	p.result.Functions = append(p.result.Functions, f)
	return nil
}

// parseFunctionSignature parses name, local generic parameters, parameters
// and return type. The body is not consumed.
func (p *PackageParser) parseFunctionSignature(d *typesystem.TypeDef, selfType typesystem.Type,
	kind typesystem.FunctionKind, tp *TypeParser, dynamism TypeDynamism) (*typesystem.Function, error) {
	nameTok, err := p.stream.ConsumeToken(token.Identifier, token.Variable)
	if err != nil {
		return nil, err
	}

	var owner typesystem.TypeDefinition
	f := &typesystem.Function{
		Name:       nameTok.Value,
		Package:    p.pkg.Name(),
		Position:   nameTok.Position,
		Kind:       kind,
		ReturnType: typesystem.Nothingness,
		OwningType: selfType,
	}
	if d != nil {
		owner = ownerDefinition(d, selfType)
		f.Owner = owner
	}

	tp.SetFunction(f)
	defer tp.SetFunction(nil)

	for p.stream.ConsumeTokenIf(SigilGenerics) {
		genTok, err := p.stream.ConsumeToken(token.Variable)
		if err != nil {
			return nil, err
		}
		f.GenericParameterNames = append(f.GenericParameterNames, genTok.Value)
		constraint, err := tp.ParseConstraint(dynamism)
		if err != nil {
			return nil, err
		}
		f.GenericConstraints = append(f.GenericConstraints, constraint)
	}

	for p.stream.NextTokenIsType(token.Variable) {
		paramTok, _ := p.stream.ConsumeToken()
		paramType, err := tp.ParseType(dynamism)
		if err != nil {
			return nil, err
		}
		f.Parameters = append(f.Parameters, typesystem.Parameter{Name: paramTok.Value, Type: paramType})
		if len(f.Parameters) > config.MaxParameterCount {
			return nil, diagnostics.NewError(diagnostics.ErrC001, paramTok.Position,
				"too many parameters: limit is %d", config.MaxParameterCount)
		}
	}

	if p.stream.ConsumeTokenIf(SigilReturnArrow) {
		ret, err := tp.ParseType(dynamism)
		if err != nil {
			return nil, err
		}
		f.ReturnType = ret
	}
	return f, nil
}

// ownerDefinition maps a TypeDef back to its concrete definition through
// the self type.
func ownerDefinition(d *typesystem.TypeDef, selfType typesystem.Type) typesystem.TypeDefinition {
	if def := selfType.TypeDefinition(); def != nil {
		return def
	}
	return d
}

// captureBlock consumes a 🍇…🍉 block and returns its tokens as a fresh
// sub-stream for lazy body analysis.
func (p *PackageParser) captureBlock() (*token.Stream, error) {
	if _, err := p.stream.RequireIdentifier(BlockOpen); err != nil {
		return nil, err
	}
	var tokens []token.Token
	depth := 1
	for {
		tok, err := p.stream.ConsumeToken()
		if err != nil {
			return nil, err
		}
		if tok.IsIdentifier(BlockOpen) {
			depth++
		} else if tok.IsIdentifier(BlockClose) {
			depth--
			if depth == 0 {
				return token.NewStream(tokens), nil
			}
		}
		tokens = append(tokens, tok)
	}
}

// identityArguments maps every generic parameter of a definition to
// itself.
func identityArguments(d *typesystem.TypeDef) []typesystem.Type {
	count := d.GenericArgumentCount()
	if count == 0 {
		return nil
	}
	args := make([]typesystem.Type, count)
	copy(args, d.SuperGenericArguments())
	for i := d.GenericArgumentCount() - d.OwnGenericParameterCount(); i < count; i++ {
		args[i] = typesystem.NewGenericVariable(i, d)
	}
	return args
}
