package packages

import (
	"fmt"

	"github.com/funvibe/emojc/internal/diagnostics"
	"github.com/funvibe/emojc/internal/token"
	"github.com/funvibe/emojc/internal/typesystem"
)

// GlobalNamespace is the namespace types land in unless a namespace prefix
// redirects them.
const GlobalNamespace = "🔴"

// Version is a package version.
type Version struct {
	Major int `yaml:"major"`
	Minor int `yaml:"minor"`
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Package is a compilation unit: the types it exports, the functions it
// registers and its loading state. A package finishes loading before any
// package that imports it finishes loading; a cycle is a hard error caught
// by the finished flag.
type Package struct {
	name    string
	version Version
	// requiresBinary marks packages that ship a native part; their
	// functions carry linking-table indices.
	requiresBinary bool

	loading  bool
	finished bool

	// types maps namespace then type name to the type.
	types map[string]map[string]typesystem.Type
	// exported lists exported types in declaration order.
	exported []ExportedType

	functions []*typesystem.Function

	registry *typesystem.Registry
}

// ExportedType pairs a name with the type made visible to importers.
type ExportedType struct {
	Name string
	Type typesystem.Type
}

func New(name string, registry *typesystem.Registry) *Package {
	return &Package{
		name:     name,
		registry: registry,
		types:    map[string]map[string]typesystem.Type{GlobalNamespace: {}},
	}
}

func (p *Package) Name() string                   { return p.name }
func (p *Package) Version() Version               { return p.version }
func (p *Package) SetVersion(v Version)           { p.version = v }
func (p *Package) RequiresBinary() bool           { return p.requiresBinary }
func (p *Package) SetRequiresBinary(b bool)       { p.requiresBinary = b }
func (p *Package) Registry() *typesystem.Registry { return p.registry }

func (p *Package) Loading() bool  { return p.loading }
func (p *Package) Finished() bool { return p.finished }

// BeginLoading flags the package as being parsed. Returns an error when the
// package is already loading, which means the import graph is circular.
func (p *Package) BeginLoading() error {
	if p.loading {
		return fmt.Errorf("circular import: package %s is still loading", p.name)
	}
	if p.finished {
		return fmt.Errorf("package %s was already loaded", p.name)
	}
	p.loading = true
	return nil
}

func (p *Package) FinishLoading() {
	p.loading = false
	p.finished = true
}

// RegisterType makes a type known under the given namespace. Duplicates
// are an error.
func (p *Package) RegisterType(namespace, name string, t typesystem.Type, export bool) error {
	ns, ok := p.types[namespace]
	if !ok {
		ns = map[string]typesystem.Type{}
		p.types[namespace] = ns
	}
	if _, dup := ns[name]; dup {
		return fmt.Errorf("type %s is already defined in namespace %s", name, namespace)
	}
	ns[name] = t
	if export {
		p.exported = append(p.exported, ExportedType{Name: name, Type: t})
	}
	return nil
}

// ExportedTypes returns the exported types in declaration order.
func (p *Package) ExportedTypes() []ExportedType { return p.exported }

// ImportExports copies another package's exported types into the given
// namespace of this package.
func (p *Package) ImportExports(from *Package, namespace string) error {
	for _, e := range from.ExportedTypes() {
		if err := p.RegisterType(namespace, e.Name, e.Type, false); err != nil {
			return err
		}
	}
	return nil
}

// FetchRawType resolves a type name in a namespace. The returned type's
// optional bit follows the request.
func (p *Package) FetchRawType(name, namespace string, optional bool, pos token.SourcePosition) (typesystem.Type, error) {
	ns, ok := p.types[namespace]
	if !ok {
		return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrN006, pos, "no types in namespace %s", namespace)
	}
	t, ok := ns[name]
	if !ok {
		return typesystem.Type{}, diagnostics.NewError(diagnostics.ErrN001, pos, "could not find type %s in namespace %s", name, namespace)
	}
	if optional {
		t = t.Optionalized()
	}
	return t, nil
}

// RegisterFunction records a free function of the package.
func (p *Package) RegisterFunction(f *typesystem.Function) {
	p.functions = append(p.functions, f)
}

func (p *Package) Functions() []*typesystem.Function { return p.functions }
