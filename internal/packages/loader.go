package packages

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/funvibe/emojc/internal/config"
	"github.com/funvibe/emojc/internal/typesystem"
)

// ParseFunc parses the source files of a package into it. The loader stays
// agnostic of the parser; the pipeline injects the real one.
type ParseFunc func(pkg *Package, sourceFiles []string) error

// Loader resolves package names to directories, orders dependencies and
// detects circular imports. Leaves load first: a package's loading
// completes before any package importing it finishes loading.
type Loader struct {
	// SearchPath is the package directory containing one subdirectory per
	// package.
	SearchPath string
	Parse      ParseFunc

	registry *typesystem.Registry
	loaded   map[string]*Package
}

func NewLoader(searchPath string, registry *typesystem.Registry, parse ParseFunc) *Loader {
	return &Loader{
		SearchPath: searchPath,
		Parse:      parse,
		registry:   registry,
		loaded:     make(map[string]*Package),
	}
}

// Registry returns the registry shared by every loaded package.
func (l *Loader) Registry() *typesystem.Registry { return l.registry }

// Loaded returns the package if it was loaded already.
func (l *Loader) Loaded(name string) (*Package, bool) {
	p, ok := l.loaded[name]
	return p, ok
}

// Load loads the named package and, recursively, its dependencies.
func (l *Loader) Load(name string) (*Package, error) {
	if p, ok := l.loaded[name]; ok {
		if !p.Finished() {
			return nil, fmt.Errorf("circular import: package %s is still loading", name)
		}
		return p, nil
	}
	if len(l.loaded) >= config.MaxPackageCount {
		return nil, fmt.Errorf("too many packages: limit is %d", config.MaxPackageCount)
	}

	dir := filepath.Join(l.SearchPath, name)
	manifest, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}

	pkg := New(manifest.Name, l.registry)
	pkg.SetVersion(manifest.Version)
	pkg.SetRequiresBinary(manifest.RequiresBinary)
	l.loaded[name] = pkg
	if err := pkg.BeginLoading(); err != nil {
		return nil, err
	}

	for _, dep := range manifest.Dependencies {
		depPkg, err := l.Load(dep)
		if err != nil {
			return nil, err
		}
		if err := pkg.ImportExports(depPkg, GlobalNamespace); err != nil {
			return nil, err
		}
	}

	files, err := sourceFiles(dir)
	if err != nil {
		return nil, err
	}
	if l.Parse != nil {
		if err := l.Parse(pkg, files); err != nil {
			return nil, err
		}
	}

	pkg.FinishLoading()
	return pkg, nil
}

// sourceFiles lists the package's source files sorted by name so the
// compile order is deterministic.
func sourceFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading package directory %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !config.HasSourceExt(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
