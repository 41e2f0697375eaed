package packages_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/emojc/internal/config"
	"github.com/funvibe/emojc/internal/packages"
	"github.com/funvibe/emojc/internal/token"
	"github.com/funvibe/emojc/internal/typesystem"
)

func writePackage(t *testing.T, root, name, manifest string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, packages.ManifestFileName), []byte(manifest), 0o644))
}

func TestReadManifest(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "geo", `
name: geo
version:
  major: 2
  minor: 1
requires_binary: true
dependencies:
  - mathx
`)
	m, err := packages.ReadManifest(filepath.Join(root, "geo"))
	require.NoError(t, err)
	assert.Equal(t, "geo", m.Name)
	assert.Equal(t, "2.1", m.Version.String())
	assert.True(t, m.RequiresBinary)
	assert.Equal(t, []string{"mathx"}, m.Dependencies)
}

func TestManifestNameDefaultsToDirectory(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "unnamed", "version:\n  major: 1\n")
	m, err := packages.ReadManifest(filepath.Join(root, "unnamed"))
	require.NoError(t, err)
	assert.Equal(t, "unnamed", m.Name)
}

func TestLoaderOrdersDependencies(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "app", "name: app\nversion:\n  major: 1\ndependencies:\n  - lib\n")
	writePackage(t, root, "lib", "name: lib\nversion:\n  major: 1\n")

	var order []string
	loader := packages.NewLoader(root, typesystem.NewRegistry(), func(pkg *packages.Package, files []string) error {
		order = append(order, pkg.Name())
		return nil
	})
	_, err := loader.Load("app")
	require.NoError(t, err)
	assert.Equal(t, []string{"lib", "app"}, order, "leaves load first")

	lib, ok := loader.Loaded("lib")
	require.True(t, ok)
	assert.True(t, lib.Finished())
}

func TestLoaderDetectsCircularImports(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "a", "name: a\nversion:\n  major: 1\ndependencies:\n  - b\n")
	writePackage(t, root, "b", "name: b\nversion:\n  major: 1\ndependencies:\n  - a\n")

	loader := packages.NewLoader(root, typesystem.NewRegistry(), nil)
	_, err := loader.Load("a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circular import")
}

func TestBootstrapStandardPackage(t *testing.T) {
	registry := typesystem.NewRegistry()
	pkg, builtins, err := packages.BootstrapStandardPackage(registry)
	require.NoError(t, err)
	assert.True(t, pkg.Finished())
	assert.True(t, pkg.RequiresBinary())

	// The primitives carry their ABI-fixed box identifiers.
	assert.Equal(t, config.BoxIDBoolean, registry.BoxIdentifierFor(builtins.Boolean))
	assert.Equal(t, config.BoxIDInteger, registry.BoxIdentifierFor(builtins.Integer))
	assert.Equal(t, config.BoxIDDouble, registry.BoxIdentifierFor(builtins.Double))
	assert.Equal(t, config.BoxIDSymbol, registry.BoxIdentifierFor(builtins.Symbol))

	// The enumeration protocols expose the three methods the for-in loop
	// dispatches through.
	assert.NotNil(t, builtins.Enumerateable.LookupMethod("🍡"))
	assert.NotNil(t, builtins.Enumerator.LookupMethod("🔼"))
	assert.NotNil(t, builtins.Enumerator.LookupMethod("🔽"))

	// Fetching types by name works through the global namespace.
	listType, err := pkg.FetchRawType("🍨", packages.GlobalNamespace, false, token.SourcePosition{})
	require.NoError(t, err)
	assert.Equal(t, typesystem.TypeClass, listType.Kind())

	optInt, err := pkg.FetchRawType("🚂", packages.GlobalNamespace, true, token.SourcePosition{})
	require.NoError(t, err)
	assert.True(t, optInt.Optional())

	_, err = pkg.FetchRawType("👻", packages.GlobalNamespace, false, token.SourcePosition{})
	assert.Error(t, err, "unknown type names must fail")
}

func TestRegisterTypeRejectsDuplicates(t *testing.T) {
	registry := typesystem.NewRegistry()
	pkg := packages.New("test", registry)
	require.NoError(t, pkg.RegisterType(packages.GlobalNamespace, "🐱", typesystem.Something, false))
	assert.Error(t, pkg.RegisterType(packages.GlobalNamespace, "🐱", typesystem.Something, false))
	assert.NoError(t, pkg.RegisterType("🔶", "🐱", typesystem.Something, false),
		"the same name in another namespace is fine")
}
