package packages

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ManifestFileName is the per-package manifest read from the package
// directory.
const ManifestFileName = "package.yml"

// Manifest describes a package directory: its identity, version, whether it
// ships a native binary part, and the packages it depends on.
type Manifest struct {
	Name           string   `yaml:"name"`
	Version        Version  `yaml:"version"`
	RequiresBinary bool     `yaml:"requires_binary"`
	Dependencies   []string `yaml:"dependencies"`
}

// ReadManifest loads and validates the manifest of a package directory.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFileName))
	if err != nil {
		return nil, fmt.Errorf("reading manifest of %s: %w", dir, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest of %s: %w", dir, err)
	}
	if m.Name == "" {
		m.Name = filepath.Base(dir)
	}
	return &m, nil
}
