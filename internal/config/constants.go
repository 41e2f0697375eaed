package config

// Version is the current emojc version.
// Can be overridden at build time via -ldflags.
var Version = "0.3.1"

const SourceFileExt = ".emojic"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".emojic", ".emoji"}

// TrimSourceExt removes any recognized source extension from a filename.
// Returns the original string if no extension matches.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt returns true if the path ends with any recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// IsTestMode indicates if the program is running in test mode.
// It defaults to false; nothing in this module sets it.
var IsTestMode = false

// Capacity limits. Exceeding any of these is a compile error, not a panic.
const (
	MaxParameterCount  = 255
	MaxGenericArgs     = 255
	MaxPackageCount    = 255
	MaxBoxedValueWords = 4
)

// Box identifiers of the primitive value types. These are fixed by the
// runtime ABI and must not change between releases.
const (
	BoxIDBoolean = 1
	BoxIDInteger = 2
	BoxIDDouble  = 3
	BoxIDSymbol  = 4
)

// Names of the default and standard packages.
const (
	StandardPackageName = "s"
	UnderscorePackage   = "_"
)

// BundleFileExt is the extension of compiled artifact bundles.
const BundleFileExt = ".emojib"
