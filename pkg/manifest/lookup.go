//go:generate mockgen -destination=mock_manifest/lookup.go -package=mock_manifest . VersionLookup
package manifest

// VersionLookup finds the version of a package installed in the workspace.
type VersionLookup interface {
	// InstalledVersion returns the installed version of name, or false if
	// the package is not installed. Lookup failures count as not installed.
	InstalledVersion(name string) (string, bool)
}

// LookupFunc adapts a function to a VersionLookup.
type LookupFunc func(name string) (string, bool)

func (f LookupFunc) InstalledVersion(name string) (string, bool) {
	return f(name)
}

// NoLookup never finds a package.
var NoLookup VersionLookup = LookupFunc(func(string) (string, bool) { return "", false })
