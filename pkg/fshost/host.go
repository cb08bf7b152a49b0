package fshost

import (
	"path/filepath"
)

const defaultPermission = 0644

// Host is the set of filesystem operations the deploy pipeline performs on
// the build output tree. Paths are interpreted relative to the host's root.
type Host interface {
	// Move relocates a file or directory. Implementations copy src to dst
	// and then remove src, so moves across filesystems are supported.
	Move(src, dst string) error
	// WriteFile writes content to name, overwriting any existing file.
	WriteFile(name string, content []byte) error
	// Rename renames a single file in place.
	Rename(oldpath, newpath string) error
	// ReadFile returns the content of name.
	ReadFile(name string) ([]byte, error)
	// Exists reports whether name exists.
	Exists(name string) (bool, error)
}

// resolve joins a possibly relative path onto root. Absolute paths are
// returned unchanged.
func resolve(root, name string) string {
	if filepath.IsAbs(name) || root == "" {
		return name
	}
	return filepath.Join(root, name)
}
