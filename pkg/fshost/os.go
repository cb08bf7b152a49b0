package fshost

import (
	"os"
	"path/filepath"

	"github.com/otiai10/copy"
	"github.com/pkg/errors"
)

// OS is a Host backed by the local filesystem.
type OS struct {
	// Root is the directory relative paths are resolved against,
	// usually the workspace root.
	Root string
}

var _ Host = OS{}

func NewOS(root string) OS {
	return OS{Root: root}
}

func (h OS) Move(src, dst string) error {
	from, to := resolve(h.Root, src), resolve(h.Root, dst)
	if _, err := os.Stat(from); err != nil {
		return errors.Wrapf(err, "cannot move %q", src)
	}
	if err := os.MkdirAll(filepath.Dir(to), os.ModePerm); err != nil {
		return errors.Wrapf(err, "could not create parent directory of %q", dst)
	}
	if err := copy.Copy(from, to, copy.Options{PreserveTimes: true}); err != nil {
		return errors.Wrapf(err, "error copying %q to %q", src, dst)
	}
	if err := os.RemoveAll(from); err != nil {
		return errors.Wrapf(err, "could not remove %q after copying it to %q", src, dst)
	}
	return nil
}

func (h OS) WriteFile(name string, content []byte) error {
	path := resolve(h.Root, name)
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return errors.Wrapf(err, "could not create parent directory of %q", name)
	}
	if err := os.WriteFile(path, content, defaultPermission); err != nil {
		return errors.Wrapf(err, "error writing %q", name)
	}
	return nil
}

func (h OS) Rename(oldpath, newpath string) error {
	if err := os.Rename(resolve(h.Root, oldpath), resolve(h.Root, newpath)); err != nil {
		return errors.Wrapf(err, "error renaming %q to %q", oldpath, newpath)
	}
	return nil
}

func (h OS) ReadFile(name string) ([]byte, error) {
	b, err := os.ReadFile(resolve(h.Root, name))
	if err != nil {
		return nil, errors.Wrapf(err, "error reading %q", name)
	}
	return b, nil
}

func (h OS) Exists(name string) (bool, error) {
	_, err := os.Stat(resolve(h.Root, name))
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, errors.Wrapf(err, "error checking %q", name)
	}
}
