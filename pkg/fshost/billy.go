package fshost

import (
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/pkg/errors"
)

// Billy is a Host backed by a go-billy filesystem. Paths are relative to the
// filesystem root, so an osfs rooted at the workspace confines every
// operation to the workspace.
type Billy struct {
	fs billy.Filesystem
}

var _ Host = &Billy{}

func NewBilly(fs billy.Filesystem) *Billy {
	return &Billy{fs: fs}
}

// NewMemory returns a Host holding its files in memory.
func NewMemory() *Billy {
	return NewBilly(memfs.New())
}

// NewBounded returns a Host on the local disk that refuses to touch
// anything outside root.
func NewBounded(root string) *Billy {
	return NewBilly(osfs.New(root, osfs.WithBoundOS()))
}

// Filesystem returns the underlying go-billy filesystem.
func (h *Billy) Filesystem() billy.Filesystem {
	return h.fs
}

func (h *Billy) Move(src, dst string) error {
	info, err := h.fs.Stat(src)
	if err != nil {
		return errors.Wrapf(err, "cannot move %q", src)
	}
	if !info.IsDir() {
		if err := h.copyFile(src, dst, info.Mode()); err != nil {
			return err
		}
	} else {
		err = util.Walk(h.fs, src, func(path string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(src, path)
			if err != nil {
				return err
			}
			target := filepath.Join(dst, rel)
			if fi.IsDir() {
				return h.fs.MkdirAll(target, fi.Mode().Perm()|0700)
			}
			return h.copyFile(path, target, fi.Mode())
		})
		if err != nil {
			return errors.Wrapf(err, "error copying %q to %q", src, dst)
		}
	}
	if err := util.RemoveAll(h.fs, src); err != nil {
		return errors.Wrapf(err, "could not remove %q after copying it to %q", src, dst)
	}
	return nil
}

func (h *Billy) copyFile(src, dst string, mode os.FileMode) error {
	in, err := h.fs.Open(src)
	if err != nil {
		return errors.Wrapf(err, "error opening %q", src)
	}
	defer in.Close()

	if err := h.fs.MkdirAll(filepath.Dir(dst), os.ModePerm); err != nil {
		return errors.Wrapf(err, "could not create parent directory of %q", dst)
	}
	out, err := h.fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return errors.Wrapf(err, "error creating %q", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrapf(err, "error copying %q to %q", src, dst)
	}
	return out.Close()
}

func (h *Billy) WriteFile(name string, content []byte) error {
	if err := h.fs.MkdirAll(filepath.Dir(name), os.ModePerm); err != nil {
		return errors.Wrapf(err, "could not create parent directory of %q", name)
	}
	if err := util.WriteFile(h.fs, name, content, defaultPermission); err != nil {
		return errors.Wrapf(err, "error writing %q", name)
	}
	return nil
}

func (h *Billy) Rename(oldpath, newpath string) error {
	if err := h.fs.Rename(oldpath, newpath); err != nil {
		return errors.Wrapf(err, "error renaming %q to %q", oldpath, newpath)
	}
	return nil
}

func (h *Billy) ReadFile(name string) ([]byte, error) {
	b, err := util.ReadFile(h.fs, name)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading %q", name)
	}
	return b, nil
}

func (h *Billy) Exists(name string) (bool, error) {
	_, err := h.fs.Stat(name)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return false, errors.Wrapf(err, "error checking %q", name)
	}
}
