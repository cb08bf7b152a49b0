package relocate

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/bbfire/builders/pkg/deployerr"
	"github.com/bbfire/builders/pkg/fshost"
	"github.com/bbfire/builders/pkg/workspace"
)

const (
	indexFile         = "index.html"
	originalIndexFile = "index.original.html"
)

// Move relocates Src to Dst.
type Move struct {
	Src string `json:"src"`
	Dst string `json:"dst"`
}

// Rename renames a single file.
type Rename struct {
	Old string
	New string
}

// Plan lists the operations that restructure a build output tree. Moves are
// applied in order, client bundle first, and the rename last.
type Plan struct {
	Moves  []Move
	Rename Rename
}

// Nest returns the path a build output is moved to: the output path joined
// onto its own parent directory. The server bundle resolves the client
// bundle relative to its working directory, which for a deployed function is
// the parent of the server output.
func Nest(p string) string {
	p = filepath.Clean(p)
	return filepath.Join(filepath.Dir(p), p)
}

// cleanPath normalizes a configured output path. A trailing separator does
// not change which directory is meant.
func cleanPath(p string) string {
	if strings.TrimSpace(p) == "" {
		return ""
	}
	return filepath.Clean(p)
}

// NewPlan computes the relocation plan for a project's output paths.
func NewPlan(paths workspace.BuildOutputPaths) (Plan, error) {
	static, srv := cleanPath(paths.StaticOutputPath), cleanPath(paths.ServerOutputPath)
	client := Move{Src: static, Dst: Nest(static)}
	server := Move{Src: srv, Dst: Nest(srv)}

	plan := Plan{
		Moves: []Move{client, server},
		Rename: Rename{
			Old: filepath.Join(client.Dst, indexFile),
			New: filepath.Join(client.Dst, originalIndexFile),
		},
	}
	if err := plan.validate(); err != nil {
		return Plan{}, deployerr.NewConfigurationError(err)
	}
	return plan, nil
}

func (p Plan) validate() error {
	seen := map[string]bool{}
	for _, m := range p.Moves {
		if m.Src == "" {
			return fmt.Errorf("cannot relocate an empty output path")
		}
		if seen[m.Src] {
			return fmt.Errorf("output path %q is used by more than one build target", m.Src)
		}
		seen[m.Src] = true

		if within(m.Dst, m.Src) {
			return fmt.Errorf("cannot relocate %q into %q: destination is inside the source", m.Src, m.Dst)
		}
	}
	return nil
}

// within reports whether p is base or a descendant of base.
func within(p, base string) bool {
	rel, err := filepath.Rel(filepath.Clean(base), filepath.Clean(p))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Relocator applies relocation plans to a filesystem.
type Relocator struct {
	Logger *logrus.Entry
	Host   fshost.Host
}

func NewRelocator(logger *logrus.Entry, host fshost.Host) Relocator {
	return Relocator{
		Logger: logger,
		Host:   host,
	}
}

// Apply performs the plan. Nothing is rolled back: after a failure the tree
// is possibly inconsistent, with completed moves kept and the failing move
// partially copied.
func (r Relocator) Apply(plan Plan) error {
	for _, m := range plan.Moves {
		r.Logger.WithField("to", m.Dst).Infof("moving %s", m.Src)
		if err := r.Host.Move(m.Src, m.Dst); err != nil {
			return deployerr.NewFilesystemError(errors.Wrapf(err, "error relocating %q", m.Src))
		}
	}
	r.Logger.Debugf("renaming %s to %s", plan.Rename.Old, plan.Rename.New)
	if err := r.Host.Rename(plan.Rename.Old, plan.Rename.New); err != nil {
		return deployerr.NewFilesystemError(err)
	}
	return nil
}
