package workspace

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"sigs.k8s.io/yaml"

	"github.com/bbfire/builders/pkg/deployerr"
)

const (
	// WorkspaceFile is the Angular workspace configuration at the workspace root.
	WorkspaceFile = "angular.json"

	BuildTarget     = "build"
	ServerTarget    = "server"
	PrerenderTarget = "prerender"
)

// Reader is the read side of the filesystem the resolver needs.
type Reader interface {
	ReadFile(name string) ([]byte, error)
	Exists(name string) (bool, error)
}

// Workspace is the subset of angular.json the deploy pipeline reads.
type Workspace struct {
	Version        int                `json:"version"`
	DefaultProject string             `json:"defaultProject,omitempty"`
	Projects       map[string]Project `json:"projects"`
}

type Project struct {
	Root       string            `json:"root"`
	SourceRoot string            `json:"sourceRoot,omitempty"`
	Architect  map[string]Target `json:"architect,omitempty"`
	// Targets is the newer spelling of Architect.
	Targets map[string]Target `json:"targets,omitempty"`
}

type Target struct {
	Builder        string                     `json:"builder"`
	Options        json.RawMessage            `json:"options,omitempty"`
	Configurations map[string]json.RawMessage `json:"configurations,omitempty"`
}

// BuildOutputPaths locates the client and server bundles of a project.
type BuildOutputPaths struct {
	StaticOutputPath string
	ServerOutputPath string
}

// BrowserOptions are the options of the client build target.
type BrowserOptions struct {
	OutputPath     string `json:"outputPath"`
	ServiceWorker  bool   `json:"serviceWorker,omitempty"`
	NgswConfigPath string `json:"ngswConfigPath,omitempty"`
	BaseHref       string `json:"baseHref,omitempty"`
}

// ServerOptions are the options of the server build target.
type ServerOptions struct {
	OutputPath           string     `json:"outputPath"`
	ExternalDependencies []string   `json:"externalDependencies,omitempty"`
	BundleDependencies   BundleFlag `json:"bundleDependencies,omitempty"`
}

// BundleFlag is set only when bundleDependencies is the literal true.
// Older workspaces use the strings "all" and "none"; both count as unset.
type BundleFlag bool

func (f *BundleFlag) UnmarshalJSON(b []byte) error {
	*f = string(b) == "true"
	return nil
}

// LoadWorkspace reads and decodes the workspace file at path.
func LoadWorkspace(r Reader, path string) (*Workspace, error) {
	b, err := r.ReadFile(path)
	if err != nil {
		return nil, deployerr.NewConfigurationError(errors.Wrap(err, "could not read workspace configuration"))
	}
	var w Workspace
	if err := yaml.Unmarshal(b, &w); err != nil {
		return nil, deployerr.NewConfigurationError(errors.Wrapf(err, "could not decode %s", path))
	}
	return &w, nil
}

// Project returns the named project, falling back to the default project
// when name is empty.
func (w *Workspace) Project(name string) (string, Project, error) {
	if name == "" {
		name = w.DefaultProject
	}
	if name == "" {
		return "", Project{}, deployerr.NewConfigurationError(fmt.Errorf("no project specified and %s has no defaultProject", WorkspaceFile))
	}
	p, ok := w.Projects[name]
	if !ok {
		return "", Project{}, deployerr.NewConfigurationError(fmt.Errorf("project %q not found in %s", name, WorkspaceFile))
	}
	return name, p, nil
}

// Target returns the named architect target of the project.
func (p Project) Target(name string) (Target, bool) {
	if t, ok := p.Architect[name]; ok {
		return t, true
	}
	t, ok := p.Targets[name]
	return t, ok
}

func (p Project) decodeOptions(target string, into interface{}) (bool, error) {
	t, ok := p.Target(target)
	if !ok || len(t.Options) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(t.Options, into); err != nil {
		return true, errors.Wrapf(err, "could not decode architect.%s.options", target)
	}
	return true, nil
}

// BrowserOptions returns the options of the project's build target.
func (w *Workspace) BrowserOptions(project string) (BrowserOptions, error) {
	_, p, err := w.Project(project)
	if err != nil {
		return BrowserOptions{}, err
	}
	var o BrowserOptions
	if _, err := p.decodeOptions(BuildTarget, &o); err != nil {
		return BrowserOptions{}, deployerr.NewConfigurationError(err)
	}
	return o, nil
}

// ServerOptions returns the options of the project's server target. A
// project without server options yields the zero value: dependencies are
// not bundled and no external dependencies are listed.
func (w *Workspace) ServerOptions(project string) (ServerOptions, error) {
	_, p, err := w.Project(project)
	if err != nil {
		return ServerOptions{}, err
	}
	var o ServerOptions
	if _, err := p.decodeOptions(ServerTarget, &o); err != nil {
		return ServerOptions{}, deployerr.NewConfigurationError(err)
	}
	if o.ExternalDependencies == nil {
		o.ExternalDependencies = []string{}
	}
	return o, nil
}

// OutputPaths resolves the client and server output paths of a project.
// Returned paths are cleaned, so "dist/app/server/" yields "dist/app/server".
// Every missing path is reported in a single configuration error.
func (w *Workspace) OutputPaths(project string) (BuildOutputPaths, error) {
	name, _, err := w.Project(project)
	if err != nil {
		return BuildOutputPaths{}, err
	}

	var errs []error
	browser, err := w.BrowserOptions(name)
	if err != nil {
		errs = append(errs, err)
	} else if browser.OutputPath == "" {
		errs = append(errs, fmt.Errorf("Cannot read the output path (architect.%s.options.outputPath) of the Angular project %q in %s", BuildTarget, name, WorkspaceFile))
	}
	server, err := w.ServerOptions(name)
	if err != nil {
		errs = append(errs, err)
	} else if server.OutputPath == "" {
		errs = append(errs, fmt.Errorf("Cannot read the output path (architect.%s.options.outputPath) of the Angular project %q in %s", ServerTarget, name, WorkspaceFile))
	}
	if len(errs) > 0 {
		return BuildOutputPaths{}, deployerr.NewConfigurationError(utilerrors.NewAggregate(errs))
	}

	return BuildOutputPaths{
		StaticOutputPath: filepath.Clean(browser.OutputPath),
		ServerOutputPath: filepath.Clean(server.OutputPath),
	}, nil
}
