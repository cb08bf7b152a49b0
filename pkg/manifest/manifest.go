package manifest

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"sigs.k8s.io/yaml"

	"github.com/bbfire/builders/pkg/deployerr"
)

const (
	// PackageFile is the name of a Node package manifest.
	PackageFile = "package.json"
	// Latest is the specifier used when no installed version is known.
	Latest = "latest"
)

// DefaultDependencies are always part of the function's runtime dependencies.
func DefaultDependencies() Dependencies {
	return Dependencies{
		"firebase-admin":     Latest,
		"firebase-functions": Latest,
	}
}

// DefaultDevDependencies are always part of the function's dev dependencies.
func DefaultDevDependencies() Dependencies {
	return Dependencies{
		"firebase-functions-test": Latest,
	}
}

// Policy selects which host application dependencies the function carries.
// With BundleAll every dependency of the host package.json is copied;
// otherwise only AllowList names are resolved to their installed versions.
type Policy struct {
	BundleAll bool
	AllowList []string
}

// PolicyFor returns the policy matching the server target's bundling
// options: dependencies that were not bundled into the server output must
// all be installed by the function.
func PolicyFor(bundleDependencies bool, externalDependencies []string) Policy {
	if !bundleDependencies {
		return Policy{BundleAll: true}
	}
	return Policy{AllowList: append([]string(nil), externalDependencies...)}
}

func (p Policy) String() string {
	if p.BundleAll {
		return "bundle-all"
	}
	return fmt.Sprintf("allow-list%v", p.AllowList)
}

// Reader is the read side of the filesystem the synthesizer needs.
type Reader interface {
	ReadFile(name string) ([]byte, error)
	Exists(name string) (bool, error)
}

// HostManifest is the subset of the host application's package.json that
// is read.
type HostManifest struct {
	Name         string       `json:"name,omitempty"`
	Version      string       `json:"version,omitempty"`
	Dependencies Dependencies `json:"dependencies,omitempty"`
}

// LoadHostManifest reads the package.json at path. It returns false, and no
// error, when the file does not exist.
func LoadHostManifest(r Reader, path string) (*HostManifest, bool, error) {
	exists, err := r.Exists(path)
	if err != nil {
		return nil, false, err
	}
	if !exists {
		return nil, false, nil
	}
	b, err := r.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	var m HostManifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, false, errors.Wrapf(err, "could not decode %s", path)
	}
	return &m, true, nil
}

// Manifest holds the dependencies of the deployed function.
type Manifest struct {
	Dependencies    Dependencies
	DevDependencies Dependencies
}

// Synthesizer computes the function's dependency manifest.
type Synthesizer struct {
	Logger *logrus.Entry
	Lookup VersionLookup
	Policy Policy

	// Reader and HostManifestPath locate the host application's package.json.
	// It is only read when Policy.BundleAll is set.
	Reader           Reader
	HostManifestPath string
}

// Synthesize folds the merge steps in order of increasing precedence:
// the defaults, their installed versions, then either the host
// application's dependencies or the resolved allow-list.
func (s Synthesizer) Synthesize() (*Manifest, error) {
	lookup := s.lookup()
	deps := DefaultDependencies()
	devDeps := DefaultDevDependencies()

	steps := []Step{
		Baseline(deps),
		Resolve(lookup, sortedKeys(deps)...),
	}
	if s.Policy.BundleAll {
		step, err := s.hostStep()
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	} else {
		steps = append(steps, Resolve(lookup, s.Policy.AllowList...))
	}

	return &Manifest{
		Dependencies: Fold(steps...),
		DevDependencies: Fold(
			Baseline(devDeps),
			Resolve(lookup, sortedKeys(devDeps)...),
		),
	}, nil
}

func (s Synthesizer) hostStep() (Step, error) {
	if s.Reader == nil {
		return Overlay(nil), nil
	}
	host, ok, err := LoadHostManifest(s.Reader, s.HostManifestPath)
	if err != nil {
		return nil, deployerr.NewConfigurationError(errors.Wrap(err, "could not load host application manifest"))
	}
	if !ok {
		// TODO: confirm with product whether a missing host manifest should fail the deploy.
		s.logger().Debugf("no host application manifest at %q, skipping host dependencies", s.HostManifestPath)
		return Overlay(nil), nil
	}
	s.logger().WithField("count", len(host.Dependencies)).Debug("merging host application dependencies")
	return Overlay(host.Dependencies), nil
}

func (s Synthesizer) lookup() VersionLookup {
	if s.Lookup == nil {
		return NoLookup
	}
	l := s.Lookup
	logger := s.logger()
	return LookupFunc(func(name string) (string, bool) {
		v, ok := l.InstalledVersion(name)
		if ok {
			logger.Debugf("found installed %s@%s", name, v)
		} else {
			logger.Debugf("%s is not installed", name)
		}
		return v, ok
	})
}

func (s Synthesizer) logger() *logrus.Entry {
	if s.Logger == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return s.Logger
}

func sortedKeys(d Dependencies) []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PackageJSON is the package manifest written next to the function entry point.
type PackageJSON struct {
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	Version         string            `json:"version"`
	Main            string            `json:"main"`
	Scripts         map[string]string `json:"scripts"`
	Engines         map[string]string `json:"engines"`
	Dependencies    Dependencies      `json:"dependencies"`
	DevDependencies Dependencies      `json:"devDependencies"`
	Private         bool              `json:"private"`
}

// PackageJSON returns the function package manifest for the given entry
// module and Node runtime major version.
func (m Manifest) PackageJSON(main string, nodeVersion int) PackageJSON {
	return PackageJSON{
		Name:        "functions",
		Description: "Angular Universal Application",
		Version:     "1.0.0",
		Main:        main,
		Scripts: map[string]string{
			"serve":  "firebase serve --only functions",
			"shell":  "firebase functions:shell",
			"start":  "npm run shell",
			"deploy": "firebase deploy --only functions",
			"logs":   "firebase functions:log",
		},
		Engines: map[string]string{
			"node": fmt.Sprintf("%d", nodeVersion),
		},
		Dependencies:    m.Dependencies.clone(),
		DevDependencies: m.DevDependencies.clone(),
		Private:         true,
	}
}

// Marshal encodes the manifest as indented JSON with sorted keys.
func (p PackageJSON) Marshal() ([]byte, error) {
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}
