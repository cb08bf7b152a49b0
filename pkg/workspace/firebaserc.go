package workspace

import (
	"fmt"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/bbfire/builders/pkg/deployerr"
)

// FirebaseRCFile holds the Firebase project aliases and deploy targets.
const FirebaseRCFile = ".firebaserc"

// FirebaseRC is the subset of .firebaserc the deploy pipeline reads.
type FirebaseRC struct {
	Projects map[string]string `yaml:"projects,omitempty"`
	Targets  ProjectTargets    `yaml:"targets,omitempty"`
}

// ProjectTargets maps a Firebase project to its deploy targets and keeps the
// order in which projects appear in the file.
type ProjectTargets struct {
	order     []string
	byProject map[string]ProjectTarget
}

type ProjectTarget struct {
	// Hosting maps hosting target names to their sites.
	Hosting map[string]interface{} `yaml:"hosting,omitempty"`
}

func (t *ProjectTargets) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var ordered yaml.MapSlice
	if err := unmarshal(&ordered); err != nil {
		return err
	}
	byProject := map[string]ProjectTarget{}
	if err := unmarshal(&byProject); err != nil {
		return err
	}
	t.order = t.order[:0]
	for _, item := range ordered {
		t.order = append(t.order, fmt.Sprint(item.Key))
	}
	t.byProject = byProject
	return nil
}

// Projects returns the project names in file order.
func (t ProjectTargets) Projects() []string {
	return append([]string(nil), t.order...)
}

// Get returns the deploy targets of a project.
func (t ProjectTargets) Get(project string) (ProjectTarget, bool) {
	pt, ok := t.byProject[project]
	return pt, ok
}

// LoadFirebaseRC reads and decodes the .firebaserc file at path.
func LoadFirebaseRC(r Reader, path string) (*FirebaseRC, error) {
	b, err := r.ReadFile(path)
	if err != nil {
		return nil, deployerr.NewConfigurationError(errors.Wrap(err, "could not read firebase configuration"))
	}
	var rc FirebaseRC
	if err := yaml.Unmarshal(b, &rc); err != nil {
		return nil, deployerr.NewConfigurationError(errors.Wrapf(err, "could not decode %s", path))
	}
	return &rc, nil
}

// ProjectForTarget returns the first project, in file order, that declares a
// hosting target named target.
func (rc *FirebaseRC) ProjectForTarget(target string) (string, error) {
	for _, project := range rc.Targets.order {
		pt := rc.Targets.byProject[project]
		if _, ok := pt.Hosting[target]; ok {
			return project, nil
		}
	}
	return "", deployerr.NewConfigurationError(fmt.Errorf("Cannot find firebase project for hosting target %q in %s", target, FirebaseRCFile))
}
