package action

import (
	"bytes"
	"context"
	"io"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/bbfire/builders/pkg/deployerr"
	"github.com/bbfire/builders/pkg/entrypoint"
	"github.com/bbfire/builders/pkg/fshost"
	"github.com/bbfire/builders/pkg/lib/semver"
	"github.com/bbfire/builders/pkg/manifest"
	"github.com/bbfire/builders/pkg/relocate"
	"github.com/bbfire/builders/pkg/workspace"
)

// Stage is a step of the function build pipeline.
type Stage string

const (
	StageResolving         Stage = "Resolving"
	StageRelocating        Stage = "Relocating"
	StageManifestWriting   Stage = "ManifestWriting"
	StageEntryPointWriting Stage = "EntryPointWriting"
	StageDone              Stage = "Done"
	StageFailed            Stage = "Failed"
)

// RuntimeVersioner reports the version of the local Node.js runtime.
type RuntimeVersioner interface {
	NodeVersion() (string, error)
}

// Result is the outcome of a pipeline run.
type Result struct {
	Success bool
	Stage   Stage
	// FailedStage is the stage that failed, if any.
	FailedStage    Stage
	Project        string
	HostingProject string
	Paths          workspace.BuildOutputPaths
}

// FunctionBuilder turns the client and server build outputs of a project into
// a Cloud Function package: it relocates the outputs, then writes
// package.json and index.js next to the server output.
type FunctionBuilder struct {
	Workspace *workspace.Workspace
	Project   string
	// FirebaseRC, when set, is searched for the hosting project serving
	// Target, which defaults to the project name.
	FirebaseRC *workspace.FirebaseRC
	Target     string
	// HostManifestPath is the host application's package.json.
	HostManifestPath string
	FunctionName     string

	Host    fshost.Host
	Lookup  manifest.VersionLookup
	Runtime RuntimeVersioner
	Logger  *logrus.Entry
}

// artifacts are everything computed before the output tree is touched.
type artifacts struct {
	hosting    string
	paths      workspace.BuildOutputPaths
	plan       relocate.Plan
	manifest   []byte
	entrypoint []byte
}

// Build runs the pipeline stages in order. The first failing stage moves
// the result to StageFailed; nothing is retried. Cancellation is only
// observed before the filesystem is touched.
func (b FunctionBuilder) Build(ctx context.Context) (*Result, error) {
	logger := b.logger()
	result := &Result{Project: b.Project}
	if err := ctx.Err(); err != nil {
		result.Stage = StageFailed
		result.FailedStage = StageResolving
		return result, err
	}

	if err := b.checkRuntime(); err != nil {
		logger.Warn(err.Error())
	}

	stages := []struct {
		stage Stage
		run   func(*artifacts) error
	}{
		{StageResolving, func(a *artifacts) error { return b.resolve(a) }},
		{StageRelocating, func(a *artifacts) error {
			return relocate.NewRelocator(logger, b.Host).Apply(a.plan)
		}},
		{StageManifestWriting, func(a *artifacts) error {
			return b.write(filepath.Join(filepath.Dir(filepath.Clean(a.paths.ServerOutputPath)), manifest.PackageFile), a.manifest)
		}},
		{StageEntryPointWriting, func(a *artifacts) error {
			return b.write(entrypoint.Path(a.paths.ServerOutputPath), a.entrypoint)
		}},
	}

	var a artifacts
	for _, s := range stages {
		result.Stage = s.stage
		logger.WithField("stage", s.stage).Debug("entering stage")
		if err := s.run(&a); err != nil {
			result.FailedStage = s.stage
			result.Stage = StageFailed
			return result, err
		}
		result.Paths = a.paths
		result.HostingProject = a.hosting
	}
	result.Stage = StageDone
	result.Success = true
	return result, nil
}

// resolve computes the relocation plan and the generated files. It does
// not modify the filesystem, so configuration errors abort the pipeline
// before any mutation.
func (b FunctionBuilder) resolve(a *artifacts) error {
	if b.Workspace == nil {
		return deployerr.NewConfigurationError(errors.New("no workspace configuration loaded"))
	}
	paths, err := b.Workspace.OutputPaths(b.Project)
	if err != nil {
		return err
	}
	var hosting string
	if b.FirebaseRC != nil {
		target := b.Target
		if target == "" {
			target, _, err = b.Workspace.Project(b.Project)
			if err != nil {
				return err
			}
		}
		if hosting, err = b.FirebaseRC.ProjectForTarget(target); err != nil {
			return err
		}
	}
	server, err := b.Workspace.ServerOptions(b.Project)
	if err != nil {
		return err
	}
	plan, err := relocate.NewPlan(paths)
	if err != nil {
		return err
	}

	policy := manifest.PolicyFor(bool(server.BundleDependencies), server.ExternalDependencies)
	b.logger().WithField("policy", policy.String()).Debug("synthesizing function dependencies")
	m, err := manifest.Synthesizer{
		Logger:           b.logger(),
		Lookup:           b.Lookup,
		Policy:           policy,
		Reader:           b.Host,
		HostManifestPath: b.hostManifestPath(),
	}.Synthesize()
	if err != nil {
		return err
	}
	pkg, err := m.PackageJSON(entrypoint.FileName, entrypoint.NodeVersion).Marshal()
	if err != nil {
		return errors.Wrap(err, "error encoding function package manifest")
	}

	var index bytes.Buffer
	if err := (entrypoint.Generator{
		ServerOutputPath: paths.ServerOutputPath,
		FunctionName:     b.FunctionName,
		Writer:           &index,
	}).Run(); err != nil {
		return deployerr.NewConfigurationError(err)
	}

	*a = artifacts{
		hosting:    hosting,
		paths:      paths,
		plan:       plan,
		manifest:   pkg,
		entrypoint: index.Bytes(),
	}
	return nil
}

func (b FunctionBuilder) write(name string, content []byte) error {
	b.logger().Infof("writing %s", name)
	if err := b.Host.WriteFile(name, content); err != nil {
		return deployerr.NewFilesystemError(err)
	}
	return nil
}

// checkRuntime returns a version mismatch warning when the local Node.js
// runtime is not the one Cloud Functions will run the package with.
func (b FunctionBuilder) checkRuntime() error {
	if b.Runtime == nil {
		return nil
	}
	expected := semver.MajorRange(entrypoint.NodeVersion)
	v, err := b.Runtime.NodeVersion()
	if err != nil {
		return deployerr.NewVersionMismatchWarning(errors.Wrapf(err, "could not check your Node.js version against the Firebase Functions runtime (%d)", entrypoint.NodeVersion))
	}
	ok, err := semver.Satisfies(v, expected)
	if err != nil {
		return deployerr.NewVersionMismatchWarning(err)
	}
	if !ok {
		return deployerr.NewVersionMismatchWarning(errors.Errorf("⚠️ Your Node.js version (%s) does not match the Firebase Functions runtime (%d).", v, entrypoint.NodeVersion))
	}
	return nil
}

func (b FunctionBuilder) hostManifestPath() string {
	if b.HostManifestPath == "" {
		return manifest.PackageFile
	}
	return b.HostManifestPath
}

func (b FunctionBuilder) logger() *logrus.Entry {
	if b.Logger == nil {
		return nullLogger()
	}
	return b.Logger
}

func nullLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}
