package action

import (
	"context"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/bbfire/builders/pkg/deployerr"
	"github.com/bbfire/builders/pkg/fshost"
	"github.com/bbfire/builders/pkg/manifest"
	"github.com/bbfire/builders/pkg/nodetools"
	"github.com/bbfire/builders/pkg/workspace"
)

const productionConfiguration = "production"

// Deploy builds an Angular project and packages its output as a Cloud
// Function. Paths are relative to the Host root, which is the workspace root.
type Deploy struct {
	// Project defaults to the workspace's defaultProject.
	Project string
	// Target is the hosting target in .firebaserc. Defaults to the project name.
	Target       string
	FunctionName string
	// Prerender runs the project's prerender target instead of the
	// separate client and server builds.
	Prerender bool
	// SkipBuild packages existing build outputs.
	SkipBuild bool

	Host   fshost.Host
	Runner nodetools.CommandRunner
	Logger *logrus.Entry
}

// Run returns a result even on failure, with Success unset. Every error is
// logged before it is returned.
func (d Deploy) Run(ctx context.Context) (*Result, error) {
	result, err := d.run(ctx)
	if err != nil {
		d.logger().WithField("type", deployerr.TypeOf(err)).Error(err.Error())
		return result, err
	}
	d.logger().WithFields(logrus.Fields{
		"project": result.Project,
		"hosting": result.HostingProject,
	}).Infof("function package ready in %s", filepath.Dir(result.Paths.ServerOutputPath))
	return result, nil
}

func (d Deploy) run(ctx context.Context) (*Result, error) {
	result := &Result{Project: d.Project, Stage: StageFailed, FailedStage: StageResolving}

	ws, err := workspace.LoadWorkspace(d.Host, workspace.WorkspaceFile)
	if err != nil {
		return result, err
	}
	name, project, err := ws.Project(d.Project)
	if err != nil {
		return result, err
	}
	result.Project = name
	logger := d.logger().WithField("project", name)

	rc, err := workspace.LoadFirebaseRC(d.Host, workspace.FirebaseRCFile)
	if err != nil {
		return result, err
	}
	target := d.Target
	if target == "" {
		target = name
	}
	hosting, err := rc.ProjectForTarget(target)
	if err != nil {
		return result, err
	}
	result.HostingProject = hosting
	logger = logger.WithFields(logrus.Fields{"target": target, "hosting": hosting})

	logger.Infof("📦 Building %q", name)
	if !d.SkipBuild {
		if err := d.build(ctx, logger, name); err != nil {
			result.FailedStage = ""
			return result, err
		}
	}

	browser, err := ws.BrowserOptions(name)
	if err != nil {
		return result, err
	}
	if browser.ServiceWorker && !d.SkipBuild {
		if err := (AugmentServiceWorker{
			Project:  project,
			Browser:  browser,
			Host:     d.Host,
			Manifest: d.Runner,
			Logger:   logger,
		}).Run(ctx); err != nil {
			logger.Errorf("could not add a service worker to the client bundle: %v", err)
		}
	}

	return FunctionBuilder{
		Workspace:        ws,
		Project:          name,
		FirebaseRC:       rc,
		Target:           target,
		HostManifestPath: manifest.PackageFile,
		FunctionName:     d.FunctionName,
		Host:             d.Host,
		Lookup:           d.Runner,
		Runtime:          d.Runner,
		Logger:           logger,
	}.Build(ctx)
}

// build runs the delegated Angular CLI targets. Server builds always bundle
// their dependencies so the function only needs the packages the manifest
// lists.
func (d Deploy) build(ctx context.Context, logger *logrus.Entry, project string) error {
	type run struct {
		target  string
		options map[string]interface{}
	}
	var runs []run
	if d.Prerender {
		runs = []run{{target: project + ":" + workspace.PrerenderTarget}}
	} else {
		runs = []run{
			{target: project + ":" + workspace.BuildTarget + ":" + productionConfiguration},
			{
				target:  project + ":" + workspace.ServerTarget + ":" + productionConfiguration,
				options: map[string]interface{}{"bundleDependencies": true},
			},
		}
	}

	for _, r := range runs {
		logger.WithField("build", r.target).Info("running build target")
		if err := d.Runner.RunTarget(ctx, r.target, r.options); err != nil {
			return deployerr.NewBuildError(err)
		}
	}
	return nil
}

func (d Deploy) logger() *logrus.Entry {
	if d.Logger == nil {
		return nullLogger()
	}
	return d.Logger
}
