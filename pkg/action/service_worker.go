package action

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/bbfire/builders/pkg/fshost"
	"github.com/bbfire/builders/pkg/workspace"
)

const (
	defaultNgswConfig = "ngsw-config.json"
	serviceWorkerDir  = "node_modules/@angular/service-worker"
)

// workerScripts maps the scripts shipped by @angular/service-worker to the
// names they are published under in the client bundle.
var workerScripts = []struct{ src, dst string }{
	{"ngsw-worker.js", "ngsw-worker.js"},
	{"safety-worker.js", "safety-worker.js"},
	{"safety-worker.js", "worker-basic.min.js"},
}

// ServiceWorkerManifestGenerator writes ngsw.json for a client bundle.
type ServiceWorkerManifestGenerator interface {
	GenerateServiceWorkerManifest(ctx context.Context, outputPath, configPath, baseHref string) error
}

// AugmentServiceWorker adds the Angular service worker to a client bundle
// built without one: it generates the ngsw.json manifest and copies the
// worker scripts next to it.
type AugmentServiceWorker struct {
	Project  workspace.Project
	Browser  workspace.BrowserOptions
	Host     fshost.Host
	Manifest ServiceWorkerManifestGenerator
	Logger   *logrus.Entry
}

func (a AugmentServiceWorker) Run(ctx context.Context) error {
	logger := a.Logger
	if logger == nil {
		logger = nullLogger()
	}
	if a.Browser.OutputPath == "" {
		return errors.New("client bundle has no output path")
	}

	config := a.Browser.NgswConfigPath
	if config == "" {
		config = filepath.Join(a.Project.Root, defaultNgswConfig)
	}
	logger.WithField("path", a.Browser.OutputPath).Info("generating service worker manifest")
	if err := a.Manifest.GenerateServiceWorkerManifest(ctx, a.Browser.OutputPath, config, a.Browser.BaseHref); err != nil {
		return err
	}

	for _, s := range workerScripts {
		b, err := a.Host.ReadFile(filepath.Join(serviceWorkerDir, s.src))
		if err != nil {
			return errors.Wrapf(err, "error reading %s", s.src)
		}
		if err := a.Host.WriteFile(filepath.Join(a.Browser.OutputPath, s.dst), b); err != nil {
			return errors.Wrapf(err, "error writing %s", s.dst)
		}
	}
	return nil
}
