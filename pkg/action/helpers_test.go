package action

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bbfire/builders/pkg/fshost"
	"github.com/bbfire/builders/pkg/nodetools"
)

const testWorkspace = `{
  "version": 1,
  "defaultProject": "app",
  "projects": {
    "app": {
      "root": "",
      "architect": {
        "build": {
          "builder": "@angular-devkit/build-angular:browser",
          "options": {"outputPath": "dist/app/browser", "serviceWorker": %t}
        },
        "server": {
          "builder": "@angular-devkit/build-angular:server",
          "options": {
            "outputPath": "dist/app/server",
            "bundleDependencies": %t,
            "externalDependencies": ["express"]
          }
        }
      }
    },
    "broken": {
      "root": "projects/broken",
      "architect": {
        "build": {"builder": "@angular-devkit/build-angular:browser", "options": {"outputPath": "dist/broken/browser"}}
      }
    }
  }
}`

const testFirebaseRC = `{
  "projects": {"default": "my-site"},
  "targets": {
    "my-site": {"hosting": {"app": ["my-site"]}},
    "my-stage": {"hosting": {"stage": ["my-stage"]}}
  }
}`

const testHostManifest = `{
  "name": "app",
  "dependencies": {
    "@angular/core": "^17.0.0",
    "express": "^4.18.2",
    "firebase-functions": "^4.5.0"
  }
}`

func workspaceJSON(serviceWorker, bundleDependencies bool) string {
	return fmt.Sprintf(testWorkspace, serviceWorker, bundleDependencies)
}

type files map[string]string

func newHost(t *testing.T, fs files) fshost.Host {
	h := fshost.NewMemory()
	for name, content := range fs {
		require.NoError(t, h.WriteFile(name, []byte(content)))
	}
	return h
}

// builtOutputs are the files the Angular CLI leaves in dist/.
func builtOutputs() files {
	return files{
		"dist/app/browser/index.html": "<app-root></app-root>",
		"dist/app/browser/main.js":    "bootstrap()",
		"dist/app/server/main.js":     "exports.app = () => {}",
		"package.json":                testHostManifest,
		".firebaserc":                 testFirebaseRC,
	}
}

func requireFile(t *testing.T, h fshost.Host, name, content string) {
	t.Helper()
	b, err := h.ReadFile(name)
	require.NoError(t, err)
	require.Equal(t, content, string(b))
}

func requireExists(t *testing.T, h fshost.Host, name string, expected bool) {
	t.Helper()
	exists, err := h.Exists(name)
	require.NoError(t, err)
	require.Equal(t, expected, exists, name)
}

// fakeRunner stands in for the Node toolchain.
type fakeRunner struct {
	versions    map[string]string
	nodeVersion string
	nodeErr     error

	targets   []string
	options   []map[string]interface{}
	targetErr error
	onTarget  func(target string)
	ngswCalls []string
	ngswErr   error
}

var _ nodetools.CommandRunner = &fakeRunner{}

func (f *fakeRunner) InstalledVersion(name string) (string, bool) {
	v, ok := f.versions[name]
	return v, ok
}

func (f *fakeRunner) NodeVersion() (string, error) {
	if f.nodeErr != nil {
		return "", f.nodeErr
	}
	if f.nodeVersion == "" {
		return "v20.11.1", nil
	}
	return f.nodeVersion, nil
}

func (f *fakeRunner) RunTarget(_ context.Context, target string, options map[string]interface{}) error {
	f.targets = append(f.targets, target)
	f.options = append(f.options, options)
	if f.targetErr != nil {
		return f.targetErr
	}
	if f.onTarget != nil {
		f.onTarget(target)
	}
	return nil
}

func (f *fakeRunner) GenerateServiceWorkerManifest(_ context.Context, outputPath, configPath, baseHref string) error {
	f.ngswCalls = append(f.ngswCalls, outputPath+" "+configPath+" "+baseHref)
	return f.ngswErr
}
