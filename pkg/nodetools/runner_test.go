package nodetools

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, dir, name, body string) string {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+body), 0755))
	return p
}

func TestOptionFlags(t *testing.T) {
	require.Equal(t, []string{}, OptionFlags(nil))
	require.Equal(t, []string{
		"--bundle-dependencies=true",
		"--output-path=dist/server",
	}, OptionFlags(map[string]interface{}{
		"outputPath":         "dist/server",
		"bundleDependencies": true,
	}))
}

func TestInstalledVersion(t *testing.T) {
	dir := t.TempDir()
	npm := writeScript(t, dir, "npm", `
if [ "$2" = "firebase-admin" ]; then
  echo "app@0.0.0 $PWD"
  echo "└── firebase-admin@9.2.0"
  exit 0
fi
echo "app@0.0.0 $PWD"
echo "└── (empty)"
exit 1
`)
	r := NewCommandRunner(logrus.NewEntry(logrus.New()), WithNpm(npm), WithWorkingDir(dir))

	v, ok := r.InstalledVersion("firebase-admin")
	require.True(t, ok)
	require.Equal(t, "9.2.0", v)

	_, ok = r.InstalledVersion("firebase-functions")
	require.False(t, ok)
}

func TestInstalledVersionMissingNpm(t *testing.T) {
	r := NewCommandRunner(logrus.NewEntry(logrus.New()), WithNpm(filepath.Join(t.TempDir(), "missing-npm")))
	_, ok := r.InstalledVersion("firebase-admin")
	require.False(t, ok)
}

func TestNodeVersion(t *testing.T) {
	dir := t.TempDir()
	node := writeScript(t, dir, "node", `echo v20.11.1`)
	r := NewCommandRunner(logrus.NewEntry(logrus.New()), WithNode(node))

	v, err := r.NodeVersion()
	require.NoError(t, err)
	require.Equal(t, "v20.11.1", v)

	r = NewCommandRunner(logrus.NewEntry(logrus.New()), WithNode(filepath.Join(dir, "missing")))
	_, err = r.NodeVersion()
	require.Error(t, err)
}

func TestRunTarget(t *testing.T) {
	dir := t.TempDir()
	args := filepath.Join(dir, "args")
	ng := writeScript(t, dir, "ng", `echo "$@" > `+args+`
[ "$2" != "app:broken" ]
`)
	r := NewCommandRunner(logrus.NewEntry(logrus.New()), WithNg(ng), WithWorkingDir(dir))

	require.NoError(t, r.RunTarget(context.Background(), "app:server:production", map[string]interface{}{
		"bundleDependencies": true,
	}))
	b, err := os.ReadFile(args)
	require.NoError(t, err)
	require.Equal(t, "run app:server:production --bundle-dependencies=true\n", string(b))

	require.Error(t, r.RunTarget(context.Background(), "app:broken", nil))
}

func TestGenerateServiceWorkerManifest(t *testing.T) {
	dir := t.TempDir()
	args := filepath.Join(dir, "args")
	ngsw := writeScript(t, dir, "ngsw-config", `echo "$@" > `+args+"\n")
	r := NewCommandRunner(logrus.NewEntry(logrus.New()), WithNgswConfig(ngsw), WithWorkingDir(dir))

	require.NoError(t, r.GenerateServiceWorkerManifest(context.Background(), "dist/browser", "ngsw-config.json", ""))
	b, err := os.ReadFile(args)
	require.NoError(t, err)
	require.Equal(t, "dist/browser ngsw-config.json /\n", string(b))
}

func TestGenerateServiceWorkerManifestFailure(t *testing.T) {
	dir := t.TempDir()
	ngsw := writeScript(t, dir, "ngsw-config", `echo "hashed 100%s of assets"
exit 1
`)
	logger, hook := test.NewNullLogger()
	r := NewCommandRunner(logrus.NewEntry(logger), WithNgswConfig(ngsw), WithWorkingDir(dir))

	err := r.GenerateServiceWorkerManifest(context.Background(), "dist/browser", "ngsw-config.json", "/")
	require.Error(t, err)
	require.Contains(t, err.Error(), "hashed 100%s of assets")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	require.Equal(t, logrus.ErrorLevel, entry.Level)
	require.Contains(t, entry.Message, "hashed 100%s of assets")
	require.NotContains(t, entry.Message, "MISSING")
}

func TestLocalBinPreferred(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "node_modules", ".bin")
	require.NoError(t, os.MkdirAll(bin, 0755))
	ng := writeScript(t, bin, "ng", "exit 0\n")

	r := NewCommandRunner(logrus.NewEntry(logrus.New()), WithWorkingDir(dir))
	require.Equal(t, ng, r.config.Ng)
	require.Equal(t, DefaultNgswConfig, r.config.NgswConfig)
}
