package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func newCmd(t *testing.T, args ...string) *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	AddWorkspaceFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestGetWorkspace(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BBFIRE_NPM=/opt/node/bin/npm\nBBFIRE_NG=/opt/ng\n"), 0644))
	t.Setenv(EnvNpm, "")
	os.Unsetenv(EnvNpm)
	t.Setenv(EnvNg, "")
	os.Unsetenv(EnvNg)
	t.Setenv(EnvNode, "/usr/local/bin/node")

	cmd := newCmd(t, "--workspace", dir, "--project", "shop", "--ng", "ng")
	ws, err := GetWorkspace(cmd, logrus.NewEntry(logrus.New()))
	require.NoError(t, err)
	require.Equal(t, dir, ws.Dir)
	require.Equal(t, "shop", ws.Project)

	// .env fills in unset variables only.
	require.Equal(t, "/opt/node/bin/npm", os.Getenv(EnvNpm))
	require.Equal(t, "/usr/local/bin/node", os.Getenv(EnvNode))

	for _, tt := range []struct {
		flag, env, expected string
	}{
		{flag: "npm", env: EnvNpm, expected: "/opt/node/bin/npm"},
		{flag: "node", env: EnvNode, expected: "/usr/local/bin/node"},
		{flag: "ng", env: EnvNg, expected: "ng"},
	} {
		v, err := flagOrEnv(cmd.Flags(), tt.flag, tt.env)
		require.NoError(t, err)
		require.Equal(t, tt.expected, v, tt.flag)
	}
}

func TestGetWorkspaceInvalid(t *testing.T) {
	file := filepath.Join(t.TempDir(), "angular.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0644))

	_, err := GetWorkspace(newCmd(t, "--workspace", file), logrus.NewEntry(logrus.New()))
	require.EqualError(t, err, `workspace "`+file+`" is not a directory`)

	_, err = GetWorkspace(newCmd(t, "--workspace", filepath.Join(file, "missing")), logrus.NewEntry(logrus.New()))
	require.Error(t, err)
}
