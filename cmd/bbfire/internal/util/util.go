package util

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bbfire/builders/pkg/nodetools"
)

// Environment variables consulted for toolchain defaults. Flags take
// precedence over them.
const (
	EnvNpm  = "BBFIRE_NPM"
	EnvNode = "BBFIRE_NODE"
	EnvNg   = "BBFIRE_NG"
)

// AddWorkspaceFlags registers the flags that locate the workspace and its
// Node toolchain.
func AddWorkspaceFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("workspace", "w", ".", "root directory of the Angular workspace")
	cmd.Flags().StringP("project", "p", "", "Angular project to package (defaults to the workspace's defaultProject)")
	cmd.Flags().String("npm", "", "npm executable (env: "+EnvNpm+")")
	cmd.Flags().String("node", "", "node executable (env: "+EnvNode+")")
	cmd.Flags().String("ng", "", "Angular CLI executable (env: "+EnvNg+"; defaults to node_modules/.bin/ng)")
}

// Workspace is the workspace root and toolchain selected by the flags.
type Workspace struct {
	Dir     string
	Project string
	Options []nodetools.RunnerOption
}

// GetWorkspace validates the workspace flags and loads <workspace>/.env
// into the process environment. Variables already set are not overridden.
func GetWorkspace(cmd *cobra.Command, logger *logrus.Entry) (*Workspace, error) {
	dir, err := cmd.Flags().GetString("workspace")
	if err != nil {
		return nil, err
	}
	dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if s, err := os.Stat(dir); err != nil {
		return nil, errors.Wrap(err, "invalid workspace")
	} else if !s.IsDir() {
		return nil, errors.Errorf("workspace %q is not a directory", dir)
	}

	envFile := filepath.Join(dir, ".env")
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "could not load %s", envFile)
	} else if err == nil {
		logger.Debugf("loaded environment from %s", envFile)
	}

	project, err := cmd.Flags().GetString("project")
	if err != nil {
		return nil, err
	}
	npm, err := flagOrEnv(cmd.Flags(), "npm", EnvNpm)
	if err != nil {
		return nil, err
	}
	node, err := flagOrEnv(cmd.Flags(), "node", EnvNode)
	if err != nil {
		return nil, err
	}
	ng, err := flagOrEnv(cmd.Flags(), "ng", EnvNg)
	if err != nil {
		return nil, err
	}

	return &Workspace{
		Dir:     dir,
		Project: project,
		Options: []nodetools.RunnerOption{
			nodetools.WithWorkingDir(dir),
			nodetools.WithNpm(npm),
			nodetools.WithNode(node),
			nodetools.WithNg(ng),
		},
	}, nil
}

func flagOrEnv(flags *pflag.FlagSet, flag, env string) (string, error) {
	v, err := flags.GetString(flag)
	if err != nil {
		return "", err
	}
	if flags.Changed(flag) {
		return v, nil
	}
	return os.Getenv(env), nil
}

// NewLogger returns a logger for a command, at debug level when the
// --debug flag is set.
func NewLogger(cmd *cobra.Command) *logrus.Entry {
	logger := logrus.New()
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	logger.SetOutput(cmd.ErrOrStderr())
	return logrus.NewEntry(logger)
}
