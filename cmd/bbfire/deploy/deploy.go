package deploy

import (
	"github.com/spf13/cobra"

	"github.com/bbfire/builders/cmd/bbfire/internal/util"
	"github.com/bbfire/builders/pkg/action"
	"github.com/bbfire/builders/pkg/entrypoint"
	"github.com/bbfire/builders/pkg/fshost"
	"github.com/bbfire/builders/pkg/nodetools"
)

type deploy struct {
	target       string
	functionName string
	prerender    bool
	skipBuild    bool
}

func NewCmd() *cobra.Command {
	var d deploy
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Build an Angular project and package it as a Cloud Function",
		Long: `Build the client and server bundles of an Angular project and restructure
the output so it deploys as a Firebase Cloud Function.

The client bundle is moved under a copy of its own output path, next to the
server bundle, and its index.html is renamed to index.original.html so the
hosting rewrite reaches the function. A package.json and an index.js entry
module are written to the parent directory of the server output path.

The hosting project is looked up in .firebaserc by hosting target, which
defaults to the project name.
`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := util.NewLogger(cmd)
			ws, err := util.GetWorkspace(cmd, logger)
			if err != nil {
				logger.Error(err.Error())
				return err
			}

			// Deploy logs its own failures.
			_, err = action.Deploy{
				Project:      ws.Project,
				Target:       d.target,
				FunctionName: d.functionName,
				Prerender:    d.prerender,
				SkipBuild:    d.skipBuild,
				Host:         fshost.NewOS(ws.Dir),
				Runner:       nodetools.NewCommandRunner(logger, ws.Options...),
				Logger:       logger,
			}.Run(cmd.Context())
			return err
		},
	}

	util.AddWorkspaceFlags(cmd)
	cmd.Flags().StringVarP(&d.target, "target", "t", "", "hosting target in .firebaserc (defaults to the project name)")
	cmd.Flags().StringVar(&d.functionName, "function-name", entrypoint.DefaultFunctionName, "name of the exported HTTPS function")
	cmd.Flags().BoolVar(&d.prerender, "prerender", false, "run the project's prerender target instead of the build and server targets")
	cmd.Flags().BoolVar(&d.skipBuild, "skip-build", false, "package existing build outputs without running the Angular CLI")
	cmd.MarkFlagsMutuallyExclusive("prerender", "skip-build")
	return cmd
}
