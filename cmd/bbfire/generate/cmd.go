package generate

import (
	"github.com/spf13/cobra"

	"github.com/bbfire/builders/cmd/bbfire/internal/util"
	"github.com/bbfire/builders/pkg/entrypoint"
	"github.com/bbfire/builders/pkg/fshost"
	"github.com/bbfire/builders/pkg/manifest"
	"github.com/bbfire/builders/pkg/nodetools"
	"github.com/bbfire/builders/pkg/workspace"
)

func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the files of a function package",
	}
	cmd.AddCommand(
		newEntrypointCmd(),
		newPackageJSONCmd(),
	)
	return cmd
}

func newEntrypointCmd() *cobra.Command {
	var functionName string
	cmd := &cobra.Command{
		Use:   "entrypoint <serverOutputPath>",
		Args:  cobra.ExactArgs(1),
		Short: "Print the entry module of a function package",
		Long: `Print the index.js entry module that exports the server bundle at
<serverOutputPath> as an HTTPS Cloud Function.

The module is meant to be written to the parent directory of
<serverOutputPath>, after the server bundle has been relocated under it.
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Generator{
				ServerOutputPath: args[0],
				FunctionName:     functionName,
				Writer:           cmd.OutOrStdout(),
			}.Run()
		},
	}
	cmd.Flags().StringVar(&functionName, "function-name", entrypoint.DefaultFunctionName, "name of the exported HTTPS function")
	return cmd
}

func newPackageJSONCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "package-json",
		Args:  cobra.NoArgs,
		Short: "Print the package.json of a function package",
		Long: `Print the package.json of the function package for an Angular project.

Dependency versions are looked up with npm in the workspace. When the server
bundle does not bundle its dependencies, every dependency of the workspace
package.json is included; otherwise only its externalDependencies are.
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := util.NewLogger(cmd)
			ws, err := util.GetWorkspace(cmd, logger)
			if err != nil {
				return err
			}
			host := fshost.NewBounded(ws.Dir)

			w, err := workspace.LoadWorkspace(host, workspace.WorkspaceFile)
			if err != nil {
				return err
			}
			server, err := w.ServerOptions(ws.Project)
			if err != nil {
				return err
			}

			m, err := manifest.Synthesizer{
				Logger:           logger,
				Lookup:           nodetools.NewCommandRunner(logger, ws.Options...),
				Policy:           manifest.PolicyFor(bool(server.BundleDependencies), server.ExternalDependencies),
				Reader:           host,
				HostManifestPath: manifest.PackageFile,
			}.Synthesize()
			if err != nil {
				return err
			}
			b, err := m.PackageJSON(entrypoint.FileName, entrypoint.NodeVersion).Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
	util.AddWorkspaceFlags(cmd)
	return cmd
}
