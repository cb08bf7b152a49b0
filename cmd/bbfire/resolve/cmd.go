package resolve

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/bbfire/builders/cmd/bbfire/internal/util"
	"github.com/bbfire/builders/pkg/fshost"
	"github.com/bbfire/builders/pkg/manifest"
	"github.com/bbfire/builders/pkg/relocate"
	"github.com/bbfire/builders/pkg/workspace"
)

// Resolution is everything a deploy would do, computed without touching
// the output tree.
type Resolution struct {
	Project          string          `json:"project"`
	Target           string          `json:"target"`
	HostingProject   string          `json:"hostingProject"`
	StaticOutputPath string          `json:"staticOutputPath"`
	ServerOutputPath string          `json:"serverOutputPath"`
	FunctionDir      string          `json:"functionDir"`
	Policy           string          `json:"dependencyPolicy"`
	Moves            []relocate.Move `json:"moves"`
}

func NewCmd() *cobra.Command {
	var (
		target string
		output string
	)
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the output paths and hosting project a deploy would use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var write func(Resolution, io.Writer) error
			switch output {
			case "yaml":
				write = writeYAML
			case "json":
				write = writeJSON
			default:
				return fmt.Errorf("invalid --output value %q, expected (json|yaml)", output)
			}

			logger := util.NewLogger(cmd)
			ws, err := util.GetWorkspace(cmd, logger)
			if err != nil {
				return err
			}
			r, err := Resolve(fshost.NewBounded(ws.Dir), ws.Project, target)
			if err != nil {
				return err
			}
			return write(*r, cmd.OutOrStdout())
		},
	}
	util.AddWorkspaceFlags(cmd)
	cmd.Flags().StringVarP(&target, "target", "t", "", "hosting target in .firebaserc (defaults to the project name)")
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "output format (json|yaml)")
	return cmd
}

// Resolve reads the workspace and firebase configuration through r.
func Resolve(r workspace.Reader, project, target string) (*Resolution, error) {
	ws, err := workspace.LoadWorkspace(r, workspace.WorkspaceFile)
	if err != nil {
		return nil, err
	}
	name, _, err := ws.Project(project)
	if err != nil {
		return nil, err
	}
	paths, err := ws.OutputPaths(name)
	if err != nil {
		return nil, err
	}
	server, err := ws.ServerOptions(name)
	if err != nil {
		return nil, err
	}
	plan, err := relocate.NewPlan(paths)
	if err != nil {
		return nil, err
	}

	rc, err := workspace.LoadFirebaseRC(r, workspace.FirebaseRCFile)
	if err != nil {
		return nil, err
	}
	if target == "" {
		target = name
	}
	hosting, err := rc.ProjectForTarget(target)
	if err != nil {
		return nil, err
	}

	return &Resolution{
		Project:          name,
		Target:           target,
		HostingProject:   hosting,
		StaticOutputPath: paths.StaticOutputPath,
		ServerOutputPath: paths.ServerOutputPath,
		FunctionDir:      filepath.Dir(paths.ServerOutputPath),
		Policy:           manifest.PolicyFor(bool(server.BundleDependencies), server.ExternalDependencies).String(),
		Moves:            plan.Moves,
	}, nil
}

func writeJSON(r Resolution, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func writeYAML(r Resolution, w io.Writer) error {
	b, err := yaml.Marshal(r)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
