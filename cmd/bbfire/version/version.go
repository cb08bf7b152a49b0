package version

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bbfire/builders/pkg/version"
)

// AddCommand adds the version command to the given parent command.
func AddCommand(parent *cobra.Command) {
	parent.AddCommand(newCmd())
}

func newCmd() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Prints the version of bbfire",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Get()
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), info.Version)
				return
			}
			logrus.WithFields(logrus.Fields{
				"version":   info.Version,
				"commit":    info.GitCommit,
				"goVersion": info.GoVersion,
			}).Info("bbfire version")
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print the version number only")
	return cmd
}
