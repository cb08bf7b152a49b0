package root

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bbfire/builders/cmd/bbfire/deploy"
	"github.com/bbfire/builders/cmd/bbfire/generate"
	"github.com/bbfire/builders/cmd/bbfire/resolve"
	"github.com/bbfire/builders/cmd/bbfire/version"
)

func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bbfire",
		Short: "package Angular builds as Firebase Cloud Functions",
		Long: `CLI to turn the client and server build outputs of an Angular workspace
into a directory tree that deploys as a Firebase Cloud Function`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
	}

	cmd.AddCommand(deploy.NewCmd(), generate.NewCmd(), resolve.NewCmd())
	version.AddCommand(cmd)

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	if err := cmd.PersistentFlags().MarkHidden("debug"); err != nil {
		logrus.Panic(err.Error())
	}

	return cmd
}
