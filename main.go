package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var debug bool
	logger := logrus.New()

	cmd := &cobra.Command{
		Use:          "tableau",
		Short:        "Solve linear and integer programs with the tableau simplex method",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetOutput(cmd.ErrOrStderr())
			if debug {
				logger.SetLevel(logrus.DebugLevel)
			}
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "use debug log level")

	cmd.AddCommand(newSolveCmd(logger), newConvertCmd())

	return cmd
}
