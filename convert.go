package main

import (
	"github.com/spf13/cobra"

	"q.log/tableau/instance"
)

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert FILE",
		Short: "Print the problem in FILE as a YAML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := instance.Load(args[0])
			if err != nil {
				return err
			}
			out, err := instance.NewDocument(m).YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
