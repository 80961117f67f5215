package main

import (
	"github.com/spf13/cobra"

	"disklabeltool/internal/core"
)

func newReportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "report FILE",
		Short: "Render a report saved by scan --save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := core.LoadReport(args[0])
			if err != nil {
				return err
			}
			return core.WriteReport(cmd.OutOrStdout(), r, a.cfg.Output)
		},
	}
}
