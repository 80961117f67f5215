package main

import (
	"github.com/spf13/cobra"

	"disklabeltool/internal/tui/browse"
)

func newBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse DEVICE",
		Short: "Interactive label browser",
		Long: `Scan DEVICE and browse its disklabels, records and the GPT partitions
they convert to. F3 shows the raw label window, F4 opens a sector
calculator bounded by the selected container.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.scan(args[0])
			if err != nil {
				return err
			}
			return browse.Run(st, a.convertAll(st), a.cfg.SectorSize)
		},
	}
}
