package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"disklabeltool/internal/core"
	"disklabeltool/internal/disklabel"
)

func newShowCmd(a *app) *cobra.Command {
	var first, last uint64
	cmd := &cobra.Command{
		Use:   "show DEVICE",
		Short: "Decode the disklabel of one container",
		Long: `Decode the disklabel at --first and list its records. Without
--last the container ends at the last sector of DEVICE.

Examples:
  disklabeltool show /dev/ada0s1
  disklabeltool show disk.img --first 63 --last 4194303`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := core.OpenSource(args[0], a.cfg.MaxImageBytes)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("last") {
				last = src.LastSector()
			}
			t, err := src.ReadLabel(first, last)
			if err != nil {
				return err
			}
			l := &core.Label{Table: t}
			return formatOutput(cmd.OutOrStdout(), a.cfg.Output, l.Report(nil), func(w io.Writer) error {
				return writeLabel(w, t)
			})
		},
	}
	cmd.Flags().Uint64Var(&first, "first", 0, "first sector of the container")
	cmd.Flags().Uint64Var(&last, "last", 0, "last sector of the container")
	return cmd
}

func writeLabel(w io.Writer, t *disklabel.Table) error {
	fmt.Fprintln(w, t.ShowState())
	if !t.Valid() {
		return nil
	}
	fmt.Fprintf(w, "Container: sectors %d..%d\n", t.FirstSector, t.LastSector)
	if t.TypeName != "" || t.PackName != "" {
		fmt.Fprintf(w, "Disk type %q, pack %q\n", t.TypeName, t.PackName)
	}
	fmt.Fprintf(w, "%d records", t.NumRecords())
	if t.Relative() {
		fmt.Fprint(w, ", starts relative to the container")
	}
	fmt.Fprintln(w)
	return t.WriteTable(w)
}
