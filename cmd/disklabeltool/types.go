package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"disklabeltool/internal/disklabel"
)

type typeRow struct {
	Code string `json:"code" yaml:"code"`
	GUID string `json:"guid" yaml:"guid"`
	Name string `json:"name" yaml:"name"`
}

func newTypesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the GPT type codes accepted by --typecode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows []typeRow
			for _, t := range disklabel.KnownTypes() {
				rows = append(rows, typeRow{Code: fmt.Sprintf("%04X", t.Code), GUID: string(t.GUID), Name: t.Name})
			}
			return formatOutput(cmd.OutOrStdout(), a.cfg.Output, rows, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintf(tw, "CODE\tNAME\tGUID\n")
				for _, r := range rows {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Code, r.Name, r.GUID)
				}
				return tw.Flush()
			})
		},
	}
}
