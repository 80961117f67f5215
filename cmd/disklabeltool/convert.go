package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"disklabeltool/internal/common"
	"disklabeltool/internal/core"
)

func newConvertCmd(a *app) *cobra.Command {
	var (
		container string
		first     uint64
		last      uint64
		typecodes []string
	)
	cmd := &cobra.Command{
		Use:   "convert DEVICE",
		Short: "Project a disklabel onto GPT partitions",
		Long: `Project every record of one disklabel onto a GPT partition entry and
report the result. The container is picked with --container (partition
number or GPT name), given explicitly with --first/--last, or defaults
to the first partition holding a valid disklabel.

--typecode N:HEX replaces the type of record N (1-based) with a GPT type
code from 'disklabeltool types'. It may be repeated.

Examples:
  disklabeltool convert disk.img
  disklabeltool convert disk.img --container 2 --typecode 1:8300 --typecode 2:8200
  disklabeltool convert /dev/sda --first 2048 --last 1050623 --alignment 2048`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides, err := parseTypecodes(typecodes)
			if err != nil {
				return err
			}
			explicit := cmd.Flags().Changed("first") || cmd.Flags().Changed("last")
			if explicit && container != "" {
				return errors.New("--container cannot be combined with --first/--last")
			}

			var st *core.State
			var l *core.Label
			if explicit {
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
				st = core.New(src)
				l = &core.Label{Table: t}
				st.Labels = []*core.Label{l}
			} else {
				if st, err = a.scan(args[0]); err != nil {
					return err
				}
				if l, err = st.Find(container); err != nil {
					return err
				}
			}

			c, err := st.Convert(l, core.ConvertOptions{Overrides: overrides, Alignment: a.cfg.Alignment, SectorSize: int(a.cfg.SectorSize)})
			if err != nil {
				return err
			}
			r := st.ReportOf([]*core.Label{l}, map[*core.Label]*core.Conversion{l: c})
			return formatOutput(cmd.OutOrStdout(), a.cfg.Output, r, func(w io.Writer) error {
				if err := core.WriteReport(w, r, "table"); err != nil {
					return err
				}
				writeConversionNotes(w, c, a.cfg.Alignment)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&container, "container", "c", "", "partition number or GPT name holding the disklabel")
	cmd.Flags().Uint64Var(&first, "first", 0, "first sector of the container")
	cmd.Flags().Uint64Var(&last, "last", 0, "last sector of the container")
	cmd.Flags().StringArrayVarP(&typecodes, "typecode", "t", nil, "override a record type, N:HEX")
	cmd.Flags().Uint64("alignment", 8, "report partitions not starting on this sector boundary")
	_ = a.v.BindPFlag("alignment", cmd.Flags().Lookup("alignment"))
	return cmd
}

// parseTypecodes turns "N:HEX" arguments into record overrides.
func parseTypecodes(args []string) (map[int]uint16, error) {
	out := map[int]uint16{}
	for _, arg := range args {
		n := common.FieldUint(arg, 1)
		code, ok := common.ParseHex16(common.Field(arg, 2))
		if n == 0 || !ok {
			return nil, errors.Errorf("bad --typecode %q, want N:HEX", arg)
		}
		out[int(n)] = code
	}
	return out, nil
}

func writeConversionNotes(w io.Writer, c *core.Conversion, alignment uint64) {
	fmt.Fprintf(w, "\n%d partition(s) converted", len(c.Descriptors))
	if len(c.Skipped) > 0 {
		fmt.Fprintf(w, ", record(s) %v skipped", c.Skipped)
	}
	fmt.Fprintln(w)
	for _, n := range c.Misaligned {
		fmt.Fprintf(w, "Partition %d is not aligned on a %d-sector boundary\n", n, alignment)
	}
}
