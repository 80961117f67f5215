package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"disklabeltool/internal/units"
)

type sizeResult struct {
	Sector uint64 `json:"sector" yaml:"sector"`
	Size   string `json:"size" yaml:"size"`
}

type formatResult struct {
	Count    uint64 `json:"count" yaml:"count"`
	UnitSize uint64 `json:"unit_size" yaml:"unit_size"`
	Size     string `json:"size" yaml:"size"`
}

func newSizeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "size",
		Short: "Parse and format sector sizes",
	}
	cmd.AddCommand(newSizeParseCmd(a), newSizeFormatCmd(a))
	return cmd
}

func newSizeParseCmd(a *app) *cobra.Command {
	var (
		low, high, def uint64
		interactive    bool
	)
	cmd := &cobra.Command{
		Use:   "parse [TEXT]",
		Short: "Turn a size such as +1G or 2048 into a sector number",
		Long: `Parse TEXT into a sector number within [--low, --high].

TEXT is a number with an optional K, M, G, T, P or E suffix (powers of
1024 bytes); a bare number counts sectors. A leading "+" counts forward
from --default (or from --low when --default equals --high), a leading
"-" counts back from --high. Empty text yields --default. Put a
negative TEXT after "--" so it is not read as a flag.

With --interactive the value is read from standard input until it is
in range.

Examples:
  disklabeltool size parse +1G --low 2048 --high 8388574
  disklabeltool size parse --low 0 --high 1000000 -- -5M
  disklabeltool size parse --low 34 --high 2097118 --interactive`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if high < low {
				return errors.Errorf("--high %d is below --low %d", high, low)
			}
			if !cmd.Flags().Changed("default") {
				def = low
			}
			ss := a.cfg.SectorSize
			var v uint64
			if interactive {
				prompt := fmt.Sprintf("Sector (%d-%d, default = %d): ", low, high, def)
				var err error
				v, err = units.PromptSector(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout(), prompt, low, high, def, ss)
				if err != nil {
					return err
				}
			} else {
				text := ""
				if len(args) > 0 {
					text = args[0]
				}
				v = units.Parse(text, ss, low, high, def)
				if v < low || v > high {
					return errors.Errorf("%q: value out of range %d..%d", text, low, high)
				}
			}
			res := sizeResult{Sector: v, Size: units.Format(v, ss)}
			return formatOutput(cmd.OutOrStdout(), a.cfg.Output, res, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%d\n", res.Sector)
				return err
			})
		},
	}
	cmd.Flags().Uint64Var(&low, "low", 0, "lowest acceptable sector")
	cmd.Flags().Uint64Var(&high, "high", 0, "highest acceptable sector")
	cmd.Flags().Uint64Var(&def, "default", 0, "value for empty input (default --low)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "prompt on standard input")
	_ = cmd.MarkFlagRequired("high")
	return cmd
}

func newSizeFormatCmd(a *app) *cobra.Command {
	var unitSize uint64
	cmd := &cobra.Command{
		Use:   "format COUNT",
		Short: "Show COUNT units as a binary size such as 1.5 GiB",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return errors.Wrapf(err, "bad count %q", args[0])
			}
			if !cmd.Flags().Changed("unit-size") {
				unitSize = a.cfg.SectorSize
			}
			res := formatResult{Count: n, UnitSize: unitSize, Size: units.Format(n, unitSize)}
			return formatOutput(cmd.OutOrStdout(), a.cfg.Output, res, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, res.Size)
				return err
			})
		},
	}
	cmd.Flags().Uint64Var(&unitSize, "unit-size", 0, "bytes per unit (default the sector size)")
	return cmd
}

