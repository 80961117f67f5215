package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"disklabeltool/internal/core"
)

func newScanCmd(a *app) *cobra.Command {
	var save string
	cmd := &cobra.Command{
		Use:   "scan DEVICE",
		Short: "Find and decode every disklabel on a disk",
		Long: `Detect the MBR or GPT table of DEVICE, decode a disklabel in every
FreeBSD, OpenBSD or NetBSD partition, and show the GPT partitions
each record would become. A disk without a partition table is scanned
as one container.

Examples:
  disklabeltool scan disk.img
  disklabeltool scan disk.img.zst -o json --save report.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.scan(args[0])
			if err != nil {
				return err
			}
			conv := a.convertAll(st)
			r := st.Report(conv)
			if save != "" {
				if err := core.SaveReport(save, r); err != nil {
					return err
				}
				log.Infof("report saved to %s", save)
			}
			return core.WriteReport(cmd.OutOrStdout(), r, a.cfg.Output)
		},
	}
	cmd.Flags().StringVar(&save, "save", "", "also write the report as JSON to this file (.gz, .zst, .xz, .lz4 or .bz2 compresses it)")
	return cmd
}

func (a *app) scan(path string) (*core.State, error) {
	src, err := core.OpenSource(path, a.cfg.MaxImageBytes)
	if err != nil {
		return nil, err
	}
	st := core.New(src)
	if err := st.Scan(); err != nil {
		return nil, err
	}
	log.Debugf("%s", st.Info())
	return st, nil
}

// convertAll projects every valid label with default options.
func (a *app) convertAll(st *core.State) map[*core.Label]*core.Conversion {
	conv := map[*core.Label]*core.Conversion{}
	for _, l := range st.Labels {
		if !l.Table.Valid() {
			continue
		}
		c, err := st.Convert(l, core.ConvertOptions{Alignment: a.cfg.Alignment, SectorSize: int(a.cfg.SectorSize)})
		if err != nil {
			log.Warnf("%s: %v", l, err)
			continue
		}
		conv[l] = c
	}
	return conv
}
