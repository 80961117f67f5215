package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"disklabeltool/internal/config"
)

// app carries settings shared by every command.
type app struct {
	v   *viper.Viper
	cfg *config.Config

	configPath string
	verbose    bool
	quiet      bool
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	root := &cobra.Command{
		Use:   "disklabeltool",
		Short: "Inspect BSD disklabels and convert them to GPT partitions",
		Long: `disklabeltool reads BSD disklabels from raw disks, partitions, or
disk images (optionally gzip, zstd, lz4, xz or bzip2 compressed) and
projects their records onto GPT partition entries.

Nothing is ever written to the source.

Commands:
  show      Decode the disklabel of one container
  scan      Find and decode every disklabel on a disk
  report    Render a report saved by scan --save
  convert   Project a disklabel onto GPT partitions
  types     List the GPT type codes accepted by --typecode
  size      Parse and format sector sizes
  browse    Interactive label browser`,
		Version:       "0.3.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default disklabeltool.yaml in ., $HOME/.disklabeltool, /etc/disklabeltool)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVarP(&a.quiet, "quiet", "q", false, "log errors only")
	pf.StringP("output", "o", "table", "output format (table, json, yaml)")
	pf.Uint64("sector-size", 512, "sector size in bytes for size arithmetic")
	pf.Int64("max-image-bytes", 64<<20, "cap on bytes decompressed from a compressed image")
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")
	_ = a.v.BindPFlag("output", pf.Lookup("output"))
	_ = a.v.BindPFlag("sector_size", pf.Lookup("sector-size"))
	_ = a.v.BindPFlag("max_image_bytes", pf.Lookup("max-image-bytes"))

	root.AddCommand(
		newShowCmd(a),
		newScanCmd(a),
		newReportCmd(a),
		newConvertCmd(a),
		newTypesCmd(a),
		newSizeCmd(a),
		newBrowseCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	lvl, _ := log.ParseLevel(cfg.LogLevel)
	switch {
	case a.verbose:
		lvl = log.DebugLevel
	case a.quiet:
		lvl = log.ErrorLevel
	}
	log.SetLevel(lvl)
	log.Debugf("config: %+v", *cfg)
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
