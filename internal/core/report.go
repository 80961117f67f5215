package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"disklabeltool/internal/compress"
	"disklabeltool/internal/disklabel"
	"disklabeltool/internal/units"
)

type Report struct {
	Source      string        `json:"source" yaml:"source"`
	Compression string        `json:"compression" yaml:"compression"`
	Sectors     uint64        `json:"sectors" yaml:"sectors"`
	Size        string        `json:"size" yaml:"size"`
	Truncated   bool          `json:"truncated,omitempty" yaml:"truncated,omitempty"`
	Scheme      string        `json:"scheme" yaml:"scheme"`
	DiskGUID    string        `json:"disk_guid,omitempty" yaml:"disk_guid,omitempty"`
	Labels      []LabelReport `json:"labels" yaml:"labels"`
}

type LabelReport struct {
	Container     int            `json:"container" yaml:"container"`
	ContainerType string         `json:"container_type" yaml:"container_type"`
	FirstSector   uint64         `json:"first_sector" yaml:"first_sector"`
	LastSector    uint64         `json:"last_sector" yaml:"last_sector"`
	Status        string         `json:"status" yaml:"status"`
	TypeName      string         `json:"type_name,omitempty" yaml:"type_name,omitempty"`
	PackName      string         `json:"pack_name,omitempty" yaml:"pack_name,omitempty"`
	SectorSize    uint32         `json:"sector_size,omitempty" yaml:"sector_size,omitempty"`
	Relative      bool           `json:"relative,omitempty" yaml:"relative,omitempty"`
	Records       []RecordReport `json:"records,omitempty" yaml:"records,omitempty"`
}

type RecordReport struct {
	Number      int              `json:"number" yaml:"number"`
	FirstSector uint64           `json:"first_sector" yaml:"first_sector"`
	Length      uint32           `json:"length" yaml:"length"`
	TypeCode    uint8            `json:"type_code" yaml:"type_code"`
	FSType      string           `json:"fs_type" yaml:"fs_type"`
	Partition   *PartitionReport `json:"partition,omitempty" yaml:"partition,omitempty"`
}

type PartitionReport struct {
	FirstSector uint64 `json:"first_sector" yaml:"first_sector"`
	LastSector  uint64 `json:"last_sector" yaml:"last_sector"`
	Size        string `json:"size" yaml:"size"`
	TypeCode    string `json:"type_code" yaml:"type_code"`
	TypeGUID    string `json:"type_guid" yaml:"type_guid"`
	Name        string `json:"name" yaml:"name"`
	GUID        string `json:"guid" yaml:"guid"`
}

// Report snapshots the scanned state. Conversions, keyed by label, fill in
// the projected partitions.
func (s *State) Report(conv map[*Label]*Conversion) *Report {
	return s.ReportOf(s.Labels, conv)
}

// ReportOf is Report restricted to labels.
func (s *State) ReportOf(labels []*Label, conv map[*Label]*Conversion) *Report {
	r := &Report{
		Source:      s.Source.Path,
		Compression: s.Source.Compression,
		Sectors:     s.Source.Sectors(),
		Size:        units.Format(s.Source.Sectors(), disklabel.BlockSize),
		Truncated:   s.Source.Truncated,
		Scheme:      "none",
	}
	if s.Parts != nil {
		r.Scheme = s.Parts.Scheme.String()
		r.DiskGUID = s.Parts.DiskGUID()
	}
	for _, l := range labels {
		r.Labels = append(r.Labels, l.Report(conv[l]))
	}
	return r
}

// Report describes l, with the partitions projected by c when c is not nil.
func (l *Label) Report(c *Conversion) LabelReport {
	t := l.Table
	lr := LabelReport{
		Container:     l.Container.Index,
		ContainerType: l.Container.Type,
		FirstSector:   t.FirstSector,
		LastSector:    t.LastSector,
		Status:        t.Status().String(),
	}
	if !t.Valid() {
		return lr
	}
	lr.TypeName = t.TypeName
	lr.PackName = t.PackName
	lr.SectorSize = t.SectorSize
	lr.Relative = t.Relative()

	projected := map[int]*disklabel.Descriptor{}
	if c != nil {
		for _, d := range c.Descriptors {
			projected[d.Index] = d
		}
	}
	for i, rec := range t.Records() {
		rr := RecordReport{
			Number:      i + 1,
			FirstSector: rec.FirstSector,
			Length:      rec.Length,
			TypeCode:    rec.TypeCode,
			FSType:      disklabel.FSTypeName(rec.TypeCode),
		}
		if d, ok := projected[i]; ok {
			rr.Partition = &PartitionReport{
				FirstSector: d.FirstSector,
				LastSector:  d.LastSector,
				Size:        units.Format(d.Sectors(), uint64(c.SectorSize)),
				TypeCode:    fmt.Sprintf("%04X", d.Type.Code),
				TypeGUID:    string(d.Type.GUID),
				Name:        d.Name,
				GUID:        d.GUID.String(),
			}
		}
		lr.Records = append(lr.Records, rr)
	}
	return lr
}

// WriteReport renders r as table, json or yaml.
func WriteReport(w io.Writer, r *Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		enc.SetIndent(2)
		return enc.Encode(r)
	case "table", "":
		return writeTable(w, r)
	default:
		return errors.Errorf("unsupported output format: %s", format)
	}
}

func writeTable(w io.Writer, r *Report) error {
	fmt.Fprintf(w, "Disk %s: %d sectors, %s\n", r.Source, r.Sectors, r.Size)
	if r.Compression != "none" {
		fmt.Fprintf(w, "Compression: %s\n", r.Compression)
	}
	fmt.Fprintf(w, "Partition table: %s\n", r.Scheme)
	if r.DiskGUID != "" {
		fmt.Fprintf(w, "Disk identifier (GUID): %s\n", r.DiskGUID)
	}
	for _, l := range r.Labels {
		fmt.Fprintln(w)
		if l.Container == 0 {
			fmt.Fprintf(w, "Whole disk, sectors %d..%d\n", l.FirstSector, l.LastSector)
		} else {
			fmt.Fprintf(w, "Partition %d (%s), sectors %d..%d\n", l.Container, l.ContainerType, l.FirstSector, l.LastSector)
		}
		fmt.Fprintf(w, "BSD: %s\n", showState(l.Status))
		if l.Status != "valid" {
			continue
		}
		if l.TypeName != "" || l.PackName != "" {
			fmt.Fprintf(w, "Disk type %q, pack %q\n", l.TypeName, l.PackName)
		}
		if l.Relative {
			fmt.Fprintln(w, "Record start sectors are relative to the container")
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "NUMBER\tSTART\tLENGTH\tBSD TYPE\tGPT START\tGPT END\tSIZE\tCODE\tNAME\n")
		for _, rec := range l.Records {
			if p := rec.Partition; p != nil {
				fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%d\t%d\t%s\t%s\t%s\n", rec.Number, rec.FirstSector, rec.Length,
					rec.FSType, p.FirstSector, p.LastSector, p.Size, p.TypeCode, p.Name)
			} else {
				fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t-\t-\t-\t-\t-\n", rec.Number, rec.FirstSector, rec.Length, rec.FSType)
			}
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func showState(status string) string {
	switch status {
	case "valid":
		return "present"
	case "invalid":
		return "not present"
	default:
		return "unknown"
	}
}

// reportCodecs maps a report file extension to its compression.
var reportCodecs = map[string]string{
	".gz":  "gzip",
	".zst": "zstd",
	".xz":  "xz",
	".lz4": "lz4",
	".bz2": "bzip2",
}

// SaveReport writes r as indented JSON to path, creating parent directories.
// A .gz, .zst, .xz, .lz4 or .bz2 extension compresses the file.
func SaveReport(path string, r *Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := WriteReport(&buf, r, "json"); err != nil {
		return err
	}
	data := buf.Bytes()
	if kind, ok := reportCodecs[strings.ToLower(filepath.Ext(path))]; ok {
		enc, err := compress.Compress(data, kind)
		if err != nil {
			return errors.Wrapf(err, "core: %s report %s", kind, path)
		}
		data = enc
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadReport reads a report written by SaveReport, compressed or not.
func LoadReport(path string) (*Report, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	b, kind, err := compress.DecompressAuto(b)
	if err != nil {
		return nil, errors.Wrapf(err, "core: %s report %s", kind, path)
	}
	var r Report
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, errors.Wrapf(err, "core: report %s", path)
	}
	return &r, nil
}
