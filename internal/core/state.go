package core

import (
	"fmt"
	"slices"

	"github.com/diskfs/go-diskfs/partition/gpt"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"disklabeltool/internal/common"
	"disklabeltool/internal/disklabel"
	"disklabeltool/internal/image/partition"
)

// Label is a disklabel decoded from one container of a source.
type Label struct {
	// Container is the enclosing table entry. Index 0 means the whole
	// source was used as the container.
	Container partition.Entry
	Table     *disklabel.Table
}

func (l *Label) String() string {
	if l.Container.Index == 0 {
		return fmt.Sprintf("whole disk [%d..%d]", l.Table.FirstSector, l.Table.LastSector)
	}
	return fmt.Sprintf("partition %d (%s) [%d..%d]", l.Container.Index, l.Container.Type,
		l.Table.FirstSector, l.Table.LastSector)
}

type State struct {
	Source *Source
	Parts  *partition.Table
	Labels []*Label
}

func New(src *Source) *State {
	return &State{Source: src}
}

func (s *State) Info() string {
	scheme := partition.None
	if s.Parts != nil {
		scheme = s.Parts.Scheme
	}
	return fmt.Sprintf("Source: %s (%s), %d sectors, table %s, %d label(s)",
		s.Source.Path, s.Source.Compression, s.Source.Sectors(), scheme, len(s.Labels))
}

// Scan detects the enclosing partition table and decodes a label in every
// container that may hold one. Without containers the whole source is the
// container.
func (s *State) Scan() error {
	pt, err := s.Source.Partitions()
	switch {
	case err == nil:
		s.Parts = pt
	case errors.Is(err, partition.ErrNoPartitionTable):
		s.Parts = nil
	default:
		return err
	}

	var containers []partition.Entry
	if s.Parts != nil {
		containers = s.Parts.LabelContainers()
	}
	if len(containers) == 0 {
		containers = []partition.Entry{{StartLBA: 0, EndLBA: s.Source.LastSector(), Type: "whole disk"}}
	}

	s.Labels = s.Labels[:0]
	for _, c := range containers {
		t, err := s.Source.ReadLabel(c.StartLBA, c.EndLBA)
		if err != nil {
			return errors.Wrapf(err, "core: container %d", c.Index)
		}
		log.Debugf("core: container %d [%d..%d]: %s", c.Index, c.StartLBA, c.EndLBA, t.ShowState())
		s.Labels = append(s.Labels, &Label{Container: c, Table: t})
	}
	return nil
}

// Find returns the label whose container matches idxOrName. An empty
// selector picks the first valid label.
func (s *State) Find(idxOrName string) (*Label, error) {
	if idxOrName == "" {
		for _, l := range s.Labels {
			if l.Table.Valid() {
				return l, nil
			}
		}
		return nil, errors.Wrap(common.ErrNotFound, "no valid disklabel")
	}
	if s.Parts == nil {
		return nil, errors.Wrapf(common.ErrNotFound, "container %q: no partition table", idxOrName)
	}
	e, ok := s.Parts.Find(idxOrName)
	if !ok {
		return nil, errors.Wrapf(common.ErrNotFound, "container %q", idxOrName)
	}
	for _, l := range s.Labels {
		if l.Container.Index == e.Index {
			return l, nil
		}
	}
	// not a recognized container type; decode it anyway
	t, err := s.Source.ReadLabel(e.StartLBA, e.EndLBA)
	if err != nil {
		return nil, err
	}
	return &Label{Container: e, Table: t}, nil
}

// ConvertOptions tune Convert.
type ConvertOptions struct {
	// Overrides maps a 1-based record number to a modern type code.
	Overrides map[int]uint16
	// Alignment in sectors; 0 or 1 disables the check.
	Alignment uint64
	// SectorSize of the produced GPT table and of reported sizes; 0 means 512.
	SectorSize int
}

// Conversion is the outcome of projecting one label.
type Conversion struct {
	Descriptors []*disklabel.Descriptor
	// Skipped lists 1-based record numbers that were not projected.
	Skipped []int
	// Misaligned lists 1-based record numbers whose start is not aligned.
	Misaligned []int
	SectorSize int
	GPT        *gpt.Table
}

// Convert projects every record of l into GPT descriptors.
func (s *State) Convert(l *Label, opts ConvertOptions) (*Conversion, error) {
	if !l.Table.Valid() {
		return nil, errors.Wrapf(common.ErrNotFound, "no disklabel in %s", l)
	}
	if opts.SectorSize == 0 {
		opts.SectorSize = disklabel.BlockSize
	}
	for n, code := range opts.Overrides {
		if n < 1 || n > l.Table.NumRecords() {
			return nil, errors.Wrapf(common.ErrNotFound, "record %d", n)
		}
		if _, ok := disklabel.TypeByCode(code); !ok {
			return nil, errors.Wrapf(common.ErrUnsupported, "type code %04x", code)
		}
	}

	c := &Conversion{SectorSize: opts.SectorSize}
	for i := 0; i < l.Table.NumRecords(); i++ {
		d, ok := l.Table.Project(i)
		if !ok {
			log.Debugf("core: record %d not projected", i+1)
			c.Skipped = append(c.Skipped, i+1)
			continue
		}
		if code, ok := opts.Overrides[i+1]; ok {
			pt, _ := disklabel.TypeByCode(code)
			d.SetType(pt)
		}
		if opts.Alignment > 1 && !common.IsAligned(d.FirstSector, opts.Alignment) {
			log.Warnf("core: partition %d at sector %d is not aligned on %d-sector boundary (next %d)",
				i+1, d.FirstSector, opts.Alignment, common.AlignUp(d.FirstSector, opts.Alignment))
			c.Misaligned = append(c.Misaligned, i+1)
		}
		c.Descriptors = append(c.Descriptors, d)
	}
	for n := range opts.Overrides {
		if slices.Contains(c.Skipped, n) {
			log.Warnf("core: type override for record %d ignored, record was not projected", n)
		}
	}
	c.GPT = disklabel.BuildGPT(c.Descriptors, opts.SectorSize)
	return c, nil
}
