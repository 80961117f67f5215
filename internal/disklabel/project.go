package disklabel

import (
	"github.com/diskfs/go-diskfs/partition/gpt"
	"github.com/google/uuid"
)

// newGUID is swapped out in tests.
var newGUID = uuid.New

// Descriptor is a GPT partition produced from a disklabel record. The caller
// owns it.
type Descriptor struct {
	Index       int
	FirstSector uint64
	LastSector  uint64
	GUID        uuid.UUID
	Attributes  uint64
	Type        PartType
	Name        string
}

// Sectors is the inclusive length of the partition.
func (d *Descriptor) Sectors() uint64 {
	return d.LastSector - d.FirstSector + 1
}

// SetType replaces the type and the name that follows it.
func (d *Descriptor) SetType(t PartType) {
	d.Type = t
	d.Name = t.Name
}

// GPT returns the descriptor as a go-diskfs partition entry.
func (d *Descriptor) GPT(sectorSize int) *gpt.Partition {
	return &gpt.Partition{
		Start:      d.FirstSector,
		End:        d.LastSector,
		Size:       d.Sectors() * uint64(sectorSize),
		Type:       d.Type.GUID,
		Name:       d.Name,
		GUID:       d.GUID.String(),
		Attributes: d.Attributes,
	}
}

// Project converts record i into a GPT descriptor. It returns false when the
// table is not valid, i is out of range, the record falls outside the
// container or is inverted, the record is a whole-container placeholder of
// type "unused", or the record ends at sector 0.
func (t *Table) Project(i int) (*Descriptor, bool) {
	r, ok := t.record(i)
	if !ok {
		return nil, false
	}

	first := r.FirstSector
	end := first + uint64(r.Length)
	// a zero-length record at 0 would otherwise wrap
	if end > 0 {
		end--
	}

	if first < t.FirstSector || end > t.LastSector || first > end {
		return nil, false
	}
	if first <= t.FirstSector && end >= t.LastSector && r.TypeCode == 0 {
		return nil, false
	}
	if end == 0 {
		return nil, false
	}

	d := &Descriptor{
		Index:       i,
		FirstSector: first,
		LastSector:  end,
		GUID:        newGUID(),
	}
	d.SetType(MapType(r.TypeCode))
	return d, true
}

// ProjectAll projects every record and drops the rejected ones.
func (t *Table) ProjectAll() []*Descriptor {
	var out []*Descriptor
	for i := 0; i < t.NumRecords(); i++ {
		if d, ok := t.Project(i); ok {
			out = append(out, d)
		}
	}
	return out
}

// BuildGPT assembles an in-memory GPT table from descriptors. Nothing is
// written; the table only carries the entries for inspection.
func BuildGPT(descs []*Descriptor, sectorSize int) *gpt.Table {
	parts := make([]*gpt.Partition, 0, len(descs))
	for _, d := range descs {
		parts = append(parts, d.GPT(sectorSize))
	}
	return &gpt.Table{
		Partitions:         parts,
		LogicalSectorSize:  sectorSize,
		PhysicalSectorSize: sectorSize,
		ProtectiveMBR:      true,
	}
}
