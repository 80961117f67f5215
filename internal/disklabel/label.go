// Package disklabel decodes BSD disklabels and projects their partitions
// into GPT partition descriptors.
package disklabel

import "fmt"

// On-disk layout. Offsets are relative to the start of the label unless
// noted otherwise.
const (
	Signature uint32 = 0x82564557

	// LabelOffsetA and LabelOffsetB are the candidate label positions within
	// the read window. A is tried first.
	LabelOffsetA = 64
	LabelOffsetB = 512

	// WindowSize is the number of bytes read at the container start.
	WindowSize = 2048
	// BlockSize positions the read, whatever sector size the label declares.
	BlockSize = 512

	MaxRecords   = 64
	RecordStride = 16

	offTypeName   = 8
	offPackName   = 24
	offSectorSize = 40
	offSignature2 = 132
	offNumRecords = 138
	offRecords    = 148
	nameLen       = 16
)

// Status is the decode outcome of a Table.
type Status int

const (
	StatusUnknown Status = iota
	StatusValid
	StatusInvalid
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Record is one partition entry of a disklabel.
type Record struct {
	FirstSector uint64 // widened from the 32-bit on-disk field
	Length      uint32
	FragSize    uint32
	TypeCode    uint8
	Frag        uint8
	CylPerGroup uint16
}

// Table is a decoded disklabel and the container it was found in.
type Table struct {
	status Status

	Signature  uint32
	Signature2 uint32
	SectorSize uint32
	TypeName   string
	PackName   string

	// LabelStart is the window offset of the accepted signature.
	LabelStart int

	// FirstSector and LastSector bound the enclosing partition or disk.
	FirstSector uint64
	LastSector  uint64

	declared uint16
	relative bool
	records  []Record
}

func newTable(first, last uint64) *Table {
	return &Table{
		status:      StatusUnknown,
		SectorSize:  BlockSize,
		FirstSector: first,
		LastSector:  last,
	}
}

func (t *Table) Status() Status { return t.status }

func (t *Table) Valid() bool { return t.status == StatusValid }

// Relative reports whether record start sectors were shifted by the
// container start during decode.
func (t *Table) Relative() bool { return t.relative }

// DeclaredRecords is the raw record count read from the label, even when
// it exceeded MaxRecords.
func (t *Table) DeclaredRecords() uint16 { return t.declared }

// NumRecords is the number of decoded records, 0 unless the table is valid.
func (t *Table) NumRecords() int {
	if !t.Valid() {
		return 0
	}
	return len(t.records)
}

func (t *Table) record(i int) (Record, bool) {
	if !t.Valid() || i < 0 || i >= len(t.records) {
		return Record{}, false
	}
	return t.records[i], true
}

// TypeCode returns record i's fs type, 0 ("unused") when i is out of range.
func (t *Table) TypeCode(i int) uint8 {
	r, _ := t.record(i)
	return r.TypeCode
}

// FirstSectorOf returns record i's first sector, 0 when i is out of range.
func (t *Table) FirstSectorOf(i int) uint64 {
	r, _ := t.record(i)
	return r.FirstSector
}

// LengthOf returns record i's length in sectors, 0 when i is out of range.
func (t *Table) LengthOf(i int) uint64 {
	r, _ := t.record(i)
	return uint64(r.Length)
}

// Record returns a copy of record i.
func (t *Table) Record(i int) (Record, bool) {
	return t.record(i)
}

// Records returns a copy of all records, nil unless the table is valid.
func (t *Table) Records() []Record {
	if !t.Valid() {
		return nil
	}
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

func (t *Table) String() string {
	return fmt.Sprintf("disklabel[%d-%d] %s, %d records", t.FirstSector, t.LastSector, t.status, t.NumRecords())
}
