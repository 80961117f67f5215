package disklabel

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"disklabeltool/internal/endian"
)

// Decode reads the label window at firstSector from r and decodes it. The
// range [firstSector, lastSector] is the container the label describes.
// Only a failed or short read is an error; a missing or corrupt label is
// reported through the table's Status.
func Decode(r io.ReaderAt, firstSector, lastSector uint64) (*Table, error) {
	buf := make([]byte, WindowSize)
	off := int64(firstSector) * BlockSize
	n, err := r.ReadAt(buf, off)
	if n < len(buf) {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, errors.Wrapf(err, "disklabel: read %d bytes at offset %d (got %d)", len(buf), off, n)
	}
	return DecodeWindow(buf, firstSector, lastSector), nil
}

// DecodeWindow decodes a label from a WindowSize byte window read at the
// container start. Shorter windows yield an invalid table.
func DecodeWindow(buf []byte, firstSector, lastSector uint64) *Table {
	t := newTable(firstSector, lastSector)
	if len(buf) < WindowSize {
		t.status = StatusInvalid
		return t
	}

	start, ok := findLabel(buf)
	if !ok {
		log.Debugf("disklabel: no signature at offsets %d or %d", LabelOffsetA, LabelOffsetB)
		t.status = StatusInvalid
		return t
	}
	t.LabelStart = start
	t.Signature = endian.Uint32(buf, start)
	t.Signature2 = endian.Uint32(buf, start+offSignature2)
	t.SectorSize = endian.Uint32(buf, start+offSectorSize)
	t.declared = endian.Uint16(buf, start+offNumRecords)
	t.TypeName = cString(buf[start+offTypeName : start+offTypeName+nameLen])
	t.PackName = cString(buf[start+offPackName : start+offPackName+nameLen])
	log.Debugf("disklabel: signature at window offset %d, %d records, %d-byte sectors", start, t.declared, t.SectorSize)

	if t.declared > MaxRecords {
		log.Debugf("disklabel: record count %d exceeds %d", t.declared, MaxRecords)
		t.status = StatusInvalid
		return t
	}
	if t.SectorSize != BlockSize {
		log.Warnf("disklabel: label declares %d-byte sectors; positions still use %d", t.SectorSize, BlockSize)
	}

	records := make([]Record, t.declared)
	for i := range records {
		records[i] = decodeRecord(buf, start+offRecords+i*RecordStride)
	}

	// Evaluate over the untouched values, then correct everything at once.
	if usesRelativeSectors(records, lastSector) {
		log.Debugf("disklabel: relative sector numbering, shifting starts by %d", firstSector)
		for i := range records {
			records[i].FirstSector += firstSector
		}
		t.relative = true
	}

	t.records = records
	t.status = StatusValid
	return t
}

// findLabel returns the first candidate offset holding the signature and
// its echo 132 bytes later.
func findLabel(buf []byte) (int, bool) {
	for _, off := range []int{LabelOffsetA, LabelOffsetB} {
		if endian.Uint32(buf, off) == Signature && endian.Uint32(buf, off+offSignature2) == Signature {
			return off, true
		}
	}
	return 0, false
}

func decodeRecord(buf []byte, off int) Record {
	return Record{
		Length:      endian.Uint32(buf, off),
		FirstSector: uint64(endian.Uint32(buf, off+4)),
		FragSize:    endian.Uint32(buf, off+8),
		TypeCode:    buf[off+12],
		Frag:        buf[off+13],
		CylPerGroup: endian.Uint16(buf, off+14),
	}
}

// usesRelativeSectors looks for a record starting at 0 with a non-zero
// length smaller than the container end. A disk-sized record at 0 inside a
// smaller carrier partition does not count.
func usesRelativeSectors(records []Record, lastSector uint64) bool {
	for _, r := range records {
		if r.FirstSector == 0 && r.Length > 0 && uint64(r.Length) < lastSector {
			return true
		}
	}
	return false
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(bytes.TrimRight(b, " "))
}
