package disklabel

import "disklabeltool/internal/endian"

type rawRecord struct {
	first  uint32
	length uint32
	fstype uint8
}

type labelSpec struct {
	offset     int
	echo       bool
	sectorSize uint32
	count      int // -1 uses len(records)
	typeName   string
	packName   string
	records    []rawRecord
}

// buildWindow lays out a disklabel in a WindowSize buffer.
func buildWindow(s labelSpec) []byte {
	buf := make([]byte, WindowSize)
	writeLabel(buf, s)
	return buf
}

func writeLabel(buf []byte, s labelSpec) {
	off := s.offset
	endian.PutUint32(buf, off, Signature)
	if s.echo {
		endian.PutUint32(buf, off+offSignature2, Signature)
	}
	ss := s.sectorSize
	if ss == 0 {
		ss = 512
	}
	endian.PutUint32(buf, off+offSectorSize, ss)
	copy(buf[off+offTypeName:off+offTypeName+nameLen], s.typeName)
	copy(buf[off+offPackName:off+offPackName+nameLen], s.packName)
	count := s.count
	if count < 0 {
		count = len(s.records)
	}
	endian.PutUint16(buf, off+offNumRecords, uint16(count))
	for i, r := range s.records {
		ro := off + offRecords + i*RecordStride
		endian.PutUint32(buf, ro, r.length)
		endian.PutUint32(buf, ro+4, r.first)
		buf[ro+12] = r.fstype
	}
}
