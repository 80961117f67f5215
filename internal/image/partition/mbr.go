package partition

import (
	"encoding/binary"
	"fmt"
)

// MBR partition type bytes that hold a BSD disklabel.
const (
	MBRFreeBSD byte = 0xA5
	MBROpenBSD byte = 0xA6
	MBRNetBSD  byte = 0xA9
)

const (
	mbrTableOff  = 446
	mbrEntrySize = 16
	mbrEntries   = 4
)

type mbrType struct {
	name string
	bsd  bool
}

// Type bytes commonly found next to a BSD slice.
var mbrTypes = map[byte]mbrType{
	0x07:       {name: "NTFS/exFAT"},
	0x0B:       {name: "FAT32"},
	0x0C:       {name: "FAT32 LBA"},
	0x82:       {name: "Linux swap"},
	0x83:       {name: "Linux"},
	MBRFreeBSD: {name: "FreeBSD", bsd: true},
	MBROpenBSD: {name: "OpenBSD", bsd: true},
	MBRNetBSD:  {name: "NetBSD", bsd: true},
	0xEE:       {name: "GPT protective"},
	0xEF:       {name: "EFI system"},
}

// isBSDSlice reports whether an MBR type byte marks a disklabel carrier.
func isBSDSlice(code byte) bool {
	return mbrTypes[code].bsd
}

type mbrEntry struct {
	Boot byte
	Type byte
	LBA  uint32
	Sect uint32
}

func decodeMBREntry(sec []byte, slot int) mbrEntry {
	off := mbrTableOff + slot*mbrEntrySize
	return mbrEntry{
		Boot: sec[off],
		Type: sec[off+4],
		LBA:  binary.LittleEndian.Uint32(sec[off+8:]),
		Sect: binary.LittleEndian.Uint32(sec[off+12:]),
	}
}

func (e mbrEntry) typeName() string {
	if t, ok := mbrTypes[e.Type]; ok {
		return fmt.Sprintf("MBR 0x%02X %s", e.Type, t.name)
	}
	return fmt.Sprintf("MBR 0x%02X", e.Type)
}

func readMBR(sec []byte) (*Table, error) {
	if len(sec) < SectorSize {
		return nil, fmt.Errorf("short mbr")
	}
	if sec[510] != 0x55 || sec[511] != 0xAA {
		return nil, fmt.Errorf("bad mbr signature")
	}
	var ents []Entry
	for i := 0; i < mbrEntries; i++ {
		e := decodeMBREntry(sec, i)
		// a boot flag other than 0x00/0x80 means this is not a partition table
		if e.Boot != 0 && e.Boot != 0x80 {
			return nil, fmt.Errorf("mbr slot %d: bad boot flag 0x%02X", i+1, e.Boot)
		}
		if e.Type == 0 || e.Sect == 0 {
			continue
		}
		start := uint64(e.LBA)
		ents = append(ents, Entry{
			Index:    i + 1,
			StartLBA: start,
			EndLBA:   start + uint64(e.Sect) - 1,
			Type:     e.typeName(),
			TypeCode: e.Type,
			BSD:      isBSDSlice(e.Type),
			Bootable: e.Boot == 0x80,
		})
	}
	return &Table{
		Scheme:     MBR,
		SectorSize: SectorSize,
		Entries:    ents,
	}, nil
}
