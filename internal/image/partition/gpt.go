package partition

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf16"

	log "github.com/sirupsen/logrus"

	"disklabeltool/internal/common"
)

// FreeBSDLabelGUID marks a GPT partition carrying a BSD disklabel.
const FreeBSDLabelGUID = "516E7CB4-6ECF-11D6-8FF8-00022D09712B"

const (
	gptEntryMin    = 128
	gptMaxArrayLen = 1 << 20
)

type gptHeader struct {
	Sig               [8]byte
	Rev               uint32
	HdrSize           uint32
	HdrCRC            uint32
	_                 uint32
	CurrentLBA        uint64
	BackupLBA         uint64
	FirstUsableLBA    uint64
	LastUsableLBA     uint64
	DiskGUID          [16]byte
	PartEntryLBA      uint64
	NumPartEntries    uint32
	PartEntrySize     uint32
	PartEntryArrayCRC uint32
}

type gptEntry struct {
	TypeGUID  [16]byte
	PartGUID  [16]byte
	FirstLBA  uint64
	LastLBA   uint64
	Attrs     uint64
	NameUTF16 [72]byte
}

func readGPT(r io.ReaderAt) (*Table, error) {
	sec := make([]byte, SectorSize)
	if _, err := r.ReadAt(sec, SectorSize); err != nil {
		return nil, err
	}
	var h gptHeader
	if err := binary.Read(bytes.NewReader(sec), binary.LittleEndian, &h); err != nil {
		return nil, err
	}
	if string(h.Sig[:]) != "EFI PART" {
		return nil, errors.New("no gpt sig")
	}
	if h.HdrSize >= 92 && h.HdrSize <= SectorSize {
		hb := append([]byte(nil), sec[:h.HdrSize]...)
		putLE32(hb[16:20], 0)
		if got := crc32LE(hb); got != h.HdrCRC {
			log.Warnf("gpt: header crc mismatch (stored %08x, computed %08x)", h.HdrCRC, got)
		}
	}
	if h.PartEntrySize < gptEntryMin {
		return nil, fmt.Errorf("gpt: entry size %d too small: %w", h.PartEntrySize, common.ErrCorrupt)
	}
	peBytes := int64(h.NumPartEntries) * int64(h.PartEntrySize)
	if peBytes > gptMaxArrayLen {
		return nil, fmt.Errorf("gpt: entry array of %d bytes too large: %w", peBytes, common.ErrCorrupt)
	}
	data := make([]byte, peBytes)
	if _, err := r.ReadAt(data, int64(h.PartEntryLBA)*SectorSize); err != nil {
		return nil, err
	}
	if got := crc32LE(data); got != h.PartEntryArrayCRC {
		log.Warnf("gpt: entry array crc mismatch (stored %08x, computed %08x)", h.PartEntryArrayCRC, got)
	}

	entries := make([]gptEntry, 0, h.NumPartEntries)
	for i := uint32(0); i < h.NumPartEntries; i++ {
		var e gptEntry
		raw := data[int64(i)*int64(h.PartEntrySize):]
		if err := binary.Read(bytes.NewReader(raw[:gptEntryMin]), binary.LittleEndian, &e); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	var out []Entry
	for i := range entries {
		e := &entries[i]
		if isZero16(e.TypeGUID[:]) || e.FirstLBA == 0 || e.LastLBA == 0 || e.LastLBA < e.FirstLBA {
			continue
		}
		g := strings.ToUpper(guidStr(e.TypeGUID))
		out = append(out, Entry{
			Index:    i + 1,
			StartLBA: e.FirstLBA,
			EndLBA:   e.LastLBA,
			Type:     g,
			TypeGUID: g,
			Name:     ucs2ToString(e.NameUTF16[:]),
			BSD:      g == FreeBSDLabelGUID,
		})
	}
	return &Table{
		Scheme:     GPT,
		SectorSize: SectorSize,
		Entries:    out,
		gptPrimary: &h,
	}, nil
}

func putLE32(b []byte, v uint32) {
	binary.LittleEndian.PutUint32(b, v)
}

func guidStr(b [16]byte) string {
	a := binary.LittleEndian.Uint32(b[0:4])
	b2 := binary.LittleEndian.Uint16(b[4:6])
	c := binary.LittleEndian.Uint16(b[6:8])
	d := b[8:10]
	e := b[10:16]
	return fmt.Sprintf("%08x-%04x-%04x-%02x%02x-%02x%02x%02x%02x%02x%02x",
		a, b2, c, d[0], d[1], e[0], e[1], e[2], e[3], e[4], e[5])
}

func ucs2ToString(b []byte) string {
	if len(b)%2 != 0 {
		return ""
	}
	u16 := make([]uint16, 0, len(b)/2)
	for i := 0; i < len(b); i += 2 {
		v := binary.LittleEndian.Uint16(b[i:])
		if v == 0 {
			break
		}
		u16 = append(u16, v)
	}
	return string(utf16.Decode(u16))
}

func isZero16(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
