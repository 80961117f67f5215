package partition

import (
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"strings"

	befile "github.com/diskfs/go-diskfs/backend/file"
	pkgerrors "github.com/pkg/errors"
)

const (
	SectorSize = 512
)

type Scheme int

const (
	None Scheme = iota
	MBR
	GPT
)

func (s Scheme) String() string {
	switch s {
	case MBR:
		return "mbr"
	case GPT:
		return "gpt"
	default:
		return "none"
	}
}

type Entry struct {
	Index    int
	StartLBA uint64
	EndLBA   uint64
	Type     string
	TypeCode byte   // MBR only
	TypeGUID string // GPT only, upper case
	Name     string
	// BSD is set when the entry type marks a disklabel carrier.
	BSD      bool
	Bootable bool
}

// Sectors is the inclusive length of the entry.
func (e Entry) Sectors() uint64 { return e.EndLBA - e.StartLBA + 1 }

type Table struct {
	Scheme     Scheme
	SectorSize int
	Entries    []Entry
	// GPT specifics
	gptPrimary *gptHeader
}

var ErrNoPartitionTable = errors.New("no partition table")

// Detect opens path read-only and identifies its partition table.
func Detect(path string) (*Table, error) {
	f, err := befile.OpenFromPath(path, true)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "partition: open %s", path)
	}
	defer f.Close()
	return DetectR(f)
}

func DetectR(r io.ReaderAt) (*Table, error) {
	buf := make([]byte, SectorSize)
	if _, err := r.ReadAt(buf, 0); err != nil {
		return nil, pkgerrors.Wrap(err, "partition: read sector 0")
	}
	if isProtectiveMBR(buf) {
		t, err := readGPT(r)
		if err == nil && len(t.Entries) > 0 {
			return t, nil
		}
	}
	if t, err := readMBR(buf); err == nil && len(t.Entries) > 0 {
		return t, nil
	}
	// Try GPT even if not protective (some tools write bad MBR)
	if t, err := readGPT(r); err == nil && len(t.Entries) > 0 {
		return t, nil
	}
	return nil, ErrNoPartitionTable
}

// DiskGUID returns the GPT disk identifier, or "" for other schemes.
func (t *Table) DiskGUID() string {
	if t.gptPrimary == nil {
		return ""
	}
	return strings.ToUpper(guidStr(t.gptPrimary.DiskGUID))
}

// Find selects an entry by 1-based index or, for GPT, by name.
func (t *Table) Find(s string) (Entry, bool) {
	if i, ok := t.findIdx(s); ok {
		return t.Entries[i], true
	}
	return Entry{}, false
}

func (t *Table) findIdx(s string) (int, bool) {
	// by index (1-based)
	if len(s) > 0 && s[0] >= '0' && s[0] <= '9' {
		var x int
		fmt.Sscanf(s, "%d", &x)
		for i, e := range t.Entries {
			if e.Index == x {
				return i, true
			}
		}
	}
	// by name (GPT)
	ns := strings.ToLower(s)
	for i, e := range t.Entries {
		if e.Name != "" && strings.ToLower(e.Name) == ns {
			return i, true
		}
	}
	return 0, false
}

func isProtectiveMBR(sec []byte) bool {
	if len(sec) < SectorSize {
		return false
	}
	if sec[510] != 0x55 || sec[511] != 0xAA {
		return false
	}
	for i := 0; i < 4; i++ {
		typ := sec[446+i*16+4]
		if typ == 0xEE {
			return true
		}
	}
	return false
}

// CRC32 LE
func crc32LE(p []byte) uint32 {
	return crc32.ChecksumIEEE(p)
}
