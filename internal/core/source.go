package core

import (
	"bytes"
	"io"
	"os"

	befile "github.com/diskfs/go-diskfs/backend/file"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"disklabeltool/internal/compress"
	"disklabeltool/internal/disklabel"
	"disklabeltool/internal/image/partition"
)

// Source is a disk image or block device. Raw sources are reopened for each
// read; compressed images are held decompressed in memory.
type Source struct {
	Path        string
	Compression string
	BlockDevice bool
	Size        int64
	Truncated   bool

	data []byte
}

// OpenSource probes path and, for compressed images, decompresses at most
// maxBytes of it.
func OpenSource(path string, maxBytes int64) (*Source, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "core: stat %s", path)
	}
	dev, err := befile.OpenFromPath(path, true)
	if err != nil {
		return nil, errors.Wrapf(err, "core: open %s", path)
	}
	defer dev.Close()

	s := &Source{Path: path, Compression: "none", BlockDevice: isBlockDevice(fi)}
	size, err := dev.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, errors.Wrapf(err, "core: size of %s", path)
	}

	magic := make([]byte, compress.MagicLen)
	n, err := dev.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "core: read %s", path)
	}
	kind := compress.Detect(magic[:n])
	if s.BlockDevice || kind == "none" {
		s.Size = size
		log.Debugf("core: %s raw, %d bytes", path, size)
		return s, nil
	}

	rc, err := compress.NewReader(io.NewSectionReader(dev, 0, size), kind)
	if err != nil {
		return nil, errors.Wrapf(err, "core: %s decoder for %s", kind, path)
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, maxBytes+1))
	if err != nil {
		return nil, errors.Wrapf(err, "core: decompress %s", path)
	}
	if int64(len(data)) > maxBytes {
		data = data[:maxBytes]
		s.Truncated = true
		log.Warnf("core: %s decompresses past %d bytes, later sectors are not visible", path, maxBytes)
	}
	s.Compression = kind
	s.Size = int64(len(data))
	s.data = data
	log.Debugf("core: %s %s, %d bytes decompressed", path, kind, len(data))
	return s, nil
}

// Sectors is the number of whole 512-byte sectors in the source.
func (s *Source) Sectors() uint64 {
	return uint64(s.Size) / disklabel.BlockSize
}

// LastSector is the index of the final whole sector, 0 for an empty source.
func (s *Source) LastSector() uint64 {
	if n := s.Sectors(); n > 0 {
		return n - 1
	}
	return 0
}

// Partitions detects the enclosing partition table.
func (s *Source) Partitions() (*partition.Table, error) {
	if s.data != nil {
		return partition.DetectR(bytes.NewReader(s.data))
	}
	return partition.Detect(s.Path)
}

// ReadLabel decodes the disklabel of the container [first, last].
func (s *Source) ReadLabel(first, last uint64) (*disklabel.Table, error) {
	if s.data != nil {
		return disklabel.Decode(bytes.NewReader(s.data), first, last)
	}
	return disklabel.ReadDevice(s.Path, first, last)
}

// Window returns the raw label window read at sector first.
func (s *Source) Window(first uint64) ([]byte, error) {
	buf := make([]byte, disklabel.WindowSize)
	off := int64(first) * disklabel.BlockSize
	if s.data != nil {
		if off >= int64(len(s.data)) {
			return nil, io.ErrUnexpectedEOF
		}
		return buf[:copy(buf, s.data[off:])], nil
	}
	dev, err := befile.OpenFromPath(s.Path, true)
	if err != nil {
		return nil, errors.Wrapf(err, "core: open %s", s.Path)
	}
	defer dev.Close()
	n, err := dev.ReadAt(buf, off)
	if n == 0 && err != nil {
		return nil, err
	}
	return buf[:n], nil
}
