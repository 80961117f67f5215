package compress

// Compressed disk image codecs + auto-detect.
// RW: gzip, zstd, lz4, lzma, bzip2, xz
// Names: none|auto|gzip|gz|zstd|zst|lz4|lzma|bzip2|bz2|xz|lzo

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

var ErrUnsupported = errors.New("compression: unsupported operation")

// MagicLen is enough leading bytes for Detect.
const MagicLen = 6

// ---------- name helpers ----------

func normalize(name string) string {
	switch name {
	case "", "auto":
		return "auto"
	case "none", "raw":
		return "none"
	case "gz":
		return "gzip"
	case "zst":
		return "zstd"
	case "bz2":
		return "bzip2"
	default:
		return name
	}
}

// ---------- magic detection (best-effort) ----------

func Detect(data []byte) string {
	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		return "gzip"
	}
	if len(data) >= 4 && data[0] == 0x28 && data[1] == 0xB5 && data[2] == 0x2F && data[3] == 0xFD {
		return "zstd"
	}
	if len(data) >= 4 && data[0] == 0x04 && data[1] == 0x22 && data[2] == 0x4D && data[3] == 0x18 {
		return "lz4"
	}
	if len(data) >= 6 && data[0] == 0xFD && data[1] == '7' && data[2] == 'z' && data[3] == 'X' && data[4] == 'Z' && data[5] == 0x00 {
		return "xz"
	}
	if len(data) >= 3 && data[0] == 'B' && data[1] == 'Z' && data[2] == 'h' {
		return "bzip2"
	}
	// lzma "alone" and raw lzo carry no reliable signature
	return "none"
}

// ---------- stream API ----------

// NewReader wraps r with a decompressor for name. Images are usually far
// larger than the few sectors inspected, so callers read only the prefix
// they need.
func NewReader(r io.Reader, name string) (io.ReadCloser, error) {
	switch normalize(name) {
	case "none":
		return io.NopCloser(r), nil
	case "gzip":
		return gzip.NewReader(r)
	case "zstd":
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return d.IOReadCloser(), nil
	case "lz4":
		return io.NopCloser(lz4.NewReader(r)), nil
	case "xz":
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(xr), nil
	case "lzma":
		lr, err := lzma.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(lr), nil
	case "bzip2":
		return bzip2.NewReader(r, &bzip2.ReaderConfig{})
	default:
		// lzo has no stream reader yet; auto needs the magic bytes up front
		return nil, ErrUnsupported
	}
}

// ---------- buffer API ----------

func DecompressAuto(in []byte) ([]byte, string, error) {
	kind := Detect(in)
	if kind == "none" {
		return in, "none", nil
	}
	out, err := Decompress(in, kind)
	return out, kind, err
}

func Decompress(in []byte, name string) ([]byte, error) {
	if normalize(name) == "auto" {
		out, _, err := DecompressAuto(in)
		return out, err
	}
	r, err := NewReader(bytes.NewReader(in), name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func Compress(in []byte, name string) ([]byte, error) {
	var buf bytes.Buffer
	var w io.WriteCloser
	var err error
	switch normalize(name) {
	case "none", "auto":
		return in, nil
	case "gzip":
		w = gzip.NewWriter(&buf)
	case "zstd":
		w, err = zstd.NewWriter(&buf)
	case "lz4":
		w = lz4.NewWriter(&buf)
	case "lzma":
		w, err = lzma.NewWriter(&buf)
	case "bzip2":
		w, err = bzip2.NewWriter(&buf, &bzip2.WriterConfig{})
	case "xz":
		w, err = xz.NewWriter(&buf)
	default:
		return nil, ErrUnsupported
	}
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(in); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
