package disklabel

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"disklabeltool/internal/endian"
)

func TestDecodeWindowSignatureCandidates(t *testing.T) {
	recs := []rawRecord{{first: 100, length: 50, fstype: 7}}

	t.Run("candidate A", func(t *testing.T) {
		tbl := DecodeWindow(buildWindow(labelSpec{offset: LabelOffsetA, echo: true, count: -1, records: recs}), 0, 9999)
		assert.Equal(t, StatusValid, tbl.Status())
		assert.Equal(t, LabelOffsetA, tbl.LabelStart)
		assert.Equal(t, Signature, tbl.Signature)
		assert.Equal(t, Signature, tbl.Signature2)
		assert.Equal(t, 1, tbl.NumRecords())
	})

	t.Run("candidate B only", func(t *testing.T) {
		tbl := DecodeWindow(buildWindow(labelSpec{offset: LabelOffsetB, echo: true, count: -1, records: recs}), 0, 9999)
		assert.Equal(t, StatusValid, tbl.Status())
		assert.Equal(t, LabelOffsetB, tbl.LabelStart)
	})

	t.Run("A without echo falls through to B", func(t *testing.T) {
		buf := make([]byte, WindowSize)
		writeLabel(buf, labelSpec{offset: LabelOffsetA, echo: false, count: -1, records: recs})
		writeLabel(buf, labelSpec{offset: LabelOffsetB, echo: true, count: -1, records: recs})
		tbl := DecodeWindow(buf, 0, 9999)
		assert.Equal(t, StatusValid, tbl.Status())
		assert.Equal(t, LabelOffsetB, tbl.LabelStart)
	})

	t.Run("single signature is not enough", func(t *testing.T) {
		tbl := DecodeWindow(buildWindow(labelSpec{offset: LabelOffsetA, echo: false, count: -1, records: recs}), 0, 9999)
		assert.Equal(t, StatusInvalid, tbl.Status())
	})

	t.Run("empty window", func(t *testing.T) {
		tbl := DecodeWindow(make([]byte, WindowSize), 0, 9999)
		assert.Equal(t, StatusInvalid, tbl.Status())
		assert.Equal(t, 0, tbl.NumRecords())
		assert.Nil(t, tbl.Records())
	})

	t.Run("short window", func(t *testing.T) {
		tbl := DecodeWindow(make([]byte, 100), 0, 9999)
		assert.Equal(t, StatusInvalid, tbl.Status())
	})
}

func TestDecodeWindowRecordCountCeiling(t *testing.T) {
	recs := make([]rawRecord, MaxRecords)
	for i := range recs {
		recs[i] = rawRecord{first: uint32(100 + i*10), length: 10, fstype: 7}
	}

	tbl := DecodeWindow(buildWindow(labelSpec{offset: LabelOffsetB, echo: true, count: -1, records: recs}), 0, 99999)
	require.Equal(t, StatusValid, tbl.Status())
	assert.Equal(t, MaxRecords, tbl.NumRecords())
	assert.Equal(t, uint64(100+63*10), tbl.FirstSectorOf(63))

	tbl = DecodeWindow(buildWindow(labelSpec{offset: LabelOffsetA, echo: true, count: MaxRecords + 1}), 0, 99999)
	assert.Equal(t, StatusInvalid, tbl.Status())
	assert.Equal(t, uint16(MaxRecords+1), tbl.DeclaredRecords())
	assert.Equal(t, 0, tbl.NumRecords())
}

func TestInvalidTableAccessorsReturnZero(t *testing.T) {
	tbl := DecodeWindow(buildWindow(labelSpec{offset: LabelOffsetA, echo: true, count: 200}), 0, 9999)
	require.Equal(t, StatusInvalid, tbl.Status())
	for _, i := range []int{-1, 0, 1, 63, 200} {
		assert.Zero(t, tbl.TypeCode(i))
		assert.Zero(t, tbl.FirstSectorOf(i))
		assert.Zero(t, tbl.LengthOf(i))
		_, ok := tbl.Record(i)
		assert.False(t, ok)
	}
}

func TestValidTableAccessorsOutOfRange(t *testing.T) {
	tbl := DecodeWindow(buildWindow(labelSpec{
		offset: LabelOffsetA, echo: true, count: -1,
		records: []rawRecord{{first: 63, length: 1000, fstype: 7}},
	}), 0, 9999)
	require.True(t, tbl.Valid())

	assert.Equal(t, uint8(7), tbl.TypeCode(0))
	assert.Equal(t, uint64(63), tbl.FirstSectorOf(0))
	assert.Equal(t, uint64(1000), tbl.LengthOf(0))
	assert.Zero(t, tbl.TypeCode(1))
	assert.Zero(t, tbl.FirstSectorOf(-1))
	assert.Zero(t, tbl.LengthOf(5))
}

func TestDecodeWindowHeaderFields(t *testing.T) {
	buf := buildWindow(labelSpec{
		offset: LabelOffsetA, echo: true, count: -1, sectorSize: 4096,
		typeName: "SCSI", packName: "fictitious",
		records: []rawRecord{{first: 63, length: 10, fstype: 1}},
	})
	ro := LabelOffsetA + offRecords
	endian.PutUint32(buf, ro+8, 2048)
	buf[ro+13] = 8
	endian.PutUint16(buf, ro+14, 16)

	tbl := DecodeWindow(buf, 0, 9999)
	require.True(t, tbl.Valid())
	assert.Equal(t, uint32(4096), tbl.SectorSize)
	assert.Equal(t, "SCSI", tbl.TypeName)
	assert.Equal(t, "fictitious", tbl.PackName)

	r, ok := tbl.Record(0)
	require.True(t, ok)
	assert.Equal(t, Record{FirstSector: 63, Length: 10, FragSize: 2048, TypeCode: 1, Frag: 8, CylPerGroup: 16}, r)
}

func TestDecodeRelativeAddressing(t *testing.T) {
	const first = 2048
	const last = first + 1000000 - 1

	t.Run("zero start shifts every record", func(t *testing.T) {
		tbl := DecodeWindow(buildWindow(labelSpec{
			offset: LabelOffsetA, echo: true, count: -1,
			records: []rawRecord{
				{first: 500, length: 10, fstype: 7},
				{first: 0, length: 100, fstype: 7},
				{first: 4096, length: 200, fstype: 1},
			},
		}), first, last)
		require.True(t, tbl.Valid())
		assert.True(t, tbl.Relative())
		assert.Equal(t, uint64(500+first), tbl.FirstSectorOf(0))
		assert.Equal(t, uint64(0+first), tbl.FirstSectorOf(1))
		assert.Equal(t, uint64(4096+first), tbl.FirstSectorOf(2))
		assert.Equal(t, uint64(100), tbl.LengthOf(1))
	})

	t.Run("absolute numbering is left alone", func(t *testing.T) {
		tbl := DecodeWindow(buildWindow(labelSpec{
			offset: LabelOffsetA, echo: true, count: -1,
			records: []rawRecord{{first: first, length: 100, fstype: 7}},
		}), first, last)
		assert.False(t, tbl.Relative())
		assert.Equal(t, uint64(first), tbl.FirstSectorOf(0))
	})

	t.Run("zero-length record at zero does not trigger", func(t *testing.T) {
		tbl := DecodeWindow(buildWindow(labelSpec{
			offset: LabelOffsetA, echo: true, count: -1,
			records: []rawRecord{{first: 0, length: 0}, {first: first + 10, length: 5, fstype: 7}},
		}), first, last)
		assert.False(t, tbl.Relative())
		assert.Equal(t, uint64(first+10), tbl.FirstSectorOf(1))
	})

	t.Run("disk-sized placeholder in undersized carrier does not trigger", func(t *testing.T) {
		tbl := DecodeWindow(buildWindow(labelSpec{
			offset: LabelOffsetA, echo: true, count: -1,
			records: []rawRecord{
				{first: 0, length: 5000000, fstype: 0},
				{first: 63, length: 500, fstype: 7},
			},
		}), 63, 999999)
		assert.False(t, tbl.Relative())
		assert.Equal(t, uint64(0), tbl.FirstSectorOf(0))
		assert.Equal(t, uint64(63), tbl.FirstSectorOf(1))
	})

	t.Run("correction does not wrap 32 bits", func(t *testing.T) {
		const big = uint64(1) << 33
		tbl := DecodeWindow(buildWindow(labelSpec{
			offset: LabelOffsetA, echo: true, count: -1,
			records: []rawRecord{{first: 0xfffffff0, length: 10, fstype: 7}, {first: 0, length: 10, fstype: 1}},
		}), big, big+1<<34)
		require.True(t, tbl.Relative())
		assert.Equal(t, big+0xfffffff0, tbl.FirstSectorOf(0))
	})
}

func TestDecodeReadsAtBlockOffset(t *testing.T) {
	const first = 63
	img := make([]byte, first*BlockSize+WindowSize)
	writeLabel(img[first*BlockSize:], labelSpec{
		offset: LabelOffsetB, echo: true, count: -1, sectorSize: 4096,
		records: []rawRecord{{first: 63, length: 100, fstype: 7}},
	})

	tbl, err := Decode(bytes.NewReader(img), first, 10000)
	require.NoError(t, err)
	assert.True(t, tbl.Valid())
	assert.Equal(t, uint64(first), tbl.FirstSector)
	assert.Equal(t, uint64(10000), tbl.LastSector)
}

func TestDecodeShortReadIsError(t *testing.T) {
	img := make([]byte, 63*BlockSize+WindowSize-1)
	_, err := Decode(bytes.NewReader(img), 63, 10000)
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = Decode(bytes.NewReader(nil), 0, 0)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadDevice(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "disk.img")
	img := make([]byte, 8*BlockSize+WindowSize)
	writeLabel(img[8*BlockSize:], labelSpec{
		offset: LabelOffsetA, echo: true, count: -1,
		records: []rawRecord{{first: 0, length: 100, fstype: 7}},
	})
	require.NoError(t, os.WriteFile(path, img, 0o644))

	tbl, err := ReadDevice(path, 8, 1000)
	require.NoError(t, err)
	require.True(t, tbl.Valid())
	assert.True(t, tbl.Relative())
	assert.Equal(t, uint64(8), tbl.FirstSectorOf(0))

	_, err = ReadDevice(filepath.Join(dir, "missing.img"), 0, 1000)
	assert.Error(t, err)

	_, err = ReadDevice(path, 9, 1000)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
