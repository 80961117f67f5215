package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDisk has an MBR FreeBSD slice at 63..4062 with three records.
func testDisk(t *testing.T) string {
	t.Helper()
	img := make([]byte, 4096*512)
	img[446+4] = 0xA5
	binary.LittleEndian.PutUint32(img[446+8:], 63)
	binary.LittleEndian.PutUint32(img[446+12:], 4000)
	img[510], img[511] = 0x55, 0xAA

	off := 63*512 + 64
	binary.LittleEndian.PutUint32(img[off:], 0x82564557)
	binary.LittleEndian.PutUint32(img[off+132:], 0x82564557)
	binary.LittleEndian.PutUint32(img[off+40:], 512)
	binary.LittleEndian.PutUint16(img[off+138:], 3)
	for i, r := range [][3]uint32{{63, 1000, 7}, {63, 4000, 0}, {1064, 2000, 1}} {
		ro := off + 148 + i*16
		binary.LittleEndian.PutUint32(img[ro:], r[1])
		binary.LittleEndian.PutUint32(img[ro+4:], r[0])
		img[ro+12] = byte(r[2])
	}
	p := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, os.WriteFile(p, img, 0o644))
	return p
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSizeParse(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"plain", []string{"size", "parse", "3000", "--low", "2048", "--high", "100000"}, "3000\n"},
		{"relative", []string{"size", "parse", "+1M", "--low", "2048", "--high", "100000"}, "4096\n"},
		{"from end", []string{"size", "parse", "--low", "2048", "--high", "100000", "--", "-100"}, "99900\n"},
		{"from end with suffix", []string{"size", "parse", "--low", "0", "--high", "1000000", "--default", "1000000", "--", "-5M"}, "989760\n"},
		{"empty", []string{"size", "parse", "--low", "2048", "--high", "100000", "--default", "5000"}, "5000\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "", tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestSizeParseNegativeNeedsDoubleDash(t *testing.T) {
	_, err := run(t, "", "size", "parse", "-5M", "--low", "0", "--high", "1000000")
	assert.ErrorContains(t, err, "unknown shorthand flag")
}

func TestSizeParseErrors(t *testing.T) {
	_, err := run(t, "", "size", "parse", "abc", "--low", "0", "--high", "10")
	assert.ErrorContains(t, err, "out of range")
	_, err = run(t, "", "size", "parse", "1", "--low", "10", "--high", "5")
	assert.Error(t, err)
	_, err = run(t, "", "size", "parse", "1")
	assert.Error(t, err)
}

func TestSizeParseInteractive(t *testing.T) {
	out, err := run(t, "zzz\n100\n", "size", "parse", "--low", "34", "--high", "2000", "-i")
	require.NoError(t, err)
	assert.Contains(t, out, "Sector (34-2000, default = 34): ")
	assert.Contains(t, out, "Value out of range")
	assert.True(t, strings.HasSuffix(out, "100\n"))
}

func TestSizeFormat(t *testing.T) {
	out, err := run(t, "", "size", "format", "2048")
	require.NoError(t, err)
	assert.Equal(t, "1024.0 KiB\n", out)

	out, err = run(t, "", "size", "format", "3", "--unit-size", "1048576", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"size": "3.0 MiB"`)

	_, err = run(t, "", "size", "format", "x")
	assert.Error(t, err)
}

func TestTypes(t *testing.T) {
	out, err := run(t, "", "types")
	require.NoError(t, err)
	assert.Contains(t, out, "A503")
	assert.Contains(t, out, "FreeBSD UFS")
}

func TestShow(t *testing.T) {
	disk := testDisk(t)
	out, err := run(t, "", "show", disk, "--first", "63", "--last", "4062")
	require.NoError(t, err)
	assert.Contains(t, out, "BSD: present")
	assert.Contains(t, out, "3 records")

	out, err = run(t, "", "show", disk)
	require.NoError(t, err)
	assert.Contains(t, out, "BSD: not present")
}

func TestScan(t *testing.T) {
	disk := testDisk(t)
	save := filepath.Join(t.TempDir(), "report.json")
	out, err := run(t, "", "scan", disk, "--save", save)
	require.NoError(t, err)
	assert.Contains(t, out, "Partition table: mbr")
	assert.Contains(t, out, "BSD: present")
	assert.Contains(t, out, "A502")
	assert.FileExists(t, save)

	out, err = run(t, "", "report", save, "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"scheme": "mbr"`)

	out, err = run(t, "", "scan", disk, "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "scheme: mbr")
}

func TestConvert(t *testing.T) {
	disk := testDisk(t)
	out, err := run(t, "", "convert", disk, "--typecode", "3:8300")
	require.NoError(t, err)
	assert.Contains(t, out, "8300")
	assert.Contains(t, out, "2 partition(s) converted, record(s) [2] skipped")
	assert.Contains(t, out, "Partition 1 is not aligned on a 8-sector boundary")

	out, err = run(t, "", "convert", disk, "--first", "63", "--last", "4062", "--alignment", "1")
	require.NoError(t, err)
	assert.NotContains(t, out, "not aligned")

	out, err = run(t, "", "convert", disk, "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"size": "500.0 KiB"`)
	out, err = run(t, "", "convert", disk, "-o", "json", "--sector-size", "4096")
	require.NoError(t, err)
	assert.Contains(t, out, `"size": "3.9 MiB"`)

	_, err = run(t, "", "convert", disk, "--typecode", "x")
	assert.Error(t, err)
	_, err = run(t, "", "convert", disk, "--container", "4")
	assert.Error(t, err)
	_, err = run(t, "", "convert", disk, "--container", "1", "--first", "63")
	assert.Error(t, err)
}

func TestParseTypecodes(t *testing.T) {
	got, err := parseTypecodes([]string{"1:a503", "2:0x8300"})
	require.NoError(t, err)
	assert.Equal(t, map[int]uint16{1: 0xa503, 2: 0x8300}, got)

	_, err = parseTypecodes([]string{"0:a503"})
	assert.Error(t, err)
	_, err = parseTypecodes([]string{"1:zz"})
	assert.Error(t, err)
}

func TestBadConfig(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(p, []byte("output: xml\n"), 0o644))
	_, err := run(t, "", "--config", p, "types")
	assert.Error(t, err)
}
