package compress

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() []byte {
	b := make([]byte, 64*1024)
	for i := range b {
		b[i] = byte(i * 7 % 251)
	}
	return b
}

func TestCompressDetectDecompress(t *testing.T) {
	in := sample()
	for _, name := range []string{"gzip", "zstd", "lz4", "xz", "bzip2"} {
		t.Run(name, func(t *testing.T) {
			enc, err := Compress(in, name)
			require.NoError(t, err)
			assert.Equal(t, name, Detect(enc))

			out, kind, err := DecompressAuto(enc)
			require.NoError(t, err)
			assert.Equal(t, name, kind)
			assert.Equal(t, in, out)
		})
	}
}

func TestLZMAHasNoMagic(t *testing.T) {
	in := sample()
	enc, err := Compress(in, "lzma")
	require.NoError(t, err)
	assert.Equal(t, "none", Detect(enc))

	out, err := Decompress(enc, "lzma")
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestNewReaderPrefix(t *testing.T) {
	in := sample()
	enc, err := Compress(in, "zst")
	require.NoError(t, err)

	r, err := NewReader(bytes.NewReader(enc), Detect(enc))
	require.NoError(t, err)
	defer r.Close()

	head := make([]byte, 4096)
	_, err = io.ReadFull(r, head)
	require.NoError(t, err)
	assert.Equal(t, in[:4096], head)
}

func TestUnsupported(t *testing.T) {
	_, err := NewReader(bytes.NewReader(nil), "lzo")
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = Compress([]byte("x"), "lzo")
	assert.ErrorIs(t, err, ErrUnsupported)

	out, err := Compress([]byte("x"), "none")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), out)
}

func TestDetectNone(t *testing.T) {
	assert.Equal(t, "none", Detect(nil))
	assert.Equal(t, "none", Detect(make([]byte, 512)))
}
