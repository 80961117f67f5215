package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlignUp(t *testing.T) {
	assert.Equal(t, uint64(2048), AlignUp(2048, 8))
	assert.Equal(t, uint64(2056), AlignUp(2049, 8))
	assert.Equal(t, uint64(7), AlignUp(7, 0))
	assert.True(t, IsAligned(4096, 2048))
	assert.False(t, IsAligned(63, 8))
	assert.True(t, IsAligned(63, 0))
}

func TestField(t *testing.T) {
	tests := []struct {
		arg  string
		n    int
		want string
	}{
		{"1:2048:4095", 1, "1"},
		{"1:2048:4095", 3, "4095"},
		{"1:2048:4095", 4, ""},
		{":3:a503", 1, "3"},
		{"3:a503", 2, "a503"},
		{"single", 1, "single"},
		{"x", 0, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Field(tt.arg, tt.n), "%q field %d", tt.arg, tt.n)
	}
}

func TestFieldUint(t *testing.T) {
	assert.Equal(t, uint64(2048), FieldUint("1:2048:4095", 2))
	assert.Equal(t, uint64(12), FieldUint("12abc:0", 1))
	assert.Equal(t, uint64(0), FieldUint("abc:1", 1))
	assert.Equal(t, uint64(0), FieldUint("1", 2))
}

func TestHexHelpers(t *testing.T) {
	assert.True(t, IsHex("a503"))
	assert.True(t, IsHex("0700\n"))
	assert.False(t, IsHex("   "))
	assert.False(t, IsHex("a5g3"))

	v, ok := ParseHex16("0xA503")
	assert.True(t, ok)
	assert.Equal(t, uint16(0xa503), v)

	_, ok = ParseHex16("12345")
	assert.False(t, ok)
	_, ok = ParseHex16("zz")
	assert.False(t, ok)
}
