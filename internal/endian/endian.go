// Package endian decodes fixed-width little-endian on-disk fields.
//
// Fields are copied out of the window, reversed when the host is big-endian,
// and read in host order. Nothing here aliases the source buffer.
package endian

import "encoding/binary"

var littleEndian = probe()

func probe() bool {
	var b [2]byte
	binary.NativeEndian.PutUint16(b[:], 1)
	return b[0] == 1
}

// IsLittleEndian reports the host byte order, probed once at startup.
func IsLittleEndian() bool {
	return littleEndian
}

// ReverseBytes reverses b in place. The field width is len(b).
func ReverseBytes(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// Uint16 decodes the 16-bit little-endian field at off.
func Uint16(buf []byte, off int) uint16 {
	var f [2]byte
	copy(f[:], buf[off:off+2])
	if !littleEndian {
		ReverseBytes(f[:])
	}
	return binary.NativeEndian.Uint16(f[:])
}

// Uint32 decodes the 32-bit little-endian field at off.
func Uint32(buf []byte, off int) uint32 {
	var f [4]byte
	copy(f[:], buf[off:off+4])
	if !littleEndian {
		ReverseBytes(f[:])
	}
	return binary.NativeEndian.Uint32(f[:])
}

// PutUint16 encodes v as a little-endian field at off.
func PutUint16(buf []byte, off int, v uint16) {
	binary.NativeEndian.PutUint16(buf[off:off+2], v)
	if !littleEndian {
		ReverseBytes(buf[off : off+2])
	}
}

// PutUint32 encodes v as a little-endian field at off.
func PutUint32(buf []byte, off int, v uint32) {
	binary.NativeEndian.PutUint32(buf[off:off+4], v)
	if !littleEndian {
		ReverseBytes(buf[off : off+4])
	}
}
