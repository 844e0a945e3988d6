// Package buf contains address arithmetic and endian helpers shared by the
// allocator and region packages. Every multi-byte value is little-endian.
package buf

import "encoding/binary"

// Widths accepted by Put and Get, in bytes.
const (
	Width8  = 1
	Width16 = 2
	Width32 = 4
	Width64 = 8
)

// ValidWidth reports whether w is one of the supported access widths.
func ValidWidth(w int) bool {
	switch w {
	case Width8, Width16, Width32, Width64:
		return true
	}
	return false
}

// Put encodes the low w bytes of v into b in little-endian order.
// b must be at least w bytes long.
func Put(b []byte, w int, v uint64) {
	switch w {
	case Width8:
		b[0] = byte(v)
	case Width16:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case Width32:
		binary.LittleEndian.PutUint32(b, uint32(v))
	case Width64:
		binary.LittleEndian.PutUint64(b, v)
	}
}

// Get decodes a little-endian value of w bytes from b.
// Returns 0 when b is too short.
func Get(b []byte, w int) uint64 {
	if len(b) < w {
		return 0
	}
	switch w {
	case Width8:
		return uint64(b[0])
	case Width16:
		return uint64(binary.LittleEndian.Uint16(b))
	case Width32:
		return uint64(binary.LittleEndian.Uint32(b))
	case Width64:
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}
