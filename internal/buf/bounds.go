package buf

import (
	"fmt"
	"math/bits"
)

// AddU64 adds a and b, returning ok = false when the result would wrap.
func AddU64(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	return sum, carry == 0
}

// IsPow2 reports whether v is a non-zero power of two.
func IsPow2(v uint64) bool {
	return v != 0 && v&(v-1) == 0
}

// AlignDown rounds addr down to a multiple of align. align must be a power of two.
func AlignDown(addr, align uint64) uint64 {
	return addr &^ (align - 1)
}

// AlignUp rounds addr up to a multiple of align, returning ok = false when
// the rounded value does not fit in 64 bits. align must be a power of two.
func AlignUp(addr, align uint64) (uint64, bool) {
	end, ok := AddU64(addr, align-1)
	if !ok {
		return 0, false
	}
	return AlignDown(end, align), true
}

// Window returns the offset of [addr, addr+n) inside the window
// [base, base+size). ok is false when any part of the access falls outside the
// window or the arithmetic would wrap.
func Window(base, size, addr, n uint64) (uint64, bool) {
	if addr < base {
		return 0, false
	}
	off := addr - base
	end, ok := AddU64(off, n)
	if !ok || end > size {
		return 0, false
	}
	return off, true
}

// CheckWindow is Window with a descriptive error, for callers that wrap it
// into their own sentinel.
//
//	off, err := buf.CheckWindow(r.base, r.size, addr, 4)
//	if err != nil {
//	    return fmt.Errorf("%w: %w", ErrBounds, err)
//	}
func CheckWindow(base, size, addr, n uint64) (uint64, error) {
	off, ok := Window(base, size, addr, n)
	if ok {
		return off, nil
	}
	if addr < base {
		return 0, fmt.Errorf("addr %#x below base %#x", addr, base)
	}
	return 0, fmt.Errorf("access %#x+%d exceeds [%#x, %#x+%#x)", addr, n, base, base, size)
}

// Overlaps reports whether [a, a+an) and [b, b+bn) share at least one address.
// Empty ranges never overlap.
func Overlaps(a, an, b, bn uint64) bool {
	if an == 0 || bn == 0 {
		return false
	}
	// Compare inclusive ends so ranges touching the top of the address space work.
	return a <= b+(bn-1) && b <= a+(an-1)
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n uint64) ([]byte, bool) {
	end, ok := AddU64(off, n)
	if !ok || end > uint64(len(b)) {
		return nil, false
	}
	return b[off:end], true
}
