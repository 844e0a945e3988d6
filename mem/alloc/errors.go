package alloc

import "errors"

var (
	// ErrOutOfSpace indicates that no free range can hold the aligned request.
	ErrOutOfSpace = errors.New("alloc: out of space")

	// ErrBadAlign indicates an alignment that is zero or not a power of two.
	ErrBadAlign = errors.New("alloc: alignment must be a power of two")

	// ErrBadSize indicates a zero-length request.
	ErrBadSize = errors.New("alloc: size must be non-zero")

	// ErrBadRange indicates an allocator range that is empty or wraps past 2^64.
	ErrBadRange = errors.New("alloc: invalid address range")

	// ErrNotAllocated indicates a free of an address that is not the start of a live block.
	// A second free of the same address reports this too.
	ErrNotAllocated = errors.New("alloc: address not allocated")
)
