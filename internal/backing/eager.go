package backing

import (
	"fmt"
	"math"
)

// DefaultMmapThreshold is the size from which eager stores are mapped
// anonymously instead of allocated on the Go heap.
const DefaultMmapThreshold = 1 << 20

// MaxHeapSize is the largest store committed on the Go heap. Larger stores
// must be mapped.
const MaxHeapSize = 1 << 32

// Eager is a fully committed store.
type Eager struct {
	data     []byte
	unmap    func() error
	released bool
}

// NewEager commits size zeroed bytes. Sizes at or above mmapThreshold are
// mapped anonymously where the platform supports it; a zero threshold keeps
// everything on the Go heap, up to MaxHeapSize.
func NewEager(size, mmapThreshold uint64) (*Eager, error) {
	if size > math.MaxInt {
		return nil, fmt.Errorf("%w: %#x", ErrTooLarge, size)
	}
	mapped := mmapThreshold > 0 && size >= mmapThreshold
	if (!mapped || !fileMapped) && size > MaxHeapSize {
		return nil, fmt.Errorf("%w: %#x above heap limit %#x", ErrTooLarge, size, uint64(MaxHeapSize))
	}
	if mapped {
		data, unmap, err := anonMap(int(size))
		if err != nil {
			return nil, fmt.Errorf("%w: map %d bytes: %w", ErrTooLarge, size, err)
		}
		return &Eager{data: data, unmap: unmap}, nil
	}
	return &Eager{data: make([]byte, size)}, nil
}

// Len is the store size in bytes.
func (e *Eager) Len() uint64 { return uint64(len(e.data)) }

// Committed equals Len until the store is released.
func (e *Eager) Committed() uint64 {
	if e.released {
		return 0
	}
	return uint64(len(e.data))
}

// Mapped reports whether the store lives in an anonymous mapping.
func (e *Eager) Mapped() bool { return e.unmap != nil }

// ReadAt copies out len(p) bytes at off.
func (e *Eager) ReadAt(p []byte, off uint64) error {
	if e.released {
		return ErrReleased
	}
	src, err := window(e.data, off, len(p))
	if err != nil {
		return err
	}
	copy(p, src)
	return nil
}

// WriteAt copies p in at off.
func (e *Eager) WriteAt(p []byte, off uint64) error {
	if e.released {
		return ErrReleased
	}
	dst, err := window(e.data, off, len(p))
	if err != nil {
		return err
	}
	copy(dst, p)
	return nil
}

// Release frees the memory, unmapping it when it was mapped.
func (e *Eager) Release() error {
	if e.released {
		return ErrReleased
	}
	e.released = true
	e.data = nil
	if e.unmap != nil {
		return e.unmap()
	}
	return nil
}
