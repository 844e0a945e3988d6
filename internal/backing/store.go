// Package backing provides the storage behind memory regions.
//
// A Store is a flat, zero-based byte array. Regions translate absolute
// addresses into store offsets; the store only sees offsets.
//
// Implementations:
//   - Sparse: lazily committed pages, zero-filled on first access
//   - Eager: committed up front, Go heap or anonymous mmap
//   - File: a memory-mapped file with dirty-page tracking
package backing

import (
	"context"
	"errors"
	"fmt"

	"github.com/joshuapare/memkit/internal/buf"
)

var (
	// ErrReleased indicates an access to a store after Release.
	ErrReleased = errors.New("backing: store released")

	// ErrRange indicates an access outside [0, Len()).
	ErrRange = errors.New("backing: access out of range")

	// ErrTooLarge indicates a store size the platform cannot address.
	ErrTooLarge = errors.New("backing: size exceeds addressable memory")

	// ErrReadOnly indicates a write to a read-only mapping.
	ErrReadOnly = errors.New("backing: store is read-only")
)

// Store is the storage contract regions are built on.
//
// Stores are not safe for concurrent use unless documented otherwise.
type Store interface {
	// ReadAt copies len(p) bytes starting at off into p.
	ReadAt(p []byte, off uint64) error

	// WriteAt copies p into the store starting at off.
	WriteAt(p []byte, off uint64) error

	// Len is the store size in bytes.
	Len() uint64

	// Committed is the number of bytes that currently hold backing memory.
	Committed() uint64

	// Release frees the backing memory. Later accesses return ErrReleased.
	Release() error
}

// Syncer is implemented by stores that persist writes somewhere.
type Syncer interface {
	Sync(ctx context.Context) error
}

// Kind names a store implementation for dumps and diagnostics.
func Kind(s Store) string {
	switch s.(type) {
	case *Sparse:
		return "Lazy"
	case *Eager:
		return "Eager"
	case *File:
		return "File"
	default:
		return fmt.Sprintf("%T", s)
	}
}

func checkRange(size, off uint64, n int) error {
	end, ok := buf.AddU64(off, uint64(n))
	if !ok || end > size {
		return fmt.Errorf("%w: %#x+%d past %#x", ErrRange, off, n, size)
	}
	return nil
}

// window is the n bytes of data at off.
func window(data []byte, off uint64, n int) ([]byte, error) {
	b, ok := buf.Slice(data, off, uint64(n))
	if !ok {
		return nil, fmt.Errorf("%w: %#x+%d past %#x", ErrRange, off, n, len(data))
	}
	return b, nil
}
