package alloc

import (
	"fmt"
	"os"
	"sort"

	"github.com/joshuapare/memkit/internal/buf"
	"github.com/joshuapare/memkit/internal/logger"
)

// envLogAlloc is the initial logging state of new allocators, set by the
// MEMKIT_LOG_ALLOC env var. It is read once and never written.
var envLogAlloc = os.Getenv("MEMKIT_LOG_ALLOC") != ""

// Range is a half-open address range [Addr, Addr+Len).
type Range struct {
	Addr uint64
	Len  uint64
}

// End returns the first address after the range.
func (r Range) End() uint64 { return r.Addr + r.Len }

func (r Range) String() string {
	return fmt.Sprintf("[%#x, %#x)", r.Addr, r.End())
}

// Stats holds a point-in-time summary of an allocator.
type Stats struct {
	Base        uint64
	Size        uint64
	FreeBytes   uint64
	UsedBytes   uint64
	LargestFree uint64
	FreeRanges  int
	Allocations int
	// Fragmentation is 1 - LargestFree/FreeBytes; 0 when all free space is contiguous.
	Fragmentation float64
}

// Allocator manages the address range [base, base+size).
//
// NOT thread-safe. Use Locked when several goroutines share one allocator.
type Allocator struct {
	base uint64
	size uint64

	// free is sorted by Addr; neighbours are never adjacent (always coalesced).
	free []Range

	// used maps the start address of every live block to its length.
	used map[uint64]uint64

	logCalls bool
}

// New creates an allocator whose entire range starts free.
func New(base, size uint64) (*Allocator, error) {
	if size == 0 {
		return nil, fmt.Errorf("%w: empty range at %#x", ErrBadRange, base)
	}
	if _, ok := buf.AddU64(base, size); !ok {
		return nil, fmt.Errorf("%w: %#x+%#x wraps", ErrBadRange, base, size)
	}
	return &Allocator{
		base:     base,
		size:     size,
		free:     []Range{{Addr: base, Len: size}},
		used:     make(map[uint64]uint64),
		logCalls: envLogAlloc,
	}, nil
}

// SetLogging turns debug logging of every Alloc and Free call on or off.
func (a *Allocator) SetLogging(on bool) { a.logCalls = on }

// Logging reports whether calls are logged.
func (a *Allocator) Logging() bool { return a.logCalls }

// Base is the first managed address.
func (a *Allocator) Base() uint64 { return a.base }

// Size is the number of managed addresses.
func (a *Allocator) Size() uint64 { return a.size }

// Contains reports whether addr lies inside the managed range.
func (a *Allocator) Contains(addr uint64) bool {
	return addr >= a.base && addr-a.base < a.size
}

// Alloc reserves size addresses starting at a multiple of align.
// The lowest-addressed free range that fits wins.
func (a *Allocator) Alloc(size, align uint64) (uint64, error) {
	if size == 0 {
		return 0, ErrBadSize
	}
	if !buf.IsPow2(align) {
		return 0, fmt.Errorf("%w: %d", ErrBadAlign, align)
	}

	for i, r := range a.free {
		start, ok := buf.AlignUp(r.Addr, align)
		if !ok || start >= r.End() {
			continue
		}
		if r.End()-start < size {
			continue
		}

		a.split(i, start, size)
		a.used[start] = size

		if a.logCalls {
			logger.Debug("alloc", "base", a.base, "addr", start, "size", size, "align", align)
		}
		return start, nil
	}

	if a.logCalls {
		logger.Debug("alloc failed", "base", a.base, "size", size, "align", align, "free", a.freeBytes())
	}
	return 0, fmt.Errorf("%w: size=%#x align=%#x in [%#x, %#x+%#x)",
		ErrOutOfSpace, size, align, a.base, a.base, a.size)
}

// split carves [start, start+size) out of free range i, keeping the leading
// pad and trailing remainder when they are non-empty.
func (a *Allocator) split(i int, start, size uint64) {
	r := a.free[i]
	var repl []Range
	if start > r.Addr {
		repl = append(repl, Range{Addr: r.Addr, Len: start - r.Addr})
	}
	if end := start + size; end < r.End() {
		repl = append(repl, Range{Addr: end, Len: r.End() - end})
	}

	switch len(repl) {
	case 0:
		a.free = append(a.free[:i], a.free[i+1:]...)
	case 1:
		a.free[i] = repl[0]
	default:
		a.free = append(a.free, Range{})
		copy(a.free[i+2:], a.free[i+1:])
		a.free[i] = repl[0]
		a.free[i+1] = repl[1]
	}
}

// Free returns the block starting at addr, coalescing with adjacent free ranges.
func (a *Allocator) Free(addr uint64) error {
	size, ok := a.used[addr]
	if !ok {
		return fmt.Errorf("%w: %#x", ErrNotAllocated, addr)
	}
	delete(a.used, addr)

	blk := Range{Addr: addr, Len: size}

	// First free range at or after the block.
	i := sort.Search(len(a.free), func(j int) bool { return a.free[j].Addr >= addr })

	mergePrev := i > 0 && a.free[i-1].End() == blk.Addr
	mergeNext := i < len(a.free) && blk.End() == a.free[i].Addr

	switch {
	case mergePrev && mergeNext:
		a.free[i-1].Len += blk.Len + a.free[i].Len
		a.free = append(a.free[:i], a.free[i+1:]...)
	case mergePrev:
		a.free[i-1].Len += blk.Len
	case mergeNext:
		a.free[i].Addr = blk.Addr
		a.free[i].Len += blk.Len
	default:
		a.free = append(a.free, Range{})
		copy(a.free[i+1:], a.free[i:])
		a.free[i] = blk
	}

	if a.logCalls {
		logger.Debug("free", "base", a.base, "addr", addr, "size", size)
	}
	return nil
}

// BlockSize returns the length of the live block starting at addr.
func (a *Allocator) BlockSize(addr uint64) (uint64, bool) {
	size, ok := a.used[addr]
	return size, ok
}

// FreeRanges returns a copy of the free ranges in address order.
func (a *Allocator) FreeRanges() []Range {
	out := make([]Range, len(a.free))
	copy(out, a.free)
	return out
}

// Allocated returns the live blocks in address order.
func (a *Allocator) Allocated() []Range {
	out := make([]Range, 0, len(a.used))
	for addr, size := range a.used {
		out = append(out, Range{Addr: addr, Len: size})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Addr < out[j].Addr })
	return out
}

func (a *Allocator) freeBytes() uint64 {
	var n uint64
	for _, r := range a.free {
		n += r.Len
	}
	return n
}

// Stats summarizes the allocator.
func (a *Allocator) Stats() Stats {
	s := Stats{
		Base:        a.base,
		Size:        a.size,
		FreeRanges:  len(a.free),
		Allocations: len(a.used),
	}
	for _, r := range a.free {
		s.FreeBytes += r.Len
		if r.Len > s.LargestFree {
			s.LargestFree = r.Len
		}
	}
	s.UsedBytes = a.size - s.FreeBytes
	if s.FreeBytes > 0 {
		s.Fragmentation = 1 - float64(s.LargestFree)/float64(s.FreeBytes)
	}
	return s
}
