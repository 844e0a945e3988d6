package alloc

// AddrAllocator hands out aligned sub-ranges of a fixed address range.
//
// Implementations:
//   - Allocator: single-goroutine allocator
//   - Locked: Allocator serialized by a mutex
type AddrAllocator interface {
	// Alloc reserves size bytes aligned to align and returns the start address.
	Alloc(size, align uint64) (uint64, error)

	// Free returns the block starting at addr to the free set.
	Free(addr uint64) error

	// Base is the first address managed by the allocator.
	Base() uint64

	// Size is the number of addresses managed by the allocator.
	Size() uint64

	// Stats summarizes the current free and allocated space.
	Stats() Stats
}

var (
	_ AddrAllocator = (*Allocator)(nil)
	_ AddrAllocator = (*Locked)(nil)
)
