// Package alloc provides address-range allocation over a flat range
// [base, base+size) of abstract addresses.
//
// # Overview
//
// The allocator keeps its free space as a list of disjoint ranges sorted by
// address. Allocation is first-fit in address order: the lowest free range
// whose aligned start leaves room for the request wins, and the range is split
// into an optional leading pad and an optional trailing remainder. Freeing a
// block coalesces it with both neighbours, so freeing every block always
// restores a single range covering the whole allocator.
//
// # Implementations
//
// Allocator: plain allocator, not safe for concurrent use.
//
// Locked: the same algorithm behind a sync.Mutex. Concurrent Alloc and Free
// calls are serialized, so no two calls return overlapping blocks.
//
// # Usage Example
//
//	a, err := alloc.New(1, 9) // [1, 10)
//	if err != nil {
//	    return err
//	}
//	addr, err := a.Alloc(1, 4) // 4
//	if err != nil {
//	    return err
//	}
//	defer a.Free(addr)
//
// # Errors
//
// ErrOutOfSpace is returned when no free range fits; requests are never
// truncated. ErrNotAllocated reports frees of unknown or already freed
// addresses and leaves the allocator unchanged.
//
// # Debugging
//
// Set MEMKIT_LOG_ALLOC to log every allocation and free through the memkit
// logger at debug level.
package alloc
