// Package region implements the memory regions of a co-simulation address
// model.
//
// A Region is a window [Base, Base+Size) over byte storage. Regions come
// from four places:
//
//   - Root.Alloc and Root.MapFile create standalone regions with their own storage
//   - Heap.Alloc carves a block out of another region, sharing its storage
//   - Region.Map and Region.MapPartial create aliases at a different base
//   - NewIO forwards typed accesses to a Device
//
// Storage is either eager (committed at allocation) or lazy (pages committed
// and zero-filled on first access), see internal/backing.
//
// # Lifetime
//
// Every descriptor records the generation of the storage it points at.
// Freeing a standalone region releases the storage and bumps the generation,
// so aliases still held by the caller fail with ErrUseAfterFree instead of
// touching released memory. Heaps tear down in two steps: blocks must be freed
// before their heap (Heap.Free) or owning region (Region.Free), otherwise
// those calls return ErrRegionBusy.
//
// # Access
//
// Typed accessors read and write 8, 16, 32 and 64-bit little-endian values
// at absolute addresses. Unaligned addresses are allowed. An access that
// does not fit inside the region returns ErrBounds.
//
// Example:
//
//	root, _ := region.NewRoot(region.DefaultOptions())
//	r, _ := root.Alloc(0x1000, 0x1000, true)
//	_ = r.Write32(r.Base()+4, 0xdeadbeef)
//	alias, _ := r.Map(0x8000_0000)
//	v, _ := alias.Read32(0x8000_0004) // 0xdeadbeef
package region
