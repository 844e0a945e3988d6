package region

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/joshuapare/memkit/internal/backing"
	"github.com/joshuapare/memkit/internal/buf"
	"github.com/joshuapare/memkit/internal/logger"
)

// Kind says how a region reaches its bytes.
type Kind uint8

const (
	// KindStandalone regions own their storage and took their base from a Root.
	KindStandalone Kind = iota
	// KindBlock regions were allocated from another region's heap and share its storage.
	KindBlock
	// KindRemap regions are aliases of another region at a different base.
	KindRemap
	// KindIO regions forward typed accesses to a Device.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindStandalone:
		return "Standalone"
	case KindBlock:
		return "Block"
	case KindRemap:
		return "Remap"
	case KindIO:
		return "IO"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Info is the externally visible window of a region.
type Info struct {
	Base uint64
	Size uint64
}

// memory is the storage shared by a region, its heap blocks and its aliases.
// gen is bumped when the storage is released; descriptors holding an older
// generation are stale.
type memory struct {
	store backing.Store
	dev   Device
	gen   atomic.Uint64
}

func (m *memory) release() error {
	m.gen.Add(1)
	if m.store != nil {
		return m.store.Release()
	}
	return nil
}

// Region is an addressable window [Base, Base+Size) over some storage.
//
// Regions are not safe for concurrent use: concurrent reads and writes of the
// same region, or a Free racing with an access, must be synchronized by the
// caller. Heap allocation is the exception (see Heap).
type Region struct {
	base uint64
	size uint64
	kind Kind

	mem *memory
	gen uint64
	off uint64 // offset of base within mem

	root   *Root   // standalone: returns base to the root on Free
	parent *Heap   // block: heap the block came from
	src    *Region // remap: region that owns the storage

	heap     *Heap
	children atomic.Int64 // live blocks from heap

	owner any
	freed bool
}

func newRegion(kind Kind, base, size uint64, mem *memory, off uint64) *Region {
	return &Region{
		base: base,
		size: size,
		kind: kind,
		mem:  mem,
		gen:  mem.gen.Load(),
		off:  off,
	}
}

// Base is the first address of the region.
func (r *Region) Base() uint64 { return r.base }

// Size is the number of addresses in the region.
func (r *Region) Size() uint64 { return r.size }

// Info returns base and size together.
func (r *Region) Info() Info { return Info{Base: r.base, Size: r.size} }

// Kind reports how the region reaches its bytes.
func (r *Region) Kind() Kind { return r.kind }

// Freed reports whether Free succeeded on this descriptor.
func (r *Region) Freed() bool { return r.freed }

// Check reports whether the region may be accessed. It returns
// ErrUseAfterFree for freed regions and for aliases whose storage was released.
func (r *Region) Check() error {
	if r.freed {
		return fmt.Errorf("%w: %s", ErrUseAfterFree, r)
	}
	if r.mem.gen.Load() != r.gen {
		return fmt.Errorf("%w: storage of %s was released", ErrUseAfterFree, r)
	}
	if r.src != nil && r.src.freed {
		return fmt.Errorf("%w: source of %s was freed", ErrUseAfterFree, r)
	}
	return nil
}

// Committed is the number of bytes of the underlying store holding memory.
// Aliases and blocks report the shared store.
func (r *Region) Committed() uint64 {
	if r.mem.store == nil {
		return 0
	}
	return r.mem.store.Committed()
}

// Lazy reports whether the region's storage is committed on first access.
func (r *Region) Lazy() bool {
	_, ok := r.mem.store.(*backing.Sparse)
	return ok
}

// Describe names the storage behind the region, e.g. "Lazy" or
// "Remap(Eager@0x1000 -> 0x1008)".
func (r *Region) Describe() string {
	switch r.kind {
	case KindBlock:
		return "Block"
	case KindIO:
		return "IO"
	case KindRemap:
		srcBase := r.src.base + (r.off - r.src.off)
		return fmt.Sprintf("Remap(%s@%#x -> %#x)", r.src.Describe(), srcBase, srcBase+r.size)
	default:
		return backing.Kind(r.mem.store)
	}
}

func (r *Region) String() string {
	return fmt.Sprintf("%s[%#x, %#x)", r.Describe(), r.base, r.base+r.size)
}

// Claim records owner as the region's owner. An owned region can only be
// freed after Unclaim. Spaces use this to take ownership.
func (r *Region) Claim(owner any) error {
	if err := r.Check(); err != nil {
		return err
	}
	if r.owner != nil {
		return ErrOwned
	}
	r.owner = owner
	return nil
}

// Unclaim gives ownership back to the caller. owner must match Claim.
func (r *Region) Unclaim(owner any) error {
	if r.owner != owner {
		return ErrOwned
	}
	r.owner = nil
	return nil
}

// Owner returns the current owner, or nil.
func (r *Region) Owner() any { return r.owner }

// LiveBlocks is the number of heap blocks not yet freed.
func (r *Region) LiveBlocks() int64 { return r.children.Load() }

// Free releases the region.
//
//   - aliases detach; the storage stays with the source region
//   - heap blocks return their range to the parent heap
//   - standalone regions release their storage and return their range to the root;
//     aliases of them become stale and report ErrUseAfterFree
//
// Free fails with ErrOwned for regions owned by a space, ErrRegionBusy while
// heap blocks are live, and ErrDoubleFree when called twice.
func (r *Region) Free() error {
	if r.freed {
		return fmt.Errorf("%w: %s", ErrDoubleFree, r)
	}
	if r.owner != nil {
		return fmt.Errorf("%w: %s", ErrOwned, r)
	}
	if n := r.children.Load(); n > 0 {
		return fmt.Errorf("%w: %s has %d", ErrRegionBusy, r, n)
	}

	switch r.kind {
	case KindRemap:
		// Stale aliases may still be freed once.
	case KindBlock:
		if err := r.parent.release(r.base); err != nil {
			return err
		}
	case KindStandalone, KindIO:
		if err := r.mem.release(); err != nil {
			logger.Warn("release storage", "region", r.String(), "err", err)
		}
		if r.root != nil {
			if err := r.root.addrs.Free(r.base); err != nil {
				return err
			}
		}
	}

	r.freed = true
	logger.Debug("free region", "region", r.String())
	return nil
}

// Sync writes pending changes of file-mapped storage back to the file.
// Other storage has nothing to sync.
func (r *Region) Sync(ctx context.Context) error {
	if err := r.Check(); err != nil {
		return err
	}
	if s, ok := r.mem.store.(backing.Syncer); ok {
		return s.Sync(ctx)
	}
	return nil
}

// translate checks an n-byte access at addr and returns its storage offset.
func (r *Region) translate(addr, n uint64) (uint64, error) {
	if err := r.Check(); err != nil {
		return 0, err
	}
	off, err := buf.CheckWindow(r.base, r.size, addr, n)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBounds, err)
	}
	return r.off + off, nil
}

// Overlapping reports whether the address ranges of a and b intersect.
func Overlapping(a, b *Region) bool {
	return buf.Overlaps(a.base, a.size, b.base, b.size)
}
