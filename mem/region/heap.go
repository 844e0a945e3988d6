package region

import (
	"fmt"
	"sync/atomic"

	"github.com/joshuapare/memkit/internal/logger"
	"github.com/joshuapare/memkit/mem/alloc"
)

// Heap hands out blocks of its owning region's address range. Blocks share
// the owner's storage at the matching offset.
//
// Alloc and block Free are safe for concurrent use; the heap's allocator is
// an alloc.Locked.
type Heap struct {
	owner *Region
	addrs *alloc.Locked
	freed atomic.Bool
}

// Heap returns the region's heap, creating it on first use.
// On an alias it returns the heap of the region that owns the storage.
func (r *Region) Heap() (*Heap, error) {
	if err := r.Check(); err != nil {
		return nil, err
	}
	if r.kind == KindRemap {
		return r.src.Heap()
	}
	if r.kind == KindIO {
		return nil, fmt.Errorf("%w: IO regions have no heap", ErrNoStorage)
	}
	if r.heap != nil {
		return r.heap, nil
	}
	addrs, err := alloc.NewLocked(r.base, r.size)
	if err != nil {
		return nil, err
	}
	if r.logAlloc() {
		addrs.SetLogging(true)
	}
	r.heap = &Heap{owner: r, addrs: addrs}
	logger.Debug("create heap", "region", r.String())
	return r.heap, nil
}

// logAlloc reports whether the root the region descends from logs
// allocator calls.
func (r *Region) logAlloc() bool {
	switch {
	case r.root != nil:
		return r.root.opts.LogAlloc
	case r.parent != nil:
		return r.parent.owner.logAlloc()
	case r.src != nil:
		return r.src.logAlloc()
	}
	return false
}

// HasHeap reports whether Heap was ever called on the region.
func (r *Region) HasHeap() bool { return r.heap != nil }

// Owner is the region the heap carves blocks out of.
func (h *Heap) Owner() *Region { return h.owner }

// Base is the first address the heap manages.
func (h *Heap) Base() uint64 { return h.addrs.Base() }

// Size is the number of addresses the heap manages.
func (h *Heap) Size() uint64 { return h.addrs.Size() }

// Stats summarizes the heap's allocator.
func (h *Heap) Stats() alloc.Stats { return h.addrs.Stats() }

// Freed reports whether Free succeeded on the heap.
func (h *Heap) Freed() bool { return h.freed.Load() }

func (h *Heap) check() error {
	if h.freed.Load() {
		return fmt.Errorf("%w: heap of %s", ErrUseAfterFree, h.owner)
	}
	if err := h.owner.Check(); err != nil {
		return err
	}
	return nil
}

// Alloc carves a block of size bytes aligned to align out of the heap.
func (h *Heap) Alloc(size, align uint64) (*Region, error) {
	if err := h.check(); err != nil {
		return nil, err
	}
	addr, err := h.addrs.Alloc(size, align)
	if err != nil {
		logger.Debug("heap alloc failed", "heap", h.owner.String(), "size", size, "align", align, "err", err)
		return nil, err
	}

	o := h.owner
	blk := newRegion(KindBlock, addr, size, o.mem, o.off+(addr-o.base))
	blk.parent = h
	o.children.Add(1)
	return blk, nil
}

// release returns a block's range. Called from Region.Free.
func (h *Heap) release(addr uint64) error {
	if err := h.addrs.Free(addr); err != nil {
		return fmt.Errorf("%w: %w", ErrDoubleFree, err)
	}
	h.owner.children.Add(-1)
	return nil
}

// Free drops the heap's bookkeeping. The owning region keeps its storage and
// may create a fresh heap afterwards. Free fails with ErrRegionBusy while
// blocks are live.
func (h *Heap) Free() error {
	if h.freed.Load() {
		return fmt.Errorf("%w: heap of %s", ErrDoubleFree, h.owner)
	}
	if n := h.owner.children.Load(); n > 0 {
		return fmt.Errorf("%w: heap of %s has %d", ErrRegionBusy, h.owner, n)
	}
	h.freed.Store(true)
	if h.owner.heap == h {
		h.owner.heap = nil
	}
	return nil
}
