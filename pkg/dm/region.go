package dm

import (
	"context"

	"github.com/joshuapare/memkit/mem/region"
)

// AllocRegion creates a region of size bytes aligned to align. With heap == 0
// the region is standalone and gets fresh storage, lazily committed when lazy
// is set. Otherwise it is a block of the given heap and lazy is ignored: the
// block uses its heap owner's storage.
func (e *Engine) AllocRegion(heap Handle, size, align uint64, lazy bool) (Handle, error) {
	var (
		r   *region.Region
		err error
	)
	if heap == 0 {
		r, err = e.root.Alloc(size, align, lazy)
	} else {
		var h *region.Heap
		if h, err = get[*region.Heap](e, heap, kindHeap); err != nil {
			return 0, err
		}
		r, err = h.Alloc(size, align)
	}
	if err != nil {
		return 0, err
	}
	return e.putRegion(r)
}

// MapFile creates a standalone region over the file at path.
func (e *Engine) MapFile(path string, align uint64, writable bool) (Handle, error) {
	r, err := e.root.MapFile(path, align, writable)
	if err != nil {
		return 0, err
	}
	return e.putRegion(r)
}

// NewIO creates a device region at the fixed address base.
func (e *Engine) NewIO(base, size uint64, dev region.Device) (Handle, error) {
	r, err := region.NewIO(base, size, dev)
	if err != nil {
		return 0, err
	}
	return e.putRegion(r)
}

// MapRegion creates an alias of r at base.
func (e *Engine) MapRegion(r Handle, base uint64) (Handle, error) {
	reg, err := get[*region.Region](e, r, kindRegion)
	if err != nil {
		return 0, err
	}
	alias, err := reg.Map(base)
	if err != nil {
		return 0, err
	}
	return e.putRegion(alias)
}

// MapRegionPartial creates an alias of [offset, offset+size) of r at base.
func (e *Engine) MapRegionPartial(r Handle, base, offset, size uint64) (Handle, error) {
	reg, err := get[*region.Region](e, r, kindRegion)
	if err != nil {
		return 0, err
	}
	alias, err := reg.MapPartial(base, offset, size)
	if err != nil {
		return 0, err
	}
	return e.putRegion(alias)
}

// Heap returns the heap of r, creating it on first use. Repeated calls
// return the same handle.
func (e *Engine) Heap(r Handle) (Handle, error) {
	reg, err := get[*region.Region](e, r, kindRegion)
	if err != nil {
		return 0, err
	}
	h, err := reg.Heap()
	if err != nil {
		return 0, err
	}
	return e.put(kindHeap, h)
}

// FreeRegion frees r. On success r becomes stale. Regions owned by a space
// are freed with DeleteRegion instead.
func (e *Engine) FreeRegion(r Handle) error {
	reg, err := get[*region.Region](e, r, kindRegion)
	if err != nil {
		return err
	}
	if err := reg.Free(); err != nil {
		return err
	}
	e.release(r)
	return nil
}

// FreeHeap drops the bookkeeping of heap h. The owning region keeps its
// storage. On success h becomes stale.
func (e *Engine) FreeHeap(h Handle) error {
	hp, err := get[*region.Heap](e, h, kindHeap)
	if err != nil {
		return err
	}
	if err := hp.Free(); err != nil {
		return err
	}
	e.release(h)
	return nil
}

// RegionInfo returns the base and size of r.
func (e *Engine) RegionInfo(r Handle) (region.Info, error) {
	reg, err := e.region(r)
	if err != nil {
		return region.Info{}, err
	}
	return reg.Info(), nil
}

// Describe names the storage behind r.
func (e *Engine) Describe(r Handle) (string, error) {
	reg, err := e.region(r)
	if err != nil {
		return "", err
	}
	return reg.String(), nil
}

// Sync flushes writes of a file-mapped region to its file.
func (e *Engine) Sync(ctx context.Context, r Handle) error {
	reg, err := get[*region.Region](e, r, kindRegion)
	if err != nil {
		return err
	}
	return reg.Sync(ctx)
}

// Region resolves a handle to the region behind it. The engine keeps
// ownership.
func (e *Engine) Region(r Handle) (*region.Region, error) {
	return get[*region.Region](e, r, kindRegion)
}

// region resolves r and checks that the region is still usable.
func (e *Engine) region(r Handle) (*region.Region, error) {
	reg, err := get[*region.Region](e, r, kindRegion)
	if err != nil {
		return nil, err
	}
	if err := reg.Check(); err != nil {
		return nil, err
	}
	return reg, nil
}

func (e *Engine) putRegion(r *region.Region) (Handle, error) {
	h, err := e.put(kindRegion, r)
	if err != nil {
		// Engine closed underneath us; don't leak the new region.
		_ = r.Free()
		return 0, err
	}
	return h, nil
}
