package region

import "github.com/joshuapare/memkit/internal/backing"

// Options configures a Root.
type Options struct {
	// RootBase is the first address handed to standalone regions.
	RootBase uint64

	// RootSize is the size of the standalone address range.
	// Default: 1<<63, the full model address space.
	RootSize uint64

	// PageSize is the commit granularity of lazy regions. Must be a power of two.
	// Default: 4096
	PageSize uint64

	// MmapThreshold is the size from which eager regions are backed by an
	// anonymous mapping instead of the Go heap.
	// Default: 1 MiB
	MmapThreshold uint64

	// NoMmap keeps every eager region on the Go heap. Regions larger than
	// backing.MaxHeapSize then fail with backing.ErrTooLarge.
	NoMmap bool

	// LogAlloc enables debug logging of every call on the root allocator and
	// on the heaps of regions carved from it, like setting MEMKIT_LOG_ALLOC.
	// Messages go to internal/logger, which discards them unless the host
	// initialized it.
	LogAlloc bool
}

// DefaultOptions returns the options used by NewRoot when none are given.
func DefaultOptions() Options {
	return Options{
		RootBase:      0,
		RootSize:      1 << 63,
		PageSize:      backing.DefaultPageSize,
		MmapThreshold: backing.DefaultMmapThreshold,
	}
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.RootSize == 0 {
		o.RootSize = def.RootSize
	}
	if o.PageSize == 0 {
		o.PageSize = def.PageSize
	}
	if o.MmapThreshold == 0 {
		o.MmapThreshold = def.MmapThreshold
	}
	return o
}

// mmapThreshold is the threshold handed to backing.NewEager, where zero
// disables mapping.
func (o Options) mmapThreshold() uint64 {
	if o.NoMmap {
		return 0
	}
	return o.MmapThreshold
}
