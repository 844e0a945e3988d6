package region

import (
	"errors"

	"github.com/joshuapare/memkit/mem/alloc"
)

var (
	// ErrBounds indicates an access or mapping window outside a region.
	ErrBounds = errors.New("region: out of bounds")

	// ErrUseAfterFree indicates an access through a freed region, a stale alias,
	// or a heap whose owner or bookkeeping was released.
	ErrUseAfterFree = errors.New("region: use after free")

	// ErrDoubleFree indicates a second Free of the same region or heap.
	ErrDoubleFree = errors.New("region: double free")

	// ErrRegionBusy indicates a Free while blocks allocated from the region's heap are live.
	ErrRegionBusy = errors.New("region: heap blocks still live")

	// ErrOwned indicates a region owned by a space was freed or claimed directly.
	ErrOwned = errors.New("region: owned by a space")

	// ErrBadSize indicates a zero-sized region or mapping window.
	ErrBadSize = errors.New("region: size must be non-zero")

	// ErrNoStorage indicates a byte-storage operation on a device region.
	ErrNoStorage = errors.New("region: region has no byte storage")

	// ErrOutOfSpace is alloc.ErrOutOfSpace, surfaced by Root.Alloc and Heap.Alloc.
	ErrOutOfSpace = alloc.ErrOutOfSpace

	// ErrBadAlign is alloc.ErrBadAlign.
	ErrBadAlign = alloc.ErrBadAlign
)
