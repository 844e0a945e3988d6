package space

import "errors"

var (
	// ErrUnknownName indicates a lookup or delete of a name not in the space.
	ErrUnknownName = errors.New("space: unknown region name")

	// ErrOverlap indicates a region whose address range intersects another entry.
	ErrOverlap = errors.New("space: region overlaps an existing entry")

	// ErrUnmapped indicates an absolute address no region in the space covers.
	ErrUnmapped = errors.New("space: address not mapped")

	// ErrNilRegion indicates Add was called without a region.
	ErrNilRegion = errors.New("space: nil region")
)
