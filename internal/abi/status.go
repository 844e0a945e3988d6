package abi

import (
	"errors"

	"github.com/joshuapare/memkit/internal/backing"
	"github.com/joshuapare/memkit/mem/alloc"
	"github.com/joshuapare/memkit/mem/irq"
	"github.com/joshuapare/memkit/mem/region"
	"github.com/joshuapare/memkit/mem/space"
	"github.com/joshuapare/memkit/pkg/dm"
)

// Status is a stable integer code for an error, for shims that can only pass
// integers across the call boundary. The values never change.
type Status int32

const (
	StatusOK Status = iota
	StatusOutOfSpace
	StatusUnknownName
	StatusBounds
	StatusDoubleFree
	StatusUseAfterFree
	StatusBusy
	StatusOwned
	StatusOverlap
	StatusBadArgument
	StatusStaleHandle
	StatusWrongKind
	StatusNilOut
	StatusIO
	StatusUnknown Status = -1
)

var statusNames = map[Status]string{
	StatusOK:           "ok",
	StatusOutOfSpace:   "out of space",
	StatusUnknownName:  "unknown name",
	StatusBounds:       "bounds violation",
	StatusDoubleFree:   "double free",
	StatusUseAfterFree: "use after free",
	StatusBusy:         "busy",
	StatusOwned:        "owned",
	StatusOverlap:      "overlap",
	StatusBadArgument:  "bad argument",
	StatusStaleHandle:  "stale handle",
	StatusWrongKind:    "wrong handle kind",
	StatusNilOut:       "nil output",
	StatusIO:           "io",
	StatusUnknown:      "unknown",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "unknown"
}

// statusTable is checked in order; the first match wins.
var statusTable = []struct {
	err    error
	status Status
}{
	{ErrNilOut, StatusNilOut},
	{dm.ErrStaleHandle, StatusStaleHandle},
	{dm.ErrWrongKind, StatusWrongKind},
	{alloc.ErrOutOfSpace, StatusOutOfSpace},
	{space.ErrUnknownName, StatusUnknownName},
	{space.ErrUnmapped, StatusBounds},
	{space.ErrOverlap, StatusOverlap},
	{region.ErrBounds, StatusBounds},
	{region.ErrUseAfterFree, StatusUseAfterFree},
	{region.ErrDoubleFree, StatusDoubleFree},
	{alloc.ErrNotAllocated, StatusDoubleFree},
	{region.ErrRegionBusy, StatusBusy},
	{region.ErrOwned, StatusOwned},
	{alloc.ErrBadAlign, StatusBadArgument},
	{alloc.ErrBadSize, StatusBadArgument},
	{alloc.ErrBadRange, StatusBadArgument},
	{region.ErrBadSize, StatusBadArgument},
	{region.ErrNoStorage, StatusBadArgument},
	{space.ErrNilRegion, StatusBadArgument},
	{backing.ErrReadOnly, StatusIO},
	{backing.ErrReleased, StatusUseAfterFree},
	{backing.ErrTooLarge, StatusOutOfSpace},
	{irq.ErrUnknownLine, StatusBadArgument},
	{irq.ErrBadCount, StatusBadArgument},
	{irq.ErrNilHandler, StatusBadArgument},
	{irq.ErrBound, StatusBusy},
	{irq.ErrBadRegister, StatusBounds},
}

// StatusOf maps err onto its Status. nil is StatusOK.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}
	for _, e := range statusTable {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return StatusUnknown
}
