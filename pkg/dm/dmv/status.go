package dmv

import "github.com/joshuapare/memkit/internal/abi"

// Status is the stable integer code of an error.
type Status = abi.Status

const (
	StatusOK           = abi.StatusOK
	StatusOutOfSpace   = abi.StatusOutOfSpace
	StatusUnknownName  = abi.StatusUnknownName
	StatusBounds       = abi.StatusBounds
	StatusDoubleFree   = abi.StatusDoubleFree
	StatusUseAfterFree = abi.StatusUseAfterFree
	StatusBusy         = abi.StatusBusy
	StatusOwned        = abi.StatusOwned
	StatusOverlap      = abi.StatusOverlap
	StatusBadArgument  = abi.StatusBadArgument
	StatusStaleHandle  = abi.StatusStaleHandle
	StatusWrongKind    = abi.StatusWrongKind
	StatusNilOut       = abi.StatusNilOut
	StatusIO           = abi.StatusIO
	StatusUnknown      = abi.StatusUnknown
)

// StatusOf maps an error returned by the surface to its stable code.
func StatusOf(err error) Status { return abi.StatusOf(err) }
