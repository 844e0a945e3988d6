package dm

import "errors"

var (
	// ErrStaleHandle indicates a handle that was never issued or whose object
	// was released.
	ErrStaleHandle = errors.New("dm: stale handle")

	// ErrWrongKind indicates a handle of one kind passed where another is expected,
	// e.g. a space handle to Read8.
	ErrWrongKind = errors.New("dm: wrong handle kind")

	// ErrClosed indicates a call on a closed engine.
	ErrClosed = errors.New("dm: engine closed")
)
