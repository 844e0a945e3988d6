package irq

import "errors"

var (
	// ErrUnknownLine indicates a line number outside [0, Len()).
	ErrUnknownLine = errors.New("irq: unknown line")

	// ErrBound indicates a Bind on a line that already has a handler.
	ErrBound = errors.New("irq: handler already bound")

	// ErrBadCount indicates a controller created with no lines or more
	// than MaxLines.
	ErrBadCount = errors.New("irq: line count out of range")

	// ErrNilHandler indicates a Bind without a handler.
	ErrNilHandler = errors.New("irq: nil handler")

	// ErrBadRegister indicates an MMIO access that does not hit a register.
	ErrBadRegister = errors.New("irq: no register at offset")
)
