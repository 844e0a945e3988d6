// Package abi adapts engine operations to the calling conventions of the
// public surfaces: direct return (dmc) and output parameters (dmv).
//
// Both conventions wrap the same func() (T, error) so that a surface cannot
// diverge from the engine in bounds checks, byte order or side effects.
package abi

import "errors"

// ErrNilOut indicates a nil output pointer passed to an output-parameter call.
var ErrNilOut = errors.New("abi: nil output pointer")

// Ret runs fn and returns its result directly. On error the value is the zero
// value of T, whatever fn returned.
func Ret[T any](fn func() (T, error)) (T, error) {
	v, err := fn()
	if err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// Out runs fn and stores its result in *out. *out is only written on success.
// A nil out fails before fn runs, so the operation has no side effects.
func Out[T any](out *T, fn func() (T, error)) error {
	if out == nil {
		return ErrNilOut
	}
	v, err := fn()
	if err != nil {
		return err
	}
	*out = v
	return nil
}

// Out2 is Out for operations with two results, such as a region's base and
// size.
func Out2[A, B any](a *A, b *B, fn func() (A, B, error)) error {
	if a == nil || b == nil {
		return ErrNilOut
	}
	va, vb, err := fn()
	if err != nil {
		return err
	}
	*a, *b = va, vb
	return nil
}
