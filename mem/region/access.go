package region

import (
	"fmt"

	"github.com/joshuapare/memkit/internal/buf"
)

// Device backs an IO region. Offsets are relative to the region base and
// width is one of 1, 2, 4 or 8 bytes.
type Device interface {
	Read(off uint64, width int) (uint64, error)
	Write(off uint64, width int, v uint64) error
}

func (r *Region) read(addr uint64, w int) (uint64, error) {
	off, err := r.translate(addr, uint64(w))
	if err != nil {
		return 0, err
	}
	if r.mem.dev != nil {
		return r.mem.dev.Read(off, w)
	}
	var tmp [8]byte
	if err := r.mem.store.ReadAt(tmp[:w], off); err != nil {
		return 0, err
	}
	return buf.Get(tmp[:w], w), nil
}

func (r *Region) write(addr uint64, w int, v uint64) error {
	off, err := r.translate(addr, uint64(w))
	if err != nil {
		return err
	}
	if r.mem.dev != nil {
		return r.mem.dev.Write(off, w, v)
	}
	var tmp [8]byte
	buf.Put(tmp[:w], w, v)
	return r.mem.store.WriteAt(tmp[:w], off)
}

// Read8 reads the byte at addr.
func (r *Region) Read8(addr uint64) (uint8, error) {
	v, err := r.read(addr, buf.Width8)
	return uint8(v), err
}

// Read16 reads a little-endian 16-bit value at addr. addr need not be aligned.
func (r *Region) Read16(addr uint64) (uint16, error) {
	v, err := r.read(addr, buf.Width16)
	return uint16(v), err
}

// Read32 reads a little-endian 32-bit value at addr.
func (r *Region) Read32(addr uint64) (uint32, error) {
	v, err := r.read(addr, buf.Width32)
	return uint32(v), err
}

// Read64 reads a little-endian 64-bit value at addr.
func (r *Region) Read64(addr uint64) (uint64, error) {
	return r.read(addr, buf.Width64)
}

// Write8 stores v at addr.
func (r *Region) Write8(addr uint64, v uint8) error {
	return r.write(addr, buf.Width8, uint64(v))
}

// Write16 stores v little-endian at addr.
func (r *Region) Write16(addr uint64, v uint16) error {
	return r.write(addr, buf.Width16, uint64(v))
}

// Write32 stores v little-endian at addr.
func (r *Region) Write32(addr uint64, v uint32) error {
	return r.write(addr, buf.Width32, uint64(v))
}

// Write64 stores v little-endian at addr.
func (r *Region) Write64(addr uint64, v uint64) error {
	return r.write(addr, buf.Width64, v)
}

// ReadN reads a value of width bytes (1, 2, 4 or 8) at addr.
func (r *Region) ReadN(addr uint64, width int) (uint64, error) {
	if !buf.ValidWidth(width) {
		return 0, fmt.Errorf("%w: width %d", ErrBadSize, width)
	}
	return r.read(addr, width)
}

// WriteN stores the low width bytes of v at addr.
func (r *Region) WriteN(addr uint64, width int, v uint64) error {
	if !buf.ValidWidth(width) {
		return fmt.Errorf("%w: width %d", ErrBadSize, width)
	}
	return r.write(addr, width, v)
}

// ReadBytes copies len(p) bytes starting at addr into p.
// IO regions only support typed accesses.
func (r *Region) ReadBytes(addr uint64, p []byte) error {
	if len(p) == 0 {
		return r.Check()
	}
	off, err := r.translate(addr, uint64(len(p)))
	if err != nil {
		return err
	}
	if r.mem.store == nil {
		return ErrNoStorage
	}
	return r.mem.store.ReadAt(p, off)
}

// WriteBytes copies p into the region starting at addr.
func (r *Region) WriteBytes(addr uint64, p []byte) error {
	if len(p) == 0 {
		return r.Check()
	}
	off, err := r.translate(addr, uint64(len(p)))
	if err != nil {
		return err
	}
	if r.mem.store == nil {
		return ErrNoStorage
	}
	return r.mem.store.WriteAt(p, off)
}
