package dm

import (
	"github.com/joshuapare/memkit/mem/space"
)

// Read8 reads the byte at addr in region r.
func (e *Engine) Read8(r Handle, addr uint64) (uint8, error) {
	reg, err := e.region(r)
	if err != nil {
		return 0, err
	}
	return reg.Read8(addr)
}

// Read16 reads a little-endian 16-bit value at addr in region r.
func (e *Engine) Read16(r Handle, addr uint64) (uint16, error) {
	reg, err := e.region(r)
	if err != nil {
		return 0, err
	}
	return reg.Read16(addr)
}

// Read32 reads a little-endian 32-bit value at addr in region r.
func (e *Engine) Read32(r Handle, addr uint64) (uint32, error) {
	reg, err := e.region(r)
	if err != nil {
		return 0, err
	}
	return reg.Read32(addr)
}

// Read64 reads a little-endian 64-bit value at addr in region r.
func (e *Engine) Read64(r Handle, addr uint64) (uint64, error) {
	reg, err := e.region(r)
	if err != nil {
		return 0, err
	}
	return reg.Read64(addr)
}

func (e *Engine) Write8(r Handle, addr uint64, v uint8) error {
	reg, err := e.region(r)
	if err != nil {
		return err
	}
	return reg.Write8(addr, v)
}

func (e *Engine) Write16(r Handle, addr uint64, v uint16) error {
	reg, err := e.region(r)
	if err != nil {
		return err
	}
	return reg.Write16(addr, v)
}

func (e *Engine) Write32(r Handle, addr uint64, v uint32) error {
	reg, err := e.region(r)
	if err != nil {
		return err
	}
	return reg.Write32(addr, v)
}

func (e *Engine) Write64(r Handle, addr uint64, v uint64) error {
	reg, err := e.region(r)
	if err != nil {
		return err
	}
	return reg.Write64(addr, v)
}

// ReadBytes fills p from region r starting at addr.
func (e *Engine) ReadBytes(r Handle, addr uint64, p []byte) error {
	reg, err := e.region(r)
	if err != nil {
		return err
	}
	return reg.ReadBytes(addr, p)
}

// WriteBytes copies p into region r starting at addr.
func (e *Engine) WriteBytes(r Handle, addr uint64, p []byte) error {
	reg, err := e.region(r)
	if err != nil {
		return err
	}
	return reg.WriteBytes(addr, p)
}

// SpaceRead8 reads the byte at the absolute address addr of space s.
func (e *Engine) SpaceRead8(s Handle, addr uint64) (uint8, error) {
	sp, err := get[*space.Space](e, s, kindSpace)
	if err != nil {
		return 0, err
	}
	return sp.Read8(addr)
}

func (e *Engine) SpaceRead16(s Handle, addr uint64) (uint16, error) {
	sp, err := get[*space.Space](e, s, kindSpace)
	if err != nil {
		return 0, err
	}
	return sp.Read16(addr)
}

func (e *Engine) SpaceRead32(s Handle, addr uint64) (uint32, error) {
	sp, err := get[*space.Space](e, s, kindSpace)
	if err != nil {
		return 0, err
	}
	return sp.Read32(addr)
}

func (e *Engine) SpaceRead64(s Handle, addr uint64) (uint64, error) {
	sp, err := get[*space.Space](e, s, kindSpace)
	if err != nil {
		return 0, err
	}
	return sp.Read64(addr)
}

// SpaceWrite8 stores v at the absolute address addr of space s.
func (e *Engine) SpaceWrite8(s Handle, addr uint64, v uint8) error {
	sp, err := get[*space.Space](e, s, kindSpace)
	if err != nil {
		return err
	}
	return sp.Write8(addr, v)
}

func (e *Engine) SpaceWrite16(s Handle, addr uint64, v uint16) error {
	sp, err := get[*space.Space](e, s, kindSpace)
	if err != nil {
		return err
	}
	return sp.Write16(addr, v)
}

func (e *Engine) SpaceWrite32(s Handle, addr uint64, v uint32) error {
	sp, err := get[*space.Space](e, s, kindSpace)
	if err != nil {
		return err
	}
	return sp.Write32(addr, v)
}

func (e *Engine) SpaceWrite64(s Handle, addr uint64, v uint64) error {
	sp, err := get[*space.Space](e, s, kindSpace)
	if err != nil {
		return err
	}
	return sp.Write64(addr, v)
}
