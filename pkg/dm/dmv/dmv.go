// Package dmv is the output-parameter surface of the memkit engine, for
// callers that cannot receive returned values, such as simulator foreign
// interfaces. Results are written through pointers, arguments are plain
// integers, and a nil output pointer fails with ErrNilOut before the engine
// is touched. On error outputs keep their previous contents.
package dmv

import (
	"io"

	"github.com/joshuapare/memkit/internal/abi"
	"github.com/joshuapare/memkit/pkg/dm"
)

// Handle is a dm.Handle.
type Handle = dm.Handle

// ErrNilOut indicates a nil output pointer.
var ErrNilOut = abi.ErrNilOut

// Surface exposes an engine through output parameters.
type Surface struct {
	e *dm.Engine
}

// New wraps e.
func New(e *dm.Engine) *Surface { return &Surface{e: e} }

// Engine returns the wrapped engine.
func (s *Surface) Engine() *dm.Engine { return s.e }

func (s *Surface) NewAllocator(base, size uint64, out *Handle) error {
	return abi.Out(out, func() (Handle, error) { return s.e.NewAllocator(base, size) })
}

func (s *Surface) NewLockedAllocator(base, size uint64, out *Handle) error {
	return abi.Out(out, func() (Handle, error) { return s.e.NewLockedAllocator(base, size) })
}

// AllocAddr stores the allocated address in *out.
func (s *Surface) AllocAddr(a Handle, size, align uint64, out *uint64) error {
	return abi.Out(out, func() (uint64, error) { return s.e.AllocAddr(a, size, align) })
}

func (s *Surface) FreeAddr(a Handle, addr uint64) error { return s.e.FreeAddr(a, addr) }

func (s *Surface) FreeAllocator(a Handle) error { return s.e.FreeAllocator(a) }

func (s *Surface) Space(name string, out *Handle) error {
	return abi.Out(out, func() (Handle, error) { return s.e.Space(name) })
}

func (s *Surface) NewSpace(name string, out *Handle) error {
	return abi.Out(out, func() (Handle, error) { return s.e.NewSpace(name) })
}

// AddRegion stores the borrowed handle in *out and the superseded region, or
// 0, in *prev.
func (s *Surface) AddRegion(sp Handle, name string, r Handle, out, prev *Handle) error {
	return abi.Out2(out, prev, func() (Handle, Handle, error) { return s.e.AddRegion(sp, name, r) })
}

func (s *Surface) GetRegion(sp Handle, name string, out *Handle) error {
	return abi.Out(out, func() (Handle, error) { return s.e.GetRegion(sp, name) })
}

func (s *Surface) DeleteRegion(sp Handle, name string) error { return s.e.DeleteRegion(sp, name) }

// AllocRegion takes lazy as an integer; any non-zero value selects lazy storage.
func (s *Surface) AllocRegion(heap Handle, size, align uint64, lazy uint32, out *Handle) error {
	return abi.Out(out, func() (Handle, error) { return s.e.AllocRegion(heap, size, align, lazy != 0) })
}

func (s *Surface) MapRegion(r Handle, base uint64, out *Handle) error {
	return abi.Out(out, func() (Handle, error) { return s.e.MapRegion(r, base) })
}

func (s *Surface) MapRegionPartial(r Handle, base, offset, size uint64, out *Handle) error {
	return abi.Out(out, func() (Handle, error) { return s.e.MapRegionPartial(r, base, offset, size) })
}

func (s *Surface) Heap(r Handle, out *Handle) error {
	return abi.Out(out, func() (Handle, error) { return s.e.Heap(r) })
}

func (s *Surface) FreeRegion(r Handle) error { return s.e.FreeRegion(r) }

func (s *Surface) FreeHeap(h Handle) error { return s.e.FreeHeap(h) }

// RegionBase stores the base address of r in *out.
func (s *Surface) RegionBase(r Handle, out *uint64) error {
	return abi.Out(out, func() (uint64, error) {
		info, err := s.e.RegionInfo(r)
		return info.Base, err
	})
}

// RegionSize stores the size of r in *out.
func (s *Surface) RegionSize(r Handle, out *uint64) error {
	return abi.Out(out, func() (uint64, error) {
		info, err := s.e.RegionInfo(r)
		return info.Size, err
	})
}

func (s *Surface) ReadU8(r Handle, addr uint64, out *uint8) error {
	return abi.Out(out, func() (uint8, error) { return s.e.Read8(r, addr) })
}

func (s *Surface) ReadU16(r Handle, addr uint64, out *uint16) error {
	return abi.Out(out, func() (uint16, error) { return s.e.Read16(r, addr) })
}

func (s *Surface) ReadU32(r Handle, addr uint64, out *uint32) error {
	return abi.Out(out, func() (uint32, error) { return s.e.Read32(r, addr) })
}

func (s *Surface) ReadU64(r Handle, addr uint64, out *uint64) error {
	return abi.Out(out, func() (uint64, error) { return s.e.Read64(r, addr) })
}

func (s *Surface) WriteU8(r Handle, addr uint64, v uint8) error { return s.e.Write8(r, addr, v) }

func (s *Surface) WriteU16(r Handle, addr uint64, v uint16) error { return s.e.Write16(r, addr, v) }

func (s *Surface) WriteU32(r Handle, addr uint64, v uint32) error { return s.e.Write32(r, addr, v) }

func (s *Surface) WriteU64(r Handle, addr uint64, v uint64) error { return s.e.Write64(r, addr, v) }

func (s *Surface) SpaceReadU8(sp Handle, addr uint64, out *uint8) error {
	return abi.Out(out, func() (uint8, error) { return s.e.SpaceRead8(sp, addr) })
}

func (s *Surface) SpaceReadU16(sp Handle, addr uint64, out *uint16) error {
	return abi.Out(out, func() (uint16, error) { return s.e.SpaceRead16(sp, addr) })
}

func (s *Surface) SpaceReadU32(sp Handle, addr uint64, out *uint32) error {
	return abi.Out(out, func() (uint32, error) { return s.e.SpaceRead32(sp, addr) })
}

func (s *Surface) SpaceReadU64(sp Handle, addr uint64, out *uint64) error {
	return abi.Out(out, func() (uint64, error) { return s.e.SpaceRead64(sp, addr) })
}

func (s *Surface) SpaceWriteU8(sp Handle, addr uint64, v uint8) error {
	return s.e.SpaceWrite8(sp, addr, v)
}

func (s *Surface) SpaceWriteU16(sp Handle, addr uint64, v uint16) error {
	return s.e.SpaceWrite16(sp, addr, v)
}

func (s *Surface) SpaceWriteU32(sp Handle, addr uint64, v uint32) error {
	return s.e.SpaceWrite32(sp, addr, v)
}

func (s *Surface) SpaceWriteU64(sp Handle, addr uint64, v uint64) error {
	return s.e.SpaceWrite64(sp, addr, v)
}

func (s *Surface) Dump(sp Handle, w io.Writer) error { return s.e.Dump(sp, w) }
