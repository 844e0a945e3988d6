// Package dmc is the direct-return surface of the memkit engine: every
// operation with a result returns it alongside an error.
//
// The methods mirror the flat C-style interface simulation drivers expect
// (new_allocator, alloc_addr, region_read_u8, ...) and forward to a dm.Engine.
package dmc

import (
	"io"

	"github.com/joshuapare/memkit/internal/abi"
	"github.com/joshuapare/memkit/mem/region"
	"github.com/joshuapare/memkit/pkg/dm"
)

// Handle is a dm.Handle.
type Handle = dm.Handle

// Info is the base and size of a region.
type Info = region.Info

// Surface exposes an engine with direct returns.
type Surface struct {
	e *dm.Engine
}

// New wraps e.
func New(e *dm.Engine) *Surface { return &Surface{e: e} }

// Engine returns the wrapped engine.
func (s *Surface) Engine() *dm.Engine { return s.e }

func (s *Surface) NewAllocator(base, size uint64) (Handle, error) {
	return abi.Ret(func() (Handle, error) { return s.e.NewAllocator(base, size) })
}

func (s *Surface) NewLockedAllocator(base, size uint64) (Handle, error) {
	return abi.Ret(func() (Handle, error) { return s.e.NewLockedAllocator(base, size) })
}

func (s *Surface) AllocAddr(a Handle, size, align uint64) (uint64, error) {
	return abi.Ret(func() (uint64, error) { return s.e.AllocAddr(a, size, align) })
}

func (s *Surface) FreeAddr(a Handle, addr uint64) error { return s.e.FreeAddr(a, addr) }

func (s *Surface) FreeAllocator(a Handle) error { return s.e.FreeAllocator(a) }

// Space returns the named space, creating it on first use.
func (s *Surface) Space(name string) (Handle, error) {
	return abi.Ret(func() (Handle, error) { return s.e.Space(name) })
}

func (s *Surface) NewSpace(name string) (Handle, error) {
	return abi.Ret(func() (Handle, error) { return s.e.NewSpace(name) })
}

// AddRegion registers r under name and returns it as a borrowed handle.
// A superseded region is returned as prev and belongs to the caller.
func (s *Surface) AddRegion(sp Handle, name string, r Handle) (borrowed, prev Handle, err error) {
	borrowed, prev, err = s.e.AddRegion(sp, name, r)
	if err != nil {
		return 0, 0, err
	}
	return borrowed, prev, nil
}

func (s *Surface) GetRegion(sp Handle, name string) (Handle, error) {
	return abi.Ret(func() (Handle, error) { return s.e.GetRegion(sp, name) })
}

func (s *Surface) DeleteRegion(sp Handle, name string) error { return s.e.DeleteRegion(sp, name) }

// AllocRegion allocates from heap, or standalone when heap is 0.
func (s *Surface) AllocRegion(heap Handle, size, align uint64, lazy bool) (Handle, error) {
	return abi.Ret(func() (Handle, error) { return s.e.AllocRegion(heap, size, align, lazy) })
}

func (s *Surface) MapRegion(r Handle, base uint64) (Handle, error) {
	return abi.Ret(func() (Handle, error) { return s.e.MapRegion(r, base) })
}

func (s *Surface) MapRegionPartial(r Handle, base, offset, size uint64) (Handle, error) {
	return abi.Ret(func() (Handle, error) { return s.e.MapRegionPartial(r, base, offset, size) })
}

func (s *Surface) Heap(r Handle) (Handle, error) {
	return abi.Ret(func() (Handle, error) { return s.e.Heap(r) })
}

func (s *Surface) FreeRegion(r Handle) error { return s.e.FreeRegion(r) }

func (s *Surface) FreeHeap(h Handle) error { return s.e.FreeHeap(h) }

// RegionInfo returns base and size as one value.
func (s *Surface) RegionInfo(r Handle) (Info, error) {
	return abi.Ret(func() (Info, error) { return s.e.RegionInfo(r) })
}

func (s *Surface) ReadU8(r Handle, addr uint64) (uint8, error) {
	return abi.Ret(func() (uint8, error) { return s.e.Read8(r, addr) })
}

func (s *Surface) ReadU16(r Handle, addr uint64) (uint16, error) {
	return abi.Ret(func() (uint16, error) { return s.e.Read16(r, addr) })
}

func (s *Surface) ReadU32(r Handle, addr uint64) (uint32, error) {
	return abi.Ret(func() (uint32, error) { return s.e.Read32(r, addr) })
}

func (s *Surface) ReadU64(r Handle, addr uint64) (uint64, error) {
	return abi.Ret(func() (uint64, error) { return s.e.Read64(r, addr) })
}

func (s *Surface) WriteU8(r Handle, addr uint64, v uint8) error { return s.e.Write8(r, addr, v) }

func (s *Surface) WriteU16(r Handle, addr uint64, v uint16) error { return s.e.Write16(r, addr, v) }

func (s *Surface) WriteU32(r Handle, addr uint64, v uint32) error { return s.e.Write32(r, addr, v) }

func (s *Surface) WriteU64(r Handle, addr uint64, v uint64) error { return s.e.Write64(r, addr, v) }

func (s *Surface) SpaceReadU8(sp Handle, addr uint64) (uint8, error) {
	return abi.Ret(func() (uint8, error) { return s.e.SpaceRead8(sp, addr) })
}

func (s *Surface) SpaceReadU16(sp Handle, addr uint64) (uint16, error) {
	return abi.Ret(func() (uint16, error) { return s.e.SpaceRead16(sp, addr) })
}

func (s *Surface) SpaceReadU32(sp Handle, addr uint64) (uint32, error) {
	return abi.Ret(func() (uint32, error) { return s.e.SpaceRead32(sp, addr) })
}

func (s *Surface) SpaceReadU64(sp Handle, addr uint64) (uint64, error) {
	return abi.Ret(func() (uint64, error) { return s.e.SpaceRead64(sp, addr) })
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

// Status is the stable integer code of an error; see dmv for the constants.
type Status = abi.Status

// StatusOf maps an error returned by the surface to its stable code.
func StatusOf(err error) Status { return abi.StatusOf(err) }
