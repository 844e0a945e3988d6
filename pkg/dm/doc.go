// Package dm is the canonical engine behind the memkit call surfaces.
//
// An Engine owns a root address range and every allocator, space, region and
// heap created through it. Callers refer to those objects by Handle. A
// handle goes stale when its object is freed, and every later call with it
// returns ErrStaleHandle instead of touching released memory.
//
// Two surfaces expose the engine to foreign callers:
//
//   - dmc returns results directly: v, err := s.ReadU32(r, addr)
//   - dmv writes results through output pointers: err := s.ReadU32(r, addr, &v)
//
// Both are thin adapters, so their bounds checks, byte order and side
// effects are the engine's.
//
// Example:
//
//	e, _ := dm.New(dm.DefaultOptions())
//	defer e.Close()
//
//	sp, _ := e.Space("root")
//	r, _ := e.AllocRegion(0, 8, 1, true)
//	r, _, _ = e.AddRegion(sp, "region", r)
//	_ = e.Write16(r, base, 0x5aa5)
package dm
