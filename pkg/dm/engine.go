package dm

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/joshuapare/memkit/internal/logger"
	"github.com/joshuapare/memkit/mem/alloc"
	"github.com/joshuapare/memkit/mem/region"
	"github.com/joshuapare/memkit/mem/space"
)

// Engine owns every allocator, space, region and heap created through it and
// hands them out as Handles.
//
// The handle table is safe for concurrent use, so goroutines may share a
// locked allocator through its handle. The objects behind handles keep their
// own rules: regions, heaps' owners and spaces must not be mutated from
// several goroutines without external synchronization, and neither may a
// plain allocator.
type Engine struct {
	mu     sync.RWMutex
	opts   Options
	root   *region.Root
	arena  *arena
	named  map[string]Handle
	closed bool
}

// New creates an engine with its own root address range.
func New(opts Options) (*Engine, error) {
	root, err := region.NewRoot(opts.Options)
	if err != nil {
		return nil, err
	}
	return &Engine{
		opts:  opts,
		root:  root,
		arena: newArena(),
		named: make(map[string]Handle),
	}, nil
}

// Root is the address range standalone regions are carved from.
func (e *Engine) Root() *region.Root { return e.root }

func get[T any](e *Engine, h Handle, k kind) (T, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		var zero T
		return zero, ErrClosed
	}
	return lookup[T](e.arena, h, k)
}

func (e *Engine) put(k kind, v any) (Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return 0, ErrClosed
	}
	return e.arena.put(k, v), nil
}

func (e *Engine) release(h Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.arena.release(h)
}

// NewAllocator creates a plain allocator over [base, base+size).
func (e *Engine) NewAllocator(base, size uint64) (Handle, error) {
	a, err := alloc.New(base, size)
	if err != nil {
		return 0, err
	}
	if e.opts.LogAlloc {
		a.SetLogging(true)
	}
	return e.put(kindAllocator, alloc.AddrAllocator(a))
}

// NewLockedAllocator creates an allocator whose Alloc and Free may be called
// concurrently.
func (e *Engine) NewLockedAllocator(base, size uint64) (Handle, error) {
	a, err := alloc.NewLocked(base, size)
	if err != nil {
		return 0, err
	}
	if e.opts.LogAlloc {
		a.SetLogging(true)
	}
	return e.put(kindAllocator, alloc.AddrAllocator(a))
}

// AllocAddr reserves size addresses aligned to align from allocator a.
func (e *Engine) AllocAddr(a Handle, size, align uint64) (uint64, error) {
	al, err := get[alloc.AddrAllocator](e, a, kindAllocator)
	if err != nil {
		return 0, err
	}
	return al.Alloc(size, align)
}

// FreeAddr returns the block at addr to allocator a.
func (e *Engine) FreeAddr(a Handle, addr uint64) error {
	al, err := get[alloc.AddrAllocator](e, a, kindAllocator)
	if err != nil {
		return err
	}
	return al.Free(addr)
}

// AllocatorStats summarizes allocator a.
func (e *Engine) AllocatorStats(a Handle) (alloc.Stats, error) {
	al, err := get[alloc.AddrAllocator](e, a, kindAllocator)
	if err != nil {
		return alloc.Stats{}, err
	}
	return al.Stats(), nil
}

// FreeAllocator destroys allocator a. Outstanding blocks are dropped with it.
func (e *Engine) FreeAllocator(a Handle) error {
	if _, err := get[alloc.AddrAllocator](e, a, kindAllocator); err != nil {
		return err
	}
	e.release(a)
	return nil
}

// NewSpace creates an anonymous space. name only labels dumps.
func (e *Engine) NewSpace(name string) (Handle, error) {
	return e.put(kindSpace, space.New(name))
}

// Space returns the space called name, creating it on first use.
func (e *Engine) Space(name string) (Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return 0, ErrClosed
	}
	if h, ok := e.named[name]; ok {
		return h, nil
	}
	h := e.arena.put(kindSpace, space.New(name))
	e.named[name] = h
	return h, nil
}

// FreeSpace closes space s, freeing every region it owns, and releases s.
// If some regions cannot be freed the space stays valid and holds them.
func (e *Engine) FreeSpace(s Handle) error {
	sp, err := get[*space.Space](e, s, kindSpace)
	if err != nil {
		return err
	}
	entries := sp.Regions()
	closeErr := sp.Close()

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ent := range entries {
		if ent.Region.Freed() {
			e.releaseRegionLocked(ent.Region)
		}
	}
	if closeErr != nil {
		return closeErr
	}
	if e.named[sp.Name()] == s {
		delete(e.named, sp.Name())
	}
	e.arena.release(s)
	return nil
}

// AddRegion registers region r in space s under name and passes ownership
// to the space. It returns r as a borrowed handle and, if name was taken,
// the handle of the superseded region, which the caller owns again.
func (e *Engine) AddRegion(s Handle, name string, r Handle) (borrowed, prev Handle, err error) {
	sp, err := get[*space.Space](e, s, kindSpace)
	if err != nil {
		return 0, 0, err
	}
	reg, err := get[*region.Region](e, r, kindRegion)
	if err != nil {
		return 0, 0, err
	}
	old, err := sp.Add(name, reg)
	if err != nil {
		return 0, 0, err
	}
	if old != nil {
		logger.Debug("superseded region", "space", sp.Name(), "name", name, "prev", old.String())
		if prev, err = e.put(kindRegion, old); err != nil {
			return 0, 0, err
		}
	}
	return r, prev, nil
}

// GetRegion returns a borrowed handle to the region registered as name in s.
func (e *Engine) GetRegion(s Handle, name string) (Handle, error) {
	sp, err := get[*space.Space](e, s, kindSpace)
	if err != nil {
		return 0, err
	}
	reg, err := sp.Get(name)
	if err != nil {
		return 0, err
	}
	return e.put(kindRegion, reg)
}

// DeleteRegion frees the region registered as name in s. Its handle becomes
// stale.
func (e *Engine) DeleteRegion(s Handle, name string) error {
	sp, err := get[*space.Space](e, s, kindSpace)
	if err != nil {
		return err
	}
	reg, err := sp.Get(name)
	if err != nil {
		return err
	}
	if err := sp.Delete(name); err != nil {
		return err
	}
	e.mu.Lock()
	e.releaseRegionLocked(reg)
	e.mu.Unlock()
	return nil
}

// RemoveRegion detaches the region registered as name in s without freeing
// it and returns its handle, now owned by the caller.
func (e *Engine) RemoveRegion(s Handle, name string) (Handle, error) {
	sp, err := get[*space.Space](e, s, kindSpace)
	if err != nil {
		return 0, err
	}
	reg, err := sp.Remove(name)
	if err != nil {
		return 0, err
	}
	return e.put(kindRegion, reg)
}

// Dump writes a listing of the regions in s.
func (e *Engine) Dump(s Handle, w io.Writer) error {
	sp, err := get[*space.Space](e, s, kindSpace)
	if err != nil {
		return err
	}
	_, err = sp.WriteTo(w)
	return err
}

// Spaces lists the named spaces in no particular order.
func (e *Engine) Spaces() map[string]Handle {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]Handle, len(e.named))
	for k, v := range e.named {
		out[k] = v
	}
	return out
}

// Close frees every object still held by the engine: spaces first, then
// loose regions with blocks before their parents, then heaps. Objects that
// cannot be freed are reported in the returned error. The engine is unusable
// afterwards.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	var spaces []*space.Space
	e.arena.each(kindSpace, func(_ Handle, v any) { spaces = append(spaces, v.(*space.Space)) })
	e.mu.Unlock()

	// Spaces may hold parents of loose blocks, so they get a second pass
	// once the loose regions are gone.
	for _, sp := range spaces {
		_ = sp.Close()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var regions []*region.Region
	e.arena.each(kindRegion, func(_ Handle, v any) { regions = append(regions, v.(*region.Region)) })
	errs := freeAll(regions)

	for _, sp := range spaces {
		if err := sp.Close(); err != nil {
			errs = append(errs, fmt.Errorf("space %q: %w", sp.Name(), err))
		}
	}

	e.arena.each(kindHeap, func(_ Handle, v any) {
		h := v.(*region.Heap)
		if !h.Freed() {
			if err := h.Free(); err != nil {
				errs = append(errs, err)
			}
		}
	})

	e.closed = true
	e.arena = newArena()
	e.named = nil
	return errors.Join(errs...)
}

// freeAll frees regions in repeated passes so blocks and aliases go before
// the regions they depend on.
func freeAll(regions []*region.Region) []error {
	pending := regions[:0]
	for _, r := range regions {
		if !r.Freed() && r.Owner() == nil {
			pending = append(pending, r)
		}
	}
	// Aliases first: they never block anything and would go stale.
	for _, r := range pending {
		if r.Kind() == region.KindRemap {
			_ = r.Free()
		}
	}
	for len(pending) > 0 {
		var (
			next []*region.Region
			errs []error
		)
		for _, r := range pending {
			if r.Freed() {
				continue
			}
			if err := r.Free(); err != nil {
				next = append(next, r)
				errs = append(errs, err)
			}
		}
		if len(next) == len(pending) {
			return errs
		}
		pending = next
	}
	return nil
}

func (e *Engine) releaseRegionLocked(r *region.Region) {
	if h, ok := e.arena.ptrs[r]; ok {
		e.arena.release(h)
	}
}
