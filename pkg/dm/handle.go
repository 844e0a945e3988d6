package dm

import "fmt"

// Handle names an engine object: an allocator, a space, a region or a heap.
//
// The low 32 bits are the slot index plus one, the high 32 bits the slot
// generation. Releasing an object bumps its slot's generation, so a released
// handle never resolves again even after the slot is reused. The zero Handle
// is never valid; AllocRegion takes it to mean "no heap".
type Handle uint64

func makeHandle(idx, gen uint32) Handle { return Handle(uint64(gen)<<32 | uint64(idx+1)) }

func (h Handle) index() (uint32, bool) {
	lo := uint32(h)
	if lo == 0 {
		return 0, false
	}
	return lo - 1, true
}

func (h Handle) gen() uint32 { return uint32(h >> 32) }

func (h Handle) String() string {
	if h == 0 {
		return "nil"
	}
	idx, _ := h.index()
	return fmt.Sprintf("#%d.%d", idx, h.gen())
}

type kind uint8

const (
	kindNone kind = iota
	kindAllocator
	kindSpace
	kindRegion
	kindHeap
	kindIRQ
)

func (k kind) String() string {
	switch k {
	case kindAllocator:
		return "allocator"
	case kindSpace:
		return "space"
	case kindRegion:
		return "region"
	case kindHeap:
		return "heap"
	case kindIRQ:
		return "irq controller"
	default:
		return "none"
	}
}

type slot struct {
	gen  uint32
	kind kind
	val  any
}

// arena stores engine objects behind generation-checked handles.
// Callers hold Engine.mu.
type arena struct {
	slots []slot
	free  []uint32
	ptrs  map[any]Handle
}

func newArena() *arena {
	return &arena{ptrs: make(map[any]Handle)}
}

// put returns the handle of v, creating one if v has none yet.
func (a *arena) put(k kind, v any) Handle {
	if h, ok := a.ptrs[v]; ok {
		return h
	}
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, slot{})
	}
	s := &a.slots[idx]
	s.kind, s.val = k, v
	h := makeHandle(idx, s.gen)
	a.ptrs[v] = h
	return h
}

func (a *arena) get(h Handle) (*slot, error) {
	idx, ok := h.index()
	if !ok || int(idx) >= len(a.slots) {
		return nil, fmt.Errorf("%w: %s", ErrStaleHandle, h)
	}
	s := &a.slots[idx]
	if s.kind == kindNone || s.gen != h.gen() {
		return nil, fmt.Errorf("%w: %s", ErrStaleHandle, h)
	}
	return s, nil
}

// release invalidates h. The object itself is not touched.
func (a *arena) release(h Handle) {
	s, err := a.get(h)
	if err != nil {
		return
	}
	delete(a.ptrs, s.val)
	idx, _ := h.index()
	s.gen++
	s.kind, s.val = kindNone, nil
	a.free = append(a.free, idx)
}

// lookup resolves h to a value of kind k.
func lookup[T any](a *arena, h Handle, k kind) (T, error) {
	var zero T
	s, err := a.get(h)
	if err != nil {
		return zero, err
	}
	if s.kind != k {
		return zero, fmt.Errorf("%w: %s is a %s, want %s", ErrWrongKind, h, s.kind, k)
	}
	v, ok := s.val.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s holds %T", ErrWrongKind, h, s.val)
	}
	return v, nil
}

// each calls fn for every live handle of kind k, in slot order.
func (a *arena) each(k kind, fn func(h Handle, v any)) {
	for i := range a.slots {
		s := &a.slots[i]
		if s.kind == k {
			fn(makeHandle(uint32(i), s.gen), s.val)
		}
	}
}
