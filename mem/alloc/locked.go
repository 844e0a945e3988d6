package alloc

import "sync"

// Locked is an Allocator whose operations are serialized by a mutex.
// Concurrent callers observe a single total order of Alloc and Free calls.
type Locked struct {
	mu    sync.Mutex
	inner *Allocator
}

// NewLocked creates a thread-safe allocator over [base, base+size).
func NewLocked(base, size uint64) (*Locked, error) {
	inner, err := New(base, size)
	if err != nil {
		return nil, err
	}
	return &Locked{inner: inner}, nil
}

// Base is the first managed address.
func (l *Locked) Base() uint64 { return l.inner.base }

// Size is the number of managed addresses.
func (l *Locked) Size() uint64 { return l.inner.size }

// Contains reports whether addr lies inside the managed range.
func (l *Locked) Contains(addr uint64) bool { return l.inner.Contains(addr) }

// SetLogging turns debug logging of every Alloc and Free call on or off.
func (l *Locked) SetLogging(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.inner.SetLogging(on)
}

// Logging reports whether calls are logged.
func (l *Locked) Logging() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.Logging()
}

// Alloc reserves size addresses aligned to align.
func (l *Locked) Alloc(size, align uint64) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.Alloc(size, align)
}

// Free returns the block starting at addr.
func (l *Locked) Free(addr uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.Free(addr)
}

// BlockSize returns the length of the live block starting at addr.
func (l *Locked) BlockSize(addr uint64) (uint64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.BlockSize(addr)
}

// FreeRanges returns a snapshot of the free ranges in address order.
func (l *Locked) FreeRanges() []Range {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.FreeRanges()
}

// Allocated returns a snapshot of the live blocks in address order.
func (l *Locked) Allocated() []Range {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.Allocated()
}

// Stats summarizes the allocator.
func (l *Locked) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.Stats()
}
