package backing

import (
	"github.com/joshuapare/memkit/internal/logger"
)

// DefaultPageSize is the commit granularity of lazy stores.
const DefaultPageSize = 4096

// Sparse is a lazily committed store. Pages are allocated on their first read
// or write and start zero-filled, so a Sparse store may describe far more
// address space than the process could ever commit.
type Sparse struct {
	size     uint64
	pageSize uint64
	pages    map[uint64][]byte
	released bool
}

// NewSparse creates a lazy store of size bytes committed in pageSize units.
// A pageSize that is zero or not a power of two falls back to DefaultPageSize.
func NewSparse(size, pageSize uint64) *Sparse {
	if pageSize == 0 || pageSize&(pageSize-1) != 0 {
		pageSize = DefaultPageSize
	}
	return &Sparse{
		size:     size,
		pageSize: pageSize,
		pages:    make(map[uint64][]byte),
	}
}

// Len is the store size in bytes.
func (s *Sparse) Len() uint64 { return s.size }

// PageSize is the commit granularity.
func (s *Sparse) PageSize() uint64 { return s.pageSize }

// Committed is the number of bytes held by committed pages.
func (s *Sparse) Committed() uint64 {
	return uint64(len(s.pages)) * s.pageSize
}

// page returns the committed page holding off, committing it if needed.
func (s *Sparse) page(off uint64) []byte {
	idx := off / s.pageSize
	p, ok := s.pages[idx]
	if !ok {
		p = make([]byte, s.pageSize)
		s.pages[idx] = p
		logger.Debug("lazy commit", "page", idx, "pageSize", s.pageSize)
	}
	return p
}

// each walks [off, off+n) page by page.
func (s *Sparse) each(off uint64, n int, fn func(page []byte, pageOff uint64, done int, chunk int)) {
	done := 0
	for done < n {
		cur := off + uint64(done)
		pageOff := cur % s.pageSize
		chunk := int(min(s.pageSize-pageOff, uint64(n-done)))
		fn(s.page(cur), pageOff, done, chunk)
		done += chunk
	}
}

// ReadAt commits any untouched page it reads and copies out its contents.
func (s *Sparse) ReadAt(p []byte, off uint64) error {
	if s.released {
		return ErrReleased
	}
	if err := checkRange(s.size, off, len(p)); err != nil {
		return err
	}
	s.each(off, len(p), func(page []byte, pageOff uint64, done, chunk int) {
		copy(p[done:done+chunk], page[pageOff:])
	})
	return nil
}

// WriteAt commits any untouched page it writes.
func (s *Sparse) WriteAt(p []byte, off uint64) error {
	if s.released {
		return ErrReleased
	}
	if err := checkRange(s.size, off, len(p)); err != nil {
		return err
	}
	s.each(off, len(p), func(page []byte, pageOff uint64, done, chunk int) {
		copy(page[pageOff:], p[done:done+chunk])
	})
	return nil
}

// Release drops every committed page.
func (s *Sparse) Release() error {
	if s.released {
		return ErrReleased
	}
	s.pages = nil
	s.released = true
	return nil
}
