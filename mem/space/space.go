// Package space implements named registries of memory regions.
//
// A Space owns the regions added to it: they cannot be freed directly while
// registered, and Delete or Close release them. Entries are indexed both by
// name and by base address, so absolute addresses can be dispatched to the
// region covering them.
//
// A Space is not safe for concurrent use.
package space

import (
	"errors"
	"fmt"
	"sort"

	"github.com/joshuapare/memkit/internal/logger"
	"github.com/joshuapare/memkit/mem/region"
)

// Entry is a named region as listed by Regions.
type Entry struct {
	Name   string
	Region *region.Region
}

// Space maps names to regions.
type Space struct {
	name   string
	byName map[string]*region.Region
	byBase []Entry // sorted by Region.Base(); ranges never overlap
}

// New creates an empty space. name may be empty.
func New(name string) *Space {
	return &Space{
		name:   name,
		byName: make(map[string]*region.Region),
	}
}

// Name is the name the space was created with.
func (s *Space) Name() string { return s.name }

// Len is the number of registered regions.
func (s *Space) Len() int { return len(s.byName) }

// Add registers r under name and takes ownership of it.
//
// When name is already taken the previous region is removed, handed back to
// the caller unowned, and returned as prev; the caller decides whether to free
// it. Add fails with region.ErrOwned when r already belongs to a space, this
// one included, and with ErrOverlap when r intersects any other entry.
func (s *Space) Add(name string, r *region.Region) (prev *region.Region, err error) {
	if r == nil {
		return nil, ErrNilRegion
	}
	if err := r.Check(); err != nil {
		return nil, err
	}
	old := s.byName[name]
	if old == r {
		return nil, nil
	}
	if r.Owner() != nil {
		return nil, fmt.Errorf("%w: %s %s", region.ErrOwned, name, r)
	}
	for _, e := range s.byBase {
		if e.Region != old && region.Overlapping(e.Region, r) {
			return nil, fmt.Errorf("%w: %s %s and %s %s", ErrOverlap, name, r, e.Name, e.Region)
		}
	}
	if err := r.Claim(s); err != nil {
		return nil, err
	}

	if old != nil {
		s.unlink(name, old)
		if err := old.Unclaim(s); err != nil {
			return nil, err
		}
		logger.Debug("region superseded", "space", s.name, "name", name, "prev", old.String())
	}

	s.byName[name] = r
	i := s.search(r.Base())
	s.byBase = append(s.byBase, Entry{})
	copy(s.byBase[i+1:], s.byBase[i:])
	s.byBase[i] = Entry{Name: name, Region: r}
	return old, nil
}

// Get returns the region registered under name. The region stays owned by
// the space; callers must not free it.
func (s *Space) Get(name string) (*region.Region, error) {
	r, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownName, name)
	}
	return r, nil
}

// Delete removes the region registered under name and frees it. If the free
// fails (for example ErrRegionBusy while heap blocks are live) the entry stays.
func (s *Space) Delete(name string) error {
	r, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownName, name)
	}
	if err := r.Unclaim(s); err != nil {
		return err
	}
	if err := r.Free(); err != nil {
		_ = r.Claim(s)
		return fmt.Errorf("space: delete %q: %w", name, err)
	}
	s.unlink(name, r)
	return nil
}

// Remove detaches the region registered under name without freeing it.
// Ownership passes back to the caller.
func (s *Space) Remove(name string) (*region.Region, error) {
	r, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownName, name)
	}
	if err := r.Unclaim(s); err != nil {
		return nil, err
	}
	s.unlink(name, r)
	return r, nil
}

// RegionAt returns the entry covering the absolute address addr.
func (s *Space) RegionAt(addr uint64) (Entry, error) {
	// Last entry with base <= addr.
	i := sort.Search(len(s.byBase), func(j int) bool { return s.byBase[j].Region.Base() > addr }) - 1
	if i >= 0 {
		e := s.byBase[i]
		if addr-e.Region.Base() < e.Region.Size() {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %#x", ErrUnmapped, addr)
}

// Regions lists the entries in base address order.
func (s *Space) Regions() []Entry {
	out := make([]Entry, len(s.byBase))
	copy(out, s.byBase)
	return out
}

// Close frees every region in the space. Regions whose free fails because of
// live heap blocks are retried after the others, so blocks registered in the
// same space are released before their parents. Whatever cannot be freed stays
// registered and is reported in the returned error.
func (s *Space) Close() error {
	for len(s.byBase) > 0 {
		var errs []error
		progress := false
		for _, e := range s.Regions() {
			if err := s.Delete(e.Name); err != nil {
				errs = append(errs, err)
				continue
			}
			progress = true
		}
		if !progress {
			return errors.Join(errs...)
		}
	}
	return nil
}

func (s *Space) search(base uint64) int {
	return sort.Search(len(s.byBase), func(j int) bool { return s.byBase[j].Region.Base() >= base })
}

func (s *Space) unlink(name string, r *region.Region) {
	delete(s.byName, name)
	for i, e := range s.byBase {
		if e.Region == r {
			s.byBase = append(s.byBase[:i], s.byBase[i+1:]...)
			return
		}
	}
}
