package region

import (
	"fmt"

	"github.com/joshuapare/memkit/internal/buf"
	"github.com/joshuapare/memkit/internal/logger"
)

// Map creates an alias of the whole region at base. Both regions see the
// same bytes; nothing is copied.
func (r *Region) Map(base uint64) (*Region, error) {
	return r.MapPartial(base, 0, r.size)
}

// MapPartial creates an alias of [offset, offset+size) of the region at base.
// Address base in the alias reads the byte at r.Base()+offset.
func (r *Region) MapPartial(base, offset, size uint64) (*Region, error) {
	if err := r.Check(); err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, ErrBadSize
	}
	end, ok := buf.AddU64(offset, size)
	if !ok || end > r.size {
		return nil, fmt.Errorf("%w: window %#x+%#x of %s", ErrBounds, offset, size, r)
	}
	if _, ok := buf.AddU64(base, size); !ok {
		return nil, fmt.Errorf("%w: alias at %#x+%#x wraps", ErrBounds, base, size)
	}

	src := r
	if r.kind == KindRemap {
		src = r.src
	}
	alias := newRegion(KindRemap, base, size, r.mem, r.off+offset)
	alias.gen = r.gen
	alias.src = src

	logger.Debug("map region", "src", r.String(), "alias", alias.String())
	return alias, nil
}
