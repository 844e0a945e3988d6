package region

import (
	"errors"
	"fmt"

	"github.com/joshuapare/memkit/internal/backing"
	"github.com/joshuapare/memkit/internal/buf"
	"github.com/joshuapare/memkit/internal/logger"
	"github.com/joshuapare/memkit/mem/alloc"
)

// Root hands out the address ranges of standalone regions. It plays the part
// of the top-level heap: every region that is not a heap block or an alias
// takes its base from a Root.
//
// Root allocation is safe for concurrent use.
type Root struct {
	opts  Options
	addrs *alloc.Locked
}

// NewRoot creates a root over [opts.RootBase, opts.RootBase+opts.RootSize).
// Zero fields of opts take their DefaultOptions value.
func NewRoot(opts Options) (*Root, error) {
	opts = opts.withDefaults()
	if !buf.IsPow2(opts.PageSize) {
		return nil, fmt.Errorf("region: page size %d is not a power of two", opts.PageSize)
	}
	addrs, err := alloc.NewLocked(opts.RootBase, opts.RootSize)
	if err != nil {
		return nil, fmt.Errorf("region: root: %w", err)
	}
	if opts.LogAlloc {
		addrs.SetLogging(true)
	}
	return &Root{opts: opts, addrs: addrs}, nil
}

// Options returns the effective options.
func (rt *Root) Options() Options { return rt.opts }

// Stats summarizes the root address range.
func (rt *Root) Stats() alloc.Stats { return rt.addrs.Stats() }

// Alloc creates a standalone region of size bytes whose base is a multiple of
// align. Lazy regions commit pages on first access; the others are committed
// up front.
func (rt *Root) Alloc(size, align uint64, lazy bool) (*Region, error) {
	if size == 0 {
		return nil, ErrBadSize
	}
	base, err := rt.addrs.Alloc(size, align)
	if err != nil {
		logger.Debug("root alloc failed", "size", size, "align", align, "err", err)
		return nil, err
	}

	var store backing.Store
	if lazy {
		store = backing.NewSparse(size, rt.opts.PageSize)
	} else {
		eager, err := backing.NewEager(size, rt.opts.mmapThreshold())
		if err != nil {
			return nil, errors.Join(err, rt.addrs.Free(base))
		}
		store = eager
	}
	return rt.adopt(base, size, &memory{store: store}), nil
}

// MapFile creates a standalone region over the contents of the file at path.
// The region size is the file size. Writes to a writable mapping reach the
// file on Region.Sync or Free.
func (rt *Root) MapFile(path string, align uint64, writable bool) (*Region, error) {
	f, err := backing.OpenFile(path, writable)
	if err != nil {
		return nil, err
	}
	if f.Len() == 0 {
		_ = f.Release()
		return nil, fmt.Errorf("%w: %s is empty", ErrBadSize, path)
	}
	base, err := rt.addrs.Alloc(f.Len(), align)
	if err != nil {
		return nil, errors.Join(err, f.Release())
	}
	return rt.adopt(base, f.Len(), &memory{store: f}), nil
}

// NewIO creates a device region at base. IO regions do not take their range
// from the root allocator: devices sit at fixed addresses. All typed accesses
// in [base, base+size) are forwarded to dev.
func NewIO(base, size uint64, dev Device) (*Region, error) {
	if size == 0 {
		return nil, ErrBadSize
	}
	if dev == nil {
		return nil, errors.New("region: nil device")
	}
	if _, ok := buf.AddU64(base, size); !ok {
		return nil, fmt.Errorf("%w: %#x+%#x wraps", ErrBounds, base, size)
	}
	return newRegion(KindIO, base, size, &memory{dev: dev}, 0), nil
}

func (rt *Root) adopt(base, size uint64, mem *memory) *Region {
	r := newRegion(KindStandalone, base, size, mem, 0)
	r.root = rt
	logger.Debug("alloc region", "region", r.String())
	return r
}
