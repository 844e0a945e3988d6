package backing

import (
	"context"
	"fmt"
	"os"

	"github.com/joshuapare/memkit/mem/dirty"
)

// File is a store over a memory-mapped file, used for ROM and firmware
// images. Writes are recorded by a dirty tracker and reach the file on Sync.
type File struct {
	path     string
	data     []byte
	writable bool
	unmap    func() error
	tracker  *dirty.Tracker
	released bool
}

// OpenFile maps the file at path. A read-only store rejects writes with ErrReadOnly.
func OpenFile(path string, writable bool) (*File, error) {
	data, unmap, err := mapFile(path, writable)
	if err != nil {
		return nil, fmt.Errorf("backing: open %s: %w", path, err)
	}
	return &File{
		path:     path,
		data:     data,
		writable: writable,
		unmap:    unmap,
		tracker:  dirty.NewTracker(data),
	}, nil
}

// Path is the mapped file.
func (f *File) Path() string { return f.path }

// Writable reports whether writes are accepted.
func (f *File) Writable() bool { return f.writable }

// Len is the file size.
func (f *File) Len() uint64 { return uint64(len(f.data)) }

// Committed is the mapped size; the kernel pages it in on demand.
func (f *File) Committed() uint64 {
	if f.released {
		return 0
	}
	return uint64(len(f.data))
}

// ReadAt copies out len(p) bytes at off.
func (f *File) ReadAt(p []byte, off uint64) error {
	if f.released {
		return ErrReleased
	}
	src, err := window(f.data, off, len(p))
	if err != nil {
		return err
	}
	copy(p, src)
	return nil
}

// WriteAt copies p in at off and marks the range dirty.
func (f *File) WriteAt(p []byte, off uint64) error {
	if f.released {
		return ErrReleased
	}
	if !f.writable {
		return fmt.Errorf("%w: %s", ErrReadOnly, f.path)
	}
	dst, err := window(f.data, off, len(p))
	if err != nil {
		return err
	}
	copy(dst, p)
	f.tracker.Add(off, uint64(len(p)))
	return nil
}

// Sync writes dirty pages back to the file.
func (f *File) Sync(ctx context.Context) error {
	if f.released {
		return ErrReleased
	}
	if !f.tracker.Pending() {
		return nil
	}
	if !fileMapped {
		if err := os.WriteFile(f.path, f.data, 0o644); err != nil {
			return err
		}
		f.tracker.Reset()
		return nil
	}
	return f.tracker.Flush(ctx)
}

// Release syncs pending writes and unmaps the file.
func (f *File) Release() error {
	if f.released {
		return ErrReleased
	}
	syncErr := f.Sync(context.Background())
	f.released = true
	f.data = nil
	if err := f.unmap(); err != nil {
		return err
	}
	return syncErr
}
