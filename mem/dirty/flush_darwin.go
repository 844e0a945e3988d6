//go:build darwin

package dirty

import (
	"context"

	"golang.org/x/sys/unix"
)

// flushRanges flushes dirty ranges.
//
// On macOS, msync() requires the address to match the original mmap() address,
// so the whole mapping is synced. The kernel only writes pages that are dirty.
func (t *Tracker) flushRanges(ctx context.Context, _ []Range) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return unix.Msync(t.data, unix.MS_SYNC)
}
