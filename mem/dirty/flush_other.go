//go:build !unix

package dirty

import "context"

// flushRanges is a no-op where files are not mapped: the backing store
// writes through on Sync instead.
func (t *Tracker) flushRanges(ctx context.Context, _ []Range) error {
	return ctx.Err()
}
