// Package dirty tracks modified byte ranges of a memory-mapped buffer and
// flushes them back to the mapped file.
//
// The tracker keeps a list of dirty byte ranges, coalesces them into
// page-aligned ranges at flush time, and writes them out with msync on unix.
// File-mapped regions use it so that Region.Sync only touches written pages.
package dirty

import (
	"context"
	"sort"
	"sync"
)

const (
	// defaultRangeCapacity is the pre-allocated capacity for dirty ranges.
	defaultRangeCapacity = 64

	// standardPageSize is the typical OS page size (4KB).
	standardPageSize = 4096
)

// Range represents a dirty byte range (offsets into the tracked buffer).
type Range struct {
	Off uint64
	Len uint64
}

// Tracker accumulates dirty ranges and flushes them.
//
// Add and Flush may be called from different goroutines; the range list is
// guarded by a mutex. The tracked buffer itself is not.
type Tracker struct {
	mu       sync.Mutex
	data     []byte
	ranges   []Range
	pageSize uint64
}

// NewTracker creates a tracker for data, normally the slice returned by mmap.
func NewTracker(data []byte) *Tracker {
	return &Tracker{
		data:     data,
		ranges:   make([]Range, 0, defaultRangeCapacity),
		pageSize: standardPageSize,
	}
}

// Add records a dirty range. Empty ranges are ignored.
func (t *Tracker) Add(off, length uint64) {
	if length == 0 {
		return
	}
	t.mu.Lock()
	t.ranges = append(t.ranges, Range{Off: off, Len: length})
	t.mu.Unlock()
}

// Pending reports whether any range is waiting to be flushed.
func (t *Tracker) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.ranges) > 0
}

// Flush writes all dirty pages back and clears the range list.
//
// The context is checked between ranges. If cancelled, some ranges may have
// been flushed while others have not; the list is kept so a later Flush retries.
func (t *Tracker) Flush(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.ranges) == 0 || len(t.data) == 0 {
		t.ranges = t.ranges[:0]
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := t.flushRanges(ctx, t.coalesce()); err != nil {
		return err
	}

	t.ranges = t.ranges[:0]
	return nil
}

// Reset clears all tracked ranges without flushing.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.ranges = t.ranges[:0]
	t.mu.Unlock()
}

// CoalescedRanges returns the page-aligned, merged ranges that Flush would write.
func (t *Tracker) CoalescedRanges() []Range {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.coalesce()
}

// coalesce page-aligns all ranges, clamps them to the buffer, sorts them,
// and merges overlapping/adjacent ranges. Caller holds t.mu.
func (t *Tracker) coalesce() []Range {
	if len(t.ranges) == 0 {
		return nil
	}

	limit := uint64(len(t.data))
	aligned := make([]Range, 0, len(t.ranges))
	for _, r := range t.ranges {
		start := (r.Off / t.pageSize) * t.pageSize
		end := r.Off + r.Len
		if end%t.pageSize != 0 {
			end = ((end / t.pageSize) + 1) * t.pageSize
		}
		if end > limit {
			end = limit
		}
		if start >= end {
			continue
		}
		aligned = append(aligned, Range{Off: start, Len: end - start})
	}
	if len(aligned) == 0 {
		return nil
	}

	sort.Slice(aligned, func(i, j int) bool {
		return aligned[i].Off < aligned[j].Off
	})

	merged := make([]Range, 0, len(aligned))
	current := aligned[0]
	for _, next := range aligned[1:] {
		if next.Off <= current.Off+current.Len {
			if end := next.Off + next.Len; end > current.Off+current.Len {
				current.Len = end - current.Off
			}
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}
