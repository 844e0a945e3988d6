package dirty

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_DirtyTracker_PageAlignment(t *testing.T) {
	tracker := NewTracker(make([]byte, 8192))
	tracker.Add(100, 200)

	// Start 100 rounds down to 0, end 300 rounds up to 4096.
	require.Equal(t, []Range{{Off: 0, Len: 4096}}, tracker.CoalescedRanges())
}

func Test_DirtyTracker_Coalesce_AdjacentAndOverlapping(t *testing.T) {
	tracker := NewTracker(make([]byte, 8*4096))
	tracker.Add(4096, 4096)
	tracker.Add(8192, 10)
	tracker.Add(4100, 1)
	tracker.Add(6*4096, 1)

	assert.Equal(t, []Range{
		{Off: 4096, Len: 2 * 4096},
		{Off: 6 * 4096, Len: 4096},
	}, tracker.CoalescedRanges())
}

func Test_DirtyTracker_ClampsToBuffer(t *testing.T) {
	tracker := NewTracker(make([]byte, 5000))
	tracker.Add(4500, 100)
	tracker.Add(9000, 10)

	assert.Equal(t, []Range{{Off: 4096, Len: 5000 - 4096}}, tracker.CoalescedRanges())
}

func Test_DirtyTracker_EmptyAndReset(t *testing.T) {
	tracker := NewTracker(make([]byte, 4096))
	tracker.Add(10, 0)
	assert.False(t, tracker.Pending())
	assert.Nil(t, tracker.CoalescedRanges())

	tracker.Add(10, 1)
	assert.True(t, tracker.Pending())
	tracker.Reset()
	assert.False(t, tracker.Pending())
}

func Test_DirtyTracker_FlushCancelledKeepsRanges(t *testing.T) {
	tracker := NewTracker(make([]byte, 4096))
	tracker.Add(0, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, tracker.Flush(ctx), context.Canceled)
	assert.True(t, tracker.Pending(), "cancelled flush keeps ranges for retry")
}
