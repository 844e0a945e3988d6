package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCoalesce_AdjacentEitherOrder(t *testing.T) {
	orders := map[string][2]int{
		"low first":  {0, 1},
		"high first": {1, 0},
	}
	for name, order := range orders {
		t.Run(name, func(t *testing.T) {
			a, err := New(0x1000, 0x100)
			require.NoError(t, err)

			var blocks [3]uint64
			for i := range blocks {
				blocks[i], err = a.Alloc(0x20, 0x10)
				require.NoError(t, err)
			}

			require.NoError(t, a.Free(blocks[order[0]]))
			require.NoError(t, a.Free(blocks[order[1]]))
			requireInvariants(t, a)

			require.Equal(t, Range{Addr: 0x1000, Len: 0x40}, a.FreeRanges()[0],
				"two adjacent frees must leave one range")
		})
	}
}

func TestCoalesce_BothNeighbours(t *testing.T) {
	a, err := New(0, 30)
	require.NoError(t, err)

	var blocks [3]uint64
	for i := range blocks {
		blocks[i], err = a.Alloc(10, 1)
		require.NoError(t, err)
	}

	require.NoError(t, a.Free(blocks[0]))
	require.NoError(t, a.Free(blocks[2]))
	require.Len(t, a.FreeRanges(), 2)

	require.NoError(t, a.Free(blocks[1]))
	require.Equal(t, []Range{{Addr: 0, Len: 30}}, a.FreeRanges())
}

func TestCoalesce_FreeAllRestoresFullRange(t *testing.T) {
	a, err := New(7, 1000)
	require.NoError(t, err)

	var live []uint64
	for {
		addr, err := a.Alloc(13, 4)
		if err != nil {
			require.ErrorIs(t, err, ErrOutOfSpace)
			break
		}
		live = append(live, addr)
	}
	require.NotEmpty(t, live)

	// Free odd blocks then even ones to force fragmentation in between.
	for i := 1; i < len(live); i += 2 {
		require.NoError(t, a.Free(live[i]))
	}
	requireInvariants(t, a)
	for i := 0; i < len(live); i += 2 {
		require.NoError(t, a.Free(live[i]))
	}

	require.Equal(t, []Range{{Addr: 7, Len: 1000}}, a.FreeRanges())
	require.Zero(t, a.Stats().Fragmentation)
}
