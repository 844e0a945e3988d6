package region

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeap_BlocksShareStorage(t *testing.T) {
	root := newTestRoot(t)
	r, err := root.Alloc(8, 1, true)
	require.NoError(t, err)

	h, err := r.Heap()
	require.NoError(t, err)
	again, err := r.Heap()
	require.NoError(t, err)
	assert.Same(t, h, again, "heap is created once")
	assert.Equal(t, r.Base(), h.Base())
	assert.Equal(t, r.Size(), h.Size())

	a, err := h.Alloc(2, 1)
	require.NoError(t, err)
	b, err := h.Alloc(2, 1)
	require.NoError(t, err)
	assert.Equal(t, r.Base(), a.Base())
	assert.Equal(t, r.Base()+2, b.Base())
	assert.Equal(t, KindBlock, a.Kind())
	assert.Equal(t, int64(2), r.LiveBlocks())

	require.NoError(t, b.Write16(b.Base(), 0x1234))
	v, err := r.Read16(r.Base() + 2)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), v)

	_, err = b.Read8(b.Base() + 2)
	require.ErrorIs(t, err, ErrBounds, "blocks are bounded by their own size")
}

func TestHeap_TeardownOrder(t *testing.T) {
	root := newTestRoot(t)
	r, err := root.Alloc(8, 1, false)
	require.NoError(t, err)
	h, err := r.Heap()
	require.NoError(t, err)
	blk, err := h.Alloc(4, 1)
	require.NoError(t, err)

	require.ErrorIs(t, r.Free(), ErrRegionBusy)
	require.ErrorIs(t, h.Free(), ErrRegionBusy)

	require.NoError(t, blk.Free())
	require.ErrorIs(t, blk.Free(), ErrDoubleFree)
	assert.Zero(t, r.LiveBlocks())

	require.NoError(t, h.Free())
	require.ErrorIs(t, h.Free(), ErrDoubleFree)
	_, err = h.Alloc(1, 1)
	require.ErrorIs(t, err, ErrUseAfterFree)

	// The region keeps its storage after its heap is gone.
	require.NoError(t, r.Write8(r.Base(), 1))
	assert.False(t, r.HasHeap())

	require.NoError(t, r.Free())
}

func TestHeap_AllocAfterOwnerFreed(t *testing.T) {
	root := newTestRoot(t)
	r, err := root.Alloc(8, 1, false)
	require.NoError(t, err)
	h, err := r.Heap()
	require.NoError(t, err)
	require.NoError(t, r.Free())

	_, err = h.Alloc(1, 1)
	require.ErrorIs(t, err, ErrUseAfterFree)
}

func TestHeap_ThroughAlias(t *testing.T) {
	root := newTestRoot(t)
	r, err := root.Alloc(8, 1, false)
	require.NoError(t, err)
	alias, err := r.Map(0x9000)
	require.NoError(t, err)

	h, err := alias.Heap()
	require.NoError(t, err)
	assert.Same(t, r, h.Owner())
}

func TestHeap_OutOfSpace(t *testing.T) {
	root := newTestRoot(t)
	r, err := root.Alloc(8, 1, false)
	require.NoError(t, err)
	h, err := r.Heap()
	require.NoError(t, err)

	_, err = h.Alloc(8, 1)
	require.NoError(t, err)
	_, err = h.Alloc(1, 1)
	require.ErrorIs(t, err, ErrOutOfSpace)
	assert.Equal(t, uint64(0), h.Stats().FreeBytes)
}

func TestHeap_ConcurrentAlloc(t *testing.T) {
	root := newTestRoot(t)
	r, err := root.Alloc(1<<16, 1, true)
	require.NoError(t, err)
	h, err := r.Heap()
	require.NoError(t, err)

	const workers, each = 8, 64
	var (
		mu     sync.Mutex
		blocks []*Region
		wg     sync.WaitGroup
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range each {
				blk, err := h.Alloc(16, 16)
				if err != nil {
					t.Error(err)
					return
				}
				mu.Lock()
				blocks = append(blocks, blk)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, blocks, workers*each)
	assert.Equal(t, int64(workers*each), r.LiveBlocks())
	seen := make(map[uint64]bool)
	for _, b := range blocks {
		require.False(t, seen[b.Base()], "block %#x handed out twice", b.Base())
		seen[b.Base()] = true
	}
}

func TestHeap_NestedBlocks(t *testing.T) {
	root := newTestRoot(t)
	r, err := root.Alloc(64, 1, false)
	require.NoError(t, err)
	h, err := r.Heap()
	require.NoError(t, err)
	outer, err := h.Alloc(32, 16)
	require.NoError(t, err)

	inner, err := outer.Heap()
	require.NoError(t, err)
	blk, err := inner.Alloc(4, 4)
	require.NoError(t, err)
	require.NoError(t, blk.Write32(blk.Base(), 0xfeedface))

	v, err := r.Read32(outer.Base())
	require.NoError(t, err)
	assert.Equal(t, uint32(0xfeedface), v)

	require.ErrorIs(t, outer.Free(), ErrRegionBusy)
	require.NoError(t, blk.Free())
	require.NoError(t, outer.Free())
}

func TestHeap_InheritsRootLogging(t *testing.T) {
	root, err := NewRoot(Options{LogAlloc: true})
	require.NoError(t, err)
	assert.True(t, root.addrs.Logging())

	r, err := root.Alloc(0x100, 1, true)
	require.NoError(t, err)
	h, err := r.Heap()
	require.NoError(t, err)
	assert.True(t, h.addrs.Logging())

	blk, err := h.Alloc(0x40, 1)
	require.NoError(t, err)
	nested, err := blk.Heap()
	require.NoError(t, err)
	assert.True(t, nested.addrs.Logging())

	quiet := newTestRoot(t)
	q, err := quiet.Alloc(0x10, 1, true)
	require.NoError(t, err)
	qh, err := q.Heap()
	require.NoError(t, err)
	assert.Equal(t, quiet.addrs.Logging(), qh.addrs.Logging())
}
