package region

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memkit/internal/backing"
	"github.com/joshuapare/memkit/mem/alloc"
)

func newTestRoot(t *testing.T) *Root {
	t.Helper()
	opts := DefaultOptions()
	opts.RootBase = 0x1000
	opts.RootSize = 1 << 40
	root, err := NewRoot(opts)
	require.NoError(t, err)
	return root
}

func TestNewRoot_Options(t *testing.T) {
	root, err := NewRoot(Options{})
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<63), root.Options().RootSize)
	assert.Equal(t, uint64(4096), root.Options().PageSize)
	assert.Equal(t, uint64(backing.DefaultMmapThreshold), root.Options().MmapThreshold)

	_, err = NewRoot(Options{PageSize: 3000})
	require.Error(t, err)

	_, err = NewRoot(Options{RootBase: math.MaxUint64, RootSize: 2})
	require.ErrorIs(t, err, alloc.ErrBadRange)
}

func TestRoot_Alloc(t *testing.T) {
	root := newTestRoot(t)

	r, err := root.Alloc(9, 8, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1000), r.Base())
	assert.Equal(t, uint64(9), r.Size())
	assert.Equal(t, KindStandalone, r.Kind())
	assert.Equal(t, "Eager", r.Describe())

	lazy, err := root.Alloc(0x100, 0x100, true)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1100), lazy.Base())
	assert.True(t, lazy.Lazy())
	assert.Equal(t, "Lazy", lazy.Describe())
	assert.False(t, Overlapping(r, lazy))

	_, err = root.Alloc(0, 1, false)
	require.ErrorIs(t, err, ErrBadSize)
	_, err = root.Alloc(1, 3, false)
	require.ErrorIs(t, err, ErrBadAlign)
	_, err = root.Alloc(1<<41, 1, true)
	require.ErrorIs(t, err, ErrOutOfSpace)
}

func TestRoot_AllocTooLarge(t *testing.T) {
	root, err := NewRoot(Options{NoMmap: true})
	require.NoError(t, err)
	_, err = root.Alloc(1<<50, 1, false)
	require.ErrorIs(t, err, backing.ErrTooLarge)
	assert.Zero(t, root.Stats().UsedBytes)

	// Zero options map large regions, so the request either succeeds or
	// reports the failed mapping.
	root, err = NewRoot(Options{})
	require.NoError(t, err)
	r, err := root.Alloc(1<<50, 1, false)
	if err != nil {
		require.ErrorIs(t, err, backing.ErrTooLarge)
		assert.Zero(t, root.Stats().UsedBytes)
		return
	}
	require.NoError(t, r.Free())
}

func TestRoot_FreeReturnsRange(t *testing.T) {
	root := newTestRoot(t)

	r, err := root.Alloc(0x40, 0x10, false)
	require.NoError(t, err)
	require.Equal(t, 1, root.Stats().Allocations)

	require.NoError(t, r.Free())
	assert.Equal(t, 0, root.Stats().Allocations)

	again, err := root.Alloc(0x40, 0x10, false)
	require.NoError(t, err)
	assert.Equal(t, r.Base(), again.Base())
}

func TestLazyRegion_CommitsOnAccess(t *testing.T) {
	root := newTestRoot(t)

	r, err := root.Alloc(1<<30, 4096, true)
	require.NoError(t, err)
	assert.Zero(t, r.Committed())

	v, err := r.Read32(r.Base() + 0x10)
	require.NoError(t, err)
	assert.Zero(t, v, "fresh lazy memory reads zero")
	assert.Equal(t, uint64(4096), r.Committed())

	require.NoError(t, r.Write64(r.Base()+(1<<29), 0x1122334455667788))
	assert.Equal(t, uint64(8192), r.Committed())
}

func TestFree_DoubleFreeAndUseAfterFree(t *testing.T) {
	root := newTestRoot(t)

	r, err := root.Alloc(16, 1, false)
	require.NoError(t, err)
	require.NoError(t, r.Free())
	assert.True(t, r.Freed())

	require.ErrorIs(t, r.Free(), ErrDoubleFree)

	_, err = r.Read8(r.Base())
	require.ErrorIs(t, err, ErrUseAfterFree)
	require.ErrorIs(t, r.Write8(r.Base(), 1), ErrUseAfterFree)
	_, err = r.Heap()
	require.ErrorIs(t, err, ErrUseAfterFree)
	_, err = r.Map(0x9000)
	require.ErrorIs(t, err, ErrUseAfterFree)
}

func TestClaim_BlocksFree(t *testing.T) {
	root := newTestRoot(t)
	r, err := root.Alloc(16, 1, false)
	require.NoError(t, err)

	owner := new(int)
	require.NoError(t, r.Claim(owner))
	require.ErrorIs(t, r.Claim(new(int)), ErrOwned)
	require.ErrorIs(t, r.Free(), ErrOwned)
	require.ErrorIs(t, r.Unclaim(new(int)), ErrOwned)

	require.NoError(t, r.Unclaim(owner))
	assert.Nil(t, r.Owner())
	require.NoError(t, r.Free())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "Standalone", KindStandalone.String())
	assert.Equal(t, "Block", KindBlock.String())
	assert.Equal(t, "Remap", KindRemap.String())
	assert.Equal(t, "IO", KindIO.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
