package alloc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocked_ScenarioMatchesPlain(t *testing.T) {
	l, err := NewLocked(1, 9)
	require.NoError(t, err)

	addr, err := l.Alloc(1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), addr)

	require.NoError(t, l.Free(addr))
	addr, err = l.Alloc(1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), addr)

	next, err := l.Alloc(1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), next)

	require.ErrorIs(t, l.Free(100), ErrNotAllocated)
}

func TestLocked_ConcurrentAllocsAreDisjoint(t *testing.T) {
	const (
		workers = 16
		perWork = 200
		size    = 1 << 16
	)
	l, err := NewLocked(0, size)
	require.NoError(t, err)

	type block struct{ addr, size uint64 }
	results := make([][]block, workers)

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := range perWork {
				sz := uint64(1 + (w+i)%40)
				addr, err := l.Alloc(sz, 4)
				if err != nil {
					continue
				}
				results[w] = append(results[w], block{addr, sz})
				// Free every third block to interleave frees with allocations.
				if i%3 == 0 {
					if err := l.Free(addr); err == nil {
						results[w] = results[w][:len(results[w])-1]
					}
				}
			}
		}(w)
	}
	wg.Wait()

	var all []block
	var total uint64
	for _, r := range results {
		all = append(all, r...)
		for _, b := range r {
			total += b.size
		}
	}
	require.LessOrEqual(t, total, uint64(size))

	for i := range all {
		for j := i + 1; j < len(all); j++ {
			a, b := all[i], all[j]
			overlap := a.addr < b.addr+b.size && b.addr < a.addr+a.size
			require.False(t, overlap, "%#x+%d overlaps %#x+%d", a.addr, a.size, b.addr, b.size)
		}
	}

	s := l.Stats()
	assert.Equal(t, len(all), s.Allocations)
	assert.Equal(t, total, s.UsedBytes)
	assert.Len(t, l.Allocated(), len(all))
}

func TestLogging_ScopedToAllocator(t *testing.T) {
	a, err := New(0, 0x100)
	require.NoError(t, err)
	b, err := New(0, 0x100)
	require.NoError(t, err)
	assert.Equal(t, envLogAlloc, a.Logging())

	a.SetLogging(true)
	assert.True(t, a.Logging())
	assert.Equal(t, envLogAlloc, b.Logging(), "other allocators keep their own setting")

	a.SetLogging(false)
	assert.False(t, a.Logging())
}

func TestLocked_SetLoggingWhileAllocating(t *testing.T) {
	l, err := NewLocked(0, 1<<20)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for w := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				if w == 0 {
					l.SetLogging(i%2 == 0)
					continue
				}
				addr, err := l.Alloc(16, 16)
				if err != nil {
					continue
				}
				_ = l.Free(addr)
			}
		}()
	}
	wg.Wait()
	assert.False(t, l.Logging())
}
