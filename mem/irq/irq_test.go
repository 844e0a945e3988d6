package irq

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_RaiseDeliversWhenEnabled(t *testing.T) {
	c, err := New(4)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Len())

	var got []int
	require.NoError(t, c.Bind(2, func(line int) { got = append(got, line) }))

	// Disabled: dropped, not pending.
	require.NoError(t, c.Raise(2))
	pending, err := c.Pending(2)
	require.NoError(t, err)
	assert.False(t, pending)
	assert.Empty(t, got)

	require.NoError(t, c.Enable(2))
	require.NoError(t, c.Raise(2))
	pending, err = c.Pending(2)
	require.NoError(t, err)
	assert.True(t, pending)
	assert.Equal(t, []int{2}, got)

	n, err := c.Count(2)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)

	require.NoError(t, c.Ack(2))
	pending, err = c.Pending(2)
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestController_DisableKeepsPending(t *testing.T) {
	c, err := New(1)
	require.NoError(t, err)
	require.NoError(t, c.Enable(0))
	require.NoError(t, c.Raise(0))
	require.NoError(t, c.Disable(0))

	pending, err := c.Pending(0)
	require.NoError(t, err)
	assert.True(t, pending)

	// A raise while masked clears the stale pending bit.
	require.NoError(t, c.Raise(0))
	pending, err = c.Pending(0)
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestController_Bind(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)
	h := func(int) {}

	require.NoError(t, c.Bind(0, h))
	require.ErrorIs(t, c.Bind(0, h), ErrBound)
	require.NoError(t, c.Unbind(0))
	require.NoError(t, c.Bind(0, h))

	require.ErrorIs(t, c.Bind(1, nil), ErrNilHandler)
	require.ErrorIs(t, c.Bind(2, h), ErrUnknownLine)
}

func TestController_UnknownLine(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	require.ErrorIs(t, c.Raise(2), ErrUnknownLine)
	require.ErrorIs(t, c.Enable(-1), ErrUnknownLine)
	_, err = c.Pending(5)
	require.ErrorIs(t, err, ErrUnknownLine)
	_, err = c.Line(2)
	require.ErrorIs(t, err, ErrUnknownLine)

	_, err = New(0)
	require.ErrorIs(t, err, ErrBadCount)
	_, err = New(MaxLines + 1)
	require.ErrorIs(t, err, ErrBadCount)
}

func TestController_HandlerMayAck(t *testing.T) {
	c, err := New(1)
	require.NoError(t, err)
	require.NoError(t, c.Enable(0))
	require.NoError(t, c.Bind(0, func(line int) {
		assert.NoError(t, c.Ack(line))
	}))

	l, err := c.Line(0)
	require.NoError(t, err)
	assert.Equal(t, 0, l.Num())
	require.NoError(t, l.Raise())

	pending, err := c.Pending(0)
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestController_Masks(t *testing.T) {
	c, err := New(8)
	require.NoError(t, err)

	require.NoError(t, c.SetEnabledMask(0b1010, 0xff))
	assert.Equal(t, uint64(0b1010), c.EnabledMask())

	require.NoError(t, c.RaiseMask(0b1110))
	assert.Equal(t, uint64(0b1010), c.PendingMask(), "masked lines are dropped")

	require.NoError(t, c.AckMask(0b0010))
	assert.Equal(t, uint64(0b1000), c.PendingMask())

	require.ErrorIs(t, c.RaiseMask(1<<8), ErrUnknownLine)
	require.ErrorIs(t, c.AckMask(1<<63), ErrUnknownLine)
}

func TestController_ConcurrentRaise(t *testing.T) {
	const (
		workers = 8
		raises  = 100
	)
	c, err := New(workers)
	require.NoError(t, err)

	var mu sync.Mutex
	delivered := 0
	for i := range workers {
		require.NoError(t, c.Enable(i))
		require.NoError(t, c.Bind(i, func(line int) {
			mu.Lock()
			delivered++
			mu.Unlock()
			_ = c.Ack(line)
		}))
	}

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l, err := c.Line(i)
			if err != nil {
				return
			}
			for range raises {
				_ = l.Raise()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, workers*raises, delivered)
	assert.Zero(t, c.PendingMask())
}
