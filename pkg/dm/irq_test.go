package dm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memkit/mem/irq"
)

// doorbell raises its interrupt on every write.
type doorbell struct {
	line irq.Line
	last uint64
}

func (d *doorbell) Read(off uint64, width int) (uint64, error) { return d.last, nil }

func (d *doorbell) Write(off uint64, width int, v uint64) error {
	d.last = v
	return d.line.Raise()
}

func TestEngine_DeviceRaisesIRQ(t *testing.T) {
	e := newEngine(t)
	sp, err := e.Space("soc")
	require.NoError(t, err)

	c, err := e.NewIRQ(4)
	require.NoError(t, err)
	pic, err := e.IRQRegion(c, 0x0c00_0000)
	require.NoError(t, err)
	_, _, err = e.AddRegion(sp, "pic", pic)
	require.NoError(t, err)

	line, err := e.IRQLine(c, 3)
	require.NoError(t, err)
	dev, err := e.NewIO(0x1000_0000, 0x10, &doorbell{line: line})
	require.NoError(t, err)
	_, _, err = e.AddRegion(sp, "bell", dev)
	require.NoError(t, err)

	var fired []int
	require.NoError(t, e.BindIRQ(c, 3, func(l int) { fired = append(fired, l) }))

	// Masked: the write lands but nothing fires.
	require.NoError(t, e.SpaceWrite32(sp, 0x1000_0000, 1))
	assert.Empty(t, fired)

	require.NoError(t, e.SpaceWrite64(sp, 0x0c00_0000+irq.RegEnable, 1<<3))
	require.NoError(t, e.SpaceWrite32(sp, 0x1000_0000, 2))
	assert.Equal(t, []int{3}, fired)

	pending, err := e.IRQPending(c, 3)
	require.NoError(t, err)
	assert.True(t, pending)
	v, err := e.SpaceRead64(sp, 0x0c00_0000+irq.RegPending)
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<3), v)

	require.NoError(t, e.SpaceWrite64(sp, 0x0c00_0000+irq.RegPending, 1<<3))
	pending, err = e.IRQPending(c, 3)
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestEngine_IRQLifecycle(t *testing.T) {
	e := newEngine(t)

	_, err := e.NewIRQ(0)
	require.ErrorIs(t, err, irq.ErrBadCount)

	c, err := e.NewIRQ(2)
	require.NoError(t, err)
	require.NoError(t, e.EnableIRQ(c, 1))
	require.NoError(t, e.RaiseIRQ(c, 1))
	require.NoError(t, e.AckIRQ(c, 1))
	require.NoError(t, e.DisableIRQ(c, 1))
	require.ErrorIs(t, e.RaiseIRQ(c, 2), irq.ErrUnknownLine)

	sp, err := e.NewSpace("")
	require.NoError(t, err)
	require.ErrorIs(t, e.EnableIRQ(sp, 0), ErrWrongKind)

	require.NoError(t, e.FreeIRQ(c))
	require.ErrorIs(t, e.RaiseIRQ(c, 0), ErrStaleHandle)
	require.ErrorIs(t, e.FreeIRQ(c), ErrStaleHandle)
}
