package script

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memkit/mem/irq"
	"github.com/joshuapare/memkit/mem/region"
	"github.com/joshuapare/memkit/mem/space"
	"github.com/joshuapare/memkit/pkg/dm"
)

func newEngine(t *testing.T) *dm.Engine {
	t.Helper()
	e, err := dm.New(dm.DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func run(t *testing.T, e *dm.Engine, src string) (Result, string, error) {
	t.Helper()
	cmds, err := Parse(strings.NewReader(src), ParseOptions{})
	require.NoError(t, err)
	var out bytes.Buffer
	res, err := NewRunner(e, &out).Run(context.Background(), cmds)
	return res, out.String(), err
}

func TestRunScenario(t *testing.T) {
	e := newEngine(t)
	res, out, err := run(t, e, `
root ram 0x10000 align=0x1000
alloc blk ram 0x100 align=0x100
write16 blk 0x0 0x5aa5
read16 ram 0x0 expect=0x5aa5
map hi ram 0x8000_0000
read16 hi 0x80000000 expect=0x5aa5
add hi
sread16 0x80000000 expect=0x5aa5
swrite32 0x10 0x12345678
read32 ram 0x10 expect=0x12345678
read8 ram 0x10 expect=0x99 fail
delete ram fail
free blk
freeheap ram
dump
delete hi
delete ram
`)
	require.NoError(t, err)

	assert.Equal(t, 17, res.Commands)
	assert.Equal(t, 5, res.Reads)
	assert.Equal(t, 2, res.Writes)
	assert.Empty(t, res.Regions)

	assert.Contains(t, out, "read16 ram 0x0 = 0x5aa5\n")
	assert.Contains(t, out, "sread16 0x80000000 = 0x5aa5\n")
	assert.Contains(t, out, "read32 ram 0x10 = 0x12345678\n")
	assert.Contains(t, out, "regions:\n")
	assert.Contains(t, out, "Remap(")

	sp, err := e.Space(DefaultSpace)
	require.NoError(t, err)
	assert.Equal(t, sp, res.Space)
	_, err = e.GetRegion(sp, "ram")
	require.ErrorIs(t, err, space.ErrUnknownName)
}

func TestRunExpectMismatch(t *testing.T) {
	e := newEngine(t)
	res, out, err := run(t, e, `root ram 0x100
write8 ram 0x4 0x7
read8 ram 0x4 expect=0x8
dump`)
	require.ErrorIs(t, err, ErrExpect)
	assert.Contains(t, err.Error(), "line 3")
	assert.Equal(t, 3, res.Commands)
	assert.Contains(t, out, "read8 ram 0x4 = 0x07\n")
	assert.NotContains(t, out, "regions:")
}

func TestRunFailFlag(t *testing.T) {
	e := newEngine(t)
	_, _, err := run(t, e, "root ram 0x100 fail")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected failure")

	_, _, err = run(t, e, "read8 nothing 0 fail\nroot r 0x10\nread8 r 0x20 fail")
	require.NoError(t, err)
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"unknown region", "read8 ghost 0", ErrUnknownRegion},
		{"out of bounds", "root r 0x10\nread32 r 0xe", region.ErrBounds},
		{"unmapped", "sread8 0x1234", space.ErrUnmapped},
		{"value too wide", "root r 0x10\nwrite8 r 0 0x100", ErrSyntax},
		{"unknown name", "delete nope", space.ErrUnknownName},
		{"owned", "root r 0x10\nfree r", region.ErrOwned},
		{"busy", "root r 0x100\nalloc b r 0x10\ndelete r", region.ErrRegionBusy},
		{"not an irq controller", "root r 0x10\nraise r 0", ErrNotIRQ},
		{"unknown irq line", "irq pic 2 0x1000\nraise pic 5", irq.ErrUnknownLine},
		{"no irq lines", "irq pic 0 0x1000", irq.ErrBadCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, newEngine(t), tt.src)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRunSupersede(t *testing.T) {
	e := newEngine(t)
	res, _, err := run(t, e, `root a 0x1000
write8 a 0 0x11
root a 0x1000
write8 a 0x1000 0x22`)
	require.NoError(t, err)

	h, ok := res.Handle("a")
	require.True(t, ok)
	info, err := e.RegionInfo(h)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1000), info.Base)

	sp, err := e.Space(DefaultSpace)
	require.NoError(t, err)
	got, err := e.GetRegion(sp, "a")
	require.NoError(t, err)
	v, err := e.Read8(got, 0x1000)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x22), v)
}

func TestRunRejectedAddKeepsRegion(t *testing.T) {
	e := newEngine(t)
	res, _, err := run(t, e, `root ram 0x1000 align=0x1000
alloc blk ram 0x10
add blk fail
write8 blk 0x0 0x1
read8 ram 0x0 expect=0x1
free blk`)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Writes)

	_, ok := res.Handle("blk")
	assert.False(t, ok)
	sp, err := e.Space(DefaultSpace)
	require.NoError(t, err)
	_, err = e.GetRegion(sp, "blk")
	require.ErrorIs(t, err, space.ErrUnknownName)
}

func TestRunSpaces(t *testing.T) {
	e := newEngine(t)
	res, _, err := run(t, e, `space io
root regs 0x100
swrite64 0x8 0x0102030405060708
space root
sread8 0x8 fail
space io
sread8 0x8 expect=0x08
sread64 0x8 expect=0x0102030405060708`)
	require.NoError(t, err)

	io, err := e.Space("io")
	require.NoError(t, err)
	assert.Equal(t, io, res.Space)
}

func TestRunCanceled(t *testing.T) {
	e := newEngine(t)
	cmds, err := Parse(strings.NewReader("root r 0x10\ndump"), ParseOptions{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := NewRunner(e, nil).Run(ctx, cmds)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, res.Commands)
}

func TestRunIRQ(t *testing.T) {
	e := newEngine(t)
	res, out, err := run(t, e, `irq pic 4 0x0c00_0000
raise pic 1
pending pic 1 expect=0
enable pic 1
raise pic 1
pending pic 1 expect=1
read64 pic 0x0c000008 expect=0x2
ack pic 1
sread64 0x0c000008 expect=0
write64 pic 0x0c000010 0x3
pending pic 1 expect=1
pending pic 0 expect=0
raise pic 9 fail
delete pic
raise pic 1 fail`)
	require.NoError(t, err)

	assert.Equal(t, 2, res.IRQs)
	assert.Equal(t, 6, res.Reads)
	assert.Equal(t, 1, res.Writes)
	assert.Equal(t, 2, strings.Count(out, "irq pic 1\n"))
	assert.NotContains(t, out, "irq pic 0")
	assert.Contains(t, out, "pending pic 1 = 1\n")
	assert.Empty(t, res.Regions)
}
