package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memkit/mem/alloc"
)

func TestAllocCommand(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		base        uint64
		size        uint64
		locked      bool
		wantErr     bool
		wantContain []string
	}{
		{
			name: "first fit reuses freed block",
			args: []string{"0x100", "0x40:0x100", "free:0", "0x80"},
			size: 0x1000,
			wantContain: []string{
				"alloc size=0x100 align=0x1 -> 0x0",
				"alloc size=0x40 align=0x100 -> 0x100",
				"free 0x0 ok",
				"alloc size=0x80 align=0x1 -> 0x0",
			},
		},
		{
			name:        "locked allocator",
			args:        []string{"16:16", "16:16"},
			base:        0x1000,
			size:        0x1000,
			locked:      true,
			wantContain: []string{"-> 0x1000", "-> 0x1010", "Used: 0x20 bytes in 2 blocks"},
		},
		{
			name:        "out of space",
			args:        []string{"0x800", "0x801"},
			size:        0x1000,
			wantErr:     true,
			wantContain: []string{"ERROR"},
		},
		{
			name:    "bad free",
			args:    []string{"free:0x40"},
			size:    0x1000,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			allocBase = tt.base
			allocSize = tt.size
			allocLocked = tt.locked

			out, err := captureOutput(t, func() error { return runAlloc(tt.args) })
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			for _, want := range tt.wantContain {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestAllocCommandJSON(t *testing.T) {
	resetFlags()
	jsonOut = true
	allocSize = 0x100

	out, err := captureOutput(t, func() error { return runAlloc([]string{"0x10", "0x20:0x20"}) })
	require.NoError(t, err)

	var report AllocReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Steps, 2)
	assert.Equal(t, uint64(0x20), report.Steps[1].Addr)
	assert.Equal(t, uint64(0x30), report.Stats.UsedBytes)
	assert.Equal(t, []alloc.Range{{Addr: 0x10, Len: 0x10}, {Addr: 0x40, Len: 0xc0}}, report.Free)
}

func TestParseAllocStep(t *testing.T) {
	step, err := parseAllocStep("0x40:8")
	require.NoError(t, err)
	assert.Equal(t, AllocStep{Op: "alloc", Size: 0x40, Align: 8}, step)

	step, err = parseAllocStep("free:0x1000")
	require.NoError(t, err)
	assert.Equal(t, AllocStep{Op: "free", Addr: 0x1000}, step)

	_, err = parseAllocStep("big")
	require.Error(t, err)
	_, err = parseAllocStep("4:x")
	require.Error(t, err)
}
