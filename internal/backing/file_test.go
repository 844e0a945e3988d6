package backing

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memkit/internal/testutil"
)

func TestFile_ReadWriteSync(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mmap test in short mode")
	}
	path := testutil.TempFile(t, "rom.bin", []byte{0xde, 0xad, 0xbe, 0xef, 0x42, 0, 0, 0})

	f, err := OpenFile(path, true)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), f.Len())
	assert.Equal(t, "File", Kind(f))

	got := make([]byte, 4)
	require.NoError(t, f.ReadAt(got, 0))
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, got)

	require.NoError(t, f.WriteAt([]byte{1, 2, 3}, 5))
	require.NoError(t, f.Sync(context.Background()))

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef, 0x42, 1, 2, 3}, onDisk)

	require.NoError(t, f.Release())
	require.ErrorIs(t, f.ReadAt(got, 0), ErrReleased)
}

func TestFile_ReadOnlyRejectsWrites(t *testing.T) {
	path := testutil.TempFile(t, "rom.bin", []byte{1, 2, 3, 4})

	f, err := OpenFile(path, false)
	require.NoError(t, err)
	defer f.Release()

	require.ErrorIs(t, f.WriteAt([]byte{9}, 0), ErrReadOnly)
}

func TestFile_EmptyOrMissing(t *testing.T) {
	_, err := OpenFile(testutil.TempFile(t, "empty.bin", nil), false)
	require.Error(t, err)

	_, err = OpenFile(testutil.MissingFile(t, "missing.bin"), false)
	require.ErrorIs(t, err, os.ErrNotExist)
}
