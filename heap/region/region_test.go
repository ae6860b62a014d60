package region

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/dirty"
	"github.com/joshuapare/heapkit/internal/format"
)

// exerciseRegion checks the sbrk contract common to every region kind.
func exerciseRegion(t *testing.T, r Region) {
	t.Helper()
	page := r.PageSize()
	require.Positive(t, page)

	start := len(r.Bytes())

	prev, err := r.Extend(page)
	require.NoError(t, err)
	assert.Equal(t, start, prev)
	require.Len(t, r.Bytes(), start+page)

	for _, b := range r.Bytes()[start:] {
		require.Zero(t, b)
	}

	r.Bytes()[start] = 0xAB
	prev, err = r.Extend(2 * page)
	require.NoError(t, err)
	assert.Equal(t, start+page, prev)
	assert.Equal(t, byte(0xAB), r.Bytes()[start], "contents survive growth")

	_, err = r.Extend(page + 1)
	require.ErrorIs(t, err, ErrNotPageMultiple)
	_, err = r.Extend(0)
	require.ErrorIs(t, err, ErrNotPageMultiple)
}

func TestMemory(t *testing.T) {
	r := NewMemoryWithPageSize(16*1024, 4096)
	exerciseRegion(t, r)
	assert.Equal(t, 16*1024, r.Limit())

	_, err := r.Extend(4096)
	require.NoError(t, err)
	_, err = r.Extend(4096)
	require.ErrorIs(t, err, ErrExhausted)

	require.NoError(t, r.Close())
	_, err = r.Extend(4096)
	require.ErrorIs(t, err, ErrClosed)
}

func TestMemoryBaseFixed(t *testing.T) {
	r := NewMemoryWithPageSize(8*4096, 4096)
	_, err := r.Extend(4096)
	require.NoError(t, err)
	base := &r.Bytes()[0]
	_, err = r.Extend(4 * 4096)
	require.NoError(t, err)
	assert.Same(t, base, &r.Bytes()[0])
}

func TestMemoryLimitRoundsUp(t *testing.T) {
	r := NewMemoryWithPageSize(5000, 4096)
	assert.Equal(t, 8192, r.Limit())
}

func TestMmap(t *testing.T) {
	r, err := NewMmap(1 << 20)
	if err != nil {
		t.Skipf("mmap unavailable: %v", err)
	}
	defer r.Close()
	exerciseRegion(t, r)
}

func TestFileCreateAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heap.bin")

	fr, err := OpenFile(path, &FileOptions{Create: true})
	if err != nil {
		t.Skipf("file region unavailable: %v", err)
	}
	exerciseRegion(t, fr)
	size := len(fr.Bytes())
	fr.Bytes()[size-1] = 0x5A
	assert.GreaterOrEqual(t, fr.FD(), 0)
	require.NoError(t, fr.Sync(context.Background(), dirty.FlushDataOnly))
	require.NoError(t, fr.Close())

	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(size), st.Size())

	fr, err = OpenFile(path, nil)
	require.NoError(t, err)
	defer fr.Close()
	require.Len(t, fr.Bytes(), size)
	assert.Equal(t, byte(0x5A), fr.Bytes()[size-1])
}

func TestFileMissingWithoutCreate(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "absent"), nil)
	require.Error(t, err)
}

func TestFileRejectsPartialPage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odd.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 100), 0o600))
	_, err := OpenFile(path, nil)
	require.ErrorIs(t, err, ErrNotPageMultiple)
}

func TestFileTracksGrowth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.bin")
	fr, err := OpenFile(path, &FileOptions{Create: true})
	require.NoError(t, err)
	defer fr.Close()

	_, err = fr.Extend(fr.PageSize())
	require.NoError(t, err)
	tr, ok := fr.Tracker().(*dirty.Tracker)
	require.True(t, ok)
	assert.True(t, tr.Pending())
	require.NoError(t, fr.Sync(context.Background(), dirty.FlushAuto))
	assert.False(t, tr.Pending())
}

func TestFileLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locked.bin")
	first, err := OpenFile(path, &FileOptions{Create: true})
	require.NoError(t, err)
	defer first.Close()

	_, err = OpenFile(path, nil)
	require.ErrorIs(t, err, ErrLocked)

	shared, err := OpenFile(path, &FileOptions{NoLock: true})
	require.NoError(t, err)
	require.NoError(t, shared.Close())
}

func TestWasm(t *testing.T) {
	ctx := context.Background()
	r, err := NewWasm(ctx, 4)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, format.WasmPageSize, r.PageSize())
	assert.Empty(t, r.Bytes())
	exerciseRegion(t, r)
	assert.Equal(t, uint32(3), r.Pages())

	// Capacity is reserved at the maximum, so growth never moves byte 0.
	base := &r.Bytes()[0]
	_, err = r.Extend(format.WasmPageSize)
	require.NoError(t, err)
	assert.Same(t, base, &r.Bytes()[0])
	assert.Equal(t, uint32(4), r.Pages())

	_, err = r.Extend(format.WasmPageSize)
	require.ErrorIs(t, err, ErrExhausted)

	_, err = NewWasm(ctx, 0)
	require.Error(t, err)
}
