//go:build unix

package region

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// failTruncate makes every truncate fail with EFBIG until the test ends.
func failTruncate(t *testing.T) {
	t.Helper()
	orig := truncateFile
	truncateFile = func(*os.File, int64) error { return unix.EFBIG }
	t.Cleanup(func() { truncateFile = orig })
}

func openTestFile(t *testing.T) *File {
	t.Helper()
	r, err := OpenFile(filepath.Join(t.TempDir(), "grow.heap"), &FileOptions{Create: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestFileGrowFailureRestoresMapping(t *testing.T) {
	r := openTestFile(t)
	page := r.PageSize()
	_, err := r.Extend(page)
	require.NoError(t, err)
	r.Bytes()[10] = 0x5A

	failTruncate(t)
	_, err = r.Extend(page)
	require.ErrorIs(t, err, unix.EFBIG)
	require.NotErrorIs(t, err, ErrUnmapped)
	require.Len(t, r.Bytes(), page)
	assert.Equal(t, byte(0x5A), r.Bytes()[10])

	truncateFile = (*os.File).Truncate
	prev, err := r.Extend(page)
	require.NoError(t, err)
	assert.Equal(t, page, prev)
	assert.Equal(t, byte(0x5A), r.Bytes()[10])
}

func TestFileGrowFailureLosesMapping(t *testing.T) {
	r := openTestFile(t)
	page := r.PageSize()
	_, err := r.Extend(page)
	require.NoError(t, err)

	failTruncate(t)
	origMmap := mmapFile
	mmapFile = func(int, int64, int, int, int) ([]byte, error) { return nil, unix.ENOMEM }
	t.Cleanup(func() { mmapFile = origMmap })

	_, err = r.Extend(page)
	require.ErrorIs(t, err, unix.EFBIG)
	require.ErrorIs(t, err, ErrUnmapped)
	assert.Empty(t, r.Bytes())

	mmapFile = origMmap
	_, err = r.Extend(page)
	require.ErrorIs(t, err, ErrUnmapped)
	require.NoError(t, r.Close())
}
