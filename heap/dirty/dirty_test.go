package dirty

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memMapping is a Mapping without a file; only coalescing is exercised.
type memMapping struct{ data []byte }

func (m *memMapping) Bytes() []byte { return m.data }
func (m *memMapping) FD() int       { return -1 }

func newTestTracker(t testing.TB, size int) *Tracker {
	t.Helper()
	tr := NewTracker(&memMapping{data: make([]byte, size)})
	tr.pageSize = 4096
	return tr
}

func Test_DirtyTracker_PageAlignment(t *testing.T) {
	tr := newTestTracker(t, 16384)
	tr.Add(100, 200)

	coalesced := tr.Coalesced()
	require.Len(t, coalesced, 1)
	assert.Equal(t, Range{Off: 0, Len: 4096}, coalesced[0])
}

func Test_DirtyTracker_MergesAdjacentAndOverlapping(t *testing.T) {
	tr := newTestTracker(t, 32768)
	tr.Add(9000, 10)
	tr.Add(100, 200)
	tr.Add(4000, 200) // spans pages 0 and 1

	coalesced := tr.Coalesced()
	require.Len(t, coalesced, 2)
	assert.Equal(t, Range{Off: 0, Len: 8192}, coalesced[0])
	assert.Equal(t, Range{Off: 8192, Len: 4096}, coalesced[1])
}

func Test_DirtyTracker_KeepsGaps(t *testing.T) {
	tr := newTestTracker(t, 32768)
	tr.Add(0, 1)
	tr.Add(20480, 1)

	coalesced := tr.Coalesced()
	require.Len(t, coalesced, 2)
	assert.Equal(t, int64(20480), coalesced[1].Off)
}

func Test_DirtyTracker_IgnoresEmptyRanges(t *testing.T) {
	tr := newTestTracker(t, 4096)
	tr.Add(10, 0)
	tr.Add(10, -5)

	assert.False(t, tr.Pending())
	assert.Nil(t, tr.Coalesced())
}

func Test_DirtyTracker_RangesIsACopy(t *testing.T) {
	tr := newTestTracker(t, 4096)
	tr.Add(8, 16)

	r := tr.Ranges()
	r[0].Off = 999
	assert.Equal(t, int64(8), tr.Ranges()[0].Off)

	tr.Reset()
	assert.Empty(t, tr.Ranges())
}

func Test_DirtyTracker_FlushEmptyMappingClears(t *testing.T) {
	tr := NewTracker(&memMapping{})
	tr.Add(0, 64)

	require.NoError(t, tr.Flush(context.Background()))
	assert.False(t, tr.Pending())
}

func Test_DirtyTracker_DefaultPageSize(t *testing.T) {
	tr := NewTracker(&memMapping{})
	assert.Equal(t, int64(os.Getpagesize()), tr.pageSize)
}

func Test_Clip(t *testing.T) {
	start, end, ok := clip(Range{Off: 4096, Len: 4096}, 6000)
	require.True(t, ok)
	assert.Equal(t, 4096, start)
	assert.Equal(t, 6000, end)

	_, _, ok = clip(Range{Off: 8192, Len: 4096}, 6000)
	assert.False(t, ok)
}
