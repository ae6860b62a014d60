package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/region"
	"github.com/joshuapare/heapkit/internal/format"
)

const testPage = 4096

// newTestHeap returns a heap over a slice region with 4 KiB pages that can
// grow to limit bytes.
func newTestHeap(t testing.TB, limit int, opts *Options) *Heap {
	t.Helper()
	h, err := New(region.NewMemoryWithPageSize(limit, testPage), opts)
	require.NoError(t, err)
	return h
}

// requireConsistent walks every segment and the free list and checks the
// structural invariants: tags agree, sizes are aligned, every free-list member
// is a free chunk inside the heap, and every free chunk is on the list.
func requireConsistent(t testing.TB, h *Heap) {
	t.Helper()
	segs, err := h.Segments()
	require.NoError(t, err)

	freeFlagged := map[int]bool{}
	end := 0
	for _, seg := range segs {
		require.Equal(t, end, seg.Start, "segments must be contiguous")
		end = seg.End
		for _, c := range seg.Chunks {
			require.True(t, c.Valid(), "chunk %d: header %s footer %s", c.Offset, c.Header, c.Footer)
			require.Zero(t, c.Size%format.Alignment, "chunk %d size %d", c.Offset, c.Size)
			require.GreaterOrEqual(t, c.Size, format.MinChunk)
			if c.Free {
				freeFlagged[c.Offset] = true
			}
		}
	}
	require.Equal(t, h.HWM(), end)

	onList := map[int]bool{}
	for _, c := range h.FreeChunks() {
		require.True(t, c.Free, "free list member %d not flagged free", c.Offset)
		require.False(t, onList[c.Offset], "chunk %d on free list twice", c.Offset)
		onList[c.Offset] = true
	}
	require.Equal(t, freeFlagged, onList)
}

// fill writes a repeating pattern into p's first n bytes.
func fill(t testing.TB, h *Heap, p Ptr, n int, b byte) {
	t.Helper()
	buf, err := h.Bytes(p)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(buf), n)
	for i := range n {
		buf[i] = b + byte(i)
	}
}

// recordingTracker collects every dirty range the heap reports.
type recordingTracker struct {
	ranges [][2]int
}

func (r *recordingTracker) Add(off, length int) {
	r.ranges = append(r.ranges, [2]int{off, length})
}

func (r *recordingTracker) covers(off int) bool {
	for _, rg := range r.ranges {
		if off >= rg[0] && off < rg[0]+rg[1] {
			return true
		}
	}
	return false
}
