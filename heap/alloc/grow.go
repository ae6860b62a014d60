package alloc

import (
	"fmt"
	"math"

	"github.com/joshuapare/heapkit/internal/format"
)

// maxSegment caps a single growth so chunk sizes stay well inside a tag.
const maxSegment = math.MaxInt32 &^ 0xFFFF

// grow extends the region by enough whole pages to hold minPayload plus the
// chunk's tags and the segment's two markers. The new span is bracketed by
// zero markers, its interior becomes one free chunk on the free list, and
// that chunk is returned so the caller can skip another search.
func (h *Heap) grow(minPayload int) (freeChunk, error) {
	delta := format.AlignTo(minPayload+format.GrowOverhead, h.pageSize)
	if delta > maxSegment {
		return sentinel, fmt.Errorf("%w: %d bytes exceeds the largest segment", ErrGrowFail, delta)
	}

	if h.onGrow != nil {
		h.onGrow(delta)
	}

	hwm0 := len(h.mem)
	prev, err := h.r.Extend(delta)
	if err != nil {
		// A remapping region may have moved its bytes, or dropped them.
		h.mem = h.r.Bytes()
		if len(h.mem) < hwm0 {
			h.head, h.tail = sentinel, sentinel
			h.lost = fmt.Errorf("%w: region lost %d mapped bytes: %w", ErrGrowFail, hwm0-len(h.mem), err)
			h.log.Error("grow failed, heap unusable", "hwm", hwm0, "error", err)
			return sentinel, h.lost
		}
		h.log.Warn("grow failed", "need", minPayload, "delta", delta, "error", err)
		return sentinel, fmt.Errorf("%w: extend by %d bytes: %w", ErrGrowFail, delta, err)
	}
	h.mem = h.r.Bytes()
	hwm := prev + delta

	format.PutInfo(h.mem, prev, 0)
	format.PutInfo(h.mem, hwm-format.TagSize, 0)
	h.touch(prev, format.TagSize)
	h.touch(hwm-format.TagSize, format.TagSize)

	c := chunkRef(prev + format.TagSize)
	h.setInfo(c, format.MakeInfo(delta-format.SegmentOverhead, format.FlagFree))
	fc := freeChunk(c)
	h.insert(fc)

	h.stats.GrowCalls++
	h.stats.GrowBytes += int64(delta)
	h.log.Debug("grow",
		"call", h.stats.GrowCalls,
		"need", minPayload,
		"delta", delta,
		"pages", delta/h.pageSize,
		"hwm", hwm,
	)
	return fc, nil
}
