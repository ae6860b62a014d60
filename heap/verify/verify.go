package verify

import (
	"fmt"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// ValidationError describes the first invariant violation found.
type ValidationError struct {
	Type    string
	Message string
	Offset  int
	Details map[string]interface{}
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Heap runs every check against a live heap, including its free list.
func Heap(h *alloc.Heap) error {
	if err := AllInvariants(h.Data(), h.PageSize()); err != nil {
		return err
	}
	return FreeList(h.Data(), h.FreeChunks())
}

// AllInvariants checks the region size and every segment and chunk in data.
func AllInvariants(data []byte, pageSize int) error {
	if err := RegionSize(data, pageSize); err != nil {
		return err
	}
	return Segments(data)
}

// RegionSize checks that data is a whole number of pages.
func RegionSize(data []byte, pageSize int) error {
	if pageSize <= 0 || !format.IsAligned(len(data), pageSize) {
		return &ValidationError{
			Type:    "Region",
			Message: fmt.Sprintf("size %d is not a multiple of page size %d", len(data), pageSize),
			Offset:  -1,
			Details: map[string]interface{}{
				"size":      len(data),
				"page_size": pageSize,
			},
		}
	}
	return nil
}

// Segments walks data segment by segment and validates every chunk.
func Segments(data []byte) error {
	for off := 0; off < len(data); {
		end, err := segment(data, off)
		if err != nil {
			return err
		}
		off = end
	}
	return nil
}

// segment validates the segment whose opening marker is at start and returns
// the offset just past its closing marker.
func segment(data []byte, start int) (int, error) {
	if !buf.Has(data, start, format.SegmentOverhead) {
		return 0, &ValidationError{
			Type:    "Segment",
			Message: "region ends inside a segment",
			Offset:  start,
		}
	}
	if i := format.ReadInfo(data, start); !i.IsBoundary() {
		return 0, &ValidationError{
			Type:    "Segment",
			Message: fmt.Sprintf("missing opening marker, found %s", i),
			Offset:  start,
		}
	}

	p := start + format.TagSize
	for {
		if !buf.Has(data, p, format.TagSize) {
			return 0, &ValidationError{
				Type:    "Segment",
				Message: "missing closing marker",
				Offset:  start,
			}
		}
		head := format.ReadInfo(data, p)
		if head.IsBoundary() {
			return p + format.TagSize, nil
		}
		if err := chunk(data, p, head); err != nil {
			return 0, err
		}
		p += head.Size()
	}
}

func chunk(data []byte, off int, head format.Info) error {
	size := head.Size()
	if (off+format.TagSize)%format.Alignment != 0 {
		return &ValidationError{
			Type:    "Chunk",
			Message: fmt.Sprintf("payload at 0x%X is not %d-byte aligned", off+format.TagSize, format.Alignment),
			Offset:  off,
		}
	}
	if extra := head.Flags() &^ format.FlagFree; extra != 0 {
		return &ValidationError{
			Type:    "Chunk",
			Message: fmt.Sprintf("unknown flag bits 0x%X", uint32(extra)),
			Offset:  off,
		}
	}
	if size < format.MinChunk {
		return &ValidationError{
			Type:    "Chunk",
			Message: fmt.Sprintf("size %d below minimum %d", size, format.MinChunk),
			Offset:  off,
		}
	}
	// The closing marker must still fit after the chunk.
	if _, err := buf.CheckSpan(len(data), off, size+format.TagSize); err != nil {
		return &ValidationError{
			Type:    "Chunk",
			Message: fmt.Sprintf("chunk of %d bytes runs past the region end 0x%X", size, len(data)),
			Offset:  off,
		}
	}
	if foot := format.ReadInfo(data, off+size-format.TagSize); foot != head {
		return &ValidationError{
			Type:    "Chunk",
			Message: fmt.Sprintf("header %s does not match footer %s", head, foot),
			Offset:  off,
			Details: map[string]interface{}{
				"header": uint32(head),
				"footer": uint32(foot),
			},
		}
	}
	return nil
}

// FreeList checks list, the free list of a heap over data, against the
// chunks found by walking data.
func FreeList(data []byte, list []format.Chunk) error {
	segs, err := format.Segments(data)
	if err != nil {
		return &ValidationError{Type: "FreeList", Message: err.Error(), Offset: -1}
	}
	// Address order, so a report of a missing chunk names the lowest one.
	var free []int
	flagged := map[int]bool{}
	for _, seg := range segs {
		for _, c := range seg.Chunks {
			if c.Free {
				free = append(free, c.Offset)
				flagged[c.Offset] = true
			}
		}
	}

	seen := make(map[int]bool, len(list))
	for i, c := range list {
		switch {
		case c.Offset < 0 || c.Offset >= len(data):
			return &ValidationError{
				Type:    "FreeList",
				Message: fmt.Sprintf("entry %d lies outside the heap", i),
				Offset:  c.Offset,
			}
		case seen[c.Offset]:
			return &ValidationError{
				Type:    "FreeList",
				Message: fmt.Sprintf("entry %d is listed twice", i),
				Offset:  c.Offset,
			}
		case !flagged[c.Offset]:
			return &ValidationError{
				Type:    "FreeList",
				Message: fmt.Sprintf("entry %d is not a free chunk (%s)", i, c.Header),
				Offset:  c.Offset,
			}
		}
		seen[c.Offset] = true
	}
	for _, off := range free {
		if !seen[off] {
			return &ValidationError{
				Type:    "FreeList",
				Message: "free chunk is not on the free list",
				Offset:  off,
			}
		}
	}
	return nil
}
