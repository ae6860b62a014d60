package format

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
)

// Segment is one growth increment: a zero marker, a run of chunks and a
// closing zero marker.
type Segment struct {
	Start  int // Offset of the opening marker
	End    int // Offset just past the closing marker
	Chunks []Chunk
}

// Size returns the number of bytes the segment occupies.
func (s Segment) Size() int { return s.End - s.Start }

// NextSegment decodes the segment whose opening marker is at off and returns
// it with the offset of the next segment.
func NextSegment(b []byte, off int) (Segment, int, error) {
	if !buf.Has(b, off, SegmentOverhead) {
		return Segment{}, 0, fmt.Errorf("segment at %d: %w", off, ErrTruncated)
	}
	if !Info(buf.U32At(b, off)).IsBoundary() {
		return Segment{}, 0, fmt.Errorf("segment at %d: %w", off, ErrNoBoundary)
	}
	seg := Segment{Start: off}
	p := off + TagSize
	for {
		if !buf.Has(b, p, TagSize) {
			return Segment{}, 0, fmt.Errorf("segment at %d: %w", off, ErrTruncated)
		}
		if Info(buf.U32At(b, p)).IsBoundary() {
			break
		}
		c, next, err := NextChunk(b, p)
		if err != nil {
			return Segment{}, 0, fmt.Errorf("segment at %d: %w", off, err)
		}
		seg.Chunks = append(seg.Chunks, c)
		p = next
	}
	seg.End = p + TagSize
	return seg, seg.End, nil
}

// Segments decodes every segment in b, in address order.
func Segments(b []byte) ([]Segment, error) {
	var segs []Segment
	for off := 0; off < len(b); {
		seg, next, err := NextSegment(b, off)
		if err != nil {
			return segs, err
		}
		segs = append(segs, seg)
		off = next
	}
	return segs, nil
}
