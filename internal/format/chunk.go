package format

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
)

// Chunk is a decoded chunk (free or in use) within a segment.
type Chunk struct {
	Offset int  // Offset of the header from the start of the region
	Size   int  // Total size including both tags
	Header Info // Raw header tag
	Footer Info // Raw footer tag
	Free   bool // True when the header carries FlagFree
}

// Payload returns the offset of the first payload byte.
func (c Chunk) Payload() int { return c.Offset + TagSize }

// PayloadSize returns the usable bytes between the tags.
func (c Chunk) PayloadSize() int { return c.Size - ChunkOverhead }

// End returns the offset just past the footer.
func (c Chunk) End() int { return c.Offset + c.Size }

// Valid reports whether header and footer are bit-identical.
func (c Chunk) Valid() bool { return c.Header == c.Footer }

// NextChunk decodes the chunk whose header is at off and returns it with the
// offset of the following tag. The footer is decoded but not compared; use
// Valid for that.
func NextChunk(b []byte, off int) (Chunk, int, error) {
	if !buf.Has(b, off, TagSize) {
		return Chunk{}, 0, fmt.Errorf("chunk at %d: %w", off, ErrTruncated)
	}
	head := Info(buf.U32At(b, off))
	if head.IsBoundary() {
		return Chunk{}, 0, fmt.Errorf("chunk at %d: %w", off, ErrNoBoundary)
	}
	size := head.Size()
	if size < MinChunk || size%Alignment != 0 {
		return Chunk{}, 0, fmt.Errorf("chunk at %d: size %d: %w", off, size, ErrBadSize)
	}
	end, err := buf.CheckSpan(len(b), off, size)
	if err != nil {
		return Chunk{}, 0, fmt.Errorf("chunk at %d: %w: %w", off, ErrTruncated, err)
	}
	return Chunk{
		Offset: off,
		Size:   size,
		Header: head,
		Footer: Info(buf.U32At(b, end-TagSize)),
		Free:   head.Free(),
	}, end, nil
}
