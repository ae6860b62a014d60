// Package format describes the binary layout of a heapkit region: boundary
// tags, free-list links and segment markers. It is shared by the allocator,
// the verifier and the printer so they agree on every offset.
//
// Region layout (little-endian):
//
//	+--------+----------------------------------------------+--------+
//	| 0 tag  | chunk | chunk | ... | chunk                   | 0 tag  |  segment (one growth)
//	+--------+----------------------------------------------+--------+
//
// Chunk layout:
//
//	Offset          Size  Description
//	0x00            4     Header info: size | flags. Size includes both tags.
//	0x04            8     Free only: previous free chunk (absolute offset).
//	0x0C            8     Free only: next free chunk (absolute offset).
//	size-4          4     Footer info, identical to the header.
package format

const (
	// TagSize is the width of a header, footer or segment marker.
	TagSize = 4

	// LinkSize is the width of one free-list link stored in a free payload.
	LinkSize = 8

	// Alignment is the granularity of every chunk size and payload offset.
	Alignment = 8

	// AlignmentMask is Alignment - 1.
	AlignmentMask = Alignment - 1

	// MinPayload holds the two free-list links.
	MinPayload = 2 * LinkSize

	// MinChunk is the smallest chunk that can exist: links plus both tags.
	MinChunk = MinPayload + 2*TagSize

	// ChunkOverhead is the number of bytes a chunk spends on tags.
	ChunkOverhead = 2 * TagSize

	// SegmentOverhead is the number of bytes a growth increment spends on its
	// two zero-valued boundary markers.
	SegmentOverhead = 2 * TagSize

	// GrowOverhead is added to a payload request before rounding to pages:
	// the chunk's own tags and the segment's two markers.
	GrowOverhead = ChunkOverhead + SegmentOverhead

	// PrevLinkOffset is the offset of the previous link from a chunk header.
	PrevLinkOffset = TagSize

	// NextLinkOffset is the offset of the next link from a chunk header.
	NextLinkOffset = TagSize + LinkSize

	// WasmPageSize is the WebAssembly linear memory page size.
	WasmPageSize = 64 * 1024
)

// Info flag bits. Sizes are multiples of 8 so the low three bits are free
// to carry flags; only FlagFree is used.
const (
	FlagFree Info = 0x1
	FlagMask Info = 0x7
	SizeMask      = ^FlagMask
)
