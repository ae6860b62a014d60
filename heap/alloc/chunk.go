package alloc

import (
	"github.com/joshuapare/heapkit/internal/format"
)

// chunkRef is the offset of a chunk header from the start of the region.
// Chunks always start 4 bytes past an 8-byte boundary, so offset 0 is free
// to name the sentinel.
type chunkRef int

// freeChunk is a chunk whose tags carry FlagFree and whose payload holds
// free-list links. Only freeChunk has link accessors.
type freeChunk chunkRef

// usedChunk is a chunk owned by a caller. Its payload is opaque.
type usedChunk chunkRef

// sentinel roots the free list. Its info reads as zero and its links are
// Heap fields.
const sentinel freeChunk = 0

func (c usedChunk) ptr() Ptr { return Ptr(int(c) + format.TagSize) }

func chunkOfPtr(p Ptr) chunkRef { return chunkRef(int(p) - format.TagSize) }

func (h *Heap) info(c chunkRef) format.Info {
	if c == chunkRef(sentinel) {
		return 0
	}
	return format.ReadInfo(h.mem, int(c))
}

// size returns the chunk size, tags included.
func (h *Heap) size(c chunkRef) int { return h.info(c).Size() }

func (h *Heap) payloadSize(c chunkRef) int { return h.size(c) - format.ChunkOverhead }

func (h *Heap) footerOff(c chunkRef) int { return int(c) + h.size(c) - format.TagSize }

func (h *Heap) footer(c chunkRef) format.Info {
	return format.ReadInfo(h.mem, h.footerOff(c))
}

// setInfo writes i to the header and to the footer that i's size implies.
// It is the only place tags are written, so they never diverge.
func (h *Heap) setInfo(c chunkRef, i format.Info) {
	format.PutInfo(h.mem, int(c), i)
	foot := int(c) + i.Size() - format.TagSize
	format.PutInfo(h.mem, foot, i)
	h.touch(int(c), format.TagSize)
	h.touch(foot, format.TagSize)
}

func (h *Heap) markFree(c usedChunk) freeChunk {
	h.setInfo(chunkRef(c), format.MakeInfo(h.size(chunkRef(c)), format.FlagFree))
	return freeChunk(c)
}

func (h *Heap) markUsed(c freeChunk) usedChunk {
	h.setInfo(chunkRef(c), format.MakeInfo(h.size(chunkRef(c)), 0))
	return usedChunk(c)
}

// split trims c to hold payload bytes and turns the tail into a new free
// chunk at the head of the free list. If the tail would be smaller than
// MinChunk nothing changes and ok is false; c keeps the extra bytes.
func (h *Heap) split(c freeChunk, payload int) (rest freeChunk, ok bool) {
	payload = format.Align8(max(payload, format.MinPayload))
	want := payload + format.ChunkOverhead
	total := h.size(chunkRef(c))
	remain := total - want
	if remain < format.MinChunk {
		return sentinel, false
	}

	h.setInfo(chunkRef(c), format.MakeInfo(want, h.info(chunkRef(c)).Flags()))
	rest = freeChunk(int(c) + want)
	h.setInfo(chunkRef(rest), format.MakeInfo(remain, format.FlagFree))
	h.insert(rest)

	h.stats.Splits++
	h.log.Debug("split", "chunk", int(c), "size", want, "rest", int(rest), "restSize", remain)
	return rest, true
}

// merge joins c1 and the chunk c2 that immediately follows it. Both must be
// free. The result is c1, reinserted at the head of the free list.
func (h *Heap) merge(c1, c2 freeChunk) freeChunk {
	h.remove(c1)
	h.remove(c2)
	total := h.size(chunkRef(c1)) + h.size(chunkRef(c2))
	h.setInfo(chunkRef(c1), format.MakeInfo(total, format.FlagFree))
	h.insert(c1)

	h.stats.Merges++
	h.log.Debug("merge", "chunk", int(c1), "with", int(c2), "size", total)
	return c1
}

// coalesce merges c with its free neighbours inside the same segment.
// Segment markers read as zero, which is never free, so merging stops there.
func (h *Heap) coalesce(c freeChunk) freeChunk {
	next := int(c) + h.size(chunkRef(c))
	if next+format.TagSize <= len(h.mem) && format.ReadInfo(h.mem, next).Free() {
		c = h.merge(c, freeChunk(next))
	}
	if int(c) >= format.TagSize {
		if prev := format.ReadInfo(h.mem, int(c)-format.TagSize); prev.Free() {
			c = h.merge(freeChunk(int(c)-prev.Size()), c)
		}
	}
	return c
}
