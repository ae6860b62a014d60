package alloc

import (
	"github.com/joshuapare/heapkit/internal/format"
)

// Free-list links are absolute chunk offsets stored in the first 16 payload
// bytes of a free chunk: prev at +4, next at +12.

func (h *Heap) next(c freeChunk) freeChunk {
	if c == sentinel {
		return h.head
	}
	return freeChunk(format.ReadU64(h.mem, int(c)+format.NextLinkOffset))
}

func (h *Heap) prev(c freeChunk) freeChunk {
	if c == sentinel {
		return h.tail
	}
	return freeChunk(format.ReadU64(h.mem, int(c)+format.PrevLinkOffset))
}

func (h *Heap) setNext(c, n freeChunk) {
	if c == sentinel {
		h.head = n
		return
	}
	format.PutU64(h.mem, int(c)+format.NextLinkOffset, uint64(n))
	h.touch(int(c)+format.NextLinkOffset, format.LinkSize)
}

func (h *Heap) setPrev(c, p freeChunk) {
	if c == sentinel {
		h.tail = p
		return
	}
	format.PutU64(h.mem, int(c)+format.PrevLinkOffset, uint64(p))
	h.touch(int(c)+format.PrevLinkOffset, format.LinkSize)
}

// insert pushes c on the head of the free list.
func (h *Heap) insert(c freeChunk) {
	first := h.next(sentinel)
	h.setPrev(c, sentinel)
	h.setNext(c, first)
	h.setPrev(first, c)
	h.setNext(sentinel, c)
}

// remove unlinks c using only its own links.
func (h *Heap) remove(c freeChunk) {
	p, n := h.prev(c), h.next(c)
	h.setNext(p, n)
	h.setPrev(n, p)
}

// freeLen counts the free list by walking it.
func (h *Heap) freeLen() int {
	n := 0
	for p := h.next(sentinel); p != sentinel; p = h.next(p) {
		n++
	}
	return n
}

// findBestFit returns the free chunk whose payload exceeds target by the
// least, scanning from the head. An exact fit ends the scan; among equal
// excesses the first one seen wins. It returns the sentinel when nothing
// fits.
func (h *Heap) findBestFit(target int) freeChunk {
	best := sentinel
	bestExcess := 0
	for p := h.next(sentinel); p != sentinel; p = h.next(p) {
		payload := h.payloadSize(chunkRef(p))
		if payload == target {
			return p
		}
		if payload > target {
			excess := payload - target
			if best == sentinel || excess < bestExcess {
				best, bestExcess = p, excess
			}
		}
		if h.opts.FirstCandidate {
			break
		}
	}
	return best
}
