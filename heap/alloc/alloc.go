package alloc

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/joshuapare/heapkit/heap/region"
	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// Heap is a boundary-tag allocator over one region. The zero value is not
// usable; call New.
type Heap struct {
	r        region.Region
	mem      []byte // r.Bytes(), refreshed after every growth
	pageSize int

	// Sentinel links. The sentinel is self-linked (both zero) when the free
	// list is empty.
	head, tail freeChunk

	opts  Options
	log   *slog.Logger
	dt    DirtyTracker
	stats Stats

	// lost is set when a failed grow left the region with fewer bytes than
	// the heap held. Every later operation returns it.
	lost error

	// Test hook: called with the growth size before the region is extended.
	onGrow func(int)
}

// trackerSource is implemented by regions that track their own dirty pages.
type trackerSource interface {
	Tracker() DirtyTracker
}

// New creates a heap in r. If r already holds segments (a reopened file
// heap) they are decoded and every free chunk is put back on the free list.
func New(r region.Region, opts *Options) (*Heap, error) {
	if opts == nil {
		opts = &Options{}
	}
	h := &Heap{
		r:        r,
		mem:      r.Bytes(),
		pageSize: r.PageSize(),
		opts:     *opts,
		log:      opts.logger(),
		dt:       opts.Dirty,
	}
	if h.dt == nil {
		if ts, ok := r.(trackerSource); ok {
			h.dt = ts.Tracker()
		}
	}
	if h.pageSize <= 0 || h.pageSize%format.Alignment != 0 {
		return nil, fmt.Errorf("alloc: page size %d is not a multiple of %d", h.pageSize, format.Alignment)
	}

	if err := h.rebuildFreeList(); err != nil {
		return nil, err
	}
	return h, nil
}

// rebuildFreeList scans existing segments and links their free chunks,
// lowest address at the head.
func (h *Heap) rebuildFreeList() error {
	if len(h.mem) == 0 {
		return nil
	}
	if !format.IsAligned(len(h.mem), h.pageSize) {
		return fmt.Errorf("%w: region size %d is not a page multiple", ErrCorrupt, len(h.mem))
	}
	segs, err := format.Segments(h.mem)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	var free []format.Chunk
	for _, seg := range segs {
		for _, c := range seg.Chunks {
			if !c.Valid() {
				return fmt.Errorf("%w: chunk at %d: %w", ErrCorrupt, c.Offset, format.ErrTagMismatch)
			}
			if c.Free {
				free = append(free, c)
			}
		}
	}
	for i := len(free) - 1; i >= 0; i-- {
		h.insert(freeChunk(free[i].Offset))
	}
	h.log.Debug("rebuilt free list", "segments", len(segs), "free", len(free), "hwm", len(h.mem))
	return nil
}

// Malloc returns a pointer to at least size uninitialized bytes. Requests
// below the minimum payload are raised to it. When no free chunk fits the
// region is grown; a region that cannot grow yields ErrGrowFail.
func (h *Heap) Malloc(size int) (Ptr, error) {
	if size < 0 {
		return Nil, fmt.Errorf("malloc %d: %w", size, ErrNegativeSize)
	}
	if h.lost != nil {
		return Nil, h.lost
	}
	h.stats.AllocCalls++
	size = max(size, format.MinPayload)

	c := h.findBestFit(size)
	if c == sentinel {
		var err error
		if c, err = h.grow(size); err != nil {
			return Nil, err
		}
		if h.opts.SplitGrown {
			h.split(c, size)
		}
		h.stats.AllocSlowPath++
	} else {
		h.split(c, size)
		h.stats.AllocFastPath++
	}

	h.remove(c)
	u := h.markUsed(c)
	h.stats.BytesAllocated += int64(h.size(chunkRef(u)))
	return u.ptr(), nil
}

// Calloc returns a pointer to count*size zero bytes. The product is only
// checked for overflow in strict mode.
func (h *Heap) Calloc(count, size int) (Ptr, error) {
	n := count * size
	if h.opts.Strict {
		var ok bool
		if n, ok = buf.MulOverflowSafe(count, size); !ok {
			return Nil, fmt.Errorf("calloc %d x %d: %w", count, size, ErrOverflow)
		}
	}
	if n < 0 {
		return Nil, fmt.Errorf("calloc %d x %d: %w", count, size, ErrNegativeSize)
	}
	p, err := h.Malloc(n)
	if err != nil {
		return Nil, err
	}
	clear(h.mem[int(p) : int(p)+n])
	h.touch(int(p), n)
	return p, nil
}

// Realloc returns a pointer to at least size bytes holding the contents of
// p. If p's chunk is already large enough p itself is returned; chunks are
// never shrunk. Otherwise the payload is copied to a new chunk and p is
// freed. Realloc(Nil, size) is Malloc(size).
func (h *Heap) Realloc(p Ptr, size int) (Ptr, error) {
	if p == Nil {
		return h.Malloc(size)
	}
	if size < 0 {
		return Nil, fmt.Errorf("realloc %d: %w", size, ErrNegativeSize)
	}
	c, err := h.chunkOf(p)
	if err != nil {
		return Nil, err
	}
	if h.info(c).Free() {
		return Nil, fmt.Errorf("realloc %#x: chunk is free: %w", int(p), ErrBadPtr)
	}

	old := h.payloadSize(c)
	if old >= size {
		return p, nil
	}

	q, err := h.Malloc(size)
	if err != nil {
		return Nil, err
	}
	n := min(old, size)
	copy(h.mem[int(q):int(q)+n], h.mem[int(p):int(p)+n])
	h.touch(int(q), n)
	if err := h.Free(p); err != nil {
		return Nil, err
	}
	return q, nil
}

// Free returns p's chunk to the head of the free list. Freeing Nil does
// nothing. Freeing a chunk that is already free is logged and reported as
// ErrDoubleFree without touching the heap.
func (h *Heap) Free(p Ptr) error {
	if p == Nil {
		return nil
	}
	c, err := h.chunkOf(p)
	if err != nil {
		return err
	}
	h.stats.FreeCalls++

	i := h.info(c)
	if i.Free() {
		h.stats.DoubleFrees++
		h.log.Warn("double free", "ptr", int(p), "chunk", int(c), "size", i.Size())
		return fmt.Errorf("free %#x: %w", int(p), ErrDoubleFree)
	}

	fc := h.markFree(usedChunk(c))
	h.insert(fc)
	h.stats.BytesFreed += int64(i.Size())
	h.log.Debug("free", "ptr", int(p), "size", i.Size())

	if h.opts.Coalesce {
		h.coalesce(fc)
	}
	return nil
}

// chunkOf recovers and sanity-checks the chunk behind a payload pointer.
func (h *Heap) chunkOf(p Ptr) (chunkRef, error) {
	if h.lost != nil {
		return 0, h.lost
	}
	off := int(p)
	if off%format.Alignment != 0 || off < format.Alignment || off > len(h.mem)-format.MinPayload-format.TagSize {
		return 0, fmt.Errorf("%#x: %w", off, ErrBadPtr)
	}
	c := chunkOfPtr(p)
	i := h.info(c)
	if i.IsBoundary() || i.Size() < format.MinChunk || int(c)+i.Size() > len(h.mem) {
		return 0, fmt.Errorf("%#x: tag %s: %w", off, i, ErrBadPtr)
	}
	if h.opts.Strict {
		if foot := h.footer(c); foot != i {
			return 0, fmt.Errorf("%#x: header %#x footer %#x: %w", off, uint32(i), uint32(foot), ErrCorrupt)
		}
	}
	return c, nil
}

// Bytes returns p's payload. Its length is the chunk's full payload
// capacity, which may exceed the size requested. The slice is invalidated
// by growth of a remapping region.
func (h *Heap) Bytes(p Ptr) ([]byte, error) {
	c, err := h.chunkOf(p)
	if err != nil {
		return nil, err
	}
	end := int(p) + h.payloadSize(c)
	return h.mem[int(p):end:end], nil
}

// Addr returns the machine address of p, or 0 for Nil.
func (h *Heap) Addr(p Ptr) uintptr {
	if p == Nil || int(p) >= len(h.mem) {
		return 0
	}
	return uintptr(unsafe.Pointer(&h.mem[p]))
}

// Base returns the machine address of the first byte of the region, or 0
// before the first growth.
func (h *Heap) Base() uintptr {
	if len(h.mem) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&h.mem[0]))
}

// HWM returns the current extent of the heap in bytes.
func (h *Heap) HWM() int { return len(h.mem) }

// PageSize returns the growth granularity.
func (h *Heap) PageSize() int { return h.pageSize }

// Region returns the region the heap grows into.
func (h *Heap) Region() region.Region { return h.r }

// Data returns the raw region bytes. Read-only use only.
func (h *Heap) Data() []byte { return h.mem }

// Stats returns a copy of the counters.
func (h *Heap) Stats() Stats { return h.stats }

// FreeLen returns the number of chunks on the free list.
func (h *Heap) FreeLen() int { return h.freeLen() }

// FreeChunks returns the free list in list order, head first.
func (h *Heap) FreeChunks() []format.Chunk {
	var out []format.Chunk
	for p := h.next(sentinel); p != sentinel; p = h.next(p) {
		c := chunkRef(p)
		i := h.info(c)
		out = append(out, format.Chunk{
			Offset: int(c),
			Size:   i.Size(),
			Header: i,
			Footer: h.footer(c),
			Free:   i.Free(),
		})
	}
	return out
}

// Segments decodes every growth increment in address order.
func (h *Heap) Segments() ([]format.Segment, error) {
	return format.Segments(h.mem)
}

// MarkDirty reports a caller write to p's payload to the dirty tracker.
func (h *Heap) MarkDirty(p Ptr, n int) {
	h.touch(int(p), n)
}

// Defrag merges every run of adjacent free chunks and returns the number of
// merges performed.
func (h *Heap) Defrag() (int, error) {
	segs, err := h.Segments()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	merged := 0
	for _, seg := range segs {
		run := sentinel
		for _, c := range seg.Chunks {
			if !c.Free {
				run = sentinel
				continue
			}
			if run == sentinel {
				run = freeChunk(c.Offset)
				continue
			}
			run = h.merge(run, freeChunk(c.Offset))
			merged++
		}
	}
	return merged, nil
}

func (h *Heap) touch(off, n int) {
	if h.dt != nil && n > 0 {
		h.dt.Add(off, n)
	}
}
