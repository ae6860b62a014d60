// Package hmalloc provides malloc-style package functions over one
// process-wide heap.
//
// The heap is created on first use over an anonymous mmap reservation of
// DefaultReserve bytes. All calls share one mutex, so unlike alloc.Heap the
// package functions are safe for concurrent use.
//
//	p, err := hmalloc.Malloc(64)
//	if err != nil {
//	    return err
//	}
//	defer hmalloc.Free(p)
//	buf, _ := hmalloc.Bytes(p)
package hmalloc

import (
	"fmt"
	"sync"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/region"
)

// DefaultReserve is the address space reserved for the default heap.
const DefaultReserve = 1 << 30

var (
	mu  sync.Mutex
	def *alloc.Heap
)

// Default returns the process-wide heap, creating it if needed.
func Default() (*alloc.Heap, error) {
	mu.Lock()
	defer mu.Unlock()
	return heapLocked()
}

// SetDefault replaces the process-wide heap and returns the previous one.
// Passing nil makes the next call create a fresh heap.
func SetDefault(h *alloc.Heap) *alloc.Heap {
	mu.Lock()
	defer mu.Unlock()
	prev := def
	def = h
	return prev
}

func heapLocked() (*alloc.Heap, error) {
	if def != nil {
		return def, nil
	}
	r, err := region.NewMmap(DefaultReserve)
	if err != nil {
		return nil, fmt.Errorf("hmalloc: reserve default heap: %w", err)
	}
	h, err := alloc.New(r, nil)
	if err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("hmalloc: %w", err)
	}
	def = h
	return def, nil
}

// with runs fn on the default heap while holding the lock.
func with[T any](fn func(h *alloc.Heap) (T, error)) (T, error) {
	mu.Lock()
	defer mu.Unlock()
	h, err := heapLocked()
	if err != nil {
		var zero T
		return zero, err
	}
	return fn(h)
}

// Malloc allocates size uninitialized bytes.
func Malloc(size int) (alloc.Ptr, error) {
	return with(func(h *alloc.Heap) (alloc.Ptr, error) { return h.Malloc(size) })
}

// Calloc allocates count*size zero bytes.
func Calloc(count, size int) (alloc.Ptr, error) {
	return with(func(h *alloc.Heap) (alloc.Ptr, error) { return h.Calloc(count, size) })
}

// Realloc resizes p, moving it if needed.
func Realloc(p alloc.Ptr, size int) (alloc.Ptr, error) {
	return with(func(h *alloc.Heap) (alloc.Ptr, error) { return h.Realloc(p, size) })
}

// Free releases p. A second Free of the same pointer returns
// alloc.ErrDoubleFree and changes nothing.
func Free(p alloc.Ptr) error {
	_, err := with(func(h *alloc.Heap) (struct{}, error) { return struct{}{}, h.Free(p) })
	return err
}

// Strdup copies s, NUL-terminated, into the default heap.
func Strdup(s string) (alloc.Ptr, error) {
	return with(func(h *alloc.Heap) (alloc.Ptr, error) { return h.Strdup(s) })
}

// Bytes returns p's payload. The slice stays valid until p is freed; the
// default heap never moves.
func Bytes(p alloc.Ptr) ([]byte, error) {
	return with(func(h *alloc.Heap) ([]byte, error) { return h.Bytes(p) })
}

// CString reads the NUL-terminated string at p.
func CString(p alloc.Ptr) (string, error) {
	return with(func(h *alloc.Heap) (string, error) { return h.CString(p) })
}

// Stats returns the default heap's counters.
func Stats() (alloc.Stats, error) {
	return with(func(h *alloc.Heap) (alloc.Stats, error) { return h.Stats(), nil })
}
