// Package region provides the memory a heap grows into. A Region plays the
// part of the operating system's program break: it reports a page size and
// extends monotonically, whole pages at a time, never shrinking.
//
// # Implementations
//
//   - Memory: a Go byte slice with a fixed capacity, for tests and tooling
//   - Mmap: an anonymous mapping reserved up front and committed page by page
//   - File: a shared file mapping, so the heap survives the process
//   - Wasm: a WebAssembly linear memory grown with memory.grow
//
// Offsets are stable across Extend for every implementation. The address of
// byte 0 is stable for Memory, Mmap and Wasm (whose buffer is allocated at
// its maximum size); File remaps on growth.
package region

import (
	"errors"
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

var (
	// ErrExhausted indicates the region cannot grow any further.
	ErrExhausted = errors.New("region: exhausted")

	// ErrNotPageMultiple indicates an extension or existing size that is not
	// a whole number of pages.
	ErrNotPageMultiple = errors.New("region: size is not a page multiple")

	// ErrClosed indicates use of a region after Close.
	ErrClosed = errors.New("region: closed")

	// ErrLocked indicates a file region already opened by another process.
	ErrLocked = errors.New("region: file is locked by another process")

	// ErrUnmapped indicates a file region whose mapping could not be
	// restored after a failed grow. The region holds no bytes and refuses
	// further growth; the file itself is intact.
	ErrUnmapped = errors.New("region: mapping lost")
)

// Region is a contiguous, monotonically growing span of memory.
type Region interface {
	// PageSize returns the growth granularity in bytes.
	PageSize() int

	// Extend grows the region by n bytes (a whole number of pages) and
	// returns the previous end, like sbrk. New bytes read as zero.
	Extend(n int) (int, error)

	// Bytes returns the current span [0, end). The slice may be replaced by
	// a later Extend; callers must not hold it across growth.
	Bytes() []byte

	// Close releases the region.
	Close() error
}

// checkExtend validates an extension request against the page size.
func checkExtend(n, pageSize int) error {
	if n <= 0 || !format.IsAligned(n, pageSize) {
		return fmt.Errorf("extend by %d (page %d): %w", n, pageSize, ErrNotPageMultiple)
	}
	return nil
}
