// Package alloc implements a boundary-tag heap allocator over a growable
// region.
//
// # Overview
//
// A Heap manages chunks inside a region.Region. Every chunk carries the same
// size+flags tag at both ends, so a chunk can be walked forwards (header) and
// backwards (footer) without side tables. Free chunks are kept on a single
// circular, doubly linked free list whose links live in the free payload
// itself. The list is rooted at a sentinel that never holds memory.
//
// # Operations
//
//   - Malloc(size): best-fit search, growth on a miss, split on a hit
//   - Calloc(count, size): Malloc plus zero-fill
//   - Realloc(p, size): same pointer when it already fits, else move
//   - Free(p): flag the chunk free and push it on the list head
//   - Strdup(s): NUL-terminated copy of s
//
// # Growth
//
// When no free chunk fits, the heap extends the region by
//
//	roundUp(payload + 16, pageSize)
//
// bytes. The increment is bracketed by zero tags and the interior becomes a
// single free chunk, which Malloc hands out directly:
//
//	prev                                               prev+delta
//	| 0 | size|F |  ............ payload ........ | size|F | 0 |
//
// # Pointers
//
// Ptr is a payload offset from the start of the region, not a machine
// address, so it stays valid when a file-backed region is remapped. Offset 0
// is always a segment marker and is used as Nil. Payloads are 8-byte
// aligned. Use Bytes to reach the memory and Addr for the machine address.
//
// # Behaviour kept from the classic design
//
// Free does not coalesce, Malloc does not zero, and a second Free of the same
// pointer is reported and ignored. Options.Coalesce and Options.Strict switch
// on merging and tag validation.
//
// # Thread Safety
//
// A Heap is not safe for concurrent use. pkg/hmalloc wraps a default heap in
// a mutex.
//
// # Debugging
//
// Set HEAPKIT_DEBUG to any value to log growth, splits and frees to stderr
// when no Options.Logger is given.
package alloc
