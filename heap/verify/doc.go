// Package verify checks the structural invariants of a heapkit heap.
//
// # Overview
//
// It is used by tests and by heapctl to confirm that a heap, live or read
// back from a file, is well formed:
//
//   - Region: extent is a whole number of pages
//   - Segments: every growth increment is bracketed by zero markers
//   - Chunks: sizes are at least MinChunk with no unknown flag bits, header equals
//     footer, payloads are 8-byte aligned, no chunk crosses its segment
//   - Free list: every member is a free chunk inside the heap, listed once,
//     and every free chunk is on the list
//
// # Quick Start
//
//	if err := verify.Heap(h); err != nil {
//	    fmt.Printf("heap invalid: %v\n", err)
//	}
//
// Raw bytes (for example a mapped heap file) can be checked without a Heap:
//
//	if err := verify.AllInvariants(data, 4096); err != nil {
//	    ...
//	}
//
// # ValidationError
//
// All functions return *ValidationError on failure:
//
//	err := verify.Segments(data)
//	if verr, ok := err.(*verify.ValidationError); ok {
//	    fmt.Printf("%s at 0x%X: %s\n", verr.Type, verr.Offset, verr.Message)
//	}
package verify
