package alloc

import "errors"

var (
	// ErrDoubleFree indicates Free was called on a chunk that is already free.
	// The heap is left unchanged.
	ErrDoubleFree = errors.New("alloc: chunk already free")

	// ErrGrowFail indicates the region refused to extend.
	ErrGrowFail = errors.New("alloc: grow failed")

	// ErrBadPtr indicates a pointer that cannot be the payload of a chunk in
	// this heap.
	ErrBadPtr = errors.New("alloc: bad pointer")

	// ErrCorrupt indicates chunk tags that disagree or a region that does not
	// decode as a heap.
	ErrCorrupt = errors.New("alloc: corrupt chunk")

	// ErrNegativeSize indicates a negative request size.
	ErrNegativeSize = errors.New("alloc: negative size")

	// ErrOverflow indicates count*size overflowed in strict mode.
	ErrOverflow = errors.New("alloc: size overflow")
)
