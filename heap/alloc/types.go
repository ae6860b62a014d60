package alloc

import (
	"io"
	"log/slog"
	"os"

	"github.com/joshuapare/heapkit/heap/dirty"
)

// Ptr is the offset of a payload from the start of the region.
type Ptr int

// Nil is the zero Ptr. No payload ever starts at offset 0.
const Nil Ptr = 0

// DirtyTracker is an alias for the interface in heap/dirty.
type DirtyTracker = dirty.DirtyTracker

// Runtime debug flag, controlled by the HEAPKIT_DEBUG env var.
var logDebug = os.Getenv("HEAPKIT_DEBUG") != ""

// Options configures a Heap. A nil *Options selects the defaults.
type Options struct {
	// Logger receives growth, split and double-free events. Default: discard,
	// or a stderr text handler at debug level when HEAPKIT_DEBUG is set.
	Logger *slog.Logger

	// Dirty receives every byte range the allocator writes. Default: the
	// region's own tracker when it has one (see region.File).
	Dirty DirtyTracker

	// Strict validates header == footer on every pointer passed in and
	// checks Calloc for overflow.
	Strict bool

	// Coalesce merges a freed chunk with free neighbours.
	Coalesce bool

	// SplitGrown splits the chunk produced by growth, returning the tail of
	// the new pages to the free list instead of handing out the whole span.
	SplitGrown bool

	// FirstCandidate limits the best-fit scan to the head of the free list.
	// The head is taken if it fits; otherwise the heap grows.
	FirstCandidate bool
}

func (o *Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	if logDebug {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Stats holds allocator counters.
type Stats struct {
	GrowCalls      int   // Region extensions
	GrowBytes      int64 // Bytes added by growth
	AllocCalls     int   // Malloc calls, including those made by Calloc/Realloc/Strdup
	AllocFastPath  int   // Allocations served from the free list
	AllocSlowPath  int   // Allocations that required growth
	FreeCalls      int   // Free calls with a non-nil pointer
	DoubleFrees    int   // Free calls on an already free chunk
	Splits         int   // Chunks split
	Merges         int   // Chunk pairs merged
	BytesAllocated int64 // Chunk bytes handed out, tags included
	BytesFreed     int64 // Chunk bytes returned, tags included
}

// InUse returns the chunk bytes currently allocated.
func (s Stats) InUse() int64 { return s.BytesAllocated - s.BytesFreed }
