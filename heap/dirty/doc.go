// Package dirty tracks which byte ranges of a file-backed heap have been
// modified and flushes them to disk.
//
// # Overview
//
// The allocator reports every tag and link it writes through the
// DirtyTracker interface. Callers that write into a payload after it was
// handed out report it with Heap.MarkDirty. At sync time the tracker rounds
// every range out to page boundaries, sorts and merges them, and msyncs each
// merged range (FlushViewOfFile on Windows).
//
// # Usage
//
//	fr, err := region.OpenFile(path, &region.FileOptions{Create: true})
//	if err != nil {
//	    return err
//	}
//	h, err := alloc.New(fr, nil) // picks up fr.Tracker() automatically
//	...
//	err = fr.Sync(ctx, dirty.FlushAuto)
//
// # Range Coalescing
//
//	Dirty ranges: [100,+200) [4000,+200) [9000,+10]
//	Coalesced:    [0,+8192) [8192,+4096)
//
// # Thread Safety
//
// Tracker instances are not thread-safe, matching the allocator.
package dirty
