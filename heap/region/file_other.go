//go:build !unix

package region

import (
	"context"
	"errors"

	"github.com/joshuapare/heapkit/heap/dirty"
)

// File is unavailable on this platform.
type File struct{}

var errFileUnsupported = errors.New("region: file-backed heaps require a unix platform")

// OpenFile reports that file-backed heaps are not supported here.
func OpenFile(string, *FileOptions) (*File, error) { return nil, errFileUnsupported }

func (*File) PageSize() int                                  { return 0 }
func (*File) Extend(int) (int, error)                        { return 0, errFileUnsupported }
func (*File) Bytes() []byte                                  { return nil }
func (*File) FD() int                                        { return -1 }
func (*File) Path() string                                   { return "" }
func (*File) Tracker() dirty.DirtyTracker                    { return nil }
func (*File) Sync(context.Context, dirty.FlushMode) error    { return errFileUnsupported }
func (*File) Close() error                                   { return nil }
