//go:build unix

package region

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"

	"github.com/joshuapare/heapkit/heap/dirty"
	"github.com/joshuapare/heapkit/internal/format"
)

// File is a Region backed by a shared mapping of a file, so a heap built in
// it can be reopened by a later process. Growth truncates the file up and
// remaps it; offsets survive, addresses do not.
type File struct {
	path     string
	f        *os.File
	lock     *flock.Flock
	data     []byte
	pageSize int
	tracker  *dirty.Tracker
	lost     error // set when a failed grow could not restore the mapping
}

// Syscall seams, replaced in tests to simulate failing growth.
var (
	truncateFile = (*os.File).Truncate
	mmapFile     = unix.Mmap
)

// OpenFile maps the heap file at path read-write. An existing file must be a
// whole number of pages long. Unless opts.NoLock is set, an advisory lock is
// taken so a second process opening the same heap gets ErrLocked.
func OpenFile(path string, opts *FileOptions) (*File, error) {
	if opts == nil {
		opts = &FileOptions{}
	}
	flags := os.O_RDWR
	if opts.Create {
		flags |= os.O_CREATE
	}
	f, err := os.OpenFile(path, flags, opts.perm())
	if err != nil {
		return nil, err
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	pageSize := os.Getpagesize()
	size := int(st.Size())
	if !format.IsAligned(size, pageSize) {
		_ = f.Close()
		return nil, fmt.Errorf("file region %s: size %d: %w", path, size, ErrNotPageMultiple)
	}

	fr := &File{path: path, f: f, pageSize: pageSize}
	fr.tracker = dirty.NewTracker(fr)

	if !opts.NoLock {
		fr.lock = flock.New(path)
		locked, lockErr := fr.lock.TryLock()
		if lockErr != nil {
			_ = f.Close()
			return nil, fmt.Errorf("file region %s: lock: %w", path, lockErr)
		}
		if !locked {
			_ = f.Close()
			return nil, fmt.Errorf("file region %s: %w", path, ErrLocked)
		}
	}

	if size > 0 {
		if fr.data, err = fr.mmap(size); err != nil {
			_ = fr.Close()
			return nil, err
		}
	}
	return fr, nil
}

func (fr *File) mmap(size int) ([]byte, error) {
	data, err := mmapFile(int(fr.f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("file region %s: mmap %d bytes: %w", fr.path, size, err)
	}
	return data, nil
}

// PageSize returns the OS page size.
func (fr *File) PageSize() int { return fr.pageSize }

// Extend grows the file by n bytes and remaps it. The new bytes are zero.
func (fr *File) Extend(n int) (int, error) {
	if fr.f == nil {
		return 0, ErrClosed
	}
	if fr.lost != nil {
		return 0, fr.lost
	}
	if err := checkExtend(n, fr.pageSize); err != nil {
		return 0, err
	}
	prev := len(fr.data)
	newSize := prev + n

	if fr.data != nil {
		if err := unix.Munmap(fr.data); err != nil {
			return 0, fmt.Errorf("file region %s: unmap before grow: %w", fr.path, err)
		}
		fr.data = nil
	}

	if err := truncateFile(fr.f, int64(newSize)); err != nil {
		err = fmt.Errorf("file region %s: truncate to %d: %w", fr.path, newSize, err)
		return 0, errors.Join(err, fr.recover(prev))
	}

	data, err := fr.mmap(newSize)
	if err != nil {
		return 0, errors.Join(err, fr.recover(prev))
	}
	fr.data = data
	fr.tracker.Add(prev, n)
	return prev, nil
}

// recover remaps the previous size after a failed grow. The new mapping may
// sit at a different address. If it cannot be made the region is marked lost.
func (fr *File) recover(size int) error {
	if size == 0 {
		return nil
	}
	data, err := fr.mmap(size)
	if err != nil {
		fr.lost = fmt.Errorf("file region %s: %w: %w", fr.path, ErrUnmapped, err)
		return fr.lost
	}
	fr.data = data
	return nil
}

// Bytes returns the current mapping.
func (fr *File) Bytes() []byte { return fr.data }

// FD returns the descriptor of the heap file.
func (fr *File) FD() int {
	if fr.f == nil {
		return -1
	}
	return int(fr.f.Fd())
}

// Path returns the heap file path.
func (fr *File) Path() string { return fr.path }

// Tracker returns the dirty tracker the allocator reports writes to.
func (fr *File) Tracker() dirty.DirtyTracker { return fr.tracker }

// Sync flushes dirty pages according to mode.
func (fr *File) Sync(ctx context.Context, mode dirty.FlushMode) error {
	if fr.f == nil {
		return ErrClosed
	}
	return fr.tracker.Sync(ctx, mode)
}

// Close unmaps the file, releases the lock and closes the descriptor.
// Unflushed pages are still written back by the kernel eventually; call Sync
// first for durability.
func (fr *File) Close() error {
	var errs []error
	if fr.data != nil {
		errs = append(errs, unix.Munmap(fr.data))
		fr.data = nil
	}
	if fr.lock != nil {
		errs = append(errs, fr.lock.Unlock())
		fr.lock = nil
	}
	if fr.f != nil {
		errs = append(errs, fr.f.Close())
		fr.f = nil
	}
	return errors.Join(errs...)
}
