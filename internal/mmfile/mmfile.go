// Package mmfile maps heap files read-only for inspection.
package mmfile

import (
	"errors"
	"fmt"
	"os"

	"github.com/gofrs/flock"
)

// ErrBusy indicates the file is locked by a process that has it open for
// writing.
var ErrBusy = errors.New("mmfile: heap file is open for writing")

// Options configures Map. A nil *Options maps without locking.
type Options struct {
	// Shared takes a shared advisory lock for the lifetime of the mapping,
	// failing with ErrBusy while a writer holds the exclusive lock.
	Shared bool
}

// Mapping is a read-only view of a file.
type Mapping struct {
	data  []byte
	lock  *flock.Flock
	unmap func() error
}

// Bytes returns the mapped contents. Writing to them faults on platforms
// that really map the file.
func (m *Mapping) Bytes() []byte { return m.data }

// Close releases the mapping and the lock. Calling it twice is a no-op.
func (m *Mapping) Close() error {
	var errs []error
	if m.unmap != nil {
		errs = append(errs, m.unmap())
		m.unmap = nil
	}
	m.data = nil
	if m.lock != nil {
		errs = append(errs, m.lock.Unlock())
		m.lock = nil
	}
	return errors.Join(errs...)
}

// Map maps the file at path.
func Map(path string, opts *Options) (*Mapping, error) {
	// flock creates missing files; fail first instead.
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	m := &Mapping{}
	if opts != nil && opts.Shared {
		m.lock = flock.New(path)
		ok, err := m.lock.TryRLock()
		if err != nil {
			return nil, fmt.Errorf("mmfile: lock %s: %w", path, err)
		}
		if !ok {
			return nil, fmt.Errorf("mmfile: %s: %w", path, ErrBusy)
		}
	}
	data, unmap, err := mapFile(path)
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	m.data, m.unmap = data, unmap
	return m, nil
}
