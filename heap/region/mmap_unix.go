//go:build unix

package region

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/joshuapare/heapkit/internal/format"
)

// Mmap is a Region backed by an anonymous mapping. The whole reservation is
// mapped PROT_NONE up front and pages are committed with mprotect as the
// region grows, which keeps the base address fixed like a program break.
type Mmap struct {
	mem      []byte // entire reservation
	used     int
	pageSize int
}

// NewMmap reserves reserve bytes (rounded up to the page size) of address
// space. Nothing is committed until Extend.
func NewMmap(reserve int) (Region, error) {
	pageSize := os.Getpagesize()
	reserve = format.AlignTo(reserve, pageSize)
	if reserve <= 0 {
		return nil, fmt.Errorf("mmap region: reserve %d: %w", reserve, ErrNotPageMultiple)
	}
	mem, err := unix.Mmap(-1, 0, reserve, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("mmap region: reserve %d bytes: %w", reserve, err)
	}
	return &Mmap{mem: mem, pageSize: pageSize}, nil
}

// PageSize returns the OS page size.
func (m *Mmap) PageSize() int { return m.pageSize }

// Extend commits the next n bytes of the reservation.
func (m *Mmap) Extend(n int) (int, error) {
	if m.mem == nil {
		return 0, ErrClosed
	}
	if err := checkExtend(n, m.pageSize); err != nil {
		return 0, err
	}
	prev := m.used
	if n > len(m.mem)-prev {
		return 0, fmt.Errorf("mmap region: %d + %d exceeds reservation %d: %w",
			prev, n, len(m.mem), ErrExhausted)
	}
	if err := unix.Mprotect(m.mem[prev:prev+n], unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return 0, fmt.Errorf("mmap region: commit %d bytes at %d: %w", n, prev, err)
	}
	m.used = prev + n
	return prev, nil
}

// Bytes returns the committed span.
func (m *Mmap) Bytes() []byte { return m.mem[:m.used:m.used] }

// Reserved returns the size of the address space reservation.
func (m *Mmap) Reserved() int { return len(m.mem) }

// Close unmaps the reservation.
func (m *Mmap) Close() error {
	if m.mem == nil {
		return nil
	}
	err := unix.Munmap(m.mem)
	m.mem = nil
	m.used = 0
	return err
}
