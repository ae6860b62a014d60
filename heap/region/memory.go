package region

import (
	"fmt"
	"os"

	"github.com/joshuapare/heapkit/internal/format"
)

// Memory is a Region backed by a Go byte slice. Its capacity is allocated
// once so the backing array, and therefore every address, never moves.
type Memory struct {
	data     []byte
	pageSize int
	closed   bool
}

// NewMemory returns a slice-backed region that can grow to limit bytes
// (rounded up to the page size) before reporting ErrExhausted.
func NewMemory(limit int) *Memory {
	return NewMemoryWithPageSize(limit, os.Getpagesize())
}

// NewMemoryWithPageSize is NewMemory with an explicit page size, used to
// model platforms whose page size differs from the host's.
func NewMemoryWithPageSize(limit, pageSize int) *Memory {
	if pageSize <= 0 {
		pageSize = os.Getpagesize()
	}
	limit = format.AlignTo(max(limit, 0), pageSize)
	return &Memory{
		data:     make([]byte, 0, limit),
		pageSize: pageSize,
	}
}

// PageSize returns the page size the region grows by.
func (m *Memory) PageSize() int { return m.pageSize }

// Extend appends n zero bytes.
func (m *Memory) Extend(n int) (int, error) {
	if m.closed {
		return 0, ErrClosed
	}
	if err := checkExtend(n, m.pageSize); err != nil {
		return 0, err
	}
	prev := len(m.data)
	if n > cap(m.data)-prev {
		return 0, fmt.Errorf("memory region: %d + %d exceeds limit %d: %w",
			prev, n, cap(m.data), ErrExhausted)
	}
	m.data = m.data[:prev+n]
	return prev, nil
}

// Bytes returns the committed span.
func (m *Memory) Bytes() []byte { return m.data }

// Limit returns the maximum size the region may reach.
func (m *Memory) Limit() int { return cap(m.data) }

// Close drops the backing array.
func (m *Memory) Close() error {
	m.closed = true
	m.data = nil
	return nil
}
