package region

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/joshuapare/heapkit/internal/format"
)

// wasmMemoryModule returns a module with one exported memory, "memory",
// declared with zero initial pages and a maximum of maxPages.
func wasmMemoryModule(maxPages uint32) []byte {
	limits := binary.AppendUvarint([]byte{0x01, 0x01, 0x00}, uint64(maxPages)) // 1 memory, has max, min 0
	mod := []byte{
		0x00, 0x61, 0x73, 0x6d, // magic
		0x01, 0x00, 0x00, 0x00, // version
		0x05, byte(len(limits)), // memory section
	}
	mod = append(mod, limits...)
	return append(mod,
		0x07, 0x0a, 0x01, // export section: 1 export
		0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00, // "memory" -> memory 0
	)
}

// Wasm is a Region backed by a WebAssembly linear memory. Extend maps to
// memory.grow, so the page size is always format.WasmPageSize.
type Wasm struct {
	ctx    context.Context
	rt     wazero.Runtime
	mem    api.Memory
	limit  uint32
	closed bool
}

// NewWasm instantiates an empty module whose memory may grow to maxPages
// 64 KiB pages. The backing buffer is allocated at full capacity up front so
// the memory never moves when it grows.
func NewWasm(ctx context.Context, maxPages uint32) (*Wasm, error) {
	if maxPages == 0 || maxPages > 65536 {
		return nil, fmt.Errorf("wasm region: max pages %d out of range", maxPages)
	}
	cfg := wazero.NewRuntimeConfig().
		WithMemoryLimitPages(maxPages).
		WithMemoryCapacityFromMax(true)
	rt := wazero.NewRuntimeWithConfig(ctx, cfg)
	mod, err := rt.Instantiate(ctx, wasmMemoryModule(maxPages))
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("wasm region: instantiate: %w", err)
	}
	mem := mod.Memory()
	if mem == nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("wasm region: module exports no memory")
	}
	return &Wasm{ctx: ctx, rt: rt, mem: mem, limit: maxPages}, nil
}

// PageSize returns the WebAssembly page size.
func (w *Wasm) PageSize() int { return format.WasmPageSize }

// Extend grows the linear memory by n/65536 pages.
func (w *Wasm) Extend(n int) (int, error) {
	if w.closed {
		return 0, ErrClosed
	}
	if err := checkExtend(n, format.WasmPageSize); err != nil {
		return 0, err
	}
	delta := n / format.WasmPageSize
	if delta > int(w.limit) {
		return 0, fmt.Errorf("wasm region: grow by %d pages: %w", delta, ErrExhausted)
	}
	prevPages, ok := w.mem.Grow(uint32(delta))
	if !ok {
		return 0, fmt.Errorf("wasm region: grow by %d pages (limit %d): %w", delta, w.limit, ErrExhausted)
	}
	return int(prevPages) * format.WasmPageSize, nil
}

// Bytes returns a view of the whole linear memory. Writes through it are
// visible to the module.
func (w *Wasm) Bytes() []byte {
	if w.closed {
		return nil
	}
	size := w.mem.Size()
	if size == 0 {
		return nil
	}
	b, ok := w.mem.Read(0, size)
	if !ok {
		return nil
	}
	return b
}

// Pages returns the current memory size in pages.
func (w *Wasm) Pages() uint32 { return w.mem.Size() / format.WasmPageSize }

// Close tears down the runtime.
func (w *Wasm) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.rt.Close(w.ctx)
}
