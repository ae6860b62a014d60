// Package printer renders heap state for humans and tools: single chunks,
// the free list, a full segment walk and allocator statistics, as text or
// JSON. It only reads; nothing it does changes the heap.
package printer

import (
	"io"

	"github.com/inhies/go-bytesize"

	"github.com/joshuapare/heapkit/internal/format"
)

const DefaultIndentSize = 1

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs human-readable text format.
	FormatText Format = "text"

	// FormatJSON outputs JSON format.
	FormatJSON Format = "json"
)

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// IndentSize is the number of spaces before list entries (text only).
	// Default: 1
	IndentSize int

	// HumanSizes appends sizes like "4.00KB" next to byte counts (text only).
	// Default: true
	HumanSizes bool

	// ShowFreeList prints the free list after the segment walk in PrintHeap.
	// Default: true
	ShowFreeList bool
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:       FormatText,
		IndentSize:   DefaultIndentSize,
		HumanSizes:   true,
		ShowFreeList: true,
	}
}

// Source is the heap state a Printer reads. *alloc.Heap implements it; Raw
// adapts bare region bytes.
type Source interface {
	// Data returns the region bytes [BASE, HWM).
	Data() []byte

	// FreeChunks returns the free list, head first.
	FreeChunks() []format.Chunk
}

// Printer handles formatted output of heap structures.
type Printer struct {
	opts   Options
	writer io.Writer
	src    Source
}

// New creates a Printer that reads src and writes to w.
//
// Example:
//
//	p := printer.New(h, os.Stdout, printer.DefaultOptions())
//	p.PrintHeap()
func New(src Source, w io.Writer, opts Options) *Printer {
	return &Printer{src: src, writer: w, opts: opts}
}

// PrintChunk prints one chunk.
func (p *Printer) PrintChunk(c format.Chunk) error {
	if p.opts.Format == FormatJSON {
		return p.writeJSON(toJSONChunk(c))
	}
	return p.printChunkText(c)
}

// PrintFreeList prints the free list in list order.
func (p *Printer) PrintFreeList() error {
	if p.opts.Format == FormatJSON {
		return p.writeJSON(toJSONChunks(p.src.FreeChunks()))
	}
	return p.printFreeListText()
}

// PrintHeap walks every segment from BASE to HWM and prints each marker and
// chunk as it is met. A chunk that does not decode ends the walk; what was
// printed so far stays printed and the decode error is returned.
func (p *Printer) PrintHeap() error {
	if p.opts.Format == FormatJSON {
		return p.printHeapJSON()
	}
	return p.printHeapText()
}

// size renders n bytes for text output.
func (p *Printer) size(n int) string {
	if !p.opts.HumanSizes {
		return ""
	}
	return " [" + bytesize.New(float64(n)).String() + "]"
}

// Raw adapts region bytes that have no live Heap, such as a heap file mapped
// read-only. Its free list is every free-flagged chunk in address order.
type Raw []byte

// Data returns the bytes.
func (r Raw) Data() []byte { return r }

// FreeChunks returns free chunks in address order, stopping at the first
// segment that does not decode.
func (r Raw) FreeChunks() []format.Chunk {
	segs, _ := format.Segments(r)
	var out []format.Chunk
	for _, seg := range segs {
		for _, c := range seg.Chunks {
			if c.Free {
				out = append(out, c)
			}
		}
	}
	return out
}
