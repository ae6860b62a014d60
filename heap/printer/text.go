package printer

import (
	"fmt"
	"strings"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// printChunkText prints a chunk in the classic one-line form:
//
//	Free chunk @0x0004, size 4088 (payload 4080) [3.99KB], valid.
func (p *Printer) printChunkText(c format.Chunk) error {
	state := "Working"
	if c.Free {
		state = "Free"
	}
	validity := "valid."
	if !c.Valid() {
		validity = fmt.Sprintf("invalid. (head: %d, foot: %d)", uint32(c.Header), uint32(c.Footer))
	}
	_, err := fmt.Fprintf(p.writer, "%s chunk @0x%04X, size %d (payload %d)%s, %s\n",
		state, c.Offset, c.Size, c.PayloadSize(), p.size(c.Size), validity)
	return err
}

func (p *Printer) printFreeListText() error {
	list := p.src.FreeChunks()
	indent := strings.Repeat(" ", p.opts.IndentSize)
	if _, err := fmt.Fprintf(p.writer, "Free list contains %d chunks:\n", len(list)); err != nil {
		return err
	}
	for i, c := range list {
		if _, err := fmt.Fprintf(p.writer, "%s%d. ", indent, i); err != nil {
			return err
		}
		if err := p.printChunkText(c); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) printHeapText() error {
	data := p.src.Data()
	fmt.Fprintf(p.writer, "Heap: %d bytes%s\n", len(data), p.size(len(data)))

	for off := 0; off < len(data); {
		seg, next, err := format.NextSegment(data, off)
		if err != nil {
			fmt.Fprintf(p.writer, "0x%04X: %s\n", off, describeTag(data, off))
			return err
		}
		fmt.Fprintf(p.writer, "0x%04X: base dummy\n", seg.Start)
		for _, c := range seg.Chunks {
			fmt.Fprintf(p.writer, "0x%04X: ", c.Offset)
			if err := p.printChunkText(c); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(p.writer, "0x%04X: top dummy\n", seg.End-format.TagSize); err != nil {
			return err
		}
		off = next
	}

	if p.opts.ShowFreeList {
		return p.printFreeListText()
	}
	return nil
}

func describeTag(data []byte, off int) string {
	if !buf.Has(data, off, format.TagSize) {
		return "truncated"
	}
	return "undecodable tag " + format.ReadInfo(data, off).String()
}

// PrintStats prints allocator counters.
func (p *Printer) PrintStats(s Stats) error {
	if p.opts.Format == FormatJSON {
		return p.writeJSON(s)
	}
	rows := []struct {
		name  string
		value int64
		bytes bool
	}{
		{"Grow calls", int64(s.GrowCalls), false},
		{"Grow bytes", s.GrowBytes, true},
		{"Alloc calls", int64(s.AllocCalls), false},
		{"  from free list", int64(s.AllocFastPath), false},
		{"  after growth", int64(s.AllocSlowPath), false},
		{"Free calls", int64(s.FreeCalls), false},
		{"Double frees", int64(s.DoubleFrees), false},
		{"Splits", int64(s.Splits), false},
		{"Merges", int64(s.Merges), false},
		{"Bytes allocated", s.BytesAllocated, true},
		{"Bytes freed", s.BytesFreed, true},
		{"In use", s.BytesAllocated - s.BytesFreed, true},
	}
	for _, r := range rows {
		suffix := ""
		if r.bytes {
			suffix = p.size(int(r.value))
		}
		if _, err := fmt.Fprintf(p.writer, "%-18s %d%s\n", r.name+":", r.value, suffix); err != nil {
			return err
		}
	}
	return nil
}
