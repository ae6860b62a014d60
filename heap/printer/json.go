package printer

import (
	"encoding/json"
	"fmt"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/format"
)

// Stats is the allocator counter set PrintStats accepts.
type Stats = alloc.Stats

// jsonChunk represents a chunk in JSON format.
type jsonChunk struct {
	Offset  int    `json:"offset"`
	Size    int    `json:"size"`
	Payload int    `json:"payload"`
	Free    bool   `json:"free"`
	Valid   bool   `json:"valid"`
	Header  uint32 `json:"header,omitempty"`
	Footer  uint32 `json:"footer,omitempty"`
}

// jsonSegment represents one growth increment in JSON format.
type jsonSegment struct {
	Start  int         `json:"start"`
	End    int         `json:"end"`
	Chunks []jsonChunk `json:"chunks"`
}

// jsonHeap represents a full heap walk in JSON format.
type jsonHeap struct {
	HWM      int           `json:"hwm"`
	Segments []jsonSegment `json:"segments"`
	FreeList []jsonChunk   `json:"free_list,omitempty"`
	Error    string        `json:"error,omitempty"`
}

func toJSONChunk(c format.Chunk) jsonChunk {
	jc := jsonChunk{
		Offset:  c.Offset,
		Size:    c.Size,
		Payload: c.PayloadSize(),
		Free:    c.Free,
		Valid:   c.Valid(),
	}
	if !jc.Valid {
		jc.Header = uint32(c.Header)
		jc.Footer = uint32(c.Footer)
	}
	return jc
}

func toJSONChunks(cs []format.Chunk) []jsonChunk {
	out := make([]jsonChunk, 0, len(cs))
	for _, c := range cs {
		out = append(out, toJSONChunk(c))
	}
	return out
}

func (p *Printer) printHeapJSON() error {
	data := p.src.Data()
	segs, walkErr := format.Segments(data)

	out := jsonHeap{HWM: len(data), Segments: make([]jsonSegment, 0, len(segs))}
	for _, seg := range segs {
		out.Segments = append(out.Segments, jsonSegment{
			Start:  seg.Start,
			End:    seg.End,
			Chunks: toJSONChunks(seg.Chunks),
		})
	}
	if p.opts.ShowFreeList {
		out.FreeList = toJSONChunks(p.src.FreeChunks())
	}
	if walkErr != nil {
		out.Error = walkErr.Error()
	}
	if err := p.writeJSON(out); err != nil {
		return err
	}
	return walkErr
}

func (p *Printer) writeJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(p.writer, "%s\n", data)
	return err
}
