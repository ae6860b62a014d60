package main

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/heapkit/cmd/heapexplorer/logger"
	"github.com/joshuapare/heapkit/heap/printer"
	"github.com/joshuapare/heapkit/heap/verify"
	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/mmfile"
)

// chunkRow is one decoded chunk together with the segment it belongs to.
type chunkRow struct {
	Segment int
	Chunk   format.Chunk
}

// snapshot is a private copy of a heap image, decoded once per load.
type snapshot struct {
	name      string
	data      []byte
	segments  int
	chunks    []chunkRow
	verr      error // first invariant violation, nil when the heap is valid
	decodeErr error // why the segment walk stopped early, if it did
}

// loadSnapshot maps the heap file under a shared lock, copies it and releases
// the mapping so the writer is not blocked while the UI is open.
func loadSnapshot(path string, pageSize int) (*snapshot, error) {
	m, err := mmfile.Map(path, &mmfile.Options{Shared: true})
	if err != nil {
		return nil, err
	}
	defer m.Close()
	s := newSnapshot(path, bytes.Clone(m.Bytes()), pageSize)
	freeChunks, _, _ := s.usage()
	logger.Snapshot(len(s.data), s.segments, len(s.chunks), freeChunks, s.problem())
	return s, nil
}

func newSnapshot(name string, data []byte, pageSize int) *snapshot {
	s := &snapshot{name: name, data: data}
	segs, err := format.Segments(data)
	if err != nil {
		s.decodeErr = fmt.Errorf("decoded %d segment(s), then: %w", len(segs), err)
	}
	s.segments = len(segs)
	for i, seg := range segs {
		for _, c := range seg.Chunks {
			s.chunks = append(s.chunks, chunkRow{Segment: i, Chunk: c})
		}
	}
	s.verr = verify.AllInvariants(data, pageSize)
	if s.verr == nil {
		s.verr = verify.FreeList(data, printer.Raw(data).FreeChunks())
	}
	return s
}

// problem returns the error to show for the snapshot: the verifier's if it
// found one, otherwise any decode failure.
func (s *snapshot) problem() error {
	if s.verr != nil {
		return s.verr
	}
	return s.decodeErr
}

// usage returns the number of free chunks and the bytes held by free and
// used chunks.
func (s *snapshot) usage() (freeChunks, freeBytes, usedBytes int) {
	for _, r := range s.chunks {
		if r.Chunk.Free {
			freeChunks++
			freeBytes += r.Chunk.Size
		} else {
			usedBytes += r.Chunk.Size
		}
	}
	return freeChunks, freeBytes, usedBytes
}

// payload returns the bytes between the chunk's tags, or nil if the chunk
// does not fit in the image.
func (s *snapshot) payload(c format.Chunk) []byte {
	b, ok := buf.Slice(s.data, c.Payload(), c.PayloadSize())
	if !ok {
		return nil
	}
	return b
}
