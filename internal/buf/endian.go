// Package buf contains bounds-checked helpers for reading heap bytes that may
// be truncated or corrupt, such as a heap file mapped read-only for inspection.
package buf

import "encoding/binary"

// U32LE reads a little-endian uint32 from b. Returns 0 when b is too short,
// which callers treat the same as a segment boundary tag.
func U32LE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// U32At reads the uint32 at b[off:]. Out-of-range offsets read as 0.
func U32At(b []byte, off int) uint32 {
	if off < 0 || off > len(b) {
		return 0
	}
	return U32LE(b[off:])
}
