package alloc

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding"
)

// Strdup copies s into a new chunk followed by a NUL byte.
func (h *Heap) Strdup(s string) (Ptr, error) {
	p, err := h.Malloc(len(s) + 1)
	if err != nil {
		return Nil, err
	}
	n := copy(h.mem[int(p):], s)
	h.mem[int(p)+n] = 0
	h.touch(int(p), n+1)
	return p, nil
}

// StrdupEncoded transcodes s with enc and copies the result into a new
// chunk, terminated by an encoded NUL (two zero bytes for UTF-16).
//
//	p, err := h.StrdupEncoded("Software", unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM))
func (h *Heap) StrdupEncoded(s string, enc encoding.Encoding) (Ptr, error) {
	b, err := enc.NewEncoder().Bytes([]byte(s + "\x00"))
	if err != nil {
		return Nil, fmt.Errorf("strdup: encode: %w", err)
	}
	p, err := h.Malloc(len(b))
	if err != nil {
		return Nil, err
	}
	copy(h.mem[int(p):], b)
	h.touch(int(p), len(b))
	return p, nil
}

// CString returns the bytes at p up to the first NUL, or the whole payload
// when it holds none.
func (h *Heap) CString(p Ptr) (string, error) {
	b, err := h.Bytes(p)
	if err != nil {
		return "", err
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b), nil
}

// CStringEncoded decodes the string at p written by StrdupEncoded with the
// same encoding.
func (h *Heap) CStringEncoded(p Ptr, enc encoding.Encoding) (string, error) {
	b, err := h.Bytes(p)
	if err != nil {
		return "", err
	}
	unit, err := nulWidth(enc)
	if err != nil {
		return "", err
	}
	end := len(b) - len(b)%unit
	for i := 0; i+unit <= len(b); i += unit {
		if isZero(b[i : i+unit]) {
			end = i
			break
		}
	}
	out, err := enc.NewDecoder().Bytes(b[:end])
	if err != nil {
		return "", fmt.Errorf("cstring: decode: %w", err)
	}
	return string(out), nil
}

// nulWidth returns the width of one encoded NUL. Encoding one and two NULs
// and subtracting cancels out any byte order mark.
func nulWidth(enc encoding.Encoding) (int, error) {
	one, err := enc.NewEncoder().Bytes([]byte{0})
	if err != nil {
		return 0, err
	}
	two, err := enc.NewEncoder().Bytes([]byte{0, 0})
	if err != nil {
		return 0, err
	}
	if w := len(two) - len(one); w > 0 {
		return w, nil
	}
	return 1, nil
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
