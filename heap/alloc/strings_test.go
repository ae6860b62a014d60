package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

func TestStrdup(t *testing.T) {
	h := newTestHeap(t, 1<<16, &Options{SplitGrown: true})

	tests := []string{"", "a", "hello, heap", "exactly sixteen!"}
	for _, s := range tests {
		p, err := h.Strdup(s)
		require.NoError(t, err)
		b, err := h.Bytes(p)
		require.NoError(t, err)
		require.Greater(t, len(b), len(s))
		assert.Equal(t, byte(0), b[len(s)], "terminator for %q", s)

		got, err := h.CString(p)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	requireConsistent(t, h)
}

func TestStrdupSixteenNeedsTerminatorRoom(t *testing.T) {
	h := newTestHeap(t, 1<<16, &Options{SplitGrown: true})
	p, err := h.Strdup("exactly sixteen!")
	require.NoError(t, err)
	b, err := h.Bytes(p)
	require.NoError(t, err)
	assert.Len(t, b, 24)
}

func TestStrdupEncodedUTF16(t *testing.T) {
	h := newTestHeap(t, 1<<16, &Options{SplitGrown: true})
	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

	p, err := h.StrdupEncoded("héllo", enc)
	require.NoError(t, err)
	b, err := h.Bytes(p)
	require.NoError(t, err)
	assert.Equal(t, []byte{'h', 0, 0xE9, 0, 'l', 0, 'l', 0, 'o', 0, 0, 0}, b[:12])

	got, err := h.CStringEncoded(p, enc)
	require.NoError(t, err)
	assert.Equal(t, "héllo", got)
}

func TestStrdupEncodedSingleByte(t *testing.T) {
	h := newTestHeap(t, 1<<16, nil)
	p, err := h.StrdupEncoded("café", charmap.Windows1252)
	require.NoError(t, err)
	b, err := h.Bytes(p)
	require.NoError(t, err)
	assert.Equal(t, []byte{'c', 'a', 'f', 0xE9, 0}, b[:5])

	got, err := h.CStringEncoded(p, charmap.Windows1252)
	require.NoError(t, err)
	assert.Equal(t, "café", got)
}
