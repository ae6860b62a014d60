package buf

import "testing"

func TestEndianHelpers(t *testing.T) {
	data := []byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef}

	if got := U32LE(data); got != 0x67452301 {
		t.Fatalf("U32LE = 0x%x, want 0x67452301", got)
	}
	if got := U32At(data, 4); got != 0xefcdab89 {
		t.Fatalf("U32At(4) = 0x%x, want 0xefcdab89", got)
	}

	short := []byte{0xAA}
	if U32LE(short) != 0 {
		t.Fatalf("short reads should return 0")
	}
	if U32At(data, 6) != 0 || U32At(data, -1) != 0 || U32At(data, 100) != 0 {
		t.Fatalf("out-of-range U32At should return 0")
	}
}
