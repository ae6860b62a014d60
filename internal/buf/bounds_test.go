package buf

import (
	"math"
	"testing"
)

func TestAddOverflowSafe(t *testing.T) {
	if sum, ok := AddOverflowSafe(10, 5); !ok || sum != 15 {
		t.Fatalf("AddOverflowSafe(10,5)=%d,%v want 15,true", sum, ok)
	}
	if _, ok := AddOverflowSafe(math.MaxInt, 1); ok {
		t.Fatalf("expected overflow when adding to MaxInt")
	}
	if _, ok := AddOverflowSafe(math.MinInt, -1); ok {
		t.Fatalf("expected underflow when subtracting from MinInt")
	}
}

func TestMulOverflowSafe(t *testing.T) {
	tests := []struct {
		a, b int
		want int
		ok   bool
	}{
		{a: 10, b: 4, want: 40, ok: true},
		{a: 0, b: math.MaxInt, want: 0, ok: true},
		{a: math.MaxInt / 2, b: 3, ok: false},
		{a: -1, b: 8, ok: false},
		{a: 8, b: -1, ok: false},
	}
	for _, tt := range tests {
		got, ok := MulOverflowSafe(tt.a, tt.b)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Fatalf("MulOverflowSafe(%d,%d)=%d,%v want %d,%v", tt.a, tt.b, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCheckSpan(t *testing.T) {
	if end, err := CheckSpan(64, 8, 24); err != nil || end != 32 {
		t.Fatalf("CheckSpan(64,8,24)=%d,%v want 32,nil", end, err)
	}
	if _, err := CheckSpan(64, 48, 24); err == nil {
		t.Fatalf("expected bounds error")
	}
	if _, err := CheckSpan(64, -4, 4); err == nil {
		t.Fatalf("expected negative offset error")
	}
	if _, err := CheckSpan(64, 4, -4); err == nil {
		t.Fatalf("expected negative length error")
	}
	if _, err := CheckSpan(math.MaxInt, math.MaxInt, 1); err == nil {
		t.Fatalf("expected overflow error")
	}
}

func TestSliceAndHas(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}
	if got, ok := Slice(data, 1, 3); !ok || len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("Slice returned unexpected result: %v, %v", got, ok)
	}
	if _, ok := Slice(data, 4, 2); ok {
		t.Fatalf("Slice should fail when extending beyond len")
	}
	if Has(data, 2, 4) {
		t.Fatalf("Has should be false for out-of-bounds range")
	}
	if !Has(data, 2, 1) {
		t.Fatalf("Has should be true for valid range")
	}
	if _, ok := Slice(data, -1, 1); ok {
		t.Fatalf("Slice should reject negative offset")
	}
}
