package bigint

import (
	"math"
	"testing"
)

func TestToSigned(t *testing.T) {
	tests := []struct {
		x     int64
		width uint8
		want  int64
		ok    bool
	}{
		{127, 8, 127, true},
		{128, 8, -128, false},
		{200, 8, -56, false},
		{-129, 8, 127, false},
		{-1, 1, -1, true},
		{1, 1, -1, false},
		{math.MinInt64, 64, math.MinInt64, true},
	}
	for _, tt := range tests {
		got, ok := ToSigned(Int(tt.x), tt.width)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ToSigned(%d, %d): got %d, %t, want %d, %t", tt.x, tt.width, got, ok, tt.want, tt.ok)
		}
	}
	if FitsSigned(Mul(1<<40, 1<<30), 64) {
		t.Errorf("FitsSigned(2^70, 64): got true")
	}
	if !FitsSigned(Add(math.MaxInt64, -1), 64) {
		t.Errorf("FitsSigned(MaxInt64-1, 64): got false")
	}
}

func TestToUnsigned(t *testing.T) {
	if got, ok := ToUnsigned(Int(-1), 8); got != 255 || ok {
		t.Errorf("ToUnsigned(-1, 8): got %d, %t, want 255, false", got, ok)
	}
	if got, ok := ToUnsigned(Int(255), 8); got != 255 || !ok {
		t.Errorf("ToUnsigned(255, 8): got %d, %t, want 255, true", got, ok)
	}
	if got, ok := ToUnsigned(UMul(math.MaxUint64, 1), 64); got != math.MaxUint64 || !ok {
		t.Errorf("ToUnsigned(MaxUint64, 64): got %d, %t", got, ok)
	}
}

func TestWrapRange(t *testing.T) {
	tests := []struct {
		lo, hi int64
		width  uint8
		wlo    int64
		whi    int64
		wantOK bool
	}{
		{-3, 2, 8, -3, 2, true},
		{256, 260, 8, 0, 4, true},
		{120, 130, 8, 0, 0, false},
		{0, 255, 8, 0, 0, false},
		{-128, 127, 8, 0, 0, false},
		{-128, 126, 8, -128, 126, true},
	}
	for _, tt := range tests {
		lo, hi, ok := WrapRange(Int(tt.lo), Int(tt.hi), tt.width)
		if lo != tt.wlo || hi != tt.whi || ok != tt.wantOK {
			t.Errorf("WrapRange(%d, %d, %d): got %d, %d, %t, want %d, %d, %t",
				tt.lo, tt.hi, tt.width, lo, hi, ok, tt.wlo, tt.whi, tt.wantOK)
		}
	}
}

func TestMinMax(t *testing.T) {
	min, max := MinMax(Int(3), Neg(2), Lsh(7, 1), Quo(-9, 2))
	if min.Int64() != -4 || max.Int64() != 14 {
		t.Errorf("MinMax: got %v, %v, want -4, 14", min, max)
	}
	if Min(Int(1), Int(2)).Int64() != 1 || Max(Int(1), Int(2)).Int64() != 2 {
		t.Errorf("Min/Max of 1 and 2: got %v, %v", Min(Int(1), Int(2)), Max(Int(1), Int(2)))
	}
}
