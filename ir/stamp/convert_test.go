package stamp

import (
	"math"
	"testing"
)

func TestFoldConvert(t *testing.T) {
	tests := []struct {
		op   ConvertOp
		x    Const
		to   Type
		want Const
	}{
		{SignExt, IntConst(8, -1), I32, IntConst(32, -1)},
		{ZeroExt, IntConst(8, -1), I32, IntConst(32, 255)},
		{Narrow, IntConst(32, 0x1ff), I8, IntConst(8, -1)},
		{IntToFloat, IntConst(32, -3), F64, Float64Const(-3)},
		{FloatToInt, Float64Const(-3.9), I32, IntConst(32, -3)},
		{FloatToInt, Float64Const(1e20), I32, IntConst(32, math.MaxInt32)},
		{FloatToInt, Float64Const(math.Inf(-1)), I64, IntConst(64, math.MinInt64)},
		{FloatToInt, Float64Const(math.NaN()), I16, IntConst(16, 0)},
		{FloatToFloat, Float64Const(0.5), F32, Float32Const(0.5)},
		{Reinterpret, Float32Const(1), I32, IntConst(32, 0x3f800000)},
		{Reinterpret, IntConst(64, -1<<63), F64, Float64Const(math.Copysign(0, -1))},
	}
	for _, tt := range tests {
		if got := FoldConvert(tt.op, tt.x, tt.to); got != tt.want {
			t.Errorf("%v %v to %v: got %v, want %v", tt.op, tt.x, tt.to, got, tt.want)
		}
	}
}

func TestValidConvert(t *testing.T) {
	tests := []struct {
		op       ConvertOp
		from, to Type
		want     bool
	}{
		{SignExt, I8, I32, true},
		{SignExt, I32, I8, false},
		{Narrow, I64, I32, true},
		{Narrow, I32, I32, false},
		{IntToFloat, I16, F32, true},
		{FloatToFloat, F32, F32, false},
		{Reinterpret, I32, F32, true},
		{Reinterpret, I64, F32, false},
		{Reinterpret, Obj, I64, false},
	}
	for _, tt := range tests {
		if got := ValidConvert(tt.op, tt.from, tt.to); got != tt.want {
			t.Errorf("ValidConvert(%v, %v, %v) got %t, want %t", tt.op, tt.from, tt.to, got, tt.want)
		}
	}
}

func TestIsLossless(t *testing.T) {
	tests := []struct {
		op       ConvertOp
		from, to Type
		want     bool
	}{
		{SignExt, I8, I64, true},
		{IntToFloat, I16, F32, true},
		{IntToFloat, I32, F32, false},
		{IntToFloat, I32, F64, true},
		{FloatToFloat, F32, F64, true},
		{FloatToFloat, F64, F32, false},
		{FloatToInt, F64, I64, false},
	}
	for _, tt := range tests {
		if got := IsLossless(tt.op, tt.from, tt.to); got != tt.want {
			t.Errorf("IsLossless(%v, %v, %v) got %t, want %t", tt.op, tt.from, tt.to, got, tt.want)
		}
	}
}

func TestFoldConvertStampSound(t *testing.T) {
	wide := []IntegerStamp{
		IntegerRange(16, 200, 300),
		IntegerRange(16, -1000, 1000),
		IntegerRange(16, -300, -200),
		IntegerMasks(16, 0x100, 0x1ff),
	}
	for _, a := range sweepStamps {
		for _, conv := range []struct {
			op ConvertOp
			to Type
		}{{SignExt, I16}, {ZeroExt, I32}, {IntToFloat, F32}, {IntToFloat, F64}} {
			r := FoldConvertStamp(conv.op, a, conv.to)
			for _, x := range intValues(a) {
				c := FoldConvert(conv.op, IntConst(8, x), conv.to)
				if !ForConst(c).Join(r).Equals(ForConst(c)) {
					t.Errorf("%v %d to %v = %v, which is not in %v folded from %v", conv.op, x, conv.to, c, r, a)
					break
				}
			}
		}
		wide = append(wide, FoldConvertStamp(SignExt, a, I16).(IntegerStamp))
	}
	for _, a := range wide {
		r := FoldConvertStamp(Narrow, a, I8).(IntegerStamp)
		for _, x := range intValues(a) {
			c := FoldConvert(Narrow, IntConst(16, x), I8)
			if !r.Contains(c.Int64()) {
				t.Errorf("narrow %d = %v, which is not in %v folded from %v", x, c, r, a)
				break
			}
		}
	}
	for _, a := range floatSweepStamps {
		r := FoldConvertStamp(FloatToInt, a, I32).(IntegerStamp)
		for _, x := range floatValues(a) {
			c := FoldConvert(FloatToInt, Float64Const(x), I32)
			if !r.Contains(c.Int64()) {
				t.Errorf("ftoi %v = %v, which is not in %v folded from %v", x, c, r, a)
				break
			}
		}
	}
}

func TestSignExtendNegativeStamp(t *testing.T) {
	r := FoldConvertStamp(SignExt, IntegerRange(8, -128, -100), I16).(IntegerStamp)
	if r.IsEmpty() {
		t.Fatalf("sext of [-128, -100]: got empty")
	}
	if r.Lower() != -128 || r.Upper() != -100 {
		t.Errorf("sext of [-128, -100]: got %v, want [-128, -100]", r)
	}
	if high := uint64(0xff00); r.DownMask()&high != high {
		t.Errorf("sext of [-128, -100]: got down mask %#x, want high byte set", r.DownMask())
	}
}
