package stamp

import (
	"math"
	"testing"
)

func TestFoldConstant(t *testing.T) {
	tests := []struct {
		op    BinaryOp
		bits  uint8
		x, y  int64
		want  int64
		traps bool
	}{
		{Add, 32, math.MaxInt32, 1, math.MinInt32, false},
		{Sub, 8, -128, 1, 127, false},
		{Mul, 16, 300, 300, 24464, false},
		{Div, 32, math.MinInt32, -1, math.MinInt32, false},
		{Div, 64, math.MinInt64, -1, math.MinInt64, false},
		{Div, 32, -7, 2, -3, false},
		{Div, 32, 5, 0, 0, true},
		{Rem, 32, -7, 2, -1, false},
		{Rem, 64, math.MinInt64, -1, 0, false},
		{Rem, 8, 1, 0, 0, true},
		{UDiv, 32, -1, 2, 0x7fffffff, false},
		{URem, 8, -1, 10, 5, false},
		{URem, 16, 3, 0, 0, true},
		{MulHigh, 64, math.MinInt64, math.MinInt64, 1 << 62, false},
		{MulHigh, 32, -1, -1, 0, false},
		{MulHigh, 32, -2, 3, -1, false},
		{UMulHigh, 32, -1, -1, -2, false},
		{UMulHigh, 64, -1, 2, 1, false},
		{And, 8, 0x5a, -16, 0x50, false},
		{Or, 8, 0x0f, 0x70, 0x7f, false},
		{Xor, 8, -1, 0x0f, -16, false},
		{Min, 32, -3, 2, -3, false},
		{Max, 32, -3, 2, 2, false},
		{UMin, 32, -3, 2, 2, false},
		{UMax, 32, -3, 2, -3, false},
		{Compress, 8, 0x70, 0x70, 0x07, false},
		{Compress, 8, 0x5a, 0x0f, 0x0a, false},
		{Expand, 8, 0x05, 0x1a, 0x12, false},
		{Expand, 8, 0x0f, 0xf0, -16, false},
	}
	for _, tt := range tests {
		got, ok := IntegerOps.FoldConstant(tt.op, IntConst(tt.bits, tt.x), IntConst(tt.bits, tt.y))
		if ok == tt.traps {
			t.Errorf("%v i%d %d, %d: got ok=%t, want %t", tt.op, tt.bits, tt.x, tt.y, ok, !tt.traps)
			continue
		}
		if ok && got.Int64() != tt.want {
			t.Errorf("%v i%d %d, %d: got %d, want %d", tt.op, tt.bits, tt.x, tt.y, got.Int64(), tt.want)
		}
	}
}

func TestFoldShift(t *testing.T) {
	tests := []struct {
		op   ShiftOp
		bits uint8
		x, s int64
		want int64
	}{
		{Shl, 32, 1, 40, 256},
		{Shl, 64, 1, 64, 1},
		{Shl, 8, 3, 7, -128},
		{UShr, 32, -1, 28, 15},
		{Shr, 32, -16, 2, -4},
		{Shr, 16, -1, -1, -1},
		{UShr, 16, -1, -1, 1},
	}
	for _, tt := range tests {
		got := IntegerOps.FoldShift(tt.op, IntConst(tt.bits, tt.x), tt.s)
		if got.Int64() != tt.want {
			t.Errorf("%v i%d %d, %d: got %d, want %d", tt.op, tt.bits, tt.x, tt.s, got.Int64(), tt.want)
		}
	}
}

func TestIntegerNeutral(t *testing.T) {
	tests := []struct {
		op   BinaryOp
		c    int64
		want bool
	}{
		{Add, 0, true},
		{Sub, 0, true},
		{Mul, 1, true},
		{Mul, 0, false},
		{Div, 1, true},
		{And, -1, true},
		{And, 0xff, false},
		{Or, 0, true},
		{Xor, 0, true},
		{Min, math.MaxInt32, true},
		{Max, math.MinInt32, true},
		{UMin, -1, true},
		{UMax, 0, true},
		{Rem, 1, false},
	}
	for _, tt := range tests {
		if got := IntegerOps.IsNeutral(tt.op, IntConst(32, tt.c)); got != tt.want {
			t.Errorf("IsNeutral(%v, %d) got %t, want %t", tt.op, tt.c, got, tt.want)
		}
	}
}

var sweepStamps = []IntegerStamp{
	IntegerUnrestricted(8),
	IntegerRange(8, 0, 10),
	IntegerRange(8, -5, 5),
	IntegerRange(8, -128, -100),
	IntegerRange(8, 100, 127),
	IntegerRange(8, -7, -2),
	IntegerRange(8, 16, 64),
	IntegerRange(8, 1, 2),
	IntegerMasks(8, 0x10, 0x3f),
	IntegerMasks(8, 0x80, 0xf3),
	IntegerConst(8, 3),
	IntegerConst(8, -1),
	IntegerConst(8, 0),
	IntegerConst(8, -128),
}

func intValues(s IntegerStamp) []int64 {
	var vs []int64
	if s.IsEmpty() {
		return nil
	}
	for v := s.lower; ; v++ {
		if s.Contains(v) {
			vs = append(vs, v)
		}
		if v == s.upper {
			return vs
		}
	}
}

// Every value computed from values of the operand stamps must be a value
// of the folded stamp.
func TestFoldStampSound(t *testing.T) {
	for op := Add; op < numBinaryOps; op++ {
		for _, a := range sweepStamps {
			for _, b := range sweepStamps {
				r := IntegerOps.FoldStamp(op, a, b).(IntegerStamp)
			values:
				for _, x := range intValues(a) {
					for _, y := range intValues(b) {
						c, ok := IntegerOps.FoldConstant(op, IntConst(8, x), IntConst(8, y))
						if ok && !r.Contains(c.Int64()) {
							t.Errorf("%v %d, %d = %d, which is not in %v folded from %v and %v", op, x, y, c.Int64(), r, a, b)
							break values
						}
					}
				}
			}
		}
	}
}

func TestFoldUnaryStampSound(t *testing.T) {
	for _, op := range []UnaryOp{Neg, Not, Abs} {
		for _, a := range sweepStamps {
			r := IntegerOps.FoldUnaryStamp(op, a).(IntegerStamp)
			for _, x := range intValues(a) {
				c := IntegerOps.FoldUnary(op, IntConst(8, x))
				if !r.Contains(c.Int64()) {
					t.Errorf("%v %d = %d, which is not in %v folded from %v", op, x, c.Int64(), r, a)
					break
				}
			}
		}
	}
}

func TestFoldShiftStampSound(t *testing.T) {
	for _, op := range []ShiftOp{Shl, Shr, UShr} {
		for _, a := range sweepStamps {
			for _, s := range sweepStamps {
				r := IntegerOps.FoldShiftStamp(op, a, s).(IntegerStamp)
			values:
				for _, x := range intValues(a) {
					for _, y := range intValues(s) {
						c := IntegerOps.FoldShift(op, IntConst(8, x), y)
						if !r.Contains(c.Int64()) {
							t.Errorf("%v %d, %d = %d, which is not in %v folded from %v and %v", op, x, y, c.Int64(), r, a, s)
							break values
						}
					}
				}
			}
		}
	}
}

func TestFoldStampPrecision(t *testing.T) {
	tests := []struct {
		op   BinaryOp
		x, y Stamp
		want Stamp
	}{
		{Add, IntegerRange(32, 0, 10), IntegerRange(32, 5, 5), IntegerRange(32, 5, 15)},
		{Sub, IntegerRange(32, 0, 10), IntegerRange(32, 0, 10), IntegerRange(32, -10, 10)},
		{Mul, IntegerRange(32, -2, 3), IntegerRange(32, 4, 4), NewIntegerStamp(32, -8, 12, 0, Mask(32)&^3)},
		{Div, IntegerRange(32, 10, 20), IntegerRange(32, -2, 2), IntegerRange(32, -20, 20)},
		{Rem, IntegerRange(32, 0, 100), IntegerRange(32, 1, 8), IntegerRange(32, 0, 7)},
		{And, IntegerRange(32, 0, 0xff), IntegerUnrestricted(32), IntegerRange(32, 0, 0xff)},
		{Div, IntegerConst(32, 1), IntegerConst(32, 0), IntegerEmpty(32)},
		{UDiv, IntegerRange(32, 0, 100), IntegerRange(32, 0, 0), IntegerEmpty(32)},
		{Add, IntegerEmpty(32), IntegerRange(32, 0, 1), IntegerEmpty(32)},
	}
	for i, tt := range tests {
		if got := IntegerOps.FoldStamp(tt.op, tt.x, tt.y); !got.Equals(tt.want) {
			t.Errorf("test %d: %v %v, %v got %v, want %v", i, tt.op, tt.x, tt.y, got, tt.want)
		}
	}
}
