package stamp

import (
	"fmt"
	"math"
	"strconv"
)

// ConvertOp converts a value between primitive types.
type ConvertOp uint8

// Conversions. Float to integer conversion truncates toward zero,
// saturates out-of-range values, and converts NaN to 0.
const (
	SignExt ConvertOp = iota
	ZeroExt
	Narrow
	IntToFloat
	FloatToInt
	FloatToFloat
	Reinterpret
)

func (op ConvertOp) String() string {
	switch op {
	case SignExt:
		return "sext"
	case ZeroExt:
		return "zext"
	case Narrow:
		return "narrow"
	case IntToFloat:
		return "itof"
	case FloatToInt:
		return "ftoi"
	case FloatToFloat:
		return "ftof"
	case Reinterpret:
		return "bitcast"
	}
	return "convertop(" + strconv.Itoa(int(op)) + ")"
}

// ParseConvertOp looks up a conversion by name.
func ParseConvertOp(s string) (ConvertOp, bool) {
	for op := SignExt; op <= Reinterpret; op++ {
		if op.String() == s {
			return op, true
		}
	}
	return 0, false
}

// ValidConvert reports whether op converts values of type from to type
// to.
func ValidConvert(op ConvertOp, from, to Type) bool {
	switch op {
	case SignExt, ZeroExt:
		return from.Kind == IntKind && to.Kind == IntKind && from.Bits < to.Bits
	case Narrow:
		return from.Kind == IntKind && to.Kind == IntKind && from.Bits > to.Bits
	case IntToFloat:
		return from.Kind == IntKind && to.Kind == FloatKind
	case FloatToInt:
		return from.Kind == FloatKind && to.Kind == IntKind
	case FloatToFloat:
		return from.Kind == FloatKind && to.Kind == FloatKind && from.Bits != to.Bits
	case Reinterpret:
		return from.Bits == to.Bits && from.Kind != to.Kind &&
			(from.Kind == IntKind || from.Kind == FloatKind) &&
			(to.Kind == IntKind || to.Kind == FloatKind)
	}
	return false
}

func checkConvert(op ConvertOp, from, to Type) {
	if !ValidConvert(op, from, to) {
		panic(fmt.Sprintf("stamp: invalid conversion %v from %v to %v", op, from, to))
	}
}

// IsLossless reports whether converting from one type to another and
// back with the inverse conversion always yields the original value.
func IsLossless(op ConvertOp, from, to Type) bool {
	switch op {
	case SignExt, ZeroExt:
		return true
	case IntToFloat:
		mantissa := uint8(24)
		if to.Bits == 64 {
			mantissa = 53
		}
		return from.Bits <= mantissa
	case FloatToFloat:
		return from.Bits < to.Bits
	case Reinterpret:
		return true
	}
	return false
}

// FoldConvert converts the constant x to type to.
func FoldConvert(op ConvertOp, x Const, to Type) Const {
	checkConvert(op, x.Type(), to)
	switch op {
	case SignExt, Narrow:
		return IntConst(to.Bits, x.Int64())
	case ZeroExt:
		return IntConst(to.Bits, int64(x.Uint64()))
	case IntToFloat:
		if to.Bits == 32 {
			return Float32Const(float32(x.Int64()))
		}
		return Float64Const(float64(x.Int64()))
	case FloatToInt:
		return IntConst(to.Bits, floatToInt(x.Float64(), to.Bits))
	case FloatToFloat:
		return FloatConst(to.Bits, x.Float64())
	case Reinterpret:
		if to.Kind == IntKind {
			return IntConst(to.Bits, SignExtend(x.raw, to.Bits))
		}
		return Const{FloatKind, to.Bits, x.raw & Mask(to.Bits)}
	}
	panic(fmt.Sprintf("stamp: invalid conversion %v", op))
}

func floatToInt(f float64, bits uint8) int64 {
	if math.IsNaN(f) {
		return 0
	}
	t := math.Trunc(f)
	if t <= float64(MinValue(bits)) {
		return MinValue(bits)
	}
	if t >= float64(MaxValue(bits)) {
		return MaxValue(bits)
	}
	return int64(t)
}

// FoldConvertStamp returns the stamp of converting values of x to type
// to.
func FoldConvertStamp(op ConvertOp, x Stamp, to Type) Stamp {
	checkConvert(op, TypeOf(x), to)
	if x.IsEmpty() {
		return to.Unrestricted().Empty()
	}
	if c, ok := x.AsConstant(); ok {
		return ForConst(FoldConvert(op, c, to))
	}
	switch op {
	case SignExt:
		a := x.(IntegerStamp)
		down, up := a.down, a.up
		high := Mask(to.Bits) &^ Mask(a.width)
		if sign := uint64(1) << (a.width - 1); down&sign != 0 {
			down |= high
			up |= high
		} else if up&sign != 0 {
			up |= high
		}
		return NewIntegerStamp(to.Bits, a.lower, a.upper, down, up)
	case ZeroExt:
		a := x.(IntegerStamp)
		lo, hi := a.UnsignedBounds()
		return NewIntegerStamp(to.Bits, int64(lo), int64(hi), a.down, a.up)
	case Narrow:
		a := x.(IntegerStamp)
		if a.lower >= MinValue(to.Bits) && a.upper <= MaxValue(to.Bits) {
			return NewIntegerStamp(to.Bits, a.lower, a.upper, a.down, a.up)
		}
		return IntegerMasks(to.Bits, a.down, a.up)
	case IntToFloat:
		a := x.(IntegerStamp)
		lo := FoldConvert(op, IntConst(a.width, a.lower), to).Float64()
		hi := FoldConvert(op, IntConst(a.width, a.upper), to).Float64()
		return NewFloatStamp(to.Bits, lo, hi, true)
	case FloatToInt:
		a := x.(FloatStamp)
		var s Stamp = IntegerEmpty(to.Bits)
		if a.hasValues() {
			s = IntegerRange(to.Bits, floatToInt(a.lower, to.Bits), floatToInt(a.upper, to.Bits))
		}
		if a.CanBeNaN() {
			s = s.Meet(IntegerConst(to.Bits, 0))
		}
		return s
	case FloatToFloat:
		a := x.(FloatStamp)
		if !a.hasValues() {
			return NewFloatStamp(to.Bits, a.lower, a.upper, a.nonNaN)
		}
		lo := FloatConst(to.Bits, a.lower).Float64()
		hi := FloatConst(to.Bits, a.upper).Float64()
		return NewFloatStamp(to.Bits, lo, hi, a.nonNaN)
	case Reinterpret:
		return to.Unrestricted()
	}
	panic(fmt.Sprintf("stamp: invalid conversion %v", op))
}
