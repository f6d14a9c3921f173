package stamp

import (
	"fmt"
	"math"
)

func isFloatNeutral(op BinaryOp, c Const) bool {
	f := c.Float64()
	switch op {
	case Add:
		// x + -0.0 == x for every x, including +0.0; x + +0.0 turns
		// -0.0 into +0.0.
		return f == 0 && math.Signbit(f)
	case Sub:
		return f == 0 && !math.Signbit(f)
	case Mul, Div:
		return f == 1
	}
	return false
}

func foldFloat(op BinaryOp, x, y Const) Const {
	if x.bits == 32 {
		a, b := float32(x.Float64()), float32(y.Float64())
		var r float32
		switch op {
		case Add:
			r = a + b
		case Sub:
			r = a - b
		case Mul:
			r = a * b
		case Div:
			r = a / b
		case Rem:
			r = float32(math.Mod(float64(a), float64(b)))
		case Min:
			r = float32(nanMin(float64(a), float64(b)))
		case Max:
			r = float32(nanMax(float64(a), float64(b)))
		default:
			panic(fmt.Sprintf("stamp: invalid float operation %v", op))
		}
		return Float32Const(r)
	}
	a, b := x.Float64(), y.Float64()
	switch op {
	case Add:
		return Float64Const(a + b)
	case Sub:
		return Float64Const(a - b)
	case Mul:
		return Float64Const(a * b)
	case Div:
		return Float64Const(a / b)
	case Rem:
		return Float64Const(math.Mod(a, b))
	case Min:
		return Float64Const(nanMin(a, b))
	case Max:
		return Float64Const(nanMax(a, b))
	}
	panic(fmt.Sprintf("stamp: invalid float operation %v", op))
}

// nanMin returns the lesser of a and b, or NaN if either is NaN. It
// orders -0.0 below +0.0.
func nanMin(a, b float64) float64 {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.NaN()
	}
	return fmin(a, b)
}

func nanMax(a, b float64) float64 {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.NaN()
	}
	return fmax(a, b)
}

func foldFloatStamp(op BinaryOp, a, b FloatStamp) Stamp {
	w := a.width
	if a.IsEmpty() || b.IsEmpty() {
		return FloatEmpty(w)
	}
	if x, ok := a.AsConstant(); ok {
		if y, ok := b.AsConstant(); ok {
			return FloatConstStamp(foldFloat(op, x, y))
		}
	}
	if !a.hasValues() || !b.hasValues() {
		// NaN operands propagate through every operation.
		return FloatNaN(w)
	}
	nonNaN := a.nonNaN && b.nonNaN
	switch op {
	case Add:
		return floatAddStamp(w, a.lower, a.upper, b.lower, b.upper, nonNaN)
	case Sub:
		return floatAddStamp(w, a.lower, a.upper, -b.upper, -b.lower, nonNaN)
	case Mul:
		if (a.containsZero() && b.canBeInf()) || (a.canBeInf() && b.containsZero()) {
			nonNaN = false
		}
		return floatCorners(w, nonNaN, a.lower*b.lower, a.lower*b.upper, a.upper*b.lower, a.upper*b.upper)
	case Div:
		if a.IsFinite() && b.IsFinite() && !b.containsZero() {
			return floatCorners(w, true, a.lower/b.lower, a.lower/b.upper, a.upper/b.lower, a.upper/b.upper)
		}
	case Min:
		return NewFloatStamp(w, fmin(a.lower, b.lower), fmin(a.upper, b.upper), nonNaN)
	case Max:
		return NewFloatStamp(w, fmax(a.lower, b.lower), fmax(a.upper, b.upper), nonNaN)
	}
	return FloatUnrestricted(w)
}

func (s FloatStamp) containsZero() bool {
	return s.hasValues() && s.lower <= 0 && s.upper >= 0
}

func (s FloatStamp) canBeInf() bool {
	return math.IsInf(s.lower, -1) || math.IsInf(s.upper, 1)
}

func floatAddStamp(w uint8, al, ah, bl, bh float64, nonNaN bool) Stamp {
	// Inf + -Inf is NaN.
	if (math.IsInf(ah, 1) && math.IsInf(bl, -1)) || (math.IsInf(al, -1) && math.IsInf(bh, 1)) {
		nonNaN = false
	}
	return floatCorners(w, nonNaN, al+bl, ah+bh)
}

// floatCorners returns the stamp spanning the given results, which are
// the extremes of a rounding-monotone operation. The sign of a zero
// result may differ between operand values, so ranges touching zero
// include both zeros.
func floatCorners(w uint8, nonNaN bool, corners ...float64) Stamp {
	lo, hi := corners[0], corners[0]
	for _, c := range corners {
		if math.IsNaN(c) {
			return FloatUnrestricted(w)
		}
		lo, hi = fmin(lo, c), fmax(hi, c)
	}
	if lo <= 0 && hi >= 0 {
		lo, hi = fmin(lo, math.Copysign(0, -1)), fmax(hi, 0)
	}
	return NewFloatStamp(w, lo, hi, nonNaN)
}

func foldFloatUnary(op UnaryOp, x Const) Const {
	f := x.Float64()
	switch op {
	case Neg:
		return Const{FloatKind, x.bits, x.raw ^ signBit(x.bits)}
	case Abs:
		return Const{FloatKind, x.bits, x.raw &^ signBit(x.bits)}
	case Sqrt:
		return FloatConst(x.bits, math.Sqrt(f))
	}
	panic(fmt.Sprintf("stamp: invalid float operation %v", op))
}

func signBit(bits uint8) uint64 {
	return 1 << (bits - 1)
}

func foldFloatUnaryStamp(op UnaryOp, a FloatStamp) Stamp {
	w := a.width
	if a.IsEmpty() {
		return a
	}
	if c, ok := a.AsConstant(); ok {
		return FloatConstStamp(foldFloatUnary(op, c))
	}
	if !a.hasValues() {
		return a
	}
	negZero := math.Copysign(0, -1)
	switch op {
	case Neg:
		return NewFloatStamp(w, -a.upper, -a.lower, a.nonNaN)
	case Abs:
		switch {
		case !math.Signbit(a.lower):
			return a
		case math.Signbit(a.upper):
			return NewFloatStamp(w, -a.upper, -a.lower, a.nonNaN)
		}
		return NewFloatStamp(w, 0, fmax(-a.lower, a.upper), a.nonNaN)
	case Sqrt:
		if !fless(a.lower, negZero) {
			return NewFloatStamp(w, math.Sqrt(a.lower), math.Sqrt(a.upper), a.nonNaN)
		}
		if fless(a.upper, negZero) {
			return FloatNaN(w)
		}
		// Negative values produce NaN.
		return NewFloatStamp(w, negZero, math.Sqrt(a.upper), false)
	}
	panic(fmt.Sprintf("stamp: invalid float operation %v", op))
}
