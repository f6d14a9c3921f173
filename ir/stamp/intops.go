package stamp

import (
	"fmt"
	"math/big"
	"math/bits"

	"github.com/andrewarchi/seanode/internal/bigint"
	"github.com/holiman/uint256"
)

func isIntNeutral(op BinaryOp, c Const) bool {
	switch op {
	case Add, Sub, Or, Xor, UMax:
		return c.Int64() == 0
	case Mul, Div, UDiv:
		return c.Int64() == 1
	case And, UMin, Compress, Expand:
		return c.IsAllOnes()
	case Min:
		return c.Int64() == MaxValue(c.bits)
	case Max:
		return c.Int64() == MinValue(c.bits)
	}
	return false
}

func foldInt(op BinaryOp, x, y Const) (Const, bool) {
	w := x.bits
	a, b := x.Int64(), y.Int64()
	ua, ub := x.Uint64(), y.Uint64()
	switch op {
	case Add:
		return IntConst(w, a+b), true
	case Sub:
		return IntConst(w, a-b), true
	case Mul:
		return IntConst(w, a*b), true
	case MulHigh:
		return IntConst(w, mulHigh(a, b, w)), true
	case UMulHigh:
		return IntConst(w, int64(umulHigh(ua, ub, w))), true
	case Div:
		if b == 0 {
			return Const{}, false
		}
		// MinInt64 / -1 wraps to MinInt64 in Go; narrower widths wrap
		// in IntConst.
		return IntConst(w, a/b), true
	case Rem:
		if b == 0 {
			return Const{}, false
		}
		return IntConst(w, a%b), true
	case UDiv:
		if ub == 0 {
			return Const{}, false
		}
		return IntConst(w, int64(ua/ub)), true
	case URem:
		if ub == 0 {
			return Const{}, false
		}
		return IntConst(w, int64(ua%ub)), true
	case And:
		return IntConst(w, a&b), true
	case Or:
		return IntConst(w, a|b), true
	case Xor:
		return IntConst(w, a^b), true
	case Min:
		return IntConst(w, min(a, b)), true
	case Max:
		return IntConst(w, max(a, b)), true
	case UMin:
		return IntConst(w, int64(min(ua, ub))), true
	case UMax:
		return IntConst(w, int64(max(ua, ub))), true
	case Compress:
		return IntConst(w, int64(CompressBits(ua, ub))), true
	case Expand:
		return IntConst(w, int64(ExpandBits(ua, ub))), true
	}
	panic(fmt.Sprintf("stamp: invalid integer operation %v", op))
}

// mulHigh returns the high w bits of the signed 2w-bit product of a and
// b, both sign-extended from w bits.
func mulHigh(a, b int64, w uint8) int64 {
	p := new(uint256.Int).Mul(sext256(a), sext256(b))
	p.SRsh(p, uint(w))
	return int64(p.Uint64())
}

// umulHigh returns the high w bits of the unsigned 2w-bit product of a
// and b.
func umulHigh(a, b uint64, w uint8) uint64 {
	p := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	p.Rsh(p, uint(w))
	return p.Uint64()
}

func sext256(v int64) *uint256.Int {
	if v >= 0 {
		return uint256.NewInt(uint64(v))
	}
	// uint64(-v) is 1<<63 for MinInt64, which is its magnitude.
	x := uint256.NewInt(uint64(-v))
	return x.Neg(x)
}

func foldIntStamp(op BinaryOp, a, b IntegerStamp) Stamp {
	w := a.width
	if a.IsEmpty() || b.IsEmpty() {
		return IntegerEmpty(w)
	}
	if x, ok := a.AsConstant(); ok {
		if y, ok := b.AsConstant(); ok {
			if r, ok := foldInt(op, x, y); ok {
				return IntegerConst(w, r.Int64())
			}
			// The operation always traps.
			return IntegerEmpty(w)
		}
	}
	switch op {
	case Add:
		return addStamp(a, b)
	case Sub:
		return subStamp(a, b)
	case Mul:
		return mulStamp(a, b)
	case MulHigh:
		return mulHighStamp(a, b)
	case UMulHigh:
		return umulHighStamp(a, b)
	case Div:
		return divStamp(a, b)
	case Rem:
		return remStamp(a, b)
	case UDiv:
		return udivStamp(a, b)
	case URem:
		return uremStamp(a, b)
	case And:
		s := IntegerMasks(w, a.down&b.down, a.up&b.up)
		// x & y lies within [0, x] for non-negative x.
		if a.IsPositive() {
			s = s.Join(IntegerRange(w, 0, a.upper)).(IntegerStamp)
		}
		if b.IsPositive() {
			s = s.Join(IntegerRange(w, 0, b.upper)).(IntegerStamp)
		}
		return s
	case Or:
		s := IntegerMasks(w, a.down|b.down, a.up|b.up)
		// x | y lies within [x, -1] for negative x.
		if a.IsStrictlyNegative() {
			s = s.Join(IntegerRange(w, a.lower, -1)).(IntegerStamp)
		}
		if b.IsStrictlyNegative() {
			s = s.Join(IntegerRange(w, b.lower, -1)).(IntegerStamp)
		}
		return s
	case Xor:
		variable := (a.down ^ a.up) | (b.down ^ b.up)
		known := a.down ^ b.down
		return IntegerMasks(w, known&^variable, known|variable)
	case Min:
		return NewIntegerStamp(w, min(a.lower, b.lower), min(a.upper, b.upper), a.down&b.down, a.up|b.up)
	case Max:
		return NewIntegerStamp(w, max(a.lower, b.lower), max(a.upper, b.upper), a.down&b.down, a.up|b.up)
	case UMin, UMax:
		alo, ahi := a.UnsignedBounds()
		blo, bhi := b.UnsignedBounds()
		var r IntegerStamp
		if op == UMin {
			r = IntegerUnsignedRange(w, min(alo, blo), min(ahi, bhi))
		} else {
			r = IntegerUnsignedRange(w, max(alo, blo), max(ahi, bhi))
		}
		return r.Join(IntegerMasks(w, a.down&b.down, a.up|b.up))
	case Compress:
		if m, ok := b.AsConstant(); ok {
			return IntegerMasks(w, CompressBits(a.down, m.Uint64()), CompressBits(a.up, m.Uint64()))
		}
		if n := bits.OnesCount64(b.up); n < int(w) {
			return IntegerMasks(w, 0, Mask(uint8(n)))
		}
		return IntegerUnrestricted(w)
	case Expand:
		if m, ok := b.AsConstant(); ok {
			return IntegerMasks(w, ExpandBits(a.down, m.Uint64()), ExpandBits(a.up, m.Uint64()))
		}
		return IntegerMasks(w, 0, b.up)
	}
	panic(fmt.Sprintf("stamp: invalid integer operation %v", op))
}

// rangeStamp wraps the exact interval [lo, hi] into the width and
// intersects it with the masks.
func rangeStamp(w uint8, lo, hi *big.Int, down, up uint64) IntegerStamp {
	if l, h, ok := bigint.WrapRange(lo, hi, w); ok {
		return NewIntegerStamp(w, l, h, down, up)
	}
	return IntegerMasks(w, down, up)
}

// addMasks returns the known bits of x + y + carry. A result bit is
// known when the bits of both operands and the incoming carry are known.
func addMasks(w uint8, xd, xu, yd, yu, carry uint64) (down, up uint64) {
	lo := xd + yd + carry
	hi := xu + yu + carry
	carryLo := lo ^ xd ^ yd
	carryHi := hi ^ xu ^ yu
	variable := (xd ^ xu) | (yd ^ yu) | (carryLo ^ carryHi)
	mask := Mask(w)
	return lo &^ variable & mask, (lo | variable) & mask
}

func addStamp(a, b IntegerStamp) IntegerStamp {
	w := a.width
	down, up := addMasks(w, a.down, a.up, b.down, b.up, 0)
	return rangeStamp(w, bigint.Add(a.lower, b.lower), bigint.Add(a.upper, b.upper), down, up)
}

func subStamp(a, b IntegerStamp) IntegerStamp {
	w := a.width
	mask := Mask(w)
	// x - y == x + ^y + 1
	down, up := addMasks(w, a.down, a.up, ^b.up&mask, ^b.down&mask, 1)
	return rangeStamp(w, bigint.Sub(a.lower, b.upper), bigint.Sub(a.upper, b.lower), down, up)
}

func mulStamp(a, b IntegerStamp) IntegerStamp {
	w := a.width
	if a.up == 0 || b.up == 0 {
		return IntegerConst(w, 0)
	}
	// Every product has at least as many trailing zeros as the
	// operands have together.
	up := Mask(w)
	if tz := bits.TrailingZeros64(a.up) + bits.TrailingZeros64(b.up); tz < int(w) {
		up &^= Mask(uint8(tz))
	} else {
		return IntegerConst(w, 0)
	}
	lo, hi := bigint.MinMax(
		bigint.Mul(a.lower, b.lower), bigint.Mul(a.lower, b.upper),
		bigint.Mul(a.upper, b.lower), bigint.Mul(a.upper, b.upper))
	return rangeStamp(w, lo, hi, 0, up)
}

func mulHighStamp(a, b IntegerStamp) IntegerStamp {
	w := a.width
	// The high half is the floor of the product over 2^w, which is
	// monotone in the product.
	lo, hi := bigint.MinMax(
		bigint.Mul(a.lower, b.lower), bigint.Mul(a.lower, b.upper),
		bigint.Mul(a.upper, b.lower), bigint.Mul(a.upper, b.upper))
	return rangeStamp(w, new(big.Int).Rsh(lo, uint(w)), new(big.Int).Rsh(hi, uint(w)), 0, Mask(w))
}

func umulHighStamp(a, b IntegerStamp) IntegerStamp {
	w := a.width
	alo, ahi := a.UnsignedBounds()
	blo, bhi := b.UnsignedBounds()
	return IntegerUnsignedRange(w, umulHigh(alo, blo, w), umulHigh(ahi, bhi, w))
}

// divStamp folds signed division. Zero divisors trap without producing
// a value, so the divisor range is split around zero and each part is
// folded from its corners: truncated division is monotone in each
// operand while the divisor keeps its sign.
func divStamp(a, b IntegerStamp) IntegerStamp {
	w := a.width
	r := IntegerEmpty(w)
	if b.lower < 0 {
		r = r.Meet(divCorners(a, b.lower, min(b.upper, -1))).(IntegerStamp)
	}
	if b.upper > 0 {
		r = r.Meet(divCorners(a, max(b.lower, 1), b.upper)).(IntegerStamp)
	}
	return r
}

func divCorners(a IntegerStamp, lo, hi int64) IntegerStamp {
	l, h := bigint.MinMax(
		bigint.Quo(a.lower, lo), bigint.Quo(a.lower, hi),
		bigint.Quo(a.upper, lo), bigint.Quo(a.upper, hi))
	return rangeStamp(a.width, l, h, 0, Mask(a.width))
}

func remStamp(a, b IntegerStamp) IntegerStamp {
	w := a.width
	// The result has the sign of the dividend and a magnitude below
	// that of the divisor.
	lower, upper := min(a.lower, 0), max(a.upper, 0)
	var magnitude int64
	if b.lower == MinValue(w) {
		magnitude = MaxValue(w)
	} else {
		magnitude = max(abs(b.lower), abs(b.upper)) - 1
	}
	if magnitude < 0 {
		// The divisor is always zero.
		return IntegerEmpty(w)
	}
	return IntegerRange(w, max(lower, -magnitude), min(upper, magnitude))
}

func udivStamp(a, b IntegerStamp) IntegerStamp {
	w := a.width
	alo, ahi := a.UnsignedBounds()
	blo, bhi := b.UnsignedBounds()
	if bhi == 0 {
		return IntegerEmpty(w)
	}
	blo = max(blo, 1)
	return IntegerUnsignedRange(w, alo/bhi, ahi/blo)
}

func uremStamp(a, b IntegerStamp) IntegerStamp {
	w := a.width
	_, ahi := a.UnsignedBounds()
	_, bhi := b.UnsignedBounds()
	if bhi == 0 {
		return IntegerEmpty(w)
	}
	return IntegerUnsignedRange(w, 0, min(ahi, bhi-1))
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func foldIntUnary(op UnaryOp, x Const) Const {
	w := x.bits
	switch op {
	case Neg:
		return IntConst(w, -x.Int64())
	case Not:
		return IntConst(w, ^x.Int64())
	case Abs:
		return IntConst(w, abs(x.Int64()))
	}
	panic(fmt.Sprintf("stamp: invalid integer operation %v", op))
}

func foldIntUnaryStamp(op UnaryOp, a IntegerStamp) Stamp {
	w := a.width
	if a.IsEmpty() {
		return a
	}
	if c, ok := a.AsConstant(); ok {
		return IntegerConst(w, foldIntUnary(op, c).Int64())
	}
	mask := Mask(w)
	switch op {
	case Neg:
		return rangeStamp(w, bigint.Neg(a.upper), bigint.Neg(a.lower), 0, mask)
	case Not:
		return NewIntegerStamp(w, ^a.upper, ^a.lower, ^a.up&mask, ^a.down&mask)
	case Abs:
		switch {
		case a.IsPositive():
			return a
		case a.IsNegative():
			return rangeStamp(w, bigint.Neg(a.upper), bigint.Neg(a.lower), 0, mask)
		}
		return rangeStamp(w, bigint.Int(0), bigint.Max(bigint.Neg(a.lower), bigint.Int(a.upper)), 0, mask)
	}
	panic(fmt.Sprintf("stamp: invalid integer operation %v", op))
}

func foldShiftStamp(op ShiftOp, a, s IntegerStamp) Stamp {
	w := a.width
	if a.IsEmpty() || s.IsEmpty() {
		return IntegerEmpty(w)
	}
	mask := shiftMask(w)
	if s.lower == s.upper {
		return shiftByConst(op, a, s.lower&mask)
	}
	// A narrow amount range is folded amount by amount.
	if s.upper-s.lower >= 0 && s.upper-s.lower <= mask {
		r := IntegerEmpty(w)
		for i := s.lower; i <= s.upper; i++ {
			if s.Contains(i) {
				r = r.Meet(shiftByConst(op, a, i&mask)).(IntegerStamp)
			}
		}
		return r
	}
	switch op {
	case Shr:
		// Arithmetic shifts move values toward 0 or -1.
		switch {
		case a.IsPositive():
			return IntegerRange(w, 0, a.upper)
		case a.IsStrictlyNegative():
			return IntegerRange(w, a.lower, -1)
		}
		return IntegerRange(w, a.lower, a.upper)
	case UShr:
		if a.IsPositive() {
			return IntegerRange(w, 0, a.upper)
		}
	}
	return IntegerUnrestricted(w)
}

func shiftByConst(op ShiftOp, a IntegerStamp, s int64) IntegerStamp {
	w := a.width
	if s == 0 {
		return a
	}
	mask := Mask(w)
	switch op {
	case Shl:
		return rangeStamp(w, bigint.Lsh(a.lower, uint(s)), bigint.Lsh(a.upper, uint(s)),
			a.down<<uint(s)&mask, a.up<<uint(s)&mask)
	case Shr:
		down := uint64(SignExtend(a.down, w)>>uint(s)) & mask
		up := uint64(SignExtend(a.up, w)>>uint(s)) & mask
		return NewIntegerStamp(w, a.lower>>uint(s), a.upper>>uint(s), down, up)
	case UShr:
		down, up := a.down>>uint(s), a.up>>uint(s)
		if a.SameSignBounds() {
			lo, hi := uint64(a.lower)&mask, uint64(a.upper)&mask
			return NewIntegerStamp(w, int64(lo>>uint(s)), int64(hi>>uint(s)), down, up)
		}
		return IntegerMasks(w, down, up)
	}
	panic(fmt.Sprintf("stamp: invalid shift %v", op))
}

// AddCanOverflow reports whether x + y can wrap for some values of the
// stamps.
func AddCanOverflow(x, y IntegerStamp) bool {
	return !bigint.FitsSigned(bigint.Add(x.lower, y.lower), x.width) ||
		!bigint.FitsSigned(bigint.Add(x.upper, y.upper), x.width)
}

// SubCanOverflow reports whether x - y can wrap for some values of the
// stamps.
func SubCanOverflow(x, y IntegerStamp) bool {
	return !bigint.FitsSigned(bigint.Sub(x.lower, y.upper), x.width) ||
		!bigint.FitsSigned(bigint.Sub(x.upper, y.lower), x.width)
}

// MulCanOverflow reports whether x * y can wrap for some values of the
// stamps.
func MulCanOverflow(x, y IntegerStamp) bool {
	lo, hi := bigint.MinMax(
		bigint.Mul(x.lower, y.lower), bigint.Mul(x.lower, y.upper),
		bigint.Mul(x.upper, y.lower), bigint.Mul(x.upper, y.upper))
	return !bigint.FitsSigned(lo, x.width) || !bigint.FitsSigned(hi, x.width)
}

// NegateCanOverflow reports whether -x can wrap for some value of x.
func NegateCanOverflow(x IntegerStamp) bool {
	return x.Contains(MinValue(x.width))
}

// ExactStamp returns the stamp of an overflow-checked operation: values
// whose exact result does not fit the width are never produced, so the
// exact result range is clamped instead of wrapped.
func ExactStamp(op BinaryOp, x, y IntegerStamp) IntegerStamp {
	w := x.width
	if x.IsEmpty() || y.IsEmpty() {
		return IntegerEmpty(w)
	}
	var lo, hi *big.Int
	switch op {
	case Add:
		lo, hi = bigint.Add(x.lower, y.lower), bigint.Add(x.upper, y.upper)
	case Sub:
		lo, hi = bigint.Sub(x.lower, y.upper), bigint.Sub(x.upper, y.lower)
	case Mul:
		lo, hi = bigint.MinMax(
			bigint.Mul(x.lower, y.lower), bigint.Mul(x.lower, y.upper),
			bigint.Mul(x.upper, y.lower), bigint.Mul(x.upper, y.upper))
	default:
		panic(fmt.Sprintf("stamp: no exact %v", op))
	}
	minV, maxV := bigint.MinSigned(w), bigint.MaxSigned(w)
	if lo.Cmp(maxV) > 0 || hi.Cmp(minV) < 0 {
		// Every result overflows.
		return IntegerEmpty(w)
	}
	l, _ := bigint.ToSigned(bigint.Max(lo, minV), w)
	h, _ := bigint.ToSigned(bigint.Min(hi, maxV), w)
	return IntegerRange(w, l, h)
}
