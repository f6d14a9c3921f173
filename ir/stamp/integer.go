package stamp

import (
	"fmt"
	"math/bits"
	"strings"
)

// IntegerStamp is the stamp of an integer of a fixed width. It bounds
// the signed value to [lower, upper] and tracks known bits: down holds
// the bits set in every possible value and up the bits set in some
// possible value. Values are kept sign-extended to 64 bits and masks
// truncated to the width.
type IntegerStamp struct {
	width        uint8
	lower, upper int64
	down, up     uint64
}

// NewIntegerStamp returns the stamp of values within [lower, upper]
// whose bits agree with the down and up masks. Bounds and masks are
// tightened against each other; contradictory inputs produce the empty
// stamp.
func NewIntegerStamp(width uint8, lower, upper int64, down, up uint64) IntegerStamp {
	checkIntBits(width)
	mask := Mask(width)
	down &= mask
	up &= mask
	if min := MinValue(width); lower < min {
		lower = min
	}
	if max := MaxValue(width); upper > max {
		upper = max
	}
	for {
		if lower > upper || down&^up != 0 {
			return IntegerEmpty(width)
		}
		d, u := masksForRange(width, lower, upper)
		d |= down
		u &= up
		if d&^u != 0 {
			return IntegerEmpty(width)
		}
		l, h := lower, upper
		if m := minValueForMasks(width, d, u); m > l {
			l = m
		}
		if m := maxValueForMasks(width, d, u); m < h {
			h = m
		}
		if l == lower && h == upper && d == down && u == up {
			return IntegerStamp{width, lower, upper, down, up}
		}
		lower, upper, down, up = l, h, d, u
	}
}

// IntegerRange returns the stamp of values within [lower, upper].
func IntegerRange(width uint8, lower, upper int64) IntegerStamp {
	return NewIntegerStamp(width, lower, upper, 0, Mask(width))
}

// IntegerMasks returns the stamp of values agreeing with the masks.
func IntegerMasks(width uint8, down, up uint64) IntegerStamp {
	return NewIntegerStamp(width, MinValue(width), MaxValue(width), down, up)
}

// IntegerConst returns the stamp containing only v.
func IntegerConst(width uint8, v int64) IntegerStamp {
	return NewIntegerStamp(width, v, v, uint64(v), uint64(v))
}

// IntegerUnrestricted returns the stamp of every integer of the width.
func IntegerUnrestricted(width uint8) IntegerStamp {
	checkIntBits(width)
	return IntegerStamp{width, MinValue(width), MaxValue(width), 0, Mask(width)}
}

// IntegerEmpty returns the stamp with no values of the width.
func IntegerEmpty(width uint8) IntegerStamp {
	checkIntBits(width)
	return IntegerStamp{width, MaxValue(width), MinValue(width), Mask(width), 0}
}

// masksForRange returns the known bits shared by every value in
// [lower, upper]. When the bounds have the same sign, values in between
// share the common prefix of the bounds.
func masksForRange(width uint8, lower, upper int64) (down, up uint64) {
	mask := Mask(width)
	if (lower < 0) != (upper < 0) {
		return 0, mask
	}
	prefix := ^uint64(0)
	if diff := uint64(lower ^ upper); diff != 0 {
		prefix = ^(^uint64(0) >> bits.LeadingZeros64(diff))
	}
	return uint64(lower) & prefix & mask, (uint64(lower) | ^prefix) & mask
}

func minValueForMasks(width uint8, down, up uint64) int64 {
	sign := uint64(1) << (width - 1)
	if up&sign != 0 && down&sign == 0 {
		return SignExtend(down|sign, width)
	}
	return SignExtend(down, width)
}

func maxValueForMasks(width uint8, down, up uint64) int64 {
	sign := uint64(1) << (width - 1)
	if up&sign != 0 && down&sign == 0 {
		return int64(up &^ sign)
	}
	return SignExtend(up, width)
}

// Lower returns the signed lower bound.
func (s IntegerStamp) Lower() int64 { return s.lower }

// Upper returns the signed upper bound.
func (s IntegerStamp) Upper() int64 { return s.upper }

// DownMask returns the bits set in every value.
func (s IntegerStamp) DownMask() uint64 { return s.down }

// UpMask returns the bits that may be set in some value.
func (s IntegerStamp) UpMask() uint64 { return s.up }

func (s IntegerStamp) Kind() Kind  { return IntKind }
func (s IntegerStamp) Bits() uint8 { return s.width }

func (s IntegerStamp) Empty() Stamp        { return IntegerEmpty(s.width) }
func (s IntegerStamp) Unrestricted() Stamp { return IntegerUnrestricted(s.width) }

func (s IntegerStamp) IsEmpty() bool { return s.lower > s.upper }

func (s IntegerStamp) IsUnrestricted() bool {
	return s == IntegerUnrestricted(s.width)
}

func (s IntegerStamp) AsConstant() (Const, bool) {
	if s.lower == s.upper {
		return IntConst(s.width, s.lower), true
	}
	return Const{}, false
}

func (s IntegerStamp) Equals(other Stamp) bool {
	t, ok := other.(IntegerStamp)
	return ok && s == t
}

func (s IntegerStamp) IsCompatible(other Stamp) bool {
	t, ok := other.(IntegerStamp)
	return ok && s.width == t.width
}

func (s IntegerStamp) other(o Stamp) IntegerStamp {
	t, ok := o.(IntegerStamp)
	if !ok || t.width != s.width {
		panic(incompatible(s, o))
	}
	return t
}

func (s IntegerStamp) Meet(o Stamp) Stamp {
	t := s.other(o)
	if s.IsEmpty() {
		return t
	} else if t.IsEmpty() {
		return s
	}
	return NewIntegerStamp(s.width, min(s.lower, t.lower), max(s.upper, t.upper),
		s.down&t.down, s.up|t.up)
}

func (s IntegerStamp) Join(o Stamp) Stamp {
	t := s.other(o)
	return NewIntegerStamp(s.width, max(s.lower, t.lower), min(s.upper, t.upper),
		s.down|t.down, s.up&t.up)
}

// Contains reports whether v, sign-extended, is a value of s.
func (s IntegerStamp) Contains(v int64) bool {
	u := uint64(v) & Mask(s.width)
	return s.lower <= v && v <= s.upper && u&s.down == s.down && u&^s.up == 0
}

// ContainsZero reports whether 0 is a value of s.
func (s IntegerStamp) ContainsZero() bool { return s.Contains(0) }

// IsPositive reports whether every value is at least 0.
func (s IntegerStamp) IsPositive() bool { return s.lower >= 0 }

// IsStrictlyPositive reports whether every value is greater than 0.
func (s IntegerStamp) IsStrictlyPositive() bool { return s.lower > 0 }

// IsNegative reports whether every value is at most 0.
func (s IntegerStamp) IsNegative() bool { return s.upper <= 0 }

// IsStrictlyNegative reports whether every value is less than 0.
func (s IntegerStamp) IsStrictlyNegative() bool { return s.upper < 0 }

// CanBeNegative reports whether some value is less than 0.
func (s IntegerStamp) CanBeNegative() bool { return s.lower < 0 }

// SameSignBounds reports whether the bounds do not straddle zero, so
// that signed and unsigned order agree within the stamp.
func (s IntegerStamp) SameSignBounds() bool {
	return s.lower >= 0 || s.upper < 0
}

// UnsignedBounds returns bounds of the values read as unsigned.
func (s IntegerStamp) UnsignedBounds() (lo, hi uint64) {
	lo, hi = s.down, s.up
	if s.SameSignBounds() {
		mask := Mask(s.width)
		lo = max(lo, uint64(s.lower)&mask)
		hi = min(hi, uint64(s.upper)&mask)
	}
	return lo, hi
}

// IntegerUnsignedRange returns a stamp for the unsigned interval
// [lo, hi], which must already be truncated to the width.
func IntegerUnsignedRange(width uint8, lo, hi uint64) IntegerStamp {
	if lo > hi {
		return IntegerEmpty(width)
	}
	max := uint64(MaxValue(width))
	switch {
	case hi <= max:
		return IntegerRange(width, int64(lo), int64(hi))
	case lo > max:
		return IntegerRange(width, SignExtend(lo, width), SignExtend(hi, width))
	}
	d, u := unsignedRangeMasks(width, lo, hi)
	return IntegerMasks(width, d, u)
}

func unsignedRangeMasks(width uint8, lo, hi uint64) (down, up uint64) {
	prefix := ^uint64(0)
	if diff := lo ^ hi; diff != 0 {
		prefix = ^(^uint64(0) >> bits.LeadingZeros64(diff))
	}
	mask := Mask(width)
	return lo & prefix & mask, (lo | ^prefix) & mask
}

func (s IntegerStamp) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "i%d", s.width)
	switch {
	case s.IsEmpty():
		b.WriteString(" empty")
		return b.String()
	case s.IsUnrestricted():
		return b.String()
	case s.lower == s.upper:
		fmt.Fprintf(&b, " [%d]", s.lower)
		return b.String()
	}
	fmt.Fprintf(&b, " [%d, %d]", s.lower, s.upper)
	d, u := masksForRange(s.width, s.lower, s.upper)
	if d != s.down || u != s.up {
		fmt.Fprintf(&b, " {%#x, %#x}", s.down, s.up)
	}
	return b.String()
}
