package stamp

import (
	"fmt"
	"math"
)

// FloatStamp is the stamp of a 32- or 64-bit float. The non-NaN values
// lie within [lower, upper] ordered with -0.0 below +0.0; nonNaN
// excludes NaN. Bounds of a stamp without non-NaN values are
// [+Inf, -Inf]: with nonNaN set that stamp is empty, otherwise it holds
// only NaN.
type FloatStamp struct {
	width        uint8
	lower, upper float64
	nonNaN       bool
}

// NewFloatStamp returns the stamp of floats within [lower, upper],
// including NaN unless nonNaN is set. Bounds are rounded outward to the
// width.
func NewFloatStamp(width uint8, lower, upper float64, nonNaN bool) FloatStamp {
	checkFloatBits(width)
	if math.IsNaN(lower) || math.IsNaN(upper) {
		panic("stamp: NaN float bound")
	}
	if width == 32 {
		lower, upper = roundDown32(lower), roundUp32(upper)
	}
	if fless(upper, lower) {
		lower, upper = math.Inf(1), math.Inf(-1)
	}
	return FloatStamp{width, lower, upper, nonNaN}
}

// FloatUnrestricted returns the stamp of every float of the width.
func FloatUnrestricted(width uint8) FloatStamp {
	return NewFloatStamp(width, math.Inf(-1), math.Inf(1), false)
}

// FloatEmpty returns the stamp with no values of the width.
func FloatEmpty(width uint8) FloatStamp {
	return NewFloatStamp(width, math.Inf(1), math.Inf(-1), true)
}

// FloatNaN returns the stamp containing only NaN.
func FloatNaN(width uint8) FloatStamp {
	return NewFloatStamp(width, math.Inf(1), math.Inf(-1), false)
}

// FloatRange returns the stamp of non-NaN floats within [lower, upper].
func FloatRange(width uint8, lower, upper float64) FloatStamp {
	return NewFloatStamp(width, lower, upper, true)
}

// FloatConstStamp returns the stamp containing only the float constant
// c.
func FloatConstStamp(c Const) FloatStamp {
	c.check(FloatKind)
	f := c.Float64()
	if math.IsNaN(f) {
		return FloatNaN(c.bits)
	}
	return FloatStamp{c.bits, f, f, true}
}

func roundDown32(f float64) float64 {
	r := float64(float32(f))
	if r > f {
		r = float64(math.Nextafter32(float32(r), float32(math.Inf(-1))))
	}
	return r
}

func roundUp32(f float64) float64 {
	r := float64(float32(f))
	if r < f {
		r = float64(math.Nextafter32(float32(r), float32(math.Inf(1))))
	}
	return r
}

// fless orders floats with -0.0 below +0.0. Neither may be NaN.
func fless(a, b float64) bool {
	if a == b {
		return a == 0 && math.Signbit(a) && !math.Signbit(b)
	}
	return a < b
}

func fmin(a, b float64) float64 {
	if fless(b, a) {
		return b
	}
	return a
}

func fmax(a, b float64) float64 {
	if fless(a, b) {
		return b
	}
	return a
}

func fsame(a, b float64) bool {
	return math.Float64bits(a) == math.Float64bits(b)
}

// Lower returns the lower bound of the non-NaN values.
func (s FloatStamp) Lower() float64 { return s.lower }

// Upper returns the upper bound of the non-NaN values.
func (s FloatStamp) Upper() float64 { return s.upper }

// IsNonNaN reports whether NaN is excluded.
func (s FloatStamp) IsNonNaN() bool { return s.nonNaN }

// CanBeNaN reports whether NaN is a value.
func (s FloatStamp) CanBeNaN() bool { return !s.nonNaN }

// IsNaN reports whether NaN is the only value.
func (s FloatStamp) IsNaN() bool { return !s.nonNaN && !s.hasValues() }

// IsFinite reports whether no value is NaN or infinite.
func (s FloatStamp) IsFinite() bool {
	return s.nonNaN && !math.IsInf(s.lower, 0) && !math.IsInf(s.upper, 0)
}

func (s FloatStamp) hasValues() bool { return !fless(s.upper, s.lower) }

// Contains reports whether f is a value of s.
func (s FloatStamp) Contains(f float64) bool {
	if math.IsNaN(f) {
		return !s.nonNaN
	}
	return s.hasValues() && !fless(f, s.lower) && !fless(s.upper, f)
}

func (s FloatStamp) Kind() Kind  { return FloatKind }
func (s FloatStamp) Bits() uint8 { return s.width }

func (s FloatStamp) Empty() Stamp        { return FloatEmpty(s.width) }
func (s FloatStamp) Unrestricted() Stamp { return FloatUnrestricted(s.width) }

func (s FloatStamp) IsEmpty() bool { return s.nonNaN && !s.hasValues() }

func (s FloatStamp) IsUnrestricted() bool {
	return !s.nonNaN && math.IsInf(s.lower, -1) && math.IsInf(s.upper, 1)
}

func (s FloatStamp) AsConstant() (Const, bool) {
	if s.IsNaN() {
		return FloatConst(s.width, math.NaN()), true
	}
	if s.nonNaN && fsame(s.lower, s.upper) {
		return FloatConst(s.width, s.lower), true
	}
	return Const{}, false
}

func (s FloatStamp) Equals(other Stamp) bool {
	t, ok := other.(FloatStamp)
	return ok && s.width == t.width && s.nonNaN == t.nonNaN &&
		fsame(s.lower, t.lower) && fsame(s.upper, t.upper)
}

func (s FloatStamp) IsCompatible(other Stamp) bool {
	t, ok := other.(FloatStamp)
	return ok && s.width == t.width
}

func (s FloatStamp) other(o Stamp) FloatStamp {
	t, ok := o.(FloatStamp)
	if !ok || t.width != s.width {
		panic(incompatible(s, o))
	}
	return t
}

func (s FloatStamp) Meet(o Stamp) Stamp {
	t := s.other(o)
	lower, upper := s.lower, s.upper
	switch {
	case !s.hasValues():
		lower, upper = t.lower, t.upper
	case t.hasValues():
		lower, upper = fmin(s.lower, t.lower), fmax(s.upper, t.upper)
	}
	return NewFloatStamp(s.width, lower, upper, s.nonNaN && t.nonNaN)
}

func (s FloatStamp) Join(o Stamp) Stamp {
	t := s.other(o)
	return NewFloatStamp(s.width, fmax(s.lower, t.lower), fmin(s.upper, t.upper), s.nonNaN || t.nonNaN)
}

func (s FloatStamp) String() string {
	switch {
	case s.IsEmpty():
		return fmt.Sprintf("f%d empty", s.width)
	case s.IsNaN():
		return fmt.Sprintf("f%d NaN", s.width)
	case s.IsUnrestricted():
		return fmt.Sprintf("f%d", s.width)
	}
	str := fmt.Sprintf("f%d [%v, %v]", s.width, FloatConst(s.width, s.lower), FloatConst(s.width, s.upper))
	if !s.nonNaN {
		str += " NaN"
	}
	return str
}
