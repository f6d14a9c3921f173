package stamp

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Const is a primitive constant. Integers are stored sign-extended from
// their width and floats as IEEE-754 bit patterns, so -0.0 and +0.0 are
// distinct constants. The only object constant is null.
type Const struct {
	kind Kind
	bits uint8
	raw  uint64
}

// IntConst returns the integer constant v truncated to the given width.
func IntConst(bits uint8, v int64) Const {
	checkIntBits(bits)
	return Const{IntKind, bits, uint64(SignExtend(uint64(v), bits))}
}

// BoolConst returns 1 or 0 as an integer constant of the given width.
func BoolConst(bits uint8, b bool) Const {
	if b {
		return IntConst(bits, 1)
	}
	return IntConst(bits, 0)
}

// Float32Const returns a 32-bit float constant.
func Float32Const(f float32) Const {
	return Const{FloatKind, 32, uint64(math.Float32bits(f))}
}

// Float64Const returns a 64-bit float constant.
func Float64Const(f float64) Const {
	return Const{FloatKind, 64, math.Float64bits(f)}
}

// FloatConst returns f rounded to a float constant of the given width.
func FloatConst(bits uint8, f float64) Const {
	checkFloatBits(bits)
	if bits == 32 {
		return Float32Const(float32(f))
	}
	return Float64Const(f)
}

// NullConst returns the null object constant.
func NullConst() Const {
	return Const{kind: ObjectKind}
}

// ZeroConst returns the default value of a type: integer 0, +0.0, or
// null.
func ZeroConst(t Type) Const {
	switch t.Kind {
	case IntKind:
		return IntConst(t.Bits, 0)
	case FloatKind:
		return FloatConst(t.Bits, 0)
	case ObjectKind:
		return NullConst()
	}
	panic(fmt.Sprintf("stamp: no constant of type %v", t))
}

// Kind returns the kind of c.
func (c Const) Kind() Kind { return c.kind }

// Bits returns the width of c.
func (c Const) Bits() uint8 { return c.bits }

// Type returns the type of c.
func (c Const) Type() Type { return Type{c.kind, c.bits} }

// Raw returns the bit pattern of c, truncated to its width.
func (c Const) Raw() uint64 { return c.raw & Mask(c.bits) }

// Int64 returns the signed value of an integer constant.
func (c Const) Int64() int64 {
	c.check(IntKind)
	return int64(c.raw)
}

// Uint64 returns the unsigned value of an integer constant.
func (c Const) Uint64() uint64 {
	c.check(IntKind)
	return c.raw & Mask(c.bits)
}

// Float64 returns the value of a float constant, widened to float64.
func (c Const) Float64() float64 {
	c.check(FloatKind)
	if c.bits == 32 {
		return float64(math.Float32frombits(uint32(c.raw)))
	}
	return math.Float64frombits(c.raw)
}

// IsNaN reports whether c is a float NaN.
func (c Const) IsNaN() bool {
	return c.kind == FloatKind && math.IsNaN(c.Float64())
}

// IsNull reports whether c is the null constant.
func (c Const) IsNull() bool {
	return c.kind == ObjectKind
}

// IsDefault reports whether c is the default value of its type: integer
// 0, +0.0, or null.
func (c Const) IsDefault() bool {
	return c.kind != VoidKind && c.raw == 0
}

// IsAllOnes reports whether c is an integer with every bit set.
func (c Const) IsAllOnes() bool {
	return c.kind == IntKind && c.Uint64() == Mask(c.bits)
}

func (c Const) check(k Kind) {
	if c.kind != k {
		panic(fmt.Sprintf("stamp: %v constant %v used as %v", c.kind, c, k))
	}
}

func (c Const) String() string {
	switch c.kind {
	case IntKind:
		return strconv.FormatInt(int64(c.raw), 10)
	case FloatKind:
		f := c.Float64()
		if f == 0 && math.Signbit(f) {
			return "-0.0"
		}
		s := strconv.FormatFloat(f, 'g', -1, int(c.bits))
		if f == math.Trunc(f) && !math.IsInf(f, 0) && !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	case ObjectKind:
		return "null"
	}
	return "void"
}
