package bigint

import "math/big"

var one = big.NewInt(1)

// MinSigned returns the smallest signed integer of the given width.
func MinSigned(width uint8) *big.Int {
	return new(big.Int).Neg(new(big.Int).Lsh(one, uint(width)-1))
}

// MaxSigned returns the largest signed integer of the given width.
func MaxSigned(width uint8) *big.Int {
	x := new(big.Int).Lsh(one, uint(width)-1)
	return x.Sub(x, one)
}

// MaxUnsigned returns the largest unsigned integer of the given width.
func MaxUnsigned(width uint8) *big.Int {
	x := new(big.Int).Lsh(one, uint(width))
	return x.Sub(x, one)
}

// ToSigned converts x to a signed integer of the given width,
// sign-extended to int64, and returns whether x can be contained within
// that width. When it cannot, the wrapped value is returned.
func ToSigned(x *big.Int, width uint8) (int64, bool) {
	ok := x.Cmp(MinSigned(width)) >= 0 && x.Cmp(MaxSigned(width)) <= 0
	return Wrap(x, width), ok
}

// ToUnsigned converts x to an unsigned integer of the given width and
// returns whether x can be contained within that width.
func ToUnsigned(x *big.Int, width uint8) (uint64, bool) {
	ok := x.Sign() >= 0 && x.Cmp(MaxUnsigned(width)) <= 0
	return uint64(Wrap(x, width)) & (^uint64(0) >> (64 - uint(width))), ok
}

// Wrap truncates x to the low width bits of its two's complement
// representation and sign-extends the result.
func Wrap(x *big.Int, width uint8) int64 {
	m := new(big.Int).Lsh(one, uint(width))
	r := new(big.Int).Mod(x, m)
	if r.Cmp(MaxSigned(width)) > 0 {
		r.Sub(r, m)
	}
	return r.Int64()
}

// WrapRange wraps the exact interval [lo, hi] into the given width. It
// returns false when the wrapped values do not form a single interval,
// either because the interval spans at least 2^width values or because
// it crosses a wrap boundary.
func WrapRange(lo, hi *big.Int, width uint8) (int64, int64, bool) {
	span := new(big.Int).Sub(hi, lo)
	if span.Sign() < 0 {
		panic("bigint: inverted range")
	}
	if span.Cmp(MaxUnsigned(width)) >= 0 {
		return 0, 0, false
	}
	l, h := Wrap(lo, width), Wrap(hi, width)
	if l > h {
		return 0, 0, false
	}
	return l, h, true
}
