// Package bigint performs exact arithmetic on fixed-width integers with
// arbitrary precision intermediates, so that callers can detect when a
// result leaves the range of its width.
package bigint // import "github.com/andrewarchi/seanode/internal/bigint"

import "math/big"

// Int returns x as a *big.Int.
func Int(x int64) *big.Int { return big.NewInt(x) }

// Uint returns x as a *big.Int.
func Uint(x uint64) *big.Int { return new(big.Int).SetUint64(x) }

// Add returns the exact sum x + y.
func Add(x, y int64) *big.Int {
	return new(big.Int).Add(big.NewInt(x), big.NewInt(y))
}

// Sub returns the exact difference x - y.
func Sub(x, y int64) *big.Int {
	return new(big.Int).Sub(big.NewInt(x), big.NewInt(y))
}

// Mul returns the exact product x * y.
func Mul(x, y int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(x), big.NewInt(y))
}

// UMul returns the exact product of x and y as unsigned integers.
func UMul(x, y uint64) *big.Int {
	return new(big.Int).Mul(Uint(x), Uint(y))
}

// Neg returns the exact negation -x.
func Neg(x int64) *big.Int {
	return new(big.Int).Neg(big.NewInt(x))
}

// Quo returns the exact quotient x / y truncated toward zero. y must
// not be zero.
func Quo(x, y int64) *big.Int {
	return new(big.Int).Quo(big.NewInt(x), big.NewInt(y))
}

// Lsh returns the exact value x << s.
func Lsh(x int64, s uint) *big.Int {
	return new(big.Int).Lsh(big.NewInt(x), s)
}

// MinMax returns the smallest and largest of xs.
func MinMax(xs ...*big.Int) (min, max *big.Int) {
	min, max = xs[0], xs[0]
	for _, x := range xs[1:] {
		if x.Cmp(min) < 0 {
			min = x
		}
		if x.Cmp(max) > 0 {
			max = x
		}
	}
	return min, max
}

// Min returns the smaller of x and y.
func Min(x, y *big.Int) *big.Int {
	if x.Cmp(y) <= 0 {
		return x
	}
	return y
}

// Max returns the larger of x and y.
func Max(x, y *big.Int) *big.Int {
	if x.Cmp(y) >= 0 {
		return x
	}
	return y
}

// FitsSigned reports whether x can be contained within a signed integer
// of the given width.
func FitsSigned(x *big.Int, width uint8) bool {
	_, ok := ToSigned(x, width)
	return ok
}
