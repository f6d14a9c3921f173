package stamp

import (
	"fmt"
	"math/bits"
)

// Mask returns the low n bits set.
func Mask(n uint8) uint64 {
	if n == 0 {
		return 0
	}
	return ^uint64(0) >> (64 - uint(n))
}

// SignExtend sign-extends the low n bits of v.
func SignExtend(v uint64, n uint8) int64 {
	s := 64 - uint(n)
	return int64(v<<s) >> s
}

// ZeroExtend returns the low n bits of v.
func ZeroExtend(v int64, n uint8) uint64 {
	return uint64(v) & Mask(n)
}

// MinValue returns the smallest signed value of width n.
func MinValue(n uint8) int64 {
	return -1 << (uint(n) - 1)
}

// MaxValue returns the largest signed value of width n.
func MaxValue(n uint8) int64 {
	return int64(Mask(n - 1))
}

// IsPowerOf2 reports whether v is a positive power of two.
func IsPowerOf2(v int64) bool {
	return v > 0 && v&(v-1) == 0
}

// Log2 returns the floor of the base-2 logarithm of a positive v.
func Log2(v int64) int {
	return 63 - bits.LeadingZeros64(uint64(v))
}

// CompressBits gathers the bits of x selected by mask into the low bits
// of the result, in order.
func CompressBits(x, mask uint64) uint64 {
	var r uint64
	var k uint
	for m := mask; m != 0; m &= m - 1 {
		i := uint(bits.TrailingZeros64(m))
		r |= (x >> i & 1) << k
		k++
	}
	return r
}

// ExpandBits scatters the low bits of x into the positions selected by
// mask, in order.
func ExpandBits(x, mask uint64) uint64 {
	var r uint64
	var k uint
	for m := mask; m != 0; m &= m - 1 {
		i := uint(bits.TrailingZeros64(m))
		r |= (x >> k & 1) << i
		k++
	}
	return r
}

func checkIntBits(n uint8) {
	if n == 0 || n > 64 {
		panic(fmt.Sprintf("stamp: invalid integer width %d", n))
	}
}

func checkFloatBits(n uint8) {
	if n != 32 && n != 64 {
		panic(fmt.Sprintf("stamp: invalid float width %d", n))
	}
}
