// Package bitset implements a bit array for dense indexes that grows on
// demand.
package bitset // import "github.com/andrewarchi/seanode/internal/bitset"

import "math/bits"

const uintSize = 32 << (^uint(0) >> 32 & 1) // 32 or 64

// Bitset is a bit array for dense indexes. Indexes past the end read as
// clear.
type Bitset []uint

// New constructs a Bitset with room for n bits.
func New(n int) Bitset {
	return make(Bitset, (n+uintSize-1)/uintSize)
}

// Reset clears the bitset.
func (bs Bitset) Reset() {
	for i := range bs {
		bs[i] = 0
	}
}

// Set sets the bit at index i, growing the bitset if needed.
func (bs *Bitset) Set(i int) {
	w := i / uintSize
	if w >= len(*bs) {
		grown := make(Bitset, w+1, 2*(w+1))
		copy(grown, *bs)
		*bs = grown
	}
	(*bs)[w] |= 1 << (uint(i) % uintSize)
}

// Clear clears bit at index i.
func (bs Bitset) Clear(i int) {
	if w := i / uintSize; w < len(bs) {
		bs[w] &^= 1 << (uint(i) % uintSize)
	}
}

// Test tests bit at index i.
func (bs Bitset) Test(i int) bool {
	w := i / uintSize
	return w < len(bs) && bs[w]&(1<<(uint(i)%uintSize)) != 0
}

// Count returns the number of set bits.
func (bs Bitset) Count() int {
	n := 0
	for _, w := range bs {
		n += bits.OnesCount(w)
	}
	return n
}
