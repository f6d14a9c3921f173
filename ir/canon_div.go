package ir

import (
	"math"
	"math/bits"

	"github.com/andrewarchi/seanode/ir/stamp"
)

// Division and remainder by a constant zero are never folded, so that
// the trap is kept.

func (g *Graph) canonSignedDiv(x, y *Node) *Node {
	if r := g.foldBinary(OpSignedDiv, x, y); r != nil {
		return r
	}
	// (a - a % b) / b
	if x.op == OpSub && x.Y().op == OpSignedRem && x.Y().X() == x.X() && x.Y().Y() == y {
		return g.SignedDiv(x.X(), y)
	}
	cy, ok := y.AsConst()
	if !ok {
		return nil
	}
	c := cy.Int64()
	switch c {
	case 0:
		return nil
	case 1:
		return x
	case -1:
		return g.Neg(x) // MIN / -1 wraps like -MIN
	}
	if !g.opts.StrengthReduce || c == math.MinInt64 {
		return nil
	}
	abs := c
	if c < 0 {
		abs = -c
	}
	if !stamp.IsPowerOf2(abs) {
		return nil
	}
	w := x.bits()
	log := stamp.Log2(abs)
	dividend := x
	// Negative dividends round toward zero: add abs-1 before shifting
	// unless the low bits are known to be zero.
	if xs := x.intStamp(); xs.CanBeNegative() && xs.UpMask()&uint64(abs-1) != 0 {
		sign := g.shift(OpShr, x, int64(w-1))
		round := g.shift(OpUShr, sign, int64(w)-int64(log))
		dividend = g.Add(x, round)
	}
	q := g.shift(OpShr, dividend, int64(log))
	if c < 0 {
		return g.Neg(q)
	}
	return q
}

func (g *Graph) canonSignedRem(self, x, y *Node) *Node {
	if r := g.foldBinary(OpSignedRem, x, y); r != nil {
		return r
	}
	cy, ok := y.AsConst()
	if !ok {
		return nil
	}
	c := cy.Int64()
	w := x.bits()
	switch {
	case c == 0:
		return nil
	case c == 1 || c == -1:
		return g.intConst(x, 0)
	case c < 0 && c != stamp.MinValue(w):
		// The sign of the remainder follows the dividend.
		return g.SignedRem(x, g.intConst(x, -c))
	}
	if !g.opts.StrengthReduce || !stamp.IsPowerOf2(c) {
		return nil
	}
	low := g.intConst(x, c-1)
	xs := x.intStamp()
	if xs.IsPositive() || self != nil && onlyComparedToZero(self) {
		return g.And(x, low)
	}
	if xs.IsNegative() {
		return g.Neg(g.And(g.Neg(x), low))
	}
	return nil
}

// onlyComparedToZero reports whether every usage of n tests it for
// equality with zero, where the remainder and the masked value agree.
func onlyComparedToZero(n *Node) bool {
	if len(n.uses) == 0 {
		return false
	}
	for _, u := range n.uses {
		if u.op != OpIntegerEquals {
			return false
		}
		other := u.X()
		if other == n {
			other = u.Y()
		}
		if !other.isConstValue(0) {
			return false
		}
	}
	return true
}

func (g *Graph) canonUnsignedDiv(x, y *Node) *Node {
	if r := g.foldBinary(OpUnsignedDiv, x, y); r != nil {
		return r
	}
	cy, ok := y.AsConst()
	if !ok {
		return nil
	}
	switch u := cy.Uint64(); {
	case u == 0:
		return nil
	case u == 1:
		return x
	case u&(u-1) == 0:
		return g.shift(OpUShr, x, int64(bits.TrailingZeros64(u)))
	}
	return nil
}

func (g *Graph) canonUnsignedRem(x, y *Node) *Node {
	if r := g.foldBinary(OpUnsignedRem, x, y); r != nil {
		return r
	}
	cy, ok := y.AsConst()
	if !ok {
		return nil
	}
	switch u := cy.Uint64(); {
	case u == 0:
		return nil
	case u == 1:
		return g.intConst(x, 0)
	case u&(u-1) == 0:
		return g.And(x, g.intConst(x, int64(u-1)))
	}
	return nil
}
