package ir

import (
	"math/bits"

	"github.com/andrewarchi/seanode/ir/stamp"
)

func (g *Graph) canonNot(x *Node) *Node {
	if r := g.foldUnary(OpNot, x); r != nil {
		return r
	}
	if x.op == OpNot {
		return x.X()
	}
	return nil
}

func (g *Graph) canonAnd(self, x, y *Node) *Node {
	if r := g.foldBinary(OpAnd, x, y); r != nil {
		return r
	}
	if x == y {
		return x
	}
	if shouldSwap(x, y) {
		return g.swap(self, OpAnd, Aux{}, x, y)
	}
	mask := stamp.Mask(x.bits())
	xs, ys := x.intStamp(), y.intStamp()
	if xs.UpMask()&ys.UpMask() == 0 {
		return g.intConst(x, 0)
	}
	// Every bit that may be set in one operand is set in the other.
	if xs.UpMask()&^ys.DownMask()&mask == 0 {
		return x
	}
	if ys.UpMask()&^xs.DownMask()&mask == 0 {
		return y
	}
	if c, ok := y.AsConst(); ok {
		// sext(a) & (2^n - 1) for an n-bit a
		if x.op == OpConvert && x.aux.Convert == stamp.SignExt && c.Uint64() == stamp.Mask(x.X().bits()) {
			return g.Convert(stamp.ZeroExt, x.X(), x.aux.To)
		}
	}
	if x.op == OpNot && y.op == OpNot {
		return g.Not(g.Or(x.X(), y.X()))
	}
	if x.op == OpNot && x.X() == y || y.op == OpNot && y.X() == x {
		return g.intConst(x, 0)
	}
	return g.reassociate(self, OpAnd, x, y)
}

func (g *Graph) canonOr(self, x, y *Node) *Node {
	if r := g.foldBinary(OpOr, x, y); r != nil {
		return r
	}
	if x == y {
		return x
	}
	if shouldSwap(x, y) {
		return g.swap(self, OpOr, Aux{}, x, y)
	}
	mask := stamp.Mask(x.bits())
	xs, ys := x.intStamp(), y.intStamp()
	// Every bit that may be set in one operand is already set in the
	// other.
	if ys.UpMask()&^xs.DownMask()&mask == 0 {
		return x
	}
	if xs.UpMask()&^ys.DownMask()&mask == 0 {
		return y
	}
	if x.op == OpNot && y.op == OpNot {
		return g.Not(g.And(x.X(), y.X()))
	}
	if x.op == OpNot && x.X() == y || y.op == OpNot && y.X() == x {
		return g.intConst(x, -1)
	}
	return g.reassociate(self, OpOr, x, y)
}

func (g *Graph) canonXor(self, x, y *Node) *Node {
	if r := g.foldBinary(OpXor, x, y); r != nil {
		return r
	}
	if x == y {
		return g.intConst(x, 0)
	}
	if shouldSwap(x, y) {
		return g.swap(self, OpXor, Aux{}, x, y)
	}
	if c, ok := y.AsConst(); ok {
		if c.Int64() == 0 {
			return x
		}
		if c.IsAllOnes() {
			return g.Not(x)
		}
	}
	if x.op == OpNot && y.op == OpNot {
		return g.Xor(x.X(), y.X())
	}
	if x.op == OpNot && x.X() == y || y.op == OpNot && y.X() == x {
		return g.intConst(x, -1)
	}
	return g.reassociate(self, OpXor, x, y)
}

// canonShift simplifies shifts by constant amounts. Amounts are masked by
// the width minus one, and a constant amount is kept in masked form.
func (g *Graph) canonShift(op Op, x, y *Node) *Node {
	c, ok := y.AsConst()
	if !ok {
		return nil
	}
	sop := op.info().shift
	if cx, ok := x.AsConst(); ok {
		return g.Const(stamp.IntegerOps.FoldShift(sop, cx, c.Int64()))
	}
	mask := stamp.IntegerOps.ShiftAmountMask(x.stamp)
	amount := c.Int64() & mask
	if amount == 0 {
		return x
	}
	if c.Int64() != amount || c.Bits() != x.bits() {
		return g.shift(op, x, amount)
	}
	w := x.bits()
	inner, innerOK := int64(0), false
	if x.op.isShift() {
		if ic, ok := x.Y().AsConst(); ok {
			inner, innerOK = ic.Int64()&mask, true
		}
	}
	switch op {
	case OpShl:
		if innerOK && x.op == OpShl {
			if amount+inner > mask {
				return g.intConst(x, 0)
			}
			return g.shift(OpShl, x.X(), amount+inner)
		}
		// Shifting right then left by the same amount clears the low bits.
		if innerOK && inner == amount && (x.op == OpShr || x.op == OpUShr) {
			return g.And(x.X(), g.intConst(x, -1<<uint(amount)))
		}
	case OpShr:
		if x.intStamp().IsPositive() {
			return g.UShr(x, y)
		}
		if innerOK && x.op == OpShr {
			return g.shift(OpShr, x.X(), min(amount+inner, mask))
		}
	case OpUShr:
		if innerOK && x.op == OpUShr {
			if amount+inner > mask {
				return g.intConst(x, 0)
			}
			return g.shift(OpUShr, x.X(), amount+inner)
		}
		if innerOK && inner == amount && x.op == OpShl {
			return g.And(x.X(), g.intConst(x, int64(stamp.Mask(w)>>uint(amount))))
		}
	}
	return nil
}

func (g *Graph) canonCompress(x, m *Node) *Node {
	if r := g.foldBinary(OpCompress, x, m); r != nil {
		return r
	}
	if c, ok := m.AsConst(); ok {
		switch u := c.Uint64(); {
		case u == 0:
			return m
		case c.IsAllOnes():
			return x
		case u&(u-1) == 0:
			// A single selected bit moves to bit 0.
			return g.And(g.shift(OpUShr, x, int64(bits.TrailingZeros64(u))), g.intConst(x, 1))
		}
	}
	// compress(expand(a, m), m) keeps the low popcount(m) bits of a.
	if x.op == OpExpand && x.Y() == m {
		return g.And(x.X(), g.Compress(m, m))
	}
	return nil
}

func (g *Graph) canonExpand(x, m *Node) *Node {
	if r := g.foldBinary(OpExpand, x, m); r != nil {
		return r
	}
	if c, ok := m.AsConst(); ok {
		switch u := c.Uint64(); {
		case u == 0:
			return m
		case c.IsAllOnes():
			return x
		case u&(u-1) == 0:
			return g.shift(OpShl, g.And(x, g.intConst(x, 1)), int64(bits.TrailingZeros64(u)))
		}
	}
	if x.op == OpCompress && x.Y() == m {
		return g.And(x.X(), m)
	}
	return nil
}
