package ir

import (
	"math"
	"math/bits"

	"github.com/andrewarchi/seanode/ir/stamp"
)

func (g *Graph) canonAdd(self, x, y *Node) *Node {
	if r := g.foldBinary(OpAdd, x, y); r != nil {
		return r
	}
	if shouldSwap(x, y) {
		return g.swap(self, OpAdd, Aux{}, x, y)
	}
	if c, ok := y.AsConst(); ok && stamp.ForStamp(x.stamp).IsNeutral(stamp.Add, c) {
		return x
	}
	// x + -y and -x + y
	if y.op == OpNeg {
		return g.Sub(x, y.X())
	}
	if x.op == OpNeg {
		return g.Sub(y, x.X())
	}
	if x.isInt() {
		if x.op == OpSub && x.Y() == y {
			return x.X() // (a - b) + b
		}
		if y.op == OpSub && y.Y() == x {
			return y.X() // b + (a - b)
		}
		if x.op == OpNot && x.X() == y || y.op == OpNot && y.X() == x {
			return g.intConst(x, -1)
		}
	}
	return g.reassociate(self, OpAdd, x, y)
}

func (g *Graph) canonSub(self, x, y *Node) *Node {
	if r := g.foldBinary(OpSub, x, y); r != nil {
		return r
	}
	t := stamp.ForStamp(x.stamp)
	if x == y {
		if c, ok := t.ZeroElement(stamp.Sub, x.stamp); ok {
			return g.Const(c)
		}
	}
	if x.isInt() {
		if x.op == OpAdd {
			if x.Y() == y {
				return x.X() // (a + b) - b
			}
			if x.X() == y {
				return x.Y() // (a + b) - a
			}
		}
		if x.op == OpSub && x.X() == y {
			return g.Neg(x.Y()) // (a - b) - a
		}
		if y.op == OpAdd {
			if y.X() == x {
				return g.Neg(y.Y()) // a - (a + b)
			}
			if y.Y() == x {
				return g.Neg(y.X()) // b - (a + b)
			}
		}
		if y.op == OpSub && y.X() == x {
			return y.Y() // a - (a - b)
		}
	}
	if c, ok := y.AsConst(); ok {
		if t.IsNeutral(stamp.Sub, c) {
			return x
		}
		if x.isInt() {
			return g.Add(x, g.Const(stamp.IntegerOps.FoldUnary(stamp.Neg, c)))
		}
	}
	if c, ok := x.AsConst(); ok {
		// 0 - y and -0.0 - y
		if x.isInt() && c.Int64() == 0 ||
			!x.isInt() && c.Float64() == 0 && math.Signbit(c.Float64()) {
			return g.Neg(y)
		}
	}
	if y.op == OpNeg {
		return g.Add(x, y.X())
	}
	return g.reassociate(self, OpSub, x, y)
}

func (g *Graph) canonNeg(x *Node) *Node {
	if r := g.foldUnary(OpNeg, x); r != nil {
		return r
	}
	if x.op == OpNeg {
		return x.X()
	}
	if x.isInt() {
		if x.op == OpSub {
			return g.Sub(x.Y(), x.X())
		}
		// -(x >> w-1) is the sign bit.
		if x.op == OpShr {
			if c, ok := x.Y().AsConst(); ok && c.Int64()&int64(x.bits()-1) == int64(x.bits()-1) {
				return g.UShr(x.X(), x.Y())
			}
		}
	}
	return nil
}

func (g *Graph) canonAbs(x *Node) *Node {
	if r := g.foldUnary(OpAbs, x); r != nil {
		return r
	}
	switch x.op {
	case OpNeg:
		return g.Abs(x.X())
	case OpAbs:
		return x
	}
	switch s := x.stamp.(type) {
	case stamp.IntegerStamp:
		if s.IsPositive() {
			return x
		}
		if s.IsNegative() {
			return g.Neg(x)
		}
	case stamp.FloatStamp:
		if s.IsNonNaN() && !s.IsEmpty() && !math.Signbit(s.Lower()) {
			return x
		}
	}
	return nil
}

func (g *Graph) canonMul(self, x, y *Node) *Node {
	if r := g.foldBinary(OpMul, x, y); r != nil {
		return r
	}
	if shouldSwap(x, y) {
		return g.swap(self, OpMul, Aux{}, x, y)
	}
	if c, ok := y.AsConst(); ok {
		if stamp.ForStamp(x.stamp).IsNeutral(stamp.Mul, c) {
			return x
		}
		if !x.isInt() {
			if c.Float64() == -1 {
				return g.Neg(x)
			}
			return nil
		}
		switch i := c.Int64(); i {
		case 0:
			return y
		case -1:
			return g.Neg(x)
		default:
			if g.opts.StrengthReduce {
				if r := g.mulByConst(x, i); r != nil {
					return r
				}
			}
		}
	}
	return g.reassociate(self, OpMul, x, y)
}

// mulByConst rewrites multiplication by constants with at most two set
// bits or within one of a power of two into shifts.
func (g *Graph) mulByConst(x *Node, i int64) *Node {
	w := x.bits()
	if i < 0 {
		if stamp.IsPowerOf2(-i) {
			return g.Neg(g.shift(OpShl, x, int64(stamp.Log2(-i))))
		}
		return nil
	}
	switch {
	case stamp.IsPowerOf2(i):
		return g.shift(OpShl, x, int64(stamp.Log2(i)))
	case stamp.IsPowerOf2(i - 1):
		return g.Add(g.shift(OpShl, x, int64(stamp.Log2(i-1))), x)
	case stamp.IsPowerOf2(i + 1):
		return g.Sub(g.shift(OpShl, x, int64(stamp.Log2(i+1))), x)
	}
	high := int64(1) << stamp.Log2(i)
	if bits.OnesCount64(uint64(i)) == 2 {
		low := i - high
		return g.Add(g.shift(OpShl, x, int64(stamp.Log2(high))), g.shift(OpShl, x, int64(stamp.Log2(low))))
	}
	// Round up to a power of two and subtract the difference.
	s := stamp.Log2(high) + 1
	sub := uint64(1)<<uint(s) - uint64(i)
	if s < int(w) && sub&(sub-1) == 0 {
		return g.Sub(g.shift(OpShl, x, int64(s)), g.shift(OpShl, x, int64(bits.TrailingZeros64(sub))))
	}
	return nil
}

func (g *Graph) canonMulHigh(self *Node, op Op, x, y *Node) *Node {
	if r := g.foldBinary(op, x, y); r != nil {
		return r
	}
	if shouldSwap(x, y) {
		return g.swap(self, op, Aux{}, x, y)
	}
	if c, ok := y.AsConst(); ok {
		switch c.Int64() {
		case 0:
			return y
		case 1:
			if op == OpUMulHigh {
				return g.intConst(x, 0)
			}
			return g.shift(OpShr, x, int64(x.bits()-1))
		}
	}
	return nil
}

func (g *Graph) canonMinMax(self *Node, op Op, x, y *Node) *Node {
	if r := g.foldBinary(op, x, y); r != nil {
		return r
	}
	if x == y {
		return x
	}
	if shouldSwap(x, y) {
		return g.swap(self, op, Aux{}, x, y)
	}
	bop := op.info().binary
	if c, ok := y.AsConst(); ok && stamp.ForStamp(x.stamp).IsNeutral(bop, c) {
		return x
	}
	// The stamps may order the operands.
	switch xs := x.stamp.(type) {
	case stamp.IntegerStamp:
		ys := y.intStamp()
		var xLow, yLow bool
		switch op {
		case OpMin, OpMax:
			xLow, yLow = xs.Upper() <= ys.Lower(), ys.Upper() <= xs.Lower()
		case OpUMin, OpUMax:
			xlo, xhi := xs.UnsignedBounds()
			ylo, yhi := ys.UnsignedBounds()
			xLow, yLow = xhi <= ylo, yhi <= xlo
		}
		isMin := op == OpMin || op == OpUMin
		switch {
		case xLow && isMin, yLow && !isMin:
			return x
		case yLow && isMin, xLow && !isMin:
			return y
		}
	case stamp.FloatStamp:
		ys := y.stamp.(stamp.FloatStamp)
		if xs.IsNonNaN() && ys.IsNonNaN() && !xs.IsEmpty() && !ys.IsEmpty() {
			xLow, yLow := xs.Upper() < ys.Lower(), ys.Upper() < xs.Lower()
			switch {
			case xLow && op == OpMin, yLow && op == OpMax:
				return x
			case yLow && op == OpMin, xLow && op == OpMax:
				return y
			}
		}
	}
	return g.reassociate(self, op, x, y)
}

func (g *Graph) canonFloatDivRem(op Op, x, y *Node) *Node {
	if r := g.foldBinary(op, x, y); r != nil {
		return r
	}
	if c, ok := y.AsConst(); ok && stamp.FloatOps.IsNeutral(op.info().binary, c) {
		return x
	}
	return nil
}

// canonExact folds overflow-checked arithmetic and lowers it to plain
// arithmetic once the stamps rule out overflow.
func (g *Graph) canonExact(self *Node, op Op, x, y *Node) *Node {
	bop := op.info().binary
	if cx, ok := x.AsConst(); ok {
		if cy, ok := y.AsConst(); ok {
			s := stamp.ExactStamp(bop, x.intStamp(), y.intStamp())
			if s.IsEmpty() {
				return nil // always overflows
			}
			r, _ := stamp.IntegerOps.FoldConstant(bop, cx, cy)
			return g.Const(r)
		}
	}
	if op.IsCommutative() && shouldSwap(x, y) {
		return g.swap(self, op, Aux{}, x, y)
	}
	xs, ys := x.intStamp(), y.intStamp()
	switch op {
	case OpAddExact:
		if !stamp.AddCanOverflow(xs, ys) {
			return g.Add(x, y)
		}
	case OpSubExact:
		if x == y {
			return g.intConst(x, 0)
		}
		if !stamp.SubCanOverflow(xs, ys) {
			return g.Sub(x, y)
		}
	case OpMulExact:
		if !stamp.MulCanOverflow(xs, ys) {
			return g.Mul(x, y)
		}
	}
	return nil
}
