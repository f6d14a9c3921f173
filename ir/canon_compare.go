package ir

import (
	"github.com/andrewarchi/seanode/internal/bigint"
	"github.com/andrewarchi/seanode/ir/stamp"
)

// foldCompare folds a comparison of constants, of a node with itself,
// or of stamps that decide it.
func (g *Graph) foldCompare(cond stamp.CanonicalCondition, x, y *Node, unorderedIsTrue bool) *Node {
	if cx, ok := x.AsConst(); ok {
		if cy, ok := y.AsConst(); ok {
			return g.LogicConst(cond.Fold(cx, cy, unorderedIsTrue))
		}
	}
	if r := cond.FoldStamps(x.stamp, y.stamp, unorderedIsTrue); r.IsKnown() {
		return g.LogicConst(r == stamp.True)
	}
	return nil
}

func (g *Graph) canonIntegerEquals(self, x, y *Node) *Node {
	if x == y {
		return g.LogicConst(true)
	}
	if r := g.foldCompare(stamp.EQ, x, y, false); r != nil {
		return r
	}
	if shouldSwap(x, y) {
		return g.swap(self, OpIntegerEquals, Aux{}, x, y)
	}
	if c, ok := y.AsConst(); ok {
		return g.equalsConst(x, y, c)
	}
	if r := g.sameExtension(OpIntegerEquals, x, y); r != nil {
		return r
	}
	if r := g.equalsSharedTerm(x, y); r != nil {
		return r
	}
	return g.equalsSharedTerm(y, x)
}

// equalsConst simplifies x == c by moving invertible operations with
// constant operands from x to c.
func (g *Graph) equalsConst(x, y *Node, c stamp.Const) *Node {
	t := stamp.IntegerOps
	fold := func(op stamp.BinaryOp, a, b stamp.Const) *Node {
		r, _ := t.FoldConstant(op, a, b)
		return g.Const(r)
	}
	switch x.op {
	case OpAdd:
		if k, ok := x.Y().AsConst(); ok {
			return g.IntegerEquals(x.X(), fold(stamp.Sub, c, k))
		}
	case OpSub:
		if k, ok := x.X().AsConst(); ok {
			return g.IntegerEquals(x.Y(), fold(stamp.Sub, k, c))
		}
		if c.Int64() == 0 {
			return g.IntegerEquals(x.X(), x.Y())
		}
	case OpXor:
		if k, ok := x.Y().AsConst(); ok {
			return g.IntegerEquals(x.X(), fold(stamp.Xor, c, k))
		}
		if c.Int64() == 0 {
			return g.IntegerEquals(x.X(), x.Y())
		}
	case OpNeg:
		return g.IntegerEquals(x.X(), g.Const(t.FoldUnary(stamp.Neg, c)))
	case OpNot:
		return g.IntegerEquals(x.X(), g.Const(t.FoldUnary(stamp.Not, c)))
	case OpAnd:
		if c.Int64() == 0 {
			return g.IntegerTest(x.X(), x.Y())
		}
	case OpConditional:
		kt, okT := x.Y().AsConst()
		kf, okF := x.Z().AsConst()
		if okT && okF && kt != kf {
			switch {
			case kt == c:
				return x.X()
			case kf == c:
				return g.LogicNegation(x.X())
			}
			return g.LogicConst(false)
		}
	case OpConvert:
		ext := x.aux.Convert
		if ext == stamp.SignExt || ext == stamp.ZeroExt {
			a := x.X()
			narrow := stamp.FoldConvert(stamp.Narrow, c, a.Type())
			if stamp.FoldConvert(ext, narrow, c.Type()) != c {
				return g.LogicConst(false)
			}
			return g.IntegerEquals(a, g.Const(narrow))
		}
	}
	return nil
}

// sameExtension compares the sources of two values extended the same
// way from the same type.
func (g *Graph) sameExtension(op Op, x, y *Node) *Node {
	if x.op != OpConvert || y.op != OpConvert || x.aux.Convert != y.aux.Convert {
		return nil
	}
	a, b := x.X(), y.X()
	if a.Type() != b.Type() {
		return nil
	}
	switch x.aux.Convert {
	case stamp.SignExt:
		return g.Binary(op, a, b)
	case stamp.ZeroExt:
		if op == OpIntegerLessThan {
			return g.IntegerBelow(a, b)
		}
		return g.Binary(op, a, b)
	}
	return nil
}

// equalsSharedTerm cancels a term shared by both sides of x == y.
func (g *Graph) equalsSharedTerm(x, y *Node) *Node {
	switch x.op {
	case OpAdd, OpXor:
		a, b := x.X(), x.Y()
		if y.op == x.op {
			c, d := y.X(), y.Y()
			switch {
			case a == c:
				return g.IntegerEquals(b, d)
			case a == d:
				return g.IntegerEquals(b, c)
			case b == c:
				return g.IntegerEquals(a, d)
			case b == d:
				return g.IntegerEquals(a, c)
			}
		}
		// (a + b) == a
		if y == a {
			return g.IntegerEquals(b, g.intConst(b, 0))
		}
		if y == b {
			return g.IntegerEquals(a, g.intConst(a, 0))
		}
	case OpSub:
		a, b := x.X(), x.Y()
		if y.op == OpSub {
			switch {
			case a == y.X():
				return g.IntegerEquals(b, y.Y())
			case b == y.Y():
				return g.IntegerEquals(a, y.X())
			}
		}
		// (a - b) == a
		if y == a {
			return g.IntegerEquals(b, g.intConst(b, 0))
		}
	}
	return nil
}

func (g *Graph) canonIntegerLessThan(x, y *Node) *Node {
	if x == y {
		return g.LogicConst(false)
	}
	if r := g.foldCompare(stamp.LT, x, y, false); r != nil {
		return r
	}
	w := x.bits()
	if c, ok := x.AsConst(); ok {
		// c < y is !(y < c+1). The fold above rules out c == MAX.
		return g.LogicNegation(g.IntegerLessThan(y, g.intConst(y, c.Int64()+1)))
	}
	if c, ok := y.AsConst(); ok {
		switch c.Int64() {
		case stamp.MaxValue(w):
			return g.LogicNegation(g.IntegerEquals(x, y))
		case stamp.MinValue(w) + 1:
			return g.IntegerEquals(x, g.intConst(x, stamp.MinValue(w)))
		}
		// a + k < c is a < c - k when neither side wraps.
		if x.op == OpAdd {
			if k, ok := x.Y().AsConst(); ok && !stamp.AddCanOverflow(x.X().intStamp(), x.Y().intStamp()) {
				if d, ok := bigint.ToSigned(bigint.Sub(c.Int64(), k.Int64()), w); ok {
					return g.IntegerLessThan(x.X(), g.intConst(x, d))
				}
			}
		}
	}
	if r := g.sameExtension(OpIntegerLessThan, x, y); r != nil {
		return r
	}
	// (a + b) < (a + c) is b < c when neither addition wraps.
	if x.op == OpAdd && y.op == OpAdd &&
		!stamp.AddCanOverflow(x.X().intStamp(), x.Y().intStamp()) &&
		!stamp.AddCanOverflow(y.X().intStamp(), y.Y().intStamp()) {
		a, b, c, d := x.X(), x.Y(), y.X(), y.Y()
		switch {
		case a == c:
			return g.IntegerLessThan(b, d)
		case a == d:
			return g.IntegerLessThan(b, c)
		case b == c:
			return g.IntegerLessThan(a, d)
		case b == d:
			return g.IntegerLessThan(a, c)
		}
	}
	return nil
}

func (g *Graph) canonIntegerBelow(x, y *Node) *Node {
	if x == y {
		return g.LogicConst(false)
	}
	if r := g.foldCompare(stamp.BT, x, y, false); r != nil {
		return r
	}
	// Signed and unsigned order agree on non-negative values.
	if x.intStamp().IsPositive() && y.intStamp().IsPositive() {
		return g.IntegerLessThan(x, y)
	}
	if c, ok := x.AsConst(); ok {
		// c <u y is !(y <u c+1). The fold above rules out c == MAXU.
		return g.LogicNegation(g.IntegerBelow(y, g.intConst(y, c.Int64()+1)))
	}
	if c, ok := y.AsConst(); ok {
		switch {
		case c.Int64() == 1:
			return g.IntegerEquals(x, g.intConst(x, 0))
		case c.IsAllOnes():
			return g.LogicNegation(g.IntegerEquals(x, y))
		}
	}
	if x.op == OpConvert && y.op == OpConvert && x.aux.Convert == y.aux.Convert &&
		(x.aux.Convert == stamp.SignExt || x.aux.Convert == stamp.ZeroExt) &&
		x.X().Type() == y.X().Type() {
		return g.IntegerBelow(x.X(), y.X())
	}
	return nil
}

func (g *Graph) canonIntegerTest(self, x, y *Node) *Node {
	if cx, ok := x.AsConst(); ok {
		if cy, ok := y.AsConst(); ok {
			return g.LogicConst(cx.Int64()&cy.Int64() == 0)
		}
	}
	xs, ys := x.intStamp(), y.intStamp()
	if xs.UpMask()&ys.UpMask() == 0 {
		return g.LogicConst(true)
	}
	if xs.DownMask()&ys.DownMask() != 0 {
		return g.LogicConst(false)
	}
	if x == y {
		return g.IntegerEquals(x, g.intConst(x, 0))
	}
	if shouldSwap(x, y) {
		return g.swap(self, OpIntegerTest, Aux{}, x, y)
	}
	return nil
}

func (g *Graph) canonFloatCompare(self *Node, op Op, x, y *Node, unorderedIsTrue bool) *Node {
	cond := op.info().cond
	if x == y {
		xs := x.stamp.(stamp.FloatStamp)
		switch cond {
		case stamp.EQ:
			if unorderedIsTrue || xs.IsNonNaN() {
				return g.LogicConst(true)
			}
		case stamp.LT:
			if !unorderedIsTrue || xs.IsNonNaN() {
				return g.LogicConst(false)
			}
		}
	}
	if r := g.foldCompare(cond, x, y, unorderedIsTrue); r != nil {
		return r
	}
	if cond == stamp.EQ && shouldSwap(x, y) {
		return g.swap(self, op, Aux{UnorderedIsTrue: unorderedIsTrue}, x, y)
	}
	return nil
}

func (g *Graph) canonIsNull(x *Node) *Node {
	s := x.stamp.(stamp.ObjectStamp)
	switch {
	case s.IsEmpty():
		return nil
	case s.AlwaysNull():
		return g.LogicConst(true)
	case s.NonNull():
		return g.LogicConst(false)
	}
	return nil
}

func (g *Graph) canonObjectEquals(self, x, y *Node) *Node {
	if x == y {
		return g.LogicConst(true)
	}
	if r := g.foldCompare(stamp.EQ, x, y, false); r != nil {
		return r
	}
	if x.IsConstant() && !y.IsConstant() {
		return g.swap(self, OpObjectEquals, Aux{}, x, y)
	}
	if y.IsConstant() {
		return g.IsNull(x)
	}
	return nil
}
