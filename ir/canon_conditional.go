package ir

import (
	"github.com/andrewarchi/seanode/ir/stamp"
)

func (g *Graph) canonConditional(c, t, f *Node) *Node {
	switch c.op {
	case OpLogicNegation:
		return g.Conditional(c.X(), f, t)
	case OpLogicConst:
		if c.aux.Value {
			return t
		}
		return f
	}
	if t == f {
		return t
	}
	// An arm that selects on the same condition again.
	if t.op == OpConditional {
		if r := Implies(c, false, t.X()); r.IsKnown() {
			if r == stamp.True {
				return g.Conditional(c, t.Y(), f)
			}
			return g.Conditional(c, t.Z(), f)
		}
	}
	if f.op == OpConditional {
		if r := Implies(c, true, f.X()); r.IsKnown() {
			if r == stamp.True {
				return g.Conditional(c, t, f.Y())
			}
			return g.Conditional(c, t, f.Z())
		}
	}
	if !t.isInt() || c.NumInputs() != 2 {
		return nil
	}
	a, b := c.X(), c.Y()
	switch c.op {
	case OpIntegerEquals:
		// (a == b) ? a : b and (a == b) ? b : a
		if t == a && f == b || t == b && f == a {
			return f
		}
	case OpIntegerLessThan, OpIntegerBelow:
		if g.opts.MinMax {
			minOp, maxOp := OpMin, OpMax
			if c.op == OpIntegerBelow {
				minOp, maxOp = OpUMin, OpUMax
			}
			switch {
			case t == a && f == b:
				return g.Binary(minOp, a, b)
			case t == b && f == a:
				return g.Binary(maxOp, a, b)
			}
		}
		// a < 0 ? -1 : 0 and a < 0 ? 1 : 0 materialize the sign bit.
		if c.op == OpIntegerLessThan && b.isConstValue(0) && a.Type() == t.Type() && f.isConstValue(0) {
			w := int64(a.bits())
			switch {
			case t.isConstValue(-1):
				return g.shift(OpShr, a, w-1)
			case t.isConstValue(1):
				return g.shift(OpUShr, a, w-1)
			}
		}
	}
	return nil
}
