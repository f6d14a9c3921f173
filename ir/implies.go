package ir

import (
	"github.com/andrewarchi/seanode/ir/stamp"
)

// Implies reports what is known about the condition b whenever the
// condition a holds, or whenever it fails if aNegated is set. The
// result is one-directional: True means a' proves b, False means a'
// proves !b, and Unknown claims nothing.
func Implies(a *Node, aNegated bool, b *Node) stamp.TriState {
	if a == b {
		return stamp.TriStateOf(!aNegated)
	}
	if a.op == OpLogicNegation {
		return Implies(a.X(), !aNegated, b)
	}
	if b.op == OpLogicNegation {
		return Implies(a, aNegated, b.X()).Negate()
	}
	if b.op == OpLogicConst {
		return stamp.TriStateOf(b.aux.Value)
	}
	if a.op == OpLogicOr && aNegated {
		// !(x' || y') holds both !x' and !y'.
		if r := Implies(a.X(), !a.aux.XNegated, b); r.IsKnown() {
			return r
		}
		return Implies(a.Y(), !a.aux.YNegated, b)
	}
	if r := impliesSameOperands(a, aNegated, b); r.IsKnown() {
		return r
	}
	return impliesByStamp(a, aNegated, b)
}

// impliesSameOperands relates two integer comparisons of the same pair
// of operands.
func impliesSameOperands(a *Node, aNegated bool, b *Node) stamp.TriState {
	if !a.op.isIntegerCompare() || !b.op.isIntegerCompare() {
		return stamp.Unknown
	}
	x, y := a.X(), a.Y()
	same := b.X() == x && b.Y() == y
	mirrored := b.X() == y && b.Y() == x
	if !same && !mirrored {
		return stamp.Unknown
	}
	if aNegated {
		return stamp.Unknown
	}
	switch a.op {
	case OpIntegerEquals:
		// x == y refutes every strict order between them.
		if b.op != OpIntegerEquals {
			return stamp.False
		}
		return stamp.True
	case OpIntegerLessThan, OpIntegerBelow:
		switch {
		case b.op == OpIntegerEquals:
			return stamp.False
		case b.op == a.op && same:
			return stamp.True
		case b.op == a.op:
			return stamp.False
		}
	}
	return stamp.Unknown
}

// impliesByStamp narrows the operands of b to the values allowed by a'
// and folds b over the narrowed stamps.
func impliesByStamp(a *Node, aNegated bool, b *Node) stamp.TriState {
	var cond stamp.CanonicalCondition
	var unordered bool
	switch b.op {
	case OpIntegerEquals, OpObjectEquals:
		cond = stamp.EQ
	case OpIntegerLessThan:
		cond = stamp.LT
	case OpIntegerBelow:
		cond = stamp.BT
	case OpFloatEquals, OpFloatLessThan:
		cond, unordered = b.op.info().cond, b.aux.UnorderedIsTrue
	case OpIsNull:
		s := restrictStamp(a, aNegated, b.X())
		if s.IsEmpty() {
			return stamp.Unknown
		}
		os := s.(stamp.ObjectStamp)
		switch {
		case os.AlwaysNull():
			return stamp.True
		case os.NonNull():
			return stamp.False
		}
		return stamp.Unknown
	case OpIntegerTest:
		xs, ok1 := restrictStamp(a, aNegated, b.X()).(stamp.IntegerStamp)
		ys, ok2 := restrictStamp(a, aNegated, b.Y()).(stamp.IntegerStamp)
		if !ok1 || !ok2 || xs.IsEmpty() || ys.IsEmpty() {
			return stamp.Unknown
		}
		switch {
		case xs.UpMask()&ys.UpMask() == 0:
			return stamp.True
		case xs.DownMask()&ys.DownMask() != 0:
			return stamp.False
		}
		return stamp.Unknown
	default:
		return stamp.Unknown
	}
	xs := restrictStamp(a, aNegated, b.X())
	ys := restrictStamp(a, aNegated, b.Y())
	if xs.Equals(b.X().stamp) && ys.Equals(b.Y().stamp) {
		// Nothing learned; folding the plain stamps is canonicalization's
		// job.
		return stamp.Unknown
	}
	return cond.FoldStamps(xs, ys, unordered)
}

// restrictStamp returns the stamp of v in the executions where the
// condition c holds, or fails if negated is set. It returns the stamp of
// v when c says nothing about v, and an empty stamp when c' can never
// hold.
func restrictStamp(c *Node, negated bool, v *Node) stamp.Stamp {
	s := v.stamp
	switch c.op {
	case OpLogicNegation:
		return restrictStamp(c.X(), !negated, v)
	case OpLogicOr:
		xs := restrictStamp(c.X(), c.aux.XNegated != negated, v)
		ys := restrictStamp(c.Y(), c.aux.YNegated != negated, v)
		if negated {
			// !x' && !y'
			return xs.Join(ys)
		}
		return xs.Meet(ys)
	case OpIsNull:
		if c.X() != v {
			return s
		}
		if negated {
			return s.Join(stamp.ObjectNonNull())
		}
		return s.Join(stamp.ObjectNull())
	case OpObjectEquals:
		other, ok := operandOther(c, v)
		if !ok || negated {
			return s
		}
		return s.Join(other.stamp)
	case OpIntegerEquals, OpIntegerLessThan, OpIntegerBelow:
		return restrictInteger(c, negated, v)
	case OpIntegerTest:
		other, ok := operandOther(c, v)
		if !ok || negated {
			return s
		}
		k, ok := other.AsConst()
		if !ok {
			return s
		}
		w := v.bits()
		return s.Join(stamp.IntegerMasks(w, 0, ^k.Uint64()&stamp.Mask(w)))
	}
	return s
}

// operandOther returns the operand of the binary condition c besides v.
func operandOther(c *Node, v *Node) (*Node, bool) {
	switch {
	case c.X() == v:
		return c.Y(), true
	case c.Y() == v:
		return c.X(), true
	}
	return nil, false
}

func restrictInteger(c *Node, negated bool, v *Node) stamp.Stamp {
	x, y := c.X(), c.Y()
	if x != v && y != v || x == y {
		return v.stamp
	}
	s := v.intStamp()
	vIsX := x == v
	other := y
	if !vIsX {
		other = x
	}
	os := other.intStamp()
	if os.IsEmpty() {
		return s
	}
	w := s.Bits()
	min, max := stamp.MinValue(w), stamp.MaxValue(w)
	umax := stamp.Mask(w)
	var r stamp.IntegerStamp
	switch c.op {
	case OpIntegerEquals:
		if !negated {
			return s.Join(os)
		}
		k, ok := other.AsConst()
		if !ok {
			return s
		}
		switch k.Int64() {
		case s.Lower():
			if k.Int64() == max {
				return s.Empty()
			}
			r = stamp.IntegerRange(w, k.Int64()+1, max)
		case s.Upper():
			if k.Int64() == min {
				return s.Empty()
			}
			r = stamp.IntegerRange(w, min, k.Int64()-1)
		default:
			return s
		}
	case OpIntegerLessThan:
		switch {
		case !negated && vIsX: // v < other
			if os.Upper() == min {
				return s.Empty()
			}
			r = stamp.IntegerRange(w, min, os.Upper()-1)
		case !negated: // other < v
			if os.Lower() == max {
				return s.Empty()
			}
			r = stamp.IntegerRange(w, os.Lower()+1, max)
		case vIsX: // v >= other
			r = stamp.IntegerRange(w, os.Lower(), max)
		default: // other >= v
			r = stamp.IntegerRange(w, min, os.Upper())
		}
	case OpIntegerBelow:
		lo, hi := os.UnsignedBounds()
		switch {
		case !negated && vIsX: // v <u other
			if hi == 0 {
				return s.Empty()
			}
			r = stamp.IntegerUnsignedRange(w, 0, hi-1)
		case !negated: // other <u v
			if lo == umax {
				return s.Empty()
			}
			r = stamp.IntegerUnsignedRange(w, lo+1, umax)
		case vIsX: // v >=u other
			r = stamp.IntegerUnsignedRange(w, lo, umax)
		default: // other >=u v
			r = stamp.IntegerUnsignedRange(w, 0, hi)
		}
	default:
		return s
	}
	return s.Join(r)
}
