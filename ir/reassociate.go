package ir

import (
	"github.com/andrewarchi/seanode/ir/stamp"
)

// reassociate regroups the constants of two nested associative
// operations so that they fold:
//
//	(a op c1) op c2  =>  a op (c1 op c2)
//
// Add and Sub chains are regrouped together, tracking the sign of each
// operand. The inner node must have no usages besides the outer node,
// since it would otherwise stay alive next to the new node.
// Overflow-checked nodes are never reassociated.
func (g *Graph) reassociate(self *Node, op Op, x, y *Node) *Node {
	if !g.opts.Reassociate || op.IsExact() || !x.isInt() {
		return nil
	}
	if !stamp.IntegerOps.IsAssociative(op.info().binary) {
		return nil
	}
	m1, other, m1Left := y, x, false
	switch {
	case x.IsConstant() && !y.IsConstant():
		m1, other, m1Left = x, y, true
	case !y.IsConstant() || x.IsConstant():
		return nil
	}
	addSub := (op == OpAdd || op == OpSub) && (other.op == OpAdd || other.op == OpSub)
	if other.op != op && !addSub {
		return nil
	}
	if self != nil && other.HasUsagesOtherThan(self) || self == nil && other.UsageCount() != 0 {
		return nil
	}
	m2, a, m2Left := other.Y(), other.X(), false
	switch {
	case other.X().IsConstant() && !other.Y().IsConstant():
		m2, a, m2Left = other.X(), other.Y(), true
	case !other.Y().IsConstant() || other.X().IsConstant():
		return nil
	}
	c1, _ := m1.AsConst()
	c2, _ := m2.AsConst()

	if !addSub {
		k, _ := stamp.IntegerOps.FoldConstant(op.info().binary, c1, c2)
		return g.Binary(op, a, g.Const(k))
	}

	// The value is sign(a)*a + sign(m1)*c1 + sign(m2)*c2.
	otherNeg := op == OpSub && m1Left   // m1 - other
	m1Neg := op == OpSub && !m1Left     // other - m1
	aNeg := other.op == OpSub && m2Left // m2 - a
	m2Neg := other.op == OpSub && !m2Left
	if otherNeg {
		aNeg, m2Neg = !aNeg, !m2Neg
	}
	k := signed(c1, m1Neg)
	k, _ = stamp.IntegerOps.FoldConstant(stamp.Add, k, signed(c2, m2Neg))
	if aNeg {
		return g.Sub(g.Const(k), a)
	}
	return g.Add(a, g.Const(k))
}

func signed(c stamp.Const, neg bool) stamp.Const {
	if neg {
		return stamp.IntegerOps.FoldUnary(stamp.Neg, c)
	}
	return c
}
