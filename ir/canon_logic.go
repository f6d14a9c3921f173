package ir

import (
	"github.com/andrewarchi/seanode/ir/stamp"
)

func (g *Graph) canonLogicNegation(x *Node) *Node {
	switch x.op {
	case OpLogicConst:
		return g.LogicConst(!x.aux.Value)
	case OpLogicNegation:
		return x.X()
	}
	return nil
}

// canonLogicOr simplifies x' || y', where x' is x negated when xNegated
// is set and likewise for y'.
func (g *Graph) canonLogicOr(x *Node, xNegated bool, y *Node, yNegated bool) *Node {
	if x.op == OpLogicNegation {
		return g.LogicOr(x.X(), !xNegated, y, yNegated)
	}
	if y.op == OpLogicNegation {
		return g.LogicOr(x, xNegated, y.X(), !yNegated)
	}
	if x == y {
		if xNegated == yNegated {
			return g.negateIf(x, xNegated)
		}
		return g.LogicConst(true)
	}
	if x.op == OpLogicConst {
		if x.aux.Value != xNegated {
			return g.LogicConst(true)
		}
		return g.negateIf(y, yNegated)
	}
	if y.op == OpLogicConst {
		if y.aux.Value != yNegated {
			return g.LogicConst(true)
		}
		return g.negateIf(x, xNegated)
	}

	// y' under x'
	if r := impliesNegated(x, xNegated, y, yNegated); r == stamp.True {
		return g.negateIf(y, yNegated)
	}
	// y' under !x'
	switch impliesNegated(x, !xNegated, y, yNegated) {
	case stamp.True:
		return g.LogicConst(true)
	case stamp.False:
		return g.negateIf(x, xNegated)
	}
	// x' under y'
	if r := impliesNegated(y, yNegated, x, xNegated); r == stamp.True {
		return g.negateIf(x, xNegated)
	}
	return nil
}

// impliesNegated is Implies for a possibly negated b.
func impliesNegated(a *Node, aNegated bool, b *Node, bNegated bool) stamp.TriState {
	r := Implies(a, aNegated, b)
	if bNegated {
		return r.Negate()
	}
	return r
}
