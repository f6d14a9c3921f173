package ir

import (
	"fmt"

	"github.com/andrewarchi/seanode/ir/stamp"
)

// Canonical returns the canonical form of n: n itself when no rewrite
// applies, an existing equivalent node, or a new node computing the same
// value. The node n is not modified.
func (g *Graph) Canonical(n *Node) *Node {
	if n.dead {
		return n
	}
	if r := g.constantStamp(n); r != nil {
		return r
	}
	if r := g.rewrite(n, n.op, n.aux, n.inputs); r != nil {
		return r
	}
	return n
}

// constantStamp replaces a value node whose stamp has a single value
// with a constant, unless it may trap.
func (g *Graph) constantStamp(n *Node) *Node {
	switch n.op {
	case OpConst, OpParam:
		return nil
	}
	if n.op.info().class != valueClass || n.CanTrap() {
		return nil
	}
	if c, ok := n.stamp.AsConstant(); ok {
		return g.Const(c)
	}
	return nil
}

// build canonicalizes and installs a node.
func (g *Graph) build(op Op, aux Aux, inputs ...*Node) *Node {
	for _, in := range inputs {
		if in == nil || in.dead {
			panic(fmt.Sprintf("ir: %v of dead or nil input", op))
		}
	}
	if err := checkInputs(op, aux, inputs); err != nil {
		panic("ir: " + err.Error())
	}
	if r := g.rewrite(nil, op, aux, inputs); r != nil {
		return r
	}
	if op.info().class == valueClass && !canTrap(op, inputs) {
		if c, ok := inferStamp(op, aux, inputs, nil).AsConstant(); ok {
			return g.Const(c)
		}
	}
	return g.unique(op, aux, inputs...)
}

// rewrite applies the canonicalizations of op to the given inputs. self
// is the node being canonicalized, or nil when a node is being created.
// It returns nil when no rewrite applies.
func (g *Graph) rewrite(self *Node, op Op, aux Aux, in []*Node) *Node {
	switch op {
	case OpNeg:
		return g.canonNeg(in[0])
	case OpNot:
		return g.canonNot(in[0])
	case OpAbs:
		return g.canonAbs(in[0])
	case OpSqrt:
		return g.foldUnary(op, in[0])
	case OpConvert:
		return g.canonConvert(aux.Convert, in[0], aux.To)
	case OpAdd:
		return g.canonAdd(self, in[0], in[1])
	case OpSub:
		return g.canonSub(self, in[0], in[1])
	case OpMul:
		return g.canonMul(self, in[0], in[1])
	case OpMulHigh, OpUMulHigh:
		return g.canonMulHigh(self, op, in[0], in[1])
	case OpAnd:
		return g.canonAnd(self, in[0], in[1])
	case OpOr:
		return g.canonOr(self, in[0], in[1])
	case OpXor:
		return g.canonXor(self, in[0], in[1])
	case OpMin, OpMax, OpUMin, OpUMax:
		return g.canonMinMax(self, op, in[0], in[1])
	case OpCompress:
		return g.canonCompress(in[0], in[1])
	case OpExpand:
		return g.canonExpand(in[0], in[1])
	case OpShl, OpShr, OpUShr:
		return g.canonShift(op, in[0], in[1])
	case OpFloatDiv, OpFloatRem:
		return g.canonFloatDivRem(op, in[0], in[1])
	case OpSignedDiv:
		return g.canonSignedDiv(in[0], in[1])
	case OpSignedRem:
		return g.canonSignedRem(self, in[0], in[1])
	case OpUnsignedDiv:
		return g.canonUnsignedDiv(in[0], in[1])
	case OpUnsignedRem:
		return g.canonUnsignedRem(in[0], in[1])
	case OpAddExact, OpSubExact, OpMulExact:
		return g.canonExact(self, op, in[0], in[1])
	case OpIntegerEquals:
		return g.canonIntegerEquals(self, in[0], in[1])
	case OpIntegerLessThan:
		return g.canonIntegerLessThan(in[0], in[1])
	case OpIntegerBelow:
		return g.canonIntegerBelow(in[0], in[1])
	case OpIntegerTest:
		return g.canonIntegerTest(self, in[0], in[1])
	case OpFloatEquals, OpFloatLessThan:
		return g.canonFloatCompare(self, op, in[0], in[1], aux.UnorderedIsTrue)
	case OpIsNull:
		return g.canonIsNull(in[0])
	case OpObjectEquals:
		return g.canonObjectEquals(self, in[0], in[1])
	case OpLogicNegation:
		return g.canonLogicNegation(in[0])
	case OpLogicOr:
		return g.canonLogicOr(in[0], aux.XNegated, in[1], aux.YNegated)
	case OpConditional:
		return g.canonConditional(in[0], in[1], in[2])
	}
	return nil
}

// shouldSwap reports whether the inputs of a commutative operation are
// out of canonical order: constants right, otherwise lower ID left.
func shouldSwap(x, y *Node) bool {
	if y.IsConstant() {
		return false
	}
	return x.IsConstant() || x.id > y.id
}

// swap returns op(y, x). A node being canonicalized gets a node with
// exactly the swapped inputs, which value numbering would otherwise
// resolve back to itself.
func (g *Graph) swap(self *Node, op Op, aux Aux, x, y *Node) *Node {
	if self == nil {
		return g.build(op, aux, y, x)
	}
	if n, ok := g.values[keyOf(op, aux, []*Node{y, x})]; ok {
		return n
	}
	return g.add(NodeSpec{Op: op, Inputs: []*Node{y, x}, Aux: aux})
}

// foldBinary evaluates an arithmetic operation of two constants.
// Operations that would trap are not folded.
func (g *Graph) foldBinary(op Op, x, y *Node) *Node {
	cx, ok := x.AsConst()
	if !ok {
		return nil
	}
	cy, ok := y.AsConst()
	if !ok {
		return nil
	}
	if r, ok := stamp.ForStamp(x.stamp).FoldConstant(op.info().binary, cx, cy); ok {
		return g.Const(r)
	}
	return nil
}

func (g *Graph) foldUnary(op Op, x *Node) *Node {
	if c, ok := x.AsConst(); ok {
		return g.Const(stamp.ForStamp(x.stamp).FoldUnary(op.info().unary, c))
	}
	return nil
}

// intConst returns an integer constant of the width of like.
func (g *Graph) intConst(like *Node, v int64) *Node {
	return g.IntConst(like.bits(), v)
}

// negateIf returns the logical negation of c when neg is set.
func (g *Graph) negateIf(c *Node, neg bool) *Node {
	if neg {
		return g.LogicNegation(c)
	}
	return c
}

// Const returns the constant c.
func (g *Graph) Const(c stamp.Const) *Node {
	return g.unique(OpConst, Aux{Const: c})
}

// IntConst returns the integer constant v of the given width.
func (g *Graph) IntConst(bits uint8, v int64) *Node {
	return g.Const(stamp.IntConst(bits, v))
}

// LogicConst returns the condition that is always v.
func (g *Graph) LogicConst(v bool) *Node {
	return g.unique(OpLogicConst, Aux{Value: v})
}

// NewParam returns the parameter with the given name, declaring it with
// stamp s if it does not exist.
func (g *Graph) NewParam(name string, s stamp.Stamp) *Node {
	return g.AddOrUnique(NodeSpec{
		Op:    OpParam,
		Aux:   Aux{Name: name, To: stamp.TypeOf(s)},
		Stamp: s,
	})
}

// Return marks v as a result of the graph under the given name.
func (g *Graph) Return(name string, v *Node) *Node {
	return g.unique(OpReturn, Aux{Name: name}, v)
}

// Unary returns op(x) for a unary operation other than conversion.
func (g *Graph) Unary(op Op, x *Node) *Node {
	if op.Arity() != 1 || op == OpConvert || op == OpReturn {
		panic(fmt.Sprintf("ir: %v is not a unary operation", op))
	}
	return g.build(op, Aux{}, x)
}

// Binary returns op(x, y) for a binary value or compare operation.
// Float compares are ordered.
func (g *Graph) Binary(op Op, x, y *Node) *Node {
	if op.Arity() != 2 || op == OpLogicOr {
		panic(fmt.Sprintf("ir: %v is not a binary operation", op))
	}
	return g.build(op, Aux{}, x, y)
}

func (g *Graph) Neg(x *Node) *Node  { return g.build(OpNeg, Aux{}, x) }
func (g *Graph) Not(x *Node) *Node  { return g.build(OpNot, Aux{}, x) }
func (g *Graph) Abs(x *Node) *Node  { return g.build(OpAbs, Aux{}, x) }
func (g *Graph) Sqrt(x *Node) *Node { return g.build(OpSqrt, Aux{}, x) }

// Convert converts x to type to.
func (g *Graph) Convert(op stamp.ConvertOp, x *Node, to stamp.Type) *Node {
	return g.build(OpConvert, Aux{Convert: op, To: to}, x)
}

func (g *Graph) Add(x, y *Node) *Node         { return g.build(OpAdd, Aux{}, x, y) }
func (g *Graph) Sub(x, y *Node) *Node         { return g.build(OpSub, Aux{}, x, y) }
func (g *Graph) Mul(x, y *Node) *Node         { return g.build(OpMul, Aux{}, x, y) }
func (g *Graph) MulHigh(x, y *Node) *Node     { return g.build(OpMulHigh, Aux{}, x, y) }
func (g *Graph) UMulHigh(x, y *Node) *Node    { return g.build(OpUMulHigh, Aux{}, x, y) }
func (g *Graph) And(x, y *Node) *Node         { return g.build(OpAnd, Aux{}, x, y) }
func (g *Graph) Or(x, y *Node) *Node          { return g.build(OpOr, Aux{}, x, y) }
func (g *Graph) Xor(x, y *Node) *Node         { return g.build(OpXor, Aux{}, x, y) }
func (g *Graph) Min(x, y *Node) *Node         { return g.build(OpMin, Aux{}, x, y) }
func (g *Graph) Max(x, y *Node) *Node         { return g.build(OpMax, Aux{}, x, y) }
func (g *Graph) UMin(x, y *Node) *Node        { return g.build(OpUMin, Aux{}, x, y) }
func (g *Graph) UMax(x, y *Node) *Node        { return g.build(OpUMax, Aux{}, x, y) }
func (g *Graph) Compress(x, m *Node) *Node    { return g.build(OpCompress, Aux{}, x, m) }
func (g *Graph) Expand(x, m *Node) *Node      { return g.build(OpExpand, Aux{}, x, m) }
func (g *Graph) Shl(x, s *Node) *Node         { return g.build(OpShl, Aux{}, x, s) }
func (g *Graph) Shr(x, s *Node) *Node         { return g.build(OpShr, Aux{}, x, s) }
func (g *Graph) UShr(x, s *Node) *Node        { return g.build(OpUShr, Aux{}, x, s) }
func (g *Graph) FloatDiv(x, y *Node) *Node    { return g.build(OpFloatDiv, Aux{}, x, y) }
func (g *Graph) FloatRem(x, y *Node) *Node    { return g.build(OpFloatRem, Aux{}, x, y) }
func (g *Graph) SignedDiv(x, y *Node) *Node   { return g.build(OpSignedDiv, Aux{}, x, y) }
func (g *Graph) SignedRem(x, y *Node) *Node   { return g.build(OpSignedRem, Aux{}, x, y) }
func (g *Graph) UnsignedDiv(x, y *Node) *Node { return g.build(OpUnsignedDiv, Aux{}, x, y) }
func (g *Graph) UnsignedRem(x, y *Node) *Node { return g.build(OpUnsignedRem, Aux{}, x, y) }
func (g *Graph) AddExact(x, y *Node) *Node    { return g.build(OpAddExact, Aux{}, x, y) }
func (g *Graph) SubExact(x, y *Node) *Node    { return g.build(OpSubExact, Aux{}, x, y) }
func (g *Graph) MulExact(x, y *Node) *Node    { return g.build(OpMulExact, Aux{}, x, y) }

// shift returns a shift of x by a constant amount.
func (g *Graph) shift(op Op, x *Node, amount int64) *Node {
	return g.build(op, Aux{}, x, g.intConst(x, amount))
}

func (g *Graph) IntegerEquals(x, y *Node) *Node   { return g.build(OpIntegerEquals, Aux{}, x, y) }
func (g *Graph) IntegerLessThan(x, y *Node) *Node { return g.build(OpIntegerLessThan, Aux{}, x, y) }
func (g *Graph) IntegerBelow(x, y *Node) *Node    { return g.build(OpIntegerBelow, Aux{}, x, y) }

// IntegerTest is true when x & y == 0.
func (g *Graph) IntegerTest(x, y *Node) *Node { return g.build(OpIntegerTest, Aux{}, x, y) }

// FloatEquals compares floats for equality. Comparisons with NaN yield
// unorderedIsTrue.
func (g *Graph) FloatEquals(x, y *Node, unorderedIsTrue bool) *Node {
	return g.build(OpFloatEquals, Aux{UnorderedIsTrue: unorderedIsTrue}, x, y)
}

// FloatLessThan compares floats. Comparisons with NaN yield
// unorderedIsTrue.
func (g *Graph) FloatLessThan(x, y *Node, unorderedIsTrue bool) *Node {
	return g.build(OpFloatLessThan, Aux{UnorderedIsTrue: unorderedIsTrue}, x, y)
}

func (g *Graph) IsNull(x *Node) *Node          { return g.build(OpIsNull, Aux{}, x) }
func (g *Graph) ObjectEquals(x, y *Node) *Node { return g.build(OpObjectEquals, Aux{}, x, y) }

// LogicNegation negates the condition x.
func (g *Graph) LogicNegation(x *Node) *Node { return g.build(OpLogicNegation, Aux{}, x) }

// LogicOr is the short-circuit disjunction of x and y, each negated when
// its flag is set.
func (g *Graph) LogicOr(x *Node, xNegated bool, y *Node, yNegated bool) *Node {
	return g.build(OpLogicOr, Aux{XNegated: xNegated, YNegated: yNegated}, x, y)
}

// Conditional selects t when the condition c holds and f otherwise.
func (g *Graph) Conditional(c, t, f *Node) *Node {
	return g.build(OpConditional, Aux{}, c, t, f)
}

// Compare returns the condition x cond y, expressed with a canonical
// condition on possibly mirrored operands and possibly negated.
// unorderedIsTrue applies to float operands.
func (g *Graph) Compare(cond stamp.Condition, x, y *Node, unorderedIsTrue bool) *Node {
	c, mirror, negate := cond.Canonicalize()
	if mirror {
		x, y = y, x
	}
	if negate {
		unorderedIsTrue = !unorderedIsTrue
	}
	var r *Node
	switch x.stamp.Kind() {
	case stamp.IntKind:
		switch c {
		case stamp.EQ:
			r = g.IntegerEquals(x, y)
		case stamp.LT:
			r = g.IntegerLessThan(x, y)
		case stamp.BT:
			r = g.IntegerBelow(x, y)
		}
	case stamp.FloatKind:
		switch c {
		case stamp.EQ:
			r = g.FloatEquals(x, y, unorderedIsTrue)
		case stamp.LT:
			r = g.FloatLessThan(x, y, unorderedIsTrue)
		}
	case stamp.ObjectKind:
		if c == stamp.EQ {
			r = g.ObjectEquals(x, y)
		}
	}
	if r == nil {
		panic(fmt.Sprintf("ir: no %v comparison of %v", cond, x.Type()))
	}
	return g.negateIf(r, negate)
}
