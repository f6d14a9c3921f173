package ir

import (
	"fmt"

	"github.com/andrewarchi/seanode/ir/stamp"
)

// Value is a value of a backend, produced by an ArithmeticGenerator.
type Value any

// NodeBuilder maps nodes to the backend values generated for them.
type NodeBuilder interface {
	// Operand returns the value generated for an input node.
	Operand(n *Node) Value
	// SetResult records the value generated for n.
	SetResult(n *Node, v Value)
}

// ArithmeticGenerator emits target-independent arithmetic. The type
// passed to each method is the type of the result.
type ArithmeticGenerator interface {
	EmitConst(c stamp.Const) Value
	EmitParam(name string, t stamp.Type) Value

	EmitNegate(a Value, t stamp.Type) Value
	EmitNot(a Value, t stamp.Type) Value
	EmitMathAbs(a Value, t stamp.Type) Value
	EmitMathSqrt(a Value, t stamp.Type) Value
	EmitConvert(op stamp.ConvertOp, a Value, from, to stamp.Type) Value

	EmitAdd(a, b Value, t stamp.Type) Value
	EmitSub(a, b Value, t stamp.Type) Value
	EmitMul(a, b Value, t stamp.Type) Value
	EmitMulHigh(a, b Value, t stamp.Type) Value
	EmitUMulHigh(a, b Value, t stamp.Type) Value
	// EmitDiv and EmitRem are signed for integers and IEEE division and
	// remainder for floats.
	EmitDiv(a, b Value, t stamp.Type) Value
	EmitRem(a, b Value, t stamp.Type) Value
	EmitUDiv(a, b Value, t stamp.Type) Value
	EmitURem(a, b Value, t stamp.Type) Value
	EmitAnd(a, b Value, t stamp.Type) Value
	EmitOr(a, b Value, t stamp.Type) Value
	EmitXor(a, b Value, t stamp.Type) Value
	EmitShl(a, b Value, t stamp.Type) Value
	EmitShr(a, b Value, t stamp.Type) Value
	EmitUShr(a, b Value, t stamp.Type) Value
	EmitMinMax(op stamp.BinaryOp, a, b Value, t stamp.Type) Value
	EmitCompress(a, mask Value, t stamp.Type) Value
	EmitExpand(a, mask Value, t stamp.Type) Value
	// EmitExact emits addition, subtraction, or multiplication that traps
	// on overflow.
	EmitExact(op stamp.BinaryOp, a, b Value, t stamp.Type) Value

	// EmitConditionalMove selects trueValue when left cond right holds.
	// Float comparisons involving NaN hold when unorderedIsTrue is set.
	EmitConditionalMove(cond stamp.CanonicalCondition, unorderedIsTrue bool, left, right Value, cmpType stamp.Type, trueValue, falseValue Value, t stamp.Type) Value
	// EmitIntegerTestMove selects trueValue when left & right == 0.
	EmitIntegerTestMove(left, right Value, cmpType stamp.Type, trueValue, falseValue Value, t stamp.Type) Value

	EmitReturn(name string, v Value, t stamp.Type)
}

// Generate emits the operation of n with gen, reading its inputs from b
// and recording its result in b. Logic nodes produce no value; they are
// emitted as part of the conditionals that use them.
func (n *Node) Generate(b NodeBuilder, gen ArithmeticGenerator) {
	if n.op.IsLogic() {
		return
	}
	t := n.Type()
	var v Value
	switch n.op {
	case OpConst:
		v = gen.EmitConst(n.aux.Const)
	case OpParam:
		v = gen.EmitParam(n.aux.Name, t)
	case OpNeg:
		v = gen.EmitNegate(b.Operand(n.X()), t)
	case OpNot:
		v = gen.EmitNot(b.Operand(n.X()), t)
	case OpAbs:
		v = gen.EmitMathAbs(b.Operand(n.X()), t)
	case OpSqrt:
		v = gen.EmitMathSqrt(b.Operand(n.X()), t)
	case OpConvert:
		v = gen.EmitConvert(n.aux.Convert, b.Operand(n.X()), n.X().Type(), t)
	case OpConditional:
		v = emitSelect(b, gen, n.X(), false, b.Operand(n.Y()), b.Operand(n.Z()), t)
	case OpReturn:
		gen.EmitReturn(n.aux.Name, b.Operand(n.X()), n.X().Type())
		return
	default:
		x, y := b.Operand(n.X()), b.Operand(n.Y())
		switch n.op {
		case OpAdd:
			v = gen.EmitAdd(x, y, t)
		case OpSub:
			v = gen.EmitSub(x, y, t)
		case OpMul:
			v = gen.EmitMul(x, y, t)
		case OpMulHigh:
			v = gen.EmitMulHigh(x, y, t)
		case OpUMulHigh:
			v = gen.EmitUMulHigh(x, y, t)
		case OpSignedDiv, OpFloatDiv:
			v = gen.EmitDiv(x, y, t)
		case OpSignedRem, OpFloatRem:
			v = gen.EmitRem(x, y, t)
		case OpUnsignedDiv:
			v = gen.EmitUDiv(x, y, t)
		case OpUnsignedRem:
			v = gen.EmitURem(x, y, t)
		case OpAnd:
			v = gen.EmitAnd(x, y, t)
		case OpOr:
			v = gen.EmitOr(x, y, t)
		case OpXor:
			v = gen.EmitXor(x, y, t)
		case OpShl:
			v = gen.EmitShl(x, y, t)
		case OpShr:
			v = gen.EmitShr(x, y, t)
		case OpUShr:
			v = gen.EmitUShr(x, y, t)
		case OpMin, OpMax, OpUMin, OpUMax:
			v = gen.EmitMinMax(n.op.info().binary, x, y, t)
		case OpCompress:
			v = gen.EmitCompress(x, y, t)
		case OpExpand:
			v = gen.EmitExpand(x, y, t)
		case OpAddExact, OpSubExact, OpMulExact:
			v = gen.EmitExact(n.op.info().binary, x, y, t)
		default:
			panic(fmt.Sprintf("ir: cannot generate %v", n))
		}
	}
	b.SetResult(n, v)
}

// emitSelect emits a selection between tv and fv on the condition c,
// negated when neg is set.
func emitSelect(b NodeBuilder, gen ArithmeticGenerator, c *Node, neg bool, tv, fv Value, t stamp.Type) Value {
	if neg {
		tv, fv = fv, tv
	}
	switch c.op {
	case OpLogicNegation:
		return emitSelect(b, gen, c.X(), true, tv, fv, t)
	case OpLogicConst:
		if c.aux.Value {
			return tv
		}
		return fv
	case OpLogicOr:
		// x' ? tv : (y' ? tv : fv)
		inner := emitSelect(b, gen, c.Y(), c.aux.YNegated, tv, fv, t)
		return emitSelect(b, gen, c.X(), c.aux.XNegated, tv, inner, t)
	case OpIntegerTest:
		return gen.EmitIntegerTestMove(b.Operand(c.X()), b.Operand(c.Y()), c.X().Type(), tv, fv, t)
	case OpIsNull:
		null := gen.EmitConst(stamp.NullConst())
		return gen.EmitConditionalMove(stamp.EQ, false, b.Operand(c.X()), null, stamp.Obj, tv, fv, t)
	case OpIntegerEquals, OpIntegerLessThan, OpIntegerBelow, OpObjectEquals,
		OpFloatEquals, OpFloatLessThan:
		return gen.EmitConditionalMove(c.op.info().cond, c.aux.UnorderedIsTrue,
			b.Operand(c.X()), b.Operand(c.Y()), c.X().Type(), tv, fv, t)
	}
	panic(fmt.Sprintf("ir: cannot select on %v", c))
}
