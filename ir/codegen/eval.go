package codegen

import (
	"fmt"

	"github.com/andrewarchi/seanode/ir"
	"github.com/andrewarchi/seanode/ir/stamp"
)

// TrapError is returned when evaluation reaches an operation that traps,
// such as division by zero or overflow of checked arithmetic.
type TrapError struct {
	Op   string
	Args []stamp.Const
}

func (err *TrapError) Error() string {
	return fmt.Sprintf("codegen: %s traps on %v", err.Op, err.Args)
}

// MissingArgError is returned when a parameter has no argument.
type MissingArgError struct {
	Name string
}

func (err *MissingArgError) Error() string {
	return fmt.Sprintf("codegen: no argument for parameter %s", err.Name)
}

// Evaluator computes the concrete results of a graph. Its values are
// stamp.Const. The first trap or missing argument stops evaluation and
// is reported by Err.
type Evaluator struct {
	args    map[string]stamp.Const
	results map[string]stamp.Const
	err     error
}

// NewEvaluator constructs an Evaluator that binds parameters to args.
func NewEvaluator(args map[string]stamp.Const) *Evaluator {
	return &Evaluator{
		args:    args,
		results: make(map[string]stamp.Const),
	}
}

// Evaluate runs g on args and returns its results by return name.
func Evaluate(g *ir.Graph, args map[string]stamp.Const) (map[string]stamp.Const, error) {
	e := NewEvaluator(args)
	Generate(g, e, func() bool { return e.err != nil })
	if e.err != nil {
		return nil, e.err
	}
	return e.results, nil
}

// Results returns the values recorded by EmitReturn.
func (e *Evaluator) Results() map[string]stamp.Const { return e.results }

// Err returns the first error of the evaluation.
func (e *Evaluator) Err() error { return e.err }

func (e *Evaluator) trap(op string, args ...stamp.Const) stamp.Const {
	if e.err == nil {
		e.err = &TrapError{Op: op, Args: args}
	}
	return stamp.Const{}
}

func c(v ir.Value) stamp.Const { return v.(stamp.Const) }

func (e *Evaluator) EmitConst(k stamp.Const) ir.Value { return k }

func (e *Evaluator) EmitParam(name string, t stamp.Type) ir.Value {
	a, ok := e.args[name]
	if !ok {
		if e.err == nil {
			e.err = &MissingArgError{name}
		}
		return stamp.ZeroConst(t)
	}
	if a.Type() != t {
		if e.err == nil {
			e.err = fmt.Errorf("codegen: argument %s is %v, want %v", name, a.Type(), t)
		}
		return stamp.ZeroConst(t)
	}
	return a
}

func (e *Evaluator) unary(op stamp.UnaryOp, a ir.Value, t stamp.Type) ir.Value {
	return stamp.ForKind(t.Kind).FoldUnary(op, c(a))
}

func (e *Evaluator) EmitNegate(a ir.Value, t stamp.Type) ir.Value {
	return e.unary(stamp.Neg, a, t)
}
func (e *Evaluator) EmitNot(a ir.Value, t stamp.Type) ir.Value { return e.unary(stamp.Not, a, t) }
func (e *Evaluator) EmitMathAbs(a ir.Value, t stamp.Type) ir.Value {
	return e.unary(stamp.Abs, a, t)
}
func (e *Evaluator) EmitMathSqrt(a ir.Value, t stamp.Type) ir.Value {
	return e.unary(stamp.Sqrt, a, t)
}

func (e *Evaluator) EmitConvert(op stamp.ConvertOp, a ir.Value, from, to stamp.Type) ir.Value {
	return stamp.FoldConvert(op, c(a), to)
}

func (e *Evaluator) binary(op stamp.BinaryOp, a, b ir.Value, t stamp.Type) ir.Value {
	r, ok := stamp.ForKind(t.Kind).FoldConstant(op, c(a), c(b))
	if !ok {
		return e.trap(op.String(), c(a), c(b))
	}
	return r
}

func (e *Evaluator) EmitAdd(a, b ir.Value, t stamp.Type) ir.Value {
	return e.binary(stamp.Add, a, b, t)
}
func (e *Evaluator) EmitSub(a, b ir.Value, t stamp.Type) ir.Value {
	return e.binary(stamp.Sub, a, b, t)
}
func (e *Evaluator) EmitMul(a, b ir.Value, t stamp.Type) ir.Value {
	return e.binary(stamp.Mul, a, b, t)
}
func (e *Evaluator) EmitMulHigh(a, b ir.Value, t stamp.Type) ir.Value {
	return e.binary(stamp.MulHigh, a, b, t)
}
func (e *Evaluator) EmitUMulHigh(a, b ir.Value, t stamp.Type) ir.Value {
	return e.binary(stamp.UMulHigh, a, b, t)
}
func (e *Evaluator) EmitDiv(a, b ir.Value, t stamp.Type) ir.Value {
	return e.binary(stamp.Div, a, b, t)
}
func (e *Evaluator) EmitRem(a, b ir.Value, t stamp.Type) ir.Value {
	return e.binary(stamp.Rem, a, b, t)
}
func (e *Evaluator) EmitUDiv(a, b ir.Value, t stamp.Type) ir.Value {
	return e.binary(stamp.UDiv, a, b, t)
}
func (e *Evaluator) EmitURem(a, b ir.Value, t stamp.Type) ir.Value {
	return e.binary(stamp.URem, a, b, t)
}
func (e *Evaluator) EmitAnd(a, b ir.Value, t stamp.Type) ir.Value {
	return e.binary(stamp.And, a, b, t)
}
func (e *Evaluator) EmitOr(a, b ir.Value, t stamp.Type) ir.Value {
	return e.binary(stamp.Or, a, b, t)
}
func (e *Evaluator) EmitXor(a, b ir.Value, t stamp.Type) ir.Value {
	return e.binary(stamp.Xor, a, b, t)
}
func (e *Evaluator) EmitMinMax(op stamp.BinaryOp, a, b ir.Value, t stamp.Type) ir.Value {
	return e.binary(op, a, b, t)
}
func (e *Evaluator) EmitCompress(a, mask ir.Value, t stamp.Type) ir.Value {
	return e.binary(stamp.Compress, a, mask, t)
}
func (e *Evaluator) EmitExpand(a, mask ir.Value, t stamp.Type) ir.Value {
	return e.binary(stamp.Expand, a, mask, t)
}

func (e *Evaluator) shift(op stamp.ShiftOp, a, b ir.Value) ir.Value {
	return stamp.IntegerOps.FoldShift(op, c(a), c(b).Int64())
}

func (e *Evaluator) EmitShl(a, b ir.Value, t stamp.Type) ir.Value  { return e.shift(stamp.Shl, a, b) }
func (e *Evaluator) EmitShr(a, b ir.Value, t stamp.Type) ir.Value  { return e.shift(stamp.Shr, a, b) }
func (e *Evaluator) EmitUShr(a, b ir.Value, t stamp.Type) ir.Value { return e.shift(stamp.UShr, a, b) }

func (e *Evaluator) EmitExact(op stamp.BinaryOp, a, b ir.Value, t stamp.Type) ir.Value {
	x := stamp.IntegerConst(t.Bits, c(a).Int64())
	y := stamp.IntegerConst(t.Bits, c(b).Int64())
	var overflow bool
	switch op {
	case stamp.Add:
		overflow = stamp.AddCanOverflow(x, y)
	case stamp.Sub:
		overflow = stamp.SubCanOverflow(x, y)
	case stamp.Mul:
		overflow = stamp.MulCanOverflow(x, y)
	default:
		panic(fmt.Sprintf("codegen: no exact %v", op))
	}
	if overflow {
		return e.trap(op.String()+"exact", c(a), c(b))
	}
	return e.binary(op, a, b, t)
}

func (e *Evaluator) EmitConditionalMove(cond stamp.CanonicalCondition, unorderedIsTrue bool, left, right ir.Value, cmpType stamp.Type, trueValue, falseValue ir.Value, t stamp.Type) ir.Value {
	if cond.Fold(c(left), c(right), unorderedIsTrue) {
		return trueValue
	}
	return falseValue
}

func (e *Evaluator) EmitIntegerTestMove(left, right ir.Value, cmpType stamp.Type, trueValue, falseValue ir.Value, t stamp.Type) ir.Value {
	if c(left).Uint64()&c(right).Uint64() == 0 {
		return trueValue
	}
	return falseValue
}

func (e *Evaluator) EmitReturn(name string, v ir.Value, t stamp.Type) {
	e.results[name] = c(v)
}
