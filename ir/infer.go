package ir

import (
	"github.com/andrewarchi/seanode/ir/stamp"
)

// inferStamp computes the stamp of an operation from the stamps of its
// inputs. declared is the stamp given to a parameter, or nil.
func inferStamp(op Op, aux Aux, inputs []*Node, declared stamp.Stamp) stamp.Stamp {
	info := op.info()
	switch {
	case op == OpConst:
		return stamp.ForConst(aux.Const)
	case op == OpParam:
		s := aux.To.Unrestricted()
		if declared != nil {
			s = s.Join(declared)
		}
		return s
	case info.class != valueClass:
		return stamp.Void()
	case op == OpConvert:
		return stamp.FoldConvertStamp(aux.Convert, inputs[0].stamp, aux.To)
	case info.arity == 1:
		x := inputs[0].stamp
		return stamp.ForStamp(x).FoldUnaryStamp(info.unary, x)
	case op.isShift():
		x := inputs[0].stamp
		return stamp.ForStamp(x).FoldShiftStamp(info.shift, x, inputs[1].stamp)
	case op.IsExact():
		return stamp.ExactStamp(info.binary, inputs[0].intStamp(), inputs[1].intStamp())
	case op.isArith():
		x := inputs[0].stamp
		return stamp.ForStamp(x).FoldStamp(info.binary, x, inputs[1].stamp)
	case op == OpConditional:
		return conditionalStamp(inputs[0], inputs[1], inputs[2])
	}
	panic("ir: no stamp for " + op.String())
}

// conditionalStamp is the union of the arms, each narrowed by the
// condition under which it is selected.
func conditionalStamp(c, t, f *Node) stamp.Stamp {
	if c.op == OpLogicConst {
		if c.aux.Value {
			return t.stamp
		}
		return f.stamp
	}
	ts := restrictStamp(c, false, t)
	fs := restrictStamp(c, true, f)
	return ts.Meet(fs)
}

// InferStamp recomputes the stamp of n from its inputs. It may be wider
// or narrower than the current stamp.
func (n *Node) InferStamp() stamp.Stamp {
	if n.op == OpParam {
		return n.stamp
	}
	return inferStamp(n.op, n.aux, n.inputs, nil)
}

// UpdateStamp narrows the stamp of n by s and reports whether it
// changed. Stamps only ever narrow.
func (n *Node) UpdateStamp(s stamp.Stamp) bool {
	joined := n.stamp.Join(s)
	if joined.Equals(n.stamp) {
		return false
	}
	n.stamp = joined
	return true
}
