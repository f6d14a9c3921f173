package ir

import (
	"github.com/andrewarchi/seanode/ir/stamp"
)

func (g *Graph) canonConvert(op stamp.ConvertOp, x *Node, to stamp.Type) *Node {
	if c, ok := x.AsConst(); ok {
		return g.Const(stamp.FoldConvert(op, c, to))
	}
	if x.op == OpConvert {
		inner, a := x.aux.Convert, x.X()
		from := a.Type()
		switch {
		case op == stamp.SignExt && inner == stamp.SignExt,
			op == stamp.ZeroExt && inner == stamp.ZeroExt,
			op == stamp.Narrow && inner == stamp.Narrow:
			return g.Convert(op, a, to)
		case op == stamp.SignExt && inner == stamp.ZeroExt:
			// The sign bit of a widened value is clear.
			return g.Convert(stamp.ZeroExt, a, to)
		case op == stamp.Narrow && (inner == stamp.SignExt || inner == stamp.ZeroExt):
			switch {
			case from.Bits == to.Bits:
				return a
			case from.Bits > to.Bits:
				return g.Convert(stamp.Narrow, a, to)
			}
			return g.Convert(inner, a, to)
		case op == stamp.Reinterpret && inner == stamp.Reinterpret:
			return a
		case op == stamp.FloatToFloat && inner == stamp.FloatToFloat &&
			from == to && stamp.IsLossless(inner, from, x.Type()):
			return a
		}
	}
	if op == stamp.SignExt && x.intStamp().IsPositive() {
		return g.Convert(stamp.ZeroExt, x, to)
	}
	return nil
}
