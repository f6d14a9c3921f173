package ir

import (
	"github.com/andrewarchi/seanode/ir/stamp"
)

// canTrap reports whether op applied to inputs with their current stamps
// may trap. Integer division and remainder trap on a zero divisor and on
// MIN / -1; overflow-checked arithmetic traps on overflow.
func canTrap(op Op, inputs []*Node) bool {
	switch op {
	case OpSignedDiv, OpSignedRem:
		x, y := inputs[0].intStamp(), inputs[1].intStamp()
		if y.ContainsZero() {
			return true
		}
		return y.Contains(-1) && x.Contains(stamp.MinValue(x.Bits()))
	case OpUnsignedDiv, OpUnsignedRem:
		return inputs[1].intStamp().ContainsZero()
	case OpAddExact:
		return stamp.AddCanOverflow(inputs[0].intStamp(), inputs[1].intStamp())
	case OpSubExact:
		return stamp.SubCanOverflow(inputs[0].intStamp(), inputs[1].intStamp())
	case OpMulExact:
		return stamp.MulCanOverflow(inputs[0].intStamp(), inputs[1].intStamp())
	}
	return false
}

// CanTrap reports whether n may trap given the stamps of its inputs. A
// guard does not change the answer: it only records that the trap has
// been checked for.
func (n *Node) CanTrap() bool {
	return canTrap(n.op, n.inputs)
}

// ZeroCheck returns the guard that proves the divisor or operands of a
// trapping node safe, or nil.
func (n *Node) ZeroCheck() *Node {
	return n.guard
}

// TryFloat releases a trapping node from its fixed position when it
// cannot trap or a guard covers the trap. The transition is one-way and
// it reports whether the node is floating.
func (n *Node) TryFloat() bool {
	if n.floating {
		return true
	}
	if n.guard != nil || !n.CanTrap() {
		n.floating = true
	}
	return n.floating
}
