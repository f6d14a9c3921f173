package ir

import (
	"strconv"

	"github.com/andrewarchi/seanode/ir/stamp"
)

// ID identifies a node within its graph. IDs are assigned in creation
// order and never reused.
type ID int32

// Aux holds the data of a node besides its inputs. It is part of the
// identity of a node for value numbering.
type Aux struct {
	Const stamp.Const // OpConst
	Name  string      // OpParam, OpReturn

	Convert stamp.ConvertOp // OpConvert
	To      stamp.Type      // OpConvert target, OpParam type

	UnorderedIsTrue bool // float compares
	XNegated        bool // OpLogicOr
	YNegated        bool // OpLogicOr
	Value           bool // OpLogicConst
}

// Node is a vertex of the sea of nodes. Value nodes produce a value
// described by their stamp, logic nodes produce a condition, and sinks
// consume values.
type Node struct {
	id     ID
	op     Op
	stamp  stamp.Stamp
	inputs []*Node
	uses   []*Node // one entry per input edge and guard edge
	aux    Aux

	guard    *Node
	floating bool
	dead     bool
}

// ID returns the identifier of the node.
func (n *Node) ID() ID { return n.id }

// Op returns the operation of the node.
func (n *Node) Op() Op { return n.op }

// Aux returns the auxiliary data of the node.
func (n *Node) Aux() Aux { return n.aux }

// Stamp returns the current stamp of the node.
func (n *Node) Stamp() stamp.Stamp { return n.stamp }

// Type returns the type of the value produced by the node.
func (n *Node) Type() stamp.Type { return stamp.TypeOf(n.stamp) }

// In returns the i-th input.
func (n *Node) In(i int) *Node { return n.inputs[i] }

// NumInputs returns the number of inputs.
func (n *Node) NumInputs() int { return len(n.inputs) }

// Inputs returns the inputs of the node. The slice must not be modified.
func (n *Node) Inputs() []*Node { return n.inputs }

// X returns the first input.
func (n *Node) X() *Node { return n.inputs[0] }

// Y returns the second input.
func (n *Node) Y() *Node { return n.inputs[1] }

// Z returns the third input.
func (n *Node) Z() *Node { return n.inputs[2] }

// Uses returns the users of the node, once per edge. The slice must not
// be modified.
func (n *Node) Uses() []*Node { return n.uses }

// UsageCount returns the number of edges that use the node.
func (n *Node) UsageCount() int { return len(n.uses) }

// HasExactlyOneUsage reports whether exactly one edge uses the node.
func (n *Node) HasExactlyOneUsage() bool { return len(n.uses) == 1 }

// HasUsagesOtherThan reports whether a node other than user uses n.
func (n *Node) HasUsagesOtherThan(user *Node) bool {
	for _, u := range n.uses {
		if u != user {
			return true
		}
	}
	return false
}

// IsDead reports whether the node has been removed from its graph.
func (n *Node) IsDead() bool { return n.dead }

// IsConstant reports whether the node is a constant value.
func (n *Node) IsConstant() bool { return n.op == OpConst }

// AsConst returns the value of a constant node.
func (n *Node) AsConst() (stamp.Const, bool) {
	if n.op != OpConst {
		return stamp.Const{}, false
	}
	return n.aux.Const, true
}

// isConstValue reports whether n is the integer constant v.
func (n *Node) isConstValue(v int64) bool {
	c, ok := n.AsConst()
	return ok && c.Kind() == stamp.IntKind && c.Int64() == v
}

// IsLogicConst reports whether n is a logic constant with the given value.
func (n *Node) IsLogicConst(v bool) bool {
	return n.op == OpLogicConst && n.aux.Value == v
}

// intStamp returns the stamp of an integer node.
func (n *Node) intStamp() stamp.IntegerStamp {
	return n.stamp.(stamp.IntegerStamp)
}

func (n *Node) isInt() bool {
	return n.stamp.Kind() == stamp.IntKind
}

func (n *Node) bits() uint8 {
	return n.stamp.Bits()
}

// Guard returns the logic node that guards a trapping node, or nil.
func (n *Node) Guard() *Node { return n.guard }

// IsFloating reports whether the node has no fixed position in control
// flow.
func (n *Node) IsFloating() bool { return n.floating }

func (n *Node) addUse(user *Node) {
	n.uses = append(n.uses, user)
}

func (n *Node) removeUse(user *Node) {
	for i, u := range n.uses {
		if u == user {
			last := len(n.uses) - 1
			copy(n.uses[i:], n.uses[i+1:])
			n.uses[last] = nil
			n.uses = n.uses[:last]
			return
		}
	}
	panic("ir: use not found")
}

func (n *Node) String() string {
	return n.op.String() + "#" + strconv.Itoa(int(n.id))
}
