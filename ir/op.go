package ir

import (
	"strconv"

	"github.com/andrewarchi/seanode/ir/stamp"
)

// Op is the kind of operation of a node.
type Op uint8

// Node operations.
const (
	OpInvalid Op = iota

	OpConst
	OpParam

	OpNeg
	OpNot
	OpAbs
	OpSqrt
	OpConvert

	OpAdd
	OpSub
	OpMul
	OpMulHigh
	OpUMulHigh
	OpAnd
	OpOr
	OpXor
	OpMin
	OpMax
	OpUMin
	OpUMax
	OpCompress
	OpExpand
	OpShl
	OpShr
	OpUShr
	OpFloatDiv
	OpFloatRem

	OpSignedDiv
	OpSignedRem
	OpUnsignedDiv
	OpUnsignedRem
	OpAddExact
	OpSubExact
	OpMulExact

	OpIntegerEquals
	OpIntegerLessThan
	OpIntegerBelow
	OpIntegerTest
	OpFloatEquals
	OpFloatLessThan
	OpIsNull
	OpObjectEquals
	OpLogicNegation
	OpLogicConst
	OpLogicOr

	OpConditional
	OpReturn

	numOps
)

type opClass uint8

const (
	valueClass opClass = iota
	logicClass
	sinkClass
)

type opInfo struct {
	name        string
	arity       int
	class       opClass
	commutative bool
	trapping    bool
	exact       bool

	// Operation in the stamp tables, by arity.
	binary stamp.BinaryOp
	unary  stamp.UnaryOp
	shift  stamp.ShiftOp
	cond   stamp.CanonicalCondition
}

var opInfos = [numOps]opInfo{
	OpConst: {name: "const"},
	OpParam: {name: "param"},

	OpNeg:     {name: "neg", arity: 1, unary: stamp.Neg},
	OpNot:     {name: "not", arity: 1, unary: stamp.Not},
	OpAbs:     {name: "abs", arity: 1, unary: stamp.Abs},
	OpSqrt:    {name: "sqrt", arity: 1, unary: stamp.Sqrt},
	OpConvert: {name: "convert", arity: 1},

	OpAdd:      {name: "add", arity: 2, commutative: true, binary: stamp.Add},
	OpSub:      {name: "sub", arity: 2, binary: stamp.Sub},
	OpMul:      {name: "mul", arity: 2, commutative: true, binary: stamp.Mul},
	OpMulHigh:  {name: "mulhi", arity: 2, commutative: true, binary: stamp.MulHigh},
	OpUMulHigh: {name: "umulhi", arity: 2, commutative: true, binary: stamp.UMulHigh},
	OpAnd:      {name: "and", arity: 2, commutative: true, binary: stamp.And},
	OpOr:       {name: "or", arity: 2, commutative: true, binary: stamp.Or},
	OpXor:      {name: "xor", arity: 2, commutative: true, binary: stamp.Xor},
	OpMin:      {name: "min", arity: 2, commutative: true, binary: stamp.Min},
	OpMax:      {name: "max", arity: 2, commutative: true, binary: stamp.Max},
	OpUMin:     {name: "umin", arity: 2, commutative: true, binary: stamp.UMin},
	OpUMax:     {name: "umax", arity: 2, commutative: true, binary: stamp.UMax},
	OpCompress: {name: "compress", arity: 2, binary: stamp.Compress},
	OpExpand:   {name: "expand", arity: 2, binary: stamp.Expand},
	OpShl:      {name: "shl", arity: 2, shift: stamp.Shl},
	OpShr:      {name: "shr", arity: 2, shift: stamp.Shr},
	OpUShr:     {name: "ushr", arity: 2, shift: stamp.UShr},
	OpFloatDiv: {name: "fdiv", arity: 2, binary: stamp.Div},
	OpFloatRem: {name: "frem", arity: 2, binary: stamp.Rem},

	OpSignedDiv:   {name: "div", arity: 2, trapping: true, binary: stamp.Div},
	OpSignedRem:   {name: "rem", arity: 2, trapping: true, binary: stamp.Rem},
	OpUnsignedDiv: {name: "udiv", arity: 2, trapping: true, binary: stamp.UDiv},
	OpUnsignedRem: {name: "urem", arity: 2, trapping: true, binary: stamp.URem},
	OpAddExact:    {name: "addexact", arity: 2, commutative: true, trapping: true, exact: true, binary: stamp.Add},
	OpSubExact:    {name: "subexact", arity: 2, trapping: true, exact: true, binary: stamp.Sub},
	OpMulExact:    {name: "mulexact", arity: 2, commutative: true, trapping: true, exact: true, binary: stamp.Mul},

	OpIntegerEquals:   {name: "eq", arity: 2, class: logicClass, commutative: true, cond: stamp.EQ},
	OpIntegerLessThan: {name: "lt", arity: 2, class: logicClass, cond: stamp.LT},
	OpIntegerBelow:    {name: "bt", arity: 2, class: logicClass, cond: stamp.BT},
	OpIntegerTest:     {name: "test", arity: 2, class: logicClass, commutative: true},
	OpFloatEquals:     {name: "feq", arity: 2, class: logicClass, commutative: true, cond: stamp.EQ},
	OpFloatLessThan:   {name: "flt", arity: 2, class: logicClass, cond: stamp.LT},
	OpIsNull:          {name: "isnull", arity: 1, class: logicClass},
	OpObjectEquals:    {name: "objeq", arity: 2, class: logicClass, commutative: true, cond: stamp.EQ},
	OpLogicNegation:   {name: "lnot", arity: 1, class: logicClass},
	OpLogicConst:      {name: "lconst", class: logicClass},
	OpLogicOr:         {name: "lor", arity: 2, class: logicClass},

	OpConditional: {name: "cond", arity: 3},
	OpReturn:      {name: "return", arity: 1, class: sinkClass},
}

func (op Op) info() *opInfo {
	if op >= numOps {
		return &opInfos[OpInvalid]
	}
	return &opInfos[op]
}

func (op Op) String() string {
	if name := op.info().name; name != "" {
		return name
	}
	return "op(" + strconv.Itoa(int(op)) + ")"
}

// LookupOp returns the operation with the given name.
func LookupOp(name string) (Op, bool) {
	for op := OpConst; op < numOps; op++ {
		if opInfos[op].name == name {
			return op, true
		}
	}
	return OpInvalid, false
}

// IsValid reports whether op is a node operation.
func (op Op) IsValid() bool { return op > OpInvalid && op < numOps }

// Arity returns the number of value inputs of the operation.
func (op Op) Arity() int { return op.info().arity }

// IsCommutative reports whether the inputs of the operation may be
// swapped.
func (op Op) IsCommutative() bool { return op.info().commutative }

// IsLogic reports whether the operation is a condition. Logic nodes have
// no value of their own and are consumed by conditionals and other
// logic nodes.
func (op Op) IsLogic() bool { return op.info().class == logicClass }

// IsSink reports whether the operation consumes a value without
// producing one.
func (op Op) IsSink() bool { return op.info().class == sinkClass }

// IsTrapping reports whether the operation can trap at run time.
func (op Op) IsTrapping() bool { return op.info().trapping }

// IsExact reports whether the operation traps on overflow instead of
// wrapping.
func (op Op) IsExact() bool { return op.info().exact }

// isArith reports whether the operation is a binary operation of the
// stamp tables.
func (op Op) isArith() bool {
	switch op {
	case OpAdd, OpSub, OpMul, OpMulHigh, OpUMulHigh, OpAnd, OpOr, OpXor,
		OpMin, OpMax, OpUMin, OpUMax, OpCompress, OpExpand, OpFloatDiv, OpFloatRem,
		OpSignedDiv, OpSignedRem, OpUnsignedDiv, OpUnsignedRem:
		return true
	}
	return false
}

func (op Op) isShift() bool {
	return op == OpShl || op == OpShr || op == OpUShr
}

func (op Op) isIntegerCompare() bool {
	return op == OpIntegerEquals || op == OpIntegerLessThan || op == OpIntegerBelow
}

func (op Op) isFloatCompare() bool {
	return op == OpFloatEquals || op == OpFloatLessThan
}
