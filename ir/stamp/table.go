package stamp

import (
	"fmt"
	"strconv"
)

// BinaryOp is a binary arithmetic or bitwise operation.
type BinaryOp uint8

// Binary operations.
const (
	Add BinaryOp = iota
	Sub
	Mul
	MulHigh  // high half of the signed double-width product
	UMulHigh // high half of the unsigned double-width product
	Div      // signed division, truncated
	Rem      // signed remainder, with the sign of the dividend
	UDiv
	URem
	And
	Or
	Xor
	Min
	Max
	UMin
	UMax
	Compress // parallel bit extract
	Expand   // parallel bit deposit

	numBinaryOps
)

func (op BinaryOp) String() string {
	switch op {
	case Add:
		return "add"
	case Sub:
		return "sub"
	case Mul:
		return "mul"
	case MulHigh:
		return "mulhi"
	case UMulHigh:
		return "umulhi"
	case Div:
		return "div"
	case Rem:
		return "rem"
	case UDiv:
		return "udiv"
	case URem:
		return "urem"
	case And:
		return "and"
	case Or:
		return "or"
	case Xor:
		return "xor"
	case Min:
		return "min"
	case Max:
		return "max"
	case UMin:
		return "umin"
	case UMax:
		return "umax"
	case Compress:
		return "compress"
	case Expand:
		return "expand"
	}
	return "binaryop(" + strconv.Itoa(int(op)) + ")"
}

// UnaryOp is a unary arithmetic operation.
type UnaryOp uint8

// Unary operations.
const (
	Neg UnaryOp = iota
	Not
	Abs
	Sqrt
)

func (op UnaryOp) String() string {
	switch op {
	case Neg:
		return "neg"
	case Not:
		return "not"
	case Abs:
		return "abs"
	case Sqrt:
		return "sqrt"
	}
	return "unaryop(" + strconv.Itoa(int(op)) + ")"
}

// ShiftOp is an integer shift. The shift amount is masked by the width
// minus one.
type ShiftOp uint8

// Shift operations.
const (
	Shl ShiftOp = iota
	Shr
	UShr
)

func (op ShiftOp) String() string {
	switch op {
	case Shl:
		return "shl"
	case Shr:
		return "shr"
	case UShr:
		return "ushr"
	}
	return "shiftop(" + strconv.Itoa(int(op)) + ")"
}

// OpTable is the operation table of one stamp kind. Obtain it with
// ForStamp once and dispatch each operation through it.
type OpTable struct {
	kind Kind
}

// Operation tables.
var (
	IntegerOps = &OpTable{IntKind}
	FloatOps   = &OpTable{FloatKind}
)

// ForStamp returns the operation table for the kind of s. Stamps without
// arithmetic are an internal error.
func ForStamp(s Stamp) *OpTable {
	return ForKind(s.Kind())
}

// ForKind returns the operation table for a kind.
func ForKind(k Kind) *OpTable {
	switch k {
	case IntKind:
		return IntegerOps
	case FloatKind:
		return FloatOps
	}
	panic(fmt.Sprintf("stamp: no operation table for %v", k))
}

// Kind returns the kind the table operates on.
func (t *OpTable) Kind() Kind { return t.kind }

// Supports reports whether the table defines op.
func (t *OpTable) Supports(op BinaryOp) bool {
	if t.kind == IntKind {
		return op < numBinaryOps
	}
	switch op {
	case Add, Sub, Mul, Div, Rem, Min, Max:
		return true
	}
	return false
}

// SupportsUnary reports whether the table defines op.
func (t *OpTable) SupportsUnary(op UnaryOp) bool {
	if t.kind == IntKind {
		return op != Sqrt
	}
	return op != Not
}

func (t *OpTable) check(op BinaryOp) {
	if !t.Supports(op) {
		panic(fmt.Sprintf("stamp: %v has no %v operation", t.kind, op))
	}
}

// IsAssociative reports whether (x op y) op z == x op (y op z). Integer
// subtraction is reported associative in the sense that add/sub chains
// can be regrouped with sign tracking.
func (t *OpTable) IsAssociative(op BinaryOp) bool {
	if t.kind != IntKind {
		return false
	}
	switch op {
	case Add, Sub, Mul, And, Or, Xor, Min, Max, UMin, UMax:
		return true
	}
	return false
}

// IsCommutative reports whether x op y == y op x.
func (t *OpTable) IsCommutative(op BinaryOp) bool {
	switch op {
	case Add, Mul, Min, Max:
		return true
	case MulHigh, UMulHigh, And, Or, Xor, UMin, UMax:
		return t.kind == IntKind
	}
	return false
}

// IsNeutral reports whether c is a right identity of op: x op c == x for
// every x.
func (t *OpTable) IsNeutral(op BinaryOp, c Const) bool {
	t.check(op)
	if t.kind == IntKind {
		return isIntNeutral(op, c)
	}
	return isFloatNeutral(op, c)
}

// ZeroElement returns the value of x op x for every x in s, if the
// operation cancels itself over s.
func (t *OpTable) ZeroElement(op BinaryOp, s Stamp) (Const, bool) {
	t.check(op)
	switch op {
	case Sub:
		if t.kind == IntKind {
			return IntConst(s.Bits(), 0), true
		}
		// NaN - NaN and Inf - Inf are NaN.
		if f, ok := s.(FloatStamp); ok && f.IsFinite() {
			return FloatConst(s.Bits(), 0), true
		}
	case Xor:
		return IntConst(s.Bits(), 0), true
	}
	return Const{}, false
}

// FoldConstant evaluates x op y. It reports false when the operation
// would trap, as for integer division by zero.
func (t *OpTable) FoldConstant(op BinaryOp, x, y Const) (Const, bool) {
	t.check(op)
	if x.kind != t.kind || y.kind != t.kind || x.bits != y.bits {
		panic(fmt.Sprintf("stamp: cannot fold %v %v, %v", op, x, y))
	}
	if t.kind == IntKind {
		return foldInt(op, x, y)
	}
	return foldFloat(op, x, y), true
}

// FoldStamp returns the stamp of x op y for values drawn from x and y.
func (t *OpTable) FoldStamp(op BinaryOp, x, y Stamp) Stamp {
	t.check(op)
	if t.kind == IntKind {
		a, ok1 := x.(IntegerStamp)
		b, ok2 := y.(IntegerStamp)
		if !ok1 || !ok2 || a.width != b.width {
			panic(incompatible(x, y))
		}
		return foldIntStamp(op, a, b)
	}
	a, ok1 := x.(FloatStamp)
	b, ok2 := y.(FloatStamp)
	if !ok1 || !ok2 || a.width != b.width {
		panic(incompatible(x, y))
	}
	return foldFloatStamp(op, a, b)
}

// FoldUnary evaluates op x.
func (t *OpTable) FoldUnary(op UnaryOp, x Const) Const {
	if !t.SupportsUnary(op) || x.kind != t.kind {
		panic(fmt.Sprintf("stamp: cannot fold %v %v", op, x))
	}
	if t.kind == IntKind {
		return foldIntUnary(op, x)
	}
	return foldFloatUnary(op, x)
}

// FoldUnaryStamp returns the stamp of op x for values drawn from x.
func (t *OpTable) FoldUnaryStamp(op UnaryOp, x Stamp) Stamp {
	if !t.SupportsUnary(op) || x.Kind() != t.kind {
		panic(fmt.Sprintf("stamp: cannot fold %v %v", op, x))
	}
	if t.kind == IntKind {
		return foldIntUnaryStamp(op, x.(IntegerStamp))
	}
	return foldFloatUnaryStamp(op, x.(FloatStamp))
}

// ShiftAmountMask returns the mask applied to shift amounts of values of
// stamp s.
func (t *OpTable) ShiftAmountMask(s Stamp) int64 {
	if t.kind != IntKind || s.Kind() != IntKind {
		panic(fmt.Sprintf("stamp: no shift for %v", s))
	}
	return shiftMask(s.Bits())
}

func shiftMask(width uint8) int64 {
	if !IsPowerOf2(int64(width)) {
		panic(fmt.Sprintf("stamp: no shift for width %d", width))
	}
	return int64(width) - 1
}

// FoldShift evaluates x op amount, masking the amount.
func (t *OpTable) FoldShift(op ShiftOp, x Const, amount int64) Const {
	x.check(IntKind)
	s := uint(amount & shiftMask(x.bits))
	switch op {
	case Shl:
		return IntConst(x.bits, x.Int64()<<s)
	case Shr:
		return IntConst(x.bits, x.Int64()>>s)
	case UShr:
		return IntConst(x.bits, int64(x.Uint64()>>s))
	}
	panic(fmt.Sprintf("stamp: invalid shift %v", op))
}

// FoldShiftStamp returns the stamp of x op amount for values drawn from
// x and amount.
func (t *OpTable) FoldShiftStamp(op ShiftOp, x, amount Stamp) Stamp {
	a, ok1 := x.(IntegerStamp)
	s, ok2 := amount.(IntegerStamp)
	if !ok1 || !ok2 {
		panic(incompatible(x, amount))
	}
	return foldShiftStamp(op, a, s)
}
