package stamp

import (
	"fmt"
	"math"
	"strconv"
)

// CanonicalCondition is one of the three comparison predicates that
// compare nodes carry. Every other condition is expressed by mirroring
// the operands or negating the result.
type CanonicalCondition uint8

// Canonical conditions.
const (
	EQ CanonicalCondition = iota // equal
	LT                           // signed less than, or ordered float less than
	BT                           // unsigned below
)

func (c CanonicalCondition) String() string {
	switch c {
	case EQ:
		return "eq"
	case LT:
		return "lt"
	case BT:
		return "bt"
	}
	return "cond(" + strconv.Itoa(int(c)) + ")"
}

// Condition is a comparison predicate.
type Condition uint8

// Conditions. BT, BE, AT, and AE compare unsigned.
const (
	CondEQ Condition = iota
	CondNE
	CondLT
	CondLE
	CondGT
	CondGE
	CondBT
	CondBE
	CondAT
	CondAE
)

var conditionNames = [...]string{"eq", "ne", "lt", "le", "gt", "ge", "bt", "be", "at", "ae"}

func (c Condition) String() string {
	if int(c) < len(conditionNames) {
		return conditionNames[c]
	}
	return "condition(" + strconv.Itoa(int(c)) + ")"
}

// ParseCondition looks up a condition by name.
func ParseCondition(s string) (Condition, bool) {
	for i, name := range conditionNames {
		if name == s {
			return Condition(i), true
		}
	}
	return 0, false
}

// Canonicalize expresses c as a canonical condition applied to
// mirrored operands when mirror is set and negated when negate is set.
func (c Condition) Canonicalize() (cond CanonicalCondition, mirror, negate bool) {
	switch c {
	case CondEQ:
		return EQ, false, false
	case CondNE:
		return EQ, false, true
	case CondLT:
		return LT, false, false
	case CondGE:
		return LT, false, true
	case CondGT:
		return LT, true, false
	case CondLE:
		return LT, true, true
	case CondBT:
		return BT, false, false
	case CondAE:
		return BT, false, true
	case CondAT:
		return BT, true, false
	case CondBE:
		return BT, true, true
	}
	panic(fmt.Sprintf("stamp: invalid condition %v", c))
}

// Fold evaluates x c y. Float comparisons involving NaN are false unless
// unorderedIsTrue is set.
func (c CanonicalCondition) Fold(x, y Const, unorderedIsTrue bool) bool {
	if x.kind != y.kind || x.bits != y.bits {
		panic(fmt.Sprintf("stamp: cannot compare %v and %v", x, y))
	}
	switch x.kind {
	case IntKind:
		switch c {
		case EQ:
			return x.Int64() == y.Int64()
		case LT:
			return x.Int64() < y.Int64()
		case BT:
			return x.Uint64() < y.Uint64()
		}
	case FloatKind:
		a, b := x.Float64(), y.Float64()
		if math.IsNaN(a) || math.IsNaN(b) {
			return unorderedIsTrue
		}
		switch c {
		case EQ:
			return a == b
		case LT:
			return a < b
		}
	case ObjectKind:
		if c == EQ {
			return true
		}
	}
	panic(fmt.Sprintf("stamp: invalid comparison %v of %v", c, x.kind))
}

// FoldStamps evaluates x c y over every pair of values of the stamps.
func (c CanonicalCondition) FoldStamps(x, y Stamp, unorderedIsTrue bool) TriState {
	if !x.IsCompatible(y) {
		panic(incompatible(x, y))
	}
	if x.IsEmpty() || y.IsEmpty() {
		return Unknown
	}
	if a, ok := x.AsConstant(); ok {
		if b, ok := y.AsConstant(); ok {
			return TriStateOf(c.Fold(a, b, unorderedIsTrue))
		}
	}
	switch a := x.(type) {
	case IntegerStamp:
		b := y.(IntegerStamp)
		switch c {
		case EQ:
			if a.Join(b).IsEmpty() {
				return False
			}
		case LT:
			if a.upper < b.lower {
				return True
			}
			if a.lower >= b.upper {
				return False
			}
		case BT:
			alo, ahi := a.UnsignedBounds()
			blo, bhi := b.UnsignedBounds()
			if ahi < blo {
				return True
			}
			if alo >= bhi {
				return False
			}
		}
	case FloatStamp:
		b := y.(FloatStamp)
		if a.IsNaN() || b.IsNaN() {
			return TriStateOf(unorderedIsTrue)
		}
		if !a.nonNaN || !b.nonNaN {
			return Unknown
		}
		// Bounds are compared numerically: -0.0 == +0.0.
		switch c {
		case EQ:
			if a.upper < b.lower || b.upper < a.lower {
				return False
			}
		case LT:
			if a.upper < b.lower {
				return True
			}
			if a.lower >= b.upper {
				return False
			}
		}
	case ObjectStamp:
		b := y.(ObjectStamp)
		if c == EQ {
			if a.alwaysNull && b.alwaysNull {
				return True
			}
			if (a.alwaysNull && b.nonNull) || (a.nonNull && b.alwaysNull) {
				return False
			}
		}
	}
	return Unknown
}
