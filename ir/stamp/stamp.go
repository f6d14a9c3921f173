// Package stamp describes the abstract values of IR nodes. A stamp is a
// sound over-approximation of the values a node can produce: integer
// ranges with known bits, floating-point ranges with NaN tracking, and
// object nullness. The package also holds the per-kind operation tables
// that fold constants and stamps through arithmetic.
package stamp // import "github.com/andrewarchi/seanode/ir/stamp"

import (
	"fmt"
	"strconv"
)

// Kind is the primitive kind of a stamp.
type Kind uint8

// Stamp kinds.
const (
	VoidKind Kind = iota
	IntKind
	FloatKind
	ObjectKind
)

func (k Kind) String() string {
	switch k {
	case VoidKind:
		return "void"
	case IntKind:
		return "int"
	case FloatKind:
		return "float"
	case ObjectKind:
		return "object"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Type is a primitive kind together with its width in bits. Object and
// void types have zero width.
type Type struct {
	Kind Kind
	Bits uint8
}

// Common types.
var (
	I8     = Type{IntKind, 8}
	I16    = Type{IntKind, 16}
	I32    = Type{IntKind, 32}
	I64    = Type{IntKind, 64}
	F32    = Type{FloatKind, 32}
	F64    = Type{FloatKind, 64}
	Obj    = Type{ObjectKind, 0}
	VoidTy = Type{VoidKind, 0}
)

// IntType returns the integer type of the given width.
func IntType(bits uint8) Type {
	checkIntBits(bits)
	return Type{IntKind, bits}
}

// FloatType returns the float type of the given width.
func FloatType(bits uint8) Type {
	checkFloatBits(bits)
	return Type{FloatKind, bits}
}

// Unrestricted returns the stamp containing every value of the type.
func (t Type) Unrestricted() Stamp {
	switch t.Kind {
	case IntKind:
		return IntegerUnrestricted(t.Bits)
	case FloatKind:
		return FloatUnrestricted(t.Bits)
	case ObjectKind:
		return ObjectUnrestricted()
	}
	return Void()
}

func (t Type) String() string {
	switch t.Kind {
	case IntKind:
		return "i" + strconv.Itoa(int(t.Bits))
	case FloatKind:
		return "f" + strconv.Itoa(int(t.Bits))
	case ObjectKind:
		return "object"
	case VoidKind:
		return "void"
	}
	return t.Kind.String()
}

// ParseType parses a type name such as i32, f64, or object.
func ParseType(s string) (Type, bool) {
	switch s {
	case "object":
		return Obj, true
	case "void":
		return VoidTy, true
	}
	if len(s) < 2 {
		return Type{}, false
	}
	n, err := strconv.ParseUint(s[1:], 10, 8)
	if err != nil {
		return Type{}, false
	}
	switch s[0] {
	case 'i':
		if n >= 1 && n <= 64 {
			return Type{IntKind, uint8(n)}, true
		}
	case 'f':
		if n == 32 || n == 64 {
			return Type{FloatKind, uint8(n)}, true
		}
	}
	return Type{}, false
}

// TypeOf returns the type of a stamp.
func TypeOf(s Stamp) Type {
	return Type{s.Kind(), s.Bits()}
}

// Stamp is an abstract value: the set of values a node may produce.
// Stamps are immutable and compared with Equals, never by identity.
type Stamp interface {
	Kind() Kind
	// Bits is the width of a primitive stamp or zero.
	Bits() uint8
	// Meet returns a stamp containing the values of both stamps.
	Meet(other Stamp) Stamp
	// Join returns a stamp containing only values in both stamps.
	Join(other Stamp) Stamp
	Empty() Stamp
	Unrestricted() Stamp
	IsEmpty() bool
	IsUnrestricted() bool
	// AsConstant returns the single value of the stamp, if any.
	AsConstant() (Const, bool)
	Equals(other Stamp) bool
	// IsCompatible reports whether the stamps describe the same type.
	IsCompatible(other Stamp) bool
	String() string
}

// ForConst returns the stamp containing exactly c.
func ForConst(c Const) Stamp {
	switch c.kind {
	case IntKind:
		return IntegerConst(c.bits, c.Int64())
	case FloatKind:
		return FloatConstStamp(c)
	case ObjectKind:
		return ObjectNull()
	}
	panic(fmt.Sprintf("stamp: no stamp for constant %v", c))
}

func incompatible(a, b Stamp) string {
	return fmt.Sprintf("stamp: incompatible stamps %v and %v", a, b)
}

// VoidStamp is the stamp of nodes that produce no value, such as logic
// and sink nodes.
type VoidStamp struct{}

// Void returns the void stamp.
func Void() Stamp { return VoidStamp{} }

func (VoidStamp) Kind() Kind  { return VoidKind }
func (VoidStamp) Bits() uint8 { return 0 }

func (s VoidStamp) Meet(other Stamp) Stamp {
	s.check(other)
	return s
}

func (s VoidStamp) Join(other Stamp) Stamp {
	s.check(other)
	return s
}

func (s VoidStamp) Empty() Stamp            { return s }
func (s VoidStamp) Unrestricted() Stamp     { return s }
func (VoidStamp) IsEmpty() bool             { return false }
func (VoidStamp) IsUnrestricted() bool      { return true }
func (VoidStamp) AsConstant() (Const, bool) { return Const{}, false }
func (VoidStamp) Equals(other Stamp) bool   { return other.Kind() == VoidKind }
func (VoidStamp) IsCompatible(o Stamp) bool { return o.Kind() == VoidKind }
func (VoidStamp) String() string            { return "void" }

func (s VoidStamp) check(other Stamp) {
	if _, ok := other.(VoidStamp); !ok {
		panic(incompatible(s, other))
	}
}

// TriState is the result of a query that may be undecidable.
type TriState uint8

// TriState values.
const (
	Unknown TriState = iota
	True
	False
)

// TriStateOf converts b to a known TriState.
func TriStateOf(b bool) TriState {
	if b {
		return True
	}
	return False
}

// IsKnown reports whether t is True or False.
func (t TriState) IsKnown() bool { return t != Unknown }

// Negate swaps True and False.
func (t TriState) Negate() TriState {
	switch t {
	case True:
		return False
	case False:
		return True
	}
	return Unknown
}

func (t TriState) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	}
	return "unknown"
}
