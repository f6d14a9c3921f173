package codegen

import (
	"fmt"
	"io"
	"strings"

	"github.com/andrewarchi/seanode/ir"
	"github.com/andrewarchi/seanode/ir/stamp"
)

// TextEmitter writes a three-address listing. Its values are the names
// of temporaries and the spellings of constants.
type TextEmitter struct {
	b    strings.Builder
	next int
}

// EmitText writes the listing of g to w.
func EmitText(w io.Writer, g *ir.Graph) error {
	var t TextEmitter
	Generate(g, &t, nil)
	_, err := io.WriteString(w, t.String())
	return err
}

// String returns the listing emitted so far.
func (t *TextEmitter) String() string { return t.b.String() }

func (t *TextEmitter) def(typ stamp.Type, format string, args ...any) ir.Value {
	name := fmt.Sprintf("t%d", t.next)
	t.next++
	fmt.Fprintf(&t.b, "%s:%v = ", name, typ)
	fmt.Fprintf(&t.b, format, args...)
	t.b.WriteByte('\n')
	return name
}

func (t *TextEmitter) EmitConst(c stamp.Const) ir.Value {
	if c.Kind() == stamp.ObjectKind {
		return "null"
	}
	return c.String()
}

func (t *TextEmitter) EmitParam(name string, typ stamp.Type) ir.Value {
	return t.def(typ, "param %s", name)
}

func (t *TextEmitter) EmitNegate(a ir.Value, typ stamp.Type) ir.Value {
	return t.def(typ, "neg %v", a)
}
func (t *TextEmitter) EmitNot(a ir.Value, typ stamp.Type) ir.Value {
	return t.def(typ, "not %v", a)
}
func (t *TextEmitter) EmitMathAbs(a ir.Value, typ stamp.Type) ir.Value {
	return t.def(typ, "abs %v", a)
}
func (t *TextEmitter) EmitMathSqrt(a ir.Value, typ stamp.Type) ir.Value {
	return t.def(typ, "sqrt %v", a)
}
func (t *TextEmitter) EmitConvert(op stamp.ConvertOp, a ir.Value, from, to stamp.Type) ir.Value {
	return t.def(to, "%v %v:%v", op, a, from)
}

func (t *TextEmitter) binary(op string, a, b ir.Value, typ stamp.Type) ir.Value {
	return t.def(typ, "%s %v, %v", op, a, b)
}

func (t *TextEmitter) EmitAdd(a, b ir.Value, typ stamp.Type) ir.Value {
	return t.binary("add", a, b, typ)
}
func (t *TextEmitter) EmitSub(a, b ir.Value, typ stamp.Type) ir.Value {
	return t.binary("sub", a, b, typ)
}
func (t *TextEmitter) EmitMul(a, b ir.Value, typ stamp.Type) ir.Value {
	return t.binary("mul", a, b, typ)
}
func (t *TextEmitter) EmitMulHigh(a, b ir.Value, typ stamp.Type) ir.Value {
	return t.binary("mulhi", a, b, typ)
}
func (t *TextEmitter) EmitUMulHigh(a, b ir.Value, typ stamp.Type) ir.Value {
	return t.binary("umulhi", a, b, typ)
}
func (t *TextEmitter) EmitDiv(a, b ir.Value, typ stamp.Type) ir.Value {
	return t.binary("div", a, b, typ)
}
func (t *TextEmitter) EmitRem(a, b ir.Value, typ stamp.Type) ir.Value {
	return t.binary("rem", a, b, typ)
}
func (t *TextEmitter) EmitUDiv(a, b ir.Value, typ stamp.Type) ir.Value {
	return t.binary("udiv", a, b, typ)
}
func (t *TextEmitter) EmitURem(a, b ir.Value, typ stamp.Type) ir.Value {
	return t.binary("urem", a, b, typ)
}
func (t *TextEmitter) EmitAnd(a, b ir.Value, typ stamp.Type) ir.Value {
	return t.binary("and", a, b, typ)
}
func (t *TextEmitter) EmitOr(a, b ir.Value, typ stamp.Type) ir.Value {
	return t.binary("or", a, b, typ)
}
func (t *TextEmitter) EmitXor(a, b ir.Value, typ stamp.Type) ir.Value {
	return t.binary("xor", a, b, typ)
}
func (t *TextEmitter) EmitShl(a, b ir.Value, typ stamp.Type) ir.Value {
	return t.binary("shl", a, b, typ)
}
func (t *TextEmitter) EmitShr(a, b ir.Value, typ stamp.Type) ir.Value {
	return t.binary("shr", a, b, typ)
}
func (t *TextEmitter) EmitUShr(a, b ir.Value, typ stamp.Type) ir.Value {
	return t.binary("ushr", a, b, typ)
}
func (t *TextEmitter) EmitMinMax(op stamp.BinaryOp, a, b ir.Value, typ stamp.Type) ir.Value {
	return t.binary(op.String(), a, b, typ)
}
func (t *TextEmitter) EmitCompress(a, mask ir.Value, typ stamp.Type) ir.Value {
	return t.binary("compress", a, mask, typ)
}
func (t *TextEmitter) EmitExpand(a, mask ir.Value, typ stamp.Type) ir.Value {
	return t.binary("expand", a, mask, typ)
}
func (t *TextEmitter) EmitExact(op stamp.BinaryOp, a, b ir.Value, typ stamp.Type) ir.Value {
	return t.binary(op.String()+"exact", a, b, typ)
}

func (t *TextEmitter) EmitConditionalMove(cond stamp.CanonicalCondition, unorderedIsTrue bool, left, right ir.Value, cmpType stamp.Type, trueValue, falseValue ir.Value, typ stamp.Type) ir.Value {
	u := ""
	if unorderedIsTrue && cmpType.Kind == stamp.FloatKind {
		u = ".u"
	}
	return t.def(typ, "%v%s.%v %v, %v ? %v : %v", cond, u, cmpType, left, right, trueValue, falseValue)
}

func (t *TextEmitter) EmitIntegerTestMove(left, right ir.Value, cmpType stamp.Type, trueValue, falseValue ir.Value, typ stamp.Type) ir.Value {
	return t.def(typ, "test.%v %v, %v ? %v : %v", cmpType, left, right, trueValue, falseValue)
}

func (t *TextEmitter) EmitReturn(name string, v ir.Value, typ stamp.Type) {
	fmt.Fprintf(&t.b, "ret %s %v:%v\n", name, v, typ)
}
