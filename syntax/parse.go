// Package syntax reads graphs in the textual format printed by
// ir.Formatter.
//
// A graph file has one statement per line:
//
//	%0 = param x i32 [0, 100]
//	%1 = add %0 1:i32
//	%2 = div %1 %0 guard %3
//	return r %2
//
// Constants are written inline as value:type, true, false, or null.
// Nodes are installed as written, without canonicalization.
package syntax // import "github.com/andrewarchi/seanode/syntax"

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/andrewarchi/seanode/ir"
	"github.com/andrewarchi/seanode/ir/stamp"
)

// Error is a syntax or construction error in a graph file.
type Error struct {
	Pos Pos
	Msg string
}

func (err *Error) Error() string {
	return fmt.Sprintf("%v: %s", err.Pos, err.Msg)
}

type parser struct {
	l      *lexer
	tok    item
	g      *ir.Graph
	values map[string]*ir.Node
}

// Parse reads a graph from src. The filename is used in error
// positions.
func Parse(filename string, src []byte) (*ir.Graph, error) {
	p := &parser{
		l:      newLexer(filename, src),
		g:      ir.NewGraph(),
		values: make(map[string]*ir.Node),
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	for p.tok.tok != EOF {
		if p.tok.tok != Newline {
			if err := p.stmt(); err != nil {
				return nil, err
			}
		}
		switch p.tok.tok {
		case Newline:
			if err := p.next(); err != nil {
				return nil, err
			}
		case EOF:
		default:
			return nil, p.unexpected("end of line")
		}
	}
	return p.g, nil
}

func (p *parser) next() error {
	tok, err := p.l.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) errorf(pos Pos, format string, args ...interface{}) error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) unexpected(want string) error {
	got := p.tok.tok.String()
	if p.tok.tok == Word {
		got = strconv.Quote(p.tok.lit)
	}
	return p.errorf(p.tok.pos, "expected %s, got %s", want, got)
}

func (p *parser) expect(tok token) (item, error) {
	it := p.tok
	if it.tok != tok {
		return it, p.unexpected(tok.String())
	}
	return it, p.next()
}

func (p *parser) word(what string) (item, error) {
	if p.tok.tok != Word {
		return p.tok, p.unexpected(what)
	}
	it := p.tok
	return it, p.next()
}

// keyword consumes the word kw if it is next.
func (p *parser) keyword(kw string) (bool, error) {
	if p.tok.tok != Word || p.tok.lit != kw {
		return false, nil
	}
	return true, p.next()
}

func (p *parser) stmt() error {
	start := p.tok
	if ok, err := p.keyword("return"); ok || err != nil {
		if err != nil {
			return err
		}
		name, err := p.word("return name")
		if err != nil {
			return err
		}
		v, err := p.operand()
		if err != nil {
			return err
		}
		_, err = p.add(start.pos, ir.NodeSpec{Op: ir.OpReturn, Inputs: []*ir.Node{v}, Aux: ir.Aux{Name: name.lit}})
		return err
	}

	def, err := p.word("value name")
	if err != nil {
		return err
	}
	if !strings.HasPrefix(def.lit, "%") || len(def.lit) == 1 {
		return p.errorf(def.pos, "invalid value name %q", def.lit)
	}
	if _, ok := p.values[def.lit]; ok {
		return p.errorf(def.pos, "%s redefined", def.lit)
	}
	if _, err := p.expect(Equals); err != nil {
		return err
	}
	opTok, err := p.word("operation")
	if err != nil {
		return err
	}
	op, ok := ir.LookupOp(opTok.lit)
	if !ok || op == ir.OpReturn {
		return p.errorf(opTok.pos, "unknown operation %q", opTok.lit)
	}
	spec := ir.NodeSpec{Op: op}
	switch op {
	case ir.OpParam:
		err = p.param(&spec)
	case ir.OpConst:
		var c stamp.Const
		if c, err = p.constant(); err == nil {
			spec.Aux.Const = c
		}
	case ir.OpLogicConst:
		spec.Aux.Value, err = p.boolean()
	case ir.OpConvert:
		err = p.convert(&spec)
	default:
		err = p.operands(&spec)
	}
	if err != nil {
		return err
	}

	guardPos := p.tok.pos
	var guard *ir.Node
	if ok, err := p.keyword("guard"); ok || err != nil {
		if err != nil {
			return err
		}
		if !op.IsTrapping() {
			return p.errorf(guardPos, "guard on non-trapping %v", op)
		}
		if guard, err = p.operand(); err != nil {
			return err
		}
		if !guard.Op().IsLogic() {
			return p.errorf(guardPos, "guard %v is not a condition", guard)
		}
	}
	n, err := p.add(opTok.pos, spec)
	if err != nil {
		return err
	}
	if guard != nil {
		if n.Guard() != nil && n.Guard() != guard {
			return p.errorf(guardPos, "%s already defined with guard %v", def.lit, n.Guard())
		}
		p.g.SetGuard(n, guard)
	}
	p.values[def.lit] = n
	return nil
}

func (p *parser) add(pos Pos, spec ir.NodeSpec) (*ir.Node, error) {
	n, err := p.g.AddChecked(spec)
	if err != nil {
		return nil, p.errorf(pos, "%v", err)
	}
	return n, nil
}

func (p *parser) param(spec *ir.NodeSpec) error {
	name, err := p.word("parameter name")
	if err != nil {
		return err
	}
	t, err := p.typ()
	if err != nil {
		return err
	}
	spec.Aux = ir.Aux{Name: name.lit, To: t}
	spec.Stamp = t.Unrestricted()
	pos := p.tok.pos
	switch t.Kind {
	case stamp.IntKind:
		if p.tok.tok != LBrack {
			return nil
		}
		lo, hi, err := p.interval()
		if err != nil {
			return err
		}
		if lo > hi || lo < stamp.MinValue(t.Bits) || hi > stamp.MaxValue(t.Bits) {
			return p.errorf(pos, "invalid %v range [%d, %d]", t, lo, hi)
		}
		spec.Stamp = stamp.IntegerRange(t.Bits, lo, hi)
	case stamp.FloatKind:
		if ok, err := p.keyword("nonnan"); ok || err != nil {
			spec.Stamp = stamp.NewFloatStamp(t.Bits, math.Inf(-1), math.Inf(1), true)
			return err
		}
	case stamp.ObjectKind:
		if ok, err := p.keyword("null"); ok || err != nil {
			spec.Stamp = stamp.ObjectNull()
			return err
		}
		if ok, err := p.keyword("nonnull"); ok || err != nil {
			spec.Stamp = stamp.ObjectNonNull()
			return err
		}
	default:
		return p.errorf(pos, "parameter of type %v", t)
	}
	return nil
}

// interval parses [lo, hi].
func (p *parser) interval() (lo, hi int64, err error) {
	if _, err = p.expect(LBrack); err != nil {
		return
	}
	if lo, err = p.integer(); err != nil {
		return
	}
	if _, err = p.expect(Comma); err != nil {
		return
	}
	if hi, err = p.integer(); err != nil {
		return
	}
	_, err = p.expect(RBrack)
	return
}

func (p *parser) integer() (int64, error) {
	it, err := p.word("integer")
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(it.lit, 0, 64)
	if err != nil {
		return 0, p.errorf(it.pos, "invalid integer %q", it.lit)
	}
	return v, nil
}

func (p *parser) typ() (stamp.Type, error) {
	it, err := p.word("type")
	if err != nil {
		return stamp.Type{}, err
	}
	t, ok := stamp.ParseType(it.lit)
	if !ok || t.Kind == stamp.VoidKind {
		return stamp.Type{}, p.errorf(it.pos, "invalid type %q", it.lit)
	}
	return t, nil
}

func (p *parser) boolean() (bool, error) {
	it, err := p.word("true or false")
	if err != nil {
		return false, err
	}
	switch it.lit {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, p.errorf(it.pos, "expected true or false, got %q", it.lit)
}

func (p *parser) convert(spec *ir.NodeSpec) error {
	it, err := p.word("conversion")
	if err != nil {
		return err
	}
	conv, ok := stamp.ParseConvertOp(it.lit)
	if !ok {
		return p.errorf(it.pos, "unknown conversion %q", it.lit)
	}
	x, err := p.operand()
	if err != nil {
		return err
	}
	t, err := p.typ()
	if err != nil {
		return err
	}
	spec.Inputs = []*ir.Node{x}
	spec.Aux = ir.Aux{Convert: conv, To: t}
	return nil
}

func (p *parser) operands(spec *ir.NodeSpec) error {
	op := spec.Op
	for i := 0; i < op.Arity(); i++ {
		if p.tok.tok == Bang {
			if op != ir.OpLogicOr {
				return p.errorf(p.tok.pos, "negated input of %v", op)
			}
			if err := p.next(); err != nil {
				return err
			}
			if i == 0 {
				spec.Aux.XNegated = true
			} else {
				spec.Aux.YNegated = true
			}
		}
		in, err := p.operand()
		if err != nil {
			return err
		}
		spec.Inputs = append(spec.Inputs, in)
	}
	if op == ir.OpFloatEquals || op == ir.OpFloatLessThan {
		ok, err := p.keyword("unordered")
		spec.Aux.UnorderedIsTrue = ok
		return err
	}
	return nil
}

// operand parses a value reference or an inline constant.
func (p *parser) operand() (*ir.Node, error) {
	it := p.tok
	if it.tok != Word {
		return nil, p.unexpected("operand")
	}
	switch {
	case strings.HasPrefix(it.lit, "%"):
		n, ok := p.values[it.lit]
		if !ok {
			return nil, p.errorf(it.pos, "%s used before definition", it.lit)
		}
		return n, p.next()
	case it.lit == "true" || it.lit == "false":
		if err := p.next(); err != nil {
			return nil, err
		}
		return p.add(it.pos, ir.NodeSpec{Op: ir.OpLogicConst, Aux: ir.Aux{Value: it.lit == "true"}})
	}
	c, err := p.constant()
	if err != nil {
		return nil, err
	}
	return p.add(it.pos, ir.NodeSpec{Op: ir.OpConst, Aux: ir.Aux{Const: c}})
}

// constant parses null or value:type.
func (p *parser) constant() (stamp.Const, error) {
	if ok, err := p.keyword("null"); ok || err != nil {
		return stamp.NullConst(), err
	}
	val, err := p.word("constant")
	if err != nil {
		return stamp.Const{}, err
	}
	if _, err := p.expect(Colon); err != nil {
		return stamp.Const{}, err
	}
	t, err := p.typ()
	if err != nil {
		return stamp.Const{}, err
	}
	c, err := ParseConst(val.lit, t)
	if err != nil {
		return stamp.Const{}, p.errorf(val.pos, "%s", err.Error())
	}
	return c, nil
}

// ParseConst parses the value part of a constant of type t, as printed
// before the colon of an inline constant.
func ParseConst(lit string, t stamp.Type) (stamp.Const, error) {
	switch t.Kind {
	case stamp.IntKind:
		v, err := strconv.ParseInt(lit, 0, 64)
		if err != nil {
			u, uerr := strconv.ParseUint(lit, 0, 64)
			if uerr != nil || t.Bits != 64 {
				return stamp.Const{}, fmt.Errorf("invalid integer %q", lit)
			}
			v = int64(u)
		}
		if !fitsInt(v, t.Bits) {
			return stamp.Const{}, fmt.Errorf("%s overflows %v", lit, t)
		}
		return stamp.IntConst(t.Bits, v), nil
	case stamp.FloatKind:
		f, err := strconv.ParseFloat(lit, int(t.Bits))
		if err != nil {
			return stamp.Const{}, fmt.Errorf("invalid float %q", lit)
		}
		return stamp.FloatConst(t.Bits, f), nil
	case stamp.ObjectKind:
		if lit == "null" {
			return stamp.NullConst(), nil
		}
	}
	return stamp.Const{}, fmt.Errorf("invalid %v constant %q", t, lit)
}

// fitsInt reports whether v is representable in the width as either a
// signed or an unsigned value.
func fitsInt(v int64, bits uint8) bool {
	if bits == 64 {
		return true
	}
	return v >= stamp.MinValue(bits) && v <= int64(stamp.Mask(bits))
}
