// Package dump encodes graphs in a compact bit-packed snapshot format.
//
// A snapshot starts with the magic "SEA\x01" and the node count, then
// lists the nodes in schedule order. Each node is an op code, its aux
// data, and the indexes of its inputs and guard, which always refer to
// earlier nodes. Index fields are as wide as the node count requires.
package dump // import "github.com/andrewarchi/seanode/ir/dump"

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/bits"

	"github.com/andrewarchi/seanode/ir"
	"github.com/andrewarchi/seanode/ir/stamp"
	"github.com/icza/bitio"
)

const magic = "SEA\x01"

// Field widths in bits.
const (
	opBits      = 6
	kindBits    = 2
	widthBits   = 7
	convertBits = 3
	countBits   = 32
	nameLenBits = 16
)

// ErrMagic is returned when a snapshot does not start with the magic.
var ErrMagic = errors.New("dump: not a graph snapshot")

// Encode writes a snapshot of the live nodes of g to w.
func Encode(w io.Writer, g *ir.Graph) error {
	bw := bitio.NewWriter(w)
	e := &encoder{w: bw, index: make(map[*ir.Node]uint64)}
	sched := g.Schedule()
	e.indexBits = uint8(bits.Len(uint(len(sched))))
	bw.TryWrite([]byte(magic))
	bw.TryWriteBits(uint64(len(sched)), countBits)
	for i, n := range sched {
		e.node(n)
		e.index[n] = uint64(i)
	}
	if bw.TryError != nil {
		return fmt.Errorf("dump: %w", bw.TryError)
	}
	if err := bw.Close(); err != nil {
		return fmt.Errorf("dump: %w", err)
	}
	return nil
}

type encoder struct {
	w         *bitio.Writer
	index     map[*ir.Node]uint64
	indexBits uint8
}

func (e *encoder) node(n *ir.Node) {
	op := n.Op()
	e.w.TryWriteBits(uint64(op), opBits)
	aux := n.Aux()
	switch op {
	case ir.OpConst:
		e.constant(aux.Const)
	case ir.OpParam:
		e.name(aux.Name)
		e.typ(aux.To)
		e.stamp(n.Stamp())
	case ir.OpConvert:
		e.w.TryWriteBits(uint64(aux.Convert), convertBits)
		e.typ(aux.To)
	case ir.OpFloatEquals, ir.OpFloatLessThan:
		e.w.TryWriteBool(aux.UnorderedIsTrue)
	case ir.OpLogicConst:
		e.w.TryWriteBool(aux.Value)
	case ir.OpLogicOr:
		e.w.TryWriteBool(aux.XNegated)
		e.w.TryWriteBool(aux.YNegated)
	case ir.OpReturn:
		e.name(aux.Name)
	}
	for _, in := range n.Inputs() {
		e.w.TryWriteBits(e.index[in], e.indexBits)
	}
	if op.IsTrapping() {
		e.w.TryWriteBool(n.IsFloating())
		e.w.TryWriteBool(n.Guard() != nil)
		if n.Guard() != nil {
			e.w.TryWriteBits(e.index[n.Guard()], e.indexBits)
		}
	}
}

func (e *encoder) typ(t stamp.Type) {
	e.w.TryWriteBits(uint64(t.Kind), kindBits)
	e.w.TryWriteBits(uint64(t.Bits), widthBits)
}

func (e *encoder) constant(c stamp.Const) {
	e.typ(c.Type())
	if c.Kind() != stamp.ObjectKind {
		e.w.TryWriteBits(c.Raw(), c.Bits())
	}
}

func (e *encoder) name(s string) {
	e.w.TryWriteBits(uint64(len(s)), nameLenBits)
	e.w.TryWrite([]byte(s))
}

// stamp writes the declared range of a parameter.
func (e *encoder) stamp(s stamp.Stamp) {
	switch s := s.(type) {
	case stamp.IntegerStamp:
		w := s.Bits()
		m := stamp.Mask(w)
		e.w.TryWriteBits(uint64(s.Lower())&m, w)
		e.w.TryWriteBits(uint64(s.Upper())&m, w)
		e.w.TryWriteBits(s.DownMask()&m, w)
		e.w.TryWriteBits(s.UpMask()&m, w)
	case stamp.FloatStamp:
		e.w.TryWriteBits(math.Float64bits(s.Lower()), 64)
		e.w.TryWriteBits(math.Float64bits(s.Upper()), 64)
		e.w.TryWriteBool(s.IsNonNaN())
	case stamp.ObjectStamp:
		e.w.TryWriteBool(s.NonNull())
		e.w.TryWriteBool(s.AlwaysNull())
	}
}

// Decode reads a snapshot into a new graph. Nodes are installed as
// recorded, without canonicalization.
func Decode(r io.Reader) (*ir.Graph, error) {
	br := bitio.NewReader(r)
	var m [len(magic)]byte
	if _, err := io.ReadFull(br, m[:]); err != nil {
		return nil, fmt.Errorf("dump: %w", err)
	}
	if string(m[:]) != magic {
		return nil, ErrMagic
	}
	count, err := br.ReadBits(countBits)
	if err != nil {
		return nil, fmt.Errorf("dump: %w", err)
	}
	d := &decoder{
		r:         br,
		g:         ir.NewGraph(),
		indexBits: uint8(bits.Len(uint(count))),
	}
	for i := uint64(0); i < count; i++ {
		if err := d.node(); err != nil {
			return nil, fmt.Errorf("dump: node %d: %w", i, err)
		}
	}
	return d.g, nil
}

type decoder struct {
	r         *bitio.Reader
	g         *ir.Graph
	nodes     []*ir.Node
	indexBits uint8
}

func (d *decoder) node() error {
	op := ir.Op(d.r.TryReadBits(opBits))
	if d.r.TryError == nil && !op.IsValid() {
		return fmt.Errorf("invalid op %d", op)
	}
	spec := ir.NodeSpec{Op: op}
	var err error
	switch op {
	case ir.OpConst:
		spec.Aux.Const, err = d.constant()
	case ir.OpParam:
		spec.Aux.Name = d.name()
		if spec.Aux.To, err = d.typ(); err == nil {
			spec.Stamp, err = d.stamp(spec.Aux.To)
		}
	case ir.OpConvert:
		spec.Aux.Convert = stamp.ConvertOp(d.r.TryReadBits(convertBits))
		spec.Aux.To, err = d.typ()
	case ir.OpFloatEquals, ir.OpFloatLessThan:
		spec.Aux.UnorderedIsTrue = d.r.TryReadBool()
	case ir.OpLogicConst:
		spec.Aux.Value = d.r.TryReadBool()
	case ir.OpLogicOr:
		spec.Aux.XNegated = d.r.TryReadBool()
		spec.Aux.YNegated = d.r.TryReadBool()
	case ir.OpReturn:
		spec.Aux.Name = d.name()
	}
	if err != nil {
		return err
	}
	for i := 0; i < op.Arity(); i++ {
		in, err := d.ref()
		if err != nil {
			return err
		}
		spec.Inputs = append(spec.Inputs, in)
	}
	var floating bool
	var guard *ir.Node
	if op.IsTrapping() {
		floating = d.r.TryReadBool()
		if d.r.TryReadBool() {
			if guard, err = d.ref(); err != nil {
				return err
			}
		}
	}
	if d.r.TryError != nil {
		return d.r.TryError
	}
	n, err := d.g.AddChecked(spec)
	if err != nil {
		return err
	}
	if guard != nil {
		if !guard.Op().IsLogic() {
			return fmt.Errorf("guard %v is not a condition", guard)
		}
		d.g.SetGuard(n, guard)
	}
	if floating {
		n.TryFloat()
	}
	d.nodes = append(d.nodes, n)
	return nil
}

func (d *decoder) ref() (*ir.Node, error) {
	i := d.r.TryReadBits(d.indexBits)
	if d.r.TryError != nil {
		return nil, d.r.TryError
	}
	if i >= uint64(len(d.nodes)) {
		return nil, fmt.Errorf("forward reference to node %d", i)
	}
	return d.nodes[i], nil
}

func (d *decoder) typ() (stamp.Type, error) {
	kind := stamp.Kind(d.r.TryReadBits(kindBits))
	width := uint8(d.r.TryReadBits(widthBits))
	switch {
	case d.r.TryError != nil:
		return stamp.Type{}, d.r.TryError
	case kind == stamp.IntKind && (width == 1 || width == 8 || width == 16 || width == 32 || width == 64),
		kind == stamp.FloatKind && (width == 32 || width == 64),
		kind == stamp.ObjectKind && width == 0:
		return stamp.Type{Kind: kind, Bits: width}, nil
	}
	return stamp.Type{}, fmt.Errorf("invalid type %v with width %d", kind, width)
}

func (d *decoder) constant() (stamp.Const, error) {
	t, err := d.typ()
	if err != nil {
		return stamp.Const{}, err
	}
	if t.Kind == stamp.ObjectKind {
		return stamp.NullConst(), nil
	}
	raw := d.r.TryReadBits(t.Bits)
	switch {
	case t.Kind == stamp.IntKind:
		return stamp.IntConst(t.Bits, int64(raw)), nil
	case t.Bits == 32:
		return stamp.Float32Const(math.Float32frombits(uint32(raw))), nil
	}
	return stamp.Float64Const(math.Float64frombits(raw)), nil
}

func (d *decoder) name() string {
	n := d.r.TryReadBits(nameLenBits)
	b := make([]byte, n)
	d.r.TryRead(b)
	return string(b)
}

func (d *decoder) stamp(t stamp.Type) (stamp.Stamp, error) {
	switch t.Kind {
	case stamp.IntKind:
		w := t.Bits
		lower := stamp.SignExtend(d.r.TryReadBits(w), w)
		upper := stamp.SignExtend(d.r.TryReadBits(w), w)
		down := d.r.TryReadBits(w)
		up := d.r.TryReadBits(w)
		return stamp.NewIntegerStamp(w, lower, upper, down, up), nil
	case stamp.FloatKind:
		lower := math.Float64frombits(d.r.TryReadBits(64))
		upper := math.Float64frombits(d.r.TryReadBits(64))
		nonNaN := d.r.TryReadBool()
		return stamp.NewFloatStamp(t.Bits, lower, upper, nonNaN), nil
	case stamp.ObjectKind:
		nonNull := d.r.TryReadBool()
		alwaysNull := d.r.TryReadBool()
		return stamp.NewObjectStamp("", false, nonNull, alwaysNull), nil
	}
	return nil, fmt.Errorf("parameter of type %v", t)
}
