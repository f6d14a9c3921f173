package ir

import (
	"fmt"
	"strings"

	"github.com/andrewarchi/seanode/ir/stamp"
)

// Formatter pretty prints graphs in the textual format read by package
// syntax. Constants are printed inline at their uses.
type Formatter struct {
	ids    map[*Node]int
	nextID int
}

// NewFormatter constructs a Formatter.
func NewFormatter() *Formatter {
	return &Formatter{
		ids:    make(map[*Node]int),
		nextID: 0,
	}
}

// FormatGraph pretty prints a graph, one node per line in schedule
// order.
func (f *Formatter) FormatGraph(g *Graph) string {
	var b strings.Builder
	for _, n := range g.Schedule() {
		if isInline(n) {
			continue
		}
		b.WriteString(f.FormatNode(n))
		b.WriteByte('\n')
	}
	return b.String()
}

func isInline(n *Node) bool {
	return n.op == OpConst || n.op == OpLogicConst
}

// FormatNode pretty prints a node definition.
func (f *Formatter) FormatNode(n *Node) string {
	var b strings.Builder
	if n.op == OpReturn {
		fmt.Fprintf(&b, "return %s %s", n.aux.Name, f.FormatValue(n.X()))
		return b.String()
	}
	b.WriteString(f.FormatValue(n))
	b.WriteString(" = ")
	b.WriteString(n.op.String())
	switch n.op {
	case OpConst, OpLogicConst:
		b.WriteByte(' ')
		b.WriteString(formatConst(n))
		return b.String()
	case OpParam:
		fmt.Fprintf(&b, " %s %v", n.aux.Name, n.aux.To)
		writeDeclaredStamp(&b, n.stamp)
		return b.String()
	case OpConvert:
		b.WriteByte(' ')
		b.WriteString(n.aux.Convert.String())
	}
	for i, in := range n.inputs {
		b.WriteByte(' ')
		if n.op == OpLogicOr && (i == 0 && n.aux.XNegated || i == 1 && n.aux.YNegated) {
			b.WriteByte('!')
		}
		b.WriteString(f.FormatValue(in))
	}
	switch {
	case n.op == OpConvert:
		fmt.Fprintf(&b, " %v", n.aux.To)
	case n.op.isFloatCompare() && n.aux.UnorderedIsTrue:
		b.WriteString(" unordered")
	}
	if n.guard != nil {
		b.WriteString(" guard ")
		b.WriteString(f.FormatValue(n.guard))
	}
	return b.String()
}

// FormatValue pretty prints a reference to a node.
func (f *Formatter) FormatValue(n *Node) string {
	if isInline(n) {
		return formatConst(n)
	}
	var id int
	if nid, ok := f.ids[n]; ok {
		id = nid
	} else {
		id = f.nextID
		f.ids[n] = f.nextID
		f.nextID++
	}
	return fmt.Sprintf("%%%d", id)
}

func formatConst(n *Node) string {
	if n.op == OpLogicConst {
		if n.aux.Value {
			return "true"
		}
		return "false"
	}
	c := n.aux.Const
	if c.Kind() == stamp.ObjectKind {
		return "null"
	}
	return c.String() + ":" + c.Type().String()
}

// writeDeclaredStamp writes the part of a parameter stamp that the
// textual format can express.
func writeDeclaredStamp(b *strings.Builder, s stamp.Stamp) {
	switch s := s.(type) {
	case stamp.IntegerStamp:
		if s.Lower() != stamp.MinValue(s.Bits()) || s.Upper() != stamp.MaxValue(s.Bits()) {
			fmt.Fprintf(b, " [%d, %d]", s.Lower(), s.Upper())
		}
	case stamp.FloatStamp:
		if s.IsNonNaN() {
			b.WriteString(" nonnan")
		}
	case stamp.ObjectStamp:
		switch {
		case s.AlwaysNull():
			b.WriteString(" null")
		case s.NonNull():
			b.WriteString(" nonnull")
		}
	}
}
