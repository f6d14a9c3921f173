package optimize

import (
	"testing"

	"github.com/andrewarchi/seanode/ir"
	"github.com/andrewarchi/seanode/ir/stamp"
)

// raw installs a node without canonicalizing it.
func raw(g *ir.Graph, op ir.Op, inputs ...*ir.Node) *ir.Node {
	return g.AddOrUnique(ir.NodeSpec{Op: op, Inputs: inputs})
}

func TestCanonicalizeFold(t *testing.T) {
	g := ir.NewGraph()
	x := g.NewParam("x", stamp.I32.Unrestricted())
	zero := g.IntConst(32, 0)
	a := raw(g, ir.OpAdd, x, zero)
	r := g.Return("r", raw(g, ir.OpMul, a, g.IntConst(32, 1)))

	stats := Canonicalize(g, Options{})
	if !stats.Converged {
		t.Errorf("got no fixed point")
	}
	if r.X() != x {
		t.Errorf("(x + 0) * 1: got %v, want %v", r.X(), x)
	}
	if !a.IsDead() {
		t.Errorf("x + 0: got live")
	}
	if stats.Rewritten != 2 {
		t.Errorf("got %d rewrites, want 2", stats.Rewritten)
	}
	if err := g.Verify(); err != nil {
		t.Error(err)
	}
}

func TestCanonicalizeReassociate(t *testing.T) {
	g := ir.NewGraph()
	x := g.NewParam("x", stamp.I32.Unrestricted())
	inner := raw(g, ir.OpAdd, x, g.IntConst(32, 3))
	r := g.Return("r", raw(g, ir.OpAdd, inner, g.IntConst(32, 5)))

	Canonicalize(g, Options{})
	sum := r.X()
	if sum.Op() != ir.OpAdd || sum.X() != x {
		t.Fatalf("(x + 3) + 5: got %v", sum)
	}
	if c, ok := sum.Y().AsConst(); !ok || c.Int64() != 8 {
		t.Errorf("(x + 3) + 5: got constant %v, want 8", sum.Y())
	}
	if err := g.Verify(); err != nil {
		t.Error(err)
	}
}

func TestCanonicalizeMerge(t *testing.T) {
	g := ir.NewGraph()
	x := g.NewParam("x", stamp.I32.Unrestricted())
	y := g.NewParam("y", stamp.I32.Unrestricted())
	z := g.NewParam("z", stamp.I32.Unrestricted())
	r1 := g.Return("r1", raw(g, ir.OpSub, x, y))
	r2 := g.Return("r2", raw(g, ir.OpSub, x, z))
	g.ReplaceAtUsages(z, y)

	stats := Canonicalize(g, Options{})
	if r1.X() != r2.X() {
		t.Errorf("x - y twice: got %v and %v, want one node", r1.X(), r2.X())
	}
	if stats.Merged != 1 {
		t.Errorf("got %d merges, want 1", stats.Merged)
	}
	if err := g.Verify(); err != nil {
		t.Error(err)
	}
}

func TestCanonicalizeGuard(t *testing.T) {
	g := ir.NewGraph()
	x := g.NewParam("x", stamp.I32.Unrestricted())
	y := g.NewParam("y", stamp.I32.Unrestricted())
	z := g.NewParam("z", stamp.I32.Unrestricted())
	r1 := g.Return("r1", raw(g, ir.OpSignedDiv, x, y))
	guarded := raw(g, ir.OpSignedDiv, x, z)
	guard := g.LogicNegation(g.IntegerEquals(y, g.IntConst(32, 0)))
	g.SetGuard(guarded, guard)
	r2 := g.Return("r2", guarded)
	g.ReplaceAtUsages(z, y)

	stats := Canonicalize(g, Options{})
	d := r1.X()
	if r2.X() != d {
		t.Fatalf("x / y twice: got %v and %v, want one node", d, r2.X())
	}
	if d.Guard() != guard {
		t.Errorf("x / y: got guard %v, want %v", d.Guard(), guard)
	}
	if !d.IsFloating() {
		t.Errorf("guarded x / y: got fixed")
	}
	if stats.Guarded != 1 || stats.Floated != 1 {
		t.Errorf("got %d guards moved and %d floated, want 1 and 1", stats.Guarded, stats.Floated)
	}
	if err := g.Verify(); err != nil {
		t.Error(err)
	}
}

func TestCanonicalizeFloat(t *testing.T) {
	g := ir.NewGraph()
	x := g.NewParam("x", stamp.I32.Unrestricted())
	y := g.NewParam("y", stamp.IntegerRange(32, 1, 100))
	d := g.SignedDiv(x, y)
	g.Return("r", d)
	if d.IsFloating() {
		t.Fatalf("x / y: got floating before canonicalization")
	}
	stats := Canonicalize(g, Options{})
	if !d.IsFloating() || stats.Floated != 1 {
		t.Errorf("x / y for y in [1, 100]: got fixed")
	}
}

func TestCanonicalizeFixedPoint(t *testing.T) {
	g := ir.NewGraph()
	x := g.NewParam("x", stamp.I32.Unrestricted())
	y := g.NewParam("y", stamp.I32.Unrestricted())
	g.Return("r", g.Xor(g.Add(x, y), g.Shl(x, g.IntConst(32, 3))))
	before := g.Len()
	stats := Canonicalize(g, Options{})
	if !stats.Converged || stats.Rewritten != 0 || stats.Merged != 0 {
		t.Errorf("canonical graph: got %+v", stats)
	}
	if g.Len() != before {
		t.Errorf("canonical graph: got %d nodes, want %d", g.Len(), before)
	}
}

func TestCanonicalizeLimit(t *testing.T) {
	g := ir.NewGraph()
	x := g.NewParam("x", stamp.I32.Unrestricted())
	v := x
	for i := 0; i < 10; i++ {
		v = raw(g, ir.OpAdd, v, g.IntConst(32, 0))
	}
	g.Return("r", v)
	stats := Canonicalize(g, Options{MaxIterations: 3})
	if stats.Converged {
		t.Errorf("got fixed point within 3 visits")
	}
	if stats.Visits != 3 {
		t.Errorf("got %d visits, want 3", stats.Visits)
	}
	if err := g.Verify(); err != nil {
		t.Error(err)
	}
}
