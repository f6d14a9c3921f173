package ir

import (
	"math"
	"testing"

	"github.com/andrewarchi/seanode/ir/stamp"
)

func TestCanonicalFold(t *testing.T) {
	g := NewGraph()
	x := g.NewParam("x", stamp.I32.Unrestricted())

	if got, want := g.And(x, g.IntConst(32, 0)), g.IntConst(32, 0); got != want {
		t.Errorf("x & 0: got %v, want %v", got, want)
	}
	if got, want := g.IntegerLessThan(x, x), g.LogicConst(false); got != want {
		t.Errorf("x < x: got %v, want %v", got, want)
	}
	min := g.IntConst(32, math.MinInt32)
	if got := g.SignedDiv(min, g.IntConst(32, -1)); got != min {
		t.Errorf("MIN / -1: got %v, want %v", got, min)
	}
	if got := g.SignedDiv(x, g.IntConst(32, 0)); got.Op() != OpSignedDiv {
		t.Errorf("x / 0: got %v, want division kept", got)
	}
	if got, want := g.Add(x, g.IntConst(32, 0)), x; got != want {
		t.Errorf("x + 0: got %v, want %v", got, want)
	}
	if got, want := g.Xor(x, x), g.IntConst(32, 0); got != want {
		t.Errorf("x ^ x: got %v, want %v", got, want)
	}
	if got, want := g.Not(g.Not(x)), x; got != want {
		t.Errorf("~~x: got %v, want %v", got, want)
	}
}

func TestCanonicalShiftAmount(t *testing.T) {
	g := NewGraph()
	x := g.NewParam("x", stamp.I32.Unrestricted())
	s := g.Shl(x, g.IntConst(32, 40))
	if s.Op() != OpShl || s.X() != x {
		t.Fatalf("x << 40: got %v", s)
	}
	if c, ok := s.Y().AsConst(); !ok || c.Int64() != 8 {
		t.Errorf("x << 40: got amount %v, want 8", s.Y())
	}
	if got := g.Shl(x, g.IntConst(32, 32)); got != x {
		t.Errorf("x << 32: got %v, want %v", got, x)
	}
}

func TestValueNumbering(t *testing.T) {
	g := NewGraph()
	x := g.NewParam("x", stamp.I32.Unrestricted())
	y := g.NewParam("y", stamp.I32.Unrestricted())
	a := g.Add(x, y)
	if b := g.Add(y, x); a != b {
		t.Errorf("x + y and y + x: got %v and %v, want one node", a, b)
	}
	if a.X() != x || a.Y() != y {
		t.Errorf("x + y: got inputs %v, %v", a.X(), a.Y())
	}
	c := g.Add(g.IntConst(32, 3), x)
	if _, ok := c.Y().AsConst(); !ok {
		t.Errorf("3 + x: got %v, want constant on the right", c)
	}
	if p := g.NewParam("x", stamp.I32.Unrestricted()); p != x {
		t.Errorf("redeclared parameter: got %v, want %v", p, x)
	}
}

func TestCanonicalIdempotent(t *testing.T) {
	g := NewGraph()
	x := g.NewParam("x", stamp.I32.Unrestricted())
	y := g.NewParam("y", stamp.I32.Unrestricted())
	nodes := []*Node{
		g.Add(x, g.IntConst(32, 3)),
		g.Add(x, y),
		g.Shl(x, g.IntConst(32, 5)),
		g.IntegerLessThan(x, y),
		g.IntegerBelow(x, y),
		g.SignedDiv(x, y),
		g.Mul(x, y),
	}
	for _, n := range nodes {
		if got := g.Canonical(n); got != n {
			t.Errorf("Canonical(%v): got %v, want unchanged", n, got)
		}
	}
}

func TestMulStrengthReduce(t *testing.T) {
	g := NewGraph()
	x := g.NewParam("x", stamp.I32.Unrestricted())

	if s := g.Mul(x, g.IntConst(32, 8)); s.Op() != OpShl {
		t.Errorf("x * 8: got %v, want shift", s)
	}
	if s := g.Mul(x, g.IntConst(32, 10)); s.Op() != OpAdd || s.X().Op() != OpShl || s.Y().Op() != OpShl {
		t.Errorf("x * 10: got %v, want sum of shifts", s)
	}
	if s := g.Mul(x, g.IntConst(32, 7)); s.Op() != OpSub {
		t.Errorf("x * 7: got %v, want difference", s)
	}
	if s := g.Mul(x, g.IntConst(32, 100)); s.Op() != OpMul {
		t.Errorf("x * 100: got %v, want multiplication kept", s)
	}

	g.SetOptions(Options{})
	if s := g.Mul(x, g.IntConst(32, 16)); s.Op() != OpMul {
		t.Errorf("x * 16 without strength reduction: got %v", s)
	}
}

func TestDivNonNegative(t *testing.T) {
	g := NewGraph()
	x := g.NewParam("x", stamp.IntegerRange(32, 0, 100))
	if d := g.SignedDiv(x, g.IntConst(32, 4)); d.Op() != OpUShr {
		t.Errorf("x / 4 for x in [0, 100]: got %v, want unsigned shift", d)
	}
}

func TestTrap(t *testing.T) {
	g := NewGraph()
	x := g.NewParam("x", stamp.I32.Unrestricted())
	y := g.NewParam("y", stamp.I32.Unrestricted())
	pos := g.NewParam("p", stamp.IntegerRange(32, 1, 10))

	d := g.SignedDiv(x, y)
	if !d.CanTrap() {
		t.Errorf("x / y: got CanTrap false")
	}
	if d.IsFloating() || d.TryFloat() {
		t.Errorf("x / y: got floating without guard")
	}
	guard := g.LogicNegation(g.IntegerEquals(y, g.IntConst(32, 0)))
	g.SetGuard(d, guard)
	if d.ZeroCheck() != guard {
		t.Errorf("x / y: got guard %v, want %v", d.ZeroCheck(), guard)
	}
	if !d.TryFloat() || !d.IsFloating() {
		t.Errorf("guarded x / y: got fixed")
	}

	q := g.SignedDiv(x, pos)
	if q.CanTrap() {
		t.Errorf("x / p for p in [1, 10]: got CanTrap true")
	}
	if !q.TryFloat() {
		t.Errorf("x / p: got fixed")
	}

	r := g.AddExact(x, y)
	if !r.CanTrap() {
		t.Errorf("addexact x, y: got CanTrap false")
	}
	small := g.NewParam("s", stamp.IntegerRange(32, -5, 5))
	if e := g.AddExact(small, small); e.Op() != OpAdd {
		t.Errorf("addexact of small values: got %v, want add", e)
	}
}

func TestImplies(t *testing.T) {
	g := NewGraph()
	x := g.NewParam("x", stamp.I32.Unrestricted())
	y := g.NewParam("y", stamp.I32.Unrestricted())
	lt5 := g.IntegerLessThan(x, g.IntConst(32, 5))
	lt10 := g.IntegerLessThan(x, g.IntConst(32, 10))
	xy := g.IntegerLessThan(x, y)

	tests := []struct {
		a        *Node
		aNegated bool
		b        *Node
		want     stamp.TriState
	}{
		{lt5, false, lt10, stamp.True},
		{lt5, true, lt10, stamp.Unknown},
		{lt10, true, lt5, stamp.False},
		{lt5, false, lt5, stamp.True},
		{lt5, true, lt5, stamp.False},
		{xy, false, g.IntegerEquals(x, y), stamp.False},
		{xy, false, g.IntegerLessThan(y, x), stamp.False},
		{g.IntegerEquals(x, y), false, xy, stamp.False},
		{lt5, false, g.LogicNegation(lt10), stamp.False},
		{g.LogicNegation(lt10), false, lt5, stamp.False},
	}
	for i, tt := range tests {
		if got := Implies(tt.a, tt.aNegated, tt.b); got != tt.want {
			t.Errorf("test %d: Implies(%v, %t, %v): got %v, want %v", i, tt.a, tt.aNegated, tt.b, got, tt.want)
		}
	}
}

func TestLogicOr(t *testing.T) {
	g := NewGraph()
	x := g.NewParam("x", stamp.I32.Unrestricted())
	lt5 := g.IntegerLessThan(x, g.IntConst(32, 5))
	lt10 := g.IntegerLessThan(x, g.IntConst(32, 10))

	if got := g.LogicOr(lt5, false, lt10, false); got != lt10 {
		t.Errorf("x < 5 || x < 10: got %v, want %v", got, lt10)
	}
	if got := g.LogicOr(lt5, false, lt5, true); got != g.LogicConst(true) {
		t.Errorf("c || !c: got %v, want true", got)
	}
	if got := g.LogicOr(lt5, false, lt5, false); got != lt5 {
		t.Errorf("c || c: got %v, want %v", got, lt5)
	}
	if got := g.LogicOr(lt10, true, lt5, false); got.Op() != OpLogicOr {
		t.Errorf("x >= 10 || x < 5: got %v, want disjunction", got)
	}
}

func TestConditional(t *testing.T) {
	g := NewGraph()
	x := g.NewParam("x", stamp.I32.Unrestricted())
	y := g.NewParam("y", stamp.I32.Unrestricted())

	if got := g.Conditional(g.IntegerLessThan(x, y), x, y); got.Op() != OpMin {
		t.Errorf("x < y ? x : y: got %v, want min", got)
	}
	if got := g.Conditional(g.IntegerBelow(x, y), y, x); got.Op() != OpUMax {
		t.Errorf("x <u y ? y : x: got %v, want umax", got)
	}
	if got := g.Conditional(g.IntegerEquals(x, y), x, y); got != y {
		t.Errorf("x == y ? x : y: got %v, want %v", got, y)
	}
	neg := g.IntegerLessThan(x, g.IntConst(32, 0))
	if got := g.Conditional(neg, g.IntConst(32, -1), g.IntConst(32, 0)); got.Op() != OpShr {
		t.Errorf("x < 0 ? -1 : 0: got %v, want arithmetic shift", got)
	}
	if got := g.Conditional(g.LogicConst(true), x, y); got != x {
		t.Errorf("true ? x : y: got %v, want %v", got, x)
	}

	g.SetOptions(Options{})
	if got := g.Conditional(g.IntegerLessThan(y, x), y, x); got.Op() != OpConditional {
		t.Errorf("y < x ? y : x without min/max: got %v", got)
	}
}

func TestRemoveDead(t *testing.T) {
	g := NewGraph()
	x := g.NewParam("x", stamp.I32.Unrestricted())
	g.Add(x, g.IntConst(32, 1))
	g.Return("r", x)
	if n := g.RemoveDead(); n != 2 {
		t.Errorf("RemoveDead: got %d killed, want 2", n)
	}
	if g.Len() != 2 {
		t.Errorf("RemoveDead: got %d live nodes, want 2", g.Len())
	}
	if err := g.Verify(); err != nil {
		t.Error(err)
	}
}

func TestReplaceAtUsages(t *testing.T) {
	g := NewGraph()
	x := g.NewParam("x", stamp.I32.Unrestricted())
	y := g.NewParam("y", stamp.I32.Unrestricted())
	a := g.Add(x, g.IntConst(32, 1))
	r := g.Return("r", a)
	g.ReplaceAtUsages(a, y)
	if r.X() != y {
		t.Errorf("return after replace: got %v, want %v", r.X(), y)
	}
	if a.UsageCount() != 0 {
		t.Errorf("replaced node: got %d usages, want 0", a.UsageCount())
	}
	if err := g.Verify(); err != nil {
		t.Error(err)
	}
}

func TestSchedule(t *testing.T) {
	g := NewGraph()
	x := g.NewParam("x", stamp.I32.Unrestricted())
	y := g.NewParam("y", stamp.I32.Unrestricted())
	s := g.Sub(g.Mul(x, y), y)
	g.Return("r", s)
	pos := make(map[*Node]int)
	sched := g.Schedule()
	for i, n := range sched {
		pos[n] = i
	}
	if len(sched) != g.Len() {
		t.Fatalf("Schedule: got %d nodes, want %d", len(sched), g.Len())
	}
	for _, n := range sched {
		for _, in := range n.Inputs() {
			if pos[in] >= pos[n] {
				t.Errorf("Schedule: %v before its input %v", n, in)
			}
		}
	}
	if last := sched[len(sched)-1]; last.Op() != OpReturn {
		t.Errorf("Schedule: got %v last, want return", last)
	}
}

func TestFormatGraph(t *testing.T) {
	g := NewGraph()
	x := g.NewParam("x", stamp.IntegerRange(32, 0, 9))
	a := g.Add(x, g.IntConst(32, 1))
	g.Return("r", a)
	want := "%0 = param x i32 [0, 9]\n" +
		"%1 = add %0 1:i32\n" +
		"return r %1\n"
	if got := NewFormatter().FormatGraph(g); got != want {
		t.Errorf("FormatGraph:\ngot:\n%s\nwant:\n%s", got, want)
	}
}
