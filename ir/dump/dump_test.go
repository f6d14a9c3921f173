package dump

import (
	"bytes"
	"errors"
	"testing"

	"github.com/andrewarchi/seanode/ir"
	"github.com/andrewarchi/seanode/ir/stamp"
)

func sampleGraph() *ir.Graph {
	g := ir.NewGraph()
	x := g.NewParam("x", stamp.IntegerRange(32, -10, 1000))
	y := g.NewParam("y", stamp.I32.Unrestricted())
	f := g.NewParam("f", stamp.NewFloatStamp(64, 0, 1, true))
	o := g.NewParam("o", stamp.ObjectUnrestricted())

	d := g.SignedDiv(x, y)
	g.SetGuard(d, g.LogicNegation(g.IntegerEquals(y, g.IntConst(32, 0))))
	g.Return("q", d)

	wide := g.Convert(stamp.SignExt, x, stamp.I64)
	g.Return("wide", g.Add(wide, g.IntConst(64, -7)))

	lt := g.FloatLessThan(f, g.Const(stamp.Float64Const(0.5)), true)
	either := g.LogicOr(lt, false, g.IsNull(o), true)
	g.Return("sel", g.Conditional(either, g.Const(stamp.Float64Const(-1.5)), f))
	return g
}

func TestRoundTrip(t *testing.T) {
	g := sampleGraph()
	var buf bytes.Buffer
	if err := Encode(&buf, g); err != nil {
		t.Fatal(err)
	}
	g2, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	want := ir.NewFormatter().FormatGraph(g)
	if got := ir.NewFormatter().FormatGraph(g2); got != want {
		t.Errorf("round trip:\ngot:\n%s\nwant:\n%s", got, want)
	}
	if err := g2.Verify(); err != nil {
		t.Error(err)
	}
	if got, want := g2.Len(), g.Len(); got != want {
		t.Errorf("round trip: got %d nodes, want %d", got, want)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte("nope"))); !errors.Is(err, ErrMagic) {
		t.Errorf("bad magic: got %v, want %v", err, ErrMagic)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, sampleGraph()); err != nil {
		t.Fatal(err)
	}
	b := buf.Bytes()
	if _, err := Decode(bytes.NewReader(b[:len(b)/2])); err == nil {
		t.Errorf("truncated snapshot: got no error")
	}
}
