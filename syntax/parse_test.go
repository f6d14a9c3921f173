package syntax

import (
	"errors"
	"strings"
	"testing"

	"github.com/andrewarchi/seanode/ir"
	"github.com/andrewarchi/seanode/ir/stamp"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name, src, want string
	}{
		{"guarded div",
			"%0 = param x i32 [-10, 1000]\n%1 = param y i32\n%2 = eq %1 0:i32\n%3 = lnot %2\n%4 = div %0 %1 guard %3\nreturn q %4\n",
			""},
		{"logic",
			"%0 = param f f64 nonnan\n%1 = param o object\n%2 = flt %0 0.5:f64 unordered\n%3 = isnull %1\n%4 = lor %2 !%3\n%5 = cond %4 -1.5:f64 %0\nreturn sel %5\n",
			""},
		{"convert",
			"%0 = param x i64\n%1 = convert narrow %0 i32\n%2 = shl %1 3:i32\n%3 = convert sext %2 i64\nreturn r %3\nreturn s %0\n",
			""},
		{"special floats",
			"%0 = param f f32\n%1 = add %0 -0.0:f32\n%2 = mul %1 +Inf:f32\n%3 = sub %2 NaN:f32\nreturn r %3\n",
			""},
		{"comments",
			"  # header\n\n%0 = param x i8 [0, 3] # range\r\nreturn r %0",
			"%0 = param x i8 [0, 3]\nreturn r %0\n"},
		{"value numbering",
			"%0 = param x i32\n%1 = param y i32\n%2 = add %0 %1\n%3 = add %1 %0\nreturn a %2\nreturn b %3\n",
			"%0 = param x i32\n%1 = param y i32\n%2 = add %0 %1\nreturn a %2\nreturn b %2\n"},
	}
	for _, tt := range tests {
		g, err := Parse("t", []byte(tt.src))
		if err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		want := tt.want
		if want == "" {
			want = tt.src
		}
		if got := ir.NewFormatter().FormatGraph(g); got != want {
			t.Errorf("%s:\ngot:\n%s\nwant:\n%s", tt.name, got, want)
		}
		if err := g.Verify(); err != nil {
			t.Errorf("%s: %v", tt.name, err)
		}
	}
}

func TestParseGuard(t *testing.T) {
	g, err := Parse("t", []byte("%0 = param x i32\n%1 = param y i32\n%2 = eq %1 0:i32\n%3 = lnot %2\n%4 = rem %0 %1 guard %3\nreturn r %4\n"))
	if err != nil {
		t.Fatal(err)
	}
	rem := g.Returns()[0].X()
	if rem.Op() != ir.OpSignedRem {
		t.Fatalf("got %v, want rem", rem)
	}
	if guard := rem.Guard(); guard == nil || guard.Op() != ir.OpLogicNegation {
		t.Errorf("rem guard: got %v, want lnot", guard)
	}
	if y := g.Param("y"); rem.Y() != y {
		t.Errorf("rem divisor: got %v, want %v", rem.Y(), y)
	}
}

func TestParseFormatted(t *testing.T) {
	g := ir.NewGraph()
	x := g.NewParam("x", stamp.IntegerRange(32, -10, 1000))
	y := g.NewParam("y", stamp.I32.Unrestricted())
	o := g.NewParam("o", stamp.ObjectUnrestricted())
	d := g.UnsignedDiv(x, y)
	g.SetGuard(d, g.LogicNegation(g.IntegerEquals(y, g.IntConst(32, 0))))
	g.Return("q", d)
	wide := g.Convert(stamp.ZeroExt, x, stamp.I64)
	g.Return("wide", g.Sub(wide, g.IntConst(64, 7)))
	g.Return("sel", g.Conditional(g.IsNull(o), g.IntConst(32, -1), x))

	want := ir.NewFormatter().FormatGraph(g)
	g2, err := Parse("t", []byte(want))
	if err != nil {
		t.Fatalf("%v\n%s", err, want)
	}
	if got := ir.NewFormatter().FormatGraph(g2); got != want {
		t.Errorf("round trip:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src, want string
	}{
		{"%0 = add %1 1:i32\n", `t:1:10: %1 used before definition`},
		{"%0 = param x i32\n%0 = param y i32\n", `t:2:1: %0 redefined`},
		{"%0 = param x i32\n%1 = frob %0\n", `t:2:6: unknown operation "frob"`},
		{"%0 = param x i32\n%1 = add %0 300:i8\n", `t:2:13: 300 overflows i8`},
		{"%0 = param x i32 [5, 1]\n", `t:1:18: invalid i32 range [5, 1]`},
		{"%0 = param x i32\n%1 = add %0 %0 guard true\n", `t:2:16: guard on non-trapping add`},
		{"%0 = param x i32\n%1 = add %0 1:f32\n", `t:2:6: ir: `},
		{"%0 = param x i32 %0\n", `t:1:18: expected end of line, got "%0"`},
		{"%0 = param x i32\x01\n", `t:1:17: unexpected character '\x01'`},
		{"x = param x i32\n", `t:1:1: invalid value name "x"`},
		{"%0 = param x i32\n%1 = convert widen %0 i64\n", `t:2:14: unknown conversion "widen"`},
		{"%0 = param x i32\n%1 = lt !%0 %0\n", `t:2:9: negated input of lt`},
		{"%0 = param x q7\n", `t:1:14: invalid type "q7"`},
		{"%0 = lconst maybe\n", `t:1:13: expected true or false, got "maybe"`},
	}
	for _, tt := range tests {
		_, err := Parse("t", []byte(tt.src))
		if err == nil {
			t.Errorf("Parse(%q): got no error, want %q", tt.src, tt.want)
			continue
		}
		var perr *Error
		if !errors.As(err, &perr) {
			t.Errorf("Parse(%q): got %T, want *Error", tt.src, err)
		}
		if !strings.HasPrefix(err.Error(), tt.want) {
			t.Errorf("Parse(%q): got %q, want %q", tt.src, err.Error(), tt.want)
		}
	}
}

func TestPosString(t *testing.T) {
	tests := []struct {
		pos  Pos
		want string
	}{
		{Pos{}, "<unknown position>"},
		{MakePos("g.sea", 0, 0), "g.sea"},
		{MakePos("g.sea", 3, 0), "g.sea:3"},
		{MakePos("g.sea", 3, 7), "g.sea:3:7"},
		{MakePos("g.sea", PosMax+5, 1), "g.sea:1073741824:1"},
	}
	for _, tt := range tests {
		if got := tt.pos.String(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}
