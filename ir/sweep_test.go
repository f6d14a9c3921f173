package ir_test

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/andrewarchi/seanode/ir"
	"github.com/andrewarchi/seanode/ir/codegen"
	"github.com/andrewarchi/seanode/ir/stamp"
)

var edgeValues = []int64{0, 1, -1, 2, -2, 3, 5, 7, 8, -8, 10, 64, 100, 127, -127, -128}

type binaryCase struct {
	op    ir.Op
	fold  func(x, y stamp.Const) (stamp.Const, bool)
	build func(g *ir.Graph, x, y *ir.Node) *ir.Node
}

func arith(op ir.Op, bop stamp.BinaryOp) binaryCase {
	return binaryCase{op, func(x, y stamp.Const) (stamp.Const, bool) {
		return stamp.IntegerOps.FoldConstant(bop, x, y)
	}, func(g *ir.Graph, x, y *ir.Node) *ir.Node {
		return g.Binary(op, x, y)
	}}
}

func shift(op ir.Op, sop stamp.ShiftOp) binaryCase {
	return binaryCase{op, func(x, y stamp.Const) (stamp.Const, bool) {
		return stamp.IntegerOps.FoldShift(sop, x, y.Int64()), true
	}, func(g *ir.Graph, x, y *ir.Node) *ir.Node {
		return g.Binary(op, x, y)
	}}
}

var binaryCases = []binaryCase{
	arith(ir.OpAdd, stamp.Add),
	arith(ir.OpSub, stamp.Sub),
	arith(ir.OpMul, stamp.Mul),
	arith(ir.OpMulHigh, stamp.MulHigh),
	arith(ir.OpUMulHigh, stamp.UMulHigh),
	arith(ir.OpAnd, stamp.And),
	arith(ir.OpOr, stamp.Or),
	arith(ir.OpXor, stamp.Xor),
	arith(ir.OpMin, stamp.Min),
	arith(ir.OpMax, stamp.Max),
	arith(ir.OpUMin, stamp.UMin),
	arith(ir.OpUMax, stamp.UMax),
	arith(ir.OpCompress, stamp.Compress),
	arith(ir.OpExpand, stamp.Expand),
	arith(ir.OpSignedDiv, stamp.Div),
	arith(ir.OpSignedRem, stamp.Rem),
	arith(ir.OpUnsignedDiv, stamp.UDiv),
	arith(ir.OpUnsignedRem, stamp.URem),
	shift(ir.OpShl, stamp.Shl),
	shift(ir.OpShr, stamp.Shr),
	shift(ir.OpUShr, stamp.UShr),
}

// evalInt runs g with x bound to v and returns the result r.
func evalInt(t *testing.T, g *ir.Graph, v int64) (stamp.Const, error) {
	t.Helper()
	res, err := codegen.Evaluate(g, map[string]stamp.Const{"x": stamp.IntConst(8, v)})
	if err != nil {
		return stamp.Const{}, err
	}
	return res["r"], nil
}

// TestBinarySound checks that canonicalizing an operation of a variable
// and a constant preserves its value for every 8-bit input.
func TestBinarySound(t *testing.T) {
	for _, bc := range binaryCases {
		for _, c := range edgeValues {
			for _, constLeft := range []bool{false, true} {
				g := ir.NewGraph()
				x := g.NewParam("x", stamp.I8.Unrestricted())
				k := g.IntConst(8, c)
				var r *ir.Node
				if constLeft {
					r = bc.build(g, k, x)
				} else {
					r = bc.build(g, x, k)
				}
				g.Return("r", r)
				if err := g.Verify(); err != nil {
					t.Fatalf("%v with %d: %v", bc.op, c, err)
				}
				for v := int64(-128); v < 128; v++ {
					a, b := stamp.IntConst(8, v), stamp.IntConst(8, c)
					if constLeft {
						a, b = b, a
					}
					want, ok := bc.fold(a, b)
					got, err := evalInt(t, g, v)
					var trap *codegen.TrapError
					switch {
					case !ok && !errors.As(err, &trap):
						t.Errorf("%v %d, %d: got %v, %v, want trap", bc.op, a.Int64(), b.Int64(), got, err)
					case ok && err != nil:
						t.Errorf("%v %d, %d: got error %v, want %d", bc.op, a.Int64(), b.Int64(), err, want.Int64())
					case ok && got != want:
						t.Errorf("%v %d, %d: got %d, want %d", bc.op, a.Int64(), b.Int64(), got.Int64(), want.Int64())
					}
				}
			}
		}
	}
}

// TestCompareSound checks every condition of a variable against each
// edge value, materialized as a conditional of 1 and 0.
func TestCompareSound(t *testing.T) {
	conds := []stamp.Condition{
		stamp.CondEQ, stamp.CondNE, stamp.CondLT, stamp.CondLE, stamp.CondGT,
		stamp.CondGE, stamp.CondBT, stamp.CondBE, stamp.CondAT, stamp.CondAE,
	}
	for _, cond := range conds {
		for _, c := range edgeValues {
			g := ir.NewGraph()
			x := g.NewParam("x", stamp.I8.Unrestricted())
			cmp := g.Compare(cond, x, g.IntConst(8, c), false)
			g.Return("r", g.Conditional(cmp, g.IntConst(8, 1), g.IntConst(8, 0)))
			for v := int64(-128); v < 128; v++ {
				want := compare(cond, v, c)
				got, err := evalInt(t, g, v)
				if err != nil {
					t.Fatalf("%v %d, %d: %v", cond, v, c, err)
				}
				if (got.Int64() == 1) != want {
					t.Errorf("%v %d, %d: got %d, want %t", cond, v, c, got.Int64(), want)
				}
			}
		}
	}
}

func compare(cond stamp.Condition, x, y int64) bool {
	ux, uy := uint8(x), uint8(y)
	switch cond {
	case stamp.CondEQ:
		return x == y
	case stamp.CondNE:
		return x != y
	case stamp.CondLT:
		return x < y
	case stamp.CondLE:
		return x <= y
	case stamp.CondGT:
		return x > y
	case stamp.CondGE:
		return x >= y
	case stamp.CondBT:
		return ux < uy
	case stamp.CondBE:
		return ux <= uy
	case stamp.CondAT:
		return ux > uy
	case stamp.CondAE:
		return ux >= uy
	}
	panic("bad condition")
}

// TestReassociateSound checks chains of constant additions,
// subtractions, and multiplications.
func TestReassociateSound(t *testing.T) {
	tests := []struct {
		name  string
		build func(g *ir.Graph, x *ir.Node) *ir.Node
		want  func(x int64) int64
	}{
		{"(x+3)+5", func(g *ir.Graph, x *ir.Node) *ir.Node {
			return g.Add(g.Add(x, g.IntConst(8, 3)), g.IntConst(8, 5))
		}, func(x int64) int64 { return x + 8 }},
		{"(3-x)+5", func(g *ir.Graph, x *ir.Node) *ir.Node {
			return g.Add(g.Sub(g.IntConst(8, 3), x), g.IntConst(8, 5))
		}, func(x int64) int64 { return 8 - x }},
		{"5-(x-3)", func(g *ir.Graph, x *ir.Node) *ir.Node {
			return g.Sub(g.IntConst(8, 5), g.Sub(x, g.IntConst(8, 3)))
		}, func(x int64) int64 { return 8 - x }},
		{"(x-100)-100", func(g *ir.Graph, x *ir.Node) *ir.Node {
			return g.Sub(g.Sub(x, g.IntConst(8, 100)), g.IntConst(8, 100))
		}, func(x int64) int64 { return x - 200 }},
		{"(x*3)*5", func(g *ir.Graph, x *ir.Node) *ir.Node {
			return g.Mul(g.Mul(x, g.IntConst(8, 3)), g.IntConst(8, 5))
		}, func(x int64) int64 { return x * 15 }},
		{"(x^5)^12", func(g *ir.Graph, x *ir.Node) *ir.Node {
			return g.Xor(g.Xor(x, g.IntConst(8, 5)), g.IntConst(8, 12))
		}, func(x int64) int64 { return x ^ 9 }},
	}
	for _, tt := range tests {
		g := ir.NewGraph()
		x := g.NewParam("x", stamp.I8.Unrestricted())
		g.Return("r", tt.build(g, x))
		for v := int64(-128); v < 128; v++ {
			got, err := evalInt(t, g, v)
			if err != nil {
				t.Fatalf("%s: %v", tt.name, err)
			}
			if want := int64(int8(tt.want(v))); got.Int64() != want {
				t.Errorf("%s for x=%d: got %d, want %d", tt.name, v, got.Int64(), want)
			}
		}
	}
}

func TestExactTraps(t *testing.T) {
	g := ir.NewGraph()
	x := g.NewParam("x", stamp.I8.Unrestricted())
	g.Return("r", g.AddExact(x, g.IntConst(8, 100)))
	if got, err := evalInt(t, g, 20); err != nil || got.Int64() != 120 {
		t.Errorf("20 + 100: got %v, %v, want 120", got, err)
	}
	var trap *codegen.TrapError
	if _, err := evalInt(t, g, 28); !errors.As(err, &trap) {
		t.Errorf("28 + 100: got %v, want trap", err)
	}
}

// TestStrengthReduceSound32 checks the shift rewrites of multiplication
// and division by constants on 32-bit values.
func TestStrengthReduceSound32(t *testing.T) {
	values := []int64{
		math.MinInt32, math.MinInt32 + 1, -1 << 30, -65537, -1000, -9, -8, -7, -2, -1,
		0, 1, 2, 3, 7, 8, 1000, 65535, 1<<30 - 1, 1 << 30, math.MaxInt32 - 1, math.MaxInt32,
	}
	type reduceCase struct {
		op    ir.Op
		c     int64
		apply func(x, c int64) int64
	}
	var tests []reduceCase
	for _, c := range []int64{3, 5, 7, 9, 10, 14, 16, 24, -8, -7, math.MaxInt32, math.MinInt32} {
		tests = append(tests, reduceCase{ir.OpMul, c, func(x, c int64) int64 { return x * c }})
	}
	for _, c := range []int64{1, 2, 4, 8, 1 << 16, 1 << 30, -1, -2, -4, -(1 << 30), math.MinInt32} {
		tests = append(tests,
			reduceCase{ir.OpSignedDiv, c, func(x, c int64) int64 { return x / c }},
			reduceCase{ir.OpSignedRem, c, func(x, c int64) int64 { return x % c }})
	}
	for _, tt := range tests {
		g := ir.NewGraph()
		x := g.NewParam("x", stamp.I32.Unrestricted())
		g.Return("r", g.Binary(tt.op, x, g.IntConst(32, tt.c)))
		if err := g.Verify(); err != nil {
			t.Fatalf("%v by %d: %v", tt.op, tt.c, err)
		}
		for _, v := range values {
			res, err := codegen.Evaluate(g, map[string]stamp.Const{"x": stamp.IntConst(32, v)})
			if err != nil {
				t.Errorf("%v %d, %d: %v", tt.op, v, tt.c, err)
				continue
			}
			if got, want := res["r"].Int64(), int64(int32(tt.apply(v, tt.c))); got != want {
				t.Errorf("%v %d, %d: got %d, want %d", tt.op, v, tt.c, got, want)
			}
		}
	}
}

var floatEdgeValues = []float64{
	math.NaN(), math.Inf(1), math.Inf(-1), 0, math.Copysign(0, -1),
	1, -1, -1.5, 2, 0.5, math.MaxFloat64, -math.MaxFloat64, math.SmallestNonzeroFloat64,
}

// sameFloat reports whether a and b are the same value, treating every
// NaN as equal.
func sameFloat(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Float64bits(a) == math.Float64bits(b)
}

// TestFloatBinarySound checks that canonicalizing a float operation of a
// variable and a constant preserves its value for the special values.
func TestFloatBinarySound(t *testing.T) {
	ops := []struct {
		op  ir.Op
		bop stamp.BinaryOp
	}{
		{ir.OpAdd, stamp.Add},
		{ir.OpSub, stamp.Sub},
		{ir.OpMul, stamp.Mul},
		{ir.OpFloatDiv, stamp.Div},
		{ir.OpMin, stamp.Min},
		{ir.OpMax, stamp.Max},
	}
	for _, o := range ops {
		for _, c := range floatEdgeValues {
			for _, constLeft := range []bool{false, true} {
				g := ir.NewGraph()
				x := g.NewParam("x", stamp.F64.Unrestricted())
				k := g.Const(stamp.Float64Const(c))
				if constLeft {
					g.Return("r", g.Binary(o.op, k, x))
				} else {
					g.Return("r", g.Binary(o.op, x, k))
				}
				for _, v := range floatEdgeValues {
					a, b := stamp.Float64Const(v), stamp.Float64Const(c)
					if constLeft {
						a, b = b, a
					}
					want, _ := stamp.FloatOps.FoldConstant(o.bop, a, b)
					res, err := codegen.Evaluate(g, map[string]stamp.Const{"x": stamp.Float64Const(v)})
					if err != nil {
						t.Errorf("%v %v, %v: %v", o.op, a, b, err)
						continue
					}
					if got := res["r"]; !sameFloat(got.Float64(), want.Float64()) {
						t.Errorf("%v %v, %v: got %v, want %v", o.op, a, b, got, want)
					}
				}
			}
		}
	}
}

func TestFloatMinMaxNaN(t *testing.T) {
	g := ir.NewGraph()
	x := g.NewParam("x", stamp.F64.Unrestricted())
	nan := g.Const(stamp.Float64Const(math.NaN()))
	negInf := g.Const(stamp.Float64Const(math.Inf(-1)))
	if r, ok := g.Min(negInf, nan).AsConst(); !ok || !r.IsNaN() {
		t.Errorf("min(-Inf, NaN): got %v, want NaN", r)
	}
	if r, ok := g.Max(g.Const(stamp.Float64Const(math.Inf(1))), nan).AsConst(); !ok || !r.IsNaN() {
		t.Errorf("max(+Inf, NaN): got %v, want NaN", r)
	}
	g.Return("r", g.Min(x, nan))
	res, err := codegen.Evaluate(g, map[string]stamp.Const{"x": stamp.Float64Const(math.Inf(-1))})
	if err != nil {
		t.Fatal(err)
	}
	if got := res["r"]; !got.IsNaN() {
		t.Errorf("min(x, NaN) for x = -Inf: got %v, want NaN", got)
	}
}

// TestSignExtendNegative checks that sign extension of a negative-only
// range keeps the extended sign bits in its stamp.
func TestSignExtendNegative(t *testing.T) {
	g := ir.NewGraph()
	x := g.NewParam("x", stamp.IntegerRange(8, -128, -100))
	wide := g.Convert(stamp.SignExt, x, stamp.I16)
	if wide.Stamp().IsEmpty() {
		t.Fatalf("sext stamp: got empty %v", wide.Stamp())
	}
	g.Return("r", g.And(wide, g.IntConst(16, 0x100)))
	for v := int64(-128); v <= -100; v++ {
		got, err := evalInt(t, g, v)
		if err != nil {
			t.Fatal(err)
		}
		if got.Int64() != 0x100 {
			t.Errorf("sext(%d) & 0x100: got %d, want 256", v, got.Int64())
		}
	}
}

// TestImpliesSound checks every Implies answer among comparisons of two
// 8-bit variables and constants against all pairs of values.
func TestImpliesSound(t *testing.T) {
	g := ir.NewGraph()
	x := g.NewParam("x", stamp.I8.Unrestricted())
	y := g.NewParam("y", stamp.I8.Unrestricted())
	conds := []*ir.Node{
		g.IntegerEquals(x, y),
		g.IntegerLessThan(x, y),
		g.IntegerLessThan(y, x),
		g.IntegerBelow(x, y),
		g.IntegerBelow(y, x),
		g.IntegerTest(x, y),
	}
	for _, k := range []int64{-128, -1, 0, 1, 5, 126, 127} {
		c := g.IntConst(8, k)
		conds = append(conds,
			g.IntegerEquals(x, c),
			g.IntegerLessThan(x, c),
			g.IntegerLessThan(c, x),
			g.IntegerBelow(x, c),
			g.IntegerBelow(c, y),
			g.IntegerTest(x, c))
	}
	conds = append(conds,
		g.LogicOr(conds[1], false, conds[0], false),
		g.LogicOr(conds[2], true, conds[7], false),
		g.LogicOr(conds[8], true, conds[9], true))

	one, zero := g.IntConst(8, 1), g.IntConst(8, 0)
	names := make([]string, len(conds))
	for i, c := range conds {
		names[i] = fmt.Sprintf("c%d", i)
		g.Return(names[i], g.Conditional(c, one, zero))
	}
	holds := make([][]bool, len(conds))
	for i := range holds {
		holds[i] = make([]bool, 256*256)
	}
	for vx := int64(-128); vx < 128; vx++ {
		for vy := int64(-128); vy < 128; vy++ {
			res, err := codegen.Evaluate(g, map[string]stamp.Const{
				"x": stamp.IntConst(8, vx),
				"y": stamp.IntConst(8, vy),
			})
			if err != nil {
				t.Fatal(err)
			}
			for i := range conds {
				holds[i][(vx+128)<<8|(vy+128)] = res[names[i]].Int64() == 1
			}
		}
	}

	for i, a := range conds {
		for _, aNegated := range []bool{false, true} {
			for j, b := range conds {
				r := ir.Implies(a, aNegated, b)
				if !r.IsKnown() {
					continue
				}
				want := r == stamp.True
				for v := range holds[i] {
					if holds[i][v] == aNegated || holds[j][v] == want {
						continue
					}
					t.Errorf("Implies(%v, %t, %v) = %v, but not for x = %d, y = %d", a, aNegated, b, r, v>>8-128, v&0xff-128)
					break
				}
			}
		}
	}
}
