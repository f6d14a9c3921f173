//go:build llvm

package codegen

import (
	"fmt"

	"github.com/andrewarchi/seanode/ir"
	"github.com/andrewarchi/seanode/ir/stamp"
	"tinygo.org/x/go-llvm"
)

// LLVMEmitter lowers a graph to a single LLVM function. Parameters
// become function arguments in declaration order and returns become the
// result, aggregated into a struct when there are several. Division by
// zero and overflow of checked arithmetic call llvm.trap.
type LLVMEmitter struct {
	ctx    llvm.Context
	b      llvm.Builder
	module llvm.Module
	fn     llvm.Value
	config Config

	params  map[string]int
	returns []llvm.Value
	trapBB  llvm.BasicBlock
	hasTrap bool
}

// Config contains naming configuration for codegen.
type Config struct {
	ModuleName string
	FuncName   string
}

// Default configuration values.
const (
	DefaultModuleName = "seanode"
	DefaultFuncName   = "graph"
)

// EmitLLVMModule generates an LLVM IR module containing one function
// that computes g.
func EmitLLVMModule(g *ir.Graph, config Config) (llvm.Module, error) {
	if config.ModuleName == "" {
		config.ModuleName = DefaultModuleName
	}
	if config.FuncName == "" {
		config.FuncName = DefaultFuncName
	}
	ctx := llvm.NewContext()
	e := &LLVMEmitter{
		ctx:    ctx,
		b:      ctx.NewBuilder(),
		module: ctx.NewModule(config.ModuleName),
		config: config,
		params: make(map[string]int),
	}
	e.declareFunc(g)
	Generate(g, e, nil)
	e.finish()
	if err := llvm.VerifyModule(e.module, llvm.ReturnStatusAction); err != nil {
		return e.module, fmt.Errorf("codegen: %w", err)
	}
	return e.module, nil
}

func (e *LLVMEmitter) typ(t stamp.Type) llvm.Type {
	switch t.Kind {
	case stamp.IntKind:
		return e.ctx.IntType(int(t.Bits))
	case stamp.FloatKind:
		if t.Bits == 32 {
			return e.ctx.FloatType()
		}
		return e.ctx.DoubleType()
	case stamp.ObjectKind:
		return llvm.PointerType(e.ctx.Int8Type(), 0)
	}
	panic(fmt.Sprintf("codegen: no LLVM type for %v", t))
}

func (e *LLVMEmitter) resultType(g *ir.Graph) llvm.Type {
	rets := g.Returns()
	switch len(rets) {
	case 0:
		return e.ctx.VoidType()
	case 1:
		return e.typ(rets[0].X().Type())
	}
	fields := make([]llvm.Type, len(rets))
	for i, r := range rets {
		fields[i] = e.typ(r.X().Type())
	}
	return e.ctx.StructType(fields, false)
}

func (e *LLVMEmitter) declareFunc(g *ir.Graph) {
	var paramTypes []llvm.Type
	for i, p := range g.Params() {
		paramTypes = append(paramTypes, e.typ(p.Type()))
		e.params[p.Aux().Name] = i
	}
	ft := llvm.FunctionType(e.resultType(g), paramTypes, false)
	e.fn = llvm.AddFunction(e.module, e.config.FuncName, ft)
	entry := e.ctx.AddBasicBlock(e.fn, "entry")
	e.b.SetInsertPointAtEnd(entry)
}

func (e *LLVMEmitter) finish() {
	switch len(e.returns) {
	case 0:
		e.b.CreateRetVoid()
	case 1:
		e.b.CreateRet(e.returns[0])
	default:
		rt := e.fn.GlobalValueType().ReturnType()
		agg := llvm.Undef(rt)
		for i, v := range e.returns {
			agg = e.b.CreateInsertValue(agg, v, i, "")
		}
		e.b.CreateRet(agg)
	}
	if e.hasTrap {
		e.b.SetInsertPointAtEnd(e.trapBB)
		trap := e.intrinsic("llvm.trap", e.ctx.VoidType())
		e.b.CreateCall(trap.GlobalValueType(), trap, nil, "")
		e.b.CreateUnreachable()
	}
}

// intrinsic declares an intrinsic function once.
func (e *LLVMEmitter) intrinsic(name string, ret llvm.Type, params ...llvm.Type) llvm.Value {
	if f := e.module.NamedFunction(name); !f.IsNil() {
		return f
	}
	return llvm.AddFunction(e.module, name, llvm.FunctionType(ret, params, false))
}

func (e *LLVMEmitter) call(name string, ret llvm.Type, args ...llvm.Value) llvm.Value {
	params := make([]llvm.Type, len(args))
	for i, a := range args {
		params[i] = a.Type()
	}
	f := e.intrinsic(name, ret, params...)
	return e.b.CreateCall(f.GlobalValueType(), f, args, "")
}

// trapIf branches to the shared trap block when cond holds.
func (e *LLVMEmitter) trapIf(cond llvm.Value) {
	if !e.hasTrap {
		e.trapBB = e.ctx.AddBasicBlock(e.fn, "trap")
		e.hasTrap = true
	}
	cont := e.ctx.AddBasicBlock(e.fn, "")
	e.b.CreateCondBr(cond, e.trapBB, cont)
	e.b.SetInsertPointAtEnd(cont)
}

func suffix(t stamp.Type) string {
	return "." + llvmTypeName(t)
}

func llvmTypeName(t stamp.Type) string {
	switch t.Kind {
	case stamp.IntKind:
		return fmt.Sprintf("i%d", t.Bits)
	case stamp.FloatKind:
		if t.Bits == 32 {
			return "f32"
		}
		return "f64"
	}
	return "p0"
}

func v(val ir.Value) llvm.Value { return val.(llvm.Value) }

func (e *LLVMEmitter) EmitConst(c stamp.Const) ir.Value {
	t := e.typ(c.Type())
	switch c.Kind() {
	case stamp.IntKind:
		return llvm.ConstInt(t, c.Uint64(), false)
	case stamp.FloatKind:
		return llvm.ConstFloat(t, c.Float64())
	}
	return llvm.ConstPointerNull(t)
}

func (e *LLVMEmitter) EmitParam(name string, t stamp.Type) ir.Value {
	p := e.fn.Param(e.params[name])
	p.SetName(name)
	return p
}

func (e *LLVMEmitter) EmitNegate(a ir.Value, t stamp.Type) ir.Value {
	if t.Kind == stamp.FloatKind {
		return e.b.CreateFNeg(v(a), "")
	}
	return e.b.CreateNeg(v(a), "")
}

func (e *LLVMEmitter) EmitNot(a ir.Value, t stamp.Type) ir.Value {
	return e.b.CreateNot(v(a), "")
}

func (e *LLVMEmitter) EmitMathAbs(a ir.Value, t stamp.Type) ir.Value {
	if t.Kind == stamp.FloatKind {
		return e.call("llvm.fabs"+suffix(t), e.typ(t), v(a))
	}
	poison := llvm.ConstInt(e.ctx.Int1Type(), 0, false)
	return e.call("llvm.abs"+suffix(t), e.typ(t), v(a), poison)
}

func (e *LLVMEmitter) EmitMathSqrt(a ir.Value, t stamp.Type) ir.Value {
	return e.call("llvm.sqrt"+suffix(t), e.typ(t), v(a))
}

func (e *LLVMEmitter) EmitConvert(op stamp.ConvertOp, a ir.Value, from, to stamp.Type) ir.Value {
	x, tt := v(a), e.typ(to)
	switch op {
	case stamp.SignExt:
		return e.b.CreateSExt(x, tt, "")
	case stamp.ZeroExt:
		return e.b.CreateZExt(x, tt, "")
	case stamp.Narrow:
		return e.b.CreateTrunc(x, tt, "")
	case stamp.IntToFloat:
		return e.b.CreateSIToFP(x, tt, "")
	case stamp.FloatToInt:
		return e.call("llvm.fptosi.sat"+suffix(to)+suffix(from), tt, x)
	case stamp.FloatToFloat:
		if to.Bits > from.Bits {
			return e.b.CreateFPExt(x, tt, "")
		}
		return e.b.CreateFPTrunc(x, tt, "")
	case stamp.Reinterpret:
		return e.b.CreateBitCast(x, tt, "")
	}
	panic(fmt.Sprintf("codegen: unrecognized conversion %v", op))
}

func (e *LLVMEmitter) EmitAdd(a, b ir.Value, t stamp.Type) ir.Value {
	if t.Kind == stamp.FloatKind {
		return e.b.CreateFAdd(v(a), v(b), "")
	}
	return e.b.CreateAdd(v(a), v(b), "")
}

func (e *LLVMEmitter) EmitSub(a, b ir.Value, t stamp.Type) ir.Value {
	if t.Kind == stamp.FloatKind {
		return e.b.CreateFSub(v(a), v(b), "")
	}
	return e.b.CreateSub(v(a), v(b), "")
}

func (e *LLVMEmitter) EmitMul(a, b ir.Value, t stamp.Type) ir.Value {
	if t.Kind == stamp.FloatKind {
		return e.b.CreateFMul(v(a), v(b), "")
	}
	return e.b.CreateMul(v(a), v(b), "")
}

// mulHigh multiplies in double width and keeps the high half.
func (e *LLVMEmitter) mulHigh(a, b ir.Value, t stamp.Type, signed bool) ir.Value {
	wide := e.ctx.IntType(2 * int(t.Bits))
	var x, y llvm.Value
	if signed {
		x, y = e.b.CreateSExt(v(a), wide, ""), e.b.CreateSExt(v(b), wide, "")
	} else {
		x, y = e.b.CreateZExt(v(a), wide, ""), e.b.CreateZExt(v(b), wide, "")
	}
	p := e.b.CreateMul(x, y, "")
	p = e.b.CreateLShr(p, llvm.ConstInt(wide, uint64(t.Bits), false), "")
	return e.b.CreateTrunc(p, e.typ(t), "")
}

func (e *LLVMEmitter) EmitMulHigh(a, b ir.Value, t stamp.Type) ir.Value {
	return e.mulHigh(a, b, t, true)
}

func (e *LLVMEmitter) EmitUMulHigh(a, b ir.Value, t stamp.Type) ir.Value {
	return e.mulHigh(a, b, t, false)
}

// checkDivisor traps on a zero divisor and returns a divisor that is
// safe when y is -1, together with whether y is -1.
func (e *LLVMEmitter) checkDivisor(y llvm.Value, t stamp.Type) (safe, minusOne llvm.Value) {
	it := e.typ(t)
	zero := llvm.ConstNull(it)
	e.trapIf(e.b.CreateICmp(llvm.IntEQ, y, zero, ""))
	minusOne = e.b.CreateICmp(llvm.IntEQ, y, llvm.ConstAllOnes(it), "")
	safe = e.b.CreateSelect(minusOne, llvm.ConstInt(it, 1, false), y, "")
	return safe, minusOne
}

func (e *LLVMEmitter) EmitDiv(a, b ir.Value, t stamp.Type) ir.Value {
	if t.Kind == stamp.FloatKind {
		return e.b.CreateFDiv(v(a), v(b), "")
	}
	safe, minusOne := e.checkDivisor(v(b), t)
	q := e.b.CreateSDiv(v(a), safe, "")
	return e.b.CreateSelect(minusOne, e.b.CreateNeg(v(a), ""), q, "")
}

func (e *LLVMEmitter) EmitRem(a, b ir.Value, t stamp.Type) ir.Value {
	if t.Kind == stamp.FloatKind {
		return e.b.CreateFRem(v(a), v(b), "")
	}
	safe, minusOne := e.checkDivisor(v(b), t)
	r := e.b.CreateSRem(v(a), safe, "")
	return e.b.CreateSelect(minusOne, llvm.ConstNull(e.typ(t)), r, "")
}

func (e *LLVMEmitter) EmitUDiv(a, b ir.Value, t stamp.Type) ir.Value {
	e.trapIf(e.b.CreateICmp(llvm.IntEQ, v(b), llvm.ConstNull(e.typ(t)), ""))
	return e.b.CreateUDiv(v(a), v(b), "")
}

func (e *LLVMEmitter) EmitURem(a, b ir.Value, t stamp.Type) ir.Value {
	e.trapIf(e.b.CreateICmp(llvm.IntEQ, v(b), llvm.ConstNull(e.typ(t)), ""))
	return e.b.CreateURem(v(a), v(b), "")
}

func (e *LLVMEmitter) EmitAnd(a, b ir.Value, t stamp.Type) ir.Value {
	return e.b.CreateAnd(v(a), v(b), "")
}

func (e *LLVMEmitter) EmitOr(a, b ir.Value, t stamp.Type) ir.Value {
	return e.b.CreateOr(v(a), v(b), "")
}

func (e *LLVMEmitter) EmitXor(a, b ir.Value, t stamp.Type) ir.Value {
	return e.b.CreateXor(v(a), v(b), "")
}

// shiftAmount masks a shift amount by the width minus one.
func (e *LLVMEmitter) shiftAmount(b ir.Value, t stamp.Type) llvm.Value {
	return e.b.CreateAnd(v(b), llvm.ConstInt(e.typ(t), uint64(t.Bits-1), false), "")
}

func (e *LLVMEmitter) EmitShl(a, b ir.Value, t stamp.Type) ir.Value {
	return e.b.CreateShl(v(a), e.shiftAmount(b, t), "")
}

func (e *LLVMEmitter) EmitShr(a, b ir.Value, t stamp.Type) ir.Value {
	return e.b.CreateAShr(v(a), e.shiftAmount(b, t), "")
}

func (e *LLVMEmitter) EmitUShr(a, b ir.Value, t stamp.Type) ir.Value {
	return e.b.CreateLShr(v(a), e.shiftAmount(b, t), "")
}

func (e *LLVMEmitter) EmitMinMax(op stamp.BinaryOp, a, b ir.Value, t stamp.Type) ir.Value {
	var name string
	switch {
	case t.Kind == stamp.FloatKind && op == stamp.Min:
		name = "llvm.minimum"
	case t.Kind == stamp.FloatKind && op == stamp.Max:
		name = "llvm.maximum"
	case op == stamp.Min:
		name = "llvm.smin"
	case op == stamp.Max:
		name = "llvm.smax"
	case op == stamp.UMin:
		name = "llvm.umin"
	case op == stamp.UMax:
		name = "llvm.umax"
	default:
		panic(fmt.Sprintf("codegen: unrecognized min/max %v", op))
	}
	return e.call(name+suffix(t), e.typ(t), v(a), v(b))
}

// EmitCompress gathers the bits of a selected by mask into the low bits.
// Bit i of a moves to the number of mask bits below i.
func (e *LLVMEmitter) EmitCompress(a, mask ir.Value, t stamp.Type) ir.Value {
	it := e.typ(t)
	one := llvm.ConstInt(it, 1, false)
	r := llvm.ConstNull(it)
	for i := 0; i < int(t.Bits); i++ {
		sh := llvm.ConstInt(it, uint64(i), false)
		below := llvm.ConstInt(it, stamp.Mask(uint8(i)), false)
		if i == 0 {
			below = llvm.ConstNull(it)
		}
		bit := e.b.CreateAnd(e.b.CreateLShr(e.b.CreateAnd(v(a), v(mask), ""), sh, ""), one, "")
		pos := e.call("llvm.ctpop"+suffix(t), it, e.b.CreateAnd(v(mask), below, ""))
		r = e.b.CreateOr(r, e.b.CreateShl(bit, pos, ""), "")
	}
	return r
}

// EmitExpand scatters the low bits of a to the positions set in mask.
func (e *LLVMEmitter) EmitExpand(a, mask ir.Value, t stamp.Type) ir.Value {
	it := e.typ(t)
	one := llvm.ConstInt(it, 1, false)
	r := llvm.ConstNull(it)
	for i := 0; i < int(t.Bits); i++ {
		sh := llvm.ConstInt(it, uint64(i), false)
		below := llvm.ConstInt(it, stamp.Mask(uint8(i)), false)
		if i == 0 {
			below = llvm.ConstNull(it)
		}
		pos := e.call("llvm.ctpop"+suffix(t), it, e.b.CreateAnd(v(mask), below, ""))
		bit := e.b.CreateAnd(e.b.CreateLShr(v(a), pos, ""), one, "")
		sel := e.b.CreateAnd(e.b.CreateLShr(v(mask), sh, ""), one, "")
		r = e.b.CreateOr(r, e.b.CreateShl(e.b.CreateAnd(bit, sel, ""), sh, ""), "")
	}
	return r
}

func (e *LLVMEmitter) EmitExact(op stamp.BinaryOp, a, b ir.Value, t stamp.Type) ir.Value {
	var name string
	switch op {
	case stamp.Add:
		name = "llvm.sadd.with.overflow"
	case stamp.Sub:
		name = "llvm.ssub.with.overflow"
	case stamp.Mul:
		name = "llvm.smul.with.overflow"
	default:
		panic(fmt.Sprintf("codegen: no exact %v", op))
	}
	it := e.typ(t)
	rt := e.ctx.StructType([]llvm.Type{it, e.ctx.Int1Type()}, false)
	agg := e.call(name+suffix(t), rt, v(a), v(b))
	e.trapIf(e.b.CreateExtractValue(agg, 1, ""))
	return e.b.CreateExtractValue(agg, 0, "")
}

func (e *LLVMEmitter) compare(cond stamp.CanonicalCondition, unorderedIsTrue bool, left, right llvm.Value, cmpType stamp.Type) llvm.Value {
	if cmpType.Kind == stamp.FloatKind {
		var pred llvm.FloatPredicate
		switch {
		case cond == stamp.EQ && unorderedIsTrue:
			pred = llvm.FloatUEQ
		case cond == stamp.EQ:
			pred = llvm.FloatOEQ
		case cond == stamp.LT && unorderedIsTrue:
			pred = llvm.FloatULT
		case cond == stamp.LT:
			pred = llvm.FloatOLT
		default:
			panic(fmt.Sprintf("codegen: no float %v", cond))
		}
		return e.b.CreateFCmp(pred, left, right, "")
	}
	var pred llvm.IntPredicate
	switch cond {
	case stamp.EQ:
		pred = llvm.IntEQ
	case stamp.LT:
		pred = llvm.IntSLT
	case stamp.BT:
		pred = llvm.IntULT
	}
	return e.b.CreateICmp(pred, left, right, "")
}

func (e *LLVMEmitter) EmitConditionalMove(cond stamp.CanonicalCondition, unorderedIsTrue bool, left, right ir.Value, cmpType stamp.Type, trueValue, falseValue ir.Value, t stamp.Type) ir.Value {
	c := e.compare(cond, unorderedIsTrue, v(left), v(right), cmpType)
	return e.b.CreateSelect(c, v(trueValue), v(falseValue), "")
}

func (e *LLVMEmitter) EmitIntegerTestMove(left, right ir.Value, cmpType stamp.Type, trueValue, falseValue ir.Value, t stamp.Type) ir.Value {
	and := e.b.CreateAnd(v(left), v(right), "")
	c := e.b.CreateICmp(llvm.IntEQ, and, llvm.ConstNull(e.typ(cmpType)), "")
	return e.b.CreateSelect(c, v(trueValue), v(falseValue), "")
}

func (e *LLVMEmitter) EmitReturn(name string, val ir.Value, t stamp.Type) {
	e.returns = append(e.returns, v(val))
}
