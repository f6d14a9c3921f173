// Package codegen implements backends for the arithmetic emission
// contract of package ir: a concrete evaluator, a three-address text
// emitter, and, with the llvm build tag, an LLVM IR emitter.
package codegen // import "github.com/andrewarchi/seanode/ir/codegen"

import (
	"github.com/andrewarchi/seanode/ir"
)

// values maps generated nodes to backend values.
type values map[*ir.Node]ir.Value

func (v values) Operand(n *ir.Node) ir.Value {
	val, ok := v[n]
	if !ok {
		panic("codegen: operand " + n.String() + " used before generated")
	}
	return val
}

func (v values) SetResult(n *ir.Node, val ir.Value) {
	v[n] = val
}

// Generate emits every live node of g with gen in schedule order and
// returns the values generated for the value nodes. stop, if non-nil,
// is checked after each node and ends generation when it returns true.
func Generate(g *ir.Graph, gen ir.ArithmeticGenerator, stop func() bool) map[*ir.Node]ir.Value {
	vals := make(values)
	for _, n := range g.Schedule() {
		n.Generate(vals, gen)
		if stop != nil && stop() {
			break
		}
	}
	return vals
}
