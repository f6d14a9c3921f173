package ir

import (
	"github.com/andrewarchi/seanode/internal/digraph"
)

// dependencies returns the graph of edges from each live node to its
// inputs and guard, indexed by ID.
func (g *Graph) dependencies() digraph.Digraph {
	d := digraph.New(len(g.nodes))
	for _, n := range g.nodes {
		if n == nil {
			continue
		}
		for _, in := range n.inputs {
			d.AddEdge(int(n.id), int(in.id))
		}
		if n.guard != nil {
			d.AddEdge(int(n.id), int(n.guard.id))
		}
	}
	return d
}

// Schedule orders the live nodes so that every node follows its inputs
// and guard. Parameters come first in declaration order and returns
// last; other nodes are ordered by a depth-first walk from the returns.
func (g *Graph) Schedule() []*Node {
	d := g.dependencies()
	var roots []int
	for _, p := range g.Params() {
		roots = append(roots, int(p.id))
	}
	for _, r := range g.Returns() {
		roots = append(roots, int(r.id))
	}
	for _, n := range g.nodes {
		if n != nil && n.op != OpReturn && n.op != OpParam {
			roots = append(roots, int(n.id))
		}
	}
	order := d.PostOrderFrom(roots)
	sched := make([]*Node, 0, len(order))
	var returns []*Node
	for _, id := range order {
		n := g.nodes[id]
		if n == nil {
			continue
		}
		if n.op == OpReturn {
			returns = append(returns, n)
			continue
		}
		sched = append(sched, n)
	}
	return append(sched, returns...)
}
