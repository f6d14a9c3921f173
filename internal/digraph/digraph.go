// Package digraph implements a directed graph over dense integer
// vertices with depth-first traversals.
package digraph // import "github.com/andrewarchi/seanode/internal/digraph"

// Digraph is a directed graph.
type Digraph []vertex

type vertex struct {
	Edges   []int
	Visited bool
}

// New constructs a Digraph with n vertices and no edges.
func New(n int) Digraph {
	return make(Digraph, n)
}

// AddEdge adds a directed edge from vertex i to j.
func (g Digraph) AddEdge(i, j int) {
	g[i].Edges = append(g[i].Edges, j)
}

// SCCs computes the strongly connected components of a graph.
func (g Digraph) SCCs() [][]int {
	postOrder := g.Reverse().PostOrder()
	var sccs [][]int
	for i := len(postOrder) - 1; i >= 0; i-- {
		if !g[postOrder[i]].Visited {
			sccs = append(sccs, g.visit(postOrder[i], nil))
		}
	}
	return sccs
}

// HasCycle reports whether the graph contains a cycle, including an edge
// from a vertex to itself.
func (g Digraph) HasCycle() bool {
	g.ClearVisited()
	defer g.ClearVisited()
	for _, scc := range g.SCCs() {
		if len(scc) > 1 {
			return true
		}
		for _, e := range g[scc[0]].Edges {
			if e == scc[0] {
				return true
			}
		}
	}
	return false
}

// PostOrder traverses the graph with depth first search and returns the
// post-order traversal numbers.
func (g Digraph) PostOrder() []int {
	var postOrder []int
	for i := range g {
		postOrder = g.visit(i, postOrder)
	}
	return postOrder
}

// PostOrderFrom traverses the vertices reachable from roots in the given
// order. Vertices already visited are skipped.
func (g Digraph) PostOrderFrom(roots []int) []int {
	var postOrder []int
	for _, r := range roots {
		postOrder = g.visit(r, postOrder)
	}
	return postOrder
}

func (g Digraph) visit(node int, postOrder []int) []int {
	if g[node].Visited {
		return postOrder
	}
	g[node].Visited = true
	for _, edge := range g[node].Edges {
		postOrder = g.visit(edge, postOrder)
	}
	return append(postOrder, node)
}

// Reverse creates the reverse graph of g.
func (g Digraph) Reverse() Digraph {
	r := make(Digraph, len(g))
	for node := range g {
		for _, edge := range g[node].Edges {
			r[edge].Edges = append(r[edge].Edges, node)
		}
	}
	return r
}

// ClearVisited resets the visited flags.
func (g Digraph) ClearVisited() {
	for i := range g {
		g[i].Visited = false
	}
}
