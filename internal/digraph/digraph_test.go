package digraph

import (
	"reflect"
	"sort"
	"testing"
)

func TestPostOrder(t *testing.T) {
	g := New(4)
	g.AddEdge(0, 1)
	g.AddEdge(0, 2)
	g.AddEdge(2, 3)
	g.AddEdge(1, 3)
	got := g.PostOrder()
	want := []int{3, 1, 2, 0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got post-order %v, want %v", got, want)
	}
}

func TestPostOrderFrom(t *testing.T) {
	g := New(4)
	g.AddEdge(3, 1)
	g.AddEdge(1, 0)
	got := g.PostOrderFrom([]int{3, 2})
	want := []int{0, 1, 3, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got post-order %v, want %v", got, want)
	}
}

func TestSCCs(t *testing.T) {
	g := New(5)
	g.AddEdge(0, 1)
	g.AddEdge(1, 2)
	g.AddEdge(2, 0)
	g.AddEdge(2, 3)
	g.AddEdge(3, 4)
	sccs := g.SCCs()
	for _, scc := range sccs {
		sort.Ints(scc)
	}
	sort.Slice(sccs, func(i, j int) bool { return sccs[i][0] < sccs[j][0] })
	want := [][]int{{0, 1, 2}, {3}, {4}}
	if !reflect.DeepEqual(sccs, want) {
		t.Errorf("got SCCs %v, want %v", sccs, want)
	}
}

func TestHasCycle(t *testing.T) {
	tests := []struct {
		edges [][2]int
		cycle bool
	}{
		{[][2]int{{0, 1}, {1, 2}}, false},
		{[][2]int{{0, 1}, {1, 2}, {2, 0}}, true},
		{[][2]int{{1, 1}}, true},
		{nil, false},
	}
	for i, tt := range tests {
		g := New(3)
		for _, e := range tt.edges {
			g.AddEdge(e[0], e[1])
		}
		if got := g.HasCycle(); got != tt.cycle {
			t.Errorf("test %d: got HasCycle %t, want %t", i, got, tt.cycle)
		}
	}
}
