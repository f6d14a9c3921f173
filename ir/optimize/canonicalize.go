// Package optimize runs canonicalization of IR graphs to a fixed point.
package optimize // import "github.com/andrewarchi/seanode/ir/optimize"

import (
	"log/slog"

	"github.com/andrewarchi/seanode/internal/bitset"
	"github.com/andrewarchi/seanode/ir"
)

// DefaultMaxIterations bounds the number of node visits of
// Canonicalize when Options.MaxIterations is zero.
const DefaultMaxIterations = 1 << 20

// Options configures Canonicalize.
type Options struct {
	MaxIterations int          // node visits before giving up
	Logger        *slog.Logger // rewrites are traced at debug level
}

// Stats counts the work done by Canonicalize.
type Stats struct {
	Visits    int  // nodes taken from the worklist
	Narrowed  int  // stamps narrowed by inference
	Merged    int  // nodes replaced by an existing duplicate
	Rewritten int  // nodes replaced by their canonical form
	Guarded   int  // guards moved to a surviving duplicate
	Floated   int  // trapping nodes released from their position
	Killed    int  // nodes removed
	Converged bool // the worklist emptied before the visit limit
}

// worklist is a FIFO of nodes, each queued at most once.
type worklist struct {
	queue  []*ir.Node
	queued bitset.Bitset
}

func (w *worklist) push(n *ir.Node) {
	if n.IsDead() || w.queued.Test(int(n.ID())) {
		return
	}
	w.queued.Set(int(n.ID()))
	w.queue = append(w.queue, n)
}

func (w *worklist) pushUsages(n *ir.Node) {
	for _, u := range n.Uses() {
		w.push(u)
	}
}

func (w *worklist) pop() (*ir.Node, bool) {
	if len(w.queue) == 0 {
		return nil, false
	}
	n := w.queue[0]
	w.queue = w.queue[1:]
	w.queued.Clear(int(n.ID()))
	return n, true
}

type canonicalizer struct {
	g     *ir.Graph
	work  worklist
	log   *slog.Logger
	stats Stats
}

// Canonicalize rewrites every node of g to its canonical form until no
// rewrite applies, then removes the nodes no return uses. Stamps only
// narrow.
func Canonicalize(g *ir.Graph, opts Options) Stats {
	limit := opts.MaxIterations
	if limit <= 0 {
		limit = DefaultMaxIterations
	}
	c := &canonicalizer{g: g, log: opts.Logger}
	c.work.queued = bitset.New(int(g.MaxID()))
	for _, n := range g.Nodes() {
		c.work.push(n)
	}
	for {
		if c.stats.Visits >= limit {
			break
		}
		n, ok := c.work.pop()
		if !ok {
			c.stats.Converged = true
			break
		}
		if n.IsDead() {
			continue
		}
		c.stats.Visits++
		c.visit(n)
	}
	c.stats.Killed += g.RemoveDead()
	if c.log != nil {
		c.log.Debug("canonicalized",
			"visits", c.stats.Visits,
			"rewritten", c.stats.Rewritten,
			"merged", c.stats.Merged,
			"killed", c.stats.Killed,
			"converged", c.stats.Converged)
	}
	return c.stats
}

func (c *canonicalizer) visit(n *ir.Node) {
	if n.UpdateStamp(n.InferStamp()) {
		c.stats.Narrowed++
		c.trace("narrow", n, nil)
		c.work.pushUsages(n)
	}
	if d := c.g.FindDuplicate(n); d != nil {
		c.stats.Merged++
		c.trace("merge", n, d)
		c.replace(n, d)
		return
	}
	mark := c.g.Mark()
	if r := c.g.Canonical(n); r != n {
		c.stats.Rewritten++
		c.trace("rewrite", n, r)
		for id := ir.ID(mark); id < c.g.MaxID(); id++ {
			if m := c.g.Node(id); m != nil {
				c.work.push(m)
			}
		}
		c.replace(n, r)
		return
	}
	if n.Op().IsTrapping() && !n.IsFloating() && n.TryFloat() {
		c.stats.Floated++
		c.trace("float", n, nil)
	}
}

// replace redirects the usages of old to r and kills old. A guard on old
// moves to r when r is trapping and unguarded.
func (c *canonicalizer) replace(old, r *ir.Node) {
	if guard := old.Guard(); guard != nil && r.Op().IsTrapping() && r.Guard() == nil {
		c.g.SetGuard(r, guard)
		c.stats.Guarded++
	}
	c.g.ReplaceAtUsages(old, r)
	c.work.push(r)
	c.work.pushUsages(r)
	inputs := old.Inputs()
	for _, in := range inputs {
		c.work.push(in)
	}
	if old.UsageCount() == 0 && !old.Op().IsSink() && old.Op() != ir.OpParam {
		inputs = append([]*ir.Node(nil), inputs...)
		c.g.Kill(old)
		c.stats.Killed++
		// Inputs with one usage fewer may now be regrouped.
		for _, in := range inputs {
			c.work.pushUsages(in)
		}
	}
}

func (c *canonicalizer) trace(what string, n, r *ir.Node) {
	if c.log == nil {
		return
	}
	if r == nil {
		c.log.Debug(what, "node", n.String(), "stamp", n.Stamp().String())
		return
	}
	c.log.Debug(what, "node", n.String(), "to", r.String())
}
