// Package ir implements a sea-of-nodes graph of arithmetic and logic
// nodes with stamp inference and canonicalization.
//
// Nodes float freely and are ordered only by their inputs. Every node
// carries a stamp, an over-approximation of the values it produces.
// Factories on Graph fold constants and canonicalize before installing
// a node, and return an existing equivalent node when there is one.
package ir // import "github.com/andrewarchi/seanode/ir"

import (
	"fmt"

	"github.com/andrewarchi/seanode/ir/stamp"
)

// Options selects optional rewrites of canonicalization.
type Options struct {
	StrengthReduce bool // multiplication and division by constants into shifts
	Reassociate    bool // regroup constants in associative chains
	MinMax         bool // conditionals into min and max
}

// DefaultOptions enables every rewrite.
func DefaultOptions() Options {
	return Options{StrengthReduce: true, Reassociate: true, MinMax: true}
}

// Graph owns a set of nodes, their usage lists, and the value-number
// table used to share equivalent nodes.
type Graph struct {
	nodes   []*Node // indexed by ID, nil once killed
	values  map[valueKey]*Node
	params  map[string]*Node
	returns []*Node
	opts    Options
	live    int
}

type valueKey struct {
	op  Op
	in  [3]ID
	aux Aux
}

// NodeSpec describes a node to be created without canonicalization.
type NodeSpec struct {
	Op     Op
	Inputs []*Node
	Aux    Aux
	Stamp  stamp.Stamp // declared stamp of a parameter
}

// NewGraph returns an empty graph with every rewrite enabled.
func NewGraph() *Graph {
	return &Graph{
		values: make(map[valueKey]*Node),
		params: make(map[string]*Node),
		opts:   DefaultOptions(),
	}
}

// Options returns the rewrites enabled for the graph.
func (g *Graph) Options() Options { return g.opts }

// SetOptions selects the rewrites enabled for the graph.
func (g *Graph) SetOptions(opts Options) { g.opts = opts }

// Node returns the live node with the given ID, or nil.
func (g *Graph) Node(id ID) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// Nodes returns the live nodes in ID order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, g.live)
	for _, n := range g.nodes {
		if n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Len returns the number of live nodes.
func (g *Graph) Len() int { return g.live }

// MaxID returns one more than the largest ID ever assigned.
func (g *Graph) MaxID() ID { return ID(len(g.nodes)) }

// Param returns the parameter with the given name.
func (g *Graph) Param(name string) *Node { return g.params[name] }

// Params returns the live parameters in creation order.
func (g *Graph) Params() []*Node {
	var params []*Node
	for _, n := range g.nodes {
		if n != nil && n.op == OpParam {
			params = append(params, n)
		}
	}
	return params
}

// Returns returns the live return sinks in creation order.
func (g *Graph) Returns() []*Node {
	var rets []*Node
	for _, n := range g.returns {
		if !n.dead {
			rets = append(rets, n)
		}
	}
	return rets
}

// Mark is a point in the creation history of a graph.
type Mark ID

// Mark returns the current point in the creation history.
func (g *Graph) Mark() Mark { return Mark(len(g.nodes)) }

// IsNewSince reports whether n was created after the mark.
func (n *Node) IsNewSince(m Mark) bool { return n.id >= ID(m) }

func keyOf(op Op, aux Aux, inputs []*Node) valueKey {
	k := valueKey{op: op, in: [3]ID{-1, -1, -1}, aux: aux}
	for i, in := range inputs {
		k.in[i] = in.id
	}
	return k
}

func (n *Node) key() valueKey {
	return keyOf(n.op, n.aux, n.inputs)
}

// swappedKey returns the key of n with its first two inputs exchanged.
func swappedKey(op Op, aux Aux, inputs []*Node) valueKey {
	k := keyOf(op, aux, inputs)
	k.in[0], k.in[1] = k.in[1], k.in[0]
	return k
}

func (g *Graph) lookup(op Op, aux Aux, inputs []*Node) *Node {
	if n, ok := g.values[keyOf(op, aux, inputs)]; ok {
		return n
	}
	if op.IsCommutative() {
		if n, ok := g.values[swappedKey(op, aux, inputs)]; ok {
			return n
		}
	}
	return nil
}

// AddOrUnique installs the node described by spec, or returns an existing
// node with the same operation, inputs, and aux data. The node is not
// canonicalized.
func (g *Graph) AddOrUnique(spec NodeSpec) *Node {
	g.checkSpec(spec)
	if n := g.lookup(spec.Op, spec.Aux, spec.Inputs); n != nil {
		return n
	}
	return g.add(spec)
}

func (g *Graph) unique(op Op, aux Aux, inputs ...*Node) *Node {
	return g.AddOrUnique(NodeSpec{Op: op, Inputs: inputs, Aux: aux})
}

func (g *Graph) add(spec NodeSpec) *Node {
	n := &Node{
		id:       ID(len(g.nodes)),
		op:       spec.Op,
		inputs:   append([]*Node(nil), spec.Inputs...),
		aux:      spec.Aux,
		floating: !spec.Op.IsTrapping(),
	}
	for _, in := range n.inputs {
		in.addUse(n)
	}
	n.stamp = inferStamp(n.op, n.aux, n.inputs, spec.Stamp)
	g.nodes = append(g.nodes, n)
	g.values[n.key()] = n
	g.live++
	switch n.op {
	case OpParam:
		g.params[n.aux.Name] = n
	case OpReturn:
		g.returns = append(g.returns, n)
	}
	return n
}

func (g *Graph) checkSpec(spec NodeSpec) {
	if err := g.specError(spec); err != nil {
		panic("ir: " + err.Error())
	}
}

// AddChecked is AddOrUnique for specs from outside the program, such as
// parsed or decoded graphs. It reports a malformed spec as an error
// instead of panicking.
func (g *Graph) AddChecked(spec NodeSpec) (*Node, error) {
	if err := g.specError(spec); err != nil {
		return nil, fmt.Errorf("ir: %w", err)
	}
	if n := g.lookup(spec.Op, spec.Aux, spec.Inputs); n != nil {
		return n, nil
	}
	return g.add(spec), nil
}

func (g *Graph) specError(spec NodeSpec) error {
	op := spec.Op
	if !op.IsValid() {
		return fmt.Errorf("invalid op %d", op)
	}
	if len(spec.Inputs) != op.Arity() {
		return fmt.Errorf("%v takes %d inputs, got %d", op, op.Arity(), len(spec.Inputs))
	}
	for _, in := range spec.Inputs {
		if in == nil || in.dead {
			return fmt.Errorf("%v of dead or nil input", op)
		}
	}
	if err := checkInputs(op, spec.Aux, spec.Inputs); err != nil {
		return err
	}
	switch op {
	case OpParam:
		if p := g.params[spec.Aux.Name]; p != nil && p.aux.To != spec.Aux.To {
			return fmt.Errorf("parameter %s redeclared as %v", spec.Aux.Name, spec.Aux.To)
		}
		if spec.Stamp != nil && stamp.TypeOf(spec.Stamp) != spec.Aux.To {
			return fmt.Errorf("parameter %s of type %v declared with stamp %v", spec.Aux.Name, spec.Aux.To, spec.Stamp)
		}
	case OpReturn:
		for _, r := range g.returns {
			if !r.dead && r.aux.Name == spec.Aux.Name && r.X() != spec.Inputs[0] {
				return fmt.Errorf("duplicate return %s", spec.Aux.Name)
			}
		}
	}
	return nil
}

// checkInputs reports whether the inputs have the kinds and widths op
// requires.
func checkInputs(op Op, aux Aux, inputs []*Node) error {
	value := func(n *Node) error {
		if n.op.IsLogic() || n.op.IsSink() {
			return fmt.Errorf("%v of non-value %v", op, n)
		}
		return nil
	}
	sameType := func(x, y *Node) error {
		if err := value(x); err != nil {
			return err
		}
		if err := value(y); err != nil {
			return err
		}
		if x.Type() != y.Type() {
			return fmt.Errorf("%v of mismatched %v and %v", op, x.Type(), y.Type())
		}
		return nil
	}
	kind := func(n *Node, k stamp.Kind) error {
		if n.stamp.Kind() != k {
			return fmt.Errorf("%v of %v %v", op, n.Type(), n)
		}
		return nil
	}
	logic := func(n *Node) error {
		if !n.op.IsLogic() {
			return fmt.Errorf("%v of non-logic %v", op, n)
		}
		return nil
	}
	switch {
	case op == OpConst:
		if aux.Const.Kind() == stamp.VoidKind {
			return fmt.Errorf("const without a value")
		}
	case op == OpParam:
		if aux.Name == "" || aux.To.Kind == stamp.VoidKind {
			return fmt.Errorf("param without a name or type")
		}
	case op == OpNeg || op == OpAbs:
		if err := value(inputs[0]); err != nil {
			return err
		}
		if k := inputs[0].stamp.Kind(); k != stamp.IntKind && k != stamp.FloatKind {
			return fmt.Errorf("%v of %v", op, inputs[0].Type())
		}
	case op == OpNot:
		return kind(inputs[0], stamp.IntKind)
	case op == OpSqrt:
		return kind(inputs[0], stamp.FloatKind)
	case op == OpConvert:
		if err := value(inputs[0]); err != nil {
			return err
		}
		if !stamp.ValidConvert(aux.Convert, inputs[0].Type(), aux.To) {
			return fmt.Errorf("invalid %v from %v to %v", aux.Convert, inputs[0].Type(), aux.To)
		}
	case op.isArith():
		if err := sameType(inputs[0], inputs[1]); err != nil {
			return err
		}
		if !stamp.ForStamp(inputs[0].stamp).Supports(op.info().binary) {
			return fmt.Errorf("%v of %v", op, inputs[0].Type())
		}
		if op == OpFloatDiv || op == OpFloatRem {
			return kind(inputs[0], stamp.FloatKind)
		}
		if op.IsTrapping() {
			return kind(inputs[0], stamp.IntKind)
		}
	case op.isShift():
		if err := kind(inputs[0], stamp.IntKind); err != nil {
			return err
		}
		if err := kind(inputs[1], stamp.IntKind); err != nil {
			return err
		}
		if !stamp.IsPowerOf2(int64(inputs[0].bits())) {
			return fmt.Errorf("%v of %v", op, inputs[0].Type())
		}
	case op.IsExact():
		if err := sameType(inputs[0], inputs[1]); err != nil {
			return err
		}
		return kind(inputs[0], stamp.IntKind)
	case op.isIntegerCompare() || op == OpIntegerTest:
		if err := sameType(inputs[0], inputs[1]); err != nil {
			return err
		}
		return kind(inputs[0], stamp.IntKind)
	case op.isFloatCompare():
		if err := sameType(inputs[0], inputs[1]); err != nil {
			return err
		}
		return kind(inputs[0], stamp.FloatKind)
	case op == OpObjectEquals:
		if err := sameType(inputs[0], inputs[1]); err != nil {
			return err
		}
		return kind(inputs[0], stamp.ObjectKind)
	case op == OpIsNull:
		return kind(inputs[0], stamp.ObjectKind)
	case op == OpLogicNegation:
		return logic(inputs[0])
	case op == OpLogicOr:
		if err := logic(inputs[0]); err != nil {
			return err
		}
		return logic(inputs[1])
	case op == OpConditional:
		if err := logic(inputs[0]); err != nil {
			return err
		}
		return sameType(inputs[1], inputs[2])
	case op == OpReturn:
		if aux.Name == "" {
			return fmt.Errorf("return without a name")
		}
		return value(inputs[0])
	}
	return nil
}

// FindDuplicate returns a live node other than n with the same
// operation, inputs, and aux data, or nil.
func (g *Graph) FindDuplicate(n *Node) *Node {
	if d := g.lookup(n.op, n.aux, n.inputs); d != nil && d != n {
		return d
	}
	return nil
}

func (g *Graph) unregister(n *Node) {
	k := n.key()
	if g.values[k] == n {
		delete(g.values, k)
	}
}

func (g *Graph) register(n *Node) {
	if g.lookup(n.op, n.aux, n.inputs) == nil {
		g.values[n.key()] = n
	}
}

// ReplaceAtUsages redirects every usage of old, including guard
// references, to replacement. Users that become equivalent to another
// node stay in the graph until FindDuplicate merges them.
func (g *Graph) ReplaceAtUsages(old, replacement *Node) {
	if old == replacement {
		return
	}
	if replacement.dead {
		panic(fmt.Sprintf("ir: replace %v with dead %v", old, replacement))
	}
	if old.op.IsLogic() != replacement.op.IsLogic() ||
		!old.op.IsLogic() && old.Type() != replacement.Type() {
		panic(fmt.Sprintf("ir: replace %v with incompatible %v", old, replacement))
	}
	users := old.uses
	old.uses = nil
	for _, u := range users {
		g.unregister(u)
		for j, in := range u.inputs {
			if in == old {
				u.inputs[j] = replacement
				replacement.addUse(u)
			}
		}
		if u.guard == old {
			u.guard = replacement
			replacement.addUse(u)
		}
		g.register(u)
	}
}

// SetGuard attaches a logic node whose success proves that n does not
// trap.
func (g *Graph) SetGuard(n, guard *Node) {
	if !n.op.IsTrapping() {
		panic(fmt.Sprintf("ir: guard on non-trapping %v", n))
	}
	if guard != nil && !guard.op.IsLogic() {
		panic(fmt.Sprintf("ir: guard %v is not a condition", guard))
	}
	if n.guard != nil {
		n.guard.removeUse(n)
	}
	n.guard = guard
	if guard != nil {
		guard.addUse(n)
	}
}

// Kill removes a node without usages from the graph.
func (g *Graph) Kill(n *Node) {
	if n.dead {
		return
	}
	if len(n.uses) != 0 {
		panic(fmt.Sprintf("ir: kill %v with %d usages", n, len(n.uses)))
	}
	g.unregister(n)
	for _, in := range n.inputs {
		in.removeUse(n)
	}
	if n.guard != nil {
		n.guard.removeUse(n)
		n.guard = nil
	}
	if n.op == OpParam && g.params[n.aux.Name] == n {
		delete(g.params, n.aux.Name)
	}
	n.dead = true
	g.nodes[n.id] = nil
	g.live--
}

// RemoveDead kills every node that no sink transitively uses and returns
// the number of nodes killed. Parameters are kept.
func (g *Graph) RemoveDead() int {
	var work []*Node
	for _, n := range g.nodes {
		if n != nil && g.isUnused(n) {
			work = append(work, n)
		}
	}
	killed := 0
	for len(work) != 0 {
		n := work[len(work)-1]
		work = work[:len(work)-1]
		if n.dead || !g.isUnused(n) {
			continue
		}
		inputs := append([]*Node(nil), n.inputs...)
		if n.guard != nil {
			inputs = append(inputs, n.guard)
		}
		g.Kill(n)
		killed++
		for _, in := range inputs {
			if g.isUnused(in) {
				work = append(work, in)
			}
		}
	}
	return killed
}

func (g *Graph) isUnused(n *Node) bool {
	return len(n.uses) == 0 && !n.op.IsSink() && n.op != OpParam
}

// Verify checks the consistency of usage lists, the value-number table,
// and the input types of every node.
func (g *Graph) Verify() error {
	count := make(map[[2]ID]int)
	live := 0
	for id, n := range g.nodes {
		if n == nil {
			continue
		}
		live++
		if n.id != ID(id) || n.dead {
			return fmt.Errorf("ir: node %v stored at %d", n, id)
		}
		if len(n.inputs) != n.op.Arity() {
			return fmt.Errorf("ir: %v has %d inputs", n, len(n.inputs))
		}
		for _, in := range n.inputs {
			if in.dead {
				return fmt.Errorf("ir: %v uses dead %v", n, in)
			}
			count[[2]ID{in.id, n.id}]++
		}
		if n.guard != nil {
			if n.guard.dead {
				return fmt.Errorf("ir: %v guarded by dead %v", n, n.guard)
			}
			count[[2]ID{n.guard.id, n.id}]++
		}
		if err := checkInputs(n.op, n.aux, n.inputs); err != nil {
			return fmt.Errorf("ir: %v: %w", n, err)
		}
		if n.stamp == nil {
			return fmt.Errorf("ir: %v has no stamp", n)
		}
	}
	if live != g.live {
		return fmt.Errorf("ir: %d live nodes, counted %d", g.live, live)
	}
	for _, n := range g.nodes {
		if n == nil {
			continue
		}
		for _, u := range n.uses {
			if u.dead {
				return fmt.Errorf("ir: %v used by dead %v", n, u)
			}
			count[[2]ID{n.id, u.id}]--
		}
	}
	for edge, c := range count {
		if c != 0 {
			return fmt.Errorf("ir: usage list of %v disagrees with inputs of %v", g.nodes[edge[0]], g.nodes[edge[1]])
		}
	}
	for k, n := range g.values {
		if n.dead || n.key() != k {
			return fmt.Errorf("ir: stale value number for %v", n)
		}
	}
	if g.dependencies().HasCycle() {
		return fmt.Errorf("ir: cyclic inputs")
	}
	return nil
}
