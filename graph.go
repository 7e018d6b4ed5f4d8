package bvsmt

import (
	"sort"
	"time"
)

// nodeKey is the structural identity of a node in the unique table.
type nodeKey struct {
	kind  Kind
	width uint
	value uint64
	name  string
	c0    uint64
	c1    uint64
}

// Graph owns a hash-consed expression graph: the unique table of live
// nodes, the registry of live lambda abstractions, and the counters
// reported after simplification. All node construction goes through
// the graph so that structurally identical terms share one node.
//
// A graph is owned by a single session; methods must not be called
// concurrently.
type Graph struct {
	seq      uint64
	paramSeq uint64
	table    map[nodeKey]*Node
	lambdas  map[uint64]*Node

	stats Stats
}

// Stats tracks counters for the elimination pass.
// The counters are observational only.
type Stats struct {
	AppliesEliminated int           // applications eliminated, total
	Rounds            int           // rounds that eliminated an application
	Elapsed           time.Duration // time spent in elimination
}

// NewGraph returns a new instance of Graph.
func NewGraph() *Graph {
	return &Graph{
		table:   make(map[nodeKey]*Node),
		lambdas: make(map[uint64]*Node),
	}
}

// Len returns the number of live nodes in the unique table.
func (g *Graph) Len() int { return len(g.table) }

// Stats returns a copy of the graph's counters.
func (g *Graph) Stats() Stats { return g.stats }

// keyOf returns the unique-table key for an existing node.
func (g *Graph) keyOf(n *Node) nodeKey {
	key := nodeKey{kind: n.kind, width: n.width, value: n.value, name: n.name}
	if n.nchild > 0 {
		key.c0 = n.children[0].id
	}
	if n.nchild > 1 {
		key.c1 = n.children[1].id
	}
	return key
}

// commutative returns true for kinds whose operand order is normalized.
func commutative(kind Kind) bool {
	return kind == KindAnd || kind == KindAdd || kind == KindEq
}

// intern returns the canonical node for the given structural shape,
// creating it if absent. The returned node carries one reference owned
// by the caller.
func (g *Graph) intern(kind Kind, width uint, value uint64, name string, children ...*Node) *Node {
	if commutative(kind) && children[0].id > children[1].id {
		children[0], children[1] = children[1], children[0]
	}

	key := nodeKey{kind: kind, width: width, value: value, name: name}
	if len(children) > 0 {
		key.c0 = children[0].id
	}
	if len(children) > 1 {
		key.c1 = children[1].id
	}
	if n, ok := g.table[key]; ok {
		return g.Retain(n)
	}

	g.seq++
	n := &Node{
		id:      g.seq,
		kind:    kind,
		width:   width,
		value:   value,
		name:    name,
		nchild:  len(children),
		refs:    1,
		parents: make(map[uint64]*Node),
	}
	for i, c := range children {
		assert(c.refs > 0, "intern: dead child: %s", c)
		assert(c.simplified == nil, "intern: substituted child: %s", c)
		n.children[i] = c
		g.Retain(c)
		c.parents[n.id] = n
	}

	switch kind {
	case KindParam:
		n.open = []uint64{n.id}
	case KindLambda:
		n.open = removeOpen(children[1].open, children[0].id)
	default:
		if n.nchild == 1 {
			n.open = children[0].open
		} else if n.nchild == 2 {
			n.open = mergeOpen(children[0].open, children[1].open)
		}
	}

	g.table[key] = n
	if kind == KindLambda {
		g.lambdas[n.id] = n
	}
	return n
}

// Const returns the canonical constant node for value & width.
func (g *Graph) Const(value uint64, width uint) *Node {
	assert(width > 0 && width <= Width64, "const: invalid width: %d", width)
	if width < Width64 {
		value &= (1 << width) - 1
	}
	return g.intern(KindConst, width, value, "")
}

// Var returns the canonical free variable node for name & width.
func (g *Graph) Var(name string, width uint) *Node {
	assert(width > 0, "var: invalid width: %d", width)
	return g.intern(KindVar, width, 0, name)
}

// Param returns a new bound parameter node. Parameters are never
// shared: every call returns a distinct node, even for an identical
// name & width, since each binds to its own lambda.
func (g *Graph) Param(name string, width uint) *Node {
	assert(width > 0, "param: invalid width: %d", width)
	g.paramSeq++
	return g.intern(KindParam, width, g.paramSeq, name)
}

// Not returns the bitwise complement of x.
func (g *Graph) Not(x *Node) *Node {
	return g.intern(KindNot, x.width, 0, "", x)
}

// And returns the bitwise conjunction of x & y.
func (g *Graph) And(x, y *Node) *Node {
	assert(x.width == y.width, "and: width mismatch: %d != %d", x.width, y.width)
	return g.intern(KindAnd, x.width, 0, "", x, y)
}

// Add returns the sum of x & y.
func (g *Graph) Add(x, y *Node) *Node {
	assert(x.width == y.width, "add: width mismatch: %d != %d", x.width, y.width)
	return g.intern(KindAdd, x.width, 0, "", x, y)
}

// Eq returns the equality of x & y.
func (g *Graph) Eq(x, y *Node) *Node {
	assert(x.width == y.width, "eq: width mismatch: %d != %d", x.width, y.width)
	return g.intern(KindEq, WidthBool, 0, "", x, y)
}

// Concat returns the concatenation of msb & lsb.
func (g *Graph) Concat(msb, lsb *Node) *Node {
	return g.intern(KindConcat, msb.width+lsb.width, 0, "", msb, lsb)
}

// Lambda returns the abstraction binding param over body.
func (g *Graph) Lambda(param, body *Node) *Node {
	assert(param.kind == KindParam, "lambda: parameter required, got %s", param.kind)
	return g.intern(KindLambda, body.width, 0, "", param, body)
}

// Apply returns the application of fun to arg. The function position
// must be a lambda abstraction or a parameter of function position
// once substitution chains are followed; this is the front end's
// obligation, not checked here.
func (g *Graph) Apply(fun, arg *Node) *Node {
	if fun.kind == KindLambda {
		assert(fun.children[0].width == arg.width,
			"apply: argument width mismatch: %d != %d", fun.children[0].width, arg.width)
	}
	return g.intern(KindApply, fun.width, 0, "", fun, arg)
}

// Retain increments the reference count of n and returns it.
func (g *Graph) Retain(n *Node) *Node {
	assert(n.refs > 0, "retain: dead node: %s", n)
	n.refs++
	return n
}

// Release decrements the reference count of n. A node reaching zero is
// destroyed: its unique-table entry is dropped, its parent links are
// detached, and its children are released in turn. Destruction uses an
// explicit worklist so that releasing a deep chain does not grow the
// call stack.
func (g *Graph) Release(n *Node) {
	wl := []*Node{n}
	for len(wl) > 0 {
		cur := wl[len(wl)-1]
		wl = wl[:len(wl)-1]

		assert(cur.refs > 0, "release: refcount underflow: %s", cur)
		cur.refs--
		if cur.refs > 0 {
			continue
		}

		if key := g.keyOf(cur); g.table[key] == cur {
			delete(g.table, key)
		}
		delete(g.lambdas, cur.id)

		for i := 0; i < cur.nchild; i++ {
			c := cur.children[i]
			delete(c.parents, cur.id)
			wl = append(wl, c)
		}
		if cur.simplified != nil {
			wl = append(wl, cur.simplified)
			cur.simplified = nil
		}
	}
}

// Resolve follows substitution links to the current representative of
// n. Callers holding references from before a simplification pass must
// resolve them to observe the rebuilt graph. The returned reference is
// borrowed; retain it to own it.
func (g *Graph) Resolve(n *Node) *Node {
	for n.simplified != nil {
		n = n.simplified
	}
	return n
}

// setSimplified records repl as the replacement of old, turning old
// into a bare forwarding node: it leaves the unique table and the
// lambda registry, and its child edges are detached so that parent
// enumeration never reports it again. Ownership of one reference to
// repl transfers to the substitution link; it is released when old is
// destroyed.
func (g *Graph) setSimplified(old, repl *Node) {
	assert(old != repl, "substitute: self substitution: %s", old)
	assert(old.simplified == nil, "substitute: already substituted: %s", old)

	if key := g.keyOf(old); g.table[key] == old {
		delete(g.table, key)
	}
	delete(g.lambdas, old.id)

	old.simplified = repl
	for i := 0; i < old.nchild; i++ {
		c := old.children[i]
		old.children[i] = nil
		delete(c.parents, old.id)
		g.Release(c)
	}
	old.nchild = 0
}

// sortedLambdas returns the live lambda abstractions in construction
// order.
func (g *Graph) sortedLambdas() []*Node {
	a := make([]*Node, 0, len(g.lambdas))
	for _, n := range g.lambdas {
		a = append(a, n)
	}
	sort.Slice(a, func(i, j int) bool { return a[i].id < a[j].id })
	return a
}

// applyParents returns the applications of fun, in construction order.
// Only parents using fun in function position qualify; an apply that
// passes fun as an argument does not.
func (g *Graph) applyParents(fun *Node) []*Node {
	a := make([]*Node, 0, len(fun.parents))
	for _, p := range fun.parents {
		if p.kind == KindApply && p.children[0] == fun {
			a = append(a, p)
		}
	}
	sort.Slice(a, func(i, j int) bool { return a[i].id < a[j].id })
	return a
}
