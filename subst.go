package bvsmt

import (
	"sort"

	"github.com/benbjohnson/immutable"
)

// substitution is a single replacement registered for one round.
type substitution struct {
	old  *Node
	repl *Node
}

// substMap records the substitutions of one elimination round, keyed
// by the identifier of the node being replaced. The map owns one
// reference to each key and each value until it is discarded. Sorted
// keys give the rebuild step a deterministic construction-order walk.
type substMap struct {
	g *Graph
	m *immutable.SortedMap
}

// newSubstMap returns a new instance of substMap.
func newSubstMap(g *Graph) *substMap {
	return &substMap{g: g, m: immutable.NewSortedMap(&uint64Comparer{})}
}

// put registers repl as the replacement of old. A node is substituted
// at most once per round.
func (sm *substMap) put(old, repl *Node) {
	_, ok := sm.m.Get(old.id)
	assert(!ok, "substitution registered twice: %s", old)
	sm.g.Retain(old)
	sm.g.Retain(repl)
	sm.m = sm.m.Set(old.id, &substitution{old: old, repl: repl})
}

// get returns the registered replacement of n, or nil.
func (sm *substMap) get(n *Node) *Node {
	v, ok := sm.m.Get(n.id)
	if !ok {
		return nil
	}
	return v.(*substitution).repl
}

// len returns the number of registered substitutions.
func (sm *substMap) len() int { return sm.m.Len() }

// discard releases every held reference and drops the map.
func (sm *substMap) discard() {
	itr := sm.m.Iterator()
	for {
		k, v := itr.Next()
		if k == nil {
			break
		}
		s := v.(*substitution)
		sm.g.Release(s.old)
		sm.g.Release(s.repl)
	}
	sm.m = nil
}

// substituteAndRebuild replaces every reference to a key of sm with
// its registered replacement throughout the graph. Every ancestor of a
// substituted node is re-interned with its rewritten children, so the
// rebuilt region stays hash-consed and may collapse onto pre-existing
// structurally identical nodes. Nodes with multiple parents are
// rewritten once and every parent observes the same replacement;
// parents outside the rebuilt region keep their child references
// untouched.
//
// Replaced nodes leave the unique table and lambda registry
// immediately and carry a substitution link for callers still holding
// them; they are destroyed through normal reference-count accounting.
func (g *Graph) substituteAndRebuild(sm *substMap) {
	if sm.len() == 0 {
		return
	}

	// Collect the rebuild region: every substituted node plus all of
	// its transitive parents.
	dirty := make(map[uint64]*Node)
	var queue []*Node
	itr := sm.m.Iterator()
	for {
		k, v := itr.Next()
		if k == nil {
			break
		}
		queue = append(queue, v.(*substitution).old)
	}
	for len(queue) > 0 {
		n := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		if _, ok := dirty[n.id]; ok {
			continue
		}
		dirty[n.id] = n
		for _, p := range n.parents {
			queue = append(queue, p)
		}
	}

	// Rewrite the region bottom-up over current child references. A
	// registered replacement may share subgraphs that contain other
	// substituted nodes, and those subgraphs carry identifiers newer
	// than their rebuilt ancestors, so a flat construction-order walk
	// is not enough: each node recursively rebuilds everything it
	// references before it is re-interned itself.
	var rebuild func(n *Node) *Node
	rebuild = func(n *Node) *Node {
		for {
			n = g.Resolve(n)
			if _, ok := dirty[n.id]; !ok {
				return n
			}
			delete(dirty, n.id)

			var repl *Node
			if r := sm.get(n); r != nil {
				repl = g.Retain(rebuild(r))
			} else if n.nchild == 1 {
				repl = g.intern(n.kind, n.width, n.value, n.name, rebuild(n.children[0]))
			} else {
				repl = g.intern(n.kind, n.width, n.value, n.name,
					rebuild(n.children[0]), rebuild(n.children[1]))
			}

			if repl == n {
				g.Release(repl)
				return n
			}
			g.setSimplified(n, repl)

			// Re-interning can collapse onto a pre-existing node that
			// is itself part of the region; keep rewriting until the
			// replacement is final.
			n = repl
		}
	}

	order := make([]*Node, 0, len(dirty))
	for _, n := range dirty {
		order = append(order, n)
	}
	sort.Slice(order, func(i, j int) bool { return order[i].id < order[j].id })
	for _, old := range order {
		// Disconnecting earlier nodes can cascade destruction into the
		// region; dead nodes need no rewrite.
		if old.refs > 0 {
			rebuild(old)
		} else {
			delete(dirty, old.id)
		}
	}
}

// uint64Comparer compares two 64-bit unsigned integers. Implements
// immutable.Comparer.
type uint64Comparer struct{}

// Compare returns -1 if a is less than b, returns 1 if a is greater
// than b, and returns 0 if a is equal to b. Panic if a or b is not a
// uint64.
func (c *uint64Comparer) Compare(a, b interface{}) int {
	if i, j := a.(uint64), b.(uint64); i < j {
		return -1
	} else if i > j {
		return 1
	}
	return 0
}
