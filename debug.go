package bvsmt

import (
	"fmt"
)

// CheckConsistency verifies the structural invariants of the graph:
// no substituted node remains in the unique table or lambda registry,
// and no unique-table node references a substituted or dead child.
// Returns nil if the graph is consistent.
//
// The elimination driver runs this after every pass; callers may also
// run it directly after building a graph by hand.
func (g *Graph) CheckConsistency() error {
	for key, n := range g.table {
		if n.refs <= 0 {
			return fmt.Errorf("unique table holds dead node: %s", n)
		}
		if n.simplified != nil {
			return fmt.Errorf("unique table holds substituted node: %s", n)
		}
		if got := g.keyOf(n); got != key {
			return fmt.Errorf("unique table key mismatch: %s", n)
		}
		for i := 0; i < n.nchild; i++ {
			c := n.children[i]
			if c.refs <= 0 {
				return fmt.Errorf("node %s references dead child: %s", n, c)
			}
			if c.simplified != nil {
				return fmt.Errorf("node %s references substituted child: %s", n, c)
			}
			if c.parents[n.id] != n {
				return fmt.Errorf("node %s missing parent link from: %s", c, n)
			}
		}
	}

	for _, lam := range g.lambdas {
		if lam.simplified != nil {
			return fmt.Errorf("lambda registry holds substituted node: %s", lam)
		}
	}
	return nil
}

// checkAppliesEliminated verifies that no lambda abstraction retains a
// non-parameterized application. This holds only after an elimination
// pass has run to fixpoint.
func (g *Graph) checkAppliesEliminated() error {
	for _, lam := range g.sortedLambdas() {
		for _, app := range g.applyParents(lam) {
			if !app.Parameterized() {
				return fmt.Errorf("lambda %s has non-parameterized application: %s", lam, app)
			}
		}
	}
	return nil
}
