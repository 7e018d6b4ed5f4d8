package bvsmt

import (
	"log"
	"time"
)

// debugChecks enables the exhaustive graph consistency checks at the
// end of every elimination pass.
const debugChecks = true

// EliminateApplies eliminates the function applications of every
// lambda abstraction in the graph by beta-reducing them against their
// defining lambdas, substituting the reduced terms throughout the
// graph. Only applications that are not parameterized are reduced: an
// application under a still-open bound parameter keeps its shape until
// an outer substitution closes it.
//
// Rebuilding can turn parameterized applications into
// non-parameterized ones, so the pass repeats until a round collects
// no applications. Calling it again on an already simplified graph is
// a no-op.
func (g *Graph) EliminateApplies() {
	if len(g.lambdas) == 0 {
		return
	}

	start := time.Now()
	round, rounds := 1, 0
	total := 0
	cache := newPairCache(g)

	for {
		napplies := 0
		subst := newSubstMap(g)

		// Collect & reduce the applications of every live lambda.
		for _, lam := range g.sortedLambdas() {
			for _, app := range g.applyParents(lam) {
				if app.Parameterized() {
					continue
				}

				napplies++
				repl := g.betaReduceFull(app, cache)
				subst.put(app, repl)
				g.Release(repl)
			}
		}

		total += napplies
		if napplies > 0 {
			rounds++
		}
		log.Printf("[elim] eliminate %d applications in round %d", napplies, round)

		g.substituteAndRebuild(subst)
		subst.discard()
		round++

		if napplies == 0 {
			break
		}
	}

	cache.discard()

	elapsed := time.Since(start)
	g.stats.AppliesEliminated += total
	g.stats.Rounds += rounds
	g.stats.Elapsed += elapsed
	log.Printf("[elim] eliminated %d function applications in %.3fs", total, elapsed.Seconds())

	if debugChecks {
		if err := g.CheckConsistency(); err != nil {
			panic("bvsmt: " + err.Error())
		}
		if err := g.checkAppliesEliminated(); err != nil {
			panic("bvsmt: " + err.Error())
		}
	}
}
