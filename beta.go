package bvsmt

// pairKey is the canonicalized (min, max) form of an unordered pair of
// node identifiers.
type pairKey struct {
	a, b uint64
}

func makePairKey(x, y *Node) pairKey {
	if x.id > y.id {
		x, y = y, x
	}
	return pairKey{a: x.id, b: y.id}
}

// pairCache memoizes beta-reduction results across an elimination
// pass, keyed by the unordered pair of the lambda and its actual
// argument. The cache owns one reference per stored result for its
// own lifetime.
type pairCache struct {
	g *Graph
	m map[pairKey]*Node
}

// newPairCache returns a new instance of pairCache.
func newPairCache(g *Graph) *pairCache {
	return &pairCache{g: g, m: make(map[pairKey]*Node)}
}

// lookup returns the cached reduction for the unordered pair (x, y).
// The returned reference is borrowed from the cache.
func (c *pairCache) lookup(x, y *Node) (*Node, bool) {
	n, ok := c.m[makePairKey(x, y)]
	return n, ok
}

// insert stores result for the unordered pair (x, y), retaining one
// reference for the cache's lifetime.
func (c *pairCache) insert(x, y, result *Node) {
	key := makePairKey(x, y)
	_, ok := c.m[key]
	assert(!ok, "pair cache: duplicate entry: (%d, %d)", key.a, key.b)
	c.m[key] = c.g.Retain(result)
}

// len returns the number of cached reductions.
func (c *pairCache) len() int { return len(c.m) }

// discard releases every held reference and empties the cache.
func (c *pairCache) discard() {
	for _, n := range c.m {
		c.g.Release(n)
	}
	c.m = make(map[pairKey]*Node)
}

// betaReduceFull returns the fully reduced form of an application:
// the lambda's body with every occurrence of its parameter replaced by
// the actual argument, with any redex produced by the substitution
// reduced as well. The returned node carries one reference owned by
// the caller.
func (g *Graph) betaReduceFull(app *Node, cache *pairCache) *Node {
	assert(app.kind == KindApply, "beta: application required, got %s", app.kind)
	fun := g.Resolve(app.children[0])
	arg := g.Resolve(app.children[1])
	assert(fun.kind == KindLambda, "beta: lambda required in function position, got %s", fun.kind)
	return g.betaApply(fun, arg, cache)
}

// betaApply reduces lam applied to arg, consulting and populating the
// pair cache. The returned node carries one reference owned by the
// caller.
func (g *Graph) betaApply(lam, arg *Node, cache *pairCache) *Node {
	if res, ok := cache.lookup(lam, arg); ok {
		return g.Retain(res)
	}

	memo := make(map[uint64]*Node)
	res := g.Retain(g.betaSubst(lam.children[1], lam.children[0], arg, cache, memo))
	for _, n := range memo {
		g.Release(n)
	}

	cache.insert(lam, arg, res)
	return res
}

// betaSubst rewrites n with param replaced by arg, re-interning every
// rebuilt subterm and reducing any application whose function position
// resolves to a lambda. Subterms that neither reference param nor
// contain a redex are shared with the input, not copied.
//
// The returned reference is borrowed: it is owned either by memo or by
// the existing graph. memo owns one reference per entry; the caller of
// the outermost betaSubst releases them.
func (g *Graph) betaSubst(n, param, arg *Node, cache *pairCache, memo map[uint64]*Node) *Node {
	if n == param {
		return arg
	} else if n.nchild == 0 {
		return n
	}
	if res, ok := memo[n.id]; ok {
		return res
	}

	c0 := g.betaSubst(n.children[0], param, arg, cache, memo)
	var c1 *Node
	if n.nchild == 2 {
		c1 = g.betaSubst(n.children[1], param, arg, cache, memo)
	}

	var res *Node
	if n.kind == KindApply && c0.kind == KindLambda {
		res = g.betaApply(c0, c1, cache)
	} else if c0 == n.children[0] && (n.nchild < 2 || c1 == n.children[1]) {
		// Nothing changed underneath; share the input node.
		memo[n.id] = g.Retain(n)
		return n
	} else if n.nchild == 1 {
		res = g.intern(n.kind, n.width, n.value, n.name, c0)
	} else {
		res = g.intern(n.kind, n.width, n.value, n.name, c0, c1)
	}

	memo[n.id] = res
	return res
}
