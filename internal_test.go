package bvsmt

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPairCache(t *testing.T) {
	g := NewGraph()
	a, b := g.Var("a", 8), g.Var("b", 8)
	r := g.Const(1, 8)

	c := newPairCache(g)
	c.insert(a, b, r)

	t.Run("Lookup", func(t *testing.T) {
		if got, ok := c.lookup(a, b); !ok || got != r {
			t.Fatalf("unexpected result: %v", got)
		}
	})
	t.Run("Symmetric", func(t *testing.T) {
		if got, ok := c.lookup(b, a); !ok || got != r {
			t.Fatalf("unexpected result: %v", got)
		}
	})
	t.Run("Miss", func(t *testing.T) {
		if _, ok := c.lookup(a, r); ok {
			t.Fatal("expected miss")
		}
	})
	t.Run("RetainsResult", func(t *testing.T) {
		if r.refs != 2 {
			t.Fatalf("unexpected refs: %d", r.refs)
		}
	})
	t.Run("Discard", func(t *testing.T) {
		c.discard()
		if c.len() != 0 {
			t.Fatalf("unexpected len: %d", c.len())
		} else if r.refs != 1 {
			t.Fatalf("unexpected refs: %d", r.refs)
		}
	})
}

func TestSubstMap(t *testing.T) {
	g := NewGraph()
	p := g.Param("p", 8)
	old := g.Apply(g.Lambda(p, p), g.Const(1, 8))
	repl := g.Const(1, 8)

	sm := newSubstMap(g)
	sm.put(old, repl)

	t.Run("Get", func(t *testing.T) {
		if got := sm.get(old); got != repl {
			t.Fatalf("unexpected replacement: %v", got)
		}
		if got := sm.get(repl); got != nil {
			t.Fatalf("unexpected replacement: %v", got)
		}
	})
	t.Run("Len", func(t *testing.T) {
		if sm.len() != 1 {
			t.Fatalf("unexpected len: %d", sm.len())
		}
	})
	t.Run("RetainsEntries", func(t *testing.T) {
		if old.refs != 2 {
			t.Fatalf("unexpected refs: %d", old.refs)
		}
	})
	t.Run("Discard", func(t *testing.T) {
		sm.discard()
		if old.refs != 1 {
			t.Fatalf("unexpected refs: %d", old.refs)
		}
	})
}

func TestMergeOpen(t *testing.T) {
	for _, tt := range []struct {
		a, b, want []uint64
	}{
		{nil, nil, nil},
		{[]uint64{1}, nil, []uint64{1}},
		{nil, []uint64{2}, []uint64{2}},
		{[]uint64{1, 3}, []uint64{2}, []uint64{1, 2, 3}},
		{[]uint64{1, 2}, []uint64{2, 4}, []uint64{1, 2, 4}},
		{[]uint64{5, 6}, []uint64{1, 2}, []uint64{1, 2, 5, 6}},
	} {
		if diff := cmp.Diff(tt.want, mergeOpen(tt.a, tt.b)); diff != "" {
			t.Fatal(diff)
		}
	}
}

func TestRemoveOpen(t *testing.T) {
	for _, tt := range []struct {
		set  []uint64
		id   uint64
		want []uint64
	}{
		{nil, 1, nil},
		{[]uint64{1}, 1, []uint64{}},
		{[]uint64{1, 2, 3}, 2, []uint64{1, 3}},
		{[]uint64{1, 3}, 2, []uint64{1, 3}},
	} {
		if diff := cmp.Diff(tt.want, removeOpen(tt.set, tt.id)); diff != "" {
			t.Fatal(diff)
		}
	}
}
