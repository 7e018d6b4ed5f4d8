package bvsmt_test

import (
	"io/ioutil"
	"log"
	"os"
	"testing"

	"github.com/bvsmt/bvsmt"
	"github.com/google/go-cmp/cmp"
)

func TestMain(m *testing.M) {
	log.SetOutput(ioutil.Discard)
	os.Exit(m.Run())
}

func TestGraph_Intern(t *testing.T) {
	t.Run("Const", func(t *testing.T) {
		g := bvsmt.NewGraph()
		if x, y := g.Const(42, 8), g.Const(42, 8); x != y {
			t.Fatalf("expected shared node: %s != %s", x, y)
		} else if x.Refs() != 2 {
			t.Fatalf("unexpected refs: %d", x.Refs())
		}
	})
	t.Run("ConstTruncated", func(t *testing.T) {
		g := bvsmt.NewGraph()
		if x := g.Const(0x1FF, 8); x.Value() != 0xFF {
			t.Fatalf("unexpected value: %d", x.Value())
		}
	})
	t.Run("WidthMismatch", func(t *testing.T) {
		g := bvsmt.NewGraph()
		if x, y := g.Const(1, 8), g.Const(1, 16); x == y {
			t.Fatal("expected distinct nodes")
		}
	})
	t.Run("Binary", func(t *testing.T) {
		g := bvsmt.NewGraph()
		x, y := g.Var("x", 8), g.Var("y", 8)
		if a, b := g.Add(x, y), g.Add(x, y); a != b {
			t.Fatalf("expected shared node: %s != %s", a, b)
		}
	})
	t.Run("Commutative", func(t *testing.T) {
		g := bvsmt.NewGraph()
		x, y := g.Var("x", 8), g.Var("y", 8)
		if a, b := g.And(x, y), g.And(y, x); a != b {
			t.Fatalf("expected shared node: %s != %s", a, b)
		}
	})
	t.Run("NonCommutative", func(t *testing.T) {
		g := bvsmt.NewGraph()
		x, y := g.Var("x", 8), g.Var("y", 8)
		if a, b := g.Concat(x, y), g.Concat(y, x); a == b {
			t.Fatal("expected distinct nodes")
		}
	})
	t.Run("Param", func(t *testing.T) {
		g := bvsmt.NewGraph()
		if p, q := g.Param("p", 8), g.Param("p", 8); p == q {
			t.Fatal("expected distinct parameter nodes")
		}
	})
}

func TestGraph_Parameterized(t *testing.T) {
	g := bvsmt.NewGraph()
	k := g.Const(1, 8)
	v := g.Var("v", 8)
	p := g.Param("p", 8)

	t.Run("Const", func(t *testing.T) {
		if k.Parameterized() {
			t.Fatal("expected false")
		}
	})
	t.Run("Param", func(t *testing.T) {
		if !p.Parameterized() {
			t.Fatal("expected true")
		}
	})
	t.Run("Propagates", func(t *testing.T) {
		if !g.Add(p, v).Parameterized() {
			t.Fatal("expected true")
		} else if g.Add(k, v).Parameterized() {
			t.Fatal("expected false")
		}
	})
	t.Run("LambdaClosesOwnParam", func(t *testing.T) {
		if g.Lambda(p, g.Add(p, v)).Parameterized() {
			t.Fatal("expected false")
		}
	})
	t.Run("LambdaKeepsOuterParam", func(t *testing.T) {
		q := g.Param("q", 8)
		if !g.Lambda(q, g.Add(q, p)).Parameterized() {
			t.Fatal("expected true")
		}
	})
	t.Run("ApplyWithParamArg", func(t *testing.T) {
		q := g.Param("q", 8)
		lam := g.Lambda(q, g.Not(q))
		if !g.Apply(lam, p).Parameterized() {
			t.Fatal("expected true")
		} else if g.Apply(lam, k).Parameterized() {
			t.Fatal("expected false")
		}
	})
}

func TestGraph_Release(t *testing.T) {
	t.Run("Conservation", func(t *testing.T) {
		g := bvsmt.NewGraph()
		x := g.Var("x", 8)
		pre := g.Len()

		y := g.Var("y", 8)
		sum := g.Add(x, y)
		g.Retain(sum)
		g.Release(sum)
		g.Release(sum)
		g.Release(y)

		if got := g.Len(); got != pre {
			t.Fatalf("unexpected live nodes: %d, expected %d", got, pre)
		}
		g.Release(x)
		if got := g.Len(); got != 0 {
			t.Fatalf("unexpected live nodes: %d", got)
		}
	})

	t.Run("SharedChild", func(t *testing.T) {
		g := bvsmt.NewGraph()
		x := g.Var("x", 8)
		a, b := g.Not(x), g.Eq(x, x)
		g.Release(x)
		g.Release(a)
		if g.Len() != 2 { // x kept alive by b
			t.Fatalf("unexpected live nodes: %d", g.Len())
		}
		g.Release(b)
		if g.Len() != 0 {
			t.Fatalf("unexpected live nodes: %d", g.Len())
		}
	})

	t.Run("DeepChain", func(t *testing.T) {
		g := bvsmt.NewGraph()
		x := g.Var("x", 8)
		for i := 0; i < 50000; i++ {
			next := g.Not(x)
			g.Release(x)
			x = next
		}
		g.Release(x)
		if g.Len() != 0 {
			t.Fatalf("unexpected live nodes: %d", g.Len())
		}
	})
}

func TestNode_String(t *testing.T) {
	g := bvsmt.NewGraph()
	p := g.Param("p", 8)
	lam := g.Lambda(p, g.Add(p, g.Const(1, 8)))
	app := g.Apply(lam, g.Var("x", 8))

	if diff := cmp.Diff(`(apply (lambda (param p 8) (add (param p 8) (const 1 8))) (var x 8))`, app.String()); diff != "" {
		t.Fatal(diff)
	}
}

func TestKind_String(t *testing.T) {
	t.Run("Known", func(t *testing.T) {
		if s := bvsmt.KindLambda.String(); s != "lambda" {
			t.Fatalf("unexpected string: %s", s)
		}
	})
	t.Run("Unknown", func(t *testing.T) {
		if s := bvsmt.Kind(100).String(); s != "Kind<100>" {
			t.Fatalf("unexpected string: %s", s)
		}
	})
}

func TestGraph_CheckConsistency(t *testing.T) {
	g := bvsmt.NewGraph()
	p := g.Param("p", 8)
	g.Apply(g.Lambda(p, p), g.Const(7, 8))
	if err := g.CheckConsistency(); err != nil {
		t.Fatal(err)
	}
}
