package bvsmt

import (
	"fmt"
	"sort"
)

// Kind identifies the structural shape of a node.
type Kind int

// Node kinds.
const (
	KindConst = Kind(iota + 1)
	KindVar
	KindParam
	KindNot
	KindAnd
	KindAdd
	KindEq
	KindConcat
	KindApply
	KindLambda
)

var kinds = [...]string{
	KindConst:  "const",
	KindVar:    "var",
	KindParam:  "param",
	KindNot:    "not",
	KindAnd:    "and",
	KindAdd:    "add",
	KindEq:     "eq",
	KindConcat: "concat",
	KindApply:  "apply",
	KindLambda: "lambda",
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	if k > 0 && k < Kind(len(kinds)) && kinds[k] != "" {
		return kinds[k]
	}
	return fmt.Sprintf("Kind<%d>", k)
}

// Node represents a hash-consed expression graph node. Nodes are
// immutable once interned: their kind, width, payload, and children
// never change. Identity is structural; the owning Graph guarantees
// that two live nodes never share the same shape.
//
// Nodes are shared and reference counted. Parents own one reference
// per child edge and external callers own one reference per node
// returned to them by the Graph.
type Node struct {
	id    uint64
	kind  Kind
	width uint

	// Payload: constant value for KindConst, sequence for KindParam.
	value uint64
	// Payload: name for KindVar and KindParam.
	name string

	children [2]*Node
	nchild   int

	// Bound parameters in the subgraph not closed by an enclosing
	// lambda within the subgraph, as sorted parameter node ids.
	open []uint64

	refs       int
	parents    map[uint64]*Node
	simplified *Node
}

// ID returns the construction-order identifier of the node.
// A node's identifier is always greater than those of its children.
func (n *Node) ID() uint64 { return n.id }

// Kind returns the kind tag of the node.
func (n *Node) Kind() Kind { return n.kind }

// Width returns the bit width of the node.
func (n *Node) Width() uint { return n.width }

// Value returns the constant payload. Only meaningful for KindConst.
func (n *Node) Value() uint64 { return n.value }

// Name returns the name payload. Only meaningful for KindVar & KindParam.
func (n *Node) Name() string { return n.name }

// Arity returns the number of children.
func (n *Node) Arity() int { return n.nchild }

// Child returns the i-th child of the node.
func (n *Node) Child(i int) *Node {
	assert(i >= 0 && i < n.nchild, "child index out of range: %d", i)
	return n.children[i]
}

// Parameterized returns true if the node's subgraph contains a bound
// parameter not closed by an enclosing lambda within the subgraph.
func (n *Node) Parameterized() bool { return len(n.open) > 0 }

// Refs returns the current reference count of the node.
func (n *Node) Refs() int { return n.refs }

// dependsOn returns true if paramID is open in the node's subgraph.
func (n *Node) dependsOn(paramID uint64) bool {
	i := sort.Search(len(n.open), func(i int) bool { return n.open[i] >= paramID })
	return i < len(n.open) && n.open[i] == paramID
}

// String returns the string representation of the node. A substituted
// node prints as a forwarding marker; resolve it through the graph to
// print its replacement.
func (n *Node) String() string {
	if n.simplified != nil {
		return fmt.Sprintf("(proxy %d)", n.id)
	}
	switch n.kind {
	case KindConst:
		return fmt.Sprintf("(const %d %d)", n.value, n.width)
	case KindVar:
		return fmt.Sprintf("(var %s %d)", n.name, n.width)
	case KindParam:
		return fmt.Sprintf("(param %s %d)", n.name, n.width)
	case KindNot:
		return fmt.Sprintf("(not %s)", n.children[0])
	default:
		return fmt.Sprintf("(%s %s %s)", n.kind, n.children[0], n.children[1])
	}
}

// mergeOpen returns the sorted union of two open-parameter sets.
func mergeOpen(a, b []uint64) []uint64 {
	if len(a) == 0 {
		return b
	} else if len(b) == 0 {
		return a
	}

	out := make([]uint64, 0, len(a)+len(b))
	for len(a) > 0 && len(b) > 0 {
		if a[0] < b[0] {
			out, a = append(out, a[0]), a[1:]
		} else if a[0] > b[0] {
			out, b = append(out, b[0]), b[1:]
		} else {
			out, a, b = append(out, a[0]), a[1:], b[1:]
		}
	}
	out = append(out, a...)
	out = append(out, b...)
	return out
}

// removeOpen returns set without paramID. The result shares set when
// paramID is not present.
func removeOpen(set []uint64, paramID uint64) []uint64 {
	i := sort.Search(len(set), func(i int) bool { return set[i] >= paramID })
	if i == len(set) || set[i] != paramID {
		return set
	}
	out := make([]uint64, 0, len(set)-1)
	out = append(out, set[:i]...)
	out = append(out, set[i+1:]...)
	return out
}
