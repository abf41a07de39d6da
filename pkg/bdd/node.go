package bdd

import (
	"slices"
	"strconv"
)

// Node is a vertex of a decision diagram. A leaf has no children; an internal
// node has both. Nodes are compared by identity: two pointers to the same Node
// are the same vertex, and canonical diagrams never hold two distinct nodes
// with the same label and children.
type Node struct {
	label Label
	low   *Node
	high  *Node
}

func newLeaf(l Label) *Node { return &Node{label: l} }

func newNode(l Label, low, high *Node) *Node {
	return &Node{label: l, low: low, high: high}
}

// Label returns the node's tag.
func (n *Node) Label() Label { return n.label }

// Low returns the child reached when the node's variable is false, or nil for a leaf.
func (n *Node) Low() *Node { return n.low }

// High returns the child reached when the node's variable is true, or nil for a leaf.
func (n *Node) High() *Node { return n.high }

// IsLeaf reports whether n is a terminal node.
func (n *Node) IsLeaf() bool { return n.low == nil && n.high == nil }

func (n *Node) String() string { return n.label.String() }

// Diagram is a rooted decision DAG over Vars() variables. The stage-specific
// wrappers [Tree], [Signed], [Canonical] and [Product] embed it.
//
// A Diagram is immutable once returned by this package and may be read from
// several goroutines.
type Diagram struct {
	root *Node
	vars int
}

// Root returns the root node.
func (d *Diagram) Root() *Node { return d.root }

// Vars returns the number of variables the diagram is defined over.
func (d *Diagram) Vars() int { return d.vars }

// NodeCount returns the number of distinct nodes reachable from the root.
func (d *Diagram) NodeCount() int { return NodeCount(d.root) }

// Walk visits every distinct node reachable from the root once, in pre-order
// with low before high. Returning false from fn stops the walk.
func (d *Diagram) Walk(fn func(*Node) bool) {
	walk(d.root, fn)
}

// Nodes returns the distinct nodes in Walk order.
func (d *Diagram) Nodes() []*Node {
	var out []*Node
	d.Walk(func(n *Node) bool {
		out = append(out, n)
		return true
	})
	return out
}

// Index numbers the distinct nodes in Walk order, starting at 0 for the root.
// The numbering is stable for a given diagram and is used to name nodes in
// serialized and rendered output.
func (d *Diagram) Index() map[*Node]int {
	ids := make(map[*Node]int)
	d.Walk(func(n *Node) bool {
		ids[n] = len(ids)
		return true
	})
	return ids
}

// NodeID names the node numbered i by Index, as "n<i>".
func NodeID(i int) string {
	return "n" + strconv.Itoa(i)
}

// NodeCount counts the distinct nodes reachable from root. Shared nodes are
// counted once no matter how many parents point at them.
func NodeCount(root *Node) int {
	count := 0
	walk(root, func(*Node) bool {
		count++
		return true
	})
	return count
}

func walk(root *Node, fn func(*Node) bool) {
	if root == nil {
		return
	}
	seen := map[*Node]struct{}{root: {}}
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) {
			return
		}
		// push high first so low is visited first
		for _, c := range [2]*Node{n.high, n.low} {
			if c == nil {
				continue
			}
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			stack = append(stack, c)
		}
	}
}

// postorder returns the distinct nodes below root, children before parents.
func postorder(root *Node) []*Node {
	if root == nil {
		return nil
	}
	type frame struct {
		n        *Node
		expanded bool
	}
	var out []*Node
	seen := map[*Node]struct{}{}
	stack := []frame{{n: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.expanded {
			out = append(out, f.n)
			continue
		}
		if _, ok := seen[f.n]; ok {
			continue
		}
		seen[f.n] = struct{}{}
		stack = append(stack, frame{n: f.n, expanded: true})
		for _, c := range [2]*Node{f.n.high, f.n.low} {
			if c != nil {
				stack = append(stack, frame{n: c})
			}
		}
	}
	return out
}

// uniqueKey identifies a node by content. Children are compared by identity,
// which is sound once they have themselves been hash-consed.
type uniqueKey struct {
	label     string
	low, high *Node
}

// uniqueTable hash-conses nodes: at most one node exists per key.
type uniqueTable map[uniqueKey]*Node

func (u uniqueTable) leaf(l Label) *Node {
	k := uniqueKey{label: keyOf(l)}
	if n, ok := u[k]; ok {
		return n
	}
	n := newLeaf(l)
	u[k] = n
	return n
}

func (u uniqueTable) node(l Label, low, high *Node) *Node {
	k := uniqueKey{label: keyOf(l), low: low, high: high}
	if n, ok := u[k]; ok {
		return n
	}
	n := newNode(l, low, high)
	u[k] = n
	return n
}

// keyOf renders a label for use as a table key. The kind prefix keeps labels of
// different variants apart even when their renderings collide.
func keyOf(l Label) string {
	switch v := l.(type) {
	case Variable:
		return "v" + v.String()
	case Leaf:
		return "l" + v.String()
	case Signature:
		return "s" + v.Word
	case Merged:
		return "m" + keyOf(v.A) + Separator + keyOf(v.B)
	case PairedBits:
		return "p" + v.S0 + "\n" + v.S1
	case CombinedBits:
		return "c" + v.Bits
	}
	return "?"
}

// Equal reports whether two diagrams have the same shape and labels. Sharing
// is taken into account: a and b must be isomorphic as DAGs, not just unfold
// to the same tree.
func Equal(a, b *Diagram) bool {
	if a == nil || b == nil {
		return a == b
	}
	pairs := map[*Node]*Node{}
	var eq func(x, y *Node) bool
	eq = func(x, y *Node) bool {
		if x == nil || y == nil {
			return x == y
		}
		if m, ok := pairs[x]; ok {
			return m == y
		}
		if keyOf(x.label) != keyOf(y.label) {
			return false
		}
		pairs[x] = y
		return eq(x.low, y.low) && eq(x.high, y.high)
	}
	return eq(a.root, b.root) && a.NodeCount() == b.NodeCount()
}

// Levels groups the distinct nodes of d by variable index, highest first.
// Leaves are at level 0.
func (d *Diagram) Levels() [][]*Node {
	byLevel := map[int][]*Node{}
	d.Walk(func(n *Node) bool {
		l := level(n.label)
		byLevel[l] = append(byLevel[l], n)
		return true
	})
	keys := make([]int, 0, len(byLevel))
	for k := range byLevel {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	slices.Reverse(keys)
	out := make([][]*Node, len(keys))
	for i, k := range keys {
		out[i] = byLevel[k]
	}
	return out
}
