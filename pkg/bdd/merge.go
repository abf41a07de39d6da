package bdd

import (
	"strings"

	"github.com/matzehuels/robdd/pkg/errors"
)

// Product is the pairing of two canonical diagrams. After [Merge] returns,
// every node is labelled with [PairedBits]: the sub-tables of both input
// functions restricted to the node's descendants.
type Product struct{ Diagram }

// Bits returns the paired sub-tables stored on n.
func (p *Product) Bits(n *Node) (s0, s1 string, ok bool) {
	pb, ok := n.label.(PairedBits)
	return pb.S0, pb.S1, ok
}

// Merge walks a and b together and builds their product diagram.
//
// When both nodes decide on the same variable the walk advances in lockstep.
// When they differ, the node with the higher variable index (closer to the
// root) advances alone while the other is held fixed, which aligns diagrams
// that skip different levels or cover a different number of variables. A leaf
// is held fixed while the other side is traversed.
//
// Merge returns an INCOMPATIBLE_DIAGRAMS error if either input is nil or
// carries labels that cannot be ordered against the other (anything but
// variables on internal nodes and booleans on leaves, or children that do not
// decide on strictly lower variables).
func Merge(a, b *Canonical) (*Product, error) {
	if a == nil || b == nil || a.root == nil || b.root == nil {
		return nil, errors.New(errors.ErrCodeIncompatibleDiagrams, "cannot merge an empty diagram")
	}
	if err := checkOrdered(&a.Diagram); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIncompatibleDiagrams, err, "left operand")
	}
	if err := checkOrdered(&b.Diagram); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIncompatibleDiagrams, err, "right operand")
	}

	m := &merger{
		memo:   make(map[[2]*Node]*Node),
		unique: make(uniqueTable),
	}
	root := m.merge(a.root, b.root)
	encode(root)
	return &Product{Diagram{root: root, vars: max(a.vars, b.vars)}}, nil
}

// checkOrdered verifies that d only holds plain labels and that variable
// indices strictly decrease along every edge.
func checkOrdered(d *Diagram) error {
	var err error
	d.Walk(func(n *Node) bool {
		switch l := n.label.(type) {
		case Leaf:
			if !n.IsLeaf() {
				err = errors.New(errors.ErrCodeInvalidInput, "boolean label %s on an internal node", l)
			}
		case Variable:
			if n.low == nil || n.high == nil {
				err = errors.New(errors.ErrCodeInvalidInput, "variable %s without two children", l)
			} else if level(n.low.label) >= int(l) || level(n.high.label) >= int(l) {
				err = errors.New(errors.ErrCodeInvalidInput, "variable order violated below %s", l)
			}
		default:
			err = errors.New(errors.ErrCodeInvalidInput, "label %q is not a variable or a boolean", l)
		}
		return err == nil
	})
	return err
}

// merger holds the registries of a single Merge call.
type merger struct {
	memo   map[[2]*Node]*Node // input pair -> product node
	unique uniqueTable        // (label, low, high) -> product node
}

func (m *merger) merge(a, b *Node) *Node {
	key := [2]*Node{a, b}
	if n, ok := m.memo[key]; ok {
		return n
	}

	var out *Node
	switch {
	case a.IsLeaf() && b.IsLeaf():
		out = m.unique.leaf(Merged{A: a.label, B: b.label})
	case a.IsLeaf():
		out = m.unique.node(Merged{A: a.label, B: b.label}, m.merge(a, b.low), m.merge(a, b.high))
	case b.IsLeaf():
		out = m.unique.node(Merged{A: a.label, B: b.label}, m.merge(a.low, b), m.merge(a.high, b))
	default:
		va, vb := level(a.label), level(b.label)
		switch {
		case va == vb:
			out = m.unique.node(a.label, m.merge(a.low, b.low), m.merge(a.high, b.high))
		case va > vb:
			out = m.unique.node(a.label, m.merge(a.low, b), m.merge(a.high, b))
		default:
			out = m.unique.node(b.label, m.merge(a, b.low), m.merge(a, b.high))
		}
	}
	m.memo[key] = out
	return out
}

// encode relabels every node of a freshly merged product with its paired
// sub-tables. A node at level i gets strings of length 2^i: each child's pair
// is repeated until it covers 2^(i-1) entries, then low and high are
// concatenated.
func encode(root *Node) {
	pairs := make(map[*Node]PairedBits)
	for _, n := range postorder(root) {
		if n.IsLeaf() {
			m := n.label.(Merged)
			pairs[n] = PairedBits{S0: bitString(m.A), S1: bitString(m.B)}
			continue
		}
		half := 1 << (level(n.label) - 1)
		lo, hi := pairs[n.low], pairs[n.high]
		pairs[n] = PairedBits{
			S0: widen(lo.S0, half) + widen(hi.S0, half),
			S1: widen(lo.S1, half) + widen(hi.S1, half),
		}
	}
	for n, p := range pairs {
		n.label = p
	}
}

func bitString(l Label) string {
	if v, ok := l.(Leaf); ok && bool(v) {
		return "1"
	}
	return "0"
}

// widen repeats s until it is size characters long. len(s) divides size since
// both are powers of two.
func widen(s string, size int) string {
	if len(s) >= size {
		return s
	}
	return strings.Repeat(s, size/len(s))
}
