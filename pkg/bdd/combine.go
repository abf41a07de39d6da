package bdd

import (
	"math/bits"

	"github.com/matzehuels/robdd/pkg/errors"
)

// Combine applies op to the paired sub-tables of p and reduces the result into
// the ROBDD of the combined function.
//
// Each product node is relabelled with op(s0, s1). Nodes with the same
// combined table are shared, a node whose two children end up identical is
// replaced by that child, and the surviving labels are turned back into
// variables (x<log2(len)>) and booleans.
func Combine(p *Product, op Operator) (*Canonical, error) {
	if p == nil || p.root == nil {
		return nil, errors.New(errors.ErrCodeIncompatibleDiagrams, "cannot combine an empty product")
	}
	if !op.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidOperator, "unknown operator %d", int(op))
	}

	r := &reducer{
		memo:   make(map[string]*Node),
		unique: make(uniqueTable),
		done:   make(map[*Node]*Node),
	}
	for _, n := range postorder(p.root) {
		if err := r.reduce(n, op); err != nil {
			return nil, err
		}
	}
	root := r.done[p.root]
	if err := relabel(root); err != nil {
		return nil, err
	}
	return &Canonical{Diagram{root: root, vars: p.vars}}, nil
}

// reducer holds the registries of a single Combine call.
type reducer struct {
	memo   map[string]*Node // combined table -> reduced node
	unique uniqueTable      // (combined table, low, high) -> reduced node
	done   map[*Node]*Node  // product node -> reduced node
}

// reduce computes the reduced node for product node n. Children must already
// have been reduced.
func (r *reducer) reduce(n *Node, op Operator) error {
	pb, ok := n.label.(PairedBits)
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, "product node %q is not encoded", n.label)
	}
	combined, err := op.Apply(pb.S0, pb.S1)
	if err != nil {
		return err
	}
	if m, ok := r.memo[combined]; ok {
		r.done[n] = m
		return nil
	}

	label := CombinedBits{Bits: combined}
	var out *Node
	if n.IsLeaf() {
		out = r.unique.leaf(label)
	} else {
		low, high := r.done[n.low], r.done[n.high]
		if low == high {
			out = low
		} else {
			out = r.unique.node(label, low, high)
		}
	}
	r.memo[combined] = out
	r.done[n] = out
	return nil
}

// relabel turns combined tables back into plain labels: a one-entry table is
// a boolean and a table of 2^i entries decides on x<i>.
func relabel(root *Node) error {
	var err error
	walk(root, func(n *Node) bool {
		c, ok := n.label.(CombinedBits)
		if !ok {
			return true
		}
		size := len(c.Bits)
		switch {
		case n.IsLeaf() && size == 1:
			n.label = Leaf(c.Bits == "1")
		case !n.IsLeaf() && size > 1 && size&(size-1) == 0:
			n.label = Variable(bits.TrailingZeros(uint(size)))
		default:
			err = errors.New(errors.ErrCodeInternal, "combined table %q does not fit its node", c.Bits)
		}
		return err == nil
	})
	return err
}
