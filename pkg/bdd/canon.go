package bdd

import (
	"github.com/matzehuels/robdd/pkg/errors"
)

// Canonical is a hash-consed decision diagram with plain labels. When built
// with reduction it is an ROBDD: no two nodes share a label and children, and
// no internal node has identical children.
type Canonical struct{ Diagram }

// Canonicalize signs t and compresses it. It is shorthand for
// Compress(Sign(t), reduce).
func Canonicalize(t *Tree, reduce bool) (*Canonical, error) {
	return Compress(Sign(t), reduce)
}

// MustCanonicalize builds and reduces the diagram of table, panicking on a
// table whose length is not a power of two. It is meant for tests and
// literals.
func MustCanonicalize(table []bool) *Canonical {
	t, err := Build(table)
	if err != nil {
		panic(err)
	}
	c, err := Canonicalize(t, true)
	if err != nil {
		panic(err)
	}
	return c
}

// Compress merges the structurally identical subtrees of s into single shared
// nodes. With reduce set, a node whose two children end up being the same node
// is dropped in favour of that child; this applies at every level including
// the root.
//
// Labels are rewritten back to plain [Variable] and [Leaf] values before the
// diagram is returned.
func Compress(s *Signed, reduce bool) (*Canonical, error) {
	c := &compressor{
		reduce: reduce,
		memo:   make(map[string]*Node),
		unique: make(uniqueTable),
	}
	root, err := c.compress(s.root)
	if err != nil {
		return nil, err
	}
	if err := rename(root); err != nil {
		return nil, err
	}
	return &Canonical{Diagram{root: root, vars: s.vars}}, nil
}

// compressor holds the registries of a single Compress call.
type compressor struct {
	reduce bool
	memo   map[string]*Node // structural word -> canonical node
	unique uniqueTable      // (plain label, low, high) -> node
}

func (c *compressor) compress(n *Node) (*Node, error) {
	word, ok := n.label.(Signature)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "node %q is not signed", n.label)
	}
	if m, ok := c.memo[word.Word]; ok {
		return m, nil
	}
	plain, ok := plainLabel(word.Word)
	if !ok {
		return nil, errors.New(errors.ErrCodeInternal, "malformed structural word %q", word.Word)
	}

	var out *Node
	if n.IsLeaf() {
		out = c.intern(plain, word, nil, nil)
	} else {
		low, err := c.compress(n.low)
		if err != nil {
			return nil, err
		}
		high, err := c.compress(n.high)
		if err != nil {
			return nil, err
		}
		if c.reduce && low == high {
			out = low
		} else {
			out = c.intern(plain, word, low, high)
		}
	}
	c.memo[word.Word] = out
	return out, nil
}

// intern returns the node registered under (plain, low, high), creating one
// labelled with the structural word if none exists yet.
func (c *compressor) intern(plain Label, word Signature, low, high *Node) *Node {
	k := uniqueKey{label: keyOf(plain), low: low, high: high}
	if n, ok := c.unique[k]; ok {
		return n
	}
	n := newNode(word, low, high)
	c.unique[k] = n
	return n
}

// rename rewrites every structural word reachable from root to its plain
// label, visiting each shared node once.
func rename(root *Node) error {
	var err error
	walk(root, func(n *Node) bool {
		s, ok := n.label.(Signature)
		if !ok {
			return true
		}
		plain, ok := plainLabel(s.Word)
		if !ok {
			err = errors.New(errors.ErrCodeInternal, "malformed structural word %q", s.Word)
			return false
		}
		n.label = plain
		return true
	})
	return err
}
