package bdd

import "strings"

// Signed is a tree whose labels are structural words.
type Signed struct{ Diagram }

// Sign returns a copy of t where every node carries its structural word. A
// leaf's word is its boolean value; an internal node's word is
//
//	"(" + label + "(" + low word + ")" + "(" + high word + "))"
//
// so two nodes share a word iff their subtrees are isomorphic. The words are
// the hash-consing keys used by [Compress].
func Sign(t *Tree) *Signed {
	return &Signed{Diagram{root: sign(t.root), vars: t.vars}}
}

func sign(n *Node) *Node {
	if n.IsLeaf() {
		return newLeaf(Signature{Word: n.label.String()})
	}
	low, high := sign(n.low), sign(n.high)
	lw, hw := low.label.String(), high.label.String()
	own := n.label.String()

	var b strings.Builder
	b.Grow(len(own) + len(lw) + len(hw) + 6)
	b.WriteByte('(')
	b.WriteString(own)
	b.WriteByte('(')
	b.WriteString(lw)
	b.WriteString(")(")
	b.WriteString(hw)
	b.WriteString("))")
	return newNode(Signature{Word: b.String()}, low, high)
}
