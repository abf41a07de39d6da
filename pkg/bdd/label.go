package bdd

import (
	"strconv"
	"strings"
)

// Separator joins the two halves of a [Merged] label.
const Separator = "◇"

// Label is the tag carried by a [Node]. The concrete variants describe which
// pass produced the node:
//
//   - [Variable] and [Leaf] appear in trees and canonical diagrams
//   - [Signature] appears in signed trees and during compression
//   - [Merged] appears in freshly merged products
//   - [PairedBits] appears in encoded products
//   - [CombinedBits] appears while an operator result is being reduced
//
// The set is closed; only this package can add variants.
type Label interface {
	String() string
	label()
}

// Variable is the decision variable x<i>. Indices start at 1 for the deepest
// level and grow toward the root.
type Variable int

func (v Variable) String() string { return "x" + strconv.Itoa(int(v)) }
func (Variable) label()           {}

// Leaf is a terminal boolean value.
type Leaf bool

func (l Leaf) String() string {
	if l {
		return "True"
	}
	return "False"
}
func (Leaf) label() {}

// Signature is the structural word of a subtree. Two nodes of a signed tree
// carry the same word iff their subtrees are isomorphic.
type Signature struct {
	Word string
}

func (s Signature) String() string { return s.Word }
func (Signature) label()           {}

// Merged pairs the labels of the two nodes a product node was built from.
type Merged struct {
	A, B Label
}

func (m Merged) String() string { return m.A.String() + Separator + m.B.String() }
func (Merged) label()           {}

// PairedBits holds the sub-tables of both merged functions below a product node.
type PairedBits struct {
	S0, S1 string
}

func (p PairedBits) String() string { return p.S0 + "\n" + p.S1 }
func (PairedBits) label()           {}

// CombinedBits is the sub-table of the combined function below a node.
type CombinedBits struct {
	Bits string
}

func (c CombinedBits) String() string { return c.Bits }
func (CombinedBits) label()           {}

// level returns the variable index a label decides on. Leaves sit at level 0,
// a Merged label sits at the level of its deeper-numbered side.
func level(l Label) int {
	switch v := l.(type) {
	case Variable:
		return int(v)
	case Merged:
		return max(level(v.A), level(v.B))
	}
	return 0
}

// isPlain reports whether l is one of the labels allowed in canonical diagrams.
func isPlain(l Label) bool {
	switch l.(type) {
	case Variable, Leaf:
		return true
	}
	return false
}

// ParseLabel decodes the plain rendering of a label: "True", "False" or "x<i>".
func ParseLabel(s string) (Label, bool) {
	switch s {
	case "True":
		return Leaf(true), true
	case "False":
		return Leaf(false), true
	}
	rest, ok := strings.CutPrefix(s, "x")
	if !ok {
		return nil, false
	}
	i, err := strconv.Atoi(rest)
	if err != nil || i < 1 {
		return nil, false
	}
	return Variable(i), true
}

// plainLabel recovers the plain label from a structural word. A leaf word is
// its boolean value; an internal word is "(" + name + "(" ... and the name is
// everything up to the second opening parenthesis.
func plainLabel(word string) (Label, bool) {
	if !strings.HasPrefix(word, "(") {
		return ParseLabel(word)
	}
	i := strings.IndexByte(word[1:], '(')
	if i < 0 {
		return nil, false
	}
	return ParseLabel(word[1 : i+1])
}
