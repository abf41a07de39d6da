package bdd

import (
	"math/bits"

	"github.com/matzehuels/robdd/pkg/errors"
)

// Tree is the full, uncompressed decision tree of a truth table.
type Tree struct{ Diagram }

// Build constructs the full binary decision tree of table. The root decides on
// x<n> where len(table) == 2^n; the low subtree covers the first half of the
// table and the high subtree the second half, down to one leaf per entry.
//
// Build returns an INVALID_INPUT error unless len(table) is a positive power
// of two.
func Build(table []bool) (*Tree, error) {
	n, err := tableVars(len(table))
	if err != nil {
		return nil, err
	}
	return &Tree{Diagram{root: build(table, n), vars: n}}, nil
}

func build(table []bool, i int) *Node {
	if i == 0 {
		return newLeaf(Leaf(table[0]))
	}
	half := len(table) / 2
	return newNode(Variable(i), build(table[:half], i-1), build(table[half:], i-1))
}

// tableVars returns log2(size) for a valid truth table size.
func tableVars(size int) (int, error) {
	if size <= 0 || size&(size-1) != 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput,
			"truth table length %d is not a positive power of two", size)
	}
	return bits.TrailingZeros(uint(size)), nil
}
