package bdd

import (
	"github.com/matzehuels/robdd/pkg/errors"
)

// maxTableVars bounds Table so the result fits in memory.
const maxTableVars = 24

// Eval returns the value of the function for the assignment k, where bit i-1
// of k is the value of x<i>. Only diagrams with plain labels can be
// evaluated.
func (d *Diagram) Eval(k uint64) (bool, error) {
	n := d.root
	if n == nil {
		return false, errors.New(errors.ErrCodeInvalidInput, "empty diagram")
	}
	for {
		switch l := n.label.(type) {
		case Leaf:
			return bool(l), nil
		case Variable:
			if n.IsLeaf() {
				return false, errors.New(errors.ErrCodeInvalidInput, "variable %s has no children", l)
			}
			if k&(1<<(uint(l)-1)) != 0 {
				n = n.high
			} else {
				n = n.low
			}
		default:
			return false, errors.New(errors.ErrCodeInvalidInput, "cannot evaluate label %q", l)
		}
	}
}

// Table evaluates the diagram on all 2^Vars() assignments, in truth table order.
func (d *Diagram) Table() ([]bool, error) {
	if d.vars > maxTableVars {
		return nil, errors.New(errors.ErrCodeUnsupported,
			"table of %d variables exceeds the limit of %d", d.vars, maxTableVars)
	}
	out := make([]bool, 1<<d.vars)
	for k := range out {
		v, err := d.Eval(uint64(k))
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// Apply is the whole combination pipeline on two truth tables: build and
// reduce both, merge them and combine the product under op.
func Apply(t1, t2 []bool, op Operator) (*Canonical, error) {
	a, err := FromTable(t1)
	if err != nil {
		return nil, err
	}
	b, err := FromTable(t2)
	if err != nil {
		return nil, err
	}
	p, err := Merge(a, b)
	if err != nil {
		return nil, err
	}
	return Combine(p, op)
}

// FromTable builds the ROBDD of a truth table.
func FromTable(table []bool) (*Canonical, error) {
	t, err := Build(table)
	if err != nil {
		return nil, err
	}
	return Canonicalize(t, true)
}
