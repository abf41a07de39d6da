package bdd

import (
	"github.com/matzehuels/robdd/pkg/errors"
)

// NodeSpec describes one node of a serialized diagram. Leaves leave Low and
// High empty.
type NodeSpec struct {
	ID    string
	Label string
	Low   string
	High  string
}

// Assemble rebuilds a canonical diagram from its node list. Nodes are
// hash-consed on the way in, so duplicated entries collapse into one.
//
// It returns an INVALID_INPUT error for unknown or duplicate ids, labels other
// than "x<i>", "True" and "False", cycles, and edges that do not go to a
// strictly lower variable.
func Assemble(vars int, root string, specs []NodeSpec) (*Canonical, error) {
	byID := make(map[string]NodeSpec, len(specs))
	for _, s := range specs {
		if s.ID == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "node id must not be empty")
		}
		if _, dup := byID[s.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate node id %q", s.ID)
		}
		byID[s.ID] = s
	}

	a := &assembler{
		specs:  byID,
		built:  make(map[string]*Node),
		active: make(map[string]bool),
		unique: make(uniqueTable),
	}
	n, err := a.node(root)
	if err != nil {
		return nil, err
	}
	if level(n.label) > vars {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"root decides on %s but the diagram has %d variables", n.label, vars)
	}
	d := &Canonical{Diagram{root: n, vars: vars}}
	if err := checkOrdered(&d.Diagram); err != nil {
		return nil, err
	}
	return d, nil
}

type assembler struct {
	specs  map[string]NodeSpec
	built  map[string]*Node
	active map[string]bool
	unique uniqueTable
}

func (a *assembler) node(id string) (*Node, error) {
	if n, ok := a.built[id]; ok {
		return n, nil
	}
	s, ok := a.specs[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown node id %q", id)
	}
	if a.active[id] {
		return nil, errors.New(errors.ErrCodeInvalidInput, "cycle through node %q", id)
	}
	l, ok := ParseLabel(s.Label)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "node %q has invalid label %q", id, s.Label)
	}

	a.active[id] = true
	defer delete(a.active, id)

	var n *Node
	switch {
	case s.Low == "" && s.High == "":
		n = a.unique.leaf(l)
	case s.Low != "" && s.High != "":
		low, err := a.node(s.Low)
		if err != nil {
			return nil, err
		}
		high, err := a.node(s.High)
		if err != nil {
			return nil, err
		}
		n = a.unique.node(l, low, high)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "node %q has exactly one child", id)
	}
	a.built[id] = n
	return n, nil
}
