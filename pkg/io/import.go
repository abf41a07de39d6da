package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/robdd/pkg/bdd"
	"github.com/matzehuels/robdd/pkg/errors"
)

// ReadJSON decodes a diagram written by [WriteJSON] (or any file in the same
// format) into a canonical diagram. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*bdd.Canonical, error) {
	var data diagram
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode diagram")
	}
	if err := errors.ValidateVars(data.Vars); err != nil {
		return nil, err
	}

	specs := make([]bdd.NodeSpec, len(data.Nodes))
	for i, n := range data.Nodes {
		specs[i] = bdd.NodeSpec{ID: n.ID, Label: n.Label, Low: n.Low, High: n.High}
	}
	return bdd.Assemble(data.Vars, data.Root, specs)
}

// ImportJSON reads the JSON file at path with [ReadJSON].
func ImportJSON(path string) (*bdd.Canonical, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
