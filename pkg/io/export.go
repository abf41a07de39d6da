package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/robdd/pkg/bdd"
)

type diagram struct {
	Vars  int    `json:"vars"`
	Root  string `json:"root"`
	Nodes []node `json:"nodes"`
}

type node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Low   string `json:"low,omitempty"`
	High  string `json:"high,omitempty"`
}

// WriteJSON encodes d as indented JSON and writes it to w.
func WriteJSON(d *bdd.Diagram, w io.Writer) error {
	ids := d.Index()
	out := diagram{Vars: d.Vars(), Nodes: make([]node, 0, len(ids))}
	if d.Root() != nil {
		out.Root = bdd.NodeID(ids[d.Root()])
	}
	for _, n := range d.Nodes() {
		nd := node{ID: bdd.NodeID(ids[n]), Label: n.Label().String()}
		if !n.IsLeaf() {
			nd.Low = bdd.NodeID(ids[n.Low()])
			nd.High = bdd.NodeID(ids[n.High()])
		}
		out.Nodes = append(out.Nodes, nd)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes d to a JSON file at path.
func ExportJSON(d *bdd.Diagram, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(d, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
