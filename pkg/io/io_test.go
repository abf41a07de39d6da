package io

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/robdd/pkg/bdd"
	"github.com/matzehuels/robdd/pkg/errors"
)

func TestWriteJSON(t *testing.T) {
	d := bdd.MustCanonicalize([]bool{false, true, false, true})

	var buf bytes.Buffer
	if err := WriteJSON(&d.Diagram, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var got diagram
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got.Vars != 2 || got.Root != "n0" || len(got.Nodes) != 3 {
		t.Fatalf("WriteJSON = %+v", got)
	}
	root := got.Nodes[0]
	if root.Label != "x1" || root.Low != "n1" || root.High != "n2" {
		t.Errorf("root = %+v", root)
	}
	if got.Nodes[1].Label != "False" || got.Nodes[1].Low != "" {
		t.Errorf("low leaf = %+v", got.Nodes[1])
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("WriteJSON output should be indented")
	}
}

func TestRoundTrip(t *testing.T) {
	tables := [][]bool{
		{true},
		{false, false, false, false},
		{false, true, true, false, true, false, false, true},
		{true, false, false, false, false, true, true, true, false, false, true, true, false, true, false, true},
	}
	for _, table := range tables {
		d := bdd.MustCanonicalize(table)

		var buf bytes.Buffer
		if err := WriteJSON(&d.Diagram, &buf); err != nil {
			t.Fatalf("WriteJSON: %v", err)
		}
		back, err := ReadJSON(&buf)
		if err != nil {
			t.Fatalf("ReadJSON: %v", err)
		}
		if !bdd.Equal(&d.Diagram, &back.Diagram) {
			t.Errorf("round trip changed the diagram of %v", table)
		}
		if back.Vars() != d.Vars() {
			t.Errorf("vars = %d, want %d", back.Vars(), d.Vars())
		}
	}
}

func TestReadJSONHashConses(t *testing.T) {
	// n3 and n4 describe the same leaf, n1 and n2 the same x1 node
	in := `{"vars": 2, "root": "r", "nodes": [
		{"id": "r", "label": "x2", "low": "n1", "high": "n2"},
		{"id": "n1", "label": "x1", "low": "n3", "high": "t"},
		{"id": "n2", "label": "x1", "low": "n4", "high": "t"},
		{"id": "n3", "label": "False"},
		{"id": "n4", "label": "False"},
		{"id": "t", "label": "True"}
	]}`
	d, err := ReadJSON(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if d.NodeCount() != 4 {
		t.Errorf("NodeCount = %d, want 4", d.NodeCount())
	}
	if d.Root().Low() != d.Root().High() {
		t.Error("identical x1 nodes should be shared")
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code errors.Code
	}{
		{"malformed", `{"vars": 1,`, errors.ErrCodeInvalidFormat},
		{"unknown field", `{"vars": 0, "root": "a", "nodes": [], "extra": 1}`, errors.ErrCodeInvalidFormat},
		{"negative vars", `{"vars": -1, "root": "a", "nodes": [{"id": "a", "label": "True"}]}`, errors.ErrCodeInvalidInput},
		{"missing root", `{"vars": 0, "root": "a", "nodes": []}`, errors.ErrCodeInvalidInput},
		{"dangling child", `{"vars": 1, "root": "a", "nodes": [{"id": "a", "label": "x1", "low": "b", "high": "c"}, {"id": "b", "label": "True"}]}`, errors.ErrCodeInvalidInput},
		{"duplicate id", `{"vars": 0, "root": "a", "nodes": [{"id": "a", "label": "True"}, {"id": "a", "label": "False"}]}`, errors.ErrCodeInvalidInput},
		{"bad label", `{"vars": 0, "root": "a", "nodes": [{"id": "a", "label": "maybe"}]}`, errors.ErrCodeInvalidInput},
		{"one child", `{"vars": 1, "root": "a", "nodes": [{"id": "a", "label": "x1", "low": "b"}, {"id": "b", "label": "True"}]}`, errors.ErrCodeInvalidInput},
		{"cycle", `{"vars": 2, "root": "a", "nodes": [{"id": "a", "label": "x2", "low": "b", "high": "b"}, {"id": "b", "label": "x1", "low": "a", "high": "a"}]}`, errors.ErrCodeInvalidInput},
		{"order violated", `{"vars": 2, "root": "a", "nodes": [{"id": "a", "label": "x1", "low": "b", "high": "t"}, {"id": "b", "label": "x2", "low": "t", "high": "f"}, {"id": "t", "label": "True"}, {"id": "f", "label": "False"}]}`, errors.ErrCodeInvalidInput},
		{"root above vars", `{"vars": 1, "root": "a", "nodes": [{"id": "a", "label": "x2", "low": "t", "high": "f"}, {"id": "t", "label": "True"}, {"id": "f", "label": "False"}]}`, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.in))
			if err == nil {
				t.Fatal("ReadJSON should fail")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("code = %s, want %s (%v)", errors.GetCode(err), tt.code, err)
			}
		})
	}
}

func TestExportImportFile(t *testing.T) {
	d := bdd.MustCanonicalize([]bool{false, true, true, true})
	path := filepath.Join(t.TempDir(), "or.json")

	if err := ExportJSON(&d.Diagram, path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	back, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if !bdd.Equal(&d.Diagram, &back.Diagram) {
		t.Error("file round trip changed the diagram")
	}

	if _, err := ImportJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ImportJSON should fail for a missing file")
	}
}
