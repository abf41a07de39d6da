package nodelink

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/robdd/pkg/bdd"
)

func xor2() *bdd.Canonical {
	return bdd.MustCanonicalize([]bool{false, true, true, false})
}

func TestToDOT_Basic(t *testing.T) {
	d := xor2()
	dot := ToDOT(&d.Diagram, Options{})

	if !strings.HasPrefix(dot, "digraph G {") {
		t.Error("ToDOT() output missing digraph declaration")
	}
	for _, want := range []string{`label="x2"`, `label="x1"`, `label="True"`, `label="False"`} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %s", want)
		}
	}
	if got := strings.Count(dot, "[label="); got != d.NodeCount() {
		t.Errorf("ToDOT() emitted %d nodes, want %d", got, d.NodeCount())
	}
	if got := strings.Count(dot, "->"); got != 2*(d.NodeCount()-2) {
		t.Errorf("ToDOT() emitted %d edges, want %d", got, 2*(d.NodeCount()-2))
	}
}

func TestToDOT_EdgeStyles(t *testing.T) {
	d := bdd.MustCanonicalize([]bool{false, true})
	dot := ToDOT(&d.Diagram, Options{})

	ids := d.Index()
	root := bdd.NodeID(ids[d.Root()])
	low := bdd.NodeID(ids[d.Root().Low()])
	high := bdd.NodeID(ids[d.Root().High()])

	if !strings.Contains(dot, root+" -> "+low+" [style=dashed];") {
		t.Errorf("low edge should be dashed:\n%s", dot)
	}
	if !strings.Contains(dot, root+" -> "+high+";") {
		t.Errorf("high edge should be solid:\n%s", dot)
	}
}

func TestToDOT_SharedNodesOnce(t *testing.T) {
	// parity of three variables shares both x1 nodes between the x2 nodes
	d := bdd.MustCanonicalize([]bool{false, true, true, false, true, false, false, true})
	dot := ToDOT(&d.Diagram, Options{})

	if got := strings.Count(dot, `label="x1"`); got != 2 {
		t.Errorf("x1 emitted %d times, want 2", got)
	}
	if got := strings.Count(dot, "rank=same"); got != 4 {
		t.Errorf("rank groups = %d, want 4", got)
	}
}

func TestToDOT_Detailed(t *testing.T) {
	d := xor2()
	dot := ToDOT(&d.Diagram, Options{Detailed: true})
	if !strings.Contains(dot, `x2\nid: n0\nlevel: 2`) {
		t.Errorf("ToDOT() detailed output missing id:\n%s", dot)
	}
}

func TestToDOT_Leaf(t *testing.T) {
	d := bdd.MustCanonicalize([]bool{true, true})
	dot := ToDOT(&d.Diagram, Options{})
	if !strings.Contains(dot, "shape=box") {
		t.Error("leaf should be drawn as a box")
	}
	if strings.Contains(dot, "->") {
		t.Error("single leaf diagram should have no edges")
	}
}

func TestFmtLabel(t *testing.T) {
	d := xor2()
	if got := fmtLabel(d.Root(), 0, false); got != "x2" {
		t.Errorf("fmtLabel() = %q, want x2", got)
	}
	if got := fmtLabel(d.Root(), 3, true); got != "x2\nid: n3\nlevel: 2" {
		t.Errorf("fmtLabel() detailed = %q", got)
	}
	leaf := bdd.MustCanonicalize([]bool{false, false}).Root()
	if got := fmtLabel(leaf, 0, true); got != "False\nid: n0\nlevel: 0" {
		t.Errorf("fmtLabel() detailed leaf = %q", got)
	}
}

func TestRenderSVG(t *testing.T) {
	d := xor2()
	svg, err := RenderSVG(context.Background(), ToDOT(&d.Diagram, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Error("RenderSVG output is not SVG")
	}
	if !bytes.Contains(svg, []byte(`viewBox="0 0 `)) {
		t.Error("RenderSVG should normalize the viewBox")
	}
}

func TestRenderSVG_InvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), "digraph {"); err == nil {
		t.Error("RenderSVG should fail on malformed DOT")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="116pt" viewBox="0.00 0.00 62.00 116.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 116.00" width="62" height="116">`
	if !strings.HasPrefix(out, want) {
		t.Errorf("normalizeViewBox() = %s", out)
	}

	plain := []byte("<svg><g/></svg>")
	if got := normalizeViewBox(plain); !bytes.Equal(got, plain) {
		t.Error("normalizeViewBox() should leave SVG without viewBox unchanged")
	}
}
