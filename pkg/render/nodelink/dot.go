package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/robdd/pkg/bdd"
	"github.com/matzehuels/robdd/pkg/render"
)

// Options configures node-link rendering.
type Options struct {
	// Detailed adds the node id and level to every label.
	Detailed bool
}

// ToDOT converts a diagram to Graphviz DOT. Every distinct node is emitted
// once, however many parents share it.
func ToDOT(d *bdd.Diagram, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=18];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")

	if d.Root() == nil {
		buf.WriteString("}\n")
		return buf.String()
	}

	ids := d.Index()
	for _, level := range d.Levels() {
		buf.WriteString("\n  { rank=same;")
		for _, n := range level {
			fmt.Fprintf(&buf, " %s;", bdd.NodeID(ids[n]))
		}
		buf.WriteString(" }\n")
		for _, n := range level {
			fmt.Fprintf(&buf, "  %s [%s];\n", bdd.NodeID(ids[n]), strings.Join(fmtAttrs(n, ids[n], opts.Detailed), ", "))
		}
	}

	buf.WriteString("\n")
	for _, n := range d.Nodes() {
		if n.IsLeaf() {
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s [style=dashed];\n", bdd.NodeID(ids[n]), bdd.NodeID(ids[n.Low()]))
		fmt.Fprintf(&buf, "  %s -> %s;\n", bdd.NodeID(ids[n]), bdd.NodeID(ids[n.High()]))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *bdd.Node, id int, detailed bool) string {
	label := n.Label().String()
	if !detailed {
		return label
	}
	// Leaves sit on level 0.
	level := 0
	if v, ok := n.Label().(bdd.Variable); ok {
		level = int(v)
	}
	return fmt.Sprintf("%s\nid: %s\nlevel: %d", label, bdd.NodeID(id), level)
}

func fmtAttrs(n *bdd.Node, id int, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, id, detailed))}
	if n.IsLeaf() {
		attrs = append(attrs, "shape=box", "style=\"rounded,filled\"", "fillcolor=lightgrey")
	}
	return attrs
}

// RenderSVG renders DOT source to SVG with the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based <svg> header with one
// whose viewBox starts at the origin and whose size is given in pixels.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}

// RenderPDF renders DOT source as PDF via SVG.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders DOT source as PNG via SVG at the given scale.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
