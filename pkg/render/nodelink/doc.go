// Package nodelink renders decision diagrams as node-link graphs.
//
// # Overview
//
// [ToDOT] emits Graphviz DOT source for a diagram: one vertex per distinct
// node, leaves drawn as boxes and decision nodes as circles, low edges
// dashed and high edges solid. Nodes deciding on the same variable share a
// rank, so the variable order reads from top to bottom.
//
//	dot := nodelink.ToDOT(&d.Diagram, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)
//
// # Options
//
//   - Detailed: node labels also show the node id and level
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
