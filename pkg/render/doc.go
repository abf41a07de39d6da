// Package render turns decision diagrams into images.
//
// # Overview
//
// The [nodelink] subpackage draws a diagram as a Graphviz node-link graph
// and renders it to SVG in-process. This package converts that SVG into
// other formats:
//
//	dot := nodelink.ToDOT(&d.Diagram, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// [ToPDF] and [ToPNG] shell out to rsvg-convert (from librsvg).
//
// [nodelink]: github.com/matzehuels/robdd/pkg/render/nodelink
package render
