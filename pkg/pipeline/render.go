package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/robdd/pkg/bdd"
	bddio "github.com/matzehuels/robdd/pkg/io"
	"github.com/matzehuels/robdd/pkg/render/nodelink"
)

// Render generates output artifacts for d in the requested formats. The DOT
// source is produced once and shared by the Graphviz-based formats.
func Render(ctx context.Context, d *bdd.Diagram, opts Options) (map[string][]byte, error) {
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}

	dot := nodelink.ToDOT(d, nodelink.Options{Detailed: opts.Detailed})
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot, DefaultPNGScale)
		case FormatPDF:
			data, err = nodelink.RenderPDF(ctx, dot)
		case FormatJSON:
			var buf bytes.Buffer
			err = bddio.WriteJSON(d, &buf)
			data = buf.Bytes()
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}
