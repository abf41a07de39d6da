package cli

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	bddio "github.com/matzehuels/robdd/pkg/io"
	"github.com/matzehuels/robdd/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	formats  string
	output   string
	detailed bool
	levels   bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <diagram.json>",
		Short: "Render a diagram exported as JSON",
		Long: `Render a diagram previously written with -f json.

The file is validated while it is read: dangling node references, cycles and
labels other than variables and leaves are rejected.`,
		Example: `  robdd build 0x6996 -w 16 -f json -o parity.json
  robdd render parity.json -f svg,png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): dot, svg, png, pdf, json (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, base path, or - for stdout")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node ids and levels in rendered output")
	cmd.Flags().BoolVar(&opts.levels, "levels", false, "print the nodes of each level")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, path string, opts renderOpts) error {
	d, err := bddio.ImportJSON(path)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	pipeOpts := c.pipelineOptions(opts.formats, opts.output, opts.detailed, false, pipeline.Options{})
	artifacts, hit, err := runner.RenderWithCacheInfo(ctx, &d.Diagram, pipeOpts)
	if err != nil {
		return err
	}

	res := &pipeline.Result{
		Diagram:   d,
		Artifacts: artifacts,
		Stats:     pipeline.Stats{Vars: d.Vars(), NodeCount: d.NodeCount()},
		CacheInfo: pipeline.CacheInfo{RenderHit: hit},
	}
	if res.Hash, err = pipeline.DiagramHash(&d.Diagram); err != nil {
		return err
	}
	def := strings.TrimSuffix(path, filepath.Ext(path))
	return c.report(res, opts.output, def, opts.levels)
}
