package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/robdd/pkg/bitvec"
	"github.com/matzehuels/robdd/pkg/pipeline"
)

// defaultFormats is used when neither the flags nor the config name formats.
var defaultFormats = []string{pipeline.FormatSVG}

// buildOpts holds the command-line flags for the build command.
type buildOpts struct {
	width    int    // number of truth table entries, a power of two
	noReduce bool   // keep nodes with identical children
	formats  string // comma-separated output formats
	output   string // output file (single format) or base path
	detailed bool   // add node ids and levels to rendered labels
	levels   bool   // print the node table
	refresh  bool   // ignore cached results
}

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build <table>",
		Short: "Build the decision diagram of a truth table",
		Long: `Build the reduced ordered binary decision diagram of a truth table.

The table is an integer whose bit k (least significant first) is the value of
the function for the assignment with index k. Decimal, 0x, 0b and 0o notations
are accepted.`,
		Example: `  # x1 AND x2 over four entries
  robdd build 8 -w 4

  # Parity of four variables as DOT on stdout
  robdd build 0x6996 -w 16 -f dot -o -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().IntVarP(&opts.width, "width", "w", 0, "truth table width (power of two)")
	cmd.Flags().BoolVar(&opts.noReduce, "no-reduce", false, "keep nodes whose children are identical")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): dot, svg, png, pdf, json (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, base path, or - for stdout")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node ids and levels in rendered output")
	cmd.Flags().BoolVar(&opts.levels, "levels", false, "print the nodes of each level")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")
	_ = cmd.MarkFlagRequired("width")

	return cmd
}

func (c *CLI) runBuild(ctx context.Context, input string, opts buildOpts) error {
	table, err := bitvec.ParseTable(input, opts.width)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	res, err := runner.Build(ctx, table, c.pipelineOptions(opts.formats, opts.output, opts.detailed, opts.refresh, pipeline.Options{
		NoReduce: opts.noReduce,
	}))
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Built diagram with %d nodes", res.Stats.NodeCount))

	return c.report(res, opts.output, fmt.Sprintf("robdd-%s-w%d", bitvec.Hex(table), len(table)), opts.levels)
}

// pipelineOptions fills the rendering fields of base from the flags, falling
// back to the config file.
func (c *CLI) pipelineOptions(formats, output string, detailed, refresh bool, base pipeline.Options) pipeline.Options {
	def := c.Config.Render.Formats
	if len(def) == 0 {
		def = defaultFormats
	}
	base.Formats = parseFormats(formats, def)
	base.Detailed = detailed || c.Config.Render.Detailed
	base.Refresh = refresh
	base.Logger = c.Logger
	return base
}

// report writes the artifacts of res and prints a summary. Nothing is printed
// when the only artifact goes to stdout.
func (c *CLI) report(res *pipeline.Result, output, def string, levels bool) error {
	formats := make([]string, 0, len(res.Artifacts))
	for _, f := range []string{pipeline.FormatDOT, pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatPDF, pipeline.FormatJSON} {
		if _, ok := res.Artifacts[f]; ok {
			formats = append(formats, f)
		}
	}

	written, err := writeArtifacts(res.Artifacts, formats, output, def)
	if err != nil {
		return err
	}
	if output == stdoutPath {
		return nil
	}

	printSuccess("Diagram %s", StyleDim.Render(res.Hash[:12]))
	printStats(res.Stats.Vars, res.Stats.NodeCount, res.CacheInfo.DiagramHit)
	for _, path := range written {
		printFile(path)
	}
	if levels {
		fmt.Println()
		fmt.Println(StyleTitle.Render("Levels"))
		fmt.Println(levelsTable(&res.Diagram.Diagram))
	}
	return nil
}
