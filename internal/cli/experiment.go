package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/robdd/pkg/cache"
	"github.com/matzehuels/robdd/pkg/errors"
	"github.com/matzehuels/robdd/pkg/experiment"
	"github.com/matzehuels/robdd/pkg/records"
)

// experimentOpts holds the command-line flags for the experiment command.
type experimentOpts struct {
	vars     int
	samples  int
	seed     uint64
	workers  int
	records  string // append a summary line to this file
	mongo    bool   // insert the summary into MongoDB
	mongoURI string
	jsonOut  bool // print the result as JSON instead of a table
	refresh  bool
}

// experimentCommand creates the experiment command.
func (c *CLI) experimentCommand() *cobra.Command {
	var opts experimentOpts

	cmd := &cobra.Command{
		Use:   "experiment",
		Short: "Measure the diagram size distribution over n-variable functions",
		Long: fmt.Sprintf(`Build the diagrams of boolean functions of n variables and report how many
functions have each diagram size.

Up to %d variables every function is built. Above that a random sample of
distinct truth tables is built and the counts are scaled to the whole
population.`, experiment.ExhaustiveVars),
		Example: `  # All 65536 functions of four variables
  robdd experiment --vars 4

  # Sample 10000 functions of six variables and log the run
  robdd experiment --vars 6 --samples 10000 --seed 7 --records runs.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExperiment(cmd.Context(), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.vars, "vars", "n", 0, "number of variables")
	cmd.Flags().IntVarP(&opts.samples, "samples", "s", 0, fmt.Sprintf("sample size above %d variables (default %d)", experiment.ExhaustiveVars, experiment.DefaultSamples))
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed (default: time based)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "number of worker goroutines (default: GOMAXPROCS)")
	cmd.Flags().StringVar(&opts.records, "records", "", "append a summary line to this file")
	cmd.Flags().BoolVar(&opts.mongo, "mongo", false, "store the summary in MongoDB")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", "", "MongoDB connection URI")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")
	_ = cmd.MarkFlagRequired("vars")

	return cmd
}

// withConfig fills unset flags from the config file.
func (o experimentOpts) withConfig(cfg ExperimentConfig) experimentOpts {
	if o.samples == 0 {
		o.samples = cfg.Samples
	}
	if o.seed == 0 {
		o.seed = cfg.Seed
	}
	if o.workers == 0 {
		o.workers = cfg.Workers
	}
	if o.records == "" {
		o.records = cfg.Records
	}
	if o.mongoURI == "" {
		o.mongoURI = cfg.MongoURI
	}
	return o
}

// diagramsFor returns how many diagrams an experiment over vars variables
// builds.
func diagramsFor(vars, samples int) int {
	if vars < 0 {
		return 0
	}
	if vars <= experiment.ExhaustiveVars {
		return 1 << (1 << vars)
	}
	if samples == 0 {
		return experiment.DefaultSamples
	}
	return samples
}

func (c *CLI) runExperiment(ctx context.Context, opts experimentOpts) error {
	opts = opts.withConfig(c.Config.Experiment)

	sink, err := c.openSinks(ctx, opts)
	if err != nil {
		return err
	}
	if sink != nil {
		defer sink.Close()
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()
	if opts.refresh {
		runner.Cache = cache.NewNullCache()
	}

	expOpts := experiment.Options{
		Vars:    opts.vars,
		Samples: opts.samples,
		Seed:    opts.seed,
		Workers: opts.workers,
		Logger:  c.Logger,
	}

	var (
		res    *experiment.Result
		cached bool
	)
	run := func(ctx context.Context, report func(done, total int)) error {
		o := expOpts
		o.Progress = report
		var err error
		res, cached, err = runner.Experiment(ctx, o)
		return err
	}

	total := diagramsFor(opts.vars, opts.samples)
	if interactive() && !opts.jsonOut && c.Logger.GetLevel() > LogDebug {
		label := fmt.Sprintf("Building %d-variable diagrams", opts.vars)
		err = runWithProgress(ctx, label, total, run)
	} else {
		prog := newProgress(c.Logger)
		err = run(ctx, func(done, total int) {
			if done%max(total/10, 1) == 0 {
				c.Logger.Debug("experiment progress", "done", done, "total", total)
			}
		})
		if err == nil {
			prog.done(fmt.Sprintf("Built %d diagrams", res.Record.Diagrams))
		}
	}
	if err != nil {
		return err
	}

	switch {
	case sink != nil && cached:
		printWarning("Result served from cache, record %s not stored again", res.Record.ID)
	case sink != nil:
		if err := sink.Write(ctx, res.Record); err != nil {
			return err
		}
	}

	if opts.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printExperiment(res, cached)
	return nil
}

// openSinks opens the record sinks selected by opts. It returns nil when
// no sink is configured.
func (c *CLI) openSinks(ctx context.Context, opts experimentOpts) (records.Sink, error) {
	var sinks []records.Sink
	if opts.records != "" {
		fs, err := records.NewFileSink(opts.records)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, fs)
	}
	if opts.mongo {
		if opts.mongoURI == "" {
			closeAll(sinks)
			return nil, errors.New(errors.ErrCodeInvalidInput, "--mongo needs --mongo-uri or experiment.mongo_uri in the config")
		}
		ms, err := records.NewMongoSink(ctx, records.MongoConfig{
			URI:      opts.mongoURI,
			Database: c.Config.Experiment.MongoDB,
		})
		if err != nil {
			closeAll(sinks)
			return nil, err
		}
		c.Logger.Debug("storing records in mongo", "database", c.Config.Experiment.MongoDB)
		sinks = append(sinks, ms)
	}
	if len(sinks) == 0 {
		return nil, nil
	}
	return records.Multi(sinks...), nil
}

func closeAll(sinks []records.Sink) {
	for _, s := range sinks {
		_ = s.Close()
	}
}

// printExperiment prints the summary and histogram of res.
func printExperiment(res *experiment.Result, cached bool) {
	r := res.Record
	mode := "sampled"
	if r.Exhaustive {
		mode = "exhaustive"
	}
	if cached {
		mode += ", cached"
	}
	printSuccess("Experiment over %d variables (%s)", r.Vars, mode)
	printKeyValue("Diagrams", strconv.Itoa(r.Diagrams))
	printKeyValue("Unique sizes", strconv.Itoa(r.UniqueSizes))
	printKeyValue("Compensation", res.Compensation.String())
	printKeyValue("Total", r.Total.String())
	printKeyValue("Per diagram", r.PerDiagram.String())
	if !r.Exhaustive {
		printKeyValue("Seed", strconv.FormatUint(r.Seed, 10))
	}
	fmt.Println(histogramTable(res.Histogram))
}
