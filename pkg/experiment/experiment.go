// Package experiment measures how ROBDD sizes are distributed over the
// boolean functions of n variables.
//
// For n <= [ExhaustiveVars] every one of the 2^(2^n) truth tables is built.
// Above that, a random sample of distinct tables (always including the
// all-false table) is built and every histogram count is scaled by
// 2^(2^n) / samples so that the histogram estimates the whole population.
//
//	res, err := experiment.Run(ctx, experiment.Options{Vars: 5, Samples: 10000, Seed: 1})
//	for _, b := range res.Histogram {
//	    fmt.Println(b.Size, b.Count)
//	}
package experiment

import (
	"context"
	"math/big"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/robdd/pkg/bdd"
	"github.com/matzehuels/robdd/pkg/errors"
)

const (
	// ExhaustiveVars is the largest variable count enumerated exhaustively.
	ExhaustiveVars = 4

	// MaxVars bounds sampled experiments; a table over 16 variables already
	// has 65536 entries.
	MaxVars = 16

	// DefaultSamples is the sample size used when Options.Samples is zero.
	DefaultSamples = 10000
)

// Options configures an experiment run.
type Options struct {
	Vars    int    `json:"vars"`
	Samples int    `json:"samples"`
	Seed    uint64 `json:"seed"`
	Workers int    `json:"-"`

	// Progress, if set, is called after each diagram with the number of
	// diagrams done so far. Calls are serialized.
	Progress func(done, total int) `json:"-"`

	Logger *log.Logger `json:"-"`
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Vars < 0 || o.Vars > MaxVars {
		return errors.New(errors.ErrCodeInvalidInput,
			"experiment variable count %d out of range [0, %d]", o.Vars, MaxVars)
	}
	if o.Samples == 0 {
		o.Samples = DefaultSamples
	}
	if err := errors.ValidateSamples(o.Samples); err != nil {
		return err
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Seed == 0 {
		o.Seed = uint64(time.Now().UnixNano())
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return nil
}

// Exhaustive reports whether the options enumerate every table.
func (o Options) Exhaustive() bool { return o.Vars <= ExhaustiveVars }

// Record summarizes one run.
type Record struct {
	ID          uuid.UUID     `json:"id"`
	Vars        int           `json:"vars"`
	Samples     int           `json:"samples"`
	Diagrams    int           `json:"diagrams"`
	Exhaustive  bool          `json:"exhaustive"`
	UniqueSizes int           `json:"unique_sizes"`
	Total       time.Duration `json:"total_ns"`
	PerDiagram  time.Duration `json:"per_diagram_ns"`
	Seed        uint64        `json:"seed"`
	StartedAt   time.Time     `json:"started_at"`
}

// Bucket is one histogram entry: Occurrences diagrams of Size nodes were
// built, which stands for Count functions after compensation.
type Bucket struct {
	Size        int      `json:"size"`
	Occurrences int      `json:"occurrences"`
	Count       *big.Int `json:"count"`
}

// Result is the outcome of Run. Histogram is sorted by size.
type Result struct {
	Record       Record   `json:"record"`
	Compensation *big.Int `json:"compensation"`
	Histogram    []Bucket `json:"histogram"`
}

// Run builds the diagrams selected by opts on opts.Workers goroutines and
// returns their size histogram. For a given seed the histogram is the same
// regardless of the number of workers.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	src := newSource(opts)
	total := src.total()
	opts.Logger.Debug("experiment started", "vars", opts.Vars, "diagrams", total, "exhaustive", opts.Exhaustive(), "workers", opts.Workers)

	start := time.Now()
	sizes, err := measure(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	res := &Result{
		Compensation: compensation(opts),
		Histogram:    histogram(sizes, compensation(opts)),
	}
	res.Record = Record{
		ID:          uuid.New(),
		Vars:        opts.Vars,
		Samples:     opts.Samples,
		Diagrams:    len(sizes),
		Exhaustive:  opts.Exhaustive(),
		UniqueSizes: len(res.Histogram),
		Total:       elapsed,
		PerDiagram:  elapsed / time.Duration(max(len(sizes), 1)),
		Seed:        opts.Seed,
		StartedAt:   start,
	}
	opts.Logger.Debug("experiment finished", "unique_sizes", res.Record.UniqueSizes, "duration", elapsed)
	return res, nil
}

type job struct {
	index int
	table []bool
}

// measure builds one diagram per table of src and returns the node counts in
// source order.
func measure(ctx context.Context, src *source, opts Options) ([]int, error) {
	total := src.total()
	sizes := make([]int, total)

	g, ctx := errgroup.WithContext(ctx)
	jobs := make(chan job, opts.Workers)

	g.Go(func() error {
		defer close(jobs)
		for i := range total {
			select {
			case jobs <- job{index: i, table: src.next()}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	var (
		mu   sync.Mutex
		done int
	)
	for range opts.Workers {
		g.Go(func() error {
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					return err
				}
				d, err := bdd.FromTable(j.table)
				if err != nil {
					return err
				}
				sizes[j.index] = d.NodeCount()

				if opts.Progress != nil {
					mu.Lock()
					done++
					opts.Progress(done, total)
					mu.Unlock()
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sizes, nil
}

// compensation is the factor each occurrence stands for: 1 when every table
// is enumerated, 2^(2^vars) / samples otherwise.
func compensation(opts Options) *big.Int {
	if opts.Exhaustive() {
		return big.NewInt(1)
	}
	population := new(big.Int).Lsh(big.NewInt(1), uint(1)<<opts.Vars)
	return population.Quo(population, big.NewInt(int64(opts.Samples)))
}

func histogram(sizes []int, factor *big.Int) []Bucket {
	counts := make(map[int]int)
	for _, s := range sizes {
		counts[s]++
	}
	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]Bucket, len(keys))
	for i, k := range keys {
		out[i] = Bucket{
			Size:        k,
			Occurrences: counts[k],
			Count:       new(big.Int).Mul(big.NewInt(int64(counts[k])), factor),
		}
	}
	return out
}
