package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/robdd/pkg/bdd"
	"github.com/matzehuels/robdd/pkg/bitvec"
	"github.com/matzehuels/robdd/pkg/cache"
	"github.com/matzehuels/robdd/pkg/errors"
	"github.com/matzehuels/robdd/pkg/experiment"
	bddio "github.com/matzehuels/robdd/pkg/io"
	"github.com/matzehuels/robdd/pkg/observability"
)

// Cache key types reported to the cache hooks.
const (
	keyTypeDiagram    = "diagram"
	keyTypeCombine    = "combine"
	keyTypeArtifact   = "artifact"
	keyTypeExperiment = "experiment"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger; multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Build turns a truth table into its canonical diagram and renders the
// requested formats.
func (r *Runner) Build(ctx context.Context, table []bool, opts Options) (*Result, error) {
	if err := errors.ValidateWidth(len(table)); err != nil {
		return nil, err
	}
	if err := r.prepare(&opts); err != nil {
		return nil, err
	}

	key := r.Keyer.DiagramKey(tableHash(table), opts.DiagramKeyOpts(len(table)))
	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, len(table))

	start := time.Now()
	d, hit, err := r.diagram(ctx, key, keyTypeDiagram, opts, func() (*bdd.Canonical, error) {
		t, err := bdd.Build(table)
		if err != nil {
			return nil, err
		}
		return bdd.Canonicalize(t, !opts.NoReduce)
	})
	elapsed := time.Since(start)
	hooks.OnBuildComplete(ctx, len(table), nodeCount(d), elapsed, err)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	opts.Logger.Info("built diagram",
		"width", len(table),
		"nodes", d.NodeCount(),
		"cached", hit,
		"duration", elapsed)

	return r.finish(ctx, d, hit, elapsed, opts)
}

// Combine builds the reduced diagrams of two truth tables, merges them and
// combines the product under opts.Op.
func (r *Runner) Combine(ctx context.Context, t1, t2 []bool, opts Options) (*Result, error) {
	for _, t := range [][]bool{t1, t2} {
		if err := errors.ValidateWidth(len(t)); err != nil {
			return nil, err
		}
	}
	if err := r.prepare(&opts); err != nil {
		return nil, err
	}
	op, err := opts.Operator()
	if err != nil {
		return nil, err
	}

	width := max(len(t1), len(t2))
	key := r.Keyer.CombineKey(tableHash(t1), tableHash(t2), opts.CombineKeyOpts(width))
	hooks := observability.Pipeline()
	hooks.OnCombineStart(ctx, opts.Op, width)

	start := time.Now()
	d, hit, err := r.diagram(ctx, key, keyTypeCombine, opts, func() (*bdd.Canonical, error) {
		return bdd.Apply(t1, t2, op)
	})
	elapsed := time.Since(start)
	hooks.OnCombineComplete(ctx, opts.Op, nodeCount(d), elapsed, err)
	if err != nil {
		return nil, fmt.Errorf("combine: %w", err)
	}

	opts.Logger.Info("combined diagrams",
		"op", opts.Op,
		"width", width,
		"nodes", d.NodeCount(),
		"cached", hit,
		"duration", elapsed)

	return r.finish(ctx, d, hit, elapsed, opts)
}

// RenderWithCacheInfo renders d in every format of opts.Formats and reports
// whether all of them came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, d *bdd.Diagram, opts Options) (map[string][]byte, bool, error) {
	if err := r.prepare(&opts); err != nil {
		return nil, false, err
	}
	if len(opts.Formats) == 0 {
		return map[string][]byte{}, false, nil
	}

	hash, err := DiagramHash(d)
	if err != nil {
		return nil, false, err
	}

	// Try to get all formats from cache
	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			data, ok := r.get(ctx, r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format)), keyTypeArtifact)
			if !ok {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(ctx, d, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		r.set(ctx, r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format)), keyTypeArtifact, data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Render(ctx context.Context, d *bdd.Diagram, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, d, opts)
	return artifacts, err
}

// Experiment runs a size experiment. Results are cached when they are
// reproducible: always for exhaustive runs, and for sampled runs with an
// explicit seed.
func (r *Runner) Experiment(ctx context.Context, opts experiment.Options) (*experiment.Result, bool, error) {
	seeded := opts.Seed != 0
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	cacheable := seeded || opts.Exhaustive()
	keyOpts := cache.ExperimentKeyOpts{Vars: opts.Vars, Samples: opts.Samples, Seed: opts.Seed}
	if opts.Exhaustive() {
		keyOpts = cache.ExperimentKeyOpts{Vars: opts.Vars}
	}
	key := r.Keyer.ExperimentKey(keyOpts)

	if cacheable {
		if data, ok := r.get(ctx, key, keyTypeExperiment); ok {
			var res experiment.Result
			if err := json.Unmarshal(data, &res); err == nil {
				return &res, true, nil
			}
		}
	}

	hooks := observability.Pipeline()
	hooks.OnExperimentStart(ctx, opts.Vars, opts.Samples)
	start := time.Now()
	res, err := experiment.Run(ctx, opts)
	diagrams := 0
	if res != nil {
		diagrams = res.Record.Diagrams
	}
	hooks.OnExperimentComplete(ctx, opts.Vars, diagrams, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if cacheable {
		if data, err := json.Marshal(res); err == nil {
			r.set(ctx, key, keyTypeExperiment, data, cache.TTLExperiment)
		}
	}
	return res, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// diagram returns the diagram cached under key, or computes and caches it.
func (r *Runner) diagram(ctx context.Context, key, keyType string, opts Options, compute func() (*bdd.Canonical, error)) (*bdd.Canonical, bool, error) {
	if !opts.Refresh {
		if data, ok := r.get(ctx, key, keyType); ok {
			d, err := bddio.ReadJSON(bytes.NewReader(data))
			if err == nil {
				return d, true, nil
			}
			opts.Logger.Debug("discarding unreadable cache entry", "key", key, "error", err)
		}
	}

	d, err := compute()
	if err != nil {
		return nil, false, err
	}

	var buf bytes.Buffer
	if err := bddio.WriteJSON(&d.Diagram, &buf); err == nil {
		r.set(ctx, key, keyType, buf.Bytes(), cache.TTLDiagram)
	}
	return d, false, nil
}

// finish renders the requested artifacts and assembles the result.
func (r *Runner) finish(ctx context.Context, d *bdd.Canonical, hit bool, elapsed time.Duration, opts Options) (*Result, error) {
	hash, err := DiagramHash(&d.Diagram)
	if err != nil {
		return nil, err
	}
	result := &Result{
		Diagram:   d,
		Hash:      hash,
		Artifacts: map[string][]byte{},
		Stats: Stats{
			Vars:      d.Vars(),
			NodeCount: d.NodeCount(),
			BuildTime: elapsed,
		},
		CacheInfo: CacheInfo{DiagramHit: hit},
	}
	if len(opts.Formats) == 0 {
		return result, nil
	}

	start := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, &d.Diagram, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)
	return result, nil
}

// get reads key from the cache. Cache errors count as misses.
func (r *Runner) get(ctx context.Context, key, keyType string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "key", key, "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

// set writes key to the cache. Failures are logged and otherwise ignored.
func (r *Runner) set(ctx context.Context, key, keyType string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// prepare validates opts and fills in the runner's logger.
func (r *Runner) prepare(opts *Options) error {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	return opts.ValidateAndSetDefaults()
}

// tableHash identifies a table including its width.
func tableHash(table []bool) string {
	return cache.HashString(bitvec.String(table))
}

// DiagramHash is the content hash of d's JSON encoding. Node ids follow the
// walk order, so equal diagrams hash equally.
func DiagramHash(d *bdd.Diagram) (string, error) {
	var buf bytes.Buffer
	if err := bddio.WriteJSON(d, &buf); err != nil {
		return "", fmt.Errorf("serialize diagram for cache key: %w", err)
	}
	return cache.Hash(buf.Bytes()), nil
}

func nodeCount(d *bdd.Canonical) int {
	if d == nil {
		return 0
	}
	return d.NodeCount()
}
