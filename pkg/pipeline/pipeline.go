// Package pipeline runs the table → diagram → artifact pipeline shared by the
// CLI and the HTTP server.
//
// Centralizing the stages here keeps caching, logging and observability hooks
// identical for every entry point.
//
// # Stages
//
//  1. Build: expand a truth table into a canonical (optionally reduced) diagram
//  2. Combine: merge two canonical diagrams and reduce them under an operator
//  3. Render: produce DOT, SVG, PDF, PNG or JSON output for a diagram
//
// Experiments (size histograms over many tables) run through the same
// [Runner] so that their results are cached as well.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Build(ctx, table, pipeline.Options{Formats: []string{"svg"}})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := res.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/robdd/pkg/bdd"
	"github.com/matzehuels/robdd/pkg/cache"
	"github.com/matzehuels/robdd/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

// DefaultOperator is the operator used by Combine when Options.Op is empty.
const DefaultOperator = "and"

// DefaultPNGScale is the scale factor for PNG output.
const DefaultPNGScale = 2.0

// Format constants for output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a pipeline run. It supports JSON serialization for API
// requests.
type Options struct {
	// NoReduce keeps nodes whose two children are the same node.
	NoReduce bool `json:"no_reduce,omitempty"`

	// Op names the operator applied by Combine.
	Op string `json:"op,omitempty"`

	// Formats lists the artifacts to render. Empty means no rendering.
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Refresh bypasses cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a Build or Combine run.
type Result struct {
	// Diagram is the canonical diagram.
	Diagram *bdd.Canonical

	// Hash is the content hash of the diagram's JSON encoding.
	Hash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Vars       int
	NodeCount  int
	BuildTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	DiagramHit bool // Whether the diagram came from cache
	RenderHit  bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: dot, svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Op == "" {
		o.Op = DefaultOperator
	}
	op, err := bdd.ParseOperator(o.Op)
	if err != nil {
		return err
	}
	o.Op = op.String()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// Operator returns the parsed Op.
func (o *Options) Operator() (bdd.Operator, error) {
	if o.Op == "" {
		return bdd.ParseOperator(DefaultOperator)
	}
	return bdd.ParseOperator(o.Op)
}

// DiagramKeyOpts returns cache key options for building a diagram of the
// given width.
func (o *Options) DiagramKeyOpts(width int) cache.DiagramKeyOpts {
	return cache.DiagramKeyOpts{Width: width, Reduce: !o.NoReduce}
}

// CombineKeyOpts returns cache key options for combining two tables.
func (o *Options) CombineKeyOpts(width int) cache.CombineKeyOpts {
	return cache.CombineKeyOpts{Width: width, Op: o.Op}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format, Detailed: o.Detailed}
}
