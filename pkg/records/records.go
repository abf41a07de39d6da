// Package records persists experiment summaries.
//
// A [Sink] receives one [experiment.Record] per run. [FileSink] appends
// semicolon-separated lines to a text file:
//
//	vars;diagrams;unique_sizes;total_seconds;per_diagram_seconds
//	5;10000;16;2.4181;0.00024181
//
// [MongoSink] inserts one document per record, and [Multi] fans out to
// several sinks.
package records

import (
	"context"
	"errors"

	"github.com/matzehuels/robdd/pkg/experiment"
)

// Sink stores experiment records. Implementations are safe for concurrent use.
type Sink interface {
	Write(ctx context.Context, r experiment.Record) error
	Close() error
}

// Multi writes every record to all sinks. Errors from individual sinks are
// joined; a failing sink does not stop the others.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

type multi []Sink

func (m multi) Write(ctx context.Context, r experiment.Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
